package connect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	connectpkg "github.com/mindhaven/sessioncore/internal/connect"
)

type HTTPDetailsClient struct {
	detailsURL string
	client     *http.Client
}

func NewHTTPDetailsClient(detailsURL string, timeout time.Duration) connectpkg.DetailsClient {
	return &HTTPDetailsClient{
		detailsURL: detailsURL,
		client:     &http.Client{Timeout: timeout},
	}
}

func (c *HTTPDetailsClient) Fetch(ctx context.Context, room, participant, region string) (connectpkg.Details, error) {
	q := url.Values{}
	q.Set("roomName", room)
	q.Set("participantName", participant)
	if region != "" {
		q.Set("region", region)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.detailsURL+"?"+q.Encode(), nil)
	if err != nil {
		return connectpkg.Details{}, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return connectpkg.Details{}, fmt.Errorf("connection details request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if !isHTTPSuccessStatus(resp.StatusCode) {
		return connectpkg.Details{}, fmt.Errorf("connection details service returned status %d", resp.StatusCode)
	}
	var details connectpkg.Details
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return connectpkg.Details{}, fmt.Errorf("decode connection details: %w", err)
	}
	return details, nil
}

func isHTTPSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
