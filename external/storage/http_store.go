package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	storagepkg "github.com/mindhaven/sessioncore/internal/storage"
)

type HTTPStore struct {
	baseURL string
	client  *http.Client
}

func NewHTTPStore(baseURL string) storagepkg.ObjectStore {
	return &HTTPStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

func (s *HTTPStore) GetObject(ctx context.Context, key string) ([]byte, error) {
	url := s.baseURL + "/" + strings.TrimLeft(key, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode == http.StatusNotFound {
		return nil, storagepkg.ErrObjectNotFound
	}
	if !isHTTPSuccessStatus(resp.StatusCode) {
		return nil, fmt.Errorf("object storage returned status %d for %s", resp.StatusCode, key)
	}
	return io.ReadAll(resp.Body)
}

func isHTTPSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
