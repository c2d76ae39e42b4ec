package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	summarizerpkg "github.com/mindhaven/sessioncore/internal/summarizer"
	"github.com/mindhaven/sessioncore/internal/transient"
)

// systemPrompt is the fixed instruction template. Advice must be attributed
// to the counselor and present in the transcript; the model must return empty
// lists rather than infer content that was not said.
const systemPrompt = `You are an assistant that analyzes transcripts of mental-health counseling sessions.
From the transcript, extract exactly the following and respond with a single JSON object, nothing else:
{"summary": "...", "insights": ["..."], "mood": "...", "goals": ["..."], "warnings": ["..."]}
- "summary": a concise narrative summary of the session.
- "insights": key concerns the participant raised, in their own terms.
- "mood": one short label for the participant's overall mood.
- "goals": action items or goals, but only advice the counselor explicitly stated in the transcript. Never invent advice. If the counselor gave none, return an empty list.
- "warnings": points to watch that the participant or counselor raised.
Every item must be grounded in the transcript text. Do not fabricate content.`

type ChatConfig struct {
	URL        string
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

type ChatClient struct {
	cfg ChatConfig
}

func NewChatClient(cfg ChatConfig) summarizerpkg.Summarizer {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return &ChatClient{cfg: cfg}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *ChatClient) Summarize(ctx context.Context, transcript string) (summarizerpkg.Result, error) {
	if strings.TrimSpace(transcript) == "" {
		return summarizerpkg.Result{}, fmt.Errorf("transcript is empty")
	}

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: transcript},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return summarizerpkg.Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return summarizerpkg.Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return summarizerpkg.Result{}, transient.Wrap(fmt.Errorf("summarization request failed: %w", err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if isRetryableStatus(resp.StatusCode) {
		return summarizerpkg.Result{}, transient.Wrap(fmt.Errorf("summarization service returned status %d", resp.StatusCode))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return summarizerpkg.Result{}, fmt.Errorf("summarization service returned status %d", resp.StatusCode)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return summarizerpkg.Result{}, fmt.Errorf("decode summarization response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return summarizerpkg.Result{}, fmt.Errorf("summarization response has no choices")
	}

	var result summarizerpkg.Result
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &result); err != nil {
		return summarizerpkg.Result{}, fmt.Errorf("summarization response is not the expected JSON shape: %w", err)
	}
	if strings.TrimSpace(result.Summary) == "" {
		return summarizerpkg.Result{}, fmt.Errorf("summarization response is missing a summary")
	}
	return result, nil
}

func isRetryableStatus(statusCode int) bool {
	return statusCode >= 500 || statusCode == http.StatusTooManyRequests
}
