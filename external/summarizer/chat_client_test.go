package summarizer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mindhaven/sessioncore/internal/transient"
)

func chatServer(t *testing.T, content string, status int, capture *chatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestSummarize_ParsesStructuredResult(t *testing.T) {
	content := `{"summary":"A calm session.","insights":["work stress"],"mood":"hopeful","goals":["daily walk"],"warnings":["sleep debt"]}`
	var captured chatRequest
	srv := chatServer(t, content, http.StatusOK, &captured)
	defer srv.Close()

	client := NewChatClient(ChatConfig{URL: srv.URL, Model: "gpt-test"})
	result, err := client.Summarize(context.Background(), "counselor: try a daily walk")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Summary != "A calm session." || result.Mood != "hopeful" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Goals) != 1 || result.Goals[0] != "daily walk" {
		t.Fatalf("unexpected goals: %v", result.Goals)
	}

	if captured.Model != "gpt-test" {
		t.Fatalf("unexpected model %q", captured.Model)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" {
		t.Fatalf("expected system+user messages, got %+v", captured.Messages)
	}
	if !strings.Contains(captured.Messages[0].Content, "Never invent advice") {
		t.Fatal("system prompt is missing the anti-fabrication instruction")
	}
	if captured.Messages[1].Content != "counselor: try a daily walk" {
		t.Fatalf("unexpected user message %q", captured.Messages[1].Content)
	}
}

func TestSummarize_ServerErrorIsTransient(t *testing.T) {
	srv := chatServer(t, "", http.StatusBadGateway, nil)
	defer srv.Close()

	client := NewChatClient(ChatConfig{URL: srv.URL, Model: "gpt-test"})
	_, err := client.Summarize(context.Background(), "hello")
	if err == nil || !transient.Is(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestSummarize_BadRequestIsPermanent(t *testing.T) {
	srv := chatServer(t, "", http.StatusBadRequest, nil)
	defer srv.Close()

	client := NewChatClient(ChatConfig{URL: srv.URL, Model: "gpt-test"})
	_, err := client.Summarize(context.Background(), "hello")
	if err == nil || transient.Is(err) {
		t.Fatalf("expected permanent error, got %v", err)
	}
}

func TestSummarize_RejectsMalformedContent(t *testing.T) {
	srv := chatServer(t, "not json at all", http.StatusOK, nil)
	defer srv.Close()

	client := NewChatClient(ChatConfig{URL: srv.URL, Model: "gpt-test"})
	if _, err := client.Summarize(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for malformed response content")
	}
}

func TestSummarize_EmptyTranscript(t *testing.T) {
	client := NewChatClient(ChatConfig{URL: "http://unused.invalid", Model: "gpt-test"})
	if _, err := client.Summarize(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty transcript")
	}
}
