package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yungbote/studytree-backend/internal/platform/logger"
)

func TestNewClientMissingKey(t *testing.T) {
	_, err := NewClientWithConfig(logger.NewNop(), Config{})
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got=%v", err)
	}
}

func TestCompleteSendsChatRequest(t *testing.T) {
	var got chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: got=%s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer k" {
			t.Errorf("unexpected auth: got=%q", auth)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hello"}}]}`))
	}))
	defer srv.Close()

	c, err := NewClientWithConfig(logger.NewNop(), Config{APIKey: "k", BaseURL: srv.URL, Model: "m", Temperature: 0.7})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	out, err := c.Complete(context.Background(), []Message{UserMessage("hi")}, 500)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != "hello" {
		t.Fatalf("content: got=%q want=%q", out, "hello")
	}
	if got.Model != "m" || got.MaxTokens != 500 || len(got.Messages) != 1 || got.Messages[0].Role != RoleUser {
		t.Fatalf("unexpected request: %+v", got)
	}
}

func TestCompleteNon2xxIsServiceError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`rate limited`))
	}))
	defer srv.Close()

	c, _ := NewClientWithConfig(logger.NewNop(), Config{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), []Message{UserMessage("hi")}, 10)
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError, got=%v", err)
	}
	if svcErr.HTTPStatusCode() != http.StatusTooManyRequests {
		t.Fatalf("status: got=%d want=%d", svcErr.HTTPStatusCode(), http.StatusTooManyRequests)
	}
	if calls != 1 {
		t.Fatalf("client must not retry: calls=%d", calls)
	}
}

func TestCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c, _ := NewClientWithConfig(logger.NewNop(), Config{APIKey: "k", BaseURL: srv.URL})
	if _, err := c.Complete(context.Background(), []Message{UserMessage("hi")}, 10); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
