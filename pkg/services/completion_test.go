package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"lmchat/pkg/config"
)

func testConfig(lmURL string, timeout time.Duration) config.Config {
	return config.Config{
		LMAPIURL:  lmURL,
		LMAPIKey:  "no-key",
		LMModel:   "default",
		LMTimeout: timeout,
	}
}

func completionResponse(content string) map[string]any {
	return map[string]any{
		"id":     "cmpl-1",
		"object": "chat.completion",
		"choices": []map[string]any{
			{
				"index":   0,
				"message": map[string]any{"role": "assistant", "content": content},
			},
		},
	}
}

func TestGenerateReturnsFirstChoice(t *testing.T) {
	var gotPath, gotAuth string
	var gotMessages int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")

		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		gotMessages = len(req.Messages)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionResponse("the reply"))
	}))
	defer srv.Close()

	cc := NewCompletionClient(testConfig(srv.URL, 2*time.Second), zap.NewNop())
	history := []StoredMessage{
		{Role: "system", Content: "You are a helpful AI assistant."},
		{Role: "assistant", Content: "Hi!"},
		{Role: "user", Content: "hello"},
	}

	reply, err := cc.Generate(context.Background(), history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "the reply" {
		t.Fatalf("expected first choice content, got %q", reply)
	}
	if gotPath != "/v1/chat/completions" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer no-key" {
		t.Fatalf("expected bearer token header, got %q", gotAuth)
	}
	if gotMessages != len(history) {
		t.Fatalf("expected full history (%d messages), got %d", len(history), gotMessages)
	}
}

func TestGenerateEmptyChoicesIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	cc := NewCompletionClient(testConfig(srv.URL, 2*time.Second), zap.NewNop())
	if _, err := cc.Generate(context.Background(), []StoredMessage{{Role: "user", Content: "hi"}}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestGenerateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionResponse("too late"))
	}))
	defer srv.Close()

	cc := NewCompletionClient(testConfig(srv.URL, 50*time.Millisecond), zap.NewNop())
	_, err := cc.Generate(context.Background(), []StoredMessage{{Role: "user", Content: "hi"}})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !IsTimeout(err) {
		t.Fatalf("expected IsTimeout to report true for %v", err)
	}
}

func TestIsTimeoutDistinguishesOtherFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cc := NewCompletionClient(testConfig(srv.URL, 2*time.Second), zap.NewNop())
	_, err := cc.Generate(context.Background(), []StoredMessage{{Role: "user", Content: "hi"}})
	if err == nil {
		t.Fatal("expected upstream error")
	}
	if IsTimeout(err) {
		t.Fatalf("a 500 must not look like a timeout: %v", err)
	}
}
