package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rcliao/lessonforge/internal/httpx"
)

func TestClientCompleteJSON(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("unexpected auth %q", got)
		}
		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "gpt-test" || req.ResponseFormat["type"] != "json_object" || len(req.Messages) != 2 {
			t.Errorf("unexpected request %+v", req)
		}
		if n == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"ok\":true}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{APIKey: "key", BaseURL: srv.URL, Model: "gpt-test"},
		WithRetrier(httpx.Retrier{Attempts: 3, BaseDelay: time.Millisecond, Sleeper: func(time.Duration) {}}))
	got, err := c.CompleteJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}
	if got != `{"ok":true}` {
		t.Errorf("content = %q", got)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected one retry, got %d calls", calls)
	}
}

func TestClientRequiresAPIKey(t *testing.T) {
	c := NewClient(ClientConfig{Model: "m"})
	if _, err := c.CompleteJSON(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestDecodeLLMJSON(t *testing.T) {
	var out struct {
		OK bool `json:"ok"`
	}
	inputs := []string{
		`{"ok":true}`,
		"```json\n{\"ok\":true}\n```",
		"Sure! {\"ok\":true} Hope that helps.",
	}
	for _, in := range inputs {
		out.OK = false
		if err := DecodeLLMJSON(in, &out); err != nil || !out.OK {
			t.Errorf("DecodeLLMJSON(%q) = %v, ok=%v", in, err, out.OK)
		}
	}
	if err := DecodeLLMJSON("   ", &out); err == nil {
		t.Error("expected error for empty payload")
	}
}
