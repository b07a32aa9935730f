package narration

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rcliao/lessonforge/internal/httpx"
)

func TestOpenAISynthesizer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/speech" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req speechRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Voice != "onyx" || req.Model != "tts-1" || req.ResponseFormat != "mp3" || req.Input != "Hello." {
			t.Errorf("unexpected request %+v", req)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3fake"))
	}))
	defer srv.Close()

	s := NewOpenAISynthesizer(OpenAIConfig{BaseURL: srv.URL, APIKey: "k"})
	got, err := s.Synthesize(context.Background(), "onyx", "Hello.")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(got) != "ID3fake" {
		t.Errorf("audio = %q", got)
	}
}

func TestOpenAISynthesizerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewOpenAISynthesizer(OpenAIConfig{BaseURL: srv.URL}).
		WithRetrier(httpx.Retrier{Attempts: 2, Sleeper: func(time.Duration) {}})
	_, err := s.Synthesize(context.Background(), "alloy", "Hello.")
	if !errors.Is(err, ErrSynthesisFailed) {
		t.Fatalf("expected ErrSynthesisFailed, got %v", err)
	}
}
