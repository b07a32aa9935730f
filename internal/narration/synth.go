// Package narration turns story pages into narrated audio assets.
package narration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rcliao/lessonforge/internal/httpx"
)

// ErrSynthesisFailed wraps every speech synthesis failure.
var ErrSynthesisFailed = errors.New("speech synthesis failed")

// Synthesizer converts text to encoded audio in a voice.
type Synthesizer interface {
	Synthesize(ctx context.Context, voice, text string) ([]byte, error)
}

// OpenAIConfig configures an OpenAI-compatible speech endpoint.
type OpenAIConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	Format         string
	TimeoutSeconds int
}

// OpenAISynthesizer posts to {base}/audio/speech.
type OpenAISynthesizer struct {
	cfg     OpenAIConfig
	client  *http.Client
	retrier httpx.Retrier
}

type speechRequest struct {
	Model          string `json:"model"`
	Voice          string `json:"voice"`
	Input          string `json:"input"`
	ResponseFormat string `json:"response_format"`
}

// NewOpenAISynthesizer creates a synthesizer using an OpenAI-compatible API.
func NewOpenAISynthesizer(cfg OpenAIConfig) *OpenAISynthesizer {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = "tts-1"
	}
	if cfg.Format == "" {
		cfg.Format = "mp3"
	}
	timeout := 60 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &OpenAISynthesizer{
		cfg:     cfg,
		client:  &http.Client{Timeout: timeout},
		retrier: httpx.DefaultRetrier(),
	}
}

// WithRetrier replaces the retry policy and returns s.
func (s *OpenAISynthesizer) WithRetrier(r httpx.Retrier) *OpenAISynthesizer {
	s.retrier = r
	return s
}

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, voice, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty text", ErrSynthesisFailed)
	}
	body, _ := json.Marshal(speechRequest{
		Model:          s.cfg.Model,
		Voice:          voice,
		Input:          text,
		ResponseFormat: s.cfg.Format,
	})

	var audio []byte
	err := s.retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/audio/speech", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if s.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read audio: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return httpx.NewStatusError(resp, data)
		}
		audio = data
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSynthesisFailed, err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: empty audio response", ErrSynthesisFailed)
	}
	return audio, nil
}
