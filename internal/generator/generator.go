// Package generator produces structured lesson content from passage text.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rcliao/lessonforge/internal/model"
)

// ErrGenerationInvalid means the model answered but the payload broke the content contract.
var ErrGenerationInvalid = errors.New("generated content invalid")

// Request is the input to a single generation.
type Request struct {
	Translation string
	References  []string
	PassageText string
	ThemeHint   string
}

// Generator turns passage text into validated lesson content.
type Generator interface {
	Generate(ctx context.Context, req Request) (model.Content, error)
}

// Completer is the chat call LLMGenerator depends on.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// LLMGenerator generates content with a JSON chat completion.
type LLMGenerator struct {
	completer Completer
	// Attempts bounds how many times an invalid payload is regenerated.
	Attempts int
}

// NewLLMGenerator returns a generator backed by c.
func NewLLMGenerator(c Completer) *LLMGenerator {
	return &LLMGenerator{completer: c, Attempts: 2}
}

// Generate asks the model for content and validates it. Transport errors are
// returned as-is; shape violations wrap ErrGenerationInvalid.
func (g *LLMGenerator) Generate(ctx context.Context, req Request) (model.Content, error) {
	if strings.TrimSpace(req.PassageText) == "" {
		return model.Content{}, fmt.Errorf("generate: %w: empty passage text", ErrGenerationInvalid)
	}
	attempts := g.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	prompt := buildUserPrompt(req)

	var lastErr error
	for i := 0; i < attempts; i++ {
		raw, err := g.completer.CompleteJSON(ctx, SystemPrompt, prompt)
		if err != nil {
			return model.Content{}, fmt.Errorf("generate: %w", err)
		}
		content, err := parseContent(raw)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return model.Content{}, fmt.Errorf("generate: %w: %w", ErrGenerationInvalid, lastErr)
}

func parseContent(raw string) (model.Content, error) {
	var payload model.Content
	if err := DecodeLLMJSON(raw, &payload); err != nil {
		return model.Content{}, fmt.Errorf("parse payload: %w", err)
	}
	return model.NewContent(payload)
}
