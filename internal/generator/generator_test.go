package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rcliao/lessonforge/internal/model"
)

type scriptedCompleter struct {
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (s *scriptedCompleter) CompleteJSON(_ context.Context, _, user string) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, user)
	if s.err != nil {
		return "", s.err
	}
	idx := s.calls - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return s.responses[idx], nil
}

const validPayload = `{
  "title": "Loved First",
  "preview": "God's love moves first.",
  "body": "Paragraph one.\n\nParagraph two.",
  "key_takeaways": ["God loves the world"],
  "reflection_prompts": ["Where do you doubt?", "Who needs to hear this?"],
  "discussion_questions": ["What is love?", "Why the Son?", "What does believe mean?"],
  "quiz": [
    {"question": "Who gave?", "choices": ["God", "Moses", "Paul", "Peter"], "answer": "B) Moses"},
    {"question": "Gave what?", "choices": ["Law", "Son", "Land", "Bread"], "answer": "b"},
    {"question": "For whom?", "choices": ["Israel", "Priests", "The world", "Angels"], "answer": "The world"}
  ]
}`

func testRequest() Request {
	return Request{Translation: "ESV", References: []string{"John 3:16"}, PassageText: "For God so loved the world", ThemeHint: "love"}
}

func TestGenerateNormalizesLetterAnswers(t *testing.T) {
	c := &scriptedCompleter{responses: []string{validPayload}}
	g := NewLLMGenerator(c)
	content, err := g.Generate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := []string{"Moses", "Son", "The world"}
	for i, q := range content.Quiz {
		if q.Answer != want[i] {
			t.Errorf("quiz[%d] answer = %q, want %q", i, q.Answer, want[i])
		}
	}
	if !strings.Contains(c.prompts[0], "Reference: John 3:16") || !strings.Contains(c.prompts[0], "Theme: love") {
		t.Errorf("prompt missing request fields: %s", c.prompts[0])
	}
}

func TestGenerateAcceptsFencedJSON(t *testing.T) {
	c := &scriptedCompleter{responses: []string{"Here you go:\n```json\n" + validPayload + "\n```"}}
	if _, err := NewLLMGenerator(c).Generate(context.Background(), testRequest()); err != nil {
		t.Fatalf("Generate: %v", err)
	}
}

func TestGenerateInvalidShape(t *testing.T) {
	bad := strings.Replace(validPayload, `"key_takeaways": ["God loves the world"]`, `"key_takeaways": []`, 1)
	c := &scriptedCompleter{responses: []string{bad}}
	g := NewLLMGenerator(c)
	_, err := g.Generate(context.Background(), testRequest())
	if !errors.Is(err, ErrGenerationInvalid) {
		t.Fatalf("expected ErrGenerationInvalid, got %v", err)
	}
	if !errors.Is(err, model.ErrInvalidContent) {
		t.Errorf("expected wrapped ErrInvalidContent, got %v", err)
	}
	if c.calls != g.Attempts {
		t.Errorf("expected %d attempts, got %d", g.Attempts, c.calls)
	}
}

func TestGenerateRetriesAfterInvalidPayload(t *testing.T) {
	c := &scriptedCompleter{responses: []string{"not json", validPayload}}
	if _, err := NewLLMGenerator(c).Generate(context.Background(), testRequest()); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if c.calls != 2 {
		t.Errorf("expected 2 calls, got %d", c.calls)
	}
}

func TestGenerateTransportErrorIsNotInvalid(t *testing.T) {
	c := &scriptedCompleter{err: errors.New("connection reset")}
	_, err := NewLLMGenerator(c).Generate(context.Background(), testRequest())
	if err == nil || errors.Is(err, ErrGenerationInvalid) {
		t.Fatalf("expected plain transport error, got %v", err)
	}
	if c.calls != 1 {
		t.Errorf("transport errors must not be regenerated, got %d calls", c.calls)
	}
}

func TestGenerateRejectsEmptyPassage(t *testing.T) {
	c := &scriptedCompleter{responses: []string{validPayload}}
	req := testRequest()
	req.PassageText = "  "
	if _, err := NewLLMGenerator(c).Generate(context.Background(), req); !errors.Is(err, ErrGenerationInvalid) {
		t.Fatalf("expected ErrGenerationInvalid, got %v", err)
	}
	if c.calls != 0 {
		t.Errorf("expected no model calls, got %d", c.calls)
	}
}
