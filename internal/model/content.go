package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidContent is returned when generated content violates its shape contract.
var ErrInvalidContent = errors.New("invalid content")

// Content is the structured teaching payload generated for a passage.
// Construct it with NewContent so the cardinality rules are enforced.
type Content struct {
	Title               string         `json:"title,omitempty"`
	Preview             string         `json:"preview" validate:"required"`
	Body                string         `json:"body" validate:"required"`
	KeyTakeaways        []string       `json:"key_takeaways" validate:"min=1,max=5,dive,required"`
	ReflectionPrompts   []string       `json:"reflection_prompts" validate:"min=2,max=3,dive,required"`
	DiscussionQuestions []string       `json:"discussion_questions" validate:"min=3,max=5,dive,required"`
	Quiz                []QuizQuestion `json:"quiz" validate:"min=3,max=5,dive"`
}

// QuizQuestion is a four-choice question whose answer is the literal text of one choice.
type QuizQuestion struct {
	Question    string   `json:"question" validate:"required"`
	Choices     []string `json:"choices" validate:"len=4,unique,dive,required"`
	Answer      string   `json:"answer" validate:"required"`
	Explanation string   `json:"explanation,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		q := sl.Current().Interface().(QuizQuestion)
		for _, c := range q.Choices {
			if c == q.Answer {
				return
			}
		}
		sl.ReportError(q.Answer, "Answer", "answer", "oneofchoices", "")
	}, QuizQuestion{})
	return v
}

// NewContent trims the raw payload, rewrites letter answers into choice
// text and validates the result. The returned error wraps ErrInvalidContent.
func NewContent(raw Content) (Content, error) {
	c := Content{
		Title:               strings.TrimSpace(raw.Title),
		Preview:             strings.TrimSpace(raw.Preview),
		Body:                strings.TrimSpace(raw.Body),
		KeyTakeaways:        trimAll(raw.KeyTakeaways),
		ReflectionPrompts:   trimAll(raw.ReflectionPrompts),
		DiscussionQuestions: trimAll(raw.DiscussionQuestions),
	}
	for _, q := range raw.Quiz {
		choices := trimAll(q.Choices)
		c.Quiz = append(c.Quiz, QuizQuestion{
			Question:    strings.TrimSpace(q.Question),
			Choices:     choices,
			Answer:      NormalizeAnswer(q.Answer, choices),
			Explanation: strings.TrimSpace(q.Explanation),
		})
	}
	if err := c.Validate(); err != nil {
		return Content{}, err
	}
	return c, nil
}

// Validate checks the cardinality and answer rules without modifying c.
func (c Content) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describeFieldError(fe))
			}
			return fmt.Errorf("%w: %s", ErrInvalidContent, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min", "max", "len":
		return fmt.Sprintf("%s must satisfy %s=%s (got %v items)", field, fe.Tag(), fe.Param(), countOf(fe.Value()))
	case "unique":
		return field + " must not repeat"
	case "oneofchoices":
		return fmt.Sprintf("%s %q does not match any choice", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

func countOf(v any) int {
	switch s := v.(type) {
	case []string:
		return len(s)
	case []QuizQuestion:
		return len(s)
	default:
		return 0
	}
}

var (
	letterAnswer   = regexp.MustCompile(`(?i)^\(?(?:option|choice|answer)?\s*\(?([a-d])\)?[.):]?$`)
	prefixedAnswer = regexp.MustCompile(`(?i)^\(?([a-d])[.):]\s+(.+)$`)
)

// NormalizeAnswer maps an answer given as a letter ("B", "(c)", "Option D")
// or as a letter-prefixed choice ("B) Grace") onto the literal choice text.
// Answers that already match a choice, or cannot be mapped, are returned unchanged.
func NormalizeAnswer(answer string, choices []string) string {
	answer = strings.TrimSpace(answer)
	for _, c := range choices {
		if c == answer {
			return answer
		}
	}
	for _, c := range choices {
		if strings.EqualFold(c, answer) {
			return c
		}
	}
	if m := letterAnswer.FindStringSubmatch(answer); m != nil {
		if idx := letterIndex(m[1]); idx < len(choices) {
			return choices[idx]
		}
	}
	if m := prefixedAnswer.FindStringSubmatch(answer); m != nil {
		rest := strings.TrimSpace(m[2])
		for _, c := range choices {
			if strings.EqualFold(c, rest) {
				return c
			}
		}
		if idx := letterIndex(m[1]); idx < len(choices) {
			return choices[idx]
		}
	}
	return answer
}

func letterIndex(letter string) int {
	return int(strings.ToLower(letter)[0] - 'a')
}

func trimAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.TrimSpace(v))
	}
	return out
}
