package generator

import (
	"fmt"
	"strings"
)

// SystemPrompt instructs the model to return one lesson object.
const SystemPrompt = `You write short devotional Bible lessons for small groups.
Respond with a single JSON object and nothing else, using exactly these keys:
  "title": short lesson title,
  "preview": one or two sentence teaser,
  "body": the teaching, 3 to 6 paragraphs separated by blank lines,
  "key_takeaways": 1 to 5 short statements,
  "reflection_prompts": 2 or 3 personal questions,
  "discussion_questions": 3 to 5 group questions,
  "quiz": 3 to 5 objects with "question", "choices" (exactly 4 distinct strings),
          "answer" (copied verbatim from one of the choices) and "explanation".
Stay faithful to the passage text. Do not invent verses.`

func buildUserPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reference: %s\n", strings.Join(req.References, "; "))
	fmt.Fprintf(&b, "Translation: %s\n", req.Translation)
	if hint := strings.TrimSpace(req.ThemeHint); hint != "" {
		fmt.Fprintf(&b, "Theme: %s\n", hint)
	}
	b.WriteString("\nPassage:\n")
	b.WriteString(strings.TrimSpace(req.PassageText))
	b.WriteString("\n")
	return b.String()
}
