package story

import (
	"testing"

	"github.com/rcliao/lessonforge/internal/model"
)

func TestNarrationText(t *testing.T) {
	tests := []struct {
		name string
		page model.Page
		want string
	}{
		{
			name: "scripture strips verse markers and translation",
			page: model.Page{Type: model.PageScripture, Title: "John 3:16–17", Text: "[16] For God so loved the world, (17) that he gave his only Son. (ESV)"},
			want: "John 3:16–17. For God so loved the world, that he gave his only Son.",
		},
		{
			name: "leading verse numbers and superscripts",
			page: model.Page{Type: model.PageScripture, Title: "Psalms 23", Text: "1 The Lord is my shepherd;\n²I shall not want. ESV"},
			want: "Psalms 23. The Lord is my shepherd. I shall not want.",
		},
		{
			name: "list bullets and headers",
			page: model.Page{Type: model.PageList, Title: "Key Takeaways", Items: []string{"• God loves first", "- Belief receives!", "Remember:", "2. Share it"}},
			want: "Key Takeaways. God loves first. Belief receives! Share it",
		},
		{
			name: "continued pages skip the title",
			page: model.Page{Type: model.PageContent, Title: "Teaching (continued)", Text: "Second half.", Continued: true},
			want: "Second half.",
		},
		{
			name: "cta ignores link",
			page: model.Page{Type: model.PageCTA, Title: "Keep going", Text: "Continue the plan", Link: "https://example.org"},
			want: "Keep going. Continue the plan",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NarrationText(tt.page); got != tt.want {
				t.Errorf("NarrationText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNarrationTextEmpty(t *testing.T) {
	if got := NarrationText(model.Page{Type: model.PageList, Items: []string{"Heading:"}}); got != "" {
		t.Errorf("expected empty narration, got %q", got)
	}
}
