package story

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/rcliao/lessonforge/internal/model"
)

func sampleContent(body string) model.Content {
	return model.Content{
		Title:               "Loved First",
		Preview:             "God's love moves first.",
		Body:                body,
		KeyTakeaways:        []string{"God loves the world", "Belief receives the gift"},
		ReflectionPrompts:   []string{"Where do you doubt?", "Who needs to hear this?"},
		DiscussionQuestions: []string{"What is love?", "Why the Son?", "What does believe mean?"},
	}
}

func sampleInput() Input {
	return Input{Reference: "John 3:16", Translation: "ESV", PassageText: "For God so loved the world"}
}

func sampleOptions() Options {
	opts := DefaultOptions()
	opts.FollowUpURL = "https://example.org/plans/1"
	return opts
}

func pageTypes(m model.Manifest) []model.PageType {
	out := make([]model.PageType, len(m.Pages))
	for i, p := range m.Pages {
		out[i] = p.Type
	}
	return out
}

func TestCompileOrder(t *testing.T) {
	m, err := Compile(sampleContent("A short body."), sampleInput(), sampleOptions())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	want := []model.PageType{model.PageCover, model.PageScripture, model.PageContent, model.PageList, model.PageList, model.PageList, model.PageCTA}
	if got := pageTypes(m); !reflect.DeepEqual(got, want) {
		t.Fatalf("page types = %v, want %v", got, want)
	}
	cover := m.Pages[0]
	if cover.Title != "Loved First" || cover.Subtitle != "John 3:16 · ESV" || cover.Text != "God's love moves first." {
		t.Errorf("unexpected cover %+v", cover)
	}
	if m.Pages[1].Title != "John 3:16" {
		t.Errorf("scripture title = %q", m.Pages[1].Title)
	}
	if cta := m.Pages[len(m.Pages)-1]; cta.Link != "https://example.org/plans/1" {
		t.Errorf("cta link = %q", cta.Link)
	}
	if m.Version != ManifestVersion {
		t.Errorf("version = %d", m.Version)
	}
}

func TestCompileWithoutPassageSkipsScripture(t *testing.T) {
	in := sampleInput()
	in.PassageText = ""
	m, err := Compile(sampleContent("Body."), in, sampleOptions())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for _, p := range m.Pages {
		if p.Type == model.PageScripture {
			t.Fatal("unexpected scripture page")
		}
	}
}

func TestCompileSplitsLongBody(t *testing.T) {
	para := strings.Repeat("Grace is given before it is earned. ", 14)
	body := strings.TrimSpace(para) + "\n\n" + strings.TrimSpace(para)
	m, err := Compile(sampleContent(body), sampleInput(), sampleOptions())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	var content []model.Page
	for _, p := range m.Pages {
		if p.Type == model.PageContent {
			content = append(content, p)
		}
	}
	if len(content) != 2 {
		t.Fatalf("expected 2 content pages, got %d", len(content))
	}
	if content[0].Text != strings.TrimSpace(para) || content[1].Text != strings.TrimSpace(para) {
		t.Errorf("expected split at the paragraph break")
	}
	if !content[1].Continued || !strings.HasSuffix(content[1].Title, "(continued)") {
		t.Errorf("second page should be marked continued: %+v", content[1])
	}
}

func TestCompileSplitsLongDiscussion(t *testing.T) {
	c := sampleContent("Body.")
	c.DiscussionQuestions = []string{
		strings.Repeat("a", 300), strings.Repeat("b", 300), strings.Repeat("c", 300), strings.Repeat("d", 300),
	}
	m, err := Compile(c, sampleInput(), sampleOptions())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	var discuss []model.Page
	for _, p := range m.Pages {
		if strings.HasPrefix(p.Title, "Discuss") {
			discuss = append(discuss, p)
		}
	}
	if len(discuss) != 2 || len(discuss[0].Items) != 2 || len(discuss[1].Items) != 2 {
		t.Fatalf("expected two discussion pages of 2, got %+v", discuss)
	}
}

func TestCompileDeterministic(t *testing.T) {
	a, err := Compile(sampleContent("Body one.\n\nBody two."), sampleInput(), sampleOptions())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Compile(sampleContent("Body one.\n\nBody two."), sampleInput(), sampleOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("compile is not deterministic")
	}
}

func TestCompileRequiresFollowUpLink(t *testing.T) {
	_, err := Compile(sampleContent("Body."), sampleInput(), DefaultOptions())
	if !errors.Is(err, ErrInvalidManifest) {
		t.Fatalf("expected ErrInvalidManifest, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cover := model.Page{Type: model.PageCover, Title: "T", Text: "p"}
	cta := model.Page{Type: model.PageCTA, Title: "Go", Link: "/next"}
	tests := []struct {
		name  string
		pages []model.Page
		ok    bool
	}{
		{"minimal", []model.Page{cover, cta}, true},
		{"empty", nil, false},
		{"cover not first", []model.Page{cta, cover, cta}, false},
		{"cta not last", []model.Page{cover, cta, cover}, false},
		{"unknown type", []model.Page{cover, {Type: "video", Title: "x", Text: "y"}, cta}, false},
		{"empty list", []model.Page{cover, {Type: model.PageList, Title: "L"}, cta}, false},
		{"blank list item", []model.Page{cover, {Type: model.PageList, Title: "L", Items: []string{"a", " "}}, cta}, false},
		{"content without text", []model.Page{cover, {Type: model.PageContent, Title: "T"}, cta}, false},
		{"cta without link", []model.Page{cover, {Type: model.PageCTA, Title: "Go"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(model.Manifest{Version: 1, Pages: tt.pages})
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidManifest) {
				t.Fatalf("expected ErrInvalidManifest, got %v", err)
			}
		})
	}
}

func TestSplitHalves(t *testing.T) {
	if got := SplitHalves("short", 100); len(got) != 1 {
		t.Errorf("short text should not split: %v", got)
	}
	text := "One sentence here. Two sentence here. Three sentence here. Four sentence here."
	got := SplitHalves(text, 20)
	if len(got) != 2 {
		t.Fatalf("expected 2 parts, got %v", got)
	}
	if got[0] != "One sentence here. Two sentence here." || got[1] != "Three sentence here. Four sentence here." {
		t.Errorf("unexpected sentence split %q | %q", got[0], got[1])
	}
	if got := SplitHalves("", 10); got != nil {
		t.Errorf("expected nil for empty text, got %v", got)
	}
}
