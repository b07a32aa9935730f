// Package story compiles generated content into an ordered page manifest and
// extracts the text each page narrates.
package story

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rcliao/lessonforge/internal/model"
)

const (
	ManifestVersion       = 1
	DefaultSplitThreshold = 900
	continuedSuffix       = " (continued)"
)

// ErrInvalidManifest is returned when a compiled manifest breaks a page rule.
var ErrInvalidManifest = errors.New("invalid story manifest")

// Input carries the passage fields shown alongside the generated content.
type Input struct {
	Reference   string
	Translation string
	PassageText string
}

// Options configures compilation.
type Options struct {
	SplitThreshold int
	FollowUpURL    string
	FollowUpLabel  string
}

// DefaultOptions returns the compile defaults. FollowUpURL has no default.
func DefaultOptions() Options {
	return Options{
		SplitThreshold: DefaultSplitThreshold,
		FollowUpLabel:  "Continue the plan",
	}
}

// Compile lays content out as pages. It is deterministic and validates the
// result before returning it.
func Compile(content model.Content, in Input, opts Options) (model.Manifest, error) {
	if opts.SplitThreshold <= 0 {
		opts.SplitThreshold = DefaultSplitThreshold
	}
	if opts.FollowUpLabel == "" {
		opts.FollowUpLabel = DefaultOptions().FollowUpLabel
	}
	ref := strings.TrimSpace(in.Reference)

	title := strings.TrimSpace(content.Title)
	if title == "" {
		title = ref
	}
	subtitle := ref
	if in.Translation != "" {
		subtitle = ref + " · " + in.Translation
	}
	pages := []model.Page{{
		Type:     model.PageCover,
		Title:    title,
		Subtitle: subtitle,
		Text:     content.Preview,
	}}

	if passage := strings.TrimSpace(in.PassageText); passage != "" {
		pages = append(pages, model.Page{
			Type:     model.PageScripture,
			Title:    ref,
			Subtitle: in.Translation,
			Text:     passage,
		})
	}

	for i, part := range SplitHalves(content.Body, opts.SplitThreshold) {
		p := model.Page{Type: model.PageContent, Title: "Teaching", Text: part}
		if i > 0 {
			p.Title += continuedSuffix
			p.Continued = true
		}
		pages = append(pages, p)
	}

	pages = append(pages,
		listPage("Key Takeaways", content.KeyTakeaways),
		listPage("Reflect", content.ReflectionPrompts),
	)
	for i, items := range SplitItems(content.DiscussionQuestions, opts.SplitThreshold) {
		p := listPage("Discuss", items)
		if i > 0 {
			p.Title += continuedSuffix
			p.Continued = true
		}
		pages = append(pages, p)
	}

	pages = append(pages, model.Page{
		Type:      model.PageCTA,
		Title:     "Keep going",
		Text:      "Take the quiz and continue with the next reading.",
		Link:      strings.TrimSpace(opts.FollowUpURL),
		LinkLabel: opts.FollowUpLabel,
	})

	m := model.Manifest{Version: ManifestVersion, Pages: pages}
	if err := Validate(m); err != nil {
		return model.Manifest{}, err
	}
	return m, nil
}

func listPage(title string, items []string) model.Page {
	out := make([]string, len(items))
	copy(out, items)
	return model.Page{Type: model.PageList, Title: title, Items: out}
}

// Validate checks the page rules of a manifest.
func Validate(m model.Manifest) error {
	if len(m.Pages) == 0 {
		return fmt.Errorf("%w: no pages", ErrInvalidManifest)
	}
	if m.Pages[0].Type != model.PageCover {
		return fmt.Errorf("%w: first page is %q, want cover", ErrInvalidManifest, m.Pages[0].Type)
	}
	if last := m.Pages[len(m.Pages)-1]; last.Type != model.PageCTA {
		return fmt.Errorf("%w: last page is %q, want cta", ErrInvalidManifest, last.Type)
	}
	for i, p := range m.Pages {
		if !model.ValidPageTypes[p.Type] {
			return fmt.Errorf("%w: page %d: unknown type %q", ErrInvalidManifest, i, p.Type)
		}
		switch p.Type {
		case model.PageList:
			if len(p.Items) == 0 {
				return fmt.Errorf("%w: page %d: empty list", ErrInvalidManifest, i)
			}
			for j, it := range p.Items {
				if strings.TrimSpace(it) == "" {
					return fmt.Errorf("%w: page %d: item %d is empty", ErrInvalidManifest, i, j)
				}
			}
		case model.PageCTA:
			if strings.TrimSpace(p.Link) == "" {
				return fmt.Errorf("%w: page %d: call to action has no link", ErrInvalidManifest, i)
			}
		default:
			if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Text) == "" {
				return fmt.Errorf("%w: page %d: %s page needs title and text", ErrInvalidManifest, i, p.Type)
			}
		}
	}
	return nil
}
