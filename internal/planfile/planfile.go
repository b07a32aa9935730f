// Package planfile reads plan definitions from YAML or JSON files.
package planfile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/lessonforge/internal/scripture"
	"github.com/rcliao/lessonforge/internal/store"
)

// ErrInvalidPlan is returned for plan files that cannot produce a plan.
var ErrInvalidPlan = errors.New("invalid plan file")

// File is the on-disk plan shape. JSON is accepted too since it is valid YAML.
//
//	title: Gospel of John
//	translation: ESV
//	follow_up_url: https://example.org/john
//	items:
//	  - John 1:1-18
//	  - references: [John 3:16, John 3:17]
//	    translation: NIV
type File struct {
	Title       string `yaml:"title"`
	Translation string `yaml:"translation"`
	FollowUpURL string `yaml:"follow_up_url"`
	ThemeHint   string `yaml:"theme_hint"`
	Items       []Item `yaml:"items"`
}

// Item is one scheduled entry. It may be written as a bare reference string.
type Item struct {
	Seq         int      `yaml:"seq"`
	Reference   string   `yaml:"reference"`
	References  []string `yaml:"references"`
	Translation string   `yaml:"translation"`
}

func (i *Item) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var ref string
		if err := node.Decode(&ref); err != nil {
			return err
		}
		*i = Item{Reference: ref}
		return nil
	}
	type plain Item
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*i = Item(p)
	return nil
}

// Load reads and parses a plan file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}
	return Parse(data)
}

// Parse decodes plan file contents.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	return &f, nil
}

// Params normalizes references and translations and builds the store input.
// Every item must carry at least one reference.
func (f *File) Params() (store.CreatePlanParams, error) {
	p := store.CreatePlanParams{
		Title:       strings.TrimSpace(f.Title),
		Translation: scripture.NormalizeTranslation(f.Translation),
		FollowUpURL: strings.TrimSpace(f.FollowUpURL),
		ThemeHint:   strings.TrimSpace(f.ThemeHint),
	}
	if p.Title == "" {
		return p, fmt.Errorf("%w: title is required", ErrInvalidPlan)
	}
	if p.Translation == "" {
		return p, fmt.Errorf("%w: translation is required", ErrInvalidPlan)
	}
	if len(f.Items) == 0 {
		return p, fmt.Errorf("%w: no items", ErrInvalidPlan)
	}
	for n, it := range f.Items {
		raw := it.References
		if it.Reference != "" {
			raw = append([]string{it.Reference}, raw...)
		}
		// "John 1:1; John 1:2" in a single field counts as two references.
		var refs []string
		for _, r := range scripture.NormalizeList(raw) {
			refs = append(refs, strings.Split(r, scripture.ListSeparator)...)
		}
		if len(refs) == 0 {
			return p, fmt.Errorf("%w: item %d has no reference", ErrInvalidPlan, n+1)
		}
		p.Items = append(p.Items, store.ItemParams{
			Seq:         it.Seq,
			References:  refs,
			Translation: scripture.NormalizeTranslation(it.Translation),
		})
	}
	return p, nil
}
