package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
)

// RefChange is one stored reference whose normalized form differs.
type RefChange struct {
	ID          string   `json:"id"`
	Translation string   `json:"translation"`
	Before      []string `json:"before"`
	After       []string `json:"after"`
}

// Collision is a lesson whose normalized key is already held by another lesson.
type Collision struct {
	LessonID        string `json:"lesson_id"`
	ConflictsWith   string `json:"conflicts_with"`
	CanonicalBefore string `json:"canonical_before"`
	CanonicalAfter  string `json:"canonical_after"`
	Translation     string `json:"translation"`
}

// RepairReport summarizes a reference repair pass.
type RepairReport struct {
	Applied        bool        `json:"applied"`
	ItemsChecked   int         `json:"items_checked"`
	ItemChanges    []RefChange `json:"item_changes"`
	LessonsChecked int         `json:"lessons_checked"`
	LessonChanges  []RefChange `json:"lesson_changes"`
	Collisions     []Collision `json:"collisions"`
}

// RepairReferences re-normalizes stored item references and lesson keys with
// normalize. Lessons whose new key is taken are reported, never merged. When
// apply is false nothing is written.
func (s *SQLiteStore) RepairReferences(ctx context.Context, normalize func(string) string, apply bool) (*RepairReport, error) {
	report := &RepairReport{Applied: apply}

	items, err := s.queryItems(ctx, `SELECT `+itemColumns+` FROM plan_items i ORDER BY i.plan_id, i.seq`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	for _, it := range items {
		report.ItemsChecked++
		after := make([]string, 0, len(it.References))
		for _, r := range it.References {
			if n := normalize(r); n != "" {
				after = append(after, n)
			}
		}
		if slices.Equal(after, it.References) || len(after) == 0 {
			continue
		}
		report.ItemChanges = append(report.ItemChanges, RefChange{
			ID: it.ID, Translation: it.Translation, Before: it.References, After: after,
		})
	}

	lessons, err := s.ExportLessons(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	taken := map[string]string{}
	for _, l := range lessons {
		taken[l.Translation+"\x00"+l.CanonicalReference] = l.ID
	}
	for _, l := range lessons {
		report.LessonsChecked++
		after := normalize(l.CanonicalReference)
		if after == "" || after == l.CanonicalReference {
			continue
		}
		key := l.Translation + "\x00" + after
		if other, ok := taken[key]; ok && other != l.ID {
			report.Collisions = append(report.Collisions, Collision{
				LessonID: l.ID, ConflictsWith: other,
				CanonicalBefore: l.CanonicalReference, CanonicalAfter: after, Translation: l.Translation,
			})
			continue
		}
		delete(taken, l.Translation+"\x00"+l.CanonicalReference)
		taken[key] = l.ID
		report.LessonChanges = append(report.LessonChanges, RefChange{
			ID: l.ID, Translation: l.Translation, Before: []string{l.CanonicalReference}, After: []string{after},
		})
	}

	if !apply {
		return report, nil
	}
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		for _, c := range report.ItemChanges {
			refs, _ := json.Marshal(c.After)
			if _, err := tx.ExecContext(ctx, `UPDATE plan_items SET refs = ? WHERE id = ?`, string(refs), c.ID); err != nil {
				return fmt.Errorf("update item %s: %w", c.ID, err)
			}
		}
		for _, c := range report.LessonChanges {
			if _, err := tx.ExecContext(ctx,
				`UPDATE lessons SET canonical_reference = ? WHERE id = ?`, c.After[0], c.ID); err != nil {
				return fmt.Errorf("update lesson %s: %w", c.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
