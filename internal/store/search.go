package store

import (
	"context"
	"strings"

	"github.com/rcliao/lessonforge/internal/model"
)

// SearchParams holds parameters for searching lessons.
type SearchParams struct {
	Query       string
	Translation string
	Limit       int
}

// SearchLessons finds active lessons whose reference, title, passage or body
// contains the query substring.
func (s *SQLiteStore) SearchLessons(ctx context.Context, p SearchParams) ([]model.Lesson, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}
	query := "%" + strings.TrimSpace(p.Query) + "%"

	where := []string{"l.deleted_at IS NULL"}
	var args []any
	if p.Translation != "" {
		where = append(where, "l.translation = ?")
		args = append(args, p.Translation)
	}
	where = append(where, `(l.canonical_reference LIKE ? OR l.passage_text LIKE ?
		OR json_extract(l.content, '$.title') LIKE ? OR json_extract(l.content, '$.body') LIKE ?)`)
	// Reference matches rank first.
	args = append(args, query, query, query, query, query, limit)

	return s.queryLessons(ctx,
		`SELECT `+lessonColumns+` FROM lessons l WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY (l.canonical_reference LIKE ?) DESC, l.created_at DESC LIMIT ?`, args...)
}
