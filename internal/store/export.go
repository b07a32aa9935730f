package store

import (
	"context"
	"errors"
	"strings"

	"github.com/rcliao/lessonforge/internal/model"
)

// ExportLessons returns all active lessons, optionally for one translation.
func (s *SQLiteStore) ExportLessons(ctx context.Context, translation string) ([]model.Lesson, error) {
	where := []string{"l.deleted_at IS NULL"}
	var args []any
	if translation != "" {
		where = append(where, "l.translation = ?")
		args = append(args, translation)
	}
	return s.queryLessons(ctx,
		`SELECT `+lessonColumns+` FROM lessons l WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY l.translation, l.canonical_reference`, args...)
}

// ImportLessons inserts lessons from an export, keeping their ids and share
// ids. Lessons whose key or id is already present are skipped.
func (s *SQLiteStore) ImportLessons(ctx context.Context, lessons []model.Lesson) (imported, skipped int, err error) {
	for _, l := range lessons {
		l := l
		if l.ID == "" {
			l.ID = newID()
		}
		if l.ShareID == "" {
			l.ShareID = newShareID()
		}
		if l.CreatedAt.IsZero() {
			l.CreatedAt = s.now().UTC()
		}
		if l.PublishedAt.IsZero() {
			l.PublishedAt = l.CreatedAt
		}
		err := s.insertLesson(ctx, &l)
		switch {
		case err == nil:
			imported++
		case errors.Is(err, ErrDuplicateLesson), isUniqueViolation(err, "lessons.id"), isUniqueViolation(err, "share_id"):
			skipped++
		default:
			return imported, skipped, err
		}
	}
	return imported, skipped, nil
}
