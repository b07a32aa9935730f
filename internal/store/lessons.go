package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rcliao/lessonforge/internal/model"
)

const lessonColumns = `l.id, l.canonical_reference, l.translation, l.passage_text, l.content, l.story, l.audio,
	l.share_id, l.published_at, l.created_at, l.deleted_at`

func (s *SQLiteStore) Resolve(ctx context.Context, canonicalReference, translation string) (*model.Lesson, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+lessonColumns+` FROM lessons l
		 WHERE l.canonical_reference = ? AND l.translation = ? AND l.deleted_at IS NULL`,
		canonicalReference, translation)
	l, err := scanLesson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s (%s)", ErrLessonNotFound, canonicalReference, translation)
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *SQLiteStore) CreateLesson(ctx context.Context, p CreateLessonParams) (*model.Lesson, error) {
	ref := strings.TrimSpace(p.CanonicalReference)
	if ref == "" || strings.TrimSpace(p.Translation) == "" {
		return nil, errors.New("create lesson: canonical reference and translation required")
	}
	id := strings.TrimSpace(p.ID)
	if id == "" {
		id = NewLessonID()
	}
	now := s.timestamp()
	l := &model.Lesson{
		ID:                 id,
		CanonicalReference: ref,
		Translation:        p.Translation,
		PassageText:        p.PassageText,
		Content:            p.Content,
		Story:              p.Story,
		Audio:              p.Audio,
		ShareID:            newShareID(),
		PublishedAt:        parseTime(now),
		CreatedAt:          parseTime(now),
	}
	if err := s.insertLesson(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// NewLessonID returns a fresh lesson id.
func NewLessonID() string {
	return newID()
}

func newShareID() string {
	return uuid.NewString()
}

func (s *SQLiteStore) insertLesson(ctx context.Context, l *model.Lesson) error {
	content, err := json.Marshal(l.Content)
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}
	story, err := json.Marshal(l.Story)
	if err != nil {
		return fmt.Errorf("encode story: %w", err)
	}
	audio, err := encodeAudio(l.Audio)
	if err != nil {
		return err
	}
	_, err = s.exec(ctx,
		`INSERT INTO lessons (id, canonical_reference, translation, passage_text, content, story, audio,
		                      share_id, published_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.CanonicalReference, l.Translation, l.PassageText, string(content), string(story), audio,
		l.ShareID, l.PublishedAt.UTC().Format(timeLayout), l.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		if isUniqueViolation(err, "canonical_reference") {
			return fmt.Errorf("%w: %s (%s)", ErrDuplicateLesson, l.CanonicalReference, l.Translation)
		}
		return fmt.Errorf("insert lesson: %w", err)
	}
	return nil
}

// GetLesson finds an active lesson by id or public share id.
func (s *SQLiteStore) GetLesson(ctx context.Context, idOrShareID string) (*model.Lesson, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+lessonColumns+` FROM lessons l
		 WHERE (l.id = ? OR l.share_id = ?) AND l.deleted_at IS NULL`, idOrShareID, idOrShareID)
	l, err := scanLesson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrLessonNotFound, idOrShareID)
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *SQLiteStore) ListLessons(ctx context.Context, p ListLessonsParams) ([]model.Lesson, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}
	where := []string{"l.deleted_at IS NULL"}
	var args []any
	if p.Translation != "" {
		where = append(where, "l.translation = ?")
		args = append(args, p.Translation)
	}
	if p.MissingAudio {
		where = append(where, "l.audio IS NULL")
	}
	args = append(args, limit)
	return s.queryLessons(ctx,
		`SELECT `+lessonColumns+` FROM lessons l WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY l.created_at DESC, l.id DESC LIMIT ?`, args...)
}

func (s *SQLiteStore) AttachAudio(ctx context.Context, lessonID string, audio model.AudioManifest) (bool, error) {
	encoded, err := json.Marshal(audio)
	if err != nil {
		return false, fmt.Errorf("encode audio: %w", err)
	}
	res, err := s.exec(ctx,
		`UPDATE lessons SET audio = ? WHERE id = ? AND audio IS NULL AND deleted_at IS NULL`,
		string(encoded), lessonID)
	if err != nil {
		return false, fmt.Errorf("attach audio: %w", err)
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// DeleteLesson soft-deletes a lesson, freeing its cache key. Existing
// mappings keep pointing at it.
func (s *SQLiteStore) DeleteLesson(ctx context.Context, lessonID string) error {
	res, err := s.exec(ctx,
		`UPDATE lessons SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, s.timestamp(), lessonID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrLessonNotFound, lessonID)
	}
	return nil
}

func (s *SQLiteStore) queryLessons(ctx context.Context, query string, args ...any) ([]model.Lesson, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lessons []model.Lesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

func encodeAudio(a model.OptionalAudio) (any, error) {
	m, ok := a.Get()
	if !ok {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode audio: %w", err)
	}
	return string(b), nil
}

func scanLesson(row scanner) (model.Lesson, error) {
	var l model.Lesson
	var content, story, publishedAt, createdAt string
	var audio, deletedAt sql.NullString
	err := row.Scan(&l.ID, &l.CanonicalReference, &l.Translation, &l.PassageText, &content, &story, &audio,
		&l.ShareID, &publishedAt, &createdAt, &deletedAt)
	if err != nil {
		return l, err
	}
	if err := json.Unmarshal([]byte(content), &l.Content); err != nil {
		return l, fmt.Errorf("decode content of lesson %s: %w", l.ID, err)
	}
	if err := json.Unmarshal([]byte(story), &l.Story); err != nil {
		return l, fmt.Errorf("decode story of lesson %s: %w", l.ID, err)
	}
	l.Audio = model.NoAudio()
	if audio.Valid && audio.String != "" {
		var m model.AudioManifest
		if err := json.Unmarshal([]byte(audio.String), &m); err != nil {
			return l, fmt.Errorf("decode audio of lesson %s: %w", l.ID, err)
		}
		l.Audio = model.SomeAudio(m)
	}
	l.PublishedAt = parseTime(publishedAt)
	l.CreatedAt = parseTime(createdAt)
	l.DeletedAt = parseNullTime(deletedAt)
	return l, nil
}
