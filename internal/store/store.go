// Package store persists plans, the canonical lesson cache and item mappings in SQLite.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/rcliao/lessonforge/internal/model"
)

var (
	ErrLessonNotFound   = errors.New("lesson not found")
	ErrDuplicateLesson  = errors.New("lesson already exists for reference and translation")
	ErrItemNotFound     = errors.New("plan item not found")
	ErrPlanNotFound     = errors.New("plan not found")
	ErrMappingNotFound  = errors.New("mapping not found")
	ErrDuplicateItemSeq = errors.New("duplicate item sequence in plan")
)

// CreatePlanParams holds a plan and its items for insertion.
type CreatePlanParams struct {
	Title       string
	Translation string
	FollowUpURL string
	ThemeHint   string
	Items       []ItemParams
}

// ItemParams describes one scheduled item. A zero Seq takes its 1-based position.
// An empty Translation inherits the plan's.
type ItemParams struct {
	Seq         int
	References  []string
	Translation string
}

// CreateLessonParams holds the fields of a new canonical lesson. ID may be
// chosen by the caller so assets can be named before the row exists.
type CreateLessonParams struct {
	ID                 string
	CanonicalReference string
	Translation        string
	PassageText        string
	Content            model.Content
	Story              model.Manifest
	Audio              model.OptionalAudio
}

// ListLessonsParams filters lesson listings.
type ListLessonsParams struct {
	Translation  string
	MissingAudio bool
	Limit        int
}

// Counts is the persisted progress of a plan.
type Counts struct {
	Completed int
	Total     int
}

// Store is the persistence the generation pipeline depends on.
type Store interface {
	GetPlan(ctx context.Context, planID string) (*model.Plan, error)
	GetItem(ctx context.Context, itemID string) (*model.PlanItem, error)
	ListUnmappedItems(ctx context.Context, planID string, limit int) ([]model.PlanItem, error)
	PlanCounts(ctx context.Context, planID string) (Counts, error)

	// Resolve returns the active lesson for the key or ErrLessonNotFound.
	Resolve(ctx context.Context, canonicalReference, translation string) (*model.Lesson, error)
	// CreateLesson returns ErrDuplicateLesson when the key is already taken.
	CreateLesson(ctx context.Context, p CreateLessonParams) (*model.Lesson, error)
	GetLesson(ctx context.Context, idOrShareID string) (*model.Lesson, error)
	ListLessons(ctx context.Context, p ListLessonsParams) ([]model.Lesson, error)
	// AttachAudio sets audio only where it is absent and reports whether it did.
	AttachAudio(ctx context.Context, lessonID string, audio model.AudioManifest) (bool, error)

	GetMapping(ctx context.Context, itemID string) (*model.Mapping, error)
	// PublishItem writes the mapping and marks the item published atomically.
	// If a mapping already exists it is returned with existing=true.
	PublishItem(ctx context.Context, itemID, lessonID string, outcome model.Outcome) (m *model.Mapping, existing bool, err error)

	ClaimItem(ctx context.Context, itemID, owner string, ttl time.Duration) (bool, error)
	ReleaseItem(ctx context.Context, itemID, owner string) error

	Close() error
}
