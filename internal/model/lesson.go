// Package model defines the core lesson pipeline data types.
package model

import "time"

// ItemStatus is the fulfillment state of a plan item.
type ItemStatus string

const (
	StatusPending   ItemStatus = "pending"
	StatusPublished ItemStatus = "published"
)

// Outcome tags how a single item generation resolved.
type Outcome string

const (
	OutcomeReused  Outcome = "reused"
	OutcomeCreated Outcome = "created"
	OutcomeError   Outcome = "error"
	// OutcomeSkipped marks an item leased by another worker.
	OutcomeSkipped Outcome = "skipped"
)

// ValidStatuses are the allowed plan item statuses.
var ValidStatuses = map[ItemStatus]bool{
	StatusPending:   true,
	StatusPublished: true,
}

// Lesson is the canonical, shared artifact produced for one
// (canonical reference, translation) pair.
type Lesson struct {
	ID                 string        `json:"id"`
	CanonicalReference string        `json:"canonical_reference"`
	Translation        string        `json:"translation"`
	PassageText        string        `json:"passage_text"`
	Content            Content       `json:"content"`
	Story              Manifest      `json:"story"`
	Audio              OptionalAudio `json:"audio"`
	ShareID            string        `json:"share_id"`
	PublishedAt        time.Time     `json:"published_at"`
	CreatedAt          time.Time     `json:"created_at"`
	DeletedAt          *time.Time    `json:"deleted_at,omitempty"`
}

// Plan groups scheduled items that are generated together.
type Plan struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Translation string    `json:"translation"`
	FollowUpURL string    `json:"follow_up_url,omitempty"`
	ThemeHint   string    `json:"theme_hint,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// PlanItem is one scheduled occurrence of a passage within a plan.
type PlanItem struct {
	ID          string     `json:"id"`
	PlanID      string     `json:"plan_id"`
	Seq         int        `json:"seq"`
	References  []string   `json:"references"`
	Translation string     `json:"translation"`
	Status      ItemStatus `json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Mapping links a plan item to the lesson that fulfills it.
type Mapping struct {
	ItemID    string    `json:"item_id"`
	LessonID  string    `json:"lesson_id"`
	Outcome   Outcome   `json:"outcome"`
	CreatedAt time.Time `json:"created_at"`
}
