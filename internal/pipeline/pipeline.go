// Package pipeline turns plan items into published canonical lessons.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rcliao/lessonforge/internal/generator"
	"github.com/rcliao/lessonforge/internal/logging"
	"github.com/rcliao/lessonforge/internal/model"
	"github.com/rcliao/lessonforge/internal/scripture"
	"github.com/rcliao/lessonforge/internal/store"
	"github.com/rcliao/lessonforge/internal/story"
)

// Narrator produces audio for a compiled story.
type Narrator interface {
	Narrate(ctx context.Context, lessonID string, m model.Manifest) (model.AudioManifest, error)
}

// Options tunes batch execution.
type Options struct {
	// Concurrency above 1 processes batch items in parallel.
	Concurrency int
	// LeaseTTL above zero claims each item before work so parallel
	// drivers skip each other's items.
	LeaseTTL time.Duration
	WorkerID string
	// FollowUpURL is used when a plan has none of its own.
	FollowUpURL    string
	SplitThreshold int
}

// ItemResult reports what happened to one item.
type ItemResult struct {
	ItemID    string        `json:"item_id"`
	Seq       int           `json:"seq"`
	Outcome   model.Outcome `json:"outcome"`
	LessonID  string        `json:"lesson_id,omitempty"`
	Existing  bool          `json:"existing,omitempty"`
	Error     string        `json:"error,omitempty"`
	ErrorKind string        `json:"error_kind,omitempty"`
}

// Progress is derived from persisted mappings after a run.
type Progress struct {
	PlanID    string       `json:"plan_id"`
	Completed int          `json:"completed"`
	Total     int          `json:"total"`
	Remaining int          `json:"remaining"`
	Done      bool         `json:"done"`
	Results   []ItemResult `json:"results"`
}

// Pipeline wires the passage provider, lesson cache, generator, compiler and
// narrator together.
type Pipeline struct {
	store     store.Store
	provider  scripture.Provider
	generator generator.Generator
	narrator  Narrator
	log       *logging.Logger
	opts      Options
}

// New builds a pipeline. A nil narrator disables audio; a nil logger discards logs.
func New(st store.Store, provider scripture.Provider, gen generator.Generator, narrator Narrator, log *logging.Logger, opts Options) *Pipeline {
	if log == nil {
		log = logging.NewNop()
	}
	if opts.WorkerID == "" {
		opts.WorkerID = store.NewLessonID()
	}
	return &Pipeline{
		store:     st,
		provider:  provider,
		generator: gen,
		narrator:  narrator,
		log:       log,
		opts:      opts,
	}
}

// GenerateOne processes a single item and reports its plan's progress.
func (p *Pipeline) GenerateOne(ctx context.Context, itemID string) (Progress, error) {
	item, err := p.store.GetItem(ctx, itemID)
	if err != nil {
		return Progress{}, err
	}
	plan, err := p.store.GetPlan(ctx, item.PlanID)
	if err != nil {
		return Progress{}, err
	}
	res := p.processItem(ctx, plan, *item)
	return p.progress(ctx, plan.ID, []ItemResult{res})
}

// GenerateBatch processes up to batchSize unmapped items of a plan in
// ascending sequence. Item failures are reported in the results and never
// abort the batch.
func (p *Pipeline) GenerateBatch(ctx context.Context, planID string, batchSize int) (Progress, error) {
	if batchSize <= 0 {
		return Progress{}, fmt.Errorf("generate batch: batch size must be positive, got %d", batchSize)
	}
	plan, err := p.store.GetPlan(ctx, planID)
	if err != nil {
		return Progress{}, err
	}
	items, err := p.store.ListUnmappedItems(ctx, planID, batchSize)
	if err != nil {
		return Progress{}, fmt.Errorf("list unmapped items: %w", err)
	}

	log := p.log.With("plan_id", planID)
	log.Info("batch started", "batch_size", batchSize, "items", len(items), "concurrency", p.opts.Concurrency)

	results := make([]ItemResult, len(items))
	if p.opts.Concurrency <= 1 {
		for i, it := range items {
			if ctx.Err() != nil {
				break
			}
			results[i] = p.processItem(ctx, plan, it)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(p.opts.Concurrency)
		for i, it := range items {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				results[i] = p.processItem(ctx, plan, it)
				return nil
			})
		}
		_ = g.Wait()
	}

	ran := results[:0]
	for _, r := range results {
		if r.ItemID != "" {
			ran = append(ran, r)
		}
	}
	progress, err := p.progress(ctx, planID, ran)
	if err != nil {
		return progress, err
	}
	log.Info("batch finished", "completed", progress.Completed, "total", progress.Total, "remaining", progress.Remaining)
	return progress, nil
}

// GenerateNextPending processes the lowest-sequence unmapped item.
func (p *Pipeline) GenerateNextPending(ctx context.Context, planID string) (Progress, error) {
	return p.GenerateBatch(ctx, planID, 1)
}

func (p *Pipeline) progress(ctx context.Context, planID string, results []ItemResult) (Progress, error) {
	c, err := p.store.PlanCounts(ctx, planID)
	if err != nil {
		return Progress{}, fmt.Errorf("plan counts: %w", err)
	}
	if results == nil {
		results = []ItemResult{}
	}
	return Progress{
		PlanID:    planID,
		Completed: c.Completed,
		Total:     c.Total,
		Remaining: c.Total - c.Completed,
		Done:      c.Completed == c.Total,
		Results:   results,
	}, nil
}

func (p *Pipeline) processItem(ctx context.Context, plan *model.Plan, item model.PlanItem) ItemResult {
	res := ItemResult{ItemID: item.ID, Seq: item.Seq}
	log := p.log.With("item_id", item.ID, "plan_id", item.PlanID, "seq", item.Seq)

	fail := func(err error) ItemResult {
		res.Outcome = model.OutcomeError
		res.Error = err.Error()
		res.ErrorKind = ErrorKind(err)
		log.Warn("item failed", "error", err, "kind", res.ErrorKind)
		return res
	}

	if m, err := p.store.GetMapping(ctx, item.ID); err == nil {
		res.Outcome, res.LessonID, res.Existing = m.Outcome, m.LessonID, true
		return res
	} else if !errors.Is(err, store.ErrMappingNotFound) {
		return fail(fmt.Errorf("read mapping: %w", err))
	}

	if p.opts.LeaseTTL > 0 {
		ok, err := p.store.ClaimItem(ctx, item.ID, p.opts.WorkerID, p.opts.LeaseTTL)
		if err != nil {
			return fail(err)
		}
		if !ok {
			res.Outcome = model.OutcomeSkipped
			log.Info("item leased by another worker")
			return res
		}
		defer func() {
			if res.Outcome == model.OutcomeError {
				// Publishing clears the lease; only failures need a release.
				_ = p.store.ReleaseItem(context.WithoutCancel(ctx), item.ID, p.opts.WorkerID)
			}
		}()
	}

	translation := scripture.NormalizeTranslation(item.Translation)
	canonical, passage, err := p.resolvePassage(ctx, item.References, translation)
	if err != nil {
		return fail(err)
	}
	log = log.With("reference", canonical, "translation", translation)
	log.Debug("passage resolved")

	lesson, outcome, err := p.resolveOrCreate(ctx, log, plan, item, canonical, translation, passage)
	if err != nil {
		return fail(err)
	}

	m, existing, err := p.store.PublishItem(ctx, item.ID, lesson.ID, outcome)
	if err != nil {
		return fail(fmt.Errorf("publish item: %w", err))
	}
	res.Outcome, res.LessonID, res.Existing = m.Outcome, m.LessonID, existing
	log.Info("item published", "lesson_id", m.LessonID, "outcome", m.Outcome, "existing", existing)
	return res
}

// resolvePassage resolves every reference and builds the cache key from the
// normalized provider canonicals.
func (p *Pipeline) resolvePassage(ctx context.Context, refs []string, translation string) (string, string, error) {
	if len(refs) == 0 {
		return "", "", fmt.Errorf("resolve passage: %w: item has no references", scripture.ErrNotFound)
	}
	canonicals := make([]string, 0, len(refs))
	texts := make([]string, 0, len(refs))
	for _, ref := range refs {
		passage, err := p.provider.GetPassage(ctx, ref, translation)
		if err != nil {
			return "", "", err
		}
		canonicals = append(canonicals, scripture.Normalize(passage.CanonicalReference))
		texts = append(texts, strings.TrimSpace(passage.Text))
	}
	return strings.Join(canonicals, scripture.ListSeparator), strings.Join(texts, "\n\n"), nil
}

func (p *Pipeline) resolveOrCreate(ctx context.Context, log *logging.Logger, plan *model.Plan, item model.PlanItem, canonical, translation, passage string) (*model.Lesson, model.Outcome, error) {
	lesson, err := p.store.Resolve(ctx, canonical, translation)
	if err == nil {
		log.Debug("cache hit", "lesson_id", lesson.ID)
		return lesson, model.OutcomeReused, nil
	}
	if !errors.Is(err, store.ErrLessonNotFound) {
		return nil, "", fmt.Errorf("resolve lesson: %w", err)
	}

	content, err := p.generator.Generate(ctx, generator.Request{
		Translation: translation,
		References:  strings.Split(canonical, scripture.ListSeparator),
		PassageText: passage,
		ThemeHint:   plan.ThemeHint,
	})
	if err != nil {
		return nil, "", err
	}

	opts := story.DefaultOptions()
	if p.opts.SplitThreshold > 0 {
		opts.SplitThreshold = p.opts.SplitThreshold
	}
	opts.FollowUpURL = plan.FollowUpURL
	if opts.FollowUpURL == "" {
		opts.FollowUpURL = p.opts.FollowUpURL
	}
	manifest, err := story.Compile(content, story.Input{Reference: canonical, Translation: translation, PassageText: passage}, opts)
	if err != nil {
		return nil, "", fmt.Errorf("compile story: %w", err)
	}

	lessonID := store.NewLessonID()
	audio := p.narrate(ctx, log, lessonID, manifest)

	created, err := p.store.CreateLesson(ctx, store.CreateLessonParams{
		ID:                 lessonID,
		CanonicalReference: canonical,
		Translation:        translation,
		PassageText:        passage,
		Content:            content,
		Story:              manifest,
		Audio:              audio,
	})
	if errors.Is(err, store.ErrDuplicateLesson) {
		// Another worker won the race for this key; use its lesson.
		winner, rerr := p.store.Resolve(ctx, canonical, translation)
		if rerr != nil {
			return nil, "", fmt.Errorf("re-resolve after duplicate: %w", rerr)
		}
		log.Info("lost creation race, reusing lesson", "lesson_id", winner.ID)
		return winner, model.OutcomeReused, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("create lesson: %w", err)
	}
	log.Info("lesson created", "lesson_id", created.ID, "audio", audio.Present())
	return created, model.OutcomeCreated, nil
}

func (p *Pipeline) narrate(ctx context.Context, log *logging.Logger, lessonID string, m model.Manifest) model.OptionalAudio {
	if p.narrator == nil {
		return model.NoAudio()
	}
	audio, err := p.narrator.Narrate(ctx, lessonID, m)
	if err != nil {
		log.Warn("narration failed, publishing without audio", "lesson_id", lessonID, "error", err)
		return model.NoAudio()
	}
	return model.SomeAudio(audio)
}
