package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/rcliao/lessonforge/internal/store"
)

// ErrNoNarrator is returned by BackfillAudio when audio is disabled.
var ErrNoNarrator = errors.New("narration is not configured")

// Populate calls GenerateBatch until the plan is done, maxRounds is reached
// (zero means unbounded) or a round publishes nothing new.
func (p *Pipeline) Populate(ctx context.Context, planID string, batchSize, maxRounds int) (Progress, error) {
	var (
		last    Progress
		results []ItemResult
	)
	for round := 1; maxRounds <= 0 || round <= maxRounds; round++ {
		if err := ctx.Err(); err != nil {
			last.Results = results
			return last, err
		}
		prog, err := p.GenerateBatch(ctx, planID, batchSize)
		if err != nil {
			last.Results = results
			return last, err
		}
		results = append(results, prog.Results...)
		progressed := round == 1 || prog.Completed > last.Completed
		last = prog
		if prog.Done {
			break
		}
		if !progressed || len(prog.Results) == 0 {
			p.log.Warn("populate stalled", "plan_id", planID, "round", round, "remaining", prog.Remaining)
			break
		}
	}
	last.Results = results
	return last, nil
}

// BackfillResult reports one lesson touched by BackfillAudio.
type BackfillResult struct {
	LessonID  string `json:"lesson_id"`
	Reference string `json:"reference"`
	Attached  bool   `json:"attached"`
	Error     string `json:"error,omitempty"`
}

// BackfillAudio narrates up to limit lessons whose audio is absent and
// attaches the result. Lessons that gained audio meanwhile are left alone.
func (p *Pipeline) BackfillAudio(ctx context.Context, translation string, limit int) ([]BackfillResult, error) {
	if p.narrator == nil {
		return nil, ErrNoNarrator
	}
	lessons, err := p.store.ListLessons(ctx, store.ListLessonsParams{
		Translation:  translation,
		MissingAudio: true,
		Limit:        limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	results := make([]BackfillResult, 0, len(lessons))
	for _, l := range lessons {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := BackfillResult{LessonID: l.ID, Reference: l.CanonicalReference}
		log := p.log.With("lesson_id", l.ID, "reference", l.CanonicalReference)
		audio, err := p.narrator.Narrate(ctx, l.ID, l.Story)
		if err != nil {
			res.Error = err.Error()
			log.Warn("backfill narration failed", "error", err)
			results = append(results, res)
			continue
		}
		attached, err := p.store.AttachAudio(ctx, l.ID, audio)
		if err != nil {
			return results, fmt.Errorf("attach audio %s: %w", l.ID, err)
		}
		res.Attached = attached
		log.Info("audio backfilled", "attached", attached, "pages", len(audio.Pages))
		results = append(results, res)
	}
	return results, nil
}
