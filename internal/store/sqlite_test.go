package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rcliao/lessonforge/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestPlan(t *testing.T, s *SQLiteStore, refs ...string) (*model.Plan, []model.PlanItem) {
	t.Helper()
	var items []ItemParams
	for _, r := range refs {
		items = append(items, ItemParams{References: []string{r}})
	}
	plan, created, err := s.CreatePlan(context.Background(), CreatePlanParams{
		Title: "Gospel of John", Translation: "ESV", FollowUpURL: "https://example.org/next", Items: items,
	})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	return plan, created
}

func testLessonParams(ref string) CreateLessonParams {
	return CreateLessonParams{
		CanonicalReference: ref,
		Translation:        "ESV",
		PassageText:        "For God so loved the world",
		Content:            model.Content{Title: "Loved", Preview: "p", Body: "b"},
		Story:              model.Manifest{Version: 1, Pages: []model.Page{{Type: model.PageCover, Title: "Loved"}}},
		Audio:              model.NoAudio(),
	}
}

func TestCreatePlanAndItems(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	plan, items := createTestPlan(t, s, "John 1:1", "John 1:2", "John 1:3")

	if len(items) != 3 || items[2].Seq != 3 || items[0].Translation != "ESV" {
		t.Fatalf("unexpected items %+v", items)
	}
	got, err := s.GetPlan(ctx, plan.ID)
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	if got.Title != "Gospel of John" || got.FollowUpURL != "https://example.org/next" {
		t.Errorf("unexpected plan %+v", got)
	}
	listed, err := s.ListItems(ctx, plan.ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(listed) != 3 || listed[1].References[0] != "John 1:2" || listed[1].Status != model.StatusPending {
		t.Errorf("unexpected listed items %+v", listed)
	}
	plans, err := s.ListPlans(ctx)
	if err != nil || len(plans) != 1 {
		t.Fatalf("list plans: %v %v", plans, err)
	}
}

func TestCreatePlanRejectsDuplicateSeq(t *testing.T) {
	s := newTestStore(t)
	_, _, err := s.CreatePlan(context.Background(), CreatePlanParams{
		Title: "Dup", Translation: "ESV",
		Items: []ItemParams{{Seq: 1, References: []string{"John 1:1"}}, {Seq: 1, References: []string{"John 1:2"}}},
	})
	if !errors.Is(err, ErrDuplicateItemSeq) {
		t.Fatalf("expected ErrDuplicateItemSeq, got %v", err)
	}
	plans, _ := s.ListPlans(context.Background())
	if len(plans) != 0 {
		t.Errorf("failed import must not leave a plan behind")
	}
}

func TestGetMissing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if _, err := s.GetPlan(ctx, "nope"); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("expected ErrPlanNotFound, got %v", err)
	}
	if _, err := s.GetItem(ctx, "nope"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
	if _, err := s.PlanCounts(ctx, "nope"); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("expected ErrPlanNotFound from counts, got %v", err)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, items := createTestPlan(t, s, "John 1:1", "John 1:2")
	l, err := s.CreateLesson(ctx, testLessonParams("John 1:1"))
	if err != nil {
		t.Fatal(err)
	}
	s.PublishItem(ctx, items[0].ID, l.ID, model.OutcomeCreated)
	s.PublishItem(ctx, items[1].ID, l.ID, model.OutcomeReused)

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Plans != 1 || st.Items != 2 || st.PublishedItems != 2 || st.Lessons != 1 || st.Mappings != 2 {
		t.Errorf("unexpected stats %+v", st)
	}
	if st.ReuseRatio != 0.5 {
		t.Errorf("reuse ratio = %v", st.ReuseRatio)
	}
	if len(st.PlanStats) != 1 || st.PlanStats[0].Completed != 2 {
		t.Errorf("unexpected plan stats %+v", st.PlanStats)
	}
	if st.DBPath != s.Path() {
		t.Errorf("db path = %q", st.DBPath)
	}
}
