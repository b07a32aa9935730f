package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rcliao/lessonforge/internal/model"
)

func TestCreateAndResolveLesson(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.Resolve(ctx, "John 3:16", "ESV"); !errors.Is(err, ErrLessonNotFound) {
		t.Fatalf("expected miss, got %v", err)
	}
	created, err := s.CreateLesson(ctx, testLessonParams("John 3:16"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ShareID == "" || created.ID == "" {
		t.Fatalf("expected ids, got %+v", created)
	}

	got, err := s.Resolve(ctx, "John 3:16", "ESV")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.ID != created.ID || got.Content.Title != "Loved" || len(got.Story.Pages) != 1 {
		t.Errorf("unexpected lesson %+v", got)
	}
	if got.Audio.Present() {
		t.Error("audio should be absent")
	}
	if _, err := s.Resolve(ctx, "John 3:16", "NIV"); !errors.Is(err, ErrLessonNotFound) {
		t.Errorf("translation is part of the key, got %v", err)
	}

	byShare, err := s.GetLesson(ctx, created.ShareID)
	if err != nil || byShare.ID != created.ID {
		t.Errorf("get by share id: %v %+v", err, byShare)
	}
}

func TestCreateLessonDuplicate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if _, err := s.CreateLesson(ctx, testLessonParams("John 3:16")); err != nil {
		t.Fatal(err)
	}
	_, err := s.CreateLesson(ctx, testLessonParams("John 3:16"))
	if !errors.Is(err, ErrDuplicateLesson) {
		t.Fatalf("expected ErrDuplicateLesson, got %v", err)
	}
}

func TestDeleteLessonFreesKey(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	first, _ := s.CreateLesson(ctx, testLessonParams("John 3:16"))
	if err := s.DeleteLesson(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetLesson(ctx, first.ID); !errors.Is(err, ErrLessonNotFound) {
		t.Errorf("deleted lesson still visible: %v", err)
	}
	second, err := s.CreateLesson(ctx, testLessonParams("John 3:16"))
	if err != nil {
		t.Fatalf("recreate after delete: %v", err)
	}
	if second.ID == first.ID {
		t.Error("expected a new lesson id")
	}
	if err := s.DeleteLesson(ctx, first.ID); !errors.Is(err, ErrLessonNotFound) {
		t.Errorf("double delete should miss, got %v", err)
	}
}

func TestAttachAudioOnlyWhenAbsent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	l, _ := s.CreateLesson(ctx, testLessonParams("John 3:16"))

	audio := model.AudioManifest{
		Pages:       []model.PageAudio{{PageIndex: 0, URL: "u", Path: "p", Voice: "alloy", DurationSeconds: 2, Bytes: 10, ContentHash: "h"}},
		GeneratedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	ok, err := s.AttachAudio(ctx, l.ID, audio)
	if err != nil || !ok {
		t.Fatalf("attach: %v %v", ok, err)
	}
	ok, err = s.AttachAudio(ctx, l.ID, model.AudioManifest{})
	if err != nil || ok {
		t.Fatalf("second attach must be a no-op: %v %v", ok, err)
	}

	got, _ := s.GetLesson(ctx, l.ID)
	m, present := got.Audio.Get()
	if !present || len(m.Pages) != 1 || m.Pages[0].Voice != "alloy" {
		t.Errorf("unexpected audio %+v", m)
	}

	missing, err := s.ListLessons(ctx, ListLessonsParams{MissingAudio: true})
	if err != nil || len(missing) != 0 {
		t.Errorf("expected no lessons missing audio, got %d %v", len(missing), err)
	}
}

func TestSearchLessons(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.CreateLesson(ctx, testLessonParams("John 3:16"))
	p := testLessonParams("Psalms 23")
	p.PassageText = "The Lord is my shepherd"
	p.Content.Title = "Shepherd"
	s.CreateLesson(ctx, p)

	got, err := s.SearchLessons(ctx, SearchParams{Query: "shepherd"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].CanonicalReference != "Psalms 23" {
		t.Errorf("unexpected results %+v", got)
	}
	got, _ = s.SearchLessons(ctx, SearchParams{Query: "John"})
	if len(got) != 1 {
		t.Errorf("expected reference match, got %d", len(got))
	}
}

func TestExportImportLessons(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t)
	src.CreateLesson(ctx, testLessonParams("John 3:16"))
	src.CreateLesson(ctx, testLessonParams("John 3:17"))
	exported, err := src.ExportLessons(ctx, "")
	if err != nil || len(exported) != 2 {
		t.Fatalf("export: %v %d", err, len(exported))
	}

	dst := newTestStore(t)
	dst.CreateLesson(ctx, testLessonParams("John 3:16"))
	imported, skipped, err := dst.ImportLessons(ctx, exported)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if imported != 1 || skipped != 1 {
		t.Errorf("imported=%d skipped=%d", imported, skipped)
	}
	got, err := dst.GetLesson(ctx, exported[1].ShareID)
	if err != nil || got.CanonicalReference != "John 3:17" {
		t.Errorf("share id not preserved: %v %+v", err, got)
	}
}
