package narration

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rcliao/lessonforge/internal/model"
)

type fakeSynth struct {
	failOn string
	calls  []string
}

func (f *fakeSynth) Synthesize(_ context.Context, voice, text string) ([]byte, error) {
	f.calls = append(f.calls, voice)
	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return nil, errors.New("tts down")
	}
	return make([]byte, 8000), nil
}

type memAssets struct {
	mu   sync.Mutex
	puts map[string][]byte
}

func (m *memAssets) Put(_ context.Context, path string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.puts == nil {
		m.puts = map[string][]byte{}
	}
	m.puts[path] = data
	return "https://cdn.test/" + path, nil
}

func testManifest() model.Manifest {
	return model.Manifest{Version: 1, Pages: []model.Page{
		{Type: model.PageCover, Title: "Loved First", Subtitle: "John 3:16 · ESV", Text: "Preview."},
		{Type: model.PageScripture, Title: "John 3:16", Text: "[16] For God so loved the world."},
		{Type: model.PageList, Title: "Notes:", Items: []string{"Heading:"}},
		{Type: model.PageCTA, Title: "Keep going", Link: "/next"},
	}}
}

func newTestNarrator(s Synthesizer, a *memAssets) *Narrator {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &Narrator{
		Synth:  s,
		Assets: a,
		Voices: Voices{Default: "alloy", Quoted: "onyx"},
		Now:    func() time.Time { return fixed },
	}
}

func TestNarrate(t *testing.T) {
	synth := &fakeSynth{}
	store := &memAssets{}
	audio, err := newTestNarrator(synth, store).Narrate(context.Background(), "L1", testManifest())
	if err != nil {
		t.Fatalf("Narrate: %v", err)
	}
	// Page 2 only has a header line and is skipped.
	if len(audio.Pages) != 3 {
		t.Fatalf("expected 3 narrated pages, got %d", len(audio.Pages))
	}
	scripture := audio.Pages[1]
	if scripture.PageIndex != 1 || scripture.Voice != "onyx" {
		t.Errorf("scripture page should use quoted voice: %+v", scripture)
	}
	if audio.Pages[0].Voice != "alloy" {
		t.Errorf("cover voice = %q", audio.Pages[0].Voice)
	}
	if scripture.Path != "lessons/L1/page-01.mp3" || scripture.URL != "https://cdn.test/lessons/L1/page-01.mp3" {
		t.Errorf("unexpected asset location %+v", scripture)
	}
	if scripture.ContentHash != ContentHash("John 3:16. For God so loved the world.") {
		t.Errorf("hash does not match narrated text")
	}
	if scripture.Bytes != 8000 || scripture.DurationSeconds != 1 {
		t.Errorf("unexpected size/duration %+v", scripture)
	}
	if audio.Pages[2].PageIndex != 3 {
		t.Errorf("cta page index = %d", audio.Pages[2].PageIndex)
	}
	if len(store.puts) != 3 {
		t.Errorf("expected 3 stored assets, got %d", len(store.puts))
	}
	if !audio.GeneratedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Errorf("generated_at = %v", audio.GeneratedAt)
	}
}

func TestNarrateFailsWholeManifest(t *testing.T) {
	synth := &fakeSynth{failOn: "loved the world"}
	_, err := newTestNarrator(synth, &memAssets{}).Narrate(context.Background(), "L1", testManifest())
	if !errors.Is(err, ErrSynthesisFailed) {
		t.Fatalf("expected ErrSynthesisFailed, got %v", err)
	}
}

func TestEstimateDuration(t *testing.T) {
	if d := EstimateDuration(16000, "", 64); d != 2 {
		t.Errorf("bytes estimate = %v", d)
	}
	if d := EstimateDuration(0, strings.Repeat("word ", 150), 0); d != 60 {
		t.Errorf("word estimate = %v", d)
	}
}

func TestAssetPath(t *testing.T) {
	if p := AssetPath("abc", 7); p != "lessons/abc/page-07.mp3" {
		t.Errorf("AssetPath = %q", p)
	}
}
