package assets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCleanPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"lessons/abc/page-01.mp3", "lessons/abc/page-01.mp3", true},
		{"/lessons//abc/./page-01.mp3", "lessons/abc/page-01.mp3", true},
		{"", "", false},
		{"../etc/passwd", "", false},
		{"lessons/../../x", "", false},
		{"/", "", false},
	}
	for _, tt := range tests {
		got, err := CleanPath(tt.in)
		if tt.ok {
			if err != nil || got != tt.want {
				t.Errorf("CleanPath(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidPath) {
			t.Errorf("CleanPath(%q) expected ErrInvalidPath, got %q %v", tt.in, got, err)
		}
	}
}

func TestContentTypeForKey(t *testing.T) {
	if ct := ContentTypeForKey("lessons/x/page-01.MP3"); ct != "audio/mpeg" {
		t.Errorf("mp3 content type = %q", ct)
	}
	if ct := ContentTypeForKey("blob"); ct != "application/octet-stream" {
		t.Errorf("default content type = %q", ct)
	}
}

func TestLocalStorePutOverwrites(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStore(dir, "https://cdn.example.org/media/")
	ctx := context.Background()

	url, err := s.Put(ctx, "lessons/abc/page-01.mp3", []byte("first"), "audio/mpeg")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "https://cdn.example.org/media/lessons/abc/page-01.mp3" {
		t.Errorf("url = %q", url)
	}
	if _, err := s.Put(ctx, "lessons/abc/page-01.mp3", []byte("second"), "audio/mpeg"); err != nil {
		t.Fatalf("second Put: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "lessons", "abc", "page-01.mp3"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second" {
		t.Errorf("expected overwrite, got %q", data)
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "lessons", "abc"))
	if len(entries) != 1 {
		t.Errorf("expected no temp files left, got %d entries", len(entries))
	}
}

func TestLocalStoreFileURLWithoutBase(t *testing.T) {
	dir := t.TempDir()
	url, err := NewLocalStore(dir, "").Put(context.Background(), "a.mp3", []byte("x"), "")
	if err != nil {
		t.Fatal(err)
	}
	if url != "file://"+filepath.ToSlash(filepath.Join(dir, "a.mp3")) {
		t.Errorf("url = %q", url)
	}
}

func TestGCSPublicURL(t *testing.T) {
	s := &GCSStore{cfg: GCSConfig{Bucket: "media", Prefix: "/prod/"}}
	if got := s.PublicURL("lessons/a/page-01.mp3"); got != "https://storage.googleapis.com/media/prod/lessons/a/page-01.mp3" {
		t.Errorf("default url = %q", got)
	}
	s.cfg.PublicBaseURL = "https://cdn.example.org"
	if got := s.PublicURL("/lessons/a/page-01.mp3"); got != "https://cdn.example.org/prod/lessons/a/page-01.mp3" {
		t.Errorf("cdn url = %q", got)
	}
}
