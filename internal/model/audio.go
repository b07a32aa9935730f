package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// PageAudio is the narration asset for one story page.
type PageAudio struct {
	PageIndex       int     `json:"page_index"`
	URL             string  `json:"url"`
	Path            string  `json:"path"`
	Voice           string  `json:"voice"`
	DurationSeconds float64 `json:"duration_seconds"`
	Bytes           int     `json:"bytes"`
	// ContentHash is the SHA-256 of the exact narrated text.
	ContentHash string `json:"content_hash"`
}

// AudioManifest lists the narration assets of a lesson.
type AudioManifest struct {
	Pages       []PageAudio `json:"pages"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// TotalDuration sums the estimated duration of every page.
func (m AudioManifest) TotalDuration() time.Duration {
	var secs float64
	for _, p := range m.Pages {
		secs += p.DurationSeconds
	}
	return time.Duration(secs * float64(time.Second))
}

// OptionalAudio holds an audio manifest that may be absent. Callers must
// go through Get, so the no-narration case is always handled.
type OptionalAudio struct {
	manifest AudioManifest
	present  bool
}

// SomeAudio wraps a present manifest.
func SomeAudio(m AudioManifest) OptionalAudio {
	return OptionalAudio{manifest: m, present: true}
}

// NoAudio is the absent value.
func NoAudio() OptionalAudio {
	return OptionalAudio{}
}

// Get returns the manifest and whether it is present.
func (o OptionalAudio) Get() (AudioManifest, bool) {
	return o.manifest, o.present
}

// Present reports whether narration exists.
func (o OptionalAudio) Present() bool {
	return o.present
}

func (o OptionalAudio) MarshalJSON() ([]byte, error) {
	if !o.present {
		return []byte("null"), nil
	}
	return json.Marshal(o.manifest)
}

func (o *OptionalAudio) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = NoAudio()
		return nil
	}
	var m AudioManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*o = SomeAudio(m)
	return nil
}
