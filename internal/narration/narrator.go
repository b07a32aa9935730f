package narration

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rcliao/lessonforge/internal/assets"
	"github.com/rcliao/lessonforge/internal/model"
	"github.com/rcliao/lessonforge/internal/story"
)

const (
	DefaultBitrateKbps = 64
	wordsPerMinute     = 150
)

// Voices maps narration roles to synthesizer voice names.
type Voices struct {
	Default string
	Quoted  string
}

// Narrator synthesizes every narratable page of a manifest and stores the audio.
type Narrator struct {
	Synth       Synthesizer
	Assets      assets.Store
	Voices      Voices
	BitrateKbps int
	Now         func() time.Time
}

// VoiceFor returns the voice used for a page type. Scripture is read in the
// quoted voice.
func (n *Narrator) VoiceFor(t model.PageType) string {
	if t == model.PageScripture && n.Voices.Quoted != "" {
		return n.Voices.Quoted
	}
	return n.Voices.Default
}

// Narrate produces the audio manifest for lessonID. A failure on any page
// fails the whole narration with ErrSynthesisFailed.
func (n *Narrator) Narrate(ctx context.Context, lessonID string, m model.Manifest) (model.AudioManifest, error) {
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	var pages []model.PageAudio
	for i, page := range m.Pages {
		text := story.NarrationText(page)
		if text == "" {
			continue
		}
		voice := n.VoiceFor(page.Type)
		data, err := n.Synth.Synthesize(ctx, voice, text)
		if err != nil {
			return model.AudioManifest{}, wrapSynthesis(fmt.Errorf("page %d: %w", i, err))
		}
		path := AssetPath(lessonID, i)
		url, err := n.Assets.Put(ctx, path, data, assets.ContentTypeForKey(path))
		if err != nil {
			return model.AudioManifest{}, wrapSynthesis(fmt.Errorf("page %d: store %s: %w", i, path, err))
		}
		pages = append(pages, model.PageAudio{
			PageIndex:       i,
			URL:             url,
			Path:            path,
			Voice:           voice,
			DurationSeconds: EstimateDuration(len(data), text, n.BitrateKbps),
			Bytes:           len(data),
			ContentHash:     ContentHash(text),
		})
	}
	if len(pages) == 0 {
		return model.AudioManifest{}, fmt.Errorf("%w: nothing to narrate", ErrSynthesisFailed)
	}
	return model.AudioManifest{Pages: pages, GeneratedAt: now().UTC()}, nil
}

func wrapSynthesis(err error) error {
	if errors.Is(err, ErrSynthesisFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrSynthesisFailed, err)
}

// AssetPath is the storage key of a page's audio.
func AssetPath(lessonID string, pageIndex int) string {
	return fmt.Sprintf("lessons/%s/page-%02d.mp3", strings.TrimSpace(lessonID), pageIndex)
}

// ContentHash is the hex SHA-256 of the narrated text.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// EstimateDuration derives seconds from encoded size at bitrateKbps, or from
// word count when the size is unknown.
func EstimateDuration(size int, text string, bitrateKbps int) float64 {
	if bitrateKbps <= 0 {
		bitrateKbps = DefaultBitrateKbps
	}
	if size > 0 {
		secs := float64(size*8) / float64(bitrateKbps*1000)
		return math.Round(secs*10) / 10
	}
	words := len(strings.Fields(text))
	secs := float64(words) / wordsPerMinute * 60
	return math.Round(secs*10) / 10
}
