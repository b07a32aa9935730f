package cli

import (
	"context"
	"time"

	"github.com/rcliao/lessonforge/internal/assets"
	"github.com/rcliao/lessonforge/internal/config"
	"github.com/rcliao/lessonforge/internal/generator"
	"github.com/rcliao/lessonforge/internal/logging"
	"github.com/rcliao/lessonforge/internal/narration"
	"github.com/rcliao/lessonforge/internal/pipeline"
	"github.com/rcliao/lessonforge/internal/scripture"
	"github.com/rcliao/lessonforge/internal/store"
)

// runtime holds everything a generation command needs. close releases it.
type runtime struct {
	cfg      *config.Config
	store    *store.SQLiteStore
	log      *logging.Logger
	pipeline *pipeline.Pipeline
	closers  []func() error
}

func (r *runtime) close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		_ = r.closers[i]()
	}
	r.log.Sync()
}

// newRuntime wires the pipeline from config. requireGeneration demands
// passage and LLM credentials; requireNarration demands a usable synthesizer.
func newRuntime(ctx context.Context, requireGeneration, requireNarration bool) *runtime {
	cfg := loadConfig()
	if requireGeneration {
		if err := cfg.RequireGeneration(); err != nil {
			exitErr("config", err)
		}
	}
	if requireNarration && !cfg.NarrationReady() {
		exitErr("config", errNarrationDisabled)
	}

	log := newLogger(cfg)
	s := openStore(cfg)
	rt := &runtime{cfg: cfg, store: s, log: log, closers: []func() error{s.Close}}

	provider := scripture.NewHTTPProvider(scripture.HTTPConfig{
		BaseURL:        cfg.Passages.BaseURL,
		APIKey:         cfg.Passages.APIKey,
		TimeoutSeconds: cfg.Passages.TimeoutSeconds,
	})
	gen := generator.NewLLMGenerator(generator.NewClient(generator.ClientConfig{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Temperature:    cfg.LLM.Temperature,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	}))

	var narrator pipeline.Narrator
	if cfg.NarrationReady() {
		n, err := rt.newNarrator(ctx)
		if err != nil {
			exitErr("init narration", err)
		}
		narrator = n
	} else {
		log.Debug("narration disabled", "enabled", cfg.Narration.Enabled)
	}

	rt.pipeline = pipeline.New(s, provider, gen, narrator, log, pipeline.Options{
		Concurrency:    cfg.Pipeline.Concurrency,
		LeaseTTL:       time.Duration(cfg.Pipeline.LeaseTTLSeconds) * time.Second,
		FollowUpURL:    cfg.Pipeline.FollowUpURL,
		SplitThreshold: cfg.Pipeline.SplitThreshold,
	})
	return rt
}

func (r *runtime) newNarrator(ctx context.Context) (*narration.Narrator, error) {
	cfg := r.cfg
	var dest assets.Store
	switch cfg.Assets.Backend {
	case "gcs":
		gcs, err := assets.NewGCSStore(ctx, assets.GCSConfig{
			Bucket:          cfg.Assets.Bucket,
			Prefix:          cfg.Assets.Prefix,
			PublicBaseURL:   cfg.Assets.PublicBaseURL,
			CredentialsFile: cfg.Assets.CredentialsFile,
			EmulatorHost:    cfg.Assets.EmulatorHost,
		})
		if err != nil {
			return nil, err
		}
		r.closers = append(r.closers, gcs.Close)
		dest = gcs
	default:
		dest = assets.NewLocalStore(cfg.Paths.AudioDir, cfg.Assets.PublicBaseURL)
	}

	synth := narration.NewOpenAISynthesizer(narration.OpenAIConfig{
		BaseURL:        cfg.Narration.BaseURL,
		APIKey:         cfg.Narration.APIKey,
		Model:          cfg.Narration.Model,
		TimeoutSeconds: cfg.Narration.TimeoutSeconds,
	})
	return &narration.Narrator{
		Synth:       synth,
		Assets:      dest,
		Voices:      narration.Voices{Default: cfg.Narration.DefaultVoice, Quoted: cfg.Narration.QuotedVoice},
		BitrateKbps: cfg.Narration.BitrateKbps,
		Now:         time.Now,
	}, nil
}
