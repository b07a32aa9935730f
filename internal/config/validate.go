package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. API keys are checked when a
// command needs them, not here, so read-only commands work without them.
func (c *Config) Validate() error {
	if c.Paths.DBPath == "" {
		return errors.New("paths.db_path must be set")
	}
	switch c.Assets.Backend {
	case "local":
	case "gcs":
		if c.Assets.Bucket == "" {
			return errors.New("assets.bucket is required when assets.backend is \"gcs\"")
		}
	default:
		return fmt.Errorf("assets.backend must be \"local\" or \"gcs\", got %q", c.Assets.Backend)
	}
	if c.Pipeline.BatchSize <= 0 {
		return errors.New("pipeline.batch_size must be positive")
	}
	if c.Pipeline.Concurrency < 1 {
		return errors.New("pipeline.concurrency must be at least 1")
	}
	if c.Pipeline.LeaseTTLSeconds < 0 {
		return errors.New("pipeline.lease_ttl_seconds must not be negative")
	}
	if c.Pipeline.MaxRounds < 0 {
		return errors.New("pipeline.max_rounds must not be negative")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

// RequireGeneration reports missing credentials for lesson generation.
func (c *Config) RequireGeneration() error {
	if c.Passages.APIKey == "" {
		return errors.New("passages.api_key is required. Set PASSAGE_API_KEY or edit the config (create with 'lessonforge config init')")
	}
	if c.LLM.APIKey == "" {
		return errors.New("llm.api_key is required. Set LLM_API_KEY or OPENAI_API_KEY")
	}
	return nil
}

// NarrationReady reports whether audio can be synthesized.
func (c *Config) NarrationReady() bool {
	return c.Narration.Enabled && c.Narration.APIKey != ""
}
