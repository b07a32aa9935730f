package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePassages()
	c.normalizeLLM()
	c.normalizeNarration()
	c.normalizeAssets()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if v, ok := lookupEnv("LESSONFORGE_DB"); ok {
		c.Paths.DBPath = v
	}
	if strings.TrimSpace(c.Paths.DBPath) == "" {
		c.Paths.DBPath = defaultDBPath
	}
	if strings.TrimSpace(c.Paths.LockDir) == "" {
		c.Paths.LockDir = defaultLockDir
	}
	if strings.TrimSpace(c.Paths.AudioDir) == "" {
		c.Paths.AudioDir = defaultAudioDir
	}
	var err error
	if c.Paths.DBPath, err = expandPath(c.Paths.DBPath); err != nil {
		return fmt.Errorf("paths.db_path: %w", err)
	}
	if c.Paths.LockDir, err = expandPath(c.Paths.LockDir); err != nil {
		return fmt.Errorf("paths.lock_dir: %w", err)
	}
	if c.Paths.AudioDir, err = expandPath(c.Paths.AudioDir); err != nil {
		return fmt.Errorf("paths.audio_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePassages() {
	if c.Passages.APIKey == "" {
		c.Passages.APIKey, _ = lookupEnv("PASSAGE_API_KEY")
	}
	c.Passages.BaseURL = strings.TrimRight(strings.TrimSpace(c.Passages.BaseURL), "/")
	if c.Passages.BaseURL == "" {
		c.Passages.BaseURL = defaultPassageBaseURL
	}
}

func (c *Config) normalizeLLM() {
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = firstEnv("LLM_API_KEY", "OPENAI_API_KEY")
	}
	c.LLM.BaseURL = strings.TrimRight(strings.TrimSpace(c.LLM.BaseURL), "/")
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
}

func (c *Config) normalizeNarration() {
	if c.Narration.APIKey == "" {
		c.Narration.APIKey = firstEnv("TTS_API_KEY", "OPENAI_API_KEY")
	}
	c.Narration.BaseURL = strings.TrimRight(strings.TrimSpace(c.Narration.BaseURL), "/")
	if c.Narration.BaseURL == "" {
		c.Narration.BaseURL = defaultLLMBaseURL
	}
	if strings.TrimSpace(c.Narration.DefaultVoice) == "" {
		c.Narration.DefaultVoice = defaultVoice
	}
	if strings.TrimSpace(c.Narration.QuotedVoice) == "" {
		c.Narration.QuotedVoice = c.Narration.DefaultVoice
	}
	if c.Narration.BitrateKbps <= 0 {
		c.Narration.BitrateKbps = defaultBitrateKbps
	}
}

func (c *Config) normalizeAssets() {
	c.Assets.Backend = strings.ToLower(strings.TrimSpace(c.Assets.Backend))
	if c.Assets.Backend == "" {
		c.Assets.Backend = "local"
	}
	if c.Assets.EmulatorHost == "" {
		c.Assets.EmulatorHost, _ = lookupEnv("STORAGE_EMULATOR_HOST")
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v, ok := lookupEnv(k); ok {
			return v
		}
	}
	return ""
}
