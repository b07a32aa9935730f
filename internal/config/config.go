// Package config loads lessonforge settings from TOML with environment fallbacks.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths holds filesystem locations.
type Paths struct {
	DBPath   string `toml:"db_path"`
	LockDir  string `toml:"lock_dir"`
	AudioDir string `toml:"audio_dir"`
}

// Passages configures the passage text API.
type Passages struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// LLM configures the chat-completions endpoint used for content generation.
type LLM struct {
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	Temperature    float64 `toml:"temperature"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// Narration configures text-to-speech. Audio is skipped when disabled.
type Narration struct {
	Enabled        bool   `toml:"enabled"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	DefaultVoice   string `toml:"default_voice"`
	QuotedVoice    string `toml:"quoted_voice"`
	BitrateKbps    int    `toml:"bitrate_kbps"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Assets selects where narration files are written.
type Assets struct {
	// Backend is "local" or "gcs".
	Backend         string `toml:"backend"`
	PublicBaseURL   string `toml:"public_base_url"`
	Bucket          string `toml:"bucket"`
	Prefix          string `toml:"prefix"`
	CredentialsFile string `toml:"credentials_file"`
	EmulatorHost    string `toml:"emulator_host"`
}

// Pipeline tunes batch generation.
type Pipeline struct {
	BatchSize       int    `toml:"batch_size"`
	Concurrency     int    `toml:"concurrency"`
	LeaseTTLSeconds int    `toml:"lease_ttl_seconds"`
	SplitThreshold  int    `toml:"split_threshold"`
	FollowUpURL     string `toml:"follow_up_url"`
	MaxRounds       int    `toml:"max_rounds"`
}

// Logging configures log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// Config is the full lessonforge configuration.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Passages  Passages  `toml:"passages"`
	LLM       LLM       `toml:"llm"`
	Narration Narration `toml:"narration"`
	Assets    Assets    `toml:"assets"`
	Pipeline  Pipeline  `toml:"pipeline"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/lessonforge/config.toml")
}

// Load loads .env files, locates and parses the config file, then
// normalizes and validates it. A missing file yields the defaults.
func Load(path string) (*Config, string, bool, error) {
	loadDotEnv()
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}
	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func loadDotEnv() {
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err == nil {
			// Existing environment variables win over the file.
			_ = godotenv.Load(name)
		}
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("lessonforge.toml")
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// CreateSample writes the sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath applies the config path rules (~ expansion, absolute) to p.
func ExpandPath(p string) (string, error) {
	return expandPath(p)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}
