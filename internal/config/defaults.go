package config

const (
	defaultDBPath         = "~/.lessonforge/lessonforge.db"
	defaultLockDir        = "~/.lessonforge/locks"
	defaultAudioDir       = "~/.lessonforge/audio"
	defaultPassageBaseURL = "https://api.esv.org/v3"
	defaultLLMBaseURL     = "https://api.openai.com/v1"
	defaultLLMModel       = "gpt-4o-mini"
	defaultTTSModel       = "tts-1"
	defaultVoice          = "alloy"
	defaultQuotedVoice    = "onyx"
	defaultBitrateKbps    = 64
	defaultBatchSize      = 5
	defaultSplitThreshold = 900
	defaultTimeoutSeconds = 60
)

// Default returns a configuration populated with default values.
func Default() Config {
	return Config{
		Paths: Paths{
			DBPath:   defaultDBPath,
			LockDir:  defaultLockDir,
			AudioDir: defaultAudioDir,
		},
		Passages: Passages{
			BaseURL:        defaultPassageBaseURL,
			TimeoutSeconds: 30,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Temperature:    0.4,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Narration: Narration{
			Enabled:        true,
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultTTSModel,
			DefaultVoice:   defaultVoice,
			QuotedVoice:    defaultQuotedVoice,
			BitrateKbps:    defaultBitrateKbps,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Assets: Assets{
			Backend: "local",
		},
		Pipeline: Pipeline{
			BatchSize:      defaultBatchSize,
			Concurrency:    1,
			SplitThreshold: defaultSplitThreshold,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}
