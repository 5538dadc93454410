package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the assistant configuration. Values are resolved in
// order: defaults, YAML file, environment, command-line flags.
type Config struct {
	// Device is the audio input device name, "default" for the system default
	Device string `yaml:"device"`

	// APIKey is the OpenAI API key. Usually left empty here and taken
	// from the OPENAI_API_KEY environment variable instead.
	APIKey string `yaml:"api_key"`

	// PTTKey is the push-to-talk key name, e.g. "f9"
	PTTKey string `yaml:"ptt_key"`

	// Model is the chat model used for responses
	Model string `yaml:"model"`

	// SpeechSpeed is the AI voice speed, 1.0 being normal
	SpeechSpeed float64 `yaml:"speech_speed"`

	// Voice is the AI voice name
	Voice string `yaml:"voice"`

	// Muted starts the assistant with the voice muted
	Muted bool `yaml:"muted"`

	// ListenAddress enables the local control server when non-empty,
	// e.g. "127.0.0.1:7315"
	ListenAddress string `yaml:"listen_address"`

	// LogLevel controls log verbosity
	LogLevel string `yaml:"log_level"`

	// CacheDir overrides where timers and temp audio live
	CacheDir string `yaml:"cache_dir"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Device:      DefaultInputDevice,
		PTTKey:      "f9",
		Model:       DefaultModel,
		SpeechSpeed: DefaultSpeechSpeed,
		Voice:       DefaultVoice,
		LogLevel:    "info",
	}
}

// Load reads the YAML config at path over the defaults. A missing file
// is not an error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// ApplyEnv overlays environment variables onto the config
func (c *Config) ApplyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("QUICK_ASSISTANT_DEVICE"); v != "" {
		c.Device = v
	}
	if v := os.Getenv("QUICK_ASSISTANT_PTT_KEY"); v != "" {
		c.PTTKey = v
	}
	if v := os.Getenv("QUICK_ASSISTANT_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("QUICK_ASSISTANT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks invariants that should stop startup
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY not set. Pass your API key as a flag or assign it to the OPENAI_API_KEY env var in the terminal or a .env file")
	}
	if c.SpeechSpeed < MinSpeechSpeed || c.SpeechSpeed > MaxSpeechSpeed {
		return fmt.Errorf("speech speed must be between %.1f and %.1f", MinSpeechSpeed, MaxSpeechSpeed)
	}
	if c.PTTKey == "" {
		return fmt.Errorf("no push-to-talk key specified. Pass a key name using --ptt-key")
	}
	return nil
}

// ResolveCacheDir returns the directory for persisted state, creating
// it if needed.
func (c *Config) ResolveCacheDir() (string, error) {
	dir := c.CacheDir
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return "", fmt.Errorf("failed to locate user cache dir: %w", err)
		}
		dir = filepath.Join(base, "quick-assistant")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache dir %s: %w", dir, err)
	}
	return dir, nil
}
