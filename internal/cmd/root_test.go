package cmd

import (
	"path/filepath"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phildougherty/quick-assistant/internal/config"
)

func TestRootCommandStructure(t *testing.T) {
	root := NewRootCommand("test")

	assert.Equal(t, "quick-assistant", root.Use)

	subcommands := map[string]bool{}
	for _, sub := range root.Commands() {
		subcommands[sub.Name()] = true
	}
	assert.True(t, subcommands["devices"])
	assert.True(t, subcommands["keys"])
	assert.True(t, subcommands["doctor"])

	for _, flag := range []string{"device", "api-key", "ptt-key", "model", "speech-speed", "ai-voice", "mute", "config", "listen"} {
		assert.NotNil(t, root.Flags().Lookup(flag), "missing flag --%s", flag)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("verbose"))
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")

	root := NewRootCommand("test")
	require.NoError(t, root.Flags().Set("ptt-key", "f5"))
	require.NoError(t, root.Flags().Set("speech-speed", "2.0"))
	require.NoError(t, root.Flags().Set("mute", "true"))
	require.NoError(t, root.PersistentFlags().Set("verbose", "true"))

	cfg, _, err := loadConfig(root)
	require.NoError(t, err)

	assert.Equal(t, "sk-env", cfg.APIKey)
	assert.Equal(t, "f5", cfg.PTTKey)
	assert.Equal(t, 2.0, cfg.SpeechSpeed)
	assert.True(t, cfg.Muted)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("voice: nova\nspeech_speed: 1.5\n"), 0644))

	root := NewRootCommand("test")
	require.NoError(t, root.Flags().Set("config", path))

	cfg, configPath, err := loadConfig(root)
	require.NoError(t, err)
	assert.Equal(t, path, configPath)
	assert.Equal(t, "nova", cfg.Voice)
	assert.Equal(t, 1.5, cfg.SpeechSpeed)
	assert.Equal(t, config.DefaultModel, cfg.Model)
}

func TestLoadConfigRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	root := NewRootCommand("test")
	_, _, err := loadConfig(root)
	require.Error(t, err)
}

func TestMergeReloadedConfigRejectsInvalidSpeed(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")

	root := NewRootCommand("test")

	updated := config.Default()
	updated.SpeechSpeed = 500
	err := mergeReloadedConfig(root, updated)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "speech speed")
}

func TestMergeReloadedConfigKeepsFlagOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")

	root := NewRootCommand("test")
	require.NoError(t, root.Flags().Set("speech-speed", "1.5"))
	require.NoError(t, root.Flags().Set("ai-voice", "nova"))

	// A reloaded file that never mentions speed or voice comes back
	// with the defaults; the startup flags must still win
	updated := config.Default()
	require.NoError(t, mergeReloadedConfig(root, updated))
	assert.Equal(t, 1.5, updated.SpeechSpeed)
	assert.Equal(t, "nova", updated.Voice)
}

func TestKeysCommandRuns(t *testing.T) {
	cmd := NewKeysCommand()
	assert.NoError(t, cmd.RunE(cmd, nil))
}
