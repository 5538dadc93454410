package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/phildougherty/quick-assistant/internal/ai"
	"github.com/phildougherty/quick-assistant/internal/assistant"
	"github.com/phildougherty/quick-assistant/internal/audio"
	"github.com/phildougherty/quick-assistant/internal/config"
	"github.com/phildougherty/quick-assistant/internal/hotkey"
	"github.com/phildougherty/quick-assistant/internal/logging"
	"github.com/phildougherty/quick-assistant/internal/server"
	"github.com/phildougherty/quick-assistant/internal/speech"
	"github.com/phildougherty/quick-assistant/internal/timers"
	"github.com/phildougherty/quick-assistant/internal/tools"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "quick-assistant",
		Short: "Push-to-talk AI voice assistant",
		Long: `quick-assistant is a push-to-talk voice assistant for the desktop.
Hold the push-to-talk key to record, release to ask. Responses stream
to the terminal and are spoken aloud; pressing the key again cuts the
assistant off instantly.`,
		Version: version,
		RunE:    runAssistant,
	}

	rootCmd.Flags().String("config", "", "Path to a YAML configuration file")
	rootCmd.Flags().String("device", "", "Audio input device name (substring match)")
	rootCmd.Flags().String("api-key", "", "OpenAI API key (or set OPENAI_API_KEY)")
	rootCmd.Flags().String("ptt-key", "", "Push-to-talk key (see the keys command)")
	rootCmd.Flags().String("model", "", "Chat model to use")
	rootCmd.Flags().Float64("speech-speed", 0, "Playback speed for the voice, 1.0 is normal")
	rootCmd.Flags().String("ai-voice", "", "Voice for speech synthesis")
	rootCmd.Flags().Bool("mute", false, "Start with the voice muted")
	rootCmd.Flags().String("listen", "", "Address for the local control API, e.g. 127.0.0.1:8590")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewDevicesCommand())
	rootCmd.AddCommand(NewKeysCommand())
	rootCmd.AddCommand(NewDoctorCommand())

	return rootCmd
}

// loadConfig merges file, environment, and flags in that order
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	// .env is optional
	godotenv.Load()

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, "", err
	}
	cfg.ApplyEnv()
	applyFlagOverrides(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, configPath, nil
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if v, _ := cmd.Flags().GetString("device"); v != "" {
		cfg.Device = v
	}
	if v, _ := cmd.Flags().GetString("api-key"); v != "" {
		cfg.APIKey = v
	}
	if v, _ := cmd.Flags().GetString("ptt-key"); v != "" {
		cfg.PTTKey = v
	}
	if v, _ := cmd.Flags().GetString("model"); v != "" {
		cfg.Model = v
	}
	if v, _ := cmd.Flags().GetFloat64("speech-speed"); v != 0 {
		cfg.SpeechSpeed = v
	}
	if v, _ := cmd.Flags().GetString("ai-voice"); v != "" {
		cfg.Voice = v
	}
	if v, _ := cmd.Flags().GetBool("mute"); v {
		cfg.Muted = true
	}
	if v, _ := cmd.Flags().GetString("listen"); v != "" {
		cfg.ListenAddress = v
	}
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		cfg.LogLevel = "debug"
	}
}

// mergeReloadedConfig prepares a freshly reloaded config for use: env
// and flag overrides win over the file, same as at startup, and an
// invalid file must not take effect
func mergeReloadedConfig(cmd *cobra.Command, updated *config.Config) error {
	updated.ApplyEnv()
	applyFlagOverrides(cmd, updated)
	return updated.Validate()
}

func runAssistant(cmd *cobra.Command, args []string) error {
	cfg, configPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.LogLevel)

	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	provider, err := ai.NewOpenAIProvider(ai.ProviderConfig{
		APIKey:       cfg.APIKey,
		DefaultModel: cfg.Model,
	})
	if err != nil {
		return err
	}

	speak := speech.NewSpeakStream(provider, logger, cfg.Voice, cfg.SpeechSpeed, cfg.Muted)
	defer speak.Close()

	printer := assistant.NewPrinter()

	cacheDir, err := cfg.ResolveCacheDir()
	if err != nil {
		return err
	}
	store, err := timers.NewStore(filepath.Join(cacheDir, config.TimersFileName))
	if err != nil {
		return err
	}

	hub := server.NewHub(logger)

	alarm := timers.NewAlarm()
	engine := timers.NewEngine(store, alarm, logger, func(expired []timers.Timer) {
		for _, timer := range expired {
			printer.Notice("Timer fired: %s", timer.Name)
		}
	})
	if err := engine.Start(); err != nil {
		return err
	}
	defer engine.Stop()

	registry := tools.NewRegistry(logger)
	session := assistant.NewSession(cfg, provider, registry, speak, audio.NewRecorder(cfg.Device), printer, logger, hub, engine.StopAlarm)

	if err := registerTools(registry, logger, speak, store, engine, session); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.ListenAddress != "" {
		controlServer := server.NewServer(cfg.ListenAddress, session, store, hub, logger)
		go func() {
			if err := controlServer.Start(); err != nil {
				logger.Error("%v", err)
			}
		}()
		defer controlServer.Stop()
	}

	// Config edits apply to the running voice without a restart
	if configPath != "" {
		watcher, err := config.NewWatcher(configPath, logger, func(updated *config.Config) {
			if err := mergeReloadedConfig(cmd, updated); err != nil {
				logger.Warning("Ignoring config reload: %v", err)
				return
			}
			speak.SetSpeed(updated.SpeechSpeed)
			speak.SetVoice(updated.Voice)
			if updated.Muted {
				speak.Mute()
			} else {
				speak.Unmute()
			}
			printer.Notice("Configuration reloaded")
		})
		if err != nil {
			logger.Warning("Config watching disabled: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	listener, err := hotkey.NewListener(cfg.PTTKey, session.OnPressPTT, session.OnReleasePTT)
	if err != nil {
		return err
	}

	go session.Run(ctx)

	printer.Notice("Hold %s to talk. Ctrl-C to quit.", cfg.PTTKey)
	logger.Info("Assistant ready, push-to-talk key is %s", cfg.PTTKey)

	if err := listener.Listen(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func registerTools(registry *tools.Registry, logger *logging.Logger, speak *speech.SpeakStream, store *timers.Store, engine *timers.Engine, session *assistant.Session) error {
	if err := tools.RegisterDesktopTools(registry); err != nil {
		return err
	}
	if err := tools.RegisterClipboardTools(registry); err != nil {
		return err
	}
	if err := tools.RegisterSystemTools(registry); err != nil {
		return err
	}
	if err := tools.RegisterSpeechTools(registry, speak); err != nil {
		return err
	}
	if err := tools.RegisterTimerTools(registry, store, engine); err != nil {
		return err
	}
	if err := tools.RegisterWebTools(registry, logger, session.FollowUp); err != nil {
		return err
	}
	return nil
}

// Execute runs the CLI
func Execute(version string) {
	if err := NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
