package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phildougherty/quick-assistant/internal/assistant"
	"github.com/phildougherty/quick-assistant/internal/audio"
)

// NewDoctorCommand checks that everything the assistant needs is
// installed and reachable
func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check audio devices, helpers, and credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			var b strings.Builder
			b.WriteString("# quick-assistant doctor\n\n")

			ok := true

			if os.Getenv("OPENAI_API_KEY") != "" {
				b.WriteString("- **API key**: found in environment\n")
			} else {
				b.WriteString("- **API key**: missing. Set `OPENAI_API_KEY` or pass `--api-key`\n")
				ok = false
			}

			if err := audio.Initialize(); err != nil {
				b.WriteString(fmt.Sprintf("- **Audio**: failed to initialize: %v\n", err))
				ok = false
			} else {
				defer audio.Terminate()
				devices, err := audio.InputDevices()
				switch {
				case err != nil:
					b.WriteString(fmt.Sprintf("- **Microphone**: device enumeration failed: %v\n", err))
					ok = false
				case len(devices) == 0:
					b.WriteString("- **Microphone**: no input devices found\n")
					ok = false
				default:
					b.WriteString(fmt.Sprintf("- **Microphone**: %d input device(s), run `quick-assistant devices` to list\n", len(devices)))
				}
			}

			if audio.FFmpegAvailable() {
				b.WriteString("- **ffmpeg**: installed (speech speed and upload compression)\n")
			} else {
				b.WriteString("- **ffmpeg**: missing. Recordings upload uncompressed and speech speed is fixed at 1.0\n")
			}

			b.WriteString(checkBinary("audio player", "plays the assistant's voice", "mpg123", "ffplay", "aplay"))
			b.WriteString(checkOptionalBinary("speedtest", "needed by the speedtest tool", "speedtest-cli", "speedtest"))
			b.WriteString(checkOptionalBinary("brightness", "needed by set_screen_brightness", "luster", "brightnessctl"))

			if ok {
				b.WriteString("\nEverything required is in place.\n")
			} else {
				b.WriteString("\nFix the items above before starting the assistant.\n")
			}

			assistant.NewPrinter().Markdown(b.String())
			if !ok {
				return fmt.Errorf("doctor found problems")
			}
			return nil
		},
	}
}

func checkBinary(label, purpose string, candidates ...string) string {
	for _, name := range candidates {
		if _, err := exec.LookPath(name); err == nil {
			return fmt.Sprintf("- **%s**: %s found\n", label, name)
		}
	}
	return fmt.Sprintf("- **%s**: none of %s found (%s)\n", label, strings.Join(candidates, ", "), purpose)
}

func checkOptionalBinary(label, purpose string, candidates ...string) string {
	for _, name := range candidates {
		if _, err := exec.LookPath(name); err == nil {
			return fmt.Sprintf("- **%s**: %s found\n", label, name)
		}
	}
	return fmt.Sprintf("- **%s**: not installed, %s\n", label, purpose)
}
