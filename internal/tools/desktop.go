package tools

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/phildougherty/quick-assistant/internal/ai"
)

// brightnessCommands are tried in order until one is installed
var brightnessCommands = [][]string{
	{"luster"},
	{"brightnessctl", "set"},
}

// RegisterDesktopTools adds screen brightness, media keys, and
// application launching
func RegisterDesktopTools(r *Registry) error {
	tools := []Tool{
		{
			Definition: ai.Function{
				Name:        "set_screen_brightness",
				Description: "Sets the brightness of the device's screen.",
				Parameters: objectSchema(map[string]interface{}{
					"brightness": map[string]interface{}{
						"type":        "string",
						"description": "The brightness of the screen. A number between 0 and 100.",
					},
				}, "brightness"),
			},
			Handler: setScreenBrightness,
		},
		{
			Definition: ai.Function{
				Name:        "media_controls",
				Description: "Plays/Pauses/Seeks media.",
				Parameters: objectSchema(map[string]interface{}{
					"media_button": map[string]interface{}{
						"type": "string",
						"enum": []string{"MediaStop", "MediaNextTrack", "MediaPlayPause", "MediaPrevTrack", "VolumeUp", "VolumeDown", "VolumeMute"},
					},
				}, "media_button"),
			},
			Handler: mediaControls,
		},
		{
			Definition: ai.Function{
				Name:        "open_application",
				Description: "Opens an application by name.",
				Parameters: objectSchema(map[string]interface{}{
					"application": map[string]interface{}{
						"type": "string",
					},
				}, "application"),
			},
			Handler: openApplication,
		},
	}

	for _, tool := range tools {
		if err := r.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

func setScreenBrightness(ctx context.Context, args map[string]interface{}) (string, error) {
	value, err := numberArg(args, "brightness")
	if err != nil {
		return "", err
	}
	if value < 0 || value > 100 {
		return "", fmt.Errorf("brightness must be between 0 and 100, got %g", value)
	}

	percent := fmt.Sprintf("%d", int(value))
	for _, command := range brightnessCommands {
		if _, err := exec.LookPath(command[0]); err != nil {
			continue
		}
		cmdArgs := append(append([]string{}, command[1:]...), brightnessArgument(command[0], percent))
		cmd := exec.CommandContext(ctx, command[0], cmdArgs...)
		if output, err := cmd.CombinedOutput(); err != nil {
			return "", fmt.Errorf("%s failed: %v: %s", command[0], err, string(output))
		}
		return fmt.Sprintf("Brightness set to %s%%", percent), nil
	}
	return "", fmt.Errorf("no brightness utility found (tried luster, brightnessctl)")
}

// brightnessArgument formats the percentage for the given utility
func brightnessArgument(utility, percent string) string {
	if utility == "brightnessctl" {
		return percent + "%"
	}
	return percent
}

func mediaControls(ctx context.Context, args map[string]interface{}) (string, error) {
	button, err := stringArg(args, "media_button")
	if err != nil {
		return "", err
	}
	if err := pressMediaButton(button); err != nil {
		return "", err
	}
	return fmt.Sprintf("Pressed %s", button), nil
}

func openApplication(ctx context.Context, args map[string]interface{}) (string, error) {
	application, err := stringArg(args, "application")
	if err != nil {
		return "", err
	}
	if application == "" {
		return "", fmt.Errorf("application name is empty")
	}

	// Detached so the app outlives the assistant
	cmd := exec.Command(application)
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to open %s: %w", application, err)
	}
	go cmd.Wait()
	return fmt.Sprintf("Opened %s", application), nil
}
