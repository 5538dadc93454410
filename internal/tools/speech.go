package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/phildougherty/quick-assistant/internal/ai"
	"github.com/phildougherty/quick-assistant/internal/config"
)

// Voices the synthesis API accepts
var supportedVoices = map[string]bool{
	"alloy":   true,
	"ash":     true,
	"coral":   true,
	"echo":    true,
	"fable":   true,
	"onyx":    true,
	"nova":    true,
	"sage":    true,
	"shimmer": true,
}

// Speaker is the slice of the speech pipeline the voice tools need
type Speaker interface {
	SetSpeed(speed float64)
	Speed() float64
	SetVoice(voice string)
	Voice() string
	Mute()
	Unmute()
	Muted() bool
}

// RegisterSpeechTools adds speed, voice, and mute controls
func RegisterSpeechTools(r *Registry, speaker Speaker) error {
	tools := []Tool{
		{
			Definition: ai.Function{
				Name:        "set_speech_speed",
				Description: fmt.Sprintf("Sets how fast the assistant speaks. A number between %g and %g, where 1.0 is normal speed.", config.MinSpeechSpeed, config.MaxSpeechSpeed),
				Parameters: objectSchema(map[string]interface{}{
					"speed": map[string]interface{}{
						"type": "number",
					},
				}, "speed"),
			},
			Handler: func(ctx context.Context, args map[string]interface{}) (string, error) {
				speed, err := numberArg(args, "speed")
				if err != nil {
					return "", err
				}
				if speed < config.MinSpeechSpeed || speed > config.MaxSpeechSpeed {
					return "", fmt.Errorf("speech speed must be between %g and %g, got %g", config.MinSpeechSpeed, config.MaxSpeechSpeed, speed)
				}
				speaker.SetSpeed(speed)
				return fmt.Sprintf("Speech speed set to %g", speed), nil
			},
		},
		{
			Definition: ai.Function{
				Name:        "get_speech_speed",
				Description: "Reports the current speech speed.",
				Parameters:  objectSchema(map[string]interface{}{}),
			},
			Handler: func(ctx context.Context, args map[string]interface{}) (string, error) {
				return fmt.Sprintf("Speech speed is %g", speaker.Speed()), nil
			},
		},
		{
			Definition: ai.Function{
				Name:        "set_voice",
				Description: "Changes the assistant's voice. Available voices: " + voiceList() + ".",
				Parameters: objectSchema(map[string]interface{}{
					"voice": map[string]interface{}{
						"type": "string",
						"enum": voiceNames(),
					},
				}, "voice"),
			},
			Handler: func(ctx context.Context, args map[string]interface{}) (string, error) {
				voice, err := stringArg(args, "voice")
				if err != nil {
					return "", err
				}
				voice = strings.ToLower(voice)
				if !supportedVoices[voice] {
					return "", fmt.Errorf("unknown voice %q, available voices are %s", voice, voiceList())
				}
				speaker.SetVoice(voice)
				return fmt.Sprintf("Voice set to %s", voice), nil
			},
		},
		{
			Definition: ai.Function{
				Name:        "get_voice",
				Description: "Reports the assistant's current voice.",
				Parameters:  objectSchema(map[string]interface{}{}),
			},
			Handler: func(ctx context.Context, args map[string]interface{}) (string, error) {
				return fmt.Sprintf("The current voice is %s", speaker.Voice()), nil
			},
		},
		{
			Definition: ai.Function{
				Name:        "mute_speech",
				Description: "Mutes the assistant's voice. Responses still print to the terminal.",
				Parameters:  objectSchema(map[string]interface{}{}),
			},
			Handler: func(ctx context.Context, args map[string]interface{}) (string, error) {
				speaker.Mute()
				return "Speech muted", nil
			},
		},
		{
			Definition: ai.Function{
				Name:        "unmute_speech",
				Description: "Unmutes the assistant's voice.",
				Parameters:  objectSchema(map[string]interface{}{}),
			},
			Handler: func(ctx context.Context, args map[string]interface{}) (string, error) {
				speaker.Unmute()
				return "Speech unmuted", nil
			},
		},
	}

	for _, tool := range tools {
		if err := r.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

func voiceNames() []string {
	names := make([]string, 0, len(supportedVoices))
	for name := range supportedVoices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func voiceList() string {
	return strings.Join(voiceNames(), ", ")
}
