package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phildougherty/quick-assistant/internal/ai"
	"github.com/phildougherty/quick-assistant/internal/timers"
)

// AlarmStopper silences a ringing alarm
type AlarmStopper interface {
	StopAlarm()
}

// RegisterTimerTools adds timer creation, listing, and alarm control
func RegisterTimerTools(r *Registry, store *timers.Store, stopper AlarmStopper) error {
	tools := []Tool{
		{
			Definition: ai.Function{
				Name:        "set_timer",
				Description: "Sets a named timer that rings an alarm when it expires.",
				Parameters: objectSchema(map[string]interface{}{
					"name": map[string]interface{}{
						"type":        "string",
						"description": "What the timer is for, like 'tea' or 'laundry'.",
					},
					"duration": map[string]interface{}{
						"type":        "string",
						"description": "How long from now, like '90s', '5m', or '1h30m'.",
					},
				}, "duration"),
			},
			Handler: setTimer(store),
		},
		{
			Definition: ai.Function{
				Name:        "get_timers",
				Description: "Lists the pending timers and how long until each one rings.",
				Parameters:  objectSchema(map[string]interface{}{}),
			},
			Handler: getTimers(store),
		},
		{
			Definition: ai.Function{
				Name:        "cancel_timer",
				Description: "Cancels all timers with the given name.",
				Parameters: objectSchema(map[string]interface{}{
					"name": map[string]interface{}{
						"type": "string",
					},
				}, "name"),
			},
			Handler: cancelTimer(store),
		},
		{
			Definition: ai.Function{
				Name:        "stop_alarm",
				Description: "Silences a ringing timer alarm.",
				Parameters:  objectSchema(map[string]interface{}{}),
			},
			Handler: func(ctx context.Context, args map[string]interface{}) (string, error) {
				stopper.StopAlarm()
				return "Alarm stopped", nil
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

func setTimer(store *timers.Store) Handler {
	return func(ctx context.Context, args map[string]interface{}) (string, error) {
		durationText, err := stringArg(args, "duration")
		if err != nil {
			return "", err
		}
		duration, err := time.ParseDuration(durationText)
		if err != nil {
			return "", fmt.Errorf("could not understand duration %q: %w", durationText, err)
		}
		if duration <= 0 {
			return "", fmt.Errorf("timer duration must be positive, got %s", duration)
		}

		name, _ := args["name"].(string)
		at := time.Now().Add(duration)
		if err := store.Add(name, at); err != nil {
			return "", err
		}
		if name == "" {
			name = "Timer"
		}
		return fmt.Sprintf("%s set for %s from now (%s)", name, duration, at.Format(time.Kitchen)), nil
	}
}

func getTimers(store *timers.Store) Handler {
	return func(ctx context.Context, args map[string]interface{}) (string, error) {
		pending := store.List()
		if len(pending) == 0 {
			return "There are no pending timers", nil
		}

		now := time.Now()
		var b strings.Builder
		for _, timer := range pending {
			remaining := timer.At.Sub(now).Round(time.Second)
			fmt.Fprintf(&b, "%s rings in %s (at %s)\n", timer.Name, remaining, timer.At.Format(time.Kitchen))
		}
		return strings.TrimSpace(b.String()), nil
	}
}

func cancelTimer(store *timers.Store) Handler {
	return func(ctx context.Context, args map[string]interface{}) (string, error) {
		name, err := stringArg(args, "name")
		if err != nil {
			return "", err
		}
		removed, err := store.Remove(name)
		if err != nil {
			return "", err
		}
		if removed == 0 {
			return "", fmt.Errorf("no timer named %q", name)
		}
		return fmt.Sprintf("Cancelled %d timer(s) named %s", removed, name), nil
	}
}
