package tools

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phildougherty/quick-assistant/internal/config"
	"github.com/phildougherty/quick-assistant/internal/timers"
)

// stubSpeaker implements Speaker for the voice control tools
type stubSpeaker struct {
	speed float64
	voice string
	muted bool
}

func (s *stubSpeaker) SetSpeed(speed float64) { s.speed = speed }
func (s *stubSpeaker) Speed() float64         { return s.speed }
func (s *stubSpeaker) SetVoice(voice string)  { s.voice = voice }
func (s *stubSpeaker) Voice() string          { return s.voice }
func (s *stubSpeaker) Mute()                  { s.muted = true }
func (s *stubSpeaker) Unmute()                { s.muted = false }
func (s *stubSpeaker) Muted() bool            { return s.muted }

func TestSpeechTools(t *testing.T) {
	r := newTestRegistry()
	speaker := &stubSpeaker{speed: 1.0, voice: "echo"}
	require.NoError(t, RegisterSpeechTools(r, speaker))

	ctx := context.Background()

	result := r.Dispatch(ctx, "set_speech_speed", `{"speed": 2.0}`)
	assert.Contains(t, result, "2")
	assert.Equal(t, 2.0, speaker.speed)

	result = r.Dispatch(ctx, "set_speech_speed", `{"speed": 0.1}`)
	assert.Contains(t, result, "Error")
	assert.Equal(t, 2.0, speaker.speed)

	result = r.Dispatch(ctx, "set_speech_speed", `{"speed": 200}`)
	assert.Contains(t, result, "Error")

	result = r.Dispatch(ctx, "get_speech_speed", "{}")
	assert.Contains(t, result, "2")

	result = r.Dispatch(ctx, "set_voice", `{"voice": "Nova"}`)
	assert.Contains(t, result, "nova")
	assert.Equal(t, "nova", speaker.voice)

	result = r.Dispatch(ctx, "set_voice", `{"voice": "robot"}`)
	assert.Contains(t, result, "Error")
	assert.Equal(t, "nova", speaker.voice)

	result = r.Dispatch(ctx, "get_voice", "{}")
	assert.Contains(t, result, "nova")

	r.Dispatch(ctx, "mute_speech", "{}")
	assert.True(t, speaker.muted)
	r.Dispatch(ctx, "unmute_speech", "{}")
	assert.False(t, speaker.muted)
}

func TestSpeechSpeedBoundsMatchConfig(t *testing.T) {
	r := newTestRegistry()
	speaker := &stubSpeaker{speed: 1.0}
	require.NoError(t, RegisterSpeechTools(r, speaker))

	ctx := context.Background()
	r.Dispatch(ctx, "set_speech_speed", `{"speed": 0.5}`)
	assert.Equal(t, config.MinSpeechSpeed, speaker.speed)
	r.Dispatch(ctx, "set_speech_speed", `{"speed": 100}`)
	assert.Equal(t, config.MaxSpeechSpeed, speaker.speed)
}

type stubStopper struct{ stopped bool }

func (s *stubStopper) StopAlarm() { s.stopped = true }

func TestTimerTools(t *testing.T) {
	r := newTestRegistry()
	store, err := timers.NewStore(filepath.Join(t.TempDir(), "timers.csv"))
	require.NoError(t, err)
	stopper := &stubStopper{}
	require.NoError(t, RegisterTimerTools(r, store, stopper))

	ctx := context.Background()

	result := r.Dispatch(ctx, "set_timer", `{"name": "tea", "duration": "5m"}`)
	assert.Contains(t, result, "tea")
	require.Len(t, store.List(), 1)

	result = r.Dispatch(ctx, "get_timers", "{}")
	assert.Contains(t, result, "tea")
	assert.Contains(t, result, "rings in")

	result = r.Dispatch(ctx, "set_timer", `{"duration": "banana"}`)
	assert.Contains(t, result, "Error")

	result = r.Dispatch(ctx, "set_timer", `{"duration": "-5m"}`)
	assert.Contains(t, result, "Error")

	result = r.Dispatch(ctx, "cancel_timer", `{"name": "tea"}`)
	assert.Contains(t, result, "Cancelled 1")
	assert.Empty(t, store.List())

	result = r.Dispatch(ctx, "cancel_timer", `{"name": "tea"}`)
	assert.Contains(t, result, "Error")

	result = r.Dispatch(ctx, "get_timers", "{}")
	assert.Contains(t, result, "no pending timers")

	r.Dispatch(ctx, "stop_alarm", "{}")
	assert.True(t, stopper.stopped)
}

func TestTimerToolDefaultName(t *testing.T) {
	r := newTestRegistry()
	store, err := timers.NewStore(filepath.Join(t.TempDir(), "timers.csv"))
	require.NoError(t, err)
	require.NoError(t, RegisterTimerTools(r, store, &stubStopper{}))

	result := r.Dispatch(context.Background(), "set_timer", `{"duration": "30s"}`)
	assert.Contains(t, result, "Timer set for 30s")

	pending := store.List()
	require.Len(t, pending, 1)
	assert.Equal(t, "New Timer", pending[0].Name)
	assert.WithinDuration(t, time.Now().Add(30*time.Second), pending[0].At, 2*time.Second)
}

func TestBrightnessValidation(t *testing.T) {
	ctx := context.Background()

	_, err := setScreenBrightness(ctx, map[string]interface{}{"brightness": "150"})
	assert.Error(t, err)
	_, err = setScreenBrightness(ctx, map[string]interface{}{"brightness": "-1"})
	assert.Error(t, err)
	_, err = setScreenBrightness(ctx, map[string]interface{}{})
	assert.Error(t, err)
}

func TestBrightnessArgumentFormat(t *testing.T) {
	assert.Equal(t, "70%", brightnessArgument("brightnessctl", "70"))
	assert.Equal(t, "70", brightnessArgument("luster", "70"))
}

func TestMediaControlsUnknownButton(t *testing.T) {
	_, err := mediaControls(context.Background(), map[string]interface{}{"media_button": "HyperSpace"})
	assert.Error(t, err)
}

func TestOpenApplicationValidation(t *testing.T) {
	_, err := openApplication(context.Background(), map[string]interface{}{"application": ""})
	assert.Error(t, err)
	_, err = openApplication(context.Background(), map[string]interface{}{})
	assert.Error(t, err)
}

func TestRegisterAllToolsNoCollisions(t *testing.T) {
	r := newTestRegistry()
	store, err := timers.NewStore(filepath.Join(t.TempDir(), "timers.csv"))
	require.NoError(t, err)

	require.NoError(t, RegisterDesktopTools(r))
	require.NoError(t, RegisterClipboardTools(r))
	require.NoError(t, RegisterSystemTools(r))
	require.NoError(t, RegisterSpeechTools(r, &stubSpeaker{}))
	require.NoError(t, RegisterTimerTools(r, store, &stubStopper{}))
	require.NoError(t, RegisterWebTools(r, newTestRegistry().logger, nil))

	defs := r.Definitions()
	assert.GreaterOrEqual(t, len(defs), 18)
	seen := map[string]bool{}
	for _, def := range defs {
		assert.False(t, seen[def.Name], "duplicate tool %s", def.Name)
		seen[def.Name] = true
		assert.NotEmpty(t, def.Description, "tool %s has no description", def.Name)
	}
}
