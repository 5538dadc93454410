//go:build linux

package tools

import (
	"fmt"

	"github.com/micmonay/keybd_event"
)

// mediaKeys maps button names to uinput key codes
var mediaKeys = map[string]int{
	"MediaStop":      keybd_event.VK_STOPCD,
	"MediaNextTrack": keybd_event.VK_NEXTSONG,
	"MediaPlayPause": keybd_event.VK_PLAYPAUSE,
	"MediaPrevTrack": keybd_event.VK_PREVIOUSSONG,
	"VolumeUp":       keybd_event.VK_VOLUMEUP,
	"VolumeDown":     keybd_event.VK_VOLUMEDOWN,
	"VolumeMute":     keybd_event.VK_MUTE,
}

// mediaKeyPresses is how many times each button is tapped. Volume
// steps are small, so one request moves five notches. Players treat a
// single previous-track press as restart, so it is doubled to
// actually go back a track.
var mediaKeyPresses = map[string]int{
	"VolumeUp":       5,
	"VolumeDown":     5,
	"MediaPrevTrack": 2,
}

func pressMediaButton(button string) error {
	key, ok := mediaKeys[button]
	if !ok {
		return fmt.Errorf("unknown media button %q", button)
	}

	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return fmt.Errorf("failed to open key simulator: %w", err)
	}
	kb.SetKeys(key)

	presses := mediaKeyPresses[button]
	if presses == 0 {
		presses = 1
	}
	for i := 0; i < presses; i++ {
		if err := kb.Launching(); err != nil {
			return fmt.Errorf("failed to press %s: %w", button, err)
		}
	}
	return nil
}
