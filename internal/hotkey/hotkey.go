// Package hotkey registers the global push-to-talk key and reports
// press and release transitions.
package hotkey

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.design/x/hotkey"
)

// keyTable maps the configurable key names to hotkey key codes
var keyTable = map[string]hotkey.Key{
	"f1":  hotkey.KeyF1,
	"f2":  hotkey.KeyF2,
	"f3":  hotkey.KeyF3,
	"f4":  hotkey.KeyF4,
	"f5":  hotkey.KeyF5,
	"f6":  hotkey.KeyF6,
	"f7":  hotkey.KeyF7,
	"f8":  hotkey.KeyF8,
	"f9":  hotkey.KeyF9,
	"f10": hotkey.KeyF10,
	"f11": hotkey.KeyF11,
	"f12": hotkey.KeyF12,

	"a": hotkey.KeyA,
	"b": hotkey.KeyB,
	"c": hotkey.KeyC,
	"d": hotkey.KeyD,
	"e": hotkey.KeyE,
	"f": hotkey.KeyF,
	"g": hotkey.KeyG,
	"h": hotkey.KeyH,
	"i": hotkey.KeyI,
	"j": hotkey.KeyJ,
	"k": hotkey.KeyK,
	"l": hotkey.KeyL,
	"m": hotkey.KeyM,
	"n": hotkey.KeyN,
	"o": hotkey.KeyO,
	"p": hotkey.KeyP,
	"q": hotkey.KeyQ,
	"r": hotkey.KeyR,
	"s": hotkey.KeyS,
	"t": hotkey.KeyT,
	"u": hotkey.KeyU,
	"v": hotkey.KeyV,
	"w": hotkey.KeyW,
	"x": hotkey.KeyX,
	"y": hotkey.KeyY,
	"z": hotkey.KeyZ,

	"0": hotkey.Key0,
	"1": hotkey.Key1,
	"2": hotkey.Key2,
	"3": hotkey.Key3,
	"4": hotkey.Key4,
	"5": hotkey.Key5,
	"6": hotkey.Key6,
	"7": hotkey.Key7,
	"8": hotkey.Key8,
	"9": hotkey.Key9,

	"space":  hotkey.KeySpace,
	"tab":    hotkey.KeyTab,
	"escape": hotkey.KeyEscape,
	"up":     hotkey.KeyUp,
	"down":   hotkey.KeyDown,
	"left":   hotkey.KeyLeft,
	"right":  hotkey.KeyRight,
}

// ParseKey resolves a key name like "F9" or "space" to a key code.
// Names are case-insensitive.
func ParseKey(name string) (hotkey.Key, error) {
	key, ok := keyTable[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unsupported push-to-talk key %q (run the keys command to list supported keys)", name)
	}
	return key, nil
}

// KeyNames returns all supported key names sorted for display
func KeyNames() []string {
	names := make([]string, 0, len(keyTable))
	for name := range keyTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Listener registers a global hotkey and invokes callbacks on press
// and release
type Listener struct {
	keyName   string
	hk        *hotkey.Hotkey
	onPress   func()
	onRelease func()
}

// NewListener creates a listener for the named key
func NewListener(keyName string, onPress, onRelease func()) (*Listener, error) {
	key, err := ParseKey(keyName)
	if err != nil {
		return nil, err
	}
	return &Listener{
		keyName:   keyName,
		hk:        hotkey.New(nil, key),
		onPress:   onPress,
		onRelease: onRelease,
	}, nil
}

// Listen registers the hotkey and blocks dispatching events until the
// context is cancelled
func (l *Listener) Listen(ctx context.Context) error {
	if err := l.hk.Register(); err != nil {
		return fmt.Errorf("failed to register hotkey %q: %w", l.keyName, err)
	}
	defer l.hk.Unregister()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.hk.Keydown():
			if l.onPress != nil {
				l.onPress()
			}
		case <-l.hk.Keyup():
			if l.onRelease != nil {
				l.onRelease()
			}
		}
	}
}
