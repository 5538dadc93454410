package audio

import (
	"fmt"
	"strings"

	"github.com/gordonklaus/portaudio"
)

// Device describes an available audio input device
type Device struct {
	Name       string
	Channels   int
	SampleRate float64
	Default    bool
}

// Initialize starts the portaudio runtime. Call Terminate when done.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize audio: %w", err)
	}
	return nil
}

// Terminate shuts down the portaudio runtime
func Terminate() {
	portaudio.Terminate()
}

// InputDevices lists all devices with at least one input channel
func InputDevices() ([]Device, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate audio devices: %w", err)
	}

	defaultDevice, _ := portaudio.DefaultInputDevice()

	var inputs []Device
	for _, d := range devices {
		if d.MaxInputChannels < 1 {
			continue
		}
		inputs = append(inputs, Device{
			Name:       d.Name,
			Channels:   d.MaxInputChannels,
			SampleRate: d.DefaultSampleRate,
			Default:    defaultDevice != nil && d.Name == defaultDevice.Name,
		})
	}
	return inputs, nil
}

// findInputDevice resolves a device by name, falling back to a
// case-insensitive substring match. "default" or "" selects the
// system default input.
func findInputDevice(name string) (*portaudio.DeviceInfo, error) {
	if name == "" || name == "default" {
		device, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("failed to get default input device: %w", err)
		}
		return device, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate audio devices: %w", err)
	}

	for _, d := range devices {
		if d.MaxInputChannels > 0 && d.Name == name {
			return d, nil
		}
	}
	for _, d := range devices {
		if d.MaxInputChannels > 0 && strings.Contains(strings.ToLower(d.Name), strings.ToLower(name)) {
			return d, nil
		}
	}

	return nil, fmt.Errorf("input device %q not found", name)
}
