// Package audio handles microphone capture, playback, and ffmpeg
// post-processing for the assistant.
package audio

import (
	"fmt"
	"os"
	"sync"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"
)

const (
	// SampleRate is the capture rate for all recordings
	SampleRate = 16000
	// FramesPerBuffer is the portaudio callback buffer size
	FramesPerBuffer = 1024
)

// Recorder captures mono microphone audio into memory and writes it
// out as a 16-bit PCM WAV file. A Recorder is reusable: Start after
// Stop begins a fresh recording.
type Recorder struct {
	deviceName string

	mu        sync.Mutex
	stream    *portaudio.Stream
	samples   []float32
	recording bool
	startedAt time.Time
}

// NewRecorder creates a recorder bound to the named input device.
// Pass "default" to use the system default input.
func NewRecorder(deviceName string) *Recorder {
	return &Recorder{deviceName: deviceName}
}

// Recording reports whether a capture is in progress
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Start opens the input stream and begins capturing samples
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording {
		return fmt.Errorf("recording already in progress")
	}

	device, err := findInputDevice(r.deviceName)
	if err != nil {
		return err
	}

	inputParams := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: 1,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      float64(SampleRate),
		FramesPerBuffer: FramesPerBuffer,
	}

	r.samples = r.samples[:0]
	stream, err := portaudio.OpenStream(inputParams, func(in []float32) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.samples = append(r.samples, in...)
	})
	if err != nil {
		return fmt.Errorf("failed to open recording stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start recording: %w", err)
	}

	r.stream = stream
	r.recording = true
	r.startedAt = time.Now()
	return nil
}

// Stop ends the capture and returns the recorded samples along with
// the recording duration
func (r *Recorder) Stop() ([]float32, time.Duration, error) {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return nil, 0, fmt.Errorf("no recording in progress")
	}
	stream := r.stream
	r.mu.Unlock()

	// Stop outside the lock so the capture callback can drain
	stream.Stop()
	stream.Close()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.recording = false
	r.stream = nil

	samples := make([]float32, len(r.samples))
	copy(samples, r.samples)
	return samples, time.Since(r.startedAt), nil
}

// Abort ends the capture and discards everything recorded so far
func (r *Recorder) Abort() {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return
	}
	stream := r.stream
	r.mu.Unlock()

	stream.Stop()
	stream.Close()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.recording = false
	r.stream = nil
	r.samples = r.samples[:0]
}

// WriteWAV encodes float32 samples as a 16-bit mono PCM WAV file
func WriteWAV(path string, samples []float32) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create wav file: %w", err)
	}
	defer file.Close()

	encoder := wav.NewEncoder(file, SampleRate, 16, 1, 1)

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: 1,
			SampleRate:  SampleRate,
		},
		SourceBitDepth: 16,
		Data:           make([]int, len(samples)),
	}
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		buf.Data[i] = int(s * 32767)
	}

	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("failed to encode wav: %w", err)
	}
	return encoder.Close()
}
