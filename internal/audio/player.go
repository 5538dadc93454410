package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"
)

// playerCommands are tried in order until one is installed
var playerCommands = [][]string{
	{"mpg123", "-q"},
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
	{"aplay", "-q"},
}

// Player plays MP3 clips through an external audio player process.
// Cancelling the context or calling Stop kills the running process,
// which is what makes playback interruptible mid-clip. The context is
// checked again right before the process starts, so a cancellation
// that lands between the caller's decision to play and the actual
// start still suppresses the clip.
type Player struct {
	mu      sync.Mutex
	cmd     *exec.Cmd
	stopped bool
}

// NewPlayer creates a player
func NewPlayer() *Player {
	return &Player{}
}

// Play writes the clip to a temp file and blocks until playback
// finishes, the context is cancelled, or Stop is called. Interrupted
// playback is not an error.
func (p *Player) Play(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tempFile := filepath.Join(os.TempDir(), fmt.Sprintf("tts_%d.mp3", time.Now().UnixNano()))
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	defer os.Remove(tempFile)

	return p.PlayFile(ctx, tempFile)
}

// PlayFile plays an audio file, blocking until it finishes or is
// interrupted
func (p *Player) PlayFile(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, playerCmd := range playerCommands {
		if _, err := exec.LookPath(playerCmd[0]); err != nil {
			continue
		}

		args := append(append([]string{}, playerCmd[1:]...), path)
		cmd := exec.CommandContext(ctx, playerCmd[0], args...)

		p.mu.Lock()
		if err := ctx.Err(); err != nil {
			p.mu.Unlock()
			return err
		}
		p.stopped = false
		if err := cmd.Start(); err != nil {
			p.mu.Unlock()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		p.cmd = cmd
		p.mu.Unlock()

		err := cmd.Wait()

		p.mu.Lock()
		p.cmd = nil
		wasStopped := p.stopped
		p.stopped = false
		p.mu.Unlock()

		if wasStopped || ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return fmt.Errorf("audio player exited: %w", err)
		}
		return nil
	}

	return fmt.Errorf("no suitable audio player found (tried mpg123, ffplay, aplay)")
}

// Stop interrupts the current clip, if any
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd != nil && p.cmd.Process != nil {
		p.stopped = true
		p.cmd.Process.Kill()
	}
}

// Playing reports whether a clip is currently playing
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cmd != nil
}
