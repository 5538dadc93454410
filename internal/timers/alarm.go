package timers

import (
	"sync"
	"time"

	"github.com/gen2brain/beeep"
)

// Alarm rings repeatedly until stopped. Ringing again while already
// ringing is a no-op, so a batch of expired timers produces a single
// alarm.
type Alarm struct {
	mu      sync.Mutex
	ringing bool
	stop    chan struct{}
}

// NewAlarm creates a silent alarm
func NewAlarm() *Alarm {
	return &Alarm{}
}

// Ring shows a notification and starts the repeating beep
func (a *Alarm) Ring(title, message string) {
	beeep.Notify(title, message, "")

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ringing {
		return
	}
	a.ringing = true
	a.stop = make(chan struct{})

	go func(stop chan struct{}) {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration)
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration)
			}
		}
	}(a.stop)
}

// Stop silences the alarm
func (a *Alarm) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.ringing {
		return
	}
	a.ringing = false
	close(a.stop)
}

// Ringing reports whether the alarm is sounding
func (a *Alarm) Ringing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ringing
}
