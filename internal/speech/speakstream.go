package speech

import (
	"context"
	"sync"

	"github.com/phildougherty/quick-assistant/internal/ai"
	"github.com/phildougherty/quick-assistant/internal/audio"
	"github.com/phildougherty/quick-assistant/internal/config"
	"github.com/phildougherty/quick-assistant/internal/logging"
)

// clipQueueSize bounds how many sentences can be in flight at once
const clipQueueSize = 64

// clipPlayer is the playback surface SpeakStream drives. audio.Player
// satisfies it.
type clipPlayer interface {
	Play(ctx context.Context, data []byte) error
	Stop()
}

// clip is one synthesized sentence waiting for its turn to play.
// ready closes when synthesis finishes, successfully or not.
type clip struct {
	generation uint64
	text       string
	ready      chan struct{}
	data       []byte
	err        error
}

// SpeakStream accumulates streamed tokens into sentences and speaks
// them. Sentences are synthesized concurrently but always played in
// the order they were produced. Stop interrupts instantly: it cuts
// off the playing clip and discards everything queued behind it.
type SpeakStream struct {
	provider ai.Provider
	player   clipPlayer
	logger   *logging.Logger

	mu          sync.Mutex
	accumulator *SentenceAccumulator
	voice       string
	speed       float64
	muted       bool
	generation  uint64
	genCtx      context.Context
	genCancel   context.CancelFunc

	queue chan *clip
	done  chan struct{}
}

// NewSpeakStream creates a speak stream and starts its playback
// worker. Close releases it.
func NewSpeakStream(provider ai.Provider, logger *logging.Logger, voice string, speed float64, muted bool) *SpeakStream {
	return newSpeakStream(provider, audio.NewPlayer(), logger, voice, speed, muted)
}

func newSpeakStream(provider ai.Provider, player clipPlayer, logger *logging.Logger, voice string, speed float64, muted bool) *SpeakStream {
	genCtx, genCancel := context.WithCancel(context.Background())
	s := &SpeakStream{
		provider:    provider,
		player:      player,
		logger:      logger,
		accumulator: NewSentenceAccumulator(),
		voice:       voice,
		speed:       speed,
		muted:       muted,
		genCtx:      genCtx,
		genCancel:   genCancel,
		queue:       make(chan *clip, clipQueueSize),
		done:        make(chan struct{}),
	}
	go s.playbackLoop()
	return s
}

// AddToken feeds one streamed token into the sentence accumulator,
// speaking any sentences it completes
func (s *SpeakStream) AddToken(token string) {
	s.mu.Lock()
	sentences := s.accumulator.AddToken(token)
	s.mu.Unlock()

	for _, sentence := range sentences {
		s.Say(sentence)
	}
}

// CompleteSentence flushes the remaining buffered text and speaks it.
// Call this when a response finishes streaming.
func (s *SpeakStream) CompleteSentence() {
	s.mu.Lock()
	sentence, ok := s.accumulator.CompleteSentence()
	s.mu.Unlock()

	if ok {
		s.Say(sentence)
	}
}

// Say queues a sentence for synthesis and ordered playback
func (s *SpeakStream) Say(text string) {
	s.mu.Lock()
	if s.muted {
		s.mu.Unlock()
		return
	}
	c := &clip{
		generation: s.generation,
		text:       text,
		ready:      make(chan struct{}),
	}
	voice := s.voice
	speed := s.speed
	ctx := s.genCtx
	s.mu.Unlock()

	go s.synthesize(ctx, c, voice, speed)

	select {
	case s.queue <- c:
	default:
		s.logger.Warning("Speech queue full, dropping sentence")
	}
}

// Stop interrupts speech instantly. The accumulator, the pending
// clips, and the currently playing clip are all discarded.
func (s *SpeakStream) Stop() {
	s.mu.Lock()
	s.generation++
	s.accumulator.Clear()
	s.genCancel()
	s.genCtx, s.genCancel = context.WithCancel(context.Background())
	s.mu.Unlock()

	s.player.Stop()
}

// Close stops speech and shuts down the playback worker
func (s *SpeakStream) Close() {
	s.Stop()
	close(s.done)
}

// SetVoice changes the synthesis voice for subsequent sentences
func (s *SpeakStream) SetVoice(voice string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voice = voice
}

// Voice returns the current synthesis voice
func (s *SpeakStream) Voice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voice
}

// SetSpeed changes the playback speed for subsequent sentences
func (s *SpeakStream) SetSpeed(speed float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speed = speed
}

// Speed returns the current playback speed
func (s *SpeakStream) Speed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speed
}

// Mute stops current speech and silences future sentences
func (s *SpeakStream) Mute() {
	s.mu.Lock()
	s.muted = true
	s.mu.Unlock()
	s.Stop()
}

// Unmute re-enables speech
func (s *SpeakStream) Unmute() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted = false
}

// Muted reports whether speech is silenced
func (s *SpeakStream) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

// synthesize turns a sentence into audio and marks the clip ready
func (s *SpeakStream) synthesize(ctx context.Context, c *clip, voice string, speed float64) {
	defer close(c.ready)

	text := FilterForSpeech(c.text)
	if text == "" {
		return
	}

	synthCtx, cancel := context.WithTimeout(ctx, config.SpeechSynthesisTimeout)
	defer cancel()

	data, err := s.provider.Speech(synthCtx, text, voice)
	if err != nil {
		c.err = err
		return
	}

	if speed != 1.0 {
		adjusted, err := audio.AdjustSpeed(data, speed)
		if err != nil {
			s.logger.Warning("Speed adjustment failed, playing at normal speed: %v", err)
		} else {
			data = adjusted
		}
	}

	c.data = data
}

// playbackLoop plays clips strictly in queue order. Clips from an
// interrupted generation are skipped without being played.
func (s *SpeakStream) playbackLoop() {
	for {
		select {
		case <-s.done:
			return
		case c := <-s.queue:
			select {
			case <-s.done:
				return
			case <-c.ready:
			}

			s.mu.Lock()
			current := s.generation
			ctx := s.genCtx
			s.mu.Unlock()
			if c.generation != current {
				continue
			}

			if c.err != nil {
				s.logger.Error("Speech synthesis failed: %v", c.err)
				continue
			}
			if len(c.data) == 0 {
				continue
			}

			// Playing under the generation context closes the race
			// where Stop lands after the generation check but before
			// the player process starts
			if err := s.player.Play(ctx, c.data); err != nil && ctx.Err() == nil {
				s.logger.Error("Playback failed: %v", err)
			}
		}
	}
}
