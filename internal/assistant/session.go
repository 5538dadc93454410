// Package assistant runs the push-to-talk session: recording on key
// press, transcription on release, and the streamed tool-calling
// conversation that follows.
package assistant

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/google/uuid"

	"github.com/phildougherty/quick-assistant/internal/ai"
	"github.com/phildougherty/quick-assistant/internal/audio"
	"github.com/phildougherty/quick-assistant/internal/config"
	"github.com/phildougherty/quick-assistant/internal/logging"
	"github.com/phildougherty/quick-assistant/internal/speech"
	"github.com/phildougherty/quick-assistant/internal/tools"
)

// systemPrompt keeps responses short enough to listen to
const systemPrompt = "You are a desktop voice assistant. Your responses will be spoken by a text to speech engine. You should be helpful but concise. As conversations should be a back and forth. Don't make audio clips that run on for more than 15 seconds. Also don't ask 'if I would like to know more'"

// input is one unit of work for the conversation loop: either a
// recording to transcribe or a background follow-up message
type input struct {
	audioPath string
	notice    string
}

// Session owns the conversation state and the recording lifecycle
type Session struct {
	cfg      *config.Config
	provider ai.Provider
	registry *tools.Registry
	speak    *speech.SpeakStream
	recorder *audio.Recorder
	printer  *Printer
	logger   *logging.Logger
	sink     EventSink

	// stopAlarm silences a ringing timer when the user pushes to talk
	stopAlarm func()

	interrupted atomic.Bool
	inputs      chan input

	histMu  sync.Mutex
	history []ai.Message

	stateMu sync.Mutex
	state   string
}

// NewSession wires up a session. sink and stopAlarm may be nil.
func NewSession(cfg *config.Config, provider ai.Provider, registry *tools.Registry, speak *speech.SpeakStream, recorder *audio.Recorder, printer *Printer, logger *logging.Logger, sink EventSink, stopAlarm func()) *Session {
	if sink == nil {
		sink = nopSink{}
	}
	return &Session{
		cfg:       cfg,
		provider:  provider,
		registry:  registry,
		speak:     speak,
		recorder:  recorder,
		printer:   printer,
		logger:    logger,
		sink:      sink,
		stopAlarm: stopAlarm,
		inputs:    make(chan input, 4),
		history:   []ai.Message{{Role: "system", Content: systemPrompt}},
		state:     "idle",
	}
}

// Run processes recordings and follow-ups until the context ends
func (s *Session) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in := <-s.inputs:
			s.handleInput(ctx, in)
		}
	}
}

// OnPressPTT starts recording. Anything currently being spoken or
// generated is interrupted first, and a ringing alarm is silenced.
func (s *Session) OnPressPTT() {
	s.interrupted.Store(true)
	s.speak.Stop()
	if s.stopAlarm != nil {
		s.stopAlarm()
	}

	if s.recorder.Recording() {
		return // key repeat while held
	}

	if err := s.recorder.Start(); err != nil {
		s.printer.Errorf("Failed to start recording: %v", err)
		s.errorCue()
		return
	}
	s.setState("recording")
	s.sink.Publish(Event{Type: EventRecordingStarted, Time: time.Now()})
	s.logger.Debug("Recording started")
}

// OnReleasePTT stops recording and queues the clip for transcription.
// Taps shorter than the transcription minimum are discarded.
func (s *Session) OnReleasePTT() {
	if !s.recorder.Recording() {
		return
	}

	samples, duration, err := s.recorder.Stop()
	s.setState("idle")
	s.sink.Publish(Event{Type: EventRecordingStopped, Time: time.Now()})
	if err != nil {
		s.printer.Errorf("Failed to stop recording: %v", err)
		return
	}

	if duration < config.MinRecordingDuration {
		s.printer.Notice("Recording too short (%s), discarded", duration.Round(time.Millisecond))
		return
	}

	path := filepath.Join(os.TempDir(), uuid.NewString()+".wav")
	if err := audio.WriteWAV(path, samples); err != nil {
		s.printer.Errorf("Failed to save recording: %v", err)
		s.errorCue()
		return
	}

	s.submit(input{audioPath: path})
}

// FollowUp feeds a background result (like finished speed test
// output) into the conversation
func (s *Session) FollowUp(text string) {
	s.submit(input{notice: text})
}

// Say speaks a sentence outside the conversation, without touching
// history
func (s *Session) Say(text string) {
	s.speak.Say(text)
}

// Mute silences the voice
func (s *Session) Mute() { s.speak.Mute() }

// Unmute re-enables the voice
func (s *Session) Unmute() { s.speak.Unmute() }

// Muted reports whether the voice is silenced
func (s *Session) Muted() bool { return s.speak.Muted() }

// State reports what the session is doing: idle, recording, or
// thinking
func (s *Session) State() string {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

func (s *Session) setState(state string) {
	s.stateMu.Lock()
	s.state = state
	s.stateMu.Unlock()
}

func (s *Session) submit(in input) {
	select {
	case s.inputs <- in:
	default:
		s.printer.Notice("Assistant is busy, input dropped")
	}
}

// handleInput runs one full conversation exchange
func (s *Session) handleInput(ctx context.Context, in input) {
	s.setState("thinking")
	defer s.setState("idle")

	var userContent string
	switch {
	case in.audioPath != "":
		defer os.Remove(in.audioPath)

		transcript, ok := s.transcribe(ctx, in.audioPath)
		if !ok {
			return
		}
		s.printer.You(transcript)
		s.sink.Publish(Event{Type: EventTranscript, Text: transcript, Time: time.Now()})
		userContent = transcript

	case in.notice != "":
		s.printer.Markdown(in.notice)
		userContent = in.notice

	default:
		return
	}

	s.interrupted.Store(false)

	s.histMu.Lock()
	s.history = append(s.history, ai.Message{
		Role:    "user",
		Content: fmt.Sprintf("Local Time: %s\n%s", time.Now().Format("Mon Jan 2 15:04:05 2006"), userContent),
	})
	s.histMu.Unlock()

	s.runTurns(ctx)
	s.speak.CompleteSentence()
}

// transcribe turns the recorded WAV into text, with the error cue on
// failure
func (s *Session) transcribe(ctx context.Context, path string) (string, bool) {
	tctx, cancel := context.WithTimeout(ctx, config.TranscribeTimeout)
	defer cancel()

	transcript, err := s.provider.Transcribe(tctx, path)
	if err != nil {
		s.printer.Errorf("Failed to transcribe audio: %v", err)
		s.sink.Publish(Event{Type: EventError, Text: err.Error(), Time: time.Now()})
		s.errorCue()
		return "", false
	}

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		s.printer.Notice("No transcription")
		return "", false
	}
	return transcript, true
}

// runTurns streams responses and dispatches tool calls until the
// model answers in plain text, the user interrupts, or the turn
// budget runs out
func (s *Session) runTurns(ctx context.Context) {
	for turn := 0; turn < config.MaxToolTurns; turn++ {
		content, calls, interrupted, err := s.streamOnce(ctx)

		if interrupted {
			// Keep what the model said so far, so the conversation
			// still makes sense after the cut
			if content != "" {
				s.appendMessage(ai.Message{Role: "assistant", Content: content})
			}
			s.printer.EndResponse()
			s.sink.Publish(Event{Type: EventInterrupted, Time: time.Now()})
			return
		}

		if err != nil {
			s.printer.Errorf("Stream failed: %v", err)
			s.sink.Publish(Event{Type: EventError, Text: err.Error(), Time: time.Now()})
			if !s.trimHistory() {
				s.errorCue()
				return
			}
			continue
		}

		if len(calls) == 0 {
			s.appendMessage(ai.Message{Role: "assistant", Content: content})
			s.sink.Publish(Event{Type: EventAssistantDone, Text: content, Time: time.Now()})
			return
		}

		s.appendMessage(ai.Message{Role: "assistant", Content: content, ToolCalls: calls})
		for _, call := range calls {
			s.sink.Publish(Event{Type: EventToolCall, Text: call.Function.Name, Time: time.Now()})
			s.logger.Info("Tool call: %s(%s)", call.Function.Name, call.Function.Arguments)

			result := s.registry.Dispatch(ctx, call.Function.Name, call.Function.Arguments)
			s.printer.Notice("%s: %s", call.Function.Name, result)
			s.appendMessage(ai.Message{
				Role:       "tool",
				Content:    result,
				ToolCallId: call.ID,
			})
		}
	}

	s.printer.Notice("Stopping after %d tool rounds", config.MaxToolTurns)
}

// streamOnce runs a single streamed completion over the current
// history
func (s *Session) streamOnce(ctx context.Context) (content string, calls []ai.ToolCall, interrupted bool, err error) {
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.histMu.Lock()
	messages := make([]ai.Message, len(s.history))
	copy(messages, s.history)
	s.histMu.Unlock()

	responseChan, err := s.provider.StreamChat(streamCtx, messages, ai.StreamOptions{
		Model:     s.cfg.Model,
		MaxTokens: config.DefaultMaxTokens,
		Functions: s.registry.Definitions(),
	})
	if err != nil {
		return "", nil, false, err
	}

	assembler := ai.NewToolCallAssembler()
	labelShown := false
	timeout := time.NewTimer(config.ChatStreamTimeout)
	defer timeout.Stop()

	for {
		select {
		case <-timeout.C:
			return content, nil, false, fmt.Errorf("no response within %s", config.ChatStreamTimeout)

		case resp, ok := <-responseChan:
			if !ok {
				if labelShown {
					s.printer.EndResponse()
				}
				return content, assembler.Calls(), false, nil
			}

			if s.interrupted.Load() {
				return content, nil, true, nil
			}

			if resp.Error != nil {
				return content, nil, false, resp.Error
			}

			if resp.Content != "" {
				if !labelShown {
					s.printer.AILabel()
					labelShown = true
				}
				s.printer.Token(resp.Content)
				s.speak.AddToken(resp.Content)
				s.sink.Publish(Event{Type: EventAssistantToken, Text: resp.Content, Time: time.Now()})
				content += resp.Content
			}

			assembler.Add(resp.ToolCalls)

			if resp.Finished {
				if labelShown {
					s.printer.EndResponse()
				}
				return content, assembler.Calls(), false, nil
			}

			// Each chunk restarts the stall clock
			if !timeout.Stop() {
				<-timeout.C
			}
			timeout.Reset(config.ChatStreamTimeout)
		}
	}
}

func (s *Session) appendMessage(message ai.Message) {
	s.histMu.Lock()
	defer s.histMu.Unlock()
	s.history = append(s.history, message)
}

// trimHistory drops the oldest non-system message so an overflowing
// conversation can recover. Returns false when there is nothing left
// to drop.
func (s *Session) trimHistory() bool {
	s.histMu.Lock()
	defer s.histMu.Unlock()

	if len(s.history) <= config.HistoryTrimMinimum {
		return false
	}
	s.history = append(s.history[:1], s.history[2:]...)
	s.printer.Notice("Removed a message. There are now %d remembered messages", len(s.history))
	return true
}

// errorCue is the audible "that didn't work" signal
func (s *Session) errorCue() {
	beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration)
}

// historyLength is used by status reporting
func (s *Session) historyLength() int {
	s.histMu.Lock()
	defer s.histMu.Unlock()
	return len(s.history)
}

// Status summarizes the session for the control server
func (s *Session) Status() map[string]interface{} {
	return map[string]interface{}{
		"state":    s.State(),
		"muted":    s.Muted(),
		"voice":    s.speak.Voice(),
		"speed":    s.speak.Speed(),
		"messages": s.historyLength(),
	}
}
