package config

import "time"

// Speech constants
const (
	// DefaultSpeechSpeed is the playback speed multiplier for the AI voice
	DefaultSpeechSpeed = 1.0

	// MinSpeechSpeed is the lowest accepted speech speed
	MinSpeechSpeed = 0.5

	// MaxSpeechSpeed is the highest accepted speech speed
	MaxSpeechSpeed = 100.0

	// DefaultVoice is the AI voice used when none is configured
	DefaultVoice = "echo"

	// SentenceFlushHardLimit forces a TTS cut regardless of content
	SentenceFlushHardLimit = 300

	// SentenceFlushSoftLimit cuts at the next whitespace boundary
	SentenceFlushSoftLimit = 200

	// SentenceFlushMinimum is the shortest buffer eligible for a cut
	SentenceFlushMinimum = 15
)

// Recording constants
const (
	// MinRecordingDuration is the shortest recording worth transcribing.
	// The Whisper API rejects clips under about a tenth of a second.
	MinRecordingDuration = 200 * time.Millisecond

	// DefaultInputDevice selects the system default microphone
	DefaultInputDevice = "default"

	// RecordFramesPerBuffer is the PortAudio buffer size for capture
	RecordFramesPerBuffer = 1024
)

// API constants
const (
	// DefaultModel is the chat model used when none is configured
	DefaultModel = "gpt-4o"

	// DefaultMaxTokens bounds a single spoken reply
	DefaultMaxTokens = 512

	// TranscribeTimeout bounds a Whisper transcription round trip
	TranscribeTimeout = 10 * time.Second

	// ChatStreamTimeout bounds creation of a chat completion stream
	ChatStreamTimeout = 15 * time.Second

	// SpeechSynthesisTimeout bounds a single TTS request
	SpeechSynthesisTimeout = 15 * time.Second
)

// Timer constants
const (
	// TimerCheckSchedule is the cron spec for expiry sweeps
	TimerCheckSchedule = "@every 1s"

	// TimersFileName is the CSV file holding persisted timers
	TimersFileName = "timers.csv"
)

// Conversation constants
const (
	// MaxToolTurns bounds automatic tool-call continuation rounds
	MaxToolTurns = 8

	// HistoryTrimMinimum is the smallest history we will trim down to
	// when recovering from a context-overflow error
	HistoryTrimMinimum = 2
)
