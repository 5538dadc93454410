// Package speech turns streamed chat tokens into spoken audio. It
// accumulates tokens into sentences, synthesizes each sentence
// concurrently, and plays the clips back strictly in order.
package speech

import (
	"strings"
	"unicode"

	"github.com/phildougherty/quick-assistant/internal/config"
)

const (
	// hardCutLimit forces a cut regardless of content
	hardCutLimit = config.SentenceFlushHardLimit
	// goodCutLimit allows a cut at any whitespace boundary
	goodCutLimit = config.SentenceFlushSoftLimit
	// minSentenceLength is the shortest buffer eligible for a cut at
	// a sentence boundary
	minSentenceLength = config.SentenceFlushMinimum
)

// sentenceEndChars mark a sentence boundary when followed by
// whitespace
var sentenceEndChars = map[rune]bool{'.': true, '?': true, '!': true}

// SentenceAccumulator buffers streamed tokens and emits complete
// sentences as soon as they can be cut. Short fragments are held
// until a real boundary shows up so the synthesized clips do not
// sound choppy.
type SentenceAccumulator struct {
	buffer []rune
	bytes  int
}

// NewSentenceAccumulator creates an empty accumulator
func NewSentenceAccumulator() *SentenceAccumulator {
	return &SentenceAccumulator{}
}

// AddToken appends a token and returns any sentences completed by it
func (a *SentenceAccumulator) AddToken(token string) []string {
	var sentences []string
	for _, r := range token {
		a.buffer = append(a.buffer, r)
		a.bytes += len(string(r))

		switch {
		case a.bytes > hardCutLimit:
			// Bad cut: the model is rambling without a boundary
			sentences = a.flushInto(sentences)

		case a.bytes > goodCutLimit && unicode.IsSpace(a.lastChar()):
			// Good cut: long buffer, cut at a word boundary
			sentences = a.flushInto(sentences)

		case a.bytes > minSentenceLength &&
			sentenceEndChars[a.secondToLastChar()] &&
			unicode.IsSpace(a.lastChar()):
			// Perfect cut: sentence end followed by whitespace
			sentences = a.flushInto(sentences)
		}
	}
	return sentences
}

// CompleteSentence flushes whatever remains in the buffer. Called at
// the end of a response, which rarely ends in trailing whitespace.
func (a *SentenceAccumulator) CompleteSentence() (string, bool) {
	sentence := strings.TrimSpace(string(a.buffer))
	a.Clear()
	if sentence == "" {
		return "", false
	}
	return sentence, true
}

// Clear discards the buffered text
func (a *SentenceAccumulator) Clear() {
	a.buffer = a.buffer[:0]
	a.bytes = 0
}

func (a *SentenceAccumulator) flushInto(sentences []string) []string {
	sentence := strings.TrimSpace(string(a.buffer))
	if sentence != "" {
		sentences = append(sentences, sentence)
	}
	a.buffer = a.buffer[:0]
	a.bytes = 0
	return sentences
}

func (a *SentenceAccumulator) lastChar() rune {
	if len(a.buffer) == 0 {
		return 0
	}
	return a.buffer[len(a.buffer)-1]
}

func (a *SentenceAccumulator) secondToLastChar() rune {
	if len(a.buffer) < 2 {
		return 0
	}
	return a.buffer[len(a.buffer)-2]
}
