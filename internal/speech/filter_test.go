package speech

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterForSpeechStripsMarkdown(t *testing.T) {
	assert.Equal(t, "use the restart command", FilterForSpeech("use the `restart` command"))
	assert.Equal(t, "really important", FilterForSpeech("**really** *important*"))
	assert.Equal(t, "Status", FilterForSpeech("## Status"))
	assert.Equal(t, "see the docs", FilterForSpeech("see [the docs](https://example.com)"))
}

func TestFilterForSpeechExpandsAcronyms(t *testing.T) {
	assert.Equal(t, "too long, etcetera", FilterForSpeech("too long, etc"))
	assert.Equal(t, "kubernetes cluster", FilterForSpeech("k8s cluster"))
	assert.Equal(t, "done as soon as possible!", FilterForSpeech("done asap!"))
}

func TestFilterForSpeechPreservesCase(t *testing.T) {
	assert.Equal(t, "Hello there, World.", FilterForSpeech("Hello there, World."))
}

func TestFilterForSpeechTrimsWhitespace(t *testing.T) {
	assert.Equal(t, "hello", FilterForSpeech("  hello  "))
}
