package speech

import "strings"

// acronyms that read badly when spelled out letter by letter
var acronyms = map[string]string{
	"etc":   "etcetera",
	"etc.":  "etcetera",
	"e.g.":  "for example",
	"i.e.":  "that is",
	"vs":    "versus",
	"vs.":   "versus",
	"asap":  "as soon as possible",
	"faq":   "frequently asked questions",
	"fyi":   "for your information",
	"aka":   "also known as",
	"diy":   "do it yourself",
	"api":   "A P I",
	"cli":   "command line",
	"url":   "U R L",
	"json":  "jason",
	"sql":   "sequel",
	"k8s":   "kubernetes",
	"w/":    "with",
	"w/o":   "without",
}

// FilterForSpeech cleans a sentence before synthesis: markdown
// markers are stripped and awkward acronyms expanded
func FilterForSpeech(text string) string {
	text = removeMarkdown(text)
	text = expandAcronyms(text)
	return strings.TrimSpace(text)
}

// removeMarkdown strips formatting the voice should not read aloud
func removeMarkdown(text string) string {
	text = strings.ReplaceAll(text, "```", "")

	// Inline code markers
	for strings.Contains(text, "`") {
		start := strings.Index(text, "`")
		end := strings.Index(text[start+1:], "`")
		if end == -1 {
			break
		}
		end += start + 1
		text = text[:start] + text[start+1:end] + text[end+1:]
	}

	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "*", "")

	// Headers
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			lines[i] = strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		}
	}
	text = strings.Join(lines, "\n")

	// Links: [text](url) -> text
	for {
		mid := strings.Index(text, "](")
		if mid == -1 {
			break
		}
		start := strings.LastIndex(text[:mid], "[")
		if start == -1 {
			break
		}
		end := strings.Index(text[mid:], ")")
		if end == -1 {
			break
		}
		end += mid
		text = text[:start] + text[start+1:mid] + text[end+1:]
	}

	text = strings.ReplaceAll(text, "[", "")
	text = strings.ReplaceAll(text, "]", "")

	return text
}

// expandAcronyms replaces acronyms with pronounceable phrases
func expandAcronyms(text string) string {
	words := strings.Fields(text)
	for i, word := range words {
		lower := strings.ToLower(word)
		if expansion, ok := acronyms[lower]; ok {
			words[i] = expansion
			continue
		}
		trimmed := strings.TrimRight(lower, ".,!?;:")
		if expansion, ok := acronyms[trimmed]; ok {
			words[i] = expansion + word[len(trimmed):]
		}
	}
	return strings.Join(words, " ")
}
