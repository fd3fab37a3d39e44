package lecture

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	truncatedMarker = "\n\n[... transcript truncated ...]"
	continuesMarker = "\n\n[... content continues ...]"
)

var (
	sentenceRe        = regexp.MustCompile(`[^.!?]+[.!?]+`)
	punctuationOnlyRe = regexp.MustCompile(`^[;:\.\-_\s]+$`)
)

// truncateRunes keeps the first max characters of s and appends marker when
// anything was cut.
func truncateRunes(s string, max int, marker string) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + marker
}

func headRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// SplitSentences returns the runs of text ending in . ! or ?, untrimmed.
// Trailing text without terminal punctuation is not a sentence.
func SplitSentences(text string) []string {
	return sentenceRe.FindAllString(text, -1)
}

// usableCompletion rejects empty, short, or punctuation-only model output.
func usableCompletion(s string) bool {
	if s == "" {
		return false
	}
	if utf8.RuneCountInString(strings.TrimSpace(s)) < 50 {
		return false
	}
	return !punctuationOnlyRe.MatchString(s)
}
