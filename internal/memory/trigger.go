// Package memory implements the memory-relevance pipeline of the bridge:
// which user text is worth capturing, how retrieval payloads are normalized,
// and how recall context is built and injected before a turn.
package memory

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minCaptureLength = 10
	maxCaptureLength = 500

	// RecallMarker opens every injected recall block. Text carrying it is
	// never captured again.
	RecallMarker = "<relevant-memories>"
)

// Trigger is one auto-capture heuristic.
type Trigger struct {
	Name    string
	Pattern *regexp.Regexp
}

// Match reports whether text satisfies the trigger.
func (t Trigger) Match(text string) bool {
	return t.Pattern.MatchString(text)
}

// CaptureTriggers is the fixed rule set consulted by ShouldCapture.
// Rules are independent; any single match qualifies the text.
var CaptureTriggers = []Trigger{
	{Name: "remember", Pattern: regexp.MustCompile(`(?i)记住|记得|remember`)},
	{Name: "preference", Pattern: regexp.MustCompile(`(?i)我喜欢|我不喜欢|i like|i prefer|i hate|i love`)},
	{Name: "importance", Pattern: regexp.MustCompile(`(?i)重要|important|关键`)},
	{Name: "email", Pattern: regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)},
	{Name: "phone", Pattern: regexp.MustCompile(`\+?\d{10,}`)},
	{Name: "possessive", Pattern: regexp.MustCompile(`(?i)我的\S+是|my\s+\w+\s+is`)},
}

// ShouldCapture reports whether a user-authored text span is a durable fact
// worth persisting. Length is counted in characters, not bytes.
func ShouldCapture(text string) bool {
	n := utf8.RuneCountInString(text)
	if n < minCaptureLength || n > maxCaptureLength {
		return false
	}
	if strings.Contains(text, RecallMarker) {
		return false
	}
	if strings.HasPrefix(text, "<") && strings.Contains(text, "</") {
		return false
	}
	for _, trigger := range CaptureTriggers {
		if trigger.Match(text) {
			return true
		}
	}
	return false
}

// truncateRunes returns the first n characters of s.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
