package memory

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// NoMemories is returned by FormatReport when there is nothing to show.
const NoMemories = "No relevant memories found."

// displayFields are consulted in order; the first truthy one wins.
var displayFields = []string{"summary", "content", "text"}

// FormatReport renders a retrieval payload as a numbered listing:
//
//	Found 2 memories:
//
//	1. [episodic_memory] [2025-01-15] Switched to oat milk
//	2. [profile] Lives in Lisbon
//
// Payloads without the expected shape yield NoMemories.
func FormatReport(data []byte) string {
	var lines []string
	eachEntry(data, func(memType string, entry gjson.Result) {
		text, ok := displayText(entry)
		if !ok {
			return
		}
		date := ""
		if ts := entry.Get("timestamp"); truthy(ts) {
			date = " [" + truncateRunes(ts.String(), 10) + "]"
		}
		lines = append(lines, fmt.Sprintf("%d. [%s]%s %s", len(lines)+1, memType, date, text))
	})

	if len(lines) == 0 {
		return NoMemories
	}
	return fmt.Sprintf("Found %d memories:\n\n%s", len(lines), strings.Join(lines, "\n"))
}

// ExtractSummaries returns the display text of every usable entry, in
// traversal order. Malformed groups and entries are skipped.
func ExtractSummaries(data []byte) []string {
	var summaries []string
	eachEntry(data, func(_ string, entry gjson.Result) {
		if text, ok := displayText(entry); ok {
			summaries = append(summaries, text)
		}
	})
	return summaries
}

// TotalCount reads result.total_count, or 0 when absent.
func TotalCount(data []byte) int64 {
	if !gjson.ValidBytes(data) {
		return 0
	}
	return gjson.GetBytes(data, "result.total_count").Int()
}

// eachEntry walks result.memories: groups in array order, memory types in
// document key order, entries in array order.
func eachEntry(data []byte, fn func(memType string, entry gjson.Result)) {
	if !gjson.ValidBytes(data) {
		return
	}
	memories := gjson.GetBytes(data, "result.memories")
	if !memories.IsArray() {
		return
	}
	memories.ForEach(func(_, group gjson.Result) bool {
		if !group.IsObject() {
			return true
		}
		group.ForEach(func(memType, entries gjson.Result) bool {
			if !entries.IsArray() {
				return true
			}
			entries.ForEach(func(_, entry gjson.Result) bool {
				fn(memType.String(), entry)
				return true
			})
			return true
		})
		return true
	})
}

// displayText picks summary, then content, then text. A truthy value that is
// not a string disqualifies the entry.
func displayText(entry gjson.Result) (string, bool) {
	if !entry.IsObject() {
		return "", false
	}
	for _, field := range displayFields {
		v := entry.Get(field)
		if !truthy(v) {
			continue
		}
		if v.Type != gjson.String {
			return "", false
		}
		return v.Str, true
	}
	return "", false
}

// truthy mirrors loose JSON truthiness: null, false, 0 and "" are falsy.
func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null:
		return false
	case gjson.False:
		return false
	case gjson.Number:
		return v.Num != 0
	case gjson.String:
		return v.Str != ""
	default:
		return v.Exists()
	}
}
