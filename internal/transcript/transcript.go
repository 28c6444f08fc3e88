// Package transcript provides the bounded view and textual rendering of a
// session's turn history used to build oracle prompts.
package transcript

import (
	"fmt"
	"strings"

	"github.com/prepdeck/interview-coach/internal/model/interview"
)

// Truncate returns the last max entries of turns in original order. A
// transcript shorter than max is returned unchanged. Pure function; the
// input slice is never modified.
func Truncate(turns []interview.Turn, max int) []interview.Turn {
	if max <= 0 || len(turns) <= max {
		return turns
	}
	return turns[len(turns)-max:]
}

// Render formats each turn as "<1-based index>. <SPEAKER>:\n<trimmed text>\n"
// joined by blank lines. The rendering feeds oracle prompts only and is
// never shown verbatim to the end user.
func Render(turns []interview.Turn) string {
	lines := make([]string, 0, len(turns))
	for i, turn := range turns {
		lines = append(lines, fmt.Sprintf("%d. %s:\n%s\n", i+1, strings.ToUpper(string(turn.Speaker)), strings.TrimSpace(turn.Text)))
	}
	return strings.Join(lines, "\n")
}
