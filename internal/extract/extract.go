// Package extract turns free-form oracle output into typed results and
// carries the reply-quality heuristics (vagueness, entity hints) used by the
// retry escalation.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Question is the structured payload the generation prompt contracts for.
type Question struct {
	Reply     string   `json:"reply"`
	FollowUps []string `json:"follow_up_questions"`
	Reason    string   `json:"follow_up_reason"`
}

// strategy carves a parse candidate out of raw oracle text. Strategies are
// tried in order; the first one whose candidate unmarshals wins.
type strategy func(raw string) (string, bool)

var strategies = []strategy{
	braceSpan,
	fencedBlock,
	wholeText,
}

var fencedBlockRe = regexp.MustCompile("(?is)```json\\s*(.*?)```")

// braceSpan takes the substring between the first '{' and the last '}'.
func braceSpan(raw string) (string, bool) {
	first := strings.Index(raw, "{")
	last := strings.LastIndex(raw, "}")
	if first == -1 || last <= first {
		return "", false
	}
	return raw[first : last+1], true
}

// fencedBlock takes the contents of a ```json fenced code block.
func fencedBlock(raw string) (string, bool) {
	match := fencedBlockRe.FindStringSubmatch(raw)
	if match == nil {
		return "", false
	}
	return strings.TrimSpace(match[1]), true
}

func wholeText(raw string) (string, bool) {
	return raw, true
}

// Unmarshal applies the layered parse strategies to raw and decodes the
// first candidate that is a non-empty JSON object into v. Literal "null",
// "{}", arrays and bare scalars are rejected so they route to the caller's
// fallback. A false return is a normal, expected outcome for unusable
// oracle output, not an error condition.
func Unmarshal(raw string, v any) bool {
	if strings.TrimSpace(raw) == "" {
		return false
	}
	for _, carve := range strategies {
		candidate, ok := carve(raw)
		if !ok {
			continue
		}
		var probe map[string]json.RawMessage
		if json.Unmarshal([]byte(candidate), &probe) != nil || len(probe) == 0 {
			continue
		}
		if json.Unmarshal([]byte(candidate), v) == nil {
			return true
		}
	}
	return false
}

// Extract parses raw oracle text into a Question, or reports failure.
func Extract(raw string) (*Question, bool) {
	q := &Question{}
	if !Unmarshal(raw, q) {
		return nil, false
	}
	return q, true
}
