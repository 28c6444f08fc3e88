package extract

import (
	"regexp"
	"strings"
)

// vagueRe matches known generic continuation phrases as whole phrases
// anchored to sentence-like boundaries, case-insensitively.
var vagueRe = regexp.MustCompile(`(?i)(^|\s)(tell me more|go on|i see|interesting|keep going|ok|hmm)(\.|$|\s)`)

// IsVague reports whether text is a generic continuation the interviewer is
// forbidden to use. Empty text counts as vague.
func IsVague(text string) bool {
	if strings.TrimSpace(text) == "" {
		return true
	}
	return vagueRe.MatchString(text)
}

// techVocabulary is the fixed set of technology keywords recognized by the
// lightweight entity hint. Matching is substring-based on lowered text.
var techVocabulary = []string{
	"node", "node.js", "redis", "postgres", "mysql", "kafka", "rabbitmq",
	"aws", "s3", "lambda", "docker", "kubernetes", "react", "ts",
	"typescript", "python", "java",
}

var (
	percentRe = regexp.MustCompile(`(\d{1,3})\s?%`)
	numberRe  = regexp.MustCompile(`\b(\d{2,6})\b`)
)

// Entities derives a lightweight hint from the user's answer: known
// technology keywords plus the first percentage and the first 2-6 digit
// numeric token, deduplicated, in detection order.
func Entities(text string) []string {
	if text == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var found []string
	add := func(entity string) {
		if _, ok := seen[entity]; ok {
			return
		}
		seen[entity] = struct{}{}
		found = append(found, entity)
	}

	lowered := strings.ToLower(text)
	for _, tech := range techVocabulary {
		if strings.Contains(lowered, tech) {
			add(tech)
		}
	}

	if match := percentRe.FindStringSubmatch(text); match != nil {
		add(match[1] + "%")
	}
	if match := numberRe.FindStringSubmatch(text); match != nil {
		add(match[1])
	}

	return found
}
