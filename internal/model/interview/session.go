package interview

import "github.com/prepdeck/interview-coach/internal/model/persona"

// Config holds the interview parameters supplied by the caller. It is
// replaced wholesale on every turn, never merged field by field.
type Config struct {
	Role       string     `json:"role"`
	Persona    persona.ID `json:"persona"`
	Experience string     `json:"experience"`
}

// Session is the full state of one ongoing mock interview, keyed by an
// opaque caller-supplied id. Sessions live in memory only.
type Session struct {
	ID               string
	Transcript       []Turn
	Config           Config
	LastQuestion     string
	OffTopicWarnings int
	LastFollowUps    []string
	AskedTopics      map[string]struct{}
}

// Append adds turns to the transcript. The transcript is append-only;
// existing entries are never rewritten or reordered.
func (s *Session) Append(turns ...Turn) {
	s.Transcript = append(s.Transcript, turns...)
}

// Topics returns the accumulated follow-up rationales in a stable copy.
func (s *Session) Topics() []string {
	topics := make([]string, 0, len(s.AskedTopics))
	for topic := range s.AskedTopics {
		topics = append(topics, topic)
	}
	return topics
}
