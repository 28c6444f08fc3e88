package interview

// Speaker identifies who produced a transcript turn.
type Speaker string

const (
	SpeakerUser Speaker = "user"
	SpeakerBot  Speaker = "bot"
)

// MetaOffTopicWarning tags bot turns that carry an escalation warning
// instead of a generated question.
const MetaOffTopicWarning = "off_topic_warning"

// TurnMeta annotates special turns. Only warning turns carry metadata.
type TurnMeta struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

// Turn is one speaker's contribution. Turns are immutable once appended
// to a session transcript.
type Turn struct {
	ID      string    `json:"id"`
	Speaker Speaker   `json:"speaker"`
	Text    string    `json:"text"`
	Meta    *TurnMeta `json:"meta,omitempty"`
}
