package persona

import "strings"

// ID is the closed set of candidate persona identifiers.
type ID string

const (
	Confused  ID = "confused"
	Efficient ID = "efficient"
	Chatty    ID = "chatty"
	EdgeCase  ID = "edge-case"
)

// Profile captures how the interviewer should adapt to a candidate persona
// and what behavior to expect from them.
type Profile struct {
	ID                  ID     `json:"id"`
	Label               string `json:"label"`
	InterviewerBehavior string `json:"interviewerBehavior"`
	ExpectedBehavior    string `json:"expectedBehavior"`
	FeedbackAdvice      string `json:"feedbackAdvice"`
}

// Seed provides the four built-in candidate personas.
func Seed() []Profile {
	return []Profile{
		{
			ID:                  Confused,
			Label:               "Confused User",
			InterviewerBehavior: "Be extra patient and provide clarifying context. Break down questions into smaller parts. Offer examples when the user seems stuck.",
			ExpectedBehavior:    "User may ask for clarification, give incomplete answers, or express uncertainty frequently.",
			FeedbackAdvice:      "Guidance on asking clarifying questions",
		},
		{
			ID:                  Efficient,
			Label:               "Efficient User",
			InterviewerBehavior: "Keep questions concise and direct. Move quickly through topics. Accept brief but complete answers.",
			ExpectedBehavior:    "User provides direct, to-the-point answers with minimal elaboration.",
			FeedbackAdvice:      "Balance between brevity and completeness",
		},
		{
			ID:                  Chatty,
			Label:               "Chatty User",
			InterviewerBehavior: "Politely redirect when answers become too lengthy. Ask focused follow-ups to keep on track. Acknowledge their enthusiasm but guide back to the question.",
			ExpectedBehavior:    "User tends to give long, detailed answers with tangents. May include extra stories or context.",
			FeedbackAdvice:      "Tips on staying concise and focused",
		},
		{
			ID:                  EdgeCase,
			Label:               "Edge Case User",
			InterviewerBehavior: "Handle invalid inputs gracefully. Redirect off-topic responses firmly but politely. Set clear boundaries while maintaining professionalism.",
			ExpectedBehavior:    "User may go off-topic, provide invalid responses, or test the bot's limits.",
			FeedbackAdvice:      "Importance of staying on-topic and professional",
		},
	}
}

// Normalize maps a free-text persona label to its ID. Unrecognized values
// map to Efficient; that is the defined default, not an error.
func Normalize(raw string) ID {
	label := strings.ToLower(strings.TrimSpace(raw))
	label = strings.TrimSpace(strings.TrimSuffix(label, "user"))
	switch label {
	case "confused":
		return Confused
	case "chatty":
		return Chatty
	case "edge case", "edge-case", "edgecase":
		return EdgeCase
	default:
		return Efficient
	}
}
