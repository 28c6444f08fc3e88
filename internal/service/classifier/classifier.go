// Package classifier asks the oracle whether a candidate's reply is relevant
// to the question that was asked. It renders a verdict only; escalation
// policy belongs to the turn controller.
package classifier

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/prepdeck/interview-coach/internal/extract"
	"github.com/prepdeck/interview-coach/internal/model/interview"
	"github.com/prepdeck/interview-coach/internal/service/oracle"
)

// Result is the off-topic verdict for a single user reply.
type Result struct {
	OffTopic   bool
	Confidence float32
	Reason     string
}

// Service delegates relevance judgement to the oracle under a dedicated
// prompt. Any failure fails open toward leniency: a transient infrastructure
// fault must never block a legitimate user turn.
type Service struct {
	oracle oracle.Generator
}

// New creates the off-topic classifier.
func New(gen oracle.Generator) *Service {
	return &Service{oracle: gen}
}

type verdictPayload struct {
	IsOffTopic bool    `json:"is_off_topic"`
	Confidence float32 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Classify judges whether userText answers lastQuestion. The last four
// recent turns provide context. The lenient zero verdict is returned on any
// transport or parse failure.
func (s *Service) Classify(ctx context.Context, userText, lastQuestion, role string, recent []interview.Turn) Result {
	prompt := buildPrompt(userText, lastQuestion, role, recent)

	raw, err := s.oracle.Generate(ctx, prompt, oracle.TemperatureClassify)
	if err != nil {
		log.Printf("[offtopic] classifier call failed, treating as on-topic: %v", err)
		return Result{Reason: "Error in detection"}
	}

	payload := verdictPayload{}
	if !extract.Unmarshal(raw, &payload) {
		return Result{Reason: "Unable to determine"}
	}

	confidence := payload.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return Result{
		OffTopic:   payload.IsOffTopic,
		Confidence: confidence,
		Reason:     strings.TrimSpace(payload.Reason),
	}
}

func buildPrompt(userText, lastQuestion, role string, recent []interview.Turn) string {
	const contextWindow = 4

	start := len(recent) - contextWindow
	if start < 0 {
		start = 0
	}
	var recentText strings.Builder
	for _, turn := range recent[start:] {
		fmt.Fprintf(&recentText, "%s: %s\n", turn.Speaker, turn.Text)
	}

	return fmt.Sprintf(`
You are analyzing whether a user's response is relevant to an interview question.

INTERVIEW ROLE: %s
LAST QUESTION ASKED: %q
USER'S RESPONSE: %q

RECENT CONTEXT:
%s
Task: Determine if the user's response is off-topic or irrelevant to the interview question asked.

Off-topic indicators:
- Talking about completely unrelated subjects (weather, random topics, personal life unrelated to the question)
- Asking about the interviewer instead of answering
- Going on tangents not related to professional experience
- Casual chitchat unrelated to the job role

NOT off-topic:
- Providing examples from different projects (still relevant)
- Asking clarification about the question
- Brief personal anecdotes that lead to answering the question
- Nervous rambling but eventually answering

Return ONLY a JSON object:
{
  "is_off_topic": true/false,
  "confidence": 0.0-1.0,
  "reason": "brief explanation"
}
`, role, lastQuestion, userText, recentText.String())
}
