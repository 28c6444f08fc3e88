// Package interview sequences one inbound turn of a mock interview: session
// resolution, off-topic escalation, question generation with bounded retry,
// and transcript commit.
package interview

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/prepdeck/interview-coach/internal/extract"
	"github.com/prepdeck/interview-coach/internal/model/interview"
	"github.com/prepdeck/interview-coach/internal/model/persona"
	"github.com/prepdeck/interview-coach/internal/service/classifier"
	"github.com/prepdeck/interview-coach/internal/service/oracle"
	"github.com/prepdeck/interview-coach/internal/store"
	"github.com/prepdeck/interview-coach/internal/transcript"
)

var ErrSessionNotFound = errors.New("session not found")

// Transcript windows for the two oracle-facing renderings. The bounds are
// independent: generation sees a short recent window, feedback reviews the
// whole interview up to a hard cap.
const (
	generateWindow = 18
	feedbackWindow = 200
)

// offTopicConfidenceGate is the minimum classifier confidence required
// before a positive verdict is acted on.
const offTopicConfidenceGate = 0.7

// TurnRequest carries one inbound user turn.
type TurnRequest struct {
	SessionID   string
	Role        string
	Persona     string
	Experience  string
	UserMessage string
}

// TurnResult is the terminal reply for one turn.
type TurnResult struct {
	Reply        string
	FollowUps    []string
	Reason       string
	OffTopic     bool
	WarningCount int
}

// FeedbackResult is the free-form review of a whole session.
type FeedbackResult struct {
	Feedback      string
	OffTopicCount int
}

// Service is the turn controller. All session mutation happens here, under
// the store's per-session lock, and only at commit points, so a fault
// mid-turn leaves the session as it was.
type Service struct {
	store      store.Store
	personas   persona.Store
	oracle     oracle.Generator
	classifier *classifier.Service
}

// NewService wires the turn controller to its collaborators.
func NewService(st store.Store, personas persona.Store, gen oracle.Generator, cls *classifier.Service) *Service {
	return &Service{
		store:      st,
		personas:   personas,
		oracle:     gen,
		classifier: cls,
	}
}

// ProcessTurn handles one inbound turn end to end. It performs at most three
// oracle calls (classify, generate, retry) and always terminates with a
// concrete reply; oracle failures route into the deterministic fallback.
func (s *Service) ProcessTurn(ctx context.Context, req TurnRequest) (TurnResult, error) {
	cfg := interview.Config{
		Role:       valueOrDefault(req.Role, DefaultRole),
		Persona:    persona.Normalize(req.Persona),
		Experience: valueOrDefault(req.Experience, DefaultExperience),
	}

	unlock := s.store.Lock(req.SessionID)
	defer unlock()

	session := s.store.CreateIfAbsent(req.SessionID, cfg)
	// Caller-supplied config replaces the stored one wholesale every turn.
	session.Config = cfg

	message := strings.TrimSpace(req.UserMessage)
	if message == "" {
		message = StartSentinel
	}

	// The very first user turn is never classified; it answers "start the
	// interview", not a content question.
	classified := false
	var verdict classifier.Result
	if len(session.Transcript) > 1 && session.LastQuestion != "" {
		verdict = s.classifier.Classify(ctx, message, session.LastQuestion, cfg.Role, session.Transcript)
		classified = true
		log.Printf("[interview] session=%s off_topic=%t confidence=%.2f", session.ID, verdict.OffTopic, verdict.Confidence)

		if verdict.OffTopic && verdict.Confidence > offTopicConfidenceGate {
			return s.commitWarning(session, message, verdict), nil
		}
	}

	working := make([]interview.Turn, 0, len(session.Transcript)+1)
	working = append(working, session.Transcript...)
	userTurn := interview.Turn{ID: uuid.NewString(), Speaker: interview.SpeakerUser, Text: message}
	working = append(working, userTurn)

	profile := persona.Resolve(s.personas, cfg.Persona)
	system := compileSystemPrompt(profile, cfg.Role, cfg.Experience)
	prompt := compileTurnPrompt(system, transcript.Render(transcript.Truncate(working, generateWindow)))

	parsed := s.generate(ctx, session.ID, prompt, message)

	reply := strings.TrimSpace(parsed.Reply)
	if reply == "" {
		reply = "Thanks — can you elaborate on that?"
	}
	followUps := parsed.FollowUps
	if len(followUps) > 3 {
		followUps = followUps[:3]
	}
	reason := strings.TrimSpace(parsed.Reason)

	// COMMIT: the only mutation point on the normal path.
	botTurn := interview.Turn{ID: uuid.NewString(), Speaker: interview.SpeakerBot, Text: reply}
	session.Append(userTurn, botTurn)
	session.LastQuestion = reply
	session.LastFollowUps = followUps
	if reason != "" {
		session.AskedTopics[reason] = struct{}{}
	}
	if classified && !verdict.OffTopic {
		session.OffTopicWarnings = 0
	}

	return TurnResult{
		Reply:        reply,
		FollowUps:    followUps,
		Reason:       reason,
		WarningCount: session.OffTopicWarnings,
	}, nil
}

// commitWarning appends the user turn and the tagged warning turn as one
// pair, increments the escalation counter and short-circuits the turn.
func (s *Service) commitWarning(session *interview.Session, message string, verdict classifier.Result) TurnResult {
	session.OffTopicWarnings++
	warning := warningMessage(session.OffTopicWarnings, session.LastQuestion)

	session.Append(
		interview.Turn{ID: uuid.NewString(), Speaker: interview.SpeakerUser, Text: message},
		interview.Turn{
			ID:      uuid.NewString(),
			Speaker: interview.SpeakerBot,
			Text:    warning,
			Meta:    &interview.TurnMeta{Kind: interview.MetaOffTopicWarning, Count: session.OffTopicWarnings},
		},
	)

	return TurnResult{
		Reply:        warning,
		Reason:       verdict.Reason,
		OffTopic:     true,
		WarningCount: session.OffTopicWarnings,
	}
}

// generate runs the GENERATE and RETRY states: one oracle call, one narrower
// retry when the output fails extraction or is vague, then the local
// fallback. Never more than two calls.
func (s *Service) generate(ctx context.Context, sessionID, prompt, lastAnswer string) *extract.Question {
	raw, err := s.oracle.Generate(ctx, prompt, oracle.TemperatureGenerate)
	if err != nil {
		log.Printf("[interview] session=%s generate failed: %v", sessionID, err)
	} else if parsed, ok := extract.Extract(raw); ok && !extract.IsVague(parsed.Reply) {
		return parsed
	}

	retry := retryPrompt(lastAnswer, extract.Entities(lastAnswer))
	raw, err = s.oracle.Generate(ctx, retry, oracle.TemperatureRetry)
	if err != nil {
		log.Printf("[interview] session=%s retry failed: %v", sessionID, err)
	} else if parsed, ok := extract.Extract(raw); ok {
		return parsed
	}

	return fallbackQuestion()
}

// Feedback renders up to feedbackWindow transcript turns and asks the oracle
// for the structured review. Oracle failure degrades to a fixed notice; the
// session itself is never mutated.
func (s *Service) Feedback(ctx context.Context, sessionID string) (FeedbackResult, error) {
	unlock := s.store.Lock(sessionID)
	defer unlock()

	session, ok := s.store.Get(sessionID)
	if !ok {
		return FeedbackResult{}, ErrSessionNotFound
	}

	profile := persona.Resolve(s.personas, session.Config.Persona)
	rendered := transcript.Render(transcript.Truncate(session.Transcript, feedbackWindow))
	prompt := feedbackPrompt(session.Config.Role, session.Config.Experience, profile, session.OffTopicWarnings, rendered)

	feedback, err := s.oracle.Generate(ctx, prompt, oracle.TemperatureGenerate)
	if err != nil {
		log.Printf("[interview] session=%s feedback failed: %v", sessionID, err)
		feedback = "Unable to generate feedback at this time."
	}

	return FeedbackResult{Feedback: feedback, OffTopicCount: session.OffTopicWarnings}, nil
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}
