package interview

import (
	"fmt"
	"strings"

	"github.com/prepdeck/interview-coach/internal/extract"
	"github.com/prepdeck/interview-coach/internal/model/persona"
)

// Defaults applied when the caller leaves interview parameters blank.
const (
	DefaultRole       = "Software Engineer"
	DefaultExperience = "Mid-level (3-5 years)"
)

// StartSentinel replaces an empty or whitespace-only user message. The first
// turn of a session is a request to begin, not an answer.
const StartSentinel = "Start the interview."

// warningMessage returns the escalation text for the given consecutive
// off-topic count. Tiers one and two repeat the pending question; the third
// tier and beyond threatens ending the session.
func warningMessage(count int, lastQuestion string) string {
	switch count {
	case 1:
		return "I notice your response seems to be going off-topic. Let's stay focused on the interview question. " + lastQuestion
	case 2:
		return "I appreciate your enthusiasm, but we need to stay on topic for the interview. Please answer: " + lastQuestion
	default:
		return "This is your final reminder - please provide a relevant answer to the interview question, or we may need to end the session."
	}
}

// fallbackQuestion is the hand-authored reply used when both oracle calls in
// a turn fail to yield a usable payload. It is fully local so a turn always
// terminates.
func fallbackQuestion() *extract.Question {
	return &extract.Question{
		Reply: "Thanks — could you give a concrete example or the specific metric you mentioned?",
		FollowUps: []string{
			"Can you describe a specific task or project where you used that skill?",
			"What was the measurable outcome (latency, throughput, error rate)?",
		},
		Reason: "Fallback: model did not return structured JSON.",
	}
}

// compileSystemPrompt renders the deterministic interviewer instructions for
// one {role, persona, experience} triple, including the persona behavior
// profile and the strict three-field output contract.
func compileSystemPrompt(profile persona.Profile, role, experience string) string {
	return fmt.Sprintf(`
You are an AI interview coach conducting a realistic mock interview.

ROLE: %s
EXPERIENCE LEVEL: %s
USER PERSONA: %s

PERSONA-SPECIFIC GUIDANCE:
%s
Expected user behavior: %s

PRIMARY GOALS:
1. Conduct a structured mock interview for this role.
2. Ask exactly one question at a time (keep it short: 1-2 sentences).
3. Ask targeted follow-up questions strictly based on the user's last answer.
   - Pick a concrete topic/skill/project/numerical detail the user mentioned and ask about it.
   - If the user named a technology (e.g. "Node.js", "Redis") ask for specifics ("How did you use Redis? What problem did it solve?").
   - If the user mentioned a project, ask for scope/metrics/your role/technical tradeoffs.
4. Avoid generic prompts like "Tell me more" or "Go on". Never use those as the primary follow-up.
5. If the user's answer lacks enough detail, ask a single clarifying question targeted to elicit a concrete example (e.g., "Can you give a specific example where you used X and what the result was?").
6. If the user says "end interview" or "feedback", acknowledge briefly and stop asking questions (app will call feedback endpoint).

OUTPUT FORMAT (STRICT):
Return only valid JSON (no extra commentary) with exactly these fields:
{
  "reply": "<the single question or brief acknowledgement text to send to the user>",
  "follow_up_questions": ["<optional array of 1-3 potential follow-up questions derived from the last user answer>"],
  "follow_up_reason": "<one-line reason why you chose the follow-ups (what piece of the user's answer it was based on)>"
}

RULES:
- reply must be a single short question or brief acknowledgement (<= 2 sentences).
- Do NOT provide model/ideal answers or teach — you're asking questions.
- follow_up_questions should be concrete and specific, based only on the user's previous answer.
- follow_up_reason must reference the exact phrase or concept in the user's answer you used to design the follow-ups.

FEW-SHOT EXAMPLES:

Example 1:
User: "I built a payment service using Node.js and Redis to cache rate limits; I wrote most of the backend and tuned Redis eviction."
Assistant (desired JSON):
{
  "reply": "Nice — can you walk me through the rate limit flow and where Redis fits in?",
  "follow_up_questions": [
    "What eviction policy did you use in Redis and why?",
    "How did you measure cache hit rate and did it affect latency?",
    "Did you consider other approaches for rate limiting? Why choose Redis?"
  ],
  "follow_up_reason": "User mentioned Redis for rate limits and tuning its eviction — follow-ups probe eviction, metrics, alternatives."
}

Example 2:
User: "I led a team that delivered an image pipeline which reduced latency by 40%%."
Assistant (desired JSON):
{
  "reply": "Great — what was the largest technical change you made to achieve that 40%% reduction?",
  "follow_up_questions": [
    "Which part of the pipeline (encoding, network, caching) contributed most to the improvement?",
    "How did you measure the 40%% improvement? Which metrics and test environment?",
    "What trade-offs, if any, did you accept to reach that improvement?"
  ],
  "follow_up_reason": "User provided a 40%% latency reduction metric — follow-ups probe the technical change, measurement, and trade-offs."
}

End of instructions.
`, role, experience, profile.Label, profile.InterviewerBehavior, profile.ExpectedBehavior)
}

// compileTurnPrompt joins the system instructions with the rendered
// transcript and the emit-only-JSON instruction. This is the single unit
// passed to the oracle for question generation.
func compileTurnPrompt(systemPrompt, renderedTranscript string) string {
	return fmt.Sprintf(`
%s

INTERVIEW SO FAR:
%s

Now produce the JSON output described in the SYSTEM PROMPT.
`, systemPrompt, renderedTranscript)
}

// retryPrompt narrows the request to the user's literal last answer plus an
// optional entity hint, explicitly forbidding generic phrases.
func retryPrompt(lastAnswer string, entities []string) string {
	hint := ""
	if len(entities) > 0 {
		hint = fmt.Sprintf("Detected entities: %s.", strings.Join(entities, ", "))
	}

	return fmt.Sprintf(`
You returned a vague response previously. Based ONLY on the user's last answer below, generate a single concrete follow-up question and 1-3 specific follow-up question candidates as JSON in the exact same format.

USER LAST ANSWER:
%q

%s

Constraints:
- Produce only valid JSON with fields: reply, follow_up_questions, follow_up_reason.
- reply must be a short targeted question (<=2 sentences) that drills into a specific skill/project/metric mentioned by the user.
- Do NOT use phrases like "Tell me more", "Go on", "I see", or "Interesting".
- If you detect a technology or metric in the user's answer, prioritize asking about that.

Return only JSON.
`, lastAnswer, hint)
}

// feedbackPrompt asks for the structured multi-section review of a finished
// interview as free-form text.
func feedbackPrompt(role, experience string, profile persona.Profile, warnings int, transcriptText string) string {
	return fmt.Sprintf(`
You are an expert interview coach.

ROLE: %s
CANDIDATE EXPERIENCE: %s
USER PERSONA: %s
OFF-TOPIC WARNINGS GIVEN: %d

INTERVIEW TRANSCRIPT:
%s

TASK:
Provide structured feedback with the following sections:

1) Overall Summary (4-6 lines)
   - Mention if the candidate stayed on topic or went off-topic

2) Communication Skills (/10) + explanation
   - Consider clarity, conciseness, relevance to questions asked
   - Deduct points if user frequently went off-topic

3) Technical Depth (/10) + explanation
   - Assess technical knowledge demonstrated for the %s role

4) Behavioral & Problem-Solving (/10) + explanation
   - How well did they structure answers, provide examples, show problem-solving

5) Persona-specific advice
   - For %q: %s

6) Concrete Improvement Tips:
   - 5-8 bullet points, each starting with a verb (e.g., "Clarify...", "Practice...")
   - If user went off-topic, include specific advice on staying focused

7) Strengths to Build On:
   - 2-3 specific things the candidate did well

Be honest but encouraging. Keep the tone supportive and constructive.
`, role, experience, profile.Label, warnings, transcriptText, role, profile.Label, profile.FeedbackAdvice)
}
