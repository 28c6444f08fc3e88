// Package oracle abstracts the external text-generation service the core
// depends on. The core manages state and contracts around the oracle; it
// never interprets language itself.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ErrUnavailable signals that no oracle backend is configured. Callers treat
// it like any other transport failure and fall back deterministically.
var ErrUnavailable = errors.New("oracle unavailable")

// Sampling temperatures per call site. All calls run near-deterministic.
const (
	TemperatureGenerate float32 = 0.2
	TemperatureClassify float32 = 0.1
	TemperatureRetry    float32 = 0.12
)

// DefaultTimeout bounds a single oracle call. A deadline expiry routes into
// the same fallback path as malformed output.
const DefaultTimeout = 30 * time.Second

// Generator is the collaborator contract consumed by the turn controller,
// the off-topic classifier and the feedback path. Implementations are
// stateless; a call may fail or return arbitrary text.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float32) (string, error)
}

// Ark generates text through an eino chat model backed by the Ark provider.
type Ark struct {
	chatModel model.ChatModel
	timeout   time.Duration
}

// NewArk wraps chatModel with per-call deadlines. A non-positive timeout
// falls back to DefaultTimeout.
func NewArk(chatModel model.ChatModel, timeout time.Duration) *Ark {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Ark{chatModel: chatModel, timeout: timeout}
}

// Generate sends prompt as a single user message and returns the raw model
// text. The temperature applies to this call only.
func (a *Ark) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	msg, err := a.chatModel.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)}, model.WithTemperature(temperature))
	if err != nil {
		return "", fmt.Errorf("oracle generate: %w", err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", fmt.Errorf("oracle generate: empty response")
	}
	return msg.Content, nil
}

// Disabled is the Generator used when AI credentials are absent; every call
// fails with ErrUnavailable so the deterministic fallbacks take over.
type Disabled struct{}

// Generate always reports the oracle as unavailable.
func (Disabled) Generate(context.Context, string, float32) (string, error) {
	return "", ErrUnavailable
}
