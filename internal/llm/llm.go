// Package llm defines the reasoning-service contract used by the research,
// outreach, and conversation stages, with adapters for each provider.
package llm

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/resilience"
)

// Role values for Message.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one conversational turn.
type Message struct {
	Role    string
	Content string
}

// Request is a single stateless completion request.
type Request struct {
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float64
	// Phase labels the request in cost and retry logs.
	Phase string
}

// Completer produces text for a prompt. Implementations return a
// *resilience.TransientError for rate limiting and server-side failures.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Prompt builds a single-turn user request.
func Prompt(text string, maxTokens int, temperature float64) Request {
	return Request{
		Messages:    []Message{{Role: RoleUser, Content: text}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}

// ErrEmptyCompletion is returned when the provider answers with no text.
var ErrEmptyCompletion = eris.New("llm: empty completion")

func nonEmpty(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// Retrying wraps a Completer so every call goes through the retry policy.
type Retrying struct {
	next Completer
	cfg  resilience.RetryConfig
}

// WithRetry returns a Completer that retries transient failures of c.
func WithRetry(c Completer, cfg resilience.RetryConfig) *Retrying {
	return &Retrying{next: c, cfg: cfg}
}

// Complete implements Completer.
func (r *Retrying) Complete(ctx context.Context, req Request) (string, error) {
	cfg := r.cfg
	if cfg.OnRetry == nil {
		cfg = cfg.WithLogger("llm", req.Phase)
	}
	return resilience.DoVal(ctx, cfg, func(ctx context.Context) (string, error) {
		return r.next.Complete(ctx, req)
	})
}
