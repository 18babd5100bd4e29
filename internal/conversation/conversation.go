// Package conversation classifies prospect replies and drafts follow-ups.
package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/llm"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/resilience"
)

// Intent is the classified purpose of an inbound message.
type Intent string

// Recognized intents.
const (
	IntentInterest       Intent = "Interest"
	IntentObjection      Intent = "Objection"
	IntentQuestion       Intent = "Question"
	IntentNotInterested  Intent = "Not Interested"
	IntentMeetingRequest Intent = "Meeting Request"
	IntentUnknown        Intent = "Unknown"
)

// Intents lists the recognized intents. Order matters for parsing:
// "Not Interested" must be tried before "Interest".
var Intents = []Intent{
	IntentNotInterested,
	IntentMeetingRequest,
	IntentObjection,
	IntentQuestion,
	IntentInterest,
}

const (
	classifyMaxTokens = 50
	replyMaxTokens    = 500
	replyTemperature  = 0.7
)

// Agent handles inbound replies for a lead.
type Agent struct {
	llm llm.Completer
}

// New creates an Agent whose reasoning calls go through cfg.
func New(c llm.Completer, cfg resilience.RetryConfig) *Agent {
	return &Agent{llm: llm.WithRetry(c, cfg)}
}

// ClassifyIntent labels message with one of the recognized intents. An
// answer that matches none of them yields IntentUnknown.
func (a *Agent) ClassifyIntent(ctx context.Context, message string) (Intent, error) {
	if strings.TrimSpace(message) == "" {
		return IntentUnknown, nil
	}

	labels := make([]string, len(Intents))
	for i, in := range Intents {
		labels[i] = string(in)
	}
	req := llm.Prompt(message, classifyMaxTokens, 0)
	req.System = "Classify the intent of this sales email reply. Answer with exactly one of: " +
		strings.Join(labels, ", ") + "."
	req.Phase = "conversation_classify"

	out, err := a.llm.Complete(ctx, req)
	if err != nil {
		return IntentUnknown, eris.Wrap(err, "conversation: classify intent")
	}
	return ParseIntent(out), nil
}

// ParseIntent maps a free-form model answer onto an Intent.
func ParseIntent(s string) Intent {
	lower := strings.ToLower(strings.TrimSpace(s))
	for _, in := range Intents {
		if strings.Contains(lower, strings.ToLower(string(in))) {
			return in
		}
	}
	return IntentUnknown
}

// DraftReply writes the next message in thread, grounded in the lead's
// research.
func (a *Agent) DraftReply(ctx context.Context, thread []string, lead model.Lead) (string, error) {
	if err := lead.Validate(); err != nil {
		return "", err
	}
	if len(thread) == 0 {
		return "", eris.New("conversation: empty thread")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s\n", lead.CompanyName)
	if lead.Research != nil {
		fmt.Fprintf(&b, "Research:\n%s\n", lead.Research.Data)
	}
	b.WriteString("\nEmail thread (oldest first):\n")
	for i, msg := range thread {
		fmt.Fprintf(&b, "--- message %d ---\n%s\n", i+1, strings.TrimSpace(msg))
	}
	b.WriteString("\nWrite the next reply. Return only the reply body.")

	req := llm.Prompt(b.String(), replyMaxTokens, replyTemperature)
	req.System = "You are a sales development representative continuing an email conversation."
	req.Phase = "conversation_reply"

	out, err := a.llm.Complete(ctx, req)
	if err != nil {
		return "", eris.Wrap(err, "conversation: draft reply")
	}
	zap.L().Debug("conversation: drafted reply", zap.String("company", lead.CompanyName), zap.Int("thread_len", len(thread)))
	return strings.TrimSpace(out), nil
}

// SplitThread splits a thread file into messages separated by lines
// containing only "---".
func SplitThread(text string) []string {
	var msgs []string
	var cur strings.Builder
	flush := func() {
		if m := strings.TrimSpace(cur.String()); m != "" {
			msgs = append(msgs, m)
		}
		cur.Reset()
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "---" {
			flush()
			continue
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
	}
	flush()
	return msgs
}
