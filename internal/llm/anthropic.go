package llm

import (
	"context"

	"github.com/sells-group/prospect-cli/internal/resilience"
	"github.com/sells-group/prospect-cli/pkg/anthropic"
)

// Anthropic adapts an anthropic.Client to Completer.
type Anthropic struct {
	client anthropic.Client
	model  string
}

// NewAnthropic creates an Anthropic-backed Completer. An empty model
// selects anthropic.DefaultModel.
func NewAnthropic(client anthropic.Client, model string) *Anthropic {
	if model == "" {
		model = anthropic.DefaultModel
	}
	return &Anthropic{client: client, model: model}
}

// Complete implements Completer.
func (a *Anthropic) Complete(ctx context.Context, req Request) (string, error) {
	msgs := make([]anthropic.Message, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = anthropic.Message{Role: m.Role, Content: m.Content}
	}

	temp := req.Temperature
	mreq := anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   int64(req.MaxTokens),
		Messages:    msgs,
		Temperature: &temp,
	}
	if req.System != "" {
		mreq.System = []anthropic.SystemBlock{{Text: req.System}}
	}

	resp, err := a.client.CreateMessage(ctx, mreq)
	if err != nil {
		return "", resilience.Classify(err, anthropic.StatusCode(err))
	}
	resp.Usage.LogCost(a.model, req.Phase)
	return nonEmpty(resp.Text())
}
