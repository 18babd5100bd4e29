package llm

import (
	"context"

	"github.com/sells-group/prospect-cli/internal/resilience"
	"github.com/sells-group/prospect-cli/pkg/gemini"
)

// Gemini adapts a gemini.Client to Completer.
type Gemini struct {
	client gemini.Client
	model  string
}

// NewGemini creates a Gemini-backed Completer. An empty model selects
// gemini.DefaultModel.
func NewGemini(client gemini.Client, model string) *Gemini {
	if model == "" {
		model = gemini.DefaultModel
	}
	return &Gemini{client: client, model: model}
}

// Complete implements Completer.
func (g *Gemini) Complete(ctx context.Context, req Request) (string, error) {
	msgs := make([]gemini.Message, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = gemini.Message{Role: m.Role, Content: m.Content}
	}

	temp := float32(req.Temperature)
	resp, err := g.client.Generate(ctx, gemini.GenerateRequest{
		Model:       g.model,
		System:      req.System,
		Messages:    msgs,
		MaxTokens:   int32(req.MaxTokens),
		Temperature: &temp,
	})
	if err != nil {
		return "", resilience.Classify(err, gemini.StatusCode(err))
	}
	return nonEmpty(resp.Text)
}
