package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/llm"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/resilience"
)

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func fastRetry() resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.Sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return cfg
}

func TestParseIntent(t *testing.T) {
	tests := []struct {
		in   string
		want Intent
	}{
		{"Interest", IntentInterest},
		{"  meeting request.", IntentMeetingRequest},
		{"Not Interested", IntentNotInterested},
		{"Intent: Objection", IntentObjection},
		{"question", IntentQuestion},
		{"spam", IntentUnknown},
		{"", IntentUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseIntent(tt.in))
		})
	}
}

func TestClassifyIntent(t *testing.T) {
	c := &mockCompleter{}
	c.On("Complete", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return req.MaxTokens == 50 && strings.Contains(req.System, "Meeting Request") &&
			req.Messages[0].Content == "Can we talk Tuesday?"
	})).Return("Meeting Request", nil)

	intent, err := New(c, fastRetry()).ClassifyIntent(context.Background(), "Can we talk Tuesday?")

	require.NoError(t, err)
	assert.Equal(t, IntentMeetingRequest, intent)
}

func TestClassifyIntent_EmptyMessage(t *testing.T) {
	c := &mockCompleter{}

	intent, err := New(c, fastRetry()).ClassifyIntent(context.Background(), "  ")

	require.NoError(t, err)
	assert.Equal(t, IntentUnknown, intent)
	c.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestClassifyIntent_Error(t *testing.T) {
	c := &mockCompleter{}
	c.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("unauthorized"))

	intent, err := New(c, fastRetry()).ClassifyIntent(context.Background(), "hi")

	require.Error(t, err)
	assert.Equal(t, IntentUnknown, intent)
}

func TestDraftReply(t *testing.T) {
	c := &mockCompleter{}
	c.On("Complete", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		p := req.Messages[0].Content
		return req.MaxTokens == 500 &&
			strings.Contains(p, "Company: Acme") &&
			strings.Contains(p, "Pain Points: hiring") &&
			strings.Contains(p, "--- message 2 ---\nWhat does it cost?")
	})).Return("  Pricing starts at...  ", nil)

	lead := model.Lead{CompanyName: "Acme", Research: &model.Research{Data: "Pain Points: hiring"}}
	reply, err := New(c, fastRetry()).DraftReply(context.Background(), []string{"Intro email", "What does it cost?"}, lead)

	require.NoError(t, err)
	assert.Equal(t, "Pricing starts at...", reply)
}

func TestDraftReply_Invalid(t *testing.T) {
	a := New(&mockCompleter{}, fastRetry())

	_, err := a.DraftReply(context.Background(), []string{"hi"}, model.Lead{})
	var ve *model.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = a.DraftReply(context.Background(), nil, model.Lead{CompanyName: "Acme"})
	assert.Error(t, err)
}

func TestSplitThread(t *testing.T) {
	msgs := SplitThread("Hello Jane,\nIntro.\n---\nThanks, what's the price?\n  ---  \n\n---\n")
	assert.Equal(t, []string{"Hello Jane,\nIntro.", "Thanks, what's the price?"}, msgs)
	assert.Empty(t, SplitThread(""))
}
