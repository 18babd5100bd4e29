package outreach

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/prospect-cli/internal/llm"
	"github.com/sells-group/prospect-cli/internal/resilience"
)

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type mockDelivery struct {
	mock.Mock
}

func (m *mockDelivery) Send(ctx context.Context, sender, recipient, subject, body string) (string, error) {
	args := m.Called(ctx, sender, recipient, subject, body)
	return args.String(0), args.Error(1)
}

func fastRetry() resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.Sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return cfg
}

func phase(name string) interface{} {
	return mock.MatchedBy(func(req llm.Request) bool { return req.Phase == name })
}
