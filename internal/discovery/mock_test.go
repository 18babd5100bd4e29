package discovery

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/pkg/serpapi"
)

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) Search(ctx context.Context, query string, maxResults int, params map[string]string) ([]model.RawResult, error) {
	args := m.Called(ctx, query, maxResults, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RawResult), args.Error(1)
}

type mockSerpClient struct {
	mock.Mock
}

func (m *mockSerpClient) Search(ctx context.Context, query string, num int, params map[string]string) ([]serpapi.OrganicResult, error) {
	args := m.Called(ctx, query, num, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]serpapi.OrganicResult), args.Error(1)
}
