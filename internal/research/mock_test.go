package research

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/prospect-cli/internal/llm"
	"github.com/sells-group/prospect-cli/internal/model"
)

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) GetResearch(ctx context.Context, key string) (*model.Research, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Research), args.Error(1)
}

func (m *mockCache) PutResearch(ctx context.Context, key string, r model.Research) error {
	args := m.Called(ctx, key, r)
	return args.Error(0)
}

func phase(name string) interface{} {
	return mock.MatchedBy(func(req llm.Request) bool { return req.Phase == name })
}
