package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/prospect-cli/internal/model"
)

type mockResearcher struct {
	mock.Mock
}

func (m *mockResearcher) Research(ctx context.Context, lead model.Lead) (model.Lead, error) {
	args := m.Called(ctx, lead)
	if fn, ok := args.Get(0).(func(context.Context, model.Lead) model.Lead); ok {
		return fn(ctx, lead), args.Error(1)
	}
	return args.Get(0).(model.Lead), args.Error(1)
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, lead model.Lead) (*model.EmailContent, error) {
	args := m.Called(ctx, lead)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EmailContent), args.Error(1)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, recipient, subject, content string) bool {
	args := m.Called(ctx, recipient, subject, content)
	return args.Bool(0)
}

type mockDiscoverer struct {
	mock.Mock
}

func (m *mockDiscoverer) Discover(ctx context.Context, c model.SearchCriteria, maxResults int) ([]model.Lead, error) {
	args := m.Called(ctx, c, maxResults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Lead), args.Error(1)
}

type recordingSink struct {
	rows []model.ReportRow
	err  error
}

func (s *recordingSink) Sync(_ context.Context, row model.ReportRow) error {
	s.rows = append(s.rows, row)
	return s.err
}

func company(name string) interface{} {
	return mock.MatchedBy(func(l model.Lead) bool { return l.CompanyName == name })
}

// researchOK attaches complete research to the lead.
func researchOK(_ context.Context, l model.Lead) model.Lead {
	l.Research = &model.Research{Data: "Company Overview Key Products/Services Target Market Pain Points"}
	return l
}

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
