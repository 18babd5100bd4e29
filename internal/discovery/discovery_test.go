package discovery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/model"
)

func TestDiscover_NormalizesResults(t *testing.T) {
	s := &mockSearcher{}
	s.On("Search", mock.Anything, `"Acme" "CTO"`, 5, map[string]string{"location": "Boston"}).
		Return([]model.RawResult{
			{Title: "Acme Corp", Link: "https://acme.com", Snippet: "cto@acme.com"},
			{Title: "Acme Labs", Link: "https://acmelabs.io"},
		}, nil)

	leads, err := New(s).Discover(context.Background(), model.SearchCriteria{
		Keyword:  "Acme",
		Position: "CTO",
		Location: "Boston",
	}, 5)

	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "Acme Corp", leads[0].CompanyName)
	require.NotNil(t, leads[0].ContactEmail)
	assert.Equal(t, "cto@acme.com", *leads[0].ContactEmail)
	assert.Nil(t, leads[1].ContactEmail)
	s.AssertExpectations(t)
}

func TestDiscover_EmptyQueryRefused(t *testing.T) {
	s := &mockSearcher{}

	leads, err := New(s).Discover(context.Background(), model.SearchCriteria{Location: "Boston"}, 5)

	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Nil(t, leads)
	s.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDiscover_NilResultsTreatedAsEmpty(t *testing.T) {
	s := &mockSearcher{}
	s.On("Search", mock.Anything, `"nothing"`, DefaultMaxResults, map[string]string{}).Return(nil, nil)

	leads, err := New(s).Discover(context.Background(), model.SearchCriteria{Keyword: "nothing"}, 0)

	require.NoError(t, err)
	assert.Empty(t, leads)
}

func TestDiscover_SearchError(t *testing.T) {
	s := &mockSearcher{}
	s.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("quota exceeded"))

	_, err := New(s).Discover(context.Background(), model.SearchCriteria{Keyword: "Acme"}, 3)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}
