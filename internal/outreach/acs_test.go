package outreach

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/resilience"
	"github.com/sells-group/prospect-cli/pkg/acsemail"
)

func newACSServer(t *testing.T, statuses ...int) (acsemail.Client, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1)) - 1
		status := statuses[len(statuses)-1]
		if n < len(statuses) {
			status = statuses[n]
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status == http.StatusAccepted {
			w.Write([]byte(`{"id":"op-1","status":"Running"}`))
			return
		}
		w.Write([]byte(`{"error":{"code":"Err","message":"failed"}}`))
	}))
	t.Cleanup(srv.Close)

	key := base64.StdEncoding.EncodeToString([]byte("k"))
	c, err := acsemail.NewClient(acsemail.Config{ConnectionString: "endpoint=" + srv.URL + ";accesskey=" + key})
	require.NoError(t, err)
	return c, &calls
}

func TestACSDelivery_ThrottleIsTransient(t *testing.T) {
	c, _ := newACSServer(t, http.StatusTooManyRequests)

	_, err := NewACSDelivery(c).Send(context.Background(), "a@b.com", "c@d.com", "s", "b")
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}

func TestACSDelivery_BadRequestIsPermanent(t *testing.T) {
	c, _ := newACSServer(t, http.StatusBadRequest)

	_, err := NewACSDelivery(c).Send(context.Background(), "a@b.com", "c@d.com", "s", "b")
	require.Error(t, err)
	assert.False(t, resilience.IsTransient(err))
}

func TestSender_ACSRetriesThenAccepts(t *testing.T) {
	c, calls := newACSServer(t, http.StatusServiceUnavailable, http.StatusAccepted)
	s := NewSender(NewACSDelivery(c), "sales@example.com", fastRetry())

	ok := s.Send(context.Background(), "jane@acme.com", "Hello", "Body")
	assert.True(t, ok)
	assert.Equal(t, int32(2), calls.Load())
}
