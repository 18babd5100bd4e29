package archive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/model"
)

type mockBlob struct {
	mock.Mock
	bodies map[string]string
}

func (m *mockBlob) CreateContainer(ctx context.Context, name string, o *azblob.CreateContainerOptions) (azblob.CreateContainerResponse, error) {
	args := m.Called(ctx, name)
	return azblob.CreateContainerResponse{}, args.Error(0)
}

func (m *mockBlob) UploadStream(ctx context.Context, container, name string, body io.Reader, o *azblob.UploadStreamOptions) (azblob.UploadStreamResponse, error) {
	b, _ := io.ReadAll(body)
	if m.bodies == nil {
		m.bodies = map[string]string{}
	}
	m.bodies[name] = string(b)
	args := m.Called(ctx, container, name, *o.HTTPHeaders.BlobContentType)
	return azblob.UploadStreamResponse{}, args.Error(0)
}

func TestEnsureContainer_AlreadyExists(t *testing.T) {
	m := &mockBlob{}
	m.On("CreateContainer", mock.Anything, "reports").
		Return(&azcore.ResponseError{ErrorCode: "ContainerAlreadyExists", StatusCode: http.StatusConflict})

	require.NoError(t, NewWithClient(m, "reports", "").EnsureContainer(context.Background()))
}

func TestEnsureContainer_OtherError(t *testing.T) {
	m := &mockBlob{}
	m.On("CreateContainer", mock.Anything, "reports").
		Return(&azcore.ResponseError{ErrorCode: "AuthenticationFailed", StatusCode: http.StatusForbidden})

	err := NewWithClient(m, "reports", "").EnsureContainer(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create container")
}

func TestArchiveReport_UploadsJSONAndCSV(t *testing.T) {
	m := &mockBlob{}
	m.On("UploadStream", mock.Anything, "reports", "prospect/run-1/report.json", "application/json").Return(nil)
	m.On("UploadStream", mock.Anything, "reports", "prospect/run-1/leads.csv", "text/csv").Return(nil)

	rep := &model.Report{
		RunID:   "run-1",
		Rows:    []model.ReportRow{{Index: 0, Lead: model.Lead{CompanyName: "Acme"}, State: model.StateSent}},
		Summary: model.Summary{Attempted: 1, Succeeded: 1},
	}
	keys, err := NewWithClient(m, "reports", "/prospect/").ArchiveReport(context.Background(), rep)

	require.NoError(t, err)
	assert.Equal(t, []string{"prospect/run-1/report.json", "prospect/run-1/leads.csv"}, keys)

	var decoded model.Report
	require.NoError(t, json.Unmarshal([]byte(m.bodies["prospect/run-1/report.json"]), &decoded))
	assert.Equal(t, 1, decoded.Summary.Succeeded)
	assert.Contains(t, m.bodies["prospect/run-1/leads.csv"], "Acme")
	m.AssertExpectations(t)
}

func TestArchiveReport_UploadFailureStops(t *testing.T) {
	m := &mockBlob{}
	m.On("UploadStream", mock.Anything, "reports", "run-2/report.json", "application/json").Return(errors.New("network down"))

	keys, err := NewWithClient(m, "reports", "").ArchiveReport(context.Background(), &model.Report{RunID: "run-2"})

	require.Error(t, err)
	assert.Empty(t, keys)
	m.AssertNumberOfCalls(t, "UploadStream", 1)
}

func TestArchiveReport_RejectsBadRunID(t *testing.T) {
	a := NewWithClient(&mockBlob{}, "reports", "")

	_, err := a.ArchiveReport(context.Background(), &model.Report{})
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = a.ArchiveReport(context.Background(), &model.Report{RunID: "../escape"})
	assert.ErrorIs(t, err, ErrInvalidKey)
}
