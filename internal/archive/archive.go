// Package archive uploads finished run reports to Azure Blob Storage.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/leadfile"
	"github.com/sells-group/prospect-cli/internal/model"
)

// ErrInvalidKey is returned for blank keys or keys containing "..".
var ErrInvalidKey = eris.New("archive: invalid key")

// BlobAPI is the subset of the azblob client used by Archiver.
type BlobAPI interface {
	CreateContainer(ctx context.Context, containerName string, o *azblob.CreateContainerOptions) (azblob.CreateContainerResponse, error)
	UploadStream(ctx context.Context, containerName, blobName string, body io.Reader, o *azblob.UploadStreamOptions) (azblob.UploadStreamResponse, error)
}

// Archiver writes report artifacts under <prefix>/<run id>/.
type Archiver struct {
	client    BlobAPI
	container string
	prefix    string
}

// New creates an Archiver from a storage connection string.
func New(connectionString, container, prefix string) (*Archiver, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, eris.Wrap(err, "archive: create storage client")
	}
	return NewWithClient(client, container, prefix), nil
}

// NewWithClient creates an Archiver around an existing client.
func NewWithClient(client BlobAPI, container, prefix string) *Archiver {
	return &Archiver{client: client, container: container, prefix: strings.Trim(prefix, "/")}
}

// EnsureContainer creates the container if it does not already exist.
func (a *Archiver) EnsureContainer(ctx context.Context) error {
	_, err := a.client.CreateContainer(ctx, a.container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return eris.Wrapf(err, "archive: create container %s", a.container)
	}
	return nil
}

// ArchiveReport uploads the report as JSON and its lead table as CSV. It
// returns the blob keys written.
func (a *Archiver) ArchiveReport(ctx context.Context, rep *model.Report) ([]string, error) {
	if rep == nil {
		return nil, eris.Wrap(ErrInvalidKey, "archive: nil report")
	}
	if err := validateKey(strings.TrimSpace(rep.RunID)); err != nil {
		return nil, err
	}

	jsonBody, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "archive: marshal report")
	}
	var csvBody bytes.Buffer
	if err := leadfile.WriteCSV(&csvBody, leadfile.FromReport(rep)); err != nil {
		return nil, err
	}

	uploads := []struct {
		name        string
		body        []byte
		contentType string
	}{
		{"report.json", jsonBody, "application/json"},
		{"leads.csv", csvBody.Bytes(), "text/csv"},
	}

	keys := make([]string, 0, len(uploads))
	for _, u := range uploads {
		key := a.key(rep.RunID, u.name)
		if err := a.upload(ctx, key, bytes.NewReader(u.body), u.contentType); err != nil {
			return keys, err
		}
		keys = append(keys, key)
	}

	zap.L().Info("archive: report uploaded",
		zap.String("run_id", rep.RunID),
		zap.String("container", a.container),
		zap.Strings("keys", keys),
	)
	return keys, nil
}

func (a *Archiver) key(runID, name string) string {
	if a.prefix == "" {
		return path.Join(runID, name)
	}
	return path.Join(a.prefix, runID, name)
}

func (a *Archiver) upload(ctx context.Context, key string, r io.Reader, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	opts := &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	}
	if _, err := a.client.UploadStream(ctx, a.container, key, r, opts); err != nil {
		return eris.Wrapf(err, "archive: upload blob %s", key)
	}
	return nil
}

func validateKey(key string) error {
	if key == "" || strings.Contains(key, "..") {
		return eris.Wrapf(ErrInvalidKey, "archive: key %q", key)
	}
	return nil
}
