package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hydrocode-de/metacatalog-ingest/internal/ingest"
	"github.com/hydrocode-de/metacatalog-ingest/internal/models"
	"github.com/hydrocode-de/metacatalog-ingest/internal/storage"
	"github.com/stretchr/testify/require"
)

type fakeIngester struct {
	result *ingest.Result
	calls  []*models.MetadataSubmission
	upload ingest.Upload
}

func (f *fakeIngester) Ingest(ctx context.Context, sub *models.MetadataSubmission, upload ingest.Upload) *ingest.Result {
	f.calls = append(f.calls, sub)
	f.upload = upload
	return f.result
}

type fakeLookups struct {
	licenses []models.License
	authors  []models.Author
	created  []models.CreateAuthorRequest
	err      error
}

func (f *fakeLookups) ListLicenses(ctx context.Context) ([]models.License, error) {
	return f.licenses, f.err
}

func (f *fakeLookups) GetLicense(ctx context.Context, id int) (*models.License, error) {
	for _, l := range f.licenses {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, fmt.Errorf("license %d: %w", id, storage.ErrNotFound)
}

func (f *fakeLookups) ListKeywords(ctx context.Context) ([]models.Keyword, error) {
	return []models.Keyword{}, f.err
}

func (f *fakeLookups) ListAuthors(ctx context.Context) ([]models.Author, error) {
	return f.authors, f.err
}

func (f *fakeLookups) CreateAuthor(ctx context.Context, req models.CreateAuthorRequest) (*models.Author, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, req)
	return &models.Author{ID: 12, IsOrganisation: req.IsOrganisation}, nil
}

func (f *fakeLookups) ListVariables(ctx context.Context) ([]models.Variable, error) {
	return []models.Variable{}, f.err
}

type fakeArchive struct {
	fail     bool
	entryIDs []int
}

func (f *fakeArchive) ArchiveUpload(ctx context.Context, entryID int, filename, contentType string, content []byte) (string, error) {
	f.entryIDs = append(f.entryIDs, entryID)
	if f.fail {
		return "", errors.New("bucket unavailable")
	}
	return fmt.Sprintf("uploads/2024-05-01/%d/%s", entryID, filename), nil
}

type fakeEvents struct {
	events []*models.EntryCreatedEvent
}

func (f *fakeEvents) PublishEntryCreated(ctx context.Context, event *models.EntryCreatedEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fakeCheck struct {
	err error
}

func (f fakeCheck) HealthCheck(ctx context.Context) error {
	return f.err
}

// multipartRequest builds a multipart POST with a file part and optional metadata field
func multipartRequest(t *testing.T, target, filename, content, metadata string) *http.Request {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	if metadata != "" {
		require.NoError(t, mw.WriteField("metadata", metadata))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
