package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hydrocode-de/metacatalog-ingest/internal/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewHandlerReturnsSchema(t *testing.T) {
	h := newTestHandler(&fakeIngester{}, nil, nil)

	rec := httptest.NewRecorder()
	h.PreviewHandler(rec, multipartRequest(t, "/api/data/preview", "river_flow.csv", riverFlowCSV, ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"num_rows": 2, "columns": [
		{"name": "id", "data_type": "number"},
		{"name": "value", "data_type": "number"},
		{"name": "observed_at", "data_type": "datetime"}
	]}`, rec.Body.String())
}

func TestPreviewHandlerRejectsMalformedFile(t *testing.T) {
	h := newTestHandler(&fakeIngester{}, nil, nil)

	rec := httptest.NewRecorder()
	h.PreviewHandler(rec, multipartRequest(t, "/api/data/preview", "broken.csv", "a,b\n1,2,3\n", ""))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["message"], "could not read tabular data")
}

func TestPreviewHandlerDoesNotIngest(t *testing.T) {
	ingester := &fakeIngester{result: &ingest.Result{}}
	h := newTestHandler(ingester, nil, nil)

	rec := httptest.NewRecorder()
	h.PreviewHandler(rec, multipartRequest(t, "/api/data/preview", "river_flow.csv", riverFlowCSV, ""))

	assert.Empty(t, ingester.calls)
}
