package formatter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/hydrocode-de/metacatalog-ingest/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatEntry(t *testing.T) {
	f := NewDCATFormatter("Hydrology Lab", "https://catalog.example.org/")
	entry := &models.Entry{
		ID:        42,
		UUID:      "b1c8a3d2-7e4f-4a51-9c6b-0f3e2d1a5b77",
		Title:     "River flow",
		Abstract:  "Daily discharge",
		Location:  "POINT (8.5 49.25)",
		LicenseID: 2,
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	sub := &models.MetadataSubmission{
		Details: []models.Detail{{Name: "Gauge"}, {Name: "value"}},
		DataSource: &models.DataSourceSpec{
			VariableNames: []string{"Value"},
			TemporalScale: &models.TemporalScaleSpec{ObservationStart: "2020-01-01", ObservationEnd: "2020-12-31"},
		},
	}

	dataset := f.FormatEntry(entry, sub, "river_flow_v2", "uploads/2024-05-01/42/x.csv")

	assert.Equal(t, "https://catalog.example.org/entries/42", dataset.ID)
	assert.Equal(t, "2024-05-01T12:00:00Z", dataset.Issued)
	assert.Equal(t, "https://catalog.example.org/api/licenses/2", dataset.License)
	assert.Equal(t, []string{"value", "gauge"}, dataset.Keyword)
	require.NotNil(t, dataset.Spatial)
	assert.Equal(t, "POINT (8.5 49.25)", dataset.Spatial.Geometry)
	require.NotNil(t, dataset.Temporal)
	assert.Equal(t, "2020-12-31", dataset.Temporal.EndDate)

	require.Len(t, dataset.Distribution, 2)
	assert.Equal(t, "https://catalog.example.org/data/river_flow_v2", dataset.Distribution[0].AccessURL)
	assert.Equal(t, "text/csv", dataset.Distribution[1].MediaType)

	raw, err := json.Marshal(dataset)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"dct:title":"River flow"`)
}

func TestFormatEntryWithoutDataSource(t *testing.T) {
	f := NewDCATFormatter("Hydrology Lab", "https://catalog.example.org")

	dataset := f.FormatEntry(&models.Entry{ID: 1, Title: "t"}, &models.MetadataSubmission{}, "", "")

	assert.Nil(t, dataset.Spatial)
	assert.Nil(t, dataset.Temporal)
	assert.Empty(t, dataset.Distribution)
	assert.Empty(t, dataset.Keyword)
	assert.NotEmpty(t, dataset.Issued)
}

func TestFormatEntryPrefersSpatialExtent(t *testing.T) {
	f := NewDCATFormatter("Hydrology Lab", "https://catalog.example.org")
	sub := &models.MetadataSubmission{DataSource: &models.DataSourceSpec{
		SpatialScale: &models.SpatialScaleSpec{Extent: "POLYGON ((0 0, 1 0, 1 1, 0 0))"},
	}}

	dataset := f.FormatEntry(&models.Entry{ID: 1, Location: "POINT (1 1)"}, sub, "", "")

	require.NotNil(t, dataset.Spatial)
	assert.Equal(t, "POLYGON ((0 0, 1 0, 1 1, 0 0))", dataset.Spatial.Geometry)
}
