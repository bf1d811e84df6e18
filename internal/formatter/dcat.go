package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/hydrocode-de/metacatalog-ingest/internal/models"
)

// DCATFormatter renders catalog entries as DCAT datasets for the entry events
type DCATFormatter struct {
	publisherName string
	baseURL       string
}

// NewDCATFormatter creates a new DCAT formatter
func NewDCATFormatter(publisherName, baseURL string) *DCATFormatter {
	return &DCATFormatter{
		publisherName: publisherName,
		baseURL:       strings.TrimSuffix(baseURL, "/"),
	}
}

// FormatEntry converts a freshly created entry and the metadata it was created from.
// tablename and archiveKey are empty when the corresponding step did not happen.
func (f *DCATFormatter) FormatEntry(entry *models.Entry, sub *models.MetadataSubmission, tablename, archiveKey string) *models.DCATDataset {
	issued := entry.CreatedAt
	if issued.IsZero() {
		issued = time.Now().UTC()
	}

	dataset := &models.DCATDataset{
		Context:     "https://www.w3.org/ns/dcat",
		Type:        "dcat:Dataset",
		ID:          fmt.Sprintf("%s/entries/%d", f.baseURL, entry.ID),
		Title:       entry.Title,
		Description: entry.Abstract,
		Identifier:  entry.UUID,
		Issued:      issued.Format(time.RFC3339),
		Publisher: models.DCATPublisher{
			Type: "foaf:Organization",
			Name: f.publisherName,
		},
		Keyword:  f.getKeywords(sub),
		Spatial:  f.getSpatial(entry, sub),
		Temporal: f.getTemporal(sub),
		License:  fmt.Sprintf("%s/api/licenses/%d", f.baseURL, entry.LicenseID),
	}

	if tablename != "" {
		dataset.Distribution = append(dataset.Distribution, models.DCATDistribution{
			Type:      "dcat:Distribution",
			Title:     tablename,
			Format:    "SQL",
			AccessURL: fmt.Sprintf("%s/data/%s", f.baseURL, tablename),
		})
	}
	if archiveKey != "" {
		url := fmt.Sprintf("%s/archive/%s", f.baseURL, archiveKey)
		dataset.Distribution = append(dataset.Distribution, models.DCATDistribution{
			Type:        "dcat:Distribution",
			Title:       "Original upload",
			Format:      "CSV",
			AccessURL:   url,
			DownloadURL: url,
			MediaType:   "text/csv",
		})
	}

	return dataset
}

// getKeywords collects the variable names and detail keys of the submission
func (f *DCATFormatter) getKeywords(sub *models.MetadataSubmission) []string {
	var keywords []string
	seen := map[string]bool{}
	add := func(k string) {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" && !seen[k] {
			seen[k] = true
			keywords = append(keywords, k)
		}
	}

	if sub.DataSource != nil {
		for _, v := range sub.DataSource.VariableNames {
			add(v)
		}
	}
	for _, d := range sub.Details {
		add(d.Name)
	}

	return keywords
}

// getSpatial prefers the spatial scale extent over the entry location
func (f *DCATFormatter) getSpatial(entry *models.Entry, sub *models.MetadataSubmission) *models.DCATSpatial {
	geometry := entry.Location
	if sub.DataSource != nil && sub.DataSource.SpatialScale != nil && sub.DataSource.SpatialScale.Extent != "" {
		geometry = sub.DataSource.SpatialScale.Extent
	}
	if geometry == "" {
		return nil
	}

	return &models.DCATSpatial{
		Type:     "dct:Location",
		Geometry: geometry,
	}
}

func (f *DCATFormatter) getTemporal(sub *models.MetadataSubmission) *models.DCATTemporal {
	if sub.DataSource == nil || sub.DataSource.TemporalScale == nil {
		return nil
	}
	ts := sub.DataSource.TemporalScale
	if ts.ObservationStart == "" && ts.ObservationEnd == "" {
		return nil
	}

	return &models.DCATTemporal{
		Type:      "dct:PeriodOfTime",
		StartDate: ts.ObservationStart,
		EndDate:   ts.ObservationEnd,
	}
}
