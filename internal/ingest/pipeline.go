package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/hydrocode-de/metacatalog-ingest/internal/models"
	"github.com/rs/zerolog/log"
)

// CatalogStore is the catalog datastore the pipeline registers entries in.
// Every call is independent; there is no transaction spanning several calls.
type CatalogStore interface {
	CreateEntry(ctx context.Context, entry models.NewEntry) (*models.Entry, error)
	AttachCoAuthors(ctx context.Context, entryID int, authors []models.AuthorAssociation) error
	AttachKeywords(ctx context.Context, entryID int, keywordIDs []int) error
	AttachDetails(ctx context.Context, entryID int, details []models.EntryDetail) error
	CreateDataSource(ctx context.Context, entryID int, path string, dsType models.DataSourceType, datatype string, variableNames []string) (*models.DataSource, error)
	CreateScale(ctx context.Context, dataSourceID int, dimension models.ScaleDimension, resolution string, extent []string, support float64, dimensionNames []string) (*models.Scale, error)
}

// TabularStorage appends row data to named tables kept apart from the catalog metadata
type TabularStorage interface {
	AppendRows(ctx context.Context, tableName string, table *Table) error
}

// Upload is the file part of an ingestion request
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Result is everything an ingestion produced, including the per-step outcomes
type Result struct {
	Entry      *models.Entry
	DataSource *models.DataSource
	Tablename  string
	Rows       int
	Outcomes   []models.StepOutcome
	Response   models.IngestionResponse
}

const scaleSupport = 1.0

type Orchestrator struct {
	catalog CatalogStore
	tables  TabularStorage
}

func NewOrchestrator(catalog CatalogStore, tables TabularStorage) *Orchestrator {
	return &Orchestrator{
		catalog: catalog,
		tables:  tables,
	}
}

// Ingest runs the registration steps in order. Only a failure to create the entry stops the
// pipeline; every later step records its outcome and the pipeline moves on. Nothing is rolled
// back, and a cancelled request context does not interrupt a running ingestion.
func (o *Orchestrator) Ingest(ctx context.Context, sub *models.MetadataSubmission, upload Upload) *Result {
	ctx = context.WithoutCancel(ctx)
	res := &Result{}

	var entry *models.Entry
	ok := res.run(models.StepEntry, false, func() (err error) {
		entry, err = o.createEntry(ctx, sub)
		return err
	})
	if !ok {
		res.Response = Report(nil, res.Outcomes)
		return res
	}
	res.Entry = entry

	res.run(models.StepCoAuthors, len(sub.CoAuthors) == 0, func() error {
		return o.catalog.AttachCoAuthors(ctx, entry.ID, coAuthorAssociations(sub.CoAuthors))
	})

	res.run(models.StepKeywords, len(sub.KeywordIDs) == 0, func() error {
		return o.catalog.AttachKeywords(ctx, entry.ID, sub.KeywordIDs)
	})

	res.run(models.StepDetails, len(sub.Details) == 0, func() error {
		return o.catalog.AttachDetails(ctx, entry.ID, entryDetails(sub.Details))
	})

	res.run(models.StepDataSource, sub.DataSource == nil, func() error {
		return o.createDataSource(ctx, res, entry.ID, sub.DataSource, upload.Filename)
	})

	res.run(models.StepMaterialize, res.DataSource == nil, func() error {
		table, err := ReadTable(upload.Content)
		if err != nil {
			return err
		}
		if err := o.tables.AppendRows(ctx, res.Tablename, table); err != nil {
			return fmt.Errorf("failed to append %d rows to %s: %w", len(table.Rows), res.Tablename, err)
		}
		res.Rows = len(table.Rows)
		return nil
	})

	res.Response = Report(&entry.ID, res.Outcomes)
	return res
}

func (res *Result) run(step models.Step, skip bool, fn func() error) bool {
	if skip {
		res.Outcomes = append(res.Outcomes, models.StepOutcome{Step: step, Skipped: true})
		log.Debug().Str("step", string(step)).Msg("ingestion step skipped")
		return false
	}

	if err := fn(); err != nil {
		res.Outcomes = append(res.Outcomes, models.StepOutcome{Step: step, Detail: err.Error()})
		log.Error().Err(err).Str("step", string(step)).Msg("ingestion step failed")
		return false
	}

	res.Outcomes = append(res.Outcomes, models.StepOutcome{Step: step, Succeeded: true})
	log.Info().Str("step", string(step)).Msg("ingestion step completed")
	return true
}

func (o *Orchestrator) createEntry(ctx context.Context, sub *models.MetadataSubmission) (*models.Entry, error) {
	newEntry := models.NewEntry{
		Title:      sub.Title,
		Abstract:   sub.Abstract,
		AuthorID:   sub.FirstAuthor.ID,
		VariableID: sub.VariableID,
		LicenseID:  sub.LicenseID,
		Embargo:    sub.Embargo,
		IsPartial:  false,
	}

	if sub.Location != nil {
		wkt := sub.Location.WKT()
		newEntry.LocationWKT = &wkt
	}
	if sub.ExternalID != "" {
		externalID := sub.ExternalID
		newEntry.ExternalID = &externalID
	}

	entry, err := o.catalog.CreateEntry(ctx, newEntry)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, errors.New("catalog store returned no entry")
	}

	return entry, nil
}

// coAuthorAssociations assigns co-authors the positions after the first author, starting at 2
func coAuthorAssociations(authors []models.AuthorRef) []models.AuthorAssociation {
	associations := make([]models.AuthorAssociation, 0, len(authors))
	for i, a := range authors {
		associations = append(associations, models.AuthorAssociation{
			AuthorID: a.ID,
			Role:     models.RoleCoAuthor,
			Order:    i + 2,
		})
	}
	return associations
}

func entryDetails(details []models.Detail) []models.EntryDetail {
	out := make([]models.EntryDetail, 0, len(details))
	for _, d := range details {
		out = append(out, models.EntryDetail{Name: d.Name, Value: d.Value.String()})
	}
	return out
}

// createDataSource registers the data source and its scales. Scales are only attempted once the
// data source exists; a failing scale does not prevent the other one from being created.
func (o *Orchestrator) createDataSource(ctx context.Context, res *Result, entryID int, spec *models.DataSourceSpec, filename string) error {
	tablename := Tablename(filename)
	if tablename == "" {
		return fmt.Errorf("cannot derive a table name from filename %q", filename)
	}
	res.Tablename = tablename

	ds, err := o.catalog.CreateDataSource(ctx, entryID, tablename, spec.Type, models.TimeseriesDatatype, spec.VariableNames)
	if err != nil {
		return err
	}
	if ds == nil {
		return errors.New("catalog store returned no data source")
	}
	res.DataSource = ds

	var errs []error

	if ts := spec.TemporalScale; ts != nil {
		extent := []string{ts.ObservationStart, ts.ObservationEnd}
		_, err := o.catalog.CreateScale(ctx, ds.ID, models.TemporalDimension, ts.FormattedResolution(), extent, scaleSupport, ts.DimensionNames)
		if err != nil {
			errs = append(errs, fmt.Errorf("temporal scale: %w", err))
		}
	}

	if ss := spec.SpatialScale; ss != nil {
		extent := []string{ss.Extent}
		_, err := o.catalog.CreateScale(ctx, ds.ID, models.SpatialDimension, ss.FormattedResolution(), extent, scaleSupport, ss.DimensionNames)
		if err != nil {
			errs = append(errs, fmt.Errorf("spatial scale: %w", err))
		}
	}

	return joinErrors(errs)
}

func joinErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return fmt.Errorf("%w; %w", errs[0], errs[1])
	}
}
