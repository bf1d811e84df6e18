package ingest

import (
	"context"
	"errors"

	"github.com/hydrocode-de/metacatalog-ingest/internal/models"
)

var errStore = errors.New("store unavailable")

type scaleCall struct {
	DataSourceID   int
	Dimension      models.ScaleDimension
	Resolution     string
	Extent         []string
	Support        float64
	DimensionNames []string
}

type dataSourceCall struct {
	EntryID       int
	Path          string
	Type          models.DataSourceType
	Datatype      string
	VariableNames []string
}

type fakeCatalog struct {
	knownAuthors map[int]bool

	failCoAuthors  bool
	failKeywords   bool
	failDetails    bool
	failDataSource bool
	failDimension  models.ScaleDimension

	entries     []models.NewEntry
	coAuthors   [][]models.AuthorAssociation
	keywords    [][]int
	details     [][]models.EntryDetail
	dataSources []dataSourceCall
	scales      []scaleCall
}

func newFakeCatalog(authorIDs ...int) *fakeCatalog {
	known := map[int]bool{}
	for _, id := range authorIDs {
		known[id] = true
	}
	return &fakeCatalog{knownAuthors: known}
}

func (f *fakeCatalog) CreateEntry(ctx context.Context, e models.NewEntry) (*models.Entry, error) {
	f.entries = append(f.entries, e)
	if !f.knownAuthors[e.AuthorID] {
		return nil, errors.New("author does not exist")
	}
	return &models.Entry{ID: 41 + len(f.entries), Title: e.Title}, nil
}

func (f *fakeCatalog) AttachCoAuthors(ctx context.Context, entryID int, authors []models.AuthorAssociation) error {
	f.coAuthors = append(f.coAuthors, authors)
	if f.failCoAuthors {
		return errStore
	}
	return nil
}

func (f *fakeCatalog) AttachKeywords(ctx context.Context, entryID int, keywordIDs []int) error {
	f.keywords = append(f.keywords, keywordIDs)
	if f.failKeywords {
		return errStore
	}
	return nil
}

func (f *fakeCatalog) AttachDetails(ctx context.Context, entryID int, details []models.EntryDetail) error {
	f.details = append(f.details, details)
	if f.failDetails {
		return errStore
	}
	return nil
}

func (f *fakeCatalog) CreateDataSource(ctx context.Context, entryID int, path string, dsType models.DataSourceType, datatype string, variableNames []string) (*models.DataSource, error) {
	f.dataSources = append(f.dataSources, dataSourceCall{entryID, path, dsType, datatype, variableNames})
	if f.failDataSource {
		return nil, errStore
	}
	return &models.DataSource{ID: 7, EntryID: entryID, Path: path, Type: string(dsType), Datatype: datatype}, nil
}

func (f *fakeCatalog) CreateScale(ctx context.Context, dataSourceID int, dimension models.ScaleDimension, resolution string, extent []string, support float64, dimensionNames []string) (*models.Scale, error) {
	f.scales = append(f.scales, scaleCall{dataSourceID, dimension, resolution, extent, support, dimensionNames})
	if f.failDimension == dimension {
		return nil, errStore
	}
	return &models.Scale{ID: len(f.scales), DataSourceID: dataSourceID, Dimension: dimension}, nil
}

type appendCall struct {
	TableName string
	Table     *Table
}

type fakeTables struct {
	fail  bool
	calls []appendCall
}

func (f *fakeTables) AppendRows(ctx context.Context, tableName string, table *Table) error {
	f.calls = append(f.calls, appendCall{tableName, table})
	if f.fail {
		return errStore
	}
	return nil
}
