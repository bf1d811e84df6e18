package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hydrocode-de/metacatalog-ingest/internal/ingest"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

var columnTypes = map[ingest.DataType]string{
	ingest.NumberType:   "DOUBLE PRECISION",
	ingest.DatetimeType: "TIMESTAMPTZ",
	ingest.StringType:   "TEXT",
}

// TabularStore appends uploaded rows to tables in a dedicated schema. Each table is created on
// first use from the inferred column types; later uploads with the same name append to it.
type TabularStore struct {
	db     *sql.DB
	schema string
}

func NewTabularStore(db *sql.DB, schema string) *TabularStore {
	return &TabularStore{db: db, schema: schema}
}

// Tabular returns a store sharing this connection pool
func (s *PostgresStorage) Tabular(schema string) *TabularStore {
	return NewTabularStore(s.db, schema)
}

func (s *TabularStore) AppendRows(ctx context.Context, tableName string, table *ingest.Table) error {
	if len(table.Columns) == 0 {
		return fmt.Errorf("table %s has no columns", tableName)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, createTableStatement(s.schema, tableName, table.Columns)); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	names := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		names[i] = c.Name
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyInSchema(s.schema, tableName, names...))
	if err != nil {
		return fmt.Errorf("failed to prepare copy: %w", err)
	}

	for i, row := range table.Rows {
		values, err := rowValues(table.Columns, row)
		if err != nil {
			stmt.Close()
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			stmt.Close()
			return fmt.Errorf("failed to copy row %d: %w", i+1, err)
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("failed to flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("failed to close copy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rows: %w", err)
	}

	log.Info().
		Str("schema", s.schema).
		Str("table", tableName).
		Int("rows", len(table.Rows)).
		Msg("Rows appended")

	return nil
}

func createTableStatement(schema, tableName string, columns []ingest.Column) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = pq.QuoteIdentifier(c.Name) + " " + columnTypes[c.DataType]
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.%s (%s)",
		pq.QuoteIdentifier(schema), pq.QuoteIdentifier(tableName), strings.Join(defs, ", "))
}

// rowValues converts raw cells to the driver values of their column type; null tokens become NULL
func rowValues(columns []ingest.Column, row []string) ([]any, error) {
	values := make([]any, len(columns))
	for i, c := range columns {
		if i >= len(row) || ingest.IsNull(row[i]) {
			values[i] = nil
			continue
		}

		cell := strings.TrimSpace(row[i])
		switch c.DataType {
		case ingest.NumberType:
			f, ok := ingest.ParseNumber(cell)
			if !ok {
				return nil, fmt.Errorf("column %s: %q is not a number", c.Name, cell)
			}
			values[i] = f
		case ingest.DatetimeType:
			t, ok := ingest.ParseDatetime(cell)
			if !ok {
				return nil, fmt.Errorf("column %s: %q is not a datetime", c.Name, cell)
			}
			values[i] = t
		default:
			values[i] = row[i]
		}
	}
	return values, nil
}
