package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hydrocode-de/metacatalog-ingest/internal/models"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

var ErrNotFound = errors.New("not found")

// ErrMissingReference is returned when a row references an id that does not exist
var ErrMissingReference = errors.New("referenced record does not exist")

// embargoPeriod is how long an embargoed entry stays hidden after its creation
const embargoPeriod = 2 * 365 * 24 * time.Hour

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(host, port, user, password, dbName, sslMode string) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbName, sslMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	return &PostgresStorage{db: db}, nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

// HealthCheck verifies the database connection
func (s *PostgresStorage) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres health check failed: %w", err)
	}
	return nil
}

// translateError maps foreign key violations to ErrMissingReference
func translateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		if pqErr.Detail != "" {
			return fmt.Errorf("%w: %s", ErrMissingReference, pqErr.Detail)
		}
		return fmt.Errorf("%w: %s", ErrMissingReference, pqErr.Constraint)
	}
	return err
}

// CreateEntry inserts the entry and its first author association in one transaction
func (s *PostgresStorage) CreateEntry(ctx context.Context, e models.NewEntry) (*models.Entry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	var embargoEnd *time.Time
	if e.Embargo {
		end := now.Add(embargoPeriod)
		embargoEnd = &end
	}

	entry := &models.Entry{
		UUID:       uuid.New().String(),
		Title:      e.Title,
		Abstract:   e.Abstract,
		VariableID: e.VariableID,
		LicenseID:  e.LicenseID,
		Embargo:    e.Embargo,
		IsPartial:  e.IsPartial,
		CreatedAt:  now,
	}
	if e.ExternalID != nil {
		entry.ExternalID = *e.ExternalID
	}
	if e.LocationWKT != nil {
		entry.Location = *e.LocationWKT
	}

	query := `
	INSERT INTO entries (
		uuid, title, abstract, external_id, location,
		variable_id, license_id, embargo, embargo_end, is_partial,
		publication, last_update
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11
	) RETURNING id`

	err = tx.QueryRowContext(ctx, query,
		entry.UUID, e.Title, e.Abstract, e.ExternalID, e.LocationWKT,
		e.VariableID, e.LicenseID, e.Embargo, embargoEnd, e.IsPartial,
		now,
	).Scan(&entry.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert entry: %w", translateError(err))
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO nm_persons_entries (person_id, entry_id, relationship_type, "order") VALUES ($1, $2, $3, $4)`,
		e.AuthorID, entry.ID, models.RoleAuthor, 1,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to associate first author %d: %w", e.AuthorID, translateError(err))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit entry: %w", err)
	}

	log.Info().Int("entry_id", entry.ID).Str("uuid", entry.UUID).Msg("Entry created")
	return entry, nil
}

// AttachCoAuthors associates all authors with the entry or none of them
func (s *PostgresStorage) AttachCoAuthors(ctx context.Context, entryID int, authors []models.AuthorAssociation) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, a := range authors {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO nm_persons_entries (person_id, entry_id, relationship_type, "order") VALUES ($1, $2, $3, $4)`,
				a.AuthorID, entryID, a.Role, a.Order,
			)
			if err != nil {
				return fmt.Errorf("failed to associate author %d: %w", a.AuthorID, translateError(err))
			}
		}
		return nil
	})
}

func (s *PostgresStorage) AttachKeywords(ctx context.Context, entryID int, keywordIDs []int) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, id := range keywordIDs {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO nm_keywords_entries (keyword_id, entry_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				id, entryID,
			)
			if err != nil {
				return fmt.Errorf("failed to associate keyword %d: %w", id, translateError(err))
			}
		}
		return nil
	})
}

func (s *PostgresStorage) AttachDetails(ctx context.Context, entryID int, details []models.EntryDetail) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, d := range details {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO details (entry_id, key, stem, value) VALUES ($1, $2, $3, $4)`,
				entryID, d.Name, detailStem(d.Name), d.Value,
			)
			if err != nil {
				return fmt.Errorf("failed to store detail %q: %w", d.Name, translateError(err))
			}
		}
		return nil
	})
}

// detailStem normalizes a detail key for lookups
func detailStem(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

func (s *PostgresStorage) CreateDataSource(ctx context.Context, entryID int, path string, dsType models.DataSourceType, datatype string, variableNames []string) (*models.DataSource, error) {
	if variableNames == nil {
		variableNames = []string{}
	}

	ds := &models.DataSource{
		EntryID:       entryID,
		Path:          path,
		Type:          string(dsType),
		Datatype:      datatype,
		VariableNames: variableNames,
	}

	query := `
	INSERT INTO datasources (entry_id, type, datatype, path, variable_names)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id`

	err := s.db.QueryRowContext(ctx, query, entryID, ds.Type, datatype, path, pq.Array(variableNames)).Scan(&ds.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert datasource: %w", translateError(err))
	}

	return ds, nil
}

func (s *PostgresStorage) CreateScale(ctx context.Context, dataSourceID int, dimension models.ScaleDimension, resolution string, extent []string, support float64, dimensionNames []string) (*models.Scale, error) {
	if dimensionNames == nil {
		dimensionNames = []string{}
	}

	scale := &models.Scale{
		DataSourceID:   dataSourceID,
		Dimension:      dimension,
		Resolution:     resolution,
		Extent:         extent,
		Support:        support,
		DimensionNames: dimensionNames,
	}

	query := `
	INSERT INTO scales (datasource_id, dimension, resolution, extent, support, dimension_names)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id`

	err := s.db.QueryRowContext(ctx, query,
		dataSourceID, string(dimension), resolution, pq.Array(extent), support, pq.Array(dimensionNames),
	).Scan(&scale.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert %s scale: %w", dimension, translateError(err))
	}

	return scale, nil
}

func (s *PostgresStorage) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

// ListLicenses returns all licenses ordered by id
func (s *PostgresStorage) ListLicenses(ctx context.Context) ([]models.License, error) {
	query := `
	SELECT id, short_title, title, by_attribution, share_alike, commercial_use, summary, link
	FROM licenses
	ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	licenses := []models.License{}
	for rows.Next() {
		l, err := scanLicense(rows)
		if err != nil {
			return nil, err
		}
		licenses = append(licenses, *l)
	}

	return licenses, rows.Err()
}

// GetLicense retrieves a license by id, or ErrNotFound
func (s *PostgresStorage) GetLicense(ctx context.Context, id int) (*models.License, error) {
	query := `
	SELECT id, short_title, title, by_attribution, share_alike, commercial_use, summary, link
	FROM licenses WHERE id = $1`

	l, err := scanLicense(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("license %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return l, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLicense(row scanner) (*models.License, error) {
	l := &models.License{}
	var byAttribution, shareAlike, commercialUse sql.NullBool
	var summary, link sql.NullString

	err := row.Scan(&l.ID, &l.ShortTitle, &l.Title, &byAttribution, &shareAlike, &commercialUse, &summary, &link)
	if err != nil {
		return nil, err
	}

	l.ByAttribution = nullBool(byAttribution)
	l.ShareAlike = nullBool(shareAlike)
	l.CommercialUse = nullBool(commercialUse)
	l.Summary = summary.String
	l.Link = link.String

	return l, nil
}

// ListKeywords returns all keywords with their thesaurus and the values of their direct children
func (s *PostgresStorage) ListKeywords(ctx context.Context) ([]models.Keyword, error) {
	query := `
	SELECT k.id, k.uuid, k.value, COALESCE(k.full_path, ''),
		   ARRAY(SELECT c.value FROM keywords c WHERE c.parent_id = k.id ORDER BY c.id),
		   t.id, t.uuid, t.name, t.title, t.organisation, COALESCE(t.url, ''), COALESCE(t.description, '')
	FROM keywords k
	INNER JOIN thesaurus t ON t.id = k.thesaurus_id
	ORDER BY k.id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keywords := []models.Keyword{}
	for rows.Next() {
		k := models.Keyword{}
		t := &k.ThesaurusName
		err := rows.Scan(
			&k.ID, &k.UUID, &k.Value, &k.Path, pq.Array(&k.Children),
			&t.ID, &t.UUID, &t.Name, &t.Title, &t.Organisation, &t.URL, &t.Description,
		)
		if err != nil {
			return nil, err
		}
		if k.Children == nil {
			k.Children = []string{}
		}
		keywords = append(keywords, k)
	}

	return keywords, rows.Err()
}

// ListVariables returns all variables with their unit
func (s *PostgresStorage) ListVariables(ctx context.Context) ([]models.Variable, error) {
	query := `
	SELECT v.id, v.name, v.symbol, v.column_names, v.keyword_id, u.id, u.name, u.symbol
	FROM variables v
	INNER JOIN units u ON u.id = v.unit_id
	ORDER BY v.id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	variables := []models.Variable{}
	for rows.Next() {
		v := models.Variable{}
		var keywordID sql.NullInt64
		err := rows.Scan(
			&v.ID, &v.Name, &v.Symbol, pq.Array(&v.ColumnNames), &keywordID,
			&v.Unit.ID, &v.Unit.Name, &v.Unit.Symbol,
		)
		if err != nil {
			return nil, err
		}
		if keywordID.Valid {
			id := int(keywordID.Int64)
			v.KeywordID = &id
		}
		if v.ColumnNames == nil {
			v.ColumnNames = []string{}
		}
		variables = append(variables, v)
	}

	return variables, rows.Err()
}

const authorColumns = `id, uuid, first_name, last_name, is_organisation, affiliation, attribution, organisation_name, organisation_abbrev`

// ListAuthors returns all persons and organisations
func (s *PostgresStorage) ListAuthors(ctx context.Context) ([]models.Author, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+authorColumns+` FROM persons ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	authors := []models.Author{}
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		authors = append(authors, *a)
	}

	return authors, rows.Err()
}

// CreateAuthor registers a new person or organisation
func (s *PostgresStorage) CreateAuthor(ctx context.Context, req models.CreateAuthorRequest) (*models.Author, error) {
	query := `
	INSERT INTO persons (
		uuid, first_name, last_name, is_organisation, affiliation, attribution, organisation_name, organisation_abbrev
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8
	) RETURNING ` + authorColumns

	author, err := scanAuthor(s.db.QueryRowContext(ctx, query,
		uuid.New().String(),
		nullString(req.FirstName), nullString(req.LastName), req.IsOrganisation,
		nullString(req.Affiliation), nullString(req.Attribution),
		nullString(req.OrganisationName), nullString(req.OrganisationAbbrev),
	))
	if err != nil {
		log.Error().Err(err).Msg("Failed to save author to postgres")
		return nil, fmt.Errorf("failed to insert author: %w", err)
	}

	return author, nil
}

func scanAuthor(row scanner) (*models.Author, error) {
	a := &models.Author{}
	var firstName, lastName, affiliation, attribution, orgName, orgAbbrev sql.NullString
	var isOrganisation sql.NullBool

	err := row.Scan(&a.ID, &a.UUID, &firstName, &lastName, &isOrganisation,
		&affiliation, &attribution, &orgName, &orgAbbrev)
	if err != nil {
		return nil, err
	}

	a.FirstName = stringPtr(firstName)
	a.LastName = stringPtr(lastName)
	a.IsOrganisation = isOrganisation.Bool
	a.Affiliation = stringPtr(affiliation)
	a.Attribution = stringPtr(attribution)
	a.OrganisationName = stringPtr(orgName)
	a.OrganisationAbbrev = stringPtr(orgAbbrev)

	return a, nil
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func nullBool(b sql.NullBool) *bool {
	if !b.Valid {
		return nil
	}
	return &b.Bool
}
