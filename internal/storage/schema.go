package storage

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const catalogSchema = `
CREATE TABLE IF NOT EXISTS units (
	id SERIAL PRIMARY KEY,
	name VARCHAR(64) NOT NULL,
	symbol VARCHAR(12) NOT NULL
);

CREATE TABLE IF NOT EXISTS thesaurus (
	id SERIAL PRIMARY KEY,
	uuid VARCHAR(36) NOT NULL UNIQUE,
	name VARCHAR(1024) NOT NULL UNIQUE,
	title TEXT NOT NULL,
	organisation TEXT NOT NULL,
	url TEXT,
	description TEXT
);

CREATE TABLE IF NOT EXISTS keywords (
	id SERIAL PRIMARY KEY,
	uuid VARCHAR(36) NOT NULL UNIQUE,
	parent_id INTEGER REFERENCES keywords(id),
	value VARCHAR(1024) NOT NULL,
	full_path TEXT,
	thesaurus_id INTEGER NOT NULL REFERENCES thesaurus(id)
);

CREATE TABLE IF NOT EXISTS variables (
	id SERIAL PRIMARY KEY,
	name VARCHAR(64) NOT NULL,
	symbol VARCHAR(12) NOT NULL,
	column_names TEXT[] NOT NULL DEFAULT '{}',
	unit_id INTEGER NOT NULL REFERENCES units(id),
	keyword_id INTEGER REFERENCES keywords(id)
);

CREATE TABLE IF NOT EXISTS licenses (
	id SERIAL PRIMARY KEY,
	short_title VARCHAR(40) NOT NULL,
	title TEXT NOT NULL,
	summary TEXT,
	full_text TEXT,
	link TEXT,
	by_attribution BOOLEAN,
	share_alike BOOLEAN,
	commercial_use BOOLEAN
);

CREATE TABLE IF NOT EXISTS persons (
	id SERIAL PRIMARY KEY,
	uuid VARCHAR(36) NOT NULL UNIQUE,
	first_name TEXT,
	last_name TEXT,
	is_organisation BOOLEAN NOT NULL DEFAULT FALSE,
	affiliation TEXT,
	attribution TEXT,
	organisation_name TEXT,
	organisation_abbrev VARCHAR(64)
);

CREATE TABLE IF NOT EXISTS entries (
	id SERIAL PRIMARY KEY,
	uuid VARCHAR(36) NOT NULL UNIQUE,
	title VARCHAR(512) NOT NULL,
	abstract TEXT,
	external_id TEXT,
	location TEXT,
	version INTEGER NOT NULL DEFAULT 1,
	is_partial BOOLEAN NOT NULL DEFAULT FALSE,
	license_id INTEGER NOT NULL REFERENCES licenses(id),
	variable_id INTEGER NOT NULL REFERENCES variables(id),
	embargo BOOLEAN NOT NULL DEFAULT FALSE,
	embargo_end TIMESTAMP,
	publication TIMESTAMP NOT NULL DEFAULT NOW(),
	last_update TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS nm_persons_entries (
	person_id INTEGER NOT NULL REFERENCES persons(id),
	entry_id INTEGER NOT NULL REFERENCES entries(id) ON DELETE CASCADE,
	relationship_type VARCHAR(32) NOT NULL,
	"order" INTEGER NOT NULL,
	PRIMARY KEY (person_id, entry_id)
);

CREATE TABLE IF NOT EXISTS nm_keywords_entries (
	keyword_id INTEGER NOT NULL REFERENCES keywords(id),
	entry_id INTEGER NOT NULL REFERENCES entries(id) ON DELETE CASCADE,
	PRIMARY KEY (keyword_id, entry_id)
);

CREATE TABLE IF NOT EXISTS details (
	id SERIAL PRIMARY KEY,
	entry_id INTEGER NOT NULL REFERENCES entries(id) ON DELETE CASCADE,
	key VARCHAR(1000) NOT NULL,
	stem VARCHAR(1000) NOT NULL,
	value TEXT NOT NULL,
	UNIQUE (entry_id, stem)
);

CREATE TABLE IF NOT EXISTS datasources (
	id SERIAL PRIMARY KEY,
	entry_id INTEGER NOT NULL REFERENCES entries(id) ON DELETE CASCADE,
	type VARCHAR(64) NOT NULL,
	datatype VARCHAR(64) NOT NULL,
	path TEXT NOT NULL,
	variable_names TEXT[] NOT NULL DEFAULT '{}',
	creation TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS scales (
	id SERIAL PRIMARY KEY,
	datasource_id INTEGER NOT NULL REFERENCES datasources(id) ON DELETE CASCADE,
	dimension VARCHAR(16) NOT NULL,
	resolution TEXT NOT NULL DEFAULT '',
	extent TEXT[] NOT NULL DEFAULT '{}',
	support NUMERIC NOT NULL,
	dimension_names TEXT[] NOT NULL DEFAULT '{}',
	UNIQUE (datasource_id, dimension)
);

CREATE INDEX IF NOT EXISTS idx_nm_persons_entries_entry_id ON nm_persons_entries(entry_id);
CREATE INDEX IF NOT EXISTS idx_nm_keywords_entries_entry_id ON nm_keywords_entries(entry_id);
CREATE INDEX IF NOT EXISTS idx_details_entry_id ON details(entry_id);
CREATE INDEX IF NOT EXISTS idx_datasources_entry_id ON datasources(entry_id);`

const catalogDefaults = `
INSERT INTO units (id, name, symbol) VALUES
	(1, 'meter', 'm'),
	(2, 'second', 's'),
	(3, 'degree Celsius', 'C'),
	(4, 'millimeter', 'mm'),
	(5, 'cubic meter per second', 'm3/s'),
	(6, 'percent', '%'),
	(7, 'meter per second', 'm/s'),
	(8, 'watt per square meter', 'W/m2')
ON CONFLICT (id) DO NOTHING;

INSERT INTO licenses (id, short_title, title, summary, link, by_attribution, share_alike, commercial_use) VALUES
	(1, 'ODbL', 'Open Data Commons Open Database License',
	 'Share, create and adapt the database as long as it is attributed and adaptations keep the license.',
	 'https://opendatacommons.org/licenses/odbl/1-0/', TRUE, TRUE, TRUE),
	(2, 'CC BY 4.0', 'Creative Commons Attribution 4.0 International',
	 'Share and adapt the material for any purpose as long as appropriate credit is given.',
	 'https://creativecommons.org/licenses/by/4.0/', TRUE, FALSE, TRUE),
	(3, 'CC BY-SA 4.0', 'Creative Commons Attribution-ShareAlike 4.0 International',
	 'Share and adapt the material as long as credit is given and contributions use the same license.',
	 'https://creativecommons.org/licenses/by-sa/4.0/', TRUE, TRUE, TRUE),
	(4, 'CC0 1.0', 'Creative Commons Zero v1.0 Universal',
	 'The material is dedicated to the public domain.',
	 'https://creativecommons.org/publicdomain/zero/1.0/', FALSE, FALSE, TRUE)
ON CONFLICT (id) DO NOTHING;

INSERT INTO thesaurus (id, uuid, name, title, organisation, url, description) VALUES
	(1, '2e54668d-8fae-429f-a511-efe529420b12', 'GCMD', 'NASA Global Change Master Directory (GCMD) Keywords',
	 'NASA', 'https://gcmd.earthdata.nasa.gov/kms/concepts/concept_scheme/sciencekeywords',
	 'Hierarchical set of controlled Earth Science vocabularies')
ON CONFLICT (id) DO NOTHING;

INSERT INTO keywords (id, uuid, parent_id, value, full_path, thesaurus_id) VALUES
	(1, 'a5c9bb3b-5b7d-4cbc-8bd0-c2a5f3a8b1d1', NULL, 'EARTH SCIENCE', 'EARTH SCIENCE', 1),
	(2, '5debb283-51e4-435e-b2a2-e8e2a977220d', 1, 'TERRESTRIAL HYDROSPHERE', 'EARTH SCIENCE > TERRESTRIAL HYDROSPHERE', 1),
	(3, '7a5d8fd3-2a7b-4bc4-aa4c-49f4b7b1a1b6', 1, 'ATMOSPHERE', 'EARTH SCIENCE > ATMOSPHERE', 1),
	(4, 'c4bd5b4c-09f3-4e7c-9a53-6d0a6c0a2d21', 2, 'SURFACE WATER', 'EARTH SCIENCE > TERRESTRIAL HYDROSPHERE > SURFACE WATER', 1),
	(5, '0d4f4a2b-3d3b-4f53-91b4-5e2a2f7c8a17', 3, 'PRECIPITATION', 'EARTH SCIENCE > ATMOSPHERE > PRECIPITATION', 1)
ON CONFLICT (id) DO NOTHING;

INSERT INTO variables (id, name, symbol, column_names, unit_id, keyword_id) VALUES
	(1, 'air temperature', 'Ta', '{air_temperature}', 3, 3),
	(2, 'precipitation', 'P', '{precipitation}', 4, 5),
	(3, 'discharge', 'Q', '{discharge}', 5, 4),
	(4, 'water level', 'h', '{water_level}', 1, 4),
	(5, 'relative humidity', 'RH', '{relative_humidity}', 6, 3),
	(6, 'wind speed', 'v', '{wind_speed}', 7, 3),
	(7, 'incoming shortwave radiation', 'SWin', '{incoming_shortwave_radiation}', 8, 3)
ON CONFLICT (id) DO NOTHING;

SELECT setval(pg_get_serial_sequence('units', 'id'), (SELECT COALESCE(MAX(id), 1) FROM units));
SELECT setval(pg_get_serial_sequence('licenses', 'id'), (SELECT COALESCE(MAX(id), 1) FROM licenses));
SELECT setval(pg_get_serial_sequence('thesaurus', 'id'), (SELECT COALESCE(MAX(id), 1) FROM thesaurus));
SELECT setval(pg_get_serial_sequence('keywords', 'id'), (SELECT COALESCE(MAX(id), 1) FROM keywords));
SELECT setval(pg_get_serial_sequence('variables', 'id'), (SELECT COALESCE(MAX(id), 1) FROM variables));`

// IsInstalled reports whether the catalog tables exist
func (s *PostgresStorage) IsInstalled(ctx context.Context) (bool, error) {
	var installed bool
	err := s.db.QueryRowContext(ctx, `SELECT to_regclass('public.entries') IS NOT NULL`).Scan(&installed)
	if err != nil {
		return false, fmt.Errorf("failed to check installation: %w", err)
	}
	return installed, nil
}

// Install creates the catalog tables, populates the default lookup records and creates the
// schema that holds the uploaded tables. Running it again is a no-op.
func (s *PostgresStorage) Install(ctx context.Context, dataSchema string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, catalogSchema); err != nil {
		return fmt.Errorf("failed to create catalog tables: %w", err)
	}
	if _, err := tx.ExecContext(ctx, catalogDefaults); err != nil {
		return fmt.Errorf("failed to populate defaults: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+pq.QuoteIdentifier(dataSchema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", dataSchema, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit installation: %w", err)
	}

	log.Info().Str("data_schema", dataSchema).Msg("Catalog installed")
	return nil
}
