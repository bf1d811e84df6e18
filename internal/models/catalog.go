package models

import (
	"time"
)

// Entry represents a dataset registered in the catalog
type Entry struct {
	ID         int       `json:"id"`
	UUID       string    `json:"uuid"`
	Title      string    `json:"title"`
	Abstract   string    `json:"abstract,omitempty"`
	ExternalID string    `json:"external_id,omitempty"`
	Location   string    `json:"location,omitempty"`
	VariableID int       `json:"variable_id"`
	LicenseID  int       `json:"license_id"`
	Embargo    bool      `json:"embargo"`
	IsPartial  bool      `json:"is_partial"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewEntry holds everything needed to create an entry together with its first author
type NewEntry struct {
	Title       string
	Abstract    string
	AuthorID    int
	LocationWKT *string
	VariableID  int
	ExternalID  *string
	LicenseID   int
	Embargo     bool
	IsPartial   bool
}

const (
	RoleAuthor   = "author"
	RoleCoAuthor = "coAuthor"
)

// AuthorAssociation links an author to an entry in a role and position
type AuthorAssociation struct {
	AuthorID int
	Role     string
	Order    int
}

type EntryDetail struct {
	Name  string
	Value string
}

// DataSource represents where and how the physical data of an entry is stored
type DataSource struct {
	ID            int      `json:"id"`
	EntryID       int      `json:"entry_id"`
	Path          string   `json:"path"`
	Type          string   `json:"type"`
	Datatype      string   `json:"datatype"`
	VariableNames []string `json:"variable_names"`
}

const TimeseriesDatatype = "timeseries"

type ScaleDimension string

const (
	TemporalDimension ScaleDimension = "temporal"
	SpatialDimension  ScaleDimension = "spatial"
)

// Scale describes the resolution and extent of a data source in one dimension
type Scale struct {
	ID             int            `json:"id"`
	DataSourceID   int            `json:"datasource_id"`
	Dimension      ScaleDimension `json:"dimension"`
	Resolution     string         `json:"resolution"`
	Extent         []string       `json:"extent"`
	Support        float64        `json:"support"`
	DimensionNames []string       `json:"dimension_names"`
}

type License struct {
	ID            int    `json:"id"`
	ShortTitle    string `json:"short_title"`
	Title         string `json:"title"`
	ByAttribution *bool  `json:"by_attribution,omitempty"`
	ShareAlike    *bool  `json:"share_alike,omitempty"`
	CommercialUse *bool  `json:"commercial_use,omitempty"`
	Summary       string `json:"summary"`
	Link          string `json:"link"`
}

type Unit struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

type Variable struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Symbol      string   `json:"symbol"`
	Unit        Unit     `json:"unit"`
	ColumnNames []string `json:"column_names"`
	KeywordID   *int     `json:"keyword_id,omitempty"`
}

type Thesaurus struct {
	ID           int    `json:"id"`
	UUID         string `json:"uuid"`
	Name         string `json:"name"`
	Title        string `json:"title"`
	Organisation string `json:"organisation"`
	URL          string `json:"url"`
	Description  string `json:"description"`
}

type Keyword struct {
	ID            int       `json:"id"`
	UUID          string    `json:"uuid"`
	Value         string    `json:"value"`
	Path          string    `json:"path"`
	Children      []string  `json:"children"`
	ThesaurusName Thesaurus `json:"thesaurusName"`
}

// Author represents a person or an organisation that can be credited on entries
type Author struct {
	ID                 int     `json:"id"`
	UUID               string  `json:"uuid"`
	FirstName          *string `json:"first_name,omitempty"`
	LastName           *string `json:"last_name,omitempty"`
	IsOrganisation     bool    `json:"is_organisation"`
	Affiliation        *string `json:"affiliation,omitempty"`
	Attribution        *string `json:"attribution,omitempty"`
	OrganisationName   *string `json:"organisation_name,omitempty"`
	OrganisationAbbrev *string `json:"organisation_abbrev,omitempty"`
}

// CreateAuthorRequest represents the request body for registering a new author
type CreateAuthorRequest struct {
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	IsOrganisation     bool   `json:"is_organisation"`
	Affiliation        string `json:"affiliation"`
	Attribution        string `json:"attribution"`
	OrganisationName   string `json:"organisation_name"`
	OrganisationAbbrev string `json:"organisation_abbrev"`
}
