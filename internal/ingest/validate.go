package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hydrocode-de/metacatalog-ingest/internal/models"
)

// ValidationError carries the path of the offending field in the metadata payload
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

type refDTO struct {
	ID *int `json:"id"`
}

type authorDTO struct {
	ID             *int  `json:"id"`
	IsOrganisation *bool `json:"is_organisation"`
}

type locationDTO struct {
	Longitude *float64 `json:"longitude"`
	Latitude  *float64 `json:"latitude"`
}

type detailDTO struct {
	Name  *string         `json:"name"`
	Value json.RawMessage `json:"value"`
	Type  *string         `json:"type"`
}

type temporalScaleDTO struct {
	DimensionNames   []string `json:"dimension_names"`
	ObservationStart *string  `json:"observation_start"`
	ObservationEnd   *string  `json:"observation_end"`
	Resolution       *int     `json:"resolution"`
	ResolutionUnit   *string  `json:"resolution_unit"`
}

type spatialScaleDTO struct {
	DimensionNames []string `json:"dimension_names"`
	Extent         *string  `json:"extent"`
	Resolution     *int     `json:"resolution"`
}

type dataSourceDTO struct {
	Type          *string           `json:"type"`
	VariableNames []string          `json:"variable_names"`
	TemporalScale *temporalScaleDTO `json:"temporal_scale"`
	SpatialScale  *spatialScaleDTO  `json:"spatial_scale"`
}

type metadataDTO struct {
	Title       *string        `json:"title"`
	Abstract    *string        `json:"abstract"`
	ExternalID  *string        `json:"external_id"`
	Embargo     *bool          `json:"embargo"`
	Location    *locationDTO   `json:"location"`
	FirstAuthor *authorDTO     `json:"firstAuthor"`
	CoAuthors   []authorDTO    `json:"coAuthors"`
	License     *refDTO        `json:"license"`
	LicenseID   *int           `json:"license_id"`
	Variable    *refDTO        `json:"variable"`
	VariableID  *int           `json:"variable_id"`
	Keywords    []refDTO       `json:"keywords"`
	Details     []detailDTO    `json:"details"`
	DataSource  *dataSourceDTO `json:"dataSource"`
}

// ValidateMetadata parses the JSON metadata part of an upload. It checks shape and required
// fields only; whether referenced ids exist is left to the catalog store.
func ValidateMetadata(raw []byte) (*models.MetadataSubmission, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, invalid("metadata", "required")
	}

	dto := metadataDTO{}
	if err := json.Unmarshal(raw, &dto); err != nil {
		return nil, decodeError(err)
	}

	sub := &models.MetadataSubmission{}

	if dto.Title == nil || strings.TrimSpace(*dto.Title) == "" {
		return nil, invalid("title", "required")
	}
	sub.Title = strings.TrimSpace(*dto.Title)
	sub.Abstract = deref(dto.Abstract)
	sub.ExternalID = deref(dto.ExternalID)
	sub.Embargo = dto.Embargo != nil && *dto.Embargo

	if dto.FirstAuthor == nil {
		return nil, invalid("firstAuthor", "required")
	}
	author, err := resolveAuthor("firstAuthor", *dto.FirstAuthor)
	if err != nil {
		return nil, err
	}
	sub.FirstAuthor = author

	if sub.LicenseID, err = resolveRef("license", dto.License, dto.LicenseID); err != nil {
		return nil, err
	}
	if sub.VariableID, err = resolveRef("variable", dto.Variable, dto.VariableID); err != nil {
		return nil, err
	}

	if dto.Location != nil {
		if sub.Location, err = resolveLocation(*dto.Location); err != nil {
			return nil, err
		}
	}

	for i, a := range dto.CoAuthors {
		coAuthor, err := resolveAuthor(fmt.Sprintf("coAuthors[%d]", i), a)
		if err != nil {
			return nil, err
		}
		sub.CoAuthors = append(sub.CoAuthors, coAuthor)
	}

	seen := map[int]bool{}
	for i, k := range dto.Keywords {
		id, err := positiveID(fmt.Sprintf("keywords[%d].id", i), k.ID)
		if err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			sub.KeywordIDs = append(sub.KeywordIDs, id)
		}
	}

	for i, d := range dto.Details {
		detail, err := resolveDetail(fmt.Sprintf("details[%d]", i), d)
		if err != nil {
			return nil, err
		}
		sub.Details = append(sub.Details, detail)
	}

	if dto.DataSource != nil {
		if sub.DataSource, err = resolveDataSource(*dto.DataSource); err != nil {
			return nil, err
		}
	}

	return sub, nil
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "metadata"
		}
		return invalid(field, fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value))
	}

	return invalid("metadata", fmt.Sprintf("invalid JSON: %s", err.Error()))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func positiveID(field string, id *int) (int, error) {
	if id == nil {
		return 0, invalid(field, "required")
	}
	if *id <= 0 {
		return 0, invalid(field, "must be a positive integer")
	}
	return *id, nil
}

func resolveAuthor(field string, a authorDTO) (models.AuthorRef, error) {
	id, err := positiveID(field+".id", a.ID)
	if err != nil {
		return models.AuthorRef{}, err
	}

	if a.IsOrganisation != nil && *a.IsOrganisation {
		return models.Organisation(id), nil
	}
	return models.Person(id), nil
}

// resolveRef accepts either a nested object with an id or the flat <field>_id form
func resolveRef(field string, nested *refDTO, flat *int) (int, error) {
	if nested != nil {
		return positiveID(field+".id", nested.ID)
	}
	if flat != nil {
		return positiveID(field+"_id", flat)
	}
	return 0, invalid(field, "required")
}

func resolveLocation(l locationDTO) (*models.Location, error) {
	if l.Longitude == nil {
		return nil, invalid("location.longitude", "required")
	}
	if l.Latitude == nil {
		return nil, invalid("location.latitude", "required")
	}
	if *l.Longitude < -180 || *l.Longitude > 180 {
		return nil, invalid("location.longitude", "must be between -180 and 180")
	}
	if *l.Latitude < -90 || *l.Latitude > 90 {
		return nil, invalid("location.latitude", "must be between -90 and 90")
	}

	return &models.Location{Longitude: *l.Longitude, Latitude: *l.Latitude}, nil
}

func resolveDetail(field string, d detailDTO) (models.Detail, error) {
	if d.Name == nil || strings.TrimSpace(*d.Name) == "" {
		return models.Detail{}, invalid(field+".name", "required")
	}

	detailType := deref(d.Type)
	if detailType != "" && detailType != "string" {
		return models.Detail{}, invalid(field+".type", fmt.Sprintf("unsupported type %q", detailType))
	}

	value, err := decodeDetailValue(field+".value", d.Value)
	if err != nil {
		return models.Detail{}, err
	}

	return models.Detail{Name: strings.TrimSpace(*d.Name), Value: value, Type: detailType}, nil
}

func decodeDetailValue(field string, raw json.RawMessage) (models.DetailValue, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return models.DetailValue{}, invalid(field, "required")
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return models.DetailValue{}, invalid(field, err.Error())
		}
		return models.StringValue(s), nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return models.DetailValue{}, invalid(field, err.Error())
		}
		return models.BoolValue(b), nil
	case '{':
		o := map[string]any{}
		if err := json.Unmarshal(raw, &o); err != nil {
			return models.DetailValue{}, invalid(field, err.Error())
		}
		return models.ObjectValue(o), nil
	case '[':
		return models.DetailValue{}, invalid(field, "lists are not supported")
	default:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return models.DetailValue{}, invalid(field, err.Error())
		}
		return models.NumberValue(f), nil
	}
}

func resolveDataSource(ds dataSourceDTO) (*models.DataSourceSpec, error) {
	if ds.Type == nil || *ds.Type == "" {
		return nil, invalid("dataSource.type", "required")
	}

	spec := &models.DataSourceSpec{VariableNames: ds.VariableNames}

	switch {
	case strings.EqualFold(*ds.Type, string(models.InternalDataSource)):
		spec.Type = models.InternalDataSource
	case strings.EqualFold(*ds.Type, string(models.NetCDFDataSource)):
		spec.Type = models.NetCDFDataSource
	default:
		return nil, invalid("dataSource.type", fmt.Sprintf("must be one of internal, netCDF, got %q", *ds.Type))
	}

	for i, name := range ds.VariableNames {
		if strings.TrimSpace(name) == "" {
			return nil, invalid(fmt.Sprintf("dataSource.variable_names[%d]", i), "must not be blank")
		}
	}

	if ts := ds.TemporalScale; ts != nil {
		spec.TemporalScale = &models.TemporalScaleSpec{
			DimensionNames:   ts.DimensionNames,
			ObservationStart: deref(ts.ObservationStart),
			ObservationEnd:   deref(ts.ObservationEnd),
			Resolution:       ts.Resolution,
			ResolutionUnit:   deref(ts.ResolutionUnit),
		}
	}

	if ss := ds.SpatialScale; ss != nil {
		spec.SpatialScale = &models.SpatialScaleSpec{
			DimensionNames: ss.DimensionNames,
			Extent:         deref(ss.Extent),
			Resolution:     ss.Resolution,
		}
	}

	return spec, nil
}
