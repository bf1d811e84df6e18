package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// MetadataSubmission is the validated description of a dataset sent along with an upload
type MetadataSubmission struct {
	Title       string
	Abstract    string
	ExternalID  string
	Embargo     bool
	Location    *Location
	FirstAuthor AuthorRef
	CoAuthors   []AuthorRef
	LicenseID   int
	VariableID  int
	KeywordIDs  []int
	Details     []Detail
	DataSource  *DataSourceSpec
}

// Location is a WGS84 coordinate pair
type Location struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// WKT renders the location as a well-known-text point
func (l Location) WKT() string {
	return fmt.Sprintf("POINT (%s %s)",
		strconv.FormatFloat(l.Longitude, 'f', -1, 64),
		strconv.FormatFloat(l.Latitude, 'f', -1, 64),
	)
}

type AuthorKind int

const (
	PersonAuthor AuthorKind = iota
	OrganisationAuthor
)

func (k AuthorKind) String() string {
	if k == OrganisationAuthor {
		return "organisation"
	}
	return "person"
}

// AuthorRef references an existing author, either a person or an organisation
type AuthorRef struct {
	Kind AuthorKind
	ID   int
}

func Person(id int) AuthorRef {
	return AuthorRef{Kind: PersonAuthor, ID: id}
}

func Organisation(id int) AuthorRef {
	return AuthorRef{Kind: OrganisationAuthor, ID: id}
}

type DetailKind int

const (
	StringDetail DetailKind = iota
	NumberDetail
	BoolDetail
	ObjectDetail
)

// DetailValue is a closed union over the value shapes a detail may carry.
// Only the string rendering is persisted by the catalog store.
type DetailValue struct {
	kind   DetailKind
	str    string
	num    float64
	flag   bool
	object map[string]any
}

func StringValue(s string) DetailValue {
	return DetailValue{kind: StringDetail, str: s}
}

func NumberValue(f float64) DetailValue {
	return DetailValue{kind: NumberDetail, num: f}
}

func BoolValue(b bool) DetailValue {
	return DetailValue{kind: BoolDetail, flag: b}
}

func ObjectValue(o map[string]any) DetailValue {
	return DetailValue{kind: ObjectDetail, object: o}
}

func (v DetailValue) Kind() DetailKind {
	return v.kind
}

// String renders the value in the representation stored in the catalog
func (v DetailValue) String() string {
	switch v.kind {
	case NumberDetail:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case BoolDetail:
		return strconv.FormatBool(v.flag)
	case ObjectDetail:
		b, err := json.Marshal(v.object)
		if err != nil {
			return "{}"
		}
		return string(b)
	default:
		return v.str
	}
}

// Detail is a free-form name/value pair attached to an entry
type Detail struct {
	Name  string
	Value DetailValue
	Type  string
}

type DataSourceType string

const (
	InternalDataSource DataSourceType = "internal"
	NetCDFDataSource   DataSourceType = "netCDF"
)

// DataSourceSpec describes how the uploaded file is registered and stored
type DataSourceSpec struct {
	Type          DataSourceType
	VariableNames []string
	TemporalScale *TemporalScaleSpec
	SpatialScale  *SpatialScaleSpec
}

type TemporalScaleSpec struct {
	DimensionNames   []string
	ObservationStart string
	ObservationEnd   string
	Resolution       *int
	ResolutionUnit   string
}

// FormattedResolution renders the resolution as <value><unit>, or an empty string when no
// numeric resolution was given
func (t TemporalScaleSpec) FormattedResolution() string {
	if t.Resolution == nil {
		return ""
	}
	return strconv.Itoa(*t.Resolution) + t.ResolutionUnit
}

type SpatialScaleSpec struct {
	DimensionNames []string
	Extent         string
	Resolution     *int
}

func (s SpatialScaleSpec) FormattedResolution() string {
	if s.Resolution == nil {
		return ""
	}
	return strconv.Itoa(*s.Resolution)
}
