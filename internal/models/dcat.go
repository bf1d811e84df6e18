package models

// DCATDataset represents a catalog entry rendered as a DCAT dataset (JSON-LD)
type DCATDataset struct {
	Context      string             `json:"@context"`
	Type         string             `json:"@type"`
	ID           string             `json:"@id"`
	Title        string             `json:"dct:title"`
	Description  string             `json:"dct:description,omitempty"`
	Identifier   string             `json:"dct:identifier,omitempty"`
	Issued       string             `json:"dct:issued"`
	Publisher    DCATPublisher      `json:"dct:publisher"`
	Keyword      []string           `json:"dcat:keyword,omitempty"`
	Spatial      *DCATSpatial       `json:"dct:spatial,omitempty"`
	Temporal     *DCATTemporal      `json:"dct:temporal,omitempty"`
	Distribution []DCATDistribution `json:"dcat:distribution,omitempty"`
	License      string             `json:"dct:license,omitempty"`
}

// DCATPublisher represents the publishing organisation
type DCATPublisher struct {
	Type string `json:"@type"`
	Name string `json:"foaf:name"`
}

// DCATSpatial represents geographic coverage
type DCATSpatial struct {
	Type     string `json:"@type"`
	Geometry string `json:"locn:geometry"`
}

// DCATTemporal represents temporal coverage
type DCATTemporal struct {
	Type      string `json:"@type"`
	StartDate string `json:"dcat:startDate,omitempty"`
	EndDate   string `json:"dcat:endDate,omitempty"`
}

// DCATDistribution represents one way of accessing the data
type DCATDistribution struct {
	Type        string `json:"@type"`
	Title       string `json:"dct:title"`
	Format      string `json:"dct:format"`
	AccessURL   string `json:"dcat:accessURL"`
	DownloadURL string `json:"dcat:downloadURL,omitempty"`
	MediaType   string `json:"dcat:mediaType,omitempty"`
}
