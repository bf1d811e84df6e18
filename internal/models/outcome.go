package models

import (
	"fmt"
	"time"
)

// Step names one stage of the ingestion pipeline
type Step string

const (
	StepEntry       Step = "entry"
	StepCoAuthors   Step = "co-authors"
	StepKeywords    Step = "keywords"
	StepDetails     Step = "details"
	StepDataSource  Step = "data source"
	StepMaterialize Step = "data"
)

// StepOutcome is the recorded result of one pipeline step
type StepOutcome struct {
	Step      Step   `json:"step"`
	Succeeded bool   `json:"succeeded"`
	Skipped   bool   `json:"skipped,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

func (o StepOutcome) Failed() bool {
	return !o.Succeeded && !o.Skipped
}

// Message renders a failed outcome as "[<step>]: <reason>"
func (o StepOutcome) Message() string {
	return fmt.Sprintf("[%s]: %s", o.Step, o.Detail)
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// IngestionResponse is returned to the client after an upload
type IngestionResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// EntryCreatedEvent represents the event published once an upload produced a catalog entry
type EntryCreatedEvent struct {
	EntryID    int           `json:"entry_id"`
	Title      string        `json:"title"`
	Embargo    bool          `json:"embargo"`
	Tablename  string        `json:"tablename,omitempty"`
	ArchiveKey string        `json:"archive_key,omitempty"`
	Status     string        `json:"status"`
	Message    string        `json:"message"`
	Steps      []StepOutcome `json:"steps"`
	Dataset    *DCATDataset  `json:"dataset,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}
