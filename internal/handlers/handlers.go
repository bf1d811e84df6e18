package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"

	"github.com/hydrocode-de/metacatalog-ingest/internal/formatter"
	"github.com/hydrocode-de/metacatalog-ingest/internal/ingest"
	"github.com/hydrocode-de/metacatalog-ingest/internal/models"
	"github.com/rs/zerolog/log"
)

// Ingester runs the registration pipeline for one validated upload
type Ingester interface {
	Ingest(ctx context.Context, sub *models.MetadataSubmission, upload ingest.Upload) *ingest.Result
}

// LookupStore serves the reference records the upload form picks from
type LookupStore interface {
	ListLicenses(ctx context.Context) ([]models.License, error)
	GetLicense(ctx context.Context, id int) (*models.License, error)
	ListKeywords(ctx context.Context) ([]models.Keyword, error)
	ListAuthors(ctx context.Context) ([]models.Author, error)
	CreateAuthor(ctx context.Context, req models.CreateAuthorRequest) (*models.Author, error)
	ListVariables(ctx context.Context) ([]models.Variable, error)
}

// Archiver keeps a copy of the raw uploaded file
type Archiver interface {
	ArchiveUpload(ctx context.Context, entryID int, filename, contentType string, content []byte) (string, error)
}

// EventPublisher announces created entries
type EventPublisher interface {
	PublishEntryCreated(ctx context.Context, event *models.EntryCreatedEvent) error
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler contains all HTTP handlers
type Handler struct {
	ingester       Ingester
	lookups        LookupStore
	archive        Archiver
	events         EventPublisher
	dcat           *formatter.DCATFormatter
	checks         map[string]HealthChecker
	maxUploadBytes int64
}

// NewHandler creates a new handler instance. archive and events may be nil, which disables
// archiving uploads and publishing entry events.
func NewHandler(
	ingester Ingester,
	lookups LookupStore,
	archive Archiver,
	events EventPublisher,
	dcat *formatter.DCATFormatter,
	maxUploadBytes int64,
) *Handler {
	return &Handler{
		ingester:       ingester,
		lookups:        lookups,
		archive:        archive,
		events:         events,
		dcat:           dcat,
		checks:         map[string]HealthChecker{},
		maxUploadBytes: maxUploadBytes,
	}
}

// AddHealthCheck registers a dependency reported by the health endpoint
func (h *Handler) AddHealthCheck(name string, checker HealthChecker) {
	h.checks[name] = checker
}

// HealthCheckHandler reports the state of every registered dependency
func (h *Handler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "healthy"
	checks := map[string]string{}
	for _, name := range names {
		checks[name] = "ok"
		if err := h.checks[name].HealthCheck(ctx); err != nil {
			status = "unhealthy"
			checks[name] = err.Error()
		}
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	respondJSON(w, statusCode, map[string]any{
		"status": status,
		"checks": checks,
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, models.IngestionResponse{Status: models.StatusError, Message: message})
}
