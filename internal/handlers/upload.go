package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hydrocode-de/metacatalog-ingest/internal/ingest"
	"github.com/hydrocode-de/metacatalog-ingest/internal/models"
	"github.com/hydrocode-de/metacatalog-ingest/internal/services"
	"github.com/rs/zerolog/log"
)

// UploadHandler validates the metadata part, runs the ingestion pipeline and reports its outcome.
// Once the metadata is valid the response is always 200; the body says whether an entry exists.
func (h *Handler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		log.Error().Err(err).Msg("Failed to parse form")
		respondError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	upload, err := h.readUpload(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	raw, err := readMetadata(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := ingest.ValidateMetadata(raw)
	if err != nil {
		var validationErr *ingest.ValidationError
		if errors.As(err, &validationErr) {
			log.Warn().Str("field", validationErr.Field).Str("reason", validationErr.Reason).Msg("Rejected metadata")
			respondError(w, http.StatusUnprocessableEntity, validationErr.Error())
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res := h.ingester.Ingest(r.Context(), sub, upload)
	services.RecordIngestion(res.Response.Status, res.Outcomes, res.Rows)

	if res.Entry != nil {
		h.afterIngest(context.WithoutCancel(r.Context()), sub, upload, res)
	}

	log.Info().
		Str("filename", upload.Filename).
		Str("status", res.Response.Status).
		Str("message", res.Response.Message).
		Msg("Upload processed")

	respondJSON(w, http.StatusOK, res.Response)
}

// afterIngest archives the raw file and publishes the entry event. Both are best-effort.
func (h *Handler) afterIngest(ctx context.Context, sub *models.MetadataSubmission, upload ingest.Upload, res *ingest.Result) {
	var archiveKey string
	if h.archive != nil {
		key, err := h.archive.ArchiveUpload(ctx, res.Entry.ID, upload.Filename, upload.ContentType, upload.Content)
		if err != nil {
			log.Error().Err(err).Int("entry_id", res.Entry.ID).Msg("Failed to archive upload")
		} else {
			archiveKey = key
		}
	}

	if h.events == nil {
		return
	}

	event := &models.EntryCreatedEvent{
		EntryID:    res.Entry.ID,
		Title:      res.Entry.Title,
		Embargo:    sub.Embargo,
		ArchiveKey: archiveKey,
		Status:     res.Response.Status,
		Message:    res.Response.Message,
		Steps:      res.Outcomes,
		Timestamp:  time.Now(),
	}
	if res.DataSource != nil {
		event.Tablename = res.Tablename
	}
	if h.dcat != nil && !sub.Embargo {
		event.Dataset = h.dcat.FormatEntry(res.Entry, sub, event.Tablename, archiveKey)
	}

	if err := h.events.PublishEntryCreated(ctx, event); err != nil {
		log.Error().Err(err).Int("entry_id", res.Entry.ID).Msg("Failed to publish event to RabbitMQ")
		// Don't fail the request - entry is still created
	}
}

func (h *Handler) readUpload(r *http.Request) (ingest.Upload, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return ingest.Upload{}, fmt.Errorf("file is required")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return ingest.Upload{}, fmt.Errorf("failed to read file: %w", err)
	}

	return ingest.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}

// readMetadata accepts the metadata either as a plain form field or as a file part
func readMetadata(r *http.Request) ([]byte, error) {
	if v := r.FormValue("metadata"); v != "" {
		return []byte(v), nil
	}

	file, _, err := r.FormFile("metadata")
	if err != nil {
		return nil, fmt.Errorf("metadata is required")
	}
	defer file.Close()

	return io.ReadAll(file)
}
