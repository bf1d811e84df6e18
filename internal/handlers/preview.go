package handlers

import (
	"errors"
	"net/http"

	"github.com/hydrocode-de/metacatalog-ingest/internal/ingest"
	"github.com/hydrocode-de/metacatalog-ingest/internal/services"
	"github.com/rs/zerolog/log"
)

// PreviewHandler infers the schema of an uploaded file without storing anything
func (h *Handler) PreviewHandler(w http.ResponseWriter, r *http.Request) {
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

	schema, err := ingest.InferSchema(upload.Content)
	if err != nil {
		services.CounterPreviews.WithLabelValues("rejected").Inc()

		var inferenceErr *ingest.SchemaInferenceError
		if errors.As(err, &inferenceErr) {
			log.Warn().Str("filename", upload.Filename).Str("reason", inferenceErr.Reason).Msg("Could not infer schema")
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	services.CounterPreviews.WithLabelValues("ok").Inc()
	log.Info().
		Str("filename", upload.Filename).
		Int("rows", schema.NumRows).
		Int("columns", len(schema.Columns)).
		Msg("Schema inferred")

	respondJSON(w, http.StatusOK, schema)
}
