package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/hydrocode-de/metacatalog-ingest/internal/models"
	"github.com/hydrocode-de/metacatalog-ingest/internal/storage"
	"github.com/rs/zerolog/log"
)

func (h *Handler) ListLicensesHandler(w http.ResponseWriter, r *http.Request) {
	licenses, err := h.lookups.ListLicenses(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list licenses")
		respondError(w, http.StatusInternalServerError, "Failed to list licenses")
		return
	}
	respondJSON(w, http.StatusOK, licenses)
}

func (h *Handler) GetLicenseHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "License id must be an integer")
		return
	}

	license, err := h.lookups.GetLicense(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "License not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Int("id", id).Msg("Failed to get license")
		respondError(w, http.StatusInternalServerError, "Failed to get license")
		return
	}

	respondJSON(w, http.StatusOK, license)
}

func (h *Handler) ListKeywordsHandler(w http.ResponseWriter, r *http.Request) {
	keywords, err := h.lookups.ListKeywords(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list keywords")
		respondError(w, http.StatusInternalServerError, "Failed to list keywords")
		return
	}
	respondJSON(w, http.StatusOK, keywords)
}

func (h *Handler) ListAuthorsHandler(w http.ResponseWriter, r *http.Request) {
	authors, err := h.lookups.ListAuthors(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list authors")
		respondError(w, http.StatusInternalServerError, "Failed to list authors")
		return
	}
	respondJSON(w, http.StatusOK, authors)
}

func (h *Handler) ListVariablesHandler(w http.ResponseWriter, r *http.Request) {
	variables, err := h.lookups.ListVariables(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list variables")
		respondError(w, http.StatusInternalServerError, "Failed to list variables")
		return
	}
	respondJSON(w, http.StatusOK, variables)
}

// CreateAuthorHandler registers a person or an organisation
func (h *Handler) CreateAuthorHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAuthorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if msg := validateAuthor(req); msg != "" {
		respondError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	author, err := h.lookups.CreateAuthor(r.Context(), req)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create author")
		respondError(w, http.StatusInternalServerError, "Failed to create author")
		return
	}

	log.Info().Int("author_id", author.ID).Bool("is_organisation", author.IsOrganisation).Msg("Author created")
	respondJSON(w, http.StatusCreated, author)
}

func validateAuthor(req models.CreateAuthorRequest) string {
	blank := func(s string) bool { return strings.TrimSpace(s) == "" }

	if req.IsOrganisation {
		if blank(req.OrganisationName) || blank(req.OrganisationAbbrev) {
			return "organisation_name and organisation_abbrev are required for organisations"
		}
		return ""
	}

	if blank(req.FirstName) || blank(req.LastName) || blank(req.Affiliation) {
		return "first_name, last_name and affiliation are required for persons"
	}
	return ""
}
