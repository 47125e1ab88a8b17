package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/scamdunk/internal/contracts"
	"github.com/wonny/scamdunk/internal/schemes"
	"github.com/wonny/scamdunk/pkg/logger"
)

// SchemesHandler serves tracked schemes and batch ingestion
type SchemesHandler struct {
	service *schemes.Service
	logger  *logger.Logger
}

// NewSchemesHandler creates a schemes handler
func NewSchemesHandler(service *schemes.Service, log *logger.Logger) *SchemesHandler {
	return &SchemesHandler{service: service, logger: log}
}

// SchemeView is a record plus its display slug
type SchemeView struct {
	*contracts.SchemeRecord
	Slug string `json:"slug"`
}

func newSchemeView(rec *contracts.SchemeRecord) SchemeView {
	name := rec.SchemeName
	if name == "" {
		name = schemes.Name(rec)
	}
	return SchemeView{SchemeRecord: rec, Slug: schemes.Slug(name)}
}

// SchemeListResponse is the GET /api/schemes payload
type SchemeListResponse struct {
	LastUpdated     time.Time    `json:"lastUpdated"`
	TotalSchemes    int          `json:"totalSchemes"`
	ActiveSchemes   int          `json:"activeSchemes"`
	ResolvedSchemes int          `json:"resolvedSchemes"`
	ConfirmedFrauds int          `json:"confirmedFrauds"`
	Schemes         []SchemeView `json:"schemes"`
}

// List returns schemes, optionally filtered by status
// GET /api/schemes?status=ONGOING
func (h *SchemesHandler) List(w http.ResponseWriter, r *http.Request) {
	status := contracts.SchemeStatus(strings.ToUpper(r.URL.Query().Get("status")))
	if status != "" && !status.Valid() {
		respondError(w, http.StatusBadRequest, "unknown status: "+string(status))
		return
	}

	db, err := h.service.Store().Load(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load schemes")
		respondError(w, http.StatusInternalServerError, "Failed to load schemes")
		return
	}

	records := db.Filter(status)
	views := make([]SchemeView, len(records))
	for i, rec := range records {
		views[i] = newSchemeView(rec)
	}

	respondJSON(w, http.StatusOK, SchemeListResponse{
		LastUpdated:     db.LastUpdated,
		TotalSchemes:    db.TotalSchemes,
		ActiveSchemes:   db.ActiveSchemes,
		ResolvedSchemes: db.ResolvedSchemes,
		ConfirmedFrauds: db.ConfirmedFrauds,
		Schemes:         views,
	})
}

// Get returns one scheme
// GET /api/schemes/{id}
func (h *SchemesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rec, err := schemes.Get(r.Context(), h.service.Store(), id)
	if errors.Is(err, schemes.ErrNotFound) {
		respondError(w, http.StatusNotFound, "scheme not found: "+id)
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("scheme_id", id).Error("Failed to load scheme")
		respondError(w, http.StatusInternalServerError, "Failed to load scheme")
		return
	}

	respondJSON(w, http.StatusOK, newSchemeView(rec))
}

// Ingest applies one daily batch
// POST /api/schemes/ingest
func (h *SchemesHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var batch contracts.DailyBatch
	if errs := decodeAndValidate(r, &batch); errs != nil {
		respondValidation(w, errs)
		return
	}

	summary, err := h.service.Track(r.Context(), &batch)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to apply batch")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}
