package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/scamdunk/internal/contracts"
	"github.com/wonny/scamdunk/internal/promoters"
	"github.com/wonny/scamdunk/pkg/logger"
)

// PromotersHandler serves the promoter database
type PromotersHandler struct {
	service *promoters.Service
	logger  *logger.Logger
}

// NewPromotersHandler creates a promoters handler
func NewPromotersHandler(service *promoters.Service, log *logger.Logger) *PromotersHandler {
	return &PromotersHandler{service: service, logger: log}
}

// List returns the promoter database, optionally filtered
// GET /api/promoters?risk=SERIAL_OFFENDER&active=true
func (h *PromotersHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	risk := contracts.PromoterRisk(strings.ToUpper(q.Get("risk")))

	var active *bool
	if s := q.Get("active"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "active must be true or false")
			return
		}
		active = &v
	}

	pdb, err := h.service.Get(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load promoters")
		respondError(w, http.StatusInternalServerError, "Failed to load promoters")
		return
	}

	if risk != "" || active != nil {
		filtered := make([]contracts.PromoterEntry, 0, len(pdb.Promoters))
		for _, p := range pdb.Promoters {
			if risk != "" && p.RiskLevel != risk {
				continue
			}
			if active != nil && p.IsActive != *active {
				continue
			}
			filtered = append(filtered, p)
		}
		pdb.Promoters = filtered
	}

	respondJSON(w, http.StatusOK, pdb)
}

// Get returns one promoter
// GET /api/promoters/{id}
func (h *PromotersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	entry, err := h.service.Find(r.Context(), id)
	if errors.Is(err, promoters.ErrNotFound) {
		respondError(w, http.StatusNotFound, "promoter not found: "+id)
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("promoter_id", id).Error("Failed to load promoter")
		respondError(w, http.StatusInternalServerError, "Failed to load promoters")
		return
	}

	respondJSON(w, http.StatusOK, entry)
}
