package handlers

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/peladahub/pelada-system/middleware"
	"github.com/peladahub/pelada-system/services"
)

type StandingsHandler struct {
	standingsService services.StandingsService
	exportService    services.ExportService
}

func NewStandingsHandler(standingsService services.StandingsService, exportService services.ExportService) *StandingsHandler {
	return &StandingsHandler{
		standingsService: standingsService,
		exportService:    exportService,
	}
}

func standingsQueryFromRequest(r *http.Request) services.StandingsQuery {
	return services.StandingsQuery{
		Season: r.URL.Query().Get("season"),
		Year:   queryInt(r, "year"),
		Month:  queryInt(r, "month"),
	}
}

// Get computes the classification tables for the requested period.
// Supported query parameters: season, or year+month for a monthly cut.
func (h *StandingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	tables, err := h.standingsService.Compute(r.Context(), ownerID, standingsQueryFromRequest(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"standings": tables}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ExportPDF streams the period's tables as a PDF download.
func (h *StandingsHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	filename, content, err := h.exportService.StandingsPDF(r.Context(), ownerID, standingsQueryFromRequest(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	if _, err = bytes.NewReader(content).WriteTo(w); err != nil {
		// Headers are out already, nothing useful left to send.
		return
	}
}

// Share uploads the PDF to the public bucket and returns the link.
func (h *StandingsHandler) Share(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	url, err := h.exportService.ShareStandings(r.Context(), ownerID, standingsQueryFromRequest(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusCreated, jsonResponse{"url": url}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
