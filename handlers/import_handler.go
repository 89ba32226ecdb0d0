package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/peladahub/pelada-system/middleware"
	"github.com/peladahub/pelada-system/services"
	"github.com/peladahub/pelada-system/spreadsheet"
)

const maxImportSize = 10 << 20 // 10MB

type ImportHandler struct {
	importService    services.ImportService
	standingsService services.StandingsService
}

func NewImportHandler(importService services.ImportService, standingsService services.StandingsService) *ImportHandler {
	return &ImportHandler{
		importService:    importService,
		standingsService: standingsService,
	}
}

// Upload receives a spreadsheet and applies it row by row. The kind URL
// parameter picks the importer: players, teams, links, cards or goalkeepers.
// Valid rows are imported even when others fail; the response lists the
// failures per row.
func (h *ImportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	if err = r.ParseMultipartForm(maxImportSize); err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to parse upload: %w", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		badRequestResponse(w, r, errors.New("missing file field"))
		return
	}
	defer file.Close()

	reader, err := spreadsheet.ForFilename(header.Filename)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	rows, err := reader.Read(file)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	season := r.URL.Query().Get("season")
	kind := chi.URLParam(r, "kind")

	var result *services.ImportResult
	switch kind {
	case "players":
		result, err = h.importService.ImportPlayers(r.Context(), ownerID, rows)
	case "teams":
		result, err = h.importService.ImportRoundTeams(r.Context(), ownerID, season, rows)
	case "links":
		result, err = h.importService.ImportLinks(r.Context(), ownerID, season, rows)
	case "cards":
		result, err = h.importService.ImportCards(r.Context(), ownerID, season, rows)
	case "goalkeepers":
		result, err = h.importService.ImportGoalkeepers(r.Context(), ownerID, season, rows)
	default:
		badRequestResponse(w, r, fmt.Errorf("unknown import kind %q", kind))
		return
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if result.Imported > 0 && kind != "players" {
		h.standingsService.NotifyUpdated(r.Context(), ownerID)
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
