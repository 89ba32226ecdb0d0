package handlers

import (
	"net/http"

	"github.com/peladahub/pelada-system/middleware"
	"github.com/peladahub/pelada-system/models"
	"github.com/peladahub/pelada-system/services"
)

type SettingsHandler struct {
	settingsService services.SettingsService
}

func NewSettingsHandler(settingsService services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	settings, err := h.settingsService.Get(r.Context(), ownerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"settings": settings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var settings models.LeagueSettings
	if err = readJSON(w, r, &settings); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	updated, err := h.settingsService.Update(r.Context(), ownerID, &settings)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"settings": updated}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
