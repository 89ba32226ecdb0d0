package handlers

import (
	"net/http"

	"github.com/peladahub/pelada-system/middleware"
	"github.com/peladahub/pelada-system/services"
)

type PlayerHandler struct {
	playerService services.PlayerService
}

func NewPlayerHandler(playerService services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: playerService}
}

func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input services.PlayerInput
	if err = readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.Create(r.Context(), ownerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusCreated, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	activeOnly := r.URL.Query().Get("active") == "true"
	players, err := h.playerService.List(r.Context(), ownerID, activeOnly)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	playerID, err := urlParamInt(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.GetByID(r.Context(), ownerID, playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	playerID, err := urlParamInt(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.PlayerInput
	if err = readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.Update(r.Context(), ownerID, playerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	playerID, err := urlParamInt(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Active bool `json:"active"`
	}
	if err = readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err = h.playerService.SetActive(r.Context(), ownerID, playerID, input.Active); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PlayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	playerID, err := urlParamInt(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err = h.playerService.Delete(r.Context(), ownerID, playerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
