package handlers

import (
	"net/http"
	"time"

	"github.com/peladahub/pelada-system/middleware"
	"github.com/peladahub/pelada-system/repositories"
	"github.com/peladahub/pelada-system/services"
)

type RoundHandler struct {
	roundService     services.RoundService
	standingsService services.StandingsService
}

func NewRoundHandler(roundService services.RoundService, standingsService services.StandingsService) *RoundHandler {
	return &RoundHandler{
		roundService:     roundService,
		standingsService: standingsService,
	}
}

func (h *RoundHandler) Open(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input struct {
		Date   string `json:"date"`
		Season string `json:"season"`
	}
	if err = readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	date, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := h.roundService.Open(r.Context(), ownerID, services.RoundInput{Date: date, Season: input.Season})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusCreated, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoundHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	roundID, err := urlParamInt(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := h.roundService.GetByID(r.Context(), ownerID, roundID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoundHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	filter := repositories.RoundFilter{Season: r.URL.Query().Get("season")}
	rounds, err := h.roundService.List(r.Context(), ownerID, filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"rounds": rounds}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoundHandler) ListSeasons(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	seasons, err := h.roundService.ListSeasons(r.Context(), ownerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"seasons": seasons}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoundHandler) SetTeams(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	roundID, err := urlParamInt(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Teams []string `json:"teams"`
	}
	if err = readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := h.roundService.SetTeams(r.Context(), ownerID, roundID, input.Teams)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoundHandler) AssignPlayer(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	roundID, err := urlParamInt(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	playerID, err := urlParamInt(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Team string `json:"team"`
	}
	if err = readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err = h.roundService.AssignPlayer(r.Context(), ownerID, roundID, playerID, input.Team); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *RoundHandler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	roundID, err := urlParamInt(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	playerID, err := urlParamInt(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err = h.roundService.RemovePlayer(r.Context(), ownerID, roundID, playerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *RoundHandler) SetCards(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	roundID, err := urlParamInt(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	playerID, err := urlParamInt(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Yellow int `json:"yellow"`
		Red    int `json:"red"`
	}
	if err = readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err = h.roundService.SetCards(r.Context(), ownerID, roundID, playerID, input.Yellow, input.Red); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.standingsService.NotifyUpdated(r.Context(), ownerID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *RoundHandler) SetTeamResult(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	roundID, err := urlParamInt(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	teamID, err := urlParamInt(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.TeamResultInput
	if err = readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err = h.roundService.SetTeamResult(r.Context(), ownerID, roundID, teamID, input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.standingsService.NotifyUpdated(r.Context(), ownerID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *RoundHandler) SetIndividualResult(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	roundID, err := urlParamInt(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	playerID, err := urlParamInt(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.TeamResultInput
	if err = readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err = h.roundService.SetIndividualResult(r.Context(), ownerID, roundID, playerID, input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.standingsService.NotifyUpdated(r.Context(), ownerID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *RoundHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	roundID, err := urlParamInt(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := h.roundService.Recalculate(r.Context(), ownerID, roundID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.standingsService.NotifyUpdated(r.Context(), ownerID)
	if err = writeJSON(w, http.StatusOK, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoundHandler) RecalculateAll(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input struct {
		CloseAll bool `json:"close_all"`
	}
	if err = readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err = h.roundService.RecalculateAll(r.Context(), ownerID, input.CloseAll); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.standingsService.NotifyUpdated(r.Context(), ownerID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *RoundHandler) Close(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	roundID, err := urlParamInt(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Closed bool `json:"closed"`
	}
	if err = readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err = h.roundService.Close(r.Context(), ownerID, roundID, input.Closed); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.standingsService.NotifyRoundClosed(r.Context(), ownerID, roundID, input.Closed)
	w.WriteHeader(http.StatusNoContent)
}

func (h *RoundHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	roundID, err := urlParamInt(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err = h.roundService.Delete(r.Context(), ownerID, roundID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.standingsService.NotifyUpdated(r.Context(), ownerID)
	w.WriteHeader(http.StatusNoContent)
}
