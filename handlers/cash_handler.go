package handlers

import (
	"net/http"

	"github.com/peladahub/pelada-system/middleware"
	"github.com/peladahub/pelada-system/models"
	"github.com/peladahub/pelada-system/services"
)

type CashHandler struct {
	cashService services.CashService
}

func NewCashHandler(cashService services.CashService) *CashHandler {
	return &CashHandler{cashService: cashService}
}

func (h *CashHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input services.CashEntryInput
	if err = readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entry, err := h.cashService.CreateEntry(r.Context(), ownerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusCreated, jsonResponse{"entry": entry}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CashHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	entries, err := h.cashService.ListEntries(r.Context(), ownerID, r.URL.Query().Get("season"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"entries": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CashHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	entryID, err := urlParamInt(r, "entryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err = h.cashService.DeleteEntry(r.Context(), ownerID, entryID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CashHandler) SetMonthlyFlag(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var flag models.MonthlyFeeFlag
	if err = readJSON(w, r, &flag); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err = h.cashService.SetMonthlyFlag(r.Context(), ownerID, &flag); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CashHandler) ListMonthlyFlags(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	flags, err := h.cashService.ListMonthlyFlags(r.Context(), ownerID, r.URL.Query().Get("season"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"flags": flags}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CashHandler) SetOpeningBalance(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input struct {
		Season string  `json:"season"`
		Amount float64 `json:"amount"`
	}
	if err = readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err = h.cashService.SetOpeningBalance(r.Context(), ownerID, input.Season, input.Amount); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CashHandler) MonthSummary(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	summary, err := h.cashService.MonthSummary(r.Context(), ownerID, r.URL.Query().Get("season"), queryInt(r, "month"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"summary": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CashHandler) SeasonSummary(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	summary, err := h.cashService.SeasonSummary(r.Context(), ownerID, r.URL.Query().Get("season"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"summary": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
