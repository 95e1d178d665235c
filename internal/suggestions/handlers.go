package suggestions

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/gatherly/gatherly-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateSuggestion(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var dto CreateSuggestionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	suggestion, err := h.service.CreateSuggestion(r.Context(), userID, &dto)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create suggestion")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, suggestion)
}

func (h *Handler) GetSuggestion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid suggestion ID")
		return
	}

	suggestion, err := h.service.GetSuggestion(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrSuggestionNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get suggestion")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, suggestion)
}

func (h *Handler) ListSuggestions(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 {
			limit = l
		}
	}

	suggestions, err := h.service.ListSuggestions(r.Context(), category, limit)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list suggestions")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, suggestions)
}

func (h *Handler) UpdateSuggestion(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid suggestion ID")
		return
	}

	var dto UpdateSuggestionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	suggestion, err := h.service.UpdateSuggestion(r.Context(), userID, id, &dto)
	if err != nil {
		h.respondServiceError(w, err, "Failed to update suggestion")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, suggestion)
}

func (h *Handler) DeleteSuggestion(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid suggestion ID")
		return
	}

	if err := h.service.DeleteSuggestion(r.Context(), userID, id); err != nil {
		h.respondServiceError(w, err, "Failed to delete suggestion")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Suggestion deleted"})
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrSuggestionNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotOwner):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
