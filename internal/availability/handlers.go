package availability

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/gatherly/gatherly-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateWindow(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var dto CreateWindowDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	windows, err := h.service.CreateWindow(r.Context(), userID, &dto)
	if err != nil {
		if errors.Is(err, ErrInvalidWindow) {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create window")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, windows)
}

func (h *Handler) GetMyWindows(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var from, to time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid 'from' timestamp")
			return
		}
		from = parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid 'to' timestamp")
			return
		}
		to = parsed
	}

	windows, err := h.service.GetUserWindows(r.Context(), userID, from, to)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list windows")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, windows)
}

func (h *Handler) DeleteWindow(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	windowID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid window ID")
		return
	}

	if err := h.service.DeleteWindow(r.Context(), userID, windowID); err != nil {
		switch {
		case errors.Is(err, ErrWindowNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrNotOwner):
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete window")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Window deleted"})
}

func (h *Handler) ImportGoogleCalendar(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var dto ImportGoogleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	windows, err := h.service.ImportGoogleCalendar(r.Context(), userID, &dto)
	if err != nil {
		if errors.Is(err, ErrImportDisabled) {
			utils.RespondWithError(w, http.StatusNotImplemented, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusBadGateway, "Calendar import failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, windows)
}
