package planning

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/gatherly/gatherly-backend/internal/common/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checks belong to the reverse proxy in this deployment.
		return true
	},
}

type Handler struct {
	service Service
	hub     *Hub
}

func NewHandler(service Service, hub *Hub) *Handler {
	return &Handler{service: service, hub: hub}
}

func (h *Handler) PlanEvent(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var dto PlanEventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := h.service.PlanEvent(r.Context(), userID, &dto)
	if err != nil {
		h.respondServiceError(w, err, "Failed to plan event")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, plan)
}

func (h *Handler) ResolveConflicts(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var dto ResolveConflictDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resolution, err := h.service.ResolveConflicts(r.Context(), userID, &dto)
	if err != nil {
		h.respondServiceError(w, err, "Failed to resolve conflicts")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resolution)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var dto CreateEventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	event, err := h.service.CreateEvent(r.Context(), userID, &dto)
	if err != nil {
		h.respondServiceError(w, err, "Failed to create event")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, event)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	eventID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	event, err := h.service.GetEvent(r.Context(), userID, eventID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to get event")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, event)
}

func (h *Handler) FinalizeEvent(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	eventID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	event, err := h.service.FinalizeEvent(r.Context(), userID, eventID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to finalize event")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, event)
}

func (h *Handler) CancelEvent(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	eventID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	event, err := h.service.CancelEvent(r.Context(), userID, eventID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to cancel event")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, event)
}

func (h *Handler) ListGroupEvents(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	groupID, err := strconv.ParseInt(mux.Vars(r)["groupId"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid group ID")
		return
	}

	events, err := h.service.ListGroupEvents(r.Context(), userID, groupID, r.URL.Query().Get("status"))
	if err != nil {
		h.respondServiceError(w, err, "Failed to list events")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, events)
}

func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	eventID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	var dto SubmitFeedbackDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	fb, err := h.service.SubmitFeedback(r.Context(), userID, eventID, &dto)
	if err != nil {
		h.respondServiceError(w, err, "Failed to submit feedback")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, fb)
}

// ServeWS upgrades the connection and hands it to the hub for group updates.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := NewClient(h.hub, conn, userID)
	client.Start()
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrGroupNotFound), errors.Is(err, ErrEventNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotGroupMember):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrAttendanceDropped),
		errors.Is(err, ErrFeedbackExists):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrEmptyGroup), errors.Is(err, ErrInvalidDuration),
		errors.Is(err, ErrInvalidWindow), errors.Is(err, ErrInvalidRating),
		errors.Is(err, ErrNoSuggestions):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
