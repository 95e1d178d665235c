package groups

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

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var dto CreateGroupDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	group, err := h.service.CreateGroup(r.Context(), userID, &dto)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create group")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, group)
}

func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	groupID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid group ID")
		return
	}

	group, err := h.service.GetGroup(r.Context(), userID, groupID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to get group")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, group)
}

func (h *Handler) GetUserGroups(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	groups, err := h.service.GetUserGroups(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list groups")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, groups)
}

func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	groupID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid group ID")
		return
	}

	var dto UpdateGroupDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	group, err := h.service.UpdateGroup(r.Context(), userID, groupID, &dto)
	if err != nil {
		h.respondServiceError(w, err, "Failed to update group")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, group)
}

func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	groupID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid group ID")
		return
	}

	if err := h.service.DeleteGroup(r.Context(), userID, groupID); err != nil {
		h.respondServiceError(w, err, "Failed to delete group")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Group deleted"})
}

func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	groupID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid group ID")
		return
	}

	var dto AddMemberDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	member, err := h.service.AddMember(r.Context(), userID, groupID, &dto)
	if err != nil {
		h.respondServiceError(w, err, "Failed to add member")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, member)
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	vars := mux.Vars(r)
	groupID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid group ID")
		return
	}
	memberID, err := strconv.ParseInt(vars["userId"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.service.RemoveMember(r.Context(), userID, groupID, memberID); err != nil {
		h.respondServiceError(w, err, "Failed to remove member")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Member removed"})
}

func (h *Handler) SetMemberWeight(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	vars := mux.Vars(r)
	groupID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid group ID")
		return
	}
	memberID, err := strconv.ParseInt(vars["userId"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var dto SetWeightDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.SetMemberWeight(r.Context(), userID, groupID, memberID, dto.PriorityWeight); err != nil {
		h.respondServiceError(w, err, "Failed to set member weight")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Weight updated"})
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrGroupNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotMember), errors.Is(err, ErrNotCreator):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrCreatorLeave):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
