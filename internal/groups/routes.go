package groups

import (
	"github.com/gorilla/mux"

	"github.com/gatherly/gatherly-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/groups").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("", handler.CreateGroup).Methods("POST")
	api.HandleFunc("", handler.GetUserGroups).Methods("GET")
	api.HandleFunc("/{id}", handler.GetGroup).Methods("GET")
	api.HandleFunc("/{id}", handler.UpdateGroup).Methods("PATCH")
	api.HandleFunc("/{id}", handler.DeleteGroup).Methods("DELETE")

	// Membership
	api.HandleFunc("/{id}/members", handler.AddMember).Methods("POST")
	api.HandleFunc("/{id}/members/{userId}", handler.RemoveMember).Methods("DELETE")
	api.HandleFunc("/{id}/members/{userId}/weight", handler.SetMemberWeight).Methods("PUT")
}
