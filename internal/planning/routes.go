package planning

import (
	"github.com/gorilla/mux"

	"github.com/gatherly/gatherly-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/planning").Subrouter()
	api.Use(authMiddleware.Authenticate)

	// Planning
	api.HandleFunc("/plan", handler.PlanEvent).Methods("POST")
	api.HandleFunc("/conflicts/resolve", handler.ResolveConflicts).Methods("POST")

	// Events
	api.HandleFunc("/events", handler.CreateEvent).Methods("POST")
	api.HandleFunc("/events/{id}", handler.GetEvent).Methods("GET")
	api.HandleFunc("/events/{id}/finalize", handler.FinalizeEvent).Methods("POST")
	api.HandleFunc("/events/{id}/cancel", handler.CancelEvent).Methods("POST")
	api.HandleFunc("/groups/{groupId}/events", handler.ListGroupEvents).Methods("GET")

	// Feedback
	api.HandleFunc("/events/{id}/feedback", handler.SubmitFeedback).Methods("POST")

	// Live updates
	api.HandleFunc("/ws", handler.ServeWS).Methods("GET")
}
