package suggestions

import (
	"github.com/gorilla/mux"

	"github.com/gatherly/gatherly-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/suggestions").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("", handler.CreateSuggestion).Methods("POST")
	api.HandleFunc("", handler.ListSuggestions).Methods("GET")
	api.HandleFunc("/{id}", handler.GetSuggestion).Methods("GET")
	api.HandleFunc("/{id}", handler.UpdateSuggestion).Methods("PATCH")
	api.HandleFunc("/{id}", handler.DeleteSuggestion).Methods("DELETE")
}
