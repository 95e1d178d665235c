package profile

import (
	"github.com/gorilla/mux"

	"github.com/gatherly/gatherly-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/profile").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("", handler.GetMyProfile).Methods("GET")
	api.HandleFunc("", handler.UpdateMyProfile).Methods("PATCH")
	api.HandleFunc("/avatar", handler.UploadAvatar).Methods("POST")

	// Preference weights
	api.HandleFunc("/preferences", handler.GetMyPreferences).Methods("GET")
	api.HandleFunc("/preferences", handler.UpdateMyPreferences).Methods("PATCH")
}
