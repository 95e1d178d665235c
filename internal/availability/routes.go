package availability

import (
	"github.com/gorilla/mux"

	"github.com/gatherly/gatherly-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/availability").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/windows", handler.CreateWindow).Methods("POST")
	api.HandleFunc("/windows", handler.GetMyWindows).Methods("GET")
	api.HandleFunc("/windows/{id}", handler.DeleteWindow).Methods("DELETE")
	api.HandleFunc("/import/google", handler.ImportGoogleCalendar).Methods("POST")
}
