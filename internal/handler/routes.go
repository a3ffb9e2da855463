package handler

import (
	"net/http"

	"github.com/Dan9191/loan-approval/internal/middleware"
	"github.com/gorilla/mux"
)

// Register mounts the API on r
func (h *Handler) Register(r *mux.Router) {
	// Public routes
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/model", h.Model).Methods(http.MethodGet)
	r.HandleFunc("/options", h.Options).Methods(http.MethodGet)
	r.HandleFunc("/sessions", h.CreateSession).Methods(http.MethodPost)

	// Session routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(h.tokens, h.store, h.log))
	authRouter.HandleFunc("/sessions/current", h.EndSession).Methods(http.MethodDelete)
	authRouter.HandleFunc("/predictions", h.Predict).Methods(http.MethodPost)
	authRouter.HandleFunc("/history", h.History).Methods(http.MethodGet)
	authRouter.HandleFunc("/history/summary", h.Summary).Methods(http.MethodGet)
}
