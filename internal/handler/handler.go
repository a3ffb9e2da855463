package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Dan9191/loan-approval/internal/encoder"
	"github.com/Dan9191/loan-approval/internal/features"
	"github.com/Dan9191/loan-approval/internal/middleware"
	"github.com/Dan9191/loan-approval/internal/models"
	"github.com/Dan9191/loan-approval/internal/service"
	"github.com/Dan9191/loan-approval/internal/session"
	"github.com/sirupsen/logrus"
)

// Display colours per risk tier
var riskColors = map[models.RiskLevel]string{
	models.RiskLow:      "#2ecc40",
	models.RiskModerate: "#f1c40f",
	models.RiskHigh:     "#e74c3c",
}

const (
	approvedColor = "#2ecc40"
	deniedColor   = "#e74c3c"
)

// maxBodyBytes bounds a submitted application
const maxBodyBytes = 64 << 10

type Handler struct {
	svc    *service.Service
	store  *session.Store
	tokens *session.Tokens
	log    *logrus.Logger
}

func NewHandler(svc *service.Service, store *session.Store, tokens *session.Tokens, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, store: store, tokens: tokens, log: log}
}

type errorResponse struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type sessionResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type predictionResponse struct {
	ID          string             `json:"id"`
	CreatedAt   time.Time          `json:"created_at"`
	Application models.Application `json:"application"`
	Decision    models.Decision    `json:"decision"`
	Color       string             `json:"color"`
}

type historyResponse struct {
	Count   int                  `json:"count"`
	Entries []predictionResponse `json:"entries"`
}

type chart struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
	Colors []string `json:"colors"`
}

type summaryResponse struct {
	ApprovedCount int     `json:"approved_count"`
	DeniedCount   int     `json:"denied_count"`
	Total         int     `json:"total"`
	ApprovalRate  float64 `json:"approval_rate"`
	Chart         *chart  `json:"chart"`
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Model describes the loaded model artifact
func (h *Handler) Model(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Model())
}

// Options lists the accepted labels of every categorical field
func (h *Handler) Options(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Options())
}

// CreateSession starts a session with an empty history
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := h.store.Create()
	token, expires, err := h.tokens.Issue(sess)
	if err != nil {
		h.store.End(sess.ID)
		h.log.WithError(err).Error("Failed to issue session token")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "INTERNAL", Message: "failed to start session"})
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{SessionID: sess.ID, Token: token, ExpiresAt: expires})
}

// EndSession discards the caller's session and its history
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Code: "UNAUTHORIZED", Message: "no session"})
		return
	}
	h.store.End(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

// Predict scores an application and records it in the session history
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Code: "UNAUTHORIZED", Message: "no session"})
		return
	}

	var app models.Application
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&app); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Code: "BODY_TOO_LARGE", Message: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_REQUEST", Message: "malformed JSON body"})
		return
	}

	entry, err := h.svc.Submit(sess.Ledger, app)
	if err != nil {
		h.writeSubmitError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPrediction(entry))
}

// History returns the session's entries in submission order
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Code: "UNAUTHORIZED", Message: "no session"})
		return
	}

	entries := sess.Ledger.Entries()
	resp := historyResponse{Count: len(entries), Entries: make([]predictionResponse, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, toPrediction(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Summary returns approved/denied counts; chart is null while the history is empty
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Code: "UNAUTHORIZED", Message: "no session"})
		return
	}

	s := sess.Ledger.Summary()
	resp := summaryResponse{
		ApprovedCount: s.ApprovedCount,
		DeniedCount:   s.DeniedCount,
		Total:         s.Total(),
		ApprovalRate:  s.ApprovalRate(),
	}
	if s.Total() > 0 {
		resp.Chart = &chart{
			Labels: []string{"Approved", "Denied"},
			Values: []int{s.ApprovedCount, s.DeniedCount},
			Colors: []string{approvedColor, deniedColor},
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeSubmitError(w http.ResponseWriter, err error) {
	var unknown *encoder.UnknownLabelError
	if errors.As(err, &unknown) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Code: "UNKNOWN_LABEL", Field: unknown.Field, Message: err.Error()})
		return
	}
	var invalid *features.InvalidFieldError
	if errors.As(err, &invalid) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Code: "INVALID_FIELD", Field: invalid.Field, Message: err.Error()})
		return
	}
	h.log.WithError(err).Error("Failed to score application")
	writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "INTERNAL", Message: "failed to score application"})
}

func toPrediction(e models.HistoryEntry) predictionResponse {
	return predictionResponse{
		ID:          e.ID,
		CreatedAt:   e.CreatedAt,
		Application: e.Application,
		Decision:    e.Decision,
		Color:       riskColors[e.Decision.RiskLevel],
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
