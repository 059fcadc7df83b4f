package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"movie-knowledge-service/internal/app"
	"movie-knowledge-service/internal/domain"
)

// APIHandler serves the read-only JSON views of a profile.
type APIHandler struct {
	service *app.LearnerService
	logger  *slog.Logger
}

func NewAPIHandler(service *app.LearnerService, logger *slog.Logger) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIHandler{service: service, logger: logger}
}

// Register mounts the API routes on mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /profiles/{id}", h.getProfile)
	mux.HandleFunc("GET /profiles/{id}/focus", h.getFocus)
	mux.HandleFunc("GET /profiles/{id}/categories", h.getCategories)
}

func (h *APIHandler) getProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Profile(r.Context(), r.PathValue("id"))
	h.respond(w, profile, err)
}

func (h *APIHandler) getFocus(w http.ResponseWriter, r *http.Request) {
	focus, err := h.service.TodayFocus(r.Context(), r.PathValue("id"))
	if err == nil && focus == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.respond(w, focus, err)
}

func (h *APIHandler) getCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context(), r.PathValue("id"))
	h.respond(w, categories, err)
}

func (h *APIHandler) respond(w http.ResponseWriter, body any, err error) {
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError || status == http.StatusServiceUnavailable {
			h.logger.Error("api request failed", "error", err)
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(newErrorPayload(err))
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("encode response", "error", err)
	}
}

func newErrorPayload(err error) errorPayload {
	return errorPayload{Code: errorCode(err), Message: err.Error()}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrPersistence):
		return "persistence"
	default:
		return "internal"
	}
}

func statusFor(err error) int {
	switch errorCode(err) {
	case "invalid_input":
		return http.StatusBadRequest
	case "invalid_state":
		return http.StatusConflict
	case "not_found":
		return http.StatusNotFound
	case "persistence":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
