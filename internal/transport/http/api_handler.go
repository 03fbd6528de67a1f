package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"dictation-trainer/internal/app"
	"dictation-trainer/internal/domain"
)

// APIHandler serves the JSON endpoints around the exercise catalog and saved progress.
type APIHandler struct {
	service *app.TrainerService
}

func NewAPIHandler(service *app.TrainerService) *APIHandler {
	return &APIHandler{service: service}
}

// Register mounts the API routes on mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.healthz)
	mux.HandleFunc("GET /api/exercises", h.listExercises)
	mux.HandleFunc("GET /api/exercises/{id}/progress", h.getProgress)
	mux.HandleFunc("DELETE /api/exercises/{id}/progress", h.deleteProgress)
}

func (h *APIHandler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *APIHandler) listExercises(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Catalog(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *APIHandler) getProgress(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.service.Summary(r.Context(), r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "no saved progress")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *APIHandler) deleteProgress(w http.ResponseWriter, r *http.Request) {
	h.service.ClearProgress(r.Context(), r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrExerciseNotFound), errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrBlankNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrContentLoad), errors.Is(err, domain.ErrInvalidContent):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
