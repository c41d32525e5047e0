package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tjgf2022/logkeeper-roles-hub/internal/services"
)

// SettingsHandler serves the super-only settings endpoints.
type SettingsHandler struct {
	archiveService *services.ArchiveService
}

func NewSettingsHandler(archiveService *services.ArchiveService) *SettingsHandler {
	return &SettingsHandler{archiveService: archiveService}
}

// SettingsRouter registers settings routes. The role gate lives in the
// service layer so every caller sees the same decisions.
func SettingsRouter(r chi.Router, archiveService *services.ArchiveService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewSettingsHandler(archiveService)

	r.Use(authMiddleware)
	r.Post("/archive", handler.Archive)
}

// ArchiveResponse names the object written by a snapshot.
type ArchiveResponse struct {
	Key string `json:"key"`
}

func (h *SettingsHandler) Archive(w http.ResponseWriter, r *http.Request) {
	viewer, err := viewerFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	key, err := h.archiveService.Snapshot(r.Context(), viewer)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ArchiveResponse{Key: key})
}
