package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/tjgf2022/logkeeper-roles-hub/internal/policy"
	"github.com/tjgf2022/logkeeper-roles-hub/internal/services"
	"github.com/tjgf2022/logkeeper-roles-hub/types"
)

// WorkLogHandler provides the work-log CRUD endpoints.
type WorkLogHandler struct {
	logService *services.WorkLogService
}

func NewWorkLogHandler(logService *services.WorkLogService) *WorkLogHandler {
	return &WorkLogHandler{logService: logService}
}

// WorkLogRouter registers work-log routes. Every route requires an
// authenticated viewer; visibility is decided per request.
func WorkLogRouter(r chi.Router, logService *services.WorkLogService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewWorkLogHandler(logService)

	r.Use(authMiddleware)
	r.Get("/", handler.ListLogs)
	r.Post("/", handler.CreateLog)
	r.Route("/{logID}", func(r chi.Router) {
		r.Get("/", handler.GetLog)
		r.Put("/", handler.UpdateLog)
		r.Delete("/", handler.DeleteLog)
	})
}

// WorkLogListResponse is the filtered list payload.
type WorkLogListResponse struct {
	Items []types.WorkLog `json:"items"`
	Total int             `json:"total"`
}

type WorkLogUpsertRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Status   string   `json:"status"`
	Priority string   `json:"priority"`
	Tags     []string `json:"tags"`
}

func (req WorkLogUpsertRequest) draft() services.LogDraft {
	return services.LogDraft{
		Title:    req.Title,
		Content:  req.Content,
		Status:   types.LogStatus(strings.TrimSpace(req.Status)),
		Priority: types.LogPriority(strings.TrimSpace(req.Priority)),
		Tags:     req.Tags,
	}
}

func (h *WorkLogHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	viewer, err := viewerFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	query := r.URL.Query()
	criteria := policy.LogCriteria{
		Query:    strings.TrimSpace(query.Get("q")),
		Status:   strings.TrimSpace(query.Get("status")),
		Priority: strings.TrimSpace(query.Get("priority")),
	}

	items, err := h.logService.List(r.Context(), viewer, criteria)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, WorkLogListResponse{Items: items, Total: len(items)})
}

func (h *WorkLogHandler) GetLog(w http.ResponseWriter, r *http.Request) {
	viewer, err := viewerFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(r, "logID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	log, err := h.logService.Get(r.Context(), viewer, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, log)
}

func (h *WorkLogHandler) CreateLog(w http.ResponseWriter, r *http.Request) {
	viewer, err := viewerFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req WorkLogUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	created, err := h.logService.Create(r.Context(), viewer, req.draft())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *WorkLogHandler) UpdateLog(w http.ResponseWriter, r *http.Request) {
	viewer, err := viewerFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(r, "logID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req WorkLogUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	updated, err := h.logService.Update(r.Context(), viewer, id, req.draft())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *WorkLogHandler) DeleteLog(w http.ResponseWriter, r *http.Request) {
	viewer, err := viewerFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(r, "logID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.logService.Delete(r.Context(), viewer, id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
