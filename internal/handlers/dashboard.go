package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tjgf2022/logkeeper-roles-hub/internal/policy"
	"github.com/tjgf2022/logkeeper-roles-hub/internal/services"
)

// DashboardHandler serves the summary and navigation endpoints.
type DashboardHandler struct {
	summaryService *services.SummaryService
}

func NewDashboardHandler(summaryService *services.SummaryService) *DashboardHandler {
	return &DashboardHandler{summaryService: summaryService}
}

// DashboardRouter registers the dashboard summary route.
func DashboardRouter(r chi.Router, summaryService *services.SummaryService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewDashboardHandler(summaryService)

	r.Use(authMiddleware)
	r.Get("/summary", handler.Summary)
}

func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	viewer, err := viewerFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	summary, err := h.summaryService.Summarize(r.Context(), viewer)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Navigation returns the destinations the viewer's role may reach,
// in sidebar order.
func Navigation(w http.ResponseWriter, r *http.Request) {
	viewer, err := viewerFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Items []policy.Destination `json:"items"`
	}{Items: policy.Navigation(viewer.Role)})
}
