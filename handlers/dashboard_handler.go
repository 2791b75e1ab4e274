package handlers

import (
	"log/slog"
	"net/http"

	"github.com/medcamp/camp-system/middleware"
	"github.com/medcamp/camp-system/services"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
	logger           *slog.Logger
}

func NewDashboardHandler(dashboardService services.DashboardService, logger *slog.Logger) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// OrganizerStats обрабатывает GET /organizer-stats
func (h *DashboardHandler) OrganizerStats(w http.ResponseWriter, r *http.Request) {
	email, err := middleware.GetUserEmailFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	stats, err := h.dashboardService.OrganizerStats(r.Context(), email)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"stats": stats}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ParticipantAnalytics обрабатывает GET /participant-analytics
func (h *DashboardHandler) ParticipantAnalytics(w http.ResponseWriter, r *http.Request) {
	email, err := middleware.GetUserEmailFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	analytics, err := h.dashboardService.ParticipantAnalytics(r.Context(), email)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"analytics": analytics}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}
