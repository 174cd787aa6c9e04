package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"eventx/internal/analytics"
	"eventx/internal/logger"
	"eventx/internal/utils"
)

type Handler struct {
	Service *analytics.Service
	Logger  *logger.Logger
}

func NewHandler(service *analytics.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

// RegisterAnalyticsRoutes mounts the reporting endpoints, admin-only.
func (h *Handler) RegisterAnalyticsRoutes(r chi.Router) {
	r.Get("/summary", h.Summary)
	r.Get("/monthly-payments", h.MonthlyPayments)
	r.Get("/event-performance", h.EventPerformance)
	r.Get("/user-engagement", h.UserEngagement)
}

// RegisterAdminRoutes mounts the dashboard endpoints, admin-only.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/dashboard-stats", h.DashboardStats)
	r.Get("/net-sales", h.NetSales)
	r.Get("/export-events", h.ExportEvents)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.GetSummary(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("AnalyticsSummary: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Summary retrieved", summary))
}

func (h *Handler) MonthlyPayments(w http.ResponseWriter, r *http.Request) {
	from, to := dateRange(r)

	monthly, err := h.Service.GetMonthlyPayments(r.Context(), from, to)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("MonthlyPayments: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Monthly payments retrieved", monthly))
}

func (h *Handler) EventPerformance(w http.ResponseWriter, r *http.Request) {
	perf, err := h.Service.GetEventPerformance(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("EventPerformance: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event performance retrieved", perf))
}

func (h *Handler) UserEngagement(w http.ResponseWriter, r *http.Request) {
	engagement, err := h.Service.GetUserEngagement(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UserEngagement: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("User engagement retrieved", engagement))
}

func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.GetDashboardStats(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("DashboardStats: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Dashboard stats retrieved", stats))
}

func (h *Handler) NetSales(w http.ResponseWriter, r *http.Request) {
	from, to := dateRange(r)

	net, err := h.Service.GetNetSales(r.Context(), from, to)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("NetSales: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Net sales retrieved", net))
}

func (h *Handler) ExportEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="events.csv"`)

	if err := h.Service.ExportEventsCSV(r.Context(), w); err != nil {
		h.Logger.Error("API", fmt.Sprintf("ExportEvents: %v", err))
	}
}

func dateRange(r *http.Request) (from, to time.Time) {
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		from, _ = time.Parse("2006-01-02", v)
	}
	if v := q.Get("to"); v != "" {
		if parsed, err := time.Parse("2006-01-02", v); err == nil {
			// Include the whole end day.
			to = parsed.Add(24*time.Hour - time.Nanosecond)
		}
	}
	return from, to
}
