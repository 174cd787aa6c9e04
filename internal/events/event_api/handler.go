package event_api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"eventx/internal/apperr"
	"eventx/internal/auth"
	"eventx/internal/events"
	"eventx/internal/events/db"
	"eventx/internal/logger"
	"eventx/internal/models"
	"eventx/internal/utils"
)

// TicketStats lets the event detail view embed the per-status ticket
// breakdown without depending on the allocator package directly.
type TicketStats interface {
	EventStats(ctx context.Context, eventID string) (*models.EventTicketStats, error)
}

type Handler struct {
	EventService *events.EventService
	Stats        TicketStats
	Logger       *logger.Logger
}

func NewHandler(eventService *events.EventService, stats TicketStats, log *logger.Logger) *Handler {
	return &Handler{EventService: eventService, Stats: stats, Logger: log}
}

// RegisterPublicRoutes mounts the browse endpoints, served without auth.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/", h.ListEvents)
	r.Get("/search", h.SearchEvents)
	r.Get("/category/{category}", h.EventsByCategory)
	r.Get("/{eventId}", h.GetEvent)
}

// RegisterAdminRoutes mounts the management endpoints.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/", h.CreateEvent)
	r.Get("/kanban", h.Kanban)
	r.Put("/{eventId}", h.UpdateEvent)
	r.Patch("/{eventId}/status", h.UpdateStatus)
	r.Delete("/{eventId}", h.DeleteEvent)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req events.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateEvent: failed to decode body: %v", err))
		utils.WriteError(w, apperr.BadRequest("Invalid request body"))
		return
	}
	organizerID := auth.UserID(r.Context())
	h.Logger.Info("API", fmt.Sprintf("CreateEvent: organizer=%s title=%q", organizerID, req.Title))

	event, err := h.EventService.Create(r.Context(), organizerID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateEvent: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Event created successfully", event))
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	var req events.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateEvent: failed to decode body: %v", err))
		utils.WriteError(w, apperr.BadRequest("Invalid request body"))
		return
	}
	h.Logger.Info("API", fmt.Sprintf("UpdateEvent: eventId=%s", eventID))

	event, err := h.EventService.Update(r.Context(), eventID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateEvent: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event updated successfully", event))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, apperr.BadRequest("Invalid request body"))
		return
	}
	h.Logger.Info("API", fmt.Sprintf("UpdateStatus: eventId=%s status=%s", eventID, req.Status))

	event, err := h.EventService.UpdateStatus(r.Context(), eventID, req.Status)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateStatus: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event status updated", event))
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	h.Logger.Info("API", fmt.Sprintf("DeleteEvent: eventId=%s", eventID))

	if err := h.EventService.Delete(r.Context(), eventID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteEvent: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event deleted successfully", nil))
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	event, err := h.EventService.Get(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetEvent: %v", err))
		utils.WriteError(w, err)
		return
	}

	detail := struct {
		*models.Event
		TicketStats *models.EventTicketStats `json:"ticketStats,omitempty"`
	}{Event: event}

	if stats, err := h.Stats.EventStats(r.Context(), eventID); err == nil {
		detail.TicketStats = stats
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event retrieved", detail))
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)

	page, err := h.EventService.List(r.Context(), filter)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListEvents: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Events retrieved", page))
}

func (h *Handler) SearchEvents(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)
	filter.Search = r.URL.Query().Get("q")
	if filter.Search == "" {
		utils.WriteError(w, apperr.BadRequest("q is required"))
		return
	}

	page, err := h.EventService.List(r.Context(), filter)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("SearchEvents: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Events retrieved", page))
}

func (h *Handler) EventsByCategory(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)
	filter.Category = chi.URLParam(r, "category")

	page, err := h.EventService.List(r.Context(), filter)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("EventsByCategory: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Events retrieved", page))
}

func (h *Handler) Kanban(w http.ResponseWriter, r *http.Request) {
	board, err := h.EventService.Kanban(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Kanban: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Kanban board retrieved", board))
}

func filterFromQuery(r *http.Request) db.ListFilter {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("perPage"))
	return db.ListFilter{
		Status:   q.Get("status"),
		Category: q.Get("category"),
		Search:   q.Get("search"),
		SortBy:   q.Get("sortBy"),
		SortDir:  q.Get("sortDir"),
		Page:     page,
		PerPage:  perPage,
	}
}
