package ticket_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventx/internal/apperr"
	"eventx/internal/auth"
	"eventx/internal/logger"
	"eventx/internal/models"
	"eventx/internal/tickets"
	"eventx/internal/utils"
)

type Handler struct {
	TicketService *tickets.TicketService
	Logger        *logger.Logger
}

func NewHandler(ticketService *tickets.TicketService, log *logger.Logger) *Handler {
	return &Handler{TicketService: ticketService, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.BookTicket)
	r.Get("/my-tickets", h.MyTickets)
	r.Get("/available-seats/{eventId}", h.AvailableSeats)
	r.Get("/event/{eventId}/stats", h.EventStats)
	r.Get("/{ticketId}", h.GetTicket)
	r.Put("/{ticketId}/cancel", h.CancelTicket)
	r.Post("/{ticketId}/validate", h.ValidateTicket)
}

func (h *Handler) BookTicket(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req models.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("BookTicket: failed to decode body: %v", err))
		utils.WriteError(w, apperr.BadRequest("Invalid request body"))
		return
	}
	h.Logger.Info("API", fmt.Sprintf("BookTicket: user=%s event=%s seat=%s", userID, req.EventID, req.SeatNumber))

	ticket, err := h.TicketService.Book(r.Context(), userID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("BookTicket: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Ticket booked successfully", ticket))
}

func (h *Handler) CancelTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketId")
	userID := auth.UserID(r.Context())
	h.Logger.Info("API", fmt.Sprintf("CancelTicket: ticketId=%s user=%s", ticketID, userID))

	if err := h.TicketService.Cancel(r.Context(), userID, auth.IsAdmin(r.Context()), ticketID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CancelTicket: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Ticket cancelled successfully", nil))
}

func (h *Handler) AvailableSeats(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	h.Logger.Info("API", fmt.Sprintf("AvailableSeats: eventId=%s", eventID))

	view, err := h.TicketService.AvailableSeats(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("AvailableSeats: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Seat availability retrieved", view))
}

func (h *Handler) ValidateTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketId")
	checkerID := auth.UserID(r.Context())

	var req models.ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("ValidateTicket: failed to decode body: %v", err))
		utils.WriteError(w, apperr.BadRequest("Invalid request body"))
		return
	}
	h.Logger.Info("API", fmt.Sprintf("ValidateTicket: ticketId=%s checker=%s", ticketID, checkerID))

	summary, err := h.TicketService.Validate(r.Context(), checkerID, ticketID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ValidateTicket: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Ticket validated successfully", summary))
}

func (h *Handler) MyTickets(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	h.Logger.Info("API", fmt.Sprintf("MyTickets: user=%s", userID))

	list, err := h.TicketService.MyTickets(r.Context(), userID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("MyTickets: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Tickets retrieved", list))
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketId")
	userID := auth.UserID(r.Context())

	ticket, err := h.TicketService.GetTicket(r.Context(), userID, auth.IsAdmin(r.Context()), ticketID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetTicket: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Ticket retrieved", ticket))
}

func (h *Handler) EventStats(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	h.Logger.Info("API", fmt.Sprintf("EventStats: eventId=%s", eventID))

	stats, err := h.TicketService.EventStats(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("EventStats: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Ticket stats retrieved", stats))
}
