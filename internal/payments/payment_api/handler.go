package payment_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventx/internal/apperr"
	"eventx/internal/auth"
	"eventx/internal/logger"
	"eventx/internal/payments"
	"eventx/internal/utils"
)

type Handler struct {
	PaymentService *payments.PaymentService
	Logger         *logger.Logger
}

func NewHandler(paymentService *payments.PaymentService, log *logger.Logger) *Handler {
	return &Handler{PaymentService: paymentService, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/process", h.Process)
	r.Get("/history", h.History)
	r.Get("/ticket/{ticketId}", h.TicketPayment)
}

func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req payments.ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, apperr.BadRequest("Invalid request body"))
		return
	}
	h.Logger.Info("API", fmt.Sprintf("ProcessPayment: user=%s event=%s seat=%s", userID, req.EventID, req.SeatNumber))

	result, err := h.PaymentService.Process(r.Context(), userID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ProcessPayment: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Payment processed successfully", result))
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.PaymentService.History(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("PaymentHistory: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Payment history retrieved", entries))
}

func (h *Handler) TicketPayment(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketId")

	entry, err := h.PaymentService.TicketPayment(r.Context(), auth.UserID(r.Context()), auth.IsAdmin(r.Context()), ticketID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("TicketPayment: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Payment retrieved", entry))
}
