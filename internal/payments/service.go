// Package payments simulates a card processor in front of the seat
// allocator. No money moves; a weighted coin decides whether a charge
// clears, and a declined charge never creates a ticket.
package payments

import (
	"context"
	"fmt"
	"math/rand"

	"eventx/internal/apperr"
	"eventx/internal/logger"
	"eventx/internal/models"
	"eventx/internal/utils"
)

// Allocator is the slice of the ticket service the processor drives.
type Allocator interface {
	Book(ctx context.Context, userID string, req models.BookingRequest) (*models.Ticket, error)
	MyTickets(ctx context.Context, userID string) ([]models.Ticket, error)
	GetTicket(ctx context.Context, userID string, isAdmin bool, ticketID string) (*models.Ticket, error)
}

// RNG supplies the charge outcome. Injected so tests are deterministic.
type RNG interface {
	Float64() float64
}

type ProcessRequest struct {
	EventID       string `json:"eventId"`
	SeatNumber    string `json:"seatNumber"`
	SeatRow       string `json:"seatRow,omitempty"`
	SeatColumn    int    `json:"seatColumn,omitempty"`
	PaymentMethod string `json:"paymentMethod"`
}

// ProcessResult wraps the booked ticket with the charge identifiers.
type ProcessResult struct {
	PaymentID string         `json:"paymentId"`
	Ticket    *models.Ticket `json:"ticket"`
}

// HistoryEntry is one row of a user's payment history.
type HistoryEntry struct {
	TicketID   string         `json:"ticketId"`
	EventID    string         `json:"eventId"`
	SeatNumber string         `json:"seatNumber"`
	Payment    models.Payment `json:"payment"`
}

type PaymentService struct {
	Allocator   Allocator
	RNG         RNG
	SuccessRate float64
	Logger      *logger.Logger
}

func NewPaymentService(allocator Allocator, rng RNG, successRate float64, log *logger.Logger) *PaymentService {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &PaymentService{Allocator: allocator, RNG: rng, SuccessRate: successRate, Logger: log}
}

// Process charges the simulated card and books the seat when the charge
// clears. A decline leaves no trace: no ticket, no counter change.
func (s *PaymentService) Process(ctx context.Context, userID string, req ProcessRequest) (*ProcessResult, error) {
	if req.PaymentMethod == "" {
		return nil, apperr.BadRequest("paymentMethod is required")
	}
	if !models.ValidPaymentMethod(req.PaymentMethod) {
		return nil, apperr.BadRequest("Invalid payment method")
	}

	paymentID := utils.GeneratePaymentID()
	if s.RNG.Float64() >= s.SuccessRate {
		s.Logger.Warn("PAYMENT", fmt.Sprintf("charge %s declined for user %s", paymentID, userID))
		return nil, apperr.BadRequest("payment declined")
	}

	ticket, err := s.Allocator.Book(ctx, userID, models.BookingRequest{
		EventID:       req.EventID,
		SeatNumber:    req.SeatNumber,
		SeatRow:       req.SeatRow,
		SeatColumn:    req.SeatColumn,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("PAYMENT", fmt.Sprintf("charge %s cleared, ticket %s issued", paymentID, ticket.ID))
	return &ProcessResult{PaymentID: paymentID, Ticket: ticket}, nil
}

// History lists the caller's charges, derived from their tickets.
func (s *PaymentService) History(ctx context.Context, userID string) ([]HistoryEntry, error) {
	tickets, err := s.Allocator.MyTickets(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries := make([]HistoryEntry, 0, len(tickets))
	for _, t := range tickets {
		entries = append(entries, HistoryEntry{
			TicketID:   t.ID,
			EventID:    t.EventID,
			SeatNumber: t.SeatNumber,
			Payment:    t.Payment,
		})
	}
	return entries, nil
}

// TicketPayment returns the payment detail of one ticket, owner or admin.
func (s *PaymentService) TicketPayment(ctx context.Context, userID string, isAdmin bool, ticketID string) (*HistoryEntry, error) {
	ticket, err := s.Allocator.GetTicket(ctx, userID, isAdmin, ticketID)
	if err != nil {
		return nil, err
	}
	return &HistoryEntry{
		TicketID:   ticket.ID,
		EventID:    ticket.EventID,
		SeatNumber: ticket.SeatNumber,
		Payment:    ticket.Payment,
	}, nil
}
