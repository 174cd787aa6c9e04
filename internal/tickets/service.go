// Package tickets implements the seat allocator: booking, cancellation,
// the derived availability view and QR check-in.
package tickets

import (
	"context"
	"fmt"
	"time"

	"eventx/internal/apperr"
	"eventx/internal/logger"
	"eventx/internal/models"
	"eventx/internal/qr"
	"eventx/internal/seatmap"
	"eventx/internal/utils"
)

type DBLayer interface {
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	GetTicketByID(ctx context.Context, id string) (*models.Ticket, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetTicketsByUser(ctx context.Context, userID string) ([]models.Ticket, error)
	GetBookedSeatNumbers(ctx context.Context, eventID string) ([]string, error)
	BookSeat(ctx context.Context, ticket *models.Ticket) error
	CancelTicket(ctx context.Context, ticketID, userID string, isAdmin bool) (*models.Ticket, error)
	MarkUsed(ctx context.Context, ticketID, checkedInBy, location string) (*models.Ticket, error)
	GetEventTicketStats(ctx context.Context, eventID string) ([]models.StatusCount, error)
}

// SeatMapCache holds the derived availability view between bookings.
type SeatMapCache interface {
	Get(ctx context.Context, eventID string) (*models.AvailabilityView, error)
	Set(ctx context.Context, view *models.AvailabilityView) error
	Invalidate(ctx context.Context, eventID string) error
}

type Publisher interface {
	PublishTicketBooked(ticket models.Ticket) error
	PublishTicketCancelled(ticket models.Ticket) error
	PublishTicketValidated(ticket models.Ticket) error
}

type TicketService struct {
	DB     DBLayer
	Cache  SeatMapCache
	Kafka  Publisher
	Logger *logger.Logger
}

func NewTicketService(db DBLayer, cache SeatMapCache, kafka Publisher, log *logger.Logger) *TicketService {
	return &TicketService{DB: db, Cache: cache, Kafka: kafka, Logger: log}
}

// Book reserves one seat for a user. The storage layer commits the ticket
// insert, the seat flip and the counter decrement together; of two
// concurrent attempts on the same seat exactly one succeeds.
func (s *TicketService) Book(ctx context.Context, userID string, req models.BookingRequest) (*models.Ticket, error) {
	if req.EventID == "" || req.SeatNumber == "" {
		return nil, apperr.BadRequest("eventId and seatNumber are required")
	}
	method := req.PaymentMethod
	if method == "" {
		method = "qr_code"
	}
	if !models.ValidPaymentMethod(method) {
		return nil, apperr.BadRequest("Invalid payment method")
	}

	now := time.Now()
	payload := qr.TicketPayload(req.EventID, userID, req.SeatNumber)
	png, err := qr.Encode(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR: %w", err)
	}

	ticket := &models.Ticket{
		ID:           utils.NewID(),
		EventID:      req.EventID,
		UserID:       userID,
		SeatNumber:   req.SeatNumber,
		SeatRow:      req.SeatRow,
		SeatColumn:   req.SeatColumn,
		Status:       models.TicketActive,
		QRCode:       png,
		QRCodeData:   payload,
		PurchaseDate: now,
		CreatedAt:    now,
		Payment: models.Payment{
			Method:        method,
			TransactionID: utils.GenerateTransactionID(),
			Currency:      "LKR",
			Status:        models.PaymentCompleted,
			PaidAt:        now,
		},
	}

	if err := s.DB.BookSeat(ctx, ticket); err != nil {
		return nil, err
	}

	s.Logger.LogBooking("BOOK", ticket.ID, fmt.Sprintf("seat %s on event %s", ticket.SeatNumber, ticket.EventID))

	if err := s.Cache.Invalidate(ctx, ticket.EventID); err != nil {
		s.Logger.Warn("CACHE", fmt.Sprintf("failed to invalidate seat map for event %s: %v", ticket.EventID, err))
	}
	if err := s.Kafka.PublishTicketBooked(*ticket); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish ticket booked: %v", err))
	}

	return ticket, nil
}

// Cancel releases a booked seat. Only the owner or an administrator may
// cancel; an already-cancelled ticket is rejected.
func (s *TicketService) Cancel(ctx context.Context, userID string, isAdmin bool, ticketID string) error {
	ticket, err := s.DB.CancelTicket(ctx, ticketID, userID, isAdmin)
	if err != nil {
		return err
	}

	s.Logger.LogBooking("CANCEL", ticket.ID, fmt.Sprintf("seat %s released on event %s", ticket.SeatNumber, ticket.EventID))

	if err := s.Cache.Invalidate(ctx, ticket.EventID); err != nil {
		s.Logger.Warn("CACHE", fmt.Sprintf("failed to invalidate seat map for event %s: %v", ticket.EventID, err))
	}
	if err := s.Kafka.PublishTicketCancelled(*ticket); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish ticket cancelled: %v", err))
	}
	return nil
}

// AvailableSeats computes the derived seat map: the full generated grid
// with every seat held by a non-cancelled ticket marked booked. The view
// is served from cache when warm.
func (s *TicketService) AvailableSeats(ctx context.Context, eventID string) (*models.AvailabilityView, error) {
	if view, err := s.Cache.Get(ctx, eventID); err == nil && view != nil {
		return view, nil
	}

	event, err := s.DB.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	bookedSeatNumbers, err := s.DB.GetBookedSeatNumbers(ctx, eventID)
	if err != nil {
		return nil, err
	}
	booked := make(map[string]bool, len(bookedSeatNumbers))
	for _, n := range bookedSeatNumbers {
		booked[n] = true
	}

	grid := seatmap.Generate(eventID, event.TotalSeats, event.Price)
	available := make([]string, 0, len(grid.Seats))
	for i := range grid.Seats {
		if booked[grid.Seats[i].SeatNumber] {
			grid.Seats[i].Status = models.SeatBooked
		} else {
			available = append(available, grid.Seats[i].SeatNumber)
		}
	}

	view := &models.AvailabilityView{
		EventID:              eventID,
		TotalSeats:           event.TotalSeats,
		AvailableSeats:       len(available),
		BookedSeats:          len(bookedSeatNumbers),
		SeatMap:              grid,
		AvailableSeatNumbers: available,
	}

	if err := s.Cache.Set(ctx, view); err != nil {
		s.Logger.Warn("CACHE", fmt.Sprintf("failed to cache seat map for event %s: %v", eventID, err))
	}
	return view, nil
}

// Validate checks a ticket in. The QR payload must match, the ticket must
// be active and the event must have started; the active→used transition
// happens at most once.
func (s *TicketService) Validate(ctx context.Context, checkerID, ticketID string, req models.ValidateRequest) (*models.TicketSummary, error) {
	ticket, err := s.DB.GetTicketByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	if req.QRCode == "" || ticket.QRCodeData != req.QRCode {
		return nil, apperr.BadRequest("Invalid QR code")
	}
	if ticket.Status != models.TicketActive {
		return nil, apperr.Conflict("Ticket is not active")
	}

	event, err := s.DB.GetEventByID(ctx, ticket.EventID)
	if err != nil {
		return nil, err
	}
	if time.Now().Before(event.Date) {
		return nil, apperr.BadRequest("Event has not started yet")
	}

	location := req.Location
	if location == "" {
		location = "Main Entrance"
	}

	updated, err := s.DB.MarkUsed(ctx, ticketID, checkerID, location)
	if err != nil {
		return nil, err
	}

	s.Logger.LogBooking("CHECKIN", updated.ID, fmt.Sprintf("seat %s at %s", updated.SeatNumber, location))
	if err := s.Kafka.PublishTicketValidated(*updated); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish ticket validated: %v", err))
	}

	attendee := ""
	if user, err := s.DB.GetUserByID(ctx, updated.UserID); err == nil {
		attendee = user.Name
	}

	return &models.TicketSummary{
		ID:          updated.ID,
		Event:       event.Title,
		Date:        event.Date,
		Time:        fmt.Sprintf("%s - %s", event.StartTime, event.EndTime),
		Venue:       event.VenueName,
		SeatNumber:  updated.SeatNumber,
		Attendee:    attendee,
		CheckInTime: updated.CheckIn.CheckedInAt,
		Location:    updated.CheckIn.Location,
	}, nil
}

// GetTicket returns one ticket; non-admins may only view their own.
func (s *TicketService) GetTicket(ctx context.Context, userID string, isAdmin bool, ticketID string) (*models.Ticket, error) {
	ticket, err := s.DB.GetTicketByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && ticket.UserID != userID {
		return nil, apperr.Forbidden("Not authorized to view this ticket")
	}
	return ticket, nil
}

// MyTickets returns the caller's tickets, newest first.
func (s *TicketService) MyTickets(ctx context.Context, userID string) ([]models.Ticket, error) {
	return s.DB.GetTicketsByUser(ctx, userID)
}

// EventStats aggregates per-status counts and revenue for one event.
func (s *TicketService) EventStats(ctx context.Context, eventID string) (*models.EventTicketStats, error) {
	breakdown, err := s.DB.GetEventTicketStats(ctx, eventID)
	if err != nil {
		return nil, err
	}

	stats := &models.EventTicketStats{EventID: eventID, Breakdown: breakdown}
	for _, b := range breakdown {
		stats.TotalTickets += b.Count
		stats.TotalRevenue += b.Revenue
		switch b.Status {
		case models.TicketActive:
			stats.Summary.Active = b.Count
		case models.TicketUsed:
			stats.Summary.Used = b.Count
		case models.TicketCancelled:
			stats.Summary.Cancelled = b.Count
		}
	}
	return stats, nil
}
