package tickets_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventx/internal/apperr"
	"eventx/internal/logger"
	"eventx/internal/models"
	"eventx/internal/seatmap"
	"eventx/internal/tickets"
)

// MockDB is a map-backed implementation of the tickets.DBLayer interface.
type MockDB struct {
	events  map[string]*models.Event
	tickets map[string]*models.Ticket
	users   map[string]*models.User
}

func NewMockDB() *MockDB {
	return &MockDB{
		events:  make(map[string]*models.Event),
		tickets: make(map[string]*models.Ticket),
		users:   make(map[string]*models.User),
	}
}

func (m *MockDB) GetEventByID(_ context.Context, id string) (*models.Event, error) {
	event, ok := m.events[id]
	if !ok {
		return nil, apperr.NotFound("Event not found")
	}
	cp := *event
	return &cp, nil
}

func (m *MockDB) GetTicketByID(_ context.Context, id string) (*models.Ticket, error) {
	ticket, ok := m.tickets[id]
	if !ok {
		return nil, apperr.NotFound("Ticket not found")
	}
	cp := *ticket
	return &cp, nil
}

func (m *MockDB) GetUserByID(_ context.Context, id string) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	cp := *user
	return &cp, nil
}

func (m *MockDB) GetTicketsByUser(_ context.Context, userID string) ([]models.Ticket, error) {
	var out []models.Ticket
	for _, t := range m.tickets {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *MockDB) GetBookedSeatNumbers(_ context.Context, eventID string) ([]string, error) {
	var out []string
	for _, t := range m.tickets {
		if t.EventID == eventID && t.Status != models.TicketCancelled {
			out = append(out, t.SeatNumber)
		}
	}
	return out, nil
}

func (m *MockDB) BookSeat(_ context.Context, ticket *models.Ticket) error {
	event, ok := m.events[ticket.EventID]
	if !ok {
		return apperr.NotFound("Event not found")
	}
	if event.AvailableSeats < 1 {
		return apperr.Conflict("No available seats")
	}
	for _, t := range m.tickets {
		if t.EventID == ticket.EventID && t.SeatNumber == ticket.SeatNumber && t.Status != models.TicketCancelled {
			return apperr.Conflict("Seat already taken")
		}
	}
	event.AvailableSeats--
	ticket.Price = event.Price
	ticket.OriginalPrice = event.Price
	ticket.Payment.Amount = event.Price
	cp := *ticket
	m.tickets[ticket.ID] = &cp
	return nil
}

func (m *MockDB) CancelTicket(_ context.Context, ticketID, userID string, isAdmin bool) (*models.Ticket, error) {
	ticket, ok := m.tickets[ticketID]
	if !ok {
		return nil, apperr.NotFound("Ticket not found")
	}
	if !isAdmin && ticket.UserID != userID {
		return nil, apperr.Forbidden("Not authorized to cancel this ticket")
	}
	if ticket.Status == models.TicketCancelled {
		return nil, apperr.Conflict("Ticket already cancelled")
	}
	ticket.Status = models.TicketCancelled
	if event, ok := m.events[ticket.EventID]; ok && event.AvailableSeats < event.TotalSeats {
		event.AvailableSeats++
	}
	cp := *ticket
	return &cp, nil
}

func (m *MockDB) MarkUsed(_ context.Context, ticketID, checkedInBy, location string) (*models.Ticket, error) {
	ticket, ok := m.tickets[ticketID]
	if !ok {
		return nil, apperr.NotFound("Ticket not found")
	}
	if ticket.Status != models.TicketActive {
		return nil, apperr.Conflict("Ticket is not active")
	}
	ticket.Status = models.TicketUsed
	ticket.CheckIn = models.CheckIn{
		CheckedIn:   true,
		CheckedInAt: time.Now(),
		CheckedInBy: checkedInBy,
		Location:    location,
	}
	cp := *ticket
	return &cp, nil
}

func (m *MockDB) GetEventTicketStats(_ context.Context, eventID string) ([]models.StatusCount, error) {
	counts := make(map[string]*models.StatusCount)
	for _, t := range m.tickets {
		if t.EventID != eventID {
			continue
		}
		sc, ok := counts[t.Status]
		if !ok {
			sc = &models.StatusCount{Status: t.Status}
			counts[t.Status] = sc
		}
		sc.Count++
		sc.Revenue += t.Price
	}
	var out []models.StatusCount
	for _, sc := range counts {
		out = append(out, *sc)
	}
	return out, nil
}

// MockCache drops everything so every read recomputes the view.
type MockCache struct {
	invalidated []string
}

func (m *MockCache) Get(_ context.Context, _ string) (*models.AvailabilityView, error) {
	return nil, nil
}
func (m *MockCache) Set(_ context.Context, _ *models.AvailabilityView) error { return nil }
func (m *MockCache) Invalidate(_ context.Context, eventID string) error {
	m.invalidated = append(m.invalidated, eventID)
	return nil
}

type MockPublisher struct {
	booked    []models.Ticket
	cancelled []models.Ticket
	validated []models.Ticket
}

func (m *MockPublisher) PublishTicketBooked(t models.Ticket) error {
	m.booked = append(m.booked, t)
	return nil
}
func (m *MockPublisher) PublishTicketCancelled(t models.Ticket) error {
	m.cancelled = append(m.cancelled, t)
	return nil
}
func (m *MockPublisher) PublishTicketValidated(t models.Ticket) error {
	m.validated = append(m.validated, t)
	return nil
}

func newTestService(db *MockDB) (*tickets.TicketService, *MockCache, *MockPublisher) {
	cache := &MockCache{}
	publisher := &MockPublisher{}
	svc := tickets.NewTicketService(db, cache, publisher, logger.NewLogger())
	return svc, cache, publisher
}

func seedEvent(db *MockDB, totalSeats int) *models.Event {
	rows, cols := seatmap.Dimensions(totalSeats)
	event := &models.Event{
		ID:             "event1",
		Title:          "Colombo Jazz Night",
		Date:           time.Now().Add(-time.Hour),
		StartTime:      "19:00",
		EndTime:        "23:00",
		VenueName:      "Nelum Pokuna",
		Price:          2500,
		TotalSeats:     totalSeats,
		AvailableSeats: totalSeats,
		SeatRows:       rows,
		SeatColumns:    cols,
		Status:         models.EventActive,
	}
	db.events[event.ID] = event
	return event
}

func TestBookTicket(t *testing.T) {
	db := NewMockDB()
	seedEvent(db, 10)
	svc, cache, publisher := newTestService(db)

	ticket, err := svc.Book(context.Background(), "user1", models.BookingRequest{
		EventID:    "event1",
		SeatNumber: "A001",
	})
	require.NoError(t, err)

	assert.Equal(t, models.TicketActive, ticket.Status)
	assert.Equal(t, "A001", ticket.SeatNumber)
	assert.Equal(t, 2500.0, ticket.Price)
	assert.Equal(t, models.PaymentCompleted, ticket.Payment.Status)
	assert.NotEmpty(t, ticket.QRCode)
	assert.NotEmpty(t, ticket.QRCodeData)
	assert.Equal(t, 9, db.events["event1"].AvailableSeats)
	assert.Equal(t, []string{"event1"}, cache.invalidated)
	assert.Len(t, publisher.booked, 1)
}

func TestBookTicketEventNotFound(t *testing.T) {
	svc, _, _ := newTestService(NewMockDB())

	_, err := svc.Book(context.Background(), "user1", models.BookingRequest{
		EventID:    "missing",
		SeatNumber: "A001",
	})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestBookTicketSeatTaken(t *testing.T) {
	db := NewMockDB()
	seedEvent(db, 10)
	svc, _, _ := newTestService(db)

	_, err := svc.Book(context.Background(), "user1", models.BookingRequest{EventID: "event1", SeatNumber: "A001"})
	require.NoError(t, err)

	_, err = svc.Book(context.Background(), "user2", models.BookingRequest{EventID: "event1", SeatNumber: "A001"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestBookTicketSoldOut(t *testing.T) {
	db := NewMockDB()
	seedEvent(db, 1)
	svc, _, _ := newTestService(db)

	_, err := svc.Book(context.Background(), "user1", models.BookingRequest{EventID: "event1", SeatNumber: "A001"})
	require.NoError(t, err)

	_, err = svc.Book(context.Background(), "user2", models.BookingRequest{EventID: "event1", SeatNumber: "A002"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestBookTicketInvalidPaymentMethod(t *testing.T) {
	db := NewMockDB()
	seedEvent(db, 10)
	svc, _, _ := newTestService(db)

	_, err := svc.Book(context.Background(), "user1", models.BookingRequest{
		EventID:       "event1",
		SeatNumber:    "A001",
		PaymentMethod: "cheque",
	})
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
}

func TestCancelThenRebook(t *testing.T) {
	db := NewMockDB()
	seedEvent(db, 10)
	svc, _, publisher := newTestService(db)

	ticket, err := svc.Book(context.Background(), "user1", models.BookingRequest{EventID: "event1", SeatNumber: "B002"})
	require.NoError(t, err)
	assert.Equal(t, 9, db.events["event1"].AvailableSeats)

	require.NoError(t, svc.Cancel(context.Background(), "user1", false, ticket.ID))
	assert.Equal(t, 10, db.events["event1"].AvailableSeats)
	assert.Len(t, publisher.cancelled, 1)

	// The released seat is bookable again by someone else.
	_, err = svc.Book(context.Background(), "user2", models.BookingRequest{EventID: "event1", SeatNumber: "B002"})
	require.NoError(t, err)
	assert.Equal(t, 9, db.events["event1"].AvailableSeats)
}

func TestCancelTwice(t *testing.T) {
	db := NewMockDB()
	seedEvent(db, 10)
	svc, _, _ := newTestService(db)

	ticket, err := svc.Book(context.Background(), "user1", models.BookingRequest{EventID: "event1", SeatNumber: "A001"})
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), "user1", false, ticket.ID))
	err = svc.Cancel(context.Background(), "user1", false, ticket.ID)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, 10, db.events["event1"].AvailableSeats)
}

func TestCancelNotOwner(t *testing.T) {
	db := NewMockDB()
	seedEvent(db, 10)
	svc, _, _ := newTestService(db)

	ticket, err := svc.Book(context.Background(), "user1", models.BookingRequest{EventID: "event1", SeatNumber: "A001"})
	require.NoError(t, err)

	err = svc.Cancel(context.Background(), "user2", false, ticket.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	// An admin may cancel on behalf of the owner.
	require.NoError(t, svc.Cancel(context.Background(), "admin1", true, ticket.ID))
}

func TestAvailableSeats(t *testing.T) {
	db := NewMockDB()
	seedEvent(db, 10)
	svc, _, _ := newTestService(db)

	_, err := svc.Book(context.Background(), "user1", models.BookingRequest{EventID: "event1", SeatNumber: "A001"})
	require.NoError(t, err)
	_, err = svc.Book(context.Background(), "user2", models.BookingRequest{EventID: "event1", SeatNumber: "B003"})
	require.NoError(t, err)

	view, err := svc.AvailableSeats(context.Background(), "event1")
	require.NoError(t, err)

	assert.Equal(t, 10, view.TotalSeats)
	assert.Equal(t, 2, view.BookedSeats)
	assert.NotContains(t, view.AvailableSeatNumbers, "A001")
	assert.NotContains(t, view.AvailableSeatNumbers, "B003")

	booked := 0
	for _, seat := range view.SeatMap.Seats {
		if seat.Status == models.SeatBooked {
			booked++
		}
	}
	assert.Equal(t, 2, booked)
}

func TestAvailableSeatsCancelledTicketFreesSeat(t *testing.T) {
	db := NewMockDB()
	seedEvent(db, 10)
	svc, _, _ := newTestService(db)

	ticket, err := svc.Book(context.Background(), "user1", models.BookingRequest{EventID: "event1", SeatNumber: "A001"})
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(context.Background(), "user1", false, ticket.ID))

	view, err := svc.AvailableSeats(context.Background(), "event1")
	require.NoError(t, err)
	assert.Equal(t, 0, view.BookedSeats)
	assert.Contains(t, view.AvailableSeatNumbers, "A001")
}

func TestValidateTicket(t *testing.T) {
	db := NewMockDB()
	seedEvent(db, 10)
	db.users["user1"] = &models.User{ID: "user1", Name: "Nimal Perera"}
	svc, _, publisher := newTestService(db)

	ticket, err := svc.Book(context.Background(), "user1", models.BookingRequest{EventID: "event1", SeatNumber: "A001"})
	require.NoError(t, err)

	summary, err := svc.Validate(context.Background(), "admin1", ticket.ID, models.ValidateRequest{
		QRCode:   ticket.QRCodeData,
		Location: "Gate B",
	})
	require.NoError(t, err)

	assert.Equal(t, "Colombo Jazz Night", summary.Event)
	assert.Equal(t, "Nimal Perera", summary.Attendee)
	assert.Equal(t, "A001", summary.SeatNumber)
	assert.Equal(t, "Gate B", summary.Location)
	assert.False(t, summary.CheckInTime.IsZero())
	assert.Equal(t, models.TicketUsed, db.tickets[ticket.ID].Status)
	assert.Len(t, publisher.validated, 1)
}

func TestValidateTicketWrongQR(t *testing.T) {
	db := NewMockDB()
	seedEvent(db, 10)
	svc, _, _ := newTestService(db)

	ticket, err := svc.Book(context.Background(), "user1", models.BookingRequest{EventID: "event1", SeatNumber: "A001"})
	require.NoError(t, err)

	_, err = svc.Validate(context.Background(), "admin1", ticket.ID, models.ValidateRequest{QRCode: "garbage"})
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	assert.Equal(t, models.TicketActive, db.tickets[ticket.ID].Status)
}

func TestValidateTicketTwice(t *testing.T) {
	db := NewMockDB()
	seedEvent(db, 10)
	svc, _, _ := newTestService(db)

	ticket, err := svc.Book(context.Background(), "user1", models.BookingRequest{EventID: "event1", SeatNumber: "A001"})
	require.NoError(t, err)

	_, err = svc.Validate(context.Background(), "admin1", ticket.ID, models.ValidateRequest{QRCode: ticket.QRCodeData})
	require.NoError(t, err)

	_, err = svc.Validate(context.Background(), "admin1", ticket.ID, models.ValidateRequest{QRCode: ticket.QRCodeData})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestValidateTicketEventNotStarted(t *testing.T) {
	db := NewMockDB()
	event := seedEvent(db, 10)
	event.Date = time.Now().Add(48 * time.Hour)
	svc, _, _ := newTestService(db)

	ticket, err := svc.Book(context.Background(), "user1", models.BookingRequest{EventID: "event1", SeatNumber: "A001"})
	require.NoError(t, err)

	_, err = svc.Validate(context.Background(), "admin1", ticket.ID, models.ValidateRequest{QRCode: ticket.QRCodeData})
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
}

func TestGetTicketOwnerGuard(t *testing.T) {
	db := NewMockDB()
	seedEvent(db, 10)
	svc, _, _ := newTestService(db)

	ticket, err := svc.Book(context.Background(), "user1", models.BookingRequest{EventID: "event1", SeatNumber: "A001"})
	require.NoError(t, err)

	_, err = svc.GetTicket(context.Background(), "user2", false, ticket.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	got, err := svc.GetTicket(context.Background(), "user2", true, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)
}

func TestEventStats(t *testing.T) {
	db := NewMockDB()
	seedEvent(db, 10)
	svc, _, _ := newTestService(db)

	first, err := svc.Book(context.Background(), "user1", models.BookingRequest{EventID: "event1", SeatNumber: "A001"})
	require.NoError(t, err)
	_, err = svc.Book(context.Background(), "user2", models.BookingRequest{EventID: "event1", SeatNumber: "A002"})
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(context.Background(), "user1", false, first.ID))

	stats, err := svc.EventStats(context.Background(), "event1")
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalTickets)
	assert.Equal(t, 1, stats.Summary.Active)
	assert.Equal(t, 1, stats.Summary.Cancelled)
	assert.Equal(t, 5000.0, stats.TotalRevenue)
}
