package ticket_api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"eventx/internal/auth"
	"eventx/internal/logger"
	"eventx/internal/models"
	"eventx/internal/seatmap"
	"eventx/internal/tickets"
	"eventx/internal/tickets/db"
	"eventx/internal/tickets/ticket_api"
)

type noopCache struct{}

func (noopCache) Get(context.Context, string) (*models.AvailabilityView, error) { return nil, nil }
func (noopCache) Set(context.Context, *models.AvailabilityView) error           { return nil }
func (noopCache) Invalidate(context.Context, string) error                      { return nil }

type noopPublisher struct{}

func (noopPublisher) PublishTicketBooked(models.Ticket) error    { return nil }
func (noopPublisher) PublishTicketCancelled(models.Ticket) error { return nil }
func (noopPublisher) PublishTicketValidated(models.Ticket) error { return nil }

type testServer struct {
	router *chi.Mux
	store  *db.DB
	issuer *auth.TokenIssuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	ctx := context.Background()
	require.NoError(t, bunDB.ResetModel(ctx, (*models.Event)(nil)))
	require.NoError(t, bunDB.ResetModel(ctx, (*models.Seat)(nil)))
	require.NoError(t, bunDB.ResetModel(ctx, (*models.Ticket)(nil)))
	require.NoError(t, bunDB.ResetModel(ctx, (*models.User)(nil)))
	t.Cleanup(func() { _ = bunDB.Close() })

	store := &db.DB{Bun: bunDB}
	log := logger.NewLogger()
	svc := tickets.NewTicketService(store, noopCache{}, noopPublisher{}, log)
	handler := ticket_api.NewHandler(svc, log)

	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	router := chi.NewRouter()
	router.Route("/api/tickets", func(r chi.Router) {
		r.Use(auth.Middleware(issuer))
		handler.RegisterRoutes(r)
	})

	return &testServer{router: router, store: store, issuer: issuer}
}

func (s *testServer) seedEvent(t *testing.T, totalSeats int) {
	t.Helper()
	ctx := context.Background()

	rows, cols := seatmap.Dimensions(totalSeats)
	event := &models.Event{
		ID:             "event1",
		Title:          "Kandy Food Festival",
		Description:    "Street food showcase",
		Date:           time.Now().Add(-time.Hour),
		StartTime:      "10:00",
		EndTime:        "22:00",
		VenueName:      "Bogambara Grounds",
		Price:          1000,
		TotalSeats:     totalSeats,
		AvailableSeats: totalSeats,
		SeatRows:       rows,
		SeatColumns:    cols,
		Category:       "Food",
		Status:         models.EventActive,
		OrganizerID:    "admin1",
		CreatedAt:      time.Now(),
	}
	_, err := s.store.Bun.NewInsert().Model(event).Exec(ctx)
	require.NoError(t, err)

	grid := seatmap.Generate(event.ID, totalSeats, event.Price)
	_, err = s.store.Bun.NewInsert().Model(&grid.Seats).Exec(ctx)
	require.NoError(t, err)
}

func (s *testServer) request(t *testing.T, method, path, userID, role string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)

	token, err := s.issuer.Sign(userID, role)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func TestBookTicketEndpoint(t *testing.T) {
	srv := newTestServer(t)
	srv.seedEvent(t, 10)

	rec := srv.request(t, http.MethodPost, "/api/tickets/", "user1", models.RoleUser, models.BookingRequest{
		EventID:    "event1",
		SeatNumber: "A001",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var ticket models.Ticket
	decodeData(t, rec, &ticket)
	assert.Equal(t, "A001", ticket.SeatNumber)
	assert.Equal(t, models.TicketActive, ticket.Status)
	assert.Equal(t, 1000.0, ticket.Price)
}

func TestBookTicketEndpointRequiresAuth(t *testing.T) {
	srv := newTestServer(t)
	srv.seedEvent(t, 10)

	req := httptest.NewRequest(http.MethodPost, "/api/tickets/", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBookTicketEndpointSeatTaken(t *testing.T) {
	srv := newTestServer(t)
	srv.seedEvent(t, 10)

	rec := srv.request(t, http.MethodPost, "/api/tickets/", "user1", models.RoleUser, models.BookingRequest{
		EventID: "event1", SeatNumber: "A001",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = srv.request(t, http.MethodPost, "/api/tickets/", "user2", models.RoleUser, models.BookingRequest{
		EventID: "event1", SeatNumber: "A001",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Seat already taken")
}

func TestCancelTicketEndpoint(t *testing.T) {
	srv := newTestServer(t)
	srv.seedEvent(t, 10)

	rec := srv.request(t, http.MethodPost, "/api/tickets/", "user1", models.RoleUser, models.BookingRequest{
		EventID: "event1", SeatNumber: "A001",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var ticket models.Ticket
	decodeData(t, rec, &ticket)

	rec = srv.request(t, http.MethodPut, fmt.Sprintf("/api/tickets/%s/cancel", ticket.ID), "user1", models.RoleUser, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.request(t, http.MethodPut, fmt.Sprintf("/api/tickets/%s/cancel", ticket.ID), "user1", models.RoleUser, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already cancelled")
}

func TestAvailableSeatsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	srv.seedEvent(t, 10)

	rec := srv.request(t, http.MethodPost, "/api/tickets/", "user1", models.RoleUser, models.BookingRequest{
		EventID: "event1", SeatNumber: "A001",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = srv.request(t, http.MethodGet, "/api/tickets/available-seats/event1", "user2", models.RoleUser, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view models.AvailabilityView
	decodeData(t, rec, &view)
	assert.Equal(t, 10, view.TotalSeats)
	assert.Equal(t, 1, view.BookedSeats)
	assert.NotContains(t, view.AvailableSeatNumbers, "A001")
}

func TestValidateTicketEndpoint(t *testing.T) {
	srv := newTestServer(t)
	srv.seedEvent(t, 10)

	rec := srv.request(t, http.MethodPost, "/api/tickets/", "user1", models.RoleUser, models.BookingRequest{
		EventID: "event1", SeatNumber: "A001",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var ticket models.Ticket
	decodeData(t, rec, &ticket)

	path := fmt.Sprintf("/api/tickets/%s/validate", ticket.ID)
	rec = srv.request(t, http.MethodPost, path, "admin1", models.RoleAdmin, models.ValidateRequest{
		QRCode: ticket.QRCodeData,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var summary models.TicketSummary
	decodeData(t, rec, &summary)
	assert.Equal(t, "A001", summary.SeatNumber)
	assert.Equal(t, "Kandy Food Festival", summary.Event)

	// Second scan is rejected.
	rec = srv.request(t, http.MethodPost, path, "admin1", models.RoleAdmin, models.ValidateRequest{
		QRCode: ticket.QRCodeData,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMyTicketsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	srv.seedEvent(t, 10)

	for _, seat := range []string{"A001", "A002"} {
		rec := srv.request(t, http.MethodPost, "/api/tickets/", "user1", models.RoleUser, models.BookingRequest{
			EventID: "event1", SeatNumber: seat,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := srv.request(t, http.MethodGet, "/api/tickets/my-tickets", "user1", models.RoleUser, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []models.Ticket
	decodeData(t, rec, &list)
	assert.Len(t, list, 2)
}
