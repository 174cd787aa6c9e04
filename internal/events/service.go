// Package events manages the event catalog: creation with seat-grid
// generation, capacity changes, lifecycle status and the browse queries.
package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eventx/internal/apperr"
	"eventx/internal/events/db"
	"eventx/internal/logger"
	"eventx/internal/models"
	"eventx/internal/qr"
	"eventx/internal/seatmap"
	"eventx/internal/utils"
)

type DBLayer interface {
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	ListEvents(ctx context.Context, filter db.ListFilter) ([]models.Event, int, error)
	ListAllEvents(ctx context.Context) ([]models.Event, error)
	CreateEvent(ctx context.Context, event *models.Event, seats []models.Seat) error
	UpdateEvent(ctx context.Context, event *models.Event) error
	GetSeats(ctx context.Context, eventID string) ([]models.Seat, error)
	ResizeEvent(ctx context.Context, event *models.Event, seats []models.Seat) error
	CountTickets(ctx context.Context, eventID string) (int, error)
	DeleteEvent(ctx context.Context, eventID string) error
	SoldSeatCount(ctx context.Context, eventID string) (int, error)
}

// SeatMapCache is invalidated whenever a capacity change rewrites the grid.
type SeatMapCache interface {
	Invalidate(ctx context.Context, eventID string) error
}

type Publisher interface {
	PublishEventCreated(event models.Event) error
}

// EventRequest is the create/update payload.
type EventRequest struct {
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Date           time.Time    `json:"date"`
	StartTime      string       `json:"startTime"`
	EndTime        string       `json:"endTime"`
	Venue          models.Venue `json:"venue"`
	Price          float64      `json:"price"`
	TotalSeats     int          `json:"totalSeats"`
	Category       string       `json:"category"`
	Tags           []string     `json:"tags,omitempty"`
	Popularity     string       `json:"popularity,omitempty"`
	ExpectedAttend int          `json:"expectedAttendance,omitempty"`
	Image          string       `json:"image,omitempty"`
}

// ListPage is one page of the event listing.
type ListPage struct {
	Events     []models.Event `json:"events"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PerPage    int            `json:"perPage"`
	TotalPages int            `json:"totalPages"`
}

// KanbanBoard groups events by lifecycle status for the admin board.
type KanbanBoard struct {
	Upcoming  []models.Event `json:"upcoming"`
	Pending   []models.Event `json:"pending"`
	Active    []models.Event `json:"active"`
	Completed []models.Event `json:"completed"`
	Cancelled []models.Event `json:"cancelled"`
	Closed    []models.Event `json:"closed"`
}

type EventService struct {
	DB     DBLayer
	Cache  SeatMapCache
	Kafka  Publisher
	Logger *logger.Logger
}

func NewEventService(dbLayer DBLayer, cache SeatMapCache, kafka Publisher, log *logger.Logger) *EventService {
	return &EventService{DB: dbLayer, Cache: cache, Kafka: kafka, Logger: log}
}

func (s *EventService) validate(req EventRequest) error {
	switch {
	case strings.TrimSpace(req.Title) == "":
		return apperr.BadRequest("title is required")
	case strings.TrimSpace(req.Description) == "":
		return apperr.BadRequest("description is required")
	case req.Date.IsZero():
		return apperr.BadRequest("date is required")
	case req.Venue.Name == "":
		return apperr.BadRequest("venue name is required")
	case req.Price < 0:
		return apperr.BadRequest("price must not be negative")
	case req.TotalSeats < 1:
		return apperr.BadRequest("totalSeats must be at least 1")
	case req.Category == "":
		return apperr.BadRequest("category is required")
	}
	rows, _ := seatmap.Dimensions(req.TotalSeats)
	if rows > seatmap.MaxRows {
		return apperr.BadRequest("totalSeats exceeds the supported seat map size")
	}
	return nil
}

// Create builds a new event with its full seat grid and a scannable event
// QR payload. Every seat starts available.
func (s *EventService) Create(ctx context.Context, organizerID string, req EventRequest) (*models.Event, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	now := time.Now()
	rows, cols := seatmap.Dimensions(req.TotalSeats)
	event := &models.Event{
		ID:             utils.NewID(),
		Title:          req.Title,
		Description:    req.Description,
		Date:           req.Date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Price:          req.Price,
		TotalSeats:     req.TotalSeats,
		AvailableSeats: req.TotalSeats,
		SeatRows:       rows,
		SeatColumns:    cols,
		Category:       req.Category,
		Tags:           req.Tags,
		Status:         models.EventUpcoming,
		Popularity:     req.Popularity,
		ExpectedAttend: req.ExpectedAttend,
		OrganizerID:    organizerID,
		Image:          req.Image,
		CreatedAt:      now,
	}
	if event.Popularity == "" {
		event.Popularity = "Medium"
	}
	event.SetVenue(req.Venue)
	event.QRCodeData = qr.EventPayload(event.ID)

	grid := seatmap.Generate(event.ID, event.TotalSeats, event.Price)
	if err := s.DB.CreateEvent(ctx, event, grid.Seats); err != nil {
		return nil, err
	}

	s.Logger.Info("EVENT", fmt.Sprintf("created event %s (%d seats)", event.ID, event.TotalSeats))
	if err := s.Kafka.PublishEventCreated(*event); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish event created: %v", err))
	}
	return event, nil
}

// Update edits event fields. Capacity growth regenerates the grid while
// keeping sold and reserved seats; shrinking below the sold count is
// rejected and leaves the event untouched.
func (s *EventService) Update(ctx context.Context, eventID string, req EventRequest) (*models.Event, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	event, err := s.DB.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	resized := req.TotalSeats != event.TotalSeats
	if resized {
		sold, err := s.DB.SoldSeatCount(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if req.TotalSeats < sold {
			return nil, apperr.BadRequest(fmt.Sprintf("totalSeats cannot be reduced below %d sold seats", sold))
		}
		event.AvailableSeats = req.TotalSeats - sold
		event.TotalSeats = req.TotalSeats
		event.SeatRows, event.SeatColumns = seatmap.Dimensions(req.TotalSeats)
	}

	event.Title = req.Title
	event.Description = req.Description
	event.Date = req.Date
	event.StartTime = req.StartTime
	event.EndTime = req.EndTime
	event.Price = req.Price
	event.Category = req.Category
	event.Tags = req.Tags
	if req.Popularity != "" {
		event.Popularity = req.Popularity
	}
	event.ExpectedAttend = req.ExpectedAttend
	if req.Image != "" {
		event.Image = req.Image
	}
	event.SetVenue(req.Venue)

	if resized {
		existing, err := s.DB.GetSeats(ctx, eventID)
		if err != nil {
			return nil, err
		}
		grid := seatmap.Regenerate(eventID, event.TotalSeats, event.Price, existing)
		if err := s.DB.ResizeEvent(ctx, event, grid.Seats); err != nil {
			return nil, err
		}
		if err := s.Cache.Invalidate(ctx, eventID); err != nil {
			s.Logger.Warn("CACHE", fmt.Sprintf("failed to invalidate seat map for event %s: %v", eventID, err))
		}
		s.Logger.Info("EVENT", fmt.Sprintf("resized event %s to %d seats", eventID, event.TotalSeats))
		return event, nil
	}

	if err := s.DB.UpdateEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// UpdateStatus patches the lifecycle status.
func (s *EventService) UpdateStatus(ctx context.Context, eventID, status string) (*models.Event, error) {
	if !models.ValidEventStatus(status) {
		return nil, apperr.BadRequest("Invalid event status")
	}
	event, err := s.DB.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	event.Status = status
	if err := s.DB.UpdateEvent(ctx, event); err != nil {
		return nil, err
	}
	s.Logger.Info("EVENT", fmt.Sprintf("event %s status -> %s", eventID, status))
	return event, nil
}

// Delete removes an event that has never sold a ticket. Any referencing
// ticket, cancelled ones included, blocks deletion.
func (s *EventService) Delete(ctx context.Context, eventID string) error {
	count, err := s.DB.CountTickets(ctx, eventID)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict("Cannot delete an event with existing tickets")
	}
	if err := s.DB.DeleteEvent(ctx, eventID); err != nil {
		return err
	}
	if err := s.Cache.Invalidate(ctx, eventID); err != nil {
		s.Logger.Warn("CACHE", fmt.Sprintf("failed to invalidate seat map for event %s: %v", eventID, err))
	}
	s.Logger.Info("EVENT", fmt.Sprintf("deleted event %s", eventID))
	return nil
}

func (s *EventService) Get(ctx context.Context, eventID string) (*models.Event, error) {
	return s.DB.GetEventByID(ctx, eventID)
}

// List returns one filtered, sorted page.
func (s *EventService) List(ctx context.Context, filter db.ListFilter) (*ListPage, error) {
	if filter.Status != "" && !models.ValidEventStatus(filter.Status) {
		return nil, apperr.BadRequest("Invalid event status")
	}
	events, total, err := s.DB.ListEvents(ctx, filter)
	if err != nil {
		return nil, err
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 100 {
		filter.PerPage = 20
	}
	totalPages := (total + filter.PerPage - 1) / filter.PerPage
	return &ListPage{
		Events:     events,
		Total:      total,
		Page:       filter.Page,
		PerPage:    filter.PerPage,
		TotalPages: totalPages,
	}, nil
}

// Kanban groups every event by status for the admin board view.
func (s *EventService) Kanban(ctx context.Context) (*KanbanBoard, error) {
	events, err := s.DB.ListAllEvents(ctx)
	if err != nil {
		return nil, err
	}
	board := &KanbanBoard{}
	for _, e := range events {
		switch e.Status {
		case models.EventUpcoming:
			board.Upcoming = append(board.Upcoming, e)
		case models.EventPending:
			board.Pending = append(board.Pending, e)
		case models.EventActive:
			board.Active = append(board.Active, e)
		case models.EventCompleted:
			board.Completed = append(board.Completed, e)
		case models.EventCancelled:
			board.Cancelled = append(board.Cancelled, e)
		case models.EventClosed:
			board.Closed = append(board.Closed, e)
		}
	}
	return board, nil
}
