// Package support handles help-desk tickets and their response threads.
package support

import (
	"context"
	"strings"
	"time"

	"eventx/internal/apperr"
	"eventx/internal/logger"
	"eventx/internal/models"
	"eventx/internal/utils"
)

type Store interface {
	ListAll(ctx context.Context, status string) ([]models.SupportTicket, error)
	ListByUser(ctx context.Context, userID string) ([]models.SupportTicket, error)
	GetByID(ctx context.Context, id string) (*models.SupportTicket, error)
	Insert(ctx context.Context, t *models.SupportTicket) error
	InsertResponse(ctx context.Context, r *models.SupportResponse) error
	SetStatus(ctx context.Context, id, status string) error
}

type CreateRequest struct {
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	Priority string `json:"priority,omitempty"`
	Category string `json:"category,omitempty"`
}

type RespondRequest struct {
	Message string `json:"message"`
}

type Service struct {
	Store  Store
	Logger *logger.Logger
}

func NewService(store Store, log *logger.Logger) *Service {
	return &Service{Store: store, Logger: log}
}

// Create opens a ticket on behalf of the authenticated user.
func (s *Service) Create(ctx context.Context, user *models.User, req CreateRequest) (*models.SupportTicket, error) {
	if strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Message) == "" {
		return nil, apperr.BadRequest("subject and message are required")
	}
	t := &models.SupportTicket{
		ID:        utils.NewID(),
		UserID:    user.ID,
		UserEmail: user.Email,
		UserName:  user.Name,
		Subject:   req.Subject,
		Message:   req.Message,
		Priority:  req.Priority,
		Category:  req.Category,
		Status:    models.SupportOpen,
		CreatedAt: time.Now(),
	}
	if t.Priority == "" {
		t.Priority = "medium"
	}
	if t.Category == "" {
		t.Category = "general"
	}
	if err := s.Store.Insert(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ListForUser returns the caller's own tickets with responses.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]models.SupportTicket, error) {
	return s.Store.ListByUser(ctx, userID)
}

// ListAll is the admin queue, optionally filtered by status.
func (s *Service) ListAll(ctx context.Context, status string) ([]models.SupportTicket, error) {
	if status != "" && status != models.SupportOpen && status != models.SupportClosed {
		return nil, apperr.BadRequest("Invalid support ticket status")
	}
	return s.Store.ListAll(ctx, status)
}

// Get returns one ticket; non-admins may only view their own.
func (s *Service) Get(ctx context.Context, userID string, isAdmin bool, id string) (*models.SupportTicket, error) {
	t, err := s.Store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && t.UserID != userID {
		return nil, apperr.Forbidden("Not authorized to view this support ticket")
	}
	return t, nil
}

// Respond appends to the thread. The owner or any admin may respond; a
// closed ticket takes no further responses.
func (s *Service) Respond(ctx context.Context, responder *models.User, isAdmin bool, ticketID string, req RespondRequest) (*models.SupportResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, apperr.BadRequest("message is required")
	}
	t, err := s.Store.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && t.UserID != responder.ID {
		return nil, apperr.Forbidden("Not authorized to respond to this support ticket")
	}
	if t.Status == models.SupportClosed {
		return nil, apperr.Conflict("Support ticket is closed")
	}

	r := &models.SupportResponse{
		ID:              utils.NewID(),
		SupportTicketID: ticketID,
		ResponderID:     responder.ID,
		ResponderName:   responder.Name,
		FromAdmin:       isAdmin,
		Message:         req.Message,
		CreatedAt:       time.Now(),
	}
	if err := s.Store.InsertResponse(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Close resolves a ticket. Closing twice is rejected.
func (s *Service) Close(ctx context.Context, userID string, isAdmin bool, ticketID string) error {
	t, err := s.Store.GetByID(ctx, ticketID)
	if err != nil {
		return err
	}
	if !isAdmin && t.UserID != userID {
		return apperr.Forbidden("Not authorized to close this support ticket")
	}
	if t.Status == models.SupportClosed {
		return apperr.Conflict("Support ticket is already closed")
	}
	return s.Store.SetStatus(ctx, ticketID, models.SupportClosed)
}
