// Package notifications stores in-app notifications. Delivery channels
// (email, SMS) are out of scope; rows land here and clients poll.
package notifications

import (
	"context"
	"fmt"
	"time"

	"eventx/internal/apperr"
	"eventx/internal/logger"
	"eventx/internal/models"
	"eventx/internal/utils"
)

type Store interface {
	ListByUser(ctx context.Context, userID string) ([]models.Notification, error)
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	Insert(ctx context.Context, notifications ...*models.Notification) error
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id string) error
	AllUserIDs(ctx context.Context) ([]string, error)
}

type SendRequest struct {
	UserID  string `json:"userId"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

type Service struct {
	Store  Store
	Logger *logger.Logger
}

func NewService(store Store, log *logger.Logger) *Service {
	return &Service{Store: store, Logger: log}
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.Store.ListByUser(ctx, userID)
}

// Send creates one notification for one user.
func (s *Service) Send(ctx context.Context, req SendRequest) (*models.Notification, error) {
	if req.UserID == "" || req.Title == "" || req.Message == "" {
		return nil, apperr.BadRequest("userId, title and message are required")
	}
	n := s.build(req.UserID, req)
	if err := s.Store.Insert(ctx, n); err != nil {
		return nil, err
	}
	s.Logger.Info("NOTIFY", fmt.Sprintf("notification %s sent to user %s", n.ID, n.UserID))
	return n, nil
}

// SendBulk fans one message out to every account.
func (s *Service) SendBulk(ctx context.Context, req SendRequest) (int, error) {
	if req.Title == "" || req.Message == "" {
		return 0, apperr.BadRequest("title and message are required")
	}
	userIDs, err := s.Store.AllUserIDs(ctx)
	if err != nil {
		return 0, err
	}
	batch := make([]*models.Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		batch = append(batch, s.build(userID, req))
	}
	if len(batch) == 0 {
		return 0, nil
	}
	if err := s.Store.Insert(ctx, batch...); err != nil {
		return 0, err
	}
	s.Logger.Info("NOTIFY", fmt.Sprintf("bulk notification sent to %d users", len(batch)))
	return len(batch), nil
}

func (s *Service) build(userID string, req SendRequest) *models.Notification {
	kind := req.Type
	if kind == "" {
		kind = "info"
	}
	return &models.Notification{
		ID:        utils.NewID(),
		UserID:    userID,
		Title:     req.Title,
		Message:   req.Message,
		Type:      kind,
		CreatedAt: time.Now(),
	}
}

// MarkRead flags one notification; only the recipient may do so.
func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	n, err := s.Store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return apperr.Forbidden("Not authorized to modify this notification")
	}
	return s.Store.MarkRead(ctx, id)
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.Store.MarkAllRead(ctx, userID)
}

// Delete removes one notification; only the recipient may do so.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	n, err := s.Store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return apperr.Forbidden("Not authorized to delete this notification")
	}
	return s.Store.Delete(ctx, id)
}
