// Package marketing manages promotional campaigns and the static promo
// code catalog.
package marketing

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
	ListCampaigns(ctx context.Context) ([]models.Campaign, error)
	GetCampaign(ctx context.Context, id string) (*models.Campaign, error)
	InsertCampaign(ctx context.Context, c *models.Campaign) error
	UpdateCampaign(ctx context.Context, c *models.Campaign) error
	DeleteCampaign(ctx context.Context, id string) error
}

// promoCodes is the static catalog carried over from the original
// marketing data set.
var promoCodes = []models.PromoCode{
	{Code: "WELCOME10", Discount: 0.10, Description: "10% off your first booking", Active: true},
	{Code: "EARLYBIRD", Discount: 0.15, Description: "15% off bookings made 30+ days ahead", Active: true},
	{Code: "VIP20", Discount: 0.20, Description: "20% off for VIP members", Active: true},
	{Code: "SUMMER25", Discount: 0.25, Description: "Seasonal 25% discount", Active: false},
}

type CampaignRequest struct {
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	TargetAudience string    `json:"targetAudience,omitempty"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	Discount       float64   `json:"discount,omitempty"`
	Conditions     []string  `json:"conditions,omitempty"`
	Status         string    `json:"status,omitempty"`
}

type Service struct {
	Store  Store
	Logger *logger.Logger
}

func NewService(store Store, log *logger.Logger) *Service {
	return &Service{Store: store, Logger: log}
}

func (s *Service) validate(req CampaignRequest) error {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return apperr.BadRequest("name is required")
	case req.StartDate.IsZero() || req.EndDate.IsZero():
		return apperr.BadRequest("startDate and endDate are required")
	case req.EndDate.Before(req.StartDate):
		return apperr.BadRequest("endDate must be after startDate")
	case req.Discount < 0 || req.Discount > 1:
		return apperr.BadRequest("discount must be between 0 and 1")
	}
	if req.Status != "" && req.Status != models.CampaignActive && req.Status != models.CampaignInactive {
		return apperr.BadRequest("Invalid campaign status")
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]models.Campaign, error) {
	return s.Store.ListCampaigns(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*models.Campaign, error) {
	return s.Store.GetCampaign(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CampaignRequest) (*models.Campaign, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	c := &models.Campaign{
		ID:             utils.NewID(),
		Name:           req.Name,
		Description:    req.Description,
		TargetAudience: req.TargetAudience,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Discount:       req.Discount,
		Conditions:     req.Conditions,
		Status:         req.Status,
		CreatedAt:      time.Now(),
	}
	if c.TargetAudience == "" {
		c.TargetAudience = "all"
	}
	if c.Status == "" {
		c.Status = models.CampaignActive
	}
	if err := s.Store.InsertCampaign(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, id string, req CampaignRequest) (*models.Campaign, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	c, err := s.Store.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = req.Name
	c.Description = req.Description
	if req.TargetAudience != "" {
		c.TargetAudience = req.TargetAudience
	}
	c.StartDate = req.StartDate
	c.EndDate = req.EndDate
	c.Discount = req.Discount
	c.Conditions = req.Conditions
	if req.Status != "" {
		c.Status = req.Status
	}
	if err := s.Store.UpdateCampaign(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Store.DeleteCampaign(ctx, id)
}

// PromoCodes returns the static catalog.
func (s *Service) PromoCodes() []models.PromoCode {
	out := make([]models.PromoCode, len(promoCodes))
	copy(out, promoCodes)
	return out
}

// ValidatePromo resolves a code to its discount. Unknown and inactive
// codes are indistinguishable to the caller.
func (s *Service) ValidatePromo(code string) (*models.PromoCode, error) {
	needle := strings.ToUpper(strings.TrimSpace(code))
	for _, p := range promoCodes {
		if p.Code == needle && p.Active {
			promo := p
			return &promo, nil
		}
	}
	return nil, apperr.BadRequest("Invalid promo code")
}
