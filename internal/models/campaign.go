package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	CampaignActive   = "active"
	CampaignInactive = "inactive"
)

type Campaign struct {
	bun.BaseModel `bun:"table:campaigns"`

	ID             string    `bun:"id,pk" json:"id"`
	Name           string    `bun:"name,notnull" json:"name"`
	Description    string    `bun:"description,notnull" json:"description"`
	TargetAudience string    `bun:"target_audience,notnull,default:'all'" json:"targetAudience"`
	StartDate      time.Time `bun:"start_date,notnull" json:"startDate"`
	EndDate        time.Time `bun:"end_date,notnull" json:"endDate"`
	Discount       float64   `bun:"discount,nullzero" json:"discount"`
	Conditions     []string  `bun:"conditions" json:"conditions"`
	Status         string    `bun:"status,notnull,default:'active'" json:"status"`
	CreatedAt      time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero" json:"updatedAt,omitempty"`
}

// PromoCode is a static marketing promo entry.
type PromoCode struct {
	Code        string  `json:"code"`
	Discount    float64 `json:"discount"`
	Description string  `json:"description"`
	Active      bool    `json:"active"`
}
