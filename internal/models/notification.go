package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Notification struct {
	bun.BaseModel `bun:"table:notifications"`

	ID        string    `bun:"id,pk" json:"id"`
	UserID    string    `bun:"user_id,notnull" json:"userId"`
	Title     string    `bun:"title,notnull" json:"title"`
	Message   string    `bun:"message,notnull" json:"message"`
	Type      string    `bun:"type,notnull,default:'info'" json:"type"`
	Read      bool      `bun:"read" json:"read"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
}
