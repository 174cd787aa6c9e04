package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID           string    `bun:"id,pk" json:"id"`
	Name         string    `bun:"name,notnull" json:"name"`
	Email        string    `bun:"email,unique,notnull" json:"email"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	Role         string    `bun:"role,notnull,default:'user'" json:"role"`
	Age          int       `bun:"age,nullzero" json:"age,omitempty"`
	Gender       string    `bun:"gender,nullzero" json:"gender,omitempty"`
	Interests    []string  `bun:"interests" json:"interests,omitempty"`
	City         string    `bun:"city,nullzero" json:"city,omitempty"`
	Country      string    `bun:"country,nullzero" json:"country,omitempty"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero" json:"updatedAt,omitempty"`
}

// AgeGroup buckets users for the demographics aggregations.
func (u *User) AgeGroup() string {
	switch {
	case u.Age == 0:
		return "Not specified"
	case u.Age < 18:
		return "Under 18"
	case u.Age <= 24:
		return "18 - 24"
	case u.Age <= 34:
		return "25 - 34"
	case u.Age <= 44:
		return "35 - 44"
	default:
		return "45+"
	}
}
