package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	SupportOpen   = "open"
	SupportClosed = "closed"
)

type SupportTicket struct {
	bun.BaseModel `bun:"table:support_tickets"`

	ID        string            `bun:"id,pk" json:"id"`
	UserID    string            `bun:"user_id,notnull" json:"userId"`
	UserEmail string            `bun:"user_email,notnull" json:"userEmail"`
	UserName  string            `bun:"user_name,notnull" json:"userName"`
	Subject   string            `bun:"subject,notnull" json:"subject"`
	Message   string            `bun:"message,notnull" json:"message"`
	Priority  string            `bun:"priority,notnull,default:'medium'" json:"priority"`
	Category  string            `bun:"category,notnull,default:'general'" json:"category"`
	Status    string            `bun:"status,notnull,default:'open'" json:"status"`
	Responses []SupportResponse `bun:"rel:has-many,join:id=support_ticket_id" json:"responses"`
	CreatedAt time.Time         `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt time.Time         `bun:"updated_at,nullzero" json:"updatedAt,omitempty"`
}

type SupportResponse struct {
	bun.BaseModel `bun:"table:support_responses"`

	ID              string    `bun:"id,pk" json:"id"`
	SupportTicketID string    `bun:"support_ticket_id,notnull" json:"supportTicketId"`
	ResponderID     string    `bun:"responder_id,notnull" json:"responderId"`
	ResponderName   string    `bun:"responder_name,notnull" json:"responderName"`
	FromAdmin       bool      `bun:"from_admin" json:"fromAdmin"`
	Message         string    `bun:"message,notnull" json:"message"`
	CreatedAt       time.Time `bun:"created_at,notnull" json:"createdAt"`
}
