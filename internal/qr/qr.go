// Package qr produces the opaque payloads printed on tickets and events.
// The allocator never interprets a payload beyond an equality check at
// check-in time.
package qr

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/skip2/go-qrcode"
)

type ticketPayload struct {
	TicketID   string `json:"ticketId"`
	EventID    string `json:"eventId"`
	UserID     string `json:"userId"`
	SeatNumber string `json:"seatNumber"`
	Timestamp  int64  `json:"timestamp"`
	Type       string `json:"type"`
}

type eventPayload struct {
	EventID   string `json:"eventId"`
	Timestamp int64  `json:"timestamp"`
	Type      string `json:"type"`
}

// TicketPayload builds the check-in payload for a booked seat. The embedded
// ticket id is synthetic; the stored ticket row keeps its own id.
func TicketPayload(eventID, userID, seatNumber string) string {
	data, _ := json.Marshal(ticketPayload{
		TicketID:   fmt.Sprintf("TICKET_%d_%s_%s", time.Now().UnixMilli(), userID, eventID),
		EventID:    eventID,
		UserID:     userID,
		SeatNumber: seatNumber,
		Timestamp:  time.Now().UnixMilli(),
		Type:       "ticket",
	})
	return string(data)
}

// EventPayload builds the payload embedded in an event's poster QR.
func EventPayload(eventID string) string {
	data, _ := json.Marshal(eventPayload{
		EventID:   eventID,
		Timestamp: time.Now().UnixMilli(),
		Type:      "event",
	})
	return string(data)
}

// Encode renders a payload as a 256px PNG.
func Encode(payload string) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR: %w", err)
	}
	return png, nil
}
