package models

import (
	"github.com/uptrace/bun"
)

// Seat statuses. The allocator is the only writer of the status column;
// transitions are available→paid on booking and paid→available on
// cancellation. "reserved" exists for administratively held seats.
const (
	SeatAvailable = "available"
	SeatReserved  = "reserved"
	SeatPaid      = "paid"
	SeatBooked    = "booked" // derived-view only, never persisted
)

// Seat is one cell of an event's seat grid. The (event_id, seat_number)
// pair is unique; seat numbers are deterministic (row letter + zero-padded
// column, e.g. "A001").
type Seat struct {
	bun.BaseModel `bun:"table:seats"`

	ID         int64   `bun:"id,pk,autoincrement" json:"-"`
	EventID    string  `bun:"event_id,notnull" json:"-"`
	Row        string  `bun:"row,notnull" json:"row"`
	Column     int     `bun:"column,notnull" json:"column"`
	SeatNumber string  `bun:"seat_number,notnull" json:"seatNumber"`
	Status     string  `bun:"status,notnull,default:'available'" json:"status"`
	Price      float64 `bun:"price,notnull" json:"price"`
}

// SeatMap is the grid view exported over the API.
type SeatMap struct {
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
	Seats   []Seat `json:"seats"`
}
