package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Ticket statuses.
const (
	TicketActive    = "active"
	TicketUsed      = "used"
	TicketCancelled = "cancelled"
	TicketExpired   = "expired"
)

// Payment statuses.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

func ValidPaymentMethod(m string) bool {
	switch m {
	case "credit_card", "debit_card", "paypal", "bank_transfer", "qr_code":
		return true
	}
	return false
}

type Payment struct {
	Method        string    `bun:"method,nullzero" json:"method"`
	TransactionID string    `bun:"transaction_id,nullzero" json:"transactionId,omitempty"`
	Amount        float64   `bun:"amount,nullzero" json:"amount"`
	Currency      string    `bun:"currency,nullzero" json:"currency"`
	Status        string    `bun:"status,nullzero" json:"status"`
	PaidAt        time.Time `bun:"paid_at,nullzero" json:"paidAt,omitempty"`
}

type CheckIn struct {
	CheckedIn   bool      `bun:"checked_in" json:"checkedIn"`
	CheckedInAt time.Time `bun:"checked_in_at,nullzero" json:"checkedInAt,omitempty"`
	CheckedInBy string    `bun:"checked_in_by,nullzero" json:"checkedInBy,omitempty"`
	Location    string    `bun:"location,nullzero" json:"location,omitempty"`
}

// Ticket references one event and one user and carries a denormalized copy
// of the seat identity taken at booking time. For a given event at most one
// active-or-used ticket exists per seat number; cancelled tickets may
// coexist with a later active one for the same seat.
type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	ID            string    `bun:"id,pk" json:"id"`
	EventID       string    `bun:"event_id,notnull" json:"eventId"`
	UserID        string    `bun:"user_id,notnull" json:"userId"`
	SeatNumber    string    `bun:"seat_number,notnull" json:"seatNumber"`
	SeatRow       string    `bun:"seat_row,notnull" json:"seatRow"`
	SeatColumn    int       `bun:"seat_column,notnull" json:"seatColumn"`
	Price         float64   `bun:"price,notnull" json:"price"`
	OriginalPrice float64   `bun:"original_price,notnull" json:"originalPrice"`
	Discount      float64   `bun:"discount,nullzero" json:"discount,omitempty"`
	Status        string    `bun:"status,notnull,default:'active'" json:"status"`
	QRCode        []byte    `bun:"qr_code" json:"qrCode,omitempty"`
	QRCodeData    string    `bun:"qr_code_data,notnull" json:"qrCodeData"`
	PurchaseDate  time.Time `bun:"purchase_date,notnull" json:"purchaseDate"`
	Payment       Payment   `bun:"embed:payment_" json:"payment"`
	CheckIn       CheckIn   `bun:"embed:check_in_" json:"checkIn"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero" json:"updatedAt,omitempty"`
}

// BookingRequest is the payload for booking a seat. Row/column are optional
// cross-checks against the stored grid.
type BookingRequest struct {
	EventID       string `json:"eventId"`
	SeatNumber    string `json:"seatNumber"`
	SeatRow       string `json:"seatRow,omitempty"`
	SeatColumn    int    `json:"seatColumn,omitempty"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
}

// ValidateRequest is the check-in payload: the scanned QR data plus an
// optional gate location.
type ValidateRequest struct {
	QRCode   string `json:"qrCode"`
	Location string `json:"location,omitempty"`
}

// TicketSummary is the check-in confirmation returned to the scanner.
type TicketSummary struct {
	ID          string    `json:"id"`
	Event       string    `json:"event"`
	Date        time.Time `json:"date"`
	Time        string    `json:"time"`
	Venue       string    `json:"venue"`
	SeatNumber  string    `json:"seatNumber"`
	Attendee    string    `json:"attendee"`
	CheckInTime time.Time `json:"checkInTime"`
	Location    string    `json:"location"`
}

// AvailabilityView is the derived seat map for one event: the full grid
// with seats held by non-cancelled tickets marked booked.
type AvailabilityView struct {
	EventID              string  `json:"eventId"`
	TotalSeats           int     `json:"totalSeats"`
	AvailableSeats       int     `json:"availableSeats"`
	BookedSeats          int     `json:"bookedSeats"`
	SeatMap              SeatMap `json:"seatMap"`
	AvailableSeatNumbers []string `json:"availableSeatNumbers"`
}

// EventTicketStats is the per-status breakdown for one event.
type EventTicketStats struct {
	EventID      string        `json:"eventId"`
	TotalTickets int           `json:"totalTickets"`
	TotalRevenue float64       `json:"totalRevenue"`
	Breakdown    []StatusCount `json:"breakdown"`
	Summary      StatsSummary  `json:"summary"`
}

type StatusCount struct {
	Status  string  `bun:"status" json:"status"`
	Count   int     `bun:"count" json:"count"`
	Revenue float64 `bun:"revenue" json:"revenue"`
}

type StatsSummary struct {
	Active    int `json:"active"`
	Used      int `json:"used"`
	Cancelled int `json:"cancelled"`
}
