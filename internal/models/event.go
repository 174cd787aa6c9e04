package models

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// Event lifecycle statuses.
const (
	EventUpcoming  = "upcoming"
	EventPending   = "pending"
	EventActive    = "active"
	EventCompleted = "completed"
	EventCancelled = "cancelled"
	EventClosed    = "closed"
)

func ValidEventStatus(s string) bool {
	switch s {
	case EventUpcoming, EventPending, EventActive, EventCompleted, EventCancelled, EventClosed:
		return true
	}
	return false
}

type Venue struct {
	Name    string `json:"name"`
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
}

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID             string    `bun:"id,pk" json:"id"`
	Title          string    `bun:"title,notnull" json:"title"`
	Description    string    `bun:"description,notnull" json:"description"`
	Date           time.Time `bun:"date,notnull" json:"date"`
	StartTime      string    `bun:"start_time,notnull" json:"startTime"`
	EndTime        string    `bun:"end_time,notnull" json:"endTime"`
	VenueName      string    `bun:"venue_name,notnull" json:"-"`
	VenueStreet    string    `bun:"venue_street,nullzero" json:"-"`
	VenueCity      string    `bun:"venue_city,nullzero" json:"-"`
	VenueState     string    `bun:"venue_state,nullzero" json:"-"`
	VenueCountry   string    `bun:"venue_country,nullzero" json:"-"`
	VenueZipCode   string    `bun:"venue_zip_code,nullzero" json:"-"`
	Price          float64   `bun:"price,notnull" json:"price"`
	TotalSeats     int       `bun:"total_seats,notnull" json:"totalSeats"`
	AvailableSeats int       `bun:"available_seats,notnull" json:"availableSeats"`
	SeatRows       int       `bun:"seat_rows,notnull" json:"seatRows"`
	SeatColumns    int       `bun:"seat_columns,notnull" json:"seatColumns"`
	Category       string    `bun:"category,notnull" json:"category"`
	Tags           []string  `bun:"tags" json:"tags"`
	Status         string    `bun:"status,notnull,default:'upcoming'" json:"status"`
	Popularity     string    `bun:"popularity,notnull,default:'Medium'" json:"popularity"`
	ExpectedAttend int       `bun:"expected_attendance,nullzero" json:"expectedAttendance,omitempty"`
	OrganizerID    string    `bun:"organizer_id,notnull" json:"organizerId"`
	Image          string    `bun:"image,nullzero" json:"image,omitempty"`
	QRCodeData     string    `bun:"qr_code_data,nullzero" json:"qrCodeData,omitempty"`
	CreatedAt      time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero" json:"updatedAt,omitempty"`
}

// MarshalJSON nests the flattened venue columns back under "venue" so API
// responses mirror the shape clients submit.
func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	return json.Marshal(struct {
		plain
		Venue Venue `json:"venue"`
	}{plain(e), e.Venue()})
}

func (e *Event) Venue() Venue {
	return Venue{
		Name:    e.VenueName,
		Street:  e.VenueStreet,
		City:    e.VenueCity,
		State:   e.VenueState,
		Country: e.VenueCountry,
		ZipCode: e.VenueZipCode,
	}
}

func (e *Event) SetVenue(v Venue) {
	e.VenueName = v.Name
	e.VenueStreet = v.Street
	e.VenueCity = v.City
	e.VenueState = v.State
	e.VenueCountry = v.Country
	e.VenueZipCode = v.ZipCode
}
