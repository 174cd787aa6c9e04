// Package seatmap generates the deterministic rectangular seat grid an
// event owns. rows = ceil(sqrt(totalSeats)), columns = ceil(totalSeats/rows),
// enumerated row-major. Seat numbers are the row letter plus the 1-based
// column zero-padded to three digits ("A001"). rows*columns may exceed
// totalSeats; trailing seats are unused filler and callers must not assume
// len(seats) == totalSeats.
package seatmap

import (
	"fmt"
	"math"

	"eventx/internal/models"
)

// MaxRows caps the grid: row labels are single letters 'A'..'Z'.
const MaxRows = 26

// Dimensions computes the grid shape for a capacity.
func Dimensions(totalSeats int) (rows, columns int) {
	if totalSeats < 1 {
		return 0, 0
	}
	rows = int(math.Ceil(math.Sqrt(float64(totalSeats))))
	columns = int(math.Ceil(float64(totalSeats) / float64(rows)))
	return rows, columns
}

// SeatNumber derives the label for a zero-based row and column index.
func SeatNumber(row, col int) string {
	return fmt.Sprintf("%c%03d", 'A'+row, col+1)
}

// Generate builds the full grid for an event. Every seat starts available
// at the event's default price.
func Generate(eventID string, totalSeats int, price float64) models.SeatMap {
	rows, columns := Dimensions(totalSeats)
	if rows > MaxRows {
		rows = MaxRows
	}

	seats := make([]models.Seat, 0, rows*columns)
	for row := 0; row < rows; row++ {
		for col := 0; col < columns; col++ {
			seats = append(seats, models.Seat{
				EventID:    eventID,
				Row:        string(rune('A' + row)),
				Column:     col + 1,
				SeatNumber: SeatNumber(row, col),
				Status:     models.SeatAvailable,
				Price:      price,
			})
		}
	}

	return models.SeatMap{Rows: rows, Columns: columns, Seats: seats}
}

// Regenerate builds the grid for a new capacity while preserving the
// status of seats that already exist in the old grid. Booked seats keep
// their paid/reserved markers when capacity grows; shrinking below the
// sold count must be rejected by the caller before getting here.
func Regenerate(eventID string, totalSeats int, price float64, existing []models.Seat) models.SeatMap {
	statusByNumber := make(map[string]string, len(existing))
	for _, s := range existing {
		if s.Status != models.SeatAvailable {
			statusByNumber[s.SeatNumber] = s.Status
		}
	}

	sm := Generate(eventID, totalSeats, price)
	for i := range sm.Seats {
		if status, ok := statusByNumber[sm.Seats[i].SeatNumber]; ok {
			sm.Seats[i].Status = status
		}
	}
	return sm
}
