package seatmap

import (
	"testing"

	"eventx/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDimensions(t *testing.T) {
	tests := []struct {
		totalSeats int
		rows       int
		columns    int
	}{
		{1, 1, 1},
		{2, 2, 1},
		{4, 2, 2},
		{10, 4, 3},
		{100, 10, 10},
		{101, 11, 10},
	}

	for _, tt := range tests {
		rows, columns := Dimensions(tt.totalSeats)
		assert.Equal(t, tt.rows, rows, "rows for %d seats", tt.totalSeats)
		assert.Equal(t, tt.columns, columns, "columns for %d seats", tt.totalSeats)
		assert.GreaterOrEqual(t, rows*columns, tt.totalSeats)
	}
}

func TestGenerateSingleSeat(t *testing.T) {
	sm := Generate("ev1", 1, 50)

	require.Len(t, sm.Seats, 1)
	assert.Equal(t, 1, sm.Rows)
	assert.Equal(t, 1, sm.Columns)
	assert.Equal(t, "A001", sm.Seats[0].SeatNumber)
	assert.Equal(t, models.SeatAvailable, sm.Seats[0].Status)
	assert.Equal(t, 50.0, sm.Seats[0].Price)
}

func TestGenerateTenSeats(t *testing.T) {
	sm := Generate("ev1", 10, 25)

	// 4x3 grid: 12 generated seats, 2 unused filler.
	assert.Equal(t, 4, sm.Rows)
	assert.Equal(t, 3, sm.Columns)
	require.Len(t, sm.Seats, 12)

	assert.Equal(t, "A001", sm.Seats[0].SeatNumber)
	assert.Equal(t, "A003", sm.Seats[2].SeatNumber)
	assert.Equal(t, "B001", sm.Seats[3].SeatNumber)
	assert.Equal(t, "D003", sm.Seats[11].SeatNumber)
}

func TestGenerateDeterministic(t *testing.T) {
	first := Generate("ev1", 10, 25)
	second := Generate("ev1", 10, 25)

	require.Equal(t, len(first.Seats), len(second.Seats))
	for i := range first.Seats {
		assert.Equal(t, first.Seats[i].SeatNumber, second.Seats[i].SeatNumber)
		assert.Equal(t, first.Seats[i].Row, second.Seats[i].Row)
		assert.Equal(t, first.Seats[i].Column, second.Seats[i].Column)
	}
}

func TestGenerateUniqueSeatNumbers(t *testing.T) {
	sm := Generate("ev1", 50, 10)

	seen := make(map[string]bool)
	for _, seat := range sm.Seats {
		assert.False(t, seen[seat.SeatNumber], "duplicate seat %s", seat.SeatNumber)
		seen[seat.SeatNumber] = true
	}
}

func TestRegeneratePreservesStatuses(t *testing.T) {
	old := Generate("ev1", 10, 25)
	old.Seats[0].Status = models.SeatPaid     // A001
	old.Seats[4].Status = models.SeatReserved // B002

	grown := Regenerate("ev1", 20, 25, old.Seats)

	assert.Equal(t, 5, grown.Rows)
	assert.Equal(t, 4, grown.Columns)

	byNumber := make(map[string]models.Seat)
	for _, s := range grown.Seats {
		byNumber[s.SeatNumber] = s
	}
	assert.Equal(t, models.SeatPaid, byNumber["A001"].Status)
	assert.Equal(t, models.SeatReserved, byNumber["B002"].Status)
	assert.Equal(t, models.SeatAvailable, byNumber["E004"].Status)
}
