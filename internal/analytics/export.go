package analytics

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"eventx/internal/models"
)

var exportHeader = []string{
	"id", "title", "category", "status", "date", "venue", "city",
	"price", "total_seats", "available_seats", "tickets_sold", "revenue",
}

// ExportEventsCSV streams the full event catalog with per-event sales.
func (s *Service) ExportEventsCSV(ctx context.Context, w io.Writer) error {
	var events []models.Event
	if err := s.db.NewSelect().Model(&events).Order("date ASC").Scan(ctx); err != nil {
		return err
	}

	perf, err := s.GetEventPerformance(ctx)
	if err != nil {
		return err
	}
	salesByEvent := make(map[string]EventPerformance, len(perf))
	for _, p := range perf {
		salesByEvent[p.EventID] = p
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, e := range events {
		sale := salesByEvent[e.ID]
		record := []string{
			e.ID,
			e.Title,
			e.Category,
			e.Status,
			e.Date.Format("2006-01-02"),
			e.VenueName,
			e.VenueCity,
			strconv.FormatFloat(e.Price, 'f', 2, 64),
			strconv.Itoa(e.TotalSeats),
			strconv.Itoa(e.AvailableSeats),
			strconv.Itoa(sale.TicketsSold),
			strconv.FormatFloat(sale.Revenue, 'f', 2, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
