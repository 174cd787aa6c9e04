// Package db is the events store. Capacity changes run inside a
// transaction because they rewrite the seat grid alongside the event row.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventx/internal/apperr"
	"eventx/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ListFilter narrows and pages the event listing.
type ListFilter struct {
	Status   string
	Category string
	Search   string
	SortBy   string
	SortDir  string
	Page     int
	PerPage  int
}

func (f *ListFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 100 {
		f.PerPage = 20
	}
	switch f.SortBy {
	case "date", "title", "price", "created_at", "available_seats":
	default:
		f.SortBy = "date"
	}
	if !strings.EqualFold(f.SortDir, "desc") {
		f.SortDir = "ASC"
	} else {
		f.SortDir = "DESC"
	}
}

func (d *DB) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Event not found")
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListEvents applies the filter and returns one page plus the total count.
func (d *DB) ListEvents(ctx context.Context, filter ListFilter) ([]models.Event, int, error) {
	filter.normalize()

	q := d.Bun.NewSelect().Model((*models.Event)(nil))
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		q = q.Where("lower(category) = lower(?)", filter.Category)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("lower(title) LIKE ?", pattern).
				WhereOr("lower(description) LIKE ?", pattern).
				WhereOr("lower(venue_name) LIKE ?", pattern).
				WhereOr("lower(venue_city) LIKE ?", pattern)
		})
	}

	total, err := q.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	var events []models.Event
	err = q.
		Order(fmt.Sprintf("%s %s", filter.SortBy, filter.SortDir)).
		Limit(filter.PerPage).
		Offset((filter.Page - 1) * filter.PerPage).
		Scan(ctx, &events)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// ListAllEvents returns every event ordered by date, for the kanban board
// and admin exports.
func (d *DB) ListAllEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Order("date ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// CreateEvent inserts the event row and its generated seat grid together.
func (d *DB) CreateEvent(ctx context.Context, event *models.Event, seats []models.Seat) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(event).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}
		if len(seats) > 0 {
			if _, err := tx.NewInsert().Model(&seats).Exec(ctx); err != nil {
				return fmt.Errorf("failed to insert seats: %w", err)
			}
		}
		return nil
	})
}

// UpdateEvent persists changed columns. Capacity changes go through
// ResizeEvent instead.
func (d *DB) UpdateEvent(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now()
	res, err := d.Bun.NewUpdate().
		Model(event).
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("Event not found")
	}
	return nil
}

// GetSeats returns an event's stored grid, row-major.
func (d *DB) GetSeats(ctx context.Context, eventID string) ([]models.Seat, error) {
	var seats []models.Seat
	err := d.Bun.NewSelect().
		Model(&seats).
		Where("event_id = ?", eventID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return seats, nil
}

// ResizeEvent swaps the seat grid for a regenerated one and updates the
// event row, all in one transaction. The caller has already verified the
// new capacity and preserved seat statuses in the regenerated grid.
func (d *DB) ResizeEvent(ctx context.Context, event *models.Event, seats []models.Seat) error {
	event.UpdatedAt = time.Now()
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.Seat)(nil)).
			Where("event_id = ?", event.ID).
			Exec(ctx); err != nil {
			return err
		}
		if len(seats) > 0 {
			if _, err := tx.NewInsert().Model(&seats).Exec(ctx); err != nil {
				return err
			}
		}
		res, err := tx.NewUpdate().Model(event).WherePK().Exec(ctx)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.NotFound("Event not found")
		}
		return nil
	})
}

// CountTickets counts every ticket referencing an event, cancelled included.
func (d *DB) CountTickets(ctx context.Context, eventID string) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Ticket)(nil)).
		Where("event_id = ?", eventID).
		Count(ctx)
}

// DeleteEvent removes the event and its seat grid.
func (d *DB) DeleteEvent(ctx context.Context, eventID string) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.Seat)(nil)).
			Where("event_id = ?", eventID).
			Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().
			Model((*models.Event)(nil)).
			Where("id = ?", eventID).
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.NotFound("Event not found")
		}
		return nil
	})
}

// SoldSeatCount counts non-cancelled tickets for an event.
func (d *DB) SoldSeatCount(ctx context.Context, eventID string) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Ticket)(nil)).
		Where("event_id = ?", eventID).
		Where("status != ?", models.TicketCancelled).
		Count(ctx)
}
