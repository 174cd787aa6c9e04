// Package db is the transactional store behind the seat allocator. The
// booking and cancellation sequences run inside a single transaction and
// flip seat status with conditional updates, so of two concurrent attempts
// on the same seat at most one can succeed.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventx/internal/apperr"
	"eventx/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// GetEventByID fetches one event.
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

// GetTicketByID fetches one ticket.
func (d *DB) GetTicketByID(ctx context.Context, id string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := d.Bun.NewSelect().
		Model(&ticket).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Ticket not found")
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// GetUserByID fetches one user, for check-in summaries.
func (d *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetTicketsByUser returns a user's tickets, newest purchase first.
func (d *DB) GetTicketsByUser(ctx context.Context, userID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("user_id = ?", userID).
		Order("purchase_date DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// GetBookedSeatNumbers returns the seat numbers held by non-cancelled
// tickets of an event. This feeds the derived availability view.
func (d *DB) GetBookedSeatNumbers(ctx context.Context, eventID string) ([]string, error) {
	var seatNumbers []string
	err := d.Bun.NewSelect().
		Model((*models.Ticket)(nil)).
		Column("seat_number").
		Where("event_id = ?", eventID).
		Where("status != ?", models.TicketCancelled).
		Scan(ctx, &seatNumbers)
	if err != nil {
		return nil, err
	}
	return seatNumbers, nil
}

// BookSeat commits the three booking effects atomically: the ticket row is
// created, the event's available-seat counter is decremented and the seat
// flips available→paid. The ticket's price fields are filled from the event
// inside the transaction. Any precondition failure rolls everything back.
func (d *DB) BookSeat(ctx context.Context, ticket *models.Ticket) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var event models.Event
		err := tx.NewSelect().
			Model(&event).
			Where("id = ?", ticket.EventID).
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("Event not found")
		}
		if err != nil {
			return err
		}

		// Guarded decrement: zero rows means the event is sold out.
		res, err := tx.NewUpdate().
			Model((*models.Event)(nil)).
			Set("available_seats = available_seats - 1").
			Set("updated_at = ?", time.Now()).
			Where("id = ?", ticket.EventID).
			Where("available_seats >= 1").
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.Conflict("No available seats")
		}

		// A non-cancelled ticket on the seat is a double booking.
		exists, err := tx.NewSelect().
			Model((*models.Ticket)(nil)).
			Where("event_id = ?", ticket.EventID).
			Where("seat_number = ?", ticket.SeatNumber).
			Where("status != ?", models.TicketCancelled).
			Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflict("Seat already taken")
		}

		var seat models.Seat
		err = tx.NewSelect().
			Model(&seat).
			Where("event_id = ?", ticket.EventID).
			Where("seat_number = ?", ticket.SeatNumber).
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.BadRequest("Invalid seat coordinates")
		}
		if err != nil {
			return err
		}

		// Optional cross-validation of the requested coordinates.
		if ticket.SeatRow != "" && ticket.SeatColumn > 0 {
			if seat.Row != ticket.SeatRow || seat.Column != ticket.SeatColumn {
				return apperr.BadRequest("Invalid seat coordinates")
			}
		}

		// Compare-and-swap on the seat status. Zero rows affected means a
		// concurrent booking won the seat between our read and this write.
		res, err = tx.NewUpdate().
			Model((*models.Seat)(nil)).
			Set("status = ?", models.SeatPaid).
			Where("event_id = ?", ticket.EventID).
			Where("seat_number = ?", ticket.SeatNumber).
			Where("status = ?", models.SeatAvailable).
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.Conflict("Seat is not available")
		}

		ticket.SeatRow = seat.Row
		ticket.SeatColumn = seat.Column
		ticket.Price = seat.Price
		ticket.OriginalPrice = seat.Price
		ticket.Payment.Amount = seat.Price

		if _, err := tx.NewInsert().Model(ticket).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert ticket: %w", err)
		}
		return nil
	})
}

// CancelTicket does the inverse of BookSeat atomically: ticket →
// cancelled, seat back to available, available-seat counter incremented.
// Cancelling an already-cancelled ticket is rejected, not a no-op.
func (d *DB) CancelTicket(ctx context.Context, ticketID, userID string, isAdmin bool) (*models.Ticket, error) {
	var ticket models.Ticket
	err := d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(&ticket).
			Where("id = ?", ticketID).
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("Ticket not found")
		}
		if err != nil {
			return err
		}

		if !isAdmin && ticket.UserID != userID {
			return apperr.Forbidden("Not authorized to cancel this ticket")
		}
		if ticket.Status == models.TicketCancelled {
			return apperr.Conflict("Ticket already cancelled")
		}

		ticket.Status = models.TicketCancelled
		ticket.UpdatedAt = time.Now()
		res, err := tx.NewUpdate().
			Model(&ticket).
			Column("status", "updated_at").
			Where("id = ?", ticket.ID).
			Where("status != ?", models.TicketCancelled).
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.Conflict("Ticket already cancelled")
		}

		if _, err := tx.NewUpdate().
			Model((*models.Seat)(nil)).
			Set("status = ?", models.SeatAvailable).
			Where("event_id = ?", ticket.EventID).
			Where("seat_number = ?", ticket.SeatNumber).
			Exec(ctx); err != nil {
			return err
		}

		if _, err := tx.NewUpdate().
			Model((*models.Event)(nil)).
			Set("available_seats = available_seats + 1").
			Set("updated_at = ?", time.Now()).
			Where("id = ?", ticket.EventID).
			Where("available_seats < total_seats").
			Exec(ctx); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// MarkUsed transitions active→used with the check-in record. The
// conditional update keeps a second scanner from validating the same
// ticket twice.
func (d *DB) MarkUsed(ctx context.Context, ticketID, checkedInBy, location string) (*models.Ticket, error) {
	now := time.Now()
	res, err := d.Bun.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("status = ?", models.TicketUsed).
		Set("check_in_checked_in = ?", true).
		Set("check_in_checked_in_at = ?", now).
		Set("check_in_checked_in_by = ?", checkedInBy).
		Set("check_in_location = ?", location).
		Set("updated_at = ?", now).
		Where("id = ?", ticketID).
		Where("status = ?", models.TicketActive).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperr.Conflict("Ticket is not active")
	}
	return d.GetTicketByID(ctx, ticketID)
}

// GetEventTicketStats aggregates ticket counts and revenue per status.
func (d *DB) GetEventTicketStats(ctx context.Context, eventID string) ([]models.StatusCount, error) {
	var breakdown []models.StatusCount
	err := d.Bun.NewSelect().
		Model((*models.Ticket)(nil)).
		ColumnExpr("status").
		ColumnExpr("COUNT(*) AS count").
		ColumnExpr("SUM(price) AS revenue").
		Where("event_id = ?", eventID).
		Group("status").
		Scan(ctx, &breakdown)
	if err != nil {
		return nil, err
	}
	return breakdown, nil
}
