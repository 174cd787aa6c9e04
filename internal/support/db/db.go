// Package db is the bun-backed support store. Reads pull the response
// thread with the ticket.
package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"eventx/internal/apperr"
	"eventx/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) ListAll(ctx context.Context, status string) ([]models.SupportTicket, error) {
	var tickets []models.SupportTicket
	q := d.Bun.NewSelect().
		Model(&tickets).
		Relation("Responses").
		Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (d *DB) ListByUser(ctx context.Context, userID string) ([]models.SupportTicket, error) {
	var tickets []models.SupportTicket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Relation("Responses").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (d *DB) GetByID(ctx context.Context, id string) (*models.SupportTicket, error) {
	var t models.SupportTicket
	err := d.Bun.NewSelect().
		Model(&t).
		Relation("Responses").
		Where("support_ticket.id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Support ticket not found")
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (d *DB) Insert(ctx context.Context, t *models.SupportTicket) error {
	_, err := d.Bun.NewInsert().Model(t).Exec(ctx)
	return err
}

func (d *DB) InsertResponse(ctx context.Context, r *models.SupportResponse) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(r).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewUpdate().
			Model((*models.SupportTicket)(nil)).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", r.SupportTicketID).
			Exec(ctx)
		return err
	})
}

func (d *DB) SetStatus(ctx context.Context, id, status string) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.SupportTicket)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("Support ticket not found")
	}
	return nil
}
