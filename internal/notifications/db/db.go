// Package db is the bun-backed notifications store.
package db

import (
	"context"
	"database/sql"
	"errors"

	"eventx/internal/apperr"
	"eventx/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := d.Bun.NewSelect().
		Model(&notifications).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (d *DB) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	err := d.Bun.NewSelect().
		Model(&n).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Notification not found")
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (d *DB) Insert(ctx context.Context, notifications ...*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	_, err := d.Bun.NewInsert().Model(&notifications).Exec(ctx)
	return err
}

func (d *DB) MarkRead(ctx context.Context, id string) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Notification)(nil)).
		Set("read = ?", true).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("Notification not found")
	}
	return nil
}

func (d *DB) MarkAllRead(ctx context.Context, userID string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Notification)(nil)).
		Set("read = ?", true).
		Where("user_id = ?", userID).
		Where("read = ?", false).
		Exec(ctx)
	return err
}

func (d *DB) Delete(ctx context.Context, id string) error {
	res, err := d.Bun.NewDelete().
		Model((*models.Notification)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("Notification not found")
	}
	return nil
}

func (d *DB) AllUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := d.Bun.NewSelect().
		Model((*models.User)(nil)).
		Column("id").
		Scan(ctx, &ids)
	if err != nil {
		return nil, err
	}
	return ids, nil
}
