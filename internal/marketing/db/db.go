// Package db is the bun-backed campaigns store.
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

func (d *DB) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	err := d.Bun.NewSelect().
		Model(&campaigns).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (d *DB) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	var c models.Campaign
	err := d.Bun.NewSelect().
		Model(&c).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Campaign not found")
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (d *DB) InsertCampaign(ctx context.Context, c *models.Campaign) error {
	_, err := d.Bun.NewInsert().Model(c).Exec(ctx)
	return err
}

func (d *DB) UpdateCampaign(ctx context.Context, c *models.Campaign) error {
	c.UpdatedAt = time.Now()
	res, err := d.Bun.NewUpdate().Model(c).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("Campaign not found")
	}
	return nil
}

func (d *DB) DeleteCampaign(ctx context.Context, id string) error {
	res, err := d.Bun.NewDelete().
		Model((*models.Campaign)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("Campaign not found")
	}
	return nil
}
