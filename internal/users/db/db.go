// Package db is the users store.
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

func (d *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("lower(email) = lower(?)", email).
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

func (d *DB) CreateUser(ctx context.Context, user *models.User) error {
	exists, err := d.Bun.NewSelect().
		Model((*models.User)(nil)).
		Where("lower(email) = lower(?)", user.Email).
		Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return apperr.Conflict("Email already registered")
	}
	_, err = d.Bun.NewInsert().Model(user).Exec(ctx)
	return err
}

func (d *DB) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	res, err := d.Bun.NewUpdate().
		Model(user).
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}

// ListUsers pages through every account, newest first.
func (d *DB) ListUsers(ctx context.Context, page, perPage int) ([]models.User, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	q := d.Bun.NewSelect().Model((*models.User)(nil))
	total, err := q.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	var users []models.User
	err = q.
		Order("created_at DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Scan(ctx, &users)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (d *DB) DeleteUser(ctx context.Context, id string) error {
	res, err := d.Bun.NewDelete().
		Model((*models.User)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}

func (d *DB) CountUsers(ctx context.Context) (int, error) {
	return d.Bun.NewSelect().Model((*models.User)(nil)).Count(ctx)
}
