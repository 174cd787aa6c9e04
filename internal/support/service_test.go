package support_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"eventx/internal/apperr"
	"eventx/internal/logger"
	"eventx/internal/models"
	"eventx/internal/support"
	supportdb "eventx/internal/support/db"
)

func setupService(t *testing.T) *support.Service {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, bunDB.ResetModel(context.Background(),
		(*models.SupportTicket)(nil), (*models.SupportResponse)(nil)))
	t.Cleanup(func() { _ = bunDB.Close() })

	return support.NewService(&supportdb.DB{Bun: bunDB}, logger.NewLogger())
}

func customer() *models.User {
	return &models.User{
		ID:    "u1",
		Name:  "Kumari Silva",
		Email: "kumari@example.com",
		Role:  models.RoleUser,
	}
}

func admin() *models.User {
	return &models.User{
		ID:    "a1",
		Name:  "Admin",
		Email: "admin@example.com",
		Role:  models.RoleAdmin,
	}
}

func TestCreateDefaults(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, customer(), support.CreateRequest{
		Subject: "Refund request",
		Message: "Event was cancelled, please refund ticket T-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "medium", ticket.Priority)
	assert.Equal(t, "general", ticket.Category)
	assert.Equal(t, models.SupportOpen, ticket.Status)
	assert.Equal(t, "kumari@example.com", ticket.UserEmail)

	_, err = svc.Create(ctx, customer(), support.CreateRequest{Subject: " ", Message: "x"})
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
}

func TestRespondThread(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, customer(), support.CreateRequest{
		Subject: "QR code not loading",
		Message: "The app shows a blank square",
	})
	require.NoError(t, err)

	reply, err := svc.Respond(ctx, admin(), true, ticket.ID, support.RespondRequest{
		Message: "Please update the app and retry",
	})
	require.NoError(t, err)
	assert.True(t, reply.FromAdmin)

	_, err = svc.Respond(ctx, customer(), false, ticket.ID, support.RespondRequest{
		Message: "That fixed it, thanks",
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, "u1", false, ticket.ID)
	require.NoError(t, err)
	require.Len(t, got.Responses, 2)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestRespondGuards(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, customer(), support.CreateRequest{
		Subject: "Seat mixup",
		Message: "Booked A001, got A002",
	})
	require.NoError(t, err)

	stranger := &models.User{ID: "u2", Name: "Other", Email: "other@example.com"}
	_, err = svc.Respond(ctx, stranger, false, ticket.ID, support.RespondRequest{Message: "hi"})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	require.NoError(t, svc.Close(ctx, "u1", false, ticket.ID))
	_, err = svc.Respond(ctx, customer(), false, ticket.ID, support.RespondRequest{Message: "more"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestCloseTwice(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, customer(), support.CreateRequest{
		Subject: "Duplicate charge",
		Message: "Charged twice for one booking",
	})
	require.NoError(t, err)

	err = svc.Close(ctx, "u2", false, ticket.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	require.NoError(t, svc.Close(ctx, "a1", true, ticket.ID))
	err = svc.Close(ctx, "a1", true, ticket.ID)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestAdminQueue(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, customer(), support.CreateRequest{
		Subject: "First", Message: "m", Priority: "high",
	})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = svc.Create(ctx, customer(), support.CreateRequest{Subject: "Second", Message: "m"})
	require.NoError(t, err)
	require.NoError(t, svc.Close(ctx, "u1", false, first.ID))

	all, err := svc.ListAll(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Second", all[0].Subject)

	open, err := svc.ListAll(ctx, models.SupportOpen)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "Second", open[0].Subject)

	_, err = svc.ListAll(ctx, "pending")
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	mine, err := svc.ListForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = svc.Get(ctx, "u2", false, first.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}
