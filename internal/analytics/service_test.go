package analytics_test

import (
	"bytes"
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"eventx/internal/analytics"
	"eventx/internal/models"
)

func setupService(t *testing.T) (*analytics.Service, *bun.DB) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	ctx := context.Background()
	require.NoError(t, bunDB.ResetModel(ctx, (*models.Event)(nil)))
	require.NoError(t, bunDB.ResetModel(ctx, (*models.Ticket)(nil)))
	require.NoError(t, bunDB.ResetModel(ctx, (*models.User)(nil)))
	t.Cleanup(func() { _ = bunDB.Close() })

	return analytics.NewService(bunDB), bunDB
}

func seed(t *testing.T, bunDB *bun.DB) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	events := []models.Event{
		{
			ID: "e1", Title: "Symphony Under the Stars", Description: "d", Date: now.AddDate(0, 0, 14),
			StartTime: "19:00", EndTime: "22:00", VenueName: "Open Air Theatre",
			Price: 2000, TotalSeats: 10, AvailableSeats: 8, SeatRows: 4, SeatColumns: 3,
			Category: "Music", Status: models.EventUpcoming, OrganizerID: "admin1", CreatedAt: now,
		},
		{
			ID: "e2", Title: "Tech Meetup", Description: "d", Date: now.AddDate(0, 0, -7),
			StartTime: "09:00", EndTime: "17:00", VenueName: "Trace Expo",
			Price: 500, TotalSeats: 4, AvailableSeats: 4, SeatRows: 2, SeatColumns: 2,
			Category: "Tech", Status: models.EventCompleted, OrganizerID: "admin1", CreatedAt: now.AddDate(0, -1, 0),
		},
	}
	_, err := bunDB.NewInsert().Model(&events).Exec(ctx)
	require.NoError(t, err)

	tickets := []models.Ticket{
		{
			ID: "t1", EventID: "e1", UserID: "u1", SeatNumber: "A001", SeatRow: "A", SeatColumn: 1,
			Price: 2000, OriginalPrice: 2000, Status: models.TicketActive, QRCodeData: "qr1",
			PurchaseDate: now.AddDate(0, 0, -45), CreatedAt: now,
			Payment: models.Payment{Amount: 2000, Status: models.PaymentCompleted, Currency: "LKR"},
		},
		{
			ID: "t2", EventID: "e1", UserID: "u2", SeatNumber: "A002", SeatRow: "A", SeatColumn: 2,
			Price: 2000, OriginalPrice: 2000, Status: models.TicketActive, QRCodeData: "qr2",
			PurchaseDate: now, CreatedAt: now,
			Payment: models.Payment{Amount: 2000, Status: models.PaymentCompleted, Currency: "LKR"},
		},
		{
			ID: "t3", EventID: "e1", UserID: "u1", SeatNumber: "A003", SeatRow: "A", SeatColumn: 3,
			Price: 2000, OriginalPrice: 2000, Status: models.TicketCancelled, QRCodeData: "qr3",
			PurchaseDate: now, CreatedAt: now,
			Payment: models.Payment{Amount: 2000, Status: models.PaymentRefunded, Currency: "LKR"},
		},
	}
	_, err = bunDB.NewInsert().Model(&tickets).Exec(ctx)
	require.NoError(t, err)

	users := []models.User{
		{ID: "u1", Name: "Amal", Email: "amal@example.com", PasswordHash: "x", Role: models.RoleUser, Age: 22, Gender: "male", City: "Colombo", CreatedAt: now},
		{ID: "u2", Name: "Dilani", Email: "dilani@example.com", PasswordHash: "x", Role: models.RoleUser, Age: 30, Gender: "female", City: "Colombo", CreatedAt: now},
		{ID: "u3", Name: "Ravi", Email: "ravi@example.com", PasswordHash: "x", Role: models.RoleAdmin, CreatedAt: now},
	}
	_, err = bunDB.NewInsert().Model(&users).Exec(ctx)
	require.NoError(t, err)
}

func TestGetSummary(t *testing.T) {
	svc, bunDB := setupService(t)
	seed(t, bunDB)

	summary, err := svc.GetSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalEvents)
	assert.Equal(t, 3, summary.TotalUsers)
	assert.Equal(t, 3, summary.TotalTickets)
	assert.Equal(t, 2, summary.ActiveTickets)
	// Cancelled tickets do not count toward revenue.
	assert.Equal(t, 4000.0, summary.TotalRevenue)
}

func TestGetMonthlyPayments(t *testing.T) {
	svc, bunDB := setupService(t)
	seed(t, bunDB)

	monthly, err := svc.GetMonthlyPayments(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, monthly, 2)

	var total float64
	for _, m := range monthly {
		total += m.Revenue
	}
	assert.Equal(t, 4000.0, total)
	assert.True(t, monthly[0].Month < monthly[1].Month)

	// Range restricted to the current month drops the older payment.
	start := time.Now().AddDate(0, 0, -15)
	monthly, err = svc.GetMonthlyPayments(context.Background(), start, time.Time{})
	require.NoError(t, err)
	require.Len(t, monthly, 1)
	assert.Equal(t, 2000.0, monthly[0].Revenue)
}

func TestGetEventPerformance(t *testing.T) {
	svc, bunDB := setupService(t)
	seed(t, bunDB)

	perf, err := svc.GetEventPerformance(context.Background())
	require.NoError(t, err)
	require.Len(t, perf, 2)

	assert.Equal(t, "e1", perf[0].EventID)
	assert.Equal(t, 2, perf[0].TicketsSold)
	assert.Equal(t, 4000.0, perf[0].Revenue)
	assert.InDelta(t, 0.2, perf[0].OccupancyRate, 1e-9)

	assert.Equal(t, "e2", perf[1].EventID)
	assert.Equal(t, 0, perf[1].TicketsSold)
}

func TestGetUserEngagement(t *testing.T) {
	svc, bunDB := setupService(t)
	seed(t, bunDB)

	engagement, err := svc.GetUserEngagement(context.Background())
	require.NoError(t, err)

	buckets := make(map[string]int)
	for _, b := range engagement.AgeGroups {
		buckets[b.Label] = b.Count
	}
	assert.Equal(t, 1, buckets["18 - 24"])
	assert.Equal(t, 1, buckets["25 - 34"])
	assert.Equal(t, 1, buckets["Not specified"])

	require.NotEmpty(t, engagement.Locations)
	assert.Equal(t, "Colombo", engagement.Locations[0].Label)
	assert.Equal(t, 2, engagement.Locations[0].Count)
}

func TestGetDashboardStats(t *testing.T) {
	svc, bunDB := setupService(t)
	seed(t, bunDB)

	stats, err := svc.GetDashboardStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Summary.TotalEvents)
	assert.Len(t, stats.RecentEvents, 2)
	require.Len(t, stats.UpcomingEvents, 1)
	assert.Equal(t, "e1", stats.UpcomingEvents[0].ID)
}

func TestGetNetSales(t *testing.T) {
	svc, bunDB := setupService(t)
	seed(t, bunDB)

	from := time.Now().AddDate(0, 0, -60)
	net, err := svc.GetNetSales(context.Background(), from, time.Now().Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 6000.0, net.GrossRevenue)
	assert.Equal(t, 2000.0, net.CancelledValue)
	assert.Equal(t, 4000.0, net.NetRevenue)
	assert.Equal(t, 2, net.TicketsSold)
}

func TestExportEventsCSV(t *testing.T) {
	svc, bunDB := setupService(t)
	seed(t, bunDB)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportEventsCSV(context.Background(), &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "id,title,category"))
	assert.Contains(t, buf.String(), "Symphony Under the Stars")
	assert.Contains(t, buf.String(), "4000.00")
}
