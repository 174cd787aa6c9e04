// Package analytics aggregates sales and audience numbers for the admin
// dashboard. Month and bucket grouping happens in Go so the same queries
// run against Postgres and the in-memory test database.
package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/uptrace/bun"

	"eventx/internal/models"
)

// Service handles analytics aggregations.
type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// Summary is the top-line dashboard card.
type Summary struct {
	TotalEvents   int     `json:"totalEvents"`
	TotalUsers    int     `json:"totalUsers"`
	TotalTickets  int     `json:"totalTickets"`
	ActiveTickets int     `json:"activeTickets"`
	TotalRevenue  float64 `json:"totalRevenue"`
}

// MonthlyRevenue is one month of payment volume.
type MonthlyRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
	Tickets int     `json:"tickets"`
}

// EventPerformance measures one event's sales against its capacity.
type EventPerformance struct {
	EventID       string  `json:"eventId"`
	Title         string  `json:"title"`
	Status        string  `json:"status"`
	TotalSeats    int     `json:"totalSeats"`
	TicketsSold   int     `json:"ticketsSold"`
	Revenue       float64 `json:"revenue"`
	OccupancyRate float64 `json:"occupancyRate"`
}

// EngagementBucket is one slice of the audience breakdown.
type EngagementBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// UserEngagement buckets the audience by age, gender and location.
type UserEngagement struct {
	AgeGroups []EngagementBucket `json:"ageGroups"`
	Genders   []EngagementBucket `json:"genders"`
	Locations []EngagementBucket `json:"locations"`
}

// DashboardStats backs the admin landing page.
type DashboardStats struct {
	Summary        Summary        `json:"summary"`
	RecentEvents   []models.Event `json:"recentEvents"`
	UpcomingEvents []models.Event `json:"upcomingEvents"`
}

// NetSales is revenue in a period after subtracting cancelled tickets.
type NetSales struct {
	From           time.Time `json:"from"`
	To             time.Time `json:"to"`
	GrossRevenue   float64   `json:"grossRevenue"`
	CancelledValue float64   `json:"cancelledValue"`
	NetRevenue     float64   `json:"netRevenue"`
	TicketsSold    int       `json:"ticketsSold"`
}

// GetSummary returns the top-line totals. Revenue counts non-cancelled
// tickets only.
func (s *Service) GetSummary(ctx context.Context) (*Summary, error) {
	summary := &Summary{}

	var err error
	if summary.TotalEvents, err = s.db.NewSelect().Model((*models.Event)(nil)).Count(ctx); err != nil {
		return nil, err
	}
	if summary.TotalUsers, err = s.db.NewSelect().Model((*models.User)(nil)).Count(ctx); err != nil {
		return nil, err
	}
	if summary.TotalTickets, err = s.db.NewSelect().Model((*models.Ticket)(nil)).Count(ctx); err != nil {
		return nil, err
	}
	if summary.ActiveTickets, err = s.db.NewSelect().
		Model((*models.Ticket)(nil)).
		Where("status = ?", models.TicketActive).
		Count(ctx); err != nil {
		return nil, err
	}

	err = s.db.NewRaw(
		"SELECT COALESCE(SUM(price), 0) FROM tickets WHERE status != ?",
		models.TicketCancelled,
	).Scan(ctx, &summary.TotalRevenue)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// GetMonthlyPayments aggregates completed payments per calendar month,
// optionally restricted to a date range.
func (s *Service) GetMonthlyPayments(ctx context.Context, from, to time.Time) ([]MonthlyRevenue, error) {
	var rows []struct {
		PurchaseDate time.Time `bun:"purchase_date"`
		Amount       float64   `bun:"payment_amount"`
	}
	q := s.db.NewSelect().
		Model((*models.Ticket)(nil)).
		Column("purchase_date", "payment_amount").
		Where("payment_status = ?", models.PaymentCompleted).
		Where("status != ?", models.TicketCancelled)
	if !from.IsZero() {
		q = q.Where("purchase_date >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("purchase_date <= ?", to)
	}
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, err
	}

	byMonth := make(map[string]*MonthlyRevenue)
	for _, r := range rows {
		month := r.PurchaseDate.Format("2006-01")
		m, ok := byMonth[month]
		if !ok {
			m = &MonthlyRevenue{Month: month}
			byMonth[month] = m
		}
		m.Revenue += r.Amount
		m.Tickets++
	}

	out := make([]MonthlyRevenue, 0, len(byMonth))
	for _, m := range byMonth {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

// GetEventPerformance ranks events by occupancy.
func (s *Service) GetEventPerformance(ctx context.Context) ([]EventPerformance, error) {
	var events []models.Event
	if err := s.db.NewSelect().Model(&events).Order("date ASC").Scan(ctx); err != nil {
		return nil, err
	}

	var sales []struct {
		EventID string  `bun:"event_id"`
		Sold    int     `bun:"sold"`
		Revenue float64 `bun:"revenue"`
	}
	err := s.db.NewRaw(`
		SELECT
			event_id,
			COUNT(*) AS sold,
			COALESCE(SUM(price), 0) AS revenue
		FROM tickets
		WHERE status != ?
		GROUP BY event_id
	`, models.TicketCancelled).Scan(ctx, &sales)
	if err != nil {
		return nil, err
	}

	salesByEvent := make(map[string]struct {
		Sold    int
		Revenue float64
	}, len(sales))
	for _, row := range sales {
		salesByEvent[row.EventID] = struct {
			Sold    int
			Revenue float64
		}{row.Sold, row.Revenue}
	}

	out := make([]EventPerformance, 0, len(events))
	for _, e := range events {
		perf := EventPerformance{
			EventID:    e.ID,
			Title:      e.Title,
			Status:     e.Status,
			TotalSeats: e.TotalSeats,
		}
		if sale, ok := salesByEvent[e.ID]; ok {
			perf.TicketsSold = sale.Sold
			perf.Revenue = sale.Revenue
		}
		if e.TotalSeats > 0 {
			perf.OccupancyRate = float64(perf.TicketsSold) / float64(e.TotalSeats)
		}
		out = append(out, perf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccupancyRate > out[j].OccupancyRate })
	return out, nil
}

// GetUserEngagement buckets the audience demographics.
func (s *Service) GetUserEngagement(ctx context.Context) (*UserEngagement, error) {
	var users []models.User
	if err := s.db.NewSelect().Model(&users).Scan(ctx); err != nil {
		return nil, err
	}

	ages := make(map[string]int)
	genders := make(map[string]int)
	locations := make(map[string]int)
	for i := range users {
		ages[users[i].AgeGroup()]++
		gender := users[i].Gender
		if gender == "" {
			gender = "Not specified"
		}
		genders[gender]++
		location := users[i].City
		if location == "" {
			location = "Not specified"
		}
		locations[location]++
	}

	return &UserEngagement{
		AgeGroups: toBuckets(ages),
		Genders:   toBuckets(genders),
		Locations: toBuckets(locations),
	}, nil
}

func toBuckets(counts map[string]int) []EngagementBucket {
	out := make([]EngagementBucket, 0, len(counts))
	for label, count := range counts {
		out = append(out, EngagementBucket{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// GetDashboardStats combines the summary with recent and upcoming events.
func (s *Service) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	summary, err := s.GetSummary(ctx)
	if err != nil {
		return nil, err
	}

	var recent []models.Event
	err = s.db.NewSelect().
		Model(&recent).
		Order("created_at DESC").
		Limit(5).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	var upcoming []models.Event
	err = s.db.NewSelect().
		Model(&upcoming).
		Where("date > ?", time.Now()).
		Where("status IN (?)", bun.In([]string{models.EventUpcoming, models.EventActive})).
		Order("date ASC").
		Limit(5).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		Summary:        *summary,
		RecentEvents:   recent,
		UpcomingEvents: upcoming,
	}, nil
}

// GetNetSales reports gross, cancelled and net revenue for a period.
func (s *Service) GetNetSales(ctx context.Context, from, to time.Time) (*NetSales, error) {
	if to.IsZero() {
		to = time.Now()
	}
	if from.IsZero() {
		from = to.AddDate(0, -1, 0)
	}

	net := &NetSales{From: from, To: to}

	err := s.db.NewRaw(`
		SELECT COALESCE(SUM(price), 0)
		FROM tickets
		WHERE purchase_date >= ? AND purchase_date <= ?
	`, from, to).Scan(ctx, &net.GrossRevenue)
	if err != nil {
		return nil, err
	}

	err = s.db.NewRaw(`
		SELECT COALESCE(SUM(price), 0)
		FROM tickets
		WHERE purchase_date >= ? AND purchase_date <= ? AND status = ?
	`, from, to, models.TicketCancelled).Scan(ctx, &net.CancelledValue)
	if err != nil {
		return nil, err
	}

	err = s.db.NewRaw(`
		SELECT COUNT(*)
		FROM tickets
		WHERE purchase_date >= ? AND purchase_date <= ? AND status != ?
	`, from, to, models.TicketCancelled).Scan(ctx, &net.TicketsSold)
	if err != nil {
		return nil, err
	}

	net.NetRevenue = net.GrossRevenue - net.CancelledValue
	return net, nil
}
