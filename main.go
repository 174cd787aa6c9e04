package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"eventx/internal/analytics"
	analytics_api "eventx/internal/analytics/api"
	"eventx/internal/auth"
	"eventx/internal/cache"
	"eventx/internal/categories/category_api"
	"eventx/internal/config"
	"eventx/internal/events"
	eventsdb "eventx/internal/events/db"
	"eventx/internal/events/event_api"
	"eventx/internal/kafka"
	"eventx/internal/logger"
	"eventx/internal/marketing"
	marketingdb "eventx/internal/marketing/db"
	"eventx/internal/marketing/marketing_api"
	"eventx/internal/models"
	"eventx/internal/notifications"
	notificationsdb "eventx/internal/notifications/db"
	"eventx/internal/notifications/notification_api"
	"eventx/internal/payments"
	"eventx/internal/payments/payment_api"
	"eventx/internal/support"
	supportdb "eventx/internal/support/db"
	"eventx/internal/support/support_api"
	"eventx/internal/tickets"
	ticketsdb "eventx/internal/tickets/db"
	"eventx/internal/tickets/ticket_api"
	"eventx/internal/users"
	usersdb "eventx/internal/users/db"
	"eventx/internal/users/user_api"
	"eventx/internal/utils"
)

// noopPublisher stands in when Kafka is disabled.
type noopPublisher struct{}

func (noopPublisher) PublishTicketBooked(models.Ticket) error    { return nil }
func (noopPublisher) PublishTicketCancelled(models.Ticket) error { return nil }
func (noopPublisher) PublishTicketValidated(models.Ticket) error { return nil }
func (noopPublisher) PublishEventCreated(models.Event) error     { return nil }

func connectPostgres(cfg config.DatabaseConfig, log *logger.Logger) *bun.DB {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Connecting to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.DSN)
		if err == nil {
			err = sqldb.Ping()
		}
		if err == nil {
			break
		}
		log.Error("DATABASE", fmt.Sprintf("PostgreSQL connection failed: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Could not connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	log.Info("DATABASE", "PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting EventX service")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}
	cfg := config.Load()

	bunDB := connectPostgres(cfg.Database, log)
	defer bunDB.Close()

	redisClient, err := cache.InitializeRedis(cfg.Redis.Addr, log)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	defer redisClient.Close()
	seatMapCache := cache.NewSeatMapCache(redisClient, cfg.Redis.SeatMapTTL, log)

	topics := kafka.Topics{
		TicketBooked:    cfg.Kafka.Topics.TicketBooked,
		TicketCancelled: cfg.Kafka.Topics.TicketCancelled,
		TicketValidated: cfg.Kafka.Topics.TicketValidated,
		EventCreated:    cfg.Kafka.Topics.EventCreated,
	}
	var ticketPublisher tickets.Publisher = noopPublisher{}
	var eventPublisher events.Publisher = noopPublisher{}
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, topics)
		defer producer.Close()
		required := []string{topics.TicketBooked, topics.TicketCancelled, topics.TicketValidated, topics.EventCreated}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, required); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			log.Info("KAFKA", "Required topics ensured")
		}
		ticketPublisher = producer
		eventPublisher = producer
	} else {
		log.Warn("KAFKA", "Kafka disabled, booking events will not be streamed")
	}

	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	ticketService := tickets.NewTicketService(&ticketsdb.DB{Bun: bunDB}, seatMapCache, ticketPublisher, log)
	eventService := events.NewEventService(&eventsdb.DB{Bun: bunDB}, seatMapCache, eventPublisher, log)
	userService := users.NewUserService(&usersdb.DB{Bun: bunDB}, issuer, log)
	paymentService := payments.NewPaymentService(ticketService, nil, cfg.Payment.SuccessRate, log)
	analyticsService := analytics.NewService(bunDB)
	notificationService := notifications.NewService(&notificationsdb.DB{Bun: bunDB}, log)
	marketingService := marketing.NewService(&marketingdb.DB{Bun: bunDB}, log)
	supportService := support.NewService(&supportdb.DB{Bun: bunDB}, log)

	ticketHandler := ticket_api.NewHandler(ticketService, log)
	eventHandler := event_api.NewHandler(eventService, ticketService, log)
	userHandler := user_api.NewHandler(userService, log)
	paymentHandler := payment_api.NewHandler(paymentService, log)
	analyticsHandler := analytics_api.NewHandler(analyticsService, log)
	notificationHandler := notification_api.NewHandler(notificationService, log)
	marketingHandler := marketing_api.NewHandler(marketingService, log)
	supportHandler := support_api.NewHandler(supportService, userService, log)
	categoryHandler := category_api.NewHandler()

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("ok", nil))
	})

	r.Route("/api", func(r chi.Router) {
		// public surface
		r.Route("/auth", func(r chi.Router) {
			userHandler.RegisterAuthRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(auth.Middleware(issuer))
				userHandler.RegisterUserRoutes(r)
			})
		})
		r.Route("/events", func(r chi.Router) {
			eventHandler.RegisterPublicRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(auth.Middleware(issuer))
				r.Use(auth.RequireAdmin)
				eventHandler.RegisterAdminRoutes(r)
			})
		})
		r.Route("/categories", func(r chi.Router) {
			categoryHandler.RegisterRoutes(r)
		})
		r.Route("/marketing", func(r chi.Router) {
			marketingHandler.RegisterPublicRoutes(r)
		})

		// authenticated surface
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(issuer))

			r.Route("/tickets", ticketHandler.RegisterRoutes)
			r.Route("/payments", paymentHandler.RegisterRoutes)
			r.Route("/notifications", notificationHandler.RegisterRoutes)
			r.Route("/support", supportHandler.RegisterRoutes)
		})

		// admin surface
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(issuer))
			r.Use(auth.RequireAdmin)

			r.Route("/analytics", analyticsHandler.RegisterAnalyticsRoutes)
			r.Route("/admin", func(r chi.Router) {
				analyticsHandler.RegisterAdminRoutes(r)
				r.Route("/users", userHandler.RegisterAdminRoutes)
				r.Route("/notifications", notificationHandler.RegisterAdminRoutes)
				r.Route("/marketing", marketingHandler.RegisterAdminRoutes)
				r.Route("/support", supportHandler.RegisterAdminRoutes)
			})
		})
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("EventX listening on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("APP", "Shutdown signal received, draining connections")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	} else {
		log.Info("HTTP", "Shutdown complete")
	}
}
