// Package app wires configuration into the stores, gateways and services shared by the
// server and the cronjob runner.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ubertool-booking/internal/config"
	"ubertool-booking/internal/events"
	"ubertool-booking/internal/lock"
	"ubertool-booking/internal/logger"
	"ubertool-booking/internal/payment"
	"ubertool-booking/internal/repository/postgres"
	"ubertool-booking/internal/security"
	"ubertool-booking/internal/service"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

type App struct {
	DB         *sql.DB
	Store      *postgres.Store
	Redis      *redis.Client
	Publisher  events.Publisher
	Dispatcher *service.NotificationDispatcher

	Payments      payment.Gateway
	Tokens        security.TokenManager
	Bookings      service.BookingService
	Notifications service.NotificationService
	Reports       service.ReportService
}

// New connects to every backing service. Optional integrations without credentials fall back
// to local implementations so a developer machine only needs Postgres.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	logger.Debug("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.DB = db
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("Database connection established")

	if cfg.Database.MigrationsDir != "" {
		if err := postgres.RunMigrations(db, cfg.Database.MigrationsDir); err != nil {
			return nil, err
		}
	}
	a.Store = postgres.NewStore(db)

	var locker lock.Locker = lock.NoopLocker{}
	if cfg.Redis.Addr != "" {
		a.Redis = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		locker = lock.NewRedisLocker(a.Redis, "ubertool:")
		logger.Info("Redis booking lock enabled", "addr", cfg.Redis.Addr)
	} else {
		logger.Warn("Redis not configured, relying on the database constraint alone")
	}

	if cfg.Stripe.SecretKey != "" {
		a.Payments = payment.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, nil)
	} else {
		logger.Warn("Stripe not configured, using the local payment gateway")
		a.Payments = payment.LocalGateway{}
	}

	a.Publisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		a.Publisher = events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic), cfg.Kafka.Topic)
		logger.Info("Publishing booking events to Kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	push, err := service.NewPushSender(ctx, cfg.Firebase.CredentialsFile)
	if err != nil {
		return nil, err
	}
	email := service.NewEmailSender(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)

	a.Dispatcher = service.NewNotificationDispatcher(
		a.Store.NotificationRepository,
		a.Store.UserRepository,
		a.Store.ToolRepository,
		email,
		push,
		a.Publisher,
		cfg.Booking.AsyncNotifications,
	)

	a.Bookings = service.NewBookingService(
		a.Store.BookingRepository,
		a.Store.ToolRepository,
		a.Store.UserRepository,
		service.NewAvailabilityChecker(a.Store.BookingRepository),
		a.Payments,
		a.Dispatcher,
		locker,
		service.BookingOptions{
			Currency:      cfg.Stripe.Currency,
			MaxRentalDays: cfg.Booking.MaxRentalDays,
			LockTTL:       cfg.Booking.LockTTL(),
			BatchSize:     int32(cfg.Booking.JobBatchSize),
		},
	)
	a.Notifications = service.NewNotificationService(a.Store.NotificationRepository, a.Dispatcher)
	a.Reports = service.NewReportService(a.Store.ReportRepository)
	a.Tokens = security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer)

	ok = true
	return a, nil
}

// Ping checks the database and, when configured, Redis.
func (a *App) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := a.Store.Ping(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if a.Redis != nil {
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Close waits for in-flight notifications before closing connections.
func (a *App) Close() error {
	if a.Dispatcher != nil {
		a.Dispatcher.Wait()
	}
	var errs []error
	if a.Publisher != nil {
		errs = append(errs, a.Publisher.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
