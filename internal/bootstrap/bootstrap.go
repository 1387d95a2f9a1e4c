// Package bootstrap wires configuration into storage and services for the
// server and cronjob binaries.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"rental-booking-backend/internal/availability"
	"rental-booking-backend/internal/config"
	"rental-booking-backend/internal/logger"
	"rental-booking-backend/internal/repository"
	"rental-booking-backend/internal/repository/memory"
	"rental-booking-backend/internal/repository/postgres"
	"rental-booking-backend/internal/security"
	"rental-booking-backend/internal/service"
)

// Services is every service built from one configuration.
type Services struct {
	Booking  service.BookingService
	Coupon   service.CouponService
	Fleet    service.FleetService
	Auth     service.AuthService
	Notifier service.Notifier
	Tokens   security.TokenManager
}

// OpenStore connects the configured storage. The returned close func is never nil.
func OpenStore(ctx context.Context, cfg *config.Config, migrate bool) (*repository.Store, func(), error) {
	switch cfg.Database.Driver {
	case "memory":
		logger.Warn("Using in-memory storage with demo data; nothing is persisted")
		st := memory.NewStore()
		st.SeedDemo()
		return st.Store, func() {}, nil
	case "postgres":
		logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
		db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString(), cfg.Database.MaxOpenConns)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Database connection established")

		if migrate || cfg.Database.MigrateOnStart {
			if err := postgres.Migrate(db); err != nil {
				db.Close()
				return nil, nil, err
			}
		}
		return postgres.NewStore(db), func() { db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
}

// NewMailSender picks the outbound email provider.
func NewMailSender(cfg config.EmailConfig) service.MailSender {
	switch cfg.Provider {
	case "smtp":
		logger.Info("SMTP configuration", "host", cfg.SMTPHost, "port", cfg.SMTPPort)
		return service.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.From, cfg.FromName)
	case "sendgrid":
		logger.Info("SendGrid configuration", "from", cfg.From)
		return service.NewSendGridSender(cfg.SendGridAPIKey, cfg.From, cfg.FromName)
	default:
		logger.Info("Email provider is log; messages are not delivered")
		return service.NewLogSender()
	}
}

// NewServices builds every service over store.
func NewServices(cfg *config.Config, store *repository.Store) *Services {
	loc := cfg.Location()
	tokens := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)
	notifier := service.NewEmailNotifier(NewMailSender(cfg.Email))
	detector := availability.NewDetector(availability.Policy{AllowSameDayTurnover: cfg.Booking.AllowSameDayTurnover})

	operators := make([]service.Operator, 0, len(cfg.Operators))
	for _, op := range cfg.Operators {
		operators = append(operators, service.Operator{Email: op.Email, Name: op.Name, PasswordHash: op.PasswordHash})
	}
	if len(operators) == 0 {
		logger.Warn("No operators configured; the back-office API will reject every login")
	}

	return &Services{
		Booking: service.NewBookingService(store, detector, notifier, service.BookingOptions{
			NumberPrefix:       cfg.Booking.NumberPrefix,
			DefaultPickupTime:  cfg.Booking.DefaultPickupTime,
			DefaultDropoffTime: cfg.Booking.DefaultDropoffTime,
			Location:           loc,
		}),
		Coupon: service.NewCouponService(store.CouponRepository, loc, time.Now),
		Fleet: service.NewFleetService(
			store.VehicleRepository,
			store.LocationRepository,
			store.ExtraRepository,
			store.BlockedPeriodRepository,
			store.CustomerRepository,
		),
		Auth:     service.NewAuthService(operators, tokens),
		Notifier: notifier,
		Tokens:   tokens,
	}
}
