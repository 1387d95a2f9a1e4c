package bootstrap

import (
	"context"
	"fmt"
	"testing"
	"time"

	"rental-booking-backend/internal/config"
	"rental-booking-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg, err := config.Parse([]byte(fmt.Sprintf(`
server:
  port: 8080
database:
  driver: memory
jwt:
  secret: 0123456789abcdef0123456789abcdef
operators:
  - email: ops@example.com
    name: Ops
    password_hash: "%s"
booking:
  timezone: Europe/Madrid
`, hash)))
	require.NoError(t, err)
	return cfg
}

func TestMemoryWiring(t *testing.T) {
	cfg := memoryConfig(t)
	ctx := context.Background()

	store, closeStore, err := OpenStore(ctx, cfg, false)
	require.NoError(t, err)
	defer closeStore()
	require.NoError(t, store.Ping(ctx))

	svcs := NewServices(cfg, store)

	vehicles, err := svcs.Fleet.ListVehicles(ctx, true)
	require.NoError(t, err)
	require.Len(t, vehicles, 2)
	assert.Equal(t, "CA-01", vehicles[0].InternalCode)

	pickup := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	quote, err := svcs.Booking.Quote(ctx, service.QuoteRequest{
		VehicleID:   vehicles[0].ID,
		PickupDate:  pickup,
		DropoffDate: pickup.AddDate(0, 0, 3),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, quote.Days)
	assert.Equal(t, int64(28500), quote.TotalPriceCents)

	token, _, err := svcs.Auth.Login(ctx, "ops@example.com", "s3cret")
	require.NoError(t, err)
	claims, err := svcs.Tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", claims.Subject)
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Database.Driver = "sqlite"
	_, _, err := OpenStore(context.Background(), cfg, false)
	assert.Error(t, err)
}

func TestNewMailSender(t *testing.T) {
	assert.NotNil(t, NewMailSender(config.EmailConfig{Provider: "smtp", SMTPHost: "smtp.example.com", SMTPPort: 587}))
	assert.NotNil(t, NewMailSender(config.EmailConfig{Provider: "sendgrid", SendGridAPIKey: "key"}))
	assert.NoError(t, NewMailSender(config.EmailConfig{Provider: "log"}).Send(context.Background(), service.Message{To: "ana@example.com", Subject: "hi"}))
}
