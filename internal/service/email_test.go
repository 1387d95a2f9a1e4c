package service

import (
	"context"
	"errors"
	"testing"

	"rental-booking-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func snapshot() domain.BookingSnapshot {
	return domain.BookingSnapshot{
		BookingNumber:   "FG12345678",
		Customer:        domain.CustomerSnapshot{Name: "Ana <Lopez>", Email: "ana@example.com"},
		VehicleName:     "California Ocean",
		PickupLocation:  "Barcelona Airport",
		PickupDate:      day("2024-06-01"),
		PickupTime:      "11:00",
		DropoffDate:     day("2024-06-06"),
		DropoffTime:     "11:00",
		Days:            5,
		Extras:          []domain.BookingExtra{{ExtraName: "Bike rack", Quantity: 1, TotalPriceCents: 5000}},
		BasePriceCents:  25000,
		ExtrasCents:     5000,
		DiscountCents:   3000,
		CouponCode:      "SUMMER10",
		TotalCents:      27000,
		AmountPaidCents: 13500,
		BalanceCents:    13500,
	}
}

func TestBuildBookingEmail(t *testing.T) {
	msg, err := BuildBookingEmail(EmailBookingConfirmed, snapshot())
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", msg.To)
	assert.Equal(t, "Your booking FG12345678 is registered", msg.Subject)
	assert.Contains(t, msg.Text, "Pickup: 2024-06-01 11:00, Barcelona Airport")
	assert.Contains(t, msg.Text, "Dropoff: 2024-06-06 11:00\n")
	assert.Contains(t, msg.Text, "Bike rack x1: 50.00")
	assert.Contains(t, msg.Text, "Discount (SUMMER10): -30.00")
	assert.Contains(t, msg.Text, "Total: 270.00")
	assert.Contains(t, msg.Text, "Balance: 135.00")
	assert.Contains(t, msg.HTML, "Ana &lt;Lopez&gt;")
	assert.NotContains(t, msg.HTML, "<Lopez>")

	_, err = BuildBookingEmail("survey", snapshot())
	assert.Error(t, err)
}

func TestEmailNotifier(t *testing.T) {
	ctx := context.Background()

	t.Run("Reminder goes through the sender", func(t *testing.T) {
		sender := new(MockMailSender)
		sender.On("Send", ctx, mock.MatchedBy(func(m Message) bool {
			return m.Subject == "Reminder: pickup tomorrow for booking FG12345678"
		})).Return(nil)

		require.NoError(t, NewEmailNotifier(sender).PickupReminder(ctx, snapshot()))
		sender.AssertExpectations(t)
	})

	t.Run("Sender errors surface", func(t *testing.T) {
		sender := new(MockMailSender)
		sender.On("Send", ctx, mock.Anything).Return(errors.New("smtp down"))

		assert.Error(t, NewEmailNotifier(sender).BalanceReminder(ctx, snapshot()))
	})

	t.Run("Missing address", func(t *testing.T) {
		sender := new(MockMailSender)
		b := snapshot()
		b.Customer.Email = ""

		err := NewEmailNotifier(sender).BookingConfirmed(ctx, b)
		assert.True(t, errors.Is(err, domain.ErrValidation))
		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("Log provider never fails", func(t *testing.T) {
		assert.NoError(t, NewEmailNotifier(NewLogSender()).BookingConfirmed(ctx, snapshot()))
	})
}
