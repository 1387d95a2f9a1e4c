package jobs

import (
	"context"
	"time"

	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/logger"
)

const (
	reminderPageSize    = 200
	balanceReminderDays = 7
)

// SendPickupReminders emails customers of confirmed bookings that pick up tomorrow
func (jr *JobRunner) SendPickupReminders() {
	jr.runWithRecovery("SendPickupReminders", func() {
		sent, err := jr.sendPickupReminders(context.Background())
		if err != nil {
			logger.Error("Failed to send pickup reminders", "error", err)
			return
		}
		logger.Info("Sent pickup reminders", "count", sent)
	})
}

func (jr *JobRunner) sendPickupReminders(ctx context.Context) (int, error) {
	tomorrow := jr.today().AddDate(0, 0, 1)
	bookings, err := jr.confirmedPickups(ctx, tomorrow, tomorrow)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range bookings {
		if jr.notify(ctx, &bookings[i], jr.services.Notifier.PickupReminder) {
			sent++
		}
	}
	return sent, nil
}

// SendBalanceReminders emails customers who still owe money on a confirmed
// booking picking up within the next week
func (jr *JobRunner) SendBalanceReminders() {
	jr.runWithRecovery("SendBalanceReminders", func() {
		sent, err := jr.sendBalanceReminders(context.Background())
		if err != nil {
			logger.Error("Failed to send balance reminders", "error", err)
			return
		}
		logger.Info("Sent balance reminders", "count", sent)
	})
}

func (jr *JobRunner) sendBalanceReminders(ctx context.Context) (int, error) {
	today := jr.today()
	bookings, err := jr.confirmedPickups(ctx, today, today.AddDate(0, 0, balanceReminderDays))
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range bookings {
		if bookings[i].BalanceCents() == 0 {
			continue
		}
		if jr.notify(ctx, &bookings[i], jr.services.Notifier.BalanceReminder) {
			sent++
		}
	}
	return sent, nil
}

// DeactivateExpiredCoupons switches off coupons whose validity window has passed
func (jr *JobRunner) DeactivateExpiredCoupons() {
	jr.runWithRecovery("DeactivateExpiredCoupons", func() {
		n, err := jr.services.Coupon.DeactivateExpired(context.Background())
		if err != nil {
			logger.Error("Failed to deactivate expired coupons", "error", err)
			return
		}
		logger.Info("Deactivated expired coupons", "count", n)
	})
}

func (jr *JobRunner) confirmedPickups(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	var all []domain.Booking
	for page := int32(1); ; page++ {
		bookings, total, err := jr.services.Booking.ListBookings(ctx, domain.BookingFilter{
			Status:     domain.BookingStatusConfirmed,
			PickupFrom: &from,
			PickupTo:   &to,
			Page:       page,
			PageSize:   reminderPageSize,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, bookings...)
		if len(bookings) == 0 || int32(len(all)) >= total {
			return all, nil
		}
	}
}

func (jr *JobRunner) notify(ctx context.Context, b *domain.Booking, send func(context.Context, domain.BookingSnapshot) error) bool {
	snap, err := jr.services.Booking.Snapshot(ctx, b)
	if err != nil {
		logger.Error("Failed to build booking snapshot", "bookingNumber", b.BookingNumber, "error", err)
		return false
	}
	if err := send(ctx, *snap); err != nil {
		logger.Error("Failed to send reminder", "bookingNumber", b.BookingNumber, "error", err)
		return false
	}
	logger.Debug("Reminder sent", "bookingNumber", b.BookingNumber, "email", snap.Customer.Email)
	return true
}
