package availability

import (
	"errors"
	"testing"
	"time"

	"rental-booking-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, _ := time.Parse(domain.DateLayout, s)
	return t
}

func booking(id, number, pickup, dropoff string, status domain.BookingStatus) domain.Booking {
	return domain.Booking{
		ID:            id,
		BookingNumber: number,
		VehicleID:     "van-1",
		PickupDate:    day(pickup),
		DropoffDate:   day(dropoff),
		Status:        status,
		Customer:      domain.CustomerSnapshot{Name: "Ana Lopez"},
	}
}

func TestDetect(t *testing.T) {
	existing := Occupancy{Bookings: []domain.Booking{
		booking("b1", "FG00000001", "2024-06-05", "2024-06-10", domain.BookingStatusConfirmed),
	}}
	closed := NewDetector(Policy{})
	turnover := NewDetector(Policy{AllowSameDayTurnover: true})

	tests := []struct {
		name     string
		detector *Detector
		pickup   string
		dropoff  string
		conflict bool
	}{
		{"dropoff on existing pickup day", closed, "2024-06-01", "2024-06-05", true},
		{"day before existing pickup", closed, "2024-06-01", "2024-06-04", false},
		{"pickup on existing dropoff day", closed, "2024-06-10", "2024-06-12", true},
		{"after existing", closed, "2024-06-11", "2024-06-12", false},
		{"inside existing", closed, "2024-06-06", "2024-06-07", true},
		{"covers existing", closed, "2024-06-01", "2024-06-20", true},
		{"turnover allows touching end", turnover, "2024-06-01", "2024-06-05", false},
		{"turnover allows touching start", turnover, "2024-06-10", "2024-06-12", false},
		{"turnover still rejects overlap", turnover, "2024-06-01", "2024-06-06", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.detector.Detect(Candidate{VehicleID: "van-1", PickupDate: day(tt.pickup), DropoffDate: day(tt.dropoff)}, existing)
			assert.Equal(t, tt.conflict, len(got) > 0)
		})
	}
}

func TestDetectIgnores(t *testing.T) {
	d := NewDetector(Policy{})
	occ := Occupancy{Bookings: []domain.Booking{
		booking("b1", "FG1", "2024-06-01", "2024-06-10", domain.BookingStatusCancelled),
		booking("b2", "FG2", "2024-06-01", "2024-06-10", domain.BookingStatusPending),
	}}
	occ.Bookings[1].VehicleID = "van-2"

	t.Run("cancelled and other vehicles", func(t *testing.T) {
		got := d.Detect(Candidate{VehicleID: "van-1", PickupDate: day("2024-06-02"), DropoffDate: day("2024-06-03")}, occ)
		assert.Empty(t, got)
	})

	t.Run("the booking being edited", func(t *testing.T) {
		own := Occupancy{Bookings: []domain.Booking{booking("b3", "FG3", "2024-06-01", "2024-06-10", domain.BookingStatusConfirmed)}}
		got := d.Detect(Candidate{VehicleID: "van-1", PickupDate: day("2024-06-02"), DropoffDate: day("2024-06-12"), ExcludeBookingID: "b3"}, own)
		assert.Empty(t, got)
	})
}

func TestDetectBlockedPeriods(t *testing.T) {
	occ := Occupancy{Blocked: []domain.BlockedPeriod{
		{ID: "x", VehicleID: "van-1", StartDate: day("2024-07-01"), EndDate: day("2024-07-03"), Reason: "ITV inspection"},
	}}

	// Blocked periods keep closed bounds even when turnover is allowed.
	d := NewDetector(Policy{AllowSameDayTurnover: true})
	got := d.Detect(Candidate{VehicleID: "van-1", PickupDate: day("2024-07-03"), DropoffDate: day("2024-07-05")}, occ)
	require.Len(t, got, 1)
	assert.Equal(t, domain.ConflictBlocked, got[0].Kind)
	assert.Equal(t, "ITV inspection", got[0].Reason)
}

func TestCheck(t *testing.T) {
	d := NewDetector(Policy{})
	occ := Occupancy{
		Bookings: []domain.Booking{
			booking("b2", "FG00000002", "2024-06-08", "2024-06-09", domain.BookingStatusConfirmed),
			booking("b1", "FG00000001", "2024-06-01", "2024-06-03", domain.BookingStatusInProgress),
		},
		Blocked: []domain.BlockedPeriod{{VehicleID: "van-1", StartDate: day("2024-06-05"), EndDate: day("2024-06-05")}},
	}

	err := d.Check(Candidate{VehicleID: "van-1", PickupDate: day("2024-06-02"), DropoffDate: day("2024-06-08")}, occ)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrVehicleUnavailable))

	derr, ok := domain.AsError(err)
	require.True(t, ok)
	require.Len(t, derr.Conflicts, 3)
	assert.Equal(t, "FG00000001", derr.Conflicts[0].BookingNumber)
	assert.Equal(t, domain.ConflictBlocked, derr.Conflicts[1].Kind)
	assert.Equal(t, "FG00000002", derr.Conflicts[2].BookingNumber)
	assert.Contains(t, derr.Message, "FG00000001 - Ana Lopez (2024-06-01 to 2024-06-03)")

	assert.NoError(t, d.Check(Candidate{VehicleID: "van-1", PickupDate: day("2024-06-20"), DropoffDate: day("2024-06-25")}, occ))
}
