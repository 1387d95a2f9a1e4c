package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"rental-booking-backend/internal/availability"
	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/logger"
	"rental-booking-backend/internal/pricing"
	"rental-booking-backend/internal/repository"
)

const maxBookingNumberAttempts = 3

// BookingOptions carries the booking settings from configuration.
type BookingOptions struct {
	NumberPrefix       string
	DefaultPickupTime  string
	DefaultDropoffTime string
	// Location decides which calendar day "today" is for coupon validity.
	Location *time.Location
	Now      func() time.Time
}

type bookingService struct {
	store    *repository.Store
	detector *availability.Detector
	notifier Notifier
	opts     BookingOptions
}

func NewBookingService(store *repository.Store, detector *availability.Detector, notifier Notifier, opts BookingOptions) BookingService {
	if opts.NumberPrefix == "" {
		opts.NumberPrefix = "FG"
	}
	if opts.DefaultPickupTime == "" {
		opts.DefaultPickupTime = "11:00"
	}
	if opts.DefaultDropoffTime == "" {
		opts.DefaultDropoffTime = "11:00"
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &bookingService{
		store:    store,
		detector: detector,
		notifier: notifier,
		opts:     opts,
	}
}

func (s *bookingService) Quote(ctx context.Context, req QuoteRequest) (*pricing.Quote, error) {
	logger.EnterMethod("bookingService.Quote", "vehicleID", req.VehicleID, "coupon", req.CouponCode)

	vehicle, err := s.store.VehicleRepository.GetByID(ctx, req.VehicleID)
	if err != nil {
		logger.ExitMethodWithError("bookingService.Quote", err, "vehicleID", req.VehicleID)
		return nil, err
	}

	q, err := s.price(ctx, vehicle, req, nil, 0)
	if err != nil {
		logger.ExitMethodWithError("bookingService.Quote", err, "vehicleID", req.VehicleID)
		return nil, err
	}

	logger.ExitMethod("bookingService.Quote", "vehicleID", req.VehicleID, "days", q.Days, "total", q.TotalPriceCents)
	return q, nil
}

func (s *bookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.CreateBooking", "vehicleID", req.VehicleID, "customerID", req.CustomerID)

	b, err := s.createBooking(ctx, req)
	if err != nil {
		logger.ExitMethodWithError("bookingService.CreateBooking", err, "vehicleID", req.VehicleID)
		return nil, err
	}

	if s.notifier != nil {
		s.notify(ctx, b, s.notifier.BookingConfirmed)
	}

	logger.ExitMethod("bookingService.CreateBooking", "bookingID", b.ID, "bookingNumber", b.BookingNumber, "total", b.TotalPriceCents)
	return b, nil
}

func (s *bookingService) createBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	status := req.Status
	if status == "" {
		status = domain.BookingStatusPending
	}
	if !status.Valid() {
		return nil, domain.Validation("unknown booking status %q", status)
	}
	if req.AmountPaidCents < 0 {
		return nil, domain.Validation("amount paid must not be negative")
	}

	vehicle, err := s.rentableVehicle(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}
	if err := s.checkLocations(ctx, req.PickupLocationID, req.DropoffLocationID); err != nil {
		return nil, err
	}

	q, err := s.price(ctx, vehicle, req.QuoteRequest, nil, req.AmountPaidCents)
	if err != nil {
		return nil, err
	}

	customerID, snapshot, err := s.resolveCustomer(ctx, req.CustomerID, req.Customer)
	if err != nil {
		return nil, err
	}

	b := &domain.Booking{
		VehicleID:         vehicle.ID,
		CustomerID:        customerID,
		PickupLocationID:  req.PickupLocationID,
		DropoffLocationID: req.DropoffLocationID,
		PickupDate:        req.PickupDate,
		PickupTime:        s.pickupTime(req.PickupTime),
		DropoffDate:       req.DropoffDate,
		DropoffTime:       s.dropoffTime(req.DropoffTime),
		Status:            status,
		AmountPaidCents:   req.AmountPaidCents,
		Customer:          snapshot,
		Notes:             req.Notes,
		AdminNotes:        req.AdminNotes,
	}
	applyQuote(b, q)

	var check repository.AvailabilityCheck
	if b.IsActive() {
		occ, err := s.store.BookingRepository.ListOccupancy(ctx, b.VehicleID, b.PickupDate, b.DropoffDate)
		if err != nil {
			return nil, fmt.Errorf("failed to load occupancy: %w", err)
		}
		if err := s.checkAvailability(b, occ); err != nil {
			return nil, err
		}
		check = s.checkAvailability
	}

	for attempt := 0; attempt < maxBookingNumberAttempts; attempt++ {
		b.BookingNumber = s.bookingNumber(attempt)
		err = s.store.BookingRepository.Create(ctx, b, check)
		if !errors.Is(err, repository.ErrDuplicateBookingNumber) {
			break
		}
		logger.Warn("Booking number collision, retrying", "bookingNumber", b.BookingNumber, "attempt", attempt+1)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *bookingService) UpdateBooking(ctx context.Context, req UpdateBookingRequest) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.UpdateBooking", "bookingID", req.ID)

	existing, err := s.store.BookingRepository.GetByID(ctx, req.ID)
	if err != nil {
		logger.ExitMethodWithError("bookingService.UpdateBooking", err, "bookingID", req.ID)
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = existing.Status
	}
	if !status.Valid() {
		err := domain.Validation("unknown booking status %q", status)
		logger.ExitMethodWithError("bookingService.UpdateBooking", err, "bookingID", req.ID)
		return nil, err
	}

	vehicleID := req.VehicleID
	if vehicleID == "" {
		vehicleID = existing.VehicleID
	}
	var vehicle *domain.Vehicle
	if vehicleID == existing.VehicleID {
		vehicle, err = s.store.VehicleRepository.GetByID(ctx, vehicleID)
	} else {
		vehicle, err = s.rentableVehicle(ctx, vehicleID)
	}
	if err != nil {
		logger.ExitMethodWithError("bookingService.UpdateBooking", err, "bookingID", req.ID)
		return nil, err
	}
	if err := s.checkLocations(ctx, req.PickupLocationID, req.DropoffLocationID); err != nil {
		logger.ExitMethodWithError("bookingService.UpdateBooking", err, "bookingID", req.ID)
		return nil, err
	}

	req.VehicleID = vehicleID
	q, err := s.price(ctx, vehicle, req.QuoteRequest, existing, existing.AmountPaidCents)
	if err != nil {
		logger.ExitMethodWithError("bookingService.UpdateBooking", err, "bookingID", req.ID)
		return nil, err
	}

	b := *existing
	b.VehicleID = vehicleID
	b.PickupLocationID = req.PickupLocationID
	b.DropoffLocationID = req.DropoffLocationID
	b.PickupDate = req.PickupDate
	b.PickupTime = s.pickupTime(req.PickupTime)
	b.DropoffDate = req.DropoffDate
	b.DropoffTime = s.dropoffTime(req.DropoffTime)
	b.Status = status
	b.Notes = req.Notes
	b.AdminNotes = req.AdminNotes
	applyQuote(&b, q)

	if err := s.store.BookingRepository.Update(ctx, &b, s.checkAvailability); err != nil {
		logger.ExitMethodWithError("bookingService.UpdateBooking", err, "bookingID", req.ID)
		return nil, err
	}

	logger.ExitMethod("bookingService.UpdateBooking", "bookingID", b.ID, "total", b.TotalPriceCents)
	return &b, nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.UpdateStatus", "bookingID", id, "status", status)

	if !status.Valid() {
		err := domain.Validation("unknown booking status %q", status)
		logger.ExitMethodWithError("bookingService.UpdateStatus", err, "bookingID", id)
		return nil, err
	}

	b, err := s.store.BookingRepository.UpdateStatus(ctx, id, status, s.checkAvailability)
	if err != nil {
		logger.ExitMethodWithError("bookingService.UpdateStatus", err, "bookingID", id)
		return nil, err
	}

	logger.ExitMethod("bookingService.UpdateStatus", "bookingID", id, "status", b.Status)
	return b, nil
}

func (s *bookingService) RecordPayment(ctx context.Context, id string, amountCents int64) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.RecordPayment", "bookingID", id, "amount", amountCents)

	if amountCents == 0 {
		err := domain.Validation("payment amount must not be zero")
		logger.ExitMethodWithError("bookingService.RecordPayment", err, "bookingID", id)
		return nil, err
	}
	b, err := s.store.BookingRepository.RecordPayment(ctx, id, amountCents)
	if err != nil {
		logger.ExitMethodWithError("bookingService.RecordPayment", err, "bookingID", id)
		return nil, err
	}

	logger.ExitMethod("bookingService.RecordPayment", "bookingID", id, "paid", b.AmountPaidCents, "paymentStatus", b.PaymentStatus)
	return b, nil
}

func (s *bookingService) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return s.store.BookingRepository.GetByID(ctx, id)
}

func (s *bookingService) GetBookingByNumber(ctx context.Context, number string) (*domain.Booking, error) {
	return s.store.BookingRepository.GetByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
}

func (s *bookingService) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int32, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, domain.Validation("unknown booking status %q", filter.Status)
	}
	return s.store.BookingRepository.List(ctx, filter)
}

func (s *bookingService) DeleteBooking(ctx context.Context, id string) error {
	logger.EnterMethod("bookingService.DeleteBooking", "bookingID", id)
	if err := s.store.BookingRepository.Delete(ctx, id); err != nil {
		logger.ExitMethodWithError("bookingService.DeleteBooking", err, "bookingID", id)
		return err
	}
	logger.ExitMethod("bookingService.DeleteBooking", "bookingID", id)
	return nil
}

func (s *bookingService) CheckAvailability(ctx context.Context, vehicleID string, pickup, dropoff time.Time, excludeBookingID string) ([]domain.Conflict, error) {
	if dropoff.Before(pickup) {
		return nil, domain.ErrInvalidRange
	}
	if _, err := s.store.VehicleRepository.GetByID(ctx, vehicleID); err != nil {
		return nil, err
	}
	occ, err := s.store.BookingRepository.ListOccupancy(ctx, vehicleID, pickup, dropoff)
	if err != nil {
		return nil, err
	}
	return s.detector.Detect(availability.Candidate{
		VehicleID:        vehicleID,
		PickupDate:       pickup,
		DropoffDate:      dropoff,
		ExcludeBookingID: excludeBookingID,
	}, occ), nil
}

func (s *bookingService) ListAvailableVehicles(ctx context.Context, pickup, dropoff time.Time) ([]domain.Vehicle, error) {
	logger.EnterMethod("bookingService.ListAvailableVehicles", "pickup", pickup, "dropoff", dropoff)

	if dropoff.Before(pickup) {
		logger.ExitMethodWithError("bookingService.ListAvailableVehicles", domain.ErrInvalidRange)
		return nil, domain.ErrInvalidRange
	}
	vehicles, err := s.store.VehicleRepository.List(ctx, true)
	if err != nil {
		logger.ExitMethodWithError("bookingService.ListAvailableVehicles", err)
		return nil, err
	}
	occ, err := s.store.BookingRepository.ListOccupancy(ctx, "", pickup, dropoff)
	if err != nil {
		logger.ExitMethodWithError("bookingService.ListAvailableVehicles", err)
		return nil, err
	}

	available := make([]domain.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		c := availability.Candidate{VehicleID: v.ID, PickupDate: pickup, DropoffDate: dropoff}
		if len(s.detector.Detect(c, occ)) == 0 {
			available = append(available, v)
		}
	}

	logger.ExitMethod("bookingService.ListAvailableVehicles", "rentable", len(vehicles), "available", len(available))
	return available, nil
}

func (s *bookingService) Snapshot(ctx context.Context, b *domain.Booking) (*domain.BookingSnapshot, error) {
	vehicle, err := s.store.VehicleRepository.GetByID(ctx, b.VehicleID)
	if err != nil {
		return nil, err
	}
	snap := &domain.BookingSnapshot{
		BookingNumber:   b.BookingNumber,
		Customer:        b.Customer,
		VehicleName:     vehicle.Name,
		PickupDate:      b.PickupDate,
		PickupTime:      b.PickupTime,
		DropoffDate:     b.DropoffDate,
		DropoffTime:     b.DropoffTime,
		Days:            b.Days,
		Extras:          append([]domain.BookingExtra(nil), b.Extras...),
		BasePriceCents:  b.BasePriceCents,
		ExtrasCents:     b.ExtrasPriceCents,
		DiscountCents:   b.DiscountCents,
		CouponCode:      b.CouponCode,
		TotalCents:      b.TotalPriceCents,
		AmountPaidCents: b.AmountPaidCents,
		BalanceCents:    b.BalanceCents(),
		PaymentStatus:   b.PaymentStatus,
		Status:          b.Status,
	}
	if l, err := s.store.LocationRepository.GetByID(ctx, b.PickupLocationID); err == nil {
		snap.PickupLocation = l.Name
	}
	if l, err := s.store.LocationRepository.GetByID(ctx, b.DropoffLocationID); err == nil {
		snap.DropoffLocation = l.Name
	}
	return snap, nil
}

// price runs the pricing pipeline. When current is set, a coupon the booking
// already holds keeps applying and only its rental minimums are re-checked.
func (s *bookingService) price(ctx context.Context, vehicle *domain.Vehicle, req QuoteRequest, current *domain.Booking, paidCents int64) (*pricing.Quote, error) {
	extras, err := s.store.ExtraRepository.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load extras: %w", err)
	}

	in := pricing.QuoteInput{
		PickupDate:        req.PickupDate,
		PickupTime:        s.pickupTime(req.PickupTime),
		DropoffDate:       req.DropoffDate,
		DropoffTime:       s.dropoffTime(req.DropoffTime),
		DailyRateCents:    vehicle.BasePricePerDayCents,
		BaseOverrideCents: req.BaseOverrideCents,
		Extras:            req.Extras,
		ActiveExtras:      extras,
		Today:             s.today(),
		PaidCents:         paidCents,
	}

	if strings.TrimSpace(req.CouponCode) != "" {
		code, err := pricing.NormalizeCouponCode(req.CouponCode)
		if err != nil {
			return nil, err
		}
		var coupon *domain.Coupon
		if current != nil && current.CouponID != nil && code == current.CouponCode {
			coupon, err = s.store.CouponRepository.GetByID(ctx, *current.CouponID)
		} else {
			coupon, err = s.store.CouponRepository.GetByCode(ctx, code)
		}
		switch {
		case errors.Is(err, domain.ErrNotFound):
			coupon = nil
		case err != nil:
			return nil, fmt.Errorf("failed to load coupon: %w", err)
		}
		in.Coupon = coupon
		in.HasCoupon = true
		in.HeldCoupon = coupon != nil && current != nil && current.CouponID != nil && *current.CouponID == coupon.ID
	}

	return pricing.BuildQuote(in)
}

func applyQuote(b *domain.Booking, q *pricing.Quote) {
	b.Days = q.Days
	b.BasePriceCents = q.BasePriceCents
	b.ExtrasPriceCents = q.ExtrasPriceCents
	b.DiscountCents = q.DiscountCents
	b.TotalPriceCents = q.TotalPriceCents
	b.PaymentStatus = q.PaymentStatus
	b.Extras = q.ExtraLines
	b.CouponID = nil
	b.CouponCode = ""
	if q.Coupon != nil {
		id := q.Coupon.ID
		b.CouponID = &id
		b.CouponCode = q.Coupon.Code
	}
}

// checkAvailability matches repository.AvailabilityCheck.
func (s *bookingService) checkAvailability(b *domain.Booking, occ availability.Occupancy) error {
	return s.detector.Check(availability.Candidate{
		VehicleID:        b.VehicleID,
		PickupDate:       b.PickupDate,
		DropoffDate:      b.DropoffDate,
		ExcludeBookingID: b.ID,
	}, occ)
}

func (s *bookingService) rentableVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	if id == "" {
		return nil, domain.Validation("vehicle is required")
	}
	v, err := s.store.VehicleRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !v.IsForRent || v.Status != domain.VehicleStatusAvailable {
		return nil, domain.Validation("vehicle %s is not available for rent", v.InternalCode)
	}
	return v, nil
}

func (s *bookingService) checkLocations(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		if id == "" {
			return domain.Validation("pickup and dropoff locations are required")
		}
		l, err := s.store.LocationRepository.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !l.IsActive {
			return domain.Validation("location %s is not active", l.Name)
		}
	}
	return nil
}

// resolveCustomer returns the id of the customer a booking belongs to and the
// contact details copied onto it. Inline details for an unknown email return
// an empty id; the repository creates that customer with the booking.
func (s *bookingService) resolveCustomer(ctx context.Context, id string, details *CustomerDetails) (string, domain.CustomerSnapshot, error) {
	if id != "" {
		c, err := s.store.CustomerRepository.GetByID(ctx, id)
		if err != nil {
			return "", domain.CustomerSnapshot{}, err
		}
		return c.ID, c.Snapshot(), nil
	}
	if details == nil || strings.TrimSpace(details.Name) == "" || strings.TrimSpace(details.Email) == "" {
		return "", domain.CustomerSnapshot{}, domain.Validation("customer name and email are required")
	}

	snapshot := domain.CustomerSnapshot{
		Name:  strings.TrimSpace(details.Name),
		Email: strings.ToLower(strings.TrimSpace(details.Email)),
		Phone: strings.TrimSpace(details.Phone),
	}
	c, err := s.store.CustomerRepository.GetByEmail(ctx, snapshot.Email)
	switch {
	case err == nil:
		return c.ID, snapshot, nil
	case errors.Is(err, domain.ErrNotFound):
		return "", snapshot, nil
	default:
		return "", domain.CustomerSnapshot{}, err
	}
}

// bookingNumber is the prefix plus the last eight digits of the epoch
// millisecond. Retries add a random offset.
func (s *bookingService) bookingNumber(attempt int) string {
	n := s.opts.Now().UnixMilli()
	if attempt > 0 {
		n += 1 + rand.Int64N(1000000)
	}
	return fmt.Sprintf("%s%08d", s.opts.NumberPrefix, n%100000000)
}

func (s *bookingService) today() time.Time {
	now := s.opts.Now().In(s.opts.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *bookingService) pickupTime(t string) string {
	if t == "" {
		return s.opts.DefaultPickupTime
	}
	return t
}

func (s *bookingService) dropoffTime(t string) string {
	if t == "" {
		return s.opts.DefaultDropoffTime
	}
	return t
}

// notify hands the committed booking to send. Failures are logged only.
func (s *bookingService) notify(ctx context.Context, b *domain.Booking, send func(context.Context, domain.BookingSnapshot) error) {
	snap, err := s.Snapshot(ctx, b)
	if err != nil {
		logger.Warn("Failed to build booking snapshot", "bookingNumber", b.BookingNumber, "error", err)
		return
	}
	if err := send(ctx, *snap); err != nil {
		logger.Warn("Failed to send booking notification", "bookingNumber", b.BookingNumber, "error", err)
	}
}
