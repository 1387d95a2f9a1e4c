// Package memory keeps every repository in process memory behind one lock.
// It backs the "memory" database driver for local demos and service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"rental-booking-backend/internal/availability"
	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/pricing"
	"rental-booking-backend/internal/repository"

	"github.com/google/uuid"
)

type state struct {
	mu        sync.Mutex
	vehicles  map[string]domain.Vehicle
	locations map[string]domain.Location
	customers map[string]domain.Customer
	extras    map[string]domain.Extra
	coupons   map[string]domain.Coupon
	blocked   map[string]domain.BlockedPeriod
	bookings  map[string]domain.Booking
	// lineItems is keyed by booking id.
	lineItems map[string][]domain.BookingExtra
}

// Store is a repository.Store plus seeding helpers.
type Store struct {
	*repository.Store
	s *state
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	s := &state{
		vehicles:  map[string]domain.Vehicle{},
		locations: map[string]domain.Location{},
		customers: map[string]domain.Customer{},
		extras:    map[string]domain.Extra{},
		coupons:   map[string]domain.Coupon{},
		blocked:   map[string]domain.BlockedPeriod{},
		bookings:  map[string]domain.Booking{},
		lineItems: map[string][]domain.BookingExtra{},
	}
	return &Store{
		Store: &repository.Store{
			VehicleRepository:       &vehicleRepo{s},
			LocationRepository:      &locationRepo{s},
			CustomerRepository:      &customerRepo{s},
			ExtraRepository:         &extraRepo{s},
			CouponRepository:        &couponRepo{s},
			BlockedPeriodRepository: &blockedRepo{s},
			BookingRepository:       &bookingRepo{s},
			Ping:                    func(context.Context) error { return nil },
		},
		s: s,
	}
}

// AddVehicle stores v, assigning an ID when empty.
func (st *Store) AddVehicle(v domain.Vehicle) domain.Vehicle {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	st.s.vehicles[v.ID] = v
	return v
}

// AddLocation stores l, assigning an ID when empty.
func (st *Store) AddLocation(l domain.Location) domain.Location {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	st.s.locations[l.ID] = l
	return l
}

// AddExtra stores e, assigning an ID when empty.
func (st *Store) AddExtra(e domain.Extra) domain.Extra {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	st.s.extras[e.ID] = e
	return e
}

// CountLineItems returns how many booking extras reference bookingID.
func (st *Store) CountLineItems(bookingID string) int {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	return len(st.s.lineItems[bookingID])
}

type vehicleRepo struct{ s *state }

func (r *vehicleRepo) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.vehicles[id]
	if !ok {
		return nil, domain.NotFound("vehicle", id)
	}
	return &v, nil
}

func (r *vehicleRepo) List(ctx context.Context, rentableOnly bool) ([]domain.Vehicle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Vehicle
	for _, v := range r.s.vehicles {
		if rentableOnly && (!v.IsForRent || v.Status != domain.VehicleStatusAvailable) {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InternalCode < out[j].InternalCode })
	return out, nil
}

type locationRepo struct{ s *state }

func (r *locationRepo) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.locations[id]
	if !ok {
		return nil, domain.NotFound("location", id)
	}
	return &l, nil
}

func (r *locationRepo) ListActive(ctx context.Context) ([]domain.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Location
	for _, l := range r.s.locations {
		if l.IsActive {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type customerRepo struct{ s *state }

func (r *customerRepo) Create(ctx context.Context, c *domain.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.customers {
		if strings.EqualFold(existing.Email, c.Email) {
			return domain.Validation("a customer with email %s already exists", c.Email)
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Email = strings.ToLower(c.Email)
	c.CreatedAt = time.Now()
	r.s.customers[c.ID] = *c
	return nil
}

func (r *customerRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, domain.NotFound("customer", id)
	}
	return &c, nil
}

func (r *customerRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.customers {
		if strings.EqualFold(c.Email, email) {
			return &c, nil
		}
	}
	return nil, domain.NotFound("customer", email)
}

type extraRepo struct{ s *state }

func (r *extraRepo) ListActive(ctx context.Context) ([]domain.Extra, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Extra
	for _, e := range r.s.extras {
		if e.IsActive {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type couponRepo struct{ s *state }

func (r *couponRepo) Create(ctx context.Context, c *domain.Coupon) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.codeTaken(c.Code, "") {
		return domain.NewError(domain.KindDuplicateCouponCode, "coupon code %s already exists", c.Code)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.s.coupons[c.ID] = *c
	return nil
}

func (r *couponRepo) GetByID(ctx context.Context, id string) (*domain.Coupon, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.coupons[id]
	if !ok {
		return nil, domain.NotFound("coupon", id)
	}
	return &c, nil
}

func (r *couponRepo) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.coupons {
		if strings.EqualFold(c.Code, code) {
			return &c, nil
		}
	}
	return nil, domain.NotFound("coupon", code)
}

func (r *couponRepo) List(ctx context.Context, activeOnly bool) ([]domain.Coupon, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Coupon
	for _, c := range r.s.coupons {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *couponRepo) Update(ctx context.Context, c *domain.Coupon) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.coupons[c.ID]
	if !ok {
		return domain.NotFound("coupon", c.ID)
	}
	if r.s.codeTaken(c.Code, c.ID) {
		return domain.NewError(domain.KindDuplicateCouponCode, "coupon code %s already exists", c.Code)
	}
	if c.MaxUses != nil && existing.CurrentUses > *c.MaxUses {
		return domain.NewError(domain.KindCouponUsageExceeded, "coupon %s already has more uses than the new maximum", c.Code)
	}
	c.CurrentUses = existing.CurrentUses
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now()
	r.s.coupons[c.ID] = *c
	return nil
}

func (r *couponRepo) DeactivateExpired(ctx context.Context, today time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, c := range r.s.coupons {
		if c.IsActive && c.ValidUntil != nil && c.ValidUntil.Before(today) {
			c.IsActive = false
			c.UpdatedAt = time.Now()
			r.s.coupons[id] = c
			n++
		}
	}
	return n, nil
}

func (s *state) codeTaken(code, exceptID string) bool {
	for id, c := range s.coupons {
		if id != exceptID && strings.EqualFold(c.Code, code) {
			return true
		}
	}
	return false
}

// customerFor returns the customer owning the snapshot's email, or a new
// unsaved one.
func (s *state) customerFor(snap domain.CustomerSnapshot) domain.Customer {
	for _, c := range s.customers {
		if strings.EqualFold(c.Email, snap.Email) {
			return c
		}
	}
	return domain.Customer{
		ID:        uuid.NewString(),
		Name:      snap.Name,
		Email:     strings.ToLower(snap.Email),
		Phone:     snap.Phone,
		CreatedAt: time.Now(),
	}
}

type blockedRepo struct{ s *state }

func (r *blockedRepo) Create(ctx context.Context, p *domain.BlockedPeriod) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.vehicles[p.VehicleID]; !ok {
		return domain.NotFound("vehicle", p.VehicleID)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now()
	r.s.blocked[p.ID] = *p
	return nil
}

func (r *blockedRepo) ListByVehicle(ctx context.Context, vehicleID string) ([]domain.BlockedPeriod, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.BlockedPeriod
	for _, p := range r.s.blocked {
		if p.VehicleID == vehicleID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (r *blockedRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.blocked[id]; !ok {
		return domain.NotFound("blocked period", id)
	}
	delete(r.s.blocked, id)
	return nil
}

type bookingRepo struct{ s *state }

func (r *bookingRepo) Create(ctx context.Context, b *domain.Booking, check repository.AvailabilityCheck) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.vehicles[b.VehicleID]; !ok {
		return domain.NotFound("vehicle", b.VehicleID)
	}
	if check != nil {
		if err := check(b, r.s.occupancy(b.VehicleID, b.PickupDate, b.DropoffDate, "")); err != nil {
			return err
		}
	}
	for _, existing := range r.s.bookings {
		if existing.BookingNumber == b.BookingNumber {
			return repository.ErrDuplicateBookingNumber
		}
	}
	var coupon *domain.Coupon
	if b.CouponID != nil {
		c, err := r.s.couponWithUseLeft(*b.CouponID, b.CouponCode)
		if err != nil {
			return err
		}
		coupon = c
	}
	var customer domain.Customer
	if b.CustomerID != "" {
		c, ok := r.s.customers[b.CustomerID]
		if !ok {
			return domain.NotFound("customer", b.CustomerID)
		}
		customer = c
	} else {
		customer = r.s.customerFor(b.Customer)
		b.CustomerID = customer.ID
	}

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now()
	b.CreatedAt, b.UpdatedAt = now, now
	b.PaymentStatus = pricing.DerivePaymentStatus(b.TotalPriceCents, b.AmountPaidCents)
	r.s.putBooking(b)

	if coupon != nil {
		coupon.CurrentUses++
		r.s.coupons[coupon.ID] = *coupon
	}
	customer.TotalBookings++
	customer.TotalSpentCents += b.TotalPriceCents
	r.s.customers[customer.ID] = customer
	return nil
}

func (r *bookingRepo) Update(ctx context.Context, b *domain.Booking, check repository.AvailabilityCheck) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	old, ok := r.s.bookings[b.ID]
	if !ok {
		return domain.NotFound("booking", b.ID)
	}
	if _, ok := r.s.vehicles[b.VehicleID]; !ok {
		return domain.NotFound("vehicle", b.VehicleID)
	}
	if b.IsActive() && check != nil {
		if err := check(b, r.s.occupancy(b.VehicleID, b.PickupDate, b.DropoffDate, b.ID)); err != nil {
			return err
		}
	}

	var coupon *domain.Coupon
	if b.CouponID != nil && (old.CouponID == nil || *old.CouponID != *b.CouponID) {
		c, err := r.s.couponWithUseLeft(*b.CouponID, b.CouponCode)
		if err != nil {
			return err
		}
		coupon = c
	}

	b.BookingNumber = old.BookingNumber
	b.CustomerID = old.CustomerID
	b.CreatedAt = old.CreatedAt
	b.AmountPaidCents = old.AmountPaidCents
	b.PaymentStatus = pricing.DerivePaymentStatus(b.TotalPriceCents, b.AmountPaidCents)
	b.UpdatedAt = time.Now()
	r.s.putBooking(b)

	if coupon != nil {
		coupon.CurrentUses++
		r.s.coupons[coupon.ID] = *coupon
	}
	if customer, ok := r.s.customers[old.CustomerID]; ok {
		customer.TotalSpentCents += b.TotalPriceCents - old.TotalPriceCents
		r.s.customers[customer.ID] = customer
	}
	return nil
}

func (r *bookingRepo) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus, check repository.AvailabilityCheck) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, domain.NotFound("booking", id)
	}
	if !b.IsActive() && status != domain.BookingStatusCancelled && check != nil {
		if err := check(&b, r.s.occupancy(b.VehicleID, b.PickupDate, b.DropoffDate, b.ID)); err != nil {
			return nil, err
		}
	}
	b.Status = status
	b.UpdatedAt = time.Now()
	r.s.bookings[id] = b
	return r.s.withExtras(b), nil
}

func (r *bookingRepo) RecordPayment(ctx context.Context, id string, deltaCents int64) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, domain.NotFound("booking", id)
	}
	paid := b.AmountPaidCents + deltaCents
	if paid < 0 {
		return nil, domain.Validation("payment of %s would leave a negative amount paid", pricing.FormatCents(deltaCents))
	}
	b.AmountPaidCents = paid
	b.PaymentStatus = pricing.DerivePaymentStatus(b.TotalPriceCents, paid)
	b.UpdatedAt = time.Now()
	r.s.bookings[id] = b
	return r.s.withExtras(b), nil
}

func (r *bookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, domain.NotFound("booking", id)
	}
	return r.s.withExtras(b), nil
}

func (r *bookingRepo) GetByNumber(ctx context.Context, number string) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.bookings {
		if b.BookingNumber == number {
			return r.s.withExtras(b), nil
		}
	}
	return nil, domain.NotFound("booking", number)
}

func (r *bookingRepo) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, int32, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []domain.Booking
	for _, b := range r.s.bookings {
		switch {
		case f.Status != "" && b.Status != f.Status,
			f.VehicleID != "" && b.VehicleID != f.VehicleID,
			f.CustomerID != "" && b.CustomerID != f.CustomerID,
			f.PickupFrom != nil && b.PickupDate.Before(*f.PickupFrom),
			f.PickupTo != nil && b.PickupDate.After(*f.PickupTo):
			continue
		}
		matched = append(matched, *r.s.withExtras(b))
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].PickupDate.Equal(matched[j].PickupDate) {
			return matched[i].PickupDate.Before(matched[j].PickupDate)
		}
		return matched[i].BookingNumber < matched[j].BookingNumber
	})

	page, pageSize := int(f.Page), int(f.PageSize)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	start := (page - 1) * pageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], int32(len(matched)), nil
}

func (r *bookingRepo) ListOccupancy(ctx context.Context, vehicleID string, from, to time.Time) (availability.Occupancy, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.occupancy(vehicleID, from, to, ""), nil
}

func (r *bookingRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bookings[id]; !ok {
		return domain.NotFound("booking", id)
	}
	delete(r.s.lineItems, id)
	delete(r.s.bookings, id)
	return nil
}

func (s *state) occupancy(vehicleID string, from, to time.Time, excludeID string) availability.Occupancy {
	var occ availability.Occupancy
	for _, b := range s.bookings {
		if b.ID == excludeID || !b.IsActive() || (vehicleID != "" && b.VehicleID != vehicleID) {
			continue
		}
		if availability.ClosedOverlap(from, to, b.PickupDate, b.DropoffDate) {
			occ.Bookings = append(occ.Bookings, b)
		}
	}
	for _, p := range s.blocked {
		if vehicleID != "" && p.VehicleID != vehicleID {
			continue
		}
		if availability.ClosedOverlap(from, to, p.StartDate, p.EndDate) {
			occ.Blocked = append(occ.Blocked, p)
		}
	}
	return occ
}

func (s *state) couponWithUseLeft(id, code string) (*domain.Coupon, error) {
	c, ok := s.coupons[id]
	switch {
	case !ok:
		return nil, domain.NewError(domain.KindCouponNotFound, "coupon %s not found", code)
	case !c.IsActive:
		return nil, domain.NewError(domain.KindCouponInactive, "coupon %s is not active", code)
	case !c.HasUsesLeft():
		return nil, domain.NewError(domain.KindCouponExhausted, "coupon %s has reached its usage limit", code)
	}
	return &c, nil
}

func (s *state) putBooking(b *domain.Booking) {
	items := make([]domain.BookingExtra, len(b.Extras))
	for i, e := range b.Extras {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		e.BookingID = b.ID
		items[i] = e
	}
	b.Extras = items

	stored := *b
	stored.Extras = nil
	s.bookings[b.ID] = stored
	s.lineItems[b.ID] = append([]domain.BookingExtra(nil), items...)
}

func (s *state) withExtras(b domain.Booking) *domain.Booking {
	b.Extras = append([]domain.BookingExtra(nil), s.lineItems[b.ID]...)
	return &b
}
