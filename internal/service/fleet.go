package service

import (
	"context"
	"net/mail"
	"strings"

	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/logger"
	"rental-booking-backend/internal/repository"
)

type fleetService struct {
	vehicleRepo  repository.VehicleRepository
	locationRepo repository.LocationRepository
	extraRepo    repository.ExtraRepository
	blockedRepo  repository.BlockedPeriodRepository
	customerRepo repository.CustomerRepository
}

func NewFleetService(
	vehicleRepo repository.VehicleRepository,
	locationRepo repository.LocationRepository,
	extraRepo repository.ExtraRepository,
	blockedRepo repository.BlockedPeriodRepository,
	customerRepo repository.CustomerRepository,
) FleetService {
	return &fleetService{
		vehicleRepo:  vehicleRepo,
		locationRepo: locationRepo,
		extraRepo:    extraRepo,
		blockedRepo:  blockedRepo,
		customerRepo: customerRepo,
	}
}

func (s *fleetService) ListVehicles(ctx context.Context, rentableOnly bool) ([]domain.Vehicle, error) {
	return s.vehicleRepo.List(ctx, rentableOnly)
}

func (s *fleetService) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	return s.vehicleRepo.GetByID(ctx, id)
}

func (s *fleetService) ListLocations(ctx context.Context) ([]domain.Location, error) {
	return s.locationRepo.ListActive(ctx)
}

func (s *fleetService) ListExtras(ctx context.Context) ([]domain.Extra, error) {
	return s.extraRepo.ListActive(ctx)
}

func (s *fleetService) CreateBlockedPeriod(ctx context.Context, p *domain.BlockedPeriod) error {
	logger.EnterMethod("fleetService.CreateBlockedPeriod", "vehicleID", p.VehicleID, "start", p.StartDate, "end", p.EndDate)

	if p.EndDate.Before(p.StartDate) {
		logger.ExitMethodWithError("fleetService.CreateBlockedPeriod", domain.ErrInvalidRange, "vehicleID", p.VehicleID)
		return domain.NewError(domain.KindInvalidRange, "blocked period must not end before it starts")
	}
	if _, err := s.vehicleRepo.GetByID(ctx, p.VehicleID); err != nil {
		logger.ExitMethodWithError("fleetService.CreateBlockedPeriod", err, "vehicleID", p.VehicleID)
		return err
	}
	p.Reason = strings.TrimSpace(p.Reason)
	if err := s.blockedRepo.Create(ctx, p); err != nil {
		logger.ExitMethodWithError("fleetService.CreateBlockedPeriod", err, "vehicleID", p.VehicleID)
		return err
	}

	logger.ExitMethod("fleetService.CreateBlockedPeriod", "periodID", p.ID)
	return nil
}

func (s *fleetService) ListBlockedPeriods(ctx context.Context, vehicleID string) ([]domain.BlockedPeriod, error) {
	if _, err := s.vehicleRepo.GetByID(ctx, vehicleID); err != nil {
		return nil, err
	}
	return s.blockedRepo.ListByVehicle(ctx, vehicleID)
}

func (s *fleetService) DeleteBlockedPeriod(ctx context.Context, id string) error {
	return s.blockedRepo.Delete(ctx, id)
}

func (s *fleetService) CreateCustomer(ctx context.Context, details CustomerDetails) (*domain.Customer, error) {
	logger.EnterMethod("fleetService.CreateCustomer", "email", details.Email)

	c := &domain.Customer{
		Name:  strings.TrimSpace(details.Name),
		Email: strings.ToLower(strings.TrimSpace(details.Email)),
		Phone: strings.TrimSpace(details.Phone),
	}
	if c.Name == "" {
		err := domain.Validation("customer name is required")
		logger.ExitMethodWithError("fleetService.CreateCustomer", err)
		return nil, err
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		err := domain.Validation("customer email %q is invalid", details.Email)
		logger.ExitMethodWithError("fleetService.CreateCustomer", err)
		return nil, err
	}
	if err := s.customerRepo.Create(ctx, c); err != nil {
		logger.ExitMethodWithError("fleetService.CreateCustomer", err, "email", c.Email)
		return nil, err
	}

	logger.ExitMethod("fleetService.CreateCustomer", "customerID", c.ID)
	return c, nil
}

func (s *fleetService) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	return s.customerRepo.GetByID(ctx, id)
}
