package memory

import "rental-booking-backend/internal/domain"

func cents(v int64) *int64 { return &v }

// SeedDemo loads a small fleet, two locations and the usual extras so the
// memory driver is usable without a database.
func (st *Store) SeedDemo() {
	st.AddVehicle(domain.Vehicle{Name: "California Ocean", InternalCode: "CA-01", BasePricePerDayCents: 9500, IsForRent: true, Status: domain.VehicleStatusAvailable})
	st.AddVehicle(domain.Vehicle{Name: "Grand California", InternalCode: "GC-01", BasePricePerDayCents: 12000, IsForRent: true, Status: domain.VehicleStatusAvailable})
	st.AddVehicle(domain.Vehicle{Name: "Marco Polo", InternalCode: "MP-01", BasePricePerDayCents: 11000, IsForRent: true, Status: domain.VehicleStatusMaintenance})

	st.AddLocation(domain.Location{Name: "Barcelona Airport", City: "Barcelona", IsActive: true})
	st.AddLocation(domain.Location{Name: "Girona Centre", City: "Girona", IsActive: true})

	st.AddExtra(domain.Extra{Name: "Bike rack", PricePerDayCents: cents(1000), PriceType: domain.ExtraPricePerDay, IsActive: true})
	st.AddExtra(domain.Extra{Name: "Camping chairs", PricePerRentalCents: cents(1500), PriceType: domain.ExtraPricePerRental, IsActive: true})
	st.AddExtra(domain.Extra{Name: "Bedding kit", PricePerRentalCents: cents(2500), PriceType: domain.ExtraPricePerRental, IsActive: true})
}
