package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Operator access token required
)

// EndpointSecurityConfig maps "METHOD route-template" to the required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Public
	"GET /healthz":                   SecurityPublic,
	"POST /api/v1/auth/login":        SecurityPublic,
	"POST /api/v1/quote":             SecurityPublic,
	"POST /api/v1/coupons/validate":  SecurityPublic,
	"GET /api/v1/vehicles/available": SecurityPublic,
	"GET /api/v1/locations":          SecurityPublic,
	"GET /api/v1/extras":             SecurityPublic,

	// Bookings
	"GET /api/v1/bookings":                 SecurityAccess,
	"POST /api/v1/bookings":                SecurityAccess,
	"GET /api/v1/bookings/{id}":            SecurityAccess,
	"PUT /api/v1/bookings/{id}":            SecurityAccess,
	"DELETE /api/v1/bookings/{id}":         SecurityAccess,
	"GET /api/v1/bookings/number/{number}": SecurityAccess,
	"PATCH /api/v1/bookings/{id}/status":   SecurityAccess,
	"POST /api/v1/bookings/{id}/payments":  SecurityAccess,

	// Fleet
	"GET /api/v1/vehicles":                       SecurityAccess,
	"GET /api/v1/vehicles/{id}/availability":     SecurityAccess,
	"GET /api/v1/vehicles/{id}/blocked-periods":  SecurityAccess,
	"POST /api/v1/vehicles/{id}/blocked-periods": SecurityAccess,
	"DELETE /api/v1/blocked-periods/{id}":        SecurityAccess,

	// Coupons
	"GET /api/v1/coupons":                  SecurityAccess,
	"POST /api/v1/coupons":                 SecurityAccess,
	"GET /api/v1/coupons/{id}":             SecurityAccess,
	"PUT /api/v1/coupons/{id}":             SecurityAccess,
	"POST /api/v1/coupons/{id}/deactivate": SecurityAccess,

	// Customers
	"POST /api/v1/customers":     SecurityAccess,
	"GET /api/v1/customers/{id}": SecurityAccess,
}

// GetSecurityLevel returns the security level for a given method and route template
func GetSecurityLevel(method, route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[method+" "+route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}
