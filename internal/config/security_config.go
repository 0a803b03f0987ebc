package config

type SecurityLevel int

const (
	SecurityPublic    SecurityLevel = iota // No authentication
	SecurityWebhook                        // Verified by the payment processor signature
	SecurityAccess                         // Access token required
	SecurityAdmin                          // Access token with the admin role
)

// EndpointSecurityConfig maps "METHOD route-template" to the required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	"GET /healthz": SecurityPublic,
	"GET /metrics": SecurityPublic,

	"POST /api/v1/webhooks/stripe": SecurityWebhook,

	// Bookings
	"POST /api/v1/bookings":                  SecurityAccess,
	"GET /api/v1/bookings/{id}":              SecurityAccess,
	"GET /api/v1/bookings/{id}/cancellation": SecurityAccess,
	"POST /api/v1/bookings/{id}/cancel":      SecurityAccess,
	"POST /api/v1/bookings/{id}/confirm":     SecurityAccess,
	"POST /api/v1/bookings/{id}/reject":      SecurityAccess,
	"POST /api/v1/bookings/{id}/complete":    SecurityAccess,
	"GET /api/v1/rentals":                    SecurityAccess,
	"GET /api/v1/lendings":                   SecurityAccess,
	"GET /api/v1/tools/{id}/availability":    SecurityAccess,

	// Notifications
	"GET /api/v1/notifications":            SecurityAccess,
	"POST /api/v1/notifications/{id}/read": SecurityAccess,

	// Admin
	"GET /api/v1/admin/reports/bookings.xlsx": SecurityAdmin,
}

// GetSecurityLevel returns the security level for a given route
func GetSecurityLevel(method, route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[method+" "+route]; exists {
		return level
	}
	// Default to access for unknown endpoints
	return SecurityAccess
}
