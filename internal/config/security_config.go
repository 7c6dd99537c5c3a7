// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic  SecurityLevel = iota // No authentication
	SecurityRefresh                      // Refresh token required
	SecurityAccess                       // Access token required
	SecurityAdmin                        // Access token with the admin role
)

// EndpointSecurityConfig maps named routes to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Auth - Public
	"auth.register":         SecurityPublic,
	"auth.login":            SecurityPublic,
	"auth.forgot-password":  SecurityPublic,
	"auth.confirm-password": SecurityPublic,

	// Auth - Refresh Protected
	"auth.refresh": SecurityRefresh,

	// Auth - Access Protected
	"auth.change-password": SecurityAccess,

	// Operational
	"health":        SecurityPublic,
	"metrics":       SecurityPublic,
	"mock.download": SecurityPublic,
	"mock.upload":   SecurityPublic,

	// Rent requests and history - Admin only
	"rent.requests":        SecurityAdmin,
	"rent.requests.admit":  SecurityAdmin,
	"rent.requests.reject": SecurityAdmin,
	"rent.history":         SecurityAdmin,
	"rent.history.export":  SecurityAdmin,

	// Rentals across all users - Admin only
	"rent.list":   SecurityAdmin,
	"rent.status": SecurityAdmin,
	"rent.active": SecurityAdmin,
	"rent.past":   SecurityAdmin,
	"rent.future": SecurityAdmin,
	"rent.car":    SecurityAdmin,
	"rent.delete": SecurityAdmin,

	// Catalog management - Admin only
	"cars.create":     SecurityAdmin,
	"cars.update":     SecurityAdmin,
	"cars.delete":     SecurityAdmin,
	"pictures.create": SecurityAdmin,
	"pictures.update": SecurityAdmin,
	"pictures.delete": SecurityAdmin,
	"s3.upload.car":   SecurityAdmin,
	"s3.delete":       SecurityAdmin,
	"s3.files":        SecurityAdmin,
	"users.create":    SecurityAdmin,
	"users.list":      SecurityAdmin,
	"users.delete":    SecurityAdmin,
}

// GetSecurityLevel returns the security level for a named route.
// Unlisted routes require an access token.
func GetSecurityLevel(routeName string) SecurityLevel {
	if level, ok := EndpointSecurityConfig[routeName]; ok {
		return level
	}
	return SecurityAccess
}
