package domain

type RoleName string

const (
	RoleAdmin  RoleName = "admin"
	RoleRenter RoleName = "user"
)

// DefaultRoles are seeded into an empty roles table.
var DefaultRoles = []RoleName{RoleAdmin, RoleRenter}

type Role struct {
	ID   int32    `json:"id"`
	Name RoleName `json:"name"`
}
