package domain

import "time"

type User struct {
	ID           int32     `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Dob          time.Time `json:"dob"`
	Email        string    `json:"email"`
	Address      string    `json:"address"`
	Country      string    `json:"country"`
	RoleID       int32     `json:"role_id"`
	Role         *Role     `json:"role,omitempty"` // Populated when needed
	PasswordHash string    `json:"-"`
	CreatedOn    time.Time `json:"created_on"`
	UpdatedOn    time.Time `json:"updated_on"`
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// HasRole reports whether the user's resolved role carries the given name.
func (u *User) HasRole(name RoleName) bool {
	return u.Role != nil && u.Role.Name == name
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}

// UserSummary is the slice of a user embedded in rental reads.
type UserSummary struct {
	ID        int32  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}
