// ABOUTME: Operator accounts and roles
// ABOUTME: Roles gate UI affordances; VIEW is read-only

package model

import "encoding/json"

// Role names as stored by the API.
const (
	RoleAdmin    = "ADMIN"
	RoleModerate = "MODERATE"
	RoleUser     = "USER"
	RoleView     = "VIEW"
)

// Role ids as seeded by the API.
const (
	RoleIDAdmin    int64 = 1
	RoleIDModerate int64 = 2
	RoleIDUser     int64 = 3
	RoleIDView     int64 = 4
)

// Role is a permission level.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// User is a system operator account. Passwords never appear here; see UserInput.
type User struct {
	ID       int64  `json:"id"`
	Names    string `json:"names"`
	Lastname string `json:"lastname"`
	Username string `json:"username"`
	RoleID   int64  `json:"role_id"`
	RoleName string `json:"role_name"`
	Role     *Role  `json:"role,omitempty"`
}

// UnmarshalJSON accepts user_id as an alias of id.
func (u *User) UnmarshalJSON(data []byte) error {
	type wire User
	aux := struct {
		*wire
		AltID *int64 `json:"user_id"`
	}{wire: (*wire)(u)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if u.ID == 0 && aux.AltID != nil {
		u.ID = *aux.AltID
	}
	return nil
}

// DisplayRole returns the best available role label.
func (u *User) DisplayRole() string {
	if u.RoleName != "" {
		return u.RoleName
	}
	if u.Role != nil && u.Role.Name != "" {
		return u.Role.Name
	}
	return "-"
}
