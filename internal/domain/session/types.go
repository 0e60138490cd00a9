package session

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownRole        = errors.New("unknown role")
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleSuperAdmin:
		return Role(s), nil
	}
	return "", ErrUnknownRole
}

// User is the authenticated identity. Admins are scoped to WaterParkID.
type User struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Role          Role   `json:"role"`
	WaterParkID   string `json:"waterParkId,omitempty"`
	WaterParkName string `json:"waterParkName,omitempty"`
}

// State is the persisted auth slice.
type State struct {
	User            *User `json:"user"`
	IsAuthenticated bool  `json:"isAuthenticated"`
	UserRole        Role  `json:"userRole,omitempty"`
}

type persisted struct {
	State   State `json:"state"`
	Version int   `json:"version"`
}
