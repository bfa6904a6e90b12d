package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleStartup    Role = "STARTUP"
	RoleFreelancer Role = "FREELANCER"
	RoleMentor     Role = "MENTOR"
	RoleInvestor   Role = "INVESTOR"
	RoleAdmin      Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStartup, RoleFreelancer, RoleMentor, RoleInvestor, RoleAdmin:
		return true
	}
	return false
}

// Actor is an authenticated identity together with its role profile.
// DisplayName holds the startup name or the person's full name, Headline the
// role-specific summary (industry, skills, expertise area, investment focus).
type Actor struct {
	ID          uuid.UUID `json:"id"`
	Role        Role      `json:"role"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Headline    string    `json:"headline,omitempty"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// HomePath returns the landing route a client should redirect to after login.
func HomePath(role Role) string {
	switch role {
	case RoleStartup:
		return "/startup/dashboard"
	case RoleFreelancer:
		return "/freelancer/dashboard"
	case RoleMentor:
		return "/mentors/dashboard"
	case RoleInvestor:
		return "/investors/dashboard"
	default:
		return "/admin/"
	}
}
