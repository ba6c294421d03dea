// Package domain holds the seller profile.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role is the CRM role bound to a profile.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
	RoleAgent  Role = "agent"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSeller, RoleAgent:
		return true
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(raw string) (Role, error) {
	r := Role(raw)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", raw)
	}
	return r, nil
}

// Portfolio is the customer book ("carteira") a seller works, A through F.
type Portfolio string

// Portfolios lists every portfolio.
var Portfolios = []Portfolio{"A", "B", "C", "D", "E", "F"}

// Valid reports whether p is a known portfolio.
func (p Portfolio) Valid() bool {
	for _, known := range Portfolios {
		if p == known {
			return true
		}
	}
	return false
}

// Profile is a CRM user: an admin or a seller with an AI agent.
type Profile struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	Name               string
	Email              string
	WhatsAppNumber     *string
	Portfolio          *Portfolio
	AgentContext       *string
	CommunicationStyle *string
	AgentActive        bool
	Role               Role
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
