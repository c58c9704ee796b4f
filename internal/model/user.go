package model

import (
	"fmt"
	"regexp"
	"time"
)

// Role is the binary authorization flag of a user
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole converts a raw role string, defaulting to RoleUser when empty
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case "":
		return RoleUser, nil
	case RoleUser, RoleAdmin:
		return Role(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, raw)
	}
}

// identityPattern restricts usernames to characters that are safe as file names and keys
var identityPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

// ValidateIdentity checks that a username can be used to address storage
func ValidateIdentity(username string) error {
	if !identityPattern.MatchString(username) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentity, username)
	}
	return nil
}

// Identity is an authenticated user as seen by the rest of the system
type Identity struct {
	Username string
	Role     Role
}

// IsAdmin reports whether the identity has the admin role
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Credential is a stored login record.
// PasswordHash holds a bcrypt hash; LegacyPassword is only populated for records
// written by older deployments that kept passwords verbatim.
type Credential struct {
	Username       string
	PasswordHash   string
	LegacyPassword string
	Role           Role
	CreatedAt      time.Time
}

// Identity returns the public part of the credential
func (c *Credential) Identity() Identity {
	role := c.Role
	if role == "" {
		role = RoleUser
	}
	return Identity{Username: c.Username, Role: role}
}
