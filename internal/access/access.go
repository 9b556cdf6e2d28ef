package access

import "errors"

var ErrUnauthorized = errors.New("admin access required")

type Role int

const (
	RoleReporter Role = iota
	RoleAdmin
)

// Caller is who is invoking a service operation. Reporters are anonymous;
// the ticket and email pair is their only credential.
type Caller struct {
	Role    Role
	AdminID string
}

func Reporter() Caller {
	return Caller{Role: RoleReporter}
}

func Admin(id string) Caller {
	return Caller{Role: RoleAdmin, AdminID: id}
}

// RequireAdmin returns the admin id or ErrUnauthorized.
func (c Caller) RequireAdmin() (string, error) {
	if c.Role != RoleAdmin || c.AdminID == "" {
		return "", ErrUnauthorized
	}
	return c.AdminID, nil
}
