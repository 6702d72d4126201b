package topology

import "fmt"

// RoutingConflictError is returned when listener rules cannot be ordered
// unambiguously: duplicate priorities, more than one default rule, or a rule
// that is neither a prioritized path rule nor the default.
type RoutingConflictError struct {
	Services []string
	Priority int
	Reason   string
}

func (e *RoutingConflictError) Error() string {
	if e.Priority != 0 {
		return fmt.Sprintf("routing conflict for %v at priority %d: %s", e.Services, e.Priority, e.Reason)
	}
	return fmt.Sprintf("routing conflict for %v: %s", e.Services, e.Reason)
}

// ZoneNotFoundError is returned when the hosted zone for the site domain
// could not be found. Zones are never created.
type ZoneNotFoundError struct {
	Domain string
}

func (e *ZoneNotFoundError) Error() string {
	return fmt.Sprintf("hosted zone %q not found", e.Domain)
}

// IdentityCollisionError is returned when a role name is derived twice
// within one synthesis run.
type IdentityCollisionError struct {
	RoleName string
	Owner    string
}

func (e *IdentityCollisionError) Error() string {
	return fmt.Sprintf("role %q already defined by %s", e.RoleName, e.Owner)
}
