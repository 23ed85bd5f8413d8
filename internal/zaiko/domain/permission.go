package domain

import (
	"encoding/json"
	"fmt"
)

// DefaultClub is seeded into every subject's grants with read access so
// that a fresh login always has at least one club to land in.
const DefaultClub = "metadorerna"

// Permission is the access level a subject holds for a single club.
// ReadWrite subsumes Read.
type Permission int

const (
	PermissionRead Permission = iota
	PermissionReadWrite
)

// ParsePermission maps the wire form ("r", "rw") to a Permission.
func ParsePermission(s string) (Permission, error) {
	switch s {
	case "r":
		return PermissionRead, nil
	case "rw":
		return PermissionReadWrite, nil
	default:
		return PermissionRead, fmt.Errorf("domain: unknown permission %q", s)
	}
}

// String returns the compact wire form used at every system boundary.
func (p Permission) String() string {
	if p == PermissionReadWrite {
		return "rw"
	}
	return "r"
}

// Satisfies reports whether p grants at least the required level.
func (p Permission) Satisfies(required Permission) bool {
	return p >= required
}

func (p Permission) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Permission) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParsePermission(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Club pairs a club name with the permission held for it. This is the
// shape returned to clients from GET /clubs.
type Club struct {
	Name       string     `json:"name"`
	Permission Permission `json:"permission"`
}
