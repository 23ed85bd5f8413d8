package domain

import (
	"errors"
	"sort"
	"time"
)

var (
	// ErrNoGrants reports that a subject holds no club grants at all; a
	// session cannot be constructed for such a subject.
	ErrNoGrants = errors.New("domain: subject has no club grants")

	// ErrNotGranted reports an attempt to activate a club the subject
	// does not hold a grant for.
	ErrNotGranted = errors.New("domain: club not granted")
)

// Session is the self-contained credential carried in the signed cookie.
// There is no server-side session store; everything the middleware needs
// to authorize a request lives here.
//
// Invariants: ActiveClub is always a key of Permissions, and
// ActivePermission always equals Permissions[ActiveClub]. Both are only
// ever updated together through SetActiveClub.
type Session struct {
	Subject          string
	ExpiresAt        time.Time
	Permissions      map[string]Permission
	ActiveClub       string
	ActivePermission Permission
}

// NewSession builds a session for a verified subject. The initial active
// club is the default-seeded club when granted, otherwise the
// lexicographically smallest granted club. The rule is deterministic on
// purpose; map iteration order must never leak into the credential.
func NewSession(subject string, permissions map[string]Permission) (*Session, error) {
	if len(permissions) == 0 {
		return nil, ErrNoGrants
	}

	active := ""
	if _, ok := permissions[DefaultClub]; ok {
		active = DefaultClub
	} else {
		for club := range permissions {
			if active == "" || club < active {
				active = club
			}
		}
	}

	return &Session{
		Subject:          subject,
		Permissions:      permissions,
		ActiveClub:       active,
		ActivePermission: permissions[active],
	}, nil
}

// SetActiveClub switches the club the session operates under. Both the
// club and its permission are updated atomically; on failure the session
// is left untouched.
func (s *Session) SetActiveClub(club string) error {
	permission, ok := s.Permissions[club]
	if !ok {
		return ErrNotGranted
	}
	s.ActiveClub = club
	s.ActivePermission = permission
	return nil
}

// Clubs returns the session's grants sorted by club name.
func (s *Session) Clubs() []Club {
	clubs := make([]Club, 0, len(s.Permissions))
	for name, permission := range s.Permissions {
		clubs = append(clubs, Club{Name: name, Permission: permission})
	}
	sort.Slice(clubs, func(i, j int) bool { return clubs[i].Name < clubs[j].Name })
	return clubs
}
