package service

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/datasektionen/zaiko/internal/zaiko/domain"
)

// SessionCookie is the name of the signed session cookie.
const SessionCookie = "token"

// DefaultSessionTTL is the sliding session window: every authorized
// request pushes expiry this far into the future.
const DefaultSessionTTL = 2 * time.Hour

// ErrInvalidSession covers every way a presented cookie can fail: bad
// signature, malformed payload, or expiry. Callers treat all of them as
// "no session"; the distinction only matters in logs.
var ErrInvalidSession = errors.New("service: invalid session token")

// SessionService signs and verifies the stateless session credential.
// The token is integrity-protected with a server-held HS256 secret; it
// is never encrypted, only signed and parsed.
type SessionService struct {
	Secret []byte
	TTL    time.Duration
}

type sessionClaims struct {
	jwt.RegisteredClaims

	Permissions      map[string]domain.Permission `json:"permissions"`
	ActiveClub       string                       `json:"active_club"`
	ActivePermission domain.Permission            `json:"active_permission"`
}

// Mint signs the session, sliding its expiry to now+TTL. Used both when
// a session is first created and to renew it on authorized requests.
func (s *SessionService) Mint(session *domain.Session) (string, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	session.ExpiresAt = time.Now().Add(ttl)

	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.Subject,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
		Permissions:      session.Permissions,
		ActiveClub:       session.ActiveClub,
		ActivePermission: session.ActivePermission,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// Verify parses and validates a signed token. Expired tokens are
// indistinguishable from absent ones to callers.
func (s *SessionService) Verify(raw string) (*domain.Session, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, ErrInvalidSession
	}

	return &domain.Session{
		Subject:          claims.Subject,
		ExpiresAt:        claims.ExpiresAt.Time,
		Permissions:      claims.Permissions,
		ActiveClub:       claims.ActiveClub,
		ActivePermission: claims.ActivePermission,
	}, nil
}

// Cookie wraps a signed token in the session cookie. The cookie is a
// bearer credential, so it is locked down as far as a first-party
// browser flow allows.
func (s *SessionService) Cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
