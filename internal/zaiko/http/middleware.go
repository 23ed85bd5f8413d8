package http

import (
	"net/http"

	"github.com/datasektionen/zaiko/internal/zaiko/domain"
	"github.com/datasektionen/zaiko/internal/zaiko/service"
	"github.com/datasektionen/zaiko/pkg/httpx"
	"github.com/datasektionen/zaiko/pkg/slogx"
)

// SessionAuth gates route groups on a verified session cookie. Routes
// that must stay reachable without a session (login, callback, health)
// are simply not wrapped.
type SessionAuth struct {
	Sessions *service.SessionService

	// LoginPath is where denied interactive requests are redirected.
	LoginPath string

	// APIMode answers denials with 401 instead of a redirect. Used for
	// API-only and test deployments.
	APIMode bool

	// FakeAuth short-circuits verification with a fixed development
	// session. Only reachable outside prod; the app refuses to start
	// otherwise.
	FakeAuth bool
}

// Require builds a middleware enforcing at least the given permission
// level on the session's active club.
//
// All denial paths are side-effect free: no cookie is touched and the
// wrapped handler never runs. On success the active club is injected
// into the request context and the cookie is re-signed with a slid
// expiry, so active users stay logged in while idle sessions lapse.
func (a *SessionAuth) Require(required domain.Permission) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			if a.FakeAuth {
				log.Warn("fake auth session injected")
				next.ServeHTTP(w, r.WithContext(withSession(r.Context(), fakeSession())))
				return
			}

			cookie, err := r.Cookie(service.SessionCookie)
			if err != nil {
				a.deny(w, r)
				return
			}

			session, err := a.Sessions.Verify(cookie.Value)
			if err != nil {
				// Tampered and expired tokens land here alike; only the
				// log cares which it was.
				log.Warn("session cookie rejected", "err", err)
				a.deny(w, r)
				return
			}

			if !session.ActivePermission.Satisfies(required) {
				log.Warn("insufficient permission",
					"subject", session.Subject,
					"club", session.ActiveClub,
					"have", session.ActivePermission.String(),
					"want", required.String(),
				)
				a.deny(w, r)
				return
			}

			// The club-switch handler mints its own replacement cookie;
			// renewing here as well would race it with a second
			// Set-Cookie for the same name.
			if !isClubSwitch(r) {
				if token, err := a.Sessions.Mint(session); err == nil {
					http.SetCookie(w, a.Sessions.Cookie(token))
				} else {
					log.Error("session renewal failed", "err", err)
				}
			}

			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
		})
	}
}

func (a *SessionAuth) deny(w http.ResponseWriter, r *http.Request) {
	if a.APIMode {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	http.Redirect(w, r, a.LoginPath, http.StatusTemporaryRedirect)
}

func isClubSwitch(r *http.Request) bool {
	return r.Method == http.MethodPost && r.URL.Path == "/club"
}

// fakeSession is the fixed development identity used when APP_AUTH is
// disabled.
func fakeSession() *domain.Session {
	session, _ := domain.NewSession("dev", map[string]domain.Permission{
		domain.DefaultClub: domain.PermissionReadWrite,
	})
	return session
}
