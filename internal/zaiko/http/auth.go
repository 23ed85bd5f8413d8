package http

import (
	"errors"
	"net/http"

	"github.com/datasektionen/zaiko/internal/zaiko/domain"
	"github.com/datasektionen/zaiko/internal/zaiko/service"
	"github.com/datasektionen/zaiko/pkg/httpx"
	"github.com/datasektionen/zaiko/pkg/slogx"
)

// AuthHandler serves the login flow and the club-selection endpoints.
type AuthHandler struct {
	Login    *service.LoginService
	Sessions *service.SessionService
}

// HandleLogin begins a fresh login attempt and sends the browser to the
// identity provider. With authentication disabled there is no provider;
// the browser goes straight back to the app.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if h.Login == nil {
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}

	authURL, err := h.Login.BeginLogin(r.Context())
	if err != nil {
		slogx.FromContext(r.Context()).Error("begin login failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "login_unavailable")
		return
	}
	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

// HandleCallback completes a login attempt: state check, code exchange,
// ID-token verification, permission resolution. On success the freshly
// minted session cookie is set and the browser is sent to the app root.
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" || h.Login == nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request")
		return
	}

	session, err := h.Login.CompleteLogin(r.Context(), code, state)
	if err != nil {
		if errors.Is(err, service.ErrUnknownState) {
			log.Warn("callback state did not match a pending login")
			httpx.WriteError(w, http.StatusBadRequest, "bad_request")
			return
		}
		// Exchange, verification and pls failures stay server-side;
		// the client only learns that login failed.
		log.Error("login failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "login_failed")
		return
	}

	token, err := h.Sessions.Mint(session)
	if err != nil {
		log.Error("minting session failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "login_failed")
		return
	}

	http.SetCookie(w, h.Sessions.Cookie(token))
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// clubsResponse is the payload of GET /clubs.
type clubsResponse struct {
	Clubs  []domain.Club `json:"clubs"`
	Active string        `json:"active"`
}

// HandleClubs returns the caller's grants and which club is active.
func (h *AuthHandler) HandleClubs(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	httpx.WriteJSON(w, http.StatusOK, clubsResponse{
		Clubs:  session.Clubs(),
		Active: session.ActiveClub,
	})
}

// HandleSwitchClub changes the session's active club and re-signs the
// cookie. Switching to a club outside the caller's grants is refused
// without touching the cookie.
func (h *AuthHandler) HandleSwitchClub(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	club := r.URL.Query().Get("club")
	if club == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing_club")
		return
	}

	session := sessionFrom(r.Context())
	if err := session.SetActiveClub(club); err != nil {
		log.Warn("club switch refused", "subject", session.Subject, "club", club)
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	token, err := h.Sessions.Mint(session)
	if err != nil {
		log.Error("minting session failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	http.SetCookie(w, h.Sessions.Cookie(token))
	httpx.WriteJSON(w, http.StatusOK, domain.Club{
		Name:       session.ActiveClub,
		Permission: session.ActivePermission,
	})
}
