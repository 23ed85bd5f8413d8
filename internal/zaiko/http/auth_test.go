package http

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/datasektionen/zaiko/internal/zaiko/domain"
	"github.com/datasektionen/zaiko/internal/zaiko/service"
)

// loginProvider is just enough of an OIDC provider to complete one code
// flow over the router: discovery, JWKS and a token endpoint minting an
// RS256 ID token echoing whatever nonce the authorization redirect
// carried.
type loginProvider struct {
	t      *testing.T
	server *httptest.Server
	key    *rsa.PrivateKey
	nonce  string
}

func newLoginProvider(t *testing.T) *loginProvider {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	idp := &loginProvider{t: t, key: key}
	mux := http.NewServeMux()
	idp.server = httptest.NewServer(mux)
	t.Cleanup(idp.server.Close)

	mux.HandleFunc("GET /.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                                idp.server.URL,
			"authorization_endpoint":                idp.server.URL + "/auth",
			"token_endpoint":                        idp.server.URL + "/token",
			"jwks_uri":                              idp.server.URL + "/keys",
			"response_types_supported":              []string{"code"},
			"subject_types_supported":               []string{"public"},
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	})

	mux.HandleFunc("GET /keys", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"keys": []map[string]string{{
				"kty": "RSA",
				"alg": "RS256",
				"use": "sig",
				"kid": "router-test-key",
				"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
				"e":   "AQAB",
			}},
		})
	})

	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
			"iss":   idp.server.URL,
			"aud":   "zaiko-web",
			"sub":   "turetek",
			"exp":   time.Now().Add(time.Hour).Unix(),
			"iat":   time.Now().Unix(),
			"nonce": idp.nonce,
		})
		token.Header["kid"] = "router-test-key"
		signed, err := token.SignedString(idp.key)
		require.NoError(idp.t, err)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-token-123",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"id_token":     signed,
		})
	})

	return idp
}

func TestLoginFlowOverHTTP(t *testing.T) {
	t.Parallel()

	idp := newLoginProvider(t)

	// pls grants nothing; the default club's Read seed is all the
	// session gets.
	pls := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]string{})
	}))
	t.Cleanup(pls.Close)

	login, err := service.NewLoginService(context.Background(), service.LoginConfig{
		Issuer:       idp.server.URL,
		ClientID:     "zaiko-web",
		ClientSecret: "test-secret",
		RedirectURL:  "https://zaiko.example/api/oidc/callback",
	}, service.NewMemoryStateStore(time.Minute), service.NewPermissionService(pls.URL))
	require.NoError(t, err)

	router, sessions := newTestRouterWithLogin(t, login)

	// The login endpoint sends the browser to the provider; its redirect
	// carries the state and nonce of this attempt.
	res := doJSON(t, router, http.MethodGet, "/login", nil, nil)
	require.Equal(t, http.StatusTemporaryRedirect, res.StatusCode)

	authURL, err := url.Parse(res.Header.Get("Location"))
	require.NoError(t, err)
	state := authURL.Query().Get("state")
	require.NotEmpty(t, state)
	idp.nonce = authURL.Query().Get("nonce")

	// The provider calls back with the code: a session cookie is set and
	// the browser lands on the app root.
	callback := "/api/oidc/callback?code=test-code&state=" + url.QueryEscape(state)
	res = doJSON(t, router, http.MethodGet, callback, nil, nil)
	require.Equal(t, http.StatusTemporaryRedirect, res.StatusCode)
	require.Equal(t, "/", res.Header.Get("Location"))

	cookies := sessionCookies(res)
	require.Len(t, cookies, 1)

	session, err := sessions.Verify(cookies[0].Value)
	require.NoError(t, err)
	require.Equal(t, "turetek", session.Subject)
	require.Equal(t, map[string]domain.Permission{
		domain.DefaultClub: domain.PermissionRead,
	}, session.Permissions)
	require.Equal(t, domain.DefaultClub, session.ActiveClub)
	require.Equal(t, domain.PermissionRead, session.ActivePermission)

	// The cookie is accepted by a protected endpoint.
	res = doJSON(t, router, http.MethodGet, "/clubs", cookies[0], nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	// The spent state cannot be replayed.
	res = doJSON(t, router, http.MethodGet, callback, nil, nil)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
}
