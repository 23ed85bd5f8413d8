package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/datasektionen/zaiko/internal/zaiko/domain"
	"github.com/datasektionen/zaiko/pkg/slogx"
)

// LoginService is the OIDC relying party: it builds authorization URLs
// for fresh login attempts and completes them when the provider calls
// back. Provider metadata is discovered once at construction; failing
// that, the process cannot serve logins at all and refuses to start.
type LoginService struct {
	oauth    oauth2.Config
	verifier *oidc.IDTokenVerifier

	// client carries the request timeout for every call to the provider:
	// discovery, the code exchange and key fetches during verification.
	client *http.Client

	States      LoginStateStore
	Permissions *PermissionService

	// RequireAccessTokenHash makes an absent at_hash claim fatal instead
	// of skipping the access-token binding check.
	RequireAccessTokenHash bool
}

// LoginConfig carries the relying-party registration with the provider.
type LoginConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// HTTPClient overrides the default timeout-bounded client used for
	// all provider traffic.
	HTTPClient *http.Client

	RequireAccessTokenHash bool
}

const defaultProviderTimeout = 10 * time.Second

// NewLoginService discovers the provider's metadata and wires up the
// code-flow client. The passed context bounds the discovery request.
func NewLoginService(
	ctx context.Context,
	cfg LoginConfig,
	states LoginStateStore,
	permissions *PermissionService,
) (*LoginService, error) {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultProviderTimeout}
	}

	provider, err := oidc.NewProvider(oidc.ClientContext(ctx, client), cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("service: oidc discovery failed: %w", err)
	}

	return &LoginService{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID},
		},
		verifier:               provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		client:                 client,
		States:                 states,
		Permissions:            permissions,
		RequireAccessTokenHash: cfg.RequireAccessTokenHash,
	}, nil
}

// BeginLogin starts a login attempt: a fresh state/nonce pair is parked
// in the state store and the provider's authorization URL is returned.
func (s *LoginService) BeginLogin(ctx context.Context) (string, error) {
	state, nonce := randomToken(), randomToken()
	if err := s.States.Put(ctx, state, nonce); err != nil {
		return "", fmt.Errorf("service: storing login state: %w", err)
	}
	return s.oauth.AuthCodeURL(state, oidc.Nonce(nonce)), nil
}

// CompleteLogin finishes one login attempt. No side effect happens until
// every check passes; a session is returned only on full success.
//
// Order matters: the echoed state is checked against the pending attempt
// before any network call to the token endpoint is made.
func (s *LoginService) CompleteLogin(ctx context.Context, code, state string) (*domain.Session, error) {
	log := slogx.FromContext(ctx)

	nonce, err := s.States.Take(ctx, state)
	if err != nil {
		return nil, err
	}

	// Exchange and key fetches go through the timeout-bounded client.
	ctx = oidc.ClientContext(ctx, s.client)

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("service: code exchange failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("service: token response carried no id_token")
	}

	// Signature, issuer, audience and expiry are all enforced here. An
	// unverified ID token must never be trusted for identity.
	idToken, err := s.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("service: id token verification failed: %w", err)
	}

	if idToken.Nonce != nonce {
		return nil, errors.New("service: id token nonce mismatch")
	}

	// Bind the ID token to the access token it was issued with, so a
	// token swapped in transit is rejected.
	if idToken.AccessTokenHash != "" {
		if err := idToken.VerifyAccessToken(token.AccessToken); err != nil {
			log.Error("access token hash mismatch", "subject", idToken.Subject)
			return nil, fmt.Errorf("service: access token binding failed: %w", err)
		}
	} else if s.RequireAccessTokenHash {
		return nil, errors.New("service: id token carried no at_hash claim")
	}

	permissions, err := s.Permissions.Resolve(ctx, idToken.Subject)
	if err != nil {
		return nil, err
	}

	return domain.NewSession(idToken.Subject, permissions)
}

// randomToken returns a 256-bit URL-safe random value for state and
// nonce parameters.
func randomToken() string {
	var b [32]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
