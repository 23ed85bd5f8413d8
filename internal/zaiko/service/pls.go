package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/datasektionen/zaiko/internal/zaiko/domain"
)

// ErrMalformedGrant reports a permission entry from pls that does not
// follow the "{club}-{level}" form. Resolution fails as a whole rather
// than silently granting a partial set.
var ErrMalformedGrant = errors.New("service: malformed pls grant")

// PermissionService resolves a verified subject to its club grants by
// asking the external pls authorization service.
type PermissionService struct {
	BaseURL string
	Client  *http.Client
}

func NewPermissionService(baseURL string) *PermissionService {
	return &PermissionService{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Resolve fetches the subject's grants. The result is seeded with a Read
// grant for the default club so every authenticated subject has baseline
// access; fetched entries override the seed for the same club.
func (s *PermissionService) Resolve(ctx context.Context, subject string) (map[string]domain.Permission, error) {
	endpoint := fmt.Sprintf("%s/user/%s/zaiko", s.BaseURL, url.PathEscape(subject))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	res, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("service: pls request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("service: pls responded %d", res.StatusCode)
	}

	var entries []string
	if err := json.NewDecoder(res.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("service: decoding pls response: %w", err)
	}

	permissions := map[string]domain.Permission{
		domain.DefaultClub: domain.PermissionRead,
	}

	for _, entry := range entries {
		club, level, ok := strings.Cut(entry, "-")
		if !ok || club == "" {
			return nil, fmt.Errorf("%w: %q", ErrMalformedGrant, entry)
		}
		permission, err := domain.ParsePermission(level)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedGrant, entry)
		}
		permissions[club] = permission
	}

	return permissions, nil
}
