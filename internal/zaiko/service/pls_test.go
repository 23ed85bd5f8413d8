package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datasektionen/zaiko/internal/zaiko/domain"
)

func newPLS(t *testing.T, handler http.HandlerFunc) *PermissionService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewPermissionService(server.URL)
}

func TestPermissionResolve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("parses club-level grants", func(t *testing.T) {
		pls := newPLS(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/user/turetek/zaiko", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`["spexet-rw", "dkm-r"]`))
		})

		permissions, err := pls.Resolve(ctx, "turetek")
		require.NoError(t, err)
		require.Equal(t, map[string]domain.Permission{
			domain.DefaultClub: domain.PermissionRead,
			"spexet":           domain.PermissionReadWrite,
			"dkm":              domain.PermissionRead,
		}, permissions)
	})

	t.Run("seeds the default club on an empty grant list", func(t *testing.T) {
		pls := newPLS(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		})

		permissions, err := pls.Resolve(ctx, "turetek")
		require.NoError(t, err)
		require.Equal(t, map[string]domain.Permission{
			domain.DefaultClub: domain.PermissionRead,
		}, permissions)
	})

	t.Run("fetched grant overrides the default seed", func(t *testing.T) {
		pls := newPLS(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`["metadorerna-rw"]`))
		})

		permissions, err := pls.Resolve(ctx, "turetek")
		require.NoError(t, err)
		require.Equal(t, domain.PermissionReadWrite, permissions[domain.DefaultClub])
	})

	t.Run("escapes the subject in the request path", func(t *testing.T) {
		var gotPath string
		pls := newPLS(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.EscapedPath()
			_, _ = w.Write([]byte(`[]`))
		})

		_, err := pls.Resolve(ctx, "odd/subject")
		require.NoError(t, err)
		require.Equal(t, "/user/odd%2Fsubject/zaiko", gotPath)
	})

	t.Run("malformed entry fails the whole resolution", func(t *testing.T) {
		for _, body := range []string{
			`["spexet-rw", "noseparator"]`,
			`["spexet-rw", "-rw"]`,
			`["spexet-admin"]`,
			`["spexet-"]`,
		} {
			pls := newPLS(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			_, err := pls.Resolve(ctx, "turetek")
			require.ErrorIs(t, err, ErrMalformedGrant, "body %s", body)
		}
	})

	t.Run("non-200 response", func(t *testing.T) {
		pls := newPLS(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := pls.Resolve(ctx, "turetek")
		require.Error(t, err)
	})

	t.Run("non-JSON response", func(t *testing.T) {
		pls := newPLS(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		})

		_, err := pls.Resolve(ctx, "turetek")
		require.Error(t, err)
	})
}
