package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datasektionen/zaiko/internal/zaiko/domain"
	"github.com/datasektionen/zaiko/internal/zaiko/service"
	"github.com/datasektionen/zaiko/internal/zaiko/store/drivers/sqlite"
)

func newTestRouter(t *testing.T) (*Router, *service.SessionService) {
	t.Helper()
	return newTestRouterWithLogin(t, nil)
}

func newTestRouterWithLogin(t *testing.T, login *service.LoginService) (*Router, *service.SessionService) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	sessions := newSessionService()
	auth := &SessionAuth{Sessions: sessions, LoginPath: "/login", APIMode: true}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	r := NewRouter(auth, "test", st, logger)
	r.LoginService = login
	r.SessionService = sessions
	r.ItemService = &service.ItemService{Store: st}
	r.SupplierService = &service.SupplierService{Store: st}
	r.StockService = &service.StockService{Store: st}
	r.ApplyRoutes()
	return r, sessions
}

func doJSON(t *testing.T, router *Router, method, target string, cookie *http.Cookie, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec.Result()
}

func decodeBody[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	return v
}

func TestClubEndpoints(t *testing.T) {
	t.Parallel()

	grants := map[string]domain.Permission{
		domain.DefaultClub: domain.PermissionRead,
		"spexet":           domain.PermissionReadWrite,
	}

	t.Run("clubs require a session", func(t *testing.T) {
		router, _ := newTestRouter(t)
		res := doJSON(t, router, http.MethodGet, "/clubs", nil, nil)
		require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})

	t.Run("clubs lists grants and the active club", func(t *testing.T) {
		router, sessions := newTestRouter(t)
		cookie := mintCookie(t, sessions, grants, "")

		res := doJSON(t, router, http.MethodGet, "/clubs", cookie, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)

		body := decodeBody[clubsResponse](t, res)
		require.Equal(t, domain.DefaultClub, body.Active)
		require.Equal(t, []domain.Club{
			{Name: domain.DefaultClub, Permission: domain.PermissionRead},
			{Name: "spexet", Permission: domain.PermissionReadWrite},
		}, body.Clubs)
	})

	t.Run("switching to a granted club re-signs the cookie", func(t *testing.T) {
		router, sessions := newTestRouter(t)
		cookie := mintCookie(t, sessions, grants, "")

		res := doJSON(t, router, http.MethodPost, "/club?club=spexet", cookie, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)

		body := decodeBody[domain.Club](t, res)
		require.Equal(t, domain.Club{Name: "spexet", Permission: domain.PermissionReadWrite}, body)

		// Exactly one replacement cookie, carrying the new active club.
		renewed := sessionCookies(res)
		require.Len(t, renewed, 1)
		got, err := sessions.Verify(renewed[0].Value)
		require.NoError(t, err)
		require.Equal(t, "spexet", got.ActiveClub)
		require.Equal(t, domain.PermissionReadWrite, got.ActivePermission)
	})

	t.Run("switching to an ungranted club is refused without a cookie", func(t *testing.T) {
		router, sessions := newTestRouter(t)
		cookie := mintCookie(t, sessions, grants, "")

		res := doJSON(t, router, http.MethodPost, "/club?club=dkm", cookie, nil)
		require.Equal(t, http.StatusUnauthorized, res.StatusCode)
		require.Empty(t, sessionCookies(res))
	})

	t.Run("missing club parameter", func(t *testing.T) {
		router, sessions := newTestRouter(t)
		cookie := mintCookie(t, sessions, grants, "")

		res := doJSON(t, router, http.MethodPost, "/club", cookie, nil)
		require.Equal(t, http.StatusBadRequest, res.StatusCode)
	})
}

func TestCallbackValidation(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	for _, target := range []string{
		"/api/oidc/callback",
		"/api/oidc/callback?code=abc",
		"/api/oidc/callback?state=xyz",
	} {
		res := doJSON(t, router, http.MethodGet, target, nil, nil)
		require.Equal(t, http.StatusBadRequest, res.StatusCode, "target %s", target)
	}
}

func TestItemEndpoints(t *testing.T) {
	t.Parallel()

	readCookie := func(t *testing.T, sessions *service.SessionService) *http.Cookie {
		return mintCookie(t, sessions, map[string]domain.Permission{
			domain.DefaultClub: domain.PermissionRead,
		}, "")
	}
	rwCookie := func(t *testing.T, sessions *service.SessionService) *http.Cookie {
		return mintCookie(t, sessions, map[string]domain.Permission{
			domain.DefaultClub: domain.PermissionReadWrite,
		}, "")
	}

	t.Run("read grant can list but not create", func(t *testing.T) {
		router, sessions := newTestRouter(t)
		cookie := readCookie(t, sessions)

		res := doJSON(t, router, http.MethodGet, "/api/item", cookie, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		require.Equal(t, []domain.Item{}, decodeBody[[]domain.Item](t, res))

		res = doJSON(t, router, http.MethodPost, "/api/item", cookie,
			domain.Item{Name: "Tejp", Location: "A"})
		require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})

	t.Run("create, list, update, delete", func(t *testing.T) {
		router, sessions := newTestRouter(t)
		cookie := rwCookie(t, sessions)

		res := doJSON(t, router, http.MethodPost, "/api/item", cookie,
			domain.Item{Name: "Gaffatejp", Location: "Hylla 3", Current: 4})
		require.Equal(t, http.StatusOK, res.StatusCode)

		res = doJSON(t, router, http.MethodGet, "/api/item", cookie, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		items := decodeBody[[]domain.Item](t, res)
		require.Len(t, items, 1)
		require.Equal(t, "Gaffatejp", items[0].Name)

		items[0].Current = 9
		res = doJSON(t, router, http.MethodPatch, "/api/item", cookie, items[0])
		require.Equal(t, http.StatusOK, res.StatusCode)

		res = doJSON(t, router, http.MethodGet, "/api/log?item=1", cookie, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		log := decodeBody[[]domain.StockEntry](t, res)
		require.Len(t, log, 2)

		res = doJSON(t, router, http.MethodDelete, "/api/item?id=1", cookie, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)

		res = doJSON(t, router, http.MethodGet, "/api/item", cookie, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		require.Empty(t, decodeBody[[]domain.Item](t, res))
	})

	t.Run("invalid payloads", func(t *testing.T) {
		router, sessions := newTestRouter(t)
		cookie := rwCookie(t, sessions)

		res := doJSON(t, router, http.MethodPost, "/api/item", cookie,
			domain.Item{Current: 1})
		require.Equal(t, http.StatusBadRequest, res.StatusCode)

		res = doJSON(t, router, http.MethodPatch, "/api/item", cookie,
			domain.Item{ID: 42, Name: "Tejp", Location: "A"})
		require.Equal(t, http.StatusNotFound, res.StatusCode)

		res = doJSON(t, router, http.MethodDelete, "/api/item?id=notanumber", cookie, nil)
		require.Equal(t, http.StatusBadRequest, res.StatusCode)
	})

	t.Run("club isolation", func(t *testing.T) {
		router, sessions := newTestRouter(t)

		spexet, err := domain.NewSession("a", map[string]domain.Permission{
			"spexet": domain.PermissionReadWrite,
		})
		require.NoError(t, err)
		spexetToken, err := sessions.Mint(spexet)
		require.NoError(t, err)

		res := doJSON(t, router, http.MethodPost, "/api/item", sessions.Cookie(spexetToken),
			domain.Item{Name: "Tejp", Location: "A"})
		require.Equal(t, http.StatusOK, res.StatusCode)

		// A session active in another club sees nothing.
		other := mintCookie(t, sessions, map[string]domain.Permission{
			domain.DefaultClub: domain.PermissionRead,
		}, "")
		res = doJSON(t, router, http.MethodGet, "/api/item", other, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		require.Empty(t, decodeBody[[]domain.Item](t, res))
	})
}

func TestSupplierEndpoints(t *testing.T) {
	t.Parallel()

	router, sessions := newTestRouter(t)
	cookie := mintCookie(t, sessions, map[string]domain.Permission{
		domain.DefaultClub: domain.PermissionReadWrite,
	}, "")

	res := doJSON(t, router, http.MethodPost, "/api/supplier", cookie,
		domain.Supplier{Name: "Bygghandeln"})
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = doJSON(t, router, http.MethodGet, "/api/suppliers", cookie, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	refs := decodeBody[[]domain.SupplierRef](t, res)
	require.Len(t, refs, 1)

	res = doJSON(t, router, http.MethodGet, "/api/supplier?id=1", cookie, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "Bygghandeln", decodeBody[string](t, res))

	res = doJSON(t, router, http.MethodPatch, "/api/supplier", cookie,
		domain.Supplier{ID: 1, Name: "Järnhandeln"})
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = doJSON(t, router, http.MethodGet, "/api/supplier", cookie, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	suppliers := decodeBody[[]domain.Supplier](t, res)
	require.Len(t, suppliers, 1)
	require.Equal(t, "Järnhandeln", suppliers[0].Name)

	res = doJSON(t, router, http.MethodDelete, "/api/supplier?id=1", cookie, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = doJSON(t, router, http.MethodGet, "/api/supplier?id=1", cookie, nil)
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestStockEndpoints(t *testing.T) {
	t.Parallel()

	router, sessions := newTestRouter(t)
	cookie := mintCookie(t, sessions, map[string]domain.Permission{
		domain.DefaultClub: domain.PermissionReadWrite,
	}, "")

	min, max := 5.0, 20.0
	res := doJSON(t, router, http.MethodPost, "/api/item", cookie,
		domain.Item{Name: "Tejp", Location: "A", Min: &min, Max: &max, Current: 10})
	require.Equal(t, http.StatusOK, res.StatusCode)

	// Fully stocked: nothing to order.
	res = doJSON(t, router, http.MethodGet, "/api/stock", cookie, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Empty(t, decodeBody[[]domain.ShortageItem](t, res))

	// Count it down below the minimum.
	res = doJSON(t, router, http.MethodPost, "/api/stock", cookie,
		[]domain.StockUpdate{{ItemID: 1, Amount: 2}})
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = doJSON(t, router, http.MethodGet, "/api/stock", cookie, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	shortages := decodeBody[[]domain.ShortageItem](t, res)
	require.Len(t, shortages, 1)
	require.Equal(t, 18.0, shortages[0].Order)

	res = doJSON(t, router, http.MethodGet, "/api/stats", cookie, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, domain.Stats{Items: 1, Suppliers: 0, Shortages: 1},
		decodeBody[domain.Stats](t, res))
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	res := doJSON(t, router, http.MethodGet, "/livez", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	live := decodeBody[HealthResponse](t, res)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	res = doJSON(t, router, http.MethodGet, "/readyz", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	ready := decodeBody[HealthResponse](t, res)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
}
