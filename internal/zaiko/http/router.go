package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/datasektionen/zaiko/internal/zaiko/domain"
	"github.com/datasektionen/zaiko/internal/zaiko/service"
	"github.com/datasektionen/zaiko/internal/zaiko/store"
	"github.com/datasektionen/zaiko/pkg/httpx"
	"github.com/datasektionen/zaiko/pkg/slogx"

	_ "github.com/datasektionen/zaiko/api/zaiko" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	auth         *SessionAuth
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store           store.Store
	LoginService    *service.LoginService
	SessionService  *service.SessionService
	ItemService     *service.ItemService
	SupplierService *service.SupplierService
	StockService    *service.StockService
}

func NewRouter(
	auth *SessionAuth,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		auth:         auth,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerItems()
	r.registerSuppliers()
	r.registerStock()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Zaiko Inventory Service API
//	@version		0.1.0
//	@description	Multi-tenant storeroom inventory service for Datasektionen's clubs.
//	@description
//	@description				Authentication is a signed session cookie obtained through the OIDC
//	@description				login flow. Every /api route is scoped to the session's active club.
//
//	@contact.name				Konglig Datasektionen
//	@contact.url				https://github.com/datasektionen/zaiko
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	SessionCookie
//	@in							cookie
//	@name						token
//	@description				Signed session token minted by the OIDC callback.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		Login:    r.LoginService,
		Sessions: r.SessionService,
	}

	// GET /login - strict rate limit (kicks off an upstream OIDC flow
	// and allocates login state)
	r.Mux.Handle("GET /login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// GET /api/oidc/callback - strict rate limit (token exchange with
	// the provider)
	r.Mux.Handle("GET /api/oidc/callback",
		httpx.Chain(http.HandlerFunc(h.HandleCallback),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Session-gated: any granted club may list its grants or switch
	r.Mux.Handle("GET /clubs",
		httpx.Chain(http.HandlerFunc(h.HandleClubs),
			r.auth.Require(domain.PermissionRead),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /club",
		httpx.Chain(http.HandlerFunc(h.HandleSwitchClub),
			r.auth.Require(domain.PermissionRead),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerItems() {
	h := &ItemsHandler{Items: r.ItemService}

	securedList := httpx.Chain(http.HandlerFunc(h.HandleList),
		r.auth.Require(domain.PermissionRead),
		httpx.RateLimitByIP(httpx.LenientLimit),
	)
	securedAdd := httpx.Chain(http.HandlerFunc(h.HandleAdd),
		r.auth.Require(domain.PermissionReadWrite),
		httpx.RateLimitByIP(httpx.LenientLimit),
	)
	securedUpdate := httpx.Chain(http.HandlerFunc(h.HandleUpdate),
		r.auth.Require(domain.PermissionReadWrite),
		httpx.RateLimitByIP(httpx.LenientLimit),
	)
	securedDelete := httpx.Chain(http.HandlerFunc(h.HandleDelete),
		r.auth.Require(domain.PermissionReadWrite),
		httpx.RateLimitByIP(httpx.LenientLimit),
	)

	r.Mux.Handle("GET /api/item", securedList)
	r.Mux.Handle("POST /api/item", securedAdd)
	r.Mux.Handle("PATCH /api/item", securedUpdate)
	r.Mux.Handle("DELETE /api/item", securedDelete)
}

func (r *Router) registerSuppliers() {
	h := &SuppliersHandler{Suppliers: r.SupplierService}

	securedGet := httpx.Chain(http.HandlerFunc(h.HandleGet),
		r.auth.Require(domain.PermissionRead),
		httpx.RateLimitByIP(httpx.LenientLimit),
	)
	securedRefs := httpx.Chain(http.HandlerFunc(h.HandleListRefs),
		r.auth.Require(domain.PermissionRead),
		httpx.RateLimitByIP(httpx.LenientLimit),
	)
	securedAdd := httpx.Chain(http.HandlerFunc(h.HandleAdd),
		r.auth.Require(domain.PermissionReadWrite),
		httpx.RateLimitByIP(httpx.LenientLimit),
	)
	securedUpdate := httpx.Chain(http.HandlerFunc(h.HandleUpdate),
		r.auth.Require(domain.PermissionReadWrite),
		httpx.RateLimitByIP(httpx.LenientLimit),
	)
	securedDelete := httpx.Chain(http.HandlerFunc(h.HandleDelete),
		r.auth.Require(domain.PermissionReadWrite),
		httpx.RateLimitByIP(httpx.LenientLimit),
	)

	r.Mux.Handle("GET /api/supplier", securedGet)
	r.Mux.Handle("GET /api/suppliers", securedRefs)
	r.Mux.Handle("POST /api/supplier", securedAdd)
	r.Mux.Handle("PATCH /api/supplier", securedUpdate)
	r.Mux.Handle("DELETE /api/supplier", securedDelete)
}

func (r *Router) registerStock() {
	h := &StockHandler{Stock: r.StockService}

	securedShortage := httpx.Chain(http.HandlerFunc(h.HandleShortage),
		r.auth.Require(domain.PermissionRead),
		httpx.RateLimitByIP(httpx.LenientLimit),
	)
	securedTake := httpx.Chain(http.HandlerFunc(h.HandleTakeStock),
		r.auth.Require(domain.PermissionReadWrite),
		httpx.RateLimitByIP(httpx.LenientLimit),
	)
	securedLog := httpx.Chain(http.HandlerFunc(h.HandleLog),
		r.auth.Require(domain.PermissionRead),
		httpx.RateLimitByIP(httpx.LenientLimit),
	)
	securedStats := httpx.Chain(http.HandlerFunc(h.HandleStats),
		r.auth.Require(domain.PermissionRead),
		httpx.RateLimitByIP(httpx.LenientLimit),
	)

	r.Mux.Handle("GET /api/stock", securedShortage)
	r.Mux.Handle("POST /api/stock", securedTake)
	r.Mux.Handle("GET /api/log", securedLog)
	r.Mux.Handle("GET /api/stats", securedStats)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
