package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/spacehub/internal/accounts/domain"
	"github.com/aussiebroadwan/spacehub/internal/accounts/service"
	"github.com/aussiebroadwan/spacehub/internal/accounts/store"
	"github.com/aussiebroadwan/spacehub/pkg/httpx"
	"github.com/aussiebroadwan/spacehub/pkg/jwtx"
	"github.com/aussiebroadwan/spacehub/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/aussiebroadwan/spacehub/api/accounts" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// RateLimits are the limiter profiles applied per route class.
type RateLimits struct {
	Strict   httpx.RateLimitConfig
	Moderate httpx.RateLimitConfig
	Lenient  httpx.RateLimitConfig
}

// DefaultRateLimits returns the httpx profiles.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		Strict:   httpx.StrictLimit,
		Moderate: httpx.ModerateLimit,
		Lenient:  httpx.LenientLimit,
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	limiter  httpx.LimiterStore
	limits   RateLimits
	registry *prometheus.Registry

	AccountService    *service.AccountService
	ProfileService    *service.ProfileService
	InvitationService *service.InvitationService
	AdminService      *service.AdminService
	Authorizer        *service.Authorizer
}

// NewRouter builds a router. limiter may be nil for an in-memory store, and
// registry nil to skip metrics.
func NewRouter(
	keys *jwtx.KeySet,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
	limiter httpx.LimiterStore,
	limits RateLimits,
	registry *prometheus.Registry,
) *Router {
	if limiter == nil {
		limiter = httpx.NewMemoryStore()
	}
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		limiter:      limiter,
		limits:       limits,
		registry:     registry,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}
	if registry != nil {
		r.middlewares = append(r.middlewares, httpx.Metrics(registry))
	}
	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerMe()
	r.registerInvitations()
	r.registerAccounts()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Spacehub Accounts API
//	@version		0.1.0
//	@description	Signup, verification, login, password recovery, profiles and manager invitations for the spacehub marketplace.
//	@description
//	@description				Session tokens are JWTs; EdDSA keys are published at /.well-known/jwks.json.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/spacehub
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) byIP(cfg httpx.RateLimitConfig) httpx.Middleware {
	return httpx.RateLimitByIP(r.limiter, cfg)
}

func (r *Router) byPrincipal(cfg httpx.RateLimitConfig) httpx.Middleware {
	return httpx.RateLimitByPrincipal(r.limiter, cfg)
}

// secured wraps h in bearer authentication, an optional role gate and a
// per-account limit.
func (r *Router) secured(h http.HandlerFunc, cfg httpx.RateLimitConfig, roles ...domain.Role) http.Handler {
	mws := []httpx.Middleware{httpx.AuthnMiddleware(authenticator{authz: r.Authorizer})}
	if len(roles) > 0 {
		names := make([]string, len(roles))
		for i, role := range roles {
			names[i] = string(role)
		}
		mws = append(mws, httpx.RestrictTo(names...))
	}
	mws = append(mws, scopeLogger, r.byPrincipal(cfg))
	return httpx.Chain(h, mws...)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{Accounts: r.AccountService, Profiles: r.ProfileService}

	// Credential and code endpoints - strict limit by IP (brute force)
	public := map[string]http.HandlerFunc{
		"POST /v1/auth/signup":          h.HandleSignup,
		"POST /v1/auth/verify-otp":      h.HandleVerifyOTP,
		"POST /v1/auth/resend-otp":      h.HandleResendOTP,
		"POST /v1/auth/login":           h.HandleLogin,
		"POST /v1/auth/forgot-password": h.HandleForgotPassword,
		"PATCH /v1/auth/reset-password": h.HandleResetPassword,
	}
	for pattern, fn := range public {
		r.Mux.Handle(pattern, httpx.Chain(fn, r.byIP(r.limits.Strict)))
	}

	r.Mux.Handle("PATCH /v1/auth/password", r.secured(h.HandleUpdatePassword, r.limits.Strict))
}

func (r *Router) registerMe() {
	h := &MeHandler{Profiles: r.ProfileService}

	r.Mux.Handle("GET /v1/me", r.secured(h.HandleGet, r.limits.Lenient))
	r.Mux.Handle("PATCH /v1/me", r.secured(h.HandleUpdate, r.limits.Moderate))
	r.Mux.Handle("PATCH /v1/me/profile", r.secured(h.HandleUpdateProfile, r.limits.Moderate))
	r.Mux.Handle("DELETE /v1/me", r.secured(h.HandleDeactivate, r.limits.Moderate))

	// Cards only make sense for roles that pay
	r.Mux.Handle("POST /v1/me/cards",
		r.secured(h.HandleAddCard, r.limits.Moderate, domain.RoleCustomer, domain.RoleStorageOwner))
	r.Mux.Handle("DELETE /v1/me/cards/{cardID}",
		r.secured(h.HandleRemoveCard, r.limits.Moderate, domain.RoleCustomer, domain.RoleStorageOwner))
}

func (r *Router) registerInvitations() {
	h := &InvitationHandler{Invitations: r.InvitationService, Profiles: r.ProfileService}

	r.Mux.Handle("POST /v1/invitations",
		r.secured(h.HandleInvite, r.limits.Moderate, domain.RoleAdmin, domain.RoleStorageOwner))

	// Public onboarding steps - strict limit by IP
	r.Mux.Handle("GET /v1/invitations/accept", httpx.Chain(http.HandlerFunc(h.HandleAccept), r.byIP(r.limits.Strict)))
	r.Mux.Handle("POST /v1/invitations/complete", httpx.Chain(http.HandlerFunc(h.HandleComplete), r.byIP(r.limits.Strict)))
}

func (r *Router) registerAccounts() {
	h := &AccountsHandler{Admin: r.AdminService}

	r.Mux.Handle("GET /v1/accounts", r.secured(h.HandleList, r.limits.Moderate, domain.RoleAdmin))
	r.Mux.Handle("GET /v1/accounts/{id}", r.secured(h.HandleGet, r.limits.Moderate, domain.RoleAdmin))
	r.Mux.Handle("PATCH /v1/accounts/{id}/role", r.secured(h.HandleChangeRole, r.limits.Moderate, domain.RoleAdmin))
	r.Mux.Handle("PATCH /v1/accounts/{id}/status", r.secured(h.HandleSetStatus, r.limits.Moderate, domain.RoleAdmin))
}

func (r *Router) registerSystem() {
	// Probes and discovery - lenient limits, monitoring may poll frequently
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys), r.byIP(r.limits.Lenient)))
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion), r.byIP(r.limits.Lenient)))
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys), r.byIP(r.limits.Lenient)))

	if r.registry != nil {
		r.Mux.Handle("GET /metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry}))
	}
}
