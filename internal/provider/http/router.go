package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/oauth1d/internal/provider/metrics"
	"github.com/aussiebroadwan/oauth1d/internal/provider/service"
	"github.com/aussiebroadwan/oauth1d/internal/provider/store"
	"github.com/aussiebroadwan/oauth1d/pkg/httpx"
	"github.com/aussiebroadwan/oauth1d/pkg/jwtx"
	"github.com/aussiebroadwan/oauth1d/pkg/slogx"

	_ "github.com/aussiebroadwan/oauth1d/api/oauth1d" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// SessionCookieName holds the session JWT minted by the login front-end.
const SessionCookieName = "oauth1d_session"

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	metrics      *metrics.Metrics
	views        *Views

	// LoginURL receives browsers without a session. Empty answers 401.
	LoginURL string

	store            store.Store
	AuthorizeService *service.AuthorizeService
	ExchangeService  *service.ExchangeService
	RevokeService    *service.RevokeService
	ClientService    *service.ClientService
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	m *metrics.Metrics,
	logger *slog.Logger,
) (*Router, error) {
	views, err := NewViews()
	if err != nil {
		return nil, err
	}

	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		metrics:      m,
		views:        views,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r, nil
}

func (r *Router) ApplyRoutes() {
	r.registerOAuth()
	r.registerClients()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			oauth1d
//	@version		0.1.0
//	@description	OAuth 1.0a provider: request token authorization, credential exchange and revocation.
//	@description
//	@description				Browser routes use a session JWT from the oauth1d_session cookie.
//	@description				The admin API takes the same JWT as a Bearer token with admin scopes.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/oauth1d
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
//	@description				Session JWT. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// route registers h under pattern with per-route request counting.
func (r *Router) route(pattern string, h http.Handler, mws ...httpx.Middleware) {
	if r.metrics != nil {
		mws = append([]httpx.Middleware{r.metrics.Instrument(pattern)}, mws...)
	}
	r.Mux.Handle(pattern, httpx.Chain(h, mws...))
}

func (r *Router) session() httpx.Middleware {
	return httpx.SessionMiddleware(r.verifier, httpx.SessionOptions{
		CookieName: SessionCookieName,
		LoginURL:   r.LoginURL,
	})
}

func (r *Router) registerOAuth() {
	authorize := &AuthorizeHandler{AuthorizeService: r.AuthorizeService, Views: r.views}

	// GET /authorize - only renders the form
	r.route("GET /oauth/authorize", http.HandlerFunc(authorize.HandleGet),
		httpx.RateLimitByIP(httpx.LenientLimit),
		r.session(),
	)

	r.route("POST /oauth/authorize", http.HandlerFunc(authorize.HandlePost),
		httpx.RateLimitByIP(httpx.ModerateLimit),
		httpx.RequireSameOrigin(),
		r.session(),
	)

	// The exchange is the only route where secrets can be probed.
	r.route("POST /oauth/access_token", &AccessTokenHandler{ExchangeService: r.ExchangeService},
		httpx.RateLimitByIP(httpx.StrictLimit),
	)

	tokens := &TokensHandler{RevokeService: r.RevokeService, Views: r.views}

	r.route("GET /oauth/tokens", http.HandlerFunc(tokens.HandleList),
		httpx.RateLimitByIP(httpx.LenientLimit),
		r.session(),
	)

	r.route("POST /oauth/revoke", http.HandlerFunc(tokens.HandleRevoke),
		httpx.RateLimitByIP(httpx.ModerateLimit),
		httpx.RequireSameOrigin(),
		r.session(),
	)
}

func (r *Router) registerClients() {
	h := &ClientsHandler{ClientService: r.ClientService}

	r.route("POST /v1/clients", http.HandlerFunc(h.HandleCreate),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope("admin:write"),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)

	r.route("GET /v1/clients", http.HandlerFunc(h.HandleList),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope("admin:read", "admin:write"),
		httpx.RateLimitByUser(httpx.LenientLimit),
	)
}

func (r *Router) registerSystem() {
	// Health probes may be polled frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	if r.metrics != nil {
		r.Mux.Handle("GET /metrics", r.metrics.Handler())
	}
}
