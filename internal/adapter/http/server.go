package adapthttp

import (
	"net/http"

	"needsstep/internal/adapter/graph"
	"needsstep/internal/app"
	"needsstep/internal/domain"
	"needsstep/internal/logging"
	"needsstep/internal/metrics"

	"github.com/charmbracelet/log"
	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// OIDCConfig holds the configuration for OpenID Connect.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config oauth2.Config
}

// Server is the driving HTTP adapter that routes requests to the GraphQL
// schema and the auth service.
type Server struct {
	authSvc      *app.AuthService
	graph        *graph.Schema
	oidcConfig   OIDCConfig
	log          *log.Logger
	metrics      *metrics.Metrics
	forwardAuth  bool
	disableAuth  bool
	fixedUser    *domain.User
	secureCookie bool
}

// New creates a Server wired to the given services.
func New(authSvc *app.AuthService, schema *graph.Schema, oidcConfig OIDCConfig) *Server {
	return &Server{
		authSvc:    authSvc,
		graph:      schema,
		oidcConfig: oidcConfig,
		log:        logging.Discard(),
	}
}

// WithLogger sets the request logger.
func (s *Server) WithLogger(l *log.Logger) *Server {
	s.log = l
	return s
}

// WithMetrics records request metrics and serves them on /metrics.
func (s *Server) WithMetrics(m *metrics.Metrics) *Server {
	s.metrics = m
	return s
}

// WithForwardAuth trusts the Remote-User header set by an authenticating
// reverse proxy.
func (s *Server) WithForwardAuth() *Server {
	s.forwardAuth = true
	return s
}

// WithSecureCookies marks session cookies Secure.
func (s *Server) WithSecureCookies() *Server {
	s.secureCookie = true
	return s
}

// WithoutAuth skips authentication and serves every request as u. For tests.
func (s *Server) WithoutAuth(u *domain.User) *Server {
	s.disableAuth = true
	s.fixedUser = u
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/auth/login", s.handleLogin)
	api.HandleFunc("/auth/logout", s.handleLogout)
	api.HandleFunc("/auth/setup", s.handleSetupUser)
	api.HandleFunc("/auth/config", s.handleConfig)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", withNoCache(api)))
	root.Handle("/graphql", withNoCache(s.authMiddleware(http.HandlerFunc(s.handleGraphQL))))
	if s.metrics != nil {
		root.Handle("/metrics", s.metrics.Handler())
	}

	return s.loggingMiddleware(s.metricsMiddleware(root))
}
