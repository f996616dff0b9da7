package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	adapthttp "needsstep/internal/adapter/http"
	"needsstep/internal/adapter/graph"
	"needsstep/internal/app"
	"needsstep/internal/domain"
	"needsstep/internal/metrics"
)

// ServeCmd runs the HTTP server until interrupted.
type ServeCmd struct {
	Addr             string        `help:"Listen address." env:"ADDR" default:":8080"`
	SessionTTL       time.Duration `help:"Session lifetime." env:"SESSION_TTL" default:"24h"`
	SweepInterval    time.Duration `help:"How often expired sessions are purged; 0 disables." env:"SESSION_SWEEP_INTERVAL" default:"1h"`
	TrustForwardAuth bool          `help:"Trust the Remote-User header from a reverse proxy." env:"TRUST_FORWARD_AUTH"`
	SecureCookies    bool          `help:"Mark session cookies Secure." env:"SECURE_COOKIES"`

	OIDCIssuer       string `help:"OIDC issuer URL; enables SSO when set." env:"OIDC_ISSUER"`
	OIDCClientID     string `help:"OIDC client id." env:"OIDC_CLIENT_ID"`
	OIDCClientSecret string `help:"OIDC client secret." env:"OIDC_CLIENT_SECRET"`
	OIDCRedirectURL  string `help:"OIDC redirect URL." env:"OIDC_REDIRECT_URL"`
}

func (c *ServeCmd) Run(rc *runContext) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	needs := app.NewNeedService(rc.Store.Entries(domain.NeedKind), rc.Store.Measurements(domain.NeedKind), rc.Store.NeedQuestions(), rc.Log)
	targets := app.NewTargetService(rc.Store.Entries(domain.TargetKind), rc.Store.Measurements(domain.TargetKind), rc.Store.TargetNames(), rc.Log)
	authSvc := app.NewAuthService(rc.Store.Users(), rc.Store.Sessions(), c.SessionTTL)

	schema, err := graph.New(needs, targets, graph.WithLogger(rc.Log), graph.WithObserver(m.ObserveOperation))
	if err != nil {
		return fmt.Errorf("build schema: %w", err)
	}

	oidcConfig, err := c.loadOIDC(ctx)
	if err != nil {
		return err
	}

	srv := adapthttp.New(authSvc, schema, oidcConfig).WithLogger(rc.Log).WithMetrics(m)
	if c.TrustForwardAuth {
		srv = srv.WithForwardAuth()
	}
	if c.SecureCookies {
		srv = srv.WithSecureCookies()
	}

	if c.SweepInterval > 0 {
		go sweepSessions(ctx, authSvc, m, rc, c.SweepInterval)
	}

	httpSrv := &http.Server{
		Addr:              c.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		rc.Log.Info("listening", "addr", c.Addr, "sso", oidcConfig.Enabled)
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	rc.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func (c *ServeCmd) loadOIDC(ctx context.Context) (adapthttp.OIDCConfig, error) {
	if c.OIDCIssuer == "" {
		return adapthttp.OIDCConfig{}, nil
	}
	provider, err := oidc.NewProvider(ctx, c.OIDCIssuer)
	if err != nil {
		return adapthttp.OIDCConfig{}, fmt.Errorf("oidc provider: %w", err)
	}
	return adapthttp.OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: oauth2.Config{
			ClientID:     c.OIDCClientID,
			ClientSecret: c.OIDCClientSecret,
			RedirectURL:  c.OIDCRedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

func sweepSessions(ctx context.Context, authSvc *app.AuthService, m *metrics.Metrics, rc *runContext, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := authSvc.PurgeExpired(ctx)
			if err != nil {
				rc.Log.Warn("purge sessions", "err", err)
				continue
			}
			m.SessionsPurged(n)
			if n > 0 {
				rc.Log.Debug("purged sessions", "count", n)
			}
		}
	}
}
