package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/venmoauth"
	"github.com/dmitrymomot/venmoauth/internal/config"
	"github.com/dmitrymomot/venmoauth/internal/session"
	"github.com/dmitrymomot/venmoauth/middlewares"
	"github.com/dmitrymomot/venmoauth/pkg/health"
	"github.com/dmitrymomot/venmoauth/pkg/metrics"
	"github.com/dmitrymomot/venmoauth/pkg/statestore"
)

type app struct {
	cfg      *config.Config
	log      *slog.Logger
	venmo    *venmoauth.Handler
	sessions *session.Manager
	ready    *health.Checker
	registry *prometheus.Registry
	router   chi.Router
	closers  []func() error
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger, extra ...venmoauth.Option) (*app, error) {
	a := &app{
		cfg:      cfg,
		log:      log,
		ready:    health.New(log, 0),
		registry: prometheus.NewRegistry(),
		sessions: session.New(cfg.Session.Secret, cfg.Session.CookieName, cfg.Session.TTL,
			session.WithSecure(cfg.Server.SecureCookies)),
	}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	observer := metrics.New("venmoauth")
	if err := observer.Register(a.registry); err != nil {
		return nil, err
	}

	opts := []venmoauth.Option{
		venmoauth.WithLogger(log),
		venmoauth.WithObserver(observer),
		venmoauth.WithSignIn(a.sessions.SignIn),
		venmoauth.WithSecureCookies(cfg.Server.SecureCookies),
		venmoauth.WithProvider(venmoauth.ProviderFuncs{
			OnAuthenticated: func(ctx context.Context, ac *venmoauth.AuthenticatedContext) error {
				log.DebugContext(ctx, "venmo profile fetched", slog.String("venmo_user", ac.UserName))
				return nil
			},
		}),
	}

	switch cfg.State.Backend {
	case config.StateMemory:
		opts = append(opts, venmoauth.WithStateDataFormat(statestore.NewMemory(cfg.State.TTL)))
	case config.StateRedis:
		client, err := statestore.OpenRedis(ctx, cfg.State.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		a.ready.Add("redis", func(ctx context.Context) error { return client.Ping(ctx).Err() })
		opts = append(opts, venmoauth.WithStateDataFormat(
			statestore.NewRedis(client, statestore.WithTTL(cfg.State.TTL)),
		))
	}

	h, err := venmoauth.New(cfg.Venmo, append(opts, extra...)...)
	if err != nil {
		a.close()
		return nil, err
	}
	a.venmo = h
	a.router = a.routes()
	return a, nil
}

func (a *app) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middlewares.RequestID())
	r.Use(middlewares.Recover(middlewares.WithRecoverLogger(a.log)))
	r.Use(a.venmo.Middleware)

	r.Get("/", a.index)
	r.Get("/login", a.login)
	r.Get("/me", a.me)
	r.Post("/logout", a.logout)
	// reached only when a callback failed before its return URL was recovered
	r.Get(a.venmo.CallbackPath(), func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/?error=access_denied", http.StatusFound)
	})

	r.Get("/healthz", health.Live)
	r.Get("/readyz", a.ready.Ready)
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	return r
}

func (a *app) index(w http.ResponseWriter, r *http.Request) {
	d := a.venmo.Description()
	writeJSON(w, http.StatusOK, map[string]string{
		"provider": d.AuthenticationType,
		"caption":  d.Caption,
		"login":    "/login",
		"error":    r.URL.Query().Get("error"),
	})
}

// login starts the Venmo flow. return_to must be a local path.
func (a *app) login(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("return_to")
	if target == "" || target[0] != '/' || (len(target) > 1 && (target[1] == '/' || target[1] == '\\')) {
		target = "/me"
	}
	if err := a.venmo.Challenge(w, r, venmoauth.NewProperties(target)); err != nil {
		a.log.ErrorContext(r.Context(), "venmo challenge failed", slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (a *app) me(w http.ResponseWriter, r *http.Request) {
	claims, err := a.sessions.Current(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not signed in"})
		return
	}
	writeJSON(w, http.StatusOK, claims)
}

func (a *app) logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.SignOut(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// run serves until ctx is cancelled or SIGINT/SIGTERM, then shuts down gracefully.
func (a *app) run(ctx context.Context) error {
	defer a.close()

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a.router,
		ReadHeaderTimeout: a.cfg.Server.ReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server starting",
			slog.String("address", ln.Addr().String()),
			slog.String("callback_path", a.venmo.CallbackPath()),
			slog.String("state_backend", a.cfg.State.Backend),
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Warn("close failed", slog.String("error", err.Error()))
		}
	}
	a.closers = nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
