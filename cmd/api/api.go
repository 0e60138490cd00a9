package main

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aquadash/internal/auth"
	"aquadash/internal/domain/storage"
	"aquadash/internal/kv"
	"aquadash/internal/metrics"
	"aquadash/internal/ratelimiter"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         *storage.Container
	logger        *zap.SugaredLogger
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
	metrics       *metrics.Metrics
	registry      *prometheus.Registry
}

type config struct {
	addr        string
	env         string
	remote      remoteConfig
	kv          kv.Config
	auth        authConfig
	rateLimiter ratelimiter.Config
	mock        mockConfig
}

type remoteConfig struct {
	baseURL     string
	timeout     time.Duration
	defaultRole string
	parkID      string
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	secret string
	exp    time.Duration
	iss    string
}

type basicConfig struct {
	user string
	pass string
}

type mockConfig struct {
	seed    uint64
	latency time.Duration
	idSalt  string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)
		r.Get("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}).ServeHTTP)

		// Public routes
		r.Route("/authentication", func(r chi.Router) {
			r.With(app.RateLimiterMiddleware).Post("/login", app.loginHandler)
			r.With(app.AuthTokenMiddleware).Post("/logout", app.logoutHandler)
		})
		r.Get("/session", app.sessionHandler)

		// The consent banner is shown before login; reading or erasing the data needs a session.
		r.Route("/privacy", func(r chi.Router) {
			r.Get("/consent", app.getConsentHandler)
			r.Put("/consent", app.updateConsentHandler)
			r.Post("/consent/accept-all", app.acceptAllConsentHandler)
			r.Post("/consent/reject-optional", app.rejectOptionalConsentHandler)
			r.Get("/consent/expiry", app.consentExpiryHandler)
			r.Post("/events", app.recordEventHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware)
				r.Get("/events", app.listEventsHandler)
				r.Get("/export", app.exportUserDataHandler)
				r.Delete("/data", app.deleteUserDataHandler)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)

			r.Route("/waterparks", func(r chi.Router) {
				r.Get("/", app.listWaterParksHandler)
				r.With(app.RequireRole(roleSuperAdmin)).Post("/refresh", app.refreshWaterParksHandler)

				r.Route("/{parkID}", func(r chi.Router) {
					r.Use(app.RequireParkAccess)
					r.Get("/", app.getWaterParkHandler)
					r.Get("/checkers", app.getCheckersHandler)
					r.Get("/stats/daily", app.getDailyStatsHandler)
					r.Get("/stats/monthly", app.getMonthlyStatsHandler)
				})
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/summary", app.dashboardSummaryHandler)
				r.With(app.RequireRole(roleSuperAdmin)).Get("/tickets", app.ticketSummaryHandler)
			})

			r.Route("/notes", func(r chi.Router) {
				r.Get("/", app.listNotesHandler)
				r.Post("/", app.createNoteHandler)
				r.Put("/view", app.updateNotesViewHandler)
				r.Get("/stats", app.notesStatsHandler)
				r.Get("/weekly", app.notesWeeklyHandler)
				r.Patch("/{noteID}", app.updateNoteHandler)
				r.Delete("/{noteID}", app.deleteNoteHandler)
			})
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
