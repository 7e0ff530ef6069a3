package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Simplici0/printshop/internal/config"
	"github.com/Simplici0/printshop/internal/costbasis"
	"github.com/Simplici0/printshop/internal/db"
	"github.com/Simplici0/printshop/internal/logging"
	"github.com/Simplici0/printshop/internal/migrations"
	"github.com/Simplici0/printshop/internal/prints"
	"github.com/Simplici0/printshop/internal/seed"
	"github.com/Simplici0/printshop/internal/store"
)

type server struct {
	auth    *authService
	store   *store.SQLiteStore
	prints  *prints.Service
	metrics *metrics
	locale  string
}

func newServer(st *store.SQLiteStore, sessionSecret, locale string, secureCookies bool) *server {
	return &server{
		auth:    newAuthService(st, sessionSecret, secureCookies),
		store:   st,
		prints:  prints.NewService(st, locale),
		metrics: newMetrics(),
		locale:  locale,
	}
}

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		slog.Error("failed to run database migrations", "error", err)
		os.Exit(1)
	}
	version, err := migrations.Version(database)
	if err != nil {
		slog.Error("failed to read schema version", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrated", "version", version)

	stats, err := seed.Run(ctx, database, seed.Config{AdminEmail: cfg.AdminEmail, AdminPassword: cfg.AdminPassword})
	if err != nil {
		slog.Error("failed to seed database", "error", err)
		os.Exit(1)
	}
	slog.Info("seed complete", "inserts", stats.Inserts, "updates", stats.Updates)

	srv := newServer(store.New(database), cfg.SessionSecret, cfg.Locale, !cfg.IsDev())

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("listening", "addr", httpServer.Addr, "env", cfg.Env)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.handler())
	r.Post("/login", s.handleLoginSubmit)
	r.Post("/logout", s.handleLogout)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handleUpdateSettings)

		mountResource(r, "/printers", resource[costbasis.Printer]{
			list: s.store.ListPrinters, create: s.store.CreatePrinter, update: s.store.UpdatePrinter,
			setID:    func(p *costbasis.Printer, id int64) { p.ID = id },
			defaults: func(p *costbasis.Printer) { p.Active = true },
		})
		mountResource(r, "/filaments", resource[costbasis.Filament]{
			list: s.store.ListFilaments, create: s.store.CreateFilament, update: s.store.UpdateFilament,
			setID:    func(f *costbasis.Filament, id int64) { f.ID = id },
			defaults: func(f *costbasis.Filament) { f.Active = true },
		})
		mountResource(r, "/tariffs", resource[costbasis.ElectricityTariff]{
			list: s.store.ListElectricityTariffs, create: s.store.CreateElectricityTariff, update: s.store.UpdateElectricityTariff,
			setID:    func(t *costbasis.ElectricityTariff, id int64) { t.ID = id },
			defaults: func(t *costbasis.ElectricityTariff) { t.Active = true },
		})
		mountResource(r, "/shipping", resource[costbasis.ShippingOption]{
			list: s.store.ListShippingOptions, create: s.store.CreateShippingOption, update: s.store.UpdateShippingOption,
			setID:    func(o *costbasis.ShippingOption, id int64) { o.ID = id },
			defaults: func(o *costbasis.ShippingOption) { o.Active = true },
		})
		mountResource(r, "/consumables", resource[costbasis.Consumable]{
			list: s.store.ListConsumables, create: s.store.CreateConsumable, update: s.store.UpdateConsumable,
			setID:    func(c *costbasis.Consumable, id int64) { c.ID = id },
			defaults: func(c *costbasis.Consumable) { c.Active = true },
		})
		mountResource(r, "/fixed-expenses", resource[costbasis.FixedExpense]{
			list: s.store.ListFixedExpenses, create: s.store.CreateFixedExpense, update: s.store.UpdateFixedExpense,
			setID:    func(e *costbasis.FixedExpense, id int64) { e.ID = id },
			defaults: func(e *costbasis.FixedExpense) { e.Active = true },
		})

		r.Get("/parse-time", s.handleParseTime)
		r.Post("/calculate", s.handleCalculate)

		r.Get("/prints", s.handleListPrints)
		r.Post("/prints", s.handleSavePrint)
		r.Get("/prints/{id}", s.handleGetPrint)
		r.Put("/prints/{id}", s.handleResavePrint)
		r.Get("/prints/{id}/text", s.handlePrintText)
		r.Post("/prints/{id}/publish", s.handlePublishPrint)

		r.Get("/products", s.handleListProducts)
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	valid, err := s.auth.validateCredentials(r.Context(), email, password)
	if err != nil {
		slog.Error("authentication failed", "error", err)
		writeError(w, http.StatusInternalServerError, "authentication error")
		return
	}
	if !valid {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	s.auth.setSessionCookie(w, email)
	writeJSON(w, http.StatusOK, map[string]string{"email": email})
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.auth.sessionEmail(r); !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
