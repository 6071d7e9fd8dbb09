package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "visit_polzela/internal/adapters/http_server"
	"visit_polzela/internal/adapters/observability"
	"visit_polzela/internal/app"
	"visit_polzela/internal/catalog"
	"visit_polzela/internal/domain"
	"visit_polzela/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// snapshot store; the API keeps serving fresh data without one
	var store domain.SnapshotStore
	st, closeStore, err := shared.OpenSnapshotStore(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Str("backend", cfg.SnapshotBackend).Msg("snapshot store unavailable; offline mode will serve nothing")
	} else {
		store = st
		defer closeStore()
	}

	// deps
	fsys := os.DirFS(cfg.DataDir)
	titles := catalog.NewTitleCache(fsys)
	loader := catalog.NewLoader(fsys, titles)
	syn := app.NewSynchronizer(store, shared.NewProbe(cfg), cfg.DataVersion, cfg.SyncTimeout)
	svc := app.NewCatalogService(loader, titles, syn)
	langs := catalog.NewLanguages(cfg.DefaultLang, cfg.SupportedLangs)

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Svc: svc, Langs: langs})

	log.Info().
		Str("addr", cfg.HTTPAddr).
		Str("data_dir", cfg.DataDir).
		Strs("langs", langs.Supported()).
		Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	// let pending snapshot writes land before the store closes
	syn.Wait()
	log.Info().Msg("API stopped")
}
