package main

import (
	"context"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"visit_polzela/internal/adapters/observability"
	"visit_polzela/internal/app"
	"visit_polzela/internal/catalog"
	"visit_polzela/internal/shared"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	langs := catalog.NewLanguages(cfg.DefaultLang, cfg.SupportedLangs)
	log.Info().
		Str("data_dir", cfg.DataDir).
		Str("backend", cfg.SnapshotBackend).
		Int("workers", cfg.WarmWorkers).
		Strs("langs", langs.Supported()).
		Msg("snapshot starting")

	store, closeStore, err := shared.OpenSnapshotStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("snapshot store unavailable")
	}
	defer closeStore()

	fsys := os.DirFS(cfg.DataDir)
	loader := catalog.NewLoader(fsys, catalog.NewTitleCache(fsys))
	syn := app.NewSynchronizer(store, nil, cfg.DataVersion, cfg.SyncTimeout)
	svc := app.NewSnapshotService(loader, syn)

	// 2) warm every language concurrently
	workers := cfg.WarmWorkers
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup

	for _, lang := range langs.Supported() {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(lang string) {
			defer wg.Done()
			defer sem.Release(1)

			n, err := svc.Warm(ctx, lang)
			if err != nil {
				log.Warn().Str("lang", lang).Err(err).Msg("warm failed")
				return
			}
			log.Info().Str("lang", lang).Int("pois", n).Msg("warm ok")
		}(lang)
	}
	wg.Wait()

	// 3) publish the default language
	n, err := svc.Publish(ctx, langs.Default())
	if err != nil {
		closeStore()
		log.Fatal().Err(err).Msg("publish failed")
	}
	log.Info().Str("lang", langs.Default()).Int("pois", n).Msg("snapshot published")
}
