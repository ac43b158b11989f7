// Archive keeps a local copy of GData feeds.
//
// It fetches each configured feed, parses it with its service's entry type
// and stores the entries in a SQLite database, optionally on an interval.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/sethvargo/go-envconfig"
	"golang.org/x/sync/errgroup"

	"github.com/jdholdren/gdata"
	"github.com/jdholdren/gdata/internal/cache"
	"github.com/jdholdren/gdata/internal/fetch"
	"github.com/jdholdren/gdata/internal/migrations"
	"github.com/jdholdren/gdata/internal/server"
	"github.com/jdholdren/gdata/internal/sqlite"
	"github.com/jdholdren/gdata/internal/sync"
	"github.com/jdholdren/gdata/logger"
)

type config struct {
	Database string   `env:"DATABASE, required"`
	Feeds    []string `env:"FEEDS, required"` // service=url pairs

	ValkeyURL    string        `env:"VALKEY_URL"`
	CacheSize    int           `env:"CACHE_SIZE, default=256"`
	CacheExpiry  time.Duration `env:"CACHE_EXPIRY, default=24h"`
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT, default=10s"`
	Concurrency  int           `env:"CONCURRENCY, default=4"`

	// How often to sync again; zero syncs once.
	Interval time.Duration `env:"INTERVAL, default=0s"`

	// Serves the archive when set; the process then runs until interrupted.
	Port       int    `env:"PORT, default=0"`
	CorsOrigin string `env:"CORS_ORIGIN, default=*"`

	// Which format to use for logging: either text or json
	LoggerFormat string `env:"LOGGER_FORMAT, default=text"`
	Debug        bool   `env:"DEBUG, default=false"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Parse the config
	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		log.Fatalf("error parsing config: %s", err)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(logger.New(os.Stderr, cfg.LoggerFormat, level))

	if err := run(ctx, cfg); err != nil {
		slog.Error("error running", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config) error {
	sources, err := sync.ParseSources(cfg.Feeds)
	if err != nil {
		return fmt.Errorf("error parsing feeds: %w", err)
	}

	dbx, err := sqlite.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer dbx.Close()

	// Migrate, always
	if err := migrations.Run(dbx); err != nil {
		return fmt.Errorf("error migrating: %w", err)
	}

	docCache, closeCache, err := newCache(cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	// Progress callbacks are delivered here, on the main goroutine, while
	// the syncs run in the group.
	repo := sqlite.New(dbx)
	progress := gdata.NewQueue()
	syncer := sync.NewSyncer(fetch.New(docCache, cfg.FetchTimeout), repo, progress)

	g, gCtx := errgroup.WithContext(ctx)
	if cfg.Port != 0 {
		s := server.New(server.Config{Port: cfg.Port, CorsOrigin: cfg.CorsOrigin}, repo)
		g.Go(func() error {
			// Start the server
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("error listening: %s", err)
			}

			return nil
		})
		g.Go(func() error {
			// Block from shutting down until the group is canceled
			<-gCtx.Done()

			downCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := s.Shutdown(downCtx); err != nil {
				slog.Error("error shutting down server", "error", err)
			}

			return nil
		})
	}
	g.Go(func() error {
		defer progress.Close()
		return loop(gCtx, cfg.Interval, func() {
			if err := syncer.SyncAll(gCtx, sources, cfg.Concurrency); err != nil {
				slog.ErrorContext(gCtx, "error syncing", "error", err)
			}
		})
	})

	runErr := progress.Run(gCtx)
	if err := g.Wait(); err != nil {
		return err
	}
	if runErr != nil && ctx.Err() == nil {
		return fmt.Errorf("error delivering progress: %w", runErr)
	}

	return nil
}

// loop calls fn now and then every interval until ctx is done. A zero
// interval calls it once.
func loop(ctx context.Context, interval time.Duration, fn func()) error {
	fn()
	if interval <= 0 {
		return nil
	}

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			fn()
		}
	}
}

func newCache(cfg config) (cache.Cache, func(), error) {
	if cfg.ValkeyURL == "" {
		c, err := cache.NewLRU(cfg.CacheSize)
		return c, func() {}, err
	}

	c, err := cache.NewValkey(cfg.ValkeyURL, cfg.CacheExpiry)
	if err != nil {
		return nil, nil, err
	}
	return c, c.Close, nil
}
