package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kiranshivaraju/studentpulse/internal/cache"
	"github.com/kiranshivaraju/studentpulse/internal/config"
	"github.com/kiranshivaraju/studentpulse/internal/store"
)

// backend is what the database-backed commands run against.
type backend struct {
	store store.Store
	cache cache.Cache // nil unless requested
	close func()
}

type app struct {
	out     io.Writer
	errOut  io.Writer
	verbose bool
	logger  *slog.Logger

	// connect opens Postgres, plus Redis when withCache is set.
	connect func(ctx context.Context, withCache bool) (*backend, error)
	migrate func(databaseURL, dir string) error
}

func newApp(out, errOut io.Writer) *app {
	return &app{
		out:     out,
		errOut:  errOut,
		connect: connect,
		migrate: store.RunMigrations,
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pulsectl",
		Short:         "Student performance analysis and StudentPulse administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if a.verbose {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging on stderr")

	root.AddCommand(a.analyzeCmd(), a.importCmd(), a.keysCmd(), a.migrateCmd())
	return root
}

func connect(ctx context.Context, withCache bool) (*backend, error) {
	var (
		dbCfg    config.DatabaseConfig
		redisURL string
	)
	if withCache {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		dbCfg, redisURL = cfg.Database, cfg.Redis.URL
	} else {
		var err error
		if dbCfg, err = config.LoadDatabase(); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	pool, err := store.Connect(ctx, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	b := &backend{store: store.NewPostgresStore(pool), close: pool.Close}
	if !withCache {
		return b, nil
	}

	rc, err := cache.NewRedisCache(redisURL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("create redis cache: %w", err)
	}
	if err := rc.Ping(ctx); err != nil {
		_ = rc.Close()
		pool.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	b.cache = rc
	b.close = func() {
		_ = rc.Close()
		pool.Close()
	}
	return b, nil
}
