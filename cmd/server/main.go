package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gyaneshwarpardhi/productflow/internal/api"
	"github.com/gyaneshwarpardhi/productflow/internal/catalog"
	"github.com/gyaneshwarpardhi/productflow/internal/config"
	"github.com/gyaneshwarpardhi/productflow/internal/session"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var addr, cfgPath string
	cmd := &cobra.Command{
		Use:           "productflow",
		Short:         "Product diagram editor backend",
		Long:          "Serves editor sessions over HTTP and WebSocket: drop catalog products on a canvas, connect them, undo and redo.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := run(cmd.Context(), addr, cmd.Flags().Changed("addr"), cfgPath)
			if err != nil {
				slog.Error("server exited", "err", err)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "HTTP listen address (overrides server.addr)")
	cmd.Flags().StringVar(&cfgPath, "config", "", "Path to YAML config (defaults are used when empty)")
	return cmd
}

func sessionSettings(cfg *config.Config) session.Settings {
	return session.Settings{
		DarkMode:       cfg.Editor.DarkMode,
		AllowSelfLoops: cfg.Editor.AllowSelfLoops,
		HistoryLimit:   cfg.History.MaxDepth,
		QueueDepth:     cfg.Session.QueueDepth,
		EventTimeout:   cfg.Session.EventTimeout(),
		MaxSessions:    cfg.Session.MaxSessions,
	}
}

func run(parent context.Context, addr string, addrSet bool, cfgPath string) error {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// ── Load config ──────────────────────────────────────────────────────────
	loader, err := config.NewLoader(cfgPath, logger)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := loader.Config()
	lvl, _ := config.ParseLevel(cfg.Log.Level)
	level.Set(lvl)
	if !addrSet {
		addr = cfg.Server.Addr
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Catalog ──────────────────────────────────────────────────────────────
	client := catalog.NewClient(catalog.ClientConfig{
		URL:             cfg.Catalog.URL,
		Timeout:         cfg.Catalog.Timeout(),
		BreakerFailures: uint32(cfg.Catalog.BreakerFailures),
		BreakerOpenFor:  cfg.Catalog.BreakerTimeout(),
		Logger:          logger,
	})
	store := catalog.NewStore(client, logger)
	store.LoadAsync(ctx)

	// ── Sessions ─────────────────────────────────────────────────────────────
	sessions := session.NewManager(ctx, sessionSettings(cfg), store, logger)

	// ── Hot-reload watcher ───────────────────────────────────────────────────
	loader.OnChange(func(newCfg *config.Config) {
		if l, err := config.ParseLevel(newCfg.Log.Level); err == nil {
			level.Set(l)
		}
		sessions.Apply(sessionSettings(newCfg))
	})
	stopWatch, err := loader.Watch()
	if err != nil {
		logger.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stopWatch()
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr: addr,
		Handler: api.New(api.Options{
			Sessions:       sessions,
			Catalog:        store,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Logger:         logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", "addr", addr, "catalog", client.URL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// ── Graceful shutdown ────────────────────────────────────────────────────
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		err := srv.Shutdown(shutCtx)
		sessions.Shutdown()
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("goodbye")
	return nil
}
