package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/curio-cabinet/curio/internal/api"
	"github.com/curio-cabinet/curio/internal/app/progression"
	"github.com/curio-cabinet/curio/internal/app/session"
	"github.com/curio-cabinet/curio/internal/infra/observability"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "", "Listen host (overrides [api].host)")
	serveCmd.Flags().Int("port", 0, "Listen port (overrides [api].port)")
}

// ─── serve ──────────────────────────────────────────────────────────────────

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the curio HTTP API",
	Long: `Start the HTTP API: module catalog, puzzle checks, completion sessions,
progress and glossary. Idle completion sessions are swept in the background.
Prometheus metrics are served on /metrics unless [metrics].enabled = false.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

const shutdownTimeout = 10 * time.Second

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if h, _ := cmd.Flags().GetString("host"); h != "" {
		a.cfg.API.Host = h
	}
	if p, _ := cmd.Flags().GetInt("port"); p != 0 {
		a.cfg.API.Port = p
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metrics *observability.Metrics
	feed := observability.NewFeed(observability.DefaultFeedSize)
	opts := []progression.Option{progression.WithNotifier(feed)}
	if a.cfg.Metrics.Enabled {
		metrics = observability.NewMetrics()
		opts = append(opts, progression.WithObserver(metrics))
	}

	eng, err := a.engine(ctx, opts...)
	if err != nil {
		return err
	}

	ttl, err := a.cfg.SessionTTL()
	if err != nil {
		return err
	}
	sessOpts := []session.ManagerOption{
		session.WithTTL(ttl),
		session.WithLogger(a.log.With("component", "sessions")),
	}
	if metrics != nil {
		sessOpts = append(sessOpts, session.WithObserver(metrics))
	}
	exists := func(slug string) bool { _, ok := a.reg.Get(slug); return ok }
	sessions := session.NewManager(eng, exists, sessOpts...)

	srv := api.NewServer(a.reg, eng, sessions, a.log.With("component", "api"))
	srv.SetFeed(feed)
	if metrics != nil {
		srv.EnableMetrics(metrics)
	}

	httpServer := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("curio listening",
			"addr", httpServer.Addr,
			"backend", a.cfg.Storage.Backend,
			"modules", a.reg.Len(),
			"metrics", metrics != nil,
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return sessions.Run(gctx, ttl/4)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.log.Info("shutting down", "open_sessions", sessions.Len())
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
