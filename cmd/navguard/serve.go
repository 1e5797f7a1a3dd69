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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/navguard-dev/navguard/internal/config"
	"github.com/navguard-dev/navguard/pkg/bridge"
	"github.com/navguard-dev/navguard/pkg/middleware"
	"github.com/navguard-dev/navguard/pkg/nav"
)

func serveCmd() *cobra.Command {
	var (
		configDir string
		listen    string
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the navigation bridge server",
		Long: `Load navguard.toml and serve the configured navigation machine
over HTTP and WebSocket. Prometheus metrics are exposed on /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configDir)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Bridge.Listen = listen
			}

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			}))

			machine := nav.New(cfg.InitialLocation,
				nav.WithRoutes(nav.Routes(cfg.Routes)),
				nav.WithHistoryLimit(cfg.HistoryLimit),
				nav.WithMachineLogger(logger),
				nav.WithObserver(middleware.Prometheus()),
			)
			for _, g := range cfg.BuildGuards() {
				machine.AddGuard(g)
			}

			r := chi.NewRouter()
			r.Mount("/nav", bridge.New(machine, bridge.WithLogger(logger)).Routes())
			r.Handle("/metrics", promhttp.Handler())

			srv := &http.Server{
				Addr:    cfg.Bridge.Listen,
				Handler: r,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				errc <- srv.ListenAndServe()
			}()

			success("navguard listening on http://%s", cfg.Bridge.Listen)
			info("initial location: %s", machine.CurrentLocation())
			info("guards: %d, routes: %d", len(cfg.Guards), len(cfg.Routes))

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			info("shut down")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configDir, "config-dir", "c", ".", "Directory containing navguard.toml")
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Override the bridge listen address")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}
