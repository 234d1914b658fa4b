package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/tally/internal/httpapi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

// serveCmd runs the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve series building over HTTP",
	Long: `Start an HTTP server exposing:

  POST /v1/series  - build a series from the points in the JSON body
  GET  /health     - liveness probe
  GET  /metrics    - Prometheus metrics

The root flags and config file supply defaults that each request may override.

Examples:
  tally serve --listen :8080 -f views
  curl -s localhost:8080/v1/series -d '{"points":[{"timestamp":"2024-06-15","views":3}]}'`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		srv := httpapi.NewServer(cfg, cacheManager, reg)
		fmt.Fprintf(os.Stderr, "🌐 Listening on %s\n", cfg.ListenAddr)
		return srv.ListenAndServe(ctx, cfg.ListenAddr)
	},
}
