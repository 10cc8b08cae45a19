package cli

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/qroute/internal/server"
	qprom "github.com/matzehuels/qroute/pkg/observability/prometheus"
)

// serveCommand creates the HTTP API command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr        string
		deviceFiles bool
		timeout     time.Duration
		noCache     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the routing pipeline over HTTP",
		Long: `Serve the routing pipeline as a JSON API.

Endpoints:
  POST /v1/route      route a circuit
  POST /v1/topology   describe or render a device
  GET  /v1/devices    list built-in presets
  GET  /healthz       liveness and build info
  GET  /metrics       Prometheus metrics

Requests may name presets or carry an inline device_spec. Device files are
only read with --allow-device-files, and then only relative to the working
directory.`,
		Example: `  qroute serve
  qroute serve --addr 127.0.0.1:9000 --config qroute.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			qprom.New(reg).Install()

			opts := []server.Option{
				server.WithLogger(c.Logger),
				server.WithConfig(cfg),
				server.WithGatherer(reg),
				server.WithTimeout(timeout),
			}
			if deviceFiles {
				opts = append(opts, server.WithDeviceFiles())
			}

			c.Logger.Info("starting server", "addr", addr, "cache", describeCache(cfg.Cache.Config), "device_files", deviceFiles)
			err = server.New(runner, opts...).ListenAndServe(ctx, addr)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&deviceFiles, "allow-device-files", false, "accept device file paths in requests")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "per-request time limit")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
