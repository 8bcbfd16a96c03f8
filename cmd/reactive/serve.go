package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/reactive/internal/scenario"
	"github.com/vango-dev/reactive/pkg/devtools"
	"github.com/vango-dev/reactive/pkg/metrics"
	"github.com/vango-dev/reactive/pkg/reactive"
	"github.com/vango-dev/reactive/pkg/tracing"
)

func serveCmd(opts *options) *cobra.Command {
	var (
		port     int
		host     string
		name     string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live runtime over HTTP",
		Long: `Start the devtools server on a runtime that keeps stepping a scenario.

Endpoints:
  /healthz          liveness
  /metrics          Prometheus metrics
  /graph            graph snapshot (?format=json|text)
  /graph/{handle}   one node
  /events           websocket stream of fan-outs, runs and recomputes

Examples:
  reactive serve
  reactive serve --scenario=dynamic --interval=250ms
  REACTIVE_DEVTOOLS_PORT=9000 reactive serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Devtools.Port = port
			}
			if host != "" {
				cfg.Devtools.Host = host
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			log := logger(cfg, cmd.ErrOrStderr())

			s, err := scenario.Lookup(name)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector())
			hub := devtools.NewHub(cfg.Devtools.EventBuffer)
			rt := reactive.NewRuntime(
				reactive.WithLogger(log.With("component", "reactive", "scenario", s.Name)),
				reactive.WithDebug(cfg.RuntimeDebug()),
				reactive.WithObserver(reactive.Observers(
					hub,
					metrics.New(
						metrics.WithRegistry(reg),
						metrics.WithNamespace(cfg.Metrics.Namespace),
						metrics.WithSubsystem(cfg.Metrics.Subsystem),
					),
					tracing.New(),
				)),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			driver := devtools.NewDriver(rt, log, 64)
			go driver.Run(ctx)

			var inst *scenario.Instance
			if err := driver.Do(ctx, func(rt *reactive.Runtime) {
				inst = s.Start(rt, nil)
			}); err != nil {
				return err
			}
			go tick(ctx, driver, inst, interval)

			server := devtools.NewServer(driver, hub, &devtools.Config{
				Address:  cfg.DevtoolsAddress(),
				Gatherer: reg,
				Logger:   log,
			})
			log.Info("stepping scenario", "scenario", s.Name, "interval", interval)
			return server.ListenAndServe(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from reactive.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from reactive.json)")
	cmd.Flags().StringVarP(&name, "scenario", "s", "cascade", "Scenario to step")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Time between scenario steps")

	return cmd
}

// tick steps inst on the driver goroutine until ctx is done.
func tick(ctx context.Context, driver *devtools.Driver, inst *scenario.Instance, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			driver.Dispatch(func(*reactive.Runtime) { inst.Step() })
		}
	}
}
