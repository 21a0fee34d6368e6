package cli

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/syncqueue/pkg/httpserver"
	"github.com/dmitrymomot/syncqueue/pkg/logger"
	"github.com/dmitrymomot/syncqueue/pkg/syncqueue"
)

func newWatchCommand(root *RootOptions) *cobra.Command {
	var (
		rf          remoteFlags
		interval    time.Duration
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Drain the queue periodically until interrupted",
		Long: `watch runs a background runner that drains the queue right away and then
every --interval. With --metrics-addr it also serves Prometheus metrics on
/metrics. SIGINT or SIGTERM stops it after the current mutation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := notifyContext(cmd.Context())
			defer stop()

			exec, err := rf.executor(root)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			a, err := root.open(ctx, syncqueue.WithMetrics(reg))
			if err != nil {
				return err
			}
			defer a.Close()

			log := root.Logger()
			if !cmd.Flags().Changed("interval") && root.cfg.DrainInterval > 0 {
				interval = root.cfg.DrainInterval
			}
			runner, err := syncqueue.NewRunner(a.queue, exec.Execute,
				syncqueue.WithInterval(interval),
				syncqueue.WithRunnerLogger(log),
				syncqueue.WithOnPass(func(res syncqueue.Result) {
					log.InfoContext(ctx, "drain pass finished",
						logger.Event("drain"),
						slog.Int("success", res.Success),
						slog.Int("failed", res.Failed),
						slog.Int("evicted", res.Evicted),
					)
				}),
			)
			if err != nil {
				return err
			}

			g, ctx := errgroup.WithContext(ctx)
			g.Go(runner.Run(ctx))
			if metricsAddr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
				mux.Handle("/healthz", httpserver.HealthCheckHandler(log, nil))
				srv := httpserver.New(httpserver.WithAddr(metricsAddr), httpserver.WithLogger(log))
				g.Go(func() error { return srv.Run(ctx, mux) })
			}
			return g.Wait()
		},
	}
	rf.bind(cmd)
	cmd.Flags().DurationVar(&interval, "interval", syncqueue.DefaultDrainInterval, "delay between drains (default $SYNCQUEUE_DRAIN_INTERVAL)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}
