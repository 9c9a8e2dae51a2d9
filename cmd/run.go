package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/angeloszaimis/ober/internal/announce"
	"github.com/angeloszaimis/ober/internal/failover"
	"github.com/angeloszaimis/ober/internal/healthcheck"
	"github.com/angeloszaimis/ober/internal/httpserver"
	"github.com/angeloszaimis/ober/internal/metrics"
	"github.com/angeloszaimis/ober/internal/signals"
)

func newRunCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Probe the local proxy and announce or withdraw routes on stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context())
		},
	}

	cmd.Flags().String("metrics-address", "", "serve Prometheus metrics on host:port")

	return cmd
}

func (a *app) run(ctx context.Context) error {
	addrs, err := a.cfg.Addresses()
	if err != nil {
		return err
	}

	m := metrics.New()
	m.SetVirtualAddresses(len(addrs))

	probe := healthcheck.NewProbe(a.cfg.ProbeURL())
	emitter := announce.NewEmitter(a.stdout, addrs)

	ctrl, err := failover.New(failover.Config{
		Interval: a.cfg.HealthInterval(),
		Rise:     a.cfg.Health.Rise,
		Fall:     a.cfg.Health.Fall,
	}, probe, emitter,
		failover.WithRecorder(m),
		failover.WithLogger(a.log),
	)
	if err != nil {
		return err
	}

	ctx, stop := signals.New(a.log).Watch(ctx)
	defer stop()

	var srv *httpserver.Server
	if addr := a.cfg.Metrics.Address; addr != "" {
		srv, err = httpserver.New(addr, httpserver.Mux(m.Handler()), a.log)
		if err != nil {
			return err
		}
		if err := srv.Listen(); err != nil {
			return err
		}
	}

	a.log.Info("Starting failover engine",
		slog.String("probe", probe.URL()),
		slog.Int("vips", len(addrs)),
		slog.Int("rise", a.cfg.Health.Rise),
		slog.Int("fall", a.cfg.Health.Fall))

	var g errgroup.Group

	g.Go(func() error {
		// Whatever ends the controller also ends the listener.
		defer stop()
		if err := ctrl.Run(ctx); err != nil {
			return fmt.Errorf("failover: %w", err)
		}
		return nil
	})

	if srv != nil {
		g.Go(func() error {
			if err := srv.Run(ctx); err != nil {
				a.log.Error("Metrics listener failed", slog.Any("err", err))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	a.log.Info("Shutdown complete", slog.Any("cause", context.Cause(ctx)))
	return nil
}
