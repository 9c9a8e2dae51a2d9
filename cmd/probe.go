package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/angeloszaimis/ober/internal/healthcheck"
)

var errUnhealthy = errors.New("proxy is unhealthy")

func newProbeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Run one health probe and exit 0 if the proxy is healthy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			probe := healthcheck.NewProbe(a.cfg.ProbeURL())
			obs := probe.Check(cmd.Context())

			attrs := []any{
				slog.String("url", probe.URL()),
				slog.Bool("healthy", obs.Healthy),
				slog.Int("status", obs.StatusCode),
				slog.Duration("latency", obs.Latency),
			}
			if !obs.Healthy {
				a.log.Warn("Probe failed", append(attrs, slog.Any("err", obs.Err))...)
				return errUnhealthy
			}

			a.log.Info("Probe succeeded", attrs...)
			return nil
		},
	}
}
