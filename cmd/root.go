package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/angeloszaimis/ober/config"
	"github.com/angeloszaimis/ober/pkg/logger"
)

// app carries what every subcommand needs once configuration is loaded.
// stdout is reserved for route control lines and rendered output; every
// log record goes to stderr.
type app struct {
	stdout     io.Writer
	stderr     io.Writer
	configPath string
	cfg        *config.Config
	log        *slog.Logger
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "ober-failover",
		Short:         "Turn local proxy health into route announcements",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	root.SetOut(stderr)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "",
		"path to failover.yaml (default: search ./config, ., /etc/ober)")
	root.PersistentFlags().String("log-level", config.LogLevelInfo, "debug, info, warn or error")

	root.AddCommand(
		newRunCommand(a),
		newAssignCommand(a),
		newProbeCommand(a),
	)

	return root
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath, cmd.Flags())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = logger.New(cfg.Logging.Level, cfg.Logging.AddSource, cfg.Environment, a.stderr)
	slog.SetDefault(a.log)

	return nil
}
