package main

import (
	"log/slog"
	"os"

	"github.com/angeloszaimis/ober/pkg/logger"
)

func main() {
	slog.SetDefault(logger.New("info", false, "dev", os.Stderr))

	if err := newRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		slog.Error("ober-failover failed", slog.Any("err", err))
		os.Exit(1)
	}
}
