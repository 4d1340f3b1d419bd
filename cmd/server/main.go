package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/tradelens/chartdata/internal/api"
	"github.com/tradelens/chartdata/internal/config"
	"github.com/tradelens/chartdata/internal/logger"
	"github.com/tradelens/chartdata/internal/version"
	"github.com/tradelens/chartdata/pkg/chartdata"
)

// serveAction loads configuration, wires the cascade, and serves the candle
// endpoint until interrupted.
func serveAction(ctx context.Context, cmd *cli.Command) error {
	var (
		cfg *config.Config
		err error
	)

	if path := cmd.String("config"); path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}
	} else {
		cfg = config.Default()
	}

	if listen := cmd.String("listen"); listen != "" {
		cfg.Server.Listen = listen
	}

	l, err := logger.NewLoggerWithLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer l.Sync()

	resolver := chartdata.NewResolverFromConfig(cfg, l)

	server, err := api.NewServer(api.Config{Listen: cfg.Server.Listen}, resolver, l)
	if err != nil {
		return err
	}

	if err := server.Start(); err != nil {
		return err
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
	case <-stop:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Stop(shutdownCtx)
}

func main() {
	cmd := &cli.Command{
		Name:    "chartdata-server",
		Usage:   "Serve per-trade OHLC candles from the provider cascade",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
			},
			&cli.StringFlag{
				Name:    "listen",
				Aliases: []string{"l"},
				Usage:   "Listen address, overrides the configuration",
			},
		},
		Action: serveAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
