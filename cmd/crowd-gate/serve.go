package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/e7canasta/crowd-gate/internal/api"
	"github.com/e7canasta/crowd-gate/internal/emitter"
)

var (
	serveAddr      string
	serveVideo     string
	serveAccessLog bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve gate reports over HTTP",
	Long: `Serve starts the HTTP rendering API:

  GET  /health                 service and publisher status
  GET  /evaluation?count=N     gate report (estimate when count is absent);
                               add publish=true to also push it to the
                               configured MQTT/Kafka publisher
  GET  /mode?hour=H            display mode (current hour when absent)
  GET  /estimate               memoized video estimate
  POST /estimate/invalidate    drop the memoized estimate
  GET  /metrics                Prometheus metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		publisher, err := connectPublisher(ctx)
		if err != nil {
			return err
		}
		defer publisher.Close()

		opts := api.Options{
			Engine:    engine,
			Estimates: newEstimates(cfg, serveVideo),
			Limits:    cfg.DisplayLimits(),
			MaxCrowd:  cfg.Input.MaxCrowd,
			Publisher: publisher,
		}
		if serveAccessLog {
			opts.AccessLog = os.Stderr
		}
		server, err := api.NewServer(opts)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		addr := cfg.HTTP.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		errChan := make(chan error, 1)
		go func() {
			errChan <- server.Run(ctx, addr, cfg.ShutdownTimeout())
		}()

		select {
		case sig := <-sigChan:
			slog.Info("received shutdown signal", "signal", sig)
			cancel()
			return <-errChan
		case err := <-errChan:
			return err
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveVideo, "video", "", "video file to estimate from (overrides config)")
	serveCmd.Flags().BoolVar(&serveAccessLog, "access-log", false, "write an access log to stderr")
}

// connectPublisher creates and connects the configured publisher
func connectPublisher(ctx context.Context) (emitter.Publisher, error) {
	publisher, err := emitter.New(cfg.Publisher)
	if err != nil {
		return nil, err
	}
	if err := publisher.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect publisher: %w", err)
	}
	slog.Info("publisher ready", "kind", publisher.Stats().Kind)
	return publisher, nil
}
