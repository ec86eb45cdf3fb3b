package main

import (
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/e7canasta/crowd-gate/internal/config"
)

var (
	publishCount    int
	publishVideo    string
	publishInterval time.Duration
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish gate reports to the configured MQTT or Kafka sink",
	Long: `Publish evaluates the crowd count and pushes the report to the
publisher configured in the "publisher" section. With --interval it
keeps publishing until interrupted, re-estimating from video each time.`,
	Example: `  crowd-gate publish --config crowd-gate.yaml --count 120
  crowd-gate publish --config crowd-gate.yaml --interval 10s`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Publisher.Kind == config.PublisherNone {
			return errors.New("no publisher configured (set publisher.kind to mqtt or kafka)")
		}

		engine, err := newEngine(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		publisher, err := connectPublisher(ctx)
		if err != nil {
			return err
		}
		defer publisher.Close()

		req := reportRequest{Count: publishCount, HasCount: cmd.Flags().Changed("count"), Hour: -1}
		if !req.HasCount {
			req.Estimates = newEstimates(cfg, publishVideo)
		}

		publishOnce := func() error {
			report, err := buildReport(ctx, engine, req)
			if err != nil {
				return err
			}
			if err := publisher.Publish(ctx, report); err != nil {
				return err
			}
			slog.Info("report published",
				"report_id", report.ID,
				"total", report.Evaluation.Total,
				"statuses", report.Evaluation.Statuses(),
			)
			return nil
		}

		if err := publishOnce(); err != nil {
			return err
		}
		if publishInterval <= 0 {
			return nil
		}

		ticker := time.NewTicker(publishInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				stats := publisher.Stats()
				slog.Info("publishing stopped", "published", stats.Published, "errors", stats.Errors)
				return nil
			case <-ticker.C:
				if req.Estimates != nil {
					req.Estimates.Invalidate()
				}
				if err := publishOnce(); err != nil {
					slog.Warn("publish failed", "error", err)
				}
			}
		}
	},
}

func init() {
	publishCmd.Flags().IntVar(&publishCount, "count", 0, "crowd count (default: estimate from video)")
	publishCmd.Flags().StringVar(&publishVideo, "video", "", "video file to estimate from (overrides config)")
	publishCmd.Flags().DurationVar(&publishInterval, "interval", 0, "republish period (0 publishes once)")
}
