package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"feedtrans/internal/logger"
)

func newRunCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Translate new entries once and publish the feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logFile, err := setupLogging(cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer logFile.Close()

			comps, err := buildComponents(cfg)
			if err != nil {
				return err
			}
			defer comps.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := comps.pipeline.Run(ctx)
			if err != nil {
				if isInterrupted(ctx, err) {
					logger.Warn("run interrupted", "module", "cli", "action", "run", "resource", "pipeline", "result", "cancelled", "run_id", report.RunID)
				}
				return fmt.Errorf("run %s: %w", report.Status, err)
			}
			logger.Info("Token cost", "module", "cli", "action", "run", "resource", "tokens", "result", "ok",
				"run_tokens", report.RunTokens, "total_tokens", report.TotalTokens)
			return nil
		},
	}
}
