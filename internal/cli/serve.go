package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"feedtrans/internal/handler"
	transport "feedtrans/internal/http"
	"feedtrans/internal/logger"
	"feedtrans/internal/scheduler"
	"feedtrans/internal/service"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the pipeline on an interval and serve the translated feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Serve.Addr = addr
			}
			if cfg.Serve.Interval <= 0 {
				return errors.New("serve.interval must be positive")
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

			runner := service.NewRunnerService(ctx, comps.pipeline)
			status := service.NewStatusService(comps.tokens, runner, comps.runs, cfg.LedgerPath(), cfg.OutputPath())
			router := transport.NewRouter(
				handler.NewFeedHandler(cfg.OutputPath()),
				handler.NewPipelineHandler(runner, status),
			)

			serveErr := make(chan error, 1)
			go func() {
				logger.Info("http server started", "module", "cli", "action", "serve", "resource", "http", "result", "ok", "addr", cfg.Serve.Addr)
				if err := router.Start(cfg.Serve.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
			}()

			sched := scheduler.New(runner, cfg.Serve.Interval)
			sched.Start()

			select {
			case <-ctx.Done():
				logger.Info("shutting down", "module", "cli", "action", "serve", "resource", "http", "result", "ok")
			case err = <-serveErr:
				logger.Error("http server failed", "module", "cli", "action", "serve", "resource", "http", "result", "failed", "error", err)
				stop()
			}

			sched.Stop()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if shutdownErr := router.Shutdown(shutdownCtx); shutdownErr != nil && err == nil {
				err = shutdownErr
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides serve.addr)")
	return cmd
}
