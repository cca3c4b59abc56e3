package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sandrolain/gostringed/internal/history"
	"github.com/sandrolain/gostringed/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP evaluation service",
	Long: `Start the HTTP evaluation service.

Endpoints:
  POST /eval     {"program": "...", "input": "..."}  → {"output": "..."}
  POST /parse    {"program": "..."}                  → {"ast": ..., "references_input": ..., "token_count": ...}
  GET  /healthz

With history enabled every evaluation is recorded, and entries older
than history.retention are pruned every history.prune_interval.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr from config, :8080)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cmd.ErrOrStderr(), true)
	if err != nil {
		return err
	}
	defer a.close()

	opts := server.Options{
		Evaluator:    a.ev,
		Logger:       a.logger,
		ReadTimeout:  a.cfg.Server.ReadTimeout.Duration,
		WriteTimeout: a.cfg.Server.WriteTimeout.Duration,
		MaxBodySize:  a.cfg.Server.MaxBodySize,
	}

	if a.history != nil {
		opts.Recorder = a.history

		pruner, err := history.NewPruner(a.history,
			a.cfg.History.Retention.Duration,
			a.cfg.History.PruneInterval.Duration,
			a.logger)
		if err != nil {
			return err
		}
		pruner.Start()
		defer func() {
			if err := pruner.Stop(); err != nil {
				a.logger.Warn("stopping history pruner", "error", err)
			}
		}()
	}

	addr := serveAddr
	if addr == "" {
		addr = a.cfg.Server.Addr
	}

	srv := server.New(opts)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		a.logger.Info("shutting down HTTP server")
		return srv.Shutdown()
	}
}
