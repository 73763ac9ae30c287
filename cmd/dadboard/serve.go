package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kylerisse/dadboard/pkg/server"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(flags *rootFlags) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard daemon",
		Long:  "Polls every PC on the configured interval and serves the dashboard, the JSON API and Prometheus metrics over HTTP.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, flags, listen)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "HTTP listen address (overrides the config)")
	return cmd
}

func runServe(cmd *cobra.Command, flags *rootFlags, listen string) error {
	a, err := loadApp(flags, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.close()

	if listen == "" {
		listen = a.cfg.Listen
	}
	opts := []server.Option{
		server.WithListen(listen),
		server.WithPollInterval(a.cfg.PollInterval()),
		server.WithGames(a.games),
	}
	if a.actions != nil {
		opts = append(opts, server.WithActionLog(a.actions))
	}

	srv, err := server.NewServer(a.board, a.dispatcher, a.logger, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		return err
	}
	a.logger.Info("Server is running. Press Ctrl+C to stop.")

	<-ctx.Done()
	a.logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		a.logger.Warnf("Unclean shutdown: %v", err)
	}
	a.logger.Info("Server stopped.")
	return nil
}
