package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/instrumentdiff/internal/web"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func (a *app) serveCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the table over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("host") {
				a.cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
				if err := a.cfg.Validate(); err != nil {
					return err
				}
			}

			c, err := a.comparator()
			if err != nil {
				return err
			}

			slog.Info("configuration loaded",
				"addr", a.cfg.Server.Addr(),
				"instruments", c.Table().Len(),
				"rate_limit_enabled", a.cfg.Rate.Enabled,
			)

			server := web.NewServer(c, a.cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// A listen error cancels gctx, so both goroutines return.
			g, gctx := errgroup.WithContext(ctx)
			g.Go(server.Start)
			g.Go(func() error {
				<-gctx.Done()
				slog.Info("shutting down...")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("shutdown error", "error", err)
					return err
				}
				return nil
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (env SERVER_HOST)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (env SERVER_PORT)")
	return cmd
}
