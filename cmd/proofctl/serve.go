package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/upb/proof-layer/routes"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			deps, err := opts.loadDependencies(ctx)
			if err != nil {
				return err
			}
			defer deps.Close(context.Background())

			if addr == "" {
				addr = deps.Config.Server.Address()
			}
			srv := &http.Server{
				Addr:         addr,
				Handler:      routes.SetupRoutes(deps),
				ReadTimeout:  deps.Config.Server.ReadTimeout,
				WriteTimeout: deps.Config.Server.WriteTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				deps.Logger.Info("serving", zap.String("addr", addr))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from API_HOST and PORT)")
	return cmd
}
