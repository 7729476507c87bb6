package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/japaniel/kanjigraph/pkg/server"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		host string
		port int
		mode string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API. The server provides endpoints for:
- GET /health and /ready
- GET /api/v1/search?q=
- GET /api/v1/view/:type/:id`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("host") {
				a.cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			if cmd.Flags().Changed("mode") {
				a.cfg.Server.Mode = mode
			}

			s, closeStore, err := a.entityStore()
			if err != nil {
				return err
			}
			defer closeStore()
			svc, err := a.searchService(cmd)
			if err != nil {
				return err
			}
			svc.Handle.Start()

			srv := server.New(a.cfg, svc, a.assembler(s))
			srv.Logger = a.logger
			srv.Setup()
			return runServer(cmd.Context(), srv)
		},
	}
	cmd.Flags().StringVar(&host, "host", "localhost", "Server host")
	cmd.Flags().IntVar(&port, "port", 8080, "Server port")
	cmd.Flags().StringVar(&mode, "mode", "release", "Server mode (debug, release, test)")
	return cmd
}

// runServer serves until ctx ends, then shuts down gracefully.
func runServer(ctx context.Context, srv *server.Server) error {
	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
		close(serverErrChan)
	}()

	select {
	case err := <-serverErrChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil
	}
}
