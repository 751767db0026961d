package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/github-activity/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves profiles and repository activity as a JSON API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = fmt.Sprintf("%s:%s", a.cfg.APIHost, a.cfg.APIPort)
		}
		return runServer(cmd.Context(), a, addr)
	},
}

func runServer(ctx context.Context, a *app, addr string) error {
	gin.SetMode(a.cfg.GinMode)
	handler := server.NewHandler(a.aggregator, a.cfg.WindowDays, a.cfg.CacheTTL, a.logger)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.SetupRoutes(handler, a.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.WithField("addr", addr).Info("Starting API server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
		a.logger.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default API_HOST:API_PORT)")
}
