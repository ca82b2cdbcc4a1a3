package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	chiTransport "github.com/kailas-cloud/bizdex/internal/transport/chi"
	"github.com/kailas-cloud/bizdex/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP search API",
	Long: `Serve exposes POST /v1/search, GET /v1/documents/{id}, /health and /metrics.
Requests need a bearer token when auth.api_keys is configured. SIGINT or SIGTERM
drains in-flight requests before exiting.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger.Info("Starting bizdex API server",
			zap.String("version", version.Version),
			zap.String("commit", version.Commit),
			zap.String("env", env),
			zap.Int("http_port", cfg.HTTP.Port),
			zap.Strings("db_addrs", cfg.Database.Addrs),
			zap.String("index", cfg.Index.Name),
			zap.Bool("auth", len(cfg.Auth.APIKeys) > 0),
		)

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		a, err := newApp(ctx, &cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		if stats, err := a.index.Describe(ctx); err != nil {
			logger.Warn("Index not available yet, run provision", zap.String("index", cfg.Index.Name), zap.Error(err))
		} else {
			logger.Info("Index ready", zap.String("index", stats.Name), zap.Int("documents", stats.NumDocs))
		}

		server := chiTransport.NewServer(a.search, a.health, logger)
		addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
		srv := &http.Server{
			Addr:              addr,
			Handler:           server.Routes(cfg.Auth.APIKeys),
			ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("Starting HTTP server", zap.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case <-ctx.Done():
		}
		logger.Info("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during shutdown", zap.Error(err))
			return fmt.Errorf("shutdown: %w", err)
		}

		logger.Info("Server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
