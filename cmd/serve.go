package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/autoops/backend/internal/config"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook ingestion and query API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load()
		if err := cfg.ValidateServer(); err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		return serveHTTP(cmd.Context(), a.newServer())
	},
}

// serveHTTP - ctx 취소 시 graceful shutdown
func serveHTTP(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Printf("Shutting down HTTP server")
	return srv.Shutdown(shutdownCtx)
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
