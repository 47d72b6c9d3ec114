package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/felixgeelhaar/intakerouter/internal/infrastructure/httpapi"
	"github.com/felixgeelhaar/intakerouter/internal/infrastructure/watch"
	"github.com/felixgeelhaar/intakerouter/pkg/storage"
	"github.com/spf13/cobra"
)

var (
	serveAddr     string
	serveNoReload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and reload policy.yaml on change",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return fmt.Errorf("resolve project path: %w", err)
		}
		services, err := loadServices(cmd, root)
		if err != nil {
			return err
		}

		logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
		slog.SetDefault(logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if url := services.Config.DatabaseURL; url != "" {
			closer, err := services.AttachHistory(ctx, url)
			if err != nil {
				return fmt.Errorf("connect routing history: %w", err)
			}
			defer closer.Close()
			logger.Info("routing history enabled", "store", "postgres")
		}

		if !serveNoReload && services.Workspace.Repo.IsInitialized() {
			dir := filepath.Join(root, storage.IntakeDir)
			go func() {
				if err := watch.WatchPolicy(ctx, dir, storage.PolicyFile, services.Policy, logger); err != nil {
					logger.Error("policy watcher stopped", "err", err)
				}
			}()
		}

		addr := serveAddr
		if addr == "" {
			addr = services.Config.HTTPAddr
		}
		router := httpapi.NewRouter(httpapi.Services{
			Intakes: services.Intakes,
			Routing: services.Routing,
			Policy:  services.Policy,
		}, logger)
		return runHTTPServer(ctx, &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}, logger)
	},
}

// runHTTPServer serves until ctx is cancelled, then drains in-flight requests.
func runHTTPServer(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (defaults to http_addr or INTAKE_HTTP_ADDR)")
	serveCmd.Flags().BoolVar(&serveNoReload, "no-reload", false, "Do not watch policy.yaml for changes")
	RootCmd.AddCommand(serveCmd)
}
