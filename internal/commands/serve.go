package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ledger-engine/internal/adapters/web"
	"ledger-engine/internal/app"
	"ledger-engine/internal/db"
	"ledger-engine/internal/obs"
	"ledger-engine/internal/store"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the reporting HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	_ = godotenv.Load()
	obs.Init()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()

	st := store.New(pool)
	svc := app.NewAppService(app.Repositories{
		Groups:   st,
		Ledgers:  st,
		Vouchers: st,
		Invoices: st,
		Stock:    st,
	})

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: web.NewHandler(svc, allowedOrigins),
		// Statement builds do a full recompute over every source, so the
		// write timeout is generous.
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		obs.LogEvent(map[string]any{"msg": "server starting", "port": port})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	obs.LogEvent(map[string]any{"msg": "server shutting down"})
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
