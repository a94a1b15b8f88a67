package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/basketwise/basket-cli/internal/api"
	"github.com/basketwise/basket-cli/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the planning API over HTTP",
	Long: `Starts an HTTP server exposing the planning pipeline:

  GET  /health        liveness check
  POST /v1/plan       build a plan from an inline ingredient list
  GET  /v1/runs       list persisted runs
  GET  /v1/runs/{id}  fetch one persisted run`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides server.port config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env, err := initPlanEnv()
	if err != nil {
		return err
	}

	var s store.Store
	s, err = openStore(ctx)
	if err != nil {
		zap.L().Warn("serve: run store unavailable, continuing without persistence", zap.Error(err))
		s = nil
	} else {
		defer s.Close()
	}

	port := cfg.Server.Port
	if override, _ := cmd.Flags().GetInt("port"); override > 0 {
		port = override
	}

	server := api.New(env.Snapshot, env.Vendors, env.Engine, s, cfg.Engine.PrimaryVendor)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("serve: listening", zap.Int("port", port))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return eris.Wrap(err, "serve: listen")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "serve: shutdown")
	}
	zap.L().Info("serve: stopped")
	return nil
}
