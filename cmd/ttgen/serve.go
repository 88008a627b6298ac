package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"ttgen/internal/api"
	"ttgen/internal/config"
	"ttgen/internal/platform/log"

	"github.com/spf13/cobra"
)

var servePort string

func runServe(cmd *cobra.Command, args []string) error {
	r, err := resolveRun()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := buildEngine(ctx, r)
	if err != nil {
		return err
	}
	defer e.close()

	srv := newServer(r, e)
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}
	log.Infow("server listening", "addr", ln.Addr().String(), "model", r.Model, "oracle", r.Oracle)

	return serveUntil(ctx, srv, ln)
}

func newServer(r config.Run, e *engine) *http.Server {
	router := api.NewRouter(api.RouterConfig{
		Model:      r.Model,
		OracleKind: r.Oracle,
		Oracle:     e.oracle,
		Corrector:  e.corrector,
		Grid:       r.GridConfig(),
		Combine:    r.Combine,
		Workers:    r.RowWorkers,
	})

	// Timeouts are tuned for cold-cache assembly of full teleseismic tables.
	return &http.Server{
		Addr:              ":" + servePort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      300 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// serveUntil serves on ln until ctx is done, then shuts down gracefully.
func serveUntil(ctx context.Context, srv *http.Server, ln net.Listener) error {
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
