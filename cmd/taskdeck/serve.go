package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Joseda-hg/taskdeck/internal/app"
	"github.com/Joseda-hg/taskdeck/internal/web"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON API for the signed-in user",
	RunE: withSession(func(ctx context.Context, session *app.Session) error {
		port := current.cfg.WebPort
		if servePort != 0 {
			port = servePort
		}

		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           web.NewServer(session, current.logger).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		errCh := make(chan error, 1)
		go func() {
			current.logger.Infow("web server listening", "addr", "http://localhost"+srv.Addr)
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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		current.logger.Infow("web server stopping")
		return srv.Shutdown(shutdownCtx)
	}),
}

// startWeb serves the API in the background next to the terminal UI.
func startWeb(session *app.Session, port int, logger *zap.SugaredLogger) {
	addr := fmt.Sprintf(":%d", port)
	handler := web.NewServer(session, logger).Handler()
	go func() {
		logger.Infow("web server listening", "addr", "http://localhost"+addr)
		if err := http.ListenAndServe(addr, handler); err != nil {
			logger.Errorw("web server error", "error", err)
		}
	}()
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port (defaults to the configured web port)")
	rootCmd.AddCommand(serveCmd)
}
