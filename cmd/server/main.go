package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"gopherai-insight/internal/bootstrap"
	httptransport "gopherai-insight/internal/transport/http"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx)
	if err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}

	code := 0
	if err := serve(ctx, app); err != nil {
		app.Logger.Error("server failed", zap.Error(err))
		code = 1
	}
	if err := app.Close(); err != nil {
		app.Logger.Error("close resources failed", zap.Error(err))
	}
	os.Exit(code)
}

// serve blocks until ctx is cancelled or the listener fails.
func serve(ctx context.Context, app *bootstrap.App) error {
	server := &http.Server{
		Addr:              app.Config.HTTPAddr(),
		Handler:           httptransport.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
		// a chat turn waits for the completion call
		WriteTimeout: time.Duration(app.Config.LLM.TimeoutSeconds)*time.Second + 30*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.Logger.Info("server starting",
			zap.String("addr", server.Addr),
			zap.String("env", app.Config.App.Env),
			zap.Bool("async_message_log", app.MQConn != nil),
		)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	app.Logger.Info("server stopped", zap.Duration("uptime", time.Since(app.StartedAt)))
	return nil
}
