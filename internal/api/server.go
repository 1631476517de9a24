package api

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Serve runs the form server on addr until ctx is cancelled.
func Serve(ctx context.Context, opts Options, addr string, workers int) error {
	a := NewAPI(opts)
	a.StartBackgroundWorkers(ctx, workers)

	srv := &http.Server{
		Addr:         addr,
		Handler:      NewRouter(a),
		ReadTimeout:  30 * time.Second, // file uploads
		WriteTimeout: 5 * time.Minute,  // LLM recognition can be slow
		IdleTimeout:  120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log.Error().Err(err).Msg("server shutdown")
		}
		close(idleConnsClosed)
	}()

	a.log.Info().Str("addr", addr).Msg("resume parser listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-idleConnsClosed
	return nil
}
