// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"pantrykeeper/internal/handlers"
	"pantrykeeper/internal/middleware"
	"pantrykeeper/internal/router"
)

// importWindow is the rate limit window of the import endpoints.
const importWindow = time.Minute

// API returns the JSON API handlers over the app's stores.
func (a *App) API() *handlers.API {
	return handlers.New(handlers.Deps{
		Categories: a.Categories,
		Products:   a.Products,
		Recipes:    a.Recipes,
		Meals:      a.Meals,
		Planner:    a.Planner,
		Importer:   a.Importer,
		Backup:     a.Backup,
	})
}

// Serve runs the HTTP server, and the mirror when one is configured, until
// ctx is cancelled. Active requests get up to 30 seconds to complete.
func (a *App) Serve(ctx context.Context) error {
	var limiter *middleware.RateLimiter
	if a.Config.ImportRateLimit > 0 {
		limiter = middleware.NewRateLimiter(a.Config.ImportRateLimit, importWindow)
		defer limiter.Stop()
	}

	// Create the HTTP server with sensible timeouts. Imports upload whole
	// files, so reads get more time than the usual API call.
	srv := &http.Server{
		Addr:         a.Config.Addr(),
		Handler:      router.New(a.API(), a.Config.APIKeyHash, limiter),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	var wg sync.WaitGroup
	mirrorCtx, stopMirror := context.WithCancel(ctx)
	defer stopMirror()
	if a.Mirror != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.Mirror.Run(mirrorCtx); err != nil {
				slog.Error("mirror failed", "error", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr, "remote", a.Config.RemoteStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			stopMirror()
			wg.Wait()
			return err
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	stopMirror()
	wg.Wait()
	if err != nil {
		slog.Error("server forced to shutdown", "error", err)
		return err
	}
	slog.Info("server stopped gracefully")
	return nil
}
