// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/letterdesk/internal/logging"
)

// HTTPServer is the lifecycle subset of *http.Server.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var _ HTTPServer = (*http.Server)(nil)

// closer is implemented by *http.Server. Connections still open when the
// drain deadline passes are dropped through it.
type closer interface {
	Close() error
}

// HTTPServerService runs the console HTTP server under suture.
//
// Serve blocks in ListenAndServe until either the server fails, which
// suture treats as a crash and restarts, or ctx is canceled. Cancellation
// stops accepting new operator requests and lets in-flight ones finish
// until the shutdown timeout; the rest are cut off.
type HTTPServerService struct {
	server          HTTPServer
	addr            string
	shutdownTimeout time.Duration
}

// NewHTTPServerService wraps server listening on addr. addr names the
// service in supervisor events, logs and errors.
func NewHTTPServerService(server HTTPServer, addr string, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{server: server, addr: addr, shutdownTimeout: shutdownTimeout}
}

// Serve implements suture.Service.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logging.Info().Str("addr", h.addr).Msg("Console HTTP server listening")

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("console http server on %s: %w", h.addr, err)
		}
		return nil

	case <-ctx.Done():
		// ctx is already canceled; shutdown gets its own deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()

		if err := h.server.Shutdown(shutdownCtx); err != nil {
			logging.Warn().Err(err).Str("addr", h.addr).Dur("timeout", h.shutdownTimeout).
				Msg("In-flight console requests did not drain; closing connections")
			if c, ok := h.server.(closer); ok {
				_ = c.Close()
			}
			return fmt.Errorf("console http server on %s: shutdown: %w", h.addr, err)
		}
		<-errCh
		logging.Info().Str("addr", h.addr).Msg("Console HTTP server stopped")
		return ctx.Err()
	}
}

// String implements fmt.Stringer for suture's logs.
func (h *HTTPServerService) String() string {
	return "console-http(" + h.addr + ")"
}
