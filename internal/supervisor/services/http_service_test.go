// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package services

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*HTTPServerService)(nil)

// loopbackAddr returns a loopback address that was free a moment ago.
func loopbackAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	_ = l.Close()
	return addr
}

// consoleServer serves /ready immediately and parks /api/physical-requests/bulk
// until release is closed or the connection goes away.
func consoleServer(addr string, started chan<- struct{}, release <-chan struct{}) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/api/physical-requests/bulk", func(w http.ResponseWriter, r *http.Request) {
		started <- struct{}{}
		select {
		case <-release:
			_, _ = io.WriteString(w, "queued")
		case <-r.Context().Done():
		}
	})
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: time.Second}
}

func waitReady(t *testing.T, addr string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get("http://" + addr + "/ready")
		if err == nil {
			_ = resp.Body.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("console server on %s never became ready", addr)
}

type bulkResult struct {
	body string
	err  error
}

func postBulk(addr string) <-chan bulkResult {
	out := make(chan bulkResult, 1)
	go func() {
		resp, err := http.Post("http://"+addr+"/api/physical-requests/bulk", "application/json", strings.NewReader(`{}`))
		if err != nil {
			out <- bulkResult{err: err}
			return
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		out <- bulkResult{body: string(b), err: err}
	}()
	return out
}

func TestNewHTTPServerService(t *testing.T) {
	tests := []struct {
		name        string
		addr        string
		timeout     time.Duration
		wantTimeout time.Duration
		wantString  string
	}{
		{"configured", "127.0.0.1:8420", 30 * time.Second, 30 * time.Second, "console-http(127.0.0.1:8420)"},
		{"zero timeout", ":8420", 0, 10 * time.Second, "console-http(:8420)"},
		{"negative timeout", "[::1]:9000", -5 * time.Second, 10 * time.Second, "console-http([::1]:9000)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewHTTPServerService(&http.Server{Addr: tt.addr}, tt.addr, tt.timeout)
			if svc.shutdownTimeout != tt.wantTimeout {
				t.Errorf("shutdownTimeout = %v, want %v", svc.shutdownTimeout, tt.wantTimeout)
			}
			if got := svc.String(); got != tt.wantString {
				t.Errorf("String() = %q, want %q", got, tt.wantString)
			}
		})
	}
}

func TestHTTPServerService_AddressInUse(t *testing.T) {
	held, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer held.Close()
	addr := held.Addr().String()

	svc := NewHTTPServerService(&http.Server{Addr: addr, ReadHeaderTimeout: time.Second}, addr, time.Second)

	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(context.Background()) }()

	select {
	case err := <-errCh:
		var opErr *net.OpError
		if !errors.As(err, &opErr) {
			t.Fatalf("Serve error = %v, want a *net.OpError", err)
		}
		if !strings.Contains(err.Error(), addr) {
			t.Errorf("Serve error %q does not name %s", err, addr)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not fail on an occupied address")
	}
}

func TestHTTPServerService_DrainsInFlightRequest(t *testing.T) {
	addr := loopbackAddr(t)
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	svc := NewHTTPServerService(consoleServer(addr, started, release), addr, 5*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()
	waitReady(t, addr)

	bulk := postBulk(addr)
	<-started
	cancel()

	// New operators are turned away while the bulk update is still running.
	fresh := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}, Timeout: time.Second}
	refused := false
	for i := 0; i < 100 && !refused; i++ {
		resp, err := fresh.Get("http://" + addr + "/ready")
		if err != nil {
			refused = true
			break
		}
		_ = resp.Body.Close()
		time.Sleep(10 * time.Millisecond)
	}
	if !refused {
		t.Error("server kept accepting connections after cancellation")
	}
	select {
	case err := <-errCh:
		t.Fatalf("Serve returned %v before the in-flight request finished", err)
	default:
	}

	close(release)
	res := <-bulk
	if res.err != nil || res.body != "queued" {
		t.Errorf("in-flight request = %q, %v; want it to complete", res.body, res.err)
	}
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after draining")
	}
}

func TestHTTPServerService_ShutdownTimeoutCutsOffStuckRequest(t *testing.T) {
	addr := loopbackAddr(t)
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	svc := NewHTTPServerService(consoleServer(addr, started, release), addr, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()
	waitReady(t, addr)

	bulk := postBulk(addr)
	<-started
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Serve = %v, want context.DeadlineExceeded", err)
		}
		if err != nil && !strings.Contains(err.Error(), addr) {
			t.Errorf("Serve error %q does not name %s", err, addr)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not give up at the shutdown timeout")
	}

	select {
	case res := <-bulk:
		if res.err == nil && res.body == "queued" {
			t.Error("stuck request completed; want its connection closed")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stuck request was not cut off")
	}
}

// flakyServer fails its first bind and then serves until Shutdown.
type flakyServer struct {
	binds    atomic.Int32
	shutdown atomic.Int32
	bound    chan struct{}
	stop     chan struct{}
}

func (f *flakyServer) ListenAndServe() error {
	if f.binds.Add(1) == 1 {
		return errors.New("listen tcp :8420: bind: address already in use")
	}
	close(f.bound)
	<-f.stop
	return http.ErrServerClosed
}

func (f *flakyServer) Shutdown(context.Context) error {
	f.shutdown.Add(1)
	close(f.stop)
	return nil
}

func TestHTTPServerService_SupervisorRestartsAfterBindFailure(t *testing.T) {
	srv := &flakyServer{bound: make(chan struct{}), stop: make(chan struct{})}
	svc := NewHTTPServerService(srv, ":8420", time.Second)

	sup := suture.New("letterdesk-api", suture.Spec{
		FailureThreshold: 3,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          2 * time.Second,
	})
	sup.Add(svc)

	ctx, cancel := context.WithCancel(context.Background())
	done := sup.ServeBackground(ctx)

	select {
	case <-srv.bound:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not restart the console server")
	}
	if got := srv.binds.Load(); got != 2 {
		t.Errorf("binds = %d, want 2", got)
	}

	cancel()
	<-done
	if got := srv.shutdown.Load(); got != 1 {
		t.Errorf("shutdowns = %d, want 1", got)
	}
}
