// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/tomtom215/letterdesk/internal/logging"
	"github.com/tomtom215/letterdesk/internal/metrics"
	"github.com/tomtom215/letterdesk/internal/stats"
	"golang.org/x/sync/errgroup"
)

// DefaultSchedule matches the console's 30 second refetch interval.
const DefaultSchedule = "@every 30s"

// StatsRefresher recomputes statistics and overwrites their cache entry.
type StatsRefresher interface {
	Refresh(ctx context.Context, r stats.Range) (*stats.Result, error)
}

var _ StatsRefresher = (*stats.Service)(nil)

// ErrAlreadyStarted is returned by Start on a running refresher.
var ErrAlreadyStarted = errors.New("refresher already started")

// RefresherConfig configures a Refresher.
type RefresherConfig struct {
	// Schedule is a robfig/cron spec, e.g. "@every 30s".
	Schedule string
	// Ranges are re-warmed on every run. Defaults to 7d and all.
	Ranges []stats.Range
	// Timeout bounds one run.
	Timeout time.Duration
}

// Refresher re-warms statistics and dashboard cache entries on a schedule
// so console reads after the refetch interval hit a fresh cache.
type Refresher struct {
	dashboard *Service
	stats     StatsRefresher
	cfg       RefresherConfig

	mu     sync.Mutex
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

// NewRefresher creates a refresher. The schedule is parsed here so a bad
// spec fails at startup.
func NewRefresher(dashboard *Service, st StatsRefresher, cfg RefresherConfig) (*Refresher, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if len(cfg.Ranges) == 0 {
		cfg.Ranges = []stats.Range{stats.Range7d, stats.RangeAll}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", cfg.Schedule, err)
	}
	return &Refresher{dashboard: dashboard, stats: st, cfg: cfg}, nil
}

// Start schedules the refresh job. Runs are skipped while a previous run is
// still in flight.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return ErrAlreadyStarted
	}

	logger := logging.NewCronAdapter("dashboard-refresher")
	c := cron.New(cron.WithChain(
		cron.Recover(logger),
		cron.SkipIfStillRunning(logger),
	))
	if _, err := c.AddFunc(r.cfg.Schedule, r.run); err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}

	r.ctx, r.cancel = context.WithCancel(ctx)
	r.cron = c
	c.Start()
	logging.Info().Str("schedule", r.cfg.Schedule).Msg("Dashboard refresher started")
	return nil
}

// Stop cancels a running refresh and waits for it to return.
func (r *Refresher) Stop() error {
	r.mu.Lock()
	c, cancel := r.cron, r.cancel
	r.cron, r.cancel = nil, nil
	r.mu.Unlock()

	if c == nil {
		return nil
	}
	cancel()
	<-c.Stop().Done()
	logging.Info().Msg("Dashboard refresher stopped")
	return nil
}

func (r *Refresher) run() {
	r.mu.Lock()
	parent := r.ctx
	r.mu.Unlock()
	if parent == nil {
		return
	}

	ctx := logging.ContextWithNewCorrelationID(parent)
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	if err := r.Refresh(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Dashboard refresh failed")
	}
}

// Refresh re-warms every configured range once. All ranges are attempted
// even when one fails; the first error is returned.
func (r *Refresher) Refresh(ctx context.Context) error {
	start := time.Now()
	var g errgroup.Group
	for _, rng := range r.cfg.Ranges {
		g.Go(func() error {
			if _, err := r.stats.Refresh(ctx, rng); err != nil {
				return fmt.Errorf("refresh %s statistics: %w", rng, err)
			}
			return nil
		})
		g.Go(func() error {
			if _, err := r.dashboard.RefreshDashboard(ctx, rng); err != nil {
				return fmt.Errorf("refresh %s dashboard: %w", rng, err)
			}
			return nil
		})
	}
	err := g.Wait()

	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.DashboardRefreshes.WithLabelValues(result).Inc()
	logging.Ctx(ctx).Debug().Dur("duration", time.Since(start)).Str("result", result).Msg("Dashboard refresh finished")
	return err
}
