// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/letterdesk/internal/cache"
	"github.com/tomtom215/letterdesk/internal/client"
	"github.com/tomtom215/letterdesk/internal/models"
	"github.com/tomtom215/letterdesk/internal/stats"
)

// dateLayout is the day format of the statistics endpoint bounds.
const dateLayout = "2006-01-02"

// ErrInvalidDate is returned for malformed or inverted statistics bounds.
var ErrInvalidDate = errors.New("invalid statistics date")

// Fetcher is the subset of the API client the dashboard needs.
type Fetcher interface {
	PhysicalDashboard(ctx context.Context, rangeName string) (*models.DashboardData, error)
	PhysicalAnalytics(ctx context.Context) (*models.AnalyticsData, error)
	Statistics(ctx context.Context, start, end string) (models.StatisticsData, error)
}

var _ Fetcher = (*client.Client)(nil)

// Service serves dashboard, analytics and date-bounded statistics reads
// through the cache.
type Service struct {
	fetcher Fetcher
	store   cache.Store
	ttl     time.Duration
}

// NewService creates a dashboard service.
func NewService(fetcher Fetcher, store cache.Store, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &Service{fetcher: fetcher, store: store, ttl: ttl}
}

// Dashboard returns the fulfillment dashboard for r, cached per range.
func (s *Service) Dashboard(ctx context.Context, r stats.Range) (*models.DashboardData, error) {
	if _, err := stats.ParseRange(string(r)); err != nil {
		return nil, err
	}
	return cache.GetOrLoad(ctx, s.store, cache.KeyDashboard.With(string(r)), s.ttl,
		func(ctx context.Context) (*models.DashboardData, error) {
			return s.fetcher.PhysicalDashboard(ctx, string(r))
		})
}

// RefreshDashboard fetches the dashboard for r and overwrites the cache. A
// fetch that overlapped an invalidation is returned but not stored.
func (s *Service) RefreshDashboard(ctx context.Context, r stats.Range) (*models.DashboardData, error) {
	key := cache.KeyDashboard.With(string(r))
	epoch := cache.Epoch(s.store, key)

	data, err := s.fetcher.PhysicalDashboard(ctx, string(r))
	if err != nil {
		return nil, err
	}
	if _, err := cache.PutIfCurrent(ctx, s.store, key, s.ttl, data, epoch); err != nil {
		return data, fmt.Errorf("store dashboard: %w", err)
	}
	return data, nil
}

// Analytics returns the fulfillment analytics.
func (s *Service) Analytics(ctx context.Context) (*models.AnalyticsData, error) {
	return cache.GetOrLoad(ctx, s.store, cache.KeyAnalytics, s.ttl, s.fetcher.PhysicalAnalytics)
}

// Statistics returns the general statistics document between two days
// (YYYY-MM-DD, inclusive). start must not be after end.
func (s *Service) Statistics(ctx context.Context, start, end string) (models.StatisticsData, error) {
	from, err := time.Parse(dateLayout, start)
	if err != nil {
		return nil, fmt.Errorf("%w: start %q, want YYYY-MM-DD", ErrInvalidDate, start)
	}
	to, err := time.Parse(dateLayout, end)
	if err != nil {
		return nil, fmt.Errorf("%w: end %q, want YYYY-MM-DD", ErrInvalidDate, end)
	}
	if from.After(to) {
		return nil, fmt.Errorf("%w: start %s is after end %s", ErrInvalidDate, start, end)
	}

	return cache.GetOrLoad(ctx, s.store, cache.KeyStatistics.With(start, end), s.ttl,
		func(ctx context.Context) (models.StatisticsData, error) {
			return s.fetcher.Statistics(ctx, start, end)
		})
}
