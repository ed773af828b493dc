// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/letterdesk/internal/cache"
	"github.com/tomtom215/letterdesk/internal/logging"
	"github.com/tomtom215/letterdesk/internal/metrics"
	"github.com/tomtom215/letterdesk/internal/models"
)

// Origin records which source produced a Result.
type Origin string

const (
	OriginServer Origin = "server"
	OriginClient Origin = "client"
)

// DefaultFallbackLimit caps the list fetch used for client-side statistics.
const DefaultFallbackLimit = 1000

// Fetcher is the subset of the API client the stats service needs.
type Fetcher interface {
	PhysicalRequestStats(ctx context.Context) (*models.PhysicalLetterStats, error)
	ListPhysicalRequests(ctx context.Context, q models.RequestQuery) (*models.RequestPage, error)
}

// Result is a Stats value tagged with its origin.
type Result struct {
	Stats
	Range     Range     `json:"range"`
	Origin    Origin    `json:"origin"`
	Truncated bool      `json:"truncated,omitempty"`
	Generated time.Time `json:"generatedAt"`
}

// ServiceConfig configures a Service.
type ServiceConfig struct {
	// PreferServer enables the pre-aggregated endpoint for RangeAll.
	PreferServer bool
	// FallbackLimit is the page size of the client-side fetch.
	FallbackLimit int
	// TTL of cached results.
	TTL time.Duration
}

// Service produces statistics, server first.
type Service struct {
	fetcher Fetcher
	store   cache.Store
	cfg     ServiceConfig
	now     func() time.Time
}

// NewService creates a stats service. store may be nil to disable caching.
func NewService(fetcher Fetcher, store cache.Store, cfg ServiceConfig) *Service {
	if cfg.FallbackLimit <= 0 {
		cfg.FallbackLimit = DefaultFallbackLimit
	}
	if cfg.TTL <= 0 {
		cfg.TTL = cache.DefaultTTL
	}
	return &Service{fetcher: fetcher, store: store, cfg: cfg, now: time.Now}
}

// Stats returns statistics for r. The backend endpoint has no range
// parameter, so it is only consulted for RangeAll; bounded ranges are always
// computed client-side from the capped list fetch.
func (s *Service) Stats(ctx context.Context, r Range) (*Result, error) {
	if s.store == nil {
		return s.load(ctx, r)
	}
	return cache.GetOrLoad(ctx, s.store, cache.KeyPhysicalStats.With(string(r)), s.cfg.TTL,
		func(ctx context.Context) (*Result, error) { return s.load(ctx, r) })
}

// Refresh recomputes statistics for r and overwrites the cached entry. A
// result computed across an invalidation is returned but not stored.
func (s *Service) Refresh(ctx context.Context, r Range) (*Result, error) {
	key := cache.KeyPhysicalStats.With(string(r))
	var epoch uint64
	if s.store != nil {
		epoch = cache.Epoch(s.store, key)
	}

	res, err := s.load(ctx, r)
	if err != nil {
		return nil, err
	}
	if s.store != nil {
		if _, err := cache.PutIfCurrent(ctx, s.store, key, s.cfg.TTL, res, epoch); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("range", string(r)).Msg("Failed to store refreshed statistics")
		}
	}
	return res, nil
}

func (s *Service) load(ctx context.Context, r Range) (*Result, error) {
	if r == RangeAll && s.cfg.PreferServer {
		remote, err := s.fetcher.PhysicalRequestStats(ctx)
		if err == nil && remote != nil {
			metrics.StatsSource.WithLabelValues(string(OriginServer)).Inc()
			return &Result{Stats: FromServer(remote), Range: r, Origin: OriginServer, Generated: s.now()}, nil
		}
		logging.Ctx(ctx).Warn().Err(err).Msg("Server statistics unavailable, computing client-side")
	}

	page, err := s.fetcher.ListPhysicalRequests(ctx, models.RequestQuery{
		ListQuery: models.ListQuery{Page: 1, Limit: s.cfg.FallbackLimit},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch requests for statistics: %w", err)
	}

	now := s.now()
	subset := FilterByDateRange(page.Requests, r, now)
	res := &Result{
		Stats:     Compute(subset),
		Range:     r,
		Origin:    OriginClient,
		Generated: now,
	}
	if page.Pagination != nil && page.Pagination.Total > len(page.Requests) {
		res.Truncated = true
		logging.Ctx(ctx).Warn().
			Int("fetched", len(page.Requests)).
			Int("total", page.Pagination.Total).
			Msg("Client-side statistics computed over a truncated request list")
	}
	metrics.StatsSource.WithLabelValues(string(OriginClient)).Inc()
	return res, nil
}
