// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/letterdesk/internal/aggregate"
	"github.com/tomtom215/letterdesk/internal/cache"
	"github.com/tomtom215/letterdesk/internal/client"
	"github.com/tomtom215/letterdesk/internal/logging"
	"github.com/tomtom215/letterdesk/internal/models"
)

// DefaultLetterLimit is the page size used to build letter aggregates when
// the query does not set one.
const DefaultLetterLimit = 1000

// MaxLetterScanPages bounds how many request pages Letter reads.
const MaxLetterScanPages = 20

var (
	// ErrLetterNotFound is returned when no request references a letter.
	ErrLetterNotFound = errors.New("letter has no physical requests")

	// ErrLetterScanTruncated is returned when Letter stopped at
	// MaxLetterScanPages without a match. The letter may exist further on.
	ErrLetterScanTruncated = fmt.Errorf("%w within the first %d pages", ErrLetterNotFound, MaxLetterScanPages)
)

// ReadAPI is the subset of the remote client used for listing.
type ReadAPI interface {
	ListPhysicalRequests(ctx context.Context, q models.RequestQuery) (*models.RequestPage, error)
	ExportPhysicalRequests(ctx context.Context, q client.ExportQuery) ([]models.PhysicalRequest, error)
}

var _ ReadAPI = (*client.Client)(nil)

// Reader serves cached request lists and the letter aggregates derived from
// them. Entries live under the physical keys so every status mutation drops
// them.
type Reader struct {
	api   ReadAPI
	store cache.Store
	ttl   time.Duration
}

// NewReader creates a Reader.
func NewReader(api ReadAPI, store cache.Store, ttl time.Duration) *Reader {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &Reader{api: api, store: store, ttl: ttl}
}

// Requests returns one cached page of normalized requests.
func (r *Reader) Requests(ctx context.Context, q models.RequestQuery) (*models.RequestPage, error) {
	return cache.GetOrLoad(ctx, r.store, cache.KeyPhysicalRequests.WithParams(q), r.ttl,
		func(ctx context.Context) (*models.RequestPage, error) {
			return r.api.ListPhysicalRequests(ctx, q)
		})
}

// Letters aggregates the requests matching q by letter. want filters on the
// aggregate's current status, which the backend cannot filter on.
func (r *Reader) Letters(ctx context.Context, q models.RequestQuery, want string) ([]models.LetterPhysicalSummary, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultLetterLimit
	}
	summaries, err := cache.GetOrLoad(ctx, r.store, cache.KeyLetterSummaries.WithParams(q), r.ttl,
		func(ctx context.Context) ([]models.LetterPhysicalSummary, error) {
			page, err := r.api.ListPhysicalRequests(ctx, q)
			if err != nil {
				return nil, err
			}
			return aggregate.ByLetter(page.Requests), nil
		})
	if err != nil {
		return nil, err
	}
	return aggregate.FilterByStatus(summaries, want), nil
}

// Letter returns the aggregate of one letter. The backend cannot filter by
// letter, so request pages are read in order, each through the cache, until
// the list is exhausted or MaxLetterScanPages is reached. Requests of one
// letter may sit on different pages, so every page is read.
func (r *Reader) Letter(ctx context.Context, letterID string) (*models.LetterPhysicalSummary, error) {
	var (
		matched   []models.PhysicalRequest
		truncated bool
	)
	for page := 1; ; page++ {
		if page > MaxLetterScanPages {
			truncated = true
			break
		}
		res, err := r.Requests(ctx, models.RequestQuery{
			ListQuery: models.ListQuery{Page: page, Limit: DefaultLetterLimit},
		})
		if err != nil {
			return nil, err
		}
		for _, req := range res.Requests {
			if req.LetterID == letterID {
				matched = append(matched, req)
			}
		}
		if lastPage(res, page) {
			break
		}
	}

	if truncated {
		logging.Ctx(ctx).Warn().
			Str("letter_id", letterID).
			Int("pages", MaxLetterScanPages).
			Bool("found", len(matched) > 0).
			Msg("Letter lookup stopped at the page cap")
	}
	s := aggregate.Find(aggregate.ByLetter(matched), letterID)
	switch {
	case s != nil:
		return s, nil
	case truncated:
		return nil, ErrLetterScanTruncated
	default:
		return nil, ErrLetterNotFound
	}
}

// lastPage reports whether res is the final page. A response without
// pagination is a single page.
func lastPage(res *models.RequestPage, page int) bool {
	if len(res.Requests) == 0 || res.Pagination == nil {
		return true
	}
	p := res.Pagination
	if p.TotalPages > 0 {
		return page >= p.TotalPages
	}
	return page*DefaultLetterLimit >= p.Total
}

// Export returns every request matching q. Exports bypass the cache.
func (r *Reader) Export(ctx context.Context, q client.ExportQuery) ([]models.PhysicalRequest, error) {
	return r.api.ExportPhysicalRequests(ctx, q)
}
