// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package fulfillment

import (
	"context"
	"time"

	"github.com/tomtom215/letterdesk/internal/cache"
	"github.com/tomtom215/letterdesk/internal/client"
	"github.com/tomtom215/letterdesk/internal/events"
	"github.com/tomtom215/letterdesk/internal/logging"
	"github.com/tomtom215/letterdesk/internal/metrics"
	"github.com/tomtom215/letterdesk/internal/status"
	"github.com/tomtom215/letterdesk/internal/validation"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Bulk execution modes.
const (
	BulkModeNative = "native"
	BulkModeFanout = "fanout"
)

// BulkRequest applies one status to many requests. ByLetter addresses the
// ids as letter ids on the native endpoint; fan-out mode sends every id to
// the single-request endpoint regardless.
type BulkRequest struct {
	IDs      []string      `json:"ids" validate:"min=1,dive,required"`
	ByLetter bool          `json:"byLetter"`
	Status   status.Status `json:"status" validate:"required,fulfillment_status"`
	Note     string        `json:"note" validate:"max=1000"`
}

// BulkResult accounts for every unique id: UpdatedCount + len(FailedIDs)
// equals the number of unique ids in fan-out mode. In native mode the
// backend's own counts are returned unchanged.
type BulkResult struct {
	UpdatedCount int      `json:"updatedCount"`
	FailedIDs    []string `json:"failedIds"`
	Mode         string   `json:"mode"`
}

// BulkUpdate applies req to every id. Duplicate ids are collapsed keeping
// first occurrence order. Exactly one invalidation is dispatched once every
// sub-operation has settled, including when some or all of them failed.
//
// Sub-operations run on a context detached from ctx, so abandoning the call
// does not abort requests already sent to the remote API.
func (s *Service) BulkUpdate(ctx context.Context, req BulkRequest) (*BulkResult, error) {
	req.IDs = dedupe(req.IDs)
	if err := validation.Validate(&req); err != nil {
		return nil, err
	}

	start := time.Now()
	detached := context.WithoutCancel(ctx)

	var res *BulkResult
	if s.cfg.NativeBulk {
		res = s.bulkNative(detached, req)
	} else {
		res = s.bulkFanout(detached, req)
	}

	if err := s.invalidator.Invalidate(detached, cache.MutationBulkUpdate); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Cache invalidation failed after bulk update")
	}

	metrics.RecordBulk(res.Mode, res.UpdatedCount, len(res.FailedIDs), time.Since(start))
	logging.Ctx(ctx).Info().
		Str("mode", res.Mode).
		Str("status", string(req.Status)).
		Int("requested", len(req.IDs)).
		Int("updated", res.UpdatedCount).
		Int("failed", len(res.FailedIDs)).
		Dur("duration", time.Since(start)).
		Msg("Bulk update finished")
	return res, nil
}

// bulkNative issues one POST. A transport or server failure marks every id
// failed.
func (s *Service) bulkNative(ctx context.Context, req BulkRequest) *BulkResult {
	patch := client.BulkPatch{Status: string(req.Status), AdminNote: req.Note}
	if req.ByLetter {
		patch.LetterIDs = req.IDs
	} else {
		patch.RequestIDs = req.IDs
	}

	out, err := s.api.BulkUpdatePhysical(ctx, patch)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Int("ids", len(req.IDs)).Msg("Native bulk update failed")
		return &BulkResult{FailedIDs: append([]string(nil), req.IDs...), Mode: BulkModeNative}
	}

	failed := make(map[string]bool, len(out.Failed))
	for _, id := range out.Failed {
		failed[id] = true
	}
	for _, id := range req.IDs {
		if !failed[id] {
			s.publish(ctx, events.StatusChanged{ID: id, Status: string(req.Status), Note: req.Note, Mode: events.ModeBulkNative})
		}
	}

	failedIDs := out.Failed
	if failedIDs == nil {
		failedIDs = []string{}
	}
	return &BulkResult{UpdatedCount: out.Updated, FailedIDs: failedIDs, Mode: BulkModeNative}
}

// bulkFanout sends one mutation per id. Every goroutine returns nil and
// records its own outcome, so one failure never cancels the others.
func (s *Service) bulkFanout(ctx context.Context, req BulkRequest) *BulkResult {
	var limiter *rate.Limiter
	if s.cfg.BulkRatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.cfg.BulkRatePerSecond), 1)
	}

	ok := make([]bool, len(req.IDs))
	var g errgroup.Group
	g.SetLimit(s.cfg.BulkConcurrency)

	for i, id := range req.IDs {
		g.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return nil
				}
			}
			if err := s.mutate(ctx, id, req.Status, req.Note); err != nil {
				logging.Ctx(ctx).Warn().Err(err).Str("id", id).Msg("Bulk item failed")
				return nil
			}
			ok[i] = true
			s.publish(ctx, events.StatusChanged{ID: id, Status: string(req.Status), Note: req.Note, Mode: events.ModeBulkFanout})
			return nil
		})
	}
	_ = g.Wait()

	res := &BulkResult{FailedIDs: []string{}, Mode: BulkModeFanout}
	for i, id := range req.IDs {
		if ok[i] {
			res.UpdatedCount++
		} else {
			res.FailedIDs = append(res.FailedIDs, id)
		}
	}
	return res
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
