// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/letterdesk/internal/cache"
	"github.com/tomtom215/letterdesk/internal/client"
	"github.com/tomtom215/letterdesk/internal/events"
	"github.com/tomtom215/letterdesk/internal/logging"
	"github.com/tomtom215/letterdesk/internal/metrics"
	"github.com/tomtom215/letterdesk/internal/models"
	"github.com/tomtom215/letterdesk/internal/status"
	"github.com/tomtom215/letterdesk/internal/validation"
)

// VerifyMode selects when verification runs relative to UpdateStatus
// returning.
type VerifyMode string

const (
	// VerifySync verifies before UpdateStatus returns.
	VerifySync VerifyMode = "sync"
	// VerifyAsync returns immediately and delivers the verification on
	// UpdateResult.Pending.
	VerifyAsync VerifyMode = "async"
)

// Defaults used when Config leaves a field zero.
const (
	DefaultVerifyAttempts  = 3
	DefaultVerifyBaseDelay = 300 * time.Millisecond
	DefaultBulkConcurrency = 4
)

// API is the subset of the remote client used by the service.
type API interface {
	UpdatePhysicalStatus(ctx context.Context, id string, patch client.StatusPatch) error
	UpdateShipping(ctx context.Context, id string, patch client.ShippingPatch) error
	BulkUpdatePhysical(ctx context.Context, patch client.BulkPatch) (*models.BulkResult, error)
	GetPhysicalRequest(ctx context.Context, id string) (*models.PhysicalRequest, error)
}

var _ API = (*client.Client)(nil)

// Invalidator drops cached reads after a mutation.
type Invalidator interface {
	Invalidate(ctx context.Context, m cache.Mutation) error
}

var _ Invalidator = (*cache.Dispatcher)(nil)

// Publisher receives status change events. *events.Bus satisfies it.
type Publisher interface {
	PublishStatusChanged(ctx context.Context, ev events.StatusChanged) error
}

var _ Publisher = (*events.Bus)(nil)

// Config configures a Service.
type Config struct {
	NativeBulk        bool
	BulkConcurrency   int
	BulkRatePerSecond float64
	VerifyMode        VerifyMode
	VerifyAttempts    int
	VerifyBaseDelay   time.Duration
}

// Service runs status mutations against the remote API and keeps the cache
// consistent with them.
type Service struct {
	api         API
	invalidator Invalidator
	publisher   Publisher
	cfg         Config

	// wait sleeps for d or until ctx is done.
	wait func(ctx context.Context, d time.Duration) error

	wg sync.WaitGroup
}

// NewService creates a service. publisher may be nil.
func NewService(api API, invalidator Invalidator, publisher Publisher, cfg Config) *Service {
	if cfg.VerifyAttempts <= 0 {
		cfg.VerifyAttempts = DefaultVerifyAttempts
	}
	if cfg.VerifyBaseDelay <= 0 {
		cfg.VerifyBaseDelay = DefaultVerifyBaseDelay
	}
	if cfg.BulkConcurrency <= 0 {
		cfg.BulkConcurrency = DefaultBulkConcurrency
	}
	if cfg.VerifyMode == "" {
		cfg.VerifyMode = VerifySync
	}
	return &Service{
		api:         api,
		invalidator: invalidator,
		publisher:   publisher,
		cfg:         cfg,
		wait:        sleepCtx,
	}
}

// UpdateRequest asks for one request's status to change. RequestID is the
// preferred target; LetterID is used when RequestID is empty.
type UpdateRequest struct {
	LetterID  string        `json:"letterId" validate:"required_without=RequestID"`
	RequestID string        `json:"requestId"`
	Status    status.Status `json:"status" validate:"required,fulfillment_status"`
	Note      string        `json:"note" validate:"max=1000"`
}

// TargetID returns the id addressed on the remote API.
func (r UpdateRequest) TargetID() string {
	if r.RequestID != "" {
		return r.RequestID
	}
	return r.LetterID
}

// Verification is the outcome of reading a mutation back.
type Verification struct {
	ID       string        `json:"id"`
	Want     status.Status `json:"want"`
	Observed status.Status `json:"observed,omitempty"`
	Verified bool          `json:"verified"`
	Attempts int           `json:"attempts"`
	Err      error         `json:"-"`
}

// UpdateResult is returned by UpdateStatus once the mutation has been
// accepted. In async mode Verified is false, Warning is empty and the
// verification arrives on Pending.
type UpdateResult struct {
	ID       string        `json:"id"`
	Status   status.Status `json:"status"`
	Verified bool          `json:"verified"`
	Attempts int           `json:"attempts"`
	Observed status.Status `json:"observed,omitempty"`
	Warning  string        `json:"warning,omitempty"`

	Pending <-chan Verification `json:"-"`
}

// UpdateStatus performs the mutate, invalidate, verify sequence:
//
//  1. PATCH the request once. A failure is returned and nothing else runs.
//  2. Invalidate the request list, letter aggregates and statistics.
//  3. Poll the request with backoff until its status matches.
//
// A verification that never matches or cannot read the request yields
// Verified=false and a Warning. It is never an error.
func (s *Service) UpdateStatus(ctx context.Context, req UpdateRequest) (*UpdateResult, error) {
	if err := validation.Validate(&req); err != nil {
		return nil, err
	}
	id := req.TargetID()
	logger := logging.Ctx(ctx).With().Str("id", id).Str("status", string(req.Status)).Logger()

	if err := s.mutate(ctx, id, req.Status, req.Note); err != nil {
		logger.Error().Err(err).Msg("Status update rejected")
		return nil, err
	}
	logger.Info().Msg("Status update accepted")

	res := &UpdateResult{ID: id, Status: req.Status}
	if err := s.invalidator.Invalidate(context.WithoutCancel(ctx), cache.MutationUpdateStatus); err != nil {
		logger.Error().Err(err).Msg("Cache invalidation failed after status update")
		res.Warning = "cache invalidation failed: " + err.Error()
	}
	s.publish(ctx, events.StatusChanged{ID: id, Status: string(req.Status), Note: req.Note, Mode: events.ModeSingle})

	if s.cfg.VerifyMode == VerifyAsync {
		pending := make(chan Verification, 1)
		res.Pending = pending
		detached := context.WithoutCancel(ctx)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			v := s.verify(detached, id, req.Status)
			logVerification(detached, v)
			pending <- v
			close(pending)
		}()
		return res, nil
	}

	v := s.verify(ctx, id, req.Status)
	logVerification(ctx, v)
	res.Verified = v.Verified
	res.Attempts = v.Attempts
	res.Observed = v.Observed
	if w := v.Warning(); w != "" {
		if res.Warning != "" {
			res.Warning += "; "
		}
		res.Warning += w
	}
	return res, nil
}

// mutate sends the PATCH and records the outcome. It does not invalidate.
func (s *Service) mutate(ctx context.Context, id string, st status.Status, note string) error {
	err := s.api.UpdatePhysicalStatus(ctx, id, client.StatusPatch{Status: string(st), Notes: note})
	metrics.RecordStatusUpdate(string(st), err)
	if err != nil {
		return fmt.Errorf("update %s to %s: %w", id, st, err)
	}
	return nil
}

// verify polls the request up to VerifyAttempts times, waiting
// base, 2*base, 4*base, ... before each read.
func (s *Service) verify(ctx context.Context, id string, want status.Status) Verification {
	v := Verification{ID: id, Want: want}
	target := status.Map(string(want))
	delay := s.cfg.VerifyBaseDelay

	for attempt := 1; attempt <= s.cfg.VerifyAttempts; attempt++ {
		if err := s.wait(ctx, delay); err != nil {
			v.Err = err
			break
		}
		delay *= 2
		v.Attempts = attempt

		got, err := s.api.GetPhysicalRequest(ctx, id)
		if err != nil {
			v.Err = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		v.Err = nil
		v.Observed = got.Status
		if status.Map(string(got.Status)) == target {
			v.Verified = true
			break
		}
	}

	metrics.RecordVerification(v.outcome(), v.Attempts)
	return v
}

func (v Verification) outcome() string {
	switch {
	case v.Verified:
		return metrics.VerifyMatched
	case errors.Is(v.Err, context.Canceled), errors.Is(v.Err, context.DeadlineExceeded):
		return metrics.VerifySkipped
	case v.Err != nil:
		return metrics.VerifyError
	default:
		return metrics.VerifyMismatch
	}
}

// Warning describes an unverified outcome, or "" when verified.
func (v Verification) Warning() string {
	switch v.outcome() {
	case metrics.VerifyMatched:
		return ""
	case metrics.VerifySkipped:
		return "verification cancelled before the server confirmed the update"
	case metrics.VerifyError:
		return fmt.Sprintf("could not read %s back after %d attempts: %v", v.ID, v.Attempts, v.Err)
	default:
		return fmt.Sprintf("server still reports %s for %s after %d attempts, expected %s", v.Observed, v.ID, v.Attempts, v.Want)
	}
}

func logVerification(ctx context.Context, v Verification) {
	logger := logging.Ctx(ctx)
	if v.Verified {
		logger.Debug().Str("id", v.ID).Int("attempts", v.Attempts).Msg("Status update verified")
		return
	}
	logger.Warn().
		Str("id", v.ID).
		Str("want", string(v.Want)).
		Str("observed", string(v.Observed)).
		Int("attempts", v.Attempts).
		AnErr("read_error", v.Err).
		Msg("Status update not verified")
}

func (s *Service) publish(ctx context.Context, ev events.StatusChanged) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishStatusChanged(ctx, ev); err != nil && !errors.Is(err, events.ErrClosed) {
		logging.Ctx(ctx).Warn().Err(err).Str("id", ev.ID).Msg("Failed to publish status event")
	}
}

// Wait blocks until every async verification has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
