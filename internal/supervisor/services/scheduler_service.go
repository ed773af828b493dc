// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package services

import (
	"context"
	"fmt"

	"github.com/tomtom215/letterdesk/internal/dashboard"
)

// Scheduler is a component with a Start/Stop lifecycle, such as the
// dashboard refresher.
type Scheduler interface {
	Start(ctx context.Context) error
	Stop() error
}

var _ Scheduler = (*dashboard.Refresher)(nil)

// SchedulerService adapts a Start/Stop scheduler to suture's Serve:
// start, wait for cancellation, stop.
type SchedulerService struct {
	scheduler Scheduler
	name      string
}

// NewSchedulerService wraps scheduler under the given service name.
func NewSchedulerService(scheduler Scheduler, name string) *SchedulerService {
	return &SchedulerService{scheduler: scheduler, name: name}
}

// Serve implements suture.Service. A failed Start is returned so suture
// restarts the service with backoff.
func (s *SchedulerService) Serve(ctx context.Context) error {
	if err := s.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("%s start failed: %w", s.name, err)
	}

	<-ctx.Done()

	if err := s.scheduler.Stop(); err != nil {
		return fmt.Errorf("%s stop failed: %w", s.name, err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for suture's logs.
func (s *SchedulerService) String() string {
	return s.name
}
