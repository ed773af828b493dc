// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/letterdesk/internal/cache"
	"github.com/tomtom215/letterdesk/internal/client"
	"github.com/tomtom215/letterdesk/internal/logging"
	"github.com/tomtom215/letterdesk/internal/validation"
)

// ShippingUpdate records carrier tracking data on a request.
type ShippingUpdate struct {
	TrackingNumber    string     `json:"trackingNumber" validate:"required,max=64"`
	Carrier           string     `json:"carrier" validate:"required,carrier"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
	AdminNote         string     `json:"adminNote" validate:"max=1000"`
}

// UpdateShipping sends the shipping mutation once and invalidates the
// request and letter caches on success. It is not verified.
func (s *Service) UpdateShipping(ctx context.Context, id string, u ShippingUpdate) error {
	if id == "" {
		return fmt.Errorf("update shipping: id is required")
	}
	if err := validation.Validate(&u); err != nil {
		return err
	}

	patch := client.ShippingPatch{
		TrackingNumber:  u.TrackingNumber,
		ShippingCompany: u.Carrier,
		AdminNotes:      u.AdminNote,
	}
	if u.EstimatedDelivery != nil {
		patch.EstimatedDelivery = u.EstimatedDelivery.Format("2006-01-02")
	}

	logger := logging.Ctx(ctx).With().Str("id", id).Str("carrier", u.Carrier).Logger()
	if err := s.api.UpdateShipping(ctx, id, patch); err != nil {
		logger.Error().Err(err).Msg("Shipping update rejected")
		return fmt.Errorf("update shipping of %s: %w", id, err)
	}

	if err := s.invalidator.Invalidate(context.WithoutCancel(ctx), cache.MutationUpdateShipping); err != nil {
		logger.Error().Err(err).Msg("Cache invalidation failed after shipping update")
	}
	logger.Info().Msg("Shipping info updated")
	return nil
}
