// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package console

import (
	"context"
	"fmt"

	"github.com/tomtom215/letterdesk/internal/cache"
	"github.com/tomtom215/letterdesk/internal/client"
	"github.com/tomtom215/letterdesk/internal/logging"
	"github.com/tomtom215/letterdesk/internal/models"
	"github.com/tomtom215/letterdesk/internal/validation"
)

// LetterStatusChange hides, publishes or otherwise moderates a letter.
type LetterStatusChange struct {
	Status string `json:"status" validate:"required,oneof=published hidden deleted draft"`
	Reason string `json:"reason" validate:"max=500"`
}

// ListLetters returns one cached page of letters.
func (s *Service) ListLetters(ctx context.Context, q models.LetterQuery) (*client.Page[models.Letter], error) {
	return cached(ctx, s, cache.KeyLetters.WithParams(q), func(ctx context.Context) (*client.Page[models.Letter], error) {
		return s.api.ListLetters(ctx, q)
	})
}

// GetLetter returns one cached letter.
func (s *Service) GetLetter(ctx context.Context, id string) (*models.Letter, error) {
	return cached(ctx, s, cache.KeyLetters.With("detail", id), func(ctx context.Context) (*models.Letter, error) {
		return s.api.GetLetter(ctx, id)
	})
}

// UpdateLetter edits a letter's content fields.
func (s *Service) UpdateLetter(ctx context.Context, id string, patch client.LetterPatch) (*models.Letter, error) {
	l, err := s.api.UpdateLetter(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.MutationLetterUpdate)
	return l, nil
}

// UpdateLetterStatus changes a letter's moderation status.
func (s *Service) UpdateLetterStatus(ctx context.Context, id string, change LetterStatusChange) (*models.Letter, error) {
	if err := validation.Validate(&change); err != nil {
		return nil, err
	}
	l, err := s.api.UpdateLetterStatus(ctx, id, change.Status, change.Reason)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.MutationLetterStatus)
	logging.Ctx(ctx).Info().Str("letter_id", id).Str("status", change.Status).Msg("Letter status changed")
	return l, nil
}

// DeleteLetter removes a letter. Its physical requests disappear with it,
// so the physical caches are dropped too.
func (s *Service) DeleteLetter(ctx context.Context, id string) error {
	if err := s.api.DeleteLetter(ctx, id); err != nil {
		return fmt.Errorf("delete letter: %w", err)
	}
	s.invalidate(ctx, cache.MutationLetterDelete)
	logging.Ctx(ctx).Info().Str("letter_id", id).Msg("Letter deleted")
	return nil
}
