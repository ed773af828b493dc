// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

// Package aggregate folds per-recipient physical requests into letter-level
// summaries.
//
// A summary's CurrentStatus is the status of its most recently updated
// request. It is not a worst-case or best-case rollup: each recipient is
// fulfilled independently and the summary is a recency snapshot.
package aggregate

import (
	"sort"
	"time"

	"github.com/tomtom215/letterdesk/internal/models"
)

// ByLetter groups requests by LetterID.
//
// The first request seen for a letter creates its summary, and later ones
// increment TotalRequests and are appended to Recipients. Requests without a
// LetterID are dropped. Letters with no requests never appear in the output.
//
// The result is sorted by LastUpdatedAt, newest first. Ties keep the order
// in which letters were first seen.
func ByLetter(requests []models.PhysicalRequest) []models.LetterPhysicalSummary {
	index := make(map[string]int, len(requests))
	summaries := make([]models.LetterPhysicalSummary, 0)
	// noteAt tracks when each summary's AdminNote was written.
	noteAt := make([]time.Time, 0)

	for i := range requests {
		req := requests[i]
		if req.LetterID == "" {
			continue
		}
		updated := req.UpdatedAt()

		pos, seen := index[req.LetterID]
		if !seen {
			index[req.LetterID] = len(summaries)
			summaries = append(summaries, models.LetterPhysicalSummary{
				LetterID:      req.LetterID,
				Title:         req.Title,
				AuthorName:    req.AuthorName,
				TotalRequests: 1,
				CurrentStatus: req.Status,
				LastUpdatedAt: updated,
				AdminNote:     req.AdminNote,
				RequestID:     req.RequestID,
				Recipients:    []models.PhysicalRequest{req},
			})
			noteAt = append(noteAt, updated)
			continue
		}

		s := &summaries[pos]
		s.TotalRequests++
		s.Recipients = append(s.Recipients, req)
		if s.Title == "" {
			s.Title = req.Title
		}
		if s.AuthorName == "" {
			s.AuthorName = req.AuthorName
		}
		if updated.After(s.LastUpdatedAt) {
			s.LastUpdatedAt = updated
			s.CurrentStatus = req.Status
			s.RequestID = req.RequestID
		}
		if req.AdminNote != "" && (s.AdminNote == "" || updated.After(noteAt[pos])) {
			s.AdminNote = req.AdminNote
			noteAt[pos] = updated
		}
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LastUpdatedAt.After(summaries[j].LastUpdatedAt)
	})
	return summaries
}

// Find returns the summary for letterID, or nil.
func Find(summaries []models.LetterPhysicalSummary, letterID string) *models.LetterPhysicalSummary {
	for i := range summaries {
		if summaries[i].LetterID == letterID {
			return &summaries[i]
		}
	}
	return nil
}

// FilterByStatus keeps summaries whose CurrentStatus equals want. An empty
// want returns the input.
func FilterByStatus(summaries []models.LetterPhysicalSummary, want string) []models.LetterPhysicalSummary {
	if want == "" {
		return summaries
	}
	out := make([]models.LetterPhysicalSummary, 0, len(summaries))
	for _, s := range summaries {
		if string(s.CurrentStatus) == want {
			out = append(out, s)
		}
	}
	return out
}
