// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

/*
Package fulfillment runs status mutations for physical letter requests.

# Mutation Sequence

Every single-request update follows the same order:

 1. Validate the target and the canonical status.
 2. Send the PATCH once. Mutations are never retried by the client.
 3. Invalidate the request list, letter aggregates and statistics.
 4. Read the request back, up to three times with exponential backoff.

Invalidation happens as soon as the server accepts the mutation. A read-back
that still reports the old status only produces a warning on the result.

# Bulk Updates

BulkUpdate either uses the backend's native bulk endpoint or fans out one
mutation per id through a bounded, rate-limited errgroup. Fan-out accounts
for every id: UpdatedCount plus len(FailedIDs) equals the number of unique
ids. Exactly one invalidation follows the batch.

# Usage

	svc := fulfillment.NewService(apiClient, dispatcher, bus, fulfillment.Config{})
	res, err := svc.UpdateStatus(ctx, fulfillment.UpdateRequest{
	    RequestID: "R1",
	    Status:    status.Sent,
	})
	if err != nil {
	    return err
	}
	if res.Warning != "" {
	    log.Warn().Msg(res.Warning)
	}
*/
package fulfillment
