// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

/*
Package models defines the data structures shared across Letterdesk.

Key Components:

  - PhysicalRequest: one recipient's request for a printed copy of a letter.
    This is the only request representation used past the ingestion boundary.
  - LetterPhysicalSummary: letter-level rollup produced by package aggregate.
  - Envelope: the backend's {success, data, message, pagination} wrapper.
  - Admin, User, Letter: console resources managed through the remote API.

# Ingestion

The backend reports physical requests in two incompatible shapes:

 1. Flat letter: one object per recipient with physicalStatus,
    recipientName and a single shippingAddress object.
 2. Recipient-address array: one object per letter with a
    recipientAddresses array, each element carrying its own status.

Normalize accepts either shape (or a bare request object, or an array of
any mix) and returns canonical PhysicalRequest values with statuses already
passed through status.Map. Neither wire shape is exported.

	reqs, err := models.Normalize(envelope.Data)
	if err != nil {
	    return fmt.Errorf("decode physical requests: %w", err)
	}

# Timestamps

Backend timestamps are parsed leniently (RFC3339, RFC3339 without zone,
date only). Missing or unparseable values become the zero time.
Consumers that filter by time must treat the zero time as unknown.
*/
package models
