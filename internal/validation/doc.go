// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

// Package validation validates console requests with go-playground/validator.
//
// A single validator instance is shared process-wide. Besides the built-in
// tags it knows fulfillment_status, carrier and stats_range, so request
// structs in package fulfillment and the HTTP surface can state their rules
// declaratively:
//
//	type ShippingUpdate struct {
//	    TrackingNumber string `validate:"required,max=64"`
//	    Carrier        string `validate:"required,carrier"`
//	}
//
// Failures come back as *RequestValidationError, which the HTTP surface
// turns into a 400 VALIDATION_ERROR response via ToAPIError.
package validation
