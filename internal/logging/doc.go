// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

// Package logging provides zerolog-based structured logging for Letterdesk.
//
// Every package in the console core logs through this package rather than
// the standard library log package. Production deployments emit JSON, local
// development uses the console writer.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Str("letter_id", id).Msg("Status updated")
//	logging.Ctx(ctx).Warn().Str("request_id", rid).Msg("Verification mismatch")
//
// # Context Propagation
//
// Correlation IDs are attached to contexts by the HTTP middleware and by the
// fulfillment service for background work. Ctx(ctx) returns a logger that
// carries them automatically:
//
//	ctx = logging.ContextWithNewCorrelationID(ctx)
//	logging.Ctx(ctx).Info().Msg("Bulk update started")
//
// # Components
//
// Long-lived services create a component logger once:
//
//	log := logging.WithComponent("fulfillment")
//	log.Info().Int("count", n).Msg("Bulk update finished")
//
// # Credentials
//
// The console relays operator passwords and backend bearer tokens. Fields
// named in Config.Redact (DefaultRedactedFields unless set) are replaced
// with "[redacted]" before a line reaches the output, in both formats.
// Every line also carries "service" and, when configured, "instance".
//
// # Suture Integration
//
// The supervisor tree requires an slog.Logger. NewSlogLogger returns one
// that writes through the global zerolog logger so supervisor events share
// the same format and level as the rest of the process.
package logging
