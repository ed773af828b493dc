// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

/*
Package console serves the admin console's letters, users, admins and
authentication resources on top of the remote API client.

Reads are cached under the ["admin", <resource>] keys. Every successful
mutation dispatches its entry in the invalidation table, the same way the
fulfillment service does for physical requests. Failed mutations never
touch the cache.

# Session

Login establishes the shared session and drops cached reads that may
belong to a previous operator. Logout always clears the local session even
when the remote logout fails. A 401 from the remote API clears the session
through its unauthorized hook, which also drops every cached admin read.
*/
package console
