// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

/*
invalidation.go - Declarative Cache Invalidation

Every mutating remote call is named by a Mutation. DefaultInvalidationTable
lists, for each Mutation, the key prefixes whose cached reads may contain
data the mutation changed. Call sites never pick keys themselves; they
dispatch the mutation and the table decides.

Physical-letter status changes invalidate:
  - admin:physical-requests  (raw request pages and details)
  - admin:physical-letters   (letter summaries, stats, dashboard, analytics)
  - admin:letters            (letter records embed a physical summary)
  - admin:statistics         (date-ranged statistics)
  - admin:dashboard          (console home page totals)

Letter and user mutations also drop admin:dashboard, whose totals and
recent lists cover both. Letter deletion drops admin:users since per-user
letter pages and counts change.
*/

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/letterdesk/internal/logging"
	"github.com/tomtom215/letterdesk/internal/metrics"
)

// ErrUnknownMutation is returned when a mutation has no table entry.
var ErrUnknownMutation = errors.New("mutation has no invalidation entry")

// Mutation names a kind of state-changing remote call.
type Mutation string

const (
	MutationUpdateStatus   Mutation = "physical.update_status"
	MutationUpdateShipping Mutation = "physical.update_shipping"
	MutationBulkUpdate     Mutation = "physical.bulk_update"

	MutationLetterUpdate Mutation = "letter.update"
	MutationLetterStatus Mutation = "letter.status"
	MutationLetterDelete Mutation = "letter.delete"

	MutationUserUpdate Mutation = "user.update"
	MutationUserBan    Mutation = "user.ban"
	MutationUserUnban  Mutation = "user.unban"
	MutationUserDelete Mutation = "user.delete"

	MutationAdminCreate Mutation = "admin.create"
	MutationAdminUpdate Mutation = "admin.update"
	MutationAdminDelete Mutation = "admin.delete"

	MutationPasswordChange Mutation = "auth.password"
	MutationLogout         Mutation = "auth.logout"
)

// InvalidationTable maps a mutation to the key prefixes it invalidates.
type InvalidationTable map[Mutation][]Key

// DefaultInvalidationTable returns the console's invalidation policy.
func DefaultInvalidationTable() InvalidationTable {
	physical := []Key{KeyPhysicalRequests, KeyPhysicalLetters, KeyLetters, KeyStatistics, KeyConsoleDashboard}
	users := []Key{KeyUsers, KeyConsoleDashboard}

	return InvalidationTable{
		MutationUpdateStatus:   physical,
		MutationBulkUpdate:     physical,
		MutationUpdateShipping: {KeyPhysicalRequests, KeyPhysicalLetters},

		MutationLetterUpdate: {KeyLetters, KeyLetterSummaries, KeyUsers, KeyConsoleDashboard},
		MutationLetterStatus: {KeyLetters, KeyUsers, KeyConsoleDashboard},
		MutationLetterDelete: append(append([]Key(nil), physical...), KeyUsers),

		MutationUserUpdate: users,
		MutationUserBan:    users,
		MutationUserUnban:  users,
		MutationUserDelete: {KeyUsers, KeyLetters, KeyConsoleDashboard},

		MutationAdminCreate: {KeyAdmins},
		MutationAdminUpdate: {KeyAdmins, KeyCurrentAdmin},
		MutationAdminDelete: {KeyAdmins},

		MutationPasswordChange: {KeyCurrentAdmin},
		MutationLogout:         {KeyAdmin},
	}
}

// Invalidation describes one dispatched invalidation.
type Invalidation struct {
	Mutation Mutation
	Keys     []Key
	Removed  int
	At       time.Time
}

// Listener is notified after an invalidation has been applied.
type Listener func(ctx context.Context, inv Invalidation)

// Dispatcher applies an InvalidationTable to a Store.
type Dispatcher struct {
	store Store
	table InvalidationTable

	mu        sync.RWMutex
	listeners []Listener
}

// NewDispatcher creates a dispatcher. The table is copied.
func NewDispatcher(store Store, table InvalidationTable) *Dispatcher {
	copied := make(InvalidationTable, len(table))
	for m, keys := range table {
		copied[m] = append([]Key(nil), keys...)
	}
	return &Dispatcher{store: store, table: copied}
}

// Store returns the dispatcher's backing store.
func (d *Dispatcher) Store() Store {
	return d.store
}

// Keys returns the prefixes invalidated by m.
func (d *Dispatcher) Keys(m Mutation) ([]Key, error) {
	keys, ok := d.table[m]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMutation, m)
	}
	return append([]Key(nil), keys...), nil
}

// Subscribe registers a listener.
func (d *Dispatcher) Subscribe(l Listener) {
	d.mu.Lock()
	d.listeners = append(d.listeners, l)
	d.mu.Unlock()
}

// Invalidate drops every cached entry under the prefixes declared for m.
// All prefixes are attempted even if one fails; failures are joined.
func (d *Dispatcher) Invalidate(ctx context.Context, m Mutation) error {
	keys, err := d.Keys(m)
	if err != nil {
		return err
	}

	var (
		errs    []error
		removed int
	)
	for _, k := range keys {
		n, err := d.store.DeletePrefix(ctx, k.String())
		if err != nil {
			errs = append(errs, fmt.Errorf("invalidate %s: %w", k, err))
			continue
		}
		removed += n
	}
	metrics.CacheInvalidations.WithLabelValues(string(m)).Inc()

	logging.Ctx(ctx).Debug().
		Str("mutation", string(m)).
		Int("removed", removed).
		Msg("Cache invalidated")

	inv := Invalidation{Mutation: m, Keys: keys, Removed: removed, At: time.Now()}
	d.mu.RLock()
	listeners := append([]Listener(nil), d.listeners...)
	d.mu.RUnlock()
	for _, l := range listeners {
		l(ctx, inv)
	}

	return errors.Join(errs...)
}
