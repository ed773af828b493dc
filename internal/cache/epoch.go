// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package cache

import "strings"

// epochs counts invalidations per key prefix. The epoch of a key is the sum
// of the counters of every prefix covering it plus the number of full
// clears, so it advances whenever DeletePrefix or Clear could have removed
// the key. A load that read epoch e before fetching may only store its
// result while the key is still at e; otherwise it raced an invalidation and
// holds pre-mutation data.
//
// epochs is not safe for concurrent use; the owning store guards it with the
// same lock that orders its writes and deletions.
type epochs struct {
	prefixes map[string]uint64
	clears   uint64
}

func newEpochs() epochs {
	return epochs{prefixes: make(map[string]uint64)}
}

// of returns the current epoch of key.
func (e *epochs) of(key string) uint64 {
	sum := e.clears
	for i := 0; i <= len(key); i++ {
		if i == len(key) || strings.HasPrefix(key[i:], separator) {
			sum += e.prefixes[key[:i]]
		}
	}
	return sum
}

// bump records a deletion of prefix and everything below it.
func (e *epochs) bump(prefix string) {
	e.prefixes[prefix]++
}

// bumpAll records a full clear.
func (e *epochs) bumpAll() {
	e.clears++
}
