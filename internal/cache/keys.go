// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package cache

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Key is a hierarchical cache key. A key invalidates every key it is a
// prefix of, segment-wise.
type Key []string

// Well-known keys.
var (
	KeyAdmin            = Key{"admin"}
	KeyLetters          = Key{"admin", "letters"}
	KeyUsers            = Key{"admin", "users"}
	KeyAdmins           = Key{"admin", "admins"}
	KeyPhysicalRequests = Key{"admin", "physical-requests"}
	KeyPhysicalLetters  = Key{"admin", "physical-letters"}
	KeyLetterSummaries  = Key{"admin", "physical-letters", "list"}
	KeyPhysicalStats    = Key{"admin", "physical-letters", "stats"}
	KeyDashboard        = Key{"admin", "physical-letters", "dashboard"}
	KeyAnalytics        = Key{"admin", "physical-letters", "analytics"}
	KeyStatistics       = Key{"admin", "statistics"}
	KeyCurrentAdmin     = Key{"admin", "auth", "me"}
	KeyConsoleDashboard = Key{"admin", "dashboard"}
)

const separator = ":"

// String joins the segments with ":".
func (k Key) String() string {
	return strings.Join(k, separator)
}

// With returns a new key with extra segments appended.
func (k Key) With(segments ...string) Key {
	out := make(Key, 0, len(k)+len(segments))
	out = append(out, k...)
	return append(out, segments...)
}

// WithParams appends a stable hash of params, for keys that depend on a
// query.
func (k Key) WithParams(params interface{}) Key {
	return k.With(HashParams(params))
}

// HasPrefix reports whether prefix matches the leading segments of k.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

// matchesPrefix is HasPrefix on the string form.
func matchesPrefix(key, prefix string) bool {
	return key == prefix || strings.HasPrefix(key, prefix+separator)
}

// HashParams returns a short hex digest of the JSON encoding of params.
func HashParams(params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%v", params)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash[:8])
}
