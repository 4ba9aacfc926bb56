// Package cache provides an optional Redis-backed cache for WiGLE detail
// responses. WiGLE enforces a daily query quota, so batch runs that revisit
// the same identifiers are served from cache instead of burning quota.
package cache

import (
	"time"
)

// Entry represents a cached WiGLE response.
type Entry struct {
	// Data is the response body.
	Data []byte `json:"data"`

	// StatusCode is the HTTP status code of the cached response.
	StatusCode int `json:"status_code"`

	// CachedAt is when we cached this response.
	CachedAt time.Time `json:"cached_at"`

	// Expires is when the entry becomes stale. WiGLE sends no cache
	// headers, so this is CachedAt plus the configured TTL.
	Expires time.Time `json:"expires"`
}

// NewEntry builds an entry for a response body with the given TTL.
func NewEntry(data []byte, statusCode int, ttl time.Duration) *Entry {
	now := time.Now()
	return &Entry{
		Data:       data,
		StatusCode: statusCode,
		CachedAt:   now,
		Expires:    now.Add(ttl),
	}
}

// IsExpired returns true if the cache entry has expired.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
