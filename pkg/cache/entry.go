// Package cache provides an optional Redis-backed response cache for API
// requests. The artworks API marks its datasets as stable between batch runs,
// so entries carry a configured TTL rather than header-derived expiry.
package cache

import (
	"time"
)

// Entry represents a cached API response body.
type Entry struct {
	// Data is the response body.
	Data []byte `json:"data"`

	// StatusCode is the HTTP status code of the cached response.
	StatusCode int `json:"status_code"`

	// CachedAt is when the response was cached.
	CachedAt time.Time `json:"cached_at"`
}

// Age returns how long ago the entry was cached.
func (e *Entry) Age() time.Duration {
	return time.Since(e.CachedAt)
}
