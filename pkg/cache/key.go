package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Key represents a unique identifier for a cached API response.
type Key struct {
	// Endpoint is the API path (e.g. "/search").
	Endpoint string

	// Query holds the request query parameters.
	Query url.Values
}

// String generates a deterministic cache key string.
// Format: artic:endpoint:param1=val1:param2=val2
//
// Example:
//
//	artic:search:limit=25:page=1:q=monet
func (k Key) String() string {
	parts := []string{"artic"}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	if len(k.Query) > 0 {
		keys := make([]string, 0, len(k.Query))
		for key := range k.Query {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.Query.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}
