package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Key represents a unique identifier for a cached WiGLE response.
type Key struct {
	// Endpoint is the API path (e.g., "/api/v2/network/detail").
	Endpoint string

	// QueryParams are the request query parameters.
	QueryParams url.Values
}

// String generates a deterministic cache key string.
// Format: wigle:endpoint:param1=val1:param2=val2
//
// Example:
//
//	wigle:api/v2/network/detail:netid=aa:bb:cc:dd:ee:ff
func (k Key) String() string {
	parts := []string{"wigle"}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Query params sorted for determinism.
	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.QueryParams.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}
