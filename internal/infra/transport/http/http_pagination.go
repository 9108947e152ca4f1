package http

import (
	"net/http"
	"strconv"
)

const (
	// DefaultPageLimit is the page size used when the limit parameter is absent.
	DefaultPageLimit = 100
	// MaxPageLimit caps how many rows a single page may return.
	MaxPageLimit = 1000
)

// ParsePagination reads the skip and limit query parameters and clamps them
// to sane bounds: skip is never negative and limit sits in [1, MaxPageLimit].
// Unparseable values fall back to the defaults.
func ParsePagination(r *http.Request) (skip, limit int64) {
	skip = 0
	limit = DefaultPageLimit

	if raw := r.URL.Query().Get("skip"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			skip = parsed
		}
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			limit = min(parsed, MaxPageLimit)
		}
	}

	return skip, limit
}
