package handlers

import (
	"fmt"
	"strconv"
)

// normalizePage derives the effective page number and the canonical cache key
// for a search request. Pages at or below 1 normalize to exactly 1, and a
// request without a page parameter keys on its own URI with "&page=1"
// appended, so "q=sweden", "q=sweden&page=0" and "q=sweden&page=1" all land
// on the same cache entry.
//
// The query is embedded verbatim: no percent-encoding or parameter reordering
// is applied, so key stability depends on clients sending parameters in a
// consistent order.
func normalizePage(query string, page *uint, requestURI, host string, port int) (uint, string) {
	if page == nil {
		return 1, fmt.Sprintf("http://%s:%d%s&page=1", host, port, requestURI)
	}
	if *page <= 1 {
		return 1, fmt.Sprintf("http://%s:%d/search?q=%s&page=1", host, port, query)
	}
	return *page, fmt.Sprintf("http://%s:%d/search?q=%s&page=%d", host, port, query, *page)
}

// parsePageParam parses the optional page query parameter. A nil result
// means the parameter was absent; a malformed value is a binding failure.
func parsePageParam(raw string) (*uint, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid page parameter %q: %w", raw, err)
	}
	page := uint(parsed)
	return &page, nil
}
