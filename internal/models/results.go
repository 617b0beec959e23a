package models

import "time"

// Style holds the presentation metadata attached to every rendered page
type Style struct {
	Theme       string `json:"theme"`
	Colorscheme string `json:"colorscheme"`
}

// SearchResult represents a single aggregated search result.
// Engines lists every upstream engine that returned this URL.
type SearchResult struct {
	Title       string            `json:"title"`
	URL         string            `json:"url"`
	Description string            `json:"description"`
	Engines     []string          `json:"engines"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// NewSearchResult creates a search result attributed to a single engine
func NewSearchResult(engine, title, description, url string) *SearchResult {
	return &SearchResult{
		Title:       title,
		URL:         url,
		Description: description,
		Engines:     []string{engine},
	}
}

// SearchResultSet is the fully aggregated answer for one query and page.
// It is created by the aggregator on a cache miss, enriched exactly once
// (style attached, empty flag computed), then either rendered or serialized
// into the cache, and never mutated afterwards. Cached payloads deserialize
// back into this type already enriched.
type SearchResultSet struct {
	Results        []*SearchResult `json:"results"`
	Query          string          `json:"query"`
	Style          Style           `json:"style"`
	EmptyResultSet bool            `json:"empty_result_set"`
}

// NewSearchResultSet creates an unstyled result set for the given query
func NewSearchResultSet(query string, results []*SearchResult) *SearchResultSet {
	return &SearchResultSet{
		Results: results,
		Query:   query,
	}
}

// AddStyle attaches the presentation metadata consumed by the templates
func (s *SearchResultSet) AddStyle(style Style) {
	s.Style = style
}

// IsEmptyResultSet reports whether aggregation produced no results
func (s *SearchResultSet) IsEmptyResultSet() bool {
	return len(s.Results) == 0
}

// MarkEmptyResultSet flags the set so templates render the no-results state
// instead of an empty list
func (s *SearchResultSet) MarkEmptyResultSet() {
	s.EmptyResultSet = true
}

// EngineResult carries the outcome of querying a single upstream engine
type EngineResult struct {
	Engine   string
	Results  []*SearchResult
	Error    error
	Duration time.Duration
	TimedOut bool
}

// NewEngineResult creates an empty result envelope for the named engine
func NewEngineResult(engine string) *EngineResult {
	return &EngineResult{
		Engine:  engine,
		Results: make([]*SearchResult, 0),
	}
}
