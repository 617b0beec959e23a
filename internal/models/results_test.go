package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSearchResult(t *testing.T) {
	result := NewSearchResult("duckduckgo", "Go", "The Go programming language", "https://go.dev")

	assert.Equal(t, "Go", result.Title)
	assert.Equal(t, "https://go.dev", result.URL)
	assert.Equal(t, "The Go programming language", result.Description)
	assert.Equal(t, []string{"duckduckgo"}, result.Engines)
}

func TestAddStyle(t *testing.T) {
	set := NewSearchResultSet("golang", nil)
	style := Style{Theme: "simple", Colorscheme: "catppuccin-mocha"}

	set.AddStyle(style)

	assert.Equal(t, style, set.Style)

	// applying the same style again leaves the set unchanged
	set.AddStyle(style)
	assert.Equal(t, style, set.Style)
}

func TestEmptyResultSet(t *testing.T) {
	set := NewSearchResultSet("golang", nil)

	assert.True(t, set.IsEmptyResultSet())
	assert.False(t, set.EmptyResultSet)

	set.MarkEmptyResultSet()
	assert.True(t, set.EmptyResultSet)
}

func TestNonEmptyResultSet(t *testing.T) {
	results := []*SearchResult{
		NewSearchResult("searxng", "Go", "The Go programming language", "https://go.dev"),
	}
	set := NewSearchResultSet("golang", results)

	assert.False(t, set.IsEmptyResultSet())
	assert.False(t, set.EmptyResultSet)
}

func TestResultSetJSONRoundTrip(t *testing.T) {
	results := []*SearchResult{
		NewSearchResult("duckduckgo", "Go", "The Go programming language", "https://go.dev"),
	}
	results[0].Engines = append(results[0].Engines, "searxng")

	set := NewSearchResultSet("golang", results)
	set.AddStyle(Style{Theme: "simple", Colorscheme: "catppuccin-mocha"})

	data, err := json.Marshal(set)
	require.NoError(t, err)

	var decoded SearchResultSet
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, set.Query, decoded.Query)
	assert.Equal(t, set.Style, decoded.Style)
	assert.Equal(t, set.EmptyResultSet, decoded.EmptyResultSet)
	require.Len(t, decoded.Results, 1)
	assert.Equal(t, set.Results[0].URL, decoded.Results[0].URL)
	assert.Equal(t, set.Results[0].Engines, decoded.Results[0].Engines)
}

func TestEmptyFlagSurvivesRoundTrip(t *testing.T) {
	set := NewSearchResultSet("zzzz-no-hits", nil)
	set.AddStyle(Style{Theme: "simple", Colorscheme: "catppuccin-mocha"})
	set.MarkEmptyResultSet()

	data, err := json.Marshal(set)
	require.NoError(t, err)

	var decoded SearchResultSet
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.True(t, decoded.EmptyResultSet)
	assert.Empty(t, decoded.Results)
}

func TestNewEngineResult(t *testing.T) {
	er := NewEngineResult("brave")

	assert.Equal(t, "brave", er.Engine)
	assert.NotNil(t, er.Results)
	assert.Empty(t, er.Results)
	assert.NoError(t, er.Error)
}
