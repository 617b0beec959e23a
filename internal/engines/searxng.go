package engines

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/farhapartex/metasearch/internal/models"
)

// SearxNGEngine queries the JSON API of a SearxNG instance
type SearxNGEngine struct {
	baseURL string
	client  *http.Client
}

// NewSearxNGEngine creates a SearxNG engine client for the given instance
func NewSearxNGEngine(baseURL string, timeout time.Duration) *SearxNGEngine {
	return &SearxNGEngine{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the engine identifier
func (s *SearxNGEngine) Name() string {
	return "searxng"
}

// Search retrieves one page of results from the instance's JSON API
func (s *SearxNGEngine) Search(ctx context.Context, query string, page uint, maxResults int) ([]*models.SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("pageno", strconv.FormatUint(uint64(page), 10))
	params.Set("format", "json")
	searchURL := fmt.Sprintf("%s/search?%s", s.baseURL, params.Encode())

	var searxResp searxngResponse
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		req.Header.Set("User-Agent", searchUserAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to execute request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("searxng error: status=%d", resp.StatusCode)
			if resp.StatusCode >= http.StatusInternalServerError {
				return err
			}
			return backoff.Permanent(err)
		}

		if err := json.NewDecoder(resp.Body).Decode(&searxResp); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
		}
		return nil
	}

	if err := backoff.Retry(operation, newRetryPolicy(ctx)); err != nil {
		return nil, err
	}

	results := make([]*models.SearchResult, 0, len(searxResp.Results))
	for _, item := range searxResp.Results {
		if len(results) >= maxResults {
			break
		}
		if item.URL == "" {
			continue
		}
		result := models.NewSearchResult("searxng", item.Title, item.Content, item.URL)
		if item.Engine != "" {
			result.Metadata = map[string]string{"upstream": item.Engine}
		}
		results = append(results, result)
	}

	return results, nil
}

// searxngResponse represents the SearxNG JSON API response
type searxngResponse struct {
	Query           string          `json:"query"`
	NumberOfResults int             `json:"number_of_results"`
	Results         []searxngResult `json:"results"`
}

// searxngResult represents a single result item in the response
type searxngResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Engine  string  `json:"engine"`
	Score   float64 `json:"score"`
}
