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

// BraveEngine queries the Brave Search API. Requests fail without a
// subscription token.
type BraveEngine struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewBraveEngine creates a Brave Search engine client
func NewBraveEngine(apiKey, baseURL string, timeout time.Duration) *BraveEngine {
	return &BraveEngine{
		apiKey:  apiKey,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the engine identifier
func (b *BraveEngine) Name() string {
	return "brave"
}

// Search retrieves one page of web results from the Brave Search API
func (b *BraveEngine) Search(ctx context.Context, query string, page uint, maxResults int) ([]*models.SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(maxResults))
	// the API pages with a 0-based offset
	params.Set("offset", strconv.FormatUint(uint64(page-1), 10))
	searchURL := fmt.Sprintf("%s/web/search?%s", b.baseURL, params.Encode())

	var braveResp braveSearchResponse
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Subscription-Token", b.apiKey)

		resp, err := b.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to execute request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("brave API error: status=%d", resp.StatusCode)
			if resp.StatusCode >= http.StatusInternalServerError {
				return err
			}
			return backoff.Permanent(err)
		}

		if err := json.NewDecoder(resp.Body).Decode(&braveResp); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
		}
		return nil
	}

	if err := backoff.Retry(operation, newRetryPolicy(ctx)); err != nil {
		return nil, err
	}

	results := make([]*models.SearchResult, 0, len(braveResp.Web.Results))
	for _, item := range braveResp.Web.Results {
		if len(results) >= maxResults {
			break
		}
		if item.URL == "" {
			continue
		}
		results = append(results, models.NewSearchResult("brave", item.Title, item.Description, item.URL))
	}

	return results, nil
}

// braveSearchResponse represents the Brave Search API response
type braveSearchResponse struct {
	Web struct {
		Results []braveResult `json:"results"`
	} `json:"web"`
}

// braveResult represents a single web result in the response
type braveResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}
