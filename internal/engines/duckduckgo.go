package engines

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"

	"github.com/farhapartex/metasearch/internal/models"
)

// ddgResultsPerPage is the result count the HTML endpoint serves per page;
// its pagination works on a result offset rather than a page number.
const ddgResultsPerPage = 30

// DuckDuckGoEngine scrapes the DuckDuckGo HTML endpoint. It needs no API
// key but wraps result links in a redirect that has to be unwrapped.
type DuckDuckGoEngine struct {
	baseURL string
	client  *http.Client
}

// NewDuckDuckGoEngine creates a DuckDuckGo engine client
func NewDuckDuckGoEngine(baseURL string, timeout time.Duration) *DuckDuckGoEngine {
	return &DuckDuckGoEngine{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the engine identifier
func (d *DuckDuckGoEngine) Name() string {
	return "duckduckgo"
}

// Search retrieves one page of results from the HTML endpoint
func (d *DuckDuckGoEngine) Search(ctx context.Context, query string, page uint, maxResults int) ([]*models.SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	if page > 1 {
		params.Set("s", strconv.Itoa(int(page-1)*ddgResultsPerPage))
	}
	searchURL := fmt.Sprintf("%s/html/?%s", d.baseURL, params.Encode())

	var results []*models.SearchResult
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		// the HTML endpoint rejects clients without a browser User-Agent
		req.Header.Set("User-Agent", searchUserAgent)
		req.Header.Set("Accept", "text/html")

		resp, err := d.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to execute request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("duckduckgo error: status=%d", resp.StatusCode)
			if resp.StatusCode >= http.StatusInternalServerError {
				return err
			}
			return backoff.Permanent(err)
		}

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to parse response: %w", err))
		}

		results = parseDuckDuckGoResults(doc, maxResults)
		return nil
	}

	if err := backoff.Retry(operation, newRetryPolicy(ctx)); err != nil {
		return nil, err
	}

	return results, nil
}

func parseDuckDuckGoResults(doc *goquery.Document, maxResults int) []*models.SearchResult {
	results := make([]*models.SearchResult, 0, maxResults)

	doc.Find("div.result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if sel.HasClass("result--ad") {
			return true
		}

		link := sel.Find("a.result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return true
		}

		target := unwrapRedirect(href)
		if target == "" {
			return true
		}

		title := strings.TrimSpace(link.Text())
		if title == "" {
			return true
		}

		description := strings.TrimSpace(sel.Find(".result__snippet").Text())

		results = append(results, models.NewSearchResult("duckduckgo", title, description, target))
		return len(results) < maxResults
	})

	return results
}

// unwrapRedirect extracts the destination from DuckDuckGo's result links,
// which arrive as //duckduckgo.com/l/?uddg=<escaped url>. Direct links pass
// through unchanged; anything else is dropped.
func unwrapRedirect(href string) string {
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	if parsed.Scheme == "http" || parsed.Scheme == "https" {
		return href
	}
	return ""
}
