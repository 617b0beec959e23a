package engines

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/farhapartex/metasearch/internal/models"
)

// Engine is the interface all upstream search engine clients implement.
type Engine interface {
	// Search retrieves one page of results for the query.
	// ctx: context with timeout
	// query: search query string
	// page: 1-based page number
	// maxResults: maximum number of results to return
	Search(ctx context.Context, query string, page uint, maxResults int) ([]*models.SearchResult, error)

	// Name returns the engine identifier used in config and cookies.
	Name() string
}

// searchUserAgent identifies outgoing requests to upstream engines.
const searchUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// maxRetries bounds retry attempts beyond the first try. Only transient
// failures (network errors, 5xx) are retried; 4xx responses are permanent.
const maxRetries = 2

func newRetryPolicy(ctx context.Context) backoff.BackOffContext {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	return backoff.WithContext(backoff.WithMaxRetries(policy, maxRetries), ctx)
}
