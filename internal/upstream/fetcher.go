package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/aryodp/edgegate/internal/domain"
)

// fetchLimit is the sentinel page size requesting the full unfiltered
// dataset in one call; the query engine paginates locally.
const fetchLimit = "99999"

// Fetcher retrieves the full dataset from the sheet API endpoint.
type Fetcher struct {
	endpoint string
	client   *http.Client
	mapper   *Mapper
}

// NewFetcher creates a fetcher for the given endpoint with one
// whole-request timeout.
func NewFetcher(endpoint string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		mapper:   NewMapper(),
	}
}

// Fetch requests all rows for all servers and returns a new dataset
// stamped with the current time. Any network error, non-2xx status or
// malformed payload comes back as an error; the caller keeps the old
// dataset in that case.
func (f *Fetcher) Fetch(ctx context.Context) (*domain.Dataset, error) {
	reqURL, err := f.buildURL()
	if err != nil {
		return nil, fmt.Errorf("invalid upstream endpoint: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream fetch failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream response: %w", err)
	}

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("malformed upstream payload: %w", err)
	}
	if p.Data == nil {
		return nil, fmt.Errorf("upstream payload has no data field")
	}

	rows, err := f.mapper.MapRows(p.Data)
	if err != nil {
		return nil, fmt.Errorf("malformed upstream payload: %w", err)
	}

	return &domain.Dataset{
		FetchedAt: time.Now().UTC(),
		Rows:      rows,
	}, nil
}

// buildURL appends the "everything" sentinel parameters to the
// configured endpoint.
func (f *Fetcher) buildURL() (string, error) {
	u, err := url.Parse(f.endpoint)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("page", "1")
	q.Set("limit", fetchLimit)
	q.Set("selectedServer", "ALL")
	u.RawQuery = q.Encode()

	return u.String(), nil
}
