package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/odvcencio/easel/pkg/protocol"
)

// StrokeFetcher retrieves stroke payloads for ready-signaled batches over
// HTTP. Its Fetch method satisfies the batch renderer's FetchFunc.
type StrokeFetcher struct {
	baseURL string
	client  *http.Client
}

// NewStrokeFetcher builds a fetcher against the given base URL.
func NewStrokeFetcher(baseURL string, timeout time.Duration) *StrokeFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &StrokeFetcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves the strokes for one batch. Any transport or decode
// failure is returned as-is; the caller decides whether to retry.
func (f *StrokeFetcher) Fetch(ctx context.Context, batchID int) ([]protocol.StrokeRecord, error) {
	url := fmt.Sprintf("%s/strokes/%d", f.baseURL, batchID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build stroke request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch strokes for batch %d: %w", batchID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch strokes for batch %d: unexpected status %d", batchID, resp.StatusCode)
	}

	var records []protocol.StrokeRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode strokes for batch %d: %w", batchID, err)
	}
	return records, nil
}
