// Package scrapers implements the three auxiliary catalog jobs named by
// SPEC_FULL.md §6.1 (sensor-update, station-update, latency-collector) and
// explicitly scoped out of the per-day core by §6.5: each pulls a JSON feed
// from a configured URL and bulk-loads one auxiliary table through
// Repository. Shaped like the teacher's own remote clients
// (pkg/monitoring/prometheus/client.go): one *http.Client with a sane
// timeout, GET, decode, done.
package scrapers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

func httpClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

func fetchJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("scrapers: build request: %w", err)
	}
	resp, err := httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("scrapers: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("scrapers: %s returned status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("scrapers: decode %s: %w", url, err)
	}
	return nil
}
