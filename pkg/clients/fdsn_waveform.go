package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/jihwankim/sqes/pkg/seis"
)

// FDSNWaveformClient queries a remote FDSN dataselect endpoint, iterating
// channel prefixes in order and returning the first non-empty stream, per
// SPEC_FULL.md §4.4's remote-FDSN waveform contract.
type FDSNWaveformClient struct {
	BaseURL  string
	User     string
	Password string
	HTTP     *http.Client
}

// NewFDSNWaveformClient builds a client with sane timeouts, mirroring the
// teacher's pattern of wrapping a configured http.Client per external
// service rather than using http.DefaultClient directly.
func NewFDSNWaveformClient(baseURL, user, password string) *FDSNWaveformClient {
	return &FDSNWaveformClient{
		BaseURL:  baseURL,
		User:     user,
		Password: password,
		HTTP:     &http.Client{Timeout: 120 * time.Second},
	}
}

// GetWaveforms implements SPEC_FULL.md §4.4: iterate prefixes in order,
// query with a network wildcard for broadband ("BH*") prefixes and a fixed
// network otherwise, keep the first non-empty stream, deduplicate multiple
// location codes by taking the first in sorted-unique order.
func (c *FDSNWaveformClient) GetWaveforms(ctx context.Context, net, sta, loc string, prefixes []string, t0, t1 time.Time, component string) (seis.Stream, error) {
	for _, prefix := range prefixes {
		channel := prefix + component
		queryNet := net
		if prefix == "BH" {
			queryNet = "*"
		}
		stream, err := c.fetchChannel(ctx, queryNet, net, sta, loc, channel)
		if err != nil {
			continue // per-prefix error: try the next one
		}
		if len(stream) == 0 {
			continue
		}
		return restrictToFirstLocation(stream), nil
	}
	return nil, nil
}

// fetchChannel queries the endpoint with queryNet (possibly "*") but labels
// every returned trace with net, the station's actual network, so a
// broadband wildcard query never leaks into a trace's identity.
func (c *FDSNWaveformClient) fetchChannel(ctx context.Context, queryNet, net, sta, loc, channel string) (seis.Stream, error) {
	q := url.Values{}
	q.Set("net", queryNet)
	q.Set("sta", sta)
	q.Set("loc", loc)
	q.Set("cha", channel)
	q.Set("format", "json")

	endpoint := fmt.Sprintf("%s/fdsnws/dataselect/1/query?%s", c.BaseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if c.User != "" {
		req.SetBasicAuth(c.User, c.Password)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fdsn waveform: %s: status %d", endpoint, resp.StatusCode)
	}

	var payload struct {
		Traces []struct {
			Location   string    `json:"location"`
			Channel    string    `json:"channel"`
			SampleRate float64   `json:"sample_rate"`
			StartTime  time.Time `json:"start_time"`
			Data       []float64 `json:"data"`
		} `json:"traces"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("fdsn waveform: decode %s: %w", endpoint, err)
	}

	stream := make(seis.Stream, 0, len(payload.Traces))
	for _, tr := range payload.Traces {
		stream = append(stream, seis.Trace{
			Network:    net,
			Station:    sta,
			Location:   tr.Location,
			Channel:    tr.Channel,
			SampleRate: tr.SampleRate,
			StartTime:  tr.StartTime,
			Data:       tr.Data,
		})
	}
	return stream, nil
}

// restrictToFirstLocation drops every trace not carrying the
// sorted-lexicographically-first location code present in the stream.
func restrictToFirstLocation(s seis.Stream) seis.Stream {
	locs := map[string]bool{}
	for _, tr := range s {
		locs[tr.Location] = true
	}
	if len(locs) <= 1 {
		return s
	}
	sorted := make([]string, 0, len(locs))
	for l := range locs {
		sorted = append(sorted, l)
	}
	sort.Strings(sorted)
	first := sorted[0]

	out := make(seis.Stream, 0, len(s))
	for _, tr := range s {
		if tr.Location == first {
			out = append(out, tr)
		}
	}
	return out
}
