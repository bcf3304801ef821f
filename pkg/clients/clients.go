// Package clients implements the waveform and inventory data clients of
// SPEC_FULL.md §4.4: a uniform (net, sta, loc, channelPrefixes, t0, t1,
// component) / (net, sta, loc, channel, atTime) contract over four backends
// (remote FDSN waveforms, local SDS archive, remote FDSN inventory, local
// inventory files), shaped like the teacher's HTTP client wrappers
// (pkg/monitoring/prometheus/client.go: a configured *http.Client plus
// context.WithTimeout per call).
package clients

import (
	"context"
	"time"

	"github.com/jihwankim/sqes/pkg/seis"
)

// WaveformClient fetches a channel's waveform stream for one day. Returns a
// nil stream (not an error) whenever the spec calls for "empty/absent" so
// callers can treat it uniformly as "no data, use the default row".
type WaveformClient interface {
	GetWaveforms(ctx context.Context, net, sta, loc string, prefixes []string, t0, t1 time.Time, component string) (seis.Stream, error)
}

// InventoryClient fetches response metadata for one station, restricted to
// the channel/epoch covering atTime.
type InventoryClient interface {
	GetInventory(ctx context.Context, net, sta, loc, channel string, atTime time.Time) (*seis.Inventory, error)
}
