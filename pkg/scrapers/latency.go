package scrapers

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/jihwankim/sqes/pkg/reporting"
	"github.com/jihwankim/sqes/pkg/repository"
)

// latencyFeed mirrors latency_collector.py's GeoJSON document: one feature
// per station, channels 1-6 addressed as chN/latencyN/timechN properties.
type latencyFeed struct {
	Features []struct {
		Properties map[string]any `json:"properties"`
	} `json:"features"`
}

var durationPartRe = regexp.MustCompile(`(\d+)([smhd])`)

// parseLatencyDuration converts a "5m12s"-style duration string to seconds,
// transcribed from latency_collector.py's _time_to_seconds: "0" and "NA"
// are both valid (0 seconds and "unknown" respectively), anything else must
// parse as at least one (count, unit) pair.
func parseLatencyDuration(s string) (float64, bool) {
	if s == "NA" || s == "" {
		return 0, false
	}
	if s == "0" {
		return 0, true
	}
	matches := durationPartRe.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return 0, false
	}
	var total float64
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		switch m[2] {
		case "s":
			total += float64(n)
		case "m":
			total += float64(n) * 60
		case "h":
			total += float64(n) * 3600
		case "d":
			total += float64(n) * 86400
		}
	}
	return total, true
}

func propString(props map[string]any, key string) string {
	v, ok := props[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// UpdateLatency fetches url and bulk-loads the stations_sensor_latency
// catalog table, transcribed from latency_collector.py's channel-indexed
// (ch1..ch6) feature walk.
func UpdateLatency(ctx context.Context, repo repository.Repository, url string, logger *reporting.Logger) error {
	var feed latencyFeed
	if err := fetchJSON(ctx, url, &feed); err != nil {
		return err
	}
	if len(feed.Features) == 0 {
		if logger != nil {
			logger.Info("latency-collector: feed returned no features")
		}
		return nil
	}

	now := time.Now()
	var rows []repository.LatencyRow
	for _, f := range feed.Features {
		props := f.Properties
		sta := propString(props, "sta")
		if sta == "" {
			continue
		}
		for ch := 1; ch <= 6; ch++ {
			channel := propString(props, fmt.Sprintf("ch%d", ch))
			if channel == "" {
				continue
			}
			secs, ok := parseLatencyDuration(propString(props, fmt.Sprintf("latency%d", ch)))
			if !ok {
				continue
			}
			rows = append(rows, repository.LatencyRow{
				Station:     sta,
				Channel:     channel,
				LatencySecs: secs,
				ObservedAt:  now,
			})
		}
	}
	if len(rows) == 0 {
		if logger != nil {
			logger.Info("latency-collector: no valid records in feed")
		}
		return nil
	}
	if err := repo.InsertLatencyRows(ctx, rows); err != nil {
		return err
	}
	if logger != nil {
		logger.Info("latency-collector: inserted latency rows", "count", len(rows))
	}
	return nil
}
