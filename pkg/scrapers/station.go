package scrapers

import (
	"context"

	"github.com/jihwankim/sqes/pkg/reporting"
	"github.com/jihwankim/sqes/pkg/repository"
	"github.com/jihwankim/sqes/pkg/sqes/model"
)

// stationFeed is the GeoJSON-shaped document station_updater.py reads:
// a FeatureCollection whose per-feature properties carry the catalog
// fields. Fields absent from the source feed fall back to the pipeline's
// own broadband/three-component defaults (SPEC_FULL.md §4.2) rather than
// being left unprocessable.
type stationFeed struct {
	Features []struct {
		Properties struct {
			Network    string   `json:"net"`
			Station    string   `json:"sta"`
			Location   string   `json:"loc"`
			Group      string   `json:"upt"`
			Prefixes   []string `json:"channel_prefixes"`
			Components []string `json:"channel_components"`
		} `json:"properties"`
	} `json:"features"`
}

// UpdateStations fetches url and upserts the stations catalog table,
// grounded on station_updater.py's "fetch feed, diff against existing
// codes, insert-or-update" shape; the repository layer's ON CONFLICT
// upsert (pkg/repository) collapses the insert/update branches the
// original keeps separate, so this always calls UpdateStation.
func UpdateStations(ctx context.Context, repo repository.Repository, url string, logger *reporting.Logger) error {
	var feed stationFeed
	if err := fetchJSON(ctx, url, &feed); err != nil {
		return err
	}
	if len(feed.Features) == 0 {
		if logger != nil {
			logger.Info("station-update: feed returned no features")
		}
		return nil
	}

	updated := 0
	for _, f := range feed.Features {
		p := f.Properties
		if p.Station == "" {
			continue
		}
		prefixes := p.Prefixes
		if len(prefixes) == 0 {
			prefixes = []string{"BH"}
		}
		components := p.Components
		if len(components) == 0 {
			components = []string{"Z", "N", "E"}
		}
		station := model.Station{
			Network:           p.Network,
			Code:              p.Station,
			Location:          p.Location,
			Group:             p.Group,
			ChannelPrefixes:   prefixes,
			ChannelComponents: components,
		}
		if err := repo.UpdateStation(ctx, station); err != nil {
			if logger != nil {
				logger.Warn("station-update: failed to update station", "station", p.Station, "error", err.Error())
			}
			continue
		}
		updated++
	}
	if logger != nil {
		logger.Info("station-update: updated stations", "count", updated)
	}
	return nil
}
