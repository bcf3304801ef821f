package clients

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jihwankim/sqes/pkg/reporting"
	"github.com/jihwankim/sqes/pkg/seis"
)

// LocalInventoryClient reads station response metadata from a directory of
// per-station XML files, per SPEC_FULL.md §4.4's local-file inventory
// contract: try {net}.{sta}.xml, {net}.{sta}.dataless, {sta}.xml in order,
// read the first that exists.
type LocalInventoryClient struct {
	Dir    string
	Logger *reporting.Logger
}

type invFile struct {
	XMLName xml.Name  `xml:"inventory"`
	Epochs  []invFileEpoch `xml:"epoch"`
}

type invFileEpoch struct {
	Location      string  `xml:"location,attr"`
	Channel       string  `xml:"channel,attr"`
	Start         string  `xml:"start,attr"`
	End           string  `xml:"end,attr"`
	SensitivityDB float64 `xml:"sensitivity_db,attr"`
}

func (c *LocalInventoryClient) GetInventory(ctx context.Context, net, sta, loc, channel string, atTime time.Time) (*seis.Inventory, error) {
	candidates := []string{
		fmt.Sprintf("%s.%s.xml", net, sta),
		fmt.Sprintf("%s.%s.dataless", net, sta),
		fmt.Sprintf("%s.xml", sta),
	}

	var raw invFile
	found := false
	var warnings []string
	for _, name := range candidates {
		path := filepath.Join(c.Dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := xml.Unmarshal(data, &raw); err != nil {
			warnings = append(warnings, fmt.Sprintf("local inventory: malformed %s: %v", name, err))
			continue
		}
		found = true
		break
	}
	if !found {
		return nil, nil
	}

	inv := &seis.Inventory{Network: net, Station: sta}
	for _, e := range raw.Epochs {
		start, _ := time.Parse(time.RFC3339, e.Start)
		end, _ := time.Parse(time.RFC3339, e.End)
		inv.Epochs = append(inv.Epochs, seis.Epoch{
			Location:      e.Location,
			Channel:       e.Channel,
			StartTime:     start,
			EndTime:       end,
			SensitivityDB: e.SensitivityDB,
		})
	}

	if _, ok := inv.EpochAt(loc, channel, atTime); !ok {
		// fall back to the unrestricted channel select, per §4.4.
		warnings = append(warnings, fmt.Sprintf("no channel epoch for %s.%s at %s, using unrestricted select", sta, channel, atTime))
	}

	if c.Logger != nil && len(warnings) > 0 {
		for _, w := range reporting.Sanitize(warnings) {
			c.Logger.Warn(w)
		}
	}

	return inv, nil
}
