package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jihwankim/sqes/pkg/seis"
)

// FDSNInventoryClient queries a remote FDSN station service for one
// (net, sta, loc, channel) at response-level detail, per SPEC_FULL.md
// §4.4's remote-FDSN inventory contract: a single query, any error -> nil.
type FDSNInventoryClient struct {
	BaseURL string
	User    string
	HTTP    *http.Client
}

func NewFDSNInventoryClient(baseURL, user string) *FDSNInventoryClient {
	return &FDSNInventoryClient{BaseURL: baseURL, User: user, HTTP: &http.Client{Timeout: 60 * time.Second}}
}

func (c *FDSNInventoryClient) GetInventory(ctx context.Context, net, sta, loc, channel string, atTime time.Time) (*seis.Inventory, error) {
	q := url.Values{}
	q.Set("net", net)
	q.Set("sta", sta)
	q.Set("loc", loc)
	q.Set("cha", channel)
	q.Set("level", "response")
	q.Set("time", atTime.Format(time.RFC3339))

	endpoint := fmt.Sprintf("%s/fdsnws/station/1/query?%s", c.BaseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var payload struct {
		Epochs []struct {
			Location      string    `json:"location"`
			Channel       string    `json:"channel"`
			StartTime     time.Time `json:"start_time"`
			EndTime       time.Time `json:"end_time"`
			SensitivityDB float64   `json:"sensitivity_db"`
		} `json:"epochs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, nil
	}
	if len(payload.Epochs) == 0 {
		return nil, nil
	}

	inv := &seis.Inventory{Network: net, Station: sta}
	for _, e := range payload.Epochs {
		inv.Epochs = append(inv.Epochs, seis.Epoch{
			Location:      e.Location,
			Channel:       e.Channel,
			StartTime:     e.StartTime,
			EndTime:       e.EndTime,
			SensitivityDB: e.SensitivityDB,
		})
	}
	return inv, nil
}
