// Package sourcemap parses the optional per-(network,station) source
// override file of SPEC_FULL.md §6.3.
package sourcemap

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jihwankim/sqes/pkg/sqes/model"
)

// Map resolves (network, station) to a source override, falling back to the
// "default default" entry when no specific override exists.
type Map struct {
	entries map[string]model.SourceOverride
}

const defaultKey = "default\x00default"

func key(net, sta string) string {
	return net + "\x00" + sta
}

// Lookup returns the override for (net, sta), falling back to the default
// entry, and ok=false if neither exists.
func (m Map) Lookup(net, sta string) (model.SourceOverride, bool) {
	if o, ok := m.entries[key(net, sta)]; ok {
		return o, true
	}
	if o, ok := m.entries[defaultKey]; ok {
		return o, true
	}
	return model.SourceOverride{}, false
}

// Load parses a source.cfg file at path. A missing file is not an error —
// overrides are entirely optional. The returned warnings list the lines
// skipped for being malformed.
func Load(path string) (Map, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Map{entries: map[string]model.SourceOverride{}}, nil, nil
		}
		return Map{}, nil, fmt.Errorf("sourcemap: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads source.cfg records from r: one per line,
// "NETWORK STATION WAVEFORM_TYPE WAVEFORM_TAG [INVENTORY_TYPE INVENTORY_TAG]".
// Either side may use "default default" to inherit. Comments (#) and blanks
// are ignored; invalid lines are skipped and reported in the warnings
// return value, never as a hard error, per SPEC_FULL.md §6.3.
func Parse(r io.Reader) (Map, []string, error) {
	m := Map{entries: map[string]model.SourceOverride{}}
	var warnings []string
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 4 && len(fields) != 6 {
			warnings = append(warnings, fmt.Sprintf("source.cfg:%d: invalid record, skipped", lineNo))
			continue
		}

		o := model.SourceOverride{
			Network:      fields[0],
			Station:      fields[1],
			WaveformType: fields[2],
			WaveformTag:  fields[3],
		}
		if len(fields) == 6 {
			o.InventoryType = fields[4]
			o.InventoryTag = fields[5]
		}

		k := key(o.Network, o.Station)
		if o.Network == "default" && o.Station == "default" {
			k = defaultKey
		}
		m.entries[k] = o
	}
	if err := scanner.Err(); err != nil {
		return Map{}, warnings, fmt.Errorf("sourcemap: scan: %w", err)
	}
	return m, warnings, nil
}
