package clients

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/jihwankim/sqes/pkg/seis"
)

// SDSWaveformClient reads from a local SeisComP Data Structure archive tree
// rooted at ArchivePath, iterating prefixes the same way FDSNWaveformClient
// does, per SPEC_FULL.md §4.4's local-SDS waveform contract. Files are one
// flat binary record per day: a little-endian sample-rate float64 followed
// by a start-time unix-nanos int64, an int64 sample count, and the float64
// sample vector — the
// archive's own encoding is out of scope; this reads whatever
// PersistArtifacts previously wrote via pkg/artifacts.
type SDSWaveformClient struct {
	ArchivePath string
}

// sdsPath mirrors the SDS directory convention: YEAR/NET/STA/CHAN.D/NET.STA.LOC.CHAN.D.YEAR.DOY
func sdsPath(root string, t time.Time, net, sta, loc, channel string) string {
	doy := fmt.Sprintf("%03d", t.YearDay())
	return filepath.Join(root,
		strconv.Itoa(t.Year()), net, sta, channel+".D",
		fmt.Sprintf("%s.%s.%s.%s.D.%d.%s", net, sta, loc, channel, t.Year(), doy))
}

// GetWaveforms implements SPEC_FULL.md §4.4's local-SDS contract: iterate
// prefixes, read one file per day of [t0, t1) and reduce them with
// mergeLatestWins, fall through to the next prefix on an empty/absent read.
func (c *SDSWaveformClient) GetWaveforms(ctx context.Context, net, sta, loc string, prefixes []string, t0, t1 time.Time, component string) (seis.Stream, error) {
	for _, prefix := range prefixes {
		channel := prefix + component
		var found []seis.Trace
		for day := t0; day.Before(t1); day = day.AddDate(0, 0, 1) {
			path := sdsPath(c.ArchivePath, day, net, sta, loc, channel)
			tr, err := readSDSFile(path, net, sta, loc, channel)
			if err != nil || tr == nil {
				continue
			}
			found = append(found, *tr)
		}
		if len(found) == 0 {
			continue
		}
		return seis.Stream{mergeLatestWins(found)}, nil
	}
	return nil, nil
}

func readSDSFile(path, net, sta, loc, channel string) (*seis.Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var sampleRate float64
	var startUnixNanos int64
	if err := binary.Read(f, binary.LittleEndian, &sampleRate); err != nil {
		return nil, err
	}
	if err := binary.Read(f, binary.LittleEndian, &startUnixNanos); err != nil {
		return nil, err
	}
	var count int64
	if err := binary.Read(f, binary.LittleEndian, &count); err != nil {
		return nil, err
	}
	data := make([]float64, count)
	if err := binary.Read(f, binary.LittleEndian, data); err != nil && err != io.EOF {
		return nil, err
	}

	return &seis.Trace{
		Network:    net,
		Station:    sta,
		Location:   loc,
		Channel:    channel,
		SampleRate: sampleRate,
		StartTime:  time.Unix(0, startUnixNanos).UTC(),
		Data:       data,
	}, nil
}

// mergeLatestWins returns the trace with the latest start time. The samples
// of the other traces are dropped, not concatenated or overlaid, so a
// window spanning several day files yields only the last day's data.
func mergeLatestWins(traces []seis.Trace) seis.Trace {
	sort.Slice(traces, func(i, j int) bool { return traces[i].StartTime.Before(traces[j].StartTime) })
	return traces[len(traces)-1]
}
