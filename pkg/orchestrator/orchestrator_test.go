package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jihwankim/sqes/pkg/clients"
	"github.com/jihwankim/sqes/pkg/repository"
	"github.com/jihwankim/sqes/pkg/seis"
	"github.com/jihwankim/sqes/pkg/sqes/model"
	"github.com/jihwankim/sqes/pkg/worker"
)

func TestPoolSizeHonorsLowConfiguredCPU(t *testing.T) {
	// configured below the cpu/3 floor must still win the min: the floor of
	// 4 applies only to the cpu/3 term, never to the overall result.
	if got := poolSize(2, 1000); got != 2 {
		t.Fatalf("poolSize(2,1000) = %d, want 2 (operator cap honored below the cpu floor)", got)
	}
}

func TestPoolSizeRoundsDataToEven(t *testing.T) {
	// data/70 rounds to 2 workers; configured and the cpu/3 floor are both
	// well above it, so the data term wins the min.
	if got := poolSize(1000, 70); got != 2 {
		t.Fatalf("poolSize(1000,70) = %d, want 2", got)
	}
}

func TestPoolSizeFloorsCPUTermAtFour(t *testing.T) {
	// with configured and data both generous, the result is bounded below
	// by max(4, cpu/3) regardless of how few cores the test machine has.
	if got := poolSize(1000, 100000); got < 4 {
		t.Fatalf("poolSize(1000,100000) = %d, want >= 4", got)
	}
}

// fakeRepo drives the control loop: ListStationsToProcess returns one
// station until markDone flips, after which both it and GetStragglers
// report empty, letting the day converge.
type fakeRepo struct {
	mu        sync.Mutex
	passes    int
	done      bool
	stations  []model.Station
	flushed   []time.Time
	analysisN int
}

func (f *fakeRepo) ListStationsToProcess(ctx context.Context, date time.Time, networkFilter []string) ([]model.Station, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done {
		return nil, nil
	}
	return f.stations, nil
}
func (f *fakeRepo) GetStationTuples(ctx context.Context, codes []string, networkFilter []string) ([]model.Station, error) {
	return f.stations, nil
}
func (f *fakeRepo) GetStragglers(ctx context.Context, date time.Time, codes []string) ([]string, error) {
	return nil, nil
}
func (f *fakeRepo) FlushDay(ctx context.Context, date time.Time) error {
	f.mu.Lock()
	f.flushed = append(f.flushed, date)
	f.mu.Unlock()
	return nil
}
func (f *fakeRepo) InsertDetail(ctx context.Context, row model.DetailRow) error { return nil }
func (f *fakeRepo) DeleteDetail(ctx context.Context, id string, date time.Time) error { return nil }
func (f *fakeRepo) ExistsDetail(ctx context.Context, id string, date time.Time) (bool, error) {
	return false, nil
}
func (f *fakeRepo) GetDetailRows(ctx context.Context, station string, date time.Time) ([]model.DetailRow, error) {
	return nil, nil
}
func (f *fakeRepo) InsertAnalysis(ctx context.Context, row model.AnalysisRow) error {
	f.mu.Lock()
	f.analysisN++
	f.done = true
	f.mu.Unlock()
	return nil
}
func (f *fakeRepo) DeleteAnalysis(ctx context.Context, station string, date time.Time) error {
	return nil
}
func (f *fakeRepo) ExistsAnalysis(ctx context.Context, station string, date time.Time) (bool, error) {
	return false, nil
}
func (f *fakeRepo) InsertStation(ctx context.Context, s model.Station) error { return nil }
func (f *fakeRepo) UpdateStation(ctx context.Context, s model.Station) error { return nil }
func (f *fakeRepo) InsertSensorRows(ctx context.Context, rows []repository.SensorRow) error {
	return nil
}
func (f *fakeRepo) InsertLatencyRows(ctx context.Context, rows []repository.LatencyRow) error {
	return nil
}

var _ repository.Repository = (*fakeRepo)(nil)

func TestRunConvergesAfterFirstPoolPass(t *testing.T) {
	station := model.Station{Network: "IA", Code: "JAGI", ChannelPrefixes: []string{"BH"}, ChannelComponents: []string{"Z"}}
	repo := &fakeRepo{stations: []model.Station{station}}

	day := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	o := &Orchestrator{
		Repo: repo,
		NewWorker: func(s model.Station) *worker.Worker {
			return &worker.Worker{
				Waveforms:  emptyWaveforms{},
				Repo:       repo,
				Thresholds: model.DefaultThresholds(),
			}
		},
	}

	err := o.Run(context.Background(), Config{
		StartDate:     day,
		EndDate:       day,
		ConfiguredCPU: 4,
		Thresholds:    model.DefaultThresholds(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.analysisN != 1 {
		t.Fatalf("analysisN = %d, want 1 (one station fully processed)", repo.analysisN)
	}
}

func TestRunHonorsFlushOnlyOnFirstDayFirstPass(t *testing.T) {
	repo := &fakeRepo{done: true} // converges immediately, no stations
	day := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	o := &Orchestrator{Repo: repo, NewWorker: func(model.Station) *worker.Worker { return &worker.Worker{} }}

	err := o.Run(context.Background(), Config{
		StartDate: day, EndDate: day, Flush: true, ConfiguredCPU: 4,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.flushed) != 1 {
		t.Fatalf("flushed %d times, want 1", len(repo.flushed))
	}
}

type emptyWaveforms struct{}

func (emptyWaveforms) GetWaveforms(ctx context.Context, net, sta, loc string, prefixes []string, t0, t1 time.Time, component string) (seis.Stream, error) {
	return nil, nil
}

var _ clients.WaveformClient = emptyWaveforms{}
