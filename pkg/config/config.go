// Package config loads the INI configuration file of SPEC_FULL.md §6.2
// using gopkg.in/ini.v1, the teacher's own config library choice (adapted
// here from a YAML chaos-scenario file to the pipeline's INI layout).
package config

import (
	"fmt"
	"os"

	"gopkg.in/ini.v1"

	"github.com/jihwankim/sqes/pkg/sqes/model"
)

// DatabaseKind selects which relational backend, if any, the pipeline
// writes through.
type DatabaseKind string

const (
	DatabaseMySQL      DatabaseKind = "mysql"
	DatabasePostgreSQL DatabaseKind = "postgresql"
	DatabaseNone       DatabaseKind = "false"
)

// WaveformSource and InventorySource select which client backend §4.4 wires
// up for a given run.
type WaveformSource string
type InventorySource string

const (
	WaveformFDSN WaveformSource = "fdsn"
	WaveformSDS  WaveformSource = "sds"

	InventoryFDSN  InventorySource = "fdsn"
	InventoryLocal InventorySource = "local"
)

// SpikeMethod selects between the two interchangeable spike-count engines.
type SpikeMethod string

const (
	SpikeFast      SpikeMethod = "fast"
	SpikeEfficient SpikeMethod = "efficient"
)

// Basic is the [basic] section of SPEC_FULL.md §6.2.
type Basic struct {
	UseDatabase      DatabaseKind
	WaveformSource   WaveformSource
	InventorySource  InventorySource
	ArchivePath      string
	InventoryPath    string
	OutputPSD        string
	OutputPDF        string
	OutputSignal     string
	OutputMSEED      string
	CPUNumberUsed    int
	SpikeMethod      SpikeMethod
	SensorUpdateURL  string
	StationUpdateURL string
	LatencyUpdateURL string
}

// ClientEndpoint is the shape shared by [client], [client2], and
// [inventory_client].
type ClientEndpoint struct {
	URL      string
	User     string
	Password string
}

// ArchiveEndpoint is the shape shared by [archive] and [archive2].
type ArchiveEndpoint struct {
	ArchivePath string
}

// InventoryEndpoint is the shape shared by [inventory] and [inventory2].
type InventoryEndpoint struct {
	InventoryPath string
}

// DBEndpoint is the shape shared by [mysql] and [postgresql].
type DBEndpoint struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	PoolSize int
}

// Config is the fully parsed source.cfg-adjacent INI configuration.
type Config struct {
	Basic            Basic
	Client           ClientEndpoint
	Client2          ClientEndpoint
	InventoryClient  ClientEndpoint
	Archive          ArchiveEndpoint
	Archive2         ArchiveEndpoint
	Inventory        InventoryEndpoint
	Inventory2       InventoryEndpoint
	MySQL            DBEndpoint
	PostgreSQL       DBEndpoint
	Thresholds       model.Thresholds
}

// DefaultConfig returns the defaults enumerated in SPEC_FULL.md §6.2.
func DefaultConfig() *Config {
	return &Config{
		Basic: Basic{
			UseDatabase:     DatabaseNone,
			WaveformSource:  WaveformFDSN,
			InventorySource: InventoryFDSN,
			CPUNumberUsed:   4,
			SpikeMethod:     SpikeEfficient,
		},
		Thresholds: model.DefaultThresholds(),
	}
}

// Load reads path as an INI file and overlays it onto DefaultConfig,
// missing keys falling back to their default. A missing file is not an
// error — the CLI's --check-config path distinguishes "file absent" from
// "file malformed" by inspecting the returned error directly.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	basic := f.Section("basic")
	cfg.Basic.UseDatabase = DatabaseKind(basic.Key("use_database").MustString(string(cfg.Basic.UseDatabase)))
	cfg.Basic.WaveformSource = WaveformSource(basic.Key("waveform_source").MustString(string(cfg.Basic.WaveformSource)))
	cfg.Basic.InventorySource = InventorySource(basic.Key("inventory_source").MustString(string(cfg.Basic.InventorySource)))
	cfg.Basic.ArchivePath = basic.Key("archive_path").MustString("")
	cfg.Basic.InventoryPath = basic.Key("inventory_path").MustString("")
	cfg.Basic.OutputPSD = basic.Key("outputpsd").MustString("")
	cfg.Basic.OutputPDF = basic.Key("outputpdf").MustString("")
	cfg.Basic.OutputSignal = basic.Key("outputsignal").MustString("")
	cfg.Basic.OutputMSEED = basic.Key("outputmseed").MustString("")
	cfg.Basic.CPUNumberUsed = basic.Key("cpu_number_used").MustInt(cfg.Basic.CPUNumberUsed)
	cfg.Basic.SpikeMethod = SpikeMethod(basic.Key("spike_method").MustString(string(cfg.Basic.SpikeMethod)))
	cfg.Basic.SensorUpdateURL = basic.Key("sensor_update_url").MustString("")
	cfg.Basic.StationUpdateURL = basic.Key("station_update_url").MustString("")
	cfg.Basic.LatencyUpdateURL = basic.Key("latency_update_url").MustString("")

	loadClientEndpoint(f, "client", &cfg.Client)
	loadClientEndpoint(f, "client2", &cfg.Client2)
	loadClientEndpoint(f, "inventory_client", &cfg.InventoryClient)

	cfg.Archive.ArchivePath = f.Section("archive").Key("archive_path").MustString("")
	cfg.Archive2.ArchivePath = f.Section("archive2").Key("archive_path").MustString("")
	cfg.Inventory.InventoryPath = f.Section("inventory").Key("inventory_path").MustString("")
	cfg.Inventory2.InventoryPath = f.Section("inventory2").Key("inventory_path").MustString("")

	loadDBEndpoint(f, "mysql", &cfg.MySQL)
	loadDBEndpoint(f, "postgresql", &cfg.PostgreSQL)

	loadThresholds(f, &cfg.Thresholds)

	return cfg, nil
}

func loadClientEndpoint(f *ini.File, section string, e *ClientEndpoint) {
	s := f.Section(section)
	e.URL = s.Key("url").MustString(e.URL)
	e.User = s.Key("user").MustString(e.User)
	e.Password = s.Key("password").MustString(e.Password)
}

func loadDBEndpoint(f *ini.File, section string, e *DBEndpoint) {
	s := f.Section(section)
	e.Host = s.Key("host").MustString(e.Host)
	e.Port = s.Key("port").MustInt(e.Port)
	e.User = s.Key("user").MustString(e.User)
	e.Password = s.Key("password").MustString(e.Password)
	e.Database = s.Key("database").MustString(e.Database)
	e.PoolSize = s.Key("pool_size").MustInt(e.PoolSize)
}

func loadThresholds(f *ini.File, t *model.Thresholds) {
	s := f.Section("qc_thresholds")
	t.RMSLimit = s.Key("rms_limit").MustFloat64(t.RMSLimit)
	t.RatioAmpLimit = s.Key("ratioamp_limit").MustFloat64(t.RatioAmpLimit)
	t.GapLimit = s.Key("gap_limit").MustFloat64(t.GapLimit)
	t.OverlapLimit = s.Key("overlap_limit").MustFloat64(t.OverlapLimit)
	t.SpikeLimit = s.Key("spike_limit").MustFloat64(t.SpikeLimit)
	t.RMSMargin = s.Key("rms_margin").MustFloat64(t.RMSMargin)
	t.RatioAmpMargin = s.Key("ratioamp_margin").MustFloat64(t.RatioAmpMargin)
	t.GapMargin = s.Key("gap_margin").MustFloat64(t.GapMargin)
	t.OverlapMargin = s.Key("overlap_margin").MustFloat64(t.OverlapMargin)
	t.SpikeMargin = s.Key("spike_margin").MustFloat64(t.SpikeMargin)
	t.PctBelowWarn = s.Key("pct_below_warn").MustFloat64(t.PctBelowWarn)
	t.PctAboveWarn = s.Key("pct_above_warn").MustFloat64(t.PctAboveWarn)
	t.GapCountWarn = s.Key("gap_count_warn").MustInt(t.GapCountWarn)
	t.OverlapCountWarn = s.Key("overlap_count_warn").MustInt(t.OverlapCountWarn)
	t.SpikeCountWarn = s.Key("spike_count_warn").MustInt(t.SpikeCountWarn)
	t.AvailGood = s.Key("avail_good").MustFloat64(t.AvailGood)
	t.AvailFair = s.Key("avail_fair").MustFloat64(t.AvailFair)
	t.AvailMinForNoiseCheck = s.Key("avail_min_for_noise_check").MustFloat64(t.AvailMinForNoiseCheck)
	t.DCLDead = s.Key("dcl_dead").MustFloat64(t.DCLDead)
	t.RMSDamagedMax = s.Key("rms_damaged_max").MustFloat64(t.RMSDamagedMax)
	t.FairMaxScore = s.Key("fair_max_score").MustFloat64(t.FairMaxScore)
	t.PoorMaxScore = s.Key("poor_max_score").MustFloat64(t.PoorMaxScore)
	t.WeightNoise = s.Key("weight_noise").MustFloat64(t.WeightNoise)
	t.WeightAvailability = s.Key("weight_availability").MustFloat64(t.WeightAvailability)
	t.WeightRMS = s.Key("weight_rms").MustFloat64(t.WeightRMS)
	t.WeightRatioAmp = s.Key("weight_ratioamp").MustFloat64(t.WeightRatioAmp)
	t.WeightGaps = s.Key("weight_gaps").MustFloat64(t.WeightGaps)
	t.WeightOverlaps = s.Key("weight_overlaps").MustFloat64(t.WeightOverlaps)
	t.WeightSpikes = s.Key("weight_spikes").MustFloat64(t.WeightSpikes)
}

// Validate checks the configuration-level invariants of SPEC_FULL.md §6.2:
// the qc_thresholds weights must sum to 1.0 (±1e-3), and use_database must
// name a recognized dialect.
func (c *Config) Validate() error {
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	switch c.Basic.UseDatabase {
	case DatabaseMySQL, DatabasePostgreSQL, DatabaseNone:
	default:
		return fmt.Errorf("config: basic.use_database %q is not one of mysql, postgresql, false", c.Basic.UseDatabase)
	}
	return nil
}
