package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.cfg"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Basic.UseDatabase != DatabaseNone {
		t.Fatalf("use_database = %q, want %q", cfg.Basic.UseDatabase, DatabaseNone)
	}
}

func TestLoadOverlaysBasicAndDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "source.cfg")
	contents := `
[basic]
use_database = postgresql
waveform_source = sds
inventory_source = local
archive_path = /data/archive
cpu_number_used = 8
spike_method = fast

[postgresql]
host = db.example.org
port = 5432
user = sqes
password = secret
database = sqes
pool_size = 10

[qc_thresholds]
weight_noise = 0.40
weight_availability = 0.10
weight_rms = 0.10
weight_ratioamp = 0.10
weight_gaps = 0.10
weight_overlaps = 0.10
weight_spikes = 0.10
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Basic.UseDatabase != DatabasePostgreSQL {
		t.Fatalf("use_database = %q, want postgresql", cfg.Basic.UseDatabase)
	}
	if cfg.Basic.WaveformSource != WaveformSDS {
		t.Fatalf("waveform_source = %q, want sds", cfg.Basic.WaveformSource)
	}
	if cfg.Basic.InventorySource != InventoryLocal {
		t.Fatalf("inventory_source = %q, want local", cfg.Basic.InventorySource)
	}
	if cfg.Basic.CPUNumberUsed != 8 {
		t.Fatalf("cpu_number_used = %d, want 8", cfg.Basic.CPUNumberUsed)
	}
	if cfg.Basic.SpikeMethod != SpikeFast {
		t.Fatalf("spike_method = %q, want fast", cfg.Basic.SpikeMethod)
	}
	if cfg.PostgreSQL.Host != "db.example.org" || cfg.PostgreSQL.Port != 5432 || cfg.PostgreSQL.PoolSize != 10 {
		t.Fatalf("postgresql section not loaded correctly: %+v", cfg.PostgreSQL)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("overlaid config should validate: %v", err)
	}
}

func TestValidateRejectsUnknownDatabase(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Basic.UseDatabase = "oracle"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unrecognized use_database")
	}
}

func TestValidateRejectsUnbalancedWeights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Thresholds.WeightNoise = 0.9
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for weights not summing to 1.0")
	}
}
