package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadWithPath(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PPQN != 96 || cfg.QueueCapacity != 500 || !cfg.Metronome {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if d, _ := cfg.Poll(); d != 100*time.Millisecond {
		t.Fatalf("expected 100ms poll, got %v", d)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "port: PSR-S975\nqueue_capacity: 64\nmetronome: false\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadWithPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "PSR-S975" || cfg.QueueCapacity != 64 || cfg.Metronome {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.PPQN != 96 || cfg.PollInterval != "100ms" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []string{
		"queue_capacity: 0\n",
		"poll_interval: soon\n",
		"poll_interval: -1s\n",
		"ppqn: [1, 2]\n",
	}
	for _, data := range tests {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadWithPath(path); err == nil {
			t.Errorf("%q: expected error", data)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Port = "1"
	cfg.PollInterval = "50ms"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := LoadWithPath(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if *got != *cfg {
		t.Fatalf("expected %+v, got %+v", cfg, got)
	}
}
