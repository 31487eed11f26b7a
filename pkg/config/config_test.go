package config

import "testing"

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.FillByte != 0xFF {
		t.Errorf("FillByte = 0x%02X, want 0xFF", cfg.FillByte)
	}
	if !cfg.ThrowOnInvalidRecord {
		t.Error("ThrowOnInvalidRecord should default to true")
	}
	if !cfg.ThrowOnChecksumMismatch {
		t.Error("ThrowOnChecksumMismatch should default to true")
	}
	if cfg.ChunkSize <= 0 {
		t.Errorf("ChunkSize = %d, want positive default", cfg.ChunkSize)
	}
}

func TestLoadWithNoIniFile(t *testing.T) {
	t.Setenv("GOHEX_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with no ini file present returned error: %v", err)
	}

	want := Default()
	if *cfg != *want {
		t.Errorf("Load() with no ini file = %+v, want defaults %+v", cfg, want)
	}
}
