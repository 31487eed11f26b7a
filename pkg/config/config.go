// Package config provides configuration management for gohex's CLI front
// end: the fill byte and load-tolerance defaults the core library does not
// choose for itself, plus the serial/TCP parameters the upload command needs
// to reach a target.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

// Config holds the CLI-level defaults gohex reads from gohex.ini. None of
// these are part of the hex file format; they only shape how the CLI talks
// to the core library and to a transfer target.
type Config struct {
	// FillByte is the default value handed to ihex.Group.SetUnusedFillValue
	// for newly loaded groups.
	FillByte byte

	// ChunkSize is the default block size the upload command uses when
	// streaming a group's data map over a connection.
	ChunkSize int

	// Port names the upload target: a serial device, or a host:port TCP
	// address; --target overrides it. DataRate is the serial baud rate.
	// Timeout, in seconds, applies to serial reads and to TCP dial, read
	// and write calls.
	Port     string
	DataRate int
	Timeout  int

	// ThrowOnInvalidRecord and ThrowOnChecksumMismatch are the
	// ihexfile.Options tolerance flags every CLI load uses. They are set
	// only through gohex.ini; there are no command-line flags for them.
	ThrowOnInvalidRecord    bool
	ThrowOnChecksumMismatch bool
}

// Default returns the built-in defaults used when no gohex.ini is found.
func Default() *Config {
	return &Config{
		FillByte:                0xFF,
		ChunkSize:               4096,
		Port:                    "",
		DataRate:                115200,
		Timeout:                 10,
		ThrowOnInvalidRecord:    true,
		ThrowOnChecksumMismatch: true,
	}
}

// Load reads configuration from gohex.ini, searching in order:
//  1. Current directory (./gohex.ini)
//  2. $GOHEX_HOME directory ($GOHEX_HOME/gohex.ini)
//  3. Home directory (~/gohex.ini)
//
// A missing file is not an error: Load returns the built-in defaults. Only a
// file that exists but fails to parse is reported as an error.
func Load() (*Config, error) {
	cfg := Default()

	for _, path := range searchPaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		iniFile, err := ini.Load(path)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		applySection(cfg, iniFile.Section("DEFAULT"))
		return cfg, nil
	}

	return cfg, nil
}

func searchPaths() []string {
	paths := []string{filepath.Join(".", "gohex.ini")}
	if home := os.Getenv("GOHEX_HOME"); home != "" {
		paths = append(paths, filepath.Join(home, "gohex.ini"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "gohex.ini"))
	}
	return paths
}

func applySection(cfg *Config, section *ini.Section) {
	fill := section.Key("fill_byte").MustInt(int(cfg.FillByte))
	cfg.FillByte = byte(fill)
	cfg.ChunkSize = section.Key("chunk_size").MustInt(cfg.ChunkSize)
	cfg.Port = section.Key("port").MustString(cfg.Port)
	cfg.DataRate = section.Key("data_rate").MustInt(cfg.DataRate)
	cfg.Timeout = section.Key("timeout").MustInt(cfg.Timeout)
	cfg.ThrowOnInvalidRecord = section.Key("throw_on_invalid_record").MustBool(cfg.ThrowOnInvalidRecord)
	cfg.ThrowOnChecksumMismatch = section.Key("throw_on_checksum_mismatch").MustBool(cfg.ThrowOnChecksumMismatch)
}
