// Package ihexfile is the textual file-I/O facade over pkg/ihex: it turns a
// stream of wire-format lines into a Group, and a Group back into a stream
// of canonical lines. It owns no address-model or container logic of its
// own; that all lives in pkg/ihex.
package ihexfile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mbrukner/gohex/pkg/ihex"
)

// Options controls how Load tolerates malformed input.
type Options struct {
	// ThrowOnInvalidRecord, if true (the default), makes Load return an
	// error wrapping ihex.ErrMalformed on the first line that fails to
	// parse. If false, the line is skipped and Load's bool result becomes
	// false.
	ThrowOnInvalidRecord bool

	// ThrowOnChecksumMismatch, if true (the default), makes Load return an
	// error wrapping ihex.ErrChecksumMismatch on the first record whose
	// stored checksum disagrees with the computed one. If false, the
	// record is skipped and Load's bool result becomes false.
	ThrowOnChecksumMismatch bool
}

// DefaultOptions returns the strict default: both throw flags true.
func DefaultOptions() Options {
	return Options{ThrowOnInvalidRecord: true, ThrowOnChecksumMismatch: true}
}

// Load reads wire-format lines from r and builds a Group. The returned bool
// is false if any line was skipped due to a tolerated Options setting;
// a caller that wants to know whether the load was clean should check it.
// The variant is inferred from whichever extension or start-address records
// appear: any I32HEX marker wins, else any I16HEX marker, else I8HEX.
func Load(r io.Reader, opts Options) (*ihex.Group, bool, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	clean := true
	var records []*ihex.Record
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := ihex.ParseRecord(line)
		if err != nil {
			if opts.ThrowOnInvalidRecord {
				return nil, false, err
			}
			clean = false
			continue
		}
		if !rec.IsChecksumValid() {
			if opts.ThrowOnChecksumMismatch {
				return nil, false, fmt.Errorf("%w: %q", ihex.ErrChecksumMismatch, line)
			}
			clean = false
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, false, fmt.Errorf("reading hex stream: %w", err)
	}

	g := ihex.NewGroup(inferVariant(records))
	if err := populate(g, records); err != nil {
		return nil, false, err
	}
	return g, clean, nil
}

func inferVariant(records []*ihex.Record) ihex.Variant {
	variant := ihex.I8HEX
	for _, rec := range records {
		switch rec.Kind() {
		case ihex.RecordExtendedLinearAddress, ihex.RecordStartLinearAddress:
			return ihex.I32HEX
		case ihex.RecordExtendedSegmentAddress, ihex.RecordStartSegmentAddress:
			variant = ihex.I16HEX
		}
	}
	return variant
}

// populate replays records into the group's sections: each record is
// pushed onto the trailing data-bearing section if it fits there, else a
// new section is opened for it, mirroring how the group would have been
// built interactively.
func populate(g *ihex.Group, records []*ihex.Record) error {
	var current *ihex.Section
	for _, rec := range records {
		if rec.Kind() == ihex.RecordEndOfFile {
			current = nil
			continue
		}
		if current != nil && current.CanPushRecord(rec) {
			if err := current.PushRecord(rec); err != nil {
				return err
			}
			continue
		}
		s, err := ihex.SectionFromRecord(rec)
		if err != nil {
			return err
		}
		// A file may restate an extension base it already used; route the
		// records that follow into the existing section instead of pushing a
		// duplicate window.
		if s.Kind() == ihex.SectionExtendedSegmentAddress || s.Kind() == ihex.SectionExtendedLinearAddress {
			if existing, ok := g.FindSection(s.Base()); ok && existing.Kind() == s.Kind() {
				current = existing
				continue
			}
		}
		if err := g.PushSection(s); err != nil {
			return err
		}
		switch s.Kind() {
		case ihex.SectionDataOnly, ihex.SectionExtendedSegmentAddress, ihex.SectionExtendedLinearAddress:
			current = s
		default:
			current = nil
		}
	}
	return nil
}

// Save writes g's records to w as canonical wire-format lines, LF
// terminated, appending an end-of-file record if the group does not
// already carry one.
func Save(w io.Writer, g *ihex.Group) error {
	if err := g.EnsureEndOfFile(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for _, rec := range g.Records() {
		if _, err := bw.WriteString(rec.Text()); err != nil {
			return fmt.Errorf("writing hex stream: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing hex stream: %w", err)
		}
	}
	return bw.Flush()
}

// LoadBytes parses an in-memory hex image.
func LoadBytes(data []byte, opts Options) (*ihex.Group, bool, error) {
	return Load(bytes.NewReader(data), opts)
}

// SaveBytes renders g as an in-memory canonical hex image.
func SaveBytes(g *ihex.Group) ([]byte, error) {
	var buf bytes.Buffer
	if err := Save(&buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadFile opens path and calls Load on its contents.
func LoadFile(path string, opts Options) (*ihex.Group, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return Load(f, opts)
}

// SaveFile creates (or truncates) path and calls Save with g.
func SaveFile(path string, g *ihex.Group) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return Save(f, g)
}
