package ihex

import (
	"errors"
	"testing"
)

func TestGroupI8HEXSetGetAcrossWindow(t *testing.T) {
	g := NewGroup(I8HEX)
	if err := g.Set(0x10, 0xAB); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if got := g.Get(0x10); got != 0xAB {
		t.Errorf("Get(0x10) = 0x%02X, want 0xAB", got)
	}
	if got := g.Get(0x11); got != g.UnusedFillValue() {
		t.Errorf("Get(0x11) = 0x%02X, want fill value 0x%02X", got, g.UnusedFillValue())
	}
	if _, err := g.ensureSectionFor(0x10000); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("I8HEX address beyond 0xFFFF: error = %v, want ErrOutOfRange", err)
	}
}

func TestGroupI16HEXSetRejectsAddressBeyond20BitSpace(t *testing.T) {
	g := NewGroup(I16HEX)
	if err := g.Set(0x100005, 0xAB); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("I16HEX address beyond the 20-bit space: error = %v, want ErrOutOfRange", err)
	}
	if _, err := g.ensureSectionFor(MaxSegmentAbsolute + 1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("ensureSectionFor(MaxSegmentAbsolute+1): error = %v, want ErrOutOfRange", err)
	}
}

func TestGroupI32HEXCreatesSectionsAcrossBoundary(t *testing.T) {
	g := NewGroup(I32HEX)
	payload := make([]byte, 0x20000)
	for i := range payload {
		payload[i] = byte(i)
	}
	if err := g.SetRange(0x0000FFF0, payload); err != nil {
		t.Fatalf("SetRange error: %v", err)
	}
	if len(g.sections) < 2 {
		t.Fatalf("expected a write crossing 64 KiB boundaries to create multiple sections, got %d", len(g.sections))
	}
	for i, want := range payload {
		abs := uint32(0x0000FFF0) + uint32(i)
		if got := g.Get(abs); got != want {
			t.Errorf("Get(0x%X) = 0x%02X, want 0x%02X", abs, got, want)
			break
		}
	}
}

func TestGroupCreateSectionSplitsAcrossPages(t *testing.T) {
	g := NewGroup(I32HEX)
	idx, err := g.CreateSection(0x0000FFC0, 100)
	if err != nil {
		t.Fatalf("CreateSection error: %v", err)
	}
	if len(g.Sections()) != 2 {
		t.Fatalf("expected 2 sections for a span straddling a page boundary, got %d", len(g.Sections()))
	}
	if idx != 1 {
		t.Errorf("CreateSection returned index %d, want 1 (the section covering the last address)", idx)
	}
	if _, err := g.CreateSection(0, 0); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("CreateSection with size 0: error = %v, want ErrOutOfRange", err)
	}
}

func TestGroupSetRangeSplitAcross64KiB(t *testing.T) {
	g := NewGroup(I32HEX)
	data := make([]byte, 100)
	for i := range data {
		data[i] = byte(i)
	}
	if err := g.SetRange(0x0000FFC0, data); err != nil {
		t.Fatalf("SetRange error: %v", err)
	}
	secs := g.Sections()
	if len(secs) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(secs))
	}
	if secs[0].Base() != 0x0000 || secs[1].Base() != 0x0001 {
		t.Errorf("section bases = 0x%04X, 0x%04X, want 0x0000, 0x0001", secs[0].Base(), secs[1].Base())
	}
	for i, s := range secs {
		// Extension record plus exactly one data record per page.
		if n := len(s.Records()); n != 2 {
			t.Errorf("section %d has %d records, want 2", i, n)
		}
	}
	total := 0
	for _, r := range g.DataMap() {
		total += int(r.End-r.Start) + 1
	}
	if total != 100 {
		t.Errorf("data map covers %d bytes, want 100", total)
	}
}

func TestGroupStartLinearAddressRoundTrip(t *testing.T) {
	g := NewGroup(I32HEX)
	if err := g.SetStartLinearAddress(0x08000000); err != nil {
		t.Fatalf("SetStartLinearAddress error: %v", err)
	}
	eip, err := g.StartLinearAddress()
	if err != nil || eip != 0x08000000 {
		t.Errorf("StartLinearAddress() = (0x%X, %v), want (0x08000000, nil)", eip, err)
	}
}

func TestGroupStartLinearAddressUnsupportedOnI16HEX(t *testing.T) {
	g := NewGroup(I16HEX)
	if err := g.SetStartLinearAddress(1); !errors.Is(err, ErrUnsupported) {
		t.Errorf("SetStartLinearAddress on I16HEX: error = %v, want ErrUnsupported", err)
	}
}

func TestGroupPushSectionRejectsIntersect(t *testing.T) {
	g := NewGroup(I16HEX)
	s1 := NewExtendedSegmentAddressSection(0x1000)
	_ = s1.Set(0x10010, 1)
	if err := g.PushSection(s1); err != nil {
		t.Fatalf("PushSection error: %v", err)
	}
	s2 := NewExtendedSegmentAddressSection(0x1000)
	if err := g.PushSection(s2); !errors.Is(err, ErrIntersect) {
		t.Errorf("pushing a second section at the same base: error = %v, want ErrIntersect", err)
	}
}

func TestGroupPushSectionRejectsWrongVariant(t *testing.T) {
	g := NewGroup(I8HEX)
	s := NewExtendedLinearAddressSection(0)
	if err := g.PushSection(s); !errors.Is(err, ErrUnsupported) {
		t.Errorf("pushing an I32HEX section onto an I8HEX group: error = %v, want ErrUnsupported", err)
	}
}

func TestGroupSetRangeAtomicOnOutOfRange(t *testing.T) {
	g := NewGroup(I16HEX)
	err := g.SetRange(0xFFFF0, make([]byte, 0x20))
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("SetRange past the 20-bit end: error = %v, want ErrOutOfRange", err)
	}
	if len(g.DataMap()) != 0 {
		t.Errorf("failed SetRange left partial data behind: %+v", g.DataMap())
	}
	if len(g.Sections()) != 0 {
		t.Errorf("failed SetRange left %d sections behind", len(g.Sections()))
	}
}

func TestGroupDataMapCompacted(t *testing.T) {
	g := NewGroup(I8HEX)
	_ = g.SetRange(0, []byte{1, 2, 3, 4})
	_ = g.SetRange(4, []byte{5, 6})
	dm := g.DataMap()
	if len(dm) != 1 || dm[0] != (AddrRange{Start: 0, End: 5}) {
		t.Errorf("DataMap() = %+v, want [{0, 5}]", dm)
	}
}

func TestGroupRecordsEndWithEndOfFile(t *testing.T) {
	g := NewGroup(I8HEX)
	_ = g.Set(0, 1)
	if err := g.EnsureEndOfFile(); err != nil {
		t.Fatalf("EnsureEndOfFile error: %v", err)
	}
	records := g.Records()
	last := records[len(records)-1]
	if last.Kind() != RecordEndOfFile {
		t.Errorf("last record kind = %v, want RecordEndOfFile", last.Kind())
	}
}
