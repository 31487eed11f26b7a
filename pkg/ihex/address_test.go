package ihex

import (
	"errors"
	"testing"
)

func TestAbsoluteSegmentAddress(t *testing.T) {
	tests := []struct {
		name     string
		relative uint16
		base     uint16
		expected uint32
	}{
		{"zero base zero relative", 0, 0, 0},
		{"base 0x1000 relative 0", 0, 0x1000, 0x10000},
		{"base 0x1000 relative 0x20", 0x20, 0x1000, 0x10020},
		{"wraparound base 0xFFFF relative 0xFFFF", 0xFFFF, 0xFFFF, 0xFFEF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AbsoluteSegmentAddress(tt.relative, tt.base)
			if got != tt.expected {
				t.Errorf("AbsoluteSegmentAddress(0x%X, 0x%X) = 0x%X, want 0x%X", tt.relative, tt.base, got, tt.expected)
			}
		})
	}
}

func TestSegmentWindowWraparound(t *testing.T) {
	// Base 0xFFFF wraps: window is [0xFFFF0, 0xFFFFF] ∪ [0x0, 0xFFEF].
	windows := SegmentWindow(0xFFFF)
	if len(windows) != 2 {
		t.Fatalf("expected 2 ranges for wraparound base, got %d: %+v", len(windows), windows)
	}
	if windows[0] != (AddrRange{Start: 0, End: 0xFFEF}) {
		t.Errorf("low range = %+v, want {0, 0xFFEF}", windows[0])
	}
	if windows[1] != (AddrRange{Start: 0xFFFF0, End: MaxSegmentAbsolute}) {
		t.Errorf("high range = %+v, want {0xFFFF0, 0xFFFFF}", windows[1])
	}
}

func TestSegmentWindowNoWraparound(t *testing.T) {
	windows := SegmentWindow(0x1000)
	if len(windows) != 1 {
		t.Fatalf("expected 1 range for non-wraparound base, got %d: %+v", len(windows), windows)
	}
	want := AddrRange{Start: 0x10000, End: 0x1FFFF}
	if windows[0] != want {
		t.Errorf("window = %+v, want %+v", windows[0], want)
	}
}

func TestContainsSegmentAddressWraparound(t *testing.T) {
	tests := []struct {
		absolute uint32
		contains bool
	}{
		{0, true},
		{0xFFEF, true},
		{0xFFF0, false},
		{0xFFFF0, true},
		{MaxSegmentAbsolute, true},
	}
	for _, tt := range tests {
		if got := ContainsSegmentAddress(tt.absolute, 0xFFFF); got != tt.contains {
			t.Errorf("ContainsSegmentAddress(0x%X, 0xFFFF) = %v, want %v", tt.absolute, got, tt.contains)
		}
	}
}

func TestRelativeSegmentAddressOutOfRange(t *testing.T) {
	_, err := RelativeSegmentAddress(0xFFF0, 0xFFFF)
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestAbsoluteLinearAddress(t *testing.T) {
	got := AbsoluteLinearAddress(0x1234, 0x0002)
	want := uint32(0x00020000 + 0x1234)
	if got != want {
		t.Errorf("AbsoluteLinearAddress = 0x%X, want 0x%X", got, want)
	}
}

func TestLinearWindow(t *testing.T) {
	windows := LinearWindow(0x0002)
	want := AddrRange{Start: 0x00020000, End: 0x0002FFFF}
	if len(windows) != 1 || windows[0] != want {
		t.Errorf("LinearWindow(2) = %+v, want [%+v]", windows, want)
	}
}

func TestFindSegmentBaseSteppedAlignment(t *testing.T) {
	base := FindSegmentBase(0x12345)
	if base%uint16(segmentBaseStep) != 0 {
		t.Errorf("FindSegmentBase returned unaligned base 0x%X", base)
	}
	if !ContainsSegmentAddress(0x12345, base) {
		t.Errorf("FindSegmentBase(0x12345) = 0x%X does not actually cover 0x12345", base)
	}
}

func TestRangesIntersect(t *testing.T) {
	a := []AddrRange{{Start: 0, End: 10}}
	b := []AddrRange{{Start: 11, End: 20}}
	if RangesIntersect(a, b) {
		t.Errorf("adjacent ranges should not intersect")
	}
	b = []AddrRange{{Start: 10, End: 20}}
	if !RangesIntersect(a, b) {
		t.Errorf("overlapping ranges should intersect")
	}
}

func TestCompactRanges(t *testing.T) {
	in := []AddrRange{{Start: 0, End: 9}, {Start: 10, End: 19}, {Start: 30, End: 39}}
	out := CompactRanges(in)
	want := []AddrRange{{Start: 0, End: 19}, {Start: 30, End: 39}}
	if len(out) != len(want) {
		t.Fatalf("CompactRanges = %+v, want %+v", out, want)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("CompactRanges[%d] = %+v, want %+v", i, out[i], want[i])
		}
	}
}
