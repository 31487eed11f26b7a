package ihex

import "fmt"

// Variant identifies which of the three Intel HEX address-space flavors a
// group conforms to.
type Variant int

const (
	// I8HEX uses plain 16-bit addresses with no extension record.
	I8HEX Variant = iota
	// I16HEX uses a 20-bit effective space via a segment base shifted left by 4.
	I16HEX
	// I32HEX uses a 32-bit flat space via a linear base shifted left by 16.
	I32HEX
)

func (v Variant) String() string {
	switch v {
	case I8HEX:
		return "I8HEX"
	case I16HEX:
		return "I16HEX"
	case I32HEX:
		return "I32HEX"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// MaxSegmentAbsolute is the highest absolute address reachable in the
// I16HEX 20-bit address space.
const MaxSegmentAbsolute uint32 = 0xFFFFF

// segmentBaseStep is the granularity at which I16HEX segment bases are
// iterated when sections are created for a write; it keeps relative
// addresses aligned to a 64-KiB boundary.
const segmentBaseStep uint32 = 0x1000

// AddrRange is an inclusive absolute-address range.
type AddrRange struct {
	Start uint32
	End   uint32
}

// AbsoluteDataAddress returns the absolute address of a plain I8HEX data
// record address: the relative address unchanged.
func AbsoluteDataAddress(relative uint16) uint32 {
	return uint32(relative)
}

// RelativeDataAddress is the inverse of AbsoluteDataAddress. It fails with
// ErrOutOfRange if absolute does not fit in 16 bits.
func RelativeDataAddress(absolute uint32) (uint16, error) {
	if absolute > 0xFFFF {
		return 0, fmt.Errorf("%w: I8HEX absolute address 0x%X exceeds 0xFFFF", ErrOutOfRange, absolute)
	}
	return uint16(absolute), nil
}

// baseSegmentAddress returns base<<4 as a 32-bit value.
func baseSegmentAddress(base uint16) uint32 {
	return uint32(base) << 4
}

// baseLinearAddress returns base<<16 as a 32-bit value.
func baseLinearAddress(base uint16) uint32 {
	return uint32(base) << 16
}

// AbsoluteSegmentAddress computes ((base<<4) + relative) mod 2^20, the
// I16HEX absolute address for the given segment base.
func AbsoluteSegmentAddress(relative uint16, base uint16) uint32 {
	return (baseSegmentAddress(base) + uint32(relative)) & MaxSegmentAbsolute
}

// RelativeSegmentAddress is the inverse of AbsoluteSegmentAddress. It fails
// with ErrOutOfRange if absolute does not lie within base's window.
func RelativeSegmentAddress(absolute uint32, base uint16) (uint16, error) {
	if !ContainsSegmentAddress(absolute, base) {
		return 0, fmt.Errorf("%w: absolute address 0x%X is outside the I16HEX window of segment base 0x%04X", ErrOutOfRange, absolute, base)
	}
	return uint16(absolute - baseSegmentAddress(base)), nil
}

// AbsoluteLinearAddress computes (base<<16) + relative, the I32HEX absolute
// address for the given linear base.
func AbsoluteLinearAddress(relative uint16, base uint16) uint32 {
	return baseLinearAddress(base) + uint32(relative)
}

// RelativeLinearAddress is the inverse of AbsoluteLinearAddress. It fails
// with ErrOutOfRange if absolute does not lie within base's window.
func RelativeLinearAddress(absolute uint32, base uint16) (uint16, error) {
	if !ContainsLinearAddress(absolute, base) {
		return 0, fmt.Errorf("%w: absolute address 0x%X is outside the I32HEX window of linear base 0x%04X", ErrOutOfRange, absolute, base)
	}
	return uint16(absolute - baseLinearAddress(base)), nil
}

// findSegmentBase returns the segment base whose window starts at the
// 64-KiB-aligned address containing absolute, per the I16HEX remainder rule.
func findSegmentBase(absolute uint32) uint16 {
	remainder := absolute & 0xFFFF
	return uint16((absolute - remainder) >> 4)
}

// hasSegmentWraparound reports whether base's window wraps past
// MaxSegmentAbsolute back to address 0.
func hasSegmentWraparound(base uint16) bool {
	return base > findSegmentBase(MaxSegmentAbsolute)
}

// SegmentWindow returns the absolute-address range(s) reachable under the
// given I16HEX segment base: a single contiguous range, or two ranges if
// the window wraps past the 20-bit end.
func SegmentWindow(base uint16) []AddrRange {
	min := AbsoluteSegmentAddress(0, base)
	max := AbsoluteSegmentAddress(0xFFFF, base)
	if hasSegmentWraparound(base) {
		return []AddrRange{
			{Start: 0, End: max},
			{Start: min, End: MaxSegmentAbsolute},
		}
	}
	return []AddrRange{{Start: min, End: max}}
}

// LinearWindow returns the absolute-address range reachable under the given
// I32HEX linear base: always a single contiguous 64-KiB range.
func LinearWindow(base uint16) []AddrRange {
	start := baseLinearAddress(base)
	return []AddrRange{{Start: start, End: start + 0xFFFF}}
}

// ContainsSegmentAddress reports whether absolute lies within base's
// I16HEX window, accounting for wraparound.
func ContainsSegmentAddress(absolute uint32, base uint16) bool {
	min := AbsoluteSegmentAddress(0, base)
	max := AbsoluteSegmentAddress(0xFFFF, base)
	if hasSegmentWraparound(base) {
		return !(absolute < min && absolute > max) && absolute <= MaxSegmentAbsolute
	}
	return !(absolute < min || absolute > max)
}

// ContainsLinearAddress reports whether absolute lies within base's
// I32HEX window.
func ContainsLinearAddress(absolute uint32, base uint16) bool {
	start := baseLinearAddress(base)
	end := start + 0xFFFF
	return absolute >= start && absolute <= end
}

// FindSegmentBase returns the I16HEX segment base, stepped to a
// segmentBaseStep boundary, that covers absolute.
func FindSegmentBase(absolute uint32) uint16 {
	base := findSegmentBase(absolute)
	return base - (base % uint16(segmentBaseStep))
}

// FindLinearBase returns the I32HEX linear base (the high 16 bits) that
// covers absolute.
func FindLinearBase(absolute uint32) uint16 {
	return uint16((absolute >> 16) & 0xFFFF)
}

// NextSegmentBase and PrevSegmentBase step a segment base by the 0x1000
// granularity used when creating sections that cover a write.
func NextSegmentBase(base uint16) uint16 { return base + uint16(segmentBaseStep) }
func PrevSegmentBase(base uint16) uint16 { return base - uint16(segmentBaseStep) }

// NextLinearBase and PrevLinearBase step a linear base by one 64-KiB page.
func NextLinearBase(base uint16) uint16 { return base + 1 }
func PrevLinearBase(base uint16) uint16 { return base - 1 }

// RangesIntersect reports whether any range in a overlaps any range in b.
func RangesIntersect(a, b []AddrRange) bool {
	for _, ra := range a {
		for _, rb := range b {
			if ra.Start <= rb.End && rb.Start <= ra.End {
				return true
			}
		}
	}
	return false
}

// CompactRanges merges adjacent or overlapping ranges in a list sorted by
// Start, returning a new minimal sorted list.
func CompactRanges(ranges []AddrRange) []AddrRange {
	if len(ranges) == 0 {
		return nil
	}
	out := make([]AddrRange, 0, len(ranges))
	cur := ranges[0]
	for _, r := range ranges[1:] {
		if r.Start <= cur.End || (cur.End != 0xFFFFFFFF && cur.End+1 == r.Start) {
			if r.End > cur.End {
				cur.End = r.End
			}
			continue
		}
		out = append(out, cur)
		cur = r
	}
	out = append(out, cur)
	return out
}
