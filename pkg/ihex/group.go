package ihex

import (
	"fmt"
	"sort"
)

// Group is an ordered collection of Sections that all share one address
// variant. It is the top-level in-memory representation of a hex image: the
// unit that a file is loaded into and saved from.
type Group struct {
	variant    Variant
	sections   []*Section
	unusedFill byte
}

// NewGroup builds an empty group of the given variant. The unused-data fill
// value defaults to DefaultFillValue.
func NewGroup(variant Variant) *Group {
	return &Group{variant: variant, unusedFill: DefaultFillValue}
}

// Variant returns the group's address variant.
func (g *Group) Variant() Variant { return g.variant }

// UnusedFillValue returns the byte Get returns for addresses not covered by
// any record.
func (g *Group) UnusedFillValue() byte { return g.unusedFill }

// SetUnusedFillValue changes the fill byte Get returns for addresses not
// covered by any record.
func (g *Group) SetUnusedFillValue(value byte) { g.unusedFill = value }

// Sections returns the group's sections in emission order.
func (g *Group) Sections() []*Section {
	out := make([]*Section, len(g.sections))
	copy(out, g.sections)
	return out
}

// baseOf returns the base register of a base-carrying section, for ordering
// and lookup purposes.
func baseOf(s *Section) uint16 { return s.Base() }

// CanPushSection reports whether PushSection would succeed for s.
func (g *Group) CanPushSection(s *Section) bool {
	if !s.VariantCompatible(g.variant) {
		return false
	}
	if s.kind.isDataBearing() {
		if RangesIntersect(s.Window(), g.dataBearingWindows()) {
			return false
		}
	} else if s.kind == SectionStartSegmentAddress || s.kind == SectionStartLinearAddress {
		if g.findSingleton(s.kind) != nil {
			return false
		}
	} else if s.kind == SectionEndOfFile {
		if g.findSingleton(SectionEndOfFile) != nil {
			return false
		}
	}
	return true
}

func (g *Group) dataBearingWindows() []AddrRange {
	var out []AddrRange
	for _, s := range g.sections {
		if s.kind.isDataBearing() {
			out = append(out, s.Window()...)
		}
	}
	return out
}

func (g *Group) findSingleton(kind SectionKind) *Section {
	for _, s := range g.sections {
		if s.kind == kind {
			return s
		}
	}
	return nil
}

// PushSection appends s to the group, in window order for data-bearing
// sections. It fails with ErrUnsupported if s's kind is not legal for the
// group's variant, or ErrIntersect if s's window overlaps an existing
// data-bearing section, or if a singleton (start-address/end-of-file)
// section already exists.
func (g *Group) PushSection(s *Section) error {
	if !s.VariantCompatible(g.variant) {
		return fmt.Errorf("%w: section kind %s is not valid for variant %s", ErrUnsupported, s.kind, g.variant)
	}
	if !g.CanPushSection(s) {
		return fmt.Errorf("%w: section window overlaps existing data, or a singleton section already exists", ErrIntersect)
	}
	g.sections = append(g.sections, s)
	g.reorder()
	return nil
}

// reorder keeps sections in emission order: data-bearing sections (ordered
// by base/window start), then start-address sections, then end-of-file
// last.
func (g *Group) reorder() {
	sort.SliceStable(g.sections, func(i, j int) bool {
		ri, rj := g.sections[i], g.sections[j]
		pi, pj := emissionRank(ri.kind), emissionRank(rj.kind)
		if pi != pj {
			return pi < pj
		}
		if ri.kind.isDataBearing() && rj.kind.isDataBearing() {
			return baseOf(ri) < baseOf(rj)
		}
		return false
	})
}

func emissionRank(k SectionKind) int {
	switch k {
	case SectionDataOnly, SectionExtendedSegmentAddress, SectionExtendedLinearAddress:
		return 0
	case SectionStartSegmentAddress, SectionStartLinearAddress:
		return 1
	case SectionEndOfFile:
		return 2
	default:
		return 3
	}
}

// FindSection returns the data-bearing section whose base register equals
// base, if any.
func (g *Group) FindSection(base uint16) (*Section, bool) {
	for _, s := range g.sections {
		if s.kind.carriesBase() && s.Base() == base {
			return s, true
		}
	}
	return nil, false
}

// FindPreviousSection returns the data-bearing section with the greatest
// base strictly less than base.
func (g *Group) FindPreviousSection(base uint16) (*Section, bool) {
	var best *Section
	for _, s := range g.sections {
		if !s.kind.carriesBase() || s.Base() >= base {
			continue
		}
		if best == nil || s.Base() > best.Base() {
			best = s
		}
	}
	return best, best != nil
}

// FindNextSection returns the data-bearing section with the least base
// strictly greater than base.
func (g *Group) FindNextSection(base uint16) (*Section, bool) {
	var best *Section
	for _, s := range g.sections {
		if !s.kind.carriesBase() || s.Base() <= base {
			continue
		}
		if best == nil || s.Base() < best.Base() {
			best = s
		}
	}
	return best, best != nil
}

// sectionForAddress returns the existing data-bearing section whose window
// covers absolute, if any.
func (g *Group) sectionForAddress(absolute uint32) (*Section, bool) {
	for _, s := range g.sections {
		if !s.kind.isDataBearing() {
			continue
		}
		for _, w := range s.Window() {
			if absolute >= w.Start && absolute <= w.End {
				return s, true
			}
		}
	}
	return nil, false
}

// newSectionAt builds (without pushing) the section the group would create
// to cover absolute.
func (g *Group) newSectionAt(absolute uint32) (*Section, error) {
	switch g.variant {
	case I8HEX:
		if absolute > 0xFFFF {
			return nil, fmt.Errorf("%w: I8HEX address 0x%X exceeds 0xFFFF", ErrOutOfRange, absolute)
		}
		return NewDataOnlySection(), nil
	case I16HEX:
		if absolute > MaxSegmentAbsolute {
			return nil, fmt.Errorf("%w: I16HEX address 0x%X exceeds the 20-bit address space (max 0x%X)", ErrOutOfRange, absolute, MaxSegmentAbsolute)
		}
		base := FindSegmentBase(absolute)
		if !ContainsSegmentAddress(absolute, base) {
			return nil, fmt.Errorf("%w: could not align an I16HEX segment base to cover address 0x%X", ErrRuntime, absolute)
		}
		return NewExtendedSegmentAddressSection(base), nil
	case I32HEX:
		return NewExtendedLinearAddressSection(FindLinearBase(absolute)), nil
	default:
		return nil, fmt.Errorf("%w: unknown variant %d", ErrUnsupported, int(g.variant))
	}
}

// ensureSectionFor returns the data-bearing section covering absolute,
// creating and pushing a new one at the appropriate base if none exists
// yet.
func (g *Group) ensureSectionFor(absolute uint32) (*Section, error) {
	if s, ok := g.sectionForAddress(absolute); ok {
		return s, nil
	}
	s, err := g.newSectionAt(absolute)
	if err != nil {
		return nil, err
	}
	if err := g.PushSection(s); err != nil {
		return nil, err
	}
	return s, nil
}

// checkWritableSpan verifies that every byte of [absolute, absolute+size-1]
// lies inside an existing section's window or inside one the group could
// create, so a multi-section write either runs to completion or fails
// before the first byte is touched.
func (g *Group) checkWritableSpan(absolute, size uint32) error {
	if absolute+size-1 < absolute {
		return fmt.Errorf("%w: range at 0x%X of %d bytes overflows the 32-bit address space", ErrOutOfRange, absolute, size)
	}
	for size > 0 {
		s, ok := g.sectionForAddress(absolute)
		if !ok {
			candidate, err := g.newSectionAt(absolute)
			if err != nil {
				return err
			}
			if !g.CanPushSection(candidate) {
				return fmt.Errorf("%w: a new section covering 0x%X would overlap an existing section's window", ErrIntersect, absolute)
			}
			s = candidate
		}
		window := windowContaining(s.Window(), absolute)
		span := window.End - absolute + 1
		if span > size {
			span = size
		}
		size -= span
		absolute += span
	}
	return nil
}

// CreateSection makes sure sections exist covering every address in
// [absolute, absolute+size-1], creating them at stepped bases as needed (a
// span that straddles a 64-KiB boundary produces one section per page
// crossed). It returns the index of the section covering the span's last
// address. On error no section has been created.
func (g *Group) CreateSection(absolute uint32, size uint32) (int, error) {
	if size == 0 {
		return 0, fmt.Errorf("%w: size must be positive", ErrOutOfRange)
	}
	if err := g.checkWritableSpan(absolute, size); err != nil {
		return 0, err
	}
	last := absolute + size - 1
	for addr := absolute; ; {
		s, err := g.ensureSectionFor(addr)
		if err != nil {
			return 0, err
		}
		window := windowContaining(s.Window(), addr)
		if window.End >= last {
			break
		}
		addr = window.End + 1
	}
	s, _ := g.sectionForAddress(last)
	for i, sec := range g.sections {
		if sec == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: created section not found for 0x%X", ErrRuntime, last)
}

// Get returns the byte at absolute, or the group's unused fill value if no
// section covers it.
func (g *Group) Get(absolute uint32) byte {
	if s, ok := g.sectionForAddress(absolute); ok {
		v, err := s.Get(absolute, g.unusedFill)
		if err == nil {
			return v
		}
	}
	return g.unusedFill
}

// Set writes a single byte at absolute, creating a section to hold it if
// none yet covers that address.
func (g *Group) Set(absolute uint32, value byte) error {
	s, err := g.ensureSectionFor(absolute)
	if err != nil {
		return err
	}
	return s.Set(absolute, value)
}

// SetRange writes bytes starting at absolute, splitting the write across
// section boundaries (and creating new sections) as needed. The whole span
// is validated up front, so on error no byte of the range has been written.
func (g *Group) SetRange(absolute uint32, values []byte) error {
	if len(values) == 0 {
		return nil
	}
	if err := g.checkWritableSpan(absolute, uint32(len(values))); err != nil {
		return err
	}
	for len(values) > 0 {
		s, err := g.ensureSectionFor(absolute)
		if err != nil {
			return err
		}
		window := windowContaining(s.Window(), absolute)
		span := window.End - absolute + 1
		if span > uint32(len(values)) {
			span = uint32(len(values))
		}
		if err := s.SetRange(absolute, values[:span]); err != nil {
			return err
		}
		values = values[span:]
		absolute += span
	}
	return nil
}

func windowContaining(windows []AddrRange, absolute uint32) AddrRange {
	for _, w := range windows {
		if absolute >= w.Start && absolute <= w.End {
			return w
		}
	}
	return AddrRange{Start: absolute, End: absolute}
}

// Fill writes count copies of value starting at absolute.
func (g *Group) Fill(absolute uint32, count int, value byte) error {
	if count <= 0 {
		return fmt.Errorf("%w: fill count must be positive", ErrOutOfRange)
	}
	values := make([]byte, count)
	for i := range values {
		values[i] = value
	}
	return g.SetRange(absolute, values)
}

// Clear removes count bytes starting at absolute from whichever sections
// cover them, returning the total number of bytes actually removed.
func (g *Group) Clear(absolute uint32, count int) (int, error) {
	if count <= 0 {
		return 0, fmt.Errorf("%w: clear count must be positive", ErrOutOfRange)
	}
	removed := 0
	remaining := uint32(count)
	for remaining > 0 {
		s, ok := g.sectionForAddress(absolute)
		if !ok {
			// No section covers this address; skip to the next one. With
			// nothing to skip to inside a fixed count, just consume it.
			absolute++
			remaining--
			continue
		}
		window := windowContaining(s.Window(), absolute)
		span := window.End - absolute + 1
		if span > remaining {
			span = remaining
		}
		n, err := s.Clear(absolute, int(span))
		if err != nil {
			return removed, err
		}
		removed += n
		absolute += span
		remaining -= span
	}
	return removed, nil
}

// AddressMap returns the union of every data-bearing section's address map,
// uncompacted.
func (g *Group) AddressMap() []AddrRange {
	var out []AddrRange
	for _, s := range g.sections {
		out = append(out, s.AddressMap()...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// DataMap returns the compacted AddressMap.
func (g *Group) DataMap() []AddrRange {
	return CompactRanges(g.AddressMap())
}

// CheckIntersect reports whether any of ranges overlaps the group's
// existing data.
func (g *Group) CheckIntersect(ranges []AddrRange) bool {
	return RangesIntersect(ranges, g.DataMap())
}

// StartSegmentAddress returns the CS:IP execution start address. It fails
// with ErrUnsupported if the group is not I16HEX, or ErrOutOfRange if no
// start-address section has been set.
func (g *Group) StartSegmentAddress() (cs uint16, ip uint16, err error) {
	if g.variant != I16HEX {
		return 0, 0, fmt.Errorf("%w: start segment address requires I16HEX", ErrUnsupported)
	}
	s := g.findSingleton(SectionStartSegmentAddress)
	if s == nil {
		return 0, 0, fmt.Errorf("%w: group has no start segment address section", ErrOutOfRange)
	}
	cs, err = s.single.StartSegmentAddressCodeSegment()
	if err != nil {
		return 0, 0, err
	}
	ip, err = s.single.StartSegmentAddressInstructionPointer()
	return cs, ip, err
}

// SetStartSegmentAddress sets (creating if absent) the CS:IP execution
// start address. It fails with ErrUnsupported if the group is not I16HEX.
func (g *Group) SetStartSegmentAddress(cs, ip uint16) error {
	if g.variant != I16HEX {
		return fmt.Errorf("%w: start segment address requires I16HEX", ErrUnsupported)
	}
	if s := g.findSingleton(SectionStartSegmentAddress); s != nil {
		if err := s.single.SetStartSegmentAddressCodeSegment(cs); err != nil {
			return err
		}
		return s.single.SetStartSegmentAddressInstructionPointer(ip)
	}
	return g.PushSection(NewStartSegmentAddressSection(cs, ip))
}

// StartLinearAddress returns the EIP execution start address. It fails with
// ErrUnsupported if the group is not I32HEX, or ErrOutOfRange if no
// start-address section has been set.
func (g *Group) StartLinearAddress() (uint32, error) {
	if g.variant != I32HEX {
		return 0, fmt.Errorf("%w: start linear address requires I32HEX", ErrUnsupported)
	}
	s := g.findSingleton(SectionStartLinearAddress)
	if s == nil {
		return 0, fmt.Errorf("%w: group has no start linear address section", ErrOutOfRange)
	}
	return s.single.StartLinearAddressExtendedInstructionPointer()
}

// SetStartLinearAddress sets (creating if absent) the EIP execution start
// address. It fails with ErrUnsupported if the group is not I32HEX.
func (g *Group) SetStartLinearAddress(eip uint32) error {
	if g.variant != I32HEX {
		return fmt.Errorf("%w: start linear address requires I32HEX", ErrUnsupported)
	}
	if s := g.findSingleton(SectionStartLinearAddress); s != nil {
		return s.single.SetStartLinearAddressExtendedInstructionPointer(eip)
	}
	return g.PushSection(NewStartLinearAddressSection(eip))
}

// EnsureEndOfFile appends the end-of-file section if one is not already
// present.
func (g *Group) EnsureEndOfFile() error {
	if g.findSingleton(SectionEndOfFile) != nil {
		return nil
	}
	return g.PushSection(NewEndOfFileSection())
}

// Records flattens every section's records in emission order.
func (g *Group) Records() []*Record {
	var out []*Record
	for _, s := range g.sections {
		out = append(out, s.Records()...)
	}
	return out
}
