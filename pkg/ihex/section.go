package ihex

import (
	"fmt"
	"sort"
)

// SectionKind identifies which of the six shapes a Section takes.
type SectionKind int

const (
	// SectionDataOnly carries data records with no extension base. Valid
	// only in an I8HEX group.
	SectionDataOnly SectionKind = iota
	// SectionEndOfFile is the singleton end-of-file marker; it carries no
	// records of its own.
	SectionEndOfFile
	// SectionExtendedSegmentAddress carries a 16-bit segment base plus 0..N
	// data records within that base's window.
	SectionExtendedSegmentAddress
	// SectionExtendedLinearAddress carries a 16-bit linear base plus 0..N
	// data records within that base's window.
	SectionExtendedLinearAddress
	// SectionStartSegmentAddress carries the CS:IP execution start address.
	SectionStartSegmentAddress
	// SectionStartLinearAddress carries the EIP execution start address.
	SectionStartLinearAddress
)

func (k SectionKind) String() string {
	switch k {
	case SectionDataOnly:
		return "DataOnly"
	case SectionEndOfFile:
		return "EndOfFile"
	case SectionExtendedSegmentAddress:
		return "ExtendedSegmentAddress"
	case SectionExtendedLinearAddress:
		return "ExtendedLinearAddress"
	case SectionStartSegmentAddress:
		return "StartSegmentAddress"
	case SectionStartLinearAddress:
		return "StartLinearAddress"
	default:
		return fmt.Sprintf("SectionKind(%d)", int(k))
	}
}

func (k SectionKind) isDataBearing() bool {
	return k == SectionDataOnly || k == SectionExtendedSegmentAddress || k == SectionExtendedLinearAddress
}

func (k SectionKind) carriesBase() bool {
	return k == SectionExtendedSegmentAddress || k == SectionExtendedLinearAddress
}

// Section is an ordered, non-overlapping collection of records that all
// share one address-mode context: one extended-segment or extended-linear
// base, or a data-only / end-of-file / start-address singleton. It presents
// an absolute-address-indexed byte interface over its 64-KiB window.
type Section struct {
	kind   SectionKind
	base   uint16  // segment or linear base; meaningful only if kind.carriesBase()
	data   []*Record // data records, strictly ordered and non-overlapping by relative address
	single *Record   // the Start*/EndOfFile record, for non-data-bearing kinds
}

// NewDataOnlySection builds an empty SectionDataOnly section.
func NewDataOnlySection() *Section { return &Section{kind: SectionDataOnly} }

// NewExtendedSegmentAddressSection builds an empty
// SectionExtendedSegmentAddress section with the given segment base.
func NewExtendedSegmentAddressSection(base uint16) *Section {
	return &Section{kind: SectionExtendedSegmentAddress, base: base}
}

// NewExtendedLinearAddressSection builds an empty
// SectionExtendedLinearAddress section with the given linear base.
func NewExtendedLinearAddressSection(base uint16) *Section {
	return &Section{kind: SectionExtendedLinearAddress, base: base}
}

// NewEndOfFileSection builds the singleton end-of-file section.
func NewEndOfFileSection() *Section {
	return &Section{kind: SectionEndOfFile, single: NewEndOfFileRecord()}
}

// NewStartSegmentAddressSection builds a SectionStartSegmentAddress section
// carrying the given CS:IP.
func NewStartSegmentAddressSection(cs, ip uint16) *Section {
	return &Section{kind: SectionStartSegmentAddress, single: NewStartSegmentAddressRecord(cs, ip)}
}

// NewStartLinearAddressSection builds a SectionStartLinearAddress section
// carrying the given EIP.
func NewStartLinearAddressSection(eip uint32) *Section {
	return &Section{kind: SectionStartLinearAddress, single: NewStartLinearAddressRecord(eip)}
}

// SectionFromRecord opens the section a record implies when it cannot be
// pushed onto the trailing section of a group being loaded: extension
// records start an extended section, EndOfFile and Start* records open
// their singleton section, and a Data record opens a SectionDataOnly
// section (the only data-bearing kind with no base of its own) containing
// that record.
func SectionFromRecord(r *Record) (*Section, error) {
	switch r.Kind() {
	case RecordData:
		s := NewDataOnlySection()
		if err := s.PushRecord(r); err != nil {
			return nil, err
		}
		return s, nil
	case RecordEndOfFile:
		return NewEndOfFileSection(), nil
	case RecordExtendedSegmentAddress:
		base, err := r.ExtendedSegmentAddress()
		if err != nil {
			return nil, err
		}
		return NewExtendedSegmentAddressSection(base), nil
	case RecordExtendedLinearAddress:
		base, err := r.ExtendedLinearAddress()
		if err != nil {
			return nil, err
		}
		return NewExtendedLinearAddressSection(base), nil
	case RecordStartSegmentAddress:
		cs, err := r.StartSegmentAddressCodeSegment()
		if err != nil {
			return nil, err
		}
		ip, err := r.StartSegmentAddressInstructionPointer()
		if err != nil {
			return nil, err
		}
		return NewStartSegmentAddressSection(cs, ip), nil
	case RecordStartLinearAddress:
		eip, err := r.StartLinearAddressExtendedInstructionPointer()
		if err != nil {
			return nil, err
		}
		return NewStartLinearAddressSection(eip), nil
	default:
		return nil, fmt.Errorf("%w: unknown record kind %d", ErrMalformed, int(r.Kind()))
	}
}

// Kind returns the section's kind.
func (s *Section) Kind() SectionKind { return s.kind }

// Base returns the section's segment or linear base. It is meaningful only
// for SectionExtendedSegmentAddress and SectionExtendedLinearAddress.
func (s *Section) Base() uint16 { return s.base }

// Window returns the absolute-address range(s) reachable within this
// section, or nil for kinds that carry no addresses.
func (s *Section) Window() []AddrRange {
	switch s.kind {
	case SectionDataOnly:
		return []AddrRange{{Start: 0, End: 0xFFFF}}
	case SectionExtendedSegmentAddress:
		return SegmentWindow(s.base)
	case SectionExtendedLinearAddress:
		return LinearWindow(s.base)
	default:
		return nil
	}
}

func (s *Section) absoluteOf(relative uint16) (uint32, error) {
	switch s.kind {
	case SectionDataOnly:
		return AbsoluteDataAddress(relative), nil
	case SectionExtendedSegmentAddress:
		return AbsoluteSegmentAddress(relative, s.base), nil
	case SectionExtendedLinearAddress:
		return AbsoluteLinearAddress(relative, s.base), nil
	default:
		return 0, fmt.Errorf("%w: section kind %s carries no addresses", ErrWrongKind, s.kind)
	}
}

func (s *Section) relativeOf(absolute uint32) (uint16, error) {
	switch s.kind {
	case SectionDataOnly:
		return RelativeDataAddress(absolute)
	case SectionExtendedSegmentAddress:
		return RelativeSegmentAddress(absolute, s.base)
	case SectionExtendedLinearAddress:
		return RelativeLinearAddress(absolute, s.base)
	default:
		return 0, fmt.Errorf("%w: section kind %s carries no addresses", ErrWrongKind, s.kind)
	}
}

// findCoveringIndex returns the index of the data record covering the
// relative address, if any.
func (s *Section) findCoveringIndex(relative uint16) (int, bool) {
	for i, r := range s.data {
		if ok, _ := r.CoversAddress(relative); ok {
			return i, true
		}
	}
	return -1, false
}

// insertionIndex returns the index of the first record whose address is
// greater than relative.
func (s *Section) insertionIndex(relative uint16) int {
	return sort.Search(len(s.data), func(i int) bool { return s.data[i].Address() > relative })
}

// Get returns the byte at the given absolute address, or fill if the
// address is in the window but not covered by any record. It fails with
// ErrOutOfRange if the address is outside the section's window.
func (s *Section) Get(absolute uint32, fill byte) (byte, error) {
	rel, err := s.relativeOf(absolute)
	if err != nil {
		return 0, err
	}
	if idx, ok := s.findCoveringIndex(rel); ok {
		r := s.data[idx]
		return r.DataAt(int(rel - r.Address())), nil
	}
	return fill, nil
}

// Set writes a single byte at the given absolute address, extending,
// merging, or creating a data record as needed. It fails with ErrWrongKind
// if the section is not data-bearing, or ErrOutOfRange if the address is
// outside the section's window.
func (s *Section) Set(absolute uint32, value byte) error {
	if !s.kind.isDataBearing() {
		return fmt.Errorf("%w: section kind %s cannot hold data", ErrWrongKind, s.kind)
	}
	rel, err := s.relativeOf(absolute)
	if err != nil {
		return err
	}
	if idx, ok := s.findCoveringIndex(rel); ok {
		r := s.data[idx]
		_ = r.SetDataAt(int(rel-r.Address()), value)
		r.UpdateChecksum()
		return nil
	}

	prevIdx, hasPrev := s.FindPreviousRecord(absolute)
	nextIdx, hasNext := s.FindNextRecord(absolute)
	insertAt := len(s.data)
	if hasNext {
		insertAt = nextIdx
	}

	if hasPrev {
		prev := s.data[prevIdx]
		prevLast, _ := prev.LastAddress()
		fitsNext := !hasNext || rel < s.data[nextIdx].Address()
		if prevLast+1 == rel && prev.DataSize() < MaxRecordDataSize && fitsNext {
			prev.data = append(prev.data, value)
			prev.UpdateChecksum()
			s.Compact()
			return nil
		}
	}
	if hasNext {
		next := s.data[nextIdx]
		if next.Address() > 0 && next.Address()-1 == rel && next.DataSize() < MaxRecordDataSize {
			next.data = append([]byte{value}, next.data...)
			next.SetAddress(rel)
			next.UpdateChecksum()
			s.Compact()
			return nil
		}
	}

	nr, err := NewDataRecord(rel, []byte{value})
	if err != nil {
		return err
	}
	s.data = append(s.data, nil)
	copy(s.data[insertAt+1:], s.data[insertAt:])
	s.data[insertAt] = nr
	return nil
}

// SetRange writes bytes starting at absolute. It fails with ErrOutOfRange
// if any byte would fall outside the section's window.
func (s *Section) SetRange(absolute uint32, values []byte) error {
	if len(values) == 0 {
		return nil
	}
	if err := s.replaceRange(absolute, uint32(len(values)), values); err != nil {
		return err
	}
	s.Compact()
	return nil
}

// Fill writes count copies of value starting at absolute.
func (s *Section) Fill(absolute uint32, count int, value byte) error {
	if count <= 0 {
		return fmt.Errorf("%w: fill count must be positive", ErrOutOfRange)
	}
	values := make([]byte, count)
	for i := range values {
		values[i] = value
	}
	return s.SetRange(absolute, values)
}

// Clear removes count bytes starting at absolute, trimming, splitting, or
// deleting records as needed, and returns the number of bytes that had
// actually been covered by data within that range.
func (s *Section) Clear(absolute uint32, count int) (int, error) {
	if count <= 0 {
		return 0, fmt.Errorf("%w: clear count must be positive", ErrOutOfRange)
	}
	return s.replaceRangeCount(absolute, uint32(count))
}

// replaceRange removes any existing coverage of [absolute, absolute+size-1]
// and installs new data records covering exactly that span with values.
func (s *Section) replaceRange(absolute uint32, size uint32, values []byte) error {
	relStart, err := s.relativeOf(absolute)
	if err != nil {
		return err
	}
	if size == 0 {
		return nil
	}
	lastAbsolute := absolute + size - 1
	relEnd, err := s.relativeOf(lastAbsolute)
	if err != nil {
		return err
	}
	if uint32(relEnd)-uint32(relStart)+1 != size {
		return fmt.Errorf("%w: range [0x%X, 0x%X] is not contiguous in this section's window", ErrOutOfRange, absolute, lastAbsolute)
	}

	s.removeOverlap(relStart, relEnd)

	const chunk = MaxRecordDataSize
	for off := uint32(0); off < size; off += chunk {
		end := off + chunk
		if end > size {
			end = size
		}
		rec, err := NewDataRecord(relStart+uint16(off), values[off:end])
		if err != nil {
			return err
		}
		idx := s.insertionIndex(rec.Address())
		s.data = append(s.data, nil)
		copy(s.data[idx+1:], s.data[idx:])
		s.data[idx] = rec
	}
	return nil
}

// replaceRangeCount removes coverage of [absolute, absolute+count-1]
// without installing any replacement data, returning bytes actually
// removed.
func (s *Section) replaceRangeCount(absolute uint32, count uint32) (int, error) {
	relStart, err := s.relativeOf(absolute)
	if err != nil {
		return 0, err
	}
	lastAbsolute := absolute + count - 1
	relEnd, err := s.relativeOf(lastAbsolute)
	if err != nil {
		return 0, err
	}
	return s.removeOverlap(relStart, relEnd), nil
}

// removeOverlap deletes or trims every data record overlapping
// [relStart, relEnd], returning the number of overlapping bytes removed.
func (s *Section) removeOverlap(relStart, relEnd uint16) int {
	removed := 0
	kept := make([]*Record, 0, len(s.data))
	for _, r := range s.data {
		rStart := r.Address()
		rLast, _ := r.LastAddress()
		if rLast < relStart || rStart > relEnd {
			kept = append(kept, r)
			continue
		}

		overlapStart := rStart
		if relStart > overlapStart {
			overlapStart = relStart
		}
		overlapEnd := rLast
		if relEnd < overlapEnd {
			overlapEnd = relEnd
		}
		removed += int(overlapEnd-overlapStart) + 1

		data := r.Data()
		if rStart < relStart {
			left, _ := NewDataRecord(rStart, data[:relStart-rStart])
			kept = append(kept, left)
		}
		if rLast > relEnd {
			right, _ := NewDataRecord(relEnd+1, data[relEnd-rStart+1:])
			kept = append(kept, right)
		}
	}
	s.data = kept
	sort.Slice(s.data, func(i, j int) bool { return s.data[i].Address() < s.data[j].Address() })
	return removed
}

// FindAddress returns the index of the data record covering absolute.
func (s *Section) FindAddress(absolute uint32) (int, bool) {
	rel, err := s.relativeOf(absolute)
	if err != nil {
		return -1, false
	}
	return s.findCoveringIndex(rel)
}

// FindPreviousRecord returns the index of the last data record whose
// address is at or before absolute.
func (s *Section) FindPreviousRecord(absolute uint32) (int, bool) {
	rel, err := s.relativeOf(absolute)
	if err != nil {
		return -1, false
	}
	idx := s.insertionIndex(rel)
	if idx == 0 {
		return -1, false
	}
	return idx - 1, true
}

// FindNextRecord returns the index of the first data record whose address
// is at or after absolute.
func (s *Section) FindNextRecord(absolute uint32) (int, bool) {
	rel, err := s.relativeOf(absolute)
	if err != nil {
		return -1, false
	}
	for i, r := range s.data {
		if r.Address() >= rel {
			return i, true
		}
	}
	return -1, false
}

// CanPushRecord reports whether PushRecord would succeed for rec.
func (s *Section) CanPushRecord(rec *Record) bool {
	if !s.kind.isDataBearing() || rec.Kind() != RecordData {
		return false
	}
	if len(s.data) == 0 {
		return true
	}
	last := s.data[len(s.data)-1]
	lastAddr, _ := last.LastAddress()
	return rec.Address() > lastAddr
}

// PushRecord appends rec to the section. It is allowed only if the section
// is data-bearing, rec is a Data record, and rec's interval lies strictly
// after the current last record and does not overlap it.
func (s *Section) PushRecord(rec *Record) error {
	if !s.CanPushRecord(rec) {
		return fmt.Errorf("%w: record at 0x%04X cannot be appended to section %s", ErrIntersect, rec.Address(), s.kind)
	}
	s.data = append(s.data, rec)
	return nil
}

// Compact merges every pair of adjacent data records where
// a.LastAddress()+1 == b.Address() and the combined payload fits within
// MaxRecordDataSize.
func (s *Section) Compact() {
	if len(s.data) < 2 {
		return
	}
	merged := make([]*Record, 0, len(s.data))
	cur := s.data[0]
	for _, next := range s.data[1:] {
		curLast, _ := cur.LastAddress()
		if curLast+1 == next.Address() && cur.DataSize()+next.DataSize() <= MaxRecordDataSize {
			combined := append(cur.Data(), next.Data()...)
			nr, _ := NewDataRecord(cur.Address(), combined)
			cur = nr
			continue
		}
		merged = append(merged, cur)
		cur = next
	}
	merged = append(merged, cur)
	s.data = merged
}

// AddressMap returns the union of every data record's absolute address
// range, uncompacted and in record order. A record that crosses the I16HEX
// wraparound point contributes two ranges, [start, MaxSegmentAbsolute] and
// [0, end]. Start*/EndOfFile sections return nil.
func (s *Section) AddressMap() []AddrRange {
	if !s.kind.isDataBearing() {
		return nil
	}
	ranges := make([]AddrRange, 0, len(s.data))
	for _, r := range s.data {
		last, _ := r.LastAddress()
		start, _ := s.absoluteOf(r.Address())
		end, _ := s.absoluteOf(last)
		if end < start {
			ranges = append(ranges, AddrRange{Start: start, End: MaxSegmentAbsolute}, AddrRange{Start: 0, End: end})
			continue
		}
		ranges = append(ranges, AddrRange{Start: start, End: end})
	}
	return ranges
}

// DataMap returns the compacted AddressMap.
func (s *Section) DataMap() []AddrRange {
	ranges := s.AddressMap()
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })
	return CompactRanges(ranges)
}

// Records returns the records of this section in emission order: if the
// section carries a base register, its extension record is emitted first,
// followed by all data records in address order. Start*/EndOfFile sections
// return their single record.
func (s *Section) Records() []*Record {
	switch s.kind {
	case SectionDataOnly:
		out := make([]*Record, len(s.data))
		copy(out, s.data)
		return out
	case SectionExtendedSegmentAddress:
		out := make([]*Record, 0, len(s.data)+1)
		out = append(out, NewExtendedSegmentAddressRecord(s.base))
		return append(out, s.data...)
	case SectionExtendedLinearAddress:
		out := make([]*Record, 0, len(s.data)+1)
		out = append(out, NewExtendedLinearAddressRecord(s.base))
		return append(out, s.data...)
	case SectionEndOfFile, SectionStartSegmentAddress, SectionStartLinearAddress:
		return []*Record{s.single}
	default:
		return nil
	}
}

// ConvertTo reshapes the section into a different kind, discarding any
// records incompatible with the new kind.
func (s *Section) ConvertTo(kind SectionKind, params ...uint32) (*Section, error) {
	switch kind {
	case SectionDataOnly:
		return &Section{kind: SectionDataOnly, data: append([]*Record(nil), s.data...)}, nil
	case SectionExtendedSegmentAddress:
		if len(params) < 1 {
			return nil, fmt.Errorf("%w: extended segment address section needs a base", ErrOutOfRange)
		}
		return &Section{kind: kind, base: uint16(params[0]), data: append([]*Record(nil), s.data...)}, nil
	case SectionExtendedLinearAddress:
		if len(params) < 1 {
			return nil, fmt.Errorf("%w: extended linear address section needs a base", ErrOutOfRange)
		}
		return &Section{kind: kind, base: uint16(params[0]), data: append([]*Record(nil), s.data...)}, nil
	case SectionEndOfFile:
		return NewEndOfFileSection(), nil
	case SectionStartSegmentAddress:
		if len(params) < 2 {
			return nil, fmt.Errorf("%w: start segment address section needs CS and IP", ErrOutOfRange)
		}
		return NewStartSegmentAddressSection(uint16(params[0]), uint16(params[1])), nil
	case SectionStartLinearAddress:
		if len(params) < 1 {
			return nil, fmt.Errorf("%w: start linear address section needs EIP", ErrOutOfRange)
		}
		return NewStartLinearAddressSection(params[0]), nil
	default:
		return nil, fmt.Errorf("%w: unknown section kind %d", ErrMalformed, int(kind))
	}
}

// VariantCompatible reports whether the section's kind is legal within a
// group of the given variant.
func (s *Section) VariantCompatible(v Variant) bool {
	switch v {
	case I8HEX:
		return s.kind == SectionDataOnly || s.kind == SectionEndOfFile
	case I16HEX:
		return s.kind == SectionExtendedSegmentAddress || s.kind == SectionStartSegmentAddress || s.kind == SectionEndOfFile
	case I32HEX:
		return s.kind == SectionExtendedLinearAddress || s.kind == SectionStartLinearAddress || s.kind == SectionEndOfFile
	default:
		return false
	}
}
