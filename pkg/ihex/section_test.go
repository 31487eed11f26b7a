package ihex

import "testing"

func TestSectionDataOnlySetAndGet(t *testing.T) {
	s := NewDataOnlySection()
	if err := s.Set(0x10, 0xAB); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	got, err := s.Get(0x10, 0xFF)
	if err != nil || got != 0xAB {
		t.Errorf("Get(0x10) = (0x%02X, %v), want (0xAB, nil)", got, err)
	}
	got, err = s.Get(0x11, 0xFF)
	if err != nil || got != 0xFF {
		t.Errorf("Get(0x11) (uncovered) = (0x%02X, %v), want (0xFF, nil)", got, err)
	}
}

func TestSectionSetExtendsAdjacentRecord(t *testing.T) {
	s := NewDataOnlySection()
	for i := 0; i < 4; i++ {
		if err := s.Set(uint32(i), byte(i)); err != nil {
			t.Fatalf("Set(%d) error: %v", i, err)
		}
	}
	if len(s.data) != 1 {
		t.Fatalf("expected adjacent single-byte sets to merge into one record, got %d records", len(s.data))
	}
	if s.data[0].DataSize() != 4 {
		t.Errorf("merged record size = %d, want 4", s.data[0].DataSize())
	}
}

func TestSectionSetRangeAndClearRoundTrip(t *testing.T) {
	s := NewDataOnlySection()
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	if err := s.SetRange(0x100, payload); err != nil {
		t.Fatalf("SetRange error: %v", err)
	}
	before := s.DataMap()

	if err := s.Fill(0x200, 4, 0xEE); err != nil {
		t.Fatalf("Fill error: %v", err)
	}
	removed, err := s.Clear(0x200, 4)
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if removed != 4 {
		t.Errorf("Clear removed = %d, want 4", removed)
	}
	after := s.DataMap()
	if len(before) != len(after) {
		t.Fatalf("fill+clear did not restore data map: before=%+v after=%+v", before, after)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("fill+clear did not restore data map at %d: before=%+v after=%+v", i, before[i], after[i])
		}
	}
}

func TestSectionSetRangeSplitsAcross255ByteRecords(t *testing.T) {
	s := NewDataOnlySection()
	payload := make([]byte, 300)
	for i := range payload {
		payload[i] = byte(i)
	}
	if err := s.SetRange(0, payload); err != nil {
		t.Fatalf("SetRange error: %v", err)
	}
	for _, r := range s.data {
		if r.DataSize() > MaxRecordDataSize {
			t.Errorf("record of size %d exceeds MaxRecordDataSize", r.DataSize())
		}
	}
	for i, want := range payload {
		got, err := s.Get(uint32(i), 0)
		if err != nil || got != want {
			t.Errorf("Get(%d) = (0x%02X, %v), want (0x%02X, nil)", i, got, err, want)
		}
	}
}

func TestSectionPushRecordOrdering(t *testing.T) {
	s := NewDataOnlySection()
	r1, _ := NewDataRecord(0, []byte{1, 2})
	r2, _ := NewDataRecord(2, []byte{3, 4})
	if !s.CanPushRecord(r1) {
		t.Fatalf("expected to be able to push first record")
	}
	if err := s.PushRecord(r1); err != nil {
		t.Fatalf("PushRecord error: %v", err)
	}
	if !s.CanPushRecord(r2) {
		t.Fatalf("expected to be able to push adjacent record")
	}
	if err := s.PushRecord(r2); err != nil {
		t.Fatalf("PushRecord error: %v", err)
	}
	overlapping, _ := NewDataRecord(0, []byte{9})
	if s.CanPushRecord(overlapping) {
		t.Errorf("expected CanPushRecord to reject an overlapping record")
	}
}

func TestSectionExtendedSegmentAddressWindow(t *testing.T) {
	s := NewExtendedSegmentAddressSection(0xFFFF)
	windows := s.Window()
	if len(windows) != 2 {
		t.Fatalf("expected wraparound window to have 2 ranges, got %+v", windows)
	}
	if err := s.Set(0xFFFF5, 0x42); err != nil {
		t.Fatalf("Set in high half of wraparound window: %v", err)
	}
	if err := s.Set(5, 0x43); err != nil {
		t.Fatalf("Set in low half of wraparound window: %v", err)
	}
	if _, err := s.Get(0xFFF0, 0); err == nil {
		t.Errorf("expected address outside wraparound window to error")
	}
	got, err := s.Get(0xFFFFF, 0xFF)
	if err != nil || got != 0xFF {
		t.Errorf("Get(0xFFFFF) (uncovered) = (0x%02X, %v), want (0xFF, nil)", got, err)
	}
}

func TestSectionRecordsEmissionOrder(t *testing.T) {
	s := NewExtendedLinearAddressSection(0x0001)
	_ = s.Set(0x10000, 0xAA)
	records := s.Records()
	if len(records) != 2 {
		t.Fatalf("expected extension record + 1 data record, got %d", len(records))
	}
	if records[0].Kind() != RecordExtendedLinearAddress {
		t.Errorf("first record kind = %v, want RecordExtendedLinearAddress", records[0].Kind())
	}
}

func TestSectionFromRecordDataOpensDataOnly(t *testing.T) {
	r, _ := NewDataRecord(0x10, []byte{1})
	s, err := SectionFromRecord(r)
	if err != nil {
		t.Fatalf("SectionFromRecord error: %v", err)
	}
	if s.Kind() != SectionDataOnly {
		t.Errorf("Kind() = %v, want SectionDataOnly", s.Kind())
	}
}

func TestSectionFindPreviousAndNextRecord(t *testing.T) {
	s := NewDataOnlySection()
	r1, _ := NewDataRecord(0x10, []byte{1, 2})
	r2, _ := NewDataRecord(0x20, []byte{3, 4})
	if err := s.PushRecord(r1); err != nil {
		t.Fatalf("PushRecord r1 error: %v", err)
	}
	if err := s.PushRecord(r2); err != nil {
		t.Fatalf("PushRecord r2 error: %v", err)
	}

	if idx, ok := s.FindPreviousRecord(0x05); ok {
		t.Errorf("FindPreviousRecord(0x05) = (%d, true), want not found", idx)
	}
	if idx, ok := s.FindPreviousRecord(0x18); !ok || idx != 0 {
		t.Errorf("FindPreviousRecord(0x18) = (%d, %v), want (0, true)", idx, ok)
	}
	if idx, ok := s.FindPreviousRecord(0x25); !ok || idx != 1 {
		t.Errorf("FindPreviousRecord(0x25) = (%d, %v), want (1, true)", idx, ok)
	}

	if idx, ok := s.FindNextRecord(0x00); !ok || idx != 0 {
		t.Errorf("FindNextRecord(0x00) = (%d, %v), want (0, true)", idx, ok)
	}
	if idx, ok := s.FindNextRecord(0x19); !ok || idx != 1 {
		t.Errorf("FindNextRecord(0x19) = (%d, %v), want (1, true)", idx, ok)
	}
	if idx, ok := s.FindNextRecord(0x30); ok {
		t.Errorf("FindNextRecord(0x30) = (%d, true), want not found", idx)
	}
}

func TestSectionSetFillsGapBetweenNonAdjacentRecords(t *testing.T) {
	s := NewDataOnlySection()
	if err := s.Set(0x10, 0xAA); err != nil {
		t.Fatalf("Set(0x10) error: %v", err)
	}
	if err := s.Set(0x20, 0xBB); err != nil {
		t.Fatalf("Set(0x20) error: %v", err)
	}
	if err := s.Set(0x18, 0xCC); err != nil {
		t.Fatalf("Set(0x18) error: %v", err)
	}
	if len(s.data) != 3 {
		t.Fatalf("expected 3 distinct records after a non-adjacent insert, got %d", len(s.data))
	}
	got, err := s.Get(0x18, 0)
	if err != nil || got != 0xCC {
		t.Errorf("Get(0x18) = (0x%02X, %v), want (0xCC, nil)", got, err)
	}
}

func TestSectionVariantCompatible(t *testing.T) {
	tests := []struct {
		kind    SectionKind
		variant Variant
		want    bool
	}{
		{SectionDataOnly, I8HEX, true},
		{SectionDataOnly, I16HEX, false},
		{SectionExtendedSegmentAddress, I16HEX, true},
		{SectionExtendedLinearAddress, I32HEX, true},
		{SectionEndOfFile, I8HEX, true},
		{SectionEndOfFile, I32HEX, true},
	}
	for _, tt := range tests {
		s := &Section{kind: tt.kind}
		if got := s.VariantCompatible(tt.variant); got != tt.want {
			t.Errorf("VariantCompatible(%v) for kind %v = %v, want %v", tt.variant, tt.kind, got, tt.want)
		}
	}
}
