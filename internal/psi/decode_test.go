package psi

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/snapetech/dvbsi/internal/dvbsierr"
	"github.com/snapetech/dvbsi/internal/section"
	"github.com/snapetech/dvbsi/internal/tspacket"
)

func TestDecode_EmptyInput(t *testing.T) {
	_, err := Decode(nil, ClassPAT)
	if !errors.Is(err, dvbsierr.ErrTruncatedSection) {
		t.Fatalf("got %v, want ErrTruncatedSection", err)
	}
}

func TestDecode_PointerFieldPastEnd(t *testing.T) {
	_, err := Decode([]byte{0x05, 0x00}, ClassPAT)
	if !errors.Is(err, dvbsierr.ErrTruncatedSection) {
		t.Fatalf("got %v, want ErrTruncatedSection", err)
	}
}

func TestDecode_DeclaredLengthExceedsInput(t *testing.T) {
	raw := []byte{0x00, TableIDPAT, 0x0F, 0xFF} // section_length = 0xFFF, far more bytes than provided
	_, err := Decode(raw, ClassPAT)
	if !errors.Is(err, dvbsierr.ErrTruncatedSection) {
		t.Fatalf("got %v, want ErrTruncatedSection", err)
	}
}

func TestDecode_UnexpectedTableID(t *testing.T) {
	raw := buildSection(TableIDEITPFActual, 1, 0, true, 0, 0, nil, true)
	_, err := Decode(raw, ClassPAT)
	if !errors.Is(err, dvbsierr.ErrUnexpectedTableID) {
		t.Fatalf("got %v, want ErrUnexpectedTableID", err)
	}
}

// TestDecode_PacketToTableEndToEnd exercises the full pipeline
// end to end: a TS packet carrying a PAT section, followed by a null packet
// that lets FindSync confirm the sync, arrives after leading garbage, is
// framed by tspacket, reassembled by section, and decoded by psi.
func TestDecode_PacketToTableEndToEnd(t *testing.T) {
	entries := []ProgramAssociation{{ProgramNumber: 0, PID: 16}, {ProgramNumber: 1, PID: 101}}
	sec := buildSection(TableIDPAT, 1, 0, true, 0, 0, buildPATBody(entries), true)

	garbage := make([]byte, 50)
	for i := range garbage {
		garbage[i] = 0xAA
	}

	pkt1 := make([]byte, tspacket.PacketLen)
	pkt1[0] = tspacket.SyncByte
	pkt1[1] = 0x40 // PUSI set, PID high bits 0
	pkt1[2] = 0x00 // PID = 0 (PAT PID)
	pkt1[3] = 0x10 // payload-only, cc=0
	copy(pkt1[4:], sec)

	null := make([]byte, tspacket.PacketLen)
	null[0] = tspacket.SyncByte
	null[1] = 0x1F // PID 0x1FFF (null packet), no PUSI
	null[2] = 0xFF
	null[3] = 0x10 // payload-only, cc=0

	buf := append(garbage, pkt1...)
	buf = append(buf, null...)

	packets := tspacket.Parse(buf, 0, len(buf), 0x0000)
	if len(packets) != 1 {
		t.Fatalf("got %d packets, want 1", len(packets))
	}
	payload := section.FirstSectionPayload(packets, 0x0000)

	table, err := Decode(payload, ClassPAT)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if table.Kind != KindPAT {
		t.Fatalf("got Kind %v, want KindPAT", table.Kind)
	}
	if len(table.PAT.Programs) != 1 {
		t.Fatalf("got %d programs, want 1", len(table.PAT.Programs))
	}
}

func TestDecodeStrict_RejectsCRCMismatch(t *testing.T) {
	entries := []ProgramAssociation{{ProgramNumber: 0, PID: 16}}
	raw := buildSection(TableIDPAT, 1, 0, true, 0, 0, buildPATBody(entries), false)
	_, err := DecodeStrict(raw, ClassPAT)
	if !errors.Is(err, dvbsierr.ErrCrcMismatch) {
		t.Fatalf("got %v, want ErrCrcMismatch", err)
	}
}

func TestDecodeStrict_AcceptsValidCRC(t *testing.T) {
	entries := []ProgramAssociation{{ProgramNumber: 0, PID: 16}}
	raw := buildSection(TableIDPAT, 1, 0, true, 0, 0, buildPATBody(entries), true)
	if _, err := DecodeStrict(raw, ClassPAT); err != nil {
		t.Fatalf("DecodeStrict: %v", err)
	}
}

func TestDecode_DescriptorOverflowIsCounted(t *testing.T) {
	// A service_descriptor whose declared length (10) runs past its 5-byte
	// enclosing descriptor loop must still decode (clipped) and be
	// reflected in Header.DescriptorOverflows.
	overflowDesc := []byte{descriptorTagService, 10, byte(DigitalTelevisionService), 200, 'x'}
	body := []byte{0x00, 0x00, 0xFF}
	entry := []byte{0x00, 0x01, 0x03}
	lenField := (uint16(RunningStatusRunning)&0x07)<<13 | uint16(len(overflowDesc))&0x0FFF
	lb := make([]byte, 2)
	binary.BigEndian.PutUint16(lb, lenField)
	entry = append(entry, lb...)
	entry = append(entry, overflowDesc...)
	body = append(body, entry...)

	raw := buildSection(TableIDSDTActual, 1, 0, true, 0, 0, body, true)
	table, err := Decode(raw, ClassSDT)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if table.Header.DescriptorOverflows < 1 {
		t.Errorf("DescriptorOverflows = %d, want >= 1", table.Header.DescriptorOverflows)
	}
}

// TestDecode_ZeroSectionLengthYieldsEmptyRecord checks that a section
// with section_length=0 yields an empty record without error.
func TestDecode_ZeroSectionLengthYieldsEmptyRecord(t *testing.T) {
	raw := []byte{0x00, TableIDPAT, 0x00, 0x00} // pointer field, table_id, length=0
	table, err := Decode(raw, ClassPAT)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if table.Kind != KindPAT {
		t.Fatalf("Kind = %v, want KindPAT", table.Kind)
	}
	if table.PAT == nil || len(table.PAT.Programs) != 0 {
		t.Errorf("PAT = %+v, want an empty record", table.PAT)
	}
}

func TestDecode_DescriptorLoopClipsToBoundary(t *testing.T) {
	// A descriptor claiming a 20-byte body when only 3 bytes remain in the
	// loop must be clipped rather than read out of bounds.
	data := []byte{0x40, 20, 'o', 'n', 'e'}
	var got []byte
	walkDescriptors(data, len(data), func(tag byte, body []byte) {
		got = body
	})
	if string(got) != "one" {
		t.Errorf("got %q, want clipped %q", got, "one")
	}
}
