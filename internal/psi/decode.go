package psi

import (
	"encoding/binary"
	"fmt"

	"github.com/snapetech/dvbsi/internal/crc"
	"github.com/snapetech/dvbsi/internal/dvbsierr"
)

// maxSectionLength is the largest section_length value the 12-bit field can
// validly carry.
const maxSectionLength = 4093

// Decode parses a logical section: sectionBytes arrives with a leading
// pointer field; from the table start, it reads the common section
// header, validates the table ID against expectedClass, computes and
// checks the MPEG-2 CRC32, and dispatches to the per-table body parser.
//
// A CRC mismatch is non-fatal: Decode still returns the parsed Table with
// Header.CRC32Valid set to false rather than an error.
func Decode(sectionBytes []byte, expectedClass PIDClass) (*Table, error) {
	if len(sectionBytes) < 1 {
		return nil, fmt.Errorf("psi: decode: %w: empty input", dvbsierr.ErrTruncatedSection)
	}
	pointerField := sectionBytes[0]
	tableStart := 1 + int(pointerField)
	if tableStart > len(sectionBytes) {
		return nil, fmt.Errorf("psi: decode: %w: pointer field skips past end of input", dvbsierr.ErrTruncatedSection)
	}

	header, body, err := readCommonHeader(sectionBytes, tableStart, pointerField, expectedClass)
	if err != nil {
		return nil, err
	}

	table := &Table{}

	var overflows int
	switch {
	case header.TableID == TableIDPAT:
		table.Kind = KindPAT
		table.PAT = decodePATBody(header, body)
	case header.TableID == TableIDNITActual || header.TableID == TableIDNITOther:
		table.Kind = KindNIT
		table.NIT, overflows = decodeNITBody(header, body)
	case header.TableID == TableIDSDTActual || header.TableID == TableIDSDTOther:
		table.Kind = KindSDT
		table.SDT, overflows = decodeSDTBody(header, body)
	default:
		table.Kind = KindEIT
		table.EIT, overflows = decodeEITBody(header, body)
	}
	header.DescriptorOverflows = overflows
	table.Header = header
	switch table.Kind {
	case KindPAT:
		table.PAT.Header = header
	case KindNIT:
		table.NIT.Header = header
	case KindSDT:
		table.SDT.Header = header
	case KindEIT:
		table.EIT.Header = header
	}

	return table, nil
}

// DecodeStrict behaves like Decode but additionally rejects a section whose
// computed CRC32 does not match its stored trailing CRC. Most callers treat
// a CRC mismatch as non-fatal and just check Header.CRC32Valid, but a
// caller decoding from an untrusted or noisy source can ask for a hard
// failure instead.
func DecodeStrict(sectionBytes []byte, expectedClass PIDClass) (*Table, error) {
	table, err := Decode(sectionBytes, expectedClass)
	if err != nil {
		return nil, err
	}
	if !table.Header.CRC32Valid {
		return nil, fmt.Errorf("psi: decode strict: %w: computed 0x%08x, stored 0x%08x",
			dvbsierr.ErrCrcMismatch, table.Header.ComputedCRC32, table.Header.StoredCRC32)
	}
	return table, nil
}

// readCommonHeader parses the section header common to every table and
// returns the body bytes (everything between the common header and the
// trailing CRC).
func readCommonHeader(data []byte, tableStart int, pointerField byte, expectedClass PIDClass) (SectionHeader, []byte, error) {
	if tableStart+3 > len(data) {
		return SectionHeader{}, nil, fmt.Errorf("psi: decode: %w: not enough bytes for section header", dvbsierr.ErrTruncatedSection)
	}
	tableID := data[tableStart]
	if !tableIDAllowed(expectedClass, tableID) {
		return SectionHeader{}, nil, fmt.Errorf("psi: decode: %w: table_id 0x%02x not valid for this PID class", dvbsierr.ErrUnexpectedTableID, tableID)
	}

	lengthField := binary.BigEndian.Uint16(data[tableStart+1 : tableStart+3])
	ssi := lengthField&0x8000 != 0
	private := lengthField&0x4000 != 0
	sectionLength := int(lengthField & 0x0FFF)
	if sectionLength > maxSectionLength {
		return SectionHeader{}, nil, fmt.Errorf("psi: decode: %w: section_length %d exceeds maximum %d", dvbsierr.ErrTruncatedSection, sectionLength, maxSectionLength)
	}

	totalLen := 3 + sectionLength
	if tableStart+totalLen > len(data) {
		return SectionHeader{}, nil, fmt.Errorf("psi: decode: %w: declared section_length %d needs %d bytes, have %d", dvbsierr.ErrTruncatedSection, sectionLength, totalLen, len(data)-tableStart)
	}

	// section_length=0 yields an empty record without error — there are no
	// table_id_extension/version/section-number/CRC bytes to read at all.
	if sectionLength == 0 {
		return SectionHeader{
			PointerField:           pointerField,
			TableID:                tableID,
			SectionSyntaxIndicator: ssi,
			Private:                private,
		}, nil, nil
	}
	if sectionLength < 9 { // table_id_extension(2)+version/current(1)+section_number(1)+last_section_number(1)+CRC(4)
		return SectionHeader{}, nil, fmt.Errorf("psi: decode: %w: section_length %d too short for common header", dvbsierr.ErrTruncatedSection, sectionLength)
	}

	sectionBytes := data[tableStart : tableStart+totalLen]
	bodyWithCRC := sectionBytes[3:] // skip table_id + 2 length bytes
	crcBytes := sectionBytes[len(sectionBytes)-4:]
	storedCRC := binary.BigEndian.Uint32(crcBytes)
	computedCRC := crc.Checksum(sectionBytes[:len(sectionBytes)-4])

	tableIDExtension := binary.BigEndian.Uint16(bodyWithCRC[0:2])
	versionByte := bodyWithCRC[2]
	version := (versionByte >> 1) & 0x1F
	current := versionByte&0x01 != 0
	sectionNumber := bodyWithCRC[3]
	lastSectionNumber := bodyWithCRC[4]

	body := bodyWithCRC[5 : len(bodyWithCRC)-4]

	header := SectionHeader{
		PointerField:           pointerField,
		TableID:                tableID,
		SectionSyntaxIndicator: ssi,
		Private:                private,
		SectionLength:          sectionLength,
		TableIDExtension:       tableIDExtension,
		Version:                version,
		CurrentIndicator:       current,
		SectionNumber:          sectionNumber,
		LastSectionNumber:      lastSectionNumber,
		CRC32Valid:             computedCRC == storedCRC,
		StoredCRC32:            storedCRC,
		ComputedCRC32:          computedCRC,
	}
	return header, body, nil
}

// walkDescriptors iterates the TLV descriptor loop in data[0:loopLen]
// (clipped to len(data)), invoking fn for each descriptor encountered, and
// returns how many descriptors had to be clipped because their declared
// length ran past the loop boundary. A clipped descriptor is still passed
// to fn with its body cut at the boundary; since it reaches the boundary,
// it is the last descriptor of the walk.
func walkDescriptors(data []byte, loopLen int, fn func(tag byte, body []byte)) int {
	end := loopLen
	if end > len(data) {
		end = len(data)
	}
	overflows := 0
	pos := 0
	for pos+2 <= end {
		tag := data[pos]
		length := int(data[pos+1])
		pos += 2
		bodyEnd := pos + length
		if bodyEnd > end {
			bodyEnd = end
			overflows++
		}
		fn(tag, data[pos:bodyEnd])
		pos = bodyEnd
	}
	return overflows
}
