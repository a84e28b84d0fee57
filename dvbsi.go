package dvbsi

import (
	"github.com/snapetech/dvbsi/internal/psi"
	"github.com/snapetech/dvbsi/internal/section"
	"github.com/snapetech/dvbsi/internal/tspacket"
)

// Packet is a single decoded 188-byte MPEG-TS transport packet.
type Packet = tspacket.TransportPacket

// PIDClass names which table family a PID is expected to carry, used to
// validate a decoded section's table_id against the PID it arrived on.
type PIDClass = psi.PIDClass

// Table is the decoded form of a PSI/SI section: a tagged variant carrying
// exactly one of PAT, NIT, SDT, or EIT depending on Kind.
type Table = psi.Table

// Well-known PID classes for the four table kinds this package decodes.
const (
	ClassPAT = psi.ClassPAT
	ClassNIT = psi.ClassNIT
	ClassSDT = psi.ClassSDT
	ClassEIT = psi.ClassEIT
)

// FindSync locates the offset of a confirmed sync byte in buf[start:end]
// (confirmed by also finding a sync byte exactly one packet length later).
func FindSync(buf []byte, start, end int) (int, bool) {
	return tspacket.FindSync(buf, start, end)
}

// DecodePackets splits buf[start:end] into transport packets, starting at
// the first confirmed sync byte (see FindSync) and stopping at the first
// packet position that does not hold a sync byte; sync is not searched for
// again after that. pidFilter < 0 retains every PID; pidFilter >= 0 retains
// only packets matching that PID.
func DecodePackets(buf []byte, start, end int, pidFilter int) []Packet {
	return tspacket.Parse(buf, start, end, pidFilter)
}

// SectionPayload reassembles the first logical section carried by pid
// across packets, in arrival order, into one contiguous byte slice.
func SectionPayload(packets []Packet, pid uint16) []byte {
	return section.FirstSectionPayload(packets, pid)
}

// SectionPayloadsByPID reassembles every logical section carried by pid
// across packets into a map keyed by section index.
func SectionPayloadsByPID(packets []Packet, pid uint16) map[int][]byte {
	return section.PayloadsByPID(packets, pid)
}

// DecodeSection parses one section's bytes (pointer field included) into a
// Table, validating its table_id against expectedClass. A CRC32 mismatch is
// reported on Table.Header.CRC32Valid rather than returned as an error; use
// DecodeSectionStrict to reject on mismatch instead.
func DecodeSection(sectionBytes []byte, expectedClass PIDClass) (*Table, error) {
	return psi.Decode(sectionBytes, expectedClass)
}

// DecodeSectionStrict behaves like DecodeSection but returns an error when
// the section's computed CRC32 does not match its stored trailing CRC.
func DecodeSectionStrict(sectionBytes []byte, expectedClass PIDClass) (*Table, error) {
	return psi.DecodeStrict(sectionBytes, expectedClass)
}

// ExtractTable reassembles pid's first logical section out of packets and
// decodes it in one step, equivalent to calling FirstSectionPayload
// followed by DecodeSection. Returns (nil, nil) if pid carried no section
// payload at all (no PUSI packet ever seen for it), rather than raising an
// error for an absent PID.
func ExtractTable(packets []Packet, pid uint16, expectedClass PIDClass) (*Table, error) {
	payload := section.FirstSectionPayload(packets, pid)
	if len(payload) == 0 {
		return nil, nil
	}
	return psi.Decode(payload, expectedClass)
}

// ServiceWithPMT is one row of the ServicesToPMTMap join: an SDT service
// descriptor paired with the PMT PID its matching program association
// names.
type ServiceWithPMT struct {
	Service psi.Service
	PMTPID  uint16
}

// ServicesToPMTMap joins an SDT's service descriptors against a PAT's
// program associations on program_number (== service_id on the wire). The
// join order is SDT-driven: the result is an ordered slice that preserves
// the SDT's service order, and an SDT entry without a matching PAT entry
// is omitted.
func ServicesToPMTMap(sdt *psi.SDT, pat *psi.PAT) []ServiceWithPMT {
	byProgram := make(map[uint16]uint16, len(pat.Programs))
	for _, assoc := range pat.Programs {
		byProgram[assoc.ProgramNumber] = assoc.PID
	}

	var out []ServiceWithPMT
	for _, svc := range sdt.Services {
		if pmtPID, ok := byProgram[svc.ServiceID]; ok {
			out = append(out, ServiceWithPMT{Service: svc, PMTPID: pmtPID})
		}
	}
	return out
}
