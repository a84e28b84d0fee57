// Package fixtures builds small, self-contained MPEG-TS captures for tests
// and examples: realistic PAT/NIT/SDT/EIT scenarios encoded as real TS
// packets rather than bare section bytes, so a caller can exercise the
// whole tspacket -> section -> psi pipeline without a live multiplex.
//
// No captured-off-air binary sample was available, so this package
// constructs the captures programmatically instead of go:embedding a
// recorded one.
package fixtures

import (
	"encoding/binary"

	"github.com/snapetech/dvbsi/internal/crc"
	"github.com/snapetech/dvbsi/internal/tspacket"
)

// Well-known PIDs used by the fixture captures.
const (
	PIDPAT uint16 = 0x0000
	PIDNIT uint16 = 0x0010
	PIDSDT uint16 = 0x0011
	PIDEIT uint16 = 0x0012
)

// packTSPacket wraps a single TS packet around up to 184 bytes of payload,
// padding with 0xFF stuffing bytes the way a real multiplexer pads the last
// packet of a section.
func packTSPacket(pid uint16, pusi bool, continuity byte, payload []byte) []byte {
	pkt := make([]byte, tspacket.PacketLen)
	pkt[0] = tspacket.SyncByte
	b1 := byte(pid>>8) & 0x1F
	if pusi {
		b1 |= 0x40
	}
	pkt[1] = b1
	pkt[2] = byte(pid)
	pkt[3] = 0x10 | (continuity & 0x0F) // payload-only adaptation field control
	n := copy(pkt[4:], payload)
	for i := 4 + n; i < len(pkt); i++ {
		pkt[i] = 0xFF
	}
	return pkt
}

// PacketizeSection splits a pointer-field-prefixed section into one or more
// TS packets on pid, setting PUSI on the first packet only, followed by a
// trailing null packet (PID 0x1FFF, stuffing payload). tspacket.FindSync
// confirms a candidate sync byte against a second one exactly PacketLen
// bytes later, so a capture consisting of a single 188-byte packet can
// never synchronize on its own; the trailing packet gives every capture
// this function returns a second sync byte to confirm against.
func PacketizeSection(pid uint16, section []byte) []byte {
	var out []byte
	remaining := section
	cc := byte(0)
	first := true
	for len(remaining) > 0 || first {
		chunkLen := 184
		if chunkLen > len(remaining) {
			chunkLen = len(remaining)
		}
		out = append(out, packTSPacket(pid, first, cc, remaining[:chunkLen])...)
		remaining = remaining[chunkLen:]
		cc = (cc + 1) & 0x0F
		first = false
		if len(remaining) == 0 {
			break
		}
	}
	out = append(out, packTSPacket(0x1FFF, false, 0, nil)...)
	return out
}

// buildSection assembles pointer-field-prefixed section bytes with a valid
// trailing MPEG-2 CRC32 (mirrors internal/psi's own test helper, duplicated
// here because internal packages cannot import one another's _test.go
// files).
func buildSection(tableID byte, tableIDExt uint16, version byte, current bool, secNum, lastSecNum byte, body []byte) []byte {
	header := make([]byte, 5)
	binary.BigEndian.PutUint16(header[0:2], tableIDExt)
	versionByte := byte(version<<1) & 0x3E
	if current {
		versionByte |= 0x01
	}
	versionByte |= 0xC0 // reserved bits set, matching real captures
	header[2] = versionByte
	header[3] = secNum
	header[4] = lastSecNum

	withoutCRC := append([]byte{tableID}, 0, 0)
	sectionLength := len(header) + len(body) + 4
	withoutCRC[1] = byte(0xB0 | (sectionLength>>8)&0x0F) // SSI=1, reserved=11
	withoutCRC[2] = byte(sectionLength)
	withoutCRC = append(withoutCRC, header...)
	withoutCRC = append(withoutCRC, body...)

	sum := crc.Checksum(withoutCRC)
	crcBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(crcBytes, sum)

	full := append([]byte{0x00}, withoutCRC...) // pointer field
	full = append(full, crcBytes...)
	return full
}

func patBody(entries [][2]uint16) []byte {
	var body []byte
	for _, e := range entries {
		body = append(body, byte(e[0]>>8), byte(e[0]), 0xE0|byte(e[1]>>8), byte(e[1]))
	}
	return body
}

// PATCapture returns TS packets on PIDPAT carrying a twenty-entry PAT
// fixture: twenty program associations, program 0 bound to the NIT PID.
func PATCapture() []byte {
	entries := [][2]uint16{{0, 16}}
	tvPIDs := []uint16{2100, 2200, 2300, 2400, 2500, 2700, 2800, 2900, 3000}
	tvProgramNumbers := []uint16{268, 270, 272, 274, 276, 280, 282, 284, 286}
	for i, pid := range tvPIDs {
		entries = append(entries, [2]uint16{tvProgramNumbers[i], pid})
	}
	for i := uint16(0); i < 10; i++ {
		entries = append(entries, [2]uint16{16651 + i, 7010 + i*10})
	}
	section := buildSection(0x00, 1, 3, true, 0, 0, patBody(entries))
	return PacketizeSection(PIDPAT, section)
}

// Captures bundles the fixture captures, one field per table kind. It holds
// only the PAT capture; there are no NIT, SDT or EIT fields.
type Captures struct {
	PAT []byte // PIDPAT
}

// Load returns the bundled fixture captures (currently PAT; NIT/SDT/EIT
// fixtures are exercised directly against section bytes in internal/psi's
// own tests since their body-builder helpers already live there).
func Load() Captures {
	return Captures{PAT: PATCapture()}
}
