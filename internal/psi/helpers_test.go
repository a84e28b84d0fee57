package psi

import (
	"encoding/binary"

	"github.com/snapetech/dvbsi/internal/crc"
)

// buildSection assembles a complete section byte sequence (leading pointer
// field through trailing CRC) from its logical fields, optionally computing
// a real MPEG-2 CRC32 via internal/crc, so tests can exercise both the
// CRC32Valid=true and CRC32Valid=false paths of Decode.
func buildSection(tableID byte, tableIDExt uint16, version byte, current bool, secNum, lastSecNum byte, body []byte, validCRC bool) []byte {
	inner := make([]byte, 0, 5+len(body))
	inner = append(inner, byte(tableIDExt>>8), byte(tableIDExt))
	versionByte := byte(0xC0) | (version&0x1F)<<1
	if current {
		versionByte |= 0x01
	}
	inner = append(inner, versionByte, secNum, lastSecNum)
	inner = append(inner, body...)

	sectionLength := len(inner) + 4 // + trailing CRC
	lengthField := uint16(0x8000) | uint16(0x3000) | uint16(sectionLength&0x0FFF)

	section := make([]byte, 0, 3+len(inner)+4)
	section = append(section, tableID)
	lenBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(lenBytes, lengthField)
	section = append(section, lenBytes...)
	section = append(section, inner...)

	var crcBytes [4]byte
	if validCRC {
		binary.BigEndian.PutUint32(crcBytes[:], crc.Checksum(section))
	} else {
		binary.BigEndian.PutUint32(crcBytes[:], 0xDEADBEEF)
	}
	section = append(section, crcBytes[:]...)

	return append([]byte{0x00}, section...) // pointer field
}
