package psi

import "encoding/binary"

// decodePATBody decodes every program_number/PID pair in the PAT's
// program loop; program_number 0 is additionally surfaced through
// PAT.NITPID() rather than kept in Programs.
func decodePATBody(header SectionHeader, body []byte) *PAT {
	pat := &PAT{
		Header:            header,
		TransportStreamID: header.TableIDExtension,
	}
	for pos := 0; pos+4 <= len(body); pos += 4 {
		programNumber := binary.BigEndian.Uint16(body[pos : pos+2])
		pid := binary.BigEndian.Uint16(body[pos+2:pos+4]) & 0x1FFF
		if programNumber == 0 {
			pat.nitPID = pid
			pat.hasNITPID = true
			continue
		}
		pat.Programs = append(pat.Programs, ProgramAssociation{
			ProgramNumber: programNumber,
			PID:           pid,
		})
	}
	return pat
}
