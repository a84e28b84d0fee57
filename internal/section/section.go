// Package section reassembles per-PID transport-packet payloads into
// logical section byte sequences, honoring the Payload Unit Start
// Indicator as the boundary between one section and the next: a section
// can span several TS packets, and a PID can carry many sections back to
// back.
package section

import "github.com/snapetech/dvbsi/internal/tspacket"

// PacketsForPID scans packets in arrival order, discards everything for pid
// before the first PUSI packet, then returns only the packets belonging to
// that first logical section (stopping at the second PUSI packet for pid).
func PacketsForPID(packets []tspacket.TransportPacket, pid uint16) []tspacket.TransportPacket {
	var out []tspacket.TransportPacket
	started := false
	for _, p := range packets {
		if p.PID != pid {
			continue
		}
		if p.PUSI {
			if started {
				break // second PUSI packet closes the first section
			}
			started = true
		}
		if !started {
			continue
		}
		out = append(out, p)
	}
	return out
}

// PayloadsByPID returns a map from section index (0, 1, 2, ...) to the
// concatenated payload bytes of each logical section carried by pid,
// across the whole packet list.
func PayloadsByPID(packets []tspacket.TransportPacket, pid uint16) map[int][]byte {
	out := map[int][]byte{}
	started := false
	idx := -1
	for _, p := range packets {
		if p.PID != pid {
			continue
		}
		if p.PUSI {
			started = true
			idx++
		}
		if !started {
			continue
		}
		out[idx] = append(out[idx], p.Payload...)
	}
	return out
}

// FirstSectionPayload concatenates PacketsForPID's packets into a single
// byte slice, ready to feed to a section decoder one section at a time.
func FirstSectionPayload(packets []tspacket.TransportPacket, pid uint16) []byte {
	pkts := PacketsForPID(packets, pid)
	var out []byte
	for _, p := range pkts {
		out = append(out, p.Payload...)
	}
	return out
}
