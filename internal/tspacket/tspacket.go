// Package tspacket locates MPEG-TS sync bytes in a noisy byte stream,
// slices it into 188-byte transport packets, and decodes each packet's
// 4-byte header (ISO/IEC 13818-1 §2.4.3.2), including honoring
// adaptation_field_control when slicing out the payload.
package tspacket

import (
	"fmt"

	"github.com/snapetech/dvbsi/internal/dvbsierr"
)

const (
	// SyncByte is the required value of every transport packet's first byte.
	SyncByte = 0x47

	// PacketLen is the fixed transport-stream packet size.
	PacketLen = 188
)

// ScramblingControl is the packet header's 2-bit scrambling_control field.
type ScramblingControl byte

const (
	NotScrambled ScramblingControl = 0
	ScramblingReserved ScramblingControl = 1
	EvenKey ScramblingControl = 2
	OddKey ScramblingControl = 3
)

func (s ScramblingControl) String() string {
	switch s {
	case NotScrambled:
		return "not-scrambled"
	case ScramblingReserved:
		return "reserved"
	case EvenKey:
		return "even-key"
	case OddKey:
		return "odd-key"
	default:
		return "unknown"
	}
}

// AdaptationFieldControl is the packet header's 2-bit adaptation_field_control field.
type AdaptationFieldControl byte

const (
	AFCReserved      AdaptationFieldControl = 0
	AFCPayloadOnly   AdaptationFieldControl = 1
	AFCAdaptationOnly AdaptationFieldControl = 2
	AFCBoth          AdaptationFieldControl = 3
)

func (a AdaptationFieldControl) String() string {
	switch a {
	case AFCReserved:
		return "reserved"
	case AFCPayloadOnly:
		return "payload-only"
	case AFCAdaptationOnly:
		return "adaptation-only"
	case AFCBoth:
		return "both"
	default:
		return "unknown"
	}
}

// TransportPacket is a single decoded 188-byte MPEG-TS packet.
type TransportPacket struct {
	TEI                    bool
	PUSI                   bool
	Priority               bool
	PID                    uint16
	Scrambling             ScramblingControl
	AdaptationFieldControl AdaptationFieldControl
	ContinuityCounter      byte

	// RawPayload is the full 184 bytes following the 4-byte header,
	// untouched. Kept for consumers that need adaptation-field bytes this
	// package doesn't interpret (PCR/PTS extraction is out of scope here).
	RawPayload []byte

	// Payload is RawPayload with adaptation_field_control honored: empty
	// when AdaptationFieldControl is AFCAdaptationOnly, adaptation-field
	// bytes skipped when AFCBoth, otherwise identical to RawPayload. This
	// is what package section's payload reassembly consumes.
	Payload []byte
}

// FindSync scans buf[start:end] for an offset i such that buf[i] and
// buf[i+PacketLen] are both the sync byte. The two-point check defeats
// false positives from 0x47 occurring inside a payload. Returns (offset,
// true), or (0, false) if no such offset exists strictly before
// end-PacketLen.
func FindSync(buf []byte, start, end int) (int, bool) {
	if end > len(buf) {
		end = len(buf)
	}
	limit := end - PacketLen
	for i := start; i < limit; i++ {
		if buf[i] == SyncByte && buf[i+PacketLen] == SyncByte {
			return i, true
		}
	}
	return 0, false
}

// Parse locates the initial sync via FindSync, then decodes consecutive
// non-overlapping 188-byte frames until the stream runs out or loses sync.
// pidFilter < 0 means "retain all packets"; pidFilter >= 0 retains only
// packets whose PID matches.
func Parse(buf []byte, start, end int, pidFilter int) []TransportPacket {
	off, ok := FindSync(buf, start, end)
	if !ok {
		return nil
	}
	if end > len(buf) {
		end = len(buf)
	}

	var packets []TransportPacket
	pos := off
	for pos+PacketLen <= end {
		if buf[pos] != SyncByte {
			// Stop producing further packets once the next expected
			// position isn't a sync byte. A more robust framer could
			// re-invoke FindSync here; that's left to a caller that wants
			// stream-wide recovery rather than one-shot buffer decoding.
			break
		}
		pkt, err := decodePacket(buf[pos : pos+PacketLen])
		if err == nil && (pidFilter < 0 || int(pkt.PID) == pidFilter) {
			packets = append(packets, pkt)
		}
		pos += PacketLen
	}
	return packets
}

func decodePacket(pkt []byte) (TransportPacket, error) {
	if len(pkt) != PacketLen {
		return TransportPacket{}, fmt.Errorf("tspacket: decode: want %d bytes, got %d", PacketLen, len(pkt))
	}
	if pkt[0] != SyncByte {
		return TransportPacket{}, fmt.Errorf("tspacket: decode: %w", dvbsierr.ErrNotSynchronized)
	}

	pid := uint16(pkt[1]&0x1F)<<8 | uint16(pkt[2])
	afc := AdaptationFieldControl((pkt[3] >> 4) & 0x03)

	raw := append([]byte(nil), pkt[4:PacketLen]...)
	payload := extractPayload(pkt, afc)

	return TransportPacket{
		TEI:                    pkt[1]&0x80 != 0,
		PUSI:                   pkt[1]&0x40 != 0,
		Priority:               pkt[1]&0x20 != 0,
		PID:                    pid,
		Scrambling:             ScramblingControl((pkt[3] >> 6) & 0x03),
		AdaptationFieldControl: afc,
		ContinuityCounter:      pkt[3] & 0x0F,
		RawPayload:             raw,
		Payload:                payload,
	}, nil
}

// extractPayload honors adaptation_field_control when slicing the payload
// out of a packet: AFCAdaptationOnly carries no payload at all, AFCBoth
// carries adaptation_field_length-prefixed adaptation data before the
// payload starts.
func extractPayload(pkt []byte, afc AdaptationFieldControl) []byte {
	switch afc {
	case AFCAdaptationOnly:
		return nil
	case AFCBoth:
		afLen := int(pkt[4])
		start := 5 + afLen
		if start > len(pkt) {
			// Declared adaptation field runs past the packet; clip rather
			// than fail the whole packet.
			start = len(pkt)
		}
		return append([]byte(nil), pkt[start:]...)
	default: // AFCPayloadOnly, AFCReserved
		return append([]byte(nil), pkt[4:]...)
	}
}
