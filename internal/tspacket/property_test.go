package tspacket

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// encodeHeader is the inverse of decodePacket's header bits — used only by
// tests to check that packet header encode→decode is bit-exact.
func encodeHeader(p TransportPacket) []byte {
	pkt := make([]byte, PacketLen)
	pkt[0] = SyncByte
	b1 := byte((p.PID >> 8) & 0x1F)
	if p.TEI {
		b1 |= 0x80
	}
	if p.PUSI {
		b1 |= 0x40
	}
	if p.Priority {
		b1 |= 0x20
	}
	pkt[1] = b1
	pkt[2] = byte(p.PID)
	pkt[3] = byte(p.Scrambling)<<6 | byte(p.AdaptationFieldControl)<<4 | p.ContinuityCounter&0x0F
	return pkt
}

func TestHeaderRoundTrip_BitExact(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		pid := uint16(rapid.IntRange(0, 0x1FFF).Draw(t, "pid"))
		tei := rapid.Bool().Draw(t, "tei")
		pusi := rapid.Bool().Draw(t, "pusi")
		priority := rapid.Bool().Draw(t, "priority")
		scrambling := ScramblingControl(rapid.IntRange(0, 3).Draw(t, "scrambling"))
		afc := AdaptationFieldControl(rapid.IntRange(1, 1).Draw(t, "afc")) // payload-only keeps the round trip simple
		cc := byte(rapid.IntRange(0, 15).Draw(t, "cc"))

		want := TransportPacket{
			TEI: tei, PUSI: pusi, Priority: priority,
			PID: pid, Scrambling: scrambling,
			AdaptationFieldControl: afc, ContinuityCounter: cc,
		}
		raw := encodeHeader(want)
		buf := append(raw, make([]byte, PacketLen-len(raw))...)
		buf2 := append(append([]byte{}, buf...), buf...) // FindSync needs a second packet

		got := Parse(buf2, 0, len(buf2), -1)
		require.Len(t, got, 2)
		require.Equal(t, want.TEI, got[0].TEI)
		require.Equal(t, want.PUSI, got[0].PUSI)
		require.Equal(t, want.Priority, got[0].Priority)
		require.Equal(t, want.PID, got[0].PID)
		require.Equal(t, want.Scrambling, got[0].Scrambling)
		require.Equal(t, want.AdaptationFieldControl, got[0].AdaptationFieldControl)
		require.Equal(t, want.ContinuityCounter, got[0].ContinuityCounter)
	})
}

// TestParse_InvariantPIDAndSyncByte checks that every decoded packet has
// 0 <= PID <= 8191, and (by construction, since Parse only emits packets
// whose first byte matched SyncByte) byte 0 == 0x47.
func TestParse_InvariantPIDAndSyncByte(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 6).Draw(t, "n")
		var buf []byte
		for i := 0; i < n; i++ {
			pid := uint16(rapid.IntRange(0, 0x1FFF).Draw(t, "pid"))
			pkt := make([]byte, PacketLen)
			pkt[0] = SyncByte
			pkt[1] = byte((pid >> 8) & 0x1F)
			pkt[2] = byte(pid)
			buf = append(buf, pkt...)
		}
		got := Parse(buf, 0, len(buf), -1)
		for _, p := range got {
			require.GreaterOrEqual(t, int(p.PID), 0)
			require.LessOrEqual(t, int(p.PID), 8191)
		}
	})
}
