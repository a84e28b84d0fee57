package psi

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestDecode_PATNeverPanicsOnArbitraryBytes checks that the decoder never
// panics on malformed input, for the PAT path.
func TestDecode_PATNeverPanicsOnArbitraryBytes(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 64).Draw(t, "n")
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = byte(rapid.IntRange(0, 255).Draw(t, "b"))
		}
		_, _ = Decode(buf, ClassPAT)
	})
}

// TestDecode_PATRoundTrip builds a random-but-valid PAT section and checks
// that every program association decodes back out unchanged, in order.
func TestDecode_PATRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(t, "n")
		seen := map[uint16]bool{0: true} // program_number 0 is NIT, excluded from Programs
		var entries []ProgramAssociation
		for i := 0; i < n; i++ {
			var pn uint16
			for {
				pn = uint16(rapid.IntRange(1, 0xFFFF).Draw(t, "pn"))
				if !seen[pn] {
					break
				}
			}
			seen[pn] = true
			pid := uint16(rapid.IntRange(0, 0x1FFF).Draw(t, "pid"))
			entries = append(entries, ProgramAssociation{ProgramNumber: pn, PID: pid})
		}
		tsID := uint16(rapid.IntRange(0, 0xFFFF).Draw(t, "tsid"))

		section := buildSection(TableIDPAT, tsID, 0, true, 0, 0, buildPATBody(entries), true)
		table, err := Decode(section, ClassPAT)
		require.NoError(t, err)
		require.True(t, table.Header.CRC32Valid)
		require.Equal(t, tsID, table.PAT.TransportStreamID)
		require.Len(t, table.PAT.Programs, len(entries))
		for i, e := range entries {
			require.Equal(t, e.ProgramNumber, table.PAT.Programs[i].ProgramNumber)
			require.Equal(t, e.PID, table.PAT.Programs[i].PID)
		}
	})
}

func TestDecode_NITNeverPanicsOnArbitraryBytes(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 64).Draw(t, "n")
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = byte(rapid.IntRange(0, 255).Draw(t, "b"))
		}
		_, _ = Decode(buf, ClassNIT)
	})
}

func TestDecode_SDTNeverPanicsOnArbitraryBytes(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 64).Draw(t, "n")
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = byte(rapid.IntRange(0, 255).Draw(t, "b"))
		}
		_, _ = Decode(buf, ClassSDT)
	})
}

func TestDecode_EITNeverPanicsOnArbitraryBytes(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 64).Draw(t, "n")
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = byte(rapid.IntRange(0, 255).Draw(t, "b"))
		}
		_, _ = Decode(buf, ClassEIT)
	})
}
