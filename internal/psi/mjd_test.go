package psi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestBcdByte(t *testing.T) {
	cases := map[byte]int{0x00: 0, 0x09: 9, 0x10: 10, 0x59: 59, 0x23: 23}
	for b, want := range cases {
		if got := bcdByte(b); got != want {
			t.Errorf("bcdByte(0x%02x) = %d, want %d", b, got, want)
		}
	}
}

func TestParseDVBTime_KnownDate(t *testing.T) {
	b := mjdBCDStartTime(2026, 7, 31, 19, 0, 0)
	got, undefined := parseDVBTime(b)
	if undefined {
		t.Fatal("undefined = true, want false")
	}
	want := time.Date(2026, 7, 31, 19, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseDVBTime_AllFFIsUndefined(t *testing.T) {
	_, undefined := parseDVBTime([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	if !undefined {
		t.Error("undefined = false, want true")
	}
}

func TestParseDVBTime_ShortFieldIsUndefined(t *testing.T) {
	_, undefined := parseDVBTime([]byte{0x00, 0x01})
	if !undefined {
		t.Error("undefined = false, want true")
	}
}

func TestParseDVBDuration(t *testing.T) {
	got := parseDVBDuration(bcdDuration(1, 30, 15))
	want := time.Hour + 30*time.Minute + 15*time.Second
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

// TestParseDVBTime_RoundTripsAcrossYears checks the MJD/BCD conversion
// against a range of calendar dates (spanning a leap year boundary) using
// the standard EN 300 468 Annex C encode/decode formula pair.
func TestParseDVBTime_RoundTripsAcrossYears(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		year := rapid.IntRange(2020, 2035).Draw(t, "year")
		month := rapid.IntRange(1, 12).Draw(t, "month")
		day := rapid.IntRange(1, 28).Draw(t, "day") // stay clear of month-length edge cases
		hour := rapid.IntRange(0, 23).Draw(t, "hour")
		minute := rapid.IntRange(0, 59).Draw(t, "minute")
		second := rapid.IntRange(0, 59).Draw(t, "second")

		b := mjdBCDStartTime(year, month, day, hour, minute, second)
		got, undefined := parseDVBTime(b)
		require.False(t, undefined)
		want := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
		require.True(t, got.Equal(want), "got %v, want %v", got, want)
	})
}
