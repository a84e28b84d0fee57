package psi

import "time"

// bcdByte decodes one binary-coded-decimal byte (EN 300 468 Annex C): the
// high nibble is the tens digit, the low nibble the units digit.
func bcdByte(b byte) int {
	return int(b>>4)*10 + int(b&0x0F)
}

// mjdToDate converts a 16-bit Modified Julian Date into a calendar date,
// using the formula given in EN 300 468 Annex C.
func mjdToDate(mjd int) (year, month, day int) {
	yy := int((float64(mjd) - 15078.2) / 365.25)
	mm := int((float64(mjd) - 14956.1 - float64(int(float64(yy)*365.25))) / 30.6001)
	d := mjd - 14956 - int(float64(yy)*365.25) - int(float64(mm)*30.6001)
	k := 0
	if mm == 14 || mm == 15 {
		k = 1
	}
	year = yy + k + 1900
	month = mm - 1 - k*12
	day = d
	return
}

// parseDVBTime decodes the 5-byte start_time field (EN 300 468 §5.2.4:
// 16-bit MJD followed by 3 BCD bytes for hour, minute, second) into a UTC
// time.Time. The returned undefined bool reports whether the field was
// entirely 0xFF, which EN 300 468 reserves for "undefined", or shorter
// than 5 bytes; in both cases the time is the zero value.
func parseDVBTime(b []byte) (t time.Time, undefined bool) {
	if len(b) < 5 {
		return time.Time{}, true
	}
	allFF := true
	for _, x := range b[:5] {
		if x != 0xFF {
			allFF = false
			break
		}
	}
	if allFF {
		return time.Time{}, true
	}
	mjd := int(b[0])<<8 | int(b[1])
	year, month, day := mjdToDate(mjd)
	hour := bcdByte(b[2])
	minute := bcdByte(b[3])
	second := bcdByte(b[4])
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), false
}

// parseDVBDuration decodes the 3-byte BCD duration field (EN 300 468
// §5.2.4: hour, minute, second, each BCD) into a time.Duration.
func parseDVBDuration(b []byte) time.Duration {
	if len(b) < 3 {
		return 0
	}
	h := bcdByte(b[0])
	m := bcdByte(b[1])
	s := bcdByte(b[2])
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second
}
