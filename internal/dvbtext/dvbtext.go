// Package dvbtext decodes DVB text strings as defined in ETSI EN 300 468
// Annex A: character-set prefix dispatch, control codes, and ISO/IEC 6937
// accent composition.
package dvbtext

import (
	"fmt"

	"golang.org/x/text/encoding/charmap"

	"github.com/snapetech/dvbsi/internal/dvbsierr"
)

// ErrUnsupportedEncoding is returned in strict mode when the leading
// character-set prefix byte names an encoding this package does not
// implement.
var ErrUnsupportedEncoding = dvbsierr.ErrUnsupportedEncoding

// Decode decodes a DVB text field at b[offset:offset+length] (ETSI EN
// 300 468 Annex A). strict controls whether an unrecognized encoding
// prefix is a hard error (true) or decodes to "" (false).
func Decode(b []byte, offset, length int, strict bool) (string, error) {
	if offset < 0 || length < 0 || offset+length > len(b) {
		return "", fmt.Errorf("dvbtext: decode: slice [%d:%d+%d] out of range (len=%d)", offset, offset, length, len(b))
	}
	return DecodeBytes(b[offset:offset+length], strict)
}

// DecodeBytes is Decode without the offset/length bookkeeping, useful once a
// caller has already sliced out the text field (e.g. from a descriptor
// body).
func DecodeBytes(field []byte, strict bool) (string, error) {
	if len(field) == 0 {
		return "", nil
	}

	if field[0] >= 0x01 && field[0] <= 0x1F {
		return decodeWithPrefix(field, strict)
	}
	return decodeDefault(field), nil
}

// decodeWithPrefix handles the encoding-prefix dispatch: the leading byte
// (0x01..0x1F) selects an alternate character set; the remaining bytes are
// decoded with that encoding verbatim (no control-code or accent
// handling).
func decodeWithPrefix(field []byte, strict bool) (string, error) {
	prefix := field[0]
	rest := field[1:]

	var cm *charmap.Charmap
	switch prefix {
	case 0x01:
		cm = charmap.ISO8859_5
	case 0x02:
		cm = charmap.ISO8859_6
	case 0x03:
		cm = charmap.ISO8859_7
	case 0x04:
		cm = charmap.ISO8859_8
	case 0x05:
		cm = charmap.ISO8859_9
	case 0x10:
		if len(rest) < 2 {
			return failUnsupported(strict, prefix)
		}
		n := int(rest[1])
		rest = rest[2:]
		var ok bool
		cm, ok = iso8859ByNumber(n)
		if !ok {
			return failUnsupported(strict, prefix)
		}
	default:
		// 0x06..0x0F and 0x11..0x1F are reserved in EN 300 468 Table A.1.
		return failUnsupported(strict, prefix)
	}

	decoded, err := cm.NewDecoder().Bytes(rest)
	if err != nil {
		return failUnsupported(strict, prefix)
	}
	return string(decoded), nil
}

func failUnsupported(strict bool, prefix byte) (string, error) {
	if strict {
		return "", fmt.Errorf("%w: prefix 0x%02x", ErrUnsupportedEncoding, prefix)
	}
	return "", nil
}

func iso8859ByNumber(n int) (*charmap.Charmap, bool) {
	switch n {
	case 1:
		return charmap.ISO8859_1, true
	case 2:
		return charmap.ISO8859_2, true
	case 3:
		return charmap.ISO8859_3, true
	case 4:
		return charmap.ISO8859_4, true
	case 5:
		return charmap.ISO8859_5, true
	case 6:
		return charmap.ISO8859_6, true
	case 7:
		return charmap.ISO8859_7, true
	case 8:
		return charmap.ISO8859_8, true
	case 9:
		return charmap.ISO8859_9, true
	case 10:
		return charmap.ISO8859_10, true
	case 13:
		return charmap.ISO8859_13, true
	case 14:
		return charmap.ISO8859_14, true
	case 15:
		return charmap.ISO8859_15, true
	case 16:
		return charmap.ISO8859_16, true
	default:
		return nil, false
	}
}

// decodeDefault implements the unprefixed default decode: control codes,
// ISO/IEC 6937 accent latching, and ASCII passthrough.
func decodeDefault(field []byte) string {
	out := make([]rune, 0, len(field))
	var pendingAccent byte // 0 = none latched

	for _, b := range field {
		switch {
		case b >= 0x80 && b <= 0x9F:
			// Control code: resets any pending accent.
			pendingAccent = 0
			if b == 0x8A {
				out = append(out, '\n')
			}
			// 0x86/0x87 (emphasis on/off) and the rest of the range are
			// consumed but emit nothing.

		case b >= 0xC1 && b <= 0xCF:
			if _, known := accentTable[b]; known {
				pendingAccent = b
			} else {
				// 0xC9, 0xCC are reserved (not in the accent table): not a
				// recognized prefix, not printable ASCII — dropped like any
				// other unrecognized byte, and any previously pending
				// accent is left untouched since this byte never latched
				// one.
			}

		case b >= 0x20 && b <= 0x7F:
			if pendingAccent == 0 {
				out = append(out, rune(b))
				continue
			}
			if composed, ok := accentLookup(pendingAccent, b); ok {
				out = append(out, composed)
			} else {
				out = append(out, rune(b))
			}
			pendingAccent = 0

		default:
			// Dropped.
		}
	}
	return string(out)
}
