// Package dvbsierr declares the sentinel error kinds shared across the
// decode pipeline. Centralizing them lets every layer compare with
// errors.Is instead of string matching.
package dvbsierr

import "errors"

var (
	// ErrNotSynchronized: no valid pair of sync bytes found by the framer.
	ErrNotSynchronized = errors.New("dvbsi: not synchronized: no valid sync byte pair found")

	// ErrTruncatedSection: remaining bytes shorter than the declared section length.
	ErrTruncatedSection = errors.New("dvbsi: truncated section")

	// ErrUnexpectedTableID: table ID does not match the PID's expected family.
	ErrUnexpectedTableID = errors.New("dvbsi: unexpected table id")

	// ErrCrcMismatch: computed CRC32 does not equal the stored CRC. Non-fatal;
	// surfaced as a flag on the decoded table, not necessarily returned as an
	// error from Decode.
	ErrCrcMismatch = errors.New("dvbsi: crc mismatch")

	// ErrUnsupportedEncoding: DVB text prefix names a character set this
	// decoder doesn't implement. Only returned when strict mode is requested.
	ErrUnsupportedEncoding = errors.New("dvbsi: unsupported encoding")

	// ErrDescriptorOverflow: a descriptor's declared length extends beyond
	// its enclosing loop. Non-fatal; the parser clips to the loop boundary.
	ErrDescriptorOverflow = errors.New("dvbsi: descriptor overflow")
)
