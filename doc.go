// Package dvbsi decodes MPEG-TS transport streams and the DVB Service
// Information tables (PAT, NIT, SDT, EIT) carried inside them.
//
// The package is a thin facade over four internal layers, each independently
// testable and usable on its own:
//
//   - internal/tspacket locates sync bytes in a byte stream and decodes
//     188-byte transport packets.
//   - internal/section reassembles per-PID packet payloads into logical
//     section byte sequences.
//   - internal/psi parses a section's common header, validates its MPEG-2
//     CRC32, and decodes the PAT/NIT/SDT/EIT body.
//   - internal/dvbtext decodes DVB's 8-bit text encoding (ISO 8859 variants,
//     control codes, and accent composition) into UTF-8 strings.
//
// This package re-exports the types and entrypoints a caller needs without
// requiring an import of any internal/* package directly, so the internals
// stay free to change shape between releases.
package dvbsi
