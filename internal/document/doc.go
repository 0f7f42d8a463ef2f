// Package document defines the note value type and the in-memory name index.
//
// A Document is identified by its normalized name. Names are normalized with
// NormalizeName before they reach any storage backend, so every backend can
// compare names byte-for-byte.
//
// # Name Normalization
//
//   - Surrounding whitespace is trimmed
//   - Unicode NFC normalization (golang.org/x/text/unicode/norm)
//   - Language-independent lower-casing (golang.org/x/text/cases)
//
// A name that is empty after normalization, is not valid UTF-8, or contains
// control characters is rejected with ErrInvalidName.
package document
