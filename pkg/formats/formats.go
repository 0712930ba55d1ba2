// Package formats provides parsers for binary layout (RLYT) and layout
// animation (RLAN) resources.
//
// Both formats share a 16-byte big-endian header followed by a sequence of
// tagged, size-prefixed blocks. Decoding is all-or-nothing: a parser either
// returns a complete immutable document or an error.
package formats
