// Package bipf implements the compact binary value encoding used for tinySSB
// log entry bodies.
//
// Every value is a uvarint header (length<<3 | tag) followed by length bytes
// of body. Lists are the concatenation of their encoded elements, so an
// encoding is always self-delimiting. Supported tags:
//
//	0 string   UTF-8 text
//	1 bytes    opaque byte string
//	2 int      little-endian two's complement, 1..8 bytes
//	4 list     ordered sequence of values
//	6 boolnull length 0 is none, length 1 is a boolean
//
// Decode never returns a partially populated value: any truncated, mistyped or
// trailing input yields an error wrapping ErrDecode.
package bipf
