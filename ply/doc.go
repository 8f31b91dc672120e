// Package ply parses and rewrites the ASCII header of gaussian-splat PLY
// files (binary_little_endian payloads with fixed-width vertex records).
//
// Only the header is interpreted here. The vertex payload is treated as an
// opaque byte sequence whose length must be an exact multiple of the record
// width derived from the property schema.
package ply
