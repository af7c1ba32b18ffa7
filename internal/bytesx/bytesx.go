// Package bytesx implements the little-endian byte codec used throughout
// the FAT32 engine: loading and storing 16- and 32-bit fields at fixed
// offsets in a sector buffer, and the byte compare/copy helpers the
// directory engine uses for name matching.
package bytesx

import (
	"encoding/binary"

	"github.com/noxer/bytewriter"
)

// LoadU16 reads a little-endian 16-bit field at offset.
func LoadU16(buf []byte, offset int) uint16 {
	return binary.LittleEndian.Uint16(buf[offset : offset+2])
}

// LoadU32 reads a little-endian 32-bit field at offset.
func LoadU32(buf []byte, offset int) uint32 {
	return binary.LittleEndian.Uint32(buf[offset : offset+4])
}

// StoreU16 writes a little-endian 16-bit field at offset, in place.
func StoreU16(buf []byte, offset int, value uint16) {
	w := bytewriter.New(buf[offset : offset+2])
	binary.Write(w, binary.LittleEndian, value) //nolint:errcheck // fixed-size slice, never short
}

// StoreU32 writes a little-endian 32-bit field at offset, in place.
func StoreU32(buf []byte, offset int, value uint32) {
	w := bytewriter.New(buf[offset : offset+4])
	binary.Write(w, binary.LittleEndian, value) //nolint:errcheck // fixed-size slice, never short
}

// Equal reports whether two byte slices of the same length are identical.
// Mirrors the original driver's fat_memcmp, which never compares slices of
// differing size.
func Equal(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// UpperASCII folds a single ASCII lowercase byte to uppercase by subtracting
// 32, exactly as the original SFN comparison routine does. Non-lowercase
// bytes pass through unchanged.
func UpperASCII(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 32
	}
	return b
}

// EqualFoldASCII compares two ASCII byte slices of equal length,
// case-insensitively, using UpperASCII — no locale, no dot handling, as the
// original source does.
func EqualFoldASCII(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if UpperASCII(a[i]) != UpperASCII(b[i]) {
			return false
		}
	}
	return true
}
