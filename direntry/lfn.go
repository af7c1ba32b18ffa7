package direntry

import (
	"encoding/binary"

	"golang.org/x/text/encoding/unicode"
)

// lfnSlot is one decoded long-file-name directory record.
type lfnSlot struct {
	index    int  // 1-based slot index (sequence & 0x1F)
	isLast   bool // sequence bit 6
	checksum byte
	units    [13]uint16
}

// decodeLFNSlot extracts the sequence/checksum/code-unit fields from a raw
// 32-byte LFN record. Caller must have already checked IsLFNSlot.
func decodeLFNSlot(record []byte) lfnSlot {
	seq := record[lfnOffSequence]
	slot := lfnSlot{
		index:    int(seq & lfnSeqIndexMsk),
		isLast:   seq&lfnSeqLastFlag != 0,
		checksum: record[lfnOffChecksum],
	}
	for i, off := range lfnUnitOffsets {
		slot.units[i] = binary.LittleEndian.Uint16(record[off : off+2])
	}
	return slot
}

// unitsToUTF8 decodes the 13 UCS-2 code units of an LFN slot to a UTF-8
// string, stopping at the first NUL or 0xFFFF padding unit. It goes through
// golang.org/x/text's UTF-16 decoder rather than hand-rolled surrogate
// handling; names here are restricted to the ASCII subset of UCS-2, but the
// codec itself is the general-purpose one.
func unitsToUTF8(units [13]uint16) string {
	raw := make([]byte, 0, 26)
	for _, u := range units {
		if u == 0x0000 || u == 0xFFFF {
			break
		}
		raw = append(raw, byte(u), byte(u>>8))
	}
	if len(raw) == 0 {
		return ""
	}

	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := decoder.Bytes(raw)
	if err != nil {
		return ""
	}
	return string(out)
}

// lfnWindow returns the 13-rune window of target that a slot with the given
// 1-based index is responsible for, with a 0x0000 terminator right after the
// end of target and 0xFFFF padding beyond it (matching how a real LFN chain
// pads its last slot).
func lfnWindow(target []rune, index int) [13]uint16 {
	var out [13]uint16
	start := (index - 1) * 13
	for i := 0; i < 13; i++ {
		pos := start + i
		if pos < len(target) {
			out[i] = uint16(target[pos])
		} else if pos == len(target) {
			out[i] = 0x0000
		} else {
			out[i] = 0xFFFF
		}
	}
	return out
}
