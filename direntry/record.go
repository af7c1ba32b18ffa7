// Package direntry implements the FAT32 directory engine: decoding SFN and
// LFN 32-byte directory records, iterating a directory's cluster chain,
// searching by name with LFN<->SFN checksum pairing, and the entry-chain
// sizing/allocation needed to rename an entry.
package direntry

import "github.com/embeddedfs/fat32/internal/bytesx"

// RecordSize is the fixed size of every directory record.
const RecordSize = 32

// First-byte states of a directory record.
const (
	StateEndOfDirectory = 0x00
	StateDeleted        = 0xE5
	StateLiteralE5      = 0x05
)

// Attribute bits, at offset 11 of an SFN record.
const (
	AttrReadOnly = 0x01
	AttrHidden   = 0x02
	AttrSystem   = 0x04
	AttrVolumeID = 0x08
	AttrDirectory = 0x10
	AttrArchive  = 0x20
	AttrLFN      = AttrReadOnly | AttrHidden | AttrSystem | AttrVolumeID
)

// SFN record field offsets.
const (
	sfnOffName        = 0
	sfnOffAttr        = 11
	sfnOffCreateTenth  = 13
	sfnOffCreateTime  = 14
	sfnOffCreateDate  = 16
	sfnOffAccessDate  = 18
	sfnOffClusterHigh = 20
	sfnOffWriteTime   = 22
	sfnOffWriteDate   = 24
	sfnOffClusterLow  = 26
	sfnOffSize        = 28

	sfnNameLen = 11
)

// LFN slot field offsets.
const (
	lfnOffSequence = 0
	lfnOffChecksum = 13
)

// lfnUnitOffsets gives the byte offset of each of the 13 UCS-2 code units
// carried by one LFN slot, in order.
var lfnUnitOffsets = [13]int{1, 3, 5, 7, 9, 14, 16, 18, 20, 22, 24, 28, 30}

// LFN sequence byte bits.
const (
	lfnSeqLastFlag = 0x40
	lfnSeqIndexMsk = 0x1F
)

// IsLFNSlot reports whether the record at offset attr=11 marks an LFN slot.
func IsLFNSlot(attr byte) bool {
	return attr&AttrLFN == AttrLFN
}

// ClusterOf extracts the starting cluster number from an SFN record.
func ClusterOf(record []byte) uint32 {
	high := uint32(bytesx.LoadU16(record, sfnOffClusterHigh))
	low := uint32(bytesx.LoadU16(record, sfnOffClusterLow))
	return high<<16 | low
}

// SizeOf extracts the file size from an SFN record.
func SizeOf(record []byte) uint32 {
	return bytesx.LoadU32(record, sfnOffSize)
}

// SetClusterOf stores a starting cluster number into an SFN record.
func SetClusterOf(record []byte, cluster uint32) {
	bytesx.StoreU16(record, sfnOffClusterHigh, uint16(cluster>>16))
	bytesx.StoreU16(record, sfnOffClusterLow, uint16(cluster))
}

// SetSizeOf stores a file size into an SFN record.
func SetSizeOf(record []byte, size uint32) {
	bytesx.StoreU32(record, sfnOffSize, size)
}
