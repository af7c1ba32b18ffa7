package mount

import (
	"github.com/embeddedfs/fat32/blockdev"
	"github.com/embeddedfs/fat32/errorsx"
	"github.com/embeddedfs/fat32/internal/bytesx"
)

const bootSignatureOffset = 510
const bootSignature = 0xAA55

const partitionTableOffset = 446
const partitionEntrySize = 16
const numPartitionEntries = 4

// Partition is one of the (up to) four MBR partition table entries.
type Partition struct {
	Status byte
	Type   byte
	LBA    uint32
	Size   uint32
}

// checkBootSignature validates the trailing 0xAA55 every MBR and BPB sector
// carries.
func checkBootSignature(sector []byte) errorsx.DriverError {
	if len(sector) < blockdev.SectorSize {
		return errorsx.ErrIOFailed.WithMessage("short sector read")
	}
	if bytesx.LoadU16(sector, bootSignatureOffset) != bootSignature {
		return errorsx.ErrBadSignature
	}
	return nil
}

// ParseMBR extracts the four MBR partition table entries from a 512-byte
// LBA-0 sector. It does not itself require a valid FAT32 partition in any
// slot; callers inspect each non-zero-LBA entry themselves.
func ParseMBR(sector []byte) ([numPartitionEntries]Partition, errorsx.DriverError) {
	var partitions [numPartitionEntries]Partition

	if err := checkBootSignature(sector); err != nil {
		return partitions, err
	}

	for i := 0; i < numPartitionEntries; i++ {
		offset := partitionTableOffset + i*partitionEntrySize
		entry := sector[offset : offset+partitionEntrySize]
		partitions[i] = Partition{
			Status: entry[0],
			Type:   entry[4],
			LBA:    bytesx.LoadU32(entry, 8),
			Size:   bytesx.LoadU32(entry, 12),
		}
	}
	return partitions, nil
}
