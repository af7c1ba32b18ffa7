package mount

import (
	"github.com/embeddedfs/fat32/errorsx"
	"github.com/embeddedfs/fat32/internal/bytesx"
)

// BIOS Parameter Block field offsets.
const (
	offSectorSize    = 11
	offClusterSize   = 13
	offRsvdCnt       = 14
	offNumFATs       = 16
	offRootEntCnt    = 17
	offTotSect16     = 19
	offFATSize16     = 22
	offTotSect32     = 32
	offFATSize32     = 36
	offRootCluster   = 44
	offFSInfo        = 48
	offFSTypeFAT32   = 82
	offFSTypeFAT16   = 54
	fsTypeFieldWidth = 8
)

// BPB is the subset of a BIOS Parameter Block this driver needs to mount a
// FAT32 volume.
type BPB struct {
	SectorSize  uint16
	ClusterSize uint8
	RsvdCnt     uint16
	NumFATs     uint8
	RootEntCnt  uint16
	TotSect16   uint16
	FATSize16   uint16
	TotSect32   uint32
	FATSize32   uint32
	RootCluster uint32
	FSInfoSect  uint16
}

// ParseBPB reads the raw fields of a BPB out of a 512-byte sector. It does
// not itself decide whether the volume is FAT32 — see IsFAT32.
func ParseBPB(sector []byte) (BPB, errorsx.DriverError) {
	if err := checkBootSignature(sector); err != nil {
		return BPB{}, err
	}

	return BPB{
		SectorSize:  bytesx.LoadU16(sector, offSectorSize),
		ClusterSize: sector[offClusterSize],
		RsvdCnt:     bytesx.LoadU16(sector, offRsvdCnt),
		NumFATs:     sector[offNumFATs],
		RootEntCnt:  bytesx.LoadU16(sector, offRootEntCnt),
		TotSect16:   bytesx.LoadU16(sector, offTotSect16),
		FATSize16:   bytesx.LoadU16(sector, offFATSize16),
		TotSect32:   bytesx.LoadU32(sector, offTotSect32),
		FATSize32:   bytesx.LoadU32(sector, offFATSize32),
		RootCluster: bytesx.LoadU32(sector, offRootCluster),
		FSInfoSect:  bytesx.LoadU16(sector, offFSInfo),
	}, nil
}

var fatTypeMarker = [3]byte{'F', 'A', 'T'}

func hasFATMarker(sector []byte, offset int) bool {
	field := sector[offset : offset+fsTypeFieldWidth]
	return field[0] == fatTypeMarker[0] && field[1] == fatTypeMarker[1] && field[2] == fatTypeMarker[2]
}

// FATSizeSectors returns the effective FAT size in sectors: fat_size_16 if
// nonzero, else fat_size_32.
func (b BPB) FATSizeSectors() uint32 {
	if b.FATSize16 != 0 {
		return uint32(b.FATSize16)
	}
	return b.FATSize32
}

// TotalSectorCount returns the effective total sector count: tot_sect_16 if
// nonzero, else tot_sect_32.
func (b BPB) TotalSectorCount() uint32 {
	if b.TotSect16 != 0 {
		return uint32(b.TotSect16)
	}
	return b.TotSect32
}

func (b BPB) rootDirSectors() uint32 {
	if b.SectorSize == 0 {
		return 0
	}
	return (uint32(b.RootEntCnt)*32 + uint32(b.SectorSize) - 1) / uint32(b.SectorSize)
}

// DataClusters computes the volume's data cluster count.
func (b BPB) DataClusters() uint32 {
	if b.ClusterSize == 0 {
		return 0
	}
	rootSectors := b.rootDirSectors()
	dataSectors := b.TotalSectorCount() - (uint32(b.RsvdCnt) + uint32(b.NumFATs)*b.FATSizeSectors() + rootSectors)
	return dataSectors / uint32(b.ClusterSize)
}

// MinFAT32DataClusters is the smallest data cluster count Microsoft's
// standard considers FAT32 (FAT12/16 are rejected below this floor).
const MinFAT32DataClusters = 65525

// IsFAT32 validates sector as a FAT32 BPB: correct boot signature, a "FAT"
// marker at either the FAT16 or FAT32 file-system-type offset, and at least
// MinFAT32DataClusters data clusters.
func IsFAT32(sector []byte, b BPB) bool {
	if err := checkBootSignature(sector); err != nil {
		return false
	}
	if !hasFATMarker(sector, offFSTypeFAT32) && !hasFATMarker(sector, offFSTypeFAT16) {
		return false
	}
	if b.SectorSize != 512 {
		return false
	}
	return b.DataClusters() >= MinFAT32DataClusters
}
