package fat32test

import "encoding/binary"

// On-disk field offsets this builder needs, duplicated here rather than
// imported from mount/ so this fixture package has no dependency on the
// driver's internal layout decisions.
const (
	sectorSize = 512

	mbrPartitionTable = 446
	mbrSignatureOff   = 510
	mbrSignature      = 0xAA55

	bpbSectorSize  = 11
	bpbClusterSize = 13
	bpbRsvdCnt     = 14
	bpbNumFATs     = 16
	bpbRootEntCnt  = 17
	bpbTotSect16   = 19
	bpbMedia       = 21
	bpbFATSize16   = 22
	bpbTotSect32   = 32
	bpbFATSize32   = 36
	bpbRootCluster = 44
	bpbFSInfoSect  = 48
	bpbFSTypeFAT32 = 82

	fsInfoLeadSig  = 0
	fsInfoStrucSig = 484
	fsInfoFreeCnt  = 488
	fsInfoNextFree = 492
	fsInfoTrailSig = 508

	leadSignature  = 0x41615252
	strucSignature = 0x61417272
	trailSignature = 0xAA550000
)

// ImageSpec describes a single-partition FAT32 image to synthesize.
type ImageSpec struct {
	PartitionLBA      uint32
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	FATSizeSectors    uint32
	DataClusters      uint32
	RootCluster       uint32
	VolumeLabel       string
}

// DefaultImageSpec returns a small, internally-consistent geometry
// convenient for exercising the mount pipeline, directory engine and file
// cursor without allocating a standards-minimum-sized (65525-cluster)
// volume; IsFAT32's cluster-count floor is a mount-time policy check, not an
// invariant the rest of the engine depends on, so tests that don't go
// through mount.Mount can use this freely.
func DefaultImageSpec() ImageSpec {
	return ImageSpec{
		PartitionLBA:      1,
		SectorsPerCluster: 1,
		ReservedSectors:   32,
		NumFATs:           2,
		FATSizeSectors:    8,
		DataClusters:      64,
		RootCluster:       2,
		VolumeLabel:       "TESTVOL",
	}
}

// LargeImageSpec returns a geometry with enough data clusters to clear
// IsFAT32's 65525-cluster floor, for tests that exercise the real
// mount.Mount validation path end to end. It allocates a ~33 MiB image.
func LargeImageSpec() ImageSpec {
	const dataClusters = 65526
	return ImageSpec{
		PartitionLBA:      1,
		SectorsPerCluster: 1,
		ReservedSectors:   32,
		NumFATs:           2,
		FATSizeSectors:    520,
		DataClusters:      dataClusters,
		RootCluster:       2,
		VolumeLabel:       "TESTVOL",
	}
}

// BuildImage synthesizes a complete disk image (MBR + BPB + FSInfo + FAT ×
// NumFATs + zeroed data area with a minimal root directory) ready to back a
// MemoryDisk.
func BuildImage(spec ImageSpec) []byte {
	partitionSectors := uint32(spec.ReservedSectors) + uint32(spec.NumFATs)*spec.FATSizeSectors +
		spec.DataClusters*uint32(spec.SectorsPerCluster)
	totalSectors := spec.PartitionLBA + partitionSectors

	img := make([]byte, uint64(totalSectors)*sectorSize)

	writeMBR(img, spec.PartitionLBA, partitionSectors)
	writeBPB(img, spec)
	writeFSInfo(img, spec)
	writeFATs(img, spec)
	writeRootDirectory(img, spec)

	return img
}

func sector(img []byte, lba uint32) []byte {
	start := uint64(lba) * sectorSize
	return img[start : start+sectorSize]
}

func writeMBR(img []byte, partitionLBA, partitionSectors uint32) {
	entry := img[mbrPartitionTable : mbrPartitionTable+16]
	entry[0] = 0x80
	entry[4] = 0x0C
	binary.LittleEndian.PutUint32(entry[8:12], partitionLBA)
	binary.LittleEndian.PutUint32(entry[12:16], partitionSectors)
	binary.LittleEndian.PutUint16(img[mbrSignatureOff:mbrSignatureOff+2], mbrSignature)
}

func writeBPB(img []byte, spec ImageSpec) {
	bpb := sector(img, spec.PartitionLBA)

	binary.LittleEndian.PutUint16(bpb[bpbSectorSize:], sectorSize)
	bpb[bpbClusterSize] = spec.SectorsPerCluster
	binary.LittleEndian.PutUint16(bpb[bpbRsvdCnt:], spec.ReservedSectors)
	bpb[bpbNumFATs] = spec.NumFATs
	binary.LittleEndian.PutUint16(bpb[bpbRootEntCnt:], 0)
	binary.LittleEndian.PutUint16(bpb[bpbTotSect16:], 0)
	bpb[bpbMedia] = 0xF8
	binary.LittleEndian.PutUint16(bpb[bpbFATSize16:], 0)

	partitionSectors := uint32(spec.ReservedSectors) + uint32(spec.NumFATs)*spec.FATSizeSectors +
		spec.DataClusters*uint32(spec.SectorsPerCluster)
	binary.LittleEndian.PutUint32(bpb[bpbTotSect32:], partitionSectors)
	binary.LittleEndian.PutUint32(bpb[bpbFATSize32:], spec.FATSizeSectors)
	binary.LittleEndian.PutUint32(bpb[bpbRootCluster:], spec.RootCluster)
	binary.LittleEndian.PutUint16(bpb[bpbFSInfoSect:], 1)
	copy(bpb[bpbFSTypeFAT32:bpbFSTypeFAT32+8], "FAT32   ")

	binary.LittleEndian.PutUint16(bpb[mbrSignatureOff:], mbrSignature)
}

func writeFSInfo(img []byte, spec ImageSpec) {
	info := sector(img, spec.PartitionLBA+1)
	binary.LittleEndian.PutUint32(info[fsInfoLeadSig:], leadSignature)
	binary.LittleEndian.PutUint32(info[fsInfoStrucSig:], strucSignature)
	binary.LittleEndian.PutUint32(info[fsInfoFreeCnt:], spec.DataClusters-1)
	binary.LittleEndian.PutUint32(info[fsInfoNextFree:], spec.RootCluster+1)
	binary.LittleEndian.PutUint32(info[fsInfoTrailSig:], trailSignature)
}

// writeFATs marks clusters 0 and 1 as the reserved media/EOC pair and the
// root directory's single cluster as end-of-chain, leaving every other
// cluster free, identically in every FAT copy.
func writeFATs(img []byte, spec ImageSpec) {
	fatLBA := spec.PartitionLBA + uint32(spec.ReservedSectors)
	for f := uint8(0); f < spec.NumFATs; f++ {
		base := fatLBA + uint32(f)*spec.FATSizeSectors
		fat := img[uint64(base)*sectorSize : uint64(base+spec.FATSizeSectors)*sectorSize]
		binary.LittleEndian.PutUint32(fat[0:4], 0x0FFFFFF8)
		binary.LittleEndian.PutUint32(fat[4:8], 0x0FFFFFFF)
		binary.LittleEndian.PutUint32(fat[spec.RootCluster*4:spec.RootCluster*4+4], 0x0FFFFFFF)
	}
}

// writeRootDirectory leaves the root directory's cluster zeroed (an
// immediate end-of-directory marker) except for a single volume-label
// record when spec.VolumeLabel is set.
func writeRootDirectory(img []byte, spec ImageSpec) {
	if spec.VolumeLabel == "" {
		return
	}

	dataLBA := spec.PartitionLBA + uint32(spec.ReservedSectors) + uint32(spec.NumFATs)*spec.FATSizeSectors
	rootLBA := (spec.RootCluster-2)*uint32(spec.SectorsPerCluster) + dataLBA
	root := sector(img, rootLBA)

	for i := 0; i < 11; i++ {
		if i < len(spec.VolumeLabel) {
			root[i] = spec.VolumeLabel[i]
		} else {
			root[i] = ' '
		}
	}
	root[11] = 0x08 // ATTR_VOLUME_ID
}
