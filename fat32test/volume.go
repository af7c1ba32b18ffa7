package fat32test

import (
	"github.com/embeddedfs/fat32/mount"
	"github.com/embeddedfs/fat32/volume"
)

// NewVolume builds a *volume.Volume straight from an ImageSpec and a disk
// already holding a matching BuildImage, bypassing mount.Mount's IsFAT32
// floor so package-level tests can use arbitrarily small images. Component
// tests below the mount pipeline (direntry, path, file) don't exercise that
// floor anyway — it's a mount-time acceptance policy, not an engine
// invariant.
func NewVolume(disk *MemoryDisk, spec ImageSpec) *volume.Volume {
	partition := mount.Partition{
		Status: 0x80,
		Type:   0x0C,
		LBA:    spec.PartitionLBA,
		Size:   uint32(spec.ReservedSectors) + uint32(spec.NumFATs)*spec.FATSizeSectors + spec.DataClusters*uint32(spec.SectorsPerCluster),
	}
	bpb := mount.BPB{
		SectorSize:  sectorSize,
		ClusterSize: spec.SectorsPerCluster,
		RsvdCnt:     spec.ReservedSectors,
		NumFATs:     spec.NumFATs,
		FATSize32:   spec.FATSizeSectors,
		TotSect32:   partition.Size,
		RootCluster: spec.RootCluster,
		FSInfoSect:  1,
	}

	geometry := mount.BuildGeometry(partition, bpb)
	v := volume.New(disk, mount.Candidate{Partition: partition, BPB: bpb, Geometry: geometry})
	v.Letter = 'C'
	for i := range v.Label {
		if i < len(spec.VolumeLabel) {
			v.Label[i] = spec.VolumeLabel[i]
		} else {
			v.Label[i] = ' '
		}
	}
	return v
}
