// Package volume models a mounted FAT32 volume and the process-wide
// registry of currently-mounted volumes.
package volume

import (
	"github.com/embeddedfs/fat32/blockdev"
	"github.com/embeddedfs/fat32/internal/cache"
	"github.com/embeddedfs/fat32/internal/fat32fat"
	"github.com/embeddedfs/fat32/mount"
)

// Volume represents one mounted FAT32 partition: its assigned drive letter,
// its block device, its single-sector cache, and the geometry computed by
// the mount pipeline.
type Volume struct {
	Letter rune
	Disk   blockdev.Device

	SectorSize  uint32
	ClusterSize uint32
	TotalSize   uint32

	InfoLBA     uint32
	FatLBA      uint32
	DataLBA     uint32
	RootLBA     uint32
	RootCluster uint32

	Label [11]byte

	Cache *cache.SectorCache
	Table *fat32fat.Table
}

// New constructs a Volume from a mount candidate and binds its sector cache
// and FAT table engine. The assigned letter is filled in by the registry.
func New(disk blockdev.Device, cand mount.Candidate) *Volume {
	c := cache.New(disk)
	layout := fat32fat.Layout{
		FatLBA:      cand.Geometry.FatLBA,
		DataLBA:     cand.Geometry.DataLBA,
		InfoLBA:     cand.Geometry.InfoLBA,
		ClusterSize: cand.Geometry.ClusterSize,
	}

	return &Volume{
		Disk:        disk,
		SectorSize:  cand.Geometry.SectorSize,
		ClusterSize: cand.Geometry.ClusterSize,
		TotalSize:   cand.Geometry.TotalSize,
		InfoLBA:     cand.Geometry.InfoLBA,
		FatLBA:      cand.Geometry.FatLBA,
		DataLBA:     cand.Geometry.DataLBA,
		RootLBA:     cand.Geometry.RootLBA,
		RootCluster: cand.Geometry.RootCluster,
		Cache:       c,
		Table:       fat32fat.New(c, layout),
	}
}

// ClusterToSector converts a cluster number to its first LBA.
func (v *Volume) ClusterToSector(cluster uint32) uint32 {
	return v.Table.ClusterToSector(cluster)
}

// SectorToCluster is the inverse of ClusterToSector.
func (v *Volume) SectorToCluster(sector uint32) uint32 {
	return v.Table.SectorToCluster(sector)
}

// LabelString returns the volume label with trailing spaces trimmed.
func (v *Volume) LabelString() string {
	end := len(v.Label)
	for end > 0 && v.Label[end-1] == ' ' {
		end--
	}
	return string(v.Label[:end])
}
