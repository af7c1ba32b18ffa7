// Package fat32fat implements the FAT32 cluster chain / FAT table engine:
// reading and writing a cluster's 32-bit FAT entry, scanning for free
// clusters with FSInfo hinting, end-of-chain detection, and the
// cluster<->sector arithmetic every other component builds on.
package fat32fat

import (
	"github.com/embeddedfs/fat32/errorsx"
	"github.com/embeddedfs/fat32/internal/bytesx"
	"github.com/embeddedfs/fat32/internal/cache"
)

// Reserved cluster numbers; never chain members.
const (
	FirstDataCluster = 2
)

// FAT entry values (low 28 bits significant).
const (
	EntryFree  = 0x0000000
	EntryBad   = 0xFFFFFF7
	EntryEOC   = 0x0FFFFFFF
	entryMask  = 0x0FFFFFFF
	eocLowMark = 0x0FFFFFF8
)

// FSInfo sector field offsets (INFO_CLUST_CNT / INFO_CLUST_NEXT_FREE).
const (
	infoFreeCount = 488
	infoNextFree  = 492
)

const entriesPerSector = blockdevSectorSize / 4
const blockdevSectorSize = 512

// Layout is the subset of a mounted volume's geometry the FAT engine needs.
// It is populated by the mount pipeline and cluster/sector math never
// depends on anything else.
type Layout struct {
	FatLBA      uint32
	DataLBA     uint32
	InfoLBA     uint32
	ClusterSize uint32 // sectors per cluster
}

// Table is the FAT table engine bound to one volume's cache and layout.
type Table struct {
	cache  *cache.SectorCache
	layout Layout
}

// New binds a FAT table engine to a volume's sector cache and geometry.
func New(c *cache.SectorCache, layout Layout) *Table {
	return &Table{cache: c, layout: layout}
}

// ClusterToSector converts a cluster number to its first LBA.
// sector = (cluster-2)*cluster_size + data_lba.
func (l Layout) ClusterToSector(cluster uint32) uint32 {
	return (cluster-FirstDataCluster)*l.ClusterSize + l.DataLBA
}

// SectorToCluster is the inverse of ClusterToSector.
func (l Layout) SectorToCluster(sector uint32) uint32 {
	return (sector-l.DataLBA)/l.ClusterSize + FirstDataCluster
}

// ClusterToSector is a convenience forwarding to the bound layout.
func (t *Table) ClusterToSector(cluster uint32) uint32 {
	return t.layout.ClusterToSector(cluster)
}

// SectorToCluster is a convenience forwarding to the bound layout.
func (t *Table) SectorToCluster(sector uint32) uint32 {
	return t.layout.SectorToCluster(sector)
}

// IsEndOfChain reports whether entry (after masking to 28 significant bits)
// falls in the end-of-chain range [0x0FFFFFF8, 0x0FFFFFFF].
func IsEndOfChain(entry uint32) bool {
	masked := entry & entryMask
	return masked >= eocLowMark && masked <= EntryEOC
}

// IsFreeEntry reports whether entry should be treated as a free cluster.
//
// This faithfully reproduces the original driver's predicate, which tests
// only the low 7 bits rather than all 28 significant bits. That accepts some
// non-free entries whose low 7 bits happen to be zero — a known latent bug
// in the source this was ported from. The stricter test would be
// `entry&0x0FFFFFFF == 0`; it was not adopted so this driver stays
// bug-compatible with the original's free-cluster scan.
func IsFreeEntry(entry uint32) bool {
	return entry&0x7F == 0
}

// Get reads cluster's 32-bit FAT entry.
func (t *Table) Get(cluster uint32) (uint32, errorsx.DriverError) {
	sector := t.layout.FatLBA + cluster/entriesPerSector
	if err := t.cache.Read(sector); err != nil {
		return 0, err
	}
	offset := int(cluster%entriesPerSector) * 4
	return bytesx.LoadU32(t.cache.Buffer(), offset), nil
}

// Set writes entry as cluster's 32-bit FAT entry and flushes immediately:
// FAT updates are write-through for safety.
func (t *Table) Set(cluster uint32, entry uint32) errorsx.DriverError {
	sector := t.layout.FatLBA + cluster/entriesPerSector
	if err := t.cache.Read(sector); err != nil {
		return err
	}
	offset := int(cluster%entriesPerSector) * 4
	bytesx.StoreU32(t.cache.Buffer(), offset, entry)
	t.cache.MarkDirty()
	return t.cache.Flush()
}

// GetFreeCluster scans the FAT for a free cluster starting at the FSInfo
// next_free hint, marks it end-of-chain, and updates FSInfo's next_free/
// free_count hint to the next free cluster found after it. It returns the
// allocated cluster number.
func (t *Table) GetFreeCluster() (uint32, errorsx.DriverError) {
	if err := t.cache.Read(t.layout.InfoLBA); err != nil {
		return 0, err
	}
	nextFree := bytesx.LoadU32(t.cache.Buffer(), infoNextFree)
	totalFree := bytesx.LoadU32(t.cache.Buffer(), infoFreeCount)

	sector := t.layout.FatLBA + nextFree/entriesPerSector
	offset := int(nextFree%entriesPerSector) * 4

	var allocated uint32
	found := false

	for {
		if err := t.cache.Read(sector); err != nil {
			return 0, err
		}
		entry := bytesx.LoadU32(t.cache.Buffer(), offset)
		if IsFreeEntry(entry) {
			if found {
				break
			}
			found = true
			allocated = entriesPerSector*(sector-t.layout.FatLBA) + uint32(offset/4)
			bytesx.StoreU32(t.cache.Buffer(), offset, EntryEOC)
			t.cache.MarkDirty()
		}
		offset += 4
		if offset >= blockdevSectorSize {
			sector++
			offset = 0
		}
	}

	newNextFree := entriesPerSector*(sector-t.layout.FatLBA) + uint32(offset/4)

	if err := t.cache.Read(t.layout.InfoLBA); err != nil {
		return 0, err
	}
	bytesx.StoreU32(t.cache.Buffer(), infoNextFree, newNextFree)
	bytesx.StoreU32(t.cache.Buffer(), infoFreeCount, totalFree-1)
	t.cache.MarkDirty()
	if err := t.cache.Flush(); err != nil {
		return 0, err
	}

	return allocated, nil
}

// Next follows the chain from cluster by one hop, returning the next
// cluster number, or errorsx.ErrEndOfChain if cluster is the last in the
// chain.
func (t *Table) Next(cluster uint32) (uint32, errorsx.DriverError) {
	entry, err := t.Get(cluster)
	if err != nil {
		return 0, err
	}
	if IsEndOfChain(entry) {
		return 0, errorsx.ErrEndOfChain
	}
	return entry & entryMask, nil
}

// Link sets predecessor's FAT entry to point at successor, chaining them
// together. Used when growing a file or directory by one cluster.
func (t *Table) Link(predecessor, successor uint32) errorsx.DriverError {
	return t.Set(predecessor, successor)
}
