package direntry

import (
	"github.com/embeddedfs/fat32/blockdev"
	"github.com/embeddedfs/fat32/errorsx"
	"github.com/embeddedfs/fat32/volume"
)

// Cursor points at one 32-byte directory record within a directory's
// cluster chain. Invariant: Sector falls within
// [ClusterToSector(Cluster), ClusterToSector(Cluster)+ClusterSize);
// RWOffset < sector size and is a multiple of 32.
type Cursor struct {
	Vol       *volume.Volume
	StartSect uint32
	Sector    uint32
	Cluster   uint32
	RWOffset  uint32
	Size      uint32
}

// NewRootCursor seeds a directory cursor at v's root directory.
func NewRootCursor(v *volume.Volume) Cursor {
	return Cursor{
		Vol:       v,
		StartSect: v.RootLBA,
		Sector:    v.RootLBA,
		Cluster:   v.RootCluster,
		RWOffset:  0,
	}
}

// ResetToStart rewinds the cursor to the first record of the directory it
// was opened on, unless it is already there.
func (d *Cursor) ResetToStart() {
	if d.Sector == d.StartSect && d.RWOffset == 0 {
		return
	}
	d.Sector = d.StartSect
	d.Cluster = d.Vol.SectorToCluster(d.StartSect)
	d.RWOffset = 0
}

// record reads the record currently under the cursor through the volume's
// sector cache and returns the 32-byte slice it occupies. The slice aliases
// the cache buffer; callers that mutate it must call d.Vol.Cache.MarkDirty.
func (d *Cursor) record() ([]byte, errorsx.DriverError) {
	if err := d.Vol.Cache.Read(d.Sector); err != nil {
		return nil, err
	}
	buf := d.Vol.Cache.Buffer()
	return buf[d.RWOffset : d.RWOffset+RecordSize], nil
}

// GetNext advances the cursor by one 32-byte record, following the FAT
// chain across sector and cluster boundaries. eoc is true if the directory
// ended.
func (d *Cursor) GetNext() (eoc bool, err errorsx.DriverError) {
	d.RWOffset += RecordSize
	if d.RWOffset >= blockdev.SectorSize {
		d.RWOffset -= blockdev.SectorSize
		d.Sector++

		clusterStart := d.Vol.ClusterToSector(d.Cluster)
		clusterEnd := clusterStart + d.Vol.ClusterSize
		if d.Sector < clusterStart || d.Sector >= clusterEnd {
			next, nerr := d.Vol.Table.Next(d.Cluster)
			if nerr == errorsx.ErrEndOfChain {
				return true, nil
			}
			if nerr != nil {
				return false, nerr
			}
			d.Cluster = next
			d.Sector = d.Vol.ClusterToSector(next)
		}
	}
	return false, nil
}
