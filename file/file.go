// Package file implements the FAT32 file cursor: open by path, byte-wise
// read with FAT-chain traversal, seek by cluster-hop, and close.
package file

import (
	"github.com/embeddedfs/fat32/blockdev"
	"github.com/embeddedfs/fat32/errorsx"
	"github.com/embeddedfs/fat32/path"
	"github.com/embeddedfs/fat32/volume"
)

// Cursor is an open file: the cluster chain it was opened on plus a
// byte-granular read/write position.
type Cursor struct {
	Vol *volume.Volume

	StartSect  uint32
	Sector     uint32
	Cluster    uint32
	RWOffset   uint32
	Size       uint32
	GlobOffset uint32
}

// Open resolves path to its containing directory, searches for the final
// fragment, and seeds a file cursor on the resulting entry.
func Open(reg *volume.Registry, p string) (*Cursor, errorsx.DriverError) {
	dirPath, fragment, err := path.SplitLast(p)
	if err != nil {
		return nil, err
	}

	dir, err := path.Resolve(reg, dirPath)
	if err != nil {
		return nil, err
	}

	found, serr := dir.Search(fragment)
	if serr != nil {
		return nil, serr
	}
	if !found {
		return nil, errorsx.ErrNotFound
	}

	return &Cursor{
		Vol:       dir.Vol,
		StartSect: dir.Sector,
		Sector:    dir.Sector,
		Cluster:   dir.Cluster,
		RWOffset:  0,
		Size:      dir.Size,
	}, nil
}

// advanceSector moves the cursor to the next sector of the file, following
// the FAT chain across cluster boundaries exactly like a directory cursor's
// GetNext does; callers reset RWOffset themselves. Reaching the end of the
// chain returns errorsx.ErrEndOfChain.
func (f *Cursor) advanceSector() errorsx.DriverError {
	f.Sector++
	clusterStart := f.Vol.ClusterToSector(f.Cluster)
	clusterEnd := clusterStart + f.Vol.ClusterSize
	if f.Sector >= clusterStart && f.Sector < clusterEnd {
		return nil
	}

	next, err := f.Vol.Table.Next(f.Cluster)
	if err != nil {
		return err
	}
	f.Cluster = next
	f.Sector = f.Vol.ClusterToSector(next)
	return nil
}

// Read copies up to len(buf) bytes starting at the cursor's current
// position, advancing it, and returns the count actually delivered — a
// short count at end of file is not an error.
func (f *Cursor) Read(buf []byte) (int, errorsx.DriverError) {
	n := 0
	for n < len(buf) {
		if f.GlobOffset >= f.Size {
			break
		}

		if f.RWOffset >= blockdev.SectorSize {
			f.RWOffset -= blockdev.SectorSize
			if err := f.advanceSector(); err != nil {
				return n, err
			}
		}

		if err := f.Vol.Cache.Read(f.Sector); err != nil {
			return n, err
		}
		sector := f.Vol.Cache.Buffer()
		buf[n] = sector[f.RWOffset]

		n++
		f.RWOffset++
		f.GlobOffset++
	}
	return n, nil
}

// Seek repositions the cursor to an absolute byte offset, walking the FAT
// chain from the file's first cluster.
func (f *Cursor) Seek(offset uint32) errorsx.DriverError {
	cluster := f.Vol.SectorToCluster(f.StartSect)

	sectorOff := offset / f.Vol.SectorSize
	clusterOff := sectorOff / f.Vol.ClusterSize
	sectorOff %= f.Vol.ClusterSize

	for i := uint32(0); i < clusterOff; i++ {
		next, err := f.Vol.Table.Next(cluster)
		if err != nil {
			return err
		}
		cluster = next
	}

	f.Cluster = cluster
	f.Sector = f.Vol.ClusterToSector(cluster) + sectorOff
	f.RWOffset = offset % f.Vol.SectorSize
	f.GlobOffset = offset
	return nil
}

// Close flushes the volume's sector cache.
func (f *Cursor) Close() errorsx.DriverError {
	return f.Vol.Cache.Flush()
}

// Write overwrites bytes starting at the cursor's current position,
// allocating and linking new clusters via the free-cluster allocator when
// the write runs past the file's current chain, and grows Size to cover
// newly-written bytes (SPEC_FULL §3.4 write/growth policy). The directory
// record's size field is not touched here; callers update it via
// direntry.SetSizeOf against the entry before Close, matching how the
// original leaves size bookkeeping to the caller that owns the directory
// cursor.
func (f *Cursor) Write(buf []byte) (int, errorsx.DriverError) {
	n := 0
	for n < len(buf) {
		if f.RWOffset >= blockdev.SectorSize {
			f.RWOffset -= blockdev.SectorSize
			if err := f.growingAdvance(); err != nil {
				return n, err
			}
		}

		if err := f.Vol.Cache.Read(f.Sector); err != nil {
			return n, err
		}
		sector := f.Vol.Cache.Buffer()
		sector[f.RWOffset] = buf[n]
		f.Vol.Cache.MarkDirty()

		n++
		f.RWOffset++
		f.GlobOffset++
		if f.GlobOffset > f.Size {
			f.Size = f.GlobOffset
		}
	}
	return n, nil
}

// growingAdvance behaves like advanceSector but allocates a fresh cluster
// via the FAT allocator and links it onto the chain instead of failing
// when the chain ends.
func (f *Cursor) growingAdvance() errorsx.DriverError {
	f.Sector++
	clusterStart := f.Vol.ClusterToSector(f.Cluster)
	clusterEnd := clusterStart + f.Vol.ClusterSize
	if f.Sector >= clusterStart && f.Sector < clusterEnd {
		return nil
	}

	next, err := f.Vol.Table.Next(f.Cluster)
	if err == nil {
		f.Cluster = next
		f.Sector = f.Vol.ClusterToSector(next)
		return nil
	}
	if err != errorsx.ErrEndOfChain {
		return err
	}

	fresh, aerr := f.Vol.Table.GetFreeCluster()
	if aerr != nil {
		return aerr
	}
	if lerr := f.Vol.Table.Link(f.Cluster, fresh); lerr != nil {
		return lerr
	}
	f.Cluster = fresh
	f.Sector = f.Vol.ClusterToSector(fresh)
	return nil
}
