package direntry

import (
	"strings"

	"github.com/embeddedfs/fat32/errorsx"
	"github.com/embeddedfs/fat32/internal/bytesx"
	"github.com/embeddedfs/fat32/volume"
)

// EntriesRequired returns the number of 32-byte directory records a name of
// length L needs: one bare SFN record if L is at most 8, otherwise an LFN
// chain sized to carry L code units plus the trailing SFN record.
func EntriesRequired(nameLength int) int {
	if nameLength <= 8 {
		return 1
	}
	return (nameLength+12)/13 + 1
}

// entrySlot identifies one record position for chain allocation purposes.
type entrySlot struct {
	cluster uint32
	sector  uint32
	offset  uint32
}

func (s entrySlot) record(v *volume.Volume) ([]byte, errorsx.DriverError) {
	if err := v.Cache.Read(s.sector); err != nil {
		return nil, err
	}
	buf := v.Cache.Buffer()
	return buf[s.offset : s.offset+RecordSize], nil
}

// entriesPresent reports how many records the entry currently under d
// occupies, and the slot positions of those records ordered from the
// earliest LFN slot to the trailing SFN record.
func entriesPresent(d *Cursor) ([]entrySlot, errorsx.DriverError) {
	rec, err := d.record()
	if err != nil {
		return nil, err
	}
	if IsLFNSlot(rec[sfnOffAttr]) {
		return nil, errorsx.ErrNotLongName
	}

	tail := []entrySlot{{d.Cluster, d.Sector, d.RWOffset}}

	cluster, sector, offset := d.Cluster, d.Sector, d.RWOffset
	for offset >= RecordSize {
		offset -= RecordSize
		probe := entrySlot{cluster, sector, offset}
		prec, perr := probe.record(d.Vol)
		if perr != nil {
			return nil, perr
		}
		if !IsLFNSlot(prec[sfnOffAttr]) {
			break
		}
		tail = append([]entrySlot{probe}, tail...)
	}
	return tail, nil
}

// findChain looks for `required` contiguous deleted (or literal-E5) slots
// starting from the first record of the directory d belongs to, first-fit. If none are found
// before the end-of-directory marker, it allocates by appending: growing
// the directory into a fresh cluster via the free-cluster allocator when
// the current cluster is exhausted (allocation policy decided in
// DESIGN.md: reuse contiguous deleted slots, else append).
func findChain(d *Cursor, required int) ([]entrySlot, errorsx.DriverError) {
	v := d.Vol
	scan := Cursor{Vol: v, StartSect: d.StartSect, Sector: d.StartSect, Cluster: v.SectorToCluster(d.StartSect)}

	var run []entrySlot
	for {
		rec, err := scan.record()
		if err != nil {
			return nil, err
		}

		switch rec[0] {
		case StateDeleted, StateLiteralE5:
			run = append(run, entrySlot{scan.Cluster, scan.Sector, scan.RWOffset})
			if len(run) == required {
				return run, nil
			}
		case StateEndOfDirectory:
			return appendChain(v, scan, required)
		default:
			run = run[:0]
		}

		eoc, nerr := scan.GetNext()
		if nerr != nil {
			return nil, nerr
		}
		if eoc {
			return appendChain(v, scan, required)
		}
	}
}

// appendChain lays out `required` fresh slots starting at the
// end-of-directory marker scan points to, growing the directory's last
// cluster via the FAT allocator if it runs out of room, and leaves a new
// end-of-directory marker after the chain.
func appendChain(v *volume.Volume, scan Cursor, required int) ([]entrySlot, errorsx.DriverError) {
	var out []entrySlot
	for i := 0; i < required; i++ {
		out = append(out, entrySlot{scan.Cluster, scan.Sector, scan.RWOffset})
		if i == required-1 {
			break
		}
		eoc, err := advanceOrGrow(v, &scan)
		if err != nil {
			return nil, err
		}
		if eoc {
			return nil, errorsx.ErrNoFreeClusters
		}
	}

	if eoc, err := advanceOrGrow(v, &scan); err != nil {
		return nil, err
	} else if !eoc {
		rec, rerr := (entrySlot{scan.Cluster, scan.Sector, scan.RWOffset}).record(v)
		if rerr != nil {
			return nil, rerr
		}
		rec[0] = StateEndOfDirectory
		v.Cache.MarkDirty()
		if ferr := v.Cache.Flush(); ferr != nil {
			return nil, ferr
		}
	}
	return out, nil
}

// advanceOrGrow behaves like Cursor.GetNext, except that running off the
// end of the directory's cluster chain allocates and links a fresh cluster
// instead of reporting end-of-chain.
func advanceOrGrow(v *volume.Volume, d *Cursor) (eoc bool, err errorsx.DriverError) {
	d.RWOffset += RecordSize
	if d.RWOffset < v.SectorSize {
		return false, nil
	}
	d.RWOffset -= v.SectorSize
	d.Sector++

	clusterStart := v.ClusterToSector(d.Cluster)
	clusterEnd := clusterStart + v.ClusterSize
	if d.Sector >= clusterStart && d.Sector < clusterEnd {
		return false, nil
	}

	next, nerr := v.Table.Next(d.Cluster)
	if nerr == nil {
		d.Cluster = next
		d.Sector = v.ClusterToSector(next)
		return false, nil
	}
	if nerr != errorsx.ErrEndOfChain {
		return false, nerr
	}

	fresh, aerr := v.Table.GetFreeCluster()
	if aerr != nil {
		return false, aerr
	}
	if lerr := v.Table.Link(d.Cluster, fresh); lerr != nil {
		return false, lerr
	}
	d.Cluster = fresh
	d.Sector = v.ClusterToSector(fresh)
	return false, nil
}

// buildSFNBase derives an 11-byte 8.3 name from an arbitrary-length name:
// the first 8 characters before the last dot (uppercased ASCII, inner dots
// kept) as the base, the characters after the last dot (up to 3) as the
// extension. No ~N collision numbering is attempted.
func buildSFNBase(name string) [11]byte {
	var out [11]byte
	for i := range out {
		out[i] = ' '
	}

	base := name
	ext := ""
	if dot := strings.LastIndexByte(name, '.'); dot > 0 {
		base = name[:dot]
		ext = name[dot+1:]
	}
	for i := 0; i < 8 && i < len(base); i++ {
		out[i] = upperASCIIByte(base[i])
	}
	for i := 0; i < 3 && i < len(ext); i++ {
		out[8+i] = upperASCIIByte(ext[i])
	}
	return out
}

func upperASCIIByte(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 32
	}
	return b
}

// writeChain encodes name as an LFN chain (if needed) plus a trailing SFN
// record across slots, preserving the attribute/cluster/size/date fields
// carried in source (the entry's original 32-byte SFN record).
func writeChain(v *volume.Volume, slots []entrySlot, name string, source [32]byte) errorsx.DriverError {
	runes := []rune(name)
	lfnCount := len(slots) - 1

	sfn := buildSFNBase(name)
	checksum := SFNChecksum(sfn[:])

	for i := 0; i < lfnCount; i++ {
		slotIndex := lfnCount - i
		rec, err := slots[i].record(v)
		if err != nil {
			return err
		}

		seq := byte(slotIndex)
		if i == 0 {
			seq |= lfnSeqLastFlag
		}
		rec[lfnOffSequence] = seq
		rec[sfnOffAttr] = AttrLFN
		rec[12] = 0
		rec[lfnOffChecksum] = checksum
		bytesx.StoreU16(rec, 26, 0)

		window := lfnWindow(runes, slotIndex)
		for u, off := range lfnUnitOffsets {
			bytesx.StoreU16(rec, off, window[u])
		}
		v.Cache.MarkDirty()
		if err := v.Cache.Flush(); err != nil {
			return err
		}
	}

	sfnRec, err := slots[len(slots)-1].record(v)
	if err != nil {
		return err
	}
	copy(sfnRec[:11], sfn[:])
	copy(sfnRec[11:], source[11:])
	v.Cache.MarkDirty()
	return v.Cache.Flush()
}

// Rename replaces the name of the entry under d. When the new name fits in
// the entry's current slot count it is rewritten in place; otherwise a new
// chain is allocated elsewhere in the directory (first-fit over deleted
// slots, else appended) and the old slots are marked deleted. On success d
// is repositioned onto the (possibly relocated) SFN record.
func (d *Cursor) Rename(name string) errorsx.DriverError {
	required := EntriesRequired(len(name))
	oldSlots, err := entriesPresent(d)
	if err != nil {
		return err
	}

	var source [32]byte
	sourceRec, rerr := d.record()
	if rerr != nil {
		return rerr
	}
	copy(source[:], sourceRec)

	if required <= len(oldSlots) {
		slots := oldSlots[len(oldSlots)-required:]
		if werr := writeChain(d.Vol, slots, name, source); werr != nil {
			return werr
		}
		for _, stale := range oldSlots[:len(oldSlots)-required] {
			rec, oerr := stale.record(d.Vol)
			if oerr != nil {
				return oerr
			}
			rec[0] = StateDeleted
			d.Vol.Cache.MarkDirty()
			if oerr := d.Vol.Cache.Flush(); oerr != nil {
				return oerr
			}
		}
		last := slots[len(slots)-1]
		d.Cluster, d.Sector, d.RWOffset = last.cluster, last.sector, last.offset
		return nil
	}

	slots, ferr := findChain(d, required)
	if ferr != nil {
		return ferr
	}
	if werr := writeChain(d.Vol, slots, name, source); werr != nil {
		return werr
	}

	for _, old := range oldSlots {
		rec, oerr := old.record(d.Vol)
		if oerr != nil {
			return oerr
		}
		rec[0] = StateDeleted
		d.Vol.Cache.MarkDirty()
		if oerr := d.Vol.Cache.Flush(); oerr != nil {
			return oerr
		}
	}

	last := slots[len(slots)-1]
	d.Cluster = last.cluster
	d.Sector = last.sector
	d.RWOffset = last.offset
	return nil
}
