package direntry

import "github.com/embeddedfs/fat32/errorsx"

// GetLabel returns the volume label stored in v's root directory, padded
// to 11 bytes with spaces. FAT32 also carries a label copy in the BPB, but
// Windows keeps the root-directory entry authoritative, so this walks the
// root directory the same way.
func GetLabel(d *Cursor) (label [11]byte, found bool, err errorsx.DriverError) {
	d.ResetToStart()

	for {
		rec, rerr := d.record()
		if rerr != nil {
			return label, false, rerr
		}

		attr := rec[sfnOffAttr]
		if attr&AttrVolumeID != 0 && attr&AttrLFN != AttrLFN {
			copy(label[:], rec[:11])
			return label, true, nil
		}

		eoc, nerr := d.GetNext()
		if nerr != nil {
			return label, false, nerr
		}
		if eoc {
			return label, false, nil
		}
	}
}

// SetLabel overwrites the existing volume-label record in v's root
// directory with name, space-padded or truncated to 11 bytes. It does not
// create a label record where none exists.
func SetLabel(d *Cursor, name string) (found bool, err errorsx.DriverError) {
	d.ResetToStart()

	for {
		rec, rerr := d.record()
		if rerr != nil {
			return false, rerr
		}

		attr := rec[sfnOffAttr]
		if attr&AttrVolumeID != 0 && attr&AttrLFN != AttrLFN {
			for i := 0; i < 11; i++ {
				if i < len(name) {
					rec[i] = name[i]
				} else {
					rec[i] = ' '
				}
			}
			d.Vol.Cache.MarkDirty()
			if ferr := d.Vol.Cache.Flush(); ferr != nil {
				return false, ferr
			}
			return true, nil
		}

		eoc, nerr := d.GetNext()
		if nerr != nil {
			return false, nerr
		}
		if eoc {
			return false, nil
		}
	}
}
