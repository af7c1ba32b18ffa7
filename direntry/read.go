package direntry

import (
	"strings"

	"github.com/embeddedfs/fat32/errorsx"
)

// DateTime is a packed FAT date/time pair, as stored verbatim in a
// directory record.
type DateTime struct {
	Date uint16
	Time uint16
}

// Info is one directory entry returned by ReadEntry.
type Info struct {
	Name       string
	NameLength int
	Attribute  byte
	Size       uint32

	CreateTenth uint8
	Created     DateTime
	Modified    DateTime
	AccessDate  uint16
}

// IsDirectory reports whether this entry is itself a directory.
func (info Info) IsDirectory() bool {
	return info.Attribute&AttrDirectory != 0
}

// IsVolumeLabel reports whether this entry is the volume label record.
func (info Info) IsVolumeLabel() bool {
	return info.Attribute&AttrVolumeID != 0 && !IsLFNSlot(info.Attribute)
}

func decodeDateTimeInfo(rec []byte) Info {
	return Info{
		Attribute:   rec[sfnOffAttr],
		Size:        SizeOf(rec),
		CreateTenth: rec[sfnOffCreateTenth],
		Created: DateTime{
			Date: le16(rec, sfnOffCreateDate),
			Time: le16(rec, sfnOffCreateTime),
		},
		Modified: DateTime{
			Date: le16(rec, sfnOffWriteDate),
			Time: le16(rec, sfnOffWriteTime),
		},
		AccessDate: le16(rec, sfnOffAccessDate),
	}
}

func le16(b []byte, off int) uint16 {
	return uint16(b[off]) | uint16(b[off+1])<<8
}

// sfnToName reconstructs the dotted 8.3 name from a raw 11-byte SFN field.
func sfnToName(rec []byte) string {
	base := strings.TrimRight(string(rec[0:8]), " ")
	ext := strings.TrimRight(string(rec[8:11]), " ")
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// ReadEntry decodes the next in-use directory record under the cursor into
// an Info, reconstructing any LFN chain that precedes it, and advances the
// cursor past it. It skips deleted records transparently. eof is true once
// the end-of-directory marker is reached, at which point Info is the zero
// value.
func (d *Cursor) ReadEntry() (info Info, eof bool, err errorsx.DriverError) {
	var lfnParts [20]string
	maxIndex := 0

	for {
		rec, rerr := d.record()
		if rerr != nil {
			return Info{}, false, rerr
		}

		first := rec[0]
		if first == StateEndOfDirectory {
			return Info{}, true, nil
		}

		if first == StateDeleted || first == StateLiteralE5 {
			if eoc, nerr := d.GetNext(); nerr != nil {
				return Info{}, false, nerr
			} else if eoc {
				return Info{}, true, nil
			}
			continue
		}

		attr := rec[sfnOffAttr]
		if IsLFNSlot(attr) {
			slot := decodeLFNSlot(rec)
			if slot.index >= 1 && slot.index <= len(lfnParts) {
				lfnParts[slot.index-1] = unitsToUTF8(slot.units)
				if slot.index > maxIndex {
					maxIndex = slot.index
				}
			}
			if eoc, nerr := d.GetNext(); nerr != nil {
				return Info{}, false, nerr
			} else if eoc {
				return Info{}, true, nil
			}
			continue
		}

		info = decodeDateTimeInfo(rec)
		if maxIndex > 0 {
			info.Name = strings.Join(lfnParts[:maxIndex], "")
		} else {
			info.Name = sfnToName(rec)
		}
		info.NameLength = len([]rune(info.Name))

		if _, nerr := d.GetNext(); nerr != nil {
			return Info{}, false, nerr
		}
		return info, false, nil
	}
}
