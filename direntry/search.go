package direntry

import (
	"github.com/embeddedfs/fat32/errorsx"
	"github.com/embeddedfs/fat32/internal/bytesx"
)

// Search looks for name (case-insensitive, first up to 8 bytes of the SFN
// base only — no dot handling, matching the source) from the start of the
// directory d was opened on, following any LFN chain that precedes a
// matching SFN record. On a match, d is repositioned to point into the
// matched entry: Cluster/Sector/StartSect updated to the child, RWOffset
// reset to 0, Size set from the record.
func (d *Cursor) Search(name string) (found bool, err errorsx.DriverError) {
	d.ResetToStart()

	target := []rune(name)
	var lfnChecksum byte
	lfnMatch := true

	for {
		rec, rerr := d.record()
		if rerr != nil {
			return false, rerr
		}

		first := rec[0]
		if first == StateEndOfDirectory {
			return false, nil
		}

		if first != StateDeleted && first != StateLiteralE5 {
			attr := rec[sfnOffAttr]

			if IsLFNSlot(attr) {
				slot := decodeLFNSlot(rec)
				window := lfnWindow(target, slot.index)
				if !lfnUnitsMatch(slot.units, window) {
					lfnMatch = false
				}
				lfnChecksum = slot.checksum
			} else {
				matched := false
				if lfnChecksum != 0 && lfnMatch {
					if lfnChecksum == SFNChecksum(rec[:sfnNameLen]) {
						matched = true
					}
				} else if sfnPrefixMatches(target, rec) {
					matched = true
				}

				if matched {
					cluster := ClusterOf(rec)
					size := SizeOf(rec)
					d.Cluster = cluster
					d.Sector = d.Vol.ClusterToSector(cluster)
					d.StartSect = d.Sector
					d.Size = size
					d.RWOffset = 0
					return true, nil
				}
				lfnMatch = true
				lfnChecksum = 0
			}
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

// LocateRecord is Search's twin for callers that need to mutate the
// matched record in place (rename, label edits): it runs the identical
// LFN/SFN matching pass but, on success, leaves d pointing AT the matched
// record itself rather than descending into the entry's own cluster.
func (d *Cursor) LocateRecord(name string) (found bool, err errorsx.DriverError) {
	d.ResetToStart()

	target := []rune(name)
	var lfnChecksum byte
	lfnMatch := true

	for {
		rec, rerr := d.record()
		if rerr != nil {
			return false, rerr
		}

		first := rec[0]
		if first == StateEndOfDirectory {
			return false, nil
		}

		if first != StateDeleted && first != StateLiteralE5 {
			attr := rec[sfnOffAttr]

			if IsLFNSlot(attr) {
				slot := decodeLFNSlot(rec)
				window := lfnWindow(target, slot.index)
				if !lfnUnitsMatch(slot.units, window) {
					lfnMatch = false
				}
				lfnChecksum = slot.checksum
			} else {
				matched := false
				if lfnChecksum != 0 && lfnMatch {
					if lfnChecksum == SFNChecksum(rec[:sfnNameLen]) {
						matched = true
					}
				} else if sfnPrefixMatches(target, rec) {
					matched = true
				}

				if matched {
					return true, nil
				}
				lfnMatch = true
				lfnChecksum = 0
			}
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

// lfnUnitsMatch stops at the first NUL/0xFFFF terminator in slot, matching
// fat_dir_lfn_cmp's early-exit behavior.
func lfnUnitsMatch(slot, window [13]uint16) bool {
	for i := 0; i < 13; i++ {
		if slot[i] == 0x0000 || slot[i] == 0xFFFF {
			break
		}
		if slot[i] != window[i] {
			return false
		}
	}
	return true
}

// asciiTarget returns up to n bytes of target uppercased to ASCII, padded
// with spaces, for SFN base comparison.
func asciiTarget(target []rune, n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		if i < len(target) {
			out[i] = bytesx.UpperASCII(byte(target[i]))
		} else {
			out[i] = ' '
		}
	}
	return out
}

// sfnPrefixMatches compares only the first min(len(target), 8) bytes of
// target against rec's SFN base, rather than always space-padding to 8.
// A fragment that is a strict prefix of a longer on-disk base ("AB" vs.
// "ABC     ") matches, mirroring fat_dir_sfn_cmp's length-bounded compare.
func sfnPrefixMatches(target []rune, rec []byte) bool {
	size := len(target)
	if size > 8 {
		size = 8
	}
	if size == 0 {
		return false
	}
	return bytesx.EqualFoldASCII(asciiTarget(target, size), rec[:size])
}
