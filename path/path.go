// Package path implements the "L:/a/b/c" path resolver,
// walking the directory engine one fragment at a time against a volume
// registry.
package path

import (
	"github.com/embeddedfs/fat32/direntry"
	"github.com/embeddedfs/fat32/errorsx"
	"github.com/embeddedfs/fat32/volume"
)

// Resolve walks path ("L:/seg1/seg2/...") and returns a cursor positioned
// at the containing directory. Traversal stops as soon as a '.' appears
// inside a fragment — the cursor then points at the directory that
// contains that fragment, which is what the file-open path wants without
// having to special-case the last component.
func Resolve(reg *volume.Registry, path string) (*direntry.Cursor, errorsx.DriverError) {
	if len(path) < 3 {
		return nil, errorsx.ErrPathError
	}

	vol := reg.Get(rune(path[0]))
	if vol == nil {
		return nil, errorsx.ErrNoVolume
	}
	if path[1] != ':' || path[2] != '/' {
		return nil, errorsx.ErrPathError
	}

	cur := direntry.NewRootCursor(vol)
	rest := path[3:]

	for {
		for len(rest) > 0 && rest[0] == '/' {
			rest = rest[1:]
		}
		if len(rest) == 0 {
			return &cur, nil
		}

		end := 0
		dotted := false
		for end < len(rest) && rest[end] != '/' {
			if rest[end] == '.' {
				dotted = true
				break
			}
			end++
		}
		if dotted {
			return &cur, nil
		}

		frag := rest[:end]
		if frag == "" {
			return nil, errorsx.ErrPathError
		}

		found, err := cur.Search(frag)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, errorsx.ErrPathError
		}
		rest = rest[end:]
	}
}

// SplitLast separates path into the directory path (through the final
// '/', inclusive) and the trailing name fragment, scanning backward from
// the end for the last '/'.
func SplitLast(path string) (dirPath string, fragment string, err errorsx.DriverError) {
	idx := -1
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", "", errorsx.ErrPathError
	}

	fragment = path[idx+1:]
	if fragment == "" {
		return "", "", errorsx.ErrPathError
	}
	return path[:idx+1], fragment, nil
}

// ResolveEntry resolves path down to the final named entry (file or
// directory), returning a cursor descended into it. It combines SplitLast
// with Resolve and a final Search of the trailing fragment.
func ResolveEntry(reg *volume.Registry, path string) (*direntry.Cursor, errorsx.DriverError) {
	dirPath, fragment, err := SplitLast(path)
	if err != nil {
		return nil, err
	}

	cur, err := Resolve(reg, dirPath)
	if err != nil {
		return nil, err
	}

	found, serr := cur.Search(fragment)
	if serr != nil {
		return nil, serr
	}
	if !found {
		return nil, errorsx.ErrNotFound
	}
	return cur, nil
}

// LocateRecord resolves path down to the final named entry's own directory
// record, leaving the returned cursor positioned on that record (rather
// than descended into it) so callers can rename or otherwise edit it in
// place.
func LocateRecord(reg *volume.Registry, path string) (*direntry.Cursor, errorsx.DriverError) {
	dirPath, fragment, err := SplitLast(path)
	if err != nil {
		return nil, err
	}

	cur, err := Resolve(reg, dirPath)
	if err != nil {
		return nil, err
	}

	found, serr := cur.LocateRecord(fragment)
	if serr != nil {
		return nil, serr
	}
	if !found {
		return nil, errorsx.ErrNotFound
	}
	return cur, nil
}
