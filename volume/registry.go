package volume

import (
	"sort"
	"sync"

	"github.com/boljen/go-bitmap"

	"github.com/embeddedfs/fat32/errorsx"
)

// MaxVolumes is the number of distinct drive letters the 32-bit bitmask can
// track.
const MaxVolumes = 32

// FirstLetter is the drive letter assigned to bit 0 of the bitmask.
const FirstLetter = 'C'

// Registry is the process-wide collection of mounted volumes, replacing the
// original driver's global linked list and bitmask with an ordered
// collection owned by a process-wide registry. It is safe for concurrent
// Mount/Eject calls, but does not serialize
// concurrent operations against a single already-mounted Volume — that
// remains the caller's responsibility.
type Registry struct {
	mu      sync.Mutex
	letters bitmap.Bitmap
	volumes map[rune]*Volume
}

// NewRegistry creates an empty volume registry.
func NewRegistry() *Registry {
	return &Registry{
		letters: bitmap.NewSlice(MaxVolumes),
		volumes: make(map[rune]*Volume),
	}
}

// allocateLetter finds the lowest unset bit and returns the letter it maps
// to, marking the bit used. Must be called with mu held.
func (r *Registry) allocateLetter() (rune, errorsx.DriverError) {
	for i := 0; i < MaxVolumes; i++ {
		if !r.letters.Get(i) {
			r.letters.Set(i, true)
			return rune(FirstLetter + i), nil
		}
	}
	return 0, errorsx.ErrNoFreeLetters
}

// Add registers v, assigning it the lowest free drive letter. v.Letter is
// set on success.
func (r *Registry) Add(v *Volume) errorsx.DriverError {
	r.mu.Lock()
	defer r.mu.Unlock()

	letter, err := r.allocateLetter()
	if err != nil {
		return err
	}
	v.Letter = letter
	r.volumes[letter] = v
	return nil
}

// Remove releases letter's bit and drops the volume from the registry. It
// is a no-op if letter isn't currently mounted.
func (r *Registry) Remove(letter rune) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.volumes[letter]; !ok {
		return
	}
	delete(r.volumes, letter)
	r.letters.Set(int(letter-FirstLetter), false)
}

// Get returns the volume mounted under letter, or nil if none.
func (r *Registry) Get(letter rune) *Volume {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.volumes[letter]
}

// List returns every mounted volume ordered by drive letter, replacing the
// original's pointer-chased linked list traversal (First()/Next()) with
// positional iteration.
func (r *Registry) List() []*Volume {
	r.mu.Lock()
	defer r.mu.Unlock()

	letters := make([]rune, 0, len(r.volumes))
	for l := range r.volumes {
		letters = append(letters, l)
	}
	sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })

	out := make([]*Volume, len(letters))
	for i, l := range letters {
		out[i] = r.volumes[l]
	}
	return out
}

// First returns the first mounted volume in letter order, or nil if none
// are mounted. Mirrors the original API's volume_get_first().
func (r *Registry) First() *Volume {
	list := r.List()
	if len(list) == 0 {
		return nil
	}
	return list[0]
}
