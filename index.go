package lazyline

import (
	"fmt"

	"github.com/spf13/afero"
)

// Source records how an Index was obtained.
type Source int

const (
	SourceScan  Source = iota // built by scanning the file
	SourceCache               // decoded from a cache blob
)

func (s Source) String() string {
	if s == SourceCache {
		return "cache"
	}
	return "scan"
}

// Index locates every meaningful line of one source file. It is immutable
// once published by a Store and safe for concurrent use.
//
// A lazy Index keeps only offsets and lengths and reads each line from
// disk on demand. A resident Index has additionally read every line into
// memory once; lookups never touch the file again.
type Index struct {
	Key         string // Lower-case wildcard key
	Name        string // Display name
	Path        string // Source file
	Fingerprint string // "<size>:<mtime unix nanos>" at build time
	Size        int64  // Source size at build time
	Source      Source

	offsets []int64
	lengths []int32
	lines   []string // nil unless resident

	fs  afero.Fs
	log Logger
}

// Len returns the number of indexed lines.
func (idx *Index) Len() int {
	return len(idx.offsets)
}

// Resident reports whether the lines are held in memory.
func (idx *Index) Resident() bool {
	return idx.lines != nil
}

// Span returns the byte offset and raw length of line n.
func (idx *Index) Span(n int) (offset int64, length int32, ok bool) {
	if n < 0 || n >= len(idx.offsets) {
		return 0, 0, false
	}
	return idx.offsets[n], idx.lengths[n], true
}

// materialize reads every line into memory. Unlike Line, a file that
// cannot be read fails the call with ErrSourceMissing.
func (idx *Index) materialize() error {
	lines := make([]string, len(idx.offsets))
	if len(lines) == 0 {
		idx.lines = lines
		return nil
	}

	f, err := idx.fs.Open(idx.Path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSourceMissing, err)
	}
	defer f.Close()

	var buf []byte
	for n := range lines {
		raw, err := readAt(f, idx.offsets[n], idx.lengths[n], buf)
		if err != nil {
			return fmt.Errorf("%w: line %d: %w", ErrSourceMissing, n, err)
		}
		lines[n] = clean(raw)
		buf = raw[:0]
	}
	idx.lines = lines
	return nil
}

func (idx *Index) blob() *blob {
	return &blob{Fingerprint: idx.Fingerprint, Offsets: idx.offsets, Lengths: idx.lengths}
}
