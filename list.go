// Catalog enumeration with registry state.
package lazyline

import (
	"iter"
)

// Listing describes one catalogued wildcard.
type Listing struct {
	Name     string `json:"name" toml:"name"`
	Key      string `json:"key" toml:"key"`
	Path     string `json:"path" toml:"path"`
	Size     int64  `json:"size" toml:"size"`
	State    State  `json:"state" toml:"state"`
	Lines    int    `json:"lines" toml:"lines"`       // 0 unless Ready
	Resident bool   `json:"resident" toml:"resident"` // false unless Ready
}

// List yields every catalogued wildcard in key order with its current
// registry state. It never builds an index. Callers consume results
// lazily via range and can break early.
func (s *Store) List() iter.Seq2[Listing, error] {
	return func(yield func(Listing, error) bool) {
		if s.closed.Load() {
			yield(Listing{}, ErrClosed)
			return
		}
		gen := s.gen.Load()
		for _, e := range s.catalog.Entries() {
			l := Listing{Name: e.Name, Key: e.Key, Path: e.Path, Size: e.Size}
			if v, ok := gen.Load(e.Key); ok {
				idx := v.(*Index)
				l.State, l.Lines, l.Resident = StateReady, idx.Len(), idx.Resident()
			}
			if !yield(l, nil) {
				return
			}
		}
	}
}
