package lazyline

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"
)

// State is the registry state of a wildcard key.
type State int

const (
	StateAbsent State = iota // no index built in the current generation
	StateReady               // index published
)

func (s State) String() string {
	if s == StateReady {
		return "ready"
	}
	return "absent"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "ready":
		*s = StateReady
	case "absent":
		*s = StateAbsent
	default:
		return fmt.Errorf("unknown state %q", text)
	}
	return nil
}

// Stats are cumulative Store counters.
type Stats struct {
	Ready              int   // indexes in the current generation
	Scans              int64 // full file scans
	CacheHits          int64 // builds served from a cache blob
	CacheMisses        int64 // builds that found no usable blob
	CacheWriteFailures int64 // blobs that could not be saved
}

// Store owns the line indexes of every file in its catalog.
//
// Index builds are at-most-once per key: concurrent callers for the same
// key wait on one build and share its result, while callers for other
// keys proceed in parallel. Published indexes are read without locks.
type Store struct {
	config  Config
	fs      afero.Fs
	log     Logger
	catalog *Catalog
	locks   *lockTable
	osfs    bool

	gen    atomic.Pointer[sync.Map] // key -> *Index
	closed atomic.Bool

	scans       atomic.Int64
	hits        atomic.Int64
	misses      atomic.Int64
	writeFailed atomic.Int64
}

// Open creates a Store and performs the initial catalog sync.
func Open(config Config) (*Store, error) {
	config.defaults()

	catalog, err := NewCatalog(config.Fs, config.SourceDir, config.Include, config.Exclude)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	_, osfs := config.Fs.(*afero.OsFs)
	s := &Store{
		config:  config,
		fs:      config.Fs,
		log:     config.Logger,
		catalog: catalog,
		locks:   newLockTable(config.LockShards),
		osfs:    osfs,
	}
	s.gen.Store(new(sync.Map))

	if config.CacheDir != "" {
		if err := s.fs.MkdirAll(config.CacheDir, 0o755); err != nil {
			return nil, fmt.Errorf("open: cache dir: %w", err)
		}
	}
	if config.SourceDir != "" {
		res, err := catalog.Sync()
		if err != nil {
			return nil, fmt.Errorf("open: %w", err)
		}
		s.log.Debugf("catalog %s: %d wildcards", config.SourceDir, res.Entries)
	}
	return s, nil
}

// Close releases every index. Methods called afterwards return ErrClosed.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	s.gen.Store(new(sync.Map))
	return nil
}

// Catalog returns the store's catalog.
func (s *Store) Catalog() *Catalog {
	return s.catalog
}

// Register adds a single file to the catalog under name. Re-registering
// a name with another file, or after its file changed, drops the index
// built from the previous one.
func (s *Store) Register(name, path string) (Entry, error) {
	if s.closed.Load() {
		return Entry{}, ErrClosed
	}
	prev, existed := s.catalog.get(Key(name))
	e, err := s.catalog.Register(name, path)
	if err != nil {
		return e, err
	}
	if existed && (prev.Path != e.Path || prev.Fingerprint != e.Fingerprint) {
		if err := s.Invalidate(e.Key); err != nil {
			return e, err
		}
	}
	return e, nil
}

// Index returns the index for the wildcard name, building it on first
// use. ErrNotFound means the catalog has no such name; ErrSourceMissing
// means the file could not be read.
func (s *Store) Index(name string) (*Index, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	e, ok := s.catalog.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("index %q: %w", name, ErrNotFound)
	}
	return s.index(e)
}

// index is the get-or-build path: lock-free fast path, then the shard
// lock, then a second check so that waiters reuse the winner's result.
func (s *Store) index(e Entry) (*Index, error) {
	gen := s.gen.Load()
	if v, ok := gen.Load(e.Key); ok {
		return v.(*Index), nil
	}

	unlock := s.locks.lock(e.Key)
	defer unlock()

	if v, ok := gen.Load(e.Key); ok {
		return v.(*Index), nil
	}

	idx, err := s.build(e)
	if err != nil {
		return nil, err
	}
	if s.closed.Load() {
		return nil, ErrClosed
	}
	gen.Store(e.Key, idx)
	return idx, nil
}

// build produces the index for e from its cache blob or by scanning the
// file. Called with the shard lock for e.Key held.
func (s *Store) build(e Entry) (*Index, error) {
	info, err := s.fs.Stat(e.Path)
	if err != nil {
		return nil, fmt.Errorf("build %q: %w: %w", e.Name, ErrSourceMissing, err)
	}

	idx := &Index{
		Key:         e.Key,
		Name:        e.Name,
		Path:        e.Path,
		Fingerprint: Fingerprint(info),
		Size:        info.Size(),
		fs:          s.fs,
		log:         s.log,
	}

	var cache string
	if s.config.CacheDir != "" {
		cache = cachePath(s.config.CacheDir, e.Key, s.config.HashAlgorithm)
		if s.osfs {
			if l, err := acquireFileLock(cache); err != nil {
				s.log.Debugf("build %s: %v", e.Name, err)
			} else {
				defer l.release()
			}
		}
		b, res, err := loadCache(s.fs, cache, idx.Fingerprint)
		switch res {
		case CacheLoaded:
			idx.offsets, idx.lengths, idx.Source = b.Offsets, b.Lengths, SourceCache
			s.hits.Add(1)
		case CacheCorrupt:
			s.log.Debugf("cache for %s unusable, rebuilding: %v", e.Name, err)
			s.misses.Add(1)
		default:
			s.log.Debugf("cache %s for %s", res, e.Name)
			s.misses.Add(1)
		}
	}

	if idx.Source != SourceCache {
		start := time.Now()
		s.log.Infof("building line index for %s (%d bytes)", e.Name, info.Size())
		offsets, lengths, err := scanFile(s.fs, e.Path, s.config.ReadBuffer)
		if err != nil {
			return nil, fmt.Errorf("build %q: %w", e.Name, err)
		}
		s.scans.Add(1)
		idx.offsets, idx.lengths, idx.Source = offsets, lengths, SourceScan
		s.log.Infof("indexed %s: %d lines in %s", e.Name, idx.Len(), time.Since(start).Round(time.Millisecond))

		if cache != "" {
			if err := saveCache(s.fs, cache, idx.blob(), s.config.CompressCache); err != nil {
				s.writeFailed.Add(1)
				s.log.Warnf("could not save index cache for %s: %v", e.Name, err)
			}
		}
	}

	if !IsLarge(idx.Size, s.config.LargeFileThreshold) {
		if err := idx.materialize(); err != nil {
			return nil, fmt.Errorf("build %q: %w", e.Name, err)
		}
	}
	return idx, nil
}

// State reports whether name has a published index.
func (s *Store) State(name string) State {
	if s.closed.Load() {
		return StateAbsent
	}
	e, ok := s.catalog.Lookup(name)
	if !ok {
		return StateAbsent
	}
	if _, ok := s.gen.Load().Load(e.Key); ok {
		return StateReady
	}
	return StateAbsent
}

// Invalidate drops the index for name and deletes its cache file. The
// next request rebuilds it. Unknown names are not an error.
func (s *Store) Invalidate(name string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	key := Key(name)
	unlock := s.locks.lock(key)
	defer unlock()

	s.gen.Load().Delete(key)
	if s.config.CacheDir != "" {
		if err := removeCache(s.fs, cachePath(s.config.CacheDir, key, s.config.HashAlgorithm)); err != nil {
			return fmt.Errorf("invalidate %q: %w", name, err)
		}
	}
	return nil
}

// Reset drops every in-memory index at once. Cache files are kept, so the
// next request per key loads rather than scans if its file is unchanged.
func (s *Store) Reset() error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.gen.Store(new(sync.Map))
	return nil
}

// Refresh resets the store and re-synchronizes the catalog.
func (s *Store) Refresh() (SyncResult, error) {
	if err := s.Reset(); err != nil {
		return SyncResult{}, err
	}
	res, err := s.catalog.Sync()
	if err != nil {
		return res, fmt.Errorf("refresh: %w", err)
	}
	return res, nil
}

// Sync re-synchronizes the catalog and invalidates every key whose file
// changed or disappeared.
func (s *Store) Sync() (SyncResult, error) {
	if s.closed.Load() {
		return SyncResult{}, ErrClosed
	}
	res, err := s.catalog.Sync()
	if err != nil {
		return res, fmt.Errorf("sync: %w", err)
	}
	var errs []error
	for _, key := range append(slices.Clone(res.Changed), res.Removed...) {
		if err := s.Invalidate(key); err != nil {
			errs = append(errs, err)
		}
	}
	if len(res.Added)+len(res.Changed)+len(res.Removed) > 0 {
		s.log.Infof("catalog sync: %d added, %d changed, %d removed", len(res.Added), len(res.Changed), len(res.Removed))
	}
	return res, errors.Join(errs...)
}

// Stats returns a snapshot of the store counters.
func (s *Store) Stats() Stats {
	st := Stats{
		Scans:              s.scans.Load(),
		CacheHits:          s.hits.Load(),
		CacheMisses:        s.misses.Load(),
		CacheWriteFailures: s.writeFailed.Load(),
	}
	s.gen.Load().Range(func(_, _ any) bool {
		st.Ready++
		return true
	})
	return st
}
