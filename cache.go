// Index cache files.
//
// Each index is persisted to its own file under the cache directory,
// named after a hash of the wildcard key and fanned out over 256
// subdirectories. A save writes a .tmp sibling and renames it into place,
// so a reader sees either the previous blob or the new one, never a torn
// write; a crash at worst orphans the .tmp file, which the next save
// overwrites.
//
// Loading never fails the caller. Every outcome is reported as a
// CacheResult so the store can tell "no cache yet" from "cache for an
// older version of the file" from "cache damaged".
package lazyline

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// CacheResult is the outcome of loading a cache file.
type CacheResult int

const (
	CacheMiss    CacheResult = iota // no cache file
	CacheLoaded                     // valid and current
	CacheStale                      // valid, recorded for another fingerprint
	CacheCorrupt                    // unreadable or structurally invalid
)

func (r CacheResult) String() string {
	switch r {
	case CacheMiss:
		return "miss"
	case CacheLoaded:
		return "loaded"
	case CacheStale:
		return "stale"
	case CacheCorrupt:
		return "corrupt"
	}
	return fmt.Sprintf("CacheResult(%d)", int(r))
}

// cacheExt is the extension of cache files.
const cacheExt = ".idx"

// cachePath returns the cache file for key under dir.
func cachePath(dir, key string, alg int) string {
	h := hash(key, alg)
	return filepath.Join(dir, h[:2], h+cacheExt)
}

// loadCache reads the cache file at path and decodes it against
// fingerprint. The error is non-nil only for CacheCorrupt and describes
// what was wrong.
func loadCache(fsys afero.Fs, path, fingerprint string) (*blob, CacheResult, error) {
	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, CacheMiss, nil
	}
	if err != nil {
		return nil, CacheCorrupt, fmt.Errorf("%w: %w", ErrCorruptCache, err)
	}

	if compressed(data) {
		if data, err = decompress(data); err != nil {
			return nil, CacheCorrupt, err
		}
	}
	return decodeBlob(data, fingerprint)
}

// saveCache writes b to path, compressing it when zstd is set.
func saveCache(fsys afero.Fs, path string, b *blob, zstd bool) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save cache: %w", err)
	}

	data := b.encode()
	if zstd {
		data = compress(data)
	}

	tmpPath := path + ".tmp"
	tmp, err := fsys.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("save cache: %w", err)
	}
	ow := &offsetWriter{w: tmp}
	if _, err := ow.Write(data); err != nil {
		tmp.Close()
		fsys.Remove(tmpPath)
		return fmt.Errorf("save cache: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		fsys.Remove(tmpPath)
		return fmt.Errorf("save cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		fsys.Remove(tmpPath)
		return fmt.Errorf("save cache: %w", err)
	}
	if err := fsys.Rename(tmpPath, path); err != nil {
		fsys.Remove(tmpPath)
		return fmt.Errorf("save cache: %w", err)
	}
	return nil
}

// removeCache deletes the cache file at path. A missing file is not an
// error.
func removeCache(fsys afero.Fs, path string) error {
	if err := fsys.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove cache: %w", err)
	}
	return nil
}

// offsetWriter adapts an io.WriterAt into a sequential writer, so blobs
// are written with positioned writes only.
type offsetWriter struct {
	w   io.WriterAt
	off int64
}

func (o *offsetWriter) Write(p []byte) (int, error) {
	n, err := o.w.WriteAt(p, o.off)
	o.off += int64(n)
	return n, err
}
