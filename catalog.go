// Wildcard catalog.
//
// The catalog maps wildcard names to source files. Names are the
// slash-separated path of a file relative to the catalog root, without
// its extension ("colors/warm" for colors/warm.txt); keys are the
// lower-cased names. Sync walks the root again and reports which keys
// appeared, changed or vanished so a Store can drop stale indexes.
package lazyline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hbollon/go-edlib"
	"github.com/samber/lo"
	"github.com/spf13/afero"
)

// MinSimilarity is the Levenshtein similarity a fuzzy lookup must reach.
const MinSimilarity = 0.8

// Entry is one catalogued source file.
type Entry struct {
	Name        string
	Key         string
	Path        string
	Fingerprint string
	Size        int64
	ModTime     time.Time
}

// SyncResult lists the keys whose entries changed during a Sync.
type SyncResult struct {
	Entries int
	Added   []string
	Changed []string
	Removed []string
}

// Catalog is safe for concurrent use.
type Catalog struct {
	fs      afero.Fs
	root    string
	include []string
	exclude []string

	mu      sync.RWMutex
	entries map[string]Entry
	pinned  map[string]pin // registered by hand
	keys    []string          // sorted
}

// pin is a file registered outside the catalog root.
type pin struct {
	name string
	path string
}

// NewCatalog returns an empty catalog over root. Call Sync to populate
// it. An empty root yields a catalog fed only through Register.
func NewCatalog(fsys afero.Fs, root string, include, exclude []string) (*Catalog, error) {
	include, exclude = patterns(include), patterns(exclude)
	if len(include) == 0 {
		include = DefaultInclude
	}
	for _, p := range append(slices.Clone(include), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, p)
		}
	}
	return &Catalog{
		fs:      fsys,
		root:    root,
		include: include,
		exclude: exclude,
		entries: make(map[string]Entry),
		pinned:  make(map[string]pin),
	}, nil
}

// patterns trims, de-duplicates and drops blank glob patterns.
func patterns(ps []string) []string {
	return lo.Uniq(lo.Compact(lo.Map(ps, func(p string, _ int) string {
		return strings.TrimSpace(p)
	})))
}

// Key normalizes a wildcard name into its lookup key.
func Key(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	return strings.ToLower(strings.Trim(name, "/"))
}

// Fingerprint identifies a version of a file by its size and modification
// time without reading it.
func Fingerprint(info os.FileInfo) string {
	return fmt.Sprintf("%d:%d", info.Size(), info.ModTime().UnixNano())
}

func entry(name, p string, info os.FileInfo) Entry {
	return Entry{
		Name:        name,
		Key:         Key(name),
		Path:        p,
		Fingerprint: Fingerprint(info),
		Size:        info.Size(),
		ModTime:     info.ModTime(),
	}
}

// Register adds a single file under name, outside the catalog root. It
// survives Sync for as long as the file exists.
func (c *Catalog) Register(name, p string) (Entry, error) {
	info, err := c.fs.Stat(p)
	if err != nil {
		return Entry{}, fmt.Errorf("register %q: %w: %w", name, ErrSourceMissing, err)
	}
	if info.IsDir() {
		return Entry{}, fmt.Errorf("register %q: %w: %s is a directory", name, ErrSourceMissing, p)
	}
	e := entry(name, p, info)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pinned[e.Key] = pin{name: name, path: p}
	c.entries[e.Key] = e
	c.keys = sortedKeys(c.entries)
	return e, nil
}

// Sync re-enumerates the catalog root and the registered files.
func (c *Catalog) Sync() (SyncResult, error) {
	found := make(map[string]Entry)

	if c.root != "" {
		if _, err := c.fs.Stat(c.root); err != nil {
			return SyncResult{}, fmt.Errorf("sync %s: %w: %w", c.root, ErrSourceMissing, err)
		}
		err := afero.Walk(c.fs, c.root, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				// Unreadable subtrees are skipped, not fatal.
				if info != nil && info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if info.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(c.root, p)
			if err != nil {
				return nil
			}
			rel = filepath.ToSlash(rel)
			if !c.match(rel) {
				return nil
			}
			name := strings.TrimSuffix(rel, path.Ext(rel))
			e := entry(name, p, info)
			found[e.Key] = e
			return nil
		})
		if err != nil {
			return SyncResult{}, fmt.Errorf("sync %s: %w", c.root, err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, p := range c.pinned {
		info, err := c.fs.Stat(p.path)
		if errors.Is(err, fs.ErrNotExist) {
			delete(c.pinned, key)
			continue
		}
		if err != nil {
			// Keep the last known entry until the file is readable again.
			if old, ok := c.entries[key]; ok {
				found[key] = old
			}
			continue
		}
		found[key] = entry(p.name, p.path, info)
	}

	var res SyncResult
	for key, e := range found {
		old, ok := c.entries[key]
		switch {
		case !ok:
			res.Added = append(res.Added, key)
		case old.Fingerprint != e.Fingerprint || old.Path != e.Path:
			res.Changed = append(res.Changed, key)
		}
	}
	for key := range c.entries {
		if _, ok := found[key]; !ok {
			res.Removed = append(res.Removed, key)
		}
	}
	slices.Sort(res.Added)
	slices.Sort(res.Changed)
	slices.Sort(res.Removed)

	c.entries = found
	c.keys = sortedKeys(found)
	res.Entries = len(found)
	return res, nil
}

func (c *Catalog) match(rel string) bool {
	included := lo.SomeBy(c.include, func(p string) bool {
		ok, _ := doublestar.Match(p, rel)
		return ok
	})
	if !included {
		return false
	}
	return !lo.SomeBy(c.exclude, func(p string) bool {
		ok, _ := doublestar.Match(p, rel)
		return ok
	})
}

func sortedKeys(m map[string]Entry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// get returns the entry stored under key, without fuzzy matching.
func (c *Catalog) get(key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

// Lookup resolves name to an entry. An exact key match wins; otherwise
// the shortest key that starts with the name; otherwise the key most
// similar to it, provided the similarity reaches MinSimilarity.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	key := Key(name)
	if key == "" {
		return Entry{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if e, ok := c.entries[key]; ok {
		return e, true
	}

	best := ""
	for _, k := range c.keys {
		if strings.HasPrefix(k, key) && (best == "" || len(k) < len(best)) {
			best = k
		}
	}
	if best != "" {
		return c.entries[best], true
	}

	var score float32
	for _, k := range c.keys {
		s, err := edlib.StringsSimilarity(key, k, edlib.Levenshtein)
		if err != nil {
			continue
		}
		if s > score {
			best, score = k, s
		}
	}
	if best != "" && score >= MinSimilarity {
		return c.entries[best], true
	}
	return Entry{}, false
}

// Entries returns every entry, sorted by key.
func (c *Catalog) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, c.entries[k])
	}
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Root returns the catalog root directory.
func (c *Catalog) Root() string {
	return c.root
}
