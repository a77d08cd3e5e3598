// Catalog tests.
//
// The catalog turns a directory tree into wildcard names and decides
// which file a possibly sloppy name refers to. Sync results drive index
// invalidation, so added, changed and removed keys must be exact.
package lazyline

import (
	"errors"
	"os"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func newTestCatalog(t *testing.T, fs afero.Fs, include, exclude []string) *Catalog {
	t.Helper()
	c, err := NewCatalog(fs, "/src", include, exclude)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	if _, err := c.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	return c
}

func keys(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Key
	}
	return out
}

func TestCatalogNames(t *testing.T) {
	fs := newTestFs(t)
	writeFile(t, fs, "/src/People/First Names.txt", "ann\n", epoch)
	c := newTestCatalog(t, fs, nil, nil)

	want := []string{"animals/cats", "colors", "empty", "people/first names"}
	if got := keys(c.Entries()); !slices.Equal(got, want) {
		t.Errorf("keys = %q, want %q", got, want)
	}
	e, ok := c.Lookup("people/first names")
	if !ok || e.Name != "People/First Names" {
		t.Errorf("Lookup = %+v, %v", e, ok)
	}
}

func TestCatalogPatterns(t *testing.T) {
	fs := newTestFs(t)
	c := newTestCatalog(t, fs, []string{"**/*.txt", "*.md", " *.md "}, []string{"animals/**"})
	want := []string{"colors", "empty", "notes"}
	if got := keys(c.Entries()); !slices.Equal(got, want) {
		t.Errorf("keys = %q, want %q", got, want)
	}
}

func TestCatalogInvalidPattern(t *testing.T) {
	_, err := NewCatalog(afero.NewMemMapFs(), "/src", nil, []string{"{a,b"})
	if !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("err = %v, want ErrInvalidPattern", err)
	}
}

// TestCatalogLookup covers the resolution order: exact key, shortest
// prefix, then fuzzy match above the similarity floor.
func TestCatalogLookup(t *testing.T) {
	fs := newTestFs(t)
	writeFile(t, fs, "/src/animals/catfish.txt", "x\n", epoch)
	writeFile(t, fs, "/src/animals/dogs.txt", "x\n", epoch)
	c := newTestCatalog(t, fs, nil, nil)

	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"colors", "colors", true},
		{"COLORS", "colors", true},
		{`animals\dogs`, "animals/dogs", true},
		{"/colors/", "colors", true},
		{"animals/cat", "animals/cats", true},
		{"animals", "animals/cats", true},
		{"colours", "colors", true},
		{"animals/dgos", "animals/dogs", true},
		{"vehicles", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		e, ok := c.Lookup(tt.name)
		if ok != tt.ok || e.Key != tt.want {
			t.Errorf("Lookup(%q) = %q, %v; want %q, %v", tt.name, e.Key, ok, tt.want, tt.ok)
		}
	}
}

// TestCatalogSyncDiff verifies Sync reports exactly what changed.
func TestCatalogSyncDiff(t *testing.T) {
	fs := newTestFs(t)
	c := newTestCatalog(t, fs, nil, nil)

	writeFile(t, fs, "/src/colors.txt", "red\n", epoch.Add(time.Second))
	writeFile(t, fs, "/src/new.txt", "fresh\n", epoch)
	fs.Remove("/src/empty.txt")

	res, err := c.Sync()
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if !slices.Equal(res.Added, []string{"new"}) ||
		!slices.Equal(res.Changed, []string{"colors"}) ||
		!slices.Equal(res.Removed, []string{"empty"}) ||
		res.Entries != 3 {
		t.Errorf("Sync = %+v", res)
	}

	res, _ = c.Sync()
	if len(res.Added)+len(res.Changed)+len(res.Removed) != 0 {
		t.Errorf("second Sync reported changes: %+v", res)
	}
}

// TestCatalogTouchIsChange verifies a new mtime alone counts as a
// change, since the fingerprint cannot tell an edit from a touch.
func TestCatalogTouchIsChange(t *testing.T) {
	fs := newTestFs(t)
	c := newTestCatalog(t, fs, nil, nil)
	later := epoch.Add(time.Hour)
	fs.Chtimes("/src/colors.txt", later, later)

	res, _ := c.Sync()
	if !slices.Equal(res.Changed, []string{"colors"}) {
		t.Errorf("changed = %v, want [colors]", res.Changed)
	}
}

func TestCatalogMissingRoot(t *testing.T) {
	c, err := NewCatalog(afero.NewMemMapFs(), "/nope", nil, nil)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	if _, err := c.Sync(); !errors.Is(err, ErrSourceMissing) {
		t.Errorf("err = %v, want ErrSourceMissing", err)
	}
}

// TestCatalogRegisterRemoved verifies a registered file drops out once
// it is deleted.
func TestCatalogRegisterRemoved(t *testing.T) {
	fs := newTestFs(t)
	writeFile(t, fs, "/x/solo.txt", "one\n", epoch)
	c := newTestCatalog(t, fs, nil, nil)
	if _, err := c.Register("Solo", "/x/solo.txt"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, ok := c.Lookup("solo"); !ok {
		t.Fatal("registered entry not found")
	}

	fs.Remove("/x/solo.txt")
	res, _ := c.Sync()
	if !slices.Equal(res.Removed, []string{"solo"}) {
		t.Errorf("removed = %v, want [solo]", res.Removed)
	}
}

// flakyStatFs fails Stat of path while fails is positive.
type flakyStatFs struct {
	afero.Fs
	path  string
	fails *atomic.Int32
}

func (f flakyStatFs) Stat(name string) (os.FileInfo, error) {
	if name == f.path && f.fails.Add(-1) >= 0 {
		return nil, &os.PathError{Op: "stat", Path: name, Err: os.ErrPermission}
	}
	return f.Fs.Stat(name)
}

// TestCatalogRegisterStatError verifies a registered file that cannot be
// stat'ed for one sync keeps its entry and name.
func TestCatalogRegisterStatError(t *testing.T) {
	base := newTestFs(t)
	writeFile(t, base, "/x/moods.txt", "calm\n", epoch)
	fails := new(atomic.Int32)
	c := newTestCatalog(t, flakyStatFs{Fs: base, path: "/x/moods.txt", fails: fails}, nil, nil)
	if _, err := c.Register("Moods", "/x/moods.txt"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	check := func(when string) {
		t.Helper()
		e, ok := c.Lookup("moods")
		if !ok || e.Name != "Moods" || e.Key != "moods" || e.Path != "/x/moods.txt" {
			t.Errorf("%s: Lookup = %+v, %v", when, e, ok)
		}
		for _, e := range c.Entries() {
			if e.Key == "" || e.Name == "" {
				t.Errorf("%s: blank entry %+v", when, e)
			}
		}
	}

	fails.Store(1)
	res, err := c.Sync()
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(res.Removed)+len(res.Changed) != 0 {
		t.Errorf("transient stat failure reported %+v", res)
	}
	check("failed stat")

	res, err = c.Sync()
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(res.Added)+len(res.Removed)+len(res.Changed) != 0 {
		t.Errorf("recovery reported %+v", res)
	}
	check("recovered")
}

func TestFingerprint(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/a.txt", "12345", time.Unix(1, 500))
	info, _ := fs.Stat("/a.txt")
	if got := Fingerprint(info); got != "5:1000000500" {
		t.Errorf("Fingerprint = %q, want 5:1000000500", got)
	}
}

func TestKey(t *testing.T) {
	tests := map[string]string{
		"Colors":          "colors",
		` People\Names `:  "people/names",
		"/animals/cats/":  "animals/cats",
		"ALREADY/lower/x": "already/lower/x",
	}
	for in, want := range tests {
		if got := Key(in); got != want {
			t.Errorf("Key(%q) = %q, want %q", in, got, want)
		}
	}
}
