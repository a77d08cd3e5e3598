package lazyline_test

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/jpl-au/lazyline"
)

// discard keeps example output limited to what the examples print.
type discard struct{}

func (discard) Debugf(string, ...any) {}
func (discard) Infof(string, ...any)  {}
func (discard) Warnf(string, ...any)  {}

func Example() {
	dir, _ := os.MkdirTemp("", "lazyline-example")
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "wildcards")
	os.MkdirAll(src, 0o755)
	os.WriteFile(filepath.Join(src, "colors.txt"), []byte("red\ngreen\n# not a color\nblue\n"), 0o644)

	store, err := lazyline.Open(lazyline.Config{
		SourceDir: src,
		CacheDir:  filepath.Join(dir, "cache"),
		Logger:    discard{},
	})
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	// Seeded picks are reproducible: seed 4 of 3 lines is line 1.
	color, _ := store.Sample("colors", lazyline.Request{Count: 1, Mode: lazyline.ModeIndex, Seed: 4})
	fmt.Println(color)
	// Output: green
}

func ExampleStore_Index() {
	dir, _ := os.MkdirTemp("", "lazyline-example")
	defer os.RemoveAll(dir)
	os.WriteFile(filepath.Join(dir, "names.txt"), []byte("ann\n\nbob\ncy # short for cyrus\n"), 0o644)

	store, _ := lazyline.Open(lazyline.Config{SourceDir: dir, LargeFileThreshold: -1, Logger: discard{}})
	defer store.Close()

	idx, _ := store.Index("names")
	fmt.Println(idx.Len(), idx.Resident())
	fmt.Println(idx.Lines([]int{2, 0}))
	// Output: 3 false
	// [cy ann]
}

func ExampleParseTag() {
	name, exclude := lazyline.ParseTag("colors,not=red|blue")
	fmt.Println(name, exclude)
	// Output: colors [red blue]
}

func ExampleSample() {
	dir, _ := os.MkdirTemp("", "lazyline-example")
	defer os.RemoveAll(dir)
	os.WriteFile(filepath.Join(dir, "animals.txt"), []byte("cat\ndog\n"), 0o644)

	store, _ := lazyline.Open(lazyline.Config{SourceDir: dir, Logger: discard{}})
	defer store.Close()

	idx, _ := store.Index("animals")
	// With "cat" excluded only "dog" can be picked.
	fmt.Println(lazyline.Sample(idx, lazyline.Request{Count: 1, Exclude: []string{"cat"}}))
	// Output: dog
}
