// Line reads against a lazy index.
//
// Every read is a positioned ReadAt of exactly the recorded length, so no
// file position is shared between readers and no file handle outlives a
// call. A file that has shrunk since indexing yields whatever bytes are
// still there; a file that cannot be opened yields an empty string.
package lazyline

import (
	"bytes"
	"cmp"
	"io"
	"slices"
	"strings"
)

// Line returns line n, stripped of its terminator, '#' comment and
// surrounding whitespace. Out-of-range indices and unreadable files
// return "".
func (idx *Index) Line(n int) string {
	if n < 0 || n >= len(idx.offsets) {
		return ""
	}
	if idx.lines != nil {
		return idx.lines[n]
	}

	f, err := idx.fs.Open(idx.Path)
	if err != nil {
		idx.log.Debugf("read %s line %d: %v", idx.Name, n, err)
		return ""
	}
	defer f.Close()

	raw, err := readAt(f, idx.offsets[n], idx.lengths[n], nil)
	if err != nil {
		idx.log.Debugf("read %s line %d: %v", idx.Name, n, err)
		return ""
	}
	return clean(raw)
}

// Lines returns the lines at ns in request order. Reads are issued in
// ascending file order through a single handle.
func (idx *Index) Lines(ns []int) []string {
	out := make([]string, len(ns))
	order := make([]int, 0, len(ns))
	for i, n := range ns {
		if n >= 0 && n < len(idx.offsets) {
			order = append(order, i)
		}
	}
	if len(order) == 0 {
		return out
	}
	if idx.lines != nil {
		for _, i := range order {
			out[i] = idx.lines[ns[i]]
		}
		return out
	}

	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(idx.offsets[ns[a]], idx.offsets[ns[b]])
	})

	f, err := idx.fs.Open(idx.Path)
	if err != nil {
		idx.log.Debugf("read %s: %v", idx.Name, err)
		return out
	}
	defer f.Close()

	var buf []byte
	for _, i := range order {
		n := ns[i]
		raw, err := readAt(f, idx.offsets[n], idx.lengths[n], buf)
		if err != nil {
			idx.log.Debugf("read %s line %d: %v", idx.Name, n, err)
			continue
		}
		out[i] = clean(raw)
		buf = raw[:0]
	}
	return out
}

// readAt reads length bytes at offset, reusing buf when it is large
// enough. A short read at end of file returns the bytes that were read.
func readAt(r io.ReaderAt, offset int64, length int32, buf []byte) ([]byte, error) {
	if cap(buf) < int(length) {
		buf = make([]byte, length)
	}
	buf = buf[:length]
	n, err := r.ReadAt(buf, offset)
	if err == io.EOF && n > 0 {
		err = nil
	}
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// clean turns raw line bytes into display text. Invalid UTF-8 is replaced
// with U+FFFD.
func clean(raw []byte) string {
	raw = bytes.TrimRight(raw, "\r\n")
	if i := bytes.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSpace(strings.ToValidUTF8(string(raw), "\uFFFD"))
}
