// Line scanning for index builds.
//
// A source file is read once, front to back, and every meaningful line
// is recorded as an (offset, length) pair. Offsets are absolute byte
// positions in the file; lengths are the raw byte count between the line
// start and its terminator, excluding the terminator itself.
//
// Terminators are '\n', '\r' and "\r\n". A '\r' that ends one chunk and a
// '\n' that starts the next are one terminator, so the chunk size never
// changes the result. A leading UTF-8 byte order mark is skipped.
//
// Two entry points share one state machine: scanReader streams
// fixed-size chunks for large files and scanBytes walks a single buffer
// for files small enough to read whole.
package lazyline

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/spf13/afero"
)

// DefaultReadBuffer is the chunk size used when streaming a source file.
const DefaultReadBuffer = 1 << 20

var bom = []byte{0xEF, 0xBB, 0xBF}

// splitter carries line state across chunk boundaries.
type splitter struct {
	pos     int64  // absolute offset of the next byte fed
	start   int64  // offset of the current line
	partial []byte // current line bytes when it spans chunks
	cr      bool   // previous chunk ended in '\r'
	offsets []int64
	lengths []int32
	err     error
}

func (s *splitter) feed(p []byte) {
	for len(p) > 0 && s.err == nil {
		if s.cr {
			s.cr = false
			if p[0] == '\n' {
				p = p[1:]
				s.pos++
				s.start = s.pos
				continue
			}
		}

		i := bytes.IndexAny(p, "\r\n")
		if i < 0 {
			s.partial = append(s.partial, p...)
			s.pos += int64(len(p))
			if int64(len(s.partial)) > math.MaxInt32 {
				s.err = ErrLineTooLong
			}
			return
		}

		seg := p[:i]
		if len(s.partial) > 0 {
			s.partial = append(s.partial, seg...)
			seg = s.partial
		}
		s.emit(seg)
		s.partial = s.partial[:0]

		s.pos += int64(i) + 1
		if p[i] == '\r' {
			switch {
			case i+1 == len(p):
				s.cr = true
			case p[i+1] == '\n':
				s.pos++
				i++
			}
		}
		s.start = s.pos
		p = p[i+1:]
	}
}

// finish flushes a final line that has no terminator.
func (s *splitter) finish() ([]int64, []int32, error) {
	if s.err == nil && len(s.partial) > 0 {
		s.emit(s.partial)
		s.partial = nil
	}
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.offsets, s.lengths, nil
}

func (s *splitter) emit(line []byte) {
	if len(line) == 0 || !valid(line) {
		return
	}
	if int64(len(line)) > math.MaxInt32 {
		s.err = ErrLineTooLong
		return
	}
	s.offsets = append(s.offsets, s.start)
	s.lengths = append(s.lengths, int32(len(line)))
}

// valid reports whether a raw line carries content: the text before the
// first '#' must be non-blank.
func valid(line []byte) bool {
	if i := bytes.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	return len(bytes.TrimSpace(line)) > 0
}

// scanBytes indexes a whole file held in memory.
func scanBytes(data []byte) ([]int64, []int32, error) {
	var s splitter
	if bytes.HasPrefix(data, bom) {
		s.pos, s.start = int64(len(bom)), int64(len(bom))
		data = data[len(bom):]
	}
	s.feed(data)
	return s.finish()
}

// scanReader indexes a stream in chunks of bufSize bytes. Memory use is
// bounded by bufSize plus the longest line that spans a chunk boundary.
func scanReader(r io.Reader, bufSize int) ([]int64, []int32, error) {
	if bufSize <= 0 {
		bufSize = DefaultReadBuffer
	}
	var s splitter

	head := make([]byte, len(bom))
	n, err := io.ReadFull(r, head)
	switch {
	case n == len(bom) && bytes.Equal(head, bom):
		s.pos, s.start = int64(n), int64(n)
	default:
		s.feed(head[:n])
	}
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return s.finish()
	}
	if err != nil {
		return nil, nil, err
	}

	buf := make([]byte, bufSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			s.feed(buf[:n])
		}
		if err == io.EOF {
			return s.finish()
		}
		if err != nil {
			return nil, nil, err
		}
		if s.err != nil {
			return nil, nil, s.err
		}
	}
}

// scanFile opens path and indexes it, reading it whole when it fits in a
// single buffer and streaming it otherwise.
func scanFile(fs afero.Fs, path string, bufSize int) ([]int64, []int32, error) {
	if bufSize <= 0 {
		bufSize = DefaultReadBuffer
	}
	f, err := fs.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrSourceMissing, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrSourceMissing, err)
	}

	if info.Size() <= int64(bufSize) {
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrSourceMissing, err)
		}
		return scanBytes(data)
	}
	return scanReader(f, bufSize)
}
