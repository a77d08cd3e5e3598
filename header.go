// Binary layout of an index cache blob.
//
// All integers are little-endian:
//
//	magic        4 bytes   "LLIX"
//	version      1 byte    CacheVersion
//	fingerprint  uvarint length + bytes
//	count        uint32    <= MaxLines
//	offsets      count x int64, strictly increasing, non-negative
//	lengths      count x int32, positive
//
// Nothing may follow the lengths array. Any deviation rejects the whole
// blob; a partially decoded index is never returned.
package lazyline

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	// CacheVersion is bumped whenever the blob layout changes.
	CacheVersion = 1

	// MaxLines bounds the line count a blob may claim.
	MaxLines = 100_000_000

	// maxFingerprint bounds the fingerprint length a blob may claim.
	maxFingerprint = 1 << 10
)

var cacheMagic = []byte("LLIX")

// blob is the decoded content of a cache file.
type blob struct {
	Fingerprint string
	Offsets     []int64
	Lengths     []int32
}

// encode serializes b in the layout above.
func (b *blob) encode() []byte {
	n := len(b.Offsets)
	buf := make([]byte, 0, len(cacheMagic)+1+binary.MaxVarintLen64+len(b.Fingerprint)+4+n*12)
	buf = append(buf, cacheMagic...)
	buf = append(buf, CacheVersion)
	buf = binary.AppendUvarint(buf, uint64(len(b.Fingerprint)))
	buf = append(buf, b.Fingerprint...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(n))
	for _, off := range b.Offsets {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(off))
	}
	for _, l := range b.Lengths {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(l))
	}
	return buf
}

// decodeBlob parses data and checks it against fingerprint. A structurally
// valid blob recorded for another fingerprint yields CacheStale with a nil
// error; any structural problem yields CacheCorrupt wrapping
// ErrCorruptCache.
func decodeBlob(data []byte, fingerprint string) (*blob, CacheResult, error) {
	corrupt := func(format string, args ...any) (*blob, CacheResult, error) {
		return nil, CacheCorrupt, fmt.Errorf("%w: "+format, append([]any{ErrCorruptCache}, args...)...)
	}

	if len(data) < len(cacheMagic)+1 {
		return corrupt("short header (%d bytes)", len(data))
	}
	if !bytes.Equal(data[:len(cacheMagic)], cacheMagic) {
		return corrupt("bad magic %q", data[:len(cacheMagic)])
	}
	if v := data[len(cacheMagic)]; v != CacheVersion {
		return corrupt("unsupported version %d", v)
	}
	data = data[len(cacheMagic)+1:]

	fpLen, n := binary.Uvarint(data)
	if n <= 0 || fpLen > maxFingerprint || uint64(len(data)-n) < fpLen {
		return corrupt("bad fingerprint length")
	}
	fp := string(data[n : n+int(fpLen)])
	data = data[n+int(fpLen):]

	if len(data) < 4 {
		return corrupt("missing line count")
	}
	count := binary.LittleEndian.Uint32(data)
	data = data[4:]
	if count > MaxLines {
		return corrupt("line count %d out of range", count)
	}
	if uint64(len(data)) != uint64(count)*12 {
		return corrupt("payload is %d bytes, want %d", len(data), uint64(count)*12)
	}

	if fp != fingerprint {
		return nil, CacheStale, nil
	}

	b := &blob{
		Fingerprint: fp,
		Offsets:     make([]int64, count),
		Lengths:     make([]int32, count),
	}
	prev := int64(-1)
	for i := range b.Offsets {
		off := int64(binary.LittleEndian.Uint64(data[i*8:]))
		if off <= prev {
			return corrupt("offset %d at line %d not increasing", off, i)
		}
		b.Offsets[i], prev = off, off
	}
	data = data[int(count)*8:]
	for i := range b.Lengths {
		l := int32(binary.LittleEndian.Uint32(data[i*4:]))
		if l <= 0 {
			return corrupt("length %d at line %d", l, i)
		}
		b.Lengths[i] = l
	}
	return b, CacheLoaded, nil
}
