package lazyline

import (
	"bytes"
	"errors"
	"testing"
)

// TestCompressRoundTrip verifies a compressed blob decompresses to the
// original bytes and is recognised by its frame magic.
func TestCompressRoundTrip(t *testing.T) {
	data := testBlob().encode()
	z := compress(data)
	if !compressed(z) {
		t.Fatal("compressed output lacks zstd magic")
	}
	if compressed(data) {
		t.Fatal("plain blob mistaken for zstd")
	}
	out, err := decompress(z)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Error("round trip mismatch")
	}
}

// TestCompressShrinksOffsets verifies regular offset tables compress,
// which is the only reason to enable compression.
func TestCompressShrinksOffsets(t *testing.T) {
	b := &blob{Fingerprint: "x"}
	for i := range 10000 {
		b.Offsets = append(b.Offsets, int64(i*12))
		b.Lengths = append(b.Lengths, 11)
	}
	data := b.encode()
	if z := compress(data); len(z) >= len(data)/2 {
		t.Errorf("compressed %d bytes to %d", len(data), len(z))
	}
}

// TestDecompressGarbage verifies a damaged frame maps to ErrCorruptCache.
func TestDecompressGarbage(t *testing.T) {
	bad := append(bytes.Clone(zstdMagic), 0xFF, 0xFF, 0xFF, 0xFF, 0x00)
	if _, err := decompress(bad); !errors.Is(err, ErrCorruptCache) {
		t.Errorf("err = %v, want ErrCorruptCache", err)
	}
}
