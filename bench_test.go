package lazyline

import (
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func benchSource(lines int) []byte {
	var b strings.Builder
	for i := range lines {
		fmt.Fprintf(&b, "entry number %d with some padding text\n", i)
		if i%10 == 0 {
			b.WriteString("# comment\n\n")
		}
	}
	return []byte(b.String())
}

func BenchmarkScanBytes(b *testing.B) {
	data := benchSource(100_000)
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		scanBytes(data)
	}
}

func BenchmarkScanReader(b *testing.B) {
	data := benchSource(100_000)
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		scanReader(strings.NewReader(string(data)), 64*1024)
	}
}

func BenchmarkBlobDecode(b *testing.B) {
	offsets, lengths, _ := scanBytes(benchSource(100_000))
	data := (&blob{Fingerprint: "1:1", Offsets: offsets, Lengths: lengths}).encode()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		decodeBlob(data, "1:1")
	}
}

func benchStore(b *testing.B, threshold int64) *Store {
	fs := afero.NewMemMapFs()
	writeFile(b, fs, "/src/big.txt", string(benchSource(100_000)), epoch)
	return openTestStore(b, Config{Fs: fs, LargeFileThreshold: threshold})
}

func BenchmarkSampleLazy(b *testing.B) {
	s := benchStore(b, -1)
	mustIndex(b, s, "big")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Sample("big", Request{Count: 3, Separator: ", "})
	}
}

func BenchmarkSampleResident(b *testing.B) {
	s := benchStore(b, 0)
	mustIndex(b, s, "big")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Sample("big", Request{Count: 3, Separator: ", "})
	}
}

func BenchmarkIndexFastPath(b *testing.B) {
	s := benchStore(b, -1)
	mustIndex(b, s, "big")
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			s.Index("big")
		}
	})
}
