// Exclusion-aware line sampling.
//
// A pick draws a line index, rejects it if the line text is excluded or
// the index was already picked in this request, and draws again, up to
// MaxAttempts times. When every attempt is rejected the last draw is
// accepted anyway, so a request always yields Count picks and never
// loops forever on a file with too few acceptable lines.
package lazyline

import (
	"math/rand/v2"
	"strings"
)

// MaxAttempts bounds the draws per pick.
const MaxAttempts = 1000

// Mode selects how line indices are drawn.
type Mode int

const (
	ModeRandom Mode = iota // uniform draws from Request.Rand
	ModeIndex              // Request.Seed mod line count, every draw
)

// Rand is the random source used in ModeRandom. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Request describes one sampling call.
type Request struct {
	Count     int      // Number of picks
	Separator string   // Placed between picks
	Exclude   []string // Line texts that must not be picked
	Mode      Mode
	Seed      int64               // ModeIndex only
	Rand      Rand                // ModeRandom only; nil uses the global source
	Parse     func(string) string // Applied to each pick; nil is identity
}

func (r *Request) draw(n int) int {
	if r.Mode == ModeIndex {
		m := r.Seed % int64(n)
		if m < 0 {
			m += int64(n)
		}
		return int(m)
	}
	if r.Rand == nil {
		r.Rand = globalRand{}
	}
	return r.Rand.IntN(n)
}

// Sample draws req.Count lines from idx and joins them. An empty index
// or non-positive count yields "".
func Sample(idx *Index, req Request) string {
	n := idx.Len()
	if n == 0 || req.Count <= 0 {
		return ""
	}

	exclude := make(map[string]struct{}, len(req.Exclude))
	for _, x := range req.Exclude {
		exclude[x] = struct{}{}
	}
	// ModeIndex draws the same index every time, so retrying cannot
	// produce a different outcome.
	attempts := MaxAttempts
	if req.Mode == ModeIndex {
		attempts = 1
	}

	used := make(map[int]struct{}, req.Count)
	text := make(map[int]string)
	line := func(i int) string {
		l, ok := text[i]
		if !ok {
			l = idx.Line(i)
			text[i] = l
		}
		return l
	}

	picks := make([]string, 0, req.Count)
	for range req.Count {
		var i int
		for attempt := 1; ; attempt++ {
			i = req.draw(n)
			_, dup := used[i]
			_, excluded := exclude[line(i)]
			if (!dup && !excluded) || attempt >= attempts {
				break
			}
		}
		used[i] = struct{}{}

		pick := line(i)
		if req.Parse != nil {
			pick = req.Parse(pick)
		}
		picks = append(picks, strings.TrimSpace(pick))
	}
	return strings.TrimSpace(strings.Join(picks, req.Separator))
}

// Sample resolves name and samples its index.
func (s *Store) Sample(name string, req Request) (string, error) {
	idx, err := s.Index(name)
	if err != nil {
		return "", err
	}
	return Sample(idx, req), nil
}
