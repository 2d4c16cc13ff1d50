// Copyright © 2024 the ram authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package minimizer

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/kmers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	seq.ValidateSeq = false
}

func randomSeq(r *rand.Rand, n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = "ACGT"[r.Intn(4)]
	}
	return data
}

// naiveFps computes the canonical fingerprint of every k-mer start the
// straightforward way; ok is false for palindromic k-mers.
func naiveFps(data []byte, k int) (fps []uint64, rev []bool, ok []bool) {
	mask := uint64(1)<<(2*k) - 1
	fps = make([]uint64, len(data)-k+1)
	rev = make([]bool, len(fps))
	ok = make([]bool, len(fps))
	for p := range fps {
		var fwd, rc uint64
		for i := 0; i < k; i++ {
			c := uint64(coder[data[p+i]])
			fwd = fwd<<2 | c
			rc |= (c ^ 3) << (2 * i)
		}
		if fwd == rc {
			continue
		}
		ok[p] = true
		if fwd < rc {
			fps[p] = hash(fwd, mask)
		} else {
			fps[p] = hash(rc, mask)
			rev[p] = true
		}
	}
	return fps, rev, ok
}

func sortedFps(records []Record) []uint64 {
	fps := make([]uint64, len(records))
	for i, r := range records {
		fps[i] = r.Fp
	}
	sort.Slice(fps, func(i, j int) bool { return fps[i] < fps[j] })
	return fps
}

func TestSketchACGT(t *testing.T) {
	t.Parallel()

	sk := &Sketcher{K: 3, W: 1}
	records, err := sk.Sketch(7, []byte("ACGT"), Options{})
	require.NoError(t, err)
	require.Len(t, records, 2)

	// "ACG" is canonical forward at 0, "CGT" canonical as "ACG" reversed at 1
	acg, _ := kmers.Encode([]byte("ACG"))
	mask := uint64(1)<<6 - 1
	want := hash(acg, mask)

	assert.Equal(t, want, records[0].Fp)
	assert.Equal(t, uint32(0), records[0].Pos())
	assert.False(t, records[0].Reverse())
	assert.Equal(t, uint32(7), records[0].ID())

	assert.Equal(t, want, records[1].Fp)
	assert.Equal(t, uint32(1), records[1].Pos())
	assert.True(t, records[1].Reverse())
}

func TestSketchShorterThanK(t *testing.T) {
	t.Parallel()

	sk := &Sketcher{K: 8, W: 2}
	records, err := sk.Sketch(0, []byte("ACGT"), Options{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSketchInvalidCharacter(t *testing.T) {
	t.Parallel()

	sk := &Sketcher{K: 3, W: 1}
	_, err := sk.Sketch(0, []byte("ACGXT"), Options{})
	require.ErrorIs(t, err, ErrInvalidCharacter)
}

func TestSketchPalindromesSkipped(t *testing.T) {
	t.Parallel()

	// "ACGT" is its own reverse complement
	sk := &Sketcher{K: 4, W: 1}
	records, err := sk.Sketch(0, []byte("ACGT"), Options{})
	require.NoError(t, err)
	assert.Empty(t, records)

	// only "CGTA" survives
	records, err = sk.Sketch(0, []byte("ACGTA"), Options{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, uint32(1), records[0].Pos())
	assert.False(t, records[0].Reverse())
}

func TestSketchCoverProperty(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(3))
	data := randomSeq(r, 1000)

	const k, w = 5, 4
	sk := &Sketcher{K: k, W: w}
	records, err := sk.Sketch(0, data, Options{})
	require.NoError(t, err)
	require.NotEmpty(t, records)

	fps, rev, ok := naiveFps(data, k)

	// every record matches the canonical k-mer at its position
	for _, rec := range records {
		p := rec.Pos()
		require.Less(t, int(p), len(fps))
		require.True(t, ok[p])
		assert.Equal(t, fps[p], rec.Fp)
		assert.Equal(t, rev[p], rec.Reverse())
	}

	// every complete window contains a record with the window minimum
	emitted := make(map[uint32]bool, len(records))
	for _, rec := range records {
		emitted[rec.Pos()] = true
	}
	for p := 0; p+w <= len(fps); p++ {
		minFp := uint64(0)
		found := false
		for q := p; q < p+w; q++ {
			if ok[q] && (!found || fps[q] < minFp) {
				minFp = fps[q]
				found = true
			}
		}
		if !found {
			continue
		}
		covered := false
		for q := p; q < p+w; q++ {
			if ok[q] && emitted[uint32(q)] && fps[q] == minFp {
				covered = true
				break
			}
		}
		assert.True(t, covered, "window at %d misses its minimum", p)
	}
}

func TestSketchReverseComplementInvariant(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(5))
	data := randomSeq(r, 500)

	s, err := seq.NewSeq(seq.DNAredundant, append([]byte(nil), data...))
	require.NoError(t, err)
	s.RevComInplace()

	sk := &Sketcher{K: 15, W: 5}
	fwd, err := sk.Sketch(0, data, Options{})
	require.NoError(t, err)
	rev, err := sk.Sketch(0, s.Seq, Options{})
	require.NoError(t, err)

	assert.Equal(t, sortedFps(fwd), sortedFps(rev))
}

func TestSketchHPC(t *testing.T) {
	t.Parallel()

	// compressed "AC" is shorter than k
	sk := &Sketcher{K: 4, W: 2, HPC: true}
	records, err := sk.Sketch(0, []byte("AAAACCCC"), Options{})
	require.NoError(t, err)
	assert.Empty(t, records)

	plain := &Sketcher{K: 4, W: 2}
	records, err = plain.Sketch(0, []byte("AAAACCCC"), Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, records)
}

func TestSketchHPCMatchesCollapsedInput(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(7))

	// run-free sequence, so it is its own homopolymer compression
	data := make([]byte, 400)
	data[0] = "ACGT"[r.Intn(4)]
	for i := 1; i < len(data); i++ {
		data[i] = "ACGT"[r.Intn(4)]
		for data[i] == data[i-1] {
			data[i] = "ACGT"[r.Intn(4)]
		}
	}

	// stretch its bases into homopolymer runs
	stretched := make([]byte, 0, len(data)*2)
	for _, c := range data {
		for n := 1 + r.Intn(3); n > 0; n-- {
			stretched = append(stretched, c)
		}
	}

	hpc := &Sketcher{K: 7, W: 3, HPC: true}
	fromStretched, err := hpc.Sketch(0, stretched, Options{})
	require.NoError(t, err)

	plain := &Sketcher{K: 7, W: 3}
	fromCollapsed, err := plain.Sketch(0, data, Options{})
	require.NoError(t, err)

	assert.Equal(t, sortedFps(fromCollapsed), sortedFps(fromStretched))
}

func TestSketchRobustWinnowing(t *testing.T) {
	t.Parallel()

	// alternating "AC" floods windows with tied minima
	data := []byte("ACACACACACACACAC")

	plain := &Sketcher{K: 3, W: 4}
	all, err := plain.Sketch(0, data, Options{})
	require.NoError(t, err)

	robust := &Sketcher{K: 3, W: 4, Robust: true}
	some, err := robust.Sketch(0, data, Options{})
	require.NoError(t, err)

	require.NotEmpty(t, some)
	assert.Less(t, len(some), len(all))

	// robust emissions are a subset of the plain ones
	plainLocs := make(map[uint64]bool, len(all))
	for _, rec := range all {
		plainLocs[rec.Loc] = true
	}
	for _, rec := range some {
		assert.True(t, plainLocs[rec.Loc])
	}
}

func TestMicromize(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(9))
	data := randomSeq(r, 600)

	sk := &Sketcher{K: 11, W: 3}
	full, err := sk.Sketch(0, data, Options{})
	require.NoError(t, err)
	require.Greater(t, len(full), 20)

	const keepEnds = 3
	take := len(full) / 2
	reduced, err := sk.Sketch(0, data, Options{Micromize: true, Factor: 0.5, KeepEnds: keepEnds})
	require.NoError(t, err)
	require.Len(t, reduced, take)

	// both sequence ends stay pinned in original order
	assert.Equal(t, full[:keepEnds], reduced[:keepEnds])
	assert.Equal(t, full[len(full)-keepEnds:], reduced[take-keepEnds:])

	// the middle keeps a subset of the full sketch
	fullLocs := make(map[uint64]bool, len(full))
	for _, rec := range full {
		fullLocs[rec.Loc] = true
	}
	for _, rec := range reduced {
		assert.True(t, fullLocs[rec.Loc])
	}

	// default take is sequence length over k
	reduced, err = sk.Sketch(0, data, Options{Micromize: true})
	require.NoError(t, err)
	want := len(data) / int(sk.K)
	if want > len(full) {
		want = len(full)
	}
	assert.Len(t, reduced, want)
}

func TestMicromizeTakesEverything(t *testing.T) {
	t.Parallel()

	sk := &Sketcher{K: 3, W: 1}
	data := []byte("ACGTTGCAACGT")

	full, err := sk.Sketch(0, data, Options{})
	require.NoError(t, err)
	reduced, err := sk.Sketch(0, data, Options{Micromize: true, Factor: 2})
	require.NoError(t, err)
	assert.Equal(t, full, reduced)
}

func TestReduce(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(21))
	data := randomSeq(r, 800)

	const reduceWin = 4
	plain := &Sketcher{K: 9, W: 2}
	full, err := plain.Sketch(0, data, Options{})
	require.NoError(t, err)
	require.Greater(t, len(full), reduceWin)

	sk := &Sketcher{K: 9, W: 2, ReduceWindow: reduceWin}
	reduced, err := sk.Sketch(0, data, Options{})
	require.NoError(t, err)

	// reference second-pass winnowing over the full sketch
	var want []Record
	stored := make([]bool, len(full))
	for p := 0; p+reduceWin <= len(full); p++ {
		minFp := full[p].Fp
		for q := p + 1; q < p+reduceWin; q++ {
			if full[q].Fp < minFp {
				minFp = full[q].Fp
			}
		}
		for q := p; q < p+reduceWin; q++ {
			if full[q].Fp == minFp && !stored[q] {
				stored[q] = true
				want = append(want, full[q])
			}
		}
	}

	assert.Equal(t, want, reduced)
}

func TestReduceWindowLargerThanSketch(t *testing.T) {
	t.Parallel()

	sk := &Sketcher{K: 3, W: 1, ReduceWindow: 64}
	records, err := sk.Sketch(0, []byte("ACGTTGCA"), Options{})
	require.NoError(t, err)
	require.Len(t, records, 1)

	plain := &Sketcher{K: 3, W: 1}
	full, err := plain.Sketch(0, []byte("ACGTTGCA"), Options{})
	require.NoError(t, err)
	minFp := full[0].Fp
	for _, rec := range full {
		if rec.Fp < minFp {
			minFp = rec.Fp
		}
	}
	assert.Equal(t, minFp, records[0].Fp)
}
