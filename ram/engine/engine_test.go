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

package engine

import (
	"math"
	"math/rand"
	"testing"

	"github.com/shenwei356/bio/seq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbabojelic/ram/ram/minimizer"
	"github.com/dbabojelic/ram/ram/sequence"
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

func revComp(data []byte) []byte {
	comp := map[byte]byte{'A': 'T', 'C': 'G', 'G': 'C', 'T': 'A'}
	out := make([]byte, len(data))
	for i, c := range data {
		out[len(data)-1-i] = comp[c]
	}
	return out
}

func newBatch(r *rand.Rand, sizes ...int) []*sequence.Sequence {
	batch := make([]*sequence.Sequence, len(sizes))
	for i, n := range sizes {
		batch[i] = &sequence.Sequence{ID: uint32(i), Name: "seq", Data: randomSeq(r, n)}
	}
	return batch
}

func TestMinimizeRoundTrip(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(31))
	batch := newBatch(r, 500, 800, 300)

	e := New(&Options{K: 7, W: 3, M: 20, G: 1000, N: 2, Threads: 4})
	require.NoError(t, e.Minimize(batch))

	var wantSize uint64
	binMask := uint64(len(e.records) - 1)
	for _, s := range batch {
		sketch, err := e.sketcher.Sketch(s.ID, s.Data, minimizer.Options{})
		require.NoError(t, err)
		wantSize += uint64(len(sketch))

		// every sketch record is indexed exactly once
		for _, rec := range sketch {
			b := rec.Fp & binMask
			run, ok := e.index[b][rec.Fp]
			require.True(t, ok)

			var hits int
			for _, stored := range e.records[b][run[0] : run[0]+run[1]] {
				require.Equal(t, rec.Fp, stored.Fp)
				if stored.Loc == rec.Loc {
					hits++
				}
			}
			assert.Equal(t, 1, hits)
		}
	}
	assert.Equal(t, wantSize, e.IndexSize())

	// buckets are sorted and hold only their own fingerprints
	for b, recs := range e.records {
		for i, rec := range recs {
			assert.Equal(t, uint64(b), rec.Fp&binMask)
			if i > 0 {
				assert.LessOrEqual(t, recs[i-1].Fp, rec.Fp)
			}
		}
	}

	// rebuilding replaces the previous index
	require.NoError(t, e.Minimize(batch[:1]))
	sketch, err := e.sketcher.Sketch(batch[0].ID, batch[0].Data, minimizer.Options{})
	require.NoError(t, err)
	assert.Equal(t, uint64(len(sketch)), e.IndexSize())
}

func TestMinimizeInvalidCharacter(t *testing.T) {
	t.Parallel()

	e := New(&Options{K: 5, W: 2, M: 10, G: 1000, N: 2, Threads: 2})
	batch := []*sequence.Sequence{
		{ID: 0, Name: "ok", Data: []byte("ACGTACGTACGT")},
		{ID: 1, Name: "bad", Data: []byte("ACGTXACGT")},
	}
	require.ErrorIs(t, e.Minimize(batch), minimizer.ErrInvalidCharacter)
}

func TestFilter(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(37))
	e := New(&Options{K: 5, W: 2, M: 10, G: 1000, N: 2, Threads: 2})

	require.Error(t, e.Filter(-0.1))
	require.Error(t, e.Filter(1.5))
	require.ErrorIs(t, e.Filter(2), ErrInvalidArgument)

	// no index yet: pruning stays disabled
	require.NoError(t, e.Filter(0.5))
	assert.Equal(t, uint32(math.MaxUint32), e.occurrence)

	require.NoError(t, e.Minimize(newBatch(r, 2000, 2000)))

	require.NoError(t, e.Filter(0))
	assert.Equal(t, uint32(math.MaxUint32), e.occurrence)

	// occurrence thresholds weakly decrease with growing frequency
	var prev uint32 = math.MaxUint32
	for _, f := range []float64{0.001, 0.01, 0.5, 1} {
		require.NoError(t, e.Filter(f))
		assert.LessOrEqual(t, e.occurrence, prev, "frequency %g", f)
		prev = e.occurrence
	}
	assert.Less(t, e.occurrence, uint32(math.MaxUint32))
}

func TestMapUnbuiltIndex(t *testing.T) {
	t.Parallel()

	e := New(&Options{K: 5, W: 2, M: 10, G: 1000, N: 2, Threads: 1})
	overlaps, err := e.Map(&sequence.Sequence{ID: 0, Data: []byte("ACGTACGTACGTACGT")}, MapOptions{})
	require.NoError(t, err)
	assert.Empty(t, overlaps)
}

func TestMapAvoidFilters(t *testing.T) {
	t.Parallel()

	data := []byte("ACGTACGTACGT")
	batch := []*sequence.Sequence{
		{ID: 0, Name: "seq0", Data: data},
		{ID: 1, Name: "seq1", Data: append([]byte(nil), data...)},
	}

	e := New(&Options{K: 3, W: 1, M: 5, G: 1000, N: 2, Threads: 1})
	require.NoError(t, e.Minimize(batch))

	// seq0 may only hit seq1
	overlaps, err := e.Map(batch[0], MapOptions{AvoidEqual: true, AvoidSymmetric: true})
	require.NoError(t, err)
	require.NotEmpty(t, overlaps)
	for _, o := range overlaps {
		assert.Equal(t, uint32(0), o.LhsID)
		assert.Equal(t, uint32(1), o.RhsID)
	}

	// seq1 sees only smaller ids, all filtered
	overlaps, err = e.Map(batch[1], MapOptions{AvoidEqual: true, AvoidSymmetric: true})
	require.NoError(t, err)
	assert.Empty(t, overlaps)

	// without filters both directions match
	overlaps, err = e.Map(batch[1], MapOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, overlaps)
}

func TestMapReverseComplement(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(41))
	data := randomSeq(r, 500)

	batch := []*sequence.Sequence{{ID: 0, Name: "fwd", Data: data}}
	query := &sequence.Sequence{ID: 1, Name: "rev", Data: revComp(data)}

	e := New(&Options{K: 15, W: 5, M: 50, G: 10000, N: 4, Threads: 1})
	require.NoError(t, e.Minimize(batch))

	overlaps, err := e.Map(query, MapOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, overlaps)

	best := overlaps[0]
	for _, o := range overlaps {
		if o.Score > best.Score {
			best = o
		}
	}
	assert.Equal(t, uint32(0), best.RhsID)
	assert.False(t, best.Strand)
	assert.Greater(t, best.LhsEnd-best.LhsBegin, uint32(400))
	assert.Greater(t, best.RhsEnd-best.RhsBegin, uint32(400))
	assert.LessOrEqual(t, best.LhsEnd, uint32(len(data)))
	assert.LessOrEqual(t, best.RhsEnd, uint32(len(data)))
}

func TestMapDeterminism(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(43))
	batch := newBatch(r, 1000, 1200, 900)

	e := New(&Options{K: 11, W: 5, M: 30, G: 5000, N: 3, Threads: 1})
	require.NoError(t, e.Minimize(batch))

	query := &sequence.Sequence{ID: 99, Name: "q", Data: batch[1].Data[100:900]}
	first, err := e.Map(query, MapOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, first)

	for i := 0; i < 3; i++ {
		again, err := e.Map(query, MapOptions{})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestMapPair(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(47))
	data := randomSeq(r, 800)

	lhs := &sequence.Sequence{ID: 3, Name: "lhs", Data: data[200:]}
	rhs := &sequence.Sequence{ID: 5, Name: "rhs", Data: data[:700]}

	e := New(&Options{K: 15, W: 5, M: 50, G: 10000, N: 4, Threads: 1})
	overlaps, err := e.MapPair(lhs, rhs, false, 0)
	require.NoError(t, err)
	require.NotEmpty(t, overlaps)

	for _, o := range overlaps {
		assert.Equal(t, uint32(3), o.LhsID)
		assert.Equal(t, uint32(5), o.RhsID)
		assert.Less(t, o.LhsBegin, o.LhsEnd)
		assert.Less(t, o.RhsBegin, o.RhsEnd)
		assert.GreaterOrEqual(t, o.Score, uint32(50))
	}
}

func TestMapBeginEnd(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(53))
	data := randomSeq(r, 2000)

	batch := []*sequence.Sequence{{ID: 0, Name: "target", Data: data}}
	e := New(&Options{K: 15, W: 5, M: 50, G: 10000, N: 4, Threads: 1})
	require.NoError(t, e.Minimize(batch))

	query := &sequence.Sequence{ID: 1, Name: "query", Data: append([]byte(nil), data...)}
	overlaps, err := e.MapBeginEnd(query, false, false, 300)
	require.NoError(t, err)
	require.Len(t, overlaps, 1)

	o := overlaps[0]
	assert.Equal(t, uint32(1), o.LhsID)
	assert.Equal(t, uint32(0), o.RhsID)
	assert.True(t, o.Strand)
	assert.Greater(t, o.LhsEnd-o.LhsBegin, uint32(1500))
	assert.Greater(t, o.RhsEnd-o.RhsBegin, uint32(1500))

	// short queries fall back to full mapping
	shortQuery := &sequence.Sequence{ID: 2, Name: "short", Data: data[:1000]}
	overlaps, err = e.MapBeginEnd(shortQuery, false, false, 300)
	require.NoError(t, err)
	require.NotEmpty(t, overlaps)
}

func TestChainGapSplit(t *testing.T) {
	t.Parallel()

	e := New(&Options{K: 15, W: 5, M: 20, G: 1000, N: 2, Threads: 1})

	// collinear same-strand anchors with a 10000 base hole in the middle
	positions := []uint32{10, 20, 30, 10010, 10020, 10030}
	anchors := make([]anchor, 0, len(positions))
	for _, p := range positions {
		loc := uint64(p)<<1 | 0
		anchors = append(anchors, newAnchor(1, loc, loc))
	}

	overlaps := e.chain(7, anchors)
	require.Len(t, overlaps, 2)

	assert.Equal(t, uint32(7), overlaps[0].LhsID)
	assert.Equal(t, uint32(1), overlaps[0].RhsID)
	assert.Equal(t, uint32(10), overlaps[0].LhsBegin)
	assert.Equal(t, uint32(30+15), overlaps[0].LhsEnd)
	assert.Equal(t, uint32(35), overlaps[0].Score)
	assert.True(t, overlaps[0].Strand)

	assert.Equal(t, uint32(10010), overlaps[1].LhsBegin)
	assert.Equal(t, uint32(10030+15), overlaps[1].LhsEnd)
	assert.Equal(t, uint32(35), overlaps[1].Score)
}

func TestChainMinScore(t *testing.T) {
	t.Parallel()

	// the same anchors score 35, below a threshold of 50 nothing survives
	e := New(&Options{K: 15, W: 5, M: 50, G: 1000, N: 2, Threads: 1})

	anchors := make([]anchor, 0, 3)
	for _, p := range []uint32{10, 20, 30} {
		loc := uint64(p)<<1 | 0
		anchors = append(anchors, newAnchor(1, loc, loc))
	}
	assert.Empty(t, e.chain(7, anchors))
}

func TestChainBestN(t *testing.T) {
	t.Parallel()

	e := New(&Options{K: 15, W: 5, M: 20, G: 1000, N: 2, BestN: 1, Threads: 1})

	positions := []uint32{10, 20, 30, 10010, 10020}
	anchors := make([]anchor, 0, len(positions))
	for _, p := range positions {
		loc := uint64(p)<<1 | 0
		anchors = append(anchors, newAnchor(1, loc, loc))
	}

	overlaps := e.chain(7, anchors)
	require.Len(t, overlaps, 1)
	assert.Equal(t, uint32(35), overlaps[0].Score)
}

func TestNewClampsK(t *testing.T) {
	t.Parallel()

	e := New(&Options{K: 100, W: 5, Threads: 1})
	assert.Equal(t, uint32(32), e.K())
	assert.Len(t, e.records, 1<<14)

	e = New(&Options{K: 0, W: 1, Threads: 1})
	assert.Equal(t, uint32(1), e.K())
	assert.Len(t, e.records, 1<<2)
}
