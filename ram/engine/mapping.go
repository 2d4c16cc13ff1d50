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

	"github.com/dbabojelic/ram/ram/ksort"
	"github.com/dbabojelic/ram/ram/minimizer"
	"github.com/dbabojelic/ram/ram/sequence"
)

// MapOptions select per-query mapping behavior.
type MapOptions struct {
	AvoidEqual     bool // skip hits on the reference with the query's own id
	AvoidSymmetric bool // skip hits on references with a smaller id than the query

	Micromize       bool
	MicromizeFactor float64
	KeepEnds        uint8
}

// Map finds overlaps of s in the prebuilt index. Mapping an unbuilt or
// empty index returns no overlaps.
func (e *Engine) Map(s *sequence.Sequence, opts MapOptions) ([]Overlap, error) {
	sketch, err := e.sketcher.Sketch(s.ID, s.Data, minimizer.Options{
		Micromize: opts.Micromize,
		Factor:    opts.MicromizeFactor,
		KeepEnds:  opts.KeepEnds,
	})
	if err != nil || len(sketch) == 0 {
		return nil, err
	}

	binMask := uint64(len(e.records) - 1)

	var anchors []anchor
	for _, q := range sketch {
		b := q.Fp & binMask
		run, ok := e.index[b][q.Fp]
		if !ok || run[1] > e.occurrence {
			continue
		}

		for _, t := range e.records[b][run[0] : run[0]+run[1]] {
			rhsID := t.Loc >> 32
			if opts.AvoidEqual && uint64(s.ID) == rhsID {
				continue
			}
			if opts.AvoidSymmetric && uint64(s.ID) > rhsID {
				continue
			}
			anchors = append(anchors, newAnchor(rhsID, q.Loc, t.Loc))
		}
	}
	return e.chain(s.ID, anchors), nil
}

// MapPair finds overlaps between a pair of sequences without consulting
// the index: both are sketched, sorted by fingerprint and merge-joined.
// Micromization applies to lhs only.
func (e *Engine) MapPair(lhs, rhs *sequence.Sequence, micromize bool, keepEnds uint8) ([]Overlap, error) {
	lhsSketch, err := e.sketcher.Sketch(lhs.ID, lhs.Data, minimizer.Options{
		Micromize: micromize,
		KeepEnds:  keepEnds,
	})
	if err != nil || len(lhsSketch) == 0 {
		return nil, err
	}
	rhsSketch, err := e.sketcher.Sketch(rhs.ID, rhs.Data, minimizer.Options{})
	if err != nil || len(rhsSketch) == 0 {
		return nil, err
	}

	fp := func(r minimizer.Record) uint64 { return r.Fp }
	ksort.Sort(lhsSketch, int(e.k)*2, fp)
	ksort.Sort(rhsSketch, int(e.k)*2, fp)

	rhsID := uint64(rhs.ID)

	var anchors []anchor
	for i, j := 0, 0; i < len(lhsSketch); i++ {
		for j < len(rhsSketch) {
			if lhsSketch[i].Fp < rhsSketch[j].Fp {
				break
			} else if lhsSketch[i].Fp == rhsSketch[j].Fp {
				for l := j; l < len(rhsSketch) && lhsSketch[i].Fp == rhsSketch[l].Fp; l++ {
					anchors = append(anchors, newAnchor(rhsID, lhsSketch[i].Loc, rhsSketch[l].Loc))
				}
				break
			} else {
				j++
			}
		}
	}
	return e.chain(lhs.ID, anchors), nil
}

// penalty growth per explored index-sum step of the begin-end pairing
const beginEndPenaltyMult = 1.08

// MapBeginEnd maps only a K-long prefix and suffix of s and synthesizes
// one overlap from the most compatible pair of their hits: same reference
// and strand, reference span containing the query length under a
// geometric penalty that prefers high-ranked hits on both sides. Falls
// back to a full Map for sequences not longer than 4K.
func (e *Engine) MapBeginEnd(s *sequence.Sequence, avoidEqual, avoidSymmetric bool, K uint32) ([]Overlap, error) {
	size := uint32(len(s.Data))
	if size <= 4*K {
		return e.Map(s, MapOptions{AvoidEqual: avoidEqual, AvoidSymmetric: avoidSymmetric})
	}

	beginSeq := &sequence.Sequence{ID: s.ID, Name: s.Name, Data: s.Data[:K]}
	endSeq := &sequence.Sequence{ID: s.ID, Name: s.Name, Data: s.Data[size-K:]}

	beginOverlaps, err := e.Map(beginSeq, MapOptions{AvoidEqual: avoidEqual, AvoidSymmetric: avoidSymmetric})
	if err != nil {
		return nil, err
	}
	endOverlaps, err := e.Map(endSeq, MapOptions{AvoidEqual: avoidEqual, AvoidSymmetric: avoidSymmetric})
	if err != nil {
		return nil, err
	}
	if len(beginOverlaps) == 0 || len(endOverlaps) == 0 {
		return nil, nil
	}

	var minDiff int64 = math.MaxInt64
	ansi, ansj := -1, -1

	maxIndexSum := len(beginOverlaps) + len(endOverlaps) - 2
	penalty := 1.0
	for indexSum := 0; indexSum <= maxIndexSum; indexSum++ {
		for i := 0; i <= indexSum && i < len(beginOverlaps); i++ {
			j := indexSum - i
			if j >= len(endOverlaps) {
				continue
			}

			bov := &beginOverlaps[i]
			eov := &endOverlaps[j]
			if bov.Strand != eov.Strand || bov.RhsID != eov.RhsID {
				continue
			}

			rhsBegin, rhsEnd := bov.RhsBegin, eov.RhsEnd
			if !eov.Strand {
				rhsBegin, rhsEnd = eov.RhsBegin, bov.RhsEnd
			}
			if rhsBegin > rhsEnd {
				continue
			}

			// signed: the candidate span may undershoot the query length
			diff := int64(rhsEnd) - int64(rhsBegin) - int64(size)
			if diff < 0 {
				diff = -diff
			}
			candiDiff := int64(penalty * float64(diff))
			if candiDiff < minDiff {
				ansi, ansj = i, j
				minDiff = candiDiff
			}
		}
		penalty *= beginEndPenaltyMult
	}

	if ansi == -1 {
		return nil, nil
	}

	bov := &beginOverlaps[ansi]
	eov := &endOverlaps[ansj]

	lhsBegin := bov.LhsBegin
	lhsEnd := eov.LhsEnd + size - K
	rhsBegin := bov.RhsBegin
	rhsEnd := eov.RhsEnd
	if !bov.Strand {
		lhsBegin = eov.LhsBegin
		lhsEnd = bov.LhsEnd + size - K
		rhsBegin = eov.RhsBegin
		rhsEnd = bov.RhsEnd
	}

	return []Overlap{{
		LhsID:    s.ID,
		LhsBegin: lhsBegin,
		LhsEnd:   lhsEnd,
		RhsID:    bov.RhsID,
		RhsBegin: rhsBegin,
		RhsEnd:   rhsEnd,
		Score:    max(lhsEnd-lhsBegin, rhsEnd-rhsBegin),
		Strand:   bov.Strand,
	}}, nil
}
