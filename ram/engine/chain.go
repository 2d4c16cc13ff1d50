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

	"github.com/twotwotwo/sorts"

	"github.com/dbabojelic/ram/ram/ksort"
)

// anchor is a shared k-mer occurrence between the query and a reference.
//
//	hi: [63:33] rhs id, [32] same-strand flag, [31:0] diagonal
//	lo: [63:32] lhs position, [31:0] rhs position
//
// The diagonal is rhs-lhs biased by 3<<30 on the same strand and rhs+lhs
// on opposite strands, so sorting by hi groups anchors of one reference,
// strand and diagonal band together.
type anchor struct {
	hi, lo uint64
}

func anchorHi(a anchor) uint64 { return a.hi }
func anchorLo(a anchor) uint64 { return a.lo }

// newAnchor combines a query sketch location with a reference one.
func newAnchor(rhsID, lhsLoc, rhsLoc uint64) anchor {
	var strand uint64
	if lhsLoc&1 == rhsLoc&1 {
		strand = 1
	}
	lhsPos := lhsLoc << 32 >> 33
	rhsPos := rhsLoc << 32 >> 33

	var diagonal uint64
	if strand == 0 {
		diagonal = rhsPos + lhsPos
	} else {
		diagonal = rhsPos - lhsPos + 3<<30
	}

	return anchor{
		hi: (rhsID<<1|strand)<<32 | diagonal,
		lo: lhsPos<<32 | rhsPos,
	}
}

// maximal diagonal-band width of one anchor group
const bandWidth = 500

// chain extracts high-scoring collinear runs from the anchors and turns
// them into overlaps of the query lhsID.
func (e *Engine) chain(lhsID uint32, anchors []anchor) []Overlap {
	ksort.Sort(anchors, 64, anchorHi)
	anchors = append(anchors, anchor{hi: math.MaxUint64, lo: math.MaxUint64})

	// maximal runs of anchors within one diagonal band, holding at least
	// n anchors; runs touching the previous interval extend it
	type interval struct{ begin, end int }
	var intervals []interval
	n := int(e.n)
	for i, j := 1, 0; i < len(anchors); i++ {
		if anchors[i].hi-anchors[j].hi > bandWidth {
			if i-j >= n {
				if len(intervals) > 0 && intervals[len(intervals)-1].end > j {
					intervals[len(intervals)-1].end = i
				} else {
					intervals = append(intervals, interval{j, i})
				}
			}
			j++
			for j < i && anchors[i].hi-anchors[j].hi > bandWidth {
				j++
			}
		}
	}

	var dst []Overlap
	for _, iv := range intervals {
		j, i := iv.begin, iv.end
		if i-j < n {
			continue
		}

		group := anchors[j:i]
		ksort.Sort(group, 64, anchorLo)

		strand := anchors[j].hi>>32&1 == 1

		var indices []int
		if strand {
			indices = ksort.LongestSubsequence(group, anchorLo,
				func(a, b uint64) bool { return a < b })
		} else {
			indices = ksort.LongestSubsequence(group, anchorLo,
				func(a, b uint64) bool { return a > b })
		}
		if len(indices) < n {
			continue
		}

		// the trailing sentinel forces a final gap split
		indices = append(indices, len(anchors)-1-j)

		for k, l := 1, 0; k < len(indices); k++ {
			if anchors[j+indices[k]].lo>>32-anchors[j+indices[k-1]].lo>>32 <= e.g {
				continue
			}
			if k-l < n {
				l = k
				continue
			}

			var lhsMatches, lhsBegin, lhsEnd uint32
			var rhsMatches, rhsBegin, rhsEnd uint32
			for m := l; m < k; m++ {
				lhsPos := uint32(anchors[j+indices[m]].lo >> 32)
				if lhsPos > lhsEnd {
					lhsMatches += lhsEnd - lhsBegin
					lhsBegin = lhsPos
				}
				lhsEnd = lhsPos + e.k

				rhsPos := uint32(anchors[j+indices[m]].lo)
				if !strand {
					rhsPos = 1<<31 - (rhsPos + e.k - 1)
				}
				if rhsPos > rhsEnd {
					rhsMatches += rhsEnd - rhsBegin
					rhsBegin = rhsPos
				}
				rhsEnd = rhsPos + e.k
			}
			lhsMatches += lhsEnd - lhsBegin
			rhsMatches += rhsEnd - rhsBegin

			if min(lhsMatches, rhsMatches) < e.m {
				l = k
				continue
			}

			o := Overlap{
				LhsID:    lhsID,
				LhsBegin: uint32(anchors[j+indices[l]].lo >> 32),
				LhsEnd:   e.k + uint32(anchors[j+indices[k-1]].lo>>32),
				RhsID:    uint32(anchors[j].hi >> 33),
				Score:    min(lhsMatches, rhsMatches),
				Strand:   strand,
			}
			if strand {
				o.RhsBegin = uint32(anchors[j+indices[l]].lo)
				o.RhsEnd = e.k + uint32(anchors[j+indices[k-1]].lo)
			} else {
				o.RhsBegin = uint32(anchors[j+indices[k-1]].lo)
				o.RhsEnd = e.k + uint32(anchors[j+indices[l]].lo)
			}
			dst = append(dst, o)

			l = k
		}
	}

	if e.bestN > 0 && int(e.bestN) < len(dst) {
		sorts.Quicksort(byScoreDesc(dst))
		dst = dst[:e.bestN]
	}
	return dst
}
