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

// Overlap is a coordinate-level overlap between a query (lhs) and an
// indexed reference (rhs). Begin is inclusive, End exclusive; both ends
// lie within the respective sequence and Score is the chain score, at
// least the configured minimum. The single overlap synthesized by
// MapBeginEnd carries the longer of its two spans as Score instead.
type Overlap struct {
	LhsID    uint32
	LhsBegin uint32
	LhsEnd   uint32

	RhsID    uint32
	RhsBegin uint32
	RhsEnd   uint32

	Score uint32

	// Strand is true when the overlapping regions lie on the same strand.
	Strand bool
}

// byScoreDesc orders overlaps by descending score for best-N selection.
type byScoreDesc []Overlap

func (s byScoreDesc) Len() int           { return len(s) }
func (s byScoreDesc) Less(i, j int) bool { return s[i].Score > s[j].Score }
func (s byScoreDesc) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
