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

// Record is one sketch entry: the randomized fingerprint of a canonical
// k-mer and its packed location.
//
// Location layout:
//
//	[63:32] sequence id
//	[31:1]  start position of the k-mer in the original sequence
//	[0]     1 when the reverse complement was the canonical form
type Record struct {
	Fp  uint64
	Loc uint64
}

// ID returns the sequence id of the record.
func (r Record) ID() uint32 { return uint32(r.Loc >> 32) }

// Pos returns the 0-based start position of the k-mer.
func (r Record) Pos() uint32 { return uint32(r.Loc) >> 1 }

// Reverse reports whether the reverse complement strand was chosen as the
// canonical form of the k-mer.
func (r Record) Reverse() bool { return r.Loc&1 == 1 }

// recordFp projects the fingerprint, in the shape the radix sort expects.
func recordFp(r Record) uint64 { return r.Fp }
