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

// queue is a monotonic double-ended queue: fingerprints are non-decreasing
// from the front, so the front always holds the window minimum. Backed by
// a slice with a moving head, compacted once the dead prefix dominates.
type queue struct {
	a    []Record
	head int
}

func (q *queue) len() int { return len(q.a) - q.head }

func (q *queue) front() *Record { return &q.a[q.head] }

func (q *queue) at(i int) *Record { return &q.a[q.head+i] }

// push drops tail entries with larger fingerprints before appending, which
// keeps the monotone invariant; amortized O(1).
func (q *queue) push(fp, loc uint64) {
	for len(q.a) > q.head && q.a[len(q.a)-1].Fp > fp {
		q.a = q.a[:len(q.a)-1]
	}
	q.a = append(q.a, Record{Fp: fp, Loc: loc})
}

// evict pops front entries whose packed position precedes pos and reports
// whether anything was popped.
func (q *queue) evict(pos uint32) bool {
	popped := false
	for len(q.a) > q.head && uint32(q.a[q.head].Loc<<32>>33) < pos {
		q.head++
		popped = true
	}
	q.compact()
	return popped
}

// evictIndex is the raw-location variant used by the second-level
// reduction pass, where Loc holds a plain record index.
func (q *queue) evictIndex(idx uint64) {
	for len(q.a) > q.head && q.a[q.head].Loc < idx {
		q.head++
	}
	q.compact()
}

// robustPop leaves only the rightmost copy of the minimum at the front.
func (q *queue) robustPop() {
	for q.len() > 1 && q.a[q.head].Fp == q.a[q.head+1].Fp {
		q.head++
	}
}

func (q *queue) compact() {
	if q.head > 32 && q.head*2 > len(q.a) {
		n := copy(q.a, q.a[q.head:])
		q.a = q.a[:n]
		q.head = 0
	}
}
