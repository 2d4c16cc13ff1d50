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
	"github.com/dbabojelic/ram/ram/ksort"
)

// marks a window entry as already emitted
const isStored = 1 << 63

// Sketcher produces minimizer sketches of nucleotide sequences.
type Sketcher struct {
	K uint32 // k-mer length, element of [1, 32]
	W uint32 // number of consecutive k-mers per window, >= 1

	HPC    bool // collapse homopolymer runs before forming k-mers
	Robust bool // robust winnowing: emit the rightmost window minimum only

	// window size of a second minimization pass over the sketch itself,
	// 0 to disable
	ReduceWindow uint32
}

// Options of a single Sketch call. Micromization keeps only a subset of
// the sketch and is applied to query sequences, never to the index side.
type Options struct {
	Micromize bool
	Factor    float64 // fraction of records to keep, 0 means len(data)/k
	KeepEnds  uint8   // records pinned at each end of the sequence
}

// Sketch returns the sketch records of data under the configured policy,
// with the sequence id packed into every location. A sequence shorter
// than k yields an empty sketch. Bytes without a nucleotide code fail
// with ErrInvalidCharacter.
func (sk *Sketcher) Sketch(id uint32, data []byte, opts Options) ([]Record, error) {
	if uint64(len(data)) < uint64(sk.K) {
		return nil, nil
	}

	k := sk.K
	mask := uint64(1)<<(k*2) - 1
	shift := uint64(k-1) * 2
	idBits := uint64(id) << 32

	var fwd, rev uint64
	var win queue

	dst := make([]Record, 0, len(data)/int(sk.W)+2)

	var winSpan, kmerSpan, baseCnt uint32
	for i := uint32(0); uint64(i) < uint64(len(data)); i, winSpan, kmerSpan = i+1, winSpan+1, kmerSpan+1 {
		c := coder[data[i]]
		if c == invalidCode {
			return nil, ErrInvalidCharacter
		}

		// homopolymer continuation, k-mer state untouched
		if sk.HPC && i > 0 && coder[data[i-1]] == c {
			continue
		}

		baseCnt++

		// drop the oldest base of the rolling k-mer span
		if baseCnt > k {
			kmerSpan--
			if sk.HPC {
				last := coder[data[i-kmerSpan-1]]
				for coder[data[i-kmerSpan]] == last {
					kmerSpan--
				}
			}
		}

		fwd = (fwd<<2 | uint64(c)) & mask
		rev = rev>>2 | uint64(c^3)<<shift

		if baseCnt >= k {
			pos := uint64(i-kmerSpan) << 1
			if fwd < rev {
				win.push(hash(fwd, mask), pos)
			} else if fwd > rev {
				// palindromic k-mers (fwd == rev) are skipped
				win.push(hash(rev, mask), pos|1)
			}
		}

		if baseCnt >= k+sk.W-1 {
			if win.len() > 0 {
				stop := win.len()
				if sk.Robust {
					stop = 1
					// a minimum not emitted yet moves to its rightmost copy
					if win.front().Loc&isStored == 0 {
						win.robustPop()
					}
				}
				front := win.front().Fp
				for j := 0; j < stop; j++ {
					it := win.at(j)
					if it.Fp != front {
						break
					}
					if it.Loc&isStored != 0 {
						continue
					}
					dst = append(dst, Record{Fp: it.Fp, Loc: idBits | it.Loc})
					it.Loc |= isStored
				}
			}

			winSpan--
			if sk.HPC {
				last := coder[data[i-winSpan-1]]
				for coder[data[i-winSpan]] == last {
					winSpan--
				}
			}
			if win.evict(i-winSpan) && sk.Robust {
				win.robustPop()
			}
		}
	}

	if opts.Micromize {
		dst = sk.micromize(dst, uint32(len(data))/k, opts.Factor, opts.KeepEnds)
	}
	if sk.ReduceWindow > 0 {
		dst = sk.reduce(dst)
	}
	return dst, nil
}

// micromize keeps take records of the sketch: keepEnds records pinned at
// each sequence end, the rest chosen as the smallest fingerprints of the
// middle. take falls back to defaultTake when factor is 0.
func (sk *Sketcher) micromize(dst []Record, defaultTake uint32, factor float64, keepEnds uint8) []Record {
	take := int(defaultTake)
	if factor > 0 {
		take = int(float64(len(dst)) * factor)
	}
	if take >= len(dst) {
		return dst
	}

	n := int(keepEnds)
	if 2*n <= len(dst) {
		ksort.Sort(dst[n:len(dst)-n], int(sk.K)*2, recordFp)
	}
	if n < take {
		tail := append([]Record(nil), dst[len(dst)-n:]...)
		return append(dst[:take-n], tail...)
	}
	return dst[:take]
}

// reduce runs a second sliding-window minimum pass over the sketch
// records themselves, shrinking dense sketches hierarchically.
func (sk *Sketcher) reduce(dst []Record) []Record {
	if len(dst) == 0 {
		return dst
	}

	winSz := int(sk.ReduceWindow)
	if winSz > len(dst) {
		mini := 0
		for i := 1; i < len(dst); i++ {
			if dst[i].Fp < dst[mini].Fp {
				mini = i
			}
		}
		return []Record{dst[mini]}
	}

	ret := make([]Record, 0, len(dst)/winSz+1)
	stored := make([]bool, len(dst))

	var win queue
	collect := func() {
		if win.len() == 0 {
			return
		}
		front := win.front().Fp
		for j := 0; j < win.len(); j++ {
			it := win.at(j)
			if it.Fp != front {
				break
			}
			idx := int(it.Loc)
			if stored[idx] {
				continue
			}
			stored[idx] = true
			ret = append(ret, dst[idx])
		}
	}

	for i := 0; i < winSz; i++ {
		win.push(dst[i].Fp, uint64(i))
	}
	for i := winSz; i < len(dst); i++ {
		collect()
		win.evictIndex(uint64(i - winSz + 1))
		win.push(dst[i].Fp, uint64(i))
	}
	collect()

	return ret
}
