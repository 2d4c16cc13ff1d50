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

	"golang.org/x/sync/errgroup"

	"github.com/dbabojelic/ram/ram/ksort"
	"github.com/dbabojelic/ram/ram/minimizer"
	"github.com/dbabojelic/ram/ram/sequence"
)

// Minimize rebuilds the index from batch, dropping any previous content.
// Sequences are sketched in parallel on the configured worker budget; the
// first invalid character aborts the whole batch. Per-bucket sorting and
// hash-map construction run in parallel as well, each bucket owned by one
// worker.
func (e *Engine) Minimize(batch []*sequence.Sequence) error {
	for b := range e.records {
		e.records[b] = e.records[b][:0]
		e.index[b] = nil
	}
	if len(batch) == 0 {
		return nil
	}

	sketches := make([][]minimizer.Record, len(batch))

	var workers errgroup.Group
	workers.SetLimit(e.threads)
	for i, s := range batch {
		i, s := i, s
		workers.Go(func() error {
			var err error
			sketches[i], err = e.sketcher.Sketch(s.ID, s.Data, minimizer.Options{})
			return err
		})
	}
	if err := workers.Wait(); err != nil {
		return err
	}

	binMask := uint64(len(e.records) - 1)
	for _, sketch := range sketches {
		for _, r := range sketch {
			b := r.Fp & binMask
			e.records[b] = append(e.records[b], r)
		}
	}

	var builders errgroup.Group
	builders.SetLimit(e.threads)
	for b := range e.records {
		b := b
		if len(e.records[b]) == 0 {
			continue
		}
		builders.Go(func() error {
			recs := e.records[b]
			ksort.Sort(recs, int(e.k)*2, func(r minimizer.Record) uint64 { return r.Fp })

			idx := make(map[uint64][2]uint32, len(recs)/2+1)
			var c uint32
			for i := range recs {
				if i > 0 && recs[i-1].Fp != recs[i].Fp {
					idx[recs[i-1].Fp] = [2]uint32{uint32(i) - c, c}
					c = 0
				}
				if i == len(recs)-1 {
					idx[recs[i].Fp] = [2]uint32{uint32(i) - c, c + 1}
				}
				c++
			}
			e.index[b] = idx
			return nil
		})
	}
	return builders.Wait()
}

// Filter sets the occurrence threshold so that roughly the most frequent
// frequency fraction of distinct fingerprints is ignored during mapping.
// Filter(0) disables pruning, as does an empty index. The threshold is
// the exact order statistic at floor((1-frequency)*n), plus one; lookups
// with a count strictly above it are skipped.
func (e *Engine) Filter(frequency float64) error {
	if !(frequency >= 0 && frequency <= 1) {
		return ErrInvalidArgument
	}
	if frequency == 0 {
		e.occurrence = math.MaxUint32
		return nil
	}

	var occurrences []uint32
	for _, idx := range e.index {
		for _, run := range idx {
			occurrences = append(occurrences, run[1])
		}
	}
	if len(occurrences) == 0 {
		e.occurrence = math.MaxUint32
		return nil
	}

	nth := int((1 - frequency) * float64(len(occurrences)))
	if nth >= len(occurrences) {
		nth = len(occurrences) - 1
	}
	e.occurrence = ksort.Nth(occurrences, nth) + 1
	return nil
}
