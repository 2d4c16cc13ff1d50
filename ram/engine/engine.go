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

// Package engine indexes the minimizer sketches of a reference sequence
// set and detects approximate overlaps as high-scoring collinear chains of
// shared minimizers between a query and the indexed set.
package engine

import (
	"errors"
	"math"

	"github.com/dbabojelic/ram/ram/minimizer"
)

// ErrInvalidArgument marks a parameter outside its valid range.
var ErrInvalidArgument = errors.New("engine: invalid argument")

// Options configure a new Engine. The zero value is not usable; start
// from DefaultOptions.
type Options struct {
	K uint32 // k-mer length, clamped to [1, 32]
	W uint32 // minimizer window length

	M uint32 // discard chains scoring less than this
	G uint64 // stop chain elongation over gaps larger than this
	N uint8  // discard chains of fewer minimizers than this

	BestN        uint32 // keep only this many best overlaps per query, 0 keeps all
	ReduceWindow uint32 // hierarchical sketch reduction window, 0 disables

	Robust bool // robust winnowing
	HPC    bool // homopolymer-compressed minimizers

	// Size of the borrowed worker pool for Minimize; values below 1 mean
	// a single worker. Map calls are read-only and parallelized by the
	// caller instead.
	Threads int
}

// DefaultOptions match the reference all-vs-all defaults.
var DefaultOptions = Options{
	K: 15, W: 5,
	M: 100, G: 10000, N: 4,
	Threads: 1,
}

// Engine holds the minimizer index of the most recent Minimize batch.
// Mapping is read-only and reentrant; Minimize and Filter are not safe to
// run concurrently with it.
type Engine struct {
	k uint32
	w uint32
	m uint32
	g uint64
	n uint8

	bestN   uint32
	threads int

	occurrence uint32

	sketcher minimizer.Sketcher

	// records[b] holds every reference sketch record whose fingerprint
	// falls into bucket b, sorted by fingerprint; index[b] maps a
	// fingerprint to its (offset, count) run within records[b]
	records [][]minimizer.Record
	index   []map[uint64][2]uint32
}

// New creates an engine. K is clamped to [1, 32].
func New(opts *Options) *Engine {
	k := opts.K
	if k < 1 {
		k = 1
	}
	if k > 32 {
		k = 32
	}

	threads := opts.Threads
	if threads < 1 {
		threads = 1
	}

	nBuckets := 1 << min(14, 2*k)

	return &Engine{
		k: k,
		w: opts.W,
		m: opts.M,
		g: opts.G,
		n: opts.N,

		bestN:   opts.BestN,
		threads: threads,

		occurrence: math.MaxUint32,

		sketcher: minimizer.Sketcher{
			K:            k,
			W:            opts.W,
			HPC:          opts.HPC,
			Robust:       opts.Robust,
			ReduceWindow: opts.ReduceWindow,
		},

		records: make([][]minimizer.Record, nBuckets),
		index:   make([]map[uint64][2]uint32, nBuckets),
	}
}

// K returns the configured k-mer length after clamping.
func (e *Engine) K() uint32 { return e.k }

// IndexSize returns the total number of indexed sketch records.
func (e *Engine) IndexSize() uint64 {
	var total uint64
	for _, recs := range e.records {
		total += uint64(len(recs))
	}
	return total
}
