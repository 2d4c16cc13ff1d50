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

// Package ksort provides the numeric kernels shared by the minimizer index
// and the chainer: a byte-wise radix sort keyed by a 64-bit projection,
// a longest-subsequence search over packed positions, and a quickselect.
package ksort

// Sort sorts s in ascending order of the lowest maxBits bits of key,
// least significant byte first, ping-ponging between s and one scratch
// buffer. maxBits is rounded up to a multiple of 8.
func Sort[T any](s []T, maxBits int, key func(T) uint64) {
	if len(s) < 2 {
		return
	}

	buf := make([]T, len(s))
	a, b := s, buf

	var passes int
	for shift := 0; shift < maxBits; shift += 8 {
		var counts [256]int
		for _, v := range a {
			counts[key(v)>>shift&0xff]++
		}

		var offsets [256]int
		for i, j := 0, 0; i < 256; i++ {
			offsets[i] = j
			j += counts[i]
		}

		for _, v := range a {
			c := key(v) >> shift & 0xff
			b[offsets[c]] = v
			offsets[c]++
		}

		a, b = b, a
		passes++
	}

	// odd number of passes leaves the result in the scratch buffer
	if passes&1 == 1 {
		copy(s, a)
	}
}
