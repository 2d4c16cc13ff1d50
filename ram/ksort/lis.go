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

package ksort

// LongestSubsequence returns the indices of the longest subsequence of s
// whose primary dimension (val>>32) is strictly increasing and whose
// secondary dimension (low 32 bits of val) satisfies less between every
// pair of consecutive picks. Passing strictly-less yields the longest
// increasing subsequence of the secondary dimension, strictly-greater the
// longest decreasing one. Patience variant over minimal tail indices,
// O(n log n).
func LongestSubsequence[T any](s []T, val func(T) uint64, less func(a, b uint64) bool) []int {
	if len(s) == 0 {
		return nil
	}

	minimal := make([]int, len(s)+1)
	predecessor := make([]int, len(s))

	longest := 0
	for i := range s {
		lo, hi := 1, longest
		for lo <= hi {
			mid := lo + (hi-lo)/2
			m := val(s[minimal[mid]])
			v := val(s[i])
			if m>>32 < v>>32 && less(m<<32>>32, v<<32>>32) {
				lo = mid + 1
			} else {
				hi = mid - 1
			}
		}

		predecessor[i] = minimal[lo-1]
		minimal[lo] = i
		if lo > longest {
			longest = lo
		}
	}

	dst := make([]int, longest)
	for i, j := longest-1, minimal[longest]; i >= 0; i-- {
		dst[i] = j
		j = predecessor[j]
	}
	return dst
}
