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

// Package minimizer turns nucleotide sequences into compact sketches of
// (fingerprint, location) records by winnowing the randomized hashes of
// canonical k-mers over a sliding window.
package minimizer

import "errors"

// ErrInvalidCharacter is returned when a sequence contains a byte with no
// nucleotide code.
var ErrInvalidCharacter = errors.New("minimizer: invalid character")

const invalidCode = 255

// coder maps sequence bytes to 2-bit nucleotide codes: A/a, C/c, G/g and
// T/t/U/u. Every other byte, gaps and IUPAC ambiguity codes included, is
// invalid.
var coder [256]byte

func init() {
	for i := range coder {
		coder[i] = invalidCode
	}
	set := func(chars string, code byte) {
		for i := 0; i < len(chars); i++ {
			coder[chars[i]] = code
		}
	}
	set("Aa", 0)
	set("Cc", 1)
	set("Gg", 2)
	set("TtUu", 3)
}
