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

package cmd

import (
	"fmt"
	"io"

	"github.com/dbabojelic/ram/ram/engine"
	"github.com/dbabojelic/ram/ram/sequence"
)

// writePAF writes one overlap as a PAF-like line: query name, length,
// begin, end, relative strand, target name, length, begin, end, chain
// score, block length and a constant 255 mapping quality.
func writePAF(w io.Writer, o *engine.Overlap, lhs, rhs *sequence.Sequence) {
	strand := byte('-')
	if o.Strand {
		strand = '+'
	}

	lhsSpan := o.LhsEnd - o.LhsBegin
	rhsSpan := o.RhsEnd - o.RhsBegin

	fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%c\t%s\t%d\t%d\t%d\t%d\t%d\t255\n",
		lhs.Name, len(lhs.Data), o.LhsBegin, o.LhsEnd,
		strand,
		rhs.Name, len(rhs.Data), o.RhsBegin, o.RhsEnd,
		o.Score, max(lhsSpan, rhsSpan))
}
