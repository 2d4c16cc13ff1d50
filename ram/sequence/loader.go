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

package sequence

import (
	"io"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seqio/fastx"
)

// Loader reads sequences from one or more FASTA/FASTQ files, plain or
// gzip-compressed, assigning ids from a monotonic counter. Files are
// consumed in the given order as one logical stream.
type Loader struct {
	files  []string
	cursor int
	reader *fastx.Reader
	next   uint32
}

// NewLoader opens the first of files. The counter starts at 0.
func NewLoader(files ...string) (*Loader, error) {
	l := &Loader{files: files}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Loader) open() error {
	reader, err := fastx.NewReader(nil, l.files[l.cursor], "")
	if err != nil {
		return errors.Wrap(err, l.files[l.cursor])
	}
	l.reader = reader
	return nil
}

// Load reads sequences until their total length reaches maxBytes or the
// input is exhausted. An empty batch means end of input. Records are
// copied out of the parser's reused buffers.
func (l *Loader) Load(maxBytes int64) ([]*Sequence, error) {
	var total int64
	var batch []*Sequence

	for total < maxBytes && l.reader != nil {
		record, err := l.reader.Read()
		if err != nil {
			if err == io.EOF {
				l.reader.Close()
				l.reader = nil
				l.cursor++
				if l.cursor < len(l.files) {
					if err = l.open(); err != nil {
						return nil, err
					}
				}
				continue
			}
			return nil, errors.Wrap(err, l.files[l.cursor])
		}

		s := &Sequence{
			ID:   l.next,
			Name: string(record.ID),
			Data: append([]byte(nil), record.Seq.Seq...),
		}
		l.next++
		total += int64(len(s.Data))
		batch = append(batch, s)
	}
	return batch, nil
}

// NextID returns the id the next loaded sequence will get.
func (l *Loader) NextID() uint32 { return l.next }

// Rewind reopens the input from the beginning and restores the id counter
// to origin.
func (l *Loader) Rewind(origin uint32) error {
	if l.reader != nil {
		l.reader.Close()
		l.reader = nil
	}
	l.cursor = 0
	l.next = origin
	return l.open()
}

// Close releases the underlying parser.
func (l *Loader) Close() {
	if l.reader != nil {
		l.reader.Close()
		l.reader = nil
	}
}
