/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: reader.go
Description: Bounded line reader. Lines longer than the limit are discarded up to
their newline and reported as oversized so the stream can continue after them.
*/

package stream

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// ErrLineTooLong marks an input line longer than Options.MaxLineBytes
var ErrLineTooLong = errors.New("line exceeds maximum length")

type lineReader struct {
	r   *bufio.Reader
	max int
	buf []byte
}

func newLineReader(r io.Reader, maxLineBytes int) *lineReader {
	return &lineReader{
		r:   bufio.NewReaderSize(r, min(64*1024, maxLineBytes+1)),
		max: maxLineBytes,
	}
}

// next returns the next line without its line ending. The slice is valid until
// the following call. Oversized lines return ErrLineTooLong; io.EOF ends the input.
func (lr *lineReader) next() ([]byte, error) {
	lr.buf = lr.buf[:0]
	read := 0
	tooLong := false

	for {
		chunk, err := lr.r.ReadSlice('\n')
		read += len(chunk)
		if !tooLong {
			lr.buf = append(lr.buf, chunk...)
			if len(bytes.TrimSuffix(lr.buf, []byte{'\n'})) > lr.max {
				tooLong = true
				lr.buf = lr.buf[:0]
			}
		}

		switch {
		case err == bufio.ErrBufferFull:
			continue
		case err == io.EOF:
			if read == 0 {
				return nil, io.EOF
			}
		case err != nil:
			return nil, err
		}

		if tooLong {
			return nil, ErrLineTooLong
		}
		line := bytes.TrimSuffix(lr.buf, []byte{'\n'})
		return bytes.TrimSuffix(line, []byte{'\r'}), nil
	}
}
