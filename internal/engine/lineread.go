package engine

import (
	"bytes"
	"io"

	"github.com/melihbirim/sievik/internal/scan"
)

// lineReader is the small-file byte reader: a double-buffered window over
// a stream yielding borrowed line slices. A returned slice is valid only
// until the next call; callers that retain bytes copy them into an arena.
type lineReader struct {
	r      io.Reader
	buf    []byte
	pos    int // next unread byte
	filled int // bytes valid in buf
	eof    bool
}

func newLineReader(r io.Reader, size int) *lineReader {
	return &lineReader{r: r, buf: make([]byte, size)}
}

// next returns the next line without its terminator, trailing CR
// stripped. Empty lines are returned as empty slices; io.EOF follows the
// final line.
func (lr *lineReader) next() ([]byte, error) {
	for {
		if nl := bytes.IndexByte(lr.buf[lr.pos:lr.filled], '\n'); nl >= 0 {
			line := lr.buf[lr.pos : lr.pos+nl]
			lr.pos += nl + 1
			return scan.TrimCR(line), nil
		}
		if lr.eof {
			if lr.pos < lr.filled {
				// Final line without a terminator.
				line := lr.buf[lr.pos:lr.filled]
				lr.pos = lr.filled
				return scan.TrimCR(line), nil
			}
			return nil, io.EOF
		}
		if err := lr.fill(); err != nil {
			return nil, err
		}
	}
}

// fill slides the unread tail to the front and reads into the remainder.
// A line longer than the window doubles the buffer rather than failing.
func (lr *lineReader) fill() error {
	if lr.pos > 0 {
		copy(lr.buf, lr.buf[lr.pos:lr.filled])
		lr.filled -= lr.pos
		lr.pos = 0
	}
	if lr.filled == len(lr.buf) {
		grown := make([]byte, 2*len(lr.buf))
		copy(grown, lr.buf[:lr.filled])
		lr.buf = grown
	}
	n, err := lr.r.Read(lr.buf[lr.filled:])
	lr.filled += n
	if err == io.EOF {
		lr.eof = true
		return nil
	}
	return err
}
