package core

// streaming.go holds the io.Reader wrappers applied to persisted tables
// before CSV parsing:
//
//   - skipBOM drops a leading UTF-8 byte order mark written by spreadsheet tools
//   - utf8Sanitizer replaces invalid UTF-8 bytes with '?'
//   - countingReader tracks bytes read for load logging
//
// wrapTableReader applies all three in that order.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// skipBOM returns a reader over r without a leading UTF-8 BOM.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// utf8Sanitizer rewrites invalid UTF-8 bytes to '?' in place. A multi-byte
// sequence split across two reads is held back until it is complete.
type utf8Sanitizer struct {
	r       io.Reader
	pending []byte
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{r: r, pending: make([]byte, 0, utf8.UTFMax)}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	off := copy(p, s.pending)
	s.pending = s.pending[:0]

	n, err := s.r.Read(p[off:])
	n += off
	if n == 0 {
		return 0, err
	}
	return s.sanitize(p[:n], err == io.EOF), err
}

func (s *utf8Sanitizer) sanitize(data []byte, atEOF bool) int {
	w := 0
	for i := 0; i < len(data); {
		if data[i] < utf8.RuneSelf {
			data[w] = data[i]
			w++
			i++
			continue
		}
		if !atEOF && !utf8.FullRune(data[i:]) {
			s.pending = append(s.pending, data[i:]...)
			return w
		}
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			data[w] = '?'
			w++
			i++
			continue
		}
		w += copy(data[w:], data[i:i+size])
		i += size
	}
	return w
}

// countingReader counts bytes read through it.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// wrapTableReader strips the BOM, sanitizes UTF-8 and counts bytes.
func wrapTableReader(r io.Reader) *countingReader {
	return &countingReader{r: newUTF8Sanitizer(skipBOM(r))}
}
