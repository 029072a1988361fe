// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package extract

import (
	"bufio"
	"bytes"
	"io"
	"iter"

	"github.com/jeranaias/rigtags/internal/tags"
)

// MaxLineLength is the longest source line the scanner accepts.
const MaxLineLength = 1 << 20

// Scanner yields the entries of one input, top to bottom. It is not
// restartable: once Next returns false it keeps returning false.
type Scanner struct {
	lang    *language
	path    string
	lines   *bufio.Scanner
	lineNo  uint64
	pending []tags.Entry
	cur     tags.Entry
	done    bool
	err     error
}

func newScanner(l *language, path string, r io.Reader) *Scanner {
	lines := bufio.NewScanner(r)
	lines.Buffer(make([]byte, 0, 64*1024), MaxLineLength)
	lines.Split(scanLines)
	return &Scanner{lang: l, path: path, lines: lines}
}

// Next advances to the next entry.
func (s *Scanner) Next() bool {
	for len(s.pending) == 0 {
		if s.done {
			return false
		}
		if !s.lines.Scan() {
			s.done = true
			s.err = s.lines.Err()
			return false
		}
		s.lineNo++
		s.pending = s.lang.matchLine(s.path, s.lineNo, s.lines.Text(), s.pending[:0])
	}
	s.cur = s.pending[0]
	s.pending = s.pending[1:]
	return true
}

// scanLines is bufio.ScanLines that also ends a line at a lone CR, so
// LF, CRLF and classic Mac CR files number their lines the same way.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		// CR at the end of the buffer: wait to see whether LF follows.
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// Entry returns the entry produced by the last call to Next.
func (s *Scanner) Entry() tags.Entry {
	return s.cur
}

// Line returns the number of lines consumed so far.
func (s *Scanner) Line() uint64 {
	return s.lineNo
}

// Err returns the first read error, if any.
func (s *Scanner) Err() error {
	return s.err
}

// All returns the remaining entries as a sequence.
func (s *Scanner) All() iter.Seq[tags.Entry] {
	return func(yield func(tags.Entry) bool) {
		for s.Next() {
			if !yield(s.cur) {
				return
			}
		}
	}
}
