// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package writer

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/rigtags/internal/tags"
)

// ErrStreamClosed is returned when writing to a closed stream.
var ErrStreamClosed = errors.New("tag stream is closed")

// SinkError wraps a failure of the underlying output.
type SinkError struct {
	Op  string
	Err error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("tag output %s: %v", e.Op, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

// Stream binds a dialect to one buffered output and its per-stream state.
// A Stream is not safe for concurrent use.
type Stream struct {
	w        Writer
	st       *State
	out      *bufio.Writer
	closed   bool
	rejected int
	bytes    int64
}

// NewStream begins a stream on out.
func NewStream(w Writer, out io.Writer, opts Options) *Stream {
	return &Stream{
		w:   w,
		st:  w.Begin(opts),
		out: bufio.NewWriter(out),
	}
}

// Writer returns the dialect of the stream.
func (s *Stream) Writer() Writer {
	return s.w
}

// WritePseudoTag writes one header record.
func (s *Stream) WritePseudoTag(p PseudoTag) error {
	if s.closed {
		return ErrStreamClosed
	}
	n, err := s.w.WritePseudoTag(s.out, p)
	s.bytes += int64(n)
	if err != nil {
		return &SinkError{Op: "write", Err: err}
	}
	return nil
}

// WriteEntry writes e. It reports accepted=false when the dialect rejected
// the entry; err is non-nil only for sink failures.
func (s *Stream) WriteEntry(e *tags.Entry) (accepted bool, err error) {
	if s.closed {
		return false, ErrStreamClosed
	}
	n, err := s.w.WriteEntry(s.out, s.st, e)
	s.bytes += int64(n)
	if err != nil {
		return false, &SinkError{Op: "write", Err: err}
	}
	if n == 0 {
		s.rejected++
		return false, nil
	}
	return true, nil
}

// Flush pushes buffered records to the sink.
func (s *Stream) Flush() error {
	if err := s.out.Flush(); err != nil {
		return &SinkError{Op: "flush", Err: err}
	}
	return nil
}

// Close flushes the stream and reports whether any entry was rejected.
// It does not close the underlying writer.
func (s *Stream) Close() (hadRejections bool, err error) {
	if s.closed {
		return s.w.End(s.st), nil
	}
	s.closed = true
	err = s.Flush()
	return s.w.End(s.st), err
}

// Stats returns counters for the stream so far.
func (s *Stream) Stats() StreamStats {
	return StreamStats{
		Written:  s.st.Entries(),
		Rejected: s.rejected,
		Bytes:    s.bytes,
	}
}

// StreamStats summarizes one stream.
type StreamStats struct {
	Written  int
	Rejected int
	Bytes    int64
}
