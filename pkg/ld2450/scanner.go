package ld2450

import (
	"bufio"
	"errors"
	"io"
	"time"
)

var ErrReadTimeout = errors.New("ld2450: read timed out")

// FrameScanner extracts reporting frames from a raw UART byte stream.
// Bytes before a frame header are skipped, so the scanner can start
// reading at any offset of the stream.
type FrameScanner struct {
	src      io.Reader
	r        *bufio.Reader
	buf      []byte
	deadline time.Time
}

func NewFrameScanner(r io.Reader) *FrameScanner {
	return &FrameScanner{
		src: r,
		r:   bufio.NewReaderSize(r, 4*FrameSize),
		buf: make([]byte, FrameSize),
	}
}

// Reset discards any buffered bytes.
func (s *FrameScanner) Reset() {
	s.r.Reset(s.src)
}

// SetDeadline bounds the time Next may spend looking for a frame. A zero
// value disables the deadline.
func (s *FrameScanner) SetDeadline(t time.Time) {
	s.deadline = t
}

// Next blocks until a complete frame is read, the deadline passes or the
// underlying reader fails. Frames with a corrupt footer are dropped and
// scanning resumes.
func (s *FrameScanner) Next() (Frame, error) {
	for {
		if err := s.syncHeader(); err != nil {
			return Frame{}, err
		}
		copy(s.buf, frameHeader[:])
		if _, err := io.ReadFull(s.r, s.buf[headerSize:]); err != nil {
			return Frame{}, err
		}
		frame, err := DecodeFrame(s.buf)
		if err == ErrInvalidFooter {
			if s.expired() {
				return Frame{}, ErrReadTimeout
			}
			continue
		}
		return frame, err
	}
}

func (s *FrameScanner) syncHeader() error {
	matched := 0
	for matched < headerSize {
		if s.expired() {
			return ErrReadTimeout
		}
		b, err := s.r.ReadByte()
		if err != nil {
			return err
		}
		switch {
		case b == frameHeader[matched]:
			matched++
		case b == frameHeader[0]:
			matched = 1
		default:
			matched = 0
		}
	}
	return nil
}

func (s *FrameScanner) expired() bool {
	return !s.deadline.IsZero() && time.Now().After(s.deadline)
}
