package usb

import (
	"io"
)

// Stream adapts a blocking reader to non-blocking single-byte reads. A
// goroutine fills a small buffer; the session ends at EOF.
type Stream struct {
	w    io.Writer
	in   chan byte
	done chan struct{}
}

func NewStream(r io.Reader, w io.Writer) *Stream {
	s := &Stream{
		w:    w,
		in:   make(chan byte, 64),
		done: make(chan struct{}),
	}
	go s.pump(r)
	return s
}

func (s *Stream) pump(r io.Reader) {
	defer close(s.done)
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		for i := 0; i < n; i++ {
			s.in <- buf[i]
		}
		if err != nil {
			return
		}
	}
}

// Connected stays true while the reader is open or buffered bytes remain.
func (s *Stream) Connected() bool {
	select {
	case <-s.done:
		return len(s.in) > 0
	default:
		return true
	}
}

func (s *Stream) TryReadByte() (byte, bool) {
	select {
	case b := <-s.in:
		return b, true
	default:
		return 0, false
	}
}

func (s *Stream) Write(b []byte) (int, error) {
	return s.w.Write(b)
}
