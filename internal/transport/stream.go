// Package transport establishes the single bidirectional stream between two peers and moves
// protocol frames across it.
package transport

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"net"
	"sync"
)

// MaxFrameSize bounds one frame, delimiter included.
const MaxFrameSize = 4096

var (
	// ErrNotConnected is returned when sending without an established stream.
	ErrNotConnected = errors.New("transport not connected")
	// ErrFrameTooLong reports a frame over MaxFrameSize. The frame is skipped; the stream stays usable.
	ErrFrameTooLong = errors.New("frame too long")
	// ErrSendQueueFull is returned when the write loop cannot keep up.
	ErrSendQueueFull = errors.New("send queue full")
)

// Stream carries whole frames. ReadFrame may be called from one goroutine while WriteFrame is
// called from another.
type Stream interface {
	ReadFrame() ([]byte, error)
	WriteFrame(frame []byte) error
	Close() error
	RemoteAddr() string
}

// lineStream frames messages with a trailing newline over a raw byte stream, so coalesced or
// split TCP segments are reassembled into the frames the peer wrote.
type lineStream struct {
	conn net.Conn
	r    *bufio.Reader
	wmu  sync.Mutex
}

// NewLineStream wraps a connection with newline framing.
func NewLineStream(conn net.Conn) Stream {
	return &lineStream{
		conn: conn,
		r:    bufio.NewReaderSize(conn, MaxFrameSize),
	}
}

func (s *lineStream) ReadFrame() ([]byte, error) {
	line, err := s.r.ReadSlice('\n')
	switch {
	case err == nil:
		return copyFrame(line), nil
	case errors.Is(err, bufio.ErrBufferFull):
		for errors.Is(err, bufio.ErrBufferFull) {
			_, err = s.r.ReadSlice('\n')
		}
		if err != nil {
			return nil, err
		}
		return nil, ErrFrameTooLong
	case errors.Is(err, io.EOF) && len(line) > 0:
		// Deliver an unterminated last frame; the next read reports EOF.
		return copyFrame(line), nil
	default:
		return nil, err
	}
}

func (s *lineStream) WriteFrame(frame []byte) error {
	if bytes.IndexByte(frame, '\n') >= 0 {
		return errors.New("frame contains a newline")
	}
	buf := make([]byte, 0, len(frame)+1)
	buf = append(buf, frame...)
	buf = append(buf, '\n')

	s.wmu.Lock()
	defer s.wmu.Unlock()
	_, err := s.conn.Write(buf)
	return err
}

func (s *lineStream) Close() error {
	return s.conn.Close()
}

func (s *lineStream) RemoteAddr() string {
	if a := s.conn.RemoteAddr(); a != nil {
		return a.String()
	}
	return ""
}

func copyFrame(line []byte) []byte {
	line = bytes.TrimRight(line, "\r\n")
	out := make([]byte, len(line))
	copy(out, line)
	return out
}
