package transport

import (
	"fmt"
	"io"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"
)

const (
	// PlayPath is the HTTP route a websocket host serves.
	PlayPath  = "/play"
	writeWait = 10 * time.Second
)

// wsStream carries one protocol frame per websocket text message.
type wsStream struct {
	conn *ws.Conn
	wmu  sync.Mutex
}

func newWSStream(conn *ws.Conn) *wsStream {
	return &wsStream{conn: conn}
}

// ReadFrame returns the next data message. A message over MaxFrameSize is read to its end and
// dropped with ErrFrameTooLong, like an oversized line on a TCP stream.
func (s *wsStream) ReadFrame() ([]byte, error) {
	for {
		msgType, r, err := s.conn.NextReader()
		if err != nil {
			return nil, err
		}
		if msgType != ws.TextMessage && msgType != ws.BinaryMessage {
			continue
		}
		data, err := io.ReadAll(io.LimitReader(r, MaxFrameSize+1))
		if err != nil {
			return nil, err
		}
		if len(data) > MaxFrameSize {
			if _, err := io.Copy(io.Discard, r); err != nil {
				return nil, err
			}
			return nil, ErrFrameTooLong
		}
		return data, nil
	}
}

func (s *wsStream) WriteFrame(frame []byte) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("websocket set write deadline: %w", err)
	}
	return s.conn.WriteMessage(ws.TextMessage, frame)
}

// Close sends a close frame and closes the connection.
func (s *wsStream) Close() error {
	s.wmu.Lock()
	_ = s.conn.WriteControl(
		ws.CloseMessage,
		ws.FormatCloseMessage(ws.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	s.wmu.Unlock()
	return s.conn.Close()
}

func (s *wsStream) RemoteAddr() string {
	if a := s.conn.RemoteAddr(); a != nil {
		return a.String()
	}
	return ""
}
