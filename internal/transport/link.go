package transport

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/planewar/planewar/pkg/protocol"
)

const sendChSize = 64

// Handler receives every decoded message, on the read goroutine.
type Handler func(protocol.Message) error

// Link runs one stream: a read loop decoding frames into messages for the handler and a write
// loop draining the send queue, so callers never block on the network.
type Link struct {
	mu     sync.Mutex
	stream Stream
	sendCh chan []byte
	done   chan struct{} // closed when the link ends for any reason
	closed bool
	err    error

	handler Handler
	onClose func(error)

	logger *slog.Logger
}

// NewLink wraps an established stream. onClose is called once, from a transport goroutine,
// when the peer side fails; it is not called for a local Close.
func NewLink(stream Stream, handler Handler, onClose func(error), logger *slog.Logger) *Link {
	if logger == nil {
		logger = slog.Default()
	}
	return &Link{
		stream:  stream,
		sendCh:  make(chan []byte, sendChSize),
		done:    make(chan struct{}),
		handler: handler,
		onClose: onClose,
		logger:  logger,
	}
}

// Start launches the read and write loops.
func (l *Link) Start() {
	go l.writeLoop()
	go l.readLoop()
}

// Send queues a message for the peer.
func (l *Link) Send(m protocol.Message) error {
	frame, err := protocol.Encode(m)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrNotConnected
	}

	select {
	case l.sendCh <- frame:
		return nil
	default:
		l.logger.Warn("Send queue full, dropping message", "kind", m.Kind().String())
		return ErrSendQueueFull
	}
}

// Done is closed once the link has ended.
func (l *Link) Done() <-chan struct{} {
	return l.done
}

// Err returns why the link ended, or nil while it is running or after a local Close.
func (l *Link) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// RemoteAddr returns the peer address.
func (l *Link) RemoteAddr() string {
	return l.stream.RemoteAddr()
}

// Close ends the link and both loops. Queued but unwritten messages are discarded.
func (l *Link) Close() error {
	if !l.shutdown(nil) {
		return nil
	}
	return l.stream.Close()
}

// shutdown marks the link closed. It reports false when it was already closed.
func (l *Link) shutdown(cause error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	l.closed = true
	l.err = cause
	close(l.done)
	return true
}

// fail ends the link because of a stream error and notifies the owner.
func (l *Link) fail(err error) {
	if !l.shutdown(err) {
		return
	}
	_ = l.stream.Close()
	l.logger.Warn("Connection lost", "error", err)
	if l.onClose != nil {
		l.onClose(err)
	}
}

func (l *Link) writeLoop() {
	for {
		select {
		case <-l.done:
			return
		case frame := <-l.sendCh:
			if err := l.stream.WriteFrame(frame); err != nil {
				l.fail(fmt.Errorf("write: %w", err))
				return
			}
			l.logger.Debug("Frame sent", "frame", string(frame))
		}
	}
}

// readLoop decodes frames until the stream fails. Oversized and malformed frames are dropped
// without ending the link.
func (l *Link) readLoop() {
	for {
		frame, err := l.stream.ReadFrame()
		if err != nil {
			select {
			case <-l.done:
				return
			default:
			}
			if errors.Is(err, ErrFrameTooLong) {
				l.logger.Warn("Dropping oversized frame", "limit", MaxFrameSize)
				continue
			}
			l.fail(fmt.Errorf("read: %w", err))
			return
		}

		l.logger.Debug("Frame received", "frame", string(frame))

		msg, err := protocol.Decode(frame)
		if err != nil {
			l.logger.Warn("Dropping malformed message", "error", err)
			continue
		}

		if l.handler == nil {
			continue
		}
		if err := l.handler(msg); err != nil {
			l.logger.Warn("Message handler failed", "kind", msg.Kind().String(), "error", err)
		}
	}
}
