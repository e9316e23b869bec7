package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"

	ws "github.com/gorilla/websocket"
	"github.com/matryer/way"

	"github.com/planewar/planewar/pkg/core"
)

// DefaultPort is the port a host listens on when none is configured.
const DefaultPort = 12345

// Kind selects the stream flavour.
type Kind string

const (
	KindTCP       Kind = "tcp"
	KindWebSocket Kind = "websocket"
)

// ParseKind accepts "tcp" or "websocket"/"ws"; empty means tcp.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "tcp":
		return KindTCP, nil
	case "websocket", "ws":
		return KindWebSocket, nil
	}
	return KindTCP, fmt.Errorf("unknown transport %q", s)
}

// Config describes how this peer reaches the other one.
type Config struct {
	Role core.Role
	Host string // dial target for RoleJoin
	Port int
	Kind Kind
}

// Address returns the listen address for a host or the dial address for a joiner.
func (c Config) Address() string {
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	if c.Role == core.RoleHost {
		return net.JoinHostPort("", strconv.Itoa(port))
	}
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Establish returns the one stream of this session: a host listens and accepts exactly one
// peer, a joiner dials once. Both give up when ctx is cancelled.
func Establish(ctx context.Context, cfg Config, logger *slog.Logger) (Stream, error) {
	if cfg.Role == core.RoleJoin {
		logger.Info("Connecting to host", "address", cfg.Address(), "transport", cfg.Kind)
		s, err := Dial(ctx, cfg.Kind, cfg.Address())
		if err != nil {
			return nil, err
		}
		logger.Info("Connected to host", "remote", s.RemoteAddr())
		return s, nil
	}

	l, err := Listen(ctx, cfg.Kind, cfg.Address())
	if err != nil {
		return nil, err
	}
	logger.Info("Waiting for opponent", "address", l.Addr(), "transport", cfg.Kind)
	s, err := l.Accept(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("Opponent connected", "remote", s.RemoteAddr())
	return s, nil
}

// Listener accepts a single peer and then stops listening.
type Listener struct {
	kind     Kind
	ln       net.Listener
	srv      *http.Server
	accepted chan Stream
	taken    atomic.Bool
}

// Listen binds addr. For websocket the listener serves GET PlayPath.
func Listen(ctx context.Context, kind Kind, addr string) (*Listener, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	l := &Listener{kind: kind, ln: ln}
	if kind == KindWebSocket {
		l.accepted = make(chan Stream, 1)
		router := way.NewRouter()
		router.HandleFunc(http.MethodGet, PlayPath, l.handleUpgrade())
		l.srv = &http.Server{Handler: router}
		go func() {
			_ = l.srv.Serve(ln)
		}()
	}
	return l, nil
}

// Addr returns the bound address.
func (l *Listener) Addr() string {
	return l.ln.Addr().String()
}

// Accept waits for the first peer, then closes the listener.
func (l *Listener) Accept(ctx context.Context) (Stream, error) {
	defer l.Close()

	if l.kind == KindWebSocket {
		select {
		case s := <-l.accepted:
			return s, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	stop := context.AfterFunc(ctx, func() { _ = l.ln.Close() })
	defer stop()

	conn, err := l.ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("accept: %w", err)
	}
	return NewLineStream(conn), nil
}

// Close stops listening. Established streams are unaffected.
func (l *Listener) Close() error {
	if l.srv != nil {
		// Hijacked websocket connections are not tracked by the server.
		return l.srv.Close()
	}
	err := l.ln.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (l *Listener) handleUpgrade() http.HandlerFunc {
	upgrader := ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	return func(w http.ResponseWriter, r *http.Request) {
		if !l.taken.CompareAndSwap(false, true) {
			http.Error(w, "game already in progress", http.StatusConflict)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			l.taken.Store(false)
			return
		}
		l.accepted <- newWSStream(conn)
	}
}

// Dial connects to a listening host.
func Dial(ctx context.Context, kind Kind, addr string) (Stream, error) {
	if kind == KindWebSocket {
		u := url.URL{Scheme: "ws", Host: addr, Path: PlayPath}
		conn, _, err := ws.DefaultDialer.DialContext(ctx, u.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("websocket dial %s: %w", u.String(), err)
		}
		return newWSStream(conn), nil
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return NewLineStream(conn), nil
}
