package dispatcher

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/planewar/planewar/pkg/core"
	"github.com/planewar/planewar/pkg/protocol"
)

// testLogger implements Logger for testing
type testLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *testLogger) Debug(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("DEBUG: %s %v", msg, keysAndValues))
}

func (l *testLogger) Info(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("INFO: %s %v", msg, keysAndValues))
}

func (l *testLogger) Error(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("ERROR: %s %v", msg, keysAndValues))
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *testLogger) {
	logger := &testLogger{}

	d, err := New(logger)
	if err != nil {
		t.Fatalf("failed to create dispatcher: %v", err)
	}

	return d, logger
}

func TestDispatcher_RoutesByKind(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var got []protocol.Message
	record := func(m protocol.Message) error {
		got = append(got, m)
		return nil
	}
	d.Register(protocol.KindAttack, record)
	d.Register(protocol.KindResult, record)

	attack := protocol.Attack{At: core.Coordinate{X: 1, Y: 2}}
	result := protocol.Result{At: core.Coordinate{X: 1, Y: 2}, Outcome: core.HitBody}

	if err := d.Dispatch(attack); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := d.Dispatch(result); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 handled messages, got %d", len(got))
	}
	if got[0] != attack || got[1] != result {
		t.Errorf("messages delivered out of order or altered: %v", got)
	}
}

func TestDispatcher_UnknownKind(t *testing.T) {
	d, _ := newTestDispatcher(t)

	err := d.Dispatch(protocol.GameOver{})

	if err == nil {
		t.Error("expected error for unregistered kind")
	}
}

func TestDispatcher_NilMessage(t *testing.T) {
	d, _ := newTestDispatcher(t)

	if err := d.Dispatch(nil); err == nil {
		t.Error("expected error for nil message")
	}
}

func TestDispatcher_HandlerErrorReturned(t *testing.T) {
	d, _ := newTestDispatcher(t)

	d.Register(protocol.KindConfirmPlanes, func(protocol.Message) error {
		return fmt.Errorf("boom")
	})

	err := d.Dispatch(protocol.ConfirmPlanes{})
	if err == nil || err.Error() != "boom" {
		t.Errorf("expected handler error, got %v", err)
	}
}

func TestDispatcher_LoggedHandler(t *testing.T) {
	d, logger := newTestDispatcher(t)

	d.Register(protocol.KindGameOver, func(protocol.Message) error {
		return nil
	}, Logged())

	if err := d.Dispatch(protocol.GameOver{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.mu.Lock()
	defer logger.mu.Unlock()

	if len(logger.messages) < 2 {
		t.Errorf("expected at least 2 log messages, got %d", len(logger.messages))
	}
}

func TestDispatcher_LoggedHandlerError(t *testing.T) {
	d, logger := newTestDispatcher(t)

	d.Register(protocol.KindAttack, func(protocol.Message) error {
		return fmt.Errorf("test error")
	}, Logged())

	_ = d.Dispatch(protocol.Attack{})

	logger.mu.Lock()
	defer logger.mu.Unlock()

	hasError := false
	for _, msg := range logger.messages {
		if strings.HasPrefix(msg, "ERROR") {
			hasError = true
			break
		}
	}

	if !hasError {
		t.Error("expected error log message")
	}
}

func TestDispatcher_HasHandler(t *testing.T) {
	d, _ := newTestDispatcher(t)

	d.Register(protocol.KindResult, func(protocol.Message) error { return nil })

	if !d.HasHandler(protocol.KindResult) {
		t.Error("expected handler to exist")
	}

	if d.HasHandler(protocol.KindAttack) {
		t.Error("expected handler to not exist")
	}
}

func TestDispatcher_ReRegisterReplaces(t *testing.T) {
	d, _ := newTestDispatcher(t)

	calls := ""
	d.Register(protocol.KindGameOver, func(protocol.Message) error { calls += "a"; return nil })
	d.Register(protocol.KindGameOver, func(protocol.Message) error { calls += "b"; return nil })

	_ = d.Dispatch(protocol.GameOver{})

	if calls != "b" {
		t.Errorf("expected only the latest handler to run, got %q", calls)
	}
}
