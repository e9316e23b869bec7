// internal/storage/memory/memory.go
package memory

import (
	"sync"

	"github.com/planewar/planewar/internal/geometry"
	"github.com/planewar/planewar/internal/queue"
	"github.com/planewar/planewar/pkg/core"
)

// Backend keeps the attack journal in process memory, in recording order.
type Backend struct {
	own      *queue.Queue[core.AttackRecord]
	opponent *queue.Queue[core.AttackRecord]

	mu     sync.RWMutex
	layout []geometry.Plane
}

// New creates a new memory backend
func New() *Backend {
	return &Backend{
		own:      queue.New[core.AttackRecord](),
		opponent: queue.New[core.AttackRecord](),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	b.own.Drain()
	b.opponent.Drain()
	return nil
}

// RecordLayout stores the confirmed plane layout, replacing any earlier one.
func (b *Backend) RecordLayout(planes []geometry.Plane) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.layout = append([]geometry.Plane(nil), planes...)
	return nil
}

// Layout returns the recorded plane layout.
func (b *Backend) Layout() ([]geometry.Plane, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return append([]geometry.Plane(nil), b.layout...), nil
}

// RecordAttack appends one resolved attack to the journal of its board
func (b *Backend) RecordAttack(r core.AttackRecord) error {
	b.journal(r.Board).Push(r)
	return nil
}

// Tally counts the outcomes recorded for board.
func (b *Backend) Tally(board core.BoardID) (core.Tally, error) {
	var t core.Tally
	for _, r := range b.journal(board).Snapshot() {
		t.Add(r.Outcome)
	}
	return t, nil
}

// Attacks returns the attacks recorded for board, oldest first.
func (b *Backend) Attacks(board core.BoardID) ([]core.AttackRecord, error) {
	return b.journal(board).Snapshot(), nil
}

func (b *Backend) journal(board core.BoardID) *queue.Queue[core.AttackRecord] {
	if board == core.OwnBoard {
		return b.own
	}
	return b.opponent
}
