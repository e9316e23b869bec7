// internal/storage/storage.go
package storage

import (
	"github.com/planewar/planewar/internal/geometry"
	"github.com/planewar/planewar/pkg/core"
)

// Backend is the interface all attack journal implementations must satisfy.
// Journals live in process memory and end with the session.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Recording
	RecordLayout(planes []geometry.Plane) error
	RecordAttack(r core.AttackRecord) error

	// Queries
	Layout() ([]geometry.Plane, error)
	Tally(board core.BoardID) (core.Tally, error)
	Attacks(board core.BoardID) ([]core.AttackRecord, error)
}

// AttackSink receives a copy of every recorded attack, e.g. for telemetry.
type AttackSink interface {
	WriteAttack(r core.AttackRecord) error
}
