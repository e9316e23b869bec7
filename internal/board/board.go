// Package board owns one player's planes: placement while editable, validation on confirmation
// and resolution of incoming attacks once locked.
package board

import (
	"errors"
	"fmt"

	"github.com/planewar/planewar/internal/geometry"
	"github.com/planewar/planewar/pkg/core"
)

const (
	DefaultSize       = 15
	DefaultPlaneCount = 3
)

var (
	// ErrLocked is returned when mutating a board that has been confirmed.
	ErrLocked = errors.New("board already locked")
	// ErrNoPlanes is returned when removing or rotating with no plane placed.
	ErrNoPlanes = errors.New("no plane placed")
)

// ValidationError reports the placement rule a confirmation broke.
type ValidationError struct {
	Kind  core.ValidationKind
	Cell  core.Coordinate // offending cell for OutOfBounds and Overlap
	Count int             // planes present for WrongCount
	Want  int
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case core.WrongCount:
		return fmt.Sprintf("need exactly %d planes, have %d", e.Want, e.Count)
	case core.OutOfBounds:
		return fmt.Sprintf("plane cell %s is outside the grid", e.Cell)
	case core.Overlap:
		return fmt.Sprintf("planes overlap at %s", e.Cell)
	default:
		return "invalid placement"
	}
}

// Board is a single player's grid. It is not safe for concurrent use.
type Board struct {
	size       int
	planeCount int
	planes     []geometry.Plane
	locked     bool
}

// New creates an editable board of size x size cells that requires planeCount planes.
// Non-positive arguments fall back to the defaults.
func New(size, planeCount int) *Board {
	if size <= 0 {
		size = DefaultSize
	}
	if planeCount <= 0 {
		planeCount = DefaultPlaneCount
	}
	return &Board{size: size, planeCount: planeCount}
}

// Size returns the grid edge length.
func (b *Board) Size() int { return b.size }

// Locked reports whether the board has been confirmed.
func (b *Board) Locked() bool { return b.locked }

// PlaneCount returns the number of live planes.
func (b *Board) PlaneCount() int { return len(b.planes) }

// RequiredPlanes returns the number of planes a confirmation needs.
func (b *Board) RequiredPlanes() int { return b.planeCount }

// Planes returns a copy of the live planes in placement order.
func (b *Board) Planes() []geometry.Plane {
	out := make([]geometry.Plane, len(b.planes))
	copy(out, b.planes)
	return out
}

// InBounds reports whether c lies on the grid.
func (b *Board) InBounds(c core.Coordinate) bool {
	return c.X >= 0 && c.X < b.size && c.Y >= 0 && c.Y < b.size
}

// PlacePlane appends a plane. Bounds and overlap are only checked by Confirm.
func (b *Board) PlacePlane(head core.Coordinate, o core.Orientation) (geometry.Plane, error) {
	if b.locked {
		return geometry.Plane{}, ErrLocked
	}
	if !o.Valid() {
		return geometry.Plane{}, fmt.Errorf("place plane: invalid orientation %d", int(o))
	}
	p := geometry.NewPlane(head, o)
	b.planes = append(b.planes, p)
	return p, nil
}

// RemoveLastPlane drops the most recently placed plane and returns it.
func (b *Board) RemoveLastPlane() (geometry.Plane, error) {
	if b.locked {
		return geometry.Plane{}, ErrLocked
	}
	if len(b.planes) == 0 {
		return geometry.Plane{}, ErrNoPlanes
	}
	last := b.planes[len(b.planes)-1]
	b.planes = b.planes[:len(b.planes)-1]
	return last, nil
}

// RotateLastPlane turns the most recently placed plane one step around its head.
func (b *Board) RotateLastPlane(dir core.RotationDirection) (geometry.Plane, error) {
	if b.locked {
		return geometry.Plane{}, ErrLocked
	}
	if len(b.planes) == 0 {
		return geometry.Plane{}, ErrNoPlanes
	}
	i := len(b.planes) - 1
	b.planes[i] = b.planes[i].Rotated(dir)
	return b.planes[i], nil
}

// Validate checks the placement rules without locking the board.
// The plane count is checked first, then every cell for overlap and bounds in placement order.
func (b *Board) Validate() error {
	if len(b.planes) != b.planeCount {
		return &ValidationError{Kind: core.WrongCount, Count: len(b.planes), Want: b.planeCount}
	}
	seen := make(map[core.Coordinate]struct{}, len(b.planes)*geometry.PlaneSize)
	for _, p := range b.planes {
		for _, c := range p.Cells() {
			if _, dup := seen[c]; dup {
				return &ValidationError{Kind: core.Overlap, Cell: c}
			}
			if !b.InBounds(c) {
				return &ValidationError{Kind: core.OutOfBounds, Cell: c}
			}
			seen[c] = struct{}{}
		}
	}
	return nil
}

// Confirm validates the placement and, on success, locks the board for good.
// A failed confirmation leaves the board editable.
func (b *Board) Confirm() error {
	if b.locked {
		return ErrLocked
	}
	if err := b.Validate(); err != nil {
		return err
	}
	b.locked = true
	return nil
}

// ResolveAttack checks c against the live planes in placement order.
// A head hit destroys the plane; gameOver is true when that leaves no plane on the board.
func (b *Board) ResolveAttack(c core.Coordinate) (outcome core.Outcome, gameOver bool) {
	for i, p := range b.planes {
		switch idx := p.IndexOf(c); {
		case idx == 0:
			b.planes = append(b.planes[:i], b.planes[i+1:]...)
			return core.HitHead, len(b.planes) == 0
		case idx > 0:
			return core.HitBody, false
		}
	}
	return core.Miss, false
}
