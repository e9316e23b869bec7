// Package geometry defines the fixed plane silhouette and the cells it covers on a grid.
package geometry

import "github.com/planewar/planewar/pkg/core"

// PlaneSize is the number of cells a plane occupies.
const PlaneSize = 10

type offset struct{ dx, dy int }

// offsets lists, per orientation, the cell offsets relative to the head.
// Element 0 is always the head; the wing row, tail stem and tail row follow.
var offsets = [...][PlaneSize]offset{
	core.Up: {
		{0, 0},
		{0, 1}, {-2, 1}, {-1, 1}, {1, 1}, {2, 1},
		{0, 2},
		{-1, 3}, {0, 3}, {1, 3},
	},
	core.Right: {
		{0, 0},
		{1, 0}, {1, -2}, {1, -1}, {1, 1}, {1, 2},
		{2, 0},
		{3, -1}, {3, 0}, {3, 1},
	},
	core.Down: {
		{0, 0},
		{0, -1}, {-2, -1}, {-1, -1}, {1, -1}, {2, -1},
		{0, -2},
		{-1, -3}, {0, -3}, {1, -3},
	},
	core.Left: {
		{0, 0},
		{-1, 0}, {-1, -2}, {-1, -1}, {-1, 1}, {-1, 2},
		{-2, 0},
		{-3, -1}, {-3, 0}, {-3, 1},
	},
}

// OccupiedCells returns the PlaneSize cells covered by a plane with the given head and
// orientation. Index 0 is the head. Cells are not clamped to any grid.
// It returns nil for an invalid orientation.
func OccupiedCells(head core.Coordinate, o core.Orientation) []core.Coordinate {
	if !o.Valid() {
		return nil
	}
	cells := make([]core.Coordinate, PlaneSize)
	for i, off := range offsets[o] {
		cells[i] = head.Add(off.dx, off.dy)
	}
	return cells
}

// Plane is a placed piece: a head cell plus the orientation that selects its offset table.
type Plane struct {
	Head        core.Coordinate
	Orientation core.Orientation
	cells       []core.Coordinate
}

// NewPlane builds a plane and computes its cells.
func NewPlane(head core.Coordinate, o core.Orientation) Plane {
	return Plane{
		Head:        head,
		Orientation: o,
		cells:       OccupiedCells(head, o),
	}
}

// Cells returns a copy of the occupied cells, head first.
func (p Plane) Cells() []core.Coordinate {
	if p.cells == nil {
		return OccupiedCells(p.Head, p.Orientation)
	}
	out := make([]core.Coordinate, len(p.cells))
	copy(out, p.cells)
	return out
}

// Rotated returns the plane turned one step around its head.
func (p Plane) Rotated(dir core.RotationDirection) Plane {
	return NewPlane(p.Head, p.Orientation.Rotate(dir))
}

// IndexOf returns the position of c in the plane's cell list, or -1.
// Index 0 means c is the head.
func (p Plane) IndexOf(c core.Coordinate) int {
	cells := p.cells
	if cells == nil {
		cells = OccupiedCells(p.Head, p.Orientation)
	}
	for i, cell := range cells {
		if cell == c {
			return i
		}
	}
	return -1
}

// Equal reports whether both planes have the same head and orientation.
func (p Plane) Equal(other Plane) bool {
	return p.Head == other.Head && p.Orientation == other.Orientation
}

func (p Plane) String() string {
	return "plane" + p.Head.String() + " " + p.Orientation.String()
}
