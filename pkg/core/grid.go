// pkg/core/grid.go
package core

import (
	"fmt"
	"strings"
)

// Coordinate is a cell position on a board grid. X grows to the right, Y grows downwards.
type Coordinate struct {
	X int
	Y int
}

// Add returns c shifted by (dx, dy).
func (c Coordinate) Add(dx, dy int) Coordinate {
	return Coordinate{X: c.X + dx, Y: c.Y + dy}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Orientation is the direction a plane's nose points to.
// Successive values are 90 degrees clockwise apart.
type Orientation int

const (
	Up Orientation = iota
	Right
	Down
	Left

	orientationCount = 4
)

// Valid reports whether o is one of the four orientations.
func (o Orientation) Valid() bool {
	return o >= Up && o <= Left
}

// Next returns the orientation one step clockwise.
func (o Orientation) Next() Orientation {
	return Orientation((int(o) + 1) % orientationCount)
}

// Prev returns the orientation one step counter-clockwise.
func (o Orientation) Prev() Orientation {
	return Orientation((int(o) + orientationCount - 1) % orientationCount)
}

// Rotate turns o one step in the given direction.
func (o Orientation) Rotate(dir RotationDirection) Orientation {
	if dir == CounterClockwise {
		return o.Prev()
	}
	return o.Next()
}

func (o Orientation) String() string {
	switch o {
	case Up:
		return "UP"
	case Right:
		return "RIGHT"
	case Down:
		return "DOWN"
	case Left:
		return "LEFT"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// ParseOrientation converts a case-insensitive orientation name.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "UP":
		return Up, nil
	case "RIGHT":
		return Right, nil
	case "DOWN":
		return Down, nil
	case "LEFT":
		return Left, nil
	}
	return Up, fmt.Errorf("unknown orientation %q", s)
}

// RotationDirection selects which way a rotation turns.
type RotationDirection int

const (
	Clockwise RotationDirection = iota
	CounterClockwise
)

func (d RotationDirection) String() string {
	if d == CounterClockwise {
		return "CCW"
	}
	return "CW"
}

// BoardID names one of the two grids a player sees.
type BoardID int

const (
	OwnBoard BoardID = iota
	OpponentBoard
)

func (b BoardID) String() string {
	if b == OpponentBoard {
		return "opponent"
	}
	return "own"
}

// Role is the part a peer plays when the connection is established.
type Role int

const (
	RoleHost Role = iota
	RoleJoin
)

func (r Role) String() string {
	if r == RoleJoin {
		return "join"
	}
	return "host"
}

// ParseRole accepts "host" or "join" (case-insensitive).
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "host", "server", "listen":
		return RoleHost, nil
	case "join", "client", "connect":
		return RoleJoin, nil
	}
	return RoleHost, fmt.Errorf("unknown role %q", s)
}
