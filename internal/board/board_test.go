package board

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planewar/planewar/pkg/core"
)

func at(x, y int) core.Coordinate { return core.Coordinate{X: x, Y: y} }

// newConfirmedBoard places the standard three non-overlapping planes and confirms.
func newConfirmedBoard(t *testing.T) *Board {
	t.Helper()
	b := New(DefaultSize, DefaultPlaneCount)
	for _, head := range []core.Coordinate{at(5, 5), at(5, 10), at(10, 5)} {
		_, err := b.PlacePlane(head, core.Up)
		require.NoError(t, err)
	}
	require.NoError(t, b.Confirm())
	return b
}

func requireValidation(t *testing.T, err error, kind core.ValidationKind) *ValidationError {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
	assert.Equal(t, kind, ve.Kind)
	return ve
}

func TestNew_Defaults(t *testing.T) {
	b := New(0, -1)
	assert.Equal(t, DefaultSize, b.Size())
	assert.Equal(t, DefaultPlaneCount, b.RequiredPlanes())
	assert.False(t, b.Locked())
	assert.Zero(t, b.PlaneCount())
}

func TestPlacePlane_DefersValidation(t *testing.T) {
	b := New(DefaultSize, DefaultPlaneCount)

	_, err := b.PlacePlane(at(0, 0), core.Down)
	require.NoError(t, err, "out-of-bounds placement is only rejected on confirm")
	_, err = b.PlacePlane(at(0, 0), core.Down)
	require.NoError(t, err, "overlapping placement is only rejected on confirm")

	assert.Equal(t, 2, b.PlaneCount())
}

func TestPlacePlane_InvalidOrientation(t *testing.T) {
	b := New(DefaultSize, DefaultPlaneCount)
	_, err := b.PlacePlane(at(5, 5), core.Orientation(7))
	require.Error(t, err)
	assert.Zero(t, b.PlaneCount())
}

func TestRemoveLastPlane(t *testing.T) {
	b := New(DefaultSize, DefaultPlaneCount)

	_, err := b.RemoveLastPlane()
	assert.ErrorIs(t, err, ErrNoPlanes)

	_, _ = b.PlacePlane(at(5, 5), core.Up)
	_, _ = b.PlacePlane(at(10, 5), core.Left)

	removed, err := b.RemoveLastPlane()
	require.NoError(t, err)
	assert.Equal(t, at(10, 5), removed.Head)
	assert.Equal(t, core.Left, removed.Orientation)
	require.Equal(t, 1, b.PlaneCount())
	assert.Equal(t, at(5, 5), b.Planes()[0].Head)
}

func TestRotateLastPlane(t *testing.T) {
	b := New(DefaultSize, DefaultPlaneCount)

	_, err := b.RotateLastPlane(core.Clockwise)
	assert.ErrorIs(t, err, ErrNoPlanes)

	_, _ = b.PlacePlane(at(2, 2), core.Up)
	_, _ = b.PlacePlane(at(7, 7), core.Up)

	p, err := b.RotateLastPlane(core.Clockwise)
	require.NoError(t, err)
	assert.Equal(t, core.Right, p.Orientation)

	p, err = b.RotateLastPlane(core.CounterClockwise)
	require.NoError(t, err)
	assert.Equal(t, core.Up, p.Orientation)

	p, err = b.RotateLastPlane(core.CounterClockwise)
	require.NoError(t, err)
	assert.Equal(t, core.Left, p.Orientation)

	planes := b.Planes()
	assert.Equal(t, core.Up, planes[0].Orientation, "only the last plane rotates")
	assert.Equal(t, core.Left, planes[1].Orientation)
}

func TestConfirm_WrongCount(t *testing.T) {
	tests := []struct {
		name  string
		heads []core.Coordinate
	}{
		{"none", nil},
		{"two", []core.Coordinate{at(5, 5), at(10, 5)}},
		{"four", []core.Coordinate{at(2, 0), at(7, 0), at(12, 0), at(2, 5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(DefaultSize, DefaultPlaneCount)
			for _, h := range tt.heads {
				_, err := b.PlacePlane(h, core.Up)
				require.NoError(t, err)
			}
			ve := requireValidation(t, b.Confirm(), core.WrongCount)
			assert.Equal(t, len(tt.heads), ve.Count)
			assert.Equal(t, 3, ve.Want)
			assert.False(t, b.Locked())
		})
	}
}

func TestConfirm_OutOfBounds(t *testing.T) {
	tests := []struct {
		name string
		head core.Coordinate
		o    core.Orientation
	}{
		{"wing past left edge", at(1, 5), core.Up},
		{"tail past bottom edge", at(5, 12), core.Up},
		{"tail past top edge", at(5, 2), core.Down},
		{"tail past right edge", at(12, 2), core.Right},
		{"head negative", at(-1, 5), core.Left},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(DefaultSize, DefaultPlaneCount)
			_, _ = b.PlacePlane(at(5, 5), core.Up)
			_, _ = b.PlacePlane(at(10, 5), core.Up)
			_, _ = b.PlacePlane(tt.head, tt.o)

			requireValidation(t, b.Confirm(), core.OutOfBounds)
			assert.False(t, b.Locked())
		})
	}
}

func TestConfirm_Overlap(t *testing.T) {
	b := New(DefaultSize, DefaultPlaneCount)
	_, _ = b.PlacePlane(at(5, 5), core.Up)
	_, _ = b.PlacePlane(at(10, 5), core.Up)
	// head sits on the second plane's left wing
	_, _ = b.PlacePlane(at(9, 6), core.Up)

	ve := requireValidation(t, b.Confirm(), core.Overlap)
	assert.Equal(t, at(9, 6), ve.Cell)
	assert.False(t, b.Locked())
}

func TestConfirm_FailureKeepsBoardEditable(t *testing.T) {
	b := New(DefaultSize, DefaultPlaneCount)
	_, _ = b.PlacePlane(at(5, 5), core.Up)
	require.Error(t, b.Confirm())

	_, err := b.PlacePlane(at(5, 10), core.Up)
	require.NoError(t, err)
	_, err = b.PlacePlane(at(10, 5), core.Up)
	require.NoError(t, err)
	require.NoError(t, b.Confirm())
	assert.True(t, b.Locked())
}

func TestConfirm_LocksBoard(t *testing.T) {
	b := newConfirmedBoard(t)
	before := b.Planes()

	_, err := b.PlacePlane(at(1, 1), core.Up)
	assert.ErrorIs(t, err, ErrLocked)
	_, err = b.RemoveLastPlane()
	assert.ErrorIs(t, err, ErrLocked)
	_, err = b.RotateLastPlane(core.Clockwise)
	assert.ErrorIs(t, err, ErrLocked)
	assert.ErrorIs(t, b.Confirm(), ErrLocked)

	assert.Equal(t, before, b.Planes())
	assert.True(t, b.Locked())
}

func TestResolveAttack_HeadDestroysPlane(t *testing.T) {
	b := newConfirmedBoard(t)

	outcome, over := b.ResolveAttack(at(5, 5))
	assert.Equal(t, core.HitHead, outcome)
	assert.False(t, over)
	assert.Equal(t, 2, b.PlaneCount())

	// every former cell of the destroyed plane now misses
	outcome, _ = b.ResolveAttack(at(5, 5))
	assert.Equal(t, core.Miss, outcome)
	outcome, _ = b.ResolveAttack(at(5, 6))
	assert.Equal(t, core.Miss, outcome)
}

func TestResolveAttack_BodyKeepsPlaneIntact(t *testing.T) {
	b := newConfirmedBoard(t)
	second := b.Planes()[1]

	outcome, over := b.ResolveAttack(at(5, 11))
	assert.Equal(t, core.HitBody, outcome)
	assert.False(t, over)
	assert.Equal(t, 3, b.PlaneCount())

	cells := second.Cells()
	for i, c := range cells[1:] {
		outcome, _ := b.ResolveAttack(c)
		assert.Equal(t, core.HitBody, outcome, "body cell %d %v", i+1, c)
	}
	outcome, _ = b.ResolveAttack(cells[0])
	assert.Equal(t, core.HitHead, outcome)
}

func TestResolveAttack_Miss(t *testing.T) {
	b := newConfirmedBoard(t)
	outcome, over := b.ResolveAttack(at(0, 0))
	assert.Equal(t, core.Miss, outcome)
	assert.False(t, over)
	assert.Equal(t, 3, b.PlaneCount())
}

func TestResolveAttack_GameOverOnThirdHead(t *testing.T) {
	b := newConfirmedBoard(t)
	heads := []core.Coordinate{at(10, 5), at(5, 5), at(5, 10)}

	for i, h := range heads {
		outcome, over := b.ResolveAttack(h)
		assert.Equal(t, core.HitHead, outcome)
		assert.Equal(t, i == len(heads)-1, over, "head %d", i)
	}
	assert.Zero(t, b.PlaneCount())

	outcome, over := b.ResolveAttack(at(5, 5))
	assert.Equal(t, core.Miss, outcome)
	assert.False(t, over)
}

func TestScenario_PlaceConfirmAttack(t *testing.T) {
	b := newConfirmedBoard(t)

	outcome, _ := b.ResolveAttack(at(5, 5))
	assert.Equal(t, core.HitHead, outcome)
	assert.Equal(t, 2, b.PlaneCount())

	outcome, _ = b.ResolveAttack(at(5, 11))
	assert.Equal(t, core.HitBody, outcome)
	assert.Equal(t, 2, b.PlaneCount())

	outcome, _ = b.ResolveAttack(at(0, 0))
	assert.Equal(t, core.Miss, outcome)
}

func TestInBounds(t *testing.T) {
	b := New(15, 3)
	assert.True(t, b.InBounds(at(0, 0)))
	assert.True(t, b.InBounds(at(14, 14)))
	assert.False(t, b.InBounds(at(15, 0)))
	assert.False(t, b.InBounds(at(0, -1)))
}

func TestValidationError_Messages(t *testing.T) {
	assert.Contains(t, (&ValidationError{Kind: core.WrongCount, Count: 2, Want: 3}).Error(), "exactly 3")
	assert.Contains(t, (&ValidationError{Kind: core.OutOfBounds, Cell: at(-1, 2)}).Error(), "(-1,2)")
	assert.Contains(t, (&ValidationError{Kind: core.Overlap, Cell: at(7, 6)}).Error(), "overlap")
}
