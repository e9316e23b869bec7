package sqlitestorage

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planewar/planewar/internal/geometry"
	"github.com/planewar/planewar/pkg/core"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b := New("sqlite-test-"+t.Name(), zerolog.Nop())
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func attack(board core.BoardID, x, y int, o core.Outcome) core.AttackRecord {
	return core.AttackRecord{
		Board:   board,
		At:      core.Coordinate{X: x, Y: y},
		Outcome: o,
		Time:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRecordAttack_Tally(t *testing.T) {
	b := newTestBackend(t)

	for _, r := range []core.AttackRecord{
		attack(core.OpponentBoard, 0, 0, core.Miss),
		attack(core.OpponentBoard, 1, 1, core.HitBody),
		attack(core.OpponentBoard, 2, 2, core.HitBody),
		attack(core.OpponentBoard, 3, 3, core.HitHead),
		attack(core.OwnBoard, 4, 4, core.Miss),
	} {
		require.NoError(t, b.RecordAttack(r))
	}

	opp, err := b.Tally(core.OpponentBoard)
	require.NoError(t, err)
	assert.Equal(t, core.Tally{Misses: 1, BodyHits: 2, HeadHits: 1}, opp)

	own, err := b.Tally(core.OwnBoard)
	require.NoError(t, err)
	assert.Equal(t, core.Tally{Misses: 1}, own)
}

func TestTally_Empty(t *testing.T) {
	b := newTestBackend(t)

	tally, err := b.Tally(core.OwnBoard)
	require.NoError(t, err)
	assert.Equal(t, core.Tally{}, tally)
}

func TestAttacks_Order(t *testing.T) {
	b := newTestBackend(t)

	require.NoError(t, b.RecordAttack(attack(core.OwnBoard, 7, 1, core.HitHead)))
	require.NoError(t, b.RecordAttack(attack(core.OwnBoard, 2, 9, core.Miss)))

	got, err := b.Attacks(core.OwnBoard)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, core.Coordinate{X: 7, Y: 1}, got[0].At)
	assert.Equal(t, core.HitHead, got[0].Outcome)
	assert.Equal(t, core.Coordinate{X: 2, Y: 9}, got[1].At)
	assert.True(t, got[1].Time.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))
}

func TestRecordLayout_RoundTrip(t *testing.T) {
	b := newTestBackend(t)

	planes := []geometry.Plane{
		geometry.NewPlane(core.Coordinate{X: 5, Y: 5}, core.Up),
		geometry.NewPlane(core.Coordinate{X: 10, Y: 5}, core.Left),
		geometry.NewPlane(core.Coordinate{X: 5, Y: 14}, core.Down),
	}
	require.NoError(t, b.RecordLayout(planes))

	got, err := b.Layout()
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := range planes {
		assert.True(t, planes[i].Equal(got[i]), "plane %d", i)
	}

	var row LayoutRow
	require.NoError(t, b.db.DB.Where("position = ?", 1).First(&row).Error)
	var cells []core.Coordinate
	require.NoError(t, json.Unmarshal(row.Cells, &cells))
	assert.Equal(t, planes[1].Cells(), cells)
}

func TestRecordLayout_Replaces(t *testing.T) {
	b := newTestBackend(t)

	require.NoError(t, b.RecordLayout([]geometry.Plane{
		geometry.NewPlane(core.Coordinate{X: 1, Y: 1}, core.Up),
		geometry.NewPlane(core.Coordinate{X: 8, Y: 1}, core.Up),
	}))
	require.NoError(t, b.RecordLayout([]geometry.Plane{
		geometry.NewPlane(core.Coordinate{X: 3, Y: 3}, core.Right),
	}))

	got, err := b.Layout()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, core.Right, got[0].Orientation)
}

func TestBackends_AreIsolated(t *testing.T) {
	a := New("sqlite-isolated-a", zerolog.Nop())
	c := New("sqlite-isolated-b", zerolog.Nop())
	require.NoError(t, a.Init())
	require.NoError(t, c.Init())
	t.Cleanup(func() {
		_ = a.Close()
		_ = c.Close()
	})

	require.NoError(t, a.RecordAttack(attack(core.OwnBoard, 0, 0, core.Miss)))

	tally, err := c.Tally(core.OwnBoard)
	require.NoError(t, err)
	assert.Zero(t, tally.Shots())
}
