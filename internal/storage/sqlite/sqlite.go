// Package sqlitestorage implements the storage.Backend interface using a named in-memory
// SQLite database. Nothing is written to disk; the database is dropped on Close.
package sqlitestorage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/planewar/planewar/internal/database"
	"github.com/planewar/planewar/internal/geometry"
	"github.com/planewar/planewar/pkg/core"
)

// AttackRow is one journal entry.
type AttackRow struct {
	ID      uint      `gorm:"primarykey"`
	Board   string    `gorm:"index;size:16"`
	X       int       `gorm:"not null"`
	Y       int       `gorm:"not null"`
	Outcome string    `gorm:"size:16"`
	FiredAt time.Time `gorm:"index"`
}

func (AttackRow) TableName() string { return "attacks" }

// LayoutRow is one confirmed plane. Cells holds the occupied coordinates as JSON.
type LayoutRow struct {
	ID          uint `gorm:"primarykey"`
	Position    int  `gorm:"uniqueIndex"`
	HeadX       int
	HeadY       int
	Orientation string `gorm:"size:8"`
	Cells       datatypes.JSON
}

func (LayoutRow) TableName() string { return "layout" }

// Backend is a gorm-backed attack journal.
type Backend struct {
	name string
	db   *database.Manager
	log  zerolog.Logger
}

// New creates a new SQLite storage backend. name selects the in-memory database.
func New(name string, log zerolog.Logger) *Backend {
	return &Backend{
		name: name,
		db:   database.NewManager(log),
		log:  log,
	}
}

// Init opens the database and migrates the schema.
func (b *Backend) Init() error {
	if err := b.db.Open(b.name); err != nil {
		return fmt.Errorf("failed to create in-memory SQLite DB: %w", err)
	}
	return b.db.Migrate(&AttackRow{}, &LayoutRow{})
}

// Close drops the database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// RecordLayout replaces the stored layout with planes.
func (b *Backend) RecordLayout(planes []geometry.Plane) error {
	rows := make([]LayoutRow, 0, len(planes))
	for i, p := range planes {
		cells, err := json.Marshal(p.Cells())
		if err != nil {
			return fmt.Errorf("encoding cells of plane %d: %w", i, err)
		}
		rows = append(rows, LayoutRow{
			Position:    i,
			HeadX:       p.Head.X,
			HeadY:       p.Head.Y,
			Orientation: p.Orientation.String(),
			Cells:       datatypes.JSON(cells),
		})
	}

	if err := b.db.DB.Where("1 = 1").Delete(&LayoutRow{}).Error; err != nil {
		return fmt.Errorf("clearing layout: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}
	if err := b.db.DB.Create(&rows).Error; err != nil {
		return fmt.Errorf("recording layout: %w", err)
	}
	return nil
}

// Layout returns the stored layout in placement order.
func (b *Backend) Layout() ([]geometry.Plane, error) {
	var rows []LayoutRow
	if err := b.db.DB.Order("position").Find(&rows).Error; err != nil {
		return nil, err
	}

	planes := make([]geometry.Plane, 0, len(rows))
	for _, r := range rows {
		o, err := core.ParseOrientation(r.Orientation)
		if err != nil {
			return nil, fmt.Errorf("layout row %d: %w", r.Position, err)
		}
		planes = append(planes, geometry.NewPlane(core.Coordinate{X: r.HeadX, Y: r.HeadY}, o))
	}
	return planes, nil
}

// RecordAttack inserts one journal row.
func (b *Backend) RecordAttack(r core.AttackRecord) error {
	row := AttackRow{
		Board:   r.Board.String(),
		X:       r.At.X,
		Y:       r.At.Y,
		Outcome: r.Outcome.String(),
		FiredAt: r.Time,
	}
	if err := b.db.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("recording attack: %w", err)
	}
	return nil
}

// Tally counts outcomes for board with one grouped query.
func (b *Backend) Tally(board core.BoardID) (core.Tally, error) {
	var counts []struct {
		Outcome string
		N       int
	}
	err := b.db.DB.Model(&AttackRow{}).
		Select("outcome, count(*) as n").
		Where("board = ?", board.String()).
		Group("outcome").
		Scan(&counts).Error
	if err != nil {
		return core.Tally{}, fmt.Errorf("tally: %w", err)
	}

	var t core.Tally
	for _, c := range counts {
		o, err := core.ParseOutcome(c.Outcome)
		if err != nil {
			b.log.Warn().Str("outcome", c.Outcome).Msg("Skipping unknown outcome in journal")
			continue
		}
		switch o {
		case core.Miss:
			t.Misses += c.N
		case core.HitBody:
			t.BodyHits += c.N
		case core.HitHead:
			t.HeadHits += c.N
		}
	}
	return t, nil
}

// Attacks returns the attacks recorded for board, oldest first.
func (b *Backend) Attacks(board core.BoardID) ([]core.AttackRecord, error) {
	var rows []AttackRow
	if err := b.db.DB.Where("board = ?", board.String()).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]core.AttackRecord, 0, len(rows))
	for _, r := range rows {
		o, err := core.ParseOutcome(r.Outcome)
		if err != nil {
			return nil, fmt.Errorf("attack row %d: %w", r.ID, err)
		}
		out = append(out, core.AttackRecord{
			Board:   board,
			At:      core.Coordinate{X: r.X, Y: r.Y},
			Outcome: o,
			Time:    r.FiredAt,
		})
	}
	return out, nil
}
