// internal/storage/memory/memory_test.go
package memory

import (
	"sync"
	"testing"
	"time"

	"github.com/planewar/planewar/internal/geometry"
	"github.com/planewar/planewar/pkg/core"
)

func record(board core.BoardID, x, y int, o core.Outcome) core.AttackRecord {
	return core.AttackRecord{
		Board:   board,
		At:      core.Coordinate{X: x, Y: y},
		Outcome: o,
		Time:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestInitAndClose(t *testing.T) {
	b := New()

	if err := b.Init(); err != nil {
		t.Errorf("Init failed: %v", err)
	}
	if err := b.RecordAttack(record(core.OwnBoard, 1, 1, core.Miss)); err != nil {
		t.Fatalf("RecordAttack failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	attacks, _ := b.Attacks(core.OwnBoard)
	if len(attacks) != 0 {
		t.Errorf("expected journal to be dropped on close, got %d records", len(attacks))
	}
}

func TestRecordAttack_SeparatesBoards(t *testing.T) {
	b := New()

	_ = b.RecordAttack(record(core.OwnBoard, 1, 1, core.Miss))
	_ = b.RecordAttack(record(core.OpponentBoard, 2, 2, core.HitBody))
	_ = b.RecordAttack(record(core.OwnBoard, 3, 3, core.HitHead))

	own, err := b.Attacks(core.OwnBoard)
	if err != nil {
		t.Fatalf("Attacks failed: %v", err)
	}
	if len(own) != 2 {
		t.Fatalf("expected 2 own-board attacks, got %d", len(own))
	}
	if own[0].At != (core.Coordinate{X: 1, Y: 1}) || own[1].At != (core.Coordinate{X: 3, Y: 3}) {
		t.Errorf("attacks out of order: %+v", own)
	}

	opp, _ := b.Attacks(core.OpponentBoard)
	if len(opp) != 1 || opp[0].Outcome != core.HitBody {
		t.Errorf("unexpected opponent attacks: %+v", opp)
	}
}

func TestTally(t *testing.T) {
	b := New()

	for _, r := range []core.AttackRecord{
		record(core.OpponentBoard, 0, 0, core.Miss),
		record(core.OpponentBoard, 1, 0, core.Miss),
		record(core.OpponentBoard, 2, 0, core.HitBody),
		record(core.OpponentBoard, 3, 0, core.HitHead),
		record(core.OwnBoard, 4, 0, core.HitHead),
	} {
		if err := b.RecordAttack(r); err != nil {
			t.Fatalf("RecordAttack failed: %v", err)
		}
	}

	tally, err := b.Tally(core.OpponentBoard)
	if err != nil {
		t.Fatalf("Tally failed: %v", err)
	}
	want := core.Tally{Misses: 2, BodyHits: 1, HeadHits: 1}
	if tally != want {
		t.Errorf("expected %+v, got %+v", want, tally)
	}

	own, _ := b.Tally(core.OwnBoard)
	if own != (core.Tally{HeadHits: 1}) {
		t.Errorf("unexpected own tally %+v", own)
	}
}

func TestRecordLayout(t *testing.T) {
	b := New()

	planes := []geometry.Plane{
		geometry.NewPlane(core.Coordinate{X: 5, Y: 5}, core.Up),
		geometry.NewPlane(core.Coordinate{X: 10, Y: 5}, core.Left),
	}
	if err := b.RecordLayout(planes); err != nil {
		t.Fatalf("RecordLayout failed: %v", err)
	}

	planes[0] = geometry.NewPlane(core.Coordinate{X: 0, Y: 0}, core.Down)

	got, err := b.Layout()
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 planes, got %d", len(got))
	}
	if got[0].Head != (core.Coordinate{X: 5, Y: 5}) {
		t.Error("layout must be copied on record")
	}
}

func TestConcurrentRecording(t *testing.T) {
	b := New()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = b.RecordAttack(record(core.OwnBoard, i, 0, core.Miss))
		}(i)
		go func() {
			defer wg.Done()
			_, _ = b.Tally(core.OwnBoard)
		}()
	}
	wg.Wait()

	tally, _ := b.Tally(core.OwnBoard)
	if tally.Misses != 50 {
		t.Errorf("expected 50 misses, got %d", tally.Misses)
	}
}
