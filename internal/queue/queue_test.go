package queue

import (
	"sync"
	"testing"

	"github.com/planewar/planewar/pkg/core"
)

func shot(x, y int, o core.Outcome) core.AttackRecord {
	return core.AttackRecord{Board: core.OpponentBoard, At: core.Coordinate{X: x, Y: y}, Outcome: o}
}

func TestQueue_New(t *testing.T) {
	q := New[core.AttackRecord]()
	if q == nil {
		t.Fatal("expected non-nil queue")
	}
	if !q.Empty() {
		t.Error("expected empty queue")
	}
	if q.Len() != 0 {
		t.Errorf("expected length 0, got %d", q.Len())
	}
}

func TestQueue_Push(t *testing.T) {
	q := New[core.AttackRecord]()

	q.Push(shot(1, 1, core.Miss))
	if q.Len() != 1 {
		t.Errorf("expected length 1, got %d", q.Len())
	}

	q.Push(shot(2, 2, core.HitBody), shot(3, 3, core.HitHead))
	if q.Len() != 3 {
		t.Errorf("expected length 3, got %d", q.Len())
	}
}

func TestQueue_TryPop(t *testing.T) {
	q := New[core.AttackRecord]()

	if _, ok := q.TryPop(); ok {
		t.Error("expected TryPop on empty queue to report false")
	}

	q.Push(shot(1, 2, core.Miss), shot(3, 4, core.HitBody))
	first, ok := q.TryPop()
	if !ok {
		t.Fatal("expected an item")
	}
	if first.At != (core.Coordinate{X: 1, Y: 2}) || first.Outcome != core.Miss {
		t.Errorf("expected first pushed record, got %+v", first)
	}
	if q.Len() != 1 {
		t.Errorf("expected length 1, got %d", q.Len())
	}
}

func TestQueue_Empty(t *testing.T) {
	q := New[string]()

	if !q.Empty() {
		t.Error("expected empty queue")
	}

	q.Push("redraw")
	if q.Empty() {
		t.Error("expected non-empty queue")
	}

	q.TryPop()
	if !q.Empty() {
		t.Error("expected empty queue after pop")
	}
}

func TestQueue_Snapshot(t *testing.T) {
	q := New[core.AttackRecord]()
	q.Push(shot(1, 1, core.Miss), shot(2, 2, core.HitHead))

	snap := q.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 items, got %d", len(snap))
	}
	if q.Len() != 2 {
		t.Errorf("snapshot must not remove items, length %d", q.Len())
	}

	snap[0].Outcome = core.HitHead
	if again := q.Snapshot(); again[0].Outcome != core.Miss {
		t.Error("snapshot must be a copy")
	}
}

func TestQueue_Drain(t *testing.T) {
	q := New[int]()
	q.Push(1, 2, 3)

	result := q.Drain()

	if len(result) != 3 {
		t.Errorf("expected 3 items, got %d", len(result))
	}
	if result[0] != 1 || result[1] != 2 || result[2] != 3 {
		t.Errorf("unexpected items: %+v", result)
	}
	if !q.Empty() {
		t.Error("expected empty queue after Drain")
	}

	q.Push(4)
	if result[0] != 1 {
		t.Error("drained slice must not be reused by later pushes")
	}
}

func TestQueue_Concurrent(t *testing.T) {
	q := New[int]()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			q.Push(id)
		}(i)
	}
	wg.Wait()

	if q.Len() != 100 {
		t.Errorf("expected 100 items, got %d", q.Len())
	}

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.TryPop()
		}()
	}
	wg.Wait()

	if q.Len() != 50 {
		t.Errorf("expected 50 items, got %d", q.Len())
	}
}
