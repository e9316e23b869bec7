package session

import (
	"fmt"
	"time"

	"github.com/dariubs/percent"

	"github.com/planewar/planewar/internal/geometry"
	"github.com/planewar/planewar/pkg/core"
)

// Snapshot is a consistent view of the session for status displays.
type Snapshot struct {
	ID              string
	Role            core.Role
	Phase           Phase
	Turn            Turn
	LocalConfirmed  bool
	RemoteConfirmed bool
	Won             bool
	PlanesPlaced    int
	RequiredPlanes  int
	ShotsFired      int
	Hits            int
	Accuracy        float64 // percent of shots fired that hit
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		ID:              s.id.String(),
		Role:            s.role,
		Phase:           s.Phase(),
		Turn:            s.turn,
		LocalConfirmed:  s.localConfirmed,
		RemoteConfirmed: s.remoteConfirmed,
		Won:             s.won,
		PlanesPlaced:    s.board.PlaneCount(),
		RequiredPlanes:  s.board.RequiredPlanes(),
		ShotsFired:      s.fired.Shots(),
		Hits:            s.fired.Hits(),
		Accuracy:        accuracy(s.fired),
	}
}

// Summary is the end-of-game account built from the journal.
type Summary struct {
	Fired            core.Tally // shots this peer fired at the opponent
	Received         core.Tally // shots the opponent fired at this peer
	Accuracy         float64
	LongestHitStreak int              // consecutive hits among shots fired
	Duration         time.Duration    // first to last recorded shot
	Planes           []geometry.Plane // confirmed local layout
	Won              bool
}

// Summary reads the journal tallies, attack history and confirmed layout.
func (s *Session) Summary() (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fired, err := s.journal.Tally(core.OpponentBoard)
	if err != nil {
		return Summary{}, fmt.Errorf("tally fired: %w", err)
	}
	received, err := s.journal.Tally(core.OwnBoard)
	if err != nil {
		return Summary{}, fmt.Errorf("tally received: %w", err)
	}
	outgoing, err := s.journal.Attacks(core.OpponentBoard)
	if err != nil {
		return Summary{}, fmt.Errorf("attacks fired: %w", err)
	}
	incoming, err := s.journal.Attacks(core.OwnBoard)
	if err != nil {
		return Summary{}, fmt.Errorf("attacks received: %w", err)
	}
	planes, err := s.journal.Layout()
	if err != nil {
		return Summary{}, fmt.Errorf("layout: %w", err)
	}
	return Summary{
		Fired:            fired,
		Received:         received,
		Accuracy:         accuracy(fired),
		LongestHitStreak: longestHitStreak(outgoing),
		Duration:         shotSpan(outgoing, incoming),
		Planes:           planes,
		Won:              s.won,
	}, nil
}

func longestHitStreak(records []core.AttackRecord) int {
	best, run := 0, 0
	for _, r := range records {
		if !r.Outcome.IsHit() {
			run = 0
			continue
		}
		run++
		best = max(best, run)
	}
	return best
}

func shotSpan(sets ...[]core.AttackRecord) time.Duration {
	var first, last time.Time
	for _, records := range sets {
		for _, r := range records {
			if first.IsZero() || r.Time.Before(first) {
				first = r.Time
			}
			if r.Time.After(last) {
				last = r.Time
			}
		}
	}
	if first.IsZero() {
		return 0
	}
	return last.Sub(first)
}

// PlaneStrings formats the layout for logs.
func (sm Summary) PlaneStrings() []string {
	out := make([]string, len(sm.Planes))
	for i, p := range sm.Planes {
		out[i] = p.String()
	}
	return out
}

// String renders the summary on one line.
func (sm Summary) String() string {
	return fmt.Sprintf("fired %d (head %d, body %d, miss %d, %.0f%% accuracy, best streak %d), received %d (head %d, body %d, miss %d) over %s",
		sm.Fired.Shots(), sm.Fired.HeadHits, sm.Fired.BodyHits, sm.Fired.Misses, sm.Accuracy, sm.LongestHitStreak,
		sm.Received.Shots(), sm.Received.HeadHits, sm.Received.BodyHits, sm.Received.Misses, sm.Duration.Round(time.Second))
}

func accuracy(t core.Tally) float64 {
	if t.Shots() == 0 {
		return 0
	}
	return percent.PercentOf(t.Hits(), t.Shots())
}
