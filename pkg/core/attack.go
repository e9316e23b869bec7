// pkg/core/attack.go
package core

import (
	"fmt"
	"time"
)

// Outcome is the result of resolving one attack against a board.
type Outcome int

const (
	Miss Outcome = iota
	HitBody
	HitHead
)

func (o Outcome) String() string {
	switch o {
	case Miss:
		return "MISS"
	case HitBody:
		return "HIT_BODY"
	case HitHead:
		return "HIT_HEAD"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// IsHit reports whether the attack struck a plane.
func (o Outcome) IsHit() bool {
	return o == HitBody || o == HitHead
}

// ParseOutcome converts the wire name of an outcome. It is case-sensitive.
func ParseOutcome(s string) (Outcome, error) {
	switch s {
	case "MISS":
		return Miss, nil
	case "HIT_BODY":
		return HitBody, nil
	case "HIT_HEAD":
		return HitHead, nil
	}
	return Miss, fmt.Errorf("unknown outcome %q", s)
}

// AttackRecord is one resolved shot, either received on the own board or fired at the opponent.
type AttackRecord struct {
	Board   BoardID
	At      Coordinate
	Outcome Outcome
	Time    time.Time
}

// Tally counts outcomes recorded for one board.
type Tally struct {
	Misses   int
	BodyHits int
	HeadHits int
}

// Shots is the total number of attacks in the tally.
func (t Tally) Shots() int {
	return t.Misses + t.BodyHits + t.HeadHits
}

// Hits is the number of attacks that struck a plane.
func (t Tally) Hits() int {
	return t.BodyHits + t.HeadHits
}

// Add counts one more outcome.
func (t *Tally) Add(o Outcome) {
	switch o {
	case HitBody:
		t.BodyHits++
	case HitHead:
		t.HeadHits++
	default:
		t.Misses++
	}
}

// ValidationKind names the placement rule a confirmation broke.
type ValidationKind int

const (
	WrongCount ValidationKind = iota
	OutOfBounds
	Overlap
)

func (k ValidationKind) String() string {
	switch k {
	case WrongCount:
		return "WRONG_COUNT"
	case OutOfBounds:
		return "OUT_OF_BOUNDS"
	case Overlap:
		return "OVERLAP"
	default:
		return fmt.Sprintf("ValidationKind(%d)", int(k))
	}
}

// ColorClass is the presentation category of a drawn cell.
type ColorClass int

// Head and body colors are used both for drawing own planes and for hits on the opponent board.
const (
	ColorEmpty ColorClass = iota
	ColorHead
	ColorBody
	ColorMiss
	ColorDamage
)

func (c ColorClass) String() string {
	switch c {
	case ColorHead:
		return "head"
	case ColorBody:
		return "body"
	case ColorMiss:
		return "miss"
	case ColorDamage:
		return "damage"
	default:
		return "empty"
	}
}

// ColorFor maps an outcome to the color used on the given board.
// The own board only distinguishes misses from damage.
func ColorFor(board BoardID, o Outcome) ColorClass {
	if o == Miss {
		return ColorMiss
	}
	if board == OwnBoard {
		return ColorDamage
	}
	if o == HitHead {
		return ColorHead
	}
	return ColorBody
}
