// Package protocol defines the messages two peers exchange and their text encoding.
//
// Every message is one line of UTF-8 text:
//
//	ATTACK:<x>,<y>
//	RESULT:<x>,<y>:<MISS|HIT_BODY|HIT_HEAD>
//	CONFIRM_PLANES
//	GAME_OVER
//
// Framing (the line delimiter) belongs to the transport; Encode and Decode work on a single
// frame without its delimiter.
package protocol

import (
	"fmt"

	"github.com/planewar/planewar/pkg/core"
)

// Kind tags a message variant.
type Kind int

const (
	KindAttack Kind = iota + 1
	KindResult
	KindConfirmPlanes
	KindGameOver
)

// Wire tokens.
const (
	TokenAttack        = "ATTACK"
	TokenResult        = "RESULT"
	TokenConfirmPlanes = "CONFIRM_PLANES"
	TokenGameOver      = "GAME_OVER"
)

func (k Kind) String() string {
	switch k {
	case KindAttack:
		return TokenAttack
	case KindResult:
		return TokenResult
	case KindConfirmPlanes:
		return TokenConfirmPlanes
	case KindGameOver:
		return TokenGameOver
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Message is implemented by every protocol variant.
type Message interface {
	Kind() Kind
}

// Attack fires at a cell of the receiver's board.
type Attack struct {
	At core.Coordinate
}

// Result answers an Attack with the outcome on the defender's board.
type Result struct {
	At      core.Coordinate
	Outcome core.Outcome
}

// ConfirmPlanes announces that the sender locked its board.
type ConfirmPlanes struct{}

// GameOver announces that the sender lost its last plane.
type GameOver struct{}

func (Attack) Kind() Kind        { return KindAttack }
func (Result) Kind() Kind        { return KindResult }
func (ConfirmPlanes) Kind() Kind { return KindConfirmPlanes }
func (GameOver) Kind() Kind      { return KindGameOver }

func (m Attack) String() string { return fmt.Sprintf("%s %s", TokenAttack, m.At) }
func (m Result) String() string {
	return fmt.Sprintf("%s %s %s", TokenResult, m.At, m.Outcome)
}
