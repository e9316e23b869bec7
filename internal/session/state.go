package session

import (
	"fmt"

	"github.com/planewar/planewar/internal/geometry"
	"github.com/planewar/planewar/pkg/core"
)

// Phase is the coarse stage of a session.
type Phase int32

const (
	// PhasePlacing: the local board is editable.
	PhasePlacing Phase = iota
	// PhaseWaiting: the local board is locked, the opponent has not confirmed.
	PhaseWaiting
	// PhasePlaying: both boards are locked and shots are exchanged.
	PhasePlaying
	// PhaseOver: one side lost its last plane.
	PhaseOver
	// PhaseDisconnected: the stream failed before the game ended.
	PhaseDisconnected
)

var phaseNames = map[Phase]string{
	PhasePlacing:      "placing",
	PhaseWaiting:      "waiting",
	PhasePlaying:      "playing",
	PhaseOver:         "over",
	PhaseDisconnected: "disconnected",
}

// Name returns the phase name used in logs and the status line.
func (p Phase) Name() string {
	if n, ok := phaseNames[p]; ok {
		return n
	}
	return fmt.Sprintf("phase(%d)", int32(p))
}

// Turn says who may fire next.
type Turn int

const (
	// TurnLocal: this peer may attack.
	TurnLocal Turn = iota
	// TurnAwaitingResult: this peer attacked and waits for the RESULT.
	TurnAwaitingResult
	// TurnRemote: the opponent may attack.
	TurnRemote
)

// Name returns the turn name.
func (t Turn) Name() string {
	switch t {
	case TurnLocal:
		return "local"
	case TurnAwaitingResult:
		return "awaiting-result"
	case TurnRemote:
		return "remote"
	}
	return fmt.Sprintf("turn(%d)", int(t))
}

// NopPresenter ignores every draw instruction.
type NopPresenter struct{}

func (NopPresenter) OnPlaneDrawn(geometry.Plane) {}
func (NopPresenter) OnBoardCleared(core.BoardID) {}
func (NopPresenter) OnCellColored(core.BoardID, core.Coordinate, core.ColorClass) {}
func (NopPresenter) OnValidationError(core.ValidationKind, string) {}
func (NopPresenter) OnOpponentConfirmed() {}
func (NopPresenter) OnGameStarted() {}
func (NopPresenter) OnGameOver(bool) {}
func (NopPresenter) OnConnectionLost(error) {}
