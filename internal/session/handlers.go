package session

import (
	"fmt"

	"github.com/planewar/planewar/internal/dispatcher"
	"github.com/planewar/planewar/pkg/core"
	"github.com/planewar/planewar/pkg/protocol"
)

// RegisterHandlers routes every opponent message kind to the session.
func (s *Session) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register(protocol.KindAttack, s.handleAttack, dispatcher.Logged())
	d.Register(protocol.KindResult, s.handleResult, dispatcher.Logged())
	d.Register(protocol.KindConfirmPlanes, s.handleConfirmPlanes, dispatcher.Logged())
	d.Register(protocol.KindGameOver, s.handleGameOver, dispatcher.Logged())
}

// handleAttack resolves an incoming shot on the own board and answers with its outcome.
// The opponent is trusted: shots out of turn or before confirmation are logged, not refused.
func (s *Session) handleAttack(m protocol.Message) error {
	msg, ok := m.(protocol.Attack)
	if !ok {
		return fmt.Errorf("unexpected message %T", m)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch phase := s.Phase(); {
	case phase == PhaseOver:
		s.logger.Warn("Attack received after game over", "at", msg.At.String())
		return ErrGameOver
	case !s.localConfirmed || !s.remoteConfirmed:
		s.logger.Warn("Attack received before both sides confirmed", "at", msg.At.String())
	case s.turn != TurnRemote:
		s.logger.Warn("Attack received out of turn", "at", msg.At.String(), "turn", s.turn.Name())
	}

	outcome, lost := s.board.ResolveAttack(msg.At)

	var sendErr error
	if s.sender != nil {
		sendErr = s.sender.Send(protocol.Result{At: msg.At, Outcome: outcome})
		if sendErr == nil && lost {
			sendErr = s.sender.Send(protocol.GameOver{})
		}
	} else {
		sendErr = ErrNotConnected
	}

	s.presenter.OnCellColored(core.OwnBoard, msg.At, core.ColorFor(core.OwnBoard, outcome))
	s.record(core.OwnBoard, msg.At, outcome)
	s.turn = TurnLocal

	s.logger.Info("Attack received", "at", msg.At.String(), "outcome", outcome.String(),
		"planesLeft", s.board.PlaneCount())

	if lost {
		s.won = false
		s.setPhase(PhaseOver)
		s.logger.Info("All planes destroyed, game lost")
		s.presenter.OnGameOver(false)
	}

	if sendErr != nil {
		return fmt.Errorf("answering attack: %w", sendErr)
	}
	return nil
}

// handleResult colors the opponent board with the outcome of our last shot.
func (s *Session) handleResult(m protocol.Message) error {
	msg, ok := m.(protocol.Result)
	if !ok {
		return fmt.Errorf("unexpected message %T", m)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.turn != TurnAwaitingResult {
		s.logger.Warn("Result received without a pending attack", "at", msg.At.String())
	} else if s.pending != nil && *s.pending != msg.At {
		s.logger.Warn("Result does not match pending attack",
			"at", msg.At.String(), "pending", s.pending.String())
	}

	s.presenter.OnCellColored(core.OpponentBoard, msg.At, core.ColorFor(core.OpponentBoard, msg.Outcome))
	s.fired.Add(msg.Outcome)
	s.record(core.OpponentBoard, msg.At, msg.Outcome)
	s.pending = nil
	if s.Phase() != PhaseOver {
		s.turn = TurnRemote
	}

	s.logger.Info("Attack result", "at", msg.At.String(), "outcome", msg.Outcome.String())
	return nil
}

func (s *Session) handleConfirmPlanes(protocol.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.remoteConfirmed {
		s.logger.Warn("Duplicate confirmation from opponent")
		return nil
	}
	s.remoteConfirmed = true
	s.logger.Info("Opponent confirmed planes")
	s.presenter.OnOpponentConfirmed()

	if s.localConfirmed && s.Phase() == PhaseWaiting {
		s.startGame()
	}
	return nil
}

// handleGameOver ends the game as won: the opponent lost its last plane.
func (s *Session) handleGameOver(protocol.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Phase() == PhaseOver {
		return nil
	}
	s.won = true
	s.turn = TurnRemote
	s.setPhase(PhaseOver)
	s.logger.Info("Opponent has no planes left, game won")
	s.presenter.OnGameOver(true)
	return nil
}
