// Package session holds the state of one game between two peers: the local board, the
// confirmation flags and the turn. It validates operations coming from the player, turns
// them into protocol messages and applies messages coming from the opponent.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/planewar/planewar/internal/board"
	"github.com/planewar/planewar/internal/geometry"
	"github.com/planewar/planewar/internal/storage"
	"github.com/planewar/planewar/internal/storage/memory"
	"github.com/planewar/planewar/pkg/core"
	"github.com/planewar/planewar/pkg/protocol"
)

var (
	ErrGameOver         = errors.New("game is over")
	ErrNotConfirmed     = errors.New("confirm your planes first")
	ErrOpponentNotReady = errors.New("opponent has not confirmed yet")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrOutOfGrid        = errors.New("coordinate outside the grid")
	ErrNotConnected     = errors.New("not connected to opponent")
)

// Sender delivers messages to the opponent.
type Sender interface {
	Send(protocol.Message) error
}

// Presenter receives draw instructions. Callbacks run with the session lock held and must not
// call back into the session.
type Presenter interface {
	OnPlaneDrawn(p geometry.Plane)
	OnBoardCleared(b core.BoardID)
	OnCellColored(b core.BoardID, c core.Coordinate, color core.ColorClass)
	OnValidationError(kind core.ValidationKind, detail string)
	OnOpponentConfirmed()
	OnGameStarted()
	OnGameOver(won bool)
	OnConnectionLost(err error)
}

// Dependencies holds the collaborators of a session.
type Dependencies struct {
	// ID names the session in logs and telemetry. A new one is generated when nil.
	ID        uuid.UUID
	Board     *board.Board
	Presenter Presenter
	Journal   storage.Backend
	Logger    *slog.Logger
}

// Session is one game from the point of view of one peer.
type Session struct {
	id   uuid.UUID
	role core.Role

	mu              sync.Mutex
	board           *board.Board
	localConfirmed  bool
	remoteConfirmed bool
	turn            Turn
	phase           atomic.Int32
	won             bool
	fired           core.Tally
	pending         *core.Coordinate

	sender    Sender
	presenter Presenter
	journal   storage.Backend
	logger    *slog.Logger
}

// New creates a session in the placing phase. The host holds the first turn.
func New(role core.Role, deps Dependencies) *Session {
	s := &Session{
		id:        deps.ID,
		role:      role,
		board:     deps.Board,
		presenter: deps.Presenter,
		journal:   deps.Journal,
		logger:    deps.Logger,
	}
	if s.id == uuid.Nil {
		s.id = uuid.New()
	}
	if s.board == nil {
		s.board = board.New(board.DefaultSize, board.DefaultPlaneCount)
	}
	if s.presenter == nil {
		s.presenter = NopPresenter{}
	}
	if s.journal == nil {
		s.journal = memory.New()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if role == core.RoleHost {
		s.turn = TurnLocal
	} else {
		s.turn = TurnRemote
	}
	s.phase.Store(int32(PhasePlacing))
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id.String() }

// Role returns whether this peer hosts or joined.
func (s *Session) Role() core.Role { return s.role }

// Phase returns the current phase. It does not take the session lock.
func (s *Session) Phase() Phase { return Phase(s.phase.Load()) }

// GridSize returns the board dimension.
func (s *Session) GridSize() int { return s.board.Size() }

// LogAttrs returns the attributes identifying this session in log records.
// It does not take the session lock, so it is safe to call from a log handler.
func (s *Session) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("session", s.id.String()),
		slog.String("role", s.role.String()),
		slog.String("phase", s.Phase().Name()),
	}
}

// Attach sets the sender used to reach the opponent.
func (s *Session) Attach(sender Sender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sender = sender
}

func (s *Session) setPhase(p Phase) {
	old := Phase(s.phase.Swap(int32(p)))
	if old != p {
		s.logger.Debug("Phase changed", "from", old.Name(), "to", p.Name())
	}
}

// PlacePlane adds a plane pointing up with its head at c. Bounds and overlap are checked on Confirm.
func (s *Session) PlacePlane(head core.Coordinate) (geometry.Plane, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.board.PlacePlane(head, core.Up)
	if err != nil {
		return geometry.Plane{}, err
	}
	s.presenter.OnPlaneDrawn(p)
	return p, nil
}

// RemoveLastPlane takes back the most recently placed plane.
func (s *Session) RemoveLastPlane() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.board.RemoveLastPlane(); err != nil {
		return err
	}
	s.redrawOwn()
	return nil
}

// Rotate turns the most recently placed plane one step in dir.
func (s *Session) Rotate(dir core.RotationDirection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.board.RotateLastPlane(dir); err != nil {
		return err
	}
	s.redrawOwn()
	return nil
}

func (s *Session) redrawOwn() {
	s.presenter.OnBoardCleared(core.OwnBoard)
	for _, p := range s.board.Planes() {
		s.presenter.OnPlaneDrawn(p)
	}
}

// Confirm validates the layout, tells the opponent and locks it. A layout that breaks a rule is
// reported to the presenter and stays editable.
func (s *Session) Confirm() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.board.Locked() {
		return board.ErrLocked
	}

	if err := s.board.Validate(); err != nil {
		var ve *board.ValidationError
		if errors.As(err, &ve) {
			s.presenter.OnValidationError(ve.Kind, ve.Error())
		}
		return err
	}

	if s.sender == nil || s.Phase() == PhaseDisconnected {
		return ErrNotConnected
	}

	// The board locks only once the opponent has been told; a failed send leaves it editable.
	if err := s.sender.Send(protocol.ConfirmPlanes{}); err != nil {
		return fmt.Errorf("sending confirmation: %w", err)
	}
	if err := s.board.Confirm(); err != nil {
		return err
	}
	s.localConfirmed = true

	if err := s.journal.RecordLayout(s.board.Planes()); err != nil {
		s.logger.Warn("Failed to record layout", "error", err)
	}
	s.logger.Info("Planes confirmed", "planes", s.board.PlaneCount())

	if s.remoteConfirmed {
		s.startGame()
	} else {
		s.setPhase(PhaseWaiting)
	}
	return nil
}

// startGame runs once both sides have confirmed.
func (s *Session) startGame() {
	s.setPhase(PhasePlaying)
	s.logger.Info("Both sides confirmed, game started", "turn", s.turn.Name())
	s.presenter.OnGameStarted()
}

// Attack fires at c on the opponent's board. Rejected attacks change nothing.
func (s *Session) Attack(c core.Coordinate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.Phase() {
	case PhaseOver:
		return ErrGameOver
	case PhaseDisconnected:
		return ErrNotConnected
	}
	if s.sender == nil {
		return ErrNotConnected
	}
	if !s.localConfirmed {
		return ErrNotConfirmed
	}
	if !s.remoteConfirmed {
		return ErrOpponentNotReady
	}
	if s.turn != TurnLocal {
		return ErrNotYourTurn
	}
	if !s.board.InBounds(c) {
		return ErrOutOfGrid
	}

	if err := s.sender.Send(protocol.Attack{At: c}); err != nil {
		return fmt.Errorf("sending attack: %w", err)
	}
	s.turn = TurnAwaitingResult
	s.pending = &c
	s.logger.Debug("Attack sent", "at", c.String())
	return nil
}

// HandleDisconnect ends the session after the stream to the opponent failed.
// A game that is already over stays over.
func (s *Session) HandleDisconnect(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.Phase() {
	case PhaseOver:
		s.logger.Info("Opponent left after game over", "error", err)
		return
	case PhaseDisconnected:
		return
	}
	s.setPhase(PhaseDisconnected)
	s.logger.Warn("Connection to opponent lost", "error", err)
	s.presenter.OnConnectionLost(err)
}

func (s *Session) record(b core.BoardID, c core.Coordinate, o core.Outcome) {
	r := core.AttackRecord{Board: b, At: c, Outcome: o, Time: time.Now()}
	if err := s.journal.RecordAttack(r); err != nil {
		s.logger.Warn("Failed to record attack", "board", b.String(), "error", err)
	}
}
