// Package tui is the terminal front end: two grids drawn with termbox, mouse and keyboard input
// turned into session operations, and session callbacks queued back to the UI goroutine.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nsf/termbox-go"

	"github.com/planewar/planewar/internal/geometry"
	"github.com/planewar/planewar/internal/session"
	"github.com/planewar/planewar/pkg/core"
)

// Game is the part of the session the UI drives.
type Game interface {
	PlacePlane(head core.Coordinate) (geometry.Plane, error)
	RemoveLastPlane() error
	Rotate(dir core.RotationDirection) error
	Confirm() error
	Attack(c core.Coordinate) error
	Snapshot() session.Snapshot
}

// App runs the UI loop for one game.
type App struct {
	game      Game
	presenter *Presenter
	view      *View
	logger    *slog.Logger
}

func NewApp(game Game, presenter *Presenter, gridSize int, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		game:      game,
		presenter: presenter,
		view:      NewView(gridSize),
		logger:    logger,
	}
}

// View returns the UI model.
func (a *App) View() *View { return a.view }

type termboxCanvas struct{}

func (termboxCanvas) SetCell(x, y int, ch rune, fg, bg termbox.Attribute) {
	termbox.SetCell(x, y, ch, fg, bg)
}

// Run owns the terminal until the player quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	defer termbox.Close()
	termbox.SetInputMode(termbox.InputEsc | termbox.InputMouse)

	stop := make(chan struct{})
	defer close(stop)
	go a.wake(ctx, stop)

	for {
		a.presenter.Drain(a.view)
		if err := a.draw(); err != nil {
			return err
		}

		ev := termbox.PollEvent()
		switch ev.Type {
		case termbox.EventError:
			return fmt.Errorf("terminal input: %w", ev.Err)
		case termbox.EventInterrupt:
			if ctx.Err() != nil {
				return nil
			}
		case termbox.EventKey, termbox.EventMouse:
			if a.Handle(ev) {
				a.logger.Info("Player quit")
				return nil
			}
		}
	}
}

// wake interrupts PollEvent whenever the presenter queued events. termbox.Interrupt blocks until
// PollEvent picks it up, so it must never be called with the session lock held.
func (a *App) wake(ctx context.Context, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			termbox.Interrupt()
			return
		case <-a.presenter.Signal():
			termbox.Interrupt()
		}
	}
}

func (a *App) draw() error {
	if err := termbox.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
		return err
	}
	a.view.Render(termboxCanvas{}, a.game.Snapshot())
	return termbox.Flush()
}

// Handle applies one input event and reports whether the player asked to quit.
func (a *App) Handle(ev termbox.Event) bool {
	switch ev.Type {
	case termbox.EventMouse:
		if ev.Key != termbox.MouseLeft {
			return false
		}
		b, c, ok := a.view.HitTest(ev.MouseX, ev.MouseY)
		if !ok {
			return false
		}
		a.view.CursorBoard, a.view.Cursor = b, c
		a.act(b, c)
	case termbox.EventKey:
		return a.key(ev)
	}
	return false
}

func (a *App) key(ev termbox.Event) bool {
	switch ev.Key {
	case termbox.KeyEsc, termbox.KeyCtrlC:
		return true
	case termbox.KeyArrowUp:
		a.view.MoveCursor(0, -1)
	case termbox.KeyArrowDown:
		a.view.MoveCursor(0, 1)
	case termbox.KeyArrowLeft:
		a.view.MoveCursor(-1, 0)
	case termbox.KeyArrowRight:
		a.view.MoveCursor(1, 0)
	case termbox.KeyTab:
		a.view.ToggleBoard()
	case termbox.KeySpace:
		a.act(a.view.CursorBoard, a.view.Cursor)
	case termbox.KeyEnter:
		a.report("confirm", a.game.Confirm())
	case termbox.KeyBackspace, termbox.KeyBackspace2:
		a.report("undo", a.game.RemoveLastPlane())
	}

	switch ev.Ch {
	case 'q':
		return true
	case 'r':
		a.report("rotate", a.game.Rotate(core.Clockwise))
	case 'R':
		a.report("rotate", a.game.Rotate(core.CounterClockwise))
	case 'u':
		a.report("undo", a.game.RemoveLastPlane())
	case 'c':
		a.report("confirm", a.game.Confirm())
	}
	return false
}

// act places a plane on the own grid or fires at the opponent grid.
func (a *App) act(b core.BoardID, c core.Coordinate) {
	if b == core.OwnBoard {
		_, err := a.game.PlacePlane(c)
		a.report("place", err)
		return
	}
	a.report("attack", a.game.Attack(c))
}

func (a *App) report(op string, err error) {
	if err == nil {
		a.view.Message = ""
		return
	}
	a.view.Message = err.Error()
	if errors.Is(err, session.ErrNotConnected) {
		a.logger.Warn("Operation without connection", "op", op)
		return
	}
	a.logger.Debug("Operation refused", "op", op, "error", err)
}
