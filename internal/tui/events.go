package tui

import (
	"fmt"

	"github.com/planewar/planewar/internal/geometry"
	"github.com/planewar/planewar/internal/queue"
	"github.com/planewar/planewar/internal/session"
	"github.com/planewar/planewar/pkg/core"
)

// Event is a view update produced outside the UI goroutine.
type Event interface {
	apply(v *View)
}

type planeDrawn struct{ plane geometry.Plane }

func (e planeDrawn) apply(v *View) {
	for i, c := range e.plane.Cells() {
		if i == 0 {
			v.set(core.OwnBoard, c, core.ColorHead)
		} else {
			v.set(core.OwnBoard, c, core.ColorBody)
		}
	}
}

type boardCleared struct{ board core.BoardID }

func (e boardCleared) apply(v *View) { v.clear(e.board) }

type cellColored struct {
	board core.BoardID
	at    core.Coordinate
	color core.ColorClass
}

func (e cellColored) apply(v *View) { v.set(e.board, e.at, e.color) }

type notice struct{ text string }

func (e notice) apply(v *View) { v.Message = e.text }

type connection struct{ text string }

func (e connection) apply(v *View) { v.Connection = e.text }

type gameOver struct{ won bool }

func (e gameOver) apply(v *View) {
	v.Finished = true
	if e.won {
		v.Message = "You won! Press q to quit."
	} else {
		v.Message = "All your planes are down. Press q to quit."
	}
}

// Presenter turns session callbacks into queued view events. It never blocks, so it is safe to
// call with the session lock held.
type Presenter struct {
	events *queue.Queue[Event]
	signal chan struct{}
}

var _ session.Presenter = (*Presenter)(nil)

func NewPresenter() *Presenter {
	return &Presenter{
		events: queue.New[Event](),
		signal: make(chan struct{}, 1),
	}
}

func (p *Presenter) push(e Event) {
	p.events.Push(e)
	select {
	case p.signal <- struct{}{}:
	default:
	}
}

// Signal fires after events were queued. Several pushes may collapse into one signal.
func (p *Presenter) Signal() <-chan struct{} { return p.signal }

// Drain applies every queued event to v and reports how many there were.
func (p *Presenter) Drain(v *View) int {
	events := p.events.Drain()
	for _, e := range events {
		e.apply(v)
	}
	return len(events)
}

// Notice shows text on the message line.
func (p *Presenter) Notice(text string) { p.push(notice{text: text}) }

// Connected shows the connection state on the status line.
func (p *Presenter) Connected(text string) { p.push(connection{text: text}) }

func (p *Presenter) OnPlaneDrawn(plane geometry.Plane) { p.push(planeDrawn{plane: plane}) }

func (p *Presenter) OnBoardCleared(b core.BoardID) { p.push(boardCleared{board: b}) }

func (p *Presenter) OnCellColored(b core.BoardID, c core.Coordinate, color core.ColorClass) {
	p.push(cellColored{board: b, at: c, color: color})
}

func (p *Presenter) OnValidationError(kind core.ValidationKind, detail string) {
	p.push(notice{text: fmt.Sprintf("Invalid layout (%s): %s", kind, detail)})
}

func (p *Presenter) OnOpponentConfirmed() {
	p.push(notice{text: "Opponent confirmed their planes."})
}

func (p *Presenter) OnGameStarted() {
	p.push(notice{text: "Both sides ready. Fire at the right grid."})
}

func (p *Presenter) OnGameOver(won bool) { p.push(gameOver{won: won}) }

func (p *Presenter) OnConnectionLost(err error) {
	p.push(connection{text: "disconnected"})
	p.push(notice{text: fmt.Sprintf("Connection lost: %v", err)})
}
