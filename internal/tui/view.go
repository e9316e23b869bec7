package tui

import (
	"fmt"

	"github.com/nsf/termbox-go"

	"github.com/planewar/planewar/internal/session"
	"github.com/planewar/planewar/pkg/core"
)

// Screen layout, in terminal cells. Each grid cell is two columns wide.
const (
	gridTop   = 3
	gridLeft  = 3
	cellWidth = 2
	gridGap   = 8
)

// Canvas is the drawing surface. termbox implements it through termboxCanvas.
type Canvas interface {
	SetCell(x, y int, ch rune, fg, bg termbox.Attribute)
}

// View is the UI model: the colors of both grids, the keyboard cursor and the text lines.
type View struct {
	Size  int
	cells [2][][]core.ColorClass

	Cursor      core.Coordinate
	CursorBoard core.BoardID

	Message    string
	Connection string
	Finished   bool
}

func NewView(size int) *View {
	v := &View{Size: size, Cursor: core.Coordinate{X: size / 2, Y: size / 2}}
	v.clear(core.OwnBoard)
	v.clear(core.OpponentBoard)
	return v
}

func (v *View) clear(b core.BoardID) {
	rows := make([][]core.ColorClass, v.Size)
	for y := range rows {
		rows[y] = make([]core.ColorClass, v.Size)
	}
	v.cells[b] = rows
}

func (v *View) inGrid(c core.Coordinate) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < v.Size && c.Y < v.Size
}

func (v *View) set(b core.BoardID, c core.Coordinate, color core.ColorClass) {
	if v.inGrid(c) {
		v.cells[b][c.Y][c.X] = color
	}
}

// Color returns the drawn color of a cell.
func (v *View) Color(b core.BoardID, c core.Coordinate) core.ColorClass {
	if !v.inGrid(c) {
		return core.ColorEmpty
	}
	return v.cells[b][c.Y][c.X]
}

func (v *View) origin(b core.BoardID) int {
	if b == core.OpponentBoard {
		return gridLeft + v.Size*cellWidth + gridGap
	}
	return gridLeft
}

// HitTest maps a screen position to a grid cell.
func (v *View) HitTest(x, y int) (core.BoardID, core.Coordinate, bool) {
	for _, b := range []core.BoardID{core.OwnBoard, core.OpponentBoard} {
		ox := v.origin(b)
		if x < ox || x >= ox+v.Size*cellWidth || y < gridTop || y >= gridTop+v.Size {
			continue
		}
		return b, core.Coordinate{X: (x - ox) / cellWidth, Y: y - gridTop}, true
	}
	return core.OwnBoard, core.Coordinate{}, false
}

// MoveCursor shifts the keyboard cursor, clamped to the grid.
func (v *View) MoveCursor(dx, dy int) {
	c := v.Cursor.Add(dx, dy)
	c.X = min(max(c.X, 0), v.Size-1)
	c.Y = min(max(c.Y, 0), v.Size-1)
	v.Cursor = c
}

// ToggleBoard moves the cursor to the other grid.
func (v *View) ToggleBoard() {
	if v.CursorBoard == core.OwnBoard {
		v.CursorBoard = core.OpponentBoard
	} else {
		v.CursorBoard = core.OwnBoard
	}
}

// attr maps a color class to the terminal color of a grid cell.
func attr(color core.ColorClass) termbox.Attribute {
	switch color {
	case core.ColorHead:
		return termbox.ColorRed
	case core.ColorBody:
		return termbox.ColorBlue
	case core.ColorMiss:
		return termbox.ColorBlack
	case core.ColorDamage:
		return termbox.ColorGreen
	}
	return termbox.ColorDefault
}

// Render draws the whole screen.
func (v *View) Render(c Canvas, snap session.Snapshot) {
	title := fmt.Sprintf("planewar  %s  session %s", snap.Role, shortID(snap.ID))
	drawText(c, 1, 0, title, termbox.ColorWhite|termbox.AttrBold, termbox.ColorDefault)

	for _, b := range []core.BoardID{core.OwnBoard, core.OpponentBoard} {
		label := "Your planes"
		if b == core.OpponentBoard {
			label = "Opponent"
		}
		ox := v.origin(b)
		drawText(c, ox, gridTop-2, label, termbox.ColorDefault|termbox.AttrBold, termbox.ColorDefault)
		for x := 0; x < v.Size; x++ {
			drawText(c, ox+x*cellWidth, gridTop-1, fmt.Sprintf("%-2d", x%100), termbox.ColorDefault, termbox.ColorDefault)
		}
		for y := 0; y < v.Size; y++ {
			if b == core.OwnBoard {
				drawText(c, 0, gridTop+y, fmt.Sprintf("%2d", y%100), termbox.ColorDefault, termbox.ColorDefault)
			}
			for x := 0; x < v.Size; x++ {
				v.drawCell(c, b, core.Coordinate{X: x, Y: y})
			}
		}
	}

	bottom := gridTop + v.Size + 1
	drawText(c, 1, bottom, statusLine(snap, v.Connection), termbox.ColorDefault, termbox.ColorDefault)
	drawText(c, 1, bottom+1, v.Message, termbox.ColorYellow, termbox.ColorDefault)
	drawText(c, 1, bottom+3, helpLine, termbox.ColorDefault, termbox.ColorDefault)
}

const helpLine = "left click/space: place or fire  r/R: rotate  u: undo  c/enter: confirm  tab: switch grid  q: quit"

func (v *View) drawCell(c Canvas, b core.BoardID, at core.Coordinate) {
	color := v.Color(b, at)
	x, y := v.origin(b)+at.X*cellWidth, gridTop+at.Y

	left, right := ' ', ' '
	fg, bg := termbox.ColorDefault, attr(color)
	switch color {
	case core.ColorEmpty:
		right = '.'
	case core.ColorMiss:
		fg, right = termbox.ColorWhite, 'o'
	case core.ColorDamage:
		fg, right = termbox.ColorBlack, 'x'
	}
	if !v.Finished && b == v.CursorBoard && at == v.Cursor {
		left, right = '[', ']'
		if color == core.ColorEmpty {
			fg = termbox.ColorYellow | termbox.AttrBold
		}
	}
	c.SetCell(x, y, left, fg, bg)
	c.SetCell(x+1, y, right, fg, bg)
}

func statusLine(snap session.Snapshot, conn string) string {
	if conn == "" {
		conn = "connecting"
	}
	line := fmt.Sprintf("[%s] phase: %s", conn, snap.Phase.Name())
	switch snap.Phase {
	case session.PhasePlacing:
		line += fmt.Sprintf("  planes: %d/%d", snap.PlanesPlaced, snap.RequiredPlanes)
		if snap.RemoteConfirmed {
			line += "  opponent ready"
		}
	case session.PhaseWaiting:
		line += "  waiting for opponent to confirm"
	case session.PhasePlaying:
		if snap.Turn == session.TurnLocal {
			line += "  your turn"
		} else {
			line += "  turn: " + snap.Turn.Name()
		}
	}
	if snap.ShotsFired > 0 {
		line += fmt.Sprintf("  shots: %d hits: %d (%.0f%%)", snap.ShotsFired, snap.Hits, snap.Accuracy)
	}
	return line
}

func drawText(c Canvas, x, y int, s string, fg, bg termbox.Attribute) {
	for _, r := range s {
		c.SetCell(x, y, r, fg, bg)
		x++
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
