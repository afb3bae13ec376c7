package tui

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/shikaku-go/shikaku/game/engine"
)

// Line connectivity bits for box-drawing junctions
const (
	lineUp = 1 << iota
	lineRight
	lineDown
	lineLeft
)

// boxRunes maps a connectivity mask to its box-drawing rune
var boxRunes = [16]rune{
	' ', '╵', '╶', '└', '╷', '│', '┌', '├',
	'╴', '┘', '─', '┴', '┐', '┤', '┬', '┼',
}

// How a cell border segment is drawn: hidden inside a committed
// rectangle, dim as a plain grid line, bright as a rectangle outline
type lineKind int

const (
	lineHidden lineKind = iota
	lineDim
	lineBright
)

// Outline colors cycle per committed rectangle
var rectColors = []tcell.Color{
	tcell.ColorGreen, tcell.ColorYellow, tcell.ColorBlue,
	tcell.ColorPurple, tcell.ColorAqua, tcell.ColorOrange,
}

func rectColor(idx int) tcell.Color {
	return rectColors[idx%len(rectColors)]
}

// screenToCell maps a terminal coordinate to the board cell containing
// it. Coordinates on a border line resolve to the cell below or right of
// the line; the outer bottom and right borders still count as the edge
// cells. ok is false outside the board area.
func screenToCell(px, py, originX, originY, width, height int) (engine.Point, bool) {
	relX := px - originX
	relY := py - originY
	if relX < 0 || relY < 0 || relX > width*cellW || relY > height*cellH {
		return engine.Point{}, false
	}
	cx := relX / cellW
	cy := relY / cellH
	if cx >= width {
		cx = width - 1
	}
	if cy >= height {
		cy = height - 1
	}
	return engine.Point{X: cx, Y: cy}, true
}

// cellOrigin returns the screen position of the cell's top-left border
// intersection
func (a *App) cellOrigin(cx, cy int) (int, int) {
	return a.originX + cx*cellW, a.originY + cy*cellH
}

// cellCenter returns the screen position of the cell's interior center,
// where clue characters and the cursor are drawn
func (a *App) cellCenter(cx, cy int) (int, int) {
	return a.originX + cx*cellW + cellW/2, a.originY + cy*cellH + cellH/2
}

// boardView indexes which committed rectangle owns each cell, so border
// segments and junctions can be classified without rescanning the
// rectangle list per segment
type boardView struct {
	width, height int
	owner         []int // rect index per cell, -1 when uncovered
}

func newBoardView(width, height int, rects []engine.Rect) *boardView {
	owner := make([]int, width*height)
	for i := range owner {
		owner[i] = -1
	}
	for i, r := range rects {
		for y := r.Min.Y; y <= r.Max.Y; y++ {
			for x := r.Min.X; x <= r.Max.X; x++ {
				owner[y*width+x] = i
			}
		}
	}
	return &boardView{width: width, height: height, owner: owner}
}

// ownerAt returns the committed rectangle index covering the cell, or -1
// for uncovered cells and anything outside the grid
func (v *boardView) ownerAt(x, y int) int {
	if x < 0 || x >= v.width || y < 0 || y >= v.height {
		return -1
	}
	return v.owner[y*v.width+x]
}

// vertSeg classifies the vertical border segment at line column bx
// spanning cell row cy. The segment is hidden when both sides belong to
// the same rectangle, bright on a rectangle boundary, dim otherwise.
func (v *boardView) vertSeg(bx, cy int) (lineKind, int) {
	return classifySeg(v.ownerAt(bx-1, cy), v.ownerAt(bx, cy))
}

// horizSeg classifies the horizontal border segment at line row by
// spanning cell column cx
func (v *boardView) horizSeg(cx, by int) (lineKind, int) {
	return classifySeg(v.ownerAt(cx, by-1), v.ownerAt(cx, by))
}

func classifySeg(a, b int) (lineKind, int) {
	switch {
	case a >= 0 && a == b:
		return lineHidden, -1
	case b >= 0:
		return lineBright, b
	case a >= 0:
		return lineBright, a
	default:
		return lineDim, -1
	}
}

// junction computes the box-drawing rune for the line intersection at
// (bx, by) from its visible incident segments, along with the strongest
// segment kind and the rectangle supplying the outline color
func (v *boardView) junction(bx, by int) (rune, lineKind, int) {
	mask := 0
	kind := lineHidden
	rect := -1
	consider := func(bit int, k lineKind, ri int) {
		if k == lineHidden {
			return
		}
		mask |= bit
		if k > kind {
			kind = k
			rect = ri
		}
	}
	if by > 0 {
		k, ri := v.vertSeg(bx, by-1)
		consider(lineUp, k, ri)
	}
	if by < v.height {
		k, ri := v.vertSeg(bx, by)
		consider(lineDown, k, ri)
	}
	if bx > 0 {
		k, ri := v.horizSeg(bx-1, by)
		consider(lineLeft, k, ri)
	}
	if bx < v.width {
		k, ri := v.horizSeg(bx, by)
		consider(lineRight, k, ri)
	}
	return boxRunes[mask], kind, rect
}

func (a *App) lineStyle(kind lineKind, rect int) tcell.Style {
	if kind == lineBright && rect >= 0 {
		return tcell.StyleDefault.Foreground(rectColor(rect))
	}
	return tcell.StyleDefault.Foreground(tcell.ColorGray)
}

func (a *App) draw() {
	a.screen.Clear()

	st := a.eng.GetState()
	view := newBoardView(st.Width, st.Height, a.eng.CommittedRects())

	a.drawHeader(st)
	a.drawBoard(st, view)
	a.drawActive()
	a.drawClues(view)
	a.drawCursor()
	a.drawStatus(st)
	if st.Solved {
		a.drawBanner(st)
	}

	a.screen.Show()
}

func (a *App) drawHeader(st *engine.BoardState) {
	title := fmt.Sprintf(" %s (%dx%d)", a.eng.GetConfig().Name, st.Width, st.Height)
	a.drawText(0, 0, title, tcell.StyleDefault.Bold(true))

	help := "space select | d delete | n new | r reset | q quit "
	if a.width > len(title)+len(help)+2 {
		a.drawText(a.width-len(help), 0, help, tcell.StyleDefault.Foreground(tcell.ColorGray))
	}
}

// drawBoard renders grid lines and committed rectangle outlines in one
// pass: per junction the connecting rune, then the segments right of and
// below it. Hidden segments inside a rectangle are simply not drawn.
func (a *App) drawBoard(st *engine.BoardState, view *boardView) {
	for by := 0; by <= st.Height; by++ {
		for bx := 0; bx <= st.Width; bx++ {
			x, y := a.cellOrigin(bx, by)

			if r, kind, ri := view.junction(bx, by); r != ' ' {
				a.screen.SetContent(x, y, r, nil, a.lineStyle(kind, ri))
			}

			if bx < st.Width {
				if kind, ri := view.horizSeg(bx, by); kind != lineHidden {
					style := a.lineStyle(kind, ri)
					for dx := 1; dx < cellW; dx++ {
						a.screen.SetContent(x+dx, y, '─', nil, style)
					}
				}
			}

			if by < st.Height {
				if kind, ri := view.vertSeg(bx, by); kind != lineHidden {
					a.screen.SetContent(x, y+1, '│', nil, a.lineStyle(kind, ri))
				}
			}
		}
	}
}

// drawActive paints the in-progress rectangle's cells in reverse video
func (a *App) drawActive() {
	r, ok := a.eng.ActiveRect()
	if !ok {
		return
	}
	style := tcell.StyleDefault.Reverse(true)
	for cy := r.Min.Y; cy <= r.Max.Y; cy++ {
		for cx := r.Min.X; cx <= r.Max.X; cx++ {
			x, y := a.cellOrigin(cx, cy)
			for dx := 1; dx < cellW; dx++ {
				a.screen.SetContent(x+dx, y+1, ' ', nil, style)
			}
		}
	}
}

// drawClues renders each clue at its cell center: bold white while
// unsatisfied, in the owning rectangle's color once covered
func (a *App) drawClues(view *boardView) {
	active, hasActive := a.eng.ActiveRect()
	for _, c := range a.eng.Clues() {
		ch, ok := engine.ClueChar(c.Area)
		if !ok {
			continue
		}
		style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
		if ri := view.ownerAt(c.Pos.X, c.Pos.Y); ri >= 0 {
			style = tcell.StyleDefault.Foreground(rectColor(ri))
		}
		if hasActive && active.Contains(c.Pos) {
			style = style.Reverse(true)
		}
		x, y := a.cellCenter(c.Pos.X, c.Pos.Y)
		a.screen.SetContent(x, y, rune(ch), nil, style)
	}
}

func (a *App) drawCursor() {
	now := time.Now()
	if now.Sub(a.cursorBlinkTime).Milliseconds() > cursorBlinkMs {
		a.cursorVisible = !a.cursorVisible
		a.cursorBlinkTime = now
	}
	if !a.cursorVisible {
		return
	}

	ch := ' '
	if c, ok := a.eng.ClueAt(a.cursor); ok {
		if b, bok := engine.ClueChar(c.Area); bok {
			ch = rune(b)
		}
	}
	x, y := a.cellCenter(a.cursor.X, a.cursor.Y)
	a.screen.SetContent(x, y, ch, nil, tcell.StyleDefault.Foreground(tcell.ColorYellow).Reverse(true))
}

func (a *App) drawStatus(st *engine.BoardState) {
	now := time.Now()
	if a.flashError && now.Sub(a.flashTime).Milliseconds() > errorFlashMs {
		a.flashError = false
	}

	msg := st.Message
	if a.notice != "" {
		msg = a.notice
	}
	style := tcell.StyleDefault
	switch {
	case a.confirmQuit:
		msg = "Quit? (y to confirm)"
		style = tcell.StyleDefault.Bold(true)
	case a.flashError:
		style = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	default:
		if r, ok := a.eng.ActiveRect(); ok {
			msg = fmt.Sprintf("Selecting %dx%d (area %d)", r.Width(), r.Height(), r.Area())
		}
	}
	a.drawText(1, a.height-1, msg, style)

	covered, total := a.eng.Progress()
	prog := fmt.Sprintf("%d/%d ", covered, total)
	a.drawText(a.width-len(prog), a.height-1, prog, tcell.StyleDefault.Foreground(tcell.ColorGray))
}

// drawBanner overlays the solved message across the middle of the board
func (a *App) drawBanner(st *engine.BoardState) {
	text := fmt.Sprintf("  %s  ", st.Message)
	x := (a.width - len(text)) / 2
	if x < 0 {
		x = 0
	}
	y := a.originY + (st.Height*cellH)/2
	a.drawText(x, y, text, tcell.StyleDefault.Foreground(tcell.ColorGreen).Reverse(true).Bold(true))
}

func (a *App) drawText(x, y int, s string, style tcell.Style) {
	col := x
	for _, r := range s {
		a.screen.SetContent(col, y, r, nil, style)
		col++
	}
}
