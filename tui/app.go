package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/shikaku-go/shikaku/game/engine"
	"github.com/shikaku-go/shikaku/game/generator"
)

const (
	// Screen columns and rows a cell occupies, including its left and top
	// border lines. A board of W x H cells needs W*cellW+1 x H*cellH+1.
	cellW = 4
	cellH = 2

	cursorBlinkMs = 500
	errorFlashMs  = 800
)

// App drives a puzzle interactively in the terminal: a tcell event loop
// over a PartitionEngine, with keyboard and mouse bindings for starting,
// resizing, committing and deleting rectangles.
type App struct {
	screen tcell.Screen
	eng    *engine.PartitionEngine
	gen    generator.Options

	width, height    int
	originX, originY int

	cursor engine.Point

	// Cursor blink state
	cursorVisible   bool
	cursorBlinkTime time.Time

	// Transient status: notice overrides the engine message until the
	// next action; flashError paints the status line red for a moment
	notice     string
	flashError bool
	flashTime  time.Time

	confirmQuit bool

	// Mouse drag state
	mouseDown  bool
	mouseMoved bool
	pressCell  engine.Point
}

// New creates a terminal controller for the given puzzle. The generator
// options are reused when the player asks for a fresh puzzle; zero
// dimensions inherit the current puzzle's size.
func New(config *engine.PuzzleConfig, gen generator.Options) (*App, error) {
	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, err
	}
	if gen.Width == 0 {
		gen.Width = config.Width
	}
	if gen.Height == 0 {
		gen.Height = config.Height
	}
	return &App{
		eng:             eng,
		gen:             gen,
		cursorVisible:   true,
		cursorBlinkTime: time.Now(),
	}, nil
}

// Run initializes the terminal, enters the event loop, and restores the
// terminal state when the player quits.
func (a *App) Run() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	screen.EnableMouse()

	a.screen = screen
	a.width, a.height = screen.Size()
	a.layout()
	defer a.cleanup()

	a.loop()
	return nil
}

func (a *App) loop() {
	ticker := time.NewTicker(33 * time.Millisecond) // ~30 FPS, plenty for a board
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				// Screen finalized
				return
			}
			eventChan <- ev
		}
	}()

	a.draw()
	for {
		select {
		case ev := <-eventChan:
			if !a.handleInput(ev) {
				return
			}

		case <-ticker.C:
			a.draw()
		}
	}
}

func (a *App) cleanup() {
	a.screen.Fini()
}

// handleInput dispatches one terminal event. Returning false quits.
func (a *App) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ev)
	case *tcell.EventMouse:
		a.handleMouse(ev)
	case *tcell.EventResize:
		a.handleResize()
	}
	return true
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlC {
		return false
	}

	// A pending quit prompt consumes the next key: confirm or disarm
	if a.confirmQuit {
		a.confirmQuit = false
		if ev.Key() == tcell.KeyEscape {
			return false
		}
		if ev.Key() == tcell.KeyRune && (ev.Rune() == 'y' || ev.Rune() == 'q') {
			return false
		}
		return true
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		if a.eng.InProgress() {
			a.eng.Cancel()
			a.notice = ""
		} else {
			a.confirmQuit = true
		}
		return true

	case tcell.KeyUp, tcell.KeyDown, tcell.KeyLeft, tcell.KeyRight:
		dir := keyDirection(ev.Key())
		if ev.Modifiers()&tcell.ModCtrl != 0 {
			a.autoFill(dir)
		} else {
			a.move(dir)
		}
		return true
	}

	if ev.Key() != tcell.KeyRune {
		return true
	}

	switch ev.Rune() {
	case ' ':
		if a.eng.InProgress() {
			a.commit()
		} else {
			a.beginAt(a.cursor)
		}
	case 'd', 'D':
		a.deleteAt(a.cursor)
	case 'n':
		a.regenerate()
	case 'r':
		a.reset()
	case 'q':
		return false
	}
	return true
}

// handleMouse implements press = begin, drag = resize, release = commit.
// A press and release on the same covered cell with no drag in between
// deletes the rectangle under the pointer instead.
func (a *App) handleMouse(ev *tcell.EventMouse) {
	px, py := ev.Position()
	pressed := ev.Buttons()&tcell.Button1 != 0

	switch {
	case pressed && !a.mouseDown:
		cell, ok := a.cellAt(px, py)
		if !ok {
			return
		}
		a.mouseDown = true
		a.mouseMoved = false
		a.pressCell = cell
		a.beginAt(cell)

	case pressed && a.mouseDown:
		cell, ok := a.cellAt(px, py)
		if !ok {
			return
		}
		if cell != a.pressCell {
			a.mouseMoved = true
		}
		if a.mouseMoved && a.eng.InProgress() {
			if err := a.eng.Resize(cell); err == nil {
				a.cursor = cell
				a.resetBlink()
			}
		}

	case !pressed && a.mouseDown:
		a.mouseDown = false
		if !a.mouseMoved {
			if _, covered := a.eng.RectAt(a.pressCell); covered {
				a.eng.Cancel()
				a.deleteAt(a.pressCell)
				return
			}
		}
		a.commit()
	}
}

func (a *App) handleResize() {
	a.width, a.height = a.screen.Size()
	a.layout()
	a.screen.Sync()
}

// layout centers the board between the header row and the status row
func (a *App) layout() {
	st := a.eng.GetState()
	boardW := st.Width*cellW + 1
	boardH := st.Height*cellH + 1
	a.originX = (a.width - boardW) / 2
	if a.originX < 0 {
		a.originX = 0
	}
	a.originY = 1 + (a.height-2-boardH)/2
	if a.originY < 1 {
		a.originY = 1
	}
}

func (a *App) cellAt(px, py int) (engine.Point, bool) {
	st := a.eng.GetState()
	return screenToCell(px, py, a.originX, a.originY, st.Width, st.Height)
}

// move steps the cursor one cell in the given direction. While a
// rectangle is in progress the cursor is its moving corner, so the step
// resizes the rectangle too.
func (a *App) move(dir string) {
	next := a.cursor
	switch dir {
	case engine.DirUp:
		next.Y--
	case engine.DirDown:
		next.Y++
	case engine.DirLeft:
		next.X--
	case engine.DirRight:
		next.X++
	}
	next = a.eng.GetState().Clamp(next)

	if a.eng.InProgress() {
		if err := a.eng.Resize(next); err != nil {
			return
		}
	}
	a.cursor = next
	a.resetBlink()
}

func (a *App) beginAt(p engine.Point) {
	a.notice = ""
	if a.eng.InProgress() {
		// A new press replaces the open selection
		a.eng.Cancel()
	}
	if err := a.eng.Begin(p); err != nil {
		return
	}
	a.cursor = p
	a.resetBlink()
}

func (a *App) commit() {
	a.notice = ""
	if _, err := a.eng.Commit(); err != nil {
		if errors.Is(err, engine.ErrInvalidPlacement) {
			// The engine already set the rejection message
			a.flash()
		}
		return
	}
	a.resetBlink()
}

// deleteAt removes the committed rectangle under p. While a rectangle is
// in progress the first press only cancels it; deleting takes a second
// press from the idle state.
func (a *App) deleteAt(p engine.Point) {
	a.notice = ""
	if a.eng.InProgress() {
		a.eng.Cancel()
		return
	}
	if _, ok, err := a.eng.DeleteAt(p); err != nil || !ok {
		a.notice = "Nothing to delete here"
	}
}

func (a *App) autoFill(dir string) {
	a.notice = ""
	if err := a.eng.AutoFill(dir); err != nil {
		if errors.Is(err, engine.ErrInvalidState) {
			a.notice = "Press space to start a rectangle first"
		}
		return
	}
	if st := a.eng.GetState(); st.Active != nil {
		a.cursor = st.Active.Moving
		a.resetBlink()
	}
}

// regenerate swaps in a freshly generated puzzle of the configured size.
// Failure keeps the current puzzle; mid-game generation is never fatal.
func (a *App) regenerate() {
	opts := a.gen
	opts.Seed = 0 // fresh layout every time
	config, err := generator.Generate(opts)
	if err != nil {
		a.notice = "Generation failed, keeping current puzzle"
		a.flash()
		return
	}
	if err := a.eng.SetConfig(config); err != nil {
		a.notice = "Generated puzzle was invalid, keeping current"
		a.flash()
		return
	}
	a.cursor = engine.Point{}
	a.notice = ""
	a.layout()
	a.resetBlink()
}

func (a *App) reset() {
	if a.eng.InProgress() {
		a.eng.Cancel()
	}
	a.eng.Reset()
	a.notice = ""
	a.resetBlink()
}

func (a *App) flash() {
	a.flashError = true
	a.flashTime = time.Now()
}

func (a *App) resetBlink() {
	a.cursorVisible = true
	a.cursorBlinkTime = time.Now()
}

func keyDirection(k tcell.Key) string {
	switch k {
	case tcell.KeyUp:
		return engine.DirUp
	case tcell.KeyDown:
		return engine.DirDown
	case tcell.KeyLeft:
		return engine.DirLeft
	default:
		return engine.DirRight
	}
}
