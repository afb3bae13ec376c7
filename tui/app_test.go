package tui

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/shikaku-go/shikaku/game/engine"
	"github.com/shikaku-go/shikaku/game/generator"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := New(engine.DefaultPuzzleConfig(), generator.Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	app.width, app.height = 80, 24
	app.layout()
	return app
}

func press(t *testing.T, app *App, key tcell.Key, mods tcell.ModMask) bool {
	t.Helper()
	return app.handleInput(tcell.NewEventKey(key, 0, mods))
}

func pressRune(t *testing.T, app *App, r rune) bool {
	t.Helper()
	return app.handleInput(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
}

func mouse(t *testing.T, app *App, x, y int, buttons tcell.ButtonMask) {
	t.Helper()
	app.handleInput(tcell.NewEventMouse(x, y, buttons, tcell.ModNone))
}

func TestNew_InheritsGenDimensions(t *testing.T) {
	app := newTestApp(t)
	if app.gen.Width != 5 || app.gen.Height != 5 {
		t.Errorf("gen dimensions = %dx%d, want 5x5", app.gen.Width, app.gen.Height)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	config := engine.DefaultPuzzleConfig()
	config.Width = 1
	if _, err := New(config, generator.Options{}); err == nil {
		t.Error("New() with invalid config should fail")
	}
}

func TestApp_Layout(t *testing.T) {
	app := newTestApp(t)
	// 5x5 board is 21x11 screen cells, centered in 80x24 minus the
	// header and status rows
	if app.originX != 29 || app.originY != 6 {
		t.Errorf("origin = (%d,%d), want (29,6)", app.originX, app.originY)
	}

	app.width, app.height = 10, 5
	app.layout()
	if app.originX != 0 || app.originY != 1 {
		t.Errorf("cramped origin = (%d,%d), want (0,1)", app.originX, app.originY)
	}
}

func TestApp_CursorMovement(t *testing.T) {
	app := newTestApp(t)

	press(t, app, tcell.KeyLeft, tcell.ModNone)
	press(t, app, tcell.KeyUp, tcell.ModNone)
	if app.cursor != (engine.Point{X: 0, Y: 0}) {
		t.Errorf("cursor = %v, want clamped at origin", app.cursor)
	}

	press(t, app, tcell.KeyRight, tcell.ModNone)
	press(t, app, tcell.KeyDown, tcell.ModNone)
	if app.cursor != (engine.Point{X: 1, Y: 1}) {
		t.Errorf("cursor = %v, want (1,1)", app.cursor)
	}

	for i := 0; i < 10; i++ {
		press(t, app, tcell.KeyRight, tcell.ModNone)
	}
	if app.cursor != (engine.Point{X: 4, Y: 1}) {
		t.Errorf("cursor = %v, want clamped at (4,1)", app.cursor)
	}
}

func TestApp_SpaceBeginsAndCommits(t *testing.T) {
	app := newTestApp(t)

	pressRune(t, app, ' ')
	if !app.eng.InProgress() {
		t.Fatal("space should begin a rectangle")
	}

	press(t, app, tcell.KeyRight, tcell.ModNone)
	press(t, app, tcell.KeyDown, tcell.ModNone)
	r, ok := app.eng.ActiveRect()
	if !ok || r != engine.NewRect(engine.Point{X: 0, Y: 0}, engine.Point{X: 1, Y: 1}) {
		t.Fatalf("active rect = %v, want (0,0)-(1,1)", r)
	}

	pressRune(t, app, ' ')
	if app.eng.InProgress() {
		t.Error("commit should close the rectangle")
	}
	if got := len(app.eng.CommittedRects()); got != 1 {
		t.Fatalf("committed rects = %d, want 1", got)
	}
	if msg := app.eng.GetState().Message; msg != "Rectangle placed (4 cells)" {
		t.Errorf("message = %q", msg)
	}
}

func TestApp_CommitRejectedFlashes(t *testing.T) {
	app := newTestApp(t)

	// 1x1 over the area-4 clue: area mismatch
	pressRune(t, app, ' ')
	pressRune(t, app, ' ')

	if len(app.eng.CommittedRects()) != 0 {
		t.Error("rejected commit should not place a rectangle")
	}
	if !app.flashError {
		t.Error("rejected commit should flash the status line")
	}
	if msg := app.eng.GetState().Message; msg != "Area is 1 but the number wants 4" {
		t.Errorf("message = %q", msg)
	}
}

func TestApp_DeleteCancelsFirst(t *testing.T) {
	app := newTestApp(t)
	if _, err := app.eng.PlaceRect(engine.Point{X: 0, Y: 0}, engine.Point{X: 1, Y: 1}); err != nil {
		t.Fatalf("PlaceRect() error = %v", err)
	}

	// d during an open selection only cancels it
	pressRune(t, app, ' ')
	pressRune(t, app, 'd')
	if app.eng.InProgress() {
		t.Fatal("d should cancel the open selection")
	}
	if len(app.eng.CommittedRects()) != 1 {
		t.Fatal("first d press should not delete")
	}

	// Second press from idle deletes
	pressRune(t, app, 'd')
	if got := len(app.eng.CommittedRects()); got != 0 {
		t.Errorf("committed rects = %d, want 0 after delete", got)
	}
	if msg := app.eng.GetState().Message; msg != "Rectangle removed" {
		t.Errorf("message = %q", msg)
	}
}

func TestApp_DeleteUppercase(t *testing.T) {
	app := newTestApp(t)
	if _, err := app.eng.PlaceRect(engine.Point{X: 0, Y: 0}, engine.Point{X: 1, Y: 1}); err != nil {
		t.Fatalf("PlaceRect() error = %v", err)
	}

	// Shifted D deletes the same as d
	pressRune(t, app, 'D')
	if got := len(app.eng.CommittedRects()); got != 0 {
		t.Errorf("committed rects = %d, want 0 after delete", got)
	}
}

func TestApp_DeleteMiss(t *testing.T) {
	app := newTestApp(t)
	pressRune(t, app, 'd')
	if app.notice != "Nothing to delete here" {
		t.Errorf("notice = %q", app.notice)
	}
}

func TestApp_EscCancelsThenArmsQuit(t *testing.T) {
	app := newTestApp(t)

	pressRune(t, app, ' ')
	if !press(t, app, tcell.KeyEscape, tcell.ModNone) {
		t.Fatal("esc during selection should not quit")
	}
	if app.eng.InProgress() {
		t.Fatal("esc should cancel the selection")
	}

	if !press(t, app, tcell.KeyEscape, tcell.ModNone) {
		t.Fatal("first idle esc should only arm the prompt")
	}
	if !app.confirmQuit {
		t.Fatal("idle esc should arm the quit prompt")
	}

	// Any other key disarms
	if !pressRune(t, app, 'x') {
		t.Fatal("unrelated key should not quit")
	}
	if app.confirmQuit {
		t.Error("unrelated key should disarm the prompt")
	}

	press(t, app, tcell.KeyEscape, tcell.ModNone)
	if pressRune(t, app, 'y') {
		t.Error("y should confirm the quit prompt")
	}
}

func TestApp_QuitKeys(t *testing.T) {
	app := newTestApp(t)
	if pressRune(t, app, 'q') {
		t.Error("q should quit")
	}
	if press(t, app, tcell.KeyCtrlC, tcell.ModCtrl) {
		t.Error("ctrl-c should quit")
	}
}

func TestApp_AutoFill(t *testing.T) {
	app := newTestApp(t)
	if _, err := app.eng.PlaceRect(engine.Point{X: 2, Y: 0}, engine.Point{X: 3, Y: 1}); err != nil {
		t.Fatalf("PlaceRect() error = %v", err)
	}

	pressRune(t, app, ' ')
	press(t, app, tcell.KeyRight, tcell.ModCtrl)

	// Fill stops one short of the committed rectangle
	r, ok := app.eng.ActiveRect()
	if !ok || r != engine.NewRect(engine.Point{X: 0, Y: 0}, engine.Point{X: 1, Y: 0}) {
		t.Errorf("active rect = %v, want (0,0)-(1,0)", r)
	}
	if app.cursor != (engine.Point{X: 1, Y: 0}) {
		t.Errorf("cursor = %v, want moving corner (1,0)", app.cursor)
	}
}

func TestApp_AutoFillIdleNotice(t *testing.T) {
	app := newTestApp(t)
	press(t, app, tcell.KeyDown, tcell.ModCtrl)
	if app.notice != "Press space to start a rectangle first" {
		t.Errorf("notice = %q", app.notice)
	}
}

func TestApp_MouseDragCommit(t *testing.T) {
	app := newTestApp(t)

	px, py := app.cellCenter(0, 0)
	mouse(t, app, px, py, tcell.Button1)
	if !app.eng.InProgress() {
		t.Fatal("press should begin a rectangle")
	}

	dx, dy := app.cellCenter(1, 1)
	mouse(t, app, dx, dy, tcell.Button1)
	r, ok := app.eng.ActiveRect()
	if !ok || r != engine.NewRect(engine.Point{X: 0, Y: 0}, engine.Point{X: 1, Y: 1}) {
		t.Fatalf("active rect = %v, want (0,0)-(1,1)", r)
	}

	mouse(t, app, dx, dy, tcell.ButtonNone)
	if got := len(app.eng.CommittedRects()); got != 1 {
		t.Errorf("committed rects = %d, want 1 after release", got)
	}
}

func TestApp_MouseClickDeletes(t *testing.T) {
	app := newTestApp(t)
	if _, err := app.eng.PlaceRect(engine.Point{X: 0, Y: 0}, engine.Point{X: 1, Y: 1}); err != nil {
		t.Fatalf("PlaceRect() error = %v", err)
	}

	px, py := app.cellCenter(1, 1)
	mouse(t, app, px, py, tcell.Button1)
	mouse(t, app, px, py, tcell.ButtonNone)

	if got := len(app.eng.CommittedRects()); got != 0 {
		t.Errorf("committed rects = %d, want 0 after click on covered cell", got)
	}
}

func TestApp_MouseClickEmptyRejected(t *testing.T) {
	app := newTestApp(t)

	// Click with no drag on an uncovered clueless cell commits a 1x1,
	// which the engine rejects
	px, py := app.cellCenter(2, 2)
	mouse(t, app, px, py, tcell.Button1)
	mouse(t, app, px, py, tcell.ButtonNone)

	if len(app.eng.CommittedRects()) != 0 {
		t.Error("1x1 without a clue should be rejected")
	}
	if msg := app.eng.GetState().Message; msg != "Rectangle contains no number" {
		t.Errorf("message = %q", msg)
	}
	if !app.flashError {
		t.Error("rejection should flash the status line")
	}
}

func TestApp_MouseOutsideBoardIgnored(t *testing.T) {
	app := newTestApp(t)
	mouse(t, app, 0, 0, tcell.Button1)
	if app.mouseDown || app.eng.InProgress() {
		t.Error("press outside the board should be ignored")
	}
}

func TestApp_Regenerate(t *testing.T) {
	app, err := New(engine.DefaultPuzzleConfig(), generator.Options{AllowAmbiguous: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	app.width, app.height = 80, 24
	app.layout()

	pressRune(t, app, 'n')

	config := app.eng.GetConfig()
	if config.Name != "Generated 5x5" {
		t.Errorf("config name = %q, want a generated 5x5 puzzle", config.Name)
	}
	if err := engine.ValidatePuzzleConfig(config); err != nil {
		t.Errorf("generated config invalid: %v", err)
	}
	if app.cursor != (engine.Point{}) {
		t.Errorf("cursor = %v, want reset to origin", app.cursor)
	}
}

func TestApp_Reset(t *testing.T) {
	app := newTestApp(t)
	if _, err := app.eng.PlaceRect(engine.Point{X: 0, Y: 0}, engine.Point{X: 1, Y: 1}); err != nil {
		t.Fatalf("PlaceRect() error = %v", err)
	}

	pressRune(t, app, 'r')

	st := app.eng.GetState()
	if st.CoveredCells() != 0 {
		t.Errorf("covered cells = %d, want 0 after reset", st.CoveredCells())
	}
	if st.TotalPlacements != 1 {
		t.Errorf("total placements = %d, want history preserved", st.TotalPlacements)
	}
	if st.Message != engine.DefaultMessages().Welcome {
		t.Errorf("message = %q, want welcome message", st.Message)
	}
}

func TestApp_SolveByKeyboard(t *testing.T) {
	app := newTestApp(t)

	script := []struct {
		key  tcell.Key
		r    rune
		mods tcell.ModMask
	}{
		// (0,0)-(1,1) over the area-4 clue
		{tcell.KeyRune, ' ', tcell.ModNone},
		{tcell.KeyRight, 0, tcell.ModNone},
		{tcell.KeyDown, 0, tcell.ModNone},
		{tcell.KeyRune, ' ', tcell.ModNone},
		// (2,0)-(3,1) over the second area-4 clue
		{tcell.KeyUp, 0, tcell.ModNone},
		{tcell.KeyRight, 0, tcell.ModNone},
		{tcell.KeyRune, ' ', tcell.ModNone},
		{tcell.KeyRight, 0, tcell.ModNone},
		{tcell.KeyDown, 0, tcell.ModNone},
		{tcell.KeyRune, ' ', tcell.ModNone},
		// (4,0)-(4,4) via auto-fill down the last column
		{tcell.KeyUp, 0, tcell.ModNone},
		{tcell.KeyRight, 0, tcell.ModNone},
		{tcell.KeyRune, ' ', tcell.ModNone},
		{tcell.KeyDown, 0, tcell.ModCtrl},
		{tcell.KeyRune, ' ', tcell.ModNone},
		// (0,2)-(1,4); the remaining region auto-completes
		{tcell.KeyLeft, 0, tcell.ModNone},
		{tcell.KeyLeft, 0, tcell.ModNone},
		{tcell.KeyLeft, 0, tcell.ModNone},
		{tcell.KeyLeft, 0, tcell.ModNone},
		{tcell.KeyUp, 0, tcell.ModNone},
		{tcell.KeyUp, 0, tcell.ModNone},
		{tcell.KeyRune, ' ', tcell.ModNone},
		{tcell.KeyDown, 0, tcell.ModNone},
		{tcell.KeyDown, 0, tcell.ModNone},
		{tcell.KeyRight, 0, tcell.ModNone},
		{tcell.KeyRune, ' ', tcell.ModNone},
	}
	for i, s := range script {
		if !app.handleInput(tcell.NewEventKey(s.key, s.r, s.mods)) {
			t.Fatalf("step %d quit unexpectedly", i)
		}
	}

	if !app.eng.IsSolved() {
		t.Fatalf("puzzle not solved; covered %d, rects %v",
			app.eng.GetState().CoveredCells(), app.eng.CommittedRects())
	}
	if got := len(app.eng.CommittedRects()); got != 5 {
		t.Errorf("committed rects = %d, want 5", got)
	}
	if msg := app.eng.GetState().Message; msg != "Solved! 5 rectangles partition the grid." {
		t.Errorf("message = %q", msg)
	}
}

func newSimApp(t *testing.T) (*App, tcell.SimulationScreen) {
	t.Helper()
	app := newTestApp(t)
	sim := tcell.NewSimulationScreen("UTF-8")
	if err := sim.Init(); err != nil {
		t.Fatalf("sim.Init() error = %v", err)
	}
	t.Cleanup(sim.Fini)
	sim.SetSize(80, 24)
	app.screen = sim
	app.width, app.height = sim.Size()
	app.layout()
	return app, sim
}

func screenText(sim tcell.SimulationScreen) string {
	cells, w, h := sim.GetContents()
	var b strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := cells[y*w+x]
			if len(c.Runes) == 0 {
				b.WriteRune(' ')
			} else {
				b.WriteRune(c.Runes[0])
			}
		}
		b.WriteRune('\n')
	}
	return b.String()
}

func runeAt(sim tcell.SimulationScreen, x, y int) rune {
	cells, w, _ := sim.GetContents()
	c := cells[y*w+x]
	if len(c.Runes) == 0 {
		return ' '
	}
	return c.Runes[0]
}

func TestApp_Draw(t *testing.T) {
	app, sim := newSimApp(t)
	if _, err := app.eng.PlaceRect(engine.Point{X: 0, Y: 0}, engine.Point{X: 1, Y: 1}); err != nil {
		t.Fatalf("PlaceRect() error = %v", err)
	}

	app.draw()

	x, y := app.cellOrigin(0, 0)
	if got := runeAt(sim, x, y); got != '┌' {
		t.Errorf("top-left junction = %q, want ┌", got)
	}

	// Interior border of the placed rectangle is hidden
	ix, iy := app.cellOrigin(1, 0)
	if got := runeAt(sim, ix, iy+1); got != ' ' {
		t.Errorf("interior border = %q, want blank", got)
	}

	cx, cy := app.cellCenter(0, 0)
	if got := runeAt(sim, cx, cy); got != '4' {
		t.Errorf("clue cell = %q, want 4", got)
	}

	content := screenText(sim)
	if !strings.Contains(content, "Rectangle placed (4 cells)") {
		t.Error("status line should show the placement message")
	}
	if !strings.Contains(content, "4/25") {
		t.Error("status line should show progress")
	}
	if !strings.Contains(content, "classic (5x5)") {
		t.Error("header should show the puzzle name and size")
	}
}

func TestApp_DrawSolvedBanner(t *testing.T) {
	app, sim := newSimApp(t)
	placements := [][2]engine.Point{
		{{X: 0, Y: 0}, {X: 1, Y: 1}},
		{{X: 2, Y: 0}, {X: 3, Y: 1}},
		{{X: 4, Y: 0}, {X: 4, Y: 4}},
		{{X: 0, Y: 2}, {X: 1, Y: 4}},
	}
	for _, p := range placements {
		if _, err := app.eng.PlaceRect(p[0], p[1]); err != nil {
			t.Fatalf("PlaceRect(%v, %v) error = %v", p[0], p[1], err)
		}
	}
	if !app.eng.IsSolved() {
		t.Fatal("classic solution should solve the puzzle")
	}

	app.draw()

	if !strings.Contains(screenText(sim), "Solved! 5 rectangles partition the grid.") {
		t.Error("solved banner should overlay the board")
	}
}
