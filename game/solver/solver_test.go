package solver

import (
	"testing"

	"github.com/shikaku-go/shikaku/game/engine"
)

// quadrantClues is the 4x4 layout whose only partition is the four 2x2
// quadrants
func quadrantClues() []engine.Clue {
	return []engine.Clue{
		{Pos: engine.Point{X: 0, Y: 0}, Area: 4},
		{Pos: engine.Point{X: 2, Y: 0}, Area: 4},
		{Pos: engine.Point{X: 0, Y: 2}, Area: 4},
		{Pos: engine.Point{X: 2, Y: 2}, Area: 4},
	}
}

func defaultClues(t *testing.T) (int, int, []engine.Clue) {
	t.Helper()
	config := engine.DefaultPuzzleConfig()
	clues, err := engine.ParseLayout(config.Layout)
	if err != nil {
		t.Fatalf("Failed to parse default layout: %v", err)
	}
	return config.Width, config.Height, clues
}

// checkPartition fails the test unless rects tile the grid exactly and
// each rectangle holds exactly one clue of matching area
func checkPartition(t *testing.T, width, height int, clues []engine.Clue, rects []engine.Rect) {
	t.Helper()
	counts := make([]int, width*height)
	for _, r := range rects {
		for y := r.Min.Y; y <= r.Max.Y; y++ {
			for x := r.Min.X; x <= r.Max.X; x++ {
				counts[y*width+x]++
			}
		}
		clue, n := engine.CluesInRect(clues, r)
		if n != 1 {
			t.Errorf("Rect %v holds %d clues", r, n)
		} else if clue.Area != r.Area() {
			t.Errorf("Rect %v area %d does not match clue %d", r, r.Area(), clue.Area)
		}
	}
	for i, n := range counts {
		if n != 1 {
			t.Errorf("Cell (%d,%d) covered %d times", i%width, i/width, n)
		}
	}
}

func TestCandidates(t *testing.T) {
	t.Run("single clue covering the grid", func(t *testing.T) {
		clues := []engine.Clue{{Pos: engine.Point{X: 0, Y: 0}, Area: 16}}
		cands := Candidates(4, 4, clues, clues[0])
		if len(cands) != 1 {
			t.Fatalf("Expected 1 candidate, got %d", len(cands))
		}
		want := engine.NewRect(engine.Point{X: 0, Y: 0}, engine.Point{X: 3, Y: 3})
		if cands[0] != want {
			t.Errorf("Expected full-grid candidate, got %v", cands[0])
		}
	})

	t.Run("corner clue boxed in by neighbours", func(t *testing.T) {
		clues := quadrantClues()
		// The 1x4 and 4x1 shapes would swallow a second clue, leaving
		// only the 2x2 square
		cands := Candidates(4, 4, clues, clues[0])
		if len(cands) != 1 {
			t.Fatalf("Expected 1 candidate, got %d: %v", len(cands), cands)
		}
		want := engine.NewRect(engine.Point{X: 0, Y: 0}, engine.Point{X: 1, Y: 1})
		if cands[0] != want {
			t.Errorf("Expected top-left quadrant, got %v", cands[0])
		}
	})

	t.Run("prime clue forced into a column", func(t *testing.T) {
		width, height, clues := defaultClues(t)
		var target engine.Clue
		for _, c := range clues {
			if c.Pos == (engine.Point{X: 4, Y: 0}) {
				target = c
			}
		}
		if target.Area != 5 {
			t.Fatalf("Expected clue of 5 at (4,0), got %+v", target)
		}

		cands := Candidates(width, height, clues, target)
		if len(cands) != 1 {
			t.Fatalf("Expected 1 candidate, got %d: %v", len(cands), cands)
		}
		want := engine.NewRect(engine.Point{X: 4, Y: 0}, engine.Point{X: 4, Y: 4})
		if cands[0] != want {
			t.Errorf("Expected right column, got %v", cands[0])
		}
	})

	t.Run("unconstrained clue has many candidates", func(t *testing.T) {
		clues := []engine.Clue{{Pos: engine.Point{X: 1, Y: 1}, Area: 4}}
		cands := Candidates(4, 4, clues, clues[0])
		// One 1x4 column, one 4x1 row, and four 2x2 offsets contain (1,1)
		if len(cands) != 6 {
			t.Errorf("Expected 6 candidates, got %d: %v", len(cands), cands)
		}
	})
}

func TestCount(t *testing.T) {
	t.Run("default puzzle is unique", func(t *testing.T) {
		width, height, clues := defaultClues(t)
		if n := Count(width, height, clues, 0); n != 1 {
			t.Errorf("Expected exactly 1 solution, got %d", n)
		}
		if n := Count(width, height, clues, 2); n != 1 {
			t.Errorf("Expected ambiguity check to report 1, got %d", n)
		}
	})

	t.Run("ambiguous layout counts both tilings", func(t *testing.T) {
		clues := []engine.Clue{
			{Pos: engine.Point{X: 0, Y: 0}, Area: 2},
			{Pos: engine.Point{X: 1, Y: 1}, Area: 2},
		}
		// Two rows or two columns both satisfy the clues
		if n := Count(2, 2, clues, 0); n != 2 {
			t.Errorf("Expected 2 solutions, got %d", n)
		}
	})

	t.Run("limit stops the walk early", func(t *testing.T) {
		clues := []engine.Clue{
			{Pos: engine.Point{X: 0, Y: 0}, Area: 2},
			{Pos: engine.Point{X: 1, Y: 1}, Area: 2},
		}
		if n := Count(2, 2, clues, 1); n != 1 {
			t.Errorf("Expected count capped at 1, got %d", n)
		}
	})

	t.Run("area sum mismatch has no solutions", func(t *testing.T) {
		clues := []engine.Clue{{Pos: engine.Point{X: 0, Y: 0}, Area: 3}}
		if n := Count(2, 2, clues, 0); n != 0 {
			t.Errorf("Expected 0 solutions, got %d", n)
		}
	})

	t.Run("unfittable clue has no solutions", func(t *testing.T) {
		// 3 only factors as 3x1, which does not fit a 2x2 grid
		clues := []engine.Clue{
			{Pos: engine.Point{X: 0, Y: 0}, Area: 3},
			{Pos: engine.Point{X: 1, Y: 1}, Area: 1},
		}
		if n := Count(2, 2, clues, 0); n != 0 {
			t.Errorf("Expected 0 solutions, got %d", n)
		}
	})

	t.Run("no clues means no cover", func(t *testing.T) {
		if n := Count(3, 3, nil, 0); n != 0 {
			t.Errorf("Expected 0 solutions for empty clue set, got %d", n)
		}
	})
}

func TestSolve(t *testing.T) {
	t.Run("solves the default puzzle", func(t *testing.T) {
		width, height, clues := defaultClues(t)
		rects, ok := Solve(width, height, clues)
		if !ok {
			t.Fatal("Expected a solution")
		}
		if len(rects) != len(clues) {
			t.Fatalf("Expected %d rects, got %d", len(clues), len(rects))
		}
		checkPartition(t, width, height, clues, rects)
	})

	t.Run("solves the quadrant layout", func(t *testing.T) {
		rects, ok := Solve(4, 4, quadrantClues())
		if !ok {
			t.Fatal("Expected a solution")
		}
		checkPartition(t, 4, 4, quadrantClues(), rects)
	})

	t.Run("reports unsolvable layouts", func(t *testing.T) {
		clues := []engine.Clue{
			{Pos: engine.Point{X: 0, Y: 0}, Area: 3},
			{Pos: engine.Point{X: 1, Y: 1}, Area: 1},
		}
		if _, ok := Solve(2, 2, clues); ok {
			t.Error("Expected no solution")
		}
	})
}

func TestCompleteFrom(t *testing.T) {
	newQuadrantEngine := func(t *testing.T) engine.Engine {
		t.Helper()
		eng, err := engine.NewEngine(&engine.PuzzleConfig{
			Name:        "Quadrants",
			Description: "Four 2x2 quadrants",
			Width:       4,
			Height:      4,
			Layout:      []string{"4.4.", "....", "4.4.", "...."},
			Messages:    engine.DefaultMessages(),
		})
		if err != nil {
			t.Fatalf("Failed to create engine: %v", err)
		}
		return eng
	}

	t.Run("completes a partial board", func(t *testing.T) {
		eng := newQuadrantEngine(t)
		if _, err := eng.PlaceRect(engine.Point{X: 0, Y: 0}, engine.Point{X: 1, Y: 1}); err != nil {
			t.Fatalf("Placement failed: %v", err)
		}

		added, ok := CompleteFrom(eng.GetState())
		if !ok {
			t.Fatal("Expected a completion")
		}
		if len(added) != 3 {
			t.Fatalf("Expected 3 added rects, got %d", len(added))
		}

		state := eng.GetState()
		all := append(append([]engine.Rect(nil), state.Rects...), added...)
		checkPartition(t, state.Width, state.Height, state.Clues, all)
	})

	t.Run("solved board needs nothing", func(t *testing.T) {
		eng := newQuadrantEngine(t)
		for _, q := range []engine.Rect{
			engine.NewRect(engine.Point{X: 0, Y: 0}, engine.Point{X: 1, Y: 1}),
			engine.NewRect(engine.Point{X: 2, Y: 0}, engine.Point{X: 3, Y: 1}),
			engine.NewRect(engine.Point{X: 0, Y: 2}, engine.Point{X: 1, Y: 3}),
			engine.NewRect(engine.Point{X: 2, Y: 2}, engine.Point{X: 3, Y: 3}),
		} {
			if _, err := eng.PlaceRect(q.Min, q.Max); err != nil {
				t.Fatalf("Placement %v failed: %v", q, err)
			}
		}

		added, ok := CompleteFrom(eng.GetState())
		if !ok {
			t.Error("Expected solved board to be trivially completable")
		}
		if len(added) != 0 {
			t.Errorf("Expected no added rects, got %d", len(added))
		}
	})

	t.Run("detects a dead position", func(t *testing.T) {
		eng := newQuadrantEngine(t)
		// Legal commit that strands the top-left clue: the shifted
		// square takes (0,1) and (1,1), killing every candidate for
		// the clue at (0,0)
		if _, err := eng.PlaceRect(engine.Point{X: 0, Y: 1}, engine.Point{X: 1, Y: 2}); err != nil {
			t.Fatalf("Placement failed: %v", err)
		}

		if _, ok := CompleteFrom(eng.GetState()); ok {
			t.Error("Expected no completion from a dead position")
		}
	})
}
