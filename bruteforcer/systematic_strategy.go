package main

import (
	"fmt"
	"log"
	"math/rand"
	"time"
)

// ActionKind classifies what the strategy wants to do next
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionPlace
	ActionDelete
	ActionRestart
)

// Action is a single step the main loop executes against the API
type Action struct {
	Kind ActionKind
	A, B Point // corners for ActionPlace
	At   Point // cell for ActionDelete
}

// guessFrame records a non-forced placement so it can be undone when the
// position runs into a contradiction. rectCount is the number of
// committed rectangles before the guess landed: the guess sits at that
// index, and everything after it was placed under the guess.
type guessFrame struct {
	clueKey   string
	rect      Rect
	rectCount int
}

// SystematicStrategy solves the puzzle through the API by constraint
// propagation: place every clue whose rectangle is forced, guess the
// clue with the fewest candidates when nothing is forced, and backtrack
// by deleting rectangles when a clue has no candidate left.
type SystematicStrategy struct {
	width  int
	height int
	clues  []Clue
	rng    *rand.Rand

	// Backtracking state
	guesses        []guessFrame
	tried          map[string]map[string]bool // clue key -> rect key -> exhausted
	pendingDeletes []Point                    // backtrack deletions still to issue

	// Stuck detection
	lastCovered int
	stuckCount  int
}

func NewSystematicStrategy(state *BoardState, seed int64) *SystematicStrategy {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &SystematicStrategy{
		width:  state.Width,
		height: state.Height,
		clues:  append([]Clue(nil), state.Clues...),
		rng:    rand.New(rand.NewSource(seed)),
		tried:  make(map[string]map[string]bool),
	}

	log.Printf("📊 Systematic Strategy: %d clues on %dx%d grid", len(s.clues), s.width, s.height)

	// Report the initial branching so hopeless puzzles are visible early
	covered := buildCovered(state)
	totalCands := 0
	for _, clue := range s.clues {
		totalCands += len(s.candidatesFor(clue, covered))
	}
	log.Printf("📋 Initial candidates: %d across all clues (avg %.1f)",
		totalCands, float64(totalCands)/float64(len(s.clues)))

	return s
}

// GuessDepth reports how many guesses are currently on the stack
func (s *SystematicStrategy) GuessDepth() int {
	return len(s.guesses)
}

// NextAction decides the next API call from the current board
func (s *SystematicStrategy) NextAction(state *BoardState) Action {
	if state.Solved {
		return Action{Kind: ActionNone}
	}

	// Finish a backtrack in progress before planning anything new
	if len(s.pendingDeletes) > 0 {
		at := s.pendingDeletes[0]
		s.pendingDeletes = s.pendingDeletes[1:]
		return Action{Kind: ActionDelete, At: at}
	}

	s.reconcileGuesses(state)

	// Stuck detection: coverage not moving for a long stretch means the
	// tried set and the board disagree beyond repair for this attempt
	cov := state.coveredCells()
	if cov == s.lastCovered {
		s.stuckCount++
		if s.stuckCount > 200 {
			log.Printf("⚠️  No coverage change for %d actions", s.stuckCount)
			return Action{Kind: ActionRestart}
		}
	} else {
		s.lastCovered = cov
		s.stuckCount = 0
	}

	covered := buildCovered(state)

	// Scan uncovered clues: play a forced one immediately, remember the
	// tightest branching for the guess below, backtrack on a dead clue
	var bestClue Clue
	var bestCands []Rect
	sawUncovered := false

	for _, clue := range s.clues {
		if covered[clue.Pos.Y][clue.Pos.X] {
			continue
		}
		sawUncovered = true

		cands := s.candidatesFor(clue, covered)
		if len(cands) == 0 {
			return s.backtrack(state, clue)
		}
		if len(cands) == 1 {
			r := cands[0]
			return Action{Kind: ActionPlace, A: r.Min, B: r.Max}
		}
		if bestCands == nil || len(cands) < len(bestCands) {
			bestClue = clue
			bestCands = cands
		}
	}

	if !sawUncovered {
		// Every clue covered yet not solved should be impossible, since
		// clue areas sum to the grid area. Treat it as a dead end.
		return Action{Kind: ActionRestart}
	}

	// Guess: random candidate of the most constrained clue
	clue := bestClue
	r := bestCands[s.rng.Intn(len(bestCands))]
	s.guesses = append(s.guesses, guessFrame{
		clueKey:   clueKey(clue),
		rect:      r,
		rectCount: len(state.Rects),
	})
	log.Printf("🎲 Guess %d: clue %d at (%d,%d), trying %dx%d of %d options",
		len(s.guesses), clue.Area, clue.Pos.X, clue.Pos.Y,
		r.width(), r.height(), len(bestCands))

	return Action{Kind: ActionPlace, A: r.Min, B: r.Max}
}

// PlanForced simulates the board locally and returns up to max forced
// placements (clues with exactly one candidate) for a single bulk call
func (s *SystematicStrategy) PlanForced(state *BoardState, max int) []RectSpec {
	if state.Solved || len(s.pendingDeletes) > 0 {
		return nil
	}

	covered := buildCovered(state)
	var specs []RectSpec

	for len(specs) < max {
		found := false
		for _, clue := range s.clues {
			if covered[clue.Pos.Y][clue.Pos.X] {
				continue
			}

			cands := s.candidatesFor(clue, covered)
			if len(cands) == 0 {
				// Contradiction: stop planning, NextAction backtracks
				return specs
			}
			if len(cands) != 1 {
				continue
			}

			r := cands[0]
			specs = append(specs, RectSpec{A: r.Min, B: r.Max})
			paintCovered(covered, r)
			found = true
			break // Coverage changed, rescan from the first clue
		}
		if !found {
			break
		}
	}

	return specs
}

// backtrack undoes the most recent guess: everything placed at or after
// it gets deleted, newest first, and the guess is marked exhausted so
// the next pass picks a different candidate.
func (s *SystematicStrategy) backtrack(state *BoardState, blocked Clue) Action {
	log.Printf("🔙 Clue %d at (%d,%d) has no candidates left",
		blocked.Area, blocked.Pos.X, blocked.Pos.Y)

	if len(s.guesses) == 0 {
		log.Printf("❌ Nothing to undo")
		return Action{Kind: ActionRestart}
	}

	frame := s.guesses[len(s.guesses)-1]
	s.guesses = s.guesses[:len(s.guesses)-1]
	s.markTried(frame.clueKey, frame.rect)

	var cells []Point
	for i := len(state.Rects) - 1; i >= frame.rectCount && i >= 0; i-- {
		cells = append(cells, state.Rects[i].Min)
	}

	if len(cells) == 0 {
		// The guess never landed on the board; nothing to delete
		return s.NextAction(state)
	}

	log.Printf("🔙 Undoing guess %d: removing %d rect(s)", len(s.guesses)+1, len(cells))
	s.pendingDeletes = cells[1:]
	return Action{Kind: ActionDelete, At: cells[0]}
}

// reconcileGuesses drops stack frames that no longer match the board,
// which happens when a guessed placement was rejected by the server or
// a rectangle was deleted outside our control
func (s *SystematicStrategy) reconcileGuesses(state *BoardState) {
	for len(s.guesses) > 0 {
		top := s.guesses[len(s.guesses)-1]
		if top.rectCount < len(state.Rects) && state.Rects[top.rectCount] == top.rect {
			return
		}
		s.guesses = s.guesses[:len(s.guesses)-1]
		s.markTried(top.clueKey, top.rect)
	}
}

// candidatesFor enumerates every rectangle of the clue's area that
// contains the clue, stays in bounds, avoids covered cells, contains no
// other clue, and has not been exhausted by backtracking
func (s *SystematicStrategy) candidatesFor(clue Clue, covered [][]bool) []Rect {
	var cands []Rect
	key := clueKey(clue)

	for h := 1; h <= clue.Area; h++ {
		if clue.Area%h != 0 || h > s.height {
			continue
		}
		w := clue.Area / h
		if w > s.width {
			continue
		}

		for y0 := clue.Pos.Y - h + 1; y0 <= clue.Pos.Y; y0++ {
			if y0 < 0 || y0+h-1 >= s.height {
				continue
			}
			for x0 := clue.Pos.X - w + 1; x0 <= clue.Pos.X; x0++ {
				if x0 < 0 || x0+w-1 >= s.width {
					continue
				}

				r := Rect{Min: Point{X: x0, Y: y0}, Max: Point{X: x0 + w - 1, Y: y0 + h - 1}}
				if s.tried[key][rectKey(r)] {
					continue
				}
				if !rectFree(r, covered) {
					continue
				}
				if s.countCluesIn(r) != 1 {
					continue
				}

				cands = append(cands, r)
			}
		}
	}

	return cands
}

// countCluesIn counts how many clues fall inside the rectangle
func (s *SystematicStrategy) countCluesIn(r Rect) int {
	count := 0
	for _, clue := range s.clues {
		if r.contains(clue.Pos) {
			count++
		}
	}
	return count
}

func (s *SystematicStrategy) markTried(clueK string, r Rect) {
	if s.tried[clueK] == nil {
		s.tried[clueK] = make(map[string]bool)
	}
	s.tried[clueK][rectKey(r)] = true
}

// Reset clears all search state for a fresh attempt. The RNG keeps
// advancing, so the next attempt explores different guesses.
func (s *SystematicStrategy) Reset() {
	s.guesses = nil
	s.pendingDeletes = nil
	s.tried = make(map[string]map[string]bool)
	s.lastCovered = 0
	s.stuckCount = 0
}

// buildCovered maps each cell to whether a committed rectangle covers it
func buildCovered(state *BoardState) [][]bool {
	covered := make([][]bool, state.Height)
	for y := range covered {
		covered[y] = make([]bool, state.Width)
	}
	for _, r := range state.Rects {
		paintCovered(covered, r)
	}
	return covered
}

func paintCovered(covered [][]bool, r Rect) {
	for y := r.Min.Y; y <= r.Max.Y; y++ {
		for x := r.Min.X; x <= r.Max.X; x++ {
			covered[y][x] = true
		}
	}
}

func rectFree(r Rect, covered [][]bool) bool {
	for y := r.Min.Y; y <= r.Max.Y; y++ {
		for x := r.Min.X; x <= r.Max.X; x++ {
			if covered[y][x] {
				return false
			}
		}
	}
	return true
}

func clueKey(c Clue) string {
	return fmt.Sprintf("%d,%d", c.Pos.X, c.Pos.Y)
}

func rectKey(r Rect) string {
	return fmt.Sprintf("%d,%d-%d,%d", r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
}
