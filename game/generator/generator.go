// Package generator produces solvable puzzle configurations by tiling the
// grid with random rectangles and dropping one clue inside each. Layouts
// are checked for a unique solution before they are returned.
package generator

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/shikaku-go/shikaku/game/engine"
	"github.com/shikaku-go/shikaku/game/solver"
)

const (
	// DefaultMaxAreaFraction caps a single rectangle at this share of the
	// grid, keeping puzzles from degenerating into a few huge blocks
	DefaultMaxAreaFraction = 0.15

	// DefaultMaxAttempts bounds the tile-and-verify loop
	DefaultMaxAttempts = 200
)

// ErrGenerationFailed is returned when no acceptable puzzle was produced
// within the attempt budget
var ErrGenerationFailed = errors.New("puzzle generation failed")

// Options control puzzle generation. Zero values select defaults: the
// default grid size, DefaultMaxAreaFraction, DefaultMaxAttempts, and a
// time-based seed. Generated puzzles are verified to have exactly one
// solution unless AllowAmbiguous is set.
type Options struct {
	Width           int
	Height          int
	MaxAreaFraction float64
	MaxAttempts     int
	Seed            int64
	AllowAmbiguous  bool
}

func (o Options) withDefaults() Options {
	if o.Width == 0 {
		o.Width = engine.DefaultGridWidth
	}
	if o.Height == 0 {
		o.Height = engine.DefaultGridHeight
	}
	if o.MaxAreaFraction == 0 {
		o.MaxAreaFraction = DefaultMaxAreaFraction
	}
	if o.MaxAttempts == 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	return o
}

// Generate produces a validated puzzle configuration. Each attempt tiles
// the grid, merges away 1x1 rectangles, places clues, and runs the solver
// with a solution cap of 2 to reject ambiguous layouts. The same seed
// with the same options reproduces the same puzzle.
func Generate(opts Options) (*engine.PuzzleConfig, error) {
	opts = opts.withDefaults()
	if opts.Width < engine.MinGridSize || opts.Width > engine.MaxGridSize {
		return nil, fmt.Errorf("generate: width must be between %d and %d, got %d",
			engine.MinGridSize, engine.MaxGridSize, opts.Width)
	}
	if opts.Height < engine.MinGridSize || opts.Height > engine.MaxGridSize {
		return nil, fmt.Errorf("generate: height must be between %d and %d, got %d",
			engine.MinGridSize, engine.MaxGridSize, opts.Height)
	}

	maxArea := int(float64(opts.Width*opts.Height) * opts.MaxAreaFraction)
	if maxArea < 2 {
		maxArea = 2
	}
	if maxArea > engine.MaxClueArea {
		maxArea = engine.MaxClueArea
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		rects := tile(rng, opts.Width, opts.Height, maxArea)
		rects, ok := absorbUnitRects(opts.Width, opts.Height, rects)
		if !ok {
			continue
		}

		clues := placeClues(rng, rects)
		if !opts.AllowAmbiguous && solver.Count(opts.Width, opts.Height, clues, 2) != 1 {
			continue
		}

		layout, err := engine.FormatLayout(opts.Width, opts.Height, clues)
		if err != nil {
			continue
		}
		config := &engine.PuzzleConfig{
			Name:         fmt.Sprintf("Generated %dx%d", opts.Width, opts.Height),
			Description:  fmt.Sprintf("Randomly generated puzzle (seed %d)", opts.Seed),
			Width:        opts.Width,
			Height:       opts.Height,
			Layout:       layout,
			AutoComplete: true,
			Messages:     engine.DefaultMessages(),
		}
		if err := engine.ValidatePuzzleConfig(config); err != nil {
			continue
		}
		return config, nil
	}
	return nil, fmt.Errorf("no acceptable layout in %d attempts: %w", opts.MaxAttempts, ErrGenerationFailed)
}

// tile covers the grid with random rectangles. Each round picks a random
// free cell, measures the free horizontal span around it, cuts a random
// width from the span, then does the same vertically across the chosen
// columns with the height capped by maxArea. Rectangles of area 1 are
// possible and dealt with afterwards.
func tile(rng *rand.Rand, width, height, maxArea int) []engine.Rect {
	occupied := make([]bool, width*height)
	free := width * height
	var rects []engine.Rect

	for free > 0 {
		x, y := pickFreeCell(rng, occupied, free, width)

		left, right := x, x
		for left > 0 && !occupied[y*width+left-1] {
			left--
		}
		for right < width-1 && !occupied[y*width+right+1] {
			right++
		}

		w := 1 + rng.Intn(min(right-left+1, maxArea))
		x0 := randBetween(rng, max(left, x-w+1), min(x, right-w+1))

		top, bottom := y, y
		for top > 0 && colsFree(occupied, width, x0, w, top-1) {
			top--
		}
		for bottom < height-1 && colsFree(occupied, width, x0, w, bottom+1) {
			bottom++
		}

		h := 1 + rng.Intn(min(bottom-top+1, maxArea/w))
		y0 := randBetween(rng, max(top, y-h+1), min(y, bottom-h+1))

		r := engine.NewRect(
			engine.Point{X: x0, Y: y0},
			engine.Point{X: x0 + w - 1, Y: y0 + h - 1},
		)
		for yy := r.Min.Y; yy <= r.Max.Y; yy++ {
			for xx := r.Min.X; xx <= r.Max.X; xx++ {
				occupied[yy*width+xx] = true
			}
		}
		free -= r.Area()
		rects = append(rects, r)
	}
	return rects
}

// pickFreeCell returns the coordinates of a uniformly random unoccupied cell
func pickFreeCell(rng *rand.Rand, occupied []bool, free, width int) (int, int) {
	n := rng.Intn(free)
	for i, occ := range occupied {
		if occ {
			continue
		}
		if n == 0 {
			return i % width, i / width
		}
		n--
	}
	panic("free cell count out of sync")
}

// colsFree reports whether row y is unoccupied across columns x0..x0+w-1
func colsFree(occupied []bool, width, x0, w, y int) bool {
	row := y * width
	for x := x0; x < x0+w; x++ {
		if occupied[row+x] {
			return false
		}
	}
	return true
}

func randBetween(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// absorbUnitRects merges every 1x1 rectangle into an adjacent single-row
// or single-column neighbour. A 1x1 with no such neighbour is a dead
// tiling; the caller retries from scratch.
func absorbUnitRects(width, height int, rects []engine.Rect) ([]engine.Rect, bool) {
	rectAt := func(p engine.Point) int {
		for j, r := range rects {
			if r.Contains(p) {
				return j
			}
		}
		return -1
	}

	for {
		unit := -1
		for i, r := range rects {
			if r.Area() == 1 {
				unit = i
				break
			}
		}
		if unit == -1 {
			return rects, true
		}

		x, y := rects[unit].Min.X, rects[unit].Min.Y
		merged := false

		// A same-row neighbour of height 1 stretches sideways to absorb
		for _, nx := range []int{x - 1, x + 1} {
			if nx < 0 || nx >= width {
				continue
			}
			j := rectAt(engine.Point{X: nx, Y: y})
			if j < 0 {
				continue
			}
			nr := rects[j]
			if nr.Min.Y == y && nr.Max.Y == y && nr.Area()+1 <= engine.MaxClueArea {
				rects[j] = engine.NewRect(
					engine.Point{X: min(nr.Min.X, x), Y: y},
					engine.Point{X: max(nr.Max.X, x), Y: y},
				)
				merged = true
				break
			}
		}
		// Otherwise a same-column neighbour of width 1 stretches down or up
		if !merged {
			for _, ny := range []int{y - 1, y + 1} {
				if ny < 0 || ny >= height {
					continue
				}
				j := rectAt(engine.Point{X: x, Y: ny})
				if j < 0 {
					continue
				}
				nr := rects[j]
				if nr.Min.X == x && nr.Max.X == x && nr.Area()+1 <= engine.MaxClueArea {
					rects[j] = engine.NewRect(
						engine.Point{X: x, Y: min(nr.Min.Y, y)},
						engine.Point{X: x, Y: max(nr.Max.Y, y)},
					)
					merged = true
					break
				}
			}
		}
		if !merged {
			return nil, false
		}
		rects = append(rects[:unit], rects[unit+1:]...)
	}
}

// placeClues drops one clue at a random cell inside each rectangle
func placeClues(rng *rand.Rand, rects []engine.Rect) []engine.Clue {
	clues := make([]engine.Clue, len(rects))
	for i, r := range rects {
		w := r.Max.X - r.Min.X + 1
		h := r.Max.Y - r.Min.Y + 1
		clues[i] = engine.Clue{
			Pos: engine.Point{
				X: r.Min.X + rng.Intn(w),
				Y: r.Min.Y + rng.Intn(h),
			},
			Area: r.Area(),
		}
	}
	return clues
}
