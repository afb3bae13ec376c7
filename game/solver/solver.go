// Package solver enumerates rectangle partitions for clue layouts. The
// generator uses it to verify a puzzle has exactly one solution, the
// service uses it for hints and reachability checks, and the validate
// tool uses it to vet shipped configs.
package solver

import (
	"math/bits"
	"sort"

	"github.com/shikaku-go/shikaku/game/engine"
)

// Candidates returns every rectangle that can satisfy the clue: matching
// area, inside the grid, containing the clue cell and no other clue.
// The clue set must include the target itself.
func Candidates(width, height int, clues []engine.Clue, target engine.Clue) []engine.Rect {
	var out []engine.Rect
	for w := 1; w <= width && w <= target.Area; w++ {
		if target.Area%w != 0 {
			continue
		}
		h := target.Area / w
		if h > height {
			continue
		}

		minX := max(0, target.Pos.X-w+1)
		maxX := min(target.Pos.X, width-w)
		minY := max(0, target.Pos.Y-h+1)
		maxY := min(target.Pos.Y, height-h)

		for y0 := minY; y0 <= maxY; y0++ {
			for x0 := minX; x0 <= maxX; x0++ {
				r := engine.NewRect(
					engine.Point{X: x0, Y: y0},
					engine.Point{X: x0 + w - 1, Y: y0 + h - 1},
				)
				if _, n := engine.CluesInRect(clues, r); n != 1 {
					continue
				}
				out = append(out, r)
			}
		}
	}
	return out
}

// Count counts complete partitions of the grid, stopping once limit
// solutions are found. A limit of 0 or less counts exhaustively. Counting
// with limit 2 is how ambiguity is detected.
func Count(width, height int, clues []engine.Clue, limit int) int {
	s, viable := newSearch(width, height, clues, nil, limit, false)
	if !viable {
		return 0
	}
	s.run()
	return s.count
}

// Solve returns one complete partition of the grid, or false when the
// layout has no solution.
func Solve(width, height int, clues []engine.Clue) ([]engine.Rect, bool) {
	s, viable := newSearch(width, height, clues, nil, 1, true)
	if !viable {
		return nil, false
	}
	s.run()
	if s.count == 0 {
		return nil, false
	}
	return s.first, true
}

// CompleteFrom extends a board's committed rectangles to a full partition
// and returns only the added rectangles. The committed set is taken as
// given; clues already inside a committed rectangle are treated as
// satisfied. ok is false when no completion exists.
func CompleteFrom(state *engine.BoardState) ([]engine.Rect, bool) {
	open := make([]engine.Clue, 0, len(state.Clues))
	for _, c := range state.Clues {
		covered := false
		for _, r := range state.Rects {
			if r.Contains(c.Pos) {
				covered = true
				break
			}
		}
		if !covered {
			open = append(open, c)
		}
	}

	s, viable := newSearch(state.Width, state.Height, open, state.Rects, 1, true)
	if !viable {
		return nil, false
	}
	s.run()
	if s.count == 0 {
		return nil, false
	}
	return s.first, true
}

// candidate is one viable rectangle for a clue together with its cell mask
type candidate struct {
	rect engine.Rect
	mask []uint64
}

// search is a backtracking exact-cover walk over clue candidates. Cells
// are tracked in a bitset; clues are visited fewest-candidates-first.
type search struct {
	words  []uint64
	order  []int
	cands  [][]candidate
	limit  int
	count  int
	record bool
	first  []engine.Rect
	stack  []engine.Rect
}

// newSearch prepares the candidate lists and occupancy for a walk.
// viable is false when a cheap check already proves zero solutions:
// a clue without candidates, clue areas not matching the free cell
// count, or a free cell no candidate can ever cover.
func newSearch(width, height int, clues []engine.Clue, committed []engine.Rect, limit int, record bool) (*search, bool) {
	cells := width * height
	nwords := (cells + 63) / 64

	s := &search{
		words:  make([]uint64, nwords),
		cands:  make([][]candidate, len(clues)),
		limit:  limit,
		record: record,
	}
	for _, r := range committed {
		setBits(s.words, rectMask(width, nwords, r))
	}

	free := cells - countBits(s.words)
	if engine.ClueAreaSum(clues) != free {
		return nil, false
	}

	reachable := make([]uint64, nwords)
	for i, c := range clues {
		for _, r := range Candidates(width, height, clues, c) {
			m := rectMask(width, nwords, r)
			if overlapsBits(s.words, m) {
				continue
			}
			s.cands[i] = append(s.cands[i], candidate{rect: r, mask: m})
			setBits(reachable, m)
		}
		if len(s.cands[i]) == 0 {
			return nil, false
		}
	}

	// Every free cell must be coverable by at least one candidate
	setBits(reachable, s.words)
	if countBits(reachable) != cells {
		return nil, false
	}

	s.order = make([]int, len(clues))
	for i := range s.order {
		s.order[i] = i
	}
	sort.SliceStable(s.order, func(a, b int) bool {
		return len(s.cands[s.order[a]]) < len(s.cands[s.order[b]])
	})
	return s, true
}

func (s *search) run() {
	s.dfs(0)
}

// dfs returns false once the solution limit is reached, unwinding the walk
func (s *search) dfs(depth int) bool {
	if depth == len(s.order) {
		s.count++
		if s.record && s.count == 1 {
			s.first = append([]engine.Rect(nil), s.stack...)
		}
		return s.limit <= 0 || s.count < s.limit
	}

	for _, c := range s.cands[s.order[depth]] {
		if overlapsBits(s.words, c.mask) {
			continue
		}
		setBits(s.words, c.mask)
		s.stack = append(s.stack, c.rect)

		cont := s.dfs(depth + 1)

		s.stack = s.stack[:len(s.stack)-1]
		clearBits(s.words, c.mask)
		if !cont {
			return false
		}
	}
	return true
}

func rectMask(width, nwords int, r engine.Rect) []uint64 {
	m := make([]uint64, nwords)
	for y := r.Min.Y; y <= r.Max.Y; y++ {
		row := y * width
		for x := r.Min.X; x <= r.Max.X; x++ {
			i := row + x
			m[i/64] |= 1 << (i % 64)
		}
	}
	return m
}

func overlapsBits(a, b []uint64) bool {
	for i := range a {
		if a[i]&b[i] != 0 {
			return true
		}
	}
	return false
}

func setBits(dst, m []uint64) {
	for i := range m {
		dst[i] |= m[i]
	}
}

func clearBits(dst, m []uint64) {
	for i := range m {
		dst[i] &^= m[i]
	}
}

func countBits(m []uint64) int {
	n := 0
	for _, w := range m {
		n += bits.OnesCount64(w)
	}
	return n
}
