package engine

import "fmt"

// CluesInRect returns the first clue inside r and the total count of
// clues r contains
func CluesInRect(clues []Clue, r Rect) (Clue, int) {
	var first Clue
	count := 0
	for _, c := range clues {
		if r.Contains(c.Pos) {
			if count == 0 {
				first = c
			}
			count++
		}
	}
	return first, count
}

// ClueAreaSum totals the areas of a clue set
func ClueAreaSum(clues []Clue) int {
	sum := 0
	for _, c := range clues {
		sum += c.Area
	}
	return sum
}

// AreaHistogram counts clues by area value
func AreaHistogram(clues []Clue) map[int]int {
	hist := make(map[int]int)
	for _, c := range clues {
		hist[c.Area]++
	}
	return hist
}

// ManhattanDistance calculates the Manhattan distance between two cells
func ManhattanDistance(from, to Point) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// UncoveredClues returns the clues not yet inside any committed
// rectangle. A clue's own cell being covered means the covering
// rectangle's single clue is that clue.
func UncoveredClues(state *BoardState) []Clue {
	var open []Clue
	for _, c := range state.Clues {
		if _, covered := state.RectAtCell(c.Pos); !covered {
			open = append(open, c)
		}
	}
	return open
}

// FindNearestUncoveredClue finds the closest unsatisfied clue and returns
// its position and distance
func FindNearestUncoveredClue(state *BoardState, from Point) (Point, int, bool) {
	minDistance := -1
	var nearestPos Point
	found := false

	for _, c := range UncoveredClues(state) {
		distance := ManhattanDistance(from, c.Pos)
		if minDistance == -1 || distance < minDistance {
			minDistance = distance
			nearestPos = c.Pos
			found = true
		}
	}

	return nearestPos, minDistance, found
}

// DescribeProgress summarizes how far along the board is
func DescribeProgress(state *BoardState) string {
	total := state.Width * state.Height
	covered := state.CoveredCells()
	open := len(UncoveredClues(state))

	switch {
	case state.Solved:
		return fmt.Sprintf("SOLVED: all %d rectangles placed", len(state.Rects))
	case covered == 0:
		return fmt.Sprintf("EMPTY: %d clues open, nothing placed yet", open)
	case open == 1:
		return fmt.Sprintf("ALMOST: one clue left, %d/%d cells covered", covered, total)
	case covered*2 >= total:
		return fmt.Sprintf("PAST HALFWAY: %d clues left, %d/%d cells covered", open, covered, total)
	}
	return fmt.Sprintf("EARLY: %d clues left, %d/%d cells covered", open, covered, total)
}
