package engine

import (
	"errors"
	"strings"
	"testing"
)

func TestValidationConstants(t *testing.T) {
	tests := []struct {
		name     string
		actual   int
		expected int
	}{
		{"MinGridSize", MinGridSize, 2},
		{"MaxGridSize", MaxGridSize, 50},
		{"MaxClueArea", MaxClueArea, 61},
		{"MaxBulkPlacements", MaxBulkPlacements, 50},
		{"WebSocketBufferSize", WebSocketBufferSize, 256},
	}

	for _, test := range tests {
		if test.actual != test.expected {
			t.Errorf("%s: expected %d, got %d", test.name, test.expected, test.actual)
		}
	}
}

func TestNewRectNormalizes(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		min  Point
		max  Point
	}{
		{"already ordered", Point{1, 2}, Point{3, 4}, Point{1, 2}, Point{3, 4}},
		{"swapped corners", Point{3, 4}, Point{1, 2}, Point{1, 2}, Point{3, 4}},
		{"mixed x", Point{3, 1}, Point{0, 2}, Point{0, 1}, Point{3, 2}},
		{"mixed y", Point{0, 5}, Point{2, 0}, Point{0, 0}, Point{2, 5}},
		{"single cell", Point{2, 2}, Point{2, 2}, Point{2, 2}, Point{2, 2}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := NewRect(test.a, test.b)
			if r.Min != test.min || r.Max != test.max {
				t.Errorf("NewRect(%v, %v) = %v, expected min %v max %v",
					test.a, test.b, r, test.min, test.max)
			}
		})
	}
}

func TestRectGeometry(t *testing.T) {
	r := NewRect(Point{1, 2}, Point{4, 3})

	if r.Width() != 4 {
		t.Errorf("Expected width 4, got %d", r.Width())
	}
	if r.Height() != 2 {
		t.Errorf("Expected height 2, got %d", r.Height())
	}
	if r.Area() != 8 {
		t.Errorf("Expected area 8, got %d", r.Area())
	}

	single := NewRect(Point{0, 0}, Point{0, 0})
	if single.Area() != 1 {
		t.Errorf("Expected single cell area 1, got %d", single.Area())
	}
}

func TestRectContains(t *testing.T) {
	r := NewRect(Point{1, 1}, Point{3, 2})

	tests := []struct {
		p        Point
		expected bool
	}{
		{Point{1, 1}, true},
		{Point{3, 2}, true},
		{Point{2, 1}, true},
		{Point{0, 1}, false},
		{Point{4, 2}, false},
		{Point{2, 0}, false},
		{Point{2, 3}, false},
	}

	for _, test := range tests {
		if got := r.Contains(test.p); got != test.expected {
			t.Errorf("Contains(%v): expected %v, got %v", test.p, test.expected, got)
		}
	}
}

func TestRectIntersects(t *testing.T) {
	base := NewRect(Point{2, 2}, Point{4, 4})

	tests := []struct {
		name     string
		other    Rect
		expected bool
	}{
		{"identical", NewRect(Point{2, 2}, Point{4, 4}), true},
		{"contained", NewRect(Point{3, 3}, Point{3, 3}), true},
		{"corner overlap", NewRect(Point{4, 4}, Point{6, 6}), true},
		{"edge adjacent right", NewRect(Point{5, 2}, Point{6, 4}), false},
		{"edge adjacent below", NewRect(Point{2, 5}, Point{4, 6}), false},
		{"disjoint", NewRect(Point{6, 6}, Point{8, 8}), false},
		{"spanning row", NewRect(Point{0, 3}, Point{9, 3}), true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := base.Intersects(test.other); got != test.expected {
				t.Errorf("Intersects(%v): expected %v, got %v", test.other, test.expected, got)
			}
			// Intersection is symmetric
			if got := test.other.Intersects(base); got != test.expected {
				t.Errorf("reverse Intersects(%v): expected %v, got %v", test.other, test.expected, got)
			}
		})
	}
}

func TestActiveRectBounds(t *testing.T) {
	active := ActiveRect{Anchor: Point{3, 3}, Moving: Point{1, 0}}
	bounds := active.Bounds()

	if bounds.Min != (Point{1, 0}) || bounds.Max != (Point{3, 3}) {
		t.Errorf("Expected bounds (1,0)-(3,3), got %v", bounds)
	}
	if bounds.Area() != 12 {
		t.Errorf("Expected area 12, got %d", bounds.Area())
	}
}

func TestClueCharRoundTrip(t *testing.T) {
	for area := 1; area <= MaxClueArea; area++ {
		c, ok := ClueChar(area)
		if !ok {
			t.Fatalf("ClueChar(%d) unexpectedly failed", area)
		}
		parsed, ok := ParseClueChar(c)
		if !ok {
			t.Fatalf("ParseClueChar('%c') unexpectedly failed", c)
		}
		if parsed != area {
			t.Errorf("Round trip for %d gave %d via '%c'", area, parsed, c)
		}
	}

	// Spot-check the encoding boundaries
	spots := []struct {
		area int
		char byte
	}{
		{1, '1'},
		{9, '9'},
		{10, 'a'},
		{35, 'z'},
		{36, 'A'},
		{61, 'Z'},
	}
	for _, spot := range spots {
		c, ok := ClueChar(spot.area)
		if !ok || c != spot.char {
			t.Errorf("ClueChar(%d): expected '%c', got '%c' (ok=%v)", spot.area, spot.char, c, ok)
		}
	}
}

func TestClueCharRejectsOutOfRange(t *testing.T) {
	for _, area := range []int{-1, 0, 62, 100} {
		if _, ok := ClueChar(area); ok {
			t.Errorf("ClueChar(%d) should fail", area)
		}
	}
}

func TestParseClueCharRejectsGarbage(t *testing.T) {
	for _, c := range []byte{'.', '0', ' ', '@', '[', '`', '{', '-'} {
		if _, ok := ParseClueChar(c); ok {
			t.Errorf("ParseClueChar('%c') should fail", c)
		}
	}
}

func TestPlacementError(t *testing.T) {
	tests := []struct {
		name     string
		err      *PlacementError
		contains string
	}{
		{
			"overlap",
			&PlacementError{Reason: ReasonOverlap, Rect: NewRect(Point{0, 0}, Point{1, 1})},
			"overlaps",
		},
		{
			"no clue",
			&PlacementError{Reason: ReasonNoClue, Rect: NewRect(Point{0, 0}, Point{1, 1})},
			"no clue",
		},
		{
			"multiple clues",
			&PlacementError{Reason: ReasonMultipleClues, Rect: NewRect(Point{0, 0}, Point{1, 1}), ClueCount: 3},
			"3 clues",
		},
		{
			"area mismatch",
			&PlacementError{Reason: ReasonAreaMismatch, Rect: NewRect(Point{0, 0}, Point{1, 1}), ClueArea: 6},
			"needs 6",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if !strings.Contains(test.err.Error(), test.contains) {
				t.Errorf("Expected error message containing %q, got %q", test.contains, test.err.Error())
			}
			if !errors.Is(test.err, ErrInvalidPlacement) {
				t.Error("Expected PlacementError to unwrap to ErrInvalidPlacement")
			}
		})
	}
}

func TestCluesInRect(t *testing.T) {
	clues := []Clue{
		{Pos: Point{0, 0}, Area: 4},
		{Pos: Point{2, 0}, Area: 4},
		{Pos: Point{3, 3}, Area: 8},
	}

	first, count := CluesInRect(clues, NewRect(Point{0, 0}, Point{3, 0}))
	if count != 2 {
		t.Errorf("Expected 2 clues in top row, got %d", count)
	}
	if first.Pos != (Point{0, 0}) {
		t.Errorf("Expected first clue at (0,0), got %v", first.Pos)
	}

	_, count = CluesInRect(clues, NewRect(Point{1, 1}, Point{2, 2}))
	if count != 0 {
		t.Errorf("Expected no clues in center, got %d", count)
	}

	first, count = CluesInRect(clues, NewRect(Point{3, 3}, Point{3, 3}))
	if count != 1 || first.Area != 8 {
		t.Errorf("Expected single clue with area 8, got count=%d area=%d", count, first.Area)
	}
}

func TestBoardStateClone(t *testing.T) {
	state, config := createTestBoard()
	state.BeginRect(Point{0, 0})
	state.ResizeRect(Point{1, 1})
	if _, _, err := state.CommitActive(config); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	state.BeginRect(Point{2, 2})

	clone := state.Clone()
	if clone.Active == state.Active {
		t.Error("Expected clone to hold its own active rect pointer")
	}

	// Further play on the original must not show through the copy
	state.ResizeRect(Point{3, 3})
	state.CommitActive(config)
	state.DeleteRectAt(Point{0, 0}, config)

	if len(clone.Rects) != 1 || clone.Rects[0] != NewRect(Point{0, 0}, Point{1, 1}) {
		t.Errorf("Expected clone to keep 1 rect, got %v", clone.Rects)
	}
	if len(clone.History) != 1 {
		t.Errorf("Expected clone history untouched, got %d entries", len(clone.History))
	}
	if clone.Active == nil || clone.Active.Anchor != (Point{2, 2}) {
		t.Errorf("Expected clone to keep its own active rect, got %+v", clone.Active)
	}

	// The derived coverage index travels with the copy
	if clone.CoveredCells() != 4 {
		t.Errorf("Expected clone to report 4 covered cells, got %d", clone.CoveredCells())
	}
	if r, ok := clone.RectAtCell(Point{1, 1}); !ok || r != NewRect(Point{0, 0}, Point{1, 1}) {
		t.Errorf("Expected clone coverage lookup to find the quadrant, got %v (ok=%v)", r, ok)
	}
}
