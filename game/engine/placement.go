package engine

import (
	"fmt"
	"time"
)

// Clamp returns p moved to the nearest in-bounds cell
func (bs *BoardState) Clamp(p Point) Point {
	if p.X < 0 {
		p.X = 0
	}
	if p.X >= bs.Width {
		p.X = bs.Width - 1
	}
	if p.Y < 0 {
		p.Y = 0
	}
	if p.Y >= bs.Height {
		p.Y = bs.Height - 1
	}
	return p
}

// InBounds reports whether p addresses a cell of the grid
func (bs *BoardState) InBounds(p Point) bool {
	return p.X >= 0 && p.X < bs.Width && p.Y >= 0 && p.Y < bs.Height
}

// BeginRect starts a 1x1 in-progress rectangle anchored at the given cell
func (bs *BoardState) BeginRect(at Point) error {
	if bs.Active != nil {
		return fmt.Errorf("begin: rectangle already in progress: %w", ErrInvalidState)
	}
	at = bs.Clamp(at)
	bs.Active = &ActiveRect{Anchor: at, Moving: at}
	return nil
}

// ResizeRect moves the in-progress rectangle's moving corner to the given
// cell, clamped to grid bounds. The anchor corner stays fixed. The resized
// rectangle is allowed to overlap committed rectangles; only commit
// validates.
func (bs *BoardState) ResizeRect(to Point) error {
	if bs.Active == nil {
		return fmt.Errorf("resize: no rectangle in progress: %w", ErrInvalidState)
	}
	bs.Active.Moving = bs.Clamp(to)
	return nil
}

// CancelActive discards the in-progress rectangle without validation
func (bs *BoardState) CancelActive() error {
	if bs.Active == nil {
		return fmt.Errorf("cancel: no rectangle in progress: %w", ErrInvalidState)
	}
	bs.Active = nil
	return nil
}

// AutoFillRect steps the moving corner in the given direction as far as it
// can go without leaving the grid or making the rectangle overlap a
// committed rectangle. Stepping that shrinks the rectangle past the anchor
// is fine; the walk stops before the first violating step.
func (bs *BoardState) AutoFillRect(direction string) error {
	if bs.Active == nil {
		return fmt.Errorf("auto-fill: no rectangle in progress: %w", ErrInvalidState)
	}

	var dx, dy int
	switch direction {
	case DirUp:
		dy = -1
	case DirDown:
		dy = 1
	case DirLeft:
		dx = -1
	case DirRight:
		dx = 1
	default:
		return fmt.Errorf("auto-fill: unknown direction %q", direction)
	}

	for {
		next := Point{X: bs.Active.Moving.X + dx, Y: bs.Active.Moving.Y + dy}
		if !bs.InBounds(next) {
			return nil
		}
		stepped := ActiveRect{Anchor: bs.Active.Anchor, Moving: next}
		if bs.overlapsCommitted(stepped.Bounds()) {
			return nil
		}
		bs.Active.Moving = next
	}
}

// CommitActive validates the in-progress rectangle against the committed
// set and the clues. On success it joins the committed set; on failure a
// *PlacementError describes the violation and committed state is
// untouched. The in-progress rectangle is discarded either way.
func (bs *BoardState) CommitActive(config *PuzzleConfig) (bool, Rect, error) {
	if bs.Active == nil {
		return false, Rect{}, fmt.Errorf("commit: no rectangle in progress: %w", ErrInvalidState)
	}
	r := bs.Active.Bounds()
	bs.Active = nil

	if err := bs.checkPlacement(r); err != nil {
		bs.setRejectionMessage(config, err)
		return false, r, err
	}

	bs.place(r)
	bs.Message = fmt.Sprintf(config.Messages.Placed, r.Area())

	if config.AutoComplete {
		bs.autoComplete(config)
	}

	if bs.coveredCells == bs.Width*bs.Height {
		bs.Solved = true
		bs.Message = fmt.Sprintf(config.Messages.Solved, len(bs.Rects))
	}
	return bs.Solved, r, nil
}

// checkPlacement verifies invariants for a candidate rectangle: no overlap
// with committed rectangles, exactly one clue inside, area equal to that
// clue's value.
func (bs *BoardState) checkPlacement(r Rect) error {
	if bs.overlapsCommitted(r) {
		return &PlacementError{Reason: ReasonOverlap, Rect: r}
	}
	clue, count := CluesInRect(bs.Clues, r)
	if count == 0 {
		return &PlacementError{Reason: ReasonNoClue, Rect: r}
	}
	if count > 1 {
		return &PlacementError{Reason: ReasonMultipleClues, Rect: r, ClueCount: count}
	}
	if r.Area() != clue.Area {
		return &PlacementError{Reason: ReasonAreaMismatch, Rect: r, ClueArea: clue.Area}
	}
	return nil
}

func (bs *BoardState) setRejectionMessage(config *PuzzleConfig, err error) {
	pe, ok := err.(*PlacementError)
	if !ok {
		bs.Message = err.Error()
		return
	}
	switch pe.Reason {
	case ReasonOverlap:
		bs.Message = config.Messages.Overlap
	case ReasonNoClue:
		bs.Message = config.Messages.NoClue
	case ReasonMultipleClues:
		bs.Message = fmt.Sprintf(config.Messages.MultipleClues, pe.ClueCount)
	case ReasonAreaMismatch:
		bs.Message = fmt.Sprintf(config.Messages.AreaMismatch, pe.Rect.Area(), pe.ClueArea)
	}
}

// DeleteRectAt removes the committed rectangle covering the given cell.
// Returns the removed rectangle, or false if no rectangle covers the cell
// (a no-op, not an error). Only valid while no rectangle is in progress.
func (bs *BoardState) DeleteRectAt(at Point, config *PuzzleConfig) (Rect, bool, error) {
	if bs.Active != nil {
		return Rect{}, false, fmt.Errorf("delete: rectangle in progress: %w", ErrInvalidState)
	}
	if !bs.InBounds(at) {
		return Rect{}, false, nil
	}
	idx := bs.covered[at.Y*bs.Width+at.X] - 1
	if idx < 0 {
		return Rect{}, false, nil
	}

	removed := bs.Rects[idx]
	bs.Rects = append(bs.Rects[:idx], bs.Rects[idx+1:]...)
	bs.rebuildCoverage()
	bs.Solved = false
	bs.Message = config.Messages.Deleted
	return removed, true, nil
}

// autoComplete commits every uncovered region that is itself a perfect
// rectangle containing exactly one clue of matching area, repeating until
// no more regions qualify. Regions become eligible as neighbours fill in,
// hence the fixpoint loop.
func (bs *BoardState) autoComplete(config *PuzzleConfig) {
	for {
		r, ok := bs.findCompletableRegion()
		if !ok {
			return
		}
		bs.place(r)
		bs.AddPlacementToHistory(ActionAuto, r, true, "")
		bs.Message = fmt.Sprintf(config.Messages.AutoCompleted, r.Area())
	}
}

// findCompletableRegion scans the uncovered connected regions for one
// whose cells exactly fill their bounding box and whose box holds a
// single clue equal to the region's size
func (bs *BoardState) findCompletableRegion() (Rect, bool) {
	seen := make([]bool, bs.Width*bs.Height)
	for start := 0; start < len(bs.covered); start++ {
		if bs.covered[start] != 0 || seen[start] {
			continue
		}

		// Flood-fill the region starting here, tracking its bounding box
		region := []int{start}
		seen[start] = true
		box := Rect{
			Min: Point{X: start % bs.Width, Y: start / bs.Width},
			Max: Point{X: start % bs.Width, Y: start / bs.Width},
		}
		for i := 0; i < len(region); i++ {
			cell := region[i]
			x, y := cell%bs.Width, cell/bs.Width
			if x < box.Min.X {
				box.Min.X = x
			}
			if x > box.Max.X {
				box.Max.X = x
			}
			if y < box.Min.Y {
				box.Min.Y = y
			}
			if y > box.Max.Y {
				box.Max.Y = y
			}
			for _, n := range [4]Point{{x - 1, y}, {x + 1, y}, {x, y - 1}, {x, y + 1}} {
				if !bs.InBounds(n) {
					continue
				}
				ni := n.Y*bs.Width + n.X
				if bs.covered[ni] == 0 && !seen[ni] {
					seen[ni] = true
					region = append(region, ni)
				}
			}
		}

		if len(region) != box.Area() {
			continue
		}
		clue, count := CluesInRect(bs.Clues, box)
		if count == 1 && clue.Area == len(region) {
			return box, true
		}
	}
	return Rect{}, false
}

// place appends a validated rectangle to the committed set and paints its
// cells in the coverage index
func (bs *BoardState) place(r Rect) {
	bs.Rects = append(bs.Rects, r)
	bs.paint(r, len(bs.Rects))
	bs.coveredCells += r.Area()
}

func (bs *BoardState) paint(r Rect, idx int) {
	for y := r.Min.Y; y <= r.Max.Y; y++ {
		row := y * bs.Width
		for x := r.Min.X; x <= r.Max.X; x++ {
			bs.covered[row+x] = idx
		}
	}
}

// overlapsCommitted reports whether any cell of r is already covered
func (bs *BoardState) overlapsCommitted(r Rect) bool {
	for y := r.Min.Y; y <= r.Max.Y; y++ {
		row := y * bs.Width
		for x := r.Min.X; x <= r.Max.X; x++ {
			if bs.covered[row+x] != 0 {
				return true
			}
		}
	}
	return false
}

// rebuildCoverage recomputes the cell index from the committed set.
// Called after load and after delete, where stored indices go stale.
func (bs *BoardState) rebuildCoverage() {
	bs.covered = make([]int, bs.Width*bs.Height)
	bs.coveredCells = 0
	for i, r := range bs.Rects {
		bs.paint(r, i+1)
		bs.coveredCells += r.Area()
	}
}

// CoveredCells returns how many cells committed rectangles occupy
func (bs *BoardState) CoveredCells() int {
	return bs.coveredCells
}

// RectAtCell returns the committed rectangle covering the given cell
func (bs *BoardState) RectAtCell(at Point) (Rect, bool) {
	if !bs.InBounds(at) {
		return Rect{}, false
	}
	idx := bs.covered[at.Y*bs.Width+at.X] - 1
	if idx < 0 {
		return Rect{}, false
	}
	return bs.Rects[idx], true
}

// ClueAtCell returns the clue sitting on the given cell
func (bs *BoardState) ClueAtCell(at Point) (Clue, bool) {
	for _, c := range bs.Clues {
		if c.Pos == at {
			return c, true
		}
	}
	return Clue{}, false
}

// AddPlacementToHistory appends an action to the game's history
func (bs *BoardState) AddPlacementToHistory(action string, r Rect, success bool, reason string) {
	entry := PlacementEntry{
		Action:      action,
		Rect:        r,
		Success:     success,
		Reason:      reason,
		Timestamp:   time.Now().Unix(),
		PlaceNumber: bs.TotalPlacements + 1,
	}
	// Append to cumulative history (never cleared by reset) and increment total
	bs.History = append(bs.History, entry)
	bs.TotalPlacements++

	// Append to current segment history and increment its counter
	bs.CurrentPlacements = append(bs.CurrentPlacements, entry)
	bs.CurrentPlacementsCount++
}
