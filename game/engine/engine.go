package engine

import "fmt"

// Engine provides the main interface for puzzle operations
type Engine interface {
	// Board state management
	GetState() *BoardState
	SetState(state *BoardState) error
	Reset() *BoardState
	IsSolved() bool
	InProgress() bool
	Progress() (covered, total int)

	// Rectangle operations
	Begin(at Point) error
	Resize(to Point) error
	AutoFill(direction string) error
	Commit() (bool, error)
	Cancel() error
	DeleteAt(at Point) (Rect, bool, error)
	PlaceRect(a, b Point) (bool, error)

	// Configuration
	GetConfig() *PuzzleConfig
	SetConfig(config *PuzzleConfig) error

	// History
	GetHistory() []PlacementEntry
	GetLastPlacement() *PlacementEntry

	// Read-only queries for renderers
	CommittedRects() []Rect
	ActiveRect() (Rect, bool)
	RectAt(at Point) (Rect, bool)
	ClueAt(at Point) (Clue, bool)
	Clues() []Clue
}

// PartitionEngine implements the Engine interface
type PartitionEngine struct {
	state  *BoardState
	config *PuzzleConfig
}

// NewEngine creates a new partition engine with the provided puzzle
func NewEngine(config *PuzzleConfig) (*PartitionEngine, error) {
	if err := ValidatePuzzleConfig(config); err != nil {
		return nil, err
	}

	engine := &PartitionEngine{
		config: config,
		state:  InitBoardStateFromConfig(config),
	}

	return engine, nil
}

// NewEngineWithDefaults creates a new partition engine with the built-in puzzle
func NewEngineWithDefaults() *PartitionEngine {
	config := DefaultPuzzleConfig()
	return &PartitionEngine{
		config: config,
		state:  InitBoardStateFromConfig(config),
	}
}

// GetState returns the current board state
func (e *PartitionEngine) GetState() *BoardState {
	return e.state
}

// SetState sets the board state (used for persistence loading) and
// rebuilds the derived coverage index
func (e *PartitionEngine) SetState(state *BoardState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if state.Width <= 0 || state.Height <= 0 {
		return fmt.Errorf("state has invalid dimensions %dx%d", state.Width, state.Height)
	}
	state.rebuildCoverage()
	state.Solved = state.coveredCells == state.Width*state.Height
	e.state = state
	return nil
}

// Reset clears the committed rectangles and restarts the same puzzle
func (e *PartitionEngine) Reset() *BoardState {
	// Preserve cumulative history and totals across resets
	prevHistory := e.state.History
	prevTotal := e.state.TotalPlacements

	// Reinitialize core state from config
	e.state = InitBoardStateFromConfig(e.config)

	// Restore cumulative history and totals; clear only the current segment
	e.state.History = prevHistory
	e.state.TotalPlacements = prevTotal
	e.state.CurrentPlacements = []PlacementEntry{}
	e.state.CurrentPlacementsCount = 0

	return e.state
}

// IsSolved reports whether committed rectangles cover the whole grid
func (e *PartitionEngine) IsSolved() bool {
	return e.state.Solved
}

// InProgress reports whether a rectangle is currently being resized
func (e *PartitionEngine) InProgress() bool {
	return e.state.Active != nil
}

// Progress returns covered and total cell counts
func (e *PartitionEngine) Progress() (int, int) {
	return e.state.CoveredCells(), e.state.Width * e.state.Height
}

// Begin starts a 1x1 in-progress rectangle anchored at the given cell
func (e *PartitionEngine) Begin(at Point) error {
	return e.state.BeginRect(at)
}

// Resize moves the in-progress rectangle's free corner to the given cell
func (e *PartitionEngine) Resize(to Point) error {
	return e.state.ResizeRect(to)
}

// AutoFill extends the in-progress rectangle maximally in one direction
func (e *PartitionEngine) AutoFill(direction string) error {
	return e.state.AutoFillRect(direction)
}

// Commit attempts to finalize the in-progress rectangle. On success it
// reports whether the puzzle is now solved; on failure the error wraps
// ErrInvalidPlacement and committed state is unchanged. The in-progress
// rectangle is discarded in both cases.
func (e *PartitionEngine) Commit() (bool, error) {
	solved, r, err := e.state.CommitActive(e.config)
	if err != nil {
		if pe, ok := err.(*PlacementError); ok {
			e.state.AddPlacementToHistory(ActionCommit, r, false, string(pe.Reason))
		}
		return false, err
	}
	e.state.AddPlacementToHistory(ActionCommit, r, true, "")
	return solved, nil
}

// Cancel discards the in-progress rectangle without validation
func (e *PartitionEngine) Cancel() error {
	return e.state.CancelActive()
}

// DeleteAt removes the committed rectangle covering the given cell, if any
func (e *PartitionEngine) DeleteAt(at Point) (Rect, bool, error) {
	removed, ok, err := e.state.DeleteRectAt(at, e.config)
	if err != nil {
		return Rect{}, false, err
	}
	if ok {
		e.state.AddPlacementToHistory(ActionDelete, removed, true, "")
	}
	return removed, ok, nil
}

// PlaceRect runs begin, resize and commit as one step: the rectangle
// spanned by the two corners is validated and committed directly
func (e *PartitionEngine) PlaceRect(a, b Point) (bool, error) {
	if err := e.Begin(a); err != nil {
		return false, err
	}
	if err := e.Resize(b); err != nil {
		return false, err
	}
	return e.Commit()
}

// GetConfig returns the current puzzle configuration
func (e *PartitionEngine) GetConfig() *PuzzleConfig {
	return e.config
}

// SetConfig sets a new puzzle configuration and restarts the game
func (e *PartitionEngine) SetConfig(config *PuzzleConfig) error {
	if err := ValidatePuzzleConfig(config); err != nil {
		return err
	}

	e.config = config
	e.state = InitBoardStateFromConfig(config)
	return nil
}

// GetHistory returns the complete placement history
func (e *PartitionEngine) GetHistory() []PlacementEntry {
	return e.state.History
}

// GetLastPlacement returns the most recent action, or nil if none
func (e *PartitionEngine) GetLastPlacement() *PlacementEntry {
	if len(e.state.History) == 0 {
		return nil
	}
	return &e.state.History[len(e.state.History)-1]
}

// CommittedRects returns a snapshot of the committed rectangles
func (e *PartitionEngine) CommittedRects() []Rect {
	rects := make([]Rect, len(e.state.Rects))
	copy(rects, e.state.Rects)
	return rects
}

// ActiveRect returns the in-progress rectangle's current bounds
func (e *PartitionEngine) ActiveRect() (Rect, bool) {
	if e.state.Active == nil {
		return Rect{}, false
	}
	return e.state.Active.Bounds(), true
}

// RectAt returns the committed rectangle covering the given cell
func (e *PartitionEngine) RectAt(at Point) (Rect, bool) {
	return e.state.RectAtCell(at)
}

// ClueAt returns the clue on the given cell
func (e *PartitionEngine) ClueAt(at Point) (Clue, bool) {
	return e.state.ClueAtCell(at)
}

// Clues returns the puzzle's clue set
func (e *PartitionEngine) Clues() []Clue {
	return e.state.Clues
}
