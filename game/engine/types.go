package engine

import (
	"errors"
	"fmt"
)

// Direction names accepted by AutoFill and the transports
const (
	DirUp    = "up"
	DirDown  = "down"
	DirLeft  = "left"
	DirRight = "right"
)

const (
	// Validation constants
	MinGridSize = 2
	MaxGridSize = 50
	// MaxClueArea is the largest area a layout character can express
	MaxClueArea = 61

	DefaultGridWidth  = 10
	DefaultGridHeight = 10

	MaxBulkPlacements   = 50
	WebSocketBufferSize = 256
)

// EmptyCellChar marks a cell without a clue in layout strings
const EmptyCellChar = '.'

// Placement actions recorded in the history
const (
	ActionCommit = "commit"
	ActionDelete = "delete"
	ActionAuto   = "auto_complete"
)

var (
	// ErrInvalidState is returned when an operation is invoked in the
	// wrong engine state, e.g. Resize with no rectangle in progress.
	ErrInvalidState = errors.New("operation not valid in current state")

	// ErrInvalidPlacement is returned when a commit violates the puzzle
	// rules. The concrete error is always a *PlacementError.
	ErrInvalidPlacement = errors.New("invalid placement")
)

// PlacementReason identifies why a commit was rejected
type PlacementReason string

const (
	ReasonOverlap       PlacementReason = "overlap"
	ReasonNoClue        PlacementReason = "no_clue"
	ReasonMultipleClues PlacementReason = "multiple_clues"
	ReasonAreaMismatch  PlacementReason = "area_mismatch"
)

// PlacementError reports a rejected commit together with the offending
// rectangle. It unwraps to ErrInvalidPlacement.
type PlacementError struct {
	Reason    PlacementReason `json:"reason"`
	Rect      Rect            `json:"rect"`
	ClueCount int             `json:"clue_count,omitempty"`
	ClueArea  int             `json:"clue_area,omitempty"`
}

func (e *PlacementError) Error() string {
	switch e.Reason {
	case ReasonOverlap:
		return fmt.Sprintf("invalid placement: %s overlaps a committed rectangle", e.Rect)
	case ReasonNoClue:
		return fmt.Sprintf("invalid placement: %s contains no clue", e.Rect)
	case ReasonMultipleClues:
		return fmt.Sprintf("invalid placement: %s contains %d clues, needs exactly one", e.Rect, e.ClueCount)
	case ReasonAreaMismatch:
		return fmt.Sprintf("invalid placement: %s has area %d but its clue needs %d", e.Rect, e.Rect.Area(), e.ClueArea)
	}
	return fmt.Sprintf("invalid placement: %s", e.Rect)
}

func (e *PlacementError) Unwrap() error { return ErrInvalidPlacement }

// Point represents x,y cell coordinates (x = column, y = row)
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Rect is an axis-aligned rectangle with inclusive cell bounds.
// A well-formed Rect satisfies Min.X <= Max.X and Min.Y <= Max.Y;
// NewRect normalizes arbitrary corner pairs.
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// NewRect builds the normalized rectangle spanned by two corners
func NewRect(a, b Point) Rect {
	r := Rect{Min: a, Max: b}
	if r.Min.X > r.Max.X {
		r.Min.X, r.Max.X = r.Max.X, r.Min.X
	}
	if r.Min.Y > r.Max.Y {
		r.Min.Y, r.Max.Y = r.Max.Y, r.Min.Y
	}
	return r
}

// Width returns the number of columns the rectangle spans
func (r Rect) Width() int { return r.Max.X - r.Min.X + 1 }

// Height returns the number of rows the rectangle spans
func (r Rect) Height() int { return r.Max.Y - r.Min.Y + 1 }

// Area returns the number of cells the rectangle covers
func (r Rect) Area() int { return r.Width() * r.Height() }

// Contains reports whether the cell at p lies inside the rectangle
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Intersects reports whether two rectangles share at least one cell
func (r Rect) Intersects(o Rect) bool {
	return r.Min.X <= o.Max.X && o.Min.X <= r.Max.X &&
		r.Min.Y <= o.Max.Y && o.Min.Y <= r.Max.Y
}

func (r Rect) String() string {
	return fmt.Sprintf("[%s-%s]", r.Min, r.Max)
}

// ActiveRect is the in-progress rectangle as a two-corner model: the
// anchor stays fixed while resize and auto-fill move the other corner.
type ActiveRect struct {
	Anchor Point `json:"anchor"`
	Moving Point `json:"moving"`
}

// Bounds returns the normalized rectangle spanned by the two corners
func (a ActiveRect) Bounds() Rect {
	return NewRect(a.Anchor, a.Moving)
}

// Clue is a numbered cell: the rectangle that contains it must have
// exactly this area
type Clue struct {
	Pos  Point `json:"pos"`
	Area int   `json:"area"`
}

// Messages holds the user-facing status lines a puzzle config provides
type Messages struct {
	Welcome       string `json:"welcome"`
	Placed        string `json:"placed"`
	Overlap       string `json:"overlap"`
	NoClue        string `json:"no_clue"`
	MultipleClues string `json:"multiple_clues"`
	AreaMismatch  string `json:"area_mismatch"`
	Deleted       string `json:"deleted"`
	AutoCompleted string `json:"auto_completed"`
	Solved        string `json:"solved"`
}

// PuzzleConfig represents a puzzle definition loaded from JSON.
// Layout rows use '.' for empty cells and a clue character for numbered
// cells: '1'-'9' for areas 1-9, 'a'-'z' for 10-35, 'A'-'Z' for 36-61.
type PuzzleConfig struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	Layout       []string `json:"layout"`
	AutoComplete bool     `json:"auto_complete"`
	Messages     Messages `json:"messages"`
}

// PlacementEntry represents a single recorded action in the game history
type PlacementEntry struct {
	Action      string `json:"action"`
	Rect        Rect   `json:"rect"`
	Success     bool   `json:"success"`
	Reason      string `json:"reason,omitempty"`
	Timestamp   int64  `json:"timestamp"`
	PlaceNumber int    `json:"place_number"`
}

// BoardState represents the complete state of a puzzle in play
type BoardState struct {
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Clues      []Clue      `json:"clues"`
	Rects      []Rect      `json:"rects"`
	Active     *ActiveRect `json:"active,omitempty"`
	Solved     bool        `json:"solved"`
	Message    string      `json:"message"`
	ConfigName string      `json:"config_name"`

	History         []PlacementEntry `json:"history"`
	TotalPlacements int              `json:"total_placements"`

	// CurrentPlacements tracks only the actions since the last reset. It
	// mirrors History entries but gets cleared on reset while History
	// remains cumulative.
	CurrentPlacements      []PlacementEntry `json:"current_placements"`
	CurrentPlacementsCount int              `json:"current_placements_count"`

	// covered maps each cell to 1+index of the committed rectangle
	// occupying it, 0 for uncovered. Rebuilt after load and delete.
	covered      []int
	coveredCells int
}

// Clone returns a deep copy of the board state, including the derived
// coverage index, so the copy can be marshaled or queried while the
// original keeps changing.
func (b *BoardState) Clone() *BoardState {
	c := *b
	c.Clues = append([]Clue(nil), b.Clues...)
	c.Rects = append([]Rect(nil), b.Rects...)
	c.History = append([]PlacementEntry(nil), b.History...)
	c.CurrentPlacements = append([]PlacementEntry(nil), b.CurrentPlacements...)
	c.covered = append([]int(nil), b.covered...)
	if b.Active != nil {
		active := *b.Active
		c.Active = &active
	}
	return &c
}
