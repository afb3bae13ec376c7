package service

import (
	"time"

	"github.com/shikaku-go/shikaku/game/engine"
)

// CreateSessionRequest selects the puzzle for a new session. Exactly one
// mode applies: a named config from the configs directory, generated
// dimensions, or neither (the default config).
type CreateSessionRequest struct {
	ConfigName     string `json:"config_name,omitempty"`
	Width          int    `json:"width,omitempty"`
	Height         int    `json:"height,omitempty"`
	Seed           int64  `json:"seed,omitempty"`
	AllowAmbiguous bool   `json:"allow_ambiguous,omitempty"`
}

// SessionInfo provides information about a puzzle session
type SessionInfo struct {
	ID             string               `json:"id"`
	ConfigName     string               `json:"config_name"`
	Generated      bool                 `json:"generated,omitempty"`
	Seed           int64                `json:"seed,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	LastAccessedAt time.Time            `json:"last_accessed_at"`
	BoardState     *engine.BoardState   `json:"board_state"`
	PuzzleConfig   *engine.PuzzleConfig `json:"puzzle_config"`
}

// RectSpec names a rectangle by two opposite corners, in any order
type RectSpec struct {
	A engine.Point `json:"a"`
	B engine.Point `json:"b"`
}

// OpResult contains the result of a single board operation
type OpResult struct {
	Success    bool               `json:"success"`
	Solved     bool               `json:"solved"`
	BoardState *engine.BoardState `json:"board_state"`
	Message    string             `json:"message"`
	Events     []GameEvent        `json:"events,omitempty"`
	Placement  *PlacementInfo     `json:"placement,omitempty"`
	Attempted  *AttemptInfo       `json:"attempted,omitempty"`
}

// BulkPlaceResult contains the result of multiple placements
type BulkPlaceResult struct {
	// Summary
	PlacementsExecuted  int                `json:"placements_executed"`
	RequestedPlacements int                `json:"requested_placements"`
	Success             bool               `json:"success"`
	BoardState          *engine.BoardState `json:"board_state"`
	Events              []GameEvent        `json:"events"`
	StoppedReason       string             `json:"stopped_reason,omitempty"`    // Human-readable reason
	StopReasonCode      string             `json:"stop_reason_code,omitempty"`  // Machine-friendly code: overlap|no_clue|multiple_clues|area_mismatch|invalid_state|solved
	StoppedOnPlacement  int                `json:"stopped_on_placement,omitempty"` // 1-based index of the placement that caused stop
	Truncated           bool               `json:"truncated,omitempty"`
	Limit               int                `json:"limit,omitempty"`

	// Start/end snapshot
	StartCovered int `json:"start_covered"`
	EndCovered   int `json:"end_covered"`
	CoveredDelta int `json:"covered_delta"`

	// Per-step compact trace (only for this call)
	Steps []PlacementInfo `json:"steps,omitempty"`

	// Failure diagnostics
	Attempted *AttemptInfo `json:"attempted,omitempty"`

	// Final status aids
	Solved  bool   `json:"solved"`
	Message string `json:"message,omitempty"`
}

// PlacementInfo is a compact record for each rectangle placed in a call.
// Auto marks rectangles filled in by the auto-completion pass rather
// than the request itself.
type PlacementInfo struct {
	Idx         int         `json:"idx"`
	Rect        engine.Rect `json:"rect"`
	Area        int         `json:"area"`
	Auto        bool        `json:"auto,omitempty"`
	PlaceNumber int         `json:"place_number"`
}

// AttemptInfo details a rejected placement
type AttemptInfo struct {
	Rect      engine.Rect `json:"rect"`
	Area      int         `json:"area"`
	Reason    string      `json:"reason"` // overlap|no_clue|multiple_clues|area_mismatch
	ClueCount int         `json:"clue_count,omitempty"`
	ClueArea  int         `json:"clue_area,omitempty"`
}

// GameEvent represents an event that occurred during play
type GameEvent struct {
	Type      string       `json:"type"` // "placement", "auto_complete", "delete", "solved", "reset", "regenerate"
	Message   string       `json:"message"`
	Timestamp time.Time    `json:"timestamp"`
	Rect      *engine.Rect `json:"rect,omitempty"`
}

// HintResult suggests the next rectangle to place
type HintResult struct {
	Available bool         `json:"available"`
	Rect      *engine.Rect `json:"rect,omitempty"`
	Clue      *engine.Clue `json:"clue,omitempty"`
	Message   string       `json:"message"`
}

// ProgressReport summarizes the board and whether it can still be solved
type ProgressReport struct {
	Solvable       bool   `json:"solvable"`
	Solved         bool   `json:"solved"`
	CoveredCells   int    `json:"covered_cells"`
	TotalCells     int    `json:"total_cells"`
	PlacedRects    int    `json:"placed_rects"`
	RemainingClues int    `json:"remaining_clues"`
	Description    string `json:"description"`
}

// HistoryOptions configures placement history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated placement history
type HistoryResponse struct {
	Placements      []engine.PlacementEntry `json:"placements"`
	TotalPlacements int                     `json:"total_placements"`
	Page            int                     `json:"page"`
	PageSize        int                     `json:"page_size"`
	TotalPages      int                     `json:"total_pages"`
	HasNext         bool                    `json:"has_next"`
	HasPrevious     bool                    `json:"has_previous"`
}

// ConfigInfo provides information about a puzzle configuration
type ConfigInfo struct {
	Filename     string `json:"filename"`
	ConfigID     string `json:"config_id"` // The identifier to use for session creation
	Name         string `json:"name"`      // Display name
	Description  string `json:"description"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	ClueCount    int    `json:"clue_count"`
	AutoComplete bool   `json:"auto_complete"`
}
