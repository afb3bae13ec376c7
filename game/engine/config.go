package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ClueChar returns the layout character encoding a clue area.
// Areas 1-9 map to digits, 10-35 to 'a'-'z', 36-61 to 'A'-'Z'.
func ClueChar(area int) (byte, bool) {
	switch {
	case area >= 1 && area <= 9:
		return byte('0' + area), true
	case area >= 10 && area <= 35:
		return byte('a' + area - 10), true
	case area >= 36 && area <= MaxClueArea:
		return byte('A' + area - 36), true
	}
	return 0, false
}

// ParseClueChar decodes a layout character into a clue area
func ParseClueChar(c byte) (int, bool) {
	switch {
	case c >= '1' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 36, true
	}
	return 0, false
}

// ParseLayout extracts the clue set from layout rows
func ParseLayout(layout []string) ([]Clue, error) {
	var clues []Clue
	for y, row := range layout {
		for x := 0; x < len(row); x++ {
			c := row[x]
			if c == EmptyCellChar {
				continue
			}
			area, ok := ParseClueChar(c)
			if !ok {
				return nil, fmt.Errorf("invalid character '%c' at row %d, col %d", c, y+1, x+1)
			}
			clues = append(clues, Clue{Pos: Point{X: x, Y: y}, Area: area})
		}
	}
	return clues, nil
}

// FormatLayout renders a clue set as layout rows
func FormatLayout(width, height int, clues []Clue) ([]string, error) {
	rows := make([][]byte, height)
	for y := range rows {
		rows[y] = []byte(strings.Repeat(string(EmptyCellChar), width))
	}
	for _, clue := range clues {
		if clue.Pos.X < 0 || clue.Pos.X >= width || clue.Pos.Y < 0 || clue.Pos.Y >= height {
			return nil, fmt.Errorf("clue at %s is outside the %dx%d grid", clue.Pos, width, height)
		}
		if rows[clue.Pos.Y][clue.Pos.X] != EmptyCellChar {
			return nil, fmt.Errorf("duplicate clue at %s", clue.Pos)
		}
		c, ok := ClueChar(clue.Area)
		if !ok {
			return nil, fmt.Errorf("clue area %d at %s cannot be encoded", clue.Area, clue.Pos)
		}
		rows[clue.Pos.Y][clue.Pos.X] = c
	}
	layout := make([]string, height)
	for y := range rows {
		layout[y] = string(rows[y])
	}
	return layout, nil
}

// ValidatePuzzleConfig validates a puzzle configuration for correctness
// and playability
func ValidatePuzzleConfig(config *PuzzleConfig) error {
	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate grid dimensions
	if config.Width < MinGridSize || config.Width > MaxGridSize {
		return fmt.Errorf("config validation: width must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Width)
	}
	if config.Height < MinGridSize || config.Height > MaxGridSize {
		return fmt.Errorf("config validation: height must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Height)
	}

	// Validate layout shape
	if len(config.Layout) != config.Height {
		return fmt.Errorf("config validation: layout must have %d rows to match height, got %d",
			config.Height, len(config.Layout))
	}
	for i, row := range config.Layout {
		if len(row) != config.Width {
			return fmt.Errorf("config validation: row %d must have %d characters to match width, got %d",
				i+1, config.Width, len(row))
		}
	}

	clues, err := ParseLayout(config.Layout)
	if err != nil {
		return fmt.Errorf("config validation: %v", err)
	}
	if len(clues) == 0 {
		return fmt.Errorf("config validation: layout must contain at least one clue")
	}

	// Clue areas must tile the grid exactly
	if sum := ClueAreaSum(clues); sum != config.Width*config.Height {
		return fmt.Errorf("config validation: clue areas sum to %d but the grid has %d cells",
			sum, config.Width*config.Height)
	}

	// Every clue needs at least one rectangle shape that fits the grid
	for _, clue := range clues {
		if !areaFitsGrid(clue.Area, config.Width, config.Height) {
			return fmt.Errorf("config validation: clue %d at (%d, %d) cannot fit any rectangle in a %dx%d grid",
				clue.Area, clue.Pos.X+1, clue.Pos.Y+1, config.Width, config.Height)
		}
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.Solved == "" {
		return fmt.Errorf("config validation: messages.solved is required")
	}
	if config.Messages.Placed == "" {
		return fmt.Errorf("config validation: messages.placed is required")
	}
	if config.Messages.Overlap == "" {
		return fmt.Errorf("config validation: messages.overlap is required")
	}
	if config.Messages.NoClue == "" {
		return fmt.Errorf("config validation: messages.no_clue is required")
	}
	if config.Messages.MultipleClues == "" {
		return fmt.Errorf("config validation: messages.multiple_clues is required")
	}
	if config.Messages.AreaMismatch == "" {
		return fmt.Errorf("config validation: messages.area_mismatch is required")
	}
	if config.Messages.Deleted == "" {
		return fmt.Errorf("config validation: messages.deleted is required")
	}

	// Validate auto-complete message if the feature is enabled
	if config.AutoComplete && config.Messages.AutoCompleted == "" {
		return fmt.Errorf("config validation: messages.auto_completed is required when auto_complete is true")
	}

	// Validate format strings
	if !strings.Contains(config.Messages.Placed, "%d") {
		return fmt.Errorf("config validation: messages.placed must contain %%d for the area")
	}
	if !strings.Contains(config.Messages.Solved, "%d") {
		return fmt.Errorf("config validation: messages.solved must contain %%d for the rectangle count")
	}
	if !strings.Contains(config.Messages.MultipleClues, "%d") {
		return fmt.Errorf("config validation: messages.multiple_clues must contain %%d for the clue count")
	}
	if strings.Count(config.Messages.AreaMismatch, "%d") < 2 {
		return fmt.Errorf("config validation: messages.area_mismatch must contain %%d twice for area and clue values")
	}

	return nil
}

// areaFitsGrid reports whether some w x h factorization of area fits the
// grid dimensions
func areaFitsGrid(area, gridW, gridH int) bool {
	for w := 1; w <= area && w <= gridW; w++ {
		if area%w != 0 {
			continue
		}
		if area/w <= gridH {
			return true
		}
	}
	return false
}

// LoadPuzzleConfig loads a puzzle configuration from a JSON file
func LoadPuzzleConfig(filename string) (*PuzzleConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		// If filename starts with "configs/", replace with CONFIG_DIR
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config PuzzleConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	// Validate the loaded configuration
	if err := ValidatePuzzleConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadConfigByName loads a puzzle configuration by name from the configs directory
func LoadConfigByName(configName string) (*PuzzleConfig, error) {
	// Add .json extension if not present
	if !strings.HasSuffix(configName, ".json") {
		configName = configName + ".json"
	}

	configPath := filepath.Join("configs", configName)

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file '%s' not found", configName)
	}

	// Load and parse the config
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %v", configName, err)
	}

	var config PuzzleConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %v", configName, err)
	}

	// Validate the config
	if err := ValidatePuzzleConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config '%s': %v", configName, err)
	}

	return &config, nil
}

// DefaultMessages returns the stock status-line catalog used by the
// built-in puzzle and by generated puzzles
func DefaultMessages() Messages {
	return Messages{
		Welcome:       "Partition the grid: every rectangle must contain exactly one number equal to its area.",
		Placed:        "Rectangle placed (%d cells)",
		Overlap:       "Overlaps a placed rectangle",
		NoClue:        "Rectangle contains no number",
		MultipleClues: "Rectangle contains %d numbers, needs exactly one",
		AreaMismatch:  "Area is %d but the number wants %d",
		Deleted:       "Rectangle removed",
		AutoCompleted: "Enclosed region completed (%d cells)",
		Solved:        "Solved! %d rectangles partition the grid.",
	}
}

// DefaultPuzzleConfig returns the built-in 5x5 puzzle. Its layout has a
// single valid partition: two 2x2 blocks across the top, a full-height
// right column, and two 2x3 blocks filling the bottom.
func DefaultPuzzleConfig() *PuzzleConfig {
	return &PuzzleConfig{
		Name:        "classic",
		Description: "Built-in 5x5 starter puzzle",
		Width:       5,
		Height:      5,
		Layout: []string{
			"4..45",
			".....",
			".....",
			".....",
			"6..6.",
		},
		AutoComplete: true,
		Messages:     DefaultMessages(),
	}
}

// InitBoardStateFromConfig creates a fresh board state using the provided
// configuration
func InitBoardStateFromConfig(config *PuzzleConfig) *BoardState {
	if config == nil {
		// Use the built-in puzzle if not provided
		config = DefaultPuzzleConfig()
	}

	clues, err := ParseLayout(config.Layout)
	if err != nil {
		// Validated configs never reach this; an unvalidated layout
		// degrades to a clueless board rather than panicking.
		clues = nil
	}

	bs := &BoardState{
		Width:                  config.Width,
		Height:                 config.Height,
		Clues:                  clues,
		Rects:                  []Rect{},
		Active:                 nil,
		Solved:                 false,
		Message:                config.Messages.Welcome,
		ConfigName:             config.Name,
		History:                []PlacementEntry{},
		TotalPlacements:        0,
		CurrentPlacements:      []PlacementEntry{},
		CurrentPlacementsCount: 0,
	}
	bs.rebuildCoverage()
	return bs
}
