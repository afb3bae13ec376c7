package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func createValidConfig() *PuzzleConfig {
	return &PuzzleConfig{
		Name:        "Test Config",
		Description: "A valid test configuration",
		Width:       5,
		Height:      5,
		Layout: []string{
			"5....",
			"5....",
			"5....",
			"5....",
			"5....",
		},
		AutoComplete: false,
		Messages: Messages{
			Welcome:       "Welcome to the test puzzle!",
			Placed:        "Placed a rectangle of %d cells",
			Overlap:       "Rectangles cannot overlap",
			NoClue:        "Every rectangle needs a clue",
			MultipleClues: "Rectangle contains %d clues",
			AreaMismatch:  "Area is %d but the clue wants %d",
			Deleted:       "Rectangle removed",
			AutoCompleted: "Region of %d filled in",
			Solved:        "Solved with %d rectangles!",
		},
	}
}

func TestValidatePuzzleConfig_ValidConfig(t *testing.T) {
	config := createValidConfig()
	err := ValidatePuzzleConfig(config)
	if err != nil {
		t.Errorf("Expected valid config to pass validation, got: %v", err)
	}
}

func TestValidatePuzzleConfig_MissingName(t *testing.T) {
	config := createValidConfig()
	config.Name = ""
	err := ValidatePuzzleConfig(config)
	if err == nil {
		t.Error("Expected error for missing name")
	}
	if !strings.Contains(err.Error(), "name is required") {
		t.Errorf("Expected name validation error, got: %v", err)
	}
}

func TestValidatePuzzleConfig_MissingDescription(t *testing.T) {
	config := createValidConfig()
	config.Description = ""
	err := ValidatePuzzleConfig(config)
	if err == nil {
		t.Error("Expected error for missing description")
	}
	if !strings.Contains(err.Error(), "description is required") {
		t.Errorf("Expected description validation error, got: %v", err)
	}
}

func TestValidatePuzzleConfig_InvalidDimensions(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		height   int
		expected string
	}{
		{"width too small", 1, 5, "width must be between"},
		{"width too large", 51, 5, "width must be between"},
		{"height too small", 5, 1, "height must be between"},
		{"height too large", 5, 51, "height must be between"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := createValidConfig()
			config.Width = test.width
			config.Height = test.height
			err := ValidatePuzzleConfig(config)
			if err == nil {
				t.Errorf("Expected error for dimensions %dx%d", test.width, test.height)
			}
			if !strings.Contains(err.Error(), test.expected) {
				t.Errorf("Expected error containing '%s', got: %v", test.expected, err)
			}
		})
	}
}

func TestValidatePuzzleConfig_LayoutRowCountMismatch(t *testing.T) {
	config := createValidConfig()
	config.Layout = config.Layout[:4] // Drop a row
	err := ValidatePuzzleConfig(config)
	if err == nil {
		t.Error("Expected error for layout row count mismatch")
	}
	if !strings.Contains(err.Error(), "layout must have 5 rows") {
		t.Errorf("Expected layout row validation error, got: %v", err)
	}
}

func TestValidatePuzzleConfig_LayoutRowWidthMismatch(t *testing.T) {
	config := createValidConfig()
	config.Layout[2] = "5.." // Row too short
	err := ValidatePuzzleConfig(config)
	if err == nil {
		t.Error("Expected error for layout row width mismatch")
	}
	if !strings.Contains(err.Error(), "must have 5 characters") {
		t.Errorf("Expected layout column validation error, got: %v", err)
	}
}

func TestValidatePuzzleConfig_InvalidCharacters(t *testing.T) {
	config := createValidConfig()
	config.Layout[1] = "5..0." // Zero is not a valid clue
	err := ValidatePuzzleConfig(config)
	if err == nil {
		t.Error("Expected error for invalid character")
	}
	if !strings.Contains(err.Error(), "invalid character '0'") {
		t.Errorf("Expected invalid character error, got: %v", err)
	}
}

func TestValidatePuzzleConfig_NoClues(t *testing.T) {
	config := createValidConfig()
	config.Layout = []string{
		".....",
		".....",
		".....",
		".....",
		".....",
	}
	err := ValidatePuzzleConfig(config)
	if err == nil {
		t.Error("Expected error for layout without clues")
	}
	if !strings.Contains(err.Error(), "at least one clue") {
		t.Errorf("Expected no-clue validation error, got: %v", err)
	}
}

func TestValidatePuzzleConfig_AreaSumMismatch(t *testing.T) {
	config := createValidConfig()
	config.Layout[0] = "6...." // 6+5+5+5+5 = 26 on a 25-cell grid
	err := ValidatePuzzleConfig(config)
	if err == nil {
		t.Error("Expected error for clue area sum mismatch")
	}
	if !strings.Contains(err.Error(), "sum to 26") {
		t.Errorf("Expected area sum validation error, got: %v", err)
	}
}

func TestValidatePuzzleConfig_UnfittableClue(t *testing.T) {
	config := createValidConfig()
	// 7 is prime and larger than both dimensions, so no 7-cell
	// rectangle fits in a 5x5 grid. 7+9+9 keeps the sum at 25.
	config.Layout = []string{
		"7....",
		".....",
		"..9..",
		".....",
		"....9",
	}
	err := ValidatePuzzleConfig(config)
	if err == nil {
		t.Error("Expected error for clue that fits no rectangle")
	}
	if !strings.Contains(err.Error(), "cannot fit any rectangle") {
		t.Errorf("Expected unfittable clue validation error, got: %v", err)
	}
}

func TestValidatePuzzleConfig_MissingMessages(t *testing.T) {
	tests := []struct {
		name         string
		messageField string
		modifier     func(*PuzzleConfig)
	}{
		{"welcome", "messages.welcome", func(c *PuzzleConfig) { c.Messages.Welcome = "" }},
		{"solved", "messages.solved", func(c *PuzzleConfig) { c.Messages.Solved = "" }},
		{"placed", "messages.placed", func(c *PuzzleConfig) { c.Messages.Placed = "" }},
		{"overlap", "messages.overlap", func(c *PuzzleConfig) { c.Messages.Overlap = "" }},
		{"no clue", "messages.no_clue", func(c *PuzzleConfig) { c.Messages.NoClue = "" }},
		{"multiple clues", "messages.multiple_clues", func(c *PuzzleConfig) { c.Messages.MultipleClues = "" }},
		{"area mismatch", "messages.area_mismatch", func(c *PuzzleConfig) { c.Messages.AreaMismatch = "" }},
		{"deleted", "messages.deleted", func(c *PuzzleConfig) { c.Messages.Deleted = "" }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := createValidConfig()
			test.modifier(config)
			err := ValidatePuzzleConfig(config)
			if err == nil {
				t.Errorf("Expected error for missing %s", test.messageField)
			}
			if !strings.Contains(err.Error(), test.messageField+" is required") {
				t.Errorf("Expected %s validation error, got: %v", test.messageField, err)
			}
		})
	}
}

func TestValidatePuzzleConfig_AutoCompletedMessage(t *testing.T) {
	config := createValidConfig()
	config.AutoComplete = true
	config.Messages.AutoCompleted = ""
	err := ValidatePuzzleConfig(config)
	if err == nil {
		t.Error("Expected error for missing auto-completed message when auto-complete is on")
	}
	if !strings.Contains(err.Error(), "messages.auto_completed is required when auto_complete is true") {
		t.Errorf("Expected auto-completed message validation error, got: %v", err)
	}

	// With auto-complete off, the message is optional
	config.AutoComplete = false
	if err := ValidatePuzzleConfig(config); err != nil {
		t.Errorf("Expected config valid with auto-complete off, got: %v", err)
	}
}

func TestValidatePuzzleConfig_FormatStrings(t *testing.T) {
	tests := []struct {
		name     string
		modifier func(*PuzzleConfig)
		expected string
	}{
		{"placed", func(c *PuzzleConfig) { c.Messages.Placed = "No format" }, "placed must contain %d"},
		{"solved", func(c *PuzzleConfig) { c.Messages.Solved = "No format" }, "solved must contain %d"},
		{"multiple clues", func(c *PuzzleConfig) { c.Messages.MultipleClues = "No format" }, "multiple_clues must contain %d"},
		{"area mismatch", func(c *PuzzleConfig) { c.Messages.AreaMismatch = "Just %d" }, "area_mismatch must contain %d twice"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := createValidConfig()
			test.modifier(config)
			err := ValidatePuzzleConfig(config)
			if err == nil {
				t.Errorf("Expected error for %s format string", test.name)
			}
			if !strings.Contains(err.Error(), test.expected) {
				t.Errorf("Expected format string validation error containing '%s', got: %v", test.expected, err)
			}
		})
	}
}

func TestParseLayout(t *testing.T) {
	clues, err := ParseLayout([]string{
		"4.a",
		"...",
		"Z.2",
	})
	if err != nil {
		t.Fatalf("ParseLayout failed: %v", err)
	}
	expected := []Clue{
		{Pos: Point{0, 0}, Area: 4},
		{Pos: Point{2, 0}, Area: 10},
		{Pos: Point{0, 2}, Area: 61},
		{Pos: Point{2, 2}, Area: 2},
	}
	if len(clues) != len(expected) {
		t.Fatalf("Expected %d clues, got %d", len(expected), len(clues))
	}
	for i, want := range expected {
		if clues[i] != want {
			t.Errorf("Clue %d: expected %+v, got %+v", i, want, clues[i])
		}
	}
}

func TestParseLayout_InvalidCharacter(t *testing.T) {
	_, err := ParseLayout([]string{
		"4.",
		".#",
	})
	if err == nil {
		t.Fatal("Expected error for '#'")
	}
	if !strings.Contains(err.Error(), "row 2, col 2") {
		t.Errorf("Expected 1-based position in error, got: %v", err)
	}
}

func TestFormatLayout(t *testing.T) {
	clues := []Clue{
		{Pos: Point{0, 0}, Area: 4},
		{Pos: Point{2, 1}, Area: 12},
	}
	layout, err := FormatLayout(3, 2, clues)
	if err != nil {
		t.Fatalf("FormatLayout failed: %v", err)
	}
	want := []string{"4..", "..c"}
	if len(layout) != 2 || layout[0] != want[0] || layout[1] != want[1] {
		t.Errorf("Expected layout %v, got %v", want, layout)
	}

	// Round trip back through ParseLayout
	parsed, err := ParseLayout(layout)
	if err != nil {
		t.Fatalf("Round trip parse failed: %v", err)
	}
	if len(parsed) != 2 || parsed[0] != clues[0] || parsed[1] != clues[1] {
		t.Errorf("Round trip mismatch: %+v", parsed)
	}
}

func TestFormatLayout_Errors(t *testing.T) {
	if _, err := FormatLayout(3, 3, []Clue{{Pos: Point{3, 0}, Area: 2}}); err == nil {
		t.Error("Expected error for clue outside grid")
	}
	if _, err := FormatLayout(3, 3, []Clue{
		{Pos: Point{0, 0}, Area: 2},
		{Pos: Point{0, 0}, Area: 3},
	}); err == nil {
		t.Error("Expected error for duplicate clue position")
	}
	if _, err := FormatLayout(10, 10, []Clue{{Pos: Point{0, 0}, Area: 62}}); err == nil {
		t.Error("Expected error for area beyond encoding range")
	}
}

func TestLoadConfigByName(t *testing.T) {
	tempDir := t.TempDir()

	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)
	os.Chdir(tempDir)

	os.MkdirAll("configs", 0755)

	configContent := `{
		"name": "Test Config",
		"description": "Test description",
		"width": 4,
		"height": 4,
		"layout": [
			"4.4.",
			"....",
			"4.4.",
			"...."
		],
		"auto_complete": false,
		"messages": {
			"welcome": "Welcome!",
			"placed": "Placed %d cells",
			"overlap": "Overlap!",
			"no_clue": "No clue!",
			"multiple_clues": "%d clues!",
			"area_mismatch": "Got %d, want %d",
			"deleted": "Deleted!",
			"auto_completed": "Filled %d",
			"solved": "Solved with %d rects!"
		}
	}`

	err := os.WriteFile(filepath.Join("configs", "test.json"), []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	// Test loading by name without extension
	config, err := LoadConfigByName("test")
	if err != nil {
		t.Fatalf("Failed to load config by name: %v", err)
	}
	if config.Name != "Test Config" {
		t.Errorf("Expected config name 'Test Config', got '%s'", config.Name)
	}
	if len(config.Layout) != 4 {
		t.Errorf("Expected 4 layout rows, got %d", len(config.Layout))
	}

	// Test loading by name with extension
	config2, err := LoadConfigByName("test.json")
	if err != nil {
		t.Fatalf("Failed to load config by name with extension: %v", err)
	}
	if config2.Name != "Test Config" {
		t.Errorf("Expected config name 'Test Config', got '%s'", config2.Name)
	}

	// Test loading non-existent config
	_, err = LoadConfigByName("nonexistent")
	if err == nil {
		t.Error("Expected error for non-existent config")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected 'not found' error, got: %v", err)
	}
}

func TestLoadConfigByName_RejectsInvalid(t *testing.T) {
	tempDir := t.TempDir()

	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)
	os.Chdir(tempDir)

	os.MkdirAll("configs", 0755)

	// Clue areas sum to 4 on a 16-cell grid
	badContent := `{
		"name": "Bad Config",
		"description": "Areas do not cover the grid",
		"width": 4,
		"height": 4,
		"layout": ["4...", "....", "....", "...."],
		"messages": {
			"welcome": "Welcome!",
			"placed": "Placed %d",
			"overlap": "Overlap!",
			"no_clue": "No clue!",
			"multiple_clues": "%d clues!",
			"area_mismatch": "Got %d, want %d",
			"deleted": "Deleted!",
			"solved": "Solved with %d!"
		}
	}`
	if err := os.WriteFile(filepath.Join("configs", "bad.json"), []byte(badContent), 0644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}

	_, err := LoadConfigByName("bad")
	if err == nil {
		t.Error("Expected validation error for config that cannot cover the grid")
	}
	if !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("Expected invalid config error, got: %v", err)
	}
}

func TestLoadPuzzleConfig_ConfigDirOverride(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("CONFIG_DIR", tempDir)

	configContent := `{
		"name": "Env Config",
		"description": "Loaded through CONFIG_DIR",
		"width": 2,
		"height": 2,
		"layout": ["2.", ".2"],
		"messages": {
			"welcome": "Welcome!",
			"placed": "Placed %d",
			"overlap": "Overlap!",
			"no_clue": "No clue!",
			"multiple_clues": "%d clues!",
			"area_mismatch": "Got %d, want %d",
			"deleted": "Deleted!",
			"solved": "Solved with %d!"
		}
	}`
	if err := os.WriteFile(filepath.Join(tempDir, "env.json"), []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}

	// A "configs/" path is redirected into CONFIG_DIR
	config, err := LoadPuzzleConfig("configs/env.json")
	if err != nil {
		t.Fatalf("Failed to load config through CONFIG_DIR: %v", err)
	}
	if config.Name != "Env Config" {
		t.Errorf("Expected config name 'Env Config', got '%s'", config.Name)
	}
}

func TestDefaultPuzzleConfig(t *testing.T) {
	config := DefaultPuzzleConfig()
	if err := ValidatePuzzleConfig(config); err != nil {
		t.Errorf("Expected default config to be valid, got: %v", err)
	}
	if config.Width != 5 || config.Height != 5 {
		t.Errorf("Expected 5x5 default puzzle, got %dx%d", config.Width, config.Height)
	}

	clues, err := ParseLayout(config.Layout)
	if err != nil {
		t.Fatalf("Failed to parse default layout: %v", err)
	}
	if sum := ClueAreaSum(clues); sum != 25 {
		t.Errorf("Expected default clue areas to sum to 25, got %d", sum)
	}
}

func TestInitBoardStateFromConfig(t *testing.T) {
	config := createValidConfig()
	state := InitBoardStateFromConfig(config)

	if state.Width != config.Width || state.Height != config.Height {
		t.Errorf("Expected %dx%d board, got %dx%d", config.Width, config.Height, state.Width, state.Height)
	}
	if len(state.Clues) != 5 {
		t.Errorf("Expected 5 clues, got %d", len(state.Clues))
	}
	if len(state.Rects) != 0 {
		t.Errorf("Expected no committed rects initially, got %d", len(state.Rects))
	}
	if state.Active != nil {
		t.Error("Expected no active rect initially")
	}
	if state.Solved {
		t.Error("Expected puzzle not solved initially")
	}
	if state.CoveredCells() != 0 {
		t.Errorf("Expected no covered cells initially, got %d", state.CoveredCells())
	}
	if state.Message != config.Messages.Welcome {
		t.Errorf("Expected welcome message, got %q", state.Message)
	}
	if state.ConfigName != config.Name {
		t.Errorf("Expected config name %q, got %q", config.Name, state.ConfigName)
	}

	// Test nil config uses defaults
	defaultState := InitBoardStateFromConfig(nil)
	if defaultState.Width != 5 || defaultState.Height != 5 {
		t.Errorf("Expected 5x5 default board, got %dx%d", defaultState.Width, defaultState.Height)
	}
	if len(defaultState.Clues) == 0 {
		t.Error("Expected default board to have clues")
	}
}
