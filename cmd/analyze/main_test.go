package main

import (
	"os"
	"testing"

	"github.com/shikaku-go/shikaku/game/engine"
)

func TestClueStats(t *testing.T) {
	clues := []engine.Clue{
		{Pos: engine.Point{X: 0, Y: 0}, Area: 4},
		{Pos: engine.Point{X: 1, Y: 0}, Area: 1},
		{Pos: engine.Point{X: 2, Y: 0}, Area: 10},
		{Pos: engine.Point{X: 3, Y: 0}, Area: 1},
	}

	minArea, maxArea, singles, avg := clueStats(clues)
	if minArea != 1 {
		t.Errorf("Expected min area 1, got %d", minArea)
	}
	if maxArea != 10 {
		t.Errorf("Expected max area 10, got %d", maxArea)
	}
	if singles != 2 {
		t.Errorf("Expected 2 one-cell clues, got %d", singles)
	}
	if avg != 4.0 {
		t.Errorf("Expected average area 4.0, got %f", avg)
	}
}

func TestBranching_ClassicLayout(t *testing.T) {
	layout := []string{
		"4..45",
		".....",
		".....",
		".....",
		"6..6.",
	}
	clues, err := engine.ParseLayout(layout)
	if err != nil {
		t.Fatalf("Failed to parse layout: %v", err)
	}

	stats := branching(5, 5, clues)

	if stats.Total != 11 {
		t.Errorf("Expected 11 total candidates, got %d", stats.Total)
	}
	if stats.Forced != 1 {
		t.Errorf("Expected 1 forced clue, got %d", stats.Forced)
	}
	if stats.Max != 4 {
		t.Errorf("Expected widest clue to have 4 candidates, got %d", stats.Max)
	}
	if stats.Widest.Area != 6 || stats.Widest.Pos.X != 3 || stats.Widest.Pos.Y != 4 {
		t.Errorf("Expected widest clue 6 at (3,4), got %d at (%d,%d)",
			stats.Widest.Area, stats.Widest.Pos.X, stats.Widest.Pos.Y)
	}
	if len(stats.Dead) != 0 {
		t.Errorf("Expected no dead clues, got %d", len(stats.Dead))
	}
}

func TestBranching_DeadClue(t *testing.T) {
	// A clue of 3 has no rectangle shape that fits a 2x2 grid
	clues := []engine.Clue{
		{Pos: engine.Point{X: 0, Y: 0}, Area: 3},
	}

	stats := branching(2, 2, clues)

	if stats.Total != 0 {
		t.Errorf("Expected 0 candidates, got %d", stats.Total)
	}
	if len(stats.Dead) != 1 {
		t.Fatalf("Expected 1 dead clue, got %d", len(stats.Dead))
	}
	if stats.Dead[0].Area != 3 {
		t.Errorf("Expected dead clue area 3, got %d", stats.Dead[0].Area)
	}
}

func TestDifficulty(t *testing.T) {
	tests := []struct {
		name          string
		cells         int
		avgCandidates float64
		forced        int
		clueCount     int
		expected      string
	}{
		{"mostly forced", 25, 2.2, 4, 5, "Easy"},
		{"all forced", 25, 1.0, 5, 5, "Easy"},
		{"moderate branching", 25, 5.0, 0, 5, "Medium"},
		{"high branching", 25, 8.0, 0, 5, "Hard"},
		{"large grid scales up", 144, 5.0, 0, 20, "Hard"},
		{"half forced", 25, 8.0, 3, 6, "Medium"},
	}

	for _, test := range tests {
		result := difficulty(test.cells, test.avgCandidates, test.forced, test.clueCount)
		if result != test.expected {
			t.Errorf("%s: difficulty(%d, %.1f, %d, %d) = %s, expected %s",
				test.name, test.cells, test.avgCandidates, test.forced, test.clueCount,
				result, test.expected)
		}
	}
}

func TestAnalyzeConfig_ValidFile(t *testing.T) {
	// Create a temporary test config file
	validConfig := `{
		"name": "Test Puzzle",
		"description": "Test puzzle configuration",
		"width": 5,
		"height": 5,
		"layout": [
			"4..45",
			".....",
			".....",
			".....",
			"6..6."
		],
		"messages": {
			"welcome": "Welcome!"
		}
	}`

	tmpfile, err := os.CreateTemp("", "test_config_*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(validConfig)); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpfile.Close()

	// Test that analyzeConfig doesn't panic
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("analyzeConfig panicked: %v", r)
		}
	}()

	analyzeConfig(tmpfile.Name())
}

func TestAnalyzeConfig_InvalidFile(t *testing.T) {
	// Test with non-existent file
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("analyzeConfig panicked with invalid file: %v", r)
		}
	}()

	analyzeConfig("/non/existent/file.json")
}

func TestAnalyzeConfig_InvalidJSON(t *testing.T) {
	// Create a temporary file with invalid JSON
	invalidJSON := `{"name": "test", invalid json}`

	tmpfile, err := os.CreateTemp("", "test_config_*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(invalidJSON)); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpfile.Close()

	// Test that analyzeConfig doesn't panic with invalid JSON
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("analyzeConfig panicked with invalid JSON: %v", r)
		}
	}()

	analyzeConfig(tmpfile.Name())
}

func TestAnalyzeConfig_DeadClue(t *testing.T) {
	// A 3 clue cannot fit any rectangle in a 2x2 grid, so the analysis
	// must report it and stop before the solver pass
	configWithDeadClue := `{
		"name": "Dead Clue Test",
		"description": "Config with an unsatisfiable clue",
		"width": 2,
		"height": 2,
		"layout": [
			"3.",
			".1"
		],
		"messages": {
			"welcome": "Welcome!"
		}
	}`

	tmpfile, err := os.CreateTemp("", "test_config_*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(configWithDeadClue)); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpfile.Close()

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("analyzeConfig panicked with dead clue: %v", r)
		}
	}()

	analyzeConfig(tmpfile.Name())
}
