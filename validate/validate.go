// Command validate provides a small CLI that validates puzzle configuration
// JSON files in the ../configs directory. It checks:
//   - JSON structure and required fields
//   - Grid consistency and allowed characters ('.', '1'-'9', 'a'-'z', 'A'-'Z')
//   - Clue areas summing to exactly the grid cell count
//   - Required message keys and their format verbs
//   - Solvability: the clues admit a rectangle tiling, and only one
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shikaku-go/shikaku/game/engine"
	"github.com/shikaku-go/shikaku/game/solver"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateConfig loads and validates a single puzzle JSON file.
// It performs structural checks, layout/clue validation, message presence,
// and a solver pass proving the puzzle has exactly one solution.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var config engine.PuzzleConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	// Validate required fields
	if config.Name == "" {
		result.Valid = false
		result.Errors = append(result.Errors, "Name is required")
	}
	if config.Description == "" {
		result.Valid = false
		result.Errors = append(result.Errors, "Description is required")
	}

	// Validate grid
	if len(config.Layout) == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "Layout is empty")
	} else if len(config.Layout) != config.Height {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Layout has %d rows but height is %d", len(config.Layout), config.Height))
	}

	clueCount := 0
	clueAreaSum := 0
	minArea := 0
	maxArea := 0

	for i, row := range config.Layout {
		if len(row) != config.Width {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Inconsistent grid width at row %d: expected %d, got %d", i+1, config.Width, len(row)))
		}

		for j := 0; j < len(row); j++ {
			c := row[j]
			if c == engine.EmptyCellChar {
				continue
			}
			area, ok := engine.ParseClueChar(c)
			if !ok {
				result.Valid = false
				result.Errors = append(result.Errors, fmt.Sprintf("Invalid character '%c' at position [%d,%d]", c, i+1, j+1))
				continue
			}
			clueCount++
			clueAreaSum += area
			if minArea == 0 || area < minArea {
				minArea = area
			}
			if area > maxArea {
				maxArea = area
			}
		}
	}

	// Validate puzzle elements
	if clueCount == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "Must have at least 1 clue")
	}

	cells := config.Width * config.Height
	if clueCount > 0 && clueAreaSum != cells {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Clue areas sum to %d but the grid has %d cells", clueAreaSum, cells))
	}

	// Validate messages
	requiredMessages := []struct {
		name  string
		value string
	}{
		{"welcome", config.Messages.Welcome},
		{"solved", config.Messages.Solved},
		{"placed", config.Messages.Placed},
		{"overlap", config.Messages.Overlap},
		{"no_clue", config.Messages.NoClue},
		{"multiple_clues", config.Messages.MultipleClues},
		{"area_mismatch", config.Messages.AreaMismatch},
		{"deleted", config.Messages.Deleted},
	}
	for _, msg := range requiredMessages {
		if msg.value == "" {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Missing required message: %s", msg.name))
		}
	}
	if config.AutoComplete && config.Messages.AutoCompleted == "" {
		result.Valid = false
		result.Errors = append(result.Errors, "Missing required message: auto_completed (auto_complete is enabled)")
	}

	// Format verbs the engine substitutes at runtime
	if config.Messages.Placed != "" && !strings.Contains(config.Messages.Placed, "%d") {
		result.Valid = false
		result.Errors = append(result.Errors, "Message placed must contain %d for the area")
	}
	if config.Messages.AreaMismatch != "" && strings.Count(config.Messages.AreaMismatch, "%d") < 2 {
		result.Valid = false
		result.Errors = append(result.Errors, "Message area_mismatch must contain %d twice for area and clue values")
	}

	// Solvability validation - the clues must admit exactly one tiling
	if result.Valid {
		solveResult := validateSolvability(config.Width, config.Height, config.Layout)
		if !solveResult.Valid {
			result.Valid = false
		}
		result.Errors = append(result.Errors, solveResult.Errors...)
	}

	// Add informational data
	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Grid: %dx%d", config.Width, config.Height))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Clues: %d (areas %d to %d)", clueCount, minArea, maxArea))
		if config.AutoComplete {
			result.Errors = append(result.Errors, "✓ Auto-complete: enabled")
		}
	}

	return result
}

// validateSolvability runs the solver over the layout and requires exactly
// one tiling. Counting stops at the second solution, so ambiguous puzzles
// are cheap to reject.
func validateSolvability(width, height int, layout []string) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	if len(layout) == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "Cannot validate solvability: empty layout")
		return result
	}

	clues, err := engine.ParseLayout(layout)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot validate solvability: %v", err))
		return result
	}

	switch solver.Count(width, height, clues, 2) {
	case 0:
		result.Valid = false
		result.Errors = append(result.Errors, "Solvability failure: no rectangle tiling satisfies the clues")
	case 1:
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Solvability: unique solution for %d clues", len(clues)))
	default:
		result.Valid = false
		result.Errors = append(result.Errors, "Solvability failure: puzzle has multiple solutions")
	}

	return result
}

// main scans the configs directory (default ../configs, overridable with a
// single argument) for *.json files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
