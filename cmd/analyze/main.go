// Command analyze prints quick, human-readable difficulty heuristics about
// puzzle files in the project's configs directory. It summarizes dimensions,
// clue area distribution and per-clue candidate branching, verifies solution
// uniqueness, and grades an estimated difficulty.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"

	"github.com/shikaku-go/shikaku/game/engine"
	"github.com/shikaku-go/shikaku/game/solver"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
)

// branchingStats summarizes per-clue candidate counts across a layout
type branchingStats struct {
	Total  int
	Forced int
	Max    int
	Widest engine.Clue
	Dead   []engine.Clue
}

func main() {
	files := []string{
		filepath.Join("configs", "classic.json"),
		filepath.Join("configs", "easy.json"),
		filepath.Join("configs", "medium.json"),
		filepath.Join("configs", "challenge.json"),
	}
	if len(os.Args) > 1 {
		files = os.Args[1:]
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		analyzeConfig(file)
	}
}

func analyzeConfig(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		red.Printf("Error reading file: %v\n", err)
		return
	}

	var config engine.PuzzleConfig
	if err := json.Unmarshal(data, &config); err != nil {
		red.Printf("Error parsing JSON: %v\n", err)
		return
	}

	clues, err := engine.ParseLayout(config.Layout)
	if err != nil {
		red.Printf("Error parsing layout: %v\n", err)
		return
	}

	fmt.Printf("Name: %s\n", config.Name)
	fmt.Printf("Grid Size: %d x %d\n", config.Width, config.Height)
	fmt.Printf("Clues: %d\n", len(clues))

	if len(clues) == 0 {
		red.Printf("⚠️  CRITICAL: layout has no clues!\n")
		return
	}

	minArea, maxArea, singles, avgArea := clueStats(clues)
	fmt.Printf("Clue Areas: %d to %d (average %.1f)\n", minArea, maxArea, avgArea)
	if singles > 0 {
		yellow.Printf("⚠️  %d one-cell clues (trivial placements)\n", singles)
	}

	stats := branching(config.Width, config.Height, clues)
	avgCandidates := float64(stats.Total) / float64(len(clues))
	fmt.Printf("Candidate Rectangles: %d total, %.1f per clue\n", stats.Total, avgCandidates)
	fmt.Printf("Forced Clues (single candidate): %d\n", stats.Forced)
	fmt.Printf("Widest Clue: %d at (%d, %d) with %d candidates\n",
		stats.Widest.Area, stats.Widest.Pos.X, stats.Widest.Pos.Y, stats.Max)

	if len(stats.Dead) > 0 {
		red.Printf("⚠️  CRITICAL: %d clues have no candidate rectangle!\n", len(stats.Dead))
		for i, c := range stats.Dead {
			if i < 5 { // Show first 5 dead clues
				red.Printf("   Dead clue: %d at (%d, %d)\n", c.Area, c.Pos.X, c.Pos.Y)
			}
		}
		if len(stats.Dead) > 5 {
			red.Printf("   ... and %d more\n", len(stats.Dead)-5)
		}
		return
	}

	start := time.Now()
	solutions := solver.Count(config.Width, config.Height, clues, 2)
	elapsed := time.Since(start)

	switch solutions {
	case 0:
		red.Printf("⚠️  CRITICAL: no rectangle tiling satisfies the clues!\n")
	case 1:
		green.Printf("✅ Unique solution (verified in %v)\n", elapsed.Round(time.Microsecond))
	default:
		yellow.Printf("⚠️  WARNING: puzzle has multiple solutions\n")
	}

	grade := difficulty(config.Width*config.Height, avgCandidates, stats.Forced, len(clues))
	fmt.Printf("Difficulty: ")
	switch grade {
	case "Easy":
		green.Printf("%s\n", grade)
	case "Medium":
		yellow.Printf("%s\n", grade)
	default:
		red.Printf("%s\n", grade)
	}
}

// clueStats summarizes the clue area distribution
func clueStats(clues []engine.Clue) (minArea, maxArea, singles int, avg float64) {
	sum := 0
	for _, c := range clues {
		if minArea == 0 || c.Area < minArea {
			minArea = c.Area
		}
		if c.Area > maxArea {
			maxArea = c.Area
		}
		if c.Area == 1 {
			singles++
		}
		sum += c.Area
	}
	if len(clues) > 0 {
		avg = float64(sum) / float64(len(clues))
	}
	return minArea, maxArea, singles, avg
}

// branching counts candidate rectangles for every clue
func branching(width, height int, clues []engine.Clue) branchingStats {
	var stats branchingStats
	for _, c := range clues {
		n := len(solver.Candidates(width, height, clues, c))
		stats.Total += n
		switch n {
		case 0:
			stats.Dead = append(stats.Dead, c)
		case 1:
			stats.Forced++
		}
		if n > stats.Max {
			stats.Max = n
			stats.Widest = c
		}
	}
	return stats
}

// difficulty grades a puzzle from solver branching. Forced clues chain into
// each other and solve by inspection, while large grids with high branching
// need real search.
func difficulty(cells int, avgCandidates float64, forced, clueCount int) string {
	score := avgCandidates * (1 - float64(forced)/float64(clueCount))
	if cells > 100 {
		score *= 1.5
	}
	switch {
	case score < 3:
		return "Easy"
	case score < 6:
		return "Medium"
	default:
		return "Hard"
	}
}
