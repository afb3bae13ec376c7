// Package engine provides the core logic for the Shikaku puzzle game.
//
// The engine package implements the puzzle mechanics including:
//   - Grid and clue modelling with compact layout strings
//   - The partition state machine (begin, resize, auto-fill, commit,
//     cancel, delete)
//   - Placement validation: no overlaps, exactly one clue per rectangle,
//     rectangle area equal to its clue
//   - Auto-completion of enclosed regions and the solved check
//   - Configuration loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for puzzle operations,
// implemented by PartitionEngine. BoardState represents the current state
// of play, while PuzzleConfig defines the grid and clues loaded from JSON
// files or produced by the generator.
//
// Usage:
//
//	config, err := engine.LoadConfigByName("classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	eng, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Draw a 2x2 rectangle and commit it
//	eng.Begin(engine.Point{X: 0, Y: 0})
//	eng.Resize(engine.Point{X: 1, Y: 1})
//	solved, err := eng.Commit()
//
// Game Rules:
//
// The player partitions the grid into axis-aligned rectangles. A commit
// succeeds only if the rectangle overlaps no committed rectangle and
// contains exactly one clue whose value equals the rectangle's area. The
// puzzle is solved when committed rectangles cover every cell.
package engine
