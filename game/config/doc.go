// Package config provides configuration management for the puzzle game.
//
// The config package handles:
//   - Loading puzzle configurations from JSON files
//   - Configuration validation and verification
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Puzzle configurations are stored as JSON files in the configs directory.
// Each configuration defines:
//   - Grid dimensions (width and height)
//   - Clue layout using character mapping (.=empty, 1-9, a-z, A-Z for 1-61)
//   - Auto-completion behavior for forced regions
//   - Game messages for various events
//
// The sum of all clue values in a layout must equal width*height so that
// the clues can describe a full partition of the grid.
//
// Available Configurations:
//
// The package supports multiple difficulty levels and grid sizes:
//   - classic: Original 5x5 grid with five clues
//   - easy: Small grid for learning the rules
//   - medium: 7x7 grid with a mix of clue sizes
//   - challenge: Large grid with many small rectangles
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//
//	// Load specific configuration
//	puzzleConfig, err := manager.LoadConfig("easy")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Get default configuration
//	defaultConfig := manager.GetDefault()
//
//	// List available configurations
//	configs, err := manager.ListConfigs()
//
// The manager caches loaded configurations, so repeated loads of the same
// name return the same instance. Use RefreshCache to pick up edits made to
// the files on disk. The default configuration resolves to classic.json if
// present, otherwise the first valid config in the directory, otherwise the
// built-in puzzle from engine.DefaultPuzzleConfig.
//
// Validation:
//
// All configurations are validated for:
//   - Proper grid dimensions and layout row lengths
//   - Valid clue characters and per-clue area bounds
//   - Clue areas summing to the full grid area
//   - Required message templates and format verbs
package config
