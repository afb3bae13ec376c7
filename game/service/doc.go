// Package service provides the business logic layer for the puzzle game.
//
// The service package implements:
//   - Multi-session puzzle management
//   - Configuration loading and on-demand puzzle generation
//   - Placement processing and validation
//   - Session lifecycle management
//   - Placement history tracking
//   - Solver-backed hints and progress checks
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level puzzle operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages puzzle configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the partition engine, providing session isolation, configuration management,
// and business logic orchestration. Each session maintains its own engine
// instance with independent state, guarded by a per-session mutex so
// transports can address different sessions concurrently.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	// Create a new session from a preset
//	sessionInfo, err := gameService.CreateSession(ctx, service.CreateSessionRequest{ConfigName: "classic"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Or from generated dimensions
//	generated, err := gameService.CreateSession(ctx, service.CreateSessionRequest{Width: 8, Height: 8, Seed: 42})
//
//	// Place a rectangle
//	result, err := gameService.PlaceRect(ctx, sessionInfo.ID, engine.Point{X: 0, Y: 0}, engine.Point{X: 1, Y: 1})
//
// Error Handling:
//
// Placement rejections (overlap, wrong clue count, area mismatch) are not
// errors: they come back as OpResult values with Success=false and an
// AttemptInfo describing the rejection, so play continues. Errors are
// reserved for missing sessions, wrong-state operations, and generation
// failures.
//
// Session Management:
//
// Sessions are identified by unique short IDs and maintain independent
// board state. Multiple sessions can run concurrently with different
// puzzles. Sessions track creation time, last access time, and placement
// history for analytics and debugging.
package service
