// Package mcp provides the Model Context Protocol interface for the
// Shikaku puzzle service.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for puzzle operations
//   - Session-aware command execution
//   - Stdio and HTTP transport modes
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - get_board: Get current board state with grid visualization
//   - place_rect: Place one rectangle by two opposite corners
//   - bulk_place: Place multiple rectangles in sequence
//   - delete_rect: Remove the placed rectangle covering a cell
//   - reset_game: Reset the board to its initial state
//   - regenerate: Replace a generated puzzle with a fresh one
//   - get_history: Retrieve placement history with pagination
//   - get_hint: Get a forced next rectangle
//   - check_progress: Coverage counts and solvability
//   - create_session: Create new puzzle session with config selection
//   - get_session: Get specific session details
//   - list_sessions: List all active sessions
//   - list_configs: List available puzzle configurations
//   - game_instructions: Comprehensive rules and agent strategies
//   - describe_cell: Decode a single grid cell
//
// Architecture:
//
// The client is a thin proxy: every tool call becomes a REST request
// against the HTTP API, and the JSON response is rendered as agent-
// readable text. State lives server-side only, so stdio agents and web
// clients share the same sessions.
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: Direct stdio communication for local MCP clients
//   - HTTP: the /mcp endpoint forwards raw MCP messages
//
// Usage:
//
//	// Stdio mode
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP mode
//	client := mcp.NewClient(baseURL)
//	response := client.GetMCPServer().HandleMessage(ctx, rawJSON)
//
// AI Integration:
//
// The MCP interface enables AI agents to:
//   - Autonomously solve puzzles
//   - Develop and test partition strategies
//   - Analyze board states and make decisions
//   - Manage multiple puzzle sessions
//   - Learn from placement history
package mcp
