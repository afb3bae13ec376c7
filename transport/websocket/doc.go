// Package websocket provides the WebSocket transport for the Shikaku server.
//
// The websocket package implements:
//   - Real-time board state broadcasting
//   - Session-aware WebSocket connections
//   - Connection lifecycle management
//   - Ping/pong keepalive with read and write deadlines
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. The Hub serializes its session map through the
// register/unregister/broadcast channels consumed by Run, so callers on any
// goroutine can broadcast safely. Each client connection gets a readPump and
// a writePump goroutine.
//
// Message Protocol:
//
// Messages are JSON-encoded. Outgoing state updates carry the complete
// BoardState:
//
//	{"session_id": "a1b2c3d4", "board_state": {...}, "event": "state_update"}
//
// Clients do not send game commands over the socket; play happens through
// the REST API or MCP tools, and the socket exists to push the resulting
// state to every viewer of the session.
//
// Session Integration:
//
// WebSocket connections are session-aware. Clients specify their session ID
// via query parameter (?session=a1b2c3d4) when establishing the connection.
// State updates are broadcast only to clients connected to the same session.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	// after a successful game operation
//	hub.BroadcastToSession(sessionID, state)
//
// Connection Lifecycle:
//
// 1. Client connects with session ID
// 2. Connection registered with hub
// 3. Client receives state updates as play happens
// 4. Disconnection triggers cleanup
package websocket
