// Package api provides the HTTP REST interface for the Shikaku puzzle server.
//
// The api package implements:
//   - RESTful endpoints for board operations
//   - Session management endpoints
//   - Configuration listing, retrieval and upload
//   - WebSocket upgrade handling
//   - Static file serving
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session (named config or generated puzzle)
//   - GET /api/sessions - List all sessions (sort, order, limit query params)
//   - GET /api/sessions/unified - Aggregated multi-board view
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Board State:
//   - GET /api/sessions/{id}/state - Current board state
//   - GET /api/sessions/{id}/history - Placement history with pagination
//   - GET /api/sessions/{id}/hint - Next placeable rectangle, if any
//   - GET /api/sessions/{id}/progress - Coverage and solvability report
//
// Interactive Selection:
//   - POST /api/sessions/{id}/begin - Anchor a selection {"x":0,"y":0}
//   - POST /api/sessions/{id}/resize - Move the free corner {"x":2,"y":1}
//   - POST /api/sessions/{id}/autofill - Extend to grid edge {"direction":"right"}
//   - POST /api/sessions/{id}/commit - Place the active selection
//   - POST /api/sessions/{id}/cancel - Discard the active selection
//
// Direct Placement:
//   - POST /api/sessions/{id}/place - Place by corners {"a":{...},"b":{...}}
//   - POST /api/sessions/{id}/bulk-place - Place several rects in order
//   - POST /api/sessions/{id}/delete-rect - Remove the rect covering a cell
//   - POST /api/sessions/{id}/reset - Clear all placed rectangles
//   - POST /api/sessions/{id}/regenerate - New generated puzzle {"seed":7}
//
// Configuration:
//   - GET /api/configs - List available configurations
//   - GET /api/configs/{name} - Get one configuration
//   - POST /api/configs - Upload a configuration
//
// Health:
//   - GET /api/health - Liveness probe
//
// Request/Response Format:
//
// All endpoints accept and return JSON. Creating a session takes either a
// config_id (config_name is accepted as a deprecated alias) or generation
// parameters:
//
//	{
//	  "config_id": "classic",            // named config, or:
//	  "width": 10, "height": 10,         // generated puzzle dimensions
//	  "seed": 42,                        // optional, 0 picks a random seed
//	  "allow_ambiguous": false           // skip the uniqueness check
//	}
//
// Rejected placements are not HTTP errors. A placement that violates a
// puzzle rule returns 200 with success=false and an attempted block
// describing the rejection (reason, clue count, clue area). Calling an
// operation in the wrong selection state returns 409; unknown sessions
// return 404.
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
package api

//
// Enriched Responses (Place and Bulk Place)
//
// Place (POST /api/sessions/{id}/place)
//   Response:
//     - placement: { idx, rect, area, auto?, place_number } // present on success
//     - attempted: { rect, area, reason, clue_count?, clue_area? } // present when rejected
//     - board_state with rects, clues, covered counts and solved flag
//
// Bulk Place (POST /api/sessions/{id}/bulk-place)
//   Response:
//     - requested_placements, placements_executed
//     - stopped_reason (text), stop_reason_code (enum), stopped_on_placement (1-based), truncated, limit
//     - steps: [{ idx, rect, area, auto?, place_number }]
//     - attempted: failed rectangle on first rejection
//     - start_covered, end_covered, covered_delta
//     - solved, message
