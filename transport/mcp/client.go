package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/shikaku-go/shikaku/game/engine"
	"github.com/shikaku-go/shikaku/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Shikaku Puzzle",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Shikaku Puzzle - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Partition the grid into rectangles. Every rectangle must contain exactly one number equal to its own cell count, and every cell must end up covered.

AVAILABLE TOOLS:
- get_board: Get current board state with grid visualization
- place_rect: Place one rectangle by two opposite corners - requires intent explanation
- bulk_place: Place multiple rectangles at once - requires intent explanation
- delete_rect: Remove the placed rectangle covering a cell
- reset_game: Reset to initial state
- regenerate: Replace a generated puzzle with a freshly generated one
- get_history: View past placements
- get_hint: Get a forced next rectangle, if one exists
- check_progress: Coverage counts and solvability of the current position
- create_session: Create new game session
- get_session: Get session details
- list_sessions: List all active sessions
- list_configs: List available configurations
- game_instructions: Get comprehensive game instructions and rules
- describe_cell: Get detailed info about a specific grid cell (helps decode clue characters)

NOTE: The 'intent' parameter on place_rect/bulk_place tools serves as rubber duck debugging - explain your reasoning!`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection or generated puzzle dimensions",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the config to use (optional)",
				},
				"width": map[string]interface{}{
					"type":        "integer",
					"description": "Grid width for a generated puzzle (use together with height, optional)",
				},
				"height": map[string]interface{}{
					"type":        "integer",
					"description": "Grid height for a generated puzzle (use together with width, optional)",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Generator seed for a reproducible puzzle (optional)",
				},
				"allow_ambiguous": map[string]interface{}{
					"type":        "boolean",
					"description": "Accept generated puzzles with more than one solution",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to retrieve",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_board",
		Description: "Get the current board state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetBoard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "place_rect",
		Description: "Place a rectangle spanning two opposite corners. The rectangle must contain exactly one number equal to its area and must not overlap placed rectangles.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"ax": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (column) of the first corner (0-based)",
				},
				"ay": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate (row) of the first corner (0-based)",
				},
				"bx": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (column) of the opposite corner (0-based)",
				},
				"by": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate (row) of the opposite corner (0-based)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this placement (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "ax", "ay", "bx", "by"},
		},
	}, c.handlePlaceRect)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_place",
		Description: "Place multiple rectangles in sequence. Stops at the first rejected placement.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"rects": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"ax": map[string]interface{}{"type": "integer"},
							"ay": map[string]interface{}{"type": "integer"},
							"bx": map[string]interface{}{"type": "integer"},
							"by": map[string]interface{}{"type": "integer"},
						},
						"required": []string{"ax", "ay", "bx", "by"},
					},
					"description": "Array of rectangles, each named by two opposite corners",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of placements (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset the board before placing",
				},
			},
			Required: []string{"session_id", "rects"},
		},
	}, c.handleBulkPlace)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_rect",
		Description: "Remove the placed rectangle covering a cell. Removing nothing is a no-op, not an error.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (column) of a cell inside the rectangle to remove (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate (row) of a cell inside the rectangle to remove (0-based)",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDeleteRect)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to initial state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "regenerate",
		Description: "Replace a generated puzzle with a freshly generated one of the same dimensions. Only works on generated sessions.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Generator seed for the replacement puzzle (optional)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleRegenerate)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_history",
		Description: "Get placement history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_hint",
		Description: "Get a suggested next rectangle. The suggestion is forced: it appears in every remaining solution of the current position.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetHint)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "check_progress",
		Description: "Get coverage counts and whether the current position can still reach a solution. Solvable=false means a placed rectangle has to come out first.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleCheckProgress)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get detailed information about a specific cell in the grid, including its exact character. Useful for decoding clue letters ('a'-'z' are areas 10-35, 'A'-'Z' are 36-61) and checking coverage.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (column) of the cell to describe (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate (row) of the cell to describe (0-based)",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	configName, _ := args["config_name"].(string)
	width, _ := args["width"].(float64)
	height, _ := args["height"].(float64)
	seed, hasSeed := args["seed"].(float64)
	allowAmbiguous, _ := args["allow_ambiguous"].(bool)

	body := map[string]interface{}{}
	if configName != "" {
		body["config_id"] = configName
	}
	if width > 0 {
		body["width"] = int(width)
	}
	if height > 0 {
		body["height"] = int(height)
	}
	if hasSeed {
		body["seed"] = int64(seed)
	}
	if allowAmbiguous {
		body["allow_ambiguous"] = true
	}

	var session service.SessionInfo
	err := c.apiCall("POST", "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n", session.ID, session.ConfigName)
	if session.Generated {
		result += fmt.Sprintf("Generated puzzle (seed %d)\n", session.Seed)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall("GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		result += fmt.Sprintf("- %s (Config: %s, Created: %s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var session service.SessionInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatSessionInfo(&session)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var state engine.BoardState
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatBoardState(&state)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handlePlaceRect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	ax, _ := args["ax"].(float64)
	ay, _ := args["ay"].(float64)
	bx, _ := args["bx"].(float64)
	by, _ := args["by"].(float64)
	intent, _ := args["intent"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	body := service.RectSpec{
		A: engine.Point{X: int(ax), Y: int(ay)},
		B: engine.Point{X: int(bx), Y: int(by)},
	}

	var result service.OpResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/place", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatPlaceResult(&result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleBulkPlace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	rectsRaw, _ := args["rects"].([]interface{})
	intent, _ := args["intent"].(string)
	reset, _ := args["reset"].(bool)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	// Convert raw corner objects to rect specs
	rects := make([]service.RectSpec, 0, len(rectsRaw))
	for _, raw := range rectsRaw {
		m, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		ax, _ := m["ax"].(float64)
		ay, _ := m["ay"].(float64)
		bx, _ := m["bx"].(float64)
		by, _ := m["by"].(float64)
		rects = append(rects, service.RectSpec{
			A: engine.Point{X: int(ax), Y: int(ay)},
			B: engine.Point{X: int(bx), Y: int(by)},
		})
	}

	body := map[string]interface{}{
		"rects": rects,
		"reset": reset,
	}

	var result service.BulkPlaceResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/bulk-place", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatBulkPlaceResult(sessionID, &result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleDeleteRect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	x, _ := args["x"].(float64)
	y, _ := args["y"].(float64)

	body := engine.Point{X: int(x), Y: int(y)}

	var result service.OpResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/delete-rect", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := ""
	if result.Success {
		response = fmt.Sprintf("✓ Rectangle at (%d,%d) removed\n", int(x), int(y))
	} else {
		response = fmt.Sprintf("✗ No rectangle covers (%d,%d)\n", int(x), int(y))
	}

	if len(result.Events) > 0 {
		response += "Events:\n"
		for _, event := range result.Events {
			response += fmt.Sprintf("- %s: %s\n", event.Type, event.Message)
		}
	}

	response += "\n" + formatBoardState(result.BoardState)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var response struct {
		Message string             `json:"message"`
		State   *engine.BoardState `json:"state"`
	}

	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/reset", sessionID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatBoardState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleRegenerate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var body interface{}
	if seed, ok := args["seed"].(float64); ok {
		body = map[string]interface{}{"seed": int64(seed)}
	}

	var response struct {
		Message string             `json:"message"`
		State   *engine.BoardState `json:"state"`
	}

	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/regenerate", sessionID), body, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatBoardState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	params := "?"
	if page, ok := args["page"].(float64); ok {
		params += fmt.Sprintf("page=%d&", int(page))
	}
	if limit, ok := args["limit"].(float64); ok {
		params += fmt.Sprintf("limit=%d&", int(limit))
	}

	var history service.HistoryResponse
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/history%s", sessionID, params), nil, &history)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Also fetch current segment from live state
	var session service.SessionInfo
	if err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session); err != nil {
		// If fetching session fails, still return the history
		result := formatHistory(&history)
		return mcp.NewToolResultText(result), nil
	}

	result := formatHistory(&history)
	result += "\n" + formatCurrentSegment(session.BoardState)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetHint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var hint service.HintResult
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/hint", sessionID), nil, &hint)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !hint.Available {
		if hint.Message != "" {
			return mcp.NewToolResultText(fmt.Sprintf("No hint available: %s", hint.Message)), nil
		}
		return mcp.NewToolResultText("No hint available"), nil
	}

	var b strings.Builder
	if hint.Rect != nil {
		r := *hint.Rect
		b.WriteString(fmt.Sprintf("Hint: place %s (%dx%d, area %d)", r, r.Width(), r.Height(), r.Area()))
	} else {
		b.WriteString("Hint available")
	}
	if hint.Clue != nil {
		b.WriteString(fmt.Sprintf(" for the %d clue at (%d,%d)", hint.Clue.Area, hint.Clue.Pos.X, hint.Clue.Pos.Y))
	}
	if hint.Message != "" {
		b.WriteString("\n" + hint.Message)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleCheckProgress(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var report service.ProgressReport
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/progress", sessionID), nil, &report)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Covered: %d/%d cells\n", report.CoveredCells, report.TotalCells))
	b.WriteString(fmt.Sprintf("Rectangles placed: %d\n", report.PlacedRects))
	b.WriteString(fmt.Sprintf("Clues remaining: %d\n", report.RemainingClues))
	b.WriteString(fmt.Sprintf("Solvable from here: %v\n", report.Solvable))
	if report.Solved {
		b.WriteString("\n🎉 SOLVED!")
	} else if !report.Solvable {
		b.WriteString("\n⚠️ Dead position: at least one placed rectangle has to come out before the puzzle can be finished.")
	}
	if report.Description != "" {
		b.WriteString(fmt.Sprintf("\n%s", report.Description))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	err := c.apiCall("GET", "/api/configs", nil, &configs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Configurations:\n\n"
	for _, config := range configs {
		result += fmt.Sprintf("• %s (%s)\n  %s\n  Grid: %dx%d, Clues: %d\n\n",
			config.ConfigID, config.Name, config.Description, config.Width, config.Height, config.ClueCount)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🧩 Shikaku Puzzle - Complete Instructions

GAME OBJECTIVE:
Partition the grid into rectangles. Every rectangle must contain exactly one number, that number must equal the rectangle's cell count, and every cell of the grid must end up inside some rectangle.

GAME MECHANICS:
• Placement: name two opposite corners, the rectangle spans every cell between them (inclusive)
• Validation: a placement is rejected if it overlaps a placed rectangle, contains no number, contains more than one number, or its area differs from its number
• Deletion: remove any placed rectangle and try a different split (rejections never change the board)
• Auto-completion: on configs with auto_complete, enclosed leftover regions that can only be a single rectangle fill themselves in after your placement
• Victory: every cell covered

GRID LEGEND:
• 1-9 - clue cell, the digit is the required rectangle area
• a-z - clue cell, areas 10-35 ('a'=10, 'b'=11, ... 'z'=35) ⚠️ CRITICAL: letters are NUMBERS, not labels!
• A-Z - clue cell, areas 36-61 ('A'=36, ... 'Z'=61)
• . - empty cell, still uncovered
• # - cell covered by a placed rectangle
• * - cell inside the in-progress selection (interactive clients only)

🤖 AI AGENTS - CRITICAL SUCCESS STRATEGIES:

⚠️ CLUE DECODING (MOST COMMON FAILURE POINT):
BEFORE any planning, decode every clue character to its decimal area:

1. **Decode Character-by-Character**: 'c' is not a label, it is area 12.
   Example: row "..c..4" contains TWO clues:
   Position 2: 'c' = area 12
   Position 5: '4' = area 4

2. **Common Misreading Patterns**:
   - Treating 'a'-'z' letters as walls or markers instead of areas
   - Reading 'b' (11) as 'B' (37) - case changes the value!
   - Missing small digits between '.' runs

3. **Verification Strategy**:
   - The board output lists every clue in decimal ("Clues: 12@(2,0) ...") - trust that list
   - Use describe_cell on any character you are unsure about
   - The clue areas always sum to width*height - check your decoded total

📐 FACTORIZATION FIRST:
For each clue, enumerate its rectangle shapes: area 12 allows 1x12, 2x6, 3x4, 4x3, 6x2, 12x1.
Discard shapes that leave the grid, overlap placed rectangles, or swallow a second clue.
A clue with exactly one surviving shape is FORCED - place it immediately.

🧭 WORK FROM CORNERS AND EDGES:
Corner cells can only be covered by rectangles touching the corner, so corner clues have few candidates. Edges next. Interior clues usually resolve last.

🧩 REGION REASONING:
- Every uncovered cell must be claimed by some remaining clue's rectangle
- If an uncovered cell is reachable by NO remaining clue shape, the position is dead: delete a rectangle
- Narrow corridors between placed rectangles often admit exactly one shape

🔄 ITERATIVE DEVELOPMENT:
1. **Analysis**: decode all clues, list factorizations, find forced placements
2. **Planning**: place forced rectangles first, then case-split the rest
3. **Execution**: use bulk_place for committed plans, place_rect while exploring
4. **Refinement**: on rejection read the reason (overlap, no_clue, multiple_clues, area_mismatch), update your model, retry

🚨 CRITICAL PITFALLS TO AVOID:
- ❌ Treating letter clues as labels instead of areas
- ❌ Placing a rectangle that spans two numbers (exactly one is required)
- ❌ Off-by-one areas: corners are INCLUSIVE, (0,0)-(1,1) is 4 cells, not 1
- ❌ Mixing up coordinates: x is the column, y is the row, both 0-based
- ❌ Leaving an enclosed empty pocket that no remaining clue can reach
- ❌ Ignoring check_progress: solvable=false means stop placing and start deleting

🎮 API USAGE BEST PRACTICES:
- Use bulk_place for efficiency rather than individual placements
- Call check_progress after each batch; a dead position never fixes itself
- Use get_hint when stuck: the suggestion appears in every remaining solution
- Use describe_cell to verify characters and coverage
- Rejected placements return diagnostics, not errors - read the reason field

PLACEMENT COMMANDS:
- place_rect: one rectangle from corner (ax,ay) to corner (bx,by), any corner order
- bulk_place: a whole sequence, stops at the first rejection
- delete_rect: remove the rectangle covering cell (x,y)
- reset_game / regenerate: start over on the same or a fresh puzzle

VICTORY CONDITIONS:
- Cover all width*height cells with valid rectangles
- The board reports "🎉 SOLVED!" when the partition is complete

SESSION MANAGEMENT:
- Multiple puzzle sessions can run simultaneously
- Each session has a unique 8-character ID
- Sessions maintain independent state and configuration
- Use session-specific tools for multi-puzzle management

Remember: decode every clue character to its decimal area before planning, place forced rectangles first, and watch check_progress for dead positions. The most common AI failure is treating letter clues as labels - 'a' means TEN!

Good luck partitioning the grid! 🧩📐✂️`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	x := int(args["x"].(float64))
	y := int(args["y"].(float64))

	// Get the current board state to access clues and coverage
	var state engine.BoardState
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p := engine.Point{X: x, Y: y}
	if !state.InBounds(p) {
		return mcp.NewToolResultError(fmt.Sprintf("Coordinates (%d, %d) are out of bounds. Grid is %dx%d (x 0-%d, y 0-%d)",
			x, y, state.Width, state.Height, state.Width-1, state.Height-1)), nil
	}

	cellChar := charAt(&state, p)
	clue, hasClue := state.ClueAtCell(p)
	rect, covered := rectCovering(&state, p)
	selecting := state.Active != nil && state.Active.Bounds().Contains(p)

	var cellType string
	var description string

	switch {
	case hasClue:
		cellType = fmt.Sprintf("Clue (area %d)", clue.Area)
		if covered {
			description = fmt.Sprintf("Number cell requiring a rectangle of exactly %d cells. Already satisfied by %s (area %d).",
				clue.Area, rect, rect.Area())
		} else {
			description = fmt.Sprintf("Number cell requiring a rectangle of exactly %d cells containing this number and no other.",
				clue.Area)
		}
	case covered:
		cellType = "Covered"
		description = fmt.Sprintf("Covered by placed rectangle %s (area %d).", rect, rect.Area())
	case selecting:
		cellType = "Selection"
		description = "Inside the in-progress selection. Committing validates it, cancelling discards it."
	default:
		cellType = "Empty"
		description = "Uncovered cell. Some rectangle still has to claim it."
	}

	if selecting && cellType != "Selection" {
		description += " Currently inside the in-progress selection."
	}

	// Build result
	result := fmt.Sprintf(`Cell at position (%d, %d):
━━━━━━━━━━━━━━━━━━━━━━━━
Character: %s
Type: %s
Covered: %v
Description: %s

IMPORTANT: The character '%s' is what appears in the grid display.
%s`,
		x, y,
		cellChar,
		cellType,
		covered,
		description,
		cellChar,
		getCharacterReminder(cellChar))

	return mcp.NewToolResultText(result), nil
}

func getCharacterReminder(char string) string {
	switch char {
	case ".":
		return "⚠️ REMINDER: '.' is an uncovered empty cell. A solved board has none left!"
	case "#":
		return "✅ This cell is already covered by a placed rectangle."
	case "*":
		return "🔲 This cell is inside the in-progress selection (not committed yet)."
	default:
		if area, ok := engine.ParseClueChar(char[0]); ok {
			return fmt.Sprintf("🎯 REMINDER: '%s' encodes clue area %d (digits 1-9, then 'a'-'z' for 10-35, 'A'-'Z' for 36-61). The character is a NUMBER, not a label!", char, area)
		}
		return ""
	}
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	header := fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"))
	if session.Generated {
		header += fmt.Sprintf("Generated (seed %d)\n", session.Seed)
	}
	return header + "\n" + formatBoardState(session.BoardState)
}

func formatBoardState(state *engine.BoardState) string {
	if state == nil {
		return "No board state available"
	}

	var result strings.Builder

	// Header (include cumulative total placements)
	result.WriteString(fmt.Sprintf("Grid: %dx%d | Rects: %d | Covered: %d/%d | Placements: %d\n\n",
		state.Width, state.Height, len(state.Rects),
		coveredCellCount(state), state.Width*state.Height, state.TotalPlacements))

	// Selection aid (if a rectangle is in progress)
	if state.Active != nil {
		b := state.Active.Bounds()
		result.WriteString(fmt.Sprintf("Selecting: %s (%dx%d, area %d)\n\n", b, b.Width(), b.Height(), b.Area()))
	}

	// Grid
	for y := 0; y < state.Height; y++ {
		for x := 0; x < state.Width; x++ {
			result.WriteString(charAt(state, engine.Point{X: x, Y: y}))
		}
		result.WriteString("\n")
	}

	// Decimal clue list; the grid can only show encoded characters
	if len(state.Clues) > 0 {
		result.WriteString("\nClues: ")
		for i, clue := range state.Clues {
			if i > 0 {
				result.WriteString(" ")
			}
			mark := ""
			if _, ok := rectCovering(state, clue.Pos); ok {
				mark = "✓"
			}
			result.WriteString(fmt.Sprintf("%d@(%d,%d)%s", clue.Area, clue.Pos.X, clue.Pos.Y, mark))
		}
		result.WriteString("\n")
	}

	// Status
	if state.Solved {
		result.WriteString("\n🎉 SOLVED!")
	}

	if state.Message != "" {
		result.WriteString(fmt.Sprintf("\nMessage: %s", state.Message))
	}

	return result.String()
}

func formatPlaceResult(result *service.OpResult) string {
	response := ""
	if result.Success {
		response = "✓ Placement successful\n"
	} else {
		response = "✗ Placement failed\n"
	}

	// Compact placement summary (if available)
	if result.Placement != nil {
		p := result.Placement
		suffix := ""
		if p.Auto {
			suffix = " (auto)"
		}
		response += fmt.Sprintf("Placed: %s area=%d n=%d%s\n", p.Rect, p.Area, p.PlaceNumber, suffix)
	}

	// Failure diagnostic (if available)
	if result.Attempted != nil {
		a := result.Attempted
		response += fmt.Sprintf("Rejected: %s area=%d reason=%s%s\n", a.Rect, a.Area, a.Reason, attemptDetail(a))
	}

	if len(result.Events) > 0 {
		response += "Events:\n"
		for _, event := range result.Events {
			response += fmt.Sprintf("- %s: %s\n", event.Type, event.Message)
		}
	}

	response += "\n" + formatBoardState(result.BoardState)
	return response
}

// attemptDetail appends the clue numbers relevant to a rejection reason
func attemptDetail(a *service.AttemptInfo) string {
	switch a.Reason {
	case "multiple_clues":
		return fmt.Sprintf(" (contains %d clues)", a.ClueCount)
	case "area_mismatch":
		return fmt.Sprintf(" (clue wants %d)", a.ClueArea)
	}
	return ""
}

func formatBulkPlaceResult(sessionID string, result *service.BulkPlaceResult) string {
	var b strings.Builder

	// Session header
	width, height := 0, 0
	configName := ""
	if result.BoardState != nil {
		width = result.BoardState.Width
		height = result.BoardState.Height
		configName = result.BoardState.ConfigName
	}
	b.WriteString(fmt.Sprintf("Session: %s • Config: %s • Grid: %dx%d\n",
		sessionID, configName, width, height))

	// Bulk summary
	b.WriteString(fmt.Sprintf("Executed %d/%d placements\n", result.PlacementsExecuted, result.RequestedPlacements))
	b.WriteString(fmt.Sprintf("Covered: %d → %d (%+d)\n", result.StartCovered, result.EndCovered, result.CoveredDelta))
	if result.StoppedReason != "" {
		if result.StopReasonCode != "" {
			b.WriteString(fmt.Sprintf("Stopped: %s [%s]\n", result.StoppedReason, result.StopReasonCode))
		} else {
			b.WriteString(fmt.Sprintf("Stopped: %s\n", result.StoppedReason))
		}
	}
	if result.Truncated {
		b.WriteString(fmt.Sprintf("Truncated to the first %d placements\n", result.Limit))
	}

	// Events (keep as-is, concise)
	if len(result.Events) > 0 {
		b.WriteString("\nEvents:\n")
		for _, event := range result.Events {
			b.WriteString(fmt.Sprintf("- %s: %s\n", event.Type, event.Message))
		}
	}

	// Per-placement trace for this call
	if len(result.Steps) > 0 {
		b.WriteString("\nSteps (this call):\n")
		for _, s := range result.Steps {
			suffix := ""
			if s.Auto {
				suffix = " (auto)"
			}
			b.WriteString(fmt.Sprintf("%d. %s area=%d n=%d%s\n", s.Idx, s.Rect, s.Area, s.PlaceNumber, suffix))
		}
	}

	// Stopped diagnostic: describe the rejected placement
	if result.Attempted != nil {
		a := result.Attempted
		b.WriteString("\n")
		if result.StoppedOnPlacement > 0 {
			b.WriteString(fmt.Sprintf("Rejected on placement %d: %s area=%d reason=%s%s\n",
				result.StoppedOnPlacement, a.Rect, a.Area, a.Reason, attemptDetail(a)))
		} else {
			b.WriteString(fmt.Sprintf("Rejected: %s area=%d reason=%s%s\n",
				a.Rect, a.Area, a.Reason, attemptDetail(a)))
		}
	}

	// Full state at the end (kept for compatibility)
	b.WriteString("\n")
	b.WriteString(formatBoardState(result.BoardState))
	return b.String()
}

// charAt returns the display character for a cell: the clue's encoded
// character, '*' inside the active selection, '#' under a placed
// rectangle, '.' otherwise. Clues stay visible even when covered.
func charAt(state *engine.BoardState, p engine.Point) string {
	if clue, ok := state.ClueAtCell(p); ok {
		if c, ok := engine.ClueChar(clue.Area); ok {
			return string(c)
		}
		return "?"
	}
	if state.Active != nil && state.Active.Bounds().Contains(p) {
		return "*"
	}
	if _, ok := rectCovering(state, p); ok {
		return "#"
	}
	return "."
}

// rectCovering returns the placed rectangle containing p. It scans the
// rect list directly: states decoded from JSON carry no coverage index,
// so BoardState.RectAtCell cannot be used here.
func rectCovering(state *engine.BoardState, p engine.Point) (engine.Rect, bool) {
	for _, r := range state.Rects {
		if r.Contains(p) {
			return r, true
		}
	}
	return engine.Rect{}, false
}

// coveredCellCount sums placed areas; rectangles never overlap, so the
// sum is exact. Works on JSON-decoded states, unlike CoveredCells.
func coveredCellCount(state *engine.BoardState) int {
	n := 0
	for _, r := range state.Rects {
		n += r.Area()
	}
	return n
}

func formatHistory(history *service.HistoryResponse) string {
	result := fmt.Sprintf("Placement History (Page %d/%d) — Total (cumulative): %d\n\n",
		history.Page, history.TotalPages, history.TotalPlacements)

	for i, entry := range history.Placements {
		num := (history.Page-1)*history.PageSize + i + 1
		status := "✓"
		if !entry.Success {
			status = "✗"
		}
		line := fmt.Sprintf("%d. %s %s %s", num, entry.Action, entry.Rect, status)
		if entry.Reason != "" {
			line += fmt.Sprintf(" (%s)", entry.Reason)
		}
		result += line + "\n"
	}

	return result
}

func formatCurrentSegment(state *engine.BoardState) string {
	if state == nil {
		return "Current Segment: unavailable"
	}
	placements := state.CurrentPlacements
	total := state.CurrentPlacementsCount
	header := fmt.Sprintf("Current Placement Segment — Actions: %d\n\n", total)
	if len(placements) == 0 {
		return header + "(no actions in current segment)"
	}
	var b strings.Builder
	b.WriteString(header)
	for i, entry := range placements {
		status := "✓"
		if !entry.Success {
			status = "✗"
		}
		// i is zero-based within the segment
		b.WriteString(fmt.Sprintf("%d. %s %s %s\n", i+1, entry.Action, entry.Rect, status))
	}
	return b.String()
}
