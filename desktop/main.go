package main

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	cellSize           = 40
	headerHeight       = 80 // Taller header for multi-session stats
	screenWidth        = 800
	screenHeight       = 720
	baseURL            = "http://localhost:8080"
	placeFlashDuration = 300 * time.Millisecond // Pulse on a freshly placed rectangle
	rejectDuration     = 400 * time.Millisecond // Shake on a rejected placement
	hintFlashDuration  = 2500 * time.Millisecond
)

// ScreenType represents different screens in the app
type ScreenType int

const (
	ScreenWelcome ScreenType = iota
	ScreenGame
)

// Rectangle colors, cycled by placement order
var rectColors = []color.RGBA{
	{255, 100, 100, 255}, // Red
	{100, 100, 255, 255}, // Blue
	{100, 255, 100, 255}, // Green
	{255, 255, 100, 255}, // Yellow
	{255, 100, 255, 255}, // Magenta
	{100, 255, 255, 255}, // Cyan
	{255, 165, 0, 255},   // Orange
	{128, 0, 128, 255},   // Purple
	{255, 192, 203, 255}, // Pink
}

// Point mirrors the server's cell coordinates (x = column, y = row)
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Rect mirrors the server's inclusive-bounds rectangle
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

func (r Rect) width() int  { return r.Max.X - r.Min.X + 1 }
func (r Rect) height() int { return r.Max.Y - r.Min.Y + 1 }

func (r Rect) contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// ActiveRect is a selection in progress on the server side
type ActiveRect struct {
	Anchor Point `json:"anchor"`
	Moving Point `json:"moving"`
}

// Clue is a numbered cell on the board
type Clue struct {
	Pos  Point `json:"pos"`
	Area int   `json:"area"`
}

// BoardState mirrors the state the Shikaku server sends
type BoardState struct {
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Clues      []Clue      `json:"clues"`
	Rects      []Rect      `json:"rects"`
	Active     *ActiveRect `json:"active,omitempty"`
	Solved     bool        `json:"solved"`
	Message    string      `json:"message"`
	ConfigName string      `json:"config_name"`
}

// coveredCells sums the committed rectangle areas. Rectangles never
// overlap, so the sum is exact.
func (b *BoardState) coveredCells() int {
	total := 0
	for _, r := range b.Rects {
		total += r.width() * r.height()
	}
	return total
}

// rectIndexAt returns the index of the committed rectangle covering p
func (b *BoardState) rectIndexAt(p Point) (int, bool) {
	for i, r := range b.Rects {
		if r.contains(p) {
			return i, true
		}
	}
	return -1, false
}

// AttemptInfo describes a rejected placement
type AttemptInfo struct {
	Rect   Rect   `json:"rect"`
	Area   int    `json:"area"`
	Reason string `json:"reason"`
}

// OpResult is the server's response to a board operation
type OpResult struct {
	Success    bool         `json:"success"`
	Solved     bool         `json:"solved"`
	BoardState *BoardState  `json:"board_state"`
	Message    string       `json:"message"`
	Attempted  *AttemptInfo `json:"attempted,omitempty"`
}

// HintResult is the server's answer to a hint request
type HintResult struct {
	Available bool   `json:"available"`
	Rect      *Rect  `json:"rect,omitempty"`
	Message   string `json:"message"`
}

// WSMessage represents WebSocket message wrapper
type WSMessage struct {
	SessionID  string      `json:"session_id"`
	BoardState *BoardState `json:"board_state,omitempty"`
	Event      string      `json:"event,omitempty"`
}

// SessionData holds data for a single session
type SessionData struct {
	sessionID  string
	state      *BoardState
	wsConn     *websocket.Conn
	lastUpdate time.Time

	// Transient visual feedback
	placedRect *Rect     // Last rectangle that appeared, for the pulse
	placeTime  time.Time // When it appeared
	rejectRect *Rect     // Last rejected rectangle, for the shake
	rejectTime time.Time // When the rejection happened
	hintRect   *Rect     // Suggested rectangle from the server
	hintTime   time.Time // When the hint arrived
}

// SessionListItem represents a session from the server
type SessionListItem struct {
	ID         string      `json:"id"`
	ConfigName string      `json:"config_name"`
	CreatedAt  string      `json:"created_at"`
	BoardState *BoardState `json:"board_state"`
}

// ConfigListItem represents a puzzle configuration
type ConfigListItem struct {
	ConfigID    string `json:"config_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ClueCount   int    `json:"clue_count"`
}

// Game represents the desktop puzzle client
type Game struct {
	sessions         []*SessionData
	activeSession    int // index of currently active session
	stateMutex       sync.RWMutex
	currentScreen    ScreenType
	welcomeScreen    *WelcomeScreen
	selectedSessions map[string]bool // session IDs selected to play

	// Mouse drag in progress on the board
	dragging  bool
	dragStart Point
}

// WelcomeScreen manages the welcome screen state
type WelcomeScreen struct {
	availableSessions []SessionListItem
	availableConfigs  []ConfigListItem
	cursorPos         int
	loading           bool
	errorMsg          string
	newSessionConfig  string // selected config for new session
}

// NewGame creates a new game instance with initial sessions
func NewGame(sessionIDs []string) *Game {
	g := &Game{
		sessions:         make([]*SessionData, 0),
		activeSession:    0,
		currentScreen:    ScreenWelcome,
		selectedSessions: make(map[string]bool),
		welcomeScreen: &WelcomeScreen{
			availableSessions: make([]SessionListItem, 0),
			availableConfigs:  make([]ConfigListItem, 0),
			cursorPos:         0,
		},
	}

	// If session IDs provided, skip welcome screen and go straight to game
	if len(sessionIDs) > 0 {
		for _, sid := range sessionIDs {
			g.addSession(sid)
		}
		g.currentScreen = ScreenGame
	} else {
		// Load available sessions and configs for welcome screen
		g.loadWelcomeData()
	}

	return g
}

// addSession adds a new session to the game, creating one when sessionID
// is empty
func (g *Game) addSession(sessionID string) {
	session := &SessionData{
		sessionID:  sessionID,
		lastUpdate: time.Now(),
	}

	// If no session ID provided, create one with same config as first session
	if sessionID == "" {
		configName := ""
		if len(g.sessions) > 0 && g.sessions[0].state != nil {
			configName = g.sessions[0].state.ConfigName
		}
		if err := g.createSessionWithConfig(session, configName); err != nil {
			log.Printf("Failed to create session: %v", err)
			return
		}
	}

	g.sessions = append(g.sessions, session)

	// Connect to WebSocket
	if err := g.connectWebSocket(session); err != nil {
		log.Printf("Failed to connect WebSocket for %s: %v (falling back to polling)", session.sessionID, err)
	} else {
		// Start WebSocket listener
		go g.listenWebSocket(session)
	}

	// Initial state fetch
	g.fetchBoardState(session)
}

// createSessionWithConfig creates a new puzzle session with specific config
func (g *Game) createSessionWithConfig(session *SessionData, configName string) error {
	url := fmt.Sprintf("%s/api/sessions", baseURL)

	payload := "{}"
	if configName != "" {
		payload = fmt.Sprintf(`{"config_id":%q}`, configName)
	}

	resp, err := http.Post(url, "application/json", strings.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var result struct {
		ID         string      `json:"id"`
		BoardState *BoardState `json:"board_state"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse session response: %v (body: %s)", err, string(body))
	}
	if result.ID == "" {
		return fmt.Errorf("server returned no session ID (body: %s)", string(body))
	}

	session.sessionID = result.ID
	session.state = result.BoardState
	log.Printf("Created new session: %s (config: %s)", session.sessionID, configName)
	return nil
}

// connectWebSocket establishes WebSocket connection
func (g *Game) connectWebSocket(session *SessionData) error {
	if session.sessionID == "" {
		return fmt.Errorf("no session ID set")
	}

	wsURL := url.URL{Scheme: "ws", Host: "localhost:8080", Path: "/ws"}
	q := wsURL.Query()
	q.Set("session", session.sessionID)
	wsURL.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		return err
	}

	session.wsConn = conn
	log.Printf("WebSocket connected for session %s", session.sessionID)
	return nil
}

// listenWebSocket listens for WebSocket updates
func (g *Game) listenWebSocket(session *SessionData) {
	defer func() {
		if session.wsConn != nil {
			session.wsConn.Close()
		}
	}()

	for {
		_, message, err := session.wsConn.ReadMessage()
		if err != nil {
			log.Printf("WebSocket read error for %s: %v", session.sessionID, err)
			return
		}

		// WebSocket sends wrapped message
		var wsMsg WSMessage
		if err := json.Unmarshal(message, &wsMsg); err != nil {
			log.Printf("WebSocket JSON parse error: %v", err)
			continue
		}

		if wsMsg.BoardState == nil {
			log.Printf("WebSocket message has no board_state field")
			continue
		}

		g.applyState(session, wsMsg.BoardState)
	}
}

// fetchBoardState gets the current board state from the server
func (g *Game) fetchBoardState(session *SessionData) error {
	if session.sessionID == "" {
		return fmt.Errorf("no session ID set")
	}

	url := fmt.Sprintf("%s/api/sessions/%s/state", baseURL, session.sessionID)
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var state BoardState
	if err := json.Unmarshal(body, &state); err != nil {
		return fmt.Errorf("failed to parse JSON: %v (body: %s)", err, string(body))
	}

	g.applyState(session, &state)
	return nil
}

// applyState installs a new board state and derives the visual feedback
// from what changed: a rectangle count increase starts the place pulse
// on the newest rectangle, a transition to solved is logged.
func (g *Game) applyState(session *SessionData, state *BoardState) {
	g.stateMutex.Lock()
	defer g.stateMutex.Unlock()

	if session.state != nil && len(state.Rects) > len(session.state.Rects) {
		placed := state.Rects[len(state.Rects)-1]
		session.placedRect = &placed
		session.placeTime = time.Now()
		// A placement supersedes any hint still on screen
		session.hintRect = nil
	}

	if session.state != nil && state.Solved && !session.state.Solved {
		log.Printf("Session %s solved!", session.sessionID)
	}

	session.state = state
	session.lastUpdate = time.Now()
}

// loadWelcomeData fetches available sessions and configs from server
func (g *Game) loadWelcomeData() {
	g.welcomeScreen.loading = true
	g.welcomeScreen.errorMsg = ""

	// Fetch available sessions
	resp, err := http.Get(fmt.Sprintf("%s/api/sessions", baseURL))
	if err != nil {
		g.welcomeScreen.errorMsg = fmt.Sprintf("Error loading sessions: %v", err)
		g.welcomeScreen.loading = false
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var sessionsResp struct {
		Sessions []SessionListItem `json:"sessions"`
	}
	if err := json.Unmarshal(body, &sessionsResp); err == nil {
		g.welcomeScreen.availableSessions = sessionsResp.Sessions
	}

	// Fetch available configs. The server returns a bare array.
	resp, err = http.Get(fmt.Sprintf("%s/api/configs", baseURL))
	if err != nil {
		g.welcomeScreen.errorMsg = fmt.Sprintf("Error loading configs: %v", err)
		g.welcomeScreen.loading = false
		return
	}
	defer resp.Body.Close()

	body, _ = io.ReadAll(resp.Body)
	var configs []ConfigListItem
	if err := json.Unmarshal(body, &configs); err == nil {
		g.welcomeScreen.availableConfigs = configs
	}

	g.welcomeScreen.loading = false
}

// createNewSessionFromWelcome creates a new session with selected config
func (g *Game) createNewSessionFromWelcome() error {
	session := &SessionData{}
	if err := g.createSessionWithConfig(session, g.welcomeScreen.newSessionConfig); err != nil {
		return err
	}

	// Add to selected sessions
	g.selectedSessions[session.sessionID] = true

	// Reload session list
	g.loadWelcomeData()
	return nil
}

// startGameWithSelectedSessions transitions to game screen with selected sessions
func (g *Game) startGameWithSelectedSessions() {
	if len(g.selectedSessions) == 0 {
		g.welcomeScreen.errorMsg = "Please select at least one session"
		return
	}

	// Create sessions for each selected ID
	for sessionID := range g.selectedSessions {
		g.addSession(sessionID)
	}

	// Switch to game screen
	g.currentScreen = ScreenGame
}

// activeSessionData returns the session receiving input, or nil
func (g *Game) activeSessionData() *SessionData {
	if len(g.sessions) == 0 || g.activeSession >= len(g.sessions) {
		return nil
	}
	return g.sessions[g.activeSession]
}

// sendPlace asks the server to place the rectangle spanned by two corners
// for the active session. Rejections come back in the response and start
// the shake animation.
func (g *Game) sendPlace(a, b Point) error {
	session := g.activeSessionData()
	if session == nil || session.sessionID == "" {
		return fmt.Errorf("no session available")
	}

	url := fmt.Sprintf("%s/api/sessions/%s/place", baseURL, session.sessionID)
	payload := fmt.Sprintf(`{"a":{"x":%d,"y":%d},"b":{"x":%d,"y":%d}}`, a.X, a.Y, b.X, b.Y)

	resp, err := http.Post(url, "application/json", strings.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result OpResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to parse place response: %v", err)
	}

	if result.BoardState != nil {
		g.applyState(session, result.BoardState)
	}

	if !result.Success && result.Attempted != nil {
		g.stateMutex.Lock()
		rejected := result.Attempted.Rect
		session.rejectRect = &rejected
		session.rejectTime = time.Now()
		g.stateMutex.Unlock()
		log.Printf("Placement rejected (%s): %s", result.Attempted.Reason, result.Message)
	}

	return nil
}

// sendDelete removes the committed rectangle covering the given cell
func (g *Game) sendDelete(at Point) error {
	session := g.activeSessionData()
	if session == nil || session.sessionID == "" {
		return fmt.Errorf("no session available")
	}

	url := fmt.Sprintf("%s/api/sessions/%s/delete-rect", baseURL, session.sessionID)
	payload := fmt.Sprintf(`{"x":%d,"y":%d}`, at.X, at.Y)

	resp, err := http.Post(url, "application/json", strings.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result OpResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to parse delete response: %v", err)
	}

	if result.BoardState != nil {
		g.applyState(session, result.BoardState)
	}
	return nil
}

// sendReset restores the active session's board to its initial state
func (g *Game) sendReset() error {
	session := g.activeSessionData()
	if session == nil || session.sessionID == "" {
		return fmt.Errorf("no session available")
	}

	url := fmt.Sprintf("%s/api/sessions/%s/reset", baseURL, session.sessionID)
	resp, err := http.Post(url, "application/json", strings.NewReader("{}"))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result struct {
		Message string      `json:"message"`
		State   *BoardState `json:"state"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to parse reset response: %v", err)
	}

	if result.State != nil {
		g.applyState(session, result.State)
	}
	return nil
}

// sendRegenerate swaps the active session's puzzle for a fresh one
func (g *Game) sendRegenerate() error {
	session := g.activeSessionData()
	if session == nil || session.sessionID == "" {
		return fmt.Errorf("no session available")
	}

	url := fmt.Sprintf("%s/api/sessions/%s/regenerate", baseURL, session.sessionID)
	resp, err := http.Post(url, "application/json", strings.NewReader("{}"))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result struct {
		Message string      `json:"message"`
		State   *BoardState `json:"state"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to parse regenerate response: %v", err)
	}

	if result.State != nil {
		g.applyState(session, result.State)
	}
	return nil
}

// fetchHint asks the server for the next rectangle and flashes it
func (g *Game) fetchHint() error {
	session := g.activeSessionData()
	if session == nil || session.sessionID == "" {
		return fmt.Errorf("no session available")
	}

	url := fmt.Sprintf("%s/api/sessions/%s/hint", baseURL, session.sessionID)
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var hint HintResult
	if err := json.NewDecoder(resp.Body).Decode(&hint); err != nil {
		return fmt.Errorf("failed to parse hint response: %v", err)
	}

	log.Printf("Hint: %s", hint.Message)
	if hint.Available && hint.Rect != nil {
		g.stateMutex.Lock()
		session.hintRect = hint.Rect
		session.hintTime = time.Now()
		g.stateMutex.Unlock()
	}
	return nil
}

// Update updates game logic
func (g *Game) Update() error {
	// Route to appropriate screen update
	switch g.currentScreen {
	case ScreenWelcome:
		return g.updateWelcomeScreen()
	case ScreenGame:
		return g.updateGameScreen()
	}
	return nil
}

// updateWelcomeScreen handles welcome screen input
func (g *Game) updateWelcomeScreen() error {
	ws := g.welcomeScreen

	// Refresh data with F5
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.loadWelcomeData()
	}

	// Navigate with arrow keys
	totalItems := len(ws.availableSessions)
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		ws.cursorPos++
		if ws.cursorPos >= totalItems {
			ws.cursorPos = totalItems - 1
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		ws.cursorPos--
		if ws.cursorPos < 0 {
			ws.cursorPos = 0
		}
	}

	// Toggle selection with Space
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if ws.cursorPos >= 0 && ws.cursorPos < len(ws.availableSessions) {
			sessionID := ws.availableSessions[ws.cursorPos].ID
			g.selectedSessions[sessionID] = !g.selectedSessions[sessionID]
			if !g.selectedSessions[sessionID] {
				delete(g.selectedSessions, sessionID)
			}
		}
	}

	// Cycle through configs with Tab
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		if len(ws.availableConfigs) > 0 {
			// Find current config index
			currentIdx := -1
			for i, cfg := range ws.availableConfigs {
				if cfg.ConfigID == ws.newSessionConfig {
					currentIdx = i
					break
				}
			}
			// Move to next
			currentIdx++
			if currentIdx >= len(ws.availableConfigs) {
				ws.newSessionConfig = "" // No config (default)
			} else {
				ws.newSessionConfig = ws.availableConfigs[currentIdx].ConfigID
			}
		}
	}

	// Create new session with N
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		if err := g.createNewSessionFromWelcome(); err != nil {
			ws.errorMsg = fmt.Sprintf("Failed to create session: %v", err)
		}
	}

	// Start game with Enter
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.startGameWithSelectedSessions()
	}

	// Back to game screen with Escape (if sessions exist)
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && len(g.sessions) > 0 {
		g.currentScreen = ScreenGame
	}

	return nil
}

// updateGameScreen handles game screen input
func (g *Game) updateGameScreen() error {
	if len(g.sessions) == 0 {
		return nil
	}

	// Poll all sessions if WebSocket is not connected
	for _, session := range g.sessions {
		if session.wsConn == nil {
			if session.state == nil || time.Since(session.lastUpdate) > 500*time.Millisecond {
				if err := g.fetchBoardState(session); err != nil {
					log.Printf("Error fetching state for %s: %v", session.sessionID, err)
				}
			}
		}
	}

	// Session switching with number keys (1-9)
	for i := ebiten.Key1; i <= ebiten.Key9; i++ {
		if inpututil.IsKeyJustPressed(i) {
			sessionIdx := int(i - ebiten.Key1)
			if sessionIdx < len(g.sessions) {
				g.activeSession = sessionIdx
				g.dragging = false
				log.Printf("Switched to session %d: %s", sessionIdx+1, g.sessions[sessionIdx].sessionID)
			}
		}
	}

	// Add new session with N key
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		if len(g.sessions) < 9 {
			g.addSession("")
			log.Printf("Added new session (total: %d)", len(g.sessions))
		}
	}

	// Keyboard commands for the active session
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.sendReset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		g.sendRegenerate()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.fetchHint()
	}

	g.handleMouse()

	// Return to welcome screen with Escape
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.currentScreen = ScreenWelcome
		g.dragging = false
		g.loadWelcomeData()
	}

	return nil
}

// handleMouse implements press-drag-release placement and click-to-delete
// for the active session's board
func (g *Game) handleMouse() {
	session := g.activeSessionData()
	if session == nil {
		return
	}

	g.stateMutex.RLock()
	state := session.state
	g.stateMutex.RUnlock()
	if state == nil {
		return
	}

	mx, my := ebiten.CursorPosition()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if cell, ok := screenToCell(mx, my, state); ok {
			g.dragging = true
			g.dragStart = cell
		}
	}

	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) && g.dragging {
		g.dragging = false
		cell := clampToBoard(mx, my, state)

		if cell == g.dragStart {
			// Click without drag: delete the rectangle under the cursor,
			// otherwise place a 1x1
			if _, covered := state.rectIndexAt(cell); covered {
				g.sendDelete(cell)
				return
			}
		}
		g.sendPlace(g.dragStart, cell)
	}
}

// screenToCell maps a pixel position to a board cell
func screenToCell(mx, my int, state *BoardState) (Point, bool) {
	if my < headerHeight {
		return Point{}, false
	}
	cell := Point{X: mx / cellSize, Y: (my - headerHeight) / cellSize}
	if mx < 0 || cell.X >= state.Width || cell.Y >= state.Height {
		return Point{}, false
	}
	return cell, true
}

// clampToBoard maps a pixel position to the nearest board cell, so drags
// that leave the window still resolve to a valid corner
func clampToBoard(mx, my int, state *BoardState) Point {
	cell := Point{X: mx / cellSize, Y: (my - headerHeight) / cellSize}
	if mx < 0 {
		cell.X = 0
	}
	if my < headerHeight {
		cell.Y = 0
	}
	if cell.X >= state.Width {
		cell.X = state.Width - 1
	}
	if cell.Y >= state.Height {
		cell.Y = state.Height - 1
	}
	return cell
}

// Draw renders the game
func (g *Game) Draw(screen *ebiten.Image) {
	// Route to appropriate screen renderer
	switch g.currentScreen {
	case ScreenWelcome:
		g.drawWelcomeScreen(screen)
	case ScreenGame:
		g.drawGameScreen(screen)
	}
}

// drawWelcomeScreen renders the welcome/session selection screen
func (g *Game) drawWelcomeScreen(screen *ebiten.Image) {
	ws := g.welcomeScreen

	// Clear screen
	screen.Fill(color.RGBA{20, 20, 30, 255})

	y := 20
	ebitenutil.DebugPrintAt(screen, "=== SHIKAKU - SESSION SELECT ===", 250, y)
	y += 30

	if ws.loading {
		ebitenutil.DebugPrintAt(screen, "Loading sessions...", 20, y)
		return
	}

	if ws.errorMsg != "" {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("ERROR: %s", ws.errorMsg), 20, y)
		y += 20
	}

	// Session list
	ebitenutil.DebugPrintAt(screen, "Available Sessions:", 20, y)
	y += 20

	if len(ws.availableSessions) == 0 {
		ebitenutil.DebugPrintAt(screen, "  No sessions found. Press N to create one.", 20, y)
		y += 20
	} else {
		for i, session := range ws.availableSessions {
			cursor := "  "
			if i == ws.cursorPos {
				cursor = "> "
			}

			checkbox := "[ ]"
			if g.selectedSessions[session.ID] {
				checkbox = "[X]"
			}

			boardInfo := ""
			status := ""
			if session.BoardState != nil {
				b := session.BoardState
				boardInfo = fmt.Sprintf("%dx%d | %d/%d cells | %d rects",
					b.Width, b.Height, b.coveredCells(), b.Width*b.Height, len(b.Rects))
				if b.Solved {
					status = " SOLVED"
				}
			}

			line := fmt.Sprintf("%s%s %s | %s | %s%s",
				cursor, checkbox, session.ID, session.ConfigName, boardInfo, status)

			ebitenutil.DebugPrintAt(screen, line, 20, y)
			y += 15
		}
	}

	y += 20
	ebitenutil.DebugPrintAt(screen, "─────────────────────────────────────────", 20, y)
	y += 20

	// New session creation
	ebitenutil.DebugPrintAt(screen, "Create New Session:", 20, y)
	y += 20

	configDisplay := "default"
	if ws.newSessionConfig != "" {
		configDisplay = ws.newSessionConfig
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("  Selected Config: %s", configDisplay), 20, y)
	y += 15

	ebitenutil.DebugPrintAt(screen, "  Available Configs:", 20, y)
	y += 15
	for _, cfg := range ws.availableConfigs {
		marker := "  "
		if cfg.ConfigID == ws.newSessionConfig {
			marker = "→ "
		}
		ebitenutil.DebugPrintAt(screen,
			fmt.Sprintf("    %s%s (%dx%d, %d clues) - %s",
				marker, cfg.ConfigID, cfg.Width, cfg.Height, cfg.ClueCount, cfg.Description),
			20, y)
		y += 15
	}

	y += 20
	ebitenutil.DebugPrintAt(screen, "─────────────────────────────────────────", 20, y)
	y += 20

	// Selected sessions summary
	selectedCount := len(g.selectedSessions)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Selected: %d session(s)", selectedCount), 20, y)
	y += 20

	// Controls
	y += 10
	ebitenutil.DebugPrintAt(screen, "CONTROLS:", 20, y)
	y += 20
	ebitenutil.DebugPrintAt(screen, "  ↑/↓      - Navigate sessions", 20, y)
	y += 15
	ebitenutil.DebugPrintAt(screen, "  SPACE    - Toggle session selection", 20, y)
	y += 15
	ebitenutil.DebugPrintAt(screen, "  TAB      - Cycle config for new session", 20, y)
	y += 15
	ebitenutil.DebugPrintAt(screen, "  N        - Create new session with selected config", 20, y)
	y += 15
	ebitenutil.DebugPrintAt(screen, "  ENTER    - Start game with selected sessions", 20, y)
	y += 15
	ebitenutil.DebugPrintAt(screen, "  F5       - Refresh session list", 20, y)
	y += 15
	if len(g.sessions) > 0 {
		ebitenutil.DebugPrintAt(screen, "  ESC      - Back to game", 20, y)
	}
}

// drawGameScreen renders the active session's board
func (g *Game) drawGameScreen(screen *ebiten.Image) {
	g.stateMutex.RLock()
	defer g.stateMutex.RUnlock()

	if len(g.sessions) == 0 {
		ebitenutil.DebugPrint(screen, "No sessions available. Press ESC to go to session select.")
		return
	}

	session := g.sessions[g.activeSession]
	if session.state == nil {
		ebitenutil.DebugPrint(screen, "Loading...")
		return
	}
	state := session.state

	// Draw header with all session stats
	g.drawSessionStats(screen)

	// Base grid: empty cells dark, covered cells tinted by their rectangle
	for y := 0; y < state.Height; y++ {
		for x := 0; x < state.Width; x++ {
			cellColor := color.RGBA{45, 45, 55, 255}
			if idx, ok := state.rectIndexAt(Point{X: x, Y: y}); ok {
				c := rectColors[idx%len(rectColors)]
				// Dim fill so borders and clues stay readable
				cellColor = color.RGBA{c.R / 3, c.G / 3, c.B / 3, 255}
			}
			ebitenutil.DrawRect(screen,
				float64(x*cellSize),
				float64(y*cellSize+headerHeight),
				cellSize-1, cellSize-1, cellColor)
		}
	}

	// Committed rectangle borders in full color
	for idx, r := range state.Rects {
		c := rectColors[idx%len(rectColors)]
		thickness := 2.0

		// Freshly placed rectangle pulses with a thicker border
		if session.placedRect != nil && *session.placedRect == r &&
			time.Since(session.placeTime) < placeFlashDuration {
			thickness = 4.0
		}

		drawCellRectBorder(screen, r, thickness, c, 0, 0)
	}

	// Server-side selection in progress (e.g. driven by another client)
	if state.Active != nil {
		active := Rect{Min: state.Active.Anchor, Max: state.Active.Moving}
		active = normalize(active)
		drawCellRectBorder(screen, active, 2, color.RGBA{200, 200, 200, 255}, 0, 0)
	}

	// Local mouse drag preview
	if g.dragging {
		mx, my := ebiten.CursorPosition()
		cell := clampToBoard(mx, my, state)
		preview := normalize(Rect{Min: g.dragStart, Max: cell})
		drawCellRectBorder(screen, preview, 2, color.RGBA{255, 255, 255, 255}, 0, 0)
	}

	// Hint flash
	if session.hintRect != nil && time.Since(session.hintTime) < hintFlashDuration {
		drawCellRectBorder(screen, *session.hintRect, 3, color.RGBA{255, 215, 0, 255}, 0, 0)
	}

	// Rejected placement: red border shaking, dampening over time
	if session.rejectRect != nil && time.Since(session.rejectTime) < rejectDuration {
		progress := time.Since(session.rejectTime).Seconds() / rejectDuration.Seconds()
		intensity := 3.0 * (1.0 - progress)
		shakeX := intensity * math.Sin(progress*40)
		shakeY := intensity * math.Cos(progress*40)
		drawCellRectBorder(screen, *session.rejectRect, 3, color.RGBA{255, 40, 40, 255}, shakeX, shakeY)
	}

	// Clue numbers on top of everything
	for _, clue := range state.Clues {
		label := fmt.Sprintf("%d", clue.Area)
		offsetX := 16
		if clue.Area >= 10 {
			offsetX = 13
		}
		ebitenutil.DebugPrintAt(screen, label,
			clue.Pos.X*cellSize+offsetX,
			clue.Pos.Y*cellSize+headerHeight+12)
	}

	// Status line: solved banner or server message with progress
	statusY := state.Height*cellSize + headerHeight + 10
	if state.Solved {
		ebitenutil.DebugPrintAt(screen, "*** SOLVED! Press G for a new puzzle ***", 10, statusY)
	} else {
		covered := state.coveredCells()
		ebitenutil.DebugPrintAt(screen,
			fmt.Sprintf("%s  [%d/%d cells]", state.Message, covered, state.Width*state.Height),
			10, statusY)
	}

	// Footer controls
	ebitenutil.DebugPrintAt(screen, "Drag: Place | Click: Delete | H: Hint | R: Reset | G: New Puzzle | N: New Session | 1-9: Switch | ESC: Menu", 10, screenHeight-20)
}

// drawSessionStats draws stats for all sessions in header
func (g *Game) drawSessionStats(screen *ebiten.Image) {
	headerY := 5
	for idx, session := range g.sessions {
		if session.state == nil {
			continue
		}

		y := headerY + (idx * 15)
		c := rectColors[idx%len(rectColors)]

		// Draw color indicator
		ebitenutil.DrawRect(screen, 5, float64(y), 10, 10, c)

		// Session info
		activeMarker := ""
		if idx == g.activeSession {
			activeMarker = ">>>"
		}

		connStatus := "POLL"
		if session.wsConn != nil {
			connStatus = "WS"
		}

		b := session.state
		info := fmt.Sprintf("%s [%d] %s [%s] %s %dx%d CELLS:%d/%d RECTS:%d",
			activeMarker,
			idx+1,
			session.sessionID,
			connStatus,
			b.ConfigName,
			b.Width,
			b.Height,
			b.coveredCells(),
			b.Width*b.Height,
			len(b.Rects))

		if b.Solved {
			info += " SOLVED!"
		}

		ebitenutil.DebugPrintAt(screen, info, 20, y)
	}
}

// drawCellRectBorder outlines a cell rectangle on screen. The offset pair
// shifts the whole outline, which the rejection shake uses.
func drawCellRectBorder(screen *ebiten.Image, r Rect, thickness float64, c color.Color, offsetX, offsetY float64) {
	x := float64(r.Min.X*cellSize) + offsetX
	y := float64(r.Min.Y*cellSize+headerHeight) + offsetY
	w := float64(r.width()*cellSize) - 1
	h := float64(r.height()*cellSize) - 1

	ebitenutil.DrawRect(screen, x, y, w, thickness, c)
	ebitenutil.DrawRect(screen, x, y+h-thickness, w, thickness, c)
	ebitenutil.DrawRect(screen, x, y, thickness, h, c)
	ebitenutil.DrawRect(screen, x+w-thickness, y, thickness, h, c)
}

// normalize orders a rectangle's corners so Min <= Max componentwise
func normalize(r Rect) Rect {
	if r.Min.X > r.Max.X {
		r.Min.X, r.Max.X = r.Max.X, r.Min.X
	}
	if r.Min.Y > r.Max.Y {
		r.Min.Y, r.Max.Y = r.Max.Y, r.Min.Y
	}
	return r
}

// Layout returns the game screen size
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	// Accept multiple session IDs as arguments
	sessionIDs := []string{}
	if len(os.Args) > 1 {
		sessionIDs = os.Args[1:]
	}

	game := NewGame(sessionIDs)

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Shikaku - Desktop Client")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
