package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

func (r Rect) width() int  { return r.Max.X - r.Min.X + 1 }
func (r Rect) height() int { return r.Max.Y - r.Min.Y + 1 }
func (r Rect) area() int   { return r.width() * r.height() }

func (r Rect) contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

type Clue struct {
	Pos  Point `json:"pos"`
	Area int   `json:"area"`
}

type BoardState struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Clues      []Clue `json:"clues"`
	Rects      []Rect `json:"rects"`
	Solved     bool   `json:"solved"`
	Message    string `json:"message"`
	ConfigName string `json:"config_name"`
}

func (b *BoardState) coveredCells() int {
	total := 0
	for _, r := range b.Rects {
		total += r.area()
	}
	return total
}

type SessionResponse struct {
	ID         string      `json:"id"`
	ConfigName string      `json:"config_name"`
	BoardState *BoardState `json:"board_state"`
}

type RectSpec struct {
	A Point `json:"a"`
	B Point `json:"b"`
}

type AttemptInfo struct {
	Rect   Rect   `json:"rect"`
	Area   int    `json:"area"`
	Reason string `json:"reason"`
}

type OpResult struct {
	Success    bool         `json:"success"`
	Solved     bool         `json:"solved"`
	BoardState *BoardState  `json:"board_state"`
	Message    string       `json:"message"`
	Attempted  *AttemptInfo `json:"attempted,omitempty"`
}

type BulkPlaceResult struct {
	PlacementsExecuted  int         `json:"placements_executed"`
	RequestedPlacements int         `json:"requested_placements"`
	Success             bool        `json:"success"`
	BoardState          *BoardState `json:"board_state"`
	StoppedReason       string      `json:"stopped_reason,omitempty"`
	StopReasonCode      string      `json:"stop_reason_code,omitempty"`
	Solved              bool        `json:"solved"`
	Message             string      `json:"message,omitempty"`
}

type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) CreateSession(configName string, width, height int, seed int64) (*BoardState, error) {
	req := map[string]interface{}{}
	if configName != "" {
		req["config_id"] = configName
	}
	if width > 0 {
		req["width"] = width
		req["height"] = height
	}
	if seed != 0 {
		req["seed"] = seed
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.client.Post(c.baseURL+"/api/sessions", "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create session failed: %s - %s", resp.Status, string(body))
	}

	var session SessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("parse session response: %w", err)
	}

	c.sessionID = session.ID
	return session.BoardState, nil
}

func (c *Client) GetState() (*BoardState, error) {
	url := fmt.Sprintf("%s/api/sessions/%s/state", c.baseURL, c.sessionID)
	resp, err := c.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get state failed: %s - %s", resp.Status, string(body))
	}

	var state BoardState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}

	return &state, nil
}

// Place commits the rectangle spanned by two corners. A rejected
// placement is not an error: the returned result carries the reason and
// the unchanged board.
func (c *Client) Place(a, b Point) (*OpResult, error) {
	body, err := json.Marshal(RectSpec{A: a, B: b})
	if err != nil {
		return nil, fmt.Errorf("marshal place: %w", err)
	}

	url := fmt.Sprintf("%s/api/sessions/%s/place", c.baseURL, c.sessionID)
	resp, err := c.client.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("execute place: %w", err)
	}
	defer resp.Body.Close()

	var result OpResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parse place response: %w", err)
	}

	return &result, nil
}

// BulkPlace commits a batch of rectangles, stopping at the first
// rejection
func (c *Client) BulkPlace(specs []RectSpec) (*BulkPlaceResult, error) {
	body, err := json.Marshal(map[string]interface{}{"rects": specs})
	if err != nil {
		return nil, fmt.Errorf("marshal bulk place: %w", err)
	}

	url := fmt.Sprintf("%s/api/sessions/%s/bulk-place", c.baseURL, c.sessionID)
	resp, err := c.client.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("execute bulk place: %w", err)
	}
	defer resp.Body.Close()

	var result BulkPlaceResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parse bulk place response: %w", err)
	}

	return &result, nil
}

// DeleteAt removes the committed rectangle covering the given cell
func (c *Client) DeleteAt(at Point) (*BoardState, error) {
	body, err := json.Marshal(at)
	if err != nil {
		return nil, fmt.Errorf("marshal delete: %w", err)
	}

	url := fmt.Sprintf("%s/api/sessions/%s/delete-rect", c.baseURL, c.sessionID)
	resp, err := c.client.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("execute delete: %w", err)
	}
	defer resp.Body.Close()

	var result OpResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parse delete response: %w", err)
	}

	return result.BoardState, nil
}

type ResetResponse struct {
	Message string      `json:"message"`
	State   *BoardState `json:"state"`
}

func (c *Client) Reset() (*BoardState, error) {
	url := fmt.Sprintf("%s/api/sessions/%s/reset", c.baseURL, c.sessionID)
	resp, err := c.client.Post(url, "application/json", nil)
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	defer resp.Body.Close()

	var resetResp ResetResponse
	if err := json.NewDecoder(resp.Body).Decode(&resetResp); err != nil {
		return nil, fmt.Errorf("parse reset response: %w", err)
	}

	return resetResp.State, nil
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Puzzle server URL")
	configName := flag.String("config", "", "Puzzle configuration name (classic, easy, medium, challenge)")
	width := flag.Int("width", 0, "Generate a puzzle of this width instead of using a config")
	height := flag.Int("height", 0, "Generate a puzzle of this height instead of using a config")
	seed := flag.Int64("seed", 0, "Generation seed (0 = random)")
	continueSession := flag.String("continue", "", "Resume playing an existing session by ID")
	maxActions := flag.Int("max-actions", 2000, "Maximum place/delete actions per attempt")
	maxAttempts := flag.Int("max-attempts", 50, "Maximum attempts before giving up")
	verbose := flag.Bool("v", false, "Verbose output")
	delayMs := flag.Int("delay", 0, "Delay between actions in milliseconds (0 = no delay)")
	flag.Parse()

	log.Printf("Connecting to puzzle server at %s", *serverURL)
	client := NewClient(*serverURL)

	var state *BoardState
	var err error

	// Check for saved session ID
	sessionFile := ".session"
	savedSessionID := ""

	if *continueSession != "" {
		// Use explicitly provided session
		savedSessionID = *continueSession
	} else {
		// Try to load saved session
		if data, err := os.ReadFile(sessionFile); err == nil {
			savedSessionID = string(bytes.TrimSpace(data))
		}
	}

	if savedSessionID != "" {
		// Resume existing session
		client.sessionID = savedSessionID
		log.Printf("🔄 Resuming session: %s", client.sessionID)
		state, err = client.GetState()
		if err != nil {
			log.Printf("⚠️  Failed to resume session (may be expired): %v", err)
			log.Printf("Creating new session...")
			savedSessionID = "" // Force create new
		} else {
			log.Printf("Session resumed - Grid: %dx%d, Clues: %d, Covered: %d/%d",
				state.Width, state.Height, len(state.Clues),
				state.coveredCells(), state.Width*state.Height)
		}
	}

	if savedSessionID == "" {
		// Create new session
		state, err = client.CreateSession(*configName, *width, *height, *seed)
		if err != nil {
			log.Fatalf("Failed to create session: %v", err)
		}
		log.Printf("✨ Session created: %s", client.sessionID)
		log.Printf("Grid size: %dx%d, Clues: %d", state.Width, state.Height, len(state.Clues))

		// Save session ID for next run
		if err := os.WriteFile(sessionFile, []byte(client.sessionID), 0644); err != nil {
			log.Printf("Warning: Failed to save session ID: %v", err)
		}
	}

	// RESET the board at the beginning of each run
	log.Printf("🔄 Resetting board...")
	state, err = client.Reset()
	if err != nil {
		log.Fatalf("Failed to reset board: %v", err)
	}
	log.Printf("Board reset - %d clues over %dx%d cells",
		len(state.Clues), state.Width, state.Height)

	// Initialize systematic strategy
	strategy := NewSystematicStrategy(state, *seed)

	// Keep trying until solved or max attempts
	attemptNum := 0
	for attemptNum < *maxAttempts {
		attemptNum++

		// Reset the board for this attempt
		if attemptNum > 1 {
			state, err = client.Reset()
			if err != nil {
				log.Printf("Failed to reset: %v", err)
				break
			}
			strategy.Reset()
		}

		log.Printf("\n=== 🎮 Attempt %d/%d ===", attemptNum, *maxAttempts)

		actionCount := 0
		for !state.Solved && actionCount < *maxActions {
			if *verbose && actionCount%25 == 0 {
				log.Printf("Covered: %d/%d, Rects: %d, Guesses: %d",
					state.coveredCells(), state.Width*state.Height,
					len(state.Rects), strategy.GuessDepth())
			}

			// Prefer a batch of forced placements when available
			forced := strategy.PlanForced(state, 10)
			if len(forced) > 1 {
				result, err := client.BulkPlace(forced)
				if err != nil {
					log.Printf("Bulk place failed: %v", err)
					break
				}
				if result.BoardState != nil {
					state = result.BoardState
				}
				actionCount += result.PlacementsExecuted
				if *verbose {
					log.Printf("📦 Bulk placed %d/%d forced rects",
						result.PlacementsExecuted, result.RequestedPlacements)
				}
				continue
			}

			action := strategy.NextAction(state)
			switch action.Kind {
			case ActionPlace:
				result, err := client.Place(action.A, action.B)
				if err != nil {
					log.Printf("Place failed: %v", err)
					actionCount++
					continue
				}
				if result.BoardState != nil {
					state = result.BoardState
				}
				if !result.Success && result.Attempted != nil && *verbose {
					log.Printf("Rejected (%s): %s", result.Attempted.Reason, result.Message)
				}
				actionCount++

			case ActionDelete:
				newState, err := client.DeleteAt(action.At)
				if err != nil {
					log.Printf("Delete failed: %v", err)
					actionCount++
					continue
				}
				if newState != nil {
					state = newState
				}
				actionCount++

			case ActionRestart:
				log.Printf("⚠️  Search exhausted from this position, restarting")
				actionCount = *maxActions // Force next attempt

			case ActionNone:
				actionCount = *maxActions
			}

			// Add delay if specified
			if *delayMs > 0 {
				time.Sleep(time.Duration(*delayMs) * time.Millisecond)
			}
		}

		log.Printf("Attempt %d: Actions=%d, Covered=%d/%d, Rects=%d",
			attemptNum, actionCount, state.coveredCells(),
			state.Width*state.Height, len(state.Rects))

		// Check if we won
		if state.Solved {
			log.Printf("\n🎉 SOLVED! Puzzle completed in attempt %d with %d actions!", attemptNum, actionCount)
			log.Printf("Session: %s", client.sessionID)
			os.Exit(0)
		}
	}

	// Failed to solve after all attempts
	log.Printf("\n❌ Failed to solve after %d attempts", attemptNum)
	log.Printf("Session: %s", client.sessionID)
	os.Exit(1)
}
