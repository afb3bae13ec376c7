package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shikaku-go/shikaku/game/engine"
	"github.com/shikaku-go/shikaku/game/generator"
	"github.com/shikaku-go/shikaku/game/solver"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	// Fallback: return as-is or "default"
	if configName == "" {
		return "default"
	}
	return configName
}

// CreateSession creates a new puzzle session
func (s *gameServiceImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	config, generated, err := s.resolveConfig(req)
	if err != nil {
		return nil, err
	}

	// Let session manager generate a proper short ID
	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if generated {
		session.Generated = true
		session.Seed = req.Seed
		// Re-save so the persisted record carries the generated flag
		s.autoSave(session.ID)
	}

	return s.sessionInfo(session, req.ConfigName), nil
}

// resolveConfig picks the puzzle for a new session: a named config, a
// generated layout, or the default
func (s *gameServiceImpl) resolveConfig(req CreateSessionRequest) (*engine.PuzzleConfig, bool, error) {
	if req.ConfigName != "" && (req.Width > 0 || req.Height > 0) {
		return nil, false, fmt.Errorf("config_name and width/height are mutually exclusive")
	}

	if req.Width > 0 || req.Height > 0 {
		config, err := generator.Generate(generator.Options{
			Width:          req.Width,
			Height:         req.Height,
			Seed:           req.Seed,
			AllowAmbiguous: req.AllowAmbiguous,
		})
		if err != nil {
			return nil, false, fmt.Errorf("failed to generate %dx%d puzzle: %w", req.Width, req.Height, err)
		}
		return config, true, nil
	}

	if req.ConfigName != "" {
		config, err := s.configs.LoadConfig(req.ConfigName)
		if err != nil {
			// Provide helpful error message with available options
			if strings.Contains(err.Error(), "configuration not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, false, fmt.Errorf("config '%s' not found. Available configs: %v", req.ConfigName, configIDs)
				}
				return nil, false, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations", req.ConfigName)
			}
			return nil, false, fmt.Errorf("failed to load config %s: %w", req.ConfigName, err)
		}
		return config, false, nil
	}

	return s.configs.GetDefault(), false, nil
}

// sessionInfo builds the SessionInfo DTO from a snapshot of the session,
// so callers can marshal it without holding the session lock.
// requestedName, when non-empty, is echoed back as the config identifier.
func (s *gameServiceImpl) sessionInfo(sess *Session, requestedName string) *SessionInfo {
	snap := sess.Snapshot()

	configID := requestedName
	if configID == "" {
		configID = s.getConfigID(snap.Config.Name)
	}

	return &SessionInfo{
		ID:             snap.ID,
		ConfigName:     configID,
		Generated:      snap.Generated,
		Seed:           snap.Seed,
		CreatedAt:      snap.CreatedAt,
		LastAccessedAt: snap.LastAccessedAt,
		BoardState:     snap.BoardState,
		PuzzleConfig:   snap.Config,
	}
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return s.sessionInfo(session, ""), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, ""))
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Begin starts a 1x1 rectangle at the given cell
func (s *gameServiceImpl) Begin(ctx context.Context, sessionID string, at engine.Point) (*OpResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.Engine.Begin(at); err != nil {
		return nil, err
	}

	return s.opResult(sess), nil
}

// Resize moves the in-progress rectangle's free corner
func (s *gameServiceImpl) Resize(ctx context.Context, sessionID string, to engine.Point) (*OpResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.Engine.Resize(to); err != nil {
		return nil, err
	}

	return s.opResult(sess), nil
}

// AutoFill extends the in-progress rectangle maximally in one direction
func (s *gameServiceImpl) AutoFill(ctx context.Context, sessionID string, direction string) (*OpResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.Engine.AutoFill(direction); err != nil {
		return nil, err
	}

	return s.opResult(sess), nil
}

// Commit finalizes the in-progress rectangle
func (s *gameServiceImpl) Commit(ctx context.Context, sessionID string) (*OpResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	result, err := s.finishCommit(sess, sess.Engine.Commit)
	sess.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if result.Success {
		s.autoSave(sessionID)
	}
	return result, nil
}

// Cancel discards the in-progress rectangle
func (s *gameServiceImpl) Cancel(ctx context.Context, sessionID string) (*OpResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.Engine.Cancel(); err != nil {
		return nil, err
	}

	return s.opResult(sess), nil
}

// DeleteRect removes the committed rectangle covering the given cell.
// Deleting an uncovered cell is a no-op with Success=false.
func (s *gameServiceImpl) DeleteRect(ctx context.Context, sessionID string, at engine.Point) (*OpResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	removed, ok, err := sess.Engine.DeleteAt(at)
	if err != nil {
		sess.mu.Unlock()
		return nil, err
	}

	result := s.opResult(sess)
	result.Success = ok
	if ok {
		result.Placement = &PlacementInfo{
			Rect: removed,
			Area: removed.Area(),
		}
		result.Events = []GameEvent{{
			Type:      "delete",
			Message:   result.Message,
			Timestamp: time.Now(),
			Rect:      &removed,
		}}
	}
	sess.mu.Unlock()

	if ok {
		s.autoSave(sessionID)
	}
	return result, nil
}

// PlaceRect validates and commits the rectangle spanned by two corners
// in one step
func (s *gameServiceImpl) PlaceRect(ctx context.Context, sessionID string, a, b engine.Point) (*OpResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	result, err := s.finishCommit(sess, func() (bool, error) {
		return sess.Engine.PlaceRect(a, b)
	})
	sess.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if result.Success {
		s.autoSave(sessionID)
	}
	return result, nil
}

// finishCommit runs a committing operation and folds its outcome into an
// OpResult. Placement rejections become Success=false results; state
// errors propagate to the caller. Runs under the session lock; the
// caller persists afterwards.
func (s *gameServiceImpl) finishCommit(sess *Session, commit func() (bool, error)) (*OpResult, error) {
	prevHistory := len(sess.Engine.GetHistory())

	solved, err := commit()
	if err != nil {
		var pe *engine.PlacementError
		if errors.As(err, &pe) {
			result := s.opResult(sess)
			result.Success = false
			result.Attempted = attemptFromError(pe)
			return result, nil
		}
		return nil, err
	}

	result := s.opResult(sess)
	result.Solved = solved

	// The first new entry is the caller's commit; later entries are
	// auto-completed rectangles it triggered.
	newEntries := sess.Engine.GetHistory()[prevHistory:]
	result.Events = eventsFromHistory(newEntries, sess.Engine.GetState())
	for i := range newEntries {
		if newEntries[i].Success && newEntries[i].Action == engine.ActionCommit {
			result.Placement = &PlacementInfo{
				Rect:        newEntries[i].Rect,
				Area:        newEntries[i].Rect.Area(),
				PlaceNumber: newEntries[i].PlaceNumber,
			}
			break
		}
	}

	return result, nil
}

// BulkPlace executes multiple placements in sequence, stopping at the
// first rejection
func (s *gameServiceImpl) BulkPlace(ctx context.Context, sessionID string, rects []RectSpec, reset bool) (*BulkPlaceResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()

	// Initialize result and capture start snapshot
	startCovered, _ := sess.Engine.Progress()

	result := &BulkPlaceResult{
		RequestedPlacements: len(rects),
		Events:              make([]GameEvent, 0),
		Success:             true,
		StartCovered:        startCovered,
	}

	// Handle reset
	if reset {
		sess.Engine.Reset()
		result.StartCovered = 0
		result.Events = append(result.Events, GameEvent{
			Type:      "reset",
			Message:   "Board reset to initial state",
			Timestamp: time.Now(),
		})
	}

	// Limit placements to prevent abuse
	if len(rects) > engine.MaxBulkPlacements {
		result.Truncated = true
		result.Limit = engine.MaxBulkPlacements
		rects = rects[:engine.MaxBulkPlacements]
	}

	// Execute placements
	for i, spec := range rects {
		if sess.Engine.IsSolved() {
			result.StoppedReason = "puzzle already solved"
			result.StopReasonCode = "solved"
			result.StoppedOnPlacement = result.PlacementsExecuted + 1
			break
		}

		prevHistory := len(sess.Engine.GetHistory())
		_, err := sess.Engine.PlaceRect(spec.A, spec.B)

		if err != nil {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("placement %d rejected: %v", i+1, err)
			result.StoppedOnPlacement = i + 1

			var pe *engine.PlacementError
			if errors.As(err, &pe) {
				result.StopReasonCode = string(pe.Reason)
				result.Attempted = attemptFromError(pe)
			} else {
				result.StopReasonCode = "invalid_state"
			}
			break
		}

		result.PlacementsExecuted++

		// Collect events and per-step trace for this placement,
		// including any auto-completed rectangles it triggered
		newEntries := sess.Engine.GetHistory()[prevHistory:]
		result.Events = append(result.Events, eventsFromHistory(newEntries, sess.Engine.GetState())...)
		for _, entry := range newEntries {
			if !entry.Success {
				continue
			}
			result.Steps = append(result.Steps, PlacementInfo{
				Idx:         i + 1,
				Rect:        entry.Rect,
				Area:        entry.Rect.Area(),
				Auto:        entry.Action == engine.ActionAuto,
				PlaceNumber: entry.PlaceNumber,
			})
		}
	}

	// Finalize snapshots
	state := sess.Engine.GetState().Clone()
	result.BoardState = state
	result.EndCovered, _ = sess.Engine.Progress()
	result.CoveredDelta = result.EndCovered - result.StartCovered
	result.Solved = state.Solved
	result.Message = state.Message

	if result.Solved && result.StopReasonCode == "" {
		result.StopReasonCode = "solved"
	}
	sess.mu.Unlock()

	s.autoSave(sessionID)
	return result, nil
}

// Reset restores a session's board to its initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.BoardState, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	state := sess.Engine.Reset().Clone()
	sess.mu.Unlock()

	s.autoSave(sessionID)
	return state, nil
}

// Regenerate replaces the session's puzzle with a freshly generated one
// of the same dimensions
func (s *gameServiceImpl) Regenerate(ctx context.Context, sessionID string, seed int64) (*engine.BoardState, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	current := sess.Engine.GetConfig()
	config, err := generator.Generate(generator.Options{
		Width:  current.Width,
		Height: current.Height,
		Seed:   seed,
	})
	if err != nil {
		sess.mu.Unlock()
		return nil, fmt.Errorf("failed to regenerate puzzle: %w", err)
	}

	if err := sess.Engine.SetConfig(config); err != nil {
		sess.mu.Unlock()
		return nil, fmt.Errorf("generated config rejected: %w", err)
	}
	sess.Config = config
	sess.Generated = true
	sess.Seed = seed
	state := sess.Engine.GetState().Clone()
	sess.mu.Unlock()

	s.autoSave(sessionID)
	return state, nil
}

// GetBoardState retrieves the current board state
func (s *gameServiceImpl) GetBoardState(ctx context.Context, sessionID string) (*engine.BoardState, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	return sess.Engine.GetState().Clone(), nil
}

// GetHistory returns paginated placement history
func (s *gameServiceImpl) GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	history := sess.Engine.GetHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	// Get the slice of placements
	var placements []engine.PlacementEntry
	if opts.Order == "desc" {
		// Reverse order (most recent first)
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			placements = append(placements, history[i])
		}
	} else {
		// Normal chronological order; copied so the page survives the
		// lock while the engine keeps appending
		if start < total {
			placements = append([]engine.PlacementEntry(nil), history[start:end]...)
		}
	}

	// Ensure placements is not nil
	if placements == nil {
		placements = []engine.PlacementEntry{}
	}

	return &HistoryResponse{
		Placements:      placements,
		TotalPlacements: total,
		Page:            opts.Page,
		PageSize:        opts.Limit,
		TotalPages:      totalPages,
		HasNext:         opts.Page < totalPages,
		HasPrevious:     opts.Page > 1,
	}, nil
}

// Hint suggests the next rectangle from a full solution of the current
// position
func (s *gameServiceImpl) Hint(ctx context.Context, sessionID string) (*HintResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	state := sess.Engine.GetState()
	if state.Solved {
		return &HintResult{Available: false, Message: "The puzzle is already solved"}, nil
	}

	rects, ok := solver.CompleteFrom(state)
	if !ok || len(rects) == 0 {
		return &HintResult{
			Available: false,
			Message:   "No completion exists from here. Try removing a rectangle.",
		}, nil
	}

	hint := rects[0]
	clue, n := engine.CluesInRect(state.Clues, hint)
	result := &HintResult{
		Available: true,
		Rect:      &hint,
		Message:   fmt.Sprintf("Try a %dx%d rectangle at %s", hint.Width(), hint.Height(), hint.Min),
	}
	if n == 1 {
		result.Clue = &clue
		result.Message = fmt.Sprintf("The %d at %s fits a %dx%d rectangle at %s",
			clue.Area, clue.Pos, hint.Width(), hint.Height(), hint.Min)
	}

	return result, nil
}

// CheckProgress reports coverage and whether the position can still be
// completed
func (s *gameServiceImpl) CheckProgress(ctx context.Context, sessionID string) (*ProgressReport, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	state := sess.Engine.GetState()
	covered, total := sess.Engine.Progress()
	_, solvable := solver.CompleteFrom(state)

	return &ProgressReport{
		Solvable:       solvable,
		Solved:         state.Solved,
		CoveredCells:   covered,
		TotalCells:     total,
		PlacedRects:    len(state.Rects),
		RemainingClues: len(engine.UncoveredClues(state)),
		Description:    engine.DescribeProgress(state),
	}, nil
}

// ListConfigs returns available puzzle configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific puzzle configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.PuzzleConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a puzzle configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.PuzzleConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// getSession looks up a session and refreshes its access time
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// opResult copies the session state into a successful OpResult. The
// caller holds the session lock; the copy outlives it, so transports
// can marshal the result after the lock is released.
func (s *gameServiceImpl) opResult(sess *Session) *OpResult {
	state := sess.Engine.GetState().Clone()
	return &OpResult{
		Success:    true,
		Solved:     state.Solved,
		BoardState: state,
		Message:    state.Message,
	}
}

// autoSave persists the session, logging instead of failing the operation
func (s *gameServiceImpl) autoSave(sessionID string) {
	if err := s.sessions.Save(sessionID); err != nil {
		fmt.Printf("Warning: Failed to persist session %s: %v\n", sessionID, err)
	}
}

// attemptFromError converts a placement rejection into its DTO
func attemptFromError(pe *engine.PlacementError) *AttemptInfo {
	return &AttemptInfo{
		Rect:      pe.Rect,
		Area:      pe.Rect.Area(),
		Reason:    string(pe.Reason),
		ClueCount: pe.ClueCount,
		ClueArea:  pe.ClueArea,
	}
}

// eventsFromHistory maps freshly appended history entries to events
func eventsFromHistory(entries []engine.PlacementEntry, state *engine.BoardState) []GameEvent {
	events := []GameEvent{}

	for i := range entries {
		entry := &entries[i]
		if !entry.Success {
			continue
		}

		var eventType, message string
		switch entry.Action {
		case engine.ActionAuto:
			eventType = "auto_complete"
			message = fmt.Sprintf("Auto-completed %s (%d cells)", entry.Rect, entry.Rect.Area())
		case engine.ActionDelete:
			eventType = "delete"
			message = fmt.Sprintf("Removed %s", entry.Rect)
		default:
			eventType = "placement"
			message = fmt.Sprintf("Placed %s (%d cells)", entry.Rect, entry.Rect.Area())
		}

		events = append(events, GameEvent{
			Type:      eventType,
			Message:   message,
			Timestamp: time.Now(),
			Rect:      &entry.Rect,
		})
	}

	if state.Solved {
		events = append(events, GameEvent{
			Type:      "solved",
			Message:   state.Message,
			Timestamp: time.Now(),
		})
	}

	return events
}
