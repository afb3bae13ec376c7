package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shikaku-go/shikaku/game/engine"
	"github.com/shikaku-go/shikaku/game/service"
)

// FilePersistence implements SessionPersistence using file system storage,
// one JSON file per session
type FilePersistence struct {
	sessionsDir string
}

// NewFilePersistence creates a file-based session persistence layer
func NewFilePersistence(sessionsDir string) (*FilePersistence, error) {
	// Create sessions directory if it doesn't exist
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	return &FilePersistence{sessionsDir: sessionsDir}, nil
}

// Save writes a session record to a JSON file. The record embeds the full
// puzzle config, so restoring it never needs the original config file.
// It marshals a snapshot taken under the session lock, so the background
// sync can run while transports mutate the board.
func (fp *FilePersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	snap := session.Snapshot()
	data := PersistedSessionData{
		ID:             snap.ID,
		ConfigName:     snap.Config.Name,
		Generated:      snap.Generated,
		Seed:           snap.Seed,
		CreatedAt:      snap.CreatedAt,
		LastAccessedAt: snap.LastAccessedAt,
		Config:         snap.Config,
		BoardState:     snap.BoardState,
	}

	// Marshal to JSON with indentation for readability
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	// Write to a temp file and rename so a crash mid-write never leaves a
	// truncated record behind
	filePath := fp.getFilePath(session.ID)
	tmpPath := filePath + ".tmp"
	if err := os.WriteFile(tmpPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		return fmt.Errorf("failed to finalize session file: %w", err)
	}

	return nil
}

// Load restores a session from its JSON record
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	filePath := fp.getFilePath(id)

	// Check if file exists
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, ErrSessionNotFound
	}

	jsonData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}

	if data.Config == nil {
		return nil, fmt.Errorf("session record %s has no embedded config", id)
	}

	puzzleEngine, err := engine.NewEngine(data.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	// Restore board state; derived coverage is rebuilt by SetState
	if data.BoardState != nil {
		if err := puzzleEngine.SetState(data.BoardState); err != nil {
			return nil, fmt.Errorf("failed to restore board state: %w", err)
		}
	}

	session := &service.Session{
		ID:             data.ID,
		Engine:         puzzleEngine,
		Config:         data.Config,
		Generated:      data.Generated,
		Seed:           data.Seed,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}

	return session, nil
}

// Delete removes a session file
func (fp *FilePersistence) Delete(id string) error {
	filePath := fp.getFilePath(id)

	if !fp.Exists(id) {
		return ErrSessionNotFound
	}

	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to remove session file: %w", err)
	}

	return nil
}

// ListAll returns all persisted session IDs
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var sessionIDs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasSuffix(name, ".json") {
			// Remove .json extension to get session ID
			sessionID := strings.TrimSuffix(name, ".json")
			sessionIDs = append(sessionIDs, sessionID)
		}
	}

	return sessionIDs, nil
}

// Exists checks if a session file exists
func (fp *FilePersistence) Exists(id string) bool {
	filePath := fp.getFilePath(id)
	_, err := os.Stat(filePath)
	return err == nil
}

// getFilePath returns the full file path for a session ID
func (fp *FilePersistence) getFilePath(id string) string {
	return filepath.Join(fp.sessionsDir, fmt.Sprintf("%s.json", id))
}
