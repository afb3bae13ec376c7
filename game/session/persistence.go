package session

import (
	"time"

	"github.com/shikaku-go/shikaku/game/engine"
	"github.com/shikaku-go/shikaku/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData is the JSON structure for persisted sessions. Each
// record embeds the full puzzle config rather than a reference to one:
// generated puzzles have no backing config file to reload from.
type PersistedSessionData struct {
	ID             string               `json:"id"`
	ConfigName     string               `json:"config_name"`
	Generated      bool                 `json:"generated,omitempty"`
	Seed           int64                `json:"seed,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	LastAccessedAt time.Time            `json:"last_accessed_at"`
	Config         *engine.PuzzleConfig `json:"config"`
	BoardState     *engine.BoardState   `json:"board_state"`
}
