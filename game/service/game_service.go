package service

import (
	"context"
	"sync"
	"time"

	"github.com/shikaku-go/shikaku/game/engine"
)

// GameService defines all puzzle-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Board Operations
	Begin(ctx context.Context, sessionID string, at engine.Point) (*OpResult, error)
	Resize(ctx context.Context, sessionID string, to engine.Point) (*OpResult, error)
	AutoFill(ctx context.Context, sessionID string, direction string) (*OpResult, error)
	Commit(ctx context.Context, sessionID string) (*OpResult, error)
	Cancel(ctx context.Context, sessionID string) (*OpResult, error)
	DeleteRect(ctx context.Context, sessionID string, at engine.Point) (*OpResult, error)
	PlaceRect(ctx context.Context, sessionID string, a, b engine.Point) (*OpResult, error)
	BulkPlace(ctx context.Context, sessionID string, rects []RectSpec, reset bool) (*BulkPlaceResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.BoardState, error)
	Regenerate(ctx context.Context, sessionID string, seed int64) (*engine.BoardState, error)

	// Board State
	GetBoardState(ctx context.Context, sessionID string) (*engine.BoardState, error)
	GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Assistance
	Hint(ctx context.Context, sessionID string) (*HintResult, error)
	CheckProgress(ctx context.Context, sessionID string) (*ProgressReport, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.PuzzleConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.PuzzleConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.PuzzleConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.PuzzleConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles puzzle configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.PuzzleConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.PuzzleConfig
	SaveConfig(name string, config *engine.PuzzleConfig) error
}

// Session represents an active puzzle session. Generated sessions have
// no backing config file; their config exists only in memory (and in
// the persisted session record).
type Session struct {
	ID             string
	Engine         *engine.PartitionEngine
	Config         *engine.PuzzleConfig
	Generated      bool
	Seed           int64
	CreatedAt      time.Time
	LastAccessedAt time.Time

	// mu serializes board operations for this session. The service
	// locks it around every engine call so transports can hit the
	// same session concurrently.
	mu sync.Mutex
}

// SessionSnapshot is a point-in-time copy of a session. The board state
// is a deep copy and the config is never mutated after construction, so
// the snapshot is safe to marshal while the session keeps serving
// operations.
type SessionSnapshot struct {
	ID             string
	Config         *engine.PuzzleConfig
	Generated      bool
	Seed           int64
	CreatedAt      time.Time
	LastAccessedAt time.Time
	BoardState     *engine.BoardState
}

// Touch refreshes the last-accessed time under the session lock
func (s *Session) Touch() {
	s.mu.Lock()
	s.LastAccessedAt = time.Now()
	s.mu.Unlock()
}

// Snapshot copies the session under its lock. Persistence and DTO
// builders consume the copy, so a background sync never marshals a
// board that a transport goroutine is mutating.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionSnapshot{
		ID:             s.ID,
		Config:         s.Config,
		Generated:      s.Generated,
		Seed:           s.Seed,
		CreatedAt:      s.CreatedAt,
		LastAccessedAt: s.LastAccessedAt,
		BoardState:     s.Engine.GetState().Clone(),
	}
}
