// Package session provides session management for the Shikaku puzzle server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session lifecycle management
//   - Concurrent access control
//   - Session cleanup and expiration
//   - Pluggable persistence with a file-backed implementation
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// SessionPersistence is the storage interface; FilePersistence implements it
// with one JSON file per session, written atomically via a temp-file rename.
//
// Session Identifiers:
//
// Sessions use 8-character IDs taken from the first segment of a UUID, so
// they are easy to quote in URLs and chat while staying collision-resistant.
// Custom IDs are accepted as long as they are file-name safe. Lookups are
// case-insensitive.
//
// Persistence:
//
// Persisted records are self-contained: they embed the full puzzle config
// and the board state, because generated puzzles have no config file to
// reload from. Board mutations are saved write-through; access-time updates
// only mark the session dirty and reach disk on the next SyncDirty, which
// the server runs on a timer.
//
// Concurrency:
//
// The session manager is thread-safe and supports concurrent operations.
// Multiple goroutines can safely create, retrieve, and modify different
// sessions simultaneously. Internal locking ensures data consistency.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions")
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence)
//
//	// Restore sessions from a previous run
//	manager.LoadPersistedSessions()
//
//	// Create a new session
//	sess, err := manager.Create("", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Retrieve existing session
//	sess, err = manager.Get(sessionID)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// List all active sessions
//	sessions := manager.List()
//
// Cleanup:
//
// Sessions can be explicitly deleted or may expire based on inactivity.
// The manager provides cleanup methods for removing stale sessions and
// freeing resources.
package session
