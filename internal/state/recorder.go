package state

import (
	"context"
	"time"

	"github.com/tokensage/tokensage/pkg/models"
)

// SessionRecorder persists completed interactions under one session. It
// satisfies the orchestrator's Recorder interface.
type SessionRecorder struct {
	db        *DB
	sessionID string
}

// NewSessionRecorder creates the session row if it doesn't exist and
// returns a recorder bound to it.
func NewSessionRecorder(db *DB, sessionID string) (*SessionRecorder, error) {
	existing, err := db.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		err = db.CreateSession(&Session{
			ID:        sessionID,
			StartedAt: time.Now().UTC(),
			Status:    SessionActive,
		})
		if err != nil {
			return nil, err
		}
	}
	return &SessionRecorder{db: db, sessionID: sessionID}, nil
}

// SessionID returns the session this recorder writes to.
func (r *SessionRecorder) SessionID() string {
	return r.sessionID
}

// Record implements the orchestrator's Recorder interface.
func (r *SessionRecorder) Record(_ context.Context, interaction models.Interaction) error {
	return r.db.InsertInteraction(r.sessionID, interaction)
}

// Recent returns the session's most recent interactions, oldest first.
func (r *SessionRecorder) Recent(limit int) ([]models.Interaction, error) {
	return r.db.RecentInteractions(r.sessionID, limit)
}

// Close marks the session closed.
func (r *SessionRecorder) Close() error {
	return r.db.CloseSession(r.sessionID)
}
