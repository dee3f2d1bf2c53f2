package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tokensage/tokensage/pkg/models"
)

// SessionStatus represents the status of a session.
type SessionStatus string

const (
	SessionActive SessionStatus = "active"
	SessionClosed SessionStatus = "closed"
)

// Session is one conversation scope. Interactions are keyed to it so a
// session can be resumed with its context window rebuilt.
type Session struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Status    SessionStatus `json:"status"`
}

// CreateSession creates a new session.
func (db *DB) CreateSession(s *Session) error {
	_, err := db.Exec(`
		INSERT INTO sessions (id, started_at, status)
		VALUES (?, ?, ?)
	`, s.ID, formatTime(s.StartedAt), string(s.Status))
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (db *DB) GetSession(id string) (*Session, error) {
	row := db.QueryRow(`
		SELECT id, started_at, status FROM sessions WHERE id = ?
	`, id)

	var s Session
	var startedAt string
	if err := row.Scan(&s.ID, &startedAt, &s.Status); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	s.StartedAt, _ = parseTime(startedAt)
	return &s, nil
}

// GetActiveSession returns the most recently started active session, or
// nil if there is none.
func (db *DB) GetActiveSession() (*Session, error) {
	row := db.QueryRow(`
		SELECT id, started_at, status FROM sessions
		WHERE status = ? ORDER BY started_at DESC LIMIT 1
	`, string(SessionActive))

	var s Session
	var startedAt string
	if err := row.Scan(&s.ID, &startedAt, &s.Status); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get active session: %w", err)
	}
	s.StartedAt, _ = parseTime(startedAt)
	return &s, nil
}

// GetPreviousSession returns the most recently started session other
// than the given one, or nil if there is none. Used to resume the
// context window of an earlier run.
func (db *DB) GetPreviousSession(excludeID string) (*Session, error) {
	row := db.QueryRow(`
		SELECT id, started_at, status FROM sessions
		WHERE id != ? ORDER BY started_at DESC LIMIT 1
	`, excludeID)

	var s Session
	var startedAt string
	if err := row.Scan(&s.ID, &startedAt, &s.Status); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get previous session: %w", err)
	}
	s.StartedAt, _ = parseTime(startedAt)
	return &s, nil
}

// CloseSession marks a session closed.
func (db *DB) CloseSession(id string) error {
	_, err := db.Exec(`UPDATE sessions SET status = ? WHERE id = ?`, string(SessionClosed), id)
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	return nil
}

// InsertInteraction stores one completed interaction under a session.
// The result payload is stored as JSON.
func (db *DB) InsertInteraction(sessionID string, interaction models.Interaction) error {
	response, err := json.Marshal(interaction.Response)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO interactions (id, session_id, timestamp, query, response, agent_type)
		VALUES (?, ?, ?, ?, ?, ?)
	`, interaction.ID, sessionID, formatTime(interaction.Timestamp), interaction.Query,
		string(response), string(interaction.AgentType))
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	return nil
}

// RecentInteractions returns up to limit interactions for a session,
// ordered oldest first so they can be replayed into a context window.
func (db *DB) RecentInteractions(sessionID string, limit int) ([]models.Interaction, error) {
	rows, err := db.Query(`
		SELECT id, timestamp, query, response, agent_type FROM (
			SELECT id, timestamp, query, response, agent_type
			FROM interactions WHERE session_id = ?
			ORDER BY timestamp DESC LIMIT ?
		) ORDER BY timestamp ASC
	`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	defer rows.Close()

	var interactions []models.Interaction
	for rows.Next() {
		var interaction models.Interaction
		var timestamp, response, agentType string
		if err := rows.Scan(&interaction.ID, &timestamp, &interaction.Query, &response, &agentType); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		interaction.Timestamp, _ = parseTime(timestamp)
		interaction.AgentType = models.Category(agentType)
		var result models.Result
		if err := json.Unmarshal([]byte(response), &result); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		interaction.Response = &result
		interactions = append(interactions, interaction)
	}
	return interactions, rows.Err()
}

// PurgeOldSessions deletes closed sessions older than the given age,
// along with their interactions. Returns the number of sessions removed.
func (db *DB) PurgeOldSessions(olderThan time.Duration) (int64, error) {
	cutoff := formatTime(time.Now().Add(-olderThan))

	if _, err := db.Exec(`
		DELETE FROM interactions WHERE session_id IN (
			SELECT id FROM sessions WHERE status = ? AND started_at < ?
		)
	`, string(SessionClosed), cutoff); err != nil {
		return 0, fmt.Errorf("purge interactions: %w", err)
	}

	res, err := db.Exec(`
		DELETE FROM sessions WHERE status = ? AND started_at < ?
	`, string(SessionClosed), cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return res.RowsAffected()
}
