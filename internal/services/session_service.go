package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"feedlink-backend/internal/models"
)

// SessionService persists dashboard sessions in SQLite. It replaces the
// browser-side localStorage state of the original dashboard (user profile,
// auth token, forgot-password email) with server-owned records that have an
// explicit lifecycle: created on login, looked up per request, deleted on
// sign-out, expired rows swept periodically.
type SessionService struct {
	db *sql.DB
}

// NewSessionService creates a new session service
func NewSessionService(db *sql.DB) *SessionService {
	return &SessionService{db: db}
}

// Session represents a stored dashboard session
type Session struct {
	ID        string      `json:"id"`
	User      models.User `json:"user"`
	CreatedAt time.Time   `json:"createdAt"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// CreateSession stores a new session for a backend-confirmed user.
// The raw token is bcrypt-hashed before it reaches the table.
func (s *SessionService) CreateSession(user models.User, token string, ttl time.Duration) (*Session, error) {
	snapshot, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user snapshot: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash session token: %w", err)
	}

	session := &Session{
		ID:        uuid.New().String(),
		User:      user,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	}

	_, err = s.db.Exec(`
		INSERT INTO sessions (id, user_id, user_snapshot, token_hash, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		session.ID, user.ID, string(snapshot), string(hash),
		session.CreatedAt.UTC(), session.ExpiresAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return session, nil
}

// ValidateSession checks a session id and raw token pair and returns the
// stored user snapshot
func (s *SessionService) ValidateSession(sessionID, token string) (*models.User, error) {
	var snapshot, tokenHash string
	var expiresAt time.Time

	err := s.db.QueryRow(`
		SELECT user_snapshot, token_hash, expires_at
		FROM sessions WHERE id = ?`, sessionID,
	).Scan(&snapshot, &tokenHash, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if time.Now().After(expiresAt) {
		return nil, fmt.Errorf("session expired")
	}

	if bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(token)) != nil {
		return nil, fmt.Errorf("session token mismatch")
	}

	var user models.User
	if err := json.Unmarshal([]byte(snapshot), &user); err != nil {
		return nil, fmt.Errorf("failed to decode user snapshot: %w", err)
	}

	return &user, nil
}

// DeleteSession removes a session (sign-out)
func (s *SessionService) DeleteSession(sessionID string) error {
	if _, err := s.db.Exec("DELETE FROM sessions WHERE id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteUserSessions removes all sessions belonging to a user
func (s *SessionService) DeleteUserSessions(userID int64) error {
	if _, err := s.db.Exec("DELETE FROM sessions WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}

// CleanupExpiredSessions sweeps expired session rows
func (s *SessionService) CleanupExpiredSessions() error {
	if _, err := s.db.Exec("DELETE FROM sessions WHERE expires_at < ?", time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return nil
}

// RecordResetRequest stores the email of a pending password reset so the
// reset flow can complete across requests
func (s *SessionService) RecordResetRequest(email string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.Exec(
		"INSERT INTO reset_requests (id, email, requested_at) VALUES (?, ?, ?)",
		id, email, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record reset request: %w", err)
	}
	return id, nil
}

// ConsumeResetRequest marks the most recent pending reset for an email as
// consumed and returns whether one existed
func (s *SessionService) ConsumeResetRequest(email string) (bool, error) {
	result, err := s.db.Exec(`
		UPDATE reset_requests SET consumed = 1
		WHERE id = (
			SELECT id FROM reset_requests
			WHERE email = ? AND consumed = 0
			ORDER BY requested_at DESC LIMIT 1
		)`, email)
	if err != nil {
		return false, fmt.Errorf("failed to consume reset request: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to consume reset request: %w", err)
	}
	return rows > 0, nil
}
