package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cloudbilling/engine/domain/identity"
	"github.com/google/uuid"
)

// SessionSnapshot is the serialized current-identity record, stored
// separately from the dataset so a restart can restore a logged-in
// state without re-authenticating.
type SessionSnapshot struct {
	ID         uuid.UUID     `json:"id"`
	UserID     int64         `json:"user_id"`
	Username   string        `json:"username"`
	Role       identity.Role `json:"role"`
	LoggedInAt time.Time     `json:"logged_in_at"`
}

// SaveSession persists the session snapshot
func (s *Store) SaveSession(snap SessionSnapshot) error {
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := os.WriteFile(s.sessionPath(), raw, 0o600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

// LoadSession reads the persisted session snapshot. Returns (nil, nil)
// when no session is stored; a malformed snapshot is treated the same
// way and discarded, since it only saves a re-login.
func (s *Store) LoadSession() (*SessionSnapshot, error) {
	raw, err := os.ReadFile(s.sessionPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}

	var snap SessionSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		s.logger.Warn("Discarding malformed session snapshot")
		_ = os.Remove(s.sessionPath())
		return nil, nil
	}
	return &snap, nil
}

// ClearSession removes the persisted session snapshot
func (s *Store) ClearSession() error {
	err := os.Remove(s.sessionPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
