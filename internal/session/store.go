// Package session keeps each user's working copy of answers and their
// editing status for the life of a session.
package session

import (
	"context"
	"errors"

	"rfpwriter/api/internal/richtext"
)

var ErrSessionNotFound = errors.New("session not found")

// Status is the editing state of one question within a session.
type Status string

const (
	StatusEmpty   Status = "empty"
	StatusEditing Status = "editing"
	StatusSaved   Status = "saved"
)

// Store is implemented by MemoryStore and RedisStore.
type Store interface {
	CreateSession(ctx context.Context) (string, error)
	GetAnswer(ctx context.Context, sessionID, questionID string) (string, error)
	GetStatus(ctx context.Context, sessionID, questionID string) (Status, error)
	// UpdateAnswer records an editor change and returns the resulting status.
	UpdateAnswer(ctx context.Context, sessionID, questionID, html string) (Status, error)
	// SaveAnswer records an explicit save. The question is always saved afterwards.
	SaveAnswer(ctx context.Context, sessionID, questionID, html string) (Status, error)
	Snapshot(ctx context.Context, sessionID string) (Snapshot, error)
	DeleteSession(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)

// Snapshot is a point-in-time copy of a session. Exports only ever read
// from a snapshot, so edits made while one renders are not mixed in.
type Snapshot struct {
	SessionID string
	Answers   map[string]string
	Statuses  map[string]Status
}

// Answer returns the stored HTML, or "" when the question was never answered.
func (s Snapshot) Answer(questionID string) string {
	return s.Answers[questionID]
}

func (s Snapshot) Status(questionID string) Status {
	if status, ok := s.Statuses[questionID]; ok {
		return status
	}
	return StatusEmpty
}

// StatusOf is Status as a plain string, for consumers that do not import
// this package.
func (s Snapshot) StatusOf(questionID string) string {
	return string(s.Status(questionID))
}

func newSnapshot(sessionID string) Snapshot {
	return Snapshot{
		SessionID: sessionID,
		Answers:   map[string]string{},
		Statuses:  map[string]Status{},
	}
}

// statusAfterUpdate applies an editor change. Clearing an answer always
// resets it; otherwise a saved answer stays saved until cleared.
func statusAfterUpdate(current Status, html string) Status {
	if richtext.IsBlank(html) {
		return StatusEmpty
	}
	if current == StatusSaved {
		return StatusSaved
	}
	return StatusEditing
}

func parseStatus(value string) Status {
	switch Status(value) {
	case StatusEditing, StatusSaved:
		return Status(value)
	default:
		return StatusEmpty
	}
}
