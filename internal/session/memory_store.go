package session

import (
	"context"
	"sync"
	"time"

	"rfpwriter/api/internal/util"
)

type memorySession struct {
	answers   map[string]string
	statuses  map[string]Status
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Idle sessions expire after
// the TTL and are evicted lazily on access.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*memorySession
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		sessions: map[string]*memorySession{},
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemoryStore) CreateSession(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpiredLocked()
	id := util.NewID("sess")
	s.sessions[id] = &memorySession{
		answers:   map[string]string{},
		statuses:  map[string]Status{},
		expiresAt: s.now().Add(s.ttl),
	}
	return id, nil
}

func (s *MemoryStore) GetAnswer(_ context.Context, sessionID, questionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookupLocked(sessionID)
	if err != nil {
		return "", err
	}
	return sess.answers[questionID], nil
}

func (s *MemoryStore) GetStatus(_ context.Context, sessionID, questionID string) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookupLocked(sessionID)
	if err != nil {
		return StatusEmpty, err
	}
	if status, ok := sess.statuses[questionID]; ok {
		return status, nil
	}
	return StatusEmpty, nil
}

func (s *MemoryStore) UpdateAnswer(_ context.Context, sessionID, questionID, html string) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookupLocked(sessionID)
	if err != nil {
		return StatusEmpty, err
	}
	next := statusAfterUpdate(sess.statuses[questionID], html)
	s.writeLocked(sess, questionID, html, next)
	return next, nil
}

func (s *MemoryStore) SaveAnswer(_ context.Context, sessionID, questionID, html string) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookupLocked(sessionID)
	if err != nil {
		return StatusEmpty, err
	}
	s.writeLocked(sess, questionID, html, StatusSaved)
	return StatusSaved, nil
}

func (s *MemoryStore) Snapshot(_ context.Context, sessionID string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookupLocked(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	snap := newSnapshot(sessionID)
	for qid, html := range sess.answers {
		snap.Answers[qid] = html
	}
	for qid, status := range sess.statuses {
		snap.Statuses[qid] = status
	}
	return snap, nil
}

func (s *MemoryStore) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookupLocked(sessionID); err != nil {
		return err
	}
	delete(s.sessions, sessionID)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) lookupLocked(sessionID string) (*memorySession, error) {
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !s.now().Before(sess.expiresAt) {
		delete(s.sessions, sessionID)
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *MemoryStore) writeLocked(sess *memorySession, questionID, html string, status Status) {
	sess.answers[questionID] = html
	sess.statuses[questionID] = status
	sess.expiresAt = s.now().Add(s.ttl)
}

func (s *MemoryStore) evictExpiredLocked() {
	now := s.now()
	for id, sess := range s.sessions {
		if !now.Before(sess.expiresAt) {
			delete(s.sessions, id)
		}
	}
}
