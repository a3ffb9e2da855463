// Package session owns the per-session history ledgers and the tokens that address them.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/Dan9191/loan-approval/internal/history"
	"github.com/Dan9191/loan-approval/internal/metrics"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned for unknown or expired sessions
var ErrNotFound = errors.New("session not found")

// Session is one applicant's interaction scope
type Session struct {
	ID        string
	Ledger    *history.Ledger
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Store keeps live sessions in memory; nothing is persisted
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	log      *logrus.Logger
	now      func() time.Time
}

// NewStore initializes a session store whose sessions expire after ttl of inactivity.
// Tokens carry the same ttl from issue time; callers stay active by switching to the
// refreshed token returned with each authenticated response.
func NewStore(ttl time.Duration, log *logrus.Logger) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		log:      log,
		now:      time.Now,
	}
}

// TTL returns the idle lifetime of a session
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create starts a session with an empty ledger
func (s *Store) Create() *Session {
	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		Ledger:    history.NewLedger(),
		CreatedAt: now,
		lastSeen:  now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	s.log.WithField("session_id", sess.ID).Debug("Session created")
	return sess
}

// Get returns a live session and marks it as active
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	now := s.now()
	if now.Sub(sess.idleSince()) > s.ttl {
		s.End(id)
		return nil, ErrNotFound
	}
	sess.touch(now)
	return sess, nil
}

// End discards a session and its history
func (s *Store) End(id string) bool {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	if ok {
		s.log.WithField("session_id", id).Debug("Session ended")
	}
	return ok
}

// Sweep removes sessions idle for longer than the TTL and returns how many were removed
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.idleSince()) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	if removed > 0 {
		s.log.Infof("Expired %d idle sessions", removed)
	}
	return removed
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
