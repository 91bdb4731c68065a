// Package memstore provides an in-memory implementation of triage.Store.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/linnemanlabs/careflow/internal/triage"
)

// Store holds users, sessions, and assessments in memory. Suitable for
// dev/testing.
type Store struct {
	mu          sync.RWMutex
	users       map[string]*triage.User      // user ID -> user
	sessions    map[string]*triage.Session   // session ID -> session
	assessments map[string][]triage.Assessment // user ID -> events, insertion order
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{
		users:       make(map[string]*triage.User),
		sessions:    make(map[string]*triage.Session),
		assessments: make(map[string][]triage.Assessment),
	}
}

// GetUser retrieves a user by ID. Returns a copy.
func (s *Store) GetUser(_ context.Context, id string) (*triage.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, false, nil
	}
	cp := *u
	return &cp, true, nil
}

// PutUser stores a copy of the user.
func (s *Store) PutUser(_ context.Context, u *triage.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

// GetSession retrieves a session by ID. Returns a copy.
func (s *Store) GetSession(_ context.Context, id string) (*triage.Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false, nil
	}
	cp := *sess
	return &cp, true, nil
}

// PutSession stores a copy of the session.
func (s *Store) PutSession(_ context.Context, sess *triage.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	s.sessions[sess.ID] = &cp
	return nil
}

// ActiveSession returns the user's most recently started ACTIVE session.
func (s *Store) ActiveSession(_ context.Context, userID string) (*triage.Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *triage.Session
	for _, sess := range s.sessions {
		if sess.UserID != userID || sess.Status != triage.SessionActive {
			continue
		}
		if latest == nil || sess.StartedAt.After(latest.StartedAt) {
			latest = sess
		}
	}
	if latest == nil {
		return nil, false, nil
	}
	cp := *latest
	return &cp, true, nil
}

// CountSessionsSince counts the user's sessions started at or after cutoff.
func (s *Store) CountSessionsSince(_ context.Context, userID string, cutoff time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, sess := range s.sessions {
		if sess.UserID == userID && !sess.StartedAt.Before(cutoff) {
			n++
		}
	}
	return n, nil
}

// AppendAssessment records a copy of the assessment.
func (s *Store) AppendAssessment(_ context.Context, a *triage.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assessments[a.UserID] = append(s.assessments[a.UserID], *a)
	return nil
}

// CommitDecision stores user, session, and assessment under one lock hold.
func (s *Store) CommitDecision(_ context.Context, u *triage.User, sess *triage.Session, a *triage.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ucp := *u
	s.users[u.ID] = &ucp
	scp := *sess
	s.sessions[sess.ID] = &scp
	s.assessments[a.UserID] = append(s.assessments[a.UserID], *a)
	return nil
}

// RecentAssessments returns the user's assessments at or after cutoff, most
// recent first.
func (s *Store) RecentAssessments(_ context.Context, userID string, cutoff time.Time) ([]triage.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []triage.Assessment
	for _, a := range s.assessments[userID] {
		if !a.Timestamp.Before(cutoff) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// SessionAssessments returns a session's assessments in insertion order.
func (s *Store) SessionAssessments(_ context.Context, sessionID string) ([]triage.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []triage.Assessment
	for _, events := range s.assessments {
		for _, a := range events {
			if a.SessionID == sessionID {
				out = append(out, a)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}
