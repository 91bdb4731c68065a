package triage

import (
	"context"
	"time"
)

// Store is the persistence interface for users, sessions, and assessment
// history. The engine assumes read-your-writes consistency within one
// decision transaction; all I/O is awaited before mutations are considered
// committed.
type Store interface {
	GetUser(ctx context.Context, id string) (*User, bool, error)
	PutUser(ctx context.Context, u *User) error

	GetSession(ctx context.Context, id string) (*Session, bool, error)
	PutSession(ctx context.Context, s *Session) error

	// ActiveSession returns the user's current ACTIVE session, if any.
	ActiveSession(ctx context.Context, userID string) (*Session, bool, error)

	// CountSessionsSince counts sessions the user created at or after the
	// cutoff, regardless of status. Used for the rolling daily quota.
	CountSessionsSince(ctx context.Context, userID string, cutoff time.Time) (int, error)

	// AppendAssessment records one immutable assessment event.
	AppendAssessment(ctx context.Context, a *Assessment) error

	// CommitDecision persists one decision transaction as a unit: the
	// mutated user, the mutated session, and the new assessment either all
	// land or none do.
	CommitDecision(ctx context.Context, u *User, s *Session, a *Assessment) error

	// RecentAssessments returns the user's assessments with timestamps at or
	// after the cutoff, most recent first.
	RecentAssessments(ctx context.Context, userID string, cutoff time.Time) ([]Assessment, error)

	// SessionAssessments returns a session's assessments in insertion order.
	SessionAssessments(ctx context.Context, sessionID string) ([]Assessment, error)
}
