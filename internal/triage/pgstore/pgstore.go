// Package pgstore provides a PostgreSQL implementation of triage.Store.
package pgstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/careflow/internal/triage"
)

var tracer = otel.Tracer("github.com/linnemanlabs/careflow/internal/triage/pgstore")

//go:embed schema.sql
var schema string

// Store persists triage state in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New applies the schema against the given pool and returns a ready Store.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

const userColumns = `id, otc_attempts_used, otc_status, otc_unlock_requested, abuse_strikes, suspended, created_at`

const sessionColumns = `id, user_id, status, message_count, started_at, last_activity_at`

const assessmentColumns = `id, session_id, user_id, fingerprint, medical_level, psych_level,
	medical_scope, decision, reason, duplicate_suppressed, created_at`

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*triage.User, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.GetUser", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if u == nil {
		return nil, false, nil
	}
	return u, true, nil
}

// PutUser upserts a user record.
func (s *Store) PutUser(ctx context.Context, u *triage.User) error {
	ctx, span := tracer.Start(ctx, "pgstore.PutUser", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "UPSERT"),
	))
	defer span.End()

	if _, err := s.pool.Exec(ctx, upsertUserSQL, upsertUserArgs(u)...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(ctx context.Context, id string) (*triage.Session, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.GetSession", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	sess, err := scanSession(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if sess == nil {
		return nil, false, nil
	}
	return sess, true, nil
}

// PutSession upserts a session record.
func (s *Store) PutSession(ctx context.Context, sess *triage.Session) error {
	ctx, span := tracer.Start(ctx, "pgstore.PutSession", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "UPSERT"),
	))
	defer span.End()

	if _, err := s.pool.Exec(ctx, upsertSessionSQL, upsertSessionArgs(sess)...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// ActiveSession returns the user's most recently started ACTIVE session.
func (s *Store) ActiveSession(ctx context.Context, userID string) (*triage.Session, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.ActiveSession", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + sessionColumns + ` FROM sessions
		WHERE user_id = $1 AND status = 'ACTIVE'
		ORDER BY started_at DESC LIMIT 1`
	sess, err := scanSession(s.pool.QueryRow(ctx, query, userID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if sess == nil {
		return nil, false, nil
	}
	return sess, true, nil
}

// CountSessionsSince counts the user's sessions started at or after cutoff.
func (s *Store) CountSessionsSince(ctx context.Context, userID string, cutoff time.Time) (int, error) {
	ctx, span := tracer.Start(ctx, "pgstore.CountSessionsSince", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM sessions WHERE user_id = $1 AND started_at >= $2`,
		userID, cutoff,
	).Scan(&n)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

// AppendAssessment inserts one assessment event.
func (s *Store) AppendAssessment(ctx context.Context, a *triage.Assessment) error {
	ctx, span := tracer.Start(ctx, "pgstore.AppendAssessment", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "INSERT"),
	))
	defer span.End()

	if _, err := s.pool.Exec(ctx, insertAssessmentSQL, insertAssessmentArgs(a)...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

// CommitDecision persists user, session, and assessment in one transaction.
func (s *Store) CommitDecision(ctx context.Context, u *triage.User, sess *triage.Session, a *triage.Assessment) error {
	ctx, span := tracer.Start(ctx, "pgstore.CommitDecision", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "TRANSACTION"),
	))
	defer span.End()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is harmless

	if _, err := tx.Exec(ctx, upsertUserSQL, upsertUserArgs(u)...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("upsert user: %w", err)
	}
	if _, err := tx.Exec(ctx, upsertSessionSQL, upsertSessionArgs(sess)...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("upsert session: %w", err)
	}
	if _, err := tx.Exec(ctx, insertAssessmentSQL, insertAssessmentArgs(a)...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("insert assessment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// RecentAssessments returns the user's assessments at or after cutoff, most
// recent first.
func (s *Store) RecentAssessments(ctx context.Context, userID string, cutoff time.Time) ([]triage.Assessment, error) {
	ctx, span := tracer.Start(ctx, "pgstore.RecentAssessments", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + assessmentColumns + ` FROM assessments
		WHERE user_id = $1 AND created_at >= $2 ORDER BY created_at DESC`
	out, err := s.queryAssessments(ctx, query, userID, cutoff)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return out, nil
}

// SessionAssessments returns a session's assessments in insertion order.
func (s *Store) SessionAssessments(ctx context.Context, sessionID string) ([]triage.Assessment, error) {
	ctx, span := tracer.Start(ctx, "pgstore.SessionAssessments", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + assessmentColumns + ` FROM assessments
		WHERE session_id = $1 ORDER BY created_at`
	out, err := s.queryAssessments(ctx, query, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return out, nil
}

const upsertUserSQL = `INSERT INTO users (
	id, otc_attempts_used, otc_status, otc_unlock_requested, abuse_strikes, suspended, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
	otc_attempts_used    = EXCLUDED.otc_attempts_used,
	otc_status           = EXCLUDED.otc_status,
	otc_unlock_requested = EXCLUDED.otc_unlock_requested,
	abuse_strikes        = EXCLUDED.abuse_strikes,
	suspended            = EXCLUDED.suspended`

func upsertUserArgs(u *triage.User) []any {
	return []any{
		u.ID, u.OTCAttemptsUsed, string(u.OTCStatus), u.OTCUnlockRequested,
		u.AbuseStrikes, u.Suspended, u.CreatedAt,
	}
}

const upsertSessionSQL = `INSERT INTO sessions (
	id, user_id, status, message_count, started_at, last_activity_at
) VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET
	status           = EXCLUDED.status,
	message_count    = EXCLUDED.message_count,
	last_activity_at = EXCLUDED.last_activity_at`

func upsertSessionArgs(sess *triage.Session) []any {
	return []any{
		sess.ID, sess.UserID, string(sess.Status), sess.MessageCount,
		sess.StartedAt, sess.LastActivityAt,
	}
}

const insertAssessmentSQL = `INSERT INTO assessments (
	id, session_id, user_id, fingerprint, medical_level, psych_level,
	medical_scope, decision, reason, duplicate_suppressed, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`

func insertAssessmentArgs(a *triage.Assessment) []any {
	return []any{
		a.ID, a.SessionID, a.UserID, a.Fingerprint, string(a.MedicalLevel), string(a.PsychLevel),
		a.MedicalScope, string(a.Decision), string(a.Reason), a.DuplicateSuppressed, a.Timestamp,
	}
}

func (s *Store) queryAssessments(ctx context.Context, query string, args ...any) ([]triage.Assessment, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}
	defer rows.Close()

	var out []triage.Assessment
	for rows.Next() {
		var (
			a        triage.Assessment
			medical  string
			psych    string
			decision string
			reason   string
		)
		if err := rows.Scan(
			&a.ID, &a.SessionID, &a.UserID, &a.Fingerprint, &medical, &psych,
			&a.MedicalScope, &decision, &reason, &a.DuplicateSuppressed, &a.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		a.MedicalLevel = triage.MedicalLevel(medical)
		a.PsychLevel = triage.PsychLevel(psych)
		a.Decision = triage.Decision(decision)
		a.Reason = triage.HandoffReason(reason)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assessments: %w", err)
	}
	return out, nil
}

// scanUser scans a single row into a triage.User. Returns (nil, nil) when no
// row is found.
func scanUser(row pgx.Row) (*triage.User, error) {
	var (
		u      triage.User
		status string
	)
	err := row.Scan(&u.ID, &u.OTCAttemptsUsed, &status, &u.OTCUnlockRequested,
		&u.AbuseStrikes, &u.Suspended, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.OTCStatus = triage.OTCStatus(status)
	return &u, nil
}

// scanSession scans a single row into a triage.Session. Returns (nil, nil)
// when no row is found.
func scanSession(row pgx.Row) (*triage.Session, error) {
	var (
		sess   triage.Session
		status string
	)
	err := row.Scan(&sess.ID, &sess.UserID, &status, &sess.MessageCount,
		&sess.StartedAt, &sess.LastActivityAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	sess.Status = triage.SessionStatus(status)
	return &sess, nil
}
