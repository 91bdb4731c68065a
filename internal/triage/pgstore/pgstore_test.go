package pgstore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/careflow/internal/triage"
	"github.com/linnemanlabs/careflow/internal/triage/pgstore"
)

func openStore(t *testing.T) *pgstore.Store {
	t.Helper()
	dsn := os.Getenv("CAREFLOW_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("CAREFLOW_TEST_DATABASE_URL not set, skipping integration test")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("pgxpool.New: %v", err)
	}
	t.Cleanup(pool.Close)
	s, err := pgstore.New(ctx, pool)
	if err != nil {
		t.Fatalf("pgstore.New: %v", err)
	}
	return s
}

func newUser(now time.Time) *triage.User {
	return triage.NewUser("test-"+ulid.Make().String(), now)
}

func TestUserRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	now := time.Now().Truncate(time.Microsecond).UTC()
	u := newUser(now)
	u.OTCAttemptsUsed = 2
	u.AbuseStrikes = 1

	if err := s.PutUser(ctx, u); err != nil {
		t.Fatalf("PutUser: %v", err)
	}

	got, ok, err := s.GetUser(ctx, u.ID)
	if err != nil || !ok {
		t.Fatalf("GetUser = ok=%v err=%v", ok, err)
	}
	if got.OTCAttemptsUsed != 2 || got.AbuseStrikes != 1 || got.OTCStatus != triage.OTCActive {
		t.Errorf("got %+v", got)
	}

	// Upsert path.
	u.Suspended = true
	if err := s.PutUser(ctx, u); err != nil {
		t.Fatalf("PutUser update: %v", err)
	}
	got, _, _ = s.GetUser(ctx, u.ID)
	if !got.Suspended {
		t.Error("update not persisted")
	}
}

func TestGetUser_Missing(t *testing.T) {
	s := openStore(t)

	_, ok, err := s.GetUser(context.Background(), "test-missing-"+ulid.Make().String())
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if ok {
		t.Error("found a user that does not exist")
	}
}

func TestSessionLifecycleQueries(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	now := time.Now().Truncate(time.Microsecond).UTC()
	u := newUser(now)
	if err := s.PutUser(ctx, u); err != nil {
		t.Fatalf("PutUser: %v", err)
	}

	mk := func(started time.Time, status triage.SessionStatus) *triage.Session {
		sess := &triage.Session{
			ID: ulid.Make().String(), UserID: u.ID, Status: status,
			StartedAt: started, LastActivityAt: started,
		}
		if err := s.PutSession(ctx, sess); err != nil {
			t.Fatalf("PutSession: %v", err)
		}
		return sess
	}

	mk(now.Add(-30*time.Hour), triage.SessionClosed)
	mk(now.Add(-2*time.Hour), triage.SessionClosed)
	active := mk(now, triage.SessionActive)

	got, ok, err := s.ActiveSession(ctx, u.ID)
	if err != nil || !ok {
		t.Fatalf("ActiveSession = ok=%v err=%v", ok, err)
	}
	if got.ID != active.ID {
		t.Errorf("active = %s, want %s", got.ID, active.ID)
	}

	n, err := s.CountSessionsSince(ctx, u.ID, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("CountSessionsSince: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestCommitDecisionAndTimelines(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	now := time.Now().Truncate(time.Microsecond).UTC()
	u := newUser(now)
	if err := s.PutUser(ctx, u); err != nil {
		t.Fatalf("PutUser: %v", err)
	}
	sess := &triage.Session{
		ID: ulid.Make().String(), UserID: u.ID, Status: triage.SessionActive,
		StartedAt: now, LastActivityAt: now,
	}
	if err := s.PutSession(ctx, sess); err != nil {
		t.Fatalf("PutSession: %v", err)
	}

	u.OTCAttemptsUsed = 1
	sess.MessageCount = 1
	a := &triage.Assessment{
		ID: ulid.Make().String(), SessionID: sess.ID, UserID: u.ID,
		Fingerprint: "cough|fever", MedicalLevel: triage.M0, PsychLevel: triage.P0,
		MedicalScope: true, Decision: triage.DecisionOTCGuidance, Timestamp: now,
	}
	if err := s.CommitDecision(ctx, u, sess, a); err != nil {
		t.Fatalf("CommitDecision: %v", err)
	}

	gotU, _, _ := s.GetUser(ctx, u.ID)
	if gotU.OTCAttemptsUsed != 1 {
		t.Errorf("user attempts = %d, want 1", gotU.OTCAttemptsUsed)
	}
	gotS, _, _ := s.GetSession(ctx, sess.ID)
	if gotS.MessageCount != 1 {
		t.Errorf("session count = %d, want 1", gotS.MessageCount)
	}

	recent, err := s.RecentAssessments(ctx, u.ID, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("RecentAssessments: %v", err)
	}
	if len(recent) != 1 || recent[0].Fingerprint != "cough|fever" {
		t.Errorf("recent = %+v", recent)
	}

	timeline, err := s.SessionAssessments(ctx, sess.ID)
	if err != nil {
		t.Fatalf("SessionAssessments: %v", err)
	}
	if len(timeline) != 1 || timeline[0].Decision != triage.DecisionOTCGuidance {
		t.Errorf("timeline = %+v", timeline)
	}
}
