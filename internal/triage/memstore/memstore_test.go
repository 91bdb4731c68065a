package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/linnemanlabs/careflow/internal/triage"
)

var baseTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func TestUserRoundTrip(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	if _, ok, err := s.GetUser(ctx, "u1"); err != nil || ok {
		t.Fatalf("GetUser on empty store = ok=%v err=%v", ok, err)
	}

	u := triage.NewUser("u1", baseTime)
	if err := s.PutUser(ctx, u); err != nil {
		t.Fatalf("PutUser: %v", err)
	}

	got, ok, err := s.GetUser(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("GetUser = ok=%v err=%v", ok, err)
	}
	if got.ID != "u1" || got.OTCStatus != triage.OTCActive {
		t.Errorf("got %+v", got)
	}

	// Mutating the returned copy must not leak into the store.
	got.AbuseStrikes = 2
	again, _, _ := s.GetUser(ctx, "u1")
	if again.AbuseStrikes != 0 {
		t.Error("store returned a shared pointer, not a copy")
	}
}

func TestActiveSession(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	put := func(id string, started time.Time, status triage.SessionStatus) {
		_ = s.PutSession(ctx, &triage.Session{
			ID: id, UserID: "u1", Status: status,
			StartedAt: started, LastActivityAt: started,
		})
	}

	if _, ok, _ := s.ActiveSession(ctx, "u1"); ok {
		t.Fatal("active session found in empty store")
	}

	put("old", baseTime, triage.SessionActive)
	put("closed", baseTime.Add(time.Hour), triage.SessionClosed)
	put("newest", baseTime.Add(30*time.Minute), triage.SessionActive)

	got, ok, err := s.ActiveSession(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("ActiveSession = ok=%v err=%v", ok, err)
	}
	if got.ID != "newest" {
		t.Errorf("active = %s, want newest", got.ID)
	}
}

func TestCountSessionsSince(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	for i, started := range []time.Time{
		baseTime.Add(-25 * time.Hour),
		baseTime.Add(-23 * time.Hour),
		baseTime.Add(-time.Hour),
	} {
		_ = s.PutSession(ctx, &triage.Session{
			ID: string(rune('a' + i)), UserID: "u1",
			Status: triage.SessionClosed, StartedAt: started, LastActivityAt: started,
		})
	}
	// Another user's sessions never count.
	_ = s.PutSession(ctx, &triage.Session{
		ID: "other", UserID: "u2", Status: triage.SessionActive,
		StartedAt: baseTime, LastActivityAt: baseTime,
	})

	n, err := s.CountSessionsSince(ctx, "u1", baseTime.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("CountSessionsSince: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestAssessmentQueries(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	mk := func(id, sessID string, ts time.Time) *triage.Assessment {
		return &triage.Assessment{
			ID: id, SessionID: sessID, UserID: "u1",
			Fingerprint: "fever", Decision: triage.DecisionOTCGuidance, Timestamp: ts,
		}
	}

	_ = s.AppendAssessment(ctx, mk("a1", "s1", baseTime))
	_ = s.AppendAssessment(ctx, mk("a2", "s1", baseTime.Add(time.Hour)))
	_ = s.AppendAssessment(ctx, mk("a3", "s2", baseTime.Add(2*time.Hour)))

	recent, err := s.RecentAssessments(ctx, "u1", baseTime.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("RecentAssessments: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("recent = %d entries, want 2", len(recent))
	}
	if recent[0].ID != "a3" || recent[1].ID != "a2" {
		t.Errorf("order = [%s, %s], want most recent first", recent[0].ID, recent[1].ID)
	}

	timeline, err := s.SessionAssessments(ctx, "s1")
	if err != nil {
		t.Fatalf("SessionAssessments: %v", err)
	}
	if len(timeline) != 2 || timeline[0].ID != "a1" || timeline[1].ID != "a2" {
		t.Errorf("timeline = %+v, want [a1, a2]", timeline)
	}
}

func TestCommitDecision(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	u := triage.NewUser("u1", baseTime)
	u.OTCAttemptsUsed = 1
	sess := &triage.Session{
		ID: "s1", UserID: "u1", Status: triage.SessionActive,
		MessageCount: 1, StartedAt: baseTime, LastActivityAt: baseTime,
	}
	a := &triage.Assessment{
		ID: "a1", SessionID: "s1", UserID: "u1",
		Fingerprint: "fever", Decision: triage.DecisionOTCGuidance, Timestamp: baseTime,
	}

	if err := s.CommitDecision(ctx, u, sess, a); err != nil {
		t.Fatalf("CommitDecision: %v", err)
	}

	gotU, _, _ := s.GetUser(ctx, "u1")
	if gotU == nil || gotU.OTCAttemptsUsed != 1 {
		t.Errorf("user not committed: %+v", gotU)
	}
	gotS, _, _ := s.GetSession(ctx, "s1")
	if gotS == nil || gotS.MessageCount != 1 {
		t.Errorf("session not committed: %+v", gotS)
	}
	events, _ := s.SessionAssessments(ctx, "s1")
	if len(events) != 1 {
		t.Errorf("assessment not committed: %+v", events)
	}
}
