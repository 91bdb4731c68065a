package slack

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/careflow/internal/triage"
)

func testEvent(decision triage.Decision) *triage.NotifyEvent {
	return &triage.NotifyEvent{
		UserID:    "u1",
		SessionID: "s1",
		Decision:  decision,
		At:        time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestSend_PostsBlocks(t *testing.T) {
	t.Parallel()

	var got []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		got, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(srv.URL, log.Nop())
	if err := n.Send(context.Background(), testEvent(triage.DecisionEmergency)); err != nil {
		t.Fatalf("Send: %v", err)
	}

	var msg struct {
		Blocks []map[string]any `json:"blocks"`
	}
	if err := json.Unmarshal(got, &msg); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if len(msg.Blocks) == 0 {
		t.Fatal("no blocks in payload")
	}
	if !strings.Contains(string(got), "Emergency Escalation") {
		t.Error("payload missing emergency title")
	}
	if !strings.Contains(string(got), "u1") {
		t.Error("payload missing user id")
	}
}

func TestSend_NoWebhookIsNoop(t *testing.T) {
	t.Parallel()

	n := New("", log.Nop())
	if err := n.Send(context.Background(), testEvent(triage.DecisionAccountSuspended)); err != nil {
		t.Fatalf("Send with empty webhook: %v", err)
	}
}

func TestSend_Non2xxIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "channel_not_found", http.StatusNotFound)
	}))
	defer srv.Close()

	n := New(srv.URL, log.Nop())
	err := n.Send(context.Background(), testEvent(triage.DecisionAccountSuspended))
	if err == nil {
		t.Fatal("expected error on 404 response")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error = %v, want status code included", err)
	}
}

func TestDecisionTitles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		decision triage.Decision
		want     string
	}{
		{triage.DecisionEmergency, "Emergency Escalation"},
		{triage.DecisionCrisisHelpline, "Crisis Helpline Referral"},
		{triage.DecisionAccountSuspended, "Account Suspended"},
		{triage.DecisionOTCGuidance, "Triage Decision"},
	}
	for _, tt := range tests {
		if got := decisionTitle(tt.decision); got != tt.want {
			t.Errorf("decisionTitle(%s) = %q, want %q", tt.decision, got, tt.want)
		}
	}
}
