package triage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"
)

// Notifier receives decision events worth telling an operator about
// (suspensions, emergency escalations). May be nil.
type Notifier interface {
	Send(ctx context.Context, ev *NotifyEvent) error
}

// NotifyEvent describes one notable decision.
type NotifyEvent struct {
	UserID    string
	SessionID string
	Decision  Decision
	At        time.Time
}

// Request is one triage call into the engine. Severity comes from the
// external classifier; Now and LocalTime are explicit so the core stays
// deterministic (nothing in this package reads the ambient clock).
type Request struct {
	UserID      string
	SessionID   string
	Severity    SeverityInput
	OTCEligible bool
	Need        SpecialtyNeed

	// Now is the instant the request is processed, used for quotas,
	// timeouts, and duplicate windows.
	Now time.Time

	// LocalTime is the caller's local time context, used only by provider
	// filtering. Zero means Now.
	LocalTime time.Time
}

// Service is the triage orchestrator: the only entry point that mutates user
// or session state. Each call is one decision transaction serialized per
// user.
type Service struct {
	store    Store
	locks    *userLocks
	logger   log.Logger
	metrics  *Metrics
	notifier Notifier
}

// NewService creates a new triage service. metrics and notifier may be nil.
func NewService(store Store, logger log.Logger, metrics *Metrics, notifier Notifier) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		store:    store,
		locks:    newUserLocks(),
		logger:   logger,
		metrics:  metrics,
		notifier: notifier,
	}
}

// StartSession returns the user's active session, creating one if needed.
// An expired active session is lazily closed and replaced. The 11th creation
// within a rolling 24h window yields ErrRateLimited.
func (s *Service) StartSession(ctx context.Context, userID string, now time.Time) (*Session, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", ErrInvalidInput)
	}

	mu := s.locks.get(userID)
	mu.Lock()
	defer mu.Unlock()

	user, err := s.loadOrCreateUser(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if user.Suspended {
		return nil, ErrSuspended
	}

	if active, ok, err := s.store.ActiveSession(ctx, userID); err != nil {
		return nil, fmt.Errorf("load active session: %w", err)
	} else if ok {
		if !active.expired(now) {
			return active, nil
		}
		active.close()
		if err := s.store.PutSession(ctx, active); err != nil {
			return nil, fmt.Errorf("close expired session: %w", err)
		}
		s.metrics.incSessionExpired()
	}

	count, err := s.store.CountSessionsSince(ctx, userID, now.Add(-24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}
	if count >= MaxSessionsPerDay {
		s.metrics.incRateLimited("daily_sessions")
		return nil, fmt.Errorf("%w: %d sessions in the last 24h", ErrRateLimited, count)
	}

	sess := &Session{
		ID:             ulid.Make().String(),
		UserID:         userID,
		Status:         SessionActive,
		StartedAt:      now,
		LastActivityAt: now,
	}
	if err := s.store.PutSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s.metrics.incSessionCreated()

	s.logger.Info(ctx, "session created", "user_id", userID, "session_id", sess.ID)
	return sess, nil
}

// Triage runs one decision transaction: suspended gate, session and quota
// checks, assessment recording, duplicate short-circuit, scope ladder,
// decision matrix, OTC gating, provider filtering, and state commit. Atomic
// with respect to concurrent requests for the same user.
func (s *Service) Triage(ctx context.Context, req *Request) (*Outcome, error) {
	if err := req.Severity.Validate(); err != nil {
		return nil, err
	}
	if req.UserID == "" || req.SessionID == "" {
		return nil, fmt.Errorf("%w: user and session ids are required", ErrInvalidInput)
	}

	start := time.Now()
	mu := s.locks.get(req.UserID)
	mu.Lock()
	defer mu.Unlock()

	out, err := s.decide(ctx, req)
	if err != nil {
		return nil, err
	}

	s.metrics.observeDecision(out.Decision, time.Since(start).Seconds())
	s.logger.Info(ctx, "triage decision",
		"user_id", req.UserID,
		"session_id", req.SessionID,
		"decision", out.Decision,
		"reason", out.Reason,
		"session_closed", out.SessionClosed,
	)

	switch out.Decision {
	case DecisionAccountSuspended, DecisionEmergency:
		s.notify(ctx, &NotifyEvent{
			UserID:    req.UserID,
			SessionID: req.SessionID,
			Decision:  out.Decision,
			At:        req.Now,
		})
	}

	return out, nil
}

// decide holds the transaction body; the caller owns the user lock.
func (s *Service) decide(ctx context.Context, req *Request) (*Outcome, error) {
	user, ok, err := s.store.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, req.UserID)
	}

	// Entry gate: suspended users are rejected before anything else runs.
	if user.Suspended {
		return &Outcome{SessionID: req.SessionID, Decision: DecisionAccountSuspended, SessionClosed: true}, nil
	}

	sess, ok, err := s.store.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !ok || sess.UserID != req.UserID {
		return nil, fmt.Errorf("%w: session %s", ErrNotFound, req.SessionID)
	}
	if sess.Status == SessionClosed {
		return nil, ErrSessionClosed
	}
	if sess.expired(req.Now) {
		sess.close()
		if err := s.store.PutSession(ctx, sess); err != nil {
			return nil, fmt.Errorf("close expired session: %w", err)
		}
		s.metrics.incSessionExpired()
		return nil, ErrSessionClosed
	}

	if sess.MessageCount >= MaxMessagesPerSession {
		s.metrics.incRateLimited("session_messages")
		return &Outcome{SessionID: sess.ID, Decision: DecisionRateLimited}, nil
	}
	sess.touch(req.Now)

	a := &Assessment{
		ID:           ulid.Make().String(),
		SessionID:    sess.ID,
		UserID:       user.ID,
		Fingerprint:  req.Severity.fingerprint(),
		MedicalLevel: req.Severity.MedicalLevel,
		PsychLevel:   req.Severity.PsychLevel,
		MedicalScope: req.Severity.MedicalScope,
		Timestamp:    req.Now,
	}

	history, err := s.store.RecentAssessments(ctx, user.ID, req.Now.Add(-DuplicateWindow))
	if err != nil {
		return nil, fmt.Errorf("load assessment history: %w", err)
	}

	// Duplicate short-circuit: an identical symptom set within the window
	// gets a reminder carrying the prior guidance; the matrix does not run
	// again. The event is still recorded for the audit timeline.
	if prior := findDuplicate(history, a.Fingerprint, req.Now); prior != nil {
		a.Decision = DecisionDuplicate
		a.Reason = prior.Reason
		a.DuplicateSuppressed = true
		if err := s.store.CommitDecision(ctx, user, sess, a); err != nil {
			return nil, fmt.Errorf("commit decision: %w", err)
		}
		s.metrics.incDuplicate()
		return &Outcome{
			SessionID:     sess.ID,
			Decision:      DecisionDuplicate,
			Reason:        prior.Reason,
			PriorDecision: prior.Decision,
		}, nil
	}

	var (
		decision Decision
		reason   HandoffReason
	)

	if !req.Severity.MedicalScope {
		decision, reason = recordScopeStrike(user)
		if decision == DecisionAccountSuspended {
			s.metrics.incSuspension()
		} else {
			s.metrics.incStrike(reason)
		}
	} else {
		// Strikes do not persist across a successful medical interaction.
		resetStrikes(user)

		decision, reason = Decide(req.Severity.MedicalLevel, req.Severity.PsychLevel, req.OTCEligible)

		if decision == DecisionOTCGuidance {
			if consumeOTCAttempt(user) {
				s.metrics.incOTCAttempt(user.OTCStatus == OTCLocked)
			} else {
				decision = DecisionDoctorHandoff
				reason = ReasonOTCLocked
				s.metrics.incOTCDowngrade()
			}
		}
	}

	out := &Outcome{SessionID: sess.ID, Decision: decision, Reason: reason}

	local := req.LocalTime
	if local.IsZero() {
		local = req.Now
	}
	out.Providers = FilterProviders(decision, local, req.Need)

	if decision.Terminal() {
		sess.close()
		out.SessionClosed = true
		s.metrics.incSessionClosed(decision)
	}

	a.Decision = decision
	a.Reason = reason
	if err := s.store.CommitDecision(ctx, user, sess, a); err != nil {
		return nil, fmt.Errorf("commit decision: %w", err)
	}

	return out, nil
}

// ResetOTC is the administrative manual reset: unlocks the user's OTC
// privilege and restores the full budget. Not reachable from the triage path.
func (s *Service) ResetOTC(ctx context.Context, userID string) error {
	mu := s.locks.get(userID)
	mu.Lock()
	defer mu.Unlock()

	user, ok, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}

	resetOTC(user)
	if err := s.store.PutUser(ctx, user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	s.logger.Info(ctx, "otc privilege reset", "user_id", userID)
	return nil
}

// Unsuspend lifts an account suspension and clears the strike ladder. Like
// ResetOTC, this is the only legitimate path out of the terminal state.
func (s *Service) Unsuspend(ctx context.Context, userID string) error {
	mu := s.locks.get(userID)
	mu.Lock()
	defer mu.Unlock()

	user, ok, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}

	user.Suspended = false
	resetStrikes(user)
	if err := s.store.PutUser(ctx, user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	s.logger.Info(ctx, "account unsuspended", "user_id", userID)
	return nil
}

// GetSession returns a session and its assessment timeline.
func (s *Service) GetSession(ctx context.Context, id string) (*Session, []Assessment, error) {
	sess, ok, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return nil, nil, fmt.Errorf("%w: session %s", ErrNotFound, id)
	}
	history, err := s.store.SessionAssessments(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("load assessments: %w", err)
	}
	return sess, history, nil
}

// GetUser returns a user's policy state.
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	user, ok, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	return user, nil
}

func (s *Service) loadOrCreateUser(ctx context.Context, userID string, now time.Time) (*User, error) {
	user, ok, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if ok {
		return user, nil
	}
	user = NewUser(userID, now)
	if err := s.store.PutUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// notify delivers an operator notification off the request path.
func (s *Service) notify(ctx context.Context, ev *NotifyEvent) {
	if s.notifier == nil {
		return
	}
	go func(ctx context.Context) {
		if err := s.notifier.Send(ctx, ev); err != nil {
			s.logger.Error(ctx, err, "notification failed",
				"user_id", ev.UserID, "decision", ev.Decision)
		}
	}(context.WithoutCancel(ctx))
}

// IsNotFound reports whether err is the engine's not-found condition.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
