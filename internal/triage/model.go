package triage

import "time"

// MedicalLevel is the physical severity assigned by the external classifier.
type MedicalLevel string

const (
	// M0 means no medical concern
	M0 MedicalLevel = "M0"

	// M1 means low severity, self-care possible
	M1 MedicalLevel = "M1"

	// M2 means moderate severity, doctor recommended
	M2 MedicalLevel = "M2"

	// M3 means high severity, emergency
	M3 MedicalLevel = "M3"
)

// PsychLevel is the psychological severity assigned by the external classifier.
type PsychLevel string

const (
	// P0 means no psychological concern
	P0 PsychLevel = "P0"

	// P1 means low distress
	P1 PsychLevel = "P1"

	// P2 means moderate distress, therapist helpful
	P2 PsychLevel = "P2"

	// P3 means crisis, immediate helpline
	P3 PsychLevel = "P3"
)

// Decision is the routing outcome of one triage request.
type Decision string

const (
	DecisionEmergency        Decision = "EMERGENCY"
	DecisionDoctorHandoff    Decision = "DOCTOR_HANDOFF"
	DecisionCrisisHelpline   Decision = "CRISIS_HELPLINE"
	DecisionOTCGuidance      Decision = "OTC_GUIDANCE"
	DecisionDuplicate        Decision = "DUPLICATE_REMINDER"
	DecisionScopeWarning     Decision = "SCOPE_WARNING"
	DecisionAccountSuspended Decision = "ACCOUNT_SUSPENDED"
	DecisionRateLimited      Decision = "RATE_LIMITED"
)

// HandoffReason annotates a decision with why it was chosen. Downstream
// provider filtering ignores it; only the user-facing framing changes.
type HandoffReason string

const (
	ReasonMedical      HandoffReason = "medical"
	ReasonTherapist    HandoffReason = "therapist"
	ReasonOTCLocked    HandoffReason = "otc_locked"
	ReasonConservative HandoffReason = "conservative_default"

	// Scope warning escalation levels.
	ReasonWarnGentle HandoffReason = "gentle"
	ReasonWarnFinal  HandoffReason = "final"
)

// CapabilityTag classifies a provider for post-decision filtering.
type CapabilityTag string

const (
	TagEmergency        CapabilityTag = "EMERGENCY"
	TagMultiSpecialty   CapabilityTag = "MULTI_SPECIALTY"
	TagClinic           CapabilityTag = "CLINIC"
	TagSpecialtyCenter  CapabilityTag = "SPECIALTY_CENTER"
	TagDiagnosticCenter CapabilityTag = "DIAGNOSTIC_CENTER"
)

// OTCStatus tracks a user's over-the-counter guidance privilege.
type OTCStatus string

const (
	OTCActive OTCStatus = "ACTIVE"
	OTCLocked OTCStatus = "LOCKED"
)

// SessionStatus tracks where a session is in its lifecycle.
type SessionStatus string

const (
	SessionActive SessionStatus = "ACTIVE"
	SessionClosed SessionStatus = "CLOSED"
)

const (
	// MaxOTCAttempts is the lifetime OTC guidance budget between manual resets.
	MaxOTCAttempts = 3

	// MaxAbuseStrikes is the number of off-scope inputs before suspension.
	MaxAbuseStrikes = 3

	// MaxMessagesPerSession caps triage messages per session.
	MaxMessagesPerSession = 8

	// MaxSessionsPerDay caps session creation per rolling 24h window.
	MaxSessionsPerDay = 10

	// SessionTimeout is the inactivity window after which a session is
	// lazily closed on next access.
	SessionTimeout = 10 * time.Minute

	// DuplicateWindow is how far back an identical fingerprint suppresses
	// re-triage.
	DuplicateWindow = 6 * time.Hour
)

// User is the per-user policy state. Mutated only by the Service under the
// per-user lock; never deleted.
type User struct {
	ID                 string    `json:"id"`
	OTCAttemptsUsed    int       `json:"otc_attempts_used"`
	OTCStatus          OTCStatus `json:"otc_status"`
	OTCUnlockRequested bool      `json:"otc_unlock_requested"`
	AbuseStrikes       int       `json:"abuse_strikes"`
	Suspended          bool      `json:"suspended"`
	CreatedAt          time.Time `json:"created_at"`
}

// NewUser returns a fresh user record with full OTC budget and no strikes.
func NewUser(id string, now time.Time) *User {
	return &User{
		ID:        id,
		OTCStatus: OTCActive,
		CreatedAt: now,
	}
}

// Session is one triage conversation owned by a single user.
type Session struct {
	ID             string        `json:"id"`
	UserID         string        `json:"user_id"`
	Status         SessionStatus `json:"status"`
	MessageCount   int           `json:"message_count"`
	StartedAt      time.Time     `json:"started_at"`
	LastActivityAt time.Time     `json:"last_activity_at"`
}

// Assessment is one classified symptom input. Immutable once recorded;
// appended to the session history, never mutated or removed.
type Assessment struct {
	ID                  string        `json:"id"`
	SessionID           string        `json:"session_id"`
	UserID              string        `json:"user_id"`
	Fingerprint         string        `json:"fingerprint"`
	MedicalLevel        MedicalLevel  `json:"medical_level"`
	PsychLevel          PsychLevel    `json:"psych_level"`
	MedicalScope        bool          `json:"medical_scope"`
	Decision            Decision      `json:"decision"`
	Reason              HandoffReason `json:"reason,omitempty"`
	DuplicateSuppressed bool          `json:"duplicate_suppressed,omitempty"`
	Timestamp           time.Time     `json:"timestamp"`
}

// ProviderFilter narrows which provider capability tags may be shown for a
// decision. RequireOpenNow tells the directory collaborator to additionally
// apply its open-now predicate; the engine never queries availability itself.
type ProviderFilter struct {
	Tags           []CapabilityTag `json:"tags"`
	RequireOpenNow bool            `json:"require_open_now"`
}

// Has reports whether the filter allows the given tag.
func (f *ProviderFilter) Has(tag CapabilityTag) bool {
	for _, t := range f.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Outcome is the sole externally visible artifact of one triage call.
type Outcome struct {
	SessionID     string          `json:"session_id"`
	Decision      Decision        `json:"decision"`
	Reason        HandoffReason   `json:"reason,omitempty"`
	Providers     *ProviderFilter `json:"providers,omitempty"`
	PriorDecision Decision        `json:"prior_decision,omitempty"`
	SessionClosed bool            `json:"session_closed"`
}

// Terminal reports whether the decision closes the session.
func (d Decision) Terminal() bool {
	switch d {
	case DecisionEmergency, DecisionDoctorHandoff, DecisionCrisisHelpline, DecisionAccountSuspended:
		return true
	}
	return false
}

// ValidMedicalLevel reports whether l is within M0..M3.
func ValidMedicalLevel(l MedicalLevel) bool {
	switch l {
	case M0, M1, M2, M3:
		return true
	}
	return false
}

// ValidPsychLevel reports whether l is within P0..P3.
func ValidPsychLevel(l PsychLevel) bool {
	switch l {
	case P0, P1, P2, P3:
		return true
	}
	return false
}
