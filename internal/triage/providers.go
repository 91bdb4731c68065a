package triage

import "time"

const (
	nightStartHour = 22
	nightEndHour   = 7
)

// SpecialtyNeed hints which kind of provider the decision should surface.
type SpecialtyNeed string

const (
	NeedGeneral    SpecialtyNeed = "general"
	NeedSpecialist SpecialtyNeed = "specialist"
	NeedDiagnostic SpecialtyNeed = "diagnostic"
)

// isNight reports whether local time is within [22:00, 07:00).
func isNight(local time.Time) bool {
	h := local.Hour()
	return h >= nightStartHour || h < nightEndHour
}

// FilterProviders computes the allowed capability-tag set for a decision that
// implies listing providers. Pure; no persisted state. An EMERGENCY decision
// forces {EMERGENCY} regardless of time. At night clinics are excluded, and
// diagnostic centers are only eligible if the caller's directory collaborator
// confirms they are open now (the filter states the requirement; it does not
// query availability). Returns nil for decisions that show no providers.
func FilterProviders(decision Decision, local time.Time, need SpecialtyNeed) *ProviderFilter {
	switch decision {
	case DecisionEmergency:
		return &ProviderFilter{Tags: []CapabilityTag{TagEmergency}}
	case DecisionDoctorHandoff:
		// fall through to the tag build below
	default:
		return nil
	}

	night := isNight(local)

	tags := []CapabilityTag{TagMultiSpecialty}
	if !night {
		tags = append(tags, TagClinic)
	}
	switch need {
	case NeedSpecialist:
		tags = append(tags, TagSpecialtyCenter)
	case NeedDiagnostic:
		tags = append(tags, TagDiagnosticCenter)
	default:
		tags = append(tags, TagSpecialtyCenter, TagDiagnosticCenter)
	}

	f := &ProviderFilter{Tags: tags}
	if night && f.Has(TagDiagnosticCenter) {
		f.RequireOpenNow = true
	}
	return f
}
