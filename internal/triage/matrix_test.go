package triage

import "testing"

func TestDecide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		m          MedicalLevel
		p          PsychLevel
		otc        bool
		want       Decision
		wantReason HandoffReason
	}{
		{"medical emergency", M3, P0, false, DecisionEmergency, ""},
		{"emergency outranks crisis", M3, P3, true, DecisionEmergency, ""},
		{"emergency outranks moderate psych", M3, P2, false, DecisionEmergency, ""},
		{"psych crisis", M0, P3, false, DecisionCrisisHelpline, ""},
		{"crisis outranks moderate medical", M2, P3, true, DecisionCrisisHelpline, ""},
		{"crisis outranks low medical", M1, P3, false, DecisionCrisisHelpline, ""},
		{"low medical", M1, P0, false, DecisionDoctorHandoff, ReasonMedical},
		{"moderate medical", M2, P0, true, DecisionDoctorHandoff, ReasonMedical},
		{"medical outranks low psych", M1, P1, false, DecisionDoctorHandoff, ReasonMedical},
		{"medical outranks moderate psych", M2, P2, true, DecisionDoctorHandoff, ReasonMedical},
		{"low psych only", M0, P1, false, DecisionDoctorHandoff, ReasonTherapist},
		{"moderate psych only", M0, P2, true, DecisionDoctorHandoff, ReasonTherapist},
		{"benign with otc", M0, P0, true, DecisionOTCGuidance, ""},
		{"benign without otc", M0, P0, false, DecisionDoctorHandoff, ReasonConservative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d, reason := Decide(tt.m, tt.p, tt.otc)
			if d != tt.want || reason != tt.wantReason {
				t.Errorf("Decide(%s, %s, %v) = (%s, %s), want (%s, %s)",
					tt.m, tt.p, tt.otc, d, reason, tt.want, tt.wantReason)
			}
		})
	}
}

// Every valid combination must map to exactly one decision; the matrix can
// never fall through.
func TestDecide_Total(t *testing.T) {
	t.Parallel()

	for _, m := range []MedicalLevel{M0, M1, M2, M3} {
		for _, p := range []PsychLevel{P0, P1, P2, P3} {
			for _, otc := range []bool{false, true} {
				d, _ := Decide(m, p, otc)
				if d == "" {
					t.Errorf("Decide(%s, %s, %v) returned empty decision", m, p, otc)
				}
			}
		}
	}
}

func TestDecide_PanicsOnInvalidLevel(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected panic on out-of-range level")
		}
	}()
	Decide(MedicalLevel("M9"), P0, false)
}
