package triage

import (
	"testing"
	"time"
)

func at(hour int) time.Time {
	return time.Date(2026, 3, 1, hour, 30, 0, 0, time.UTC)
}

func TestFilterProviders_Emergency(t *testing.T) {
	t.Parallel()

	// Emergency forces the EMERGENCY tag at any hour.
	for _, hour := range []int{3, 10, 23} {
		f := FilterProviders(DecisionEmergency, at(hour), NeedGeneral)
		if f == nil {
			t.Fatalf("hour %d: nil filter for emergency", hour)
		}
		if len(f.Tags) != 1 || f.Tags[0] != TagEmergency {
			t.Errorf("hour %d: tags = %v, want [EMERGENCY]", hour, f.Tags)
		}
		if f.RequireOpenNow {
			t.Errorf("hour %d: emergency filter requires open-now", hour)
		}
	}
}

func TestFilterProviders_DoctorHandoff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		hour        int
		need        SpecialtyNeed
		wantClinic  bool
		wantOpenNow bool
		wantTags    []CapabilityTag
	}{
		{
			name:       "daytime general",
			hour:       10,
			need:       NeedGeneral,
			wantClinic: true,
			wantTags:   []CapabilityTag{TagMultiSpecialty, TagClinic, TagSpecialtyCenter, TagDiagnosticCenter},
		},
		{
			name:     "late night excludes clinics",
			hour:     23,
			need:     NeedSpecialist,
			wantTags: []CapabilityTag{TagMultiSpecialty, TagSpecialtyCenter},
		},
		{
			name:        "night diagnostic needs open-now",
			hour:        23,
			need:        NeedDiagnostic,
			wantOpenNow: true,
			wantTags:    []CapabilityTag{TagMultiSpecialty, TagDiagnosticCenter},
		},
		{
			name:       "early morning is still night",
			hour:       6,
			need:       NeedSpecialist,
			wantTags:   []CapabilityTag{TagMultiSpecialty, TagSpecialtyCenter},
		},
		{
			name:       "7am is daytime again",
			hour:       7,
			need:       NeedSpecialist,
			wantClinic: true,
			wantTags:   []CapabilityTag{TagMultiSpecialty, TagClinic, TagSpecialtyCenter},
		},
		{
			name:        "night general includes diagnostic so open-now applies",
			hour:        2,
			need:        NeedGeneral,
			wantOpenNow: true,
			wantTags:    []CapabilityTag{TagMultiSpecialty, TagSpecialtyCenter, TagDiagnosticCenter},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := FilterProviders(DecisionDoctorHandoff, at(tt.hour), tt.need)
			if f == nil {
				t.Fatal("nil filter for doctor handoff")
			}
			if got := f.Has(TagClinic); got != tt.wantClinic {
				t.Errorf("clinic allowed = %v, want %v", got, tt.wantClinic)
			}
			if f.RequireOpenNow != tt.wantOpenNow {
				t.Errorf("RequireOpenNow = %v, want %v", f.RequireOpenNow, tt.wantOpenNow)
			}
			if len(f.Tags) != len(tt.wantTags) {
				t.Fatalf("tags = %v, want %v", f.Tags, tt.wantTags)
			}
			for _, tag := range tt.wantTags {
				if !f.Has(tag) {
					t.Errorf("missing tag %s in %v", tag, f.Tags)
				}
			}
		})
	}
}

func TestFilterProviders_NonRoutingDecisions(t *testing.T) {
	t.Parallel()

	for _, d := range []Decision{
		DecisionCrisisHelpline,
		DecisionOTCGuidance,
		DecisionDuplicate,
		DecisionScopeWarning,
		DecisionAccountSuspended,
		DecisionRateLimited,
	} {
		if f := FilterProviders(d, at(10), NeedGeneral); f != nil {
			t.Errorf("FilterProviders(%s) = %+v, want nil", d, f)
		}
	}
}
