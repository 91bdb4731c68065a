package triage

import "testing"

func TestFingerprint_SetSemantics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b []string
		same bool
	}{
		{"order irrelevant", []string{"fever", "cough"}, []string{"cough", "fever"}, true},
		{"case irrelevant", []string{"Fever", "COUGH"}, []string{"fever", "cough"}, true},
		{"whitespace trimmed", []string{" fever ", "cough"}, []string{"fever", "cough"}, true},
		{"duplicates collapse", []string{"fever", "fever", "cough"}, []string{"cough", "fever"}, true},
		{"subset differs", []string{"fever", "cough"}, []string{"fever"}, false},
		{"superset differs", []string{"fever"}, []string{"fever", "chills"}, false},
		{"disjoint differs", []string{"fever"}, []string{"rash"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fa, fb := Fingerprint(tt.a), Fingerprint(tt.b)
			if (fa == fb) != tt.same {
				t.Errorf("Fingerprint(%v)=%q vs Fingerprint(%v)=%q, want same=%v",
					tt.a, fa, tt.b, fb, tt.same)
			}
		})
	}
}

func TestFingerprint_EmptyAndBlank(t *testing.T) {
	t.Parallel()

	if got := Fingerprint(nil); got != "" {
		t.Errorf("Fingerprint(nil) = %q, want empty", got)
	}
	if got := Fingerprint([]string{"  ", ""}); got != "" {
		t.Errorf("Fingerprint(blank terms) = %q, want empty", got)
	}
}
