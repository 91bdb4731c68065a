package triage

import "fmt"

// SeverityInput is the untrusted classification result supplied per request
// by the external classifier collaborator. The engine validates ranges before
// any state is touched.
type SeverityInput struct {
	MedicalLevel MedicalLevel `json:"medical_level"`
	PsychLevel   PsychLevel   `json:"psych_level"`
	SymptomTerms []string     `json:"symptom_terms"`
	MedicalScope bool         `json:"medical_scope"`
}

// Validate rejects levels outside M0..M3 / P0..P3 with ErrInvalidInput.
func (in *SeverityInput) Validate() error {
	if !ValidMedicalLevel(in.MedicalLevel) {
		return fmt.Errorf("%w: medical level %q", ErrInvalidInput, in.MedicalLevel)
	}
	if !ValidPsychLevel(in.PsychLevel) {
		return fmt.Errorf("%w: psych level %q", ErrInvalidInput, in.PsychLevel)
	}
	return nil
}

// fingerprint returns the canonical signature of the reported symptom set.
func (in *SeverityInput) fingerprint() string {
	return Fingerprint(in.SymptomTerms)
}
