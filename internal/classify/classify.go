// Package classify turns free-text symptom descriptions into severity levels
// and a medical-scope verdict for the triage engine.
package classify

import (
	"context"

	"github.com/linnemanlabs/careflow/internal/triage"
)

// Result is the output of a classification pass over one symptom message.
type Result struct {
	MedicalLevel triage.MedicalLevel
	PsychLevel   triage.PsychLevel
	MedicalScope bool
	// ScopeTopic names the off-topic subject when MedicalScope is false.
	ScopeTopic string
}

// Classifier scores a symptom message. Implementations must be safe for
// concurrent use.
type Classifier interface {
	Classify(ctx context.Context, symptoms []string) (*Result, error)
}
