package classify

import (
	"context"
	"strings"

	"github.com/linnemanlabs/careflow/internal/triage"
)

// Keyword tables for the rule-based classifier. Matching is substring-based
// on the lowercased joined message, checked in priority order.
var (
	offTopicPatterns = []string{
		"weather", "sports", "politics", "recipe", "movie",
		"game", "joke", "story", "homework",
	}

	crisisPsychKeywords = []string{
		"suicidal", "suicide", "self-harm", "end my life", "want to die",
	}
	moderatePsychKeywords = []string{
		"anxiety", "panic", "depressed", "insomnia", "overwhelmed",
	}
	lowPsychKeywords = []string{
		"stress", "tired", "sleep", "worried", "mood",
	}

	emergencyKeywords = []string{
		"stroke", "chest pain", "heart attack", "severe bleeding",
		"unconscious", "not breathing", "seizure", "overdose",
		"can't breathe", "suicidal", "suicide", "severe pain",
	}
	highMedicalKeywords = []string{
		"severe", "critical", "intense pain", "high fever", "vomiting blood",
		"allergic reaction", "broken bone", "deep cut", "burn",
	}
	moderateMedicalKeywords = []string{
		"fever", "cough", "headache", "stomach", "rash", "infection",
		"pain", "dizzy", "nausea", "cold", "flu",
	}
)

// Rules is a keyword-driven Classifier that needs no external service. It is
// the fallback when no model-backed classifier is configured.
type Rules struct{}

// NewRules returns the rule-based classifier.
func NewRules() *Rules { return &Rules{} }

// Classify scores symptoms against the keyword tables. Psychological crisis
// terms take priority, then emergencies, then descending medical severity.
func (r *Rules) Classify(_ context.Context, symptoms []string) (*Result, error) {
	msg := strings.ToLower(strings.TrimSpace(strings.Join(symptoms, " ")))
	if msg == "" {
		return &Result{
			MedicalLevel: triage.M0,
			PsychLevel:   triage.P0,
			MedicalScope: true,
		}, nil
	}

	if topic := matchAny(msg, offTopicPatterns); topic != "" {
		return &Result{
			MedicalLevel: triage.M0,
			PsychLevel:   triage.P0,
			MedicalScope: false,
			ScopeTopic:   topic,
		}, nil
	}

	res := &Result{MedicalScope: true}
	switch {
	case matchAny(msg, crisisPsychKeywords) != "":
		res.MedicalLevel = triage.M1
		res.PsychLevel = triage.P3
	case matchAny(msg, moderatePsychKeywords) != "":
		res.MedicalLevel = triage.M1
		res.PsychLevel = triage.P2
	case matchAny(msg, lowPsychKeywords) != "":
		res.MedicalLevel = triage.M0
		res.PsychLevel = triage.P1
	case matchAny(msg, emergencyKeywords) != "":
		res.MedicalLevel = triage.M3
		res.PsychLevel = triage.P0
	case matchAny(msg, highMedicalKeywords) != "":
		res.MedicalLevel = triage.M2
		res.PsychLevel = triage.P0
	case matchAny(msg, moderateMedicalKeywords) != "":
		res.MedicalLevel = triage.M1
		res.PsychLevel = triage.P0
	default:
		res.MedicalLevel = triage.M1
		res.PsychLevel = triage.P0
	}
	return res, nil
}

// CheckScope reports whether the message stays on medical topics. The topic
// of the first off-scope match is returned for the warning text.
func CheckScope(symptoms []string) (bool, string) {
	msg := strings.ToLower(strings.Join(symptoms, " "))
	if topic := matchAny(msg, offTopicPatterns); topic != "" {
		return false, topic
	}
	return true, ""
}

func matchAny(msg string, keywords []string) string {
	for _, kw := range keywords {
		if strings.Contains(msg, kw) {
			return kw
		}
	}
	return ""
}
