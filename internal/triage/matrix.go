package triage

// decisionRule is one row of the severity decision ladder. Rules are
// evaluated in order and the first match wins, so higher-risk paths dominate
// lower ones by construction.
type decisionRule struct {
	match    func(m MedicalLevel, p PsychLevel, otcEligible bool) bool
	decision Decision
	reason   HandoffReason
}

var decisionRules = []decisionRule{
	{
		// Medical emergency outranks everything, including a simultaneous
		// psychological crisis.
		match:    func(m MedicalLevel, _ PsychLevel, _ bool) bool { return m == M3 },
		decision: DecisionEmergency,
	},
	{
		// Psychological crisis outranks a moderate physical complaint.
		match:    func(_ MedicalLevel, p PsychLevel, _ bool) bool { return p == P3 },
		decision: DecisionCrisisHelpline,
	},
	{
		match:    func(m MedicalLevel, _ PsychLevel, _ bool) bool { return m == M1 || m == M2 },
		decision: DecisionDoctorHandoff,
		reason:   ReasonMedical,
	},
	{
		// Supportive stabilization path: same decision kind as a doctor
		// handoff, annotated for therapist framing.
		match:    func(_ MedicalLevel, p PsychLevel, _ bool) bool { return p == P1 || p == P2 },
		decision: DecisionDoctorHandoff,
		reason:   ReasonTherapist,
	},
	{
		match:    func(m MedicalLevel, p PsychLevel, otc bool) bool { return m == M0 && p == P0 && otc },
		decision: DecisionOTCGuidance,
	},
	{
		// Conservative default: route to a doctor rather than guess.
		match:    func(_ MedicalLevel, _ PsychLevel, _ bool) bool { return true },
		decision: DecisionDoctorHandoff,
		reason:   ReasonConservative,
	},
}

// Decide maps a validated (medical, psych, otcEligible) triple to a routing
// decision. Pure; covers every input combination and never fails. Levels
// outside M0..M3/P0..P3 are a caller contract violation, not a routed
// outcome.
func Decide(m MedicalLevel, p PsychLevel, otcEligible bool) (Decision, HandoffReason) {
	invariant(ValidMedicalLevel(m), "medical level out of range: %q", m)
	invariant(ValidPsychLevel(p), "psych level out of range: %q", p)

	for _, r := range decisionRules {
		if r.match(m, p, otcEligible) {
			return r.decision, r.reason
		}
	}
	// Unreachable: the last rule matches everything.
	panic("no decision rule matched")
}
