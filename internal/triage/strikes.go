package triage

// recordScopeStrike advances the user's off-scope ladder by one and returns
// the resulting decision: a gentle warning, a final warning, or suspension.
// The third strike suspends the account; only Unsuspend (the administrative
// path) reverses it.
func recordScopeStrike(u *User) (Decision, HandoffReason) {
	invariant(u.AbuseStrikes >= 0 && u.AbuseStrikes < MaxAbuseStrikes,
		"abuse strikes out of range: user=%s strikes=%d", u.ID, u.AbuseStrikes)

	u.AbuseStrikes++
	switch u.AbuseStrikes {
	case 1:
		return DecisionScopeWarning, ReasonWarnGentle
	case 2:
		return DecisionScopeWarning, ReasonWarnFinal
	default:
		u.Suspended = true
		return DecisionAccountSuspended, ""
	}
}

// resetStrikes clears the ladder. Called on every medical-scope input:
// strikes do not persist across a successful medical interaction.
func resetStrikes(u *User) {
	u.AbuseStrikes = 0
}
