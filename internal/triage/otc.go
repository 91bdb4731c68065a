package triage

// consumeOTCAttempt spends one unit of the user's OTC guidance budget.
// Returns true if the attempt was granted. When the user is LOCKED the
// attempt is denied and the unlock-request flag is set instead; setting it
// again while already set is a no-op, so repeated requests are idempotent.
// The caller downgrades a denied OTC decision to DOCTOR_HANDOFF.
//
// LOCKED is terminal from the engine's perspective: only ResetOTC (the
// administrative path) transitions a user back to ACTIVE.
func consumeOTCAttempt(u *User) bool {
	invariant(u.OTCAttemptsUsed >= 0 && u.OTCAttemptsUsed <= MaxOTCAttempts,
		"otc attempts out of range: user=%s attempts=%d", u.ID, u.OTCAttemptsUsed)
	invariant((u.OTCStatus == OTCLocked) == (u.OTCAttemptsUsed == MaxOTCAttempts),
		"otc status desynced: user=%s status=%s attempts=%d", u.ID, u.OTCStatus, u.OTCAttemptsUsed)

	if u.OTCStatus == OTCLocked {
		u.OTCUnlockRequested = true
		return false
	}

	u.OTCAttemptsUsed++
	if u.OTCAttemptsUsed == MaxOTCAttempts {
		u.OTCStatus = OTCLocked
	}
	return true
}

// resetOTC is the manual-reset transition: attempts back to zero, status
// ACTIVE, pending unlock request cleared. Not reachable from the normal
// triage path.
func resetOTC(u *User) {
	u.OTCAttemptsUsed = 0
	u.OTCStatus = OTCActive
	u.OTCUnlockRequested = false
}
