package triage

import "time"

// findDuplicate returns the most recent prior assessment with an equal
// fingerprint whose timestamp falls within DuplicateWindow of now, if any.
// History is read-only here; the caller still records the new assessment for
// the audit timeline, marked duplicate-suppressed. Assessments that were
// themselves suppressed don't count: only a decision that actually ran the
// matrix (or short-circuited on scope) can anchor a reminder.
func findDuplicate(history []Assessment, fingerprint string, now time.Time) *Assessment {
	if fingerprint == "" {
		return nil
	}
	cutoff := now.Add(-DuplicateWindow)

	var best *Assessment
	for i := range history {
		a := &history[i]
		if a.Fingerprint != fingerprint || a.DuplicateSuppressed {
			continue
		}
		if a.Timestamp.Before(cutoff) || a.Timestamp.After(now) {
			continue
		}
		if best == nil || a.Timestamp.After(best.Timestamp) {
			best = a
		}
	}
	return best
}
