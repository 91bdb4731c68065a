package triage

import "time"

// expired reports whether the session has been inactive longer than
// SessionTimeout. Timeouts are evaluated lazily at the next access; there is
// no background sweep, since correctness only requires the check to hold at
// read time.
func (s *Session) expired(now time.Time) bool {
	return now.Sub(s.LastActivityAt) > SessionTimeout
}

// touch records activity and bumps the message counter.
func (s *Session) touch(now time.Time) {
	invariant(s.MessageCount < MaxMessagesPerSession,
		"message count over quota: session=%s count=%d", s.ID, s.MessageCount)
	s.MessageCount++
	s.LastActivityAt = now
}

// close transitions the session to CLOSED. Idempotent.
func (s *Session) close() {
	s.Status = SessionClosed
}
