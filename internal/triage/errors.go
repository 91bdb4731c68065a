package triage

import (
	"fmt"

	"github.com/linnemanlabs/go-core/xerrors"
)

// Sentinel errors returned to callers. Nothing is retried inside the engine;
// retries are the transport layer's responsibility and must use a fresh
// request.
var (
	// ErrInvalidInput means the classification result was malformed or out
	// of range. No state is mutated.
	ErrInvalidInput = xerrors.New("invalid classification input")

	// ErrRateLimited means a session, message, or daily quota was exceeded.
	ErrRateLimited = xerrors.New("rate limited")

	// ErrSessionClosed means the caller addressed a closed session and must
	// start a new one.
	ErrSessionClosed = xerrors.New("session closed")

	// ErrSuspended means the account is suspended; all triage is rejected
	// until a manual unsuspension.
	ErrSuspended = xerrors.New("account suspended")

	// ErrNotFound means the requested user or session does not exist.
	ErrNotFound = xerrors.New("not found")
)

// invariant panics when a programming-level contract is breached, e.g. the
// OTC attempt counter leaving 0..3. Never user-facing; it indicates a bug
// upstream and halts processing for that request.
func invariant(cond bool, format string, args ...any) {
	if !cond {
		panic(xerrors.New("invariant violation: " + fmt.Sprintf(format, args...)))
	}
}
