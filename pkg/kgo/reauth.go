package kgo

import "time"

// shouldReauthenticate implements §4.5's predicate: true iff a fresh SASL
// exchange must run before the next request.
//
//   - sessionLifetimeMillis == 0 means the server does not expire sessions:
//     always false.
//   - authenticatedAt.IsZero() means never authenticated: always true.
//   - otherwise, true once elapsed time plus the reauthentication threshold
//     reaches or passes the session lifetime.
//
// Pure and idempotent, per §4.5 and the open question in §9: the boundary
// is "≥", i.e. reauth fires at the instant it's due, not only strictly
// after.
func shouldReauthenticate(authenticatedAt time.Time, now time.Time, sessionLifetimeMillis int64, reauthenticationThresholdMillis int64) bool {
	if sessionLifetimeMillis == 0 {
		return false
	}
	if authenticatedAt.IsZero() {
		return true
	}
	elapsedMillis := now.Sub(authenticatedAt).Milliseconds()
	return elapsedMillis+reauthenticationThresholdMillis >= sessionLifetimeMillis
}
