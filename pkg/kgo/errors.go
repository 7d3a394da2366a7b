package kgo

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the send path and the connect/SASL machinery.
// Grounded on the teacher's own small set of unexported sentinels
// (ErrConnDead, ErrCorrelationIDMismatch, ErrCxnDead, ...) declared
// alongside broker.go and referenced with errors.Is/errors.As throughout.
var (
	// errConnDead means the underlying transport reported the connection
	// closed; the broker treats this as CONNECTION_CLOSED (§4.6, §7).
	errConnDead = errors.New("kgo: connection is dead")

	// errCorrelationIDMismatch means a response's correlation id did not
	// match the outstanding request it was read for.
	errCorrelationIDMismatch = errors.New("kgo: correlation ID mismatch")

	// errBrokerNotConnected is the error returned by notConnectedLookup,
	// the sentinel lookupRequest is set to before the first successful
	// connect (§4.3).
	errBrokerNotConnected = errors.New("kgo: broker not connected")

	// errLockTimeout is returned when the connect lock could not be
	// acquired within its timeout (§4.6).
	errLockTimeout = errors.New("kgo: timed out acquiring broker connect lock")

	// errAPIVersionsExhausted is returned when every ApiVersions
	// candidate version was rejected as unsupported (§4.2, §7).
	errAPIVersionsExhausted = errors.New("kgo: API Versions not supported")

	// errUnsupportedVersion is returned by a caller RPC when the
	// negotiated version table has no usable version for that API
	// (§4.1, §7). An UNSUPPORTED_VERSION code the broker puts in a
	// response is left in that response's ErrorCode field.
	errUnsupportedVersion = errors.New("kgo: unsupported version")

	// errSASLUnexpectedServerFirst is returned if a mechanism's first
	// client message is empty; every mechanism this client drives speaks
	// first.
	errSASLUnexpectedServerFirst = errors.New("kgo: unexpected server-speaks-first SASL mechanism")
)

// MemberIDRequiredError is the typed error returned by JoinGroup when the
// broker demands the request be retried with a generated member id
// (§4.1, §7).
type MemberIDRequiredError struct {
	MemberID string
}

func (e *MemberIDRequiredError) Error() string {
	return fmt.Sprintf("kgo: member id required, retry with member id %q", e.MemberID)
}

// LockTimeoutError reports which broker's connect lock timed out (§4.6).
type LockTimeoutError struct {
	Addr string
}

func (e *LockTimeoutError) Error() string {
	return fmt.Sprintf("kgo: timed out acquiring connect lock for broker %s", e.Addr)
}

func (e *LockTimeoutError) Unwrap() error { return errLockTimeout }
