package kgo

import (
	"context"
	"fmt"
	"time"

	"github.com/kafkasaur/kgo/pkg/kerr"
	"github.com/kafkasaur/kgo/pkg/kmsg"
	"github.com/kafkasaur/kgo/pkg/sasl"
)

// authenticate runs the SASL authenticator (§4.4): advertise the first
// candidate mechanism via SaslHandshake, falling back through the rest on
// UNSUPPORTED_SASL_MECHANISM (the broker's handshake response lists what it
// does support, same as the teacher's own doSasl fallback loop), then drive
// the chosen mechanism's challenge/response exchange either framed (KIP-152
// SaslAuthenticate) or raw, depending on b.authProtocol. The candidate order
// is cfg.sasls with whichever mechanism last succeeded (b.mechanism) pinned
// first, so a reauth doesn't repeat a fallback search it already resolved.
// It returns the mechanism that succeeded and the session lifetime the
// broker advertised (0 if none).
func (b *Broker) authenticate(ctx context.Context) (sasl.Mechanism, int64, error) {
	remaining := pinMechanism(b.cfg.sasls, b.mechanism)
	retried := false

	for {
		if len(remaining) == 0 {
			return nil, 0, fmt.Errorf("kgo: no SASL mechanism accepted by broker %s", b.conn.Addr())
		}
		mech := remaining[0]

		if err := b.handshake(ctx, mech.Name()); err != nil {
			if supported, ok := err.(*unsupportedMechanismError); ok && !retried {
				retried = true
				remaining = preferSupported(remaining, supported.supported)
				continue
			}
			return nil, 0, err
		}

		lifetime, err := b.doSasl(ctx, mech)
		if err != nil {
			return nil, 0, err
		}
		return mech, lifetime, nil
	}
}

// pinMechanism reorders sasls so prior — the mechanism that last succeeded,
// nil before the first authenticate — is tried first on reauth (§4.6),
// instead of restarting the fallback search from cfg.sasls[0] every time.
// The caller's preference order is otherwise preserved.
func pinMechanism(sasls []sasl.Mechanism, prior sasl.Mechanism) []sasl.Mechanism {
	if prior == nil {
		return sasls
	}
	out := make([]sasl.Mechanism, 0, len(sasls))
	found := false
	for _, m := range sasls {
		if m == prior {
			found = true
		}
	}
	if !found {
		return sasls
	}
	out = append(out, prior)
	for _, m := range sasls {
		if m != prior {
			out = append(out, m)
		}
	}
	return out
}

// unsupportedMechanismError carries the broker's advertised mechanism list
// back to authenticate so it can pick the next candidate.
type unsupportedMechanismError struct {
	requested string
	supported []string
}

func (e *unsupportedMechanismError) Error() string {
	return fmt.Sprintf("kgo: broker does not support SASL mechanism %q (supports %v)", e.requested, e.supported)
}

// preferSupported reorders remaining so any mechanism the broker just
// reported as supported comes first, preserving the caller's original
// preference order otherwise. The failed mechanism is dropped.
func preferSupported(remaining []sasl.Mechanism, supported []string) []sasl.Mechanism {
	supportedSet := make(map[string]bool, len(supported))
	for _, s := range supported {
		supportedSet[s] = true
	}
	var out []sasl.Mechanism
	for _, m := range remaining[1:] {
		if supportedSet[m.Name()] {
			out = append(out, m)
		}
	}
	for _, m := range remaining[1:] {
		if !supportedSet[m.Name()] {
			out = append(out, m)
		}
	}
	return out
}

// dispatch looks up and sends one request for apiKey without going through
// connect(): authenticate() is itself called from inside connect(), so
// routing its requests back through b.call (which calls connect()) would
// deadlock on the already-held connect lock.
func (b *Broker) dispatch(ctx context.Context, apiKey int16, fill func(kmsg.Request)) (kmsg.Response, error) {
	family, _ := kmsg.FamilyByKey(apiKey)
	req, err := b.lookupRequest(apiKey, family)()
	if err != nil {
		return nil, err
	}
	fill(req)
	return b.sendRequest(ctx, req)
}

// handshake sends SaslHandshake advertising name, returning
// unsupportedMechanismError if the broker rejects it.
func (b *Broker) handshake(ctx context.Context, name string) error {
	resp, err := b.dispatch(ctx, saslHandshakeKey, func(r kmsg.Request) {
		r.(*kmsg.SASLHandshakeRequest).Mechanism = name
	})
	if err != nil {
		return err
	}
	hr := resp.(*kmsg.SASLHandshakeResponse)
	if hr.ErrorCode != 0 {
		if kerr.ErrorForCode(hr.ErrorCode) == kerr.UnsupportedSaslMechanism {
			return &unsupportedMechanismError{requested: name, supported: hr.SupportedMechanisms}
		}
		return kerr.ErrorForCode(hr.ErrorCode)
	}
	return nil
}

// doSasl drives mech's challenge/response loop to completion, sending each
// client message either wrapped in a SaslAuthenticate request (framed mode)
// or directly over the raw socket (pre-KIP-152 brokers), and returns the
// session lifetime the broker's final message advertised.
func (b *Broker) doSasl(ctx context.Context, mech sasl.Mechanism) (int64, error) {
	session, toSend, err := mech.Authenticate(ctx, b.conn.Addr())
	if err != nil {
		return 0, err
	}
	if len(toSend) == 0 {
		return 0, fmt.Errorf("%w: %s", errSASLUnexpectedServerFirst, mech.Name())
	}

	var lifetime int64
	for {
		var serverResponse []byte
		if b.authProtocol == authProtocolFramed {
			resp, err := b.dispatch(ctx, saslAuthenticateKey, func(r kmsg.Request) {
				r.(*kmsg.SASLAuthenticateRequest).SASLAuthBytes = toSend
			})
			if err != nil {
				return 0, err
			}
			ar := resp.(*kmsg.SASLAuthenticateResponse)
			if ar.ErrorCode != 0 {
				msg := "unknown error"
				if ar.ErrorMessage != nil {
					msg = *ar.ErrorMessage
				}
				return 0, fmt.Errorf("kgo: SASL authenticate failed: %s (%w)", msg, kerr.ErrorForCode(ar.ErrorCode))
			}
			serverResponse = ar.SASLAuthBytes
			lifetime = ar.SessionLifetimeMillis
		} else {
			timeout := time.Duration(b.cfg.authenticationTimeoutMillis) * time.Millisecond
			raw, err := b.conn.SendRaw(ctx, toSend, timeout)
			if err != nil {
				if isConnDead(err) {
					b.disconnectLocked()
				}
				return 0, err
			}
			serverResponse = raw
		}

		done, next, err := session.Challenge(serverResponse)
		if err != nil {
			return 0, err
		}
		if done {
			return lifetime, nil
		}
		toSend = next
	}
}
