package kgo

import (
	"context"
	"errors"
	"testing"

	"github.com/kafkasaur/kgo/pkg/kbin"
	"github.com/kafkasaur/kgo/pkg/kerr"
	"github.com/kafkasaur/kgo/pkg/sasl"
)

// stubSession drives a fixed scripted exchange: the nth call to Challenge
// sends scripted[n] and reports not done; once scripted is exhausted it
// reports done with no further message.
type stubSession struct {
	scripted [][]byte
	calls    int
	received [][]byte
}

func (s *stubSession) Challenge(serverResponse []byte) (bool, []byte, error) {
	s.received = append(s.received, serverResponse)
	if s.calls < len(s.scripted) {
		msg := s.scripted[s.calls]
		s.calls++
		return false, msg, nil
	}
	return true, nil, nil
}

type stubMechanism struct {
	name     string
	first    []byte
	scripted [][]byte
}

func (m *stubMechanism) Name() string { return m.name }

func (m *stubMechanism) Authenticate(ctx context.Context, host string) (sasl.Session, []byte, error) {
	return &stubSession{scripted: m.scripted}, m.first, nil
}

func versionsFor(keys ...int16) map[int16]versionRange {
	out := make(map[int16]versionRange, len(keys))
	for _, k := range keys {
		out[k] = versionRange{min: 0, max: 1}
	}
	return out
}

func encodeHandshakeResponse(errCode int16, supported ...string) []byte {
	var dst []byte
	dst = kbin.AppendInt16(dst, errCode)
	dst = kbin.AppendArrayLen(dst, len(supported))
	for _, s := range supported {
		dst = kbin.AppendString(dst, s)
	}
	return dst
}

func encodeAuthenticateResponse(errCode int16, authBytes []byte, lifetime int64) []byte {
	var dst []byte
	dst = kbin.AppendInt16(dst, errCode)
	dst = kbin.AppendNullableString(dst, nil)
	dst = kbin.AppendBytes(dst, authBytes)
	dst = kbin.AppendInt64(dst, lifetime)
	return dst
}

func TestAuthenticateFramedHappyPath(t *testing.T) {
	conn := newFakeConn("broker:9092")
	conn.connected = true

	mech := &stubMechanism{
		name:     "PLAIN",
		first:    []byte("client-first"),
		scripted: [][]byte{[]byte("client-second")},
	}

	conn.handlers[saslHandshakeKey] = func(v int16, body []byte) []byte {
		return encodeHandshakeResponse(0)
	}
	authCalls := 0
	conn.handlers[saslAuthenticateKey] = func(v int16, body []byte) []byte {
		authCalls++
		if authCalls == 1 {
			return encodeAuthenticateResponse(0, []byte("server-first"), 0)
		}
		return encodeAuthenticateResponse(0, []byte("server-second"), 60000)
	}

	b := &Broker{
		conn:          conn,
		cfg:           defaultCfg(),
		lock:          newTimedMutex(0),
		versions:      versionsFor(saslHandshakeKey, saslAuthenticateKey),
		lookupRequest: newLookup(versionsFor(saslHandshakeKey, saslAuthenticateKey)),
		authProtocol:  authProtocolFramed,
	}
	b.cfg.sasls = []sasl.Mechanism{mech}

	gotMech, lifetime, err := b.authenticate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMech != mech {
		t.Fatal("want the configured mechanism returned")
	}
	if lifetime != 60000 {
		t.Fatalf("got lifetime %d, want 60000", lifetime)
	}
	if authCalls != 2 {
		t.Fatalf("got %d SaslAuthenticate round trips, want 2", authCalls)
	}
}

func TestAuthenticateFallsBackOnUnsupportedMechanism(t *testing.T) {
	conn := newFakeConn("broker:9092")
	conn.connected = true

	mechA := &stubMechanism{name: "SCRAM-SHA-512", first: []byte("a1")}
	mechB := &stubMechanism{name: "PLAIN", first: []byte("b1")}

	handshakeCalls := 0
	conn.handlers[saslHandshakeKey] = func(v int16, body []byte) []byte {
		handshakeCalls++
		r := &kbin.Reader{Src: body}
		name := r.String()
		if name == mechA.name {
			return encodeHandshakeResponse(kerr.UnsupportedSaslMechanism.Code, mechB.name)
		}
		return encodeHandshakeResponse(0)
	}
	conn.handlers[saslAuthenticateKey] = func(v int16, body []byte) []byte {
		return encodeAuthenticateResponse(0, nil, 1000)
	}

	versions := versionsFor(saslHandshakeKey, saslAuthenticateKey)
	b := &Broker{
		conn:          conn,
		cfg:           defaultCfg(),
		lock:          newTimedMutex(0),
		versions:      versions,
		lookupRequest: newLookup(versions),
		authProtocol:  authProtocolFramed,
	}
	b.cfg.sasls = []sasl.Mechanism{mechA, mechB}

	gotMech, _, err := b.authenticate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMech != mechB {
		t.Fatal("want fallback to mechB after mechA was rejected")
	}
	if handshakeCalls != 2 {
		t.Fatalf("got %d handshake calls, want 2 (one rejected, one accepted)", handshakeCalls)
	}
}

func TestAuthenticateRawModeUsesSendRaw(t *testing.T) {
	conn := newFakeConn("broker:9092")
	conn.connected = true

	mech := &stubMechanism{
		name:     "PLAIN",
		first:    []byte("client-first"),
		scripted: nil, // single round trip: done immediately after one challenge
	}

	rawCalls := 0
	conn.rawHandler = func(sent []byte) ([]byte, error) {
		rawCalls++
		if string(sent) != "client-first" {
			t.Fatalf("got raw bytes %q, want %q", sent, "client-first")
		}
		return []byte("server-done"), nil
	}

	conn.handlers[saslHandshakeKey] = func(v int16, body []byte) []byte {
		return encodeHandshakeResponse(0)
	}

	versions := map[int16]versionRange{saslHandshakeKey: {min: 0, max: 0}}
	b := &Broker{
		conn:          conn,
		cfg:           defaultCfg(),
		lock:          newTimedMutex(0),
		versions:      versions,
		lookupRequest: newLookup(versions),
		authProtocol:  authProtocolRaw,
	}
	b.cfg.sasls = []sasl.Mechanism{mech}

	_, lifetime, err := b.authenticate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lifetime != 0 {
		t.Fatalf("got lifetime %d, want 0 (raw mode carries no session lifetime)", lifetime)
	}
	if rawCalls != 1 {
		t.Fatalf("got %d raw exchanges, want 1", rawCalls)
	}
}

func TestAuthenticateNoMechanismAcceptedErrors(t *testing.T) {
	conn := newFakeConn("broker:9092")
	conn.connected = true

	mech := &stubMechanism{name: "PLAIN", first: []byte("p1")}
	conn.handlers[saslHandshakeKey] = func(v int16, body []byte) []byte {
		return encodeHandshakeResponse(kerr.UnsupportedSaslMechanism.Code)
	}

	versions := versionsFor(saslHandshakeKey, saslAuthenticateKey)
	b := &Broker{
		conn:          conn,
		cfg:           defaultCfg(),
		lock:          newTimedMutex(0),
		versions:      versions,
		lookupRequest: newLookup(versions),
		authProtocol:  authProtocolFramed,
	}
	b.cfg.sasls = []sasl.Mechanism{mech}

	_, _, err := b.authenticate(context.Background())
	if err == nil {
		t.Fatal("want an error when no mechanism is accepted")
	}
}

func TestAuthenticatePinsPriorMechanismOnReauth(t *testing.T) {
	conn := newFakeConn("broker:9092")
	conn.connected = true

	mechA := &stubMechanism{name: "SCRAM-SHA-512", first: []byte("a1")}
	mechB := &stubMechanism{name: "PLAIN", first: []byte("b1")}

	var handshakeNames []string
	conn.handlers[saslHandshakeKey] = func(v int16, body []byte) []byte {
		r := &kbin.Reader{Src: body}
		name := r.String()
		handshakeNames = append(handshakeNames, name)
		if name == mechA.name {
			return encodeHandshakeResponse(kerr.UnsupportedSaslMechanism.Code, mechB.name)
		}
		return encodeHandshakeResponse(0)
	}
	conn.handlers[saslAuthenticateKey] = func(v int16, body []byte) []byte {
		return encodeAuthenticateResponse(0, nil, 1000)
	}

	versions := versionsFor(saslHandshakeKey, saslAuthenticateKey)
	b := &Broker{
		conn:          conn,
		cfg:           defaultCfg(),
		lock:          newTimedMutex(0),
		versions:      versions,
		lookupRequest: newLookup(versions),
		authProtocol:  authProtocolFramed,
	}
	b.cfg.sasls = []sasl.Mechanism{mechA, mechB}

	gotMech, _, err := b.authenticate(context.Background())
	if err != nil {
		t.Fatalf("first authenticate: %v", err)
	}
	if gotMech != mechB {
		t.Fatal("want fallback to mechB on first authenticate")
	}
	if len(handshakeNames) != 2 || handshakeNames[0] != mechA.name || handshakeNames[1] != mechB.name {
		t.Fatalf("got handshake order %v, want [%s %s]", handshakeNames, mechA.name, mechB.name)
	}

	// Simulate what connect() does after a successful authenticate: pin
	// the mechanism that just succeeded.
	b.mechanism = gotMech
	handshakeNames = nil

	gotMech, _, err = b.authenticate(context.Background())
	if err != nil {
		t.Fatalf("reauth authenticate: %v", err)
	}
	if gotMech != mechB {
		t.Fatal("want mechB again on reauth")
	}
	if len(handshakeNames) != 1 || handshakeNames[0] != mechB.name {
		t.Fatalf("got handshake order %v on reauth, want [%s] (no re-trying the rejected mechA)", handshakeNames, mechB.name)
	}
}

func TestDoSaslRejectsServerSpeaksFirstMechanism(t *testing.T) {
	conn := newFakeConn("broker:9092")
	conn.connected = true

	mech := &stubMechanism{name: "GSSAPI", first: nil}
	conn.handlers[saslHandshakeKey] = func(v int16, body []byte) []byte {
		return encodeHandshakeResponse(0)
	}
	conn.handlers[saslAuthenticateKey] = func(v int16, body []byte) []byte {
		t.Fatal("want no SaslAuthenticate round trip for an empty first client message")
		return nil
	}

	versions := versionsFor(saslHandshakeKey, saslAuthenticateKey)
	b := &Broker{
		conn:          conn,
		cfg:           defaultCfg(),
		lock:          newTimedMutex(0),
		versions:      versions,
		lookupRequest: newLookup(versions),
		authProtocol:  authProtocolFramed,
	}
	b.cfg.sasls = []sasl.Mechanism{mech}

	_, _, err := b.authenticate(context.Background())
	if !errors.Is(err, errSASLUnexpectedServerFirst) {
		t.Fatalf("got %v, want errSASLUnexpectedServerFirst", err)
	}
}
