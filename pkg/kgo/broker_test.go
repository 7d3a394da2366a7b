package kgo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kafkasaur/kgo/pkg/kmsg"
)

func TestIsConnDeadWalksWrapChain(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", errConnDead))
	if !isConnDead(wrapped) {
		t.Fatal("want true for a multiply-wrapped errConnDead")
	}
	if isConnDead(errors.New("unrelated")) {
		t.Fatal("want false for an unrelated error")
	}
	if isConnDead(nil) {
		t.Fatal("want false for nil")
	}
}

func TestIsConnectedRequiresTransportAndVersions(t *testing.T) {
	conn := newFakeConn("broker:9092")
	b := &Broker{conn: conn, cfg: defaultCfg(), lock: newTimedMutex(time.Second)}

	if b.isConnected() {
		t.Fatal("want false: transport not up yet")
	}

	conn.connected = true
	if b.isConnected() {
		t.Fatal("want false: versions not negotiated yet")
	}

	b.versions = map[int16]versionRange{}
	if !b.isConnected() {
		t.Fatal("want true: transport up, versions negotiated, no SASL configured")
	}
}

func fetchKeys() []struct{ key, min, max int16 } {
	return []struct{ key, min, max int16 }{
		{key: (&kmsg.ProduceRequest{}).Key(), min: 0, max: (&kmsg.ProduceRequest{}).MaxVersion()},
		{key: (&kmsg.FetchRequest{}).Key(), min: 0, max: (&kmsg.FetchRequest{}).MaxVersion()},
		{key: (&kmsg.MetadataRequest{}).Key(), min: 0, max: (&kmsg.MetadataRequest{}).MaxVersion()},
		{key: (&kmsg.SASLHandshakeRequest{}).Key(), min: 0, max: (&kmsg.SASLHandshakeRequest{}).MaxVersion()},
		{key: (&kmsg.SASLAuthenticateRequest{}).Key(), min: 0, max: (&kmsg.SASLAuthenticateRequest{}).MaxVersion()},
	}
}

func TestConnectHappyPathNegotiatesAndMarksConnected(t *testing.T) {
	conn := newFakeConn("broker:9092")
	conn.handlers[apiVersionsKey] = func(version int16, body []byte) []byte {
		return encodeApiVersionsResponse(version, 0, fetchKeys())
	}

	b := NewBroker(conn, 1)

	if err := b.connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if !b.isConnected() {
		t.Fatal("want connected after a clean connect()")
	}
	if _, ok := b.versions[(&kmsg.ProduceRequest{}).Key()]; !ok {
		t.Fatal("want negotiated versions to include Produce")
	}

	// A second connect() on an already-good broker is a no-op: it must
	// not re-dial or re-negotiate.
	calls := 0
	conn.handlers[apiVersionsKey] = func(version int16, body []byte) []byte {
		calls++
		return encodeApiVersionsResponse(version, 0, fetchKeys())
	}
	if err := b.connect(context.Background()); err != nil {
		t.Fatalf("second connect: %v", err)
	}
	if calls != 0 {
		t.Fatalf("got %d renegotiations on an already-connected broker, want 0", calls)
	}
}

func TestConnectFailsWhenApiVersionsExhausted(t *testing.T) {
	conn := newFakeConn("broker:9092")
	conn.handlers[apiVersionsKey] = func(version int16, body []byte) []byte {
		return encodeApiVersionsResponse(version, 35, nil)
	}

	b := NewBroker(conn, 1)
	err := b.connect(context.Background())
	if !errors.Is(err, errAPIVersionsExhausted) {
		t.Fatalf("got %v, want errAPIVersionsExhausted", err)
	}
	if conn.Connected() {
		t.Fatal("want the socket torn down after failed negotiation")
	}
}

// TestConnectReauthenticatesOnStillUpSocket pins down §4.6 step 3 / §4.5:
// once the SASL session's lifetime is due for renewal, connect() must
// re-authenticate even though the transport itself never went down.
func TestConnectReauthenticatesOnStillUpSocket(t *testing.T) {
	conn := newFakeConn("broker:9092")
	conn.handlers[apiVersionsKey] = func(version int16, body []byte) []byte {
		return encodeApiVersionsResponse(version, 0, fetchKeys())
	}
	conn.handlers[saslHandshakeKey] = func(version int16, body []byte) []byte {
		return encodeHandshakeResponse(0)
	}
	authCalls := 0
	conn.handlers[saslAuthenticateKey] = func(version int16, body []byte) []byte {
		authCalls++
		// A 1ms session lifetime means the default 10000ms
		// reauthentication threshold alone makes the session due for
		// renewal on the very next isConnected() check, with no need
		// to mock time.Now().
		return encodeAuthenticateResponse(0, []byte("srv"), 1)
	}

	mech := &stubMechanism{name: "PLAIN", first: []byte("c1")}
	b := NewBroker(conn, 1, WithSASL(mech))

	if err := b.connect(context.Background()); err != nil {
		t.Fatalf("first connect: %v", err)
	}
	if authCalls != 1 {
		t.Fatalf("got %d SaslAuthenticate calls after first connect, want 1", authCalls)
	}
	if b.isConnected() {
		t.Fatal("want isConnected()==false: the 1ms session is already due for reauth")
	}

	if err := b.connect(context.Background()); err != nil {
		t.Fatalf("second connect: %v", err)
	}
	if authCalls != 2 {
		t.Fatalf("got %d SaslAuthenticate calls after second connect, want 2 (proactive reauth)", authCalls)
	}
	if !conn.Connected() {
		t.Fatal("want the transport still up: reauth must not require a fresh socket")
	}
	if b.authenticatedAt.IsZero() {
		t.Fatal("want authenticatedAt set again after reauth")
	}
}

func TestSendRequestDisconnectsOnConnDeath(t *testing.T) {
	conn := newFakeConn("broker:9092")
	conn.handlers[apiVersionsKey] = func(version int16, body []byte) []byte {
		return encodeApiVersionsResponse(version, 0, fetchKeys())
	}

	b := NewBroker(conn, 1)
	if err := b.connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	conn.sendErr = fmt.Errorf("write failed: %w", errConnDead)

	req := &kmsg.ProduceRequest{}
	_, err := b.sendRequest(context.Background(), req)
	if !isConnDead(err) {
		t.Fatalf("got %v, want a wrapped errConnDead", err)
	}
	if conn.Connected() {
		t.Fatal("want the transport disconnected after a dead-connection send")
	}
}
