package sasl

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPlainAuthenticate(t *testing.T) {
	p := Plain{User: "alice", Pass: "wonderland"}
	sess, msg, err := p.Authenticate(context.Background(), "broker:9092")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	want := "\x00alice\x00wonderland"
	if got := string(msg); got != want {
		t.Fatalf("msg = %q, want %q", got, want)
	}
	done, toSend, err := sess.Challenge(nil)
	if err != nil {
		t.Fatalf("Challenge: %v", err)
	}
	if !done || toSend != nil {
		t.Fatalf("Challenge = (%v, %v), want (true, nil)", done, toSend)
	}
}

func TestPlainWithAuthzID(t *testing.T) {
	p := Plain{Zid: "admin", User: "bob", Pass: "hunter2"}
	_, msg, err := p.Authenticate(context.Background(), "")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	parts := bytes.Split(msg, []byte{0})
	if diff := cmp.Diff([]string{"admin", "bob", "hunter2"}, toStrings(parts)); diff != "" {
		t.Fatalf("parts mismatch (-want +got):\n%s", diff)
	}
}

func toStrings(bs [][]byte) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = string(b)
	}
	return out
}

func TestScramClientFirstMessage(t *testing.T) {
	m := Scram256("alice", "pencil")
	sess, msg, err := m.Authenticate(context.Background(), "")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	s := string(msg)
	if !strings.HasPrefix(s, "n,,n=alice,r=") {
		t.Fatalf("client-first-message = %q, want prefix n,,n=alice,r=", s)
	}
	if sess == nil {
		t.Fatal("nil session")
	}
}

func TestScramEscapesReservedChars(t *testing.T) {
	if got := scramEscape("a=b,c"); got != "a=3Db=2Cc" {
		t.Fatalf("scramEscape = %q, want a=3Db=2Cc", got)
	}
}

func TestScramServerFirstRejectsShortNonce(t *testing.T) {
	m := Scram256("alice", "pencil")
	sess, _, err := m.Authenticate(context.Background(), "")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	_, _, err = sess.Challenge([]byte("r=bogus,s=aGVsbG8=,i=4096"))
	if err == nil {
		t.Fatal("expected error for nonce not extending client nonce")
	}
}

func TestOAuthBearerMessageFraming(t *testing.T) {
	o := OAuthBearer{Source: fakeTokenSource{token: "tok-123"}}
	sess, msg, err := o.Authenticate(context.Background(), "")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if !bytes.Contains(msg, []byte("auth=Bearer tok-123")) {
		t.Fatalf("msg = %q missing bearer token", msg)
	}
	done, _, err := sess.Challenge(nil)
	if err != nil || !done {
		t.Fatalf("Challenge = (%v, %v), want (true, nil)", done, err)
	}
}

type fakeTokenSource struct{ token string }

func (f fakeTokenSource) Token(context.Context) (string, map[string]string, error) {
	return f.token, nil, nil
}
