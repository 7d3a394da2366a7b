// Package sasl defines the mechanism-agnostic contract pkg/kgo's
// authenticator drives: a Mechanism names itself and starts a Session; the
// Session is fed each server challenge and returns the next client message
// until the exchange is done.
//
// This mirrors the teacher's own sasl.Mechanism/sasl.Session shape
// (github.com/twmb/franz-go/pkg/sasl, imported directly by broker.go as
// "github.com/twmb/franz-go/pkg/sasl" and driven via
// cxn.mechanism.Authenticate(ctx, addr) / session.Challenge(challenge)).
package sasl

import "context"

// Session drives one SASL conversation after Authenticate has produced the
// first client message.
type Session interface {
	// Challenge consumes the server's response to the previous client
	// message (nil for none yet sent) and returns the next client
	// message. done is true once the mechanism considers the exchange
	// complete; pkg/kgo's authenticator sends nothing further once done
	// is true, so a toSend returned together with done is not sent.
	Challenge(serverResponse []byte) (done bool, toSend []byte, err error)
}

// Mechanism is a configured SASL mechanism capable of starting a Session
// against a given broker address.
type Mechanism interface {
	// Name is the SASL mechanism name as advertised on the wire
	// ("PLAIN", "SCRAM-SHA-256", "SCRAM-SHA-512", "OAUTHBEARER",
	// "AWS_MSK_IAM").
	Name() string

	// Authenticate begins the exchange for one connection, returning the
	// session to drive and the first message the client sends (which,
	// for some mechanisms, is empty -- the server speaks first).
	Authenticate(ctx context.Context, host string) (Session, []byte, error)
}
