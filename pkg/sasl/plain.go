package sasl

import "context"

// Plain implements the SASL PLAIN mechanism (RFC 4616). No third-party
// library applies here: the mechanism's entire wire payload is the
// three-field NUL-joined string "authzid\0authcid\0passwd".
type Plain struct {
	Zid  string // authorization identity; usually empty
	User string
	Pass string
}

func (Plain) Name() string { return "PLAIN" }

func (p Plain) Authenticate(context.Context, string) (Session, []byte, error) {
	msg := make([]byte, 0, len(p.Zid)+len(p.User)+len(p.Pass)+2)
	msg = append(msg, p.Zid...)
	msg = append(msg, 0)
	msg = append(msg, p.User...)
	msg = append(msg, 0)
	msg = append(msg, p.Pass...)
	return plainSession{}, msg, nil
}

// plainSession completes in a single round: the client sends its message and
// a zero-length server response is success.
type plainSession struct{}

func (plainSession) Challenge([]byte) (bool, []byte, error) {
	return true, nil, nil
}
