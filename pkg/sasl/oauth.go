package sasl

import (
	"context"
	"fmt"
	"strings"
)

// OAuthTokenSource supplies a bearer token; callers typically wrap a
// refreshing token provider (OIDC client credentials, etc.) behind this.
type OAuthTokenSource interface {
	Token(ctx context.Context) (token string, extensions map[string]string, err error)
}

// OAuthBearer implements the OAUTHBEARER mechanism (RFC 7628, KIP-255).
type OAuthBearer struct {
	Source OAuthTokenSource
}

func (OAuthBearer) Name() string { return "OAUTHBEARER" }

func (o OAuthBearer) Authenticate(ctx context.Context, _ string) (Session, []byte, error) {
	token, ext, err := o.Source.Token(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("oauthbearer: fetching token: %w", err)
	}

	var b strings.Builder
	b.WriteString("n,,")
	b.WriteByte(1) // GS2 header terminator (control-A)
	b.WriteString("auth=Bearer ")
	b.WriteString(token)
	b.WriteByte(1)
	for k, v := range ext {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(v)
		b.WriteByte(1)
	}
	b.WriteByte(1)

	return oauthSession{}, []byte(b.String()), nil
}

// oauthSession completes in one round unless the server rejects the token
// with a JSON error object, in which case the client sends a single 0x01
// byte to abort per RFC 7628 §3.2.3.
type oauthSession struct{}

func (oauthSession) Challenge(serverResponse []byte) (bool, []byte, error) {
	if len(serverResponse) > 0 {
		// Server sent an error challenge; abort the exchange.
		return false, []byte{1}, nil
	}
	return true, nil, nil
}
