package kmsg

import "github.com/kafkasaur/kgo/pkg/kbin"

const (
	apiKeySaslHandshake    = 17
	apiKeySaslAuthenticate = 36
)

// SASLHandshakeRequest advertises the mechanism the client wants to use.
//
// At v1+ the broker wraps every subsequent authentication round-trip inside
// SASLAuthenticateRequest frames (KIP-152, "framed mode"); at v0 the bytes go
// directly over the raw socket ("raw mode"). See pkg/kgo's SASL
// authenticator, which decides which mode to use per spec.md §4.4.
type SASLHandshakeRequest struct {
	versionedReq

	Mechanism string
}

func (*SASLHandshakeRequest) Key() int16         { return apiKeySaslHandshake }
func (*SASLHandshakeRequest) MaxVersion() int16  { return 1 }
func (*SASLHandshakeRequest) IsFlexible() bool    { return false }

func (r *SASLHandshakeRequest) AppendTo(dst []byte) []byte {
	return kbin.AppendString(dst, r.Mechanism)
}

func (r *SASLHandshakeRequest) ResponseKind() Response {
	return &SASLHandshakeResponse{versionedResp: versionedResp{Version: r.Version}}
}

// SASLHandshakeResponse reports the mechanisms a broker supports if the
// requested one wasn't one of them.
type SASLHandshakeResponse struct {
	versionedResp

	ErrorCode           int16
	SupportedMechanisms []string
}

func (*SASLHandshakeResponse) Key() int16 { return apiKeySaslHandshake }

func (r *SASLHandshakeResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	r.ErrorCode = b.Int16()
	n := b.ArrayLen()
	r.SupportedMechanisms = make([]string, 0, maxInt(n, 0))
	for i := int32(0); i < n; i++ {
		r.SupportedMechanisms = append(r.SupportedMechanisms, b.String())
	}
	return b.Complete()
}

// SASLAuthenticateRequest carries one round of SASL bytes inside a normal
// Kafka request/response pair, per KIP-152.
type SASLAuthenticateRequest struct {
	versionedReq

	SASLAuthBytes []byte
}

func (*SASLAuthenticateRequest) Key() int16        { return apiKeySaslAuthenticate }
func (*SASLAuthenticateRequest) MaxVersion() int16 { return 2 }
func (*SASLAuthenticateRequest) IsFlexible() bool   { return false }

func (r *SASLAuthenticateRequest) AppendTo(dst []byte) []byte {
	return kbin.AppendBytes(dst, r.SASLAuthBytes)
}

func (r *SASLAuthenticateRequest) ResponseKind() Response {
	return &SASLAuthenticateResponse{versionedResp: versionedResp{Version: r.Version}}
}

// SASLAuthenticateResponse carries the broker's half of a SASL round trip,
// plus the session lifetime once authentication completes.
type SASLAuthenticateResponse struct {
	versionedResp

	ErrorCode              int16
	ErrorMessage           *string
	SASLAuthBytes          []byte
	SessionLifetimeMillis  int64
}

func (*SASLAuthenticateResponse) Key() int16 { return apiKeySaslAuthenticate }

func (r *SASLAuthenticateResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	r.ErrorCode = b.Int16()
	r.ErrorMessage = b.NullableString()
	r.SASLAuthBytes = b.Bytes()
	if r.Version >= 1 {
		r.SessionLifetimeMillis = b.Int64()
	}
	return b.Complete()
}

var saslHandshakeFamily = Family{
	Versions: []int16{0, 1},
	protocol: func(version int16) Request {
		return &SASLHandshakeRequest{versionedReq: versionedReq{Version: version}}
	},
}

var saslAuthenticateFamily = Family{
	Versions: []int16{0, 1, 2},
	protocol: func(version int16) Request {
		return &SASLAuthenticateRequest{versionedReq: versionedReq{Version: version}}
	},
}
