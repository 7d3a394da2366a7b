// Package kmsg contains the Kafka request and response types this client
// dispatches through pkg/kgo. Each API key has one Go type per request and
// response, plus a small per-key "family" table mapping a version to the
// concrete type that encodes it.
//
// This mirrors the real franz-go kmsg package that pkg/kgo's teacher
// (github.com/twmb/kafka-go) imports, generated off of the Kafka protocol
// schema; ours is hand-written and covers only the fields pkg/kgo's broker
// surface actually needs to build a correct request and parse the fields the
// spec's invariants and edge cases touch.
package kmsg

import "github.com/kafkasaur/kgo/pkg/kbin"

// MaxKey bounds the Kafka API key space. Only the keys registered in
// families (registry.go) can be encoded; the highest of those is 42
// (DeleteGroups).
const MaxKey = 68

// Request is satisfied by every concrete per-API-version request type.
type Request interface {
	Key() int16
	MaxVersion() int16
	SetVersion(v int16)
	GetVersion() int16
	IsFlexible() bool
	AppendTo(dst []byte) []byte
	ResponseKind() Response
}

// Response is satisfied by every concrete per-API-version response type.
type Response interface {
	Key() int16
	GetVersion() int16
	SetVersion(v int16)
	ReadFrom(src []byte) error
}

// ThrottleResponse is implemented by response types that carry a
// throttle_time_ms field.
type ThrottleResponse interface {
	// Throttle returns the throttle duration in milliseconds and whether
	// the throttle applies after the response (vs. before, which a few
	// old APIs do).
	Throttle() (millis int32, afterResp bool)
}

// versionedReq is embedded by every request type; it holds the negotiated
// version to encode at and the matching response version to expect.
type versionedReq struct {
	Version int16
}

func (v *versionedReq) GetVersion() int16    { return v.Version }
func (v *versionedReq) SetVersion(ver int16) { v.Version = ver }

// versionedResp is embedded by every response type.
type versionedResp struct {
	Version int16
}

func (v *versionedResp) GetVersion() int16    { return v.Version }
func (v *versionedResp) SetVersion(ver int16) { v.Version = ver }

// Family describes, for one API key, which versions this package can encode
// and how to build the concrete Request for a given version.
type Family struct {
	Versions []int16
	protocol func(version int16) Request
}

// Protocol returns the Request for the given version, or nil if this family
// does not implement that exact version.
func (f Family) Protocol(version int16) Request {
	if f.protocol == nil {
		return nil
	}
	for _, v := range f.Versions {
		if v == version {
			return f.protocol(version)
		}
	}
	return nil
}

// apiReader is a tiny convenience wrapper so response ReadFrom methods read
// the same way across the package.
func apiReader(src []byte) *kbin.Reader { return &kbin.Reader{Src: src} }
