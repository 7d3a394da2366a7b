package kmsg

import "github.com/kafkasaur/kgo/pkg/kbin"

const apiKeyApiVersions = 18

// ApiVersionsRequest asks a broker which versions of each API it supports.
// It is the very first request the version negotiator sends; see
// pkg/kgo/negotiate.go.
type ApiVersionsRequest struct {
	versionedReq

	// ClientSoftwareName and ClientSoftwareVersion are only encoded at
	// v3+; KIP-511.
	ClientSoftwareName    string
	ClientSoftwareVersion string
}

func (*ApiVersionsRequest) Key() int16         { return apiKeyApiVersions }
func (*ApiVersionsRequest) MaxVersion() int16  { return 3 }
func (r *ApiVersionsRequest) IsFlexible() bool { return r.Version >= 3 }

func (r *ApiVersionsRequest) AppendTo(dst []byte) []byte {
	if r.Version >= 3 {
		dst = kbin.AppendString(dst, r.ClientSoftwareName)
		dst = kbin.AppendString(dst, r.ClientSoftwareVersion)
	}
	return dst
}

func (r *ApiVersionsRequest) ResponseKind() Response {
	return &ApiVersionsResponse{versionedResp: versionedResp{Version: r.Version}}
}

// ApiVersionsResponseKey is the min/max version range a broker reports for
// one API key.
type ApiVersionsResponseKey struct {
	ApiKey     int16
	MinVersion int16
	MaxVersion int16
}

// ApiVersionsResponse is the decoded form of a broker's supported API
// version ranges, reduced by pkg/kgo into its versions table.
type ApiVersionsResponse struct {
	versionedResp

	ErrorCode      int16
	ApiKeys        []ApiVersionsResponseKey
	ThrottleTimeMs int32
}

func (*ApiVersionsResponse) Key() int16 { return apiKeyApiVersions }

func (r *ApiVersionsResponse) Throttle() (int32, bool) { return r.ThrottleTimeMs, true }

func (r *ApiVersionsResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	r.ErrorCode = b.Int16()
	n := b.ArrayLen()
	r.ApiKeys = make([]ApiVersionsResponseKey, 0, maxInt(n, 0))
	for i := int32(0); i < n; i++ {
		r.ApiKeys = append(r.ApiKeys, ApiVersionsResponseKey{
			ApiKey:     b.Int16(),
			MinVersion: b.Int16(),
			MaxVersion: b.Int16(),
		})
	}
	if r.Version >= 1 {
		r.ThrottleTimeMs = b.Int32()
	}
	return b.Complete()
}

func maxInt(n, floor int32) int32 {
	if n < floor {
		return floor
	}
	return n
}

var apiVersionsFamily = Family{
	Versions: []int16{0, 1, 2, 3},
	protocol: func(version int16) Request {
		return &ApiVersionsRequest{versionedReq: versionedReq{Version: version}}
	},
}
