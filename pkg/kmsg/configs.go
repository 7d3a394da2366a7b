package kmsg

import "github.com/kafkasaur/kgo/pkg/kbin"

const (
	apiKeyDescribeConfigs = 32
	apiKeyAlterConfigs    = 33
)

// DescribeConfigsRequestResource names one resource (0=topic, 2=broker,
// 4=broker-logger) and, optionally, which config keys to return.
type DescribeConfigsRequestResource struct {
	ResourceType int8
	ResourceName string
	ConfigNames  []string
}

// DescribeConfigsRequest. Default IncludeSynonyms per spec.md §6: false.
type DescribeConfigsRequest struct {
	versionedReq

	Resources        []DescribeConfigsRequestResource
	IncludeSynonyms  bool
}

func (*DescribeConfigsRequest) Key() int16         { return apiKeyDescribeConfigs }
func (*DescribeConfigsRequest) MaxVersion() int16  { return 4 }
func (r *DescribeConfigsRequest) IsFlexible() bool { return r.Version >= 4 }

func (r *DescribeConfigsRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendArrayLen(dst, len(r.Resources))
	for _, res := range r.Resources {
		dst = kbin.AppendInt8(dst, res.ResourceType)
		dst = kbin.AppendString(dst, res.ResourceName)
		if res.ConfigNames == nil {
			dst = kbin.AppendInt32(dst, -1)
		} else {
			dst = kbin.AppendArrayLen(dst, len(res.ConfigNames))
			for _, n := range res.ConfigNames {
				dst = kbin.AppendString(dst, n)
			}
		}
	}
	if r.Version >= 1 {
		dst = kbin.AppendBool(dst, r.IncludeSynonyms)
	}
	return dst
}

func (r *DescribeConfigsRequest) ResponseKind() Response {
	return &DescribeConfigsResponse{versionedResp: versionedResp{Version: r.Version}}
}

// DescribeConfigsResponseResourceConfig is one config key's value/source.
type DescribeConfigsResponseResourceConfig struct {
	Name      string
	Value     *string
	ReadOnly  bool
	IsDefault bool
	Sensitive bool
}

// DescribeConfigsResponseResource is one resource's config listing.
type DescribeConfigsResponseResource struct {
	ErrorCode    int16
	ErrorMessage *string
	ResourceType int8
	ResourceName string
	Configs      []DescribeConfigsResponseResourceConfig
}

// DescribeConfigsResponse is the decoded per-resource config listing.
type DescribeConfigsResponse struct {
	versionedResp

	ThrottleTimeMs int32
	Resources      []DescribeConfigsResponseResource
}

func (*DescribeConfigsResponse) Key() int16                { return apiKeyDescribeConfigs }
func (r *DescribeConfigsResponse) Throttle() (int32, bool) { return r.ThrottleTimeMs, true }

func (r *DescribeConfigsResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	r.ThrottleTimeMs = b.Int32()
	n := b.ArrayLen()
	for i := int32(0); i < n; i++ {
		res := DescribeConfigsResponseResource{
			ErrorCode:    b.Int16(),
			ErrorMessage: b.NullableString(),
			ResourceType: b.Int8(),
			ResourceName: b.String(),
		}
		nc := b.ArrayLen()
		for j := int32(0); j < nc; j++ {
			res.Configs = append(res.Configs, DescribeConfigsResponseResourceConfig{
				Name:      b.String(),
				Value:     b.NullableString(),
				ReadOnly:  b.Bool(),
				IsDefault: b.Bool(),
				Sensitive: b.Bool(),
			})
		}
		r.Resources = append(r.Resources, res)
	}
	return b.Complete()
}

var describeConfigsFamily = Family{
	Versions: []int16{0, 1, 2, 3, 4},
	protocol: func(version int16) Request {
		return &DescribeConfigsRequest{versionedReq: versionedReq{Version: version}}
	},
}

// AlterConfigsRequestResourceConfig is one config key/value to set.
type AlterConfigsRequestResourceConfig struct {
	Name  string
	Value *string
}

// AlterConfigsRequestResource is one resource's full config overwrite (this
// API replaces the whole config, unlike IncrementalAlterConfigs).
type AlterConfigsRequestResource struct {
	ResourceType int8
	ResourceName string
	Configs      []AlterConfigsRequestResourceConfig
}

// AlterConfigsRequest. Default ValidateOnly per spec.md §6: false.
type AlterConfigsRequest struct {
	versionedReq

	Resources    []AlterConfigsRequestResource
	ValidateOnly bool
}

func (*AlterConfigsRequest) Key() int16         { return apiKeyAlterConfigs }
func (*AlterConfigsRequest) MaxVersion() int16  { return 2 }
func (r *AlterConfigsRequest) IsFlexible() bool { return false }

func (r *AlterConfigsRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendArrayLen(dst, len(r.Resources))
	for _, res := range r.Resources {
		dst = kbin.AppendInt8(dst, res.ResourceType)
		dst = kbin.AppendString(dst, res.ResourceName)
		dst = kbin.AppendArrayLen(dst, len(res.Configs))
		for _, c := range res.Configs {
			dst = kbin.AppendString(dst, c.Name)
			dst = kbin.AppendNullableString(dst, c.Value)
		}
	}
	dst = kbin.AppendBool(dst, r.ValidateOnly)
	return dst
}

func (r *AlterConfigsRequest) ResponseKind() Response {
	return &AlterConfigsResponse{versionedResp: versionedResp{Version: r.Version}}
}

// AlterConfigsResponseResource is one resource's alteration result.
type AlterConfigsResponseResource struct {
	ErrorCode    int16
	ErrorMessage *string
	ResourceType int8
	ResourceName string
}

// AlterConfigsResponse is the decoded per-resource alteration result.
type AlterConfigsResponse struct {
	versionedResp

	ThrottleTimeMs int32
	Resources      []AlterConfigsResponseResource
}

func (*AlterConfigsResponse) Key() int16                { return apiKeyAlterConfigs }
func (r *AlterConfigsResponse) Throttle() (int32, bool) { return r.ThrottleTimeMs, true }

func (r *AlterConfigsResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	r.ThrottleTimeMs = b.Int32()
	n := b.ArrayLen()
	for i := int32(0); i < n; i++ {
		r.Resources = append(r.Resources, AlterConfigsResponseResource{
			ErrorCode:    b.Int16(),
			ErrorMessage: b.NullableString(),
			ResourceType: b.Int8(),
			ResourceName: b.String(),
		})
	}
	return b.Complete()
}

var alterConfigsFamily = Family{
	Versions: []int16{0, 1, 2},
	protocol: func(version int16) Request {
		return &AlterConfigsRequest{versionedReq: versionedReq{Version: version}}
	},
}
