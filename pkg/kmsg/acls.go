package kmsg

import "github.com/kafkasaur/kgo/pkg/kbin"

const (
	apiKeyDescribeAcls = 29
	apiKeyCreateAcls   = 30
	apiKeyDeleteAcls   = 31
)

// ACLCreation is one ACL entry to create. Broker.CreateAcls (pkg/kgo)
// takes a slice of these as its creations argument and sends it as
// CreateAclsRequest.Creations.
type ACLCreation struct {
	ResourceType        int8
	ResourceName        string
	ResourcePatternType  int8
	Principal           string
	Host                string
	Operation           int8
	PermissionType      int8
}

// CreateAclsRequest creates the ACL entries listed in Creations.
type CreateAclsRequest struct {
	versionedReq

	Creations []ACLCreation
}

func (*CreateAclsRequest) Key() int16         { return apiKeyCreateAcls }
func (*CreateAclsRequest) MaxVersion() int16  { return 3 }
func (r *CreateAclsRequest) IsFlexible() bool { return r.Version >= 2 }

func (r *CreateAclsRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendArrayLen(dst, len(r.Creations))
	for _, c := range r.Creations {
		dst = kbin.AppendInt8(dst, c.ResourceType)
		dst = kbin.AppendString(dst, c.ResourceName)
		if r.Version >= 1 {
			dst = kbin.AppendInt8(dst, c.ResourcePatternType)
		}
		dst = kbin.AppendString(dst, c.Principal)
		dst = kbin.AppendString(dst, c.Host)
		dst = kbin.AppendInt8(dst, c.Operation)
		dst = kbin.AppendInt8(dst, c.PermissionType)
	}
	return dst
}

func (r *CreateAclsRequest) ResponseKind() Response {
	return &CreateAclsResponse{versionedResp: versionedResp{Version: r.Version}}
}

// CreateAclsResponseResult is one ACL's creation result.
type CreateAclsResponseResult struct {
	ErrorCode    int16
	ErrorMessage *string
}

// CreateAclsResponse is the decoded per-ACL creation result.
type CreateAclsResponse struct {
	versionedResp

	ThrottleTimeMs int32
	Results        []CreateAclsResponseResult
}

func (*CreateAclsResponse) Key() int16                { return apiKeyCreateAcls }
func (r *CreateAclsResponse) Throttle() (int32, bool) { return r.ThrottleTimeMs, true }

func (r *CreateAclsResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	r.ThrottleTimeMs = b.Int32()
	n := b.ArrayLen()
	for i := int32(0); i < n; i++ {
		r.Results = append(r.Results, CreateAclsResponseResult{
			ErrorCode:    b.Int16(),
			ErrorMessage: b.NullableString(),
		})
	}
	return b.Complete()
}

var createAclsFamily = Family{
	Versions: []int16{0, 1, 2, 3},
	protocol: func(version int16) Request {
		return &CreateAclsRequest{versionedReq: versionedReq{Version: version}}
	},
}

// ACLFilter narrows a describe/delete ACLs request; a zero-value field means
// "any".
type ACLFilter struct {
	ResourceType        int8
	ResourceName        *string
	ResourcePatternType int8
	Principal           *string
	Host                *string
	Operation           int8
	PermissionType      int8
}

// DescribeAclsRequest lists ACLs matching a filter.
type DescribeAclsRequest struct {
	versionedReq

	Filter ACLFilter
}

func (*DescribeAclsRequest) Key() int16         { return apiKeyDescribeAcls }
func (*DescribeAclsRequest) MaxVersion() int16  { return 3 }
func (r *DescribeAclsRequest) IsFlexible() bool { return r.Version >= 2 }

func (r *DescribeAclsRequest) AppendTo(dst []byte) []byte {
	f := r.Filter
	dst = kbin.AppendInt8(dst, f.ResourceType)
	dst = kbin.AppendNullableString(dst, f.ResourceName)
	if r.Version >= 1 {
		dst = kbin.AppendInt8(dst, f.ResourcePatternType)
	}
	dst = kbin.AppendNullableString(dst, f.Principal)
	dst = kbin.AppendNullableString(dst, f.Host)
	dst = kbin.AppendInt8(dst, f.Operation)
	dst = kbin.AppendInt8(dst, f.PermissionType)
	return dst
}

func (r *DescribeAclsRequest) ResponseKind() Response {
	return &DescribeAclsResponse{versionedResp: versionedResp{Version: r.Version}}
}

// DescribeAclsResponseResourceACL is one ACL granted on a matched resource.
type DescribeAclsResponseResourceACL struct {
	Principal      string
	Host           string
	Operation      int8
	PermissionType int8
}

// DescribeAclsResponseResource is one matched resource's ACLs.
type DescribeAclsResponseResource struct {
	ResourceType        int8
	ResourceName        string
	ResourcePatternType int8
	ACLs                []DescribeAclsResponseResourceACL
}

// DescribeAclsResponse is the decoded ACL listing.
type DescribeAclsResponse struct {
	versionedResp

	ThrottleTimeMs int32
	ErrorCode      int16
	ErrorMessage   *string
	Resources      []DescribeAclsResponseResource
}

func (*DescribeAclsResponse) Key() int16                { return apiKeyDescribeAcls }
func (r *DescribeAclsResponse) Throttle() (int32, bool) { return r.ThrottleTimeMs, true }

func (r *DescribeAclsResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	r.ThrottleTimeMs = b.Int32()
	r.ErrorCode = b.Int16()
	r.ErrorMessage = b.NullableString()
	n := b.ArrayLen()
	for i := int32(0); i < n; i++ {
		res := DescribeAclsResponseResource{
			ResourceType: b.Int8(),
			ResourceName: b.String(),
		}
		if r.Version >= 1 {
			res.ResourcePatternType = b.Int8()
		}
		na := b.ArrayLen()
		for j := int32(0); j < na; j++ {
			res.ACLs = append(res.ACLs, DescribeAclsResponseResourceACL{
				Principal:      b.String(),
				Host:           b.String(),
				Operation:      b.Int8(),
				PermissionType: b.Int8(),
			})
		}
		r.Resources = append(r.Resources, res)
	}
	return b.Complete()
}

var describeAclsFamily = Family{
	Versions: []int16{0, 1, 2, 3},
	protocol: func(version int16) Request {
		return &DescribeAclsRequest{versionedReq: versionedReq{Version: version}}
	},
}

// DeleteAclsRequest deletes every ACL matching one or more filters.
type DeleteAclsRequest struct {
	versionedReq

	Filters []ACLFilter
}

func (*DeleteAclsRequest) Key() int16         { return apiKeyDeleteAcls }
func (*DeleteAclsRequest) MaxVersion() int16  { return 3 }
func (r *DeleteAclsRequest) IsFlexible() bool { return r.Version >= 2 }

func (r *DeleteAclsRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendArrayLen(dst, len(r.Filters))
	for _, f := range r.Filters {
		dst = kbin.AppendInt8(dst, f.ResourceType)
		dst = kbin.AppendNullableString(dst, f.ResourceName)
		if r.Version >= 1 {
			dst = kbin.AppendInt8(dst, f.ResourcePatternType)
		}
		dst = kbin.AppendNullableString(dst, f.Principal)
		dst = kbin.AppendNullableString(dst, f.Host)
		dst = kbin.AppendInt8(dst, f.Operation)
		dst = kbin.AppendInt8(dst, f.PermissionType)
	}
	return dst
}

func (r *DeleteAclsRequest) ResponseKind() Response {
	return &DeleteAclsResponse{versionedResp: versionedResp{Version: r.Version}}
}

// DeleteAclsResponseMatchingACL is one ACL that matched a filter and was
// deleted.
type DeleteAclsResponseMatchingACL struct {
	ErrorCode           int16
	ErrorMessage        *string
	ResourceType        int8
	ResourceName        string
	ResourcePatternType int8
	Principal           string
	Host                string
	Operation           int8
	PermissionType      int8
}

// DeleteAclsResponseFilterResult is one filter's deletion result.
type DeleteAclsResponseFilterResult struct {
	ErrorCode    int16
	ErrorMessage *string
	MatchingACLs []DeleteAclsResponseMatchingACL
}

// DeleteAclsResponse is the decoded per-filter deletion result.
type DeleteAclsResponse struct {
	versionedResp

	ThrottleTimeMs int32
	FilterResults  []DeleteAclsResponseFilterResult
}

func (*DeleteAclsResponse) Key() int16                { return apiKeyDeleteAcls }
func (r *DeleteAclsResponse) Throttle() (int32, bool) { return r.ThrottleTimeMs, true }

func (r *DeleteAclsResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	r.ThrottleTimeMs = b.Int32()
	n := b.ArrayLen()
	for i := int32(0); i < n; i++ {
		fr := DeleteAclsResponseFilterResult{
			ErrorCode:    b.Int16(),
			ErrorMessage: b.NullableString(),
		}
		nm := b.ArrayLen()
		for j := int32(0); j < nm; j++ {
			m := DeleteAclsResponseMatchingACL{
				ErrorCode:    b.Int16(),
				ErrorMessage: b.NullableString(),
				ResourceType: b.Int8(),
				ResourceName: b.String(),
			}
			if r.Version >= 1 {
				m.ResourcePatternType = b.Int8()
			}
			m.Principal = b.String()
			m.Host = b.String()
			m.Operation = b.Int8()
			m.PermissionType = b.Int8()
			fr.MatchingACLs = append(fr.MatchingACLs, m)
		}
		r.FilterResults = append(r.FilterResults, fr)
	}
	return b.Complete()
}

var deleteAclsFamily = Family{
	Versions: []int16{0, 1, 2, 3},
	protocol: func(version int16) Request {
		return &DeleteAclsRequest{versionedReq: versionedReq{Version: version}}
	},
}
