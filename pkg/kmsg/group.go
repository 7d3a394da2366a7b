package kmsg

import "github.com/kafkasaur/kgo/pkg/kbin"

const (
	apiKeyFindCoordinator = 10
	apiKeyJoinGroup       = 11
	apiKeyHeartbeat       = 12
	apiKeyLeaveGroup      = 13
	apiKeySyncGroup       = 14
	apiKeyDescribeGroups  = 15
	apiKeyListGroups      = 16
	apiKeyDeleteGroups    = 42
)

// FindCoordinatorRequest locates the coordinator broker for a group or
// transactional ID. Broker.GroupCoordinator (pkg/kgo) wraps this.
type FindCoordinatorRequest struct {
	versionedReq

	CoordinatorKey string
	KeyType        int8 // 0 = group, 1 = transaction
}

func (*FindCoordinatorRequest) Key() int16         { return apiKeyFindCoordinator }
func (*FindCoordinatorRequest) MaxVersion() int16  { return 3 }
func (r *FindCoordinatorRequest) IsFlexible() bool { return r.Version >= 3 }

func (r *FindCoordinatorRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendString(dst, r.CoordinatorKey)
	if r.Version >= 1 {
		dst = kbin.AppendInt8(dst, r.KeyType)
	}
	return dst
}

func (r *FindCoordinatorRequest) ResponseKind() Response {
	return &FindCoordinatorResponse{versionedResp: versionedResp{Version: r.Version}}
}

// FindCoordinatorResponse names the coordinator broker for the requested
// key.
type FindCoordinatorResponse struct {
	versionedResp

	ThrottleTimeMs int32
	ErrorCode      int16
	NodeID         int32
	Host           string
	Port           int32
}

func (*FindCoordinatorResponse) Key() int16 { return apiKeyFindCoordinator }

func (r *FindCoordinatorResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	if r.Version >= 1 {
		r.ThrottleTimeMs = b.Int32()
	}
	r.ErrorCode = b.Int16()
	if r.Version >= 1 {
		b.NullableString() // error_message
	}
	r.NodeID = b.Int32()
	r.Host = b.String()
	r.Port = b.Int32()
	return b.Complete()
}

var findCoordinatorFamily = Family{
	Versions: []int16{0, 1, 2, 3},
	protocol: func(version int16) Request {
		return &FindCoordinatorRequest{versionedReq: versionedReq{Version: version}}
	},
}

// JoinGroupRequestProtocol is one group protocol this member supports.
type JoinGroupRequestProtocol struct {
	Name     string
	Metadata []byte
}

// JoinGroupRequest. Defaults per spec.md §6: MemberID="", ProtocolType
// "consumer".
//
// On the typed MEMBER_ID_REQUIRED error, Broker.JoinGroup (pkg/kgo) retries
// exactly once with the broker-supplied member ID; see spec.md §4.1 and
// §7.
type JoinGroupRequest struct {
	versionedReq

	Group            string
	SessionTimeout   int32
	RebalanceTimeout int32
	MemberID         string
	GroupInstanceID  *string
	ProtocolType     string
	Protocols        []JoinGroupRequestProtocol
}

func (*JoinGroupRequest) Key() int16         { return apiKeyJoinGroup }
func (*JoinGroupRequest) MaxVersion() int16  { return 9 }
func (r *JoinGroupRequest) IsFlexible() bool { return r.Version >= 6 }

func (r *JoinGroupRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendString(dst, r.Group)
	dst = kbin.AppendInt32(dst, r.SessionTimeout)
	if r.Version >= 1 {
		dst = kbin.AppendInt32(dst, r.RebalanceTimeout)
	}
	dst = kbin.AppendString(dst, r.MemberID)
	if r.Version >= 5 {
		dst = kbin.AppendNullableString(dst, r.GroupInstanceID)
	}
	dst = kbin.AppendString(dst, r.ProtocolType)
	dst = kbin.AppendArrayLen(dst, len(r.Protocols))
	for _, p := range r.Protocols {
		dst = kbin.AppendString(dst, p.Name)
		dst = kbin.AppendBytes(dst, p.Metadata)
	}
	return dst
}

func (r *JoinGroupRequest) ResponseKind() Response {
	return &JoinGroupResponse{versionedResp: versionedResp{Version: r.Version}}
}

// JoinGroupResponseMember is one other member's protocol metadata, returned
// only to the elected leader.
type JoinGroupResponseMember struct {
	MemberID        string
	GroupInstanceID *string
	Metadata        []byte
}

// JoinGroupResponse. A MEMBER_ID_REQUIRED ErrorCode (79) carries the
// assigned MemberID for the caller's retry.
type JoinGroupResponse struct {
	versionedResp

	ThrottleTimeMs int32
	ErrorCode      int16
	GenerationID   int32
	ProtocolType   *string
	ProtocolName   *string
	Leader         string
	MemberID       string
	Members        []JoinGroupResponseMember
}

func (*JoinGroupResponse) Key() int16                { return apiKeyJoinGroup }
func (r *JoinGroupResponse) Throttle() (int32, bool) { return r.ThrottleTimeMs, false }

func (r *JoinGroupResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	if r.Version >= 2 {
		r.ThrottleTimeMs = b.Int32()
	}
	r.ErrorCode = b.Int16()
	r.GenerationID = b.Int32()
	if r.Version >= 7 {
		r.ProtocolType = b.NullableString()
	}
	if r.Version >= 7 {
		r.ProtocolName = b.NullableString()
	} else {
		name := b.String()
		r.ProtocolName = &name
	}
	r.Leader = b.String()
	r.MemberID = b.String()
	n := b.ArrayLen()
	for i := int32(0); i < n; i++ {
		m := JoinGroupResponseMember{MemberID: b.String()}
		if r.Version >= 5 {
			m.GroupInstanceID = b.NullableString()
		}
		m.Metadata = b.Bytes()
		r.Members = append(r.Members, m)
	}
	return b.Complete()
}

var joinGroupFamily = Family{
	Versions: []int16{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
	protocol: func(version int16) Request {
		return &JoinGroupRequest{
			versionedReq: versionedReq{Version: version},
			MemberID:     "",
			ProtocolType: "consumer",
		}
	},
}

// HeartbeatRequest keeps a group member's session alive between rebalances.
type HeartbeatRequest struct {
	versionedReq

	Group           string
	Generation      int32
	MemberID        string
	GroupInstanceID *string
}

func (*HeartbeatRequest) Key() int16         { return apiKeyHeartbeat }
func (*HeartbeatRequest) MaxVersion() int16  { return 4 }
func (r *HeartbeatRequest) IsFlexible() bool { return r.Version >= 4 }

func (r *HeartbeatRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendString(dst, r.Group)
	dst = kbin.AppendInt32(dst, r.Generation)
	dst = kbin.AppendString(dst, r.MemberID)
	if r.Version >= 3 {
		dst = kbin.AppendNullableString(dst, r.GroupInstanceID)
	}
	return dst
}

func (r *HeartbeatRequest) ResponseKind() Response {
	return &HeartbeatResponse{versionedResp: versionedResp{Version: r.Version}}
}

// HeartbeatResponse reports whether the member's generation is still valid.
type HeartbeatResponse struct {
	versionedResp

	ThrottleTimeMs int32
	ErrorCode      int16
}

func (*HeartbeatResponse) Key() int16                { return apiKeyHeartbeat }
func (r *HeartbeatResponse) Throttle() (int32, bool) { return r.ThrottleTimeMs, false }

func (r *HeartbeatResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	if r.Version >= 1 {
		r.ThrottleTimeMs = b.Int32()
	}
	r.ErrorCode = b.Int16()
	return b.Complete()
}

var heartbeatFamily = Family{
	Versions: []int16{0, 1, 2, 3, 4},
	protocol: func(version int16) Request {
		return &HeartbeatRequest{versionedReq: versionedReq{Version: version}}
	},
}

// SyncGroupRequestAssignment is the leader's assignment for one member.
type SyncGroupRequestAssignment struct {
	MemberID   string
	Assignment []byte
}

// SyncGroupRequest distributes the leader's partition assignment to the
// group.
type SyncGroupRequest struct {
	versionedReq

	Group           string
	Generation      int32
	MemberID        string
	GroupInstanceID *string
	ProtocolType    *string
	ProtocolName    *string
	Assignments     []SyncGroupRequestAssignment
}

func (*SyncGroupRequest) Key() int16         { return apiKeySyncGroup }
func (*SyncGroupRequest) MaxVersion() int16  { return 5 }
func (r *SyncGroupRequest) IsFlexible() bool { return r.Version >= 4 }

func (r *SyncGroupRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendString(dst, r.Group)
	dst = kbin.AppendInt32(dst, r.Generation)
	dst = kbin.AppendString(dst, r.MemberID)
	if r.Version >= 3 {
		dst = kbin.AppendNullableString(dst, r.GroupInstanceID)
	}
	if r.Version >= 5 {
		dst = kbin.AppendNullableString(dst, r.ProtocolType)
		dst = kbin.AppendNullableString(dst, r.ProtocolName)
	}
	dst = kbin.AppendArrayLen(dst, len(r.Assignments))
	for _, a := range r.Assignments {
		dst = kbin.AppendString(dst, a.MemberID)
		dst = kbin.AppendBytes(dst, a.Assignment)
	}
	return dst
}

func (r *SyncGroupRequest) ResponseKind() Response {
	return &SyncGroupResponse{versionedResp: versionedResp{Version: r.Version}}
}

// SyncGroupResponse carries this member's own assignment.
type SyncGroupResponse struct {
	versionedResp

	ThrottleTimeMs int32
	ErrorCode      int16
	ProtocolType   *string
	ProtocolName   *string
	Assignment     []byte
}

func (*SyncGroupResponse) Key() int16                { return apiKeySyncGroup }
func (r *SyncGroupResponse) Throttle() (int32, bool) { return r.ThrottleTimeMs, false }

func (r *SyncGroupResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	if r.Version >= 1 {
		r.ThrottleTimeMs = b.Int32()
	}
	r.ErrorCode = b.Int16()
	if r.Version >= 5 {
		r.ProtocolType = b.NullableString()
		r.ProtocolName = b.NullableString()
	}
	r.Assignment = b.Bytes()
	return b.Complete()
}

var syncGroupFamily = Family{
	Versions: []int16{0, 1, 2, 3, 4, 5},
	protocol: func(version int16) Request {
		return &SyncGroupRequest{versionedReq: versionedReq{Version: version}}
	},
}

// LeaveGroupRequestMember is one member leaving the group (v3+ supports
// batched departures).
type LeaveGroupRequestMember struct {
	MemberID        string
	GroupInstanceID *string
}

// LeaveGroupRequest removes one or more members from a group immediately,
// rather than waiting for their session to time out.
type LeaveGroupRequest struct {
	versionedReq

	Group    string
	MemberID string
	Members  []LeaveGroupRequestMember
}

func (*LeaveGroupRequest) Key() int16         { return apiKeyLeaveGroup }
func (*LeaveGroupRequest) MaxVersion() int16  { return 5 }
func (r *LeaveGroupRequest) IsFlexible() bool { return r.Version >= 4 }

func (r *LeaveGroupRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendString(dst, r.Group)
	if r.Version < 3 {
		dst = kbin.AppendString(dst, r.MemberID)
		return dst
	}
	dst = kbin.AppendArrayLen(dst, len(r.Members))
	for _, m := range r.Members {
		dst = kbin.AppendString(dst, m.MemberID)
		dst = kbin.AppendNullableString(dst, m.GroupInstanceID)
	}
	return dst
}

func (r *LeaveGroupRequest) ResponseKind() Response {
	return &LeaveGroupResponse{versionedResp: versionedResp{Version: r.Version}}
}

// LeaveGroupResponse acknowledges the departure(s).
type LeaveGroupResponse struct {
	versionedResp

	ThrottleTimeMs int32
	ErrorCode      int16
}

func (*LeaveGroupResponse) Key() int16                { return apiKeyLeaveGroup }
func (r *LeaveGroupResponse) Throttle() (int32, bool) { return r.ThrottleTimeMs, false }

func (r *LeaveGroupResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	if r.Version >= 1 {
		r.ThrottleTimeMs = b.Int32()
	}
	r.ErrorCode = b.Int16()
	return b.Complete()
}

var leaveGroupFamily = Family{
	Versions: []int16{0, 1, 2, 3, 4, 5},
	protocol: func(version int16) Request {
		return &LeaveGroupRequest{versionedReq: versionedReq{Version: version}}
	},
}

// DescribeGroupsRequest asks for the full state of one or more groups.
type DescribeGroupsRequest struct {
	versionedReq

	Groups                     []string
	IncludeAuthorizedOperations bool
}

func (*DescribeGroupsRequest) Key() int16         { return apiKeyDescribeGroups }
func (*DescribeGroupsRequest) MaxVersion() int16  { return 5 }
func (r *DescribeGroupsRequest) IsFlexible() bool { return r.Version >= 5 }

func (r *DescribeGroupsRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendArrayLen(dst, len(r.Groups))
	for _, g := range r.Groups {
		dst = kbin.AppendString(dst, g)
	}
	if r.Version >= 3 {
		dst = kbin.AppendBool(dst, r.IncludeAuthorizedOperations)
	}
	return dst
}

func (r *DescribeGroupsRequest) ResponseKind() Response {
	return &DescribeGroupsResponse{versionedResp: versionedResp{Version: r.Version}}
}

// DescribeGroupsResponseGroupMember is one member's metadata/assignment.
type DescribeGroupsResponseGroupMember struct {
	MemberID   string
	ClientID   string
	ClientHost string
	Metadata   []byte
	Assignment []byte
}

// DescribeGroupsResponseGroup is one group's full state.
type DescribeGroupsResponseGroup struct {
	ErrorCode    int16
	Group        string
	State        string
	ProtocolType string
	Protocol     string
	Members      []DescribeGroupsResponseGroupMember
}

// DescribeGroupsResponse is the decoded group-state listing.
type DescribeGroupsResponse struct {
	versionedResp

	ThrottleTimeMs int32
	Groups         []DescribeGroupsResponseGroup
}

func (*DescribeGroupsResponse) Key() int16                { return apiKeyDescribeGroups }
func (r *DescribeGroupsResponse) Throttle() (int32, bool) { return r.ThrottleTimeMs, false }

func (r *DescribeGroupsResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	if r.Version >= 1 {
		r.ThrottleTimeMs = b.Int32()
	}
	n := b.ArrayLen()
	for i := int32(0); i < n; i++ {
		g := DescribeGroupsResponseGroup{
			ErrorCode:    b.Int16(),
			Group:        b.String(),
			State:        b.String(),
			ProtocolType: b.String(),
			Protocol:     b.String(),
		}
		nm := b.ArrayLen()
		for j := int32(0); j < nm; j++ {
			g.Members = append(g.Members, DescribeGroupsResponseGroupMember{
				MemberID:   b.String(),
				ClientID:   b.String(),
				ClientHost: b.String(),
				Metadata:   b.Bytes(),
				Assignment: b.Bytes(),
			})
		}
		r.Groups = append(r.Groups, g)
	}
	return b.Complete()
}

var describeGroupsFamily = Family{
	Versions: []int16{0, 1, 2, 3, 4, 5},
	protocol: func(version int16) Request {
		return &DescribeGroupsRequest{versionedReq: versionedReq{Version: version}}
	},
}

// ListGroupsRequest lists every group known to the coordinator.
type ListGroupsRequest struct {
	versionedReq

	StatesFilter []string
}

func (*ListGroupsRequest) Key() int16         { return apiKeyListGroups }
func (*ListGroupsRequest) MaxVersion() int16  { return 4 }
func (r *ListGroupsRequest) IsFlexible() bool { return r.Version >= 3 }

func (r *ListGroupsRequest) AppendTo(dst []byte) []byte {
	if r.Version >= 4 {
		dst = kbin.AppendArrayLen(dst, len(r.StatesFilter))
		for _, s := range r.StatesFilter {
			dst = kbin.AppendString(dst, s)
		}
	}
	return dst
}

func (r *ListGroupsRequest) ResponseKind() Response {
	return &ListGroupsResponse{versionedResp: versionedResp{Version: r.Version}}
}

// ListGroupsResponseGroup is one group's id/protocol summary.
type ListGroupsResponseGroup struct {
	Group        string
	ProtocolType string
	State        string
}

// ListGroupsResponse is the decoded group listing.
type ListGroupsResponse struct {
	versionedResp

	ThrottleTimeMs int32
	ErrorCode      int16
	Groups         []ListGroupsResponseGroup
}

func (*ListGroupsResponse) Key() int16                { return apiKeyListGroups }
func (r *ListGroupsResponse) Throttle() (int32, bool) { return r.ThrottleTimeMs, false }

func (r *ListGroupsResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	if r.Version >= 1 {
		r.ThrottleTimeMs = b.Int32()
	}
	r.ErrorCode = b.Int16()
	n := b.ArrayLen()
	for i := int32(0); i < n; i++ {
		g := ListGroupsResponseGroup{
			Group:        b.String(),
			ProtocolType: b.String(),
		}
		if r.Version >= 4 {
			g.State = b.String()
		}
		r.Groups = append(r.Groups, g)
	}
	return b.Complete()
}

var listGroupsFamily = Family{
	Versions: []int16{0, 1, 2, 3, 4},
	protocol: func(version int16) Request {
		return &ListGroupsRequest{versionedReq: versionedReq{Version: version}}
	},
}

// DeleteGroupsRequest deletes one or more empty consumer groups.
type DeleteGroupsRequest struct {
	versionedReq

	Groups []string
}

func (*DeleteGroupsRequest) Key() int16         { return apiKeyDeleteGroups }
func (*DeleteGroupsRequest) MaxVersion() int16  { return 2 }
func (r *DeleteGroupsRequest) IsFlexible() bool { return r.Version >= 2 }

func (r *DeleteGroupsRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendArrayLen(dst, len(r.Groups))
	for _, g := range r.Groups {
		dst = kbin.AppendString(dst, g)
	}
	return dst
}

func (r *DeleteGroupsRequest) ResponseKind() Response {
	return &DeleteGroupsResponse{versionedResp: versionedResp{Version: r.Version}}
}

// DeleteGroupsResponseGroup is one group's deletion result.
type DeleteGroupsResponseGroup struct {
	Group     string
	ErrorCode int16
}

// DeleteGroupsResponse is the decoded per-group deletion result.
type DeleteGroupsResponse struct {
	versionedResp

	ThrottleTimeMs int32
	Groups         []DeleteGroupsResponseGroup
}

func (*DeleteGroupsResponse) Key() int16                { return apiKeyDeleteGroups }
func (r *DeleteGroupsResponse) Throttle() (int32, bool) { return r.ThrottleTimeMs, false }

func (r *DeleteGroupsResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	r.ThrottleTimeMs = b.Int32()
	n := b.ArrayLen()
	for i := int32(0); i < n; i++ {
		r.Groups = append(r.Groups, DeleteGroupsResponseGroup{
			Group:     b.String(),
			ErrorCode: b.Int16(),
		})
	}
	return b.Complete()
}

var deleteGroupsFamily = Family{
	Versions: []int16{0, 1, 2},
	protocol: func(version int16) Request {
		return &DeleteGroupsRequest{versionedReq: versionedReq{Version: version}}
	},
}
