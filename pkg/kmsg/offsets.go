package kmsg

import "github.com/kafkasaur/kgo/pkg/kbin"

const (
	apiKeyOffsetCommit = 8
	apiKeyOffsetFetch  = 9
)

// OffsetCommitRequestTopicPartition is one partition's committed offset.
type OffsetCommitRequestTopicPartition struct {
	Partition         int32
	Offset            int64
	LeaderEpoch       int32
	Metadata          *string
}

// OffsetCommitRequestTopic is one topic's partitions to commit.
type OffsetCommitRequestTopic struct {
	Topic      string
	Partitions []OffsetCommitRequestTopicPartition
}

// OffsetCommitRequest. Default RetentionTime per spec.md §6: -1 (broker
// default).
type OffsetCommitRequest struct {
	versionedReq

	Group         string
	Generation    int32
	MemberID      string
	RetentionTime int64
	Topics        []OffsetCommitRequestTopic
}

func (*OffsetCommitRequest) Key() int16         { return apiKeyOffsetCommit }
func (*OffsetCommitRequest) MaxVersion() int16  { return 8 }
func (r *OffsetCommitRequest) IsFlexible() bool { return r.Version >= 8 }

func (r *OffsetCommitRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendString(dst, r.Group)
	if r.Version >= 1 {
		dst = kbin.AppendInt32(dst, r.Generation)
		dst = kbin.AppendString(dst, r.MemberID)
	}
	if r.Version >= 2 && r.Version <= 4 {
		dst = kbin.AppendInt64(dst, r.RetentionTime)
	}
	dst = kbin.AppendArrayLen(dst, len(r.Topics))
	for _, t := range r.Topics {
		dst = kbin.AppendString(dst, t.Topic)
		dst = kbin.AppendArrayLen(dst, len(t.Partitions))
		for _, p := range t.Partitions {
			dst = kbin.AppendInt32(dst, p.Partition)
			dst = kbin.AppendInt64(dst, p.Offset)
			if r.Version >= 6 {
				dst = kbin.AppendInt32(dst, p.LeaderEpoch)
			}
			dst = kbin.AppendNullableString(dst, p.Metadata)
		}
	}
	return dst
}

func (r *OffsetCommitRequest) ResponseKind() Response {
	return &OffsetCommitResponse{versionedResp: versionedResp{Version: r.Version}}
}

// OffsetCommitResponseTopicPartition is one partition's commit result.
type OffsetCommitResponseTopicPartition struct {
	Partition int32
	ErrorCode int16
}

// OffsetCommitResponseTopic is one topic's per-partition commit results.
type OffsetCommitResponseTopic struct {
	Topic      string
	Partitions []OffsetCommitResponseTopicPartition
}

// OffsetCommitResponse is the decoded commit acknowledgement.
type OffsetCommitResponse struct {
	versionedResp

	ThrottleTimeMs int32
	Topics         []OffsetCommitResponseTopic
}

func (*OffsetCommitResponse) Key() int16                { return apiKeyOffsetCommit }
func (r *OffsetCommitResponse) Throttle() (int32, bool) { return r.ThrottleTimeMs, false }

func (r *OffsetCommitResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	if r.Version >= 3 {
		r.ThrottleTimeMs = b.Int32()
	}
	nt := b.ArrayLen()
	for i := int32(0); i < nt; i++ {
		t := OffsetCommitResponseTopic{Topic: b.String()}
		np := b.ArrayLen()
		for j := int32(0); j < np; j++ {
			t.Partitions = append(t.Partitions, OffsetCommitResponseTopicPartition{
				Partition: b.Int32(),
				ErrorCode: b.Int16(),
			})
		}
		r.Topics = append(r.Topics, t)
	}
	return b.Complete()
}

var offsetCommitFamily = Family{
	Versions: []int16{0, 1, 2, 3, 4, 5, 6, 7, 8},
	protocol: func(version int16) Request {
		return &OffsetCommitRequest{versionedReq: versionedReq{Version: version}, RetentionTime: -1}
	},
}

// OffsetFetchRequestTopic names partitions within a topic to fetch committed
// offsets for; a nil Topics slice on OffsetFetchRequest means "all topics"
// (v2+ only).
type OffsetFetchRequestTopic struct {
	Topic      string
	Partitions []int32
}

// OffsetFetchRequest asks for the last committed offsets for a group.
type OffsetFetchRequest struct {
	versionedReq

	Group  string
	Topics []OffsetFetchRequestTopic
}

func (*OffsetFetchRequest) Key() int16         { return apiKeyOffsetFetch }
func (*OffsetFetchRequest) MaxVersion() int16  { return 8 }
func (r *OffsetFetchRequest) IsFlexible() bool { return r.Version >= 6 }

func (r *OffsetFetchRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendString(dst, r.Group)
	if r.Topics == nil && r.Version >= 2 {
		dst = kbin.AppendInt32(dst, -1)
		return dst
	}
	dst = kbin.AppendArrayLen(dst, len(r.Topics))
	for _, t := range r.Topics {
		dst = kbin.AppendString(dst, t.Topic)
		dst = kbin.AppendArrayLen(dst, len(t.Partitions))
		for _, p := range t.Partitions {
			dst = kbin.AppendInt32(dst, p)
		}
	}
	return dst
}

func (r *OffsetFetchRequest) ResponseKind() Response {
	return &OffsetFetchResponse{versionedResp: versionedResp{Version: r.Version}}
}

// OffsetFetchResponseTopicPartition is one partition's committed offset.
type OffsetFetchResponseTopicPartition struct {
	Partition   int32
	Offset      int64
	LeaderEpoch int32
	Metadata    *string
	ErrorCode   int16
}

// OffsetFetchResponseTopic is one topic's per-partition committed offsets.
type OffsetFetchResponseTopic struct {
	Topic      string
	Partitions []OffsetFetchResponseTopicPartition
}

// OffsetFetchResponse is the decoded committed-offset listing.
type OffsetFetchResponse struct {
	versionedResp

	ThrottleTimeMs int32
	Topics         []OffsetFetchResponseTopic
	ErrorCode      int16
}

func (*OffsetFetchResponse) Key() int16                { return apiKeyOffsetFetch }
func (r *OffsetFetchResponse) Throttle() (int32, bool) { return r.ThrottleTimeMs, false }

func (r *OffsetFetchResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	nt := b.ArrayLen()
	for i := int32(0); i < nt; i++ {
		t := OffsetFetchResponseTopic{Topic: b.String()}
		np := b.ArrayLen()
		for j := int32(0); j < np; j++ {
			p := OffsetFetchResponseTopicPartition{
				Partition: b.Int32(),
				Offset:    b.Int64(),
			}
			if r.Version >= 5 {
				p.LeaderEpoch = b.Int32()
			}
			p.Metadata = b.NullableString()
			p.ErrorCode = b.Int16()
			t.Partitions = append(t.Partitions, p)
		}
		r.Topics = append(r.Topics, t)
	}
	if r.Version >= 2 {
		r.ErrorCode = b.Int16()
	}
	if r.Version >= 3 {
		r.ThrottleTimeMs = b.Int32()
	}
	return b.Complete()
}

var offsetFetchFamily = Family{
	Versions: []int16{0, 1, 2, 3, 4, 5, 6, 7, 8},
	protocol: func(version int16) Request {
		return &OffsetFetchRequest{versionedReq: versionedReq{Version: version}}
	},
}
