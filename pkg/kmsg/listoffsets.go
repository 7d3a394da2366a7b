package kmsg

import "github.com/kafkasaur/kgo/pkg/kbin"

const apiKeyListOffsets = 2

// ListOffsetsRequestTopicPartition asks for the offset nearest Timestamp
// (or, at v0, up to MaxNumOffsets offsets at or before it).
type ListOffsetsRequestTopicPartition struct {
	Partition          int32
	CurrentLeaderEpoch int32
	Timestamp          int64
	MaxNumOffsets      int32
}

// ListOffsetsRequestTopic is one topic's partitions to list offsets for.
type ListOffsetsRequestTopic struct {
	Topic      string
	Partitions []ListOffsetsRequestTopicPartition
}

// ListOffsetsRequest. Default IsolationLevel per spec.md §6: READ_COMMITTED
// (1).
type ListOffsetsRequest struct {
	versionedReq

	ReplicaID      int32
	IsolationLevel int8
	Topics         []ListOffsetsRequestTopic
}

func (*ListOffsetsRequest) Key() int16         { return apiKeyListOffsets }
func (*ListOffsetsRequest) MaxVersion() int16  { return 5 }
func (r *ListOffsetsRequest) IsFlexible() bool { return r.Version >= 6 }

func (r *ListOffsetsRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendInt32(dst, r.ReplicaID)
	if r.Version >= 2 {
		dst = kbin.AppendInt8(dst, r.IsolationLevel)
	}
	dst = kbin.AppendArrayLen(dst, len(r.Topics))
	for _, t := range r.Topics {
		dst = kbin.AppendString(dst, t.Topic)
		dst = kbin.AppendArrayLen(dst, len(t.Partitions))
		for _, p := range t.Partitions {
			dst = kbin.AppendInt32(dst, p.Partition)
			if r.Version >= 4 {
				dst = kbin.AppendInt32(dst, p.CurrentLeaderEpoch)
			}
			dst = kbin.AppendInt64(dst, p.Timestamp)
			if r.Version == 0 {
				dst = kbin.AppendInt32(dst, p.MaxNumOffsets)
			}
		}
	}
	return dst
}

func (r *ListOffsetsRequest) ResponseKind() Response {
	return &ListOffsetsResponse{versionedResp: versionedResp{Version: r.Version}}
}

// ListOffsetsResponseTopicPartition is one partition's offset result.
//
// At v0 the wire carries Offsets, an array of candidate offsets; pkg/kgo
// normalizes this to the scalar Offset field (the last element) for every
// version uniformly, per spec.md §4.1 and §8 property 10.
type ListOffsetsResponseTopicPartition struct {
	Partition   int32
	ErrorCode   int16
	Timestamp   int64
	Offsets     []int64 // only populated for a v0 wire response
	Offset      int64
	LeaderEpoch int32
}

// ListOffsetsResponseTopic is one topic's per-partition offset results.
type ListOffsetsResponseTopic struct {
	Topic      string
	Partitions []ListOffsetsResponseTopicPartition
}

// ListOffsetsResponse is the decoded offset listing.
type ListOffsetsResponse struct {
	versionedResp

	ThrottleTimeMs int32
	Topics         []ListOffsetsResponseTopic
}

func (*ListOffsetsResponse) Key() int16                { return apiKeyListOffsets }
func (r *ListOffsetsResponse) Throttle() (int32, bool) { return r.ThrottleTimeMs, false }

func (r *ListOffsetsResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	if r.Version >= 2 {
		r.ThrottleTimeMs = b.Int32()
	}
	nt := b.ArrayLen()
	for i := int32(0); i < nt; i++ {
		t := ListOffsetsResponseTopic{Topic: b.String()}
		np := b.ArrayLen()
		for j := int32(0); j < np; j++ {
			p := ListOffsetsResponseTopicPartition{Partition: b.Int32(), ErrorCode: b.Int16()}
			if r.Version == 0 {
				no := b.ArrayLen()
				for k := int32(0); k < no; k++ {
					p.Offsets = append(p.Offsets, b.Int64())
				}
			} else {
				p.Timestamp = b.Int64()
				p.Offset = b.Int64()
				if r.Version >= 4 {
					p.LeaderEpoch = b.Int32()
				}
			}
			t.Partitions = append(t.Partitions, p)
		}
		r.Topics = append(r.Topics, t)
	}
	return b.Complete()
}

// NormalizeOffsets replaces each partition's Offsets array with the scalar
// Offset field (its last element), per spec.md §4.1's listOffsets
// post-processing. Safe to call on a response that is already normalized.
func (r *ListOffsetsResponse) NormalizeOffsets() {
	for ti := range r.Topics {
		parts := r.Topics[ti].Partitions
		for pi := range parts {
			if n := len(parts[pi].Offsets); n > 0 {
				parts[pi].Offset = parts[pi].Offsets[n-1]
				parts[pi].Offsets = nil
			}
		}
	}
}

var listOffsetsFamily = Family{
	Versions: []int16{0, 1, 2, 3, 4, 5},
	protocol: func(version int16) Request {
		return &ListOffsetsRequest{
			versionedReq:   versionedReq{Version: version},
			ReplicaID:      -1,
			IsolationLevel: 1,
		}
	},
}
