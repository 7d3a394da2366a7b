package kmsg

import "github.com/kafkasaur/kgo/pkg/kbin"

const apiKeyFetch = 1

// FetchRequestTopicPartition is one partition within a FetchRequestTopic.
type FetchRequestTopicPartition struct {
	Partition          int32
	CurrentLeaderEpoch int32
	FetchOffset        int64
	LogStartOffset     int64
	PartitionMaxBytes  int32
}

// FetchRequestTopic is one topic's partitions within a FetchRequest.
type FetchRequestTopic struct {
	Topic      string
	Partitions []FetchRequestTopicPartition
}

// FetchRequestForgottenTopic lists partitions to drop from an incremental
// fetch session (v7+).
type FetchRequestForgottenTopic struct {
	Topic      string
	Partitions []int32
}

// FetchRequest is the wire encoding spec.md §6 spells out in full for v9:
//
//	replicaId:i32, maxWaitTime:i32, minBytes:i32, maxBytes:i32,
//	isolationLevel:i8, sessionId:i32, sessionEpoch:i32,
//	topics:[{topic:string, partitions:[{partition:i32, currentLeaderEpoch:i32,
//	fetchOffset:i64, logStartOffset:i64, partitionMaxBytes:i32}]}],
//	forgottenTopics:[{topic:string, partitions:[i32]}]
//
// Broker.Fetch (pkg/kgo) flattens, shuffles and re-consolidates the caller's
// topic/partition list before building this request (KIP-74 fairness); see
// spec.md §4.1.
type FetchRequest struct {
	versionedReq

	ReplicaID       int32
	MaxWaitTime     int32
	MinBytes        int32
	MaxBytes        int32
	IsolationLevel  int8
	SessionID       int32
	SessionEpoch    int32
	Topics          []FetchRequestTopic
	ForgottenTopics []FetchRequestForgottenTopic
	RackID          string
}

func (*FetchRequest) Key() int16         { return apiKeyFetch }
func (*FetchRequest) MaxVersion() int16  { return 11 }
func (r *FetchRequest) IsFlexible() bool { return r.Version >= 12 }

func (r *FetchRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendInt32(dst, r.ReplicaID)
	dst = kbin.AppendInt32(dst, r.MaxWaitTime)
	dst = kbin.AppendInt32(dst, r.MinBytes)
	if r.Version >= 3 {
		dst = kbin.AppendInt32(dst, r.MaxBytes)
	}
	if r.Version >= 4 {
		dst = kbin.AppendInt8(dst, r.IsolationLevel)
	}
	if r.Version >= 7 {
		dst = kbin.AppendInt32(dst, r.SessionID)
		dst = kbin.AppendInt32(dst, r.SessionEpoch)
	}
	dst = kbin.AppendArrayLen(dst, len(r.Topics))
	for _, t := range r.Topics {
		dst = kbin.AppendString(dst, t.Topic)
		dst = kbin.AppendArrayLen(dst, len(t.Partitions))
		for _, p := range t.Partitions {
			dst = kbin.AppendInt32(dst, p.Partition)
			if r.Version >= 9 {
				dst = kbin.AppendInt32(dst, p.CurrentLeaderEpoch)
			}
			dst = kbin.AppendInt64(dst, p.FetchOffset)
			if r.Version >= 5 {
				dst = kbin.AppendInt64(dst, p.LogStartOffset)
			}
			dst = kbin.AppendInt32(dst, p.PartitionMaxBytes)
		}
	}
	if r.Version >= 7 {
		dst = kbin.AppendArrayLen(dst, len(r.ForgottenTopics))
		for _, t := range r.ForgottenTopics {
			dst = kbin.AppendString(dst, t.Topic)
			dst = kbin.AppendArrayLen(dst, len(t.Partitions))
			for _, p := range t.Partitions {
				dst = kbin.AppendInt32(dst, p)
			}
		}
	}
	if r.Version >= 11 {
		dst = kbin.AppendString(dst, r.RackID)
	}
	return dst
}

func (r *FetchRequest) ResponseKind() Response {
	return &FetchResponse{versionedResp: versionedResp{Version: r.Version}}
}

// FetchResponseTopicPartition carries one partition's fetched records (as
// raw record-batch bytes; decompression is delegated to pkg/compress).
type FetchResponseTopicPartition struct {
	Partition       int32
	ErrorCode       int16
	HighWatermark   int64
	LastStableOffset int64
	LogStartOffset  int64
	RecordsBytes    []byte
}

// FetchResponseTopic is one topic's fetched partitions.
type FetchResponseTopic struct {
	Topic      string
	Partitions []FetchResponseTopicPartition
}

// FetchResponse is the decoded fetch response.
type FetchResponse struct {
	versionedResp

	ThrottleTimeMs int32
	ErrorCode      int16
	SessionID      int32
	Topics         []FetchResponseTopic
}

func (*FetchResponse) Key() int16                { return apiKeyFetch }
func (r *FetchResponse) Throttle() (int32, bool) { return r.ThrottleTimeMs, false }

func (r *FetchResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	if r.Version >= 1 {
		r.ThrottleTimeMs = b.Int32()
	}
	if r.Version >= 7 {
		r.ErrorCode = b.Int16()
		r.SessionID = b.Int32()
	}
	nt := b.ArrayLen()
	for i := int32(0); i < nt; i++ {
		t := FetchResponseTopic{Topic: b.String()}
		np := b.ArrayLen()
		for j := int32(0); j < np; j++ {
			p := FetchResponseTopicPartition{
				Partition:     b.Int32(),
				ErrorCode:     b.Int16(),
				HighWatermark: b.Int64(),
			}
			if r.Version >= 4 {
				p.LastStableOffset = b.Int64()
				if r.Version >= 5 {
					p.LogStartOffset = b.Int64()
				}
				na := b.ArrayLen() // aborted transactions
				for k := int32(0); k < na; k++ {
					b.Int64()
					b.Int64()
				}
			}
			if r.Version >= 11 {
				b.Int32() // preferred read replica
			}
			p.RecordsBytes = b.Bytes()
			t.Partitions = append(t.Partitions, p)
		}
		r.Topics = append(r.Topics, t)
	}
	return b.Complete()
}

var fetchFamily = Family{
	Versions: []int16{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	protocol: func(version int16) Request {
		return &FetchRequest{
			versionedReq:   versionedReq{Version: version},
			ReplicaID:      -1,
			IsolationLevel: 1,
			MaxWaitTime:    5000,
			MinBytes:       1,
			MaxBytes:       10485760,
			SessionID:      0,
			SessionEpoch:   -1,
		}
	},
}
