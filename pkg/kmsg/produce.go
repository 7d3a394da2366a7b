package kmsg

import "github.com/kafkasaur/kgo/pkg/kbin"

const apiKeyProduce = 0

// ProduceRequestTopicPartition is one partition's record batch to append.
type ProduceRequestTopicPartition struct {
	Partition int32
	// RecordsBytes is an already-encoded (and, if configured, already
	// compressed by pkg/compress) record batch.
	RecordsBytes []byte
}

// ProduceRequestTopic is one topic's partitions to append to.
type ProduceRequestTopic struct {
	Topic      string
	Partitions []ProduceRequestTopicPartition
}

// ProduceRequest appends records to partitions. Defaults per spec.md §6:
// Acks=-1, TimeoutMillis=30000.
type ProduceRequest struct {
	versionedReq

	TransactionalID *string
	Acks            int16
	TimeoutMillis   int32
	Topics          []ProduceRequestTopic
}

func (*ProduceRequest) Key() int16         { return apiKeyProduce }
func (*ProduceRequest) MaxVersion() int16  { return 9 }
func (r *ProduceRequest) IsFlexible() bool { return r.Version >= 9 }

func (r *ProduceRequest) AppendTo(dst []byte) []byte {
	if r.Version >= 3 {
		dst = kbin.AppendNullableString(dst, r.TransactionalID)
	}
	dst = kbin.AppendInt16(dst, r.Acks)
	dst = kbin.AppendInt32(dst, r.TimeoutMillis)
	dst = kbin.AppendArrayLen(dst, len(r.Topics))
	for _, t := range r.Topics {
		dst = kbin.AppendString(dst, t.Topic)
		dst = kbin.AppendArrayLen(dst, len(t.Partitions))
		for _, p := range t.Partitions {
			dst = kbin.AppendInt32(dst, p.Partition)
			dst = kbin.AppendBytes(dst, p.RecordsBytes)
		}
	}
	return dst
}

func (r *ProduceRequest) ResponseKind() Response {
	return &ProduceResponse{versionedResp: versionedResp{Version: r.Version}}
}

// ProduceResponseTopicPartition is the append result for one partition.
type ProduceResponseTopicPartition struct {
	Partition      int32
	ErrorCode      int16
	BaseOffset     int64
	LogAppendTime  int64
	LogStartOffset int64
}

// ProduceResponseTopic is one topic's per-partition append results.
type ProduceResponseTopic struct {
	Topic      string
	Partitions []ProduceResponseTopicPartition
}

// ProduceResponse is the decoded produce acknowledgement. It is empty (no
// bytes at all) if the request was sent with Acks == 0; pkg/kgo's Broker
// synthesizes an empty success in that case rather than trying to decode
// nothing.
type ProduceResponse struct {
	versionedResp

	Topics         []ProduceResponseTopic
	ThrottleTimeMs int32
}

func (*ProduceResponse) Key() int16                { return apiKeyProduce }
func (r *ProduceResponse) Throttle() (int32, bool) { return r.ThrottleTimeMs, true }

func (r *ProduceResponse) ReadFrom(src []byte) error {
	if len(src) == 0 {
		return nil
	}
	b := apiReader(src)
	nt := b.ArrayLen()
	for i := int32(0); i < nt; i++ {
		t := ProduceResponseTopic{Topic: b.String()}
		np := b.ArrayLen()
		for j := int32(0); j < np; j++ {
			p := ProduceResponseTopicPartition{
				Partition:  b.Int32(),
				ErrorCode:  b.Int16(),
				BaseOffset: b.Int64(),
			}
			if r.Version >= 2 {
				p.LogAppendTime = b.Int64()
			}
			if r.Version >= 5 {
				p.LogStartOffset = b.Int64()
			}
			t.Partitions = append(t.Partitions, p)
		}
		r.Topics = append(r.Topics, t)
	}
	if r.Version >= 1 {
		r.ThrottleTimeMs = b.Int32()
	}
	return b.Complete()
}

var produceFamily = Family{
	Versions: []int16{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
	protocol: func(version int16) Request {
		return &ProduceRequest{
			versionedReq:  versionedReq{Version: version},
			Acks:          -1,
			TimeoutMillis: 30000,
		}
	},
}
