package kmsg

import "github.com/kafkasaur/kgo/pkg/kbin"

const apiKeyDeleteRecords = 21

// DeleteRecordsRequestTopicPartition truncates one partition's log up to
// (not including) Offset.
type DeleteRecordsRequestTopicPartition struct {
	Partition int32
	Offset    int64
}

// DeleteRecordsRequestTopic is one topic's partitions to truncate.
type DeleteRecordsRequestTopic struct {
	Topic      string
	Partitions []DeleteRecordsRequestTopicPartition
}

// DeleteRecordsRequest. Default TimeoutMillis per spec.md's general
// admin-timeout convention: 5000.
type DeleteRecordsRequest struct {
	versionedReq

	Topics        []DeleteRecordsRequestTopic
	TimeoutMillis int32
}

func (*DeleteRecordsRequest) Key() int16         { return apiKeyDeleteRecords }
func (*DeleteRecordsRequest) MaxVersion() int16  { return 2 }
func (r *DeleteRecordsRequest) IsFlexible() bool { return r.Version >= 2 }

func (r *DeleteRecordsRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendArrayLen(dst, len(r.Topics))
	for _, t := range r.Topics {
		dst = kbin.AppendString(dst, t.Topic)
		dst = kbin.AppendArrayLen(dst, len(t.Partitions))
		for _, p := range t.Partitions {
			dst = kbin.AppendInt32(dst, p.Partition)
			dst = kbin.AppendInt64(dst, p.Offset)
		}
	}
	dst = kbin.AppendInt32(dst, r.TimeoutMillis)
	return dst
}

func (r *DeleteRecordsRequest) ResponseKind() Response {
	return &DeleteRecordsResponse{versionedResp: versionedResp{Version: r.Version}}
}

// DeleteRecordsResponseTopicPartition is one partition's truncation result.
type DeleteRecordsResponseTopicPartition struct {
	Partition    int32
	LowWatermark int64
	ErrorCode    int16
}

// DeleteRecordsResponseTopic is one topic's per-partition truncation
// results.
type DeleteRecordsResponseTopic struct {
	Topic      string
	Partitions []DeleteRecordsResponseTopicPartition
}

// DeleteRecordsResponse is the decoded truncation result.
type DeleteRecordsResponse struct {
	versionedResp

	ThrottleTimeMs int32
	Topics         []DeleteRecordsResponseTopic
}

func (*DeleteRecordsResponse) Key() int16                { return apiKeyDeleteRecords }
func (r *DeleteRecordsResponse) Throttle() (int32, bool) { return r.ThrottleTimeMs, true }

func (r *DeleteRecordsResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	r.ThrottleTimeMs = b.Int32()
	n := b.ArrayLen()
	for i := int32(0); i < n; i++ {
		t := DeleteRecordsResponseTopic{Topic: b.String()}
		np := b.ArrayLen()
		for j := int32(0); j < np; j++ {
			t.Partitions = append(t.Partitions, DeleteRecordsResponseTopicPartition{
				Partition:    b.Int32(),
				LowWatermark: b.Int64(),
				ErrorCode:    b.Int16(),
			})
		}
		r.Topics = append(r.Topics, t)
	}
	return b.Complete()
}

var deleteRecordsFamily = Family{
	Versions: []int16{0, 1, 2},
	protocol: func(version int16) Request {
		return &DeleteRecordsRequest{versionedReq: versionedReq{Version: version}, TimeoutMillis: 5000}
	},
}
