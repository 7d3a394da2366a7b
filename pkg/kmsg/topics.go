package kmsg

import "github.com/kafkasaur/kgo/pkg/kbin"

const (
	apiKeyCreateTopics     = 19
	apiKeyDeleteTopics     = 20
	apiKeyCreatePartitions = 37
)

// CreateTopicsRequestTopicReplicaAssignment pins one partition's replica
// broker IDs, bypassing the default replica placement algorithm.
type CreateTopicsRequestTopicReplicaAssignment struct {
	Partition int32
	Replicas  []int32
}

// CreateTopicsRequestTopicConfig is one topic-level config override.
type CreateTopicsRequestTopicConfig struct {
	Name  string
	Value *string
}

// CreateTopicsRequestTopic describes one topic to create.
type CreateTopicsRequestTopic struct {
	Topic             string
	NumPartitions     int32
	ReplicationFactor int16
	ReplicaAssignment []CreateTopicsRequestTopicReplicaAssignment
	Configs           []CreateTopicsRequestTopicConfig
}

// CreateTopicsRequest. Defaults per spec.md §6: TimeoutMillis=5000,
// ValidateOnly=false.
type CreateTopicsRequest struct {
	versionedReq

	Topics        []CreateTopicsRequestTopic
	TimeoutMillis int32
	ValidateOnly  bool
}

func (*CreateTopicsRequest) Key() int16         { return apiKeyCreateTopics }
func (*CreateTopicsRequest) MaxVersion() int16  { return 7 }
func (r *CreateTopicsRequest) IsFlexible() bool { return r.Version >= 5 }

func (r *CreateTopicsRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendArrayLen(dst, len(r.Topics))
	for _, t := range r.Topics {
		dst = kbin.AppendString(dst, t.Topic)
		dst = kbin.AppendInt32(dst, t.NumPartitions)
		dst = kbin.AppendInt16(dst, t.ReplicationFactor)
		dst = kbin.AppendArrayLen(dst, len(t.ReplicaAssignment))
		for _, a := range t.ReplicaAssignment {
			dst = kbin.AppendInt32(dst, a.Partition)
			dst = kbin.AppendArrayLen(dst, len(a.Replicas))
			for _, rep := range a.Replicas {
				dst = kbin.AppendInt32(dst, rep)
			}
		}
		dst = kbin.AppendArrayLen(dst, len(t.Configs))
		for _, c := range t.Configs {
			dst = kbin.AppendString(dst, c.Name)
			dst = kbin.AppendNullableString(dst, c.Value)
		}
	}
	dst = kbin.AppendInt32(dst, r.TimeoutMillis)
	if r.Version >= 1 {
		dst = kbin.AppendBool(dst, r.ValidateOnly)
	}
	return dst
}

func (r *CreateTopicsRequest) ResponseKind() Response {
	return &CreateTopicsResponse{versionedResp: versionedResp{Version: r.Version}}
}

// CreateTopicsResponseTopic is one topic's creation result.
type CreateTopicsResponseTopic struct {
	Topic        string
	ErrorCode    int16
	ErrorMessage *string
}

// CreateTopicsResponse is the decoded per-topic creation result.
type CreateTopicsResponse struct {
	versionedResp

	ThrottleTimeMs int32
	Topics         []CreateTopicsResponseTopic
}

func (*CreateTopicsResponse) Key() int16                { return apiKeyCreateTopics }
func (r *CreateTopicsResponse) Throttle() (int32, bool) { return r.ThrottleTimeMs, true }

func (r *CreateTopicsResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	if r.Version >= 2 {
		r.ThrottleTimeMs = b.Int32()
	}
	n := b.ArrayLen()
	for i := int32(0); i < n; i++ {
		t := CreateTopicsResponseTopic{Topic: b.String(), ErrorCode: b.Int16()}
		if r.Version >= 1 {
			t.ErrorMessage = b.NullableString()
		}
		r.Topics = append(r.Topics, t)
	}
	return b.Complete()
}

var createTopicsFamily = Family{
	Versions: []int16{0, 1, 2, 3, 4, 5, 6, 7},
	protocol: func(version int16) Request {
		return &CreateTopicsRequest{versionedReq: versionedReq{Version: version}, TimeoutMillis: 5000}
	},
}

// DeleteTopicsRequest. Default TimeoutMillis per spec.md §6: 5000.
type DeleteTopicsRequest struct {
	versionedReq

	Topics        []string
	TimeoutMillis int32
}

func (*DeleteTopicsRequest) Key() int16         { return apiKeyDeleteTopics }
func (*DeleteTopicsRequest) MaxVersion() int16  { return 6 }
func (r *DeleteTopicsRequest) IsFlexible() bool { return r.Version >= 4 }

func (r *DeleteTopicsRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendArrayLen(dst, len(r.Topics))
	for _, t := range r.Topics {
		dst = kbin.AppendString(dst, t)
	}
	dst = kbin.AppendInt32(dst, r.TimeoutMillis)
	return dst
}

func (r *DeleteTopicsRequest) ResponseKind() Response {
	return &DeleteTopicsResponse{versionedResp: versionedResp{Version: r.Version}}
}

// DeleteTopicsResponseTopic is one topic's deletion result.
type DeleteTopicsResponseTopic struct {
	Topic     string
	ErrorCode int16
}

// DeleteTopicsResponse is the decoded per-topic deletion result.
type DeleteTopicsResponse struct {
	versionedResp

	ThrottleTimeMs int32
	Topics         []DeleteTopicsResponseTopic
}

func (*DeleteTopicsResponse) Key() int16                { return apiKeyDeleteTopics }
func (r *DeleteTopicsResponse) Throttle() (int32, bool) { return r.ThrottleTimeMs, true }

func (r *DeleteTopicsResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	if r.Version >= 1 {
		r.ThrottleTimeMs = b.Int32()
	}
	n := b.ArrayLen()
	for i := int32(0); i < n; i++ {
		r.Topics = append(r.Topics, DeleteTopicsResponseTopic{Topic: b.String(), ErrorCode: b.Int16()})
	}
	return b.Complete()
}

var deleteTopicsFamily = Family{
	Versions: []int16{0, 1, 2, 3, 4, 5, 6},
	protocol: func(version int16) Request {
		return &DeleteTopicsRequest{versionedReq: versionedReq{Version: version}, TimeoutMillis: 5000}
	},
}

// CreatePartitionsRequestTopicAssignment pins the replica set for one new
// partition.
type CreatePartitionsRequestTopicAssignment struct {
	Replicas []int32
}

// CreatePartitionsRequestTopic describes one topic's partition count
// increase.
type CreatePartitionsRequestTopic struct {
	Topic       string
	Count       int32
	Assignments []CreatePartitionsRequestTopicAssignment
}

// CreatePartitionsRequest. Defaults per spec.md §6: TimeoutMillis=5000,
// ValidateOnly=false.
type CreatePartitionsRequest struct {
	versionedReq

	Topics        []CreatePartitionsRequestTopic
	TimeoutMillis int32
	ValidateOnly  bool
}

func (*CreatePartitionsRequest) Key() int16         { return apiKeyCreatePartitions }
func (*CreatePartitionsRequest) MaxVersion() int16  { return 3 }
func (r *CreatePartitionsRequest) IsFlexible() bool { return r.Version >= 2 }

func (r *CreatePartitionsRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendArrayLen(dst, len(r.Topics))
	for _, t := range r.Topics {
		dst = kbin.AppendString(dst, t.Topic)
		dst = kbin.AppendInt32(dst, t.Count)
		if t.Assignments == nil {
			dst = kbin.AppendInt32(dst, -1)
		} else {
			dst = kbin.AppendArrayLen(dst, len(t.Assignments))
			for _, a := range t.Assignments {
				dst = kbin.AppendArrayLen(dst, len(a.Replicas))
				for _, rep := range a.Replicas {
					dst = kbin.AppendInt32(dst, rep)
				}
			}
		}
	}
	dst = kbin.AppendInt32(dst, r.TimeoutMillis)
	dst = kbin.AppendBool(dst, r.ValidateOnly)
	return dst
}

func (r *CreatePartitionsRequest) ResponseKind() Response {
	return &CreatePartitionsResponse{versionedResp: versionedResp{Version: r.Version}}
}

// CreatePartitionsResponseTopic is one topic's partition-count-increase
// result.
type CreatePartitionsResponseTopic struct {
	Topic        string
	ErrorCode    int16
	ErrorMessage *string
}

// CreatePartitionsResponse is the decoded per-topic result.
type CreatePartitionsResponse struct {
	versionedResp

	ThrottleTimeMs int32
	Topics         []CreatePartitionsResponseTopic
}

func (*CreatePartitionsResponse) Key() int16                { return apiKeyCreatePartitions }
func (r *CreatePartitionsResponse) Throttle() (int32, bool) { return r.ThrottleTimeMs, true }

func (r *CreatePartitionsResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	r.ThrottleTimeMs = b.Int32()
	n := b.ArrayLen()
	for i := int32(0); i < n; i++ {
		r.Topics = append(r.Topics, CreatePartitionsResponseTopic{
			Topic:        b.String(),
			ErrorCode:    b.Int16(),
			ErrorMessage: b.NullableString(),
		})
	}
	return b.Complete()
}

var createPartitionsFamily = Family{
	Versions: []int16{0, 1, 2, 3},
	protocol: func(version int16) Request {
		return &CreatePartitionsRequest{versionedReq: versionedReq{Version: version}, TimeoutMillis: 5000}
	},
}
