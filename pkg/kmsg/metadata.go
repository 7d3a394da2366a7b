package kmsg

import "github.com/kafkasaur/kgo/pkg/kbin"

const apiKeyMetadata = 3

// MetadataRequestTopic names one topic to fetch metadata for.
type MetadataRequestTopic struct {
	Topic string
}

// MetadataRequest asks for cluster and topic metadata. Broker.Metadata
// (pkg/kgo) shuffles Topics before building this request; see spec.md §4.1.
type MetadataRequest struct {
	versionedReq

	Topics                             []MetadataRequestTopic
	AllowAutoTopicCreation             bool
	IncludeClusterAuthorizedOperations bool
	IncludeTopicAuthorizedOperations   bool
}

func (*MetadataRequest) Key() int16         { return apiKeyMetadata }
func (*MetadataRequest) MaxVersion() int16  { return 9 }
func (r *MetadataRequest) IsFlexible() bool { return r.Version >= 9 }

func (r *MetadataRequest) AppendTo(dst []byte) []byte {
	if r.Topics == nil {
		dst = kbin.AppendInt32(dst, -1)
	} else {
		dst = kbin.AppendArrayLen(dst, len(r.Topics))
		for _, t := range r.Topics {
			dst = kbin.AppendString(dst, t.Topic)
		}
	}
	if r.Version >= 4 {
		dst = kbin.AppendBool(dst, r.AllowAutoTopicCreation)
	}
	if r.Version >= 8 {
		dst = kbin.AppendBool(dst, r.IncludeClusterAuthorizedOperations)
		dst = kbin.AppendBool(dst, r.IncludeTopicAuthorizedOperations)
	}
	return dst
}

func (r *MetadataRequest) ResponseKind() Response {
	return &MetadataResponse{versionedResp: versionedResp{Version: r.Version}}
}

// MetadataResponseBroker is one broker entry in a metadata response.
type MetadataResponseBroker struct {
	NodeID int32
	Host   string
	Port   int32
	Rack   *string
}

// MetadataResponsePartition describes one partition's leader/replica state.
type MetadataResponsePartition struct {
	ErrorCode       int16
	Partition       int32
	Leader          int32
	LeaderEpoch     int32
	Replicas        []int32
	ISR             []int32
	OfflineReplicas []int32
}

// MetadataResponseTopic describes one topic's partitions.
type MetadataResponseTopic struct {
	ErrorCode  int16
	Topic      string
	IsInternal bool
	Partitions []MetadataResponsePartition
}

// MetadataResponse is the decoded cluster/topic metadata.
type MetadataResponse struct {
	versionedResp

	ThrottleTimeMs int32
	Brokers        []MetadataResponseBroker
	ClusterID      *string
	ControllerID   int32
	Topics         []MetadataResponseTopic
}

func (*MetadataResponse) Key() int16                  { return apiKeyMetadata }
func (r *MetadataResponse) Throttle() (int32, bool)   { return r.ThrottleTimeMs, false }

func (r *MetadataResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	if r.Version >= 3 {
		r.ThrottleTimeMs = b.Int32()
	}
	nb := b.ArrayLen()
	for i := int32(0); i < nb; i++ {
		br := MetadataResponseBroker{
			NodeID: b.Int32(),
			Host:   b.String(),
			Port:   b.Int32(),
		}
		if r.Version >= 1 {
			br.Rack = b.NullableString()
		}
		r.Brokers = append(r.Brokers, br)
	}
	if r.Version >= 2 {
		r.ClusterID = b.NullableString()
	}
	if r.Version >= 1 {
		r.ControllerID = b.Int32()
	}
	nt := b.ArrayLen()
	for i := int32(0); i < nt; i++ {
		t := MetadataResponseTopic{
			ErrorCode: b.Int16(),
			Topic:     b.String(),
		}
		if r.Version >= 1 {
			t.IsInternal = b.Bool()
		}
		np := b.ArrayLen()
		for j := int32(0); j < np; j++ {
			p := MetadataResponsePartition{
				ErrorCode: b.Int16(),
				Partition: b.Int32(),
				Leader:    b.Int32(),
			}
			if r.Version >= 7 {
				p.LeaderEpoch = b.Int32()
			}
			nr := b.ArrayLen()
			for k := int32(0); k < nr; k++ {
				p.Replicas = append(p.Replicas, b.Int32())
			}
			ni := b.ArrayLen()
			for k := int32(0); k < ni; k++ {
				p.ISR = append(p.ISR, b.Int32())
			}
			if r.Version >= 5 {
				no := b.ArrayLen()
				for k := int32(0); k < no; k++ {
					p.OfflineReplicas = append(p.OfflineReplicas, b.Int32())
				}
			}
			t.Partitions = append(t.Partitions, p)
		}
		r.Topics = append(r.Topics, t)
	}
	return b.Complete()
}

var metadataFamily = Family{
	Versions: []int16{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
	protocol: func(version int16) Request {
		return &MetadataRequest{versionedReq: versionedReq{Version: version}, AllowAutoTopicCreation: true}
	},
}
