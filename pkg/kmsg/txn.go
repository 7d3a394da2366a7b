package kmsg

import "github.com/kafkasaur/kgo/pkg/kbin"

const (
	apiKeyInitProducerID     = 22
	apiKeyAddPartitionsToTxn = 24
	apiKeyAddOffsetsToTxn    = 25
	apiKeyEndTxn             = 26
	apiKeyTxnOffsetCommit    = 28
)

// InitProducerIDRequest obtains (or bumps the epoch of) a producer ID for
// idempotent/transactional production.
//
// Defaults per spec.md §6: ProducerID=-1, ProducerEpoch=0.
type InitProducerIDRequest struct {
	versionedReq

	TransactionalID      *string
	TransactionTimeoutMs int32
	ProducerID           int64
	ProducerEpoch        int16
}

func (*InitProducerIDRequest) Key() int16         { return apiKeyInitProducerID }
func (*InitProducerIDRequest) MaxVersion() int16  { return 4 }
func (r *InitProducerIDRequest) IsFlexible() bool { return r.Version >= 2 }

func (r *InitProducerIDRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendNullableString(dst, r.TransactionalID)
	dst = kbin.AppendInt32(dst, r.TransactionTimeoutMs)
	if r.Version >= 3 {
		dst = kbin.AppendInt64(dst, r.ProducerID)
		dst = kbin.AppendInt16(dst, r.ProducerEpoch)
	}
	return dst
}

func (r *InitProducerIDRequest) ResponseKind() Response {
	return &InitProducerIDResponse{versionedResp: versionedResp{Version: r.Version}}
}

// InitProducerIDResponse carries the assigned producer ID/epoch.
type InitProducerIDResponse struct {
	versionedResp

	ThrottleTimeMs int32
	ErrorCode      int16
	ProducerID     int64
	ProducerEpoch  int16
}

func (*InitProducerIDResponse) Key() int16                { return apiKeyInitProducerID }
func (r *InitProducerIDResponse) Throttle() (int32, bool) { return r.ThrottleTimeMs, true }

func (r *InitProducerIDResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	r.ThrottleTimeMs = b.Int32()
	r.ErrorCode = b.Int16()
	r.ProducerID = b.Int64()
	r.ProducerEpoch = b.Int16()
	return b.Complete()
}

var initProducerIDFamily = Family{
	Versions: []int16{0, 1, 2, 3, 4},
	protocol: func(version int16) Request {
		return &InitProducerIDRequest{versionedReq: versionedReq{Version: version}, ProducerID: -1, ProducerEpoch: 0}
	},
}

// AddPartitionsToTxnRequestTopic lists partitions being added to a
// transaction.
type AddPartitionsToTxnRequestTopic struct {
	Topic      string
	Partitions []int32
}

// AddPartitionsToTxnRequest registers partitions as part of the current
// transaction before they are produced to.
type AddPartitionsToTxnRequest struct {
	versionedReq

	TransactionalID string
	ProducerID      int64
	ProducerEpoch   int16
	Topics          []AddPartitionsToTxnRequestTopic
}

func (*AddPartitionsToTxnRequest) Key() int16         { return apiKeyAddPartitionsToTxn }
func (*AddPartitionsToTxnRequest) MaxVersion() int16  { return 3 }
func (r *AddPartitionsToTxnRequest) IsFlexible() bool { return r.Version >= 3 }

func (r *AddPartitionsToTxnRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendString(dst, r.TransactionalID)
	dst = kbin.AppendInt64(dst, r.ProducerID)
	dst = kbin.AppendInt16(dst, r.ProducerEpoch)
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

func (r *AddPartitionsToTxnRequest) ResponseKind() Response {
	return &AddPartitionsToTxnResponse{versionedResp: versionedResp{Version: r.Version}}
}

// AddPartitionsToTxnResponseTopicPartition is one partition's registration
// result.
type AddPartitionsToTxnResponseTopicPartition struct {
	Partition int32
	ErrorCode int16
}

// AddPartitionsToTxnResponseTopic is one topic's per-partition registration
// results.
type AddPartitionsToTxnResponseTopic struct {
	Topic      string
	Partitions []AddPartitionsToTxnResponseTopicPartition
}

// AddPartitionsToTxnResponse is the decoded registration result.
type AddPartitionsToTxnResponse struct {
	versionedResp

	ThrottleTimeMs int32
	Topics         []AddPartitionsToTxnResponseTopic
}

func (*AddPartitionsToTxnResponse) Key() int16                { return apiKeyAddPartitionsToTxn }
func (r *AddPartitionsToTxnResponse) Throttle() (int32, bool) { return r.ThrottleTimeMs, true }

func (r *AddPartitionsToTxnResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	r.ThrottleTimeMs = b.Int32()
	n := b.ArrayLen()
	for i := int32(0); i < n; i++ {
		t := AddPartitionsToTxnResponseTopic{Topic: b.String()}
		np := b.ArrayLen()
		for j := int32(0); j < np; j++ {
			t.Partitions = append(t.Partitions, AddPartitionsToTxnResponseTopicPartition{
				Partition: b.Int32(),
				ErrorCode: b.Int16(),
			})
		}
		r.Topics = append(r.Topics, t)
	}
	return b.Complete()
}

var addPartitionsToTxnFamily = Family{
	Versions: []int16{0, 1, 2, 3},
	protocol: func(version int16) Request {
		return &AddPartitionsToTxnRequest{versionedReq: versionedReq{Version: version}}
	},
}

// AddOffsetsToTxnRequest registers a consumer group's offsets as part of the
// current transaction (used for consume-transform-produce pipelines).
type AddOffsetsToTxnRequest struct {
	versionedReq

	TransactionalID string
	ProducerID      int64
	ProducerEpoch   int16
	Group           string
}

func (*AddOffsetsToTxnRequest) Key() int16         { return apiKeyAddOffsetsToTxn }
func (*AddOffsetsToTxnRequest) MaxVersion() int16  { return 3 }
func (r *AddOffsetsToTxnRequest) IsFlexible() bool { return r.Version >= 3 }

func (r *AddOffsetsToTxnRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendString(dst, r.TransactionalID)
	dst = kbin.AppendInt64(dst, r.ProducerID)
	dst = kbin.AppendInt16(dst, r.ProducerEpoch)
	dst = kbin.AppendString(dst, r.Group)
	return dst
}

func (r *AddOffsetsToTxnRequest) ResponseKind() Response {
	return &AddOffsetsToTxnResponse{versionedResp: versionedResp{Version: r.Version}}
}

// AddOffsetsToTxnResponse acknowledges the registration.
type AddOffsetsToTxnResponse struct {
	versionedResp

	ThrottleTimeMs int32
	ErrorCode      int16
}

func (*AddOffsetsToTxnResponse) Key() int16                { return apiKeyAddOffsetsToTxn }
func (r *AddOffsetsToTxnResponse) Throttle() (int32, bool) { return r.ThrottleTimeMs, true }

func (r *AddOffsetsToTxnResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	r.ThrottleTimeMs = b.Int32()
	r.ErrorCode = b.Int16()
	return b.Complete()
}

var addOffsetsToTxnFamily = Family{
	Versions: []int16{0, 1, 2, 3},
	protocol: func(version int16) Request {
		return &AddOffsetsToTxnRequest{versionedReq: versionedReq{Version: version}}
	},
}

// TxnOffsetCommitRequestTopicPartition is one partition's committed offset
// within a transaction.
type TxnOffsetCommitRequestTopicPartition struct {
	Partition   int32
	Offset      int64
	LeaderEpoch int32
	Metadata    *string
}

// TxnOffsetCommitRequestTopic is one topic's partitions to commit
// transactionally.
type TxnOffsetCommitRequestTopic struct {
	Topic      string
	Partitions []TxnOffsetCommitRequestTopicPartition
}

// TxnOffsetCommitRequest commits consumer offsets as part of the current
// transaction.
type TxnOffsetCommitRequest struct {
	versionedReq

	TransactionalID string
	Group           string
	ProducerID      int64
	ProducerEpoch   int16
	Topics          []TxnOffsetCommitRequestTopic
}

func (*TxnOffsetCommitRequest) Key() int16         { return apiKeyTxnOffsetCommit }
func (*TxnOffsetCommitRequest) MaxVersion() int16  { return 3 }
func (r *TxnOffsetCommitRequest) IsFlexible() bool { return r.Version >= 3 }

func (r *TxnOffsetCommitRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendString(dst, r.TransactionalID)
	dst = kbin.AppendString(dst, r.Group)
	dst = kbin.AppendInt64(dst, r.ProducerID)
	dst = kbin.AppendInt16(dst, r.ProducerEpoch)
	dst = kbin.AppendArrayLen(dst, len(r.Topics))
	for _, t := range r.Topics {
		dst = kbin.AppendString(dst, t.Topic)
		dst = kbin.AppendArrayLen(dst, len(t.Partitions))
		for _, p := range t.Partitions {
			dst = kbin.AppendInt32(dst, p.Partition)
			dst = kbin.AppendInt64(dst, p.Offset)
			if r.Version >= 2 {
				dst = kbin.AppendInt32(dst, p.LeaderEpoch)
			}
			dst = kbin.AppendNullableString(dst, p.Metadata)
		}
	}
	return dst
}

func (r *TxnOffsetCommitRequest) ResponseKind() Response {
	return &TxnOffsetCommitResponse{versionedResp: versionedResp{Version: r.Version}}
}

// TxnOffsetCommitResponseTopicPartition is one partition's commit result.
type TxnOffsetCommitResponseTopicPartition struct {
	Partition int32
	ErrorCode int16
}

// TxnOffsetCommitResponseTopic is one topic's per-partition commit results.
type TxnOffsetCommitResponseTopic struct {
	Topic      string
	Partitions []TxnOffsetCommitResponseTopicPartition
}

// TxnOffsetCommitResponse is the decoded transactional commit result.
type TxnOffsetCommitResponse struct {
	versionedResp

	ThrottleTimeMs int32
	Topics         []TxnOffsetCommitResponseTopic
}

func (*TxnOffsetCommitResponse) Key() int16                { return apiKeyTxnOffsetCommit }
func (r *TxnOffsetCommitResponse) Throttle() (int32, bool) { return r.ThrottleTimeMs, true }

func (r *TxnOffsetCommitResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	r.ThrottleTimeMs = b.Int32()
	n := b.ArrayLen()
	for i := int32(0); i < n; i++ {
		t := TxnOffsetCommitResponseTopic{Topic: b.String()}
		np := b.ArrayLen()
		for j := int32(0); j < np; j++ {
			t.Partitions = append(t.Partitions, TxnOffsetCommitResponseTopicPartition{
				Partition: b.Int32(),
				ErrorCode: b.Int16(),
			})
		}
		r.Topics = append(r.Topics, t)
	}
	return b.Complete()
}

var txnOffsetCommitFamily = Family{
	Versions: []int16{0, 1, 2, 3},
	protocol: func(version int16) Request {
		return &TxnOffsetCommitRequest{versionedReq: versionedReq{Version: version}}
	},
}

// EndTxnRequest commits or aborts the current transaction.
type EndTxnRequest struct {
	versionedReq

	TransactionalID string
	ProducerID      int64
	ProducerEpoch   int16
	Committed       bool
}

func (*EndTxnRequest) Key() int16         { return apiKeyEndTxn }
func (*EndTxnRequest) MaxVersion() int16  { return 3 }
func (r *EndTxnRequest) IsFlexible() bool { return r.Version >= 3 }

func (r *EndTxnRequest) AppendTo(dst []byte) []byte {
	dst = kbin.AppendString(dst, r.TransactionalID)
	dst = kbin.AppendInt64(dst, r.ProducerID)
	dst = kbin.AppendInt16(dst, r.ProducerEpoch)
	dst = kbin.AppendBool(dst, r.Committed)
	return dst
}

func (r *EndTxnRequest) ResponseKind() Response {
	return &EndTxnResponse{versionedResp: versionedResp{Version: r.Version}}
}

// EndTxnResponse acknowledges the commit/abort.
type EndTxnResponse struct {
	versionedResp

	ThrottleTimeMs int32
	ErrorCode      int16
}

func (*EndTxnResponse) Key() int16                { return apiKeyEndTxn }
func (r *EndTxnResponse) Throttle() (int32, bool) { return r.ThrottleTimeMs, true }

func (r *EndTxnResponse) ReadFrom(src []byte) error {
	b := apiReader(src)
	r.ThrottleTimeMs = b.Int32()
	r.ErrorCode = b.Int16()
	return b.Complete()
}

var endTxnFamily = Family{
	Versions: []int16{0, 1, 2, 3},
	protocol: func(version int16) Request {
		return &EndTxnRequest{versionedReq: versionedReq{Version: version}}
	},
}
