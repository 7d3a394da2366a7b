package kgo

import (
	"context"
	"math/rand"

	"github.com/kafkasaur/kgo/pkg/kerr"
	"github.com/kafkasaur/kgo/pkg/kmsg"
)

// This file is the Broker's RPC surface (§4.1): one method per Kafka API,
// each a thin wrapper around call() that fills in a request built at the
// version lookupRequest selected. A handful need pre- or post-processing
// beyond a plain fill/send — Fetch's KIP-74 shuffle-and-consolidate,
// Metadata's topic-order shuffle, ListOffsets' response normalization, and
// JoinGroup's retry-once on MEMBER_ID_REQUIRED — and those are written out
// in full below the plain wrappers.

// Produce sends records for one or more topic-partitions.
func (b *Broker) Produce(ctx context.Context, transactionalID *string, acks int16, timeoutMillis int32, topics []kmsg.ProduceRequestTopic) (*kmsg.ProduceResponse, error) {
	req := &kmsg.ProduceRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		pr := r.(*kmsg.ProduceRequest)
		pr.TransactionalID = transactionalID
		pr.Acks = acks
		pr.TimeoutMillis = timeoutMillis
		pr.Topics = topics
	})
	if err != nil {
		return nil, err
	}
	return resp.(*kmsg.ProduceResponse), nil
}

// fetchPair is one (topic, partition) pair flattened out of a FetchRequest's
// nested topics/partitions, used to implement KIP-74 fairness.
type fetchPair struct {
	topic string
	part  kmsg.FetchRequestTopicPartition
}

// shuffleConsolidateFetch implements KIP-74 read fairness: the
// (topic,partition) pairs are flattened, randomly shuffled, then
// re-consolidated by grouping consecutive same-topic pairs back into
// FetchRequestTopic entries, so no single topic is always served first
// merely because of its position in the caller's slice. Only pairs the
// shuffle leaves next to each other are merged, so one topic can appear
// in several entries, but never in two adjacent ones.
func shuffleConsolidateFetch(topics []kmsg.FetchRequestTopic) []kmsg.FetchRequestTopic {
	var pairs []fetchPair
	for _, t := range topics {
		for _, p := range t.Partitions {
			pairs = append(pairs, fetchPair{topic: t.Topic, part: p})
		}
	}
	rand.Shuffle(len(pairs), func(i, j int) { pairs[i], pairs[j] = pairs[j], pairs[i] })

	consolidated := make([]kmsg.FetchRequestTopic, 0, len(topics))
	for _, fp := range pairs {
		n := len(consolidated)
		if n > 0 && consolidated[n-1].Topic == fp.topic {
			consolidated[n-1].Partitions = append(consolidated[n-1].Partitions, fp.part)
			continue
		}
		consolidated = append(consolidated, kmsg.FetchRequestTopic{
			Topic:      fp.topic,
			Partitions: []kmsg.FetchRequestTopicPartition{fp.part},
		})
	}
	return consolidated
}

// Fetch sends a fetch request, applying KIP-74 read fairness (see
// shuffleConsolidateFetch).
func (b *Broker) Fetch(ctx context.Context, replicaID, maxWaitTime, minBytes, maxBytes int32, isolationLevel int8, sessionID, sessionEpoch int32, topics []kmsg.FetchRequestTopic, forgotten []kmsg.FetchRequestForgottenTopic, rackID string) (*kmsg.FetchResponse, error) {
	shuffled := shuffleConsolidateFetch(topics)

	req := &kmsg.FetchRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		fr := r.(*kmsg.FetchRequest)
		fr.ReplicaID = replicaID
		fr.MaxWaitTime = maxWaitTime
		fr.MinBytes = minBytes
		fr.MaxBytes = maxBytes
		fr.IsolationLevel = isolationLevel
		fr.SessionID = sessionID
		fr.SessionEpoch = sessionEpoch
		fr.Topics = shuffled
		fr.ForgottenTopics = forgotten
		fr.RackID = rackID
	})
	if err != nil {
		return nil, err
	}
	return resp.(*kmsg.FetchResponse), nil
}

// shuffleMetadataTopics returns a shuffled copy of topics, leaving the
// caller's slice untouched.
func shuffleMetadataTopics(topics []kmsg.MetadataRequestTopic) []kmsg.MetadataRequestTopic {
	shuffled := append([]kmsg.MetadataRequestTopic(nil), topics...)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled
}

// Metadata requests cluster/topic metadata. A nil topics argument requests
// all topics. The caller's topic order is shuffled before sending so that
// no topic is systematically favored by its position in a caller-built
// slice.
func (b *Broker) Metadata(ctx context.Context, topics []kmsg.MetadataRequestTopic, includeClusterAuthorizedOps, includeTopicAuthorizedOps bool) (*kmsg.MetadataResponse, error) {
	shuffled := shuffleMetadataTopics(topics)

	req := &kmsg.MetadataRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		mr := r.(*kmsg.MetadataRequest)
		mr.Topics = shuffled
		mr.AllowAutoTopicCreation = b.cfg.allowAutoTopicCreation
		mr.IncludeClusterAuthorizedOperations = includeClusterAuthorizedOps
		mr.IncludeTopicAuthorizedOperations = includeTopicAuthorizedOps
	})
	if err != nil {
		return nil, err
	}
	return resp.(*kmsg.MetadataResponse), nil
}

// ListOffsets looks up partition offsets by timestamp. The response's
// per-partition Offsets slice is normalized down to a scalar Offset field
// before returning (NormalizeOffsets), so callers never have to
// special-case the pre-v1 multi-offset encoding.
func (b *Broker) ListOffsets(ctx context.Context, replicaID int32, isolationLevel int8, topics []kmsg.ListOffsetsRequestTopic) (*kmsg.ListOffsetsResponse, error) {
	req := &kmsg.ListOffsetsRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		lr := r.(*kmsg.ListOffsetsRequest)
		lr.ReplicaID = replicaID
		lr.IsolationLevel = isolationLevel
		lr.Topics = topics
	})
	if err != nil {
		return nil, err
	}
	lor := resp.(*kmsg.ListOffsetsResponse)
	lor.NormalizeOffsets()
	return lor, nil
}

// OffsetCommit commits consumer group offsets.
func (b *Broker) OffsetCommit(ctx context.Context, group string, generation int32, memberID string, retentionTime int64, topics []kmsg.OffsetCommitRequestTopic) (*kmsg.OffsetCommitResponse, error) {
	req := &kmsg.OffsetCommitRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		ocr := r.(*kmsg.OffsetCommitRequest)
		ocr.Group = group
		ocr.Generation = generation
		ocr.MemberID = memberID
		ocr.RetentionTime = retentionTime
		ocr.Topics = topics
	})
	if err != nil {
		return nil, err
	}
	return resp.(*kmsg.OffsetCommitResponse), nil
}

// OffsetFetch fetches committed consumer group offsets. A nil topics
// argument requests all topics the group has committed offsets for.
func (b *Broker) OffsetFetch(ctx context.Context, group string, topics []kmsg.OffsetFetchRequestTopic) (*kmsg.OffsetFetchResponse, error) {
	req := &kmsg.OffsetFetchRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		ofr := r.(*kmsg.OffsetFetchRequest)
		ofr.Group = group
		ofr.Topics = topics
	})
	if err != nil {
		return nil, err
	}
	return resp.(*kmsg.OffsetFetchResponse), nil
}

// GroupCoordinator finds the coordinator broker for a group or transaction
// (keyType 0 = group, 1 = transaction), wrapping FindCoordinator.
func (b *Broker) GroupCoordinator(ctx context.Context, key string, keyType int8) (*kmsg.FindCoordinatorResponse, error) {
	req := &kmsg.FindCoordinatorRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		fcr := r.(*kmsg.FindCoordinatorRequest)
		fcr.CoordinatorKey = key
		fcr.KeyType = keyType
	})
	if err != nil {
		return nil, err
	}
	return resp.(*kmsg.FindCoordinatorResponse), nil
}

// JoinGroup joins a consumer group. If the broker responds
// MEMBER_ID_REQUIRED, the join is retried exactly once with the
// broker-supplied member id substituted in, since the caller has no better
// member id to offer than the one the broker just handed back. If the
// retry also comes back MEMBER_ID_REQUIRED, that failure surfaces to the
// caller as *MemberIDRequiredError rather than being retried again.
func (b *Broker) JoinGroup(ctx context.Context, group string, sessionTimeout, rebalanceTimeout int32, memberID string, groupInstanceID *string, protocolType string, protocols []kmsg.JoinGroupRequestProtocol) (*kmsg.JoinGroupResponse, error) {
	req := &kmsg.JoinGroupRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	fill := func(r kmsg.Request) {
		jr := r.(*kmsg.JoinGroupRequest)
		jr.Group = group
		jr.SessionTimeout = sessionTimeout
		jr.RebalanceTimeout = rebalanceTimeout
		jr.MemberID = memberID
		jr.GroupInstanceID = groupInstanceID
		jr.ProtocolType = protocolType
		jr.Protocols = protocols
	}

	resp, err := b.call(ctx, req.Key(), family, fill)
	if err != nil {
		return nil, err
	}
	jresp := resp.(*kmsg.JoinGroupResponse)
	if kerr.ErrorForCode(jresp.ErrorCode) != kerr.MemberIDRequired {
		return jresp, nil
	}

	retryMemberID := jresp.MemberID
	resp, err = b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		fill(r)
		r.(*kmsg.JoinGroupRequest).MemberID = retryMemberID
	})
	if err != nil {
		return nil, err
	}
	jresp = resp.(*kmsg.JoinGroupResponse)
	if kerr.ErrorForCode(jresp.ErrorCode) == kerr.MemberIDRequired {
		return nil, &MemberIDRequiredError{MemberID: jresp.MemberID}
	}
	return jresp, nil
}

// SyncGroup distributes partition assignments to group members.
func (b *Broker) SyncGroup(ctx context.Context, group string, generation int32, memberID string, groupInstanceID, protocolType, protocolName *string, assignments []kmsg.SyncGroupRequestAssignment) (*kmsg.SyncGroupResponse, error) {
	req := &kmsg.SyncGroupRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		sr := r.(*kmsg.SyncGroupRequest)
		sr.Group = group
		sr.Generation = generation
		sr.MemberID = memberID
		sr.GroupInstanceID = groupInstanceID
		sr.ProtocolType = protocolType
		sr.ProtocolName = protocolName
		sr.Assignments = assignments
	})
	if err != nil {
		return nil, err
	}
	return resp.(*kmsg.SyncGroupResponse), nil
}

// Heartbeat keeps a group member's session alive.
func (b *Broker) Heartbeat(ctx context.Context, group string, generation int32, memberID string, groupInstanceID *string) (*kmsg.HeartbeatResponse, error) {
	req := &kmsg.HeartbeatRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		hr := r.(*kmsg.HeartbeatRequest)
		hr.Group = group
		hr.Generation = generation
		hr.MemberID = memberID
		hr.GroupInstanceID = groupInstanceID
	})
	if err != nil {
		return nil, err
	}
	return resp.(*kmsg.HeartbeatResponse), nil
}

// LeaveGroup removes one or more members from a group.
func (b *Broker) LeaveGroup(ctx context.Context, group, memberID string, members []kmsg.LeaveGroupRequestMember) (*kmsg.LeaveGroupResponse, error) {
	req := &kmsg.LeaveGroupRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		lr := r.(*kmsg.LeaveGroupRequest)
		lr.Group = group
		lr.MemberID = memberID
		lr.Members = members
	})
	if err != nil {
		return nil, err
	}
	return resp.(*kmsg.LeaveGroupResponse), nil
}

// DescribeGroups returns group metadata and membership.
func (b *Broker) DescribeGroups(ctx context.Context, groups []string, includeAuthorizedOps bool) (*kmsg.DescribeGroupsResponse, error) {
	req := &kmsg.DescribeGroupsRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		dr := r.(*kmsg.DescribeGroupsRequest)
		dr.Groups = groups
		dr.IncludeAuthorizedOperations = includeAuthorizedOps
	})
	if err != nil {
		return nil, err
	}
	return resp.(*kmsg.DescribeGroupsResponse), nil
}

// ListGroups lists groups on the broker, optionally filtered by state.
func (b *Broker) ListGroups(ctx context.Context, statesFilter []string) (*kmsg.ListGroupsResponse, error) {
	req := &kmsg.ListGroupsRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		r.(*kmsg.ListGroupsRequest).StatesFilter = statesFilter
	})
	if err != nil {
		return nil, err
	}
	return resp.(*kmsg.ListGroupsResponse), nil
}

// DeleteGroups deletes one or more empty consumer groups.
func (b *Broker) DeleteGroups(ctx context.Context, groups []string) (*kmsg.DeleteGroupsResponse, error) {
	req := &kmsg.DeleteGroupsRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		r.(*kmsg.DeleteGroupsRequest).Groups = groups
	})
	if err != nil {
		return nil, err
	}
	return resp.(*kmsg.DeleteGroupsResponse), nil
}

// CreateTopics creates one or more topics.
func (b *Broker) CreateTopics(ctx context.Context, topics []kmsg.CreateTopicsRequestTopic, timeoutMillis int32, validateOnly bool) (*kmsg.CreateTopicsResponse, error) {
	req := &kmsg.CreateTopicsRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		cr := r.(*kmsg.CreateTopicsRequest)
		cr.Topics = topics
		cr.TimeoutMillis = timeoutMillis
		cr.ValidateOnly = validateOnly
	})
	if err != nil {
		return nil, err
	}
	return resp.(*kmsg.CreateTopicsResponse), nil
}

// DeleteTopics deletes one or more topics.
func (b *Broker) DeleteTopics(ctx context.Context, topics []string, timeoutMillis int32) (*kmsg.DeleteTopicsResponse, error) {
	req := &kmsg.DeleteTopicsRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		dr := r.(*kmsg.DeleteTopicsRequest)
		dr.Topics = topics
		dr.TimeoutMillis = timeoutMillis
	})
	if err != nil {
		return nil, err
	}
	return resp.(*kmsg.DeleteTopicsResponse), nil
}

// CreatePartitions adds partitions to existing topics.
func (b *Broker) CreatePartitions(ctx context.Context, topics []kmsg.CreatePartitionsRequestTopic, timeoutMillis int32, validateOnly bool) (*kmsg.CreatePartitionsResponse, error) {
	req := &kmsg.CreatePartitionsRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		cr := r.(*kmsg.CreatePartitionsRequest)
		cr.Topics = topics
		cr.TimeoutMillis = timeoutMillis
		cr.ValidateOnly = validateOnly
	})
	if err != nil {
		return nil, err
	}
	return resp.(*kmsg.CreatePartitionsResponse), nil
}

// DeleteRecords deletes records before given offsets.
func (b *Broker) DeleteRecords(ctx context.Context, topics []kmsg.DeleteRecordsRequestTopic, timeoutMillis int32) (*kmsg.DeleteRecordsResponse, error) {
	req := &kmsg.DeleteRecordsRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		dr := r.(*kmsg.DeleteRecordsRequest)
		dr.Topics = topics
		dr.TimeoutMillis = timeoutMillis
	})
	if err != nil {
		return nil, err
	}
	return resp.(*kmsg.DeleteRecordsResponse), nil
}

// DescribeConfigs reads resource configs. A nil ConfigNames on a resource
// requests all of that resource's configs.
func (b *Broker) DescribeConfigs(ctx context.Context, resources []kmsg.DescribeConfigsRequestResource, includeSynonyms bool) (*kmsg.DescribeConfigsResponse, error) {
	req := &kmsg.DescribeConfigsRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		dr := r.(*kmsg.DescribeConfigsRequest)
		dr.Resources = resources
		dr.IncludeSynonyms = includeSynonyms
	})
	if err != nil {
		return nil, err
	}
	return resp.(*kmsg.DescribeConfigsResponse), nil
}

// AlterConfigs overwrites resource configs.
func (b *Broker) AlterConfigs(ctx context.Context, resources []kmsg.AlterConfigsRequestResource, validateOnly bool) (*kmsg.AlterConfigsResponse, error) {
	req := &kmsg.AlterConfigsRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		ar := r.(*kmsg.AlterConfigsRequest)
		ar.Resources = resources
		ar.ValidateOnly = validateOnly
	})
	if err != nil {
		return nil, err
	}
	return resp.(*kmsg.AlterConfigsResponse), nil
}

// InitProducerID initializes (or re-initializes) a producer's id/epoch for
// idempotent or transactional production.
func (b *Broker) InitProducerID(ctx context.Context, transactionalID *string, transactionTimeoutMs int32, producerID int64, producerEpoch int16) (*kmsg.InitProducerIDResponse, error) {
	req := &kmsg.InitProducerIDRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		ir := r.(*kmsg.InitProducerIDRequest)
		ir.TransactionalID = transactionalID
		ir.TransactionTimeoutMs = transactionTimeoutMs
		ir.ProducerID = producerID
		ir.ProducerEpoch = producerEpoch
	})
	if err != nil {
		return nil, err
	}
	return resp.(*kmsg.InitProducerIDResponse), nil
}

// AddPartitionsToTxn registers partitions as part of an in-flight
// transaction.
func (b *Broker) AddPartitionsToTxn(ctx context.Context, transactionalID string, producerID int64, producerEpoch int16, topics []kmsg.AddPartitionsToTxnRequestTopic) (*kmsg.AddPartitionsToTxnResponse, error) {
	req := &kmsg.AddPartitionsToTxnRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		ar := r.(*kmsg.AddPartitionsToTxnRequest)
		ar.TransactionalID = transactionalID
		ar.ProducerID = producerID
		ar.ProducerEpoch = producerEpoch
		ar.Topics = topics
	})
	if err != nil {
		return nil, err
	}
	return resp.(*kmsg.AddPartitionsToTxnResponse), nil
}

// AddOffsetsToTxn registers a consumer group's offsets as part of an
// in-flight transaction.
func (b *Broker) AddOffsetsToTxn(ctx context.Context, transactionalID string, producerID int64, producerEpoch int16, group string) (*kmsg.AddOffsetsToTxnResponse, error) {
	req := &kmsg.AddOffsetsToTxnRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		ar := r.(*kmsg.AddOffsetsToTxnRequest)
		ar.TransactionalID = transactionalID
		ar.ProducerID = producerID
		ar.ProducerEpoch = producerEpoch
		ar.Group = group
	})
	if err != nil {
		return nil, err
	}
	return resp.(*kmsg.AddOffsetsToTxnResponse), nil
}

// TxnOffsetCommit commits consumer offsets as part of an in-flight
// transaction.
func (b *Broker) TxnOffsetCommit(ctx context.Context, transactionalID, group string, producerID int64, producerEpoch int16, topics []kmsg.TxnOffsetCommitRequestTopic) (*kmsg.TxnOffsetCommitResponse, error) {
	req := &kmsg.TxnOffsetCommitRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		tr := r.(*kmsg.TxnOffsetCommitRequest)
		tr.TransactionalID = transactionalID
		tr.Group = group
		tr.ProducerID = producerID
		tr.ProducerEpoch = producerEpoch
		tr.Topics = topics
	})
	if err != nil {
		return nil, err
	}
	return resp.(*kmsg.TxnOffsetCommitResponse), nil
}

// EndTxn commits or aborts an in-flight transaction.
func (b *Broker) EndTxn(ctx context.Context, transactionalID string, producerID int64, producerEpoch int16, committed bool) (*kmsg.EndTxnResponse, error) {
	req := &kmsg.EndTxnRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		er := r.(*kmsg.EndTxnRequest)
		er.TransactionalID = transactionalID
		er.ProducerID = producerID
		er.ProducerEpoch = producerEpoch
		er.Committed = committed
	})
	if err != nil {
		return nil, err
	}
	return resp.(*kmsg.EndTxnResponse), nil
}

// CreateAcls creates ACL bindings. The wire request calls these
// "Creations"; the parameter is named that way here too rather than
// relabeling it to a generic "Acls" the way a caller unfamiliar with the
// protocol might expect.
func (b *Broker) CreateAcls(ctx context.Context, creations []kmsg.ACLCreation) (*kmsg.CreateAclsResponse, error) {
	req := &kmsg.CreateAclsRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		r.(*kmsg.CreateAclsRequest).Creations = creations
	})
	if err != nil {
		return nil, err
	}
	return resp.(*kmsg.CreateAclsResponse), nil
}

// DescribeAcls lists ACL bindings matching filter.
func (b *Broker) DescribeAcls(ctx context.Context, filter kmsg.ACLFilter) (*kmsg.DescribeAclsResponse, error) {
	req := &kmsg.DescribeAclsRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		r.(*kmsg.DescribeAclsRequest).Filter = filter
	})
	if err != nil {
		return nil, err
	}
	return resp.(*kmsg.DescribeAclsResponse), nil
}

// DeleteAcls deletes ACL bindings matching filters.
func (b *Broker) DeleteAcls(ctx context.Context, filters []kmsg.ACLFilter) (*kmsg.DeleteAclsResponse, error) {
	req := &kmsg.DeleteAclsRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		r.(*kmsg.DeleteAclsRequest).Filters = filters
	})
	if err != nil {
		return nil, err
	}
	return resp.(*kmsg.DeleteAclsResponse), nil
}

// ApiVersions is exposed directly in addition to being run internally by
// connect(), so a caller can probe a broker's advertised version table
// without going through the full negotiation loop.
func (b *Broker) ApiVersions(ctx context.Context, clientSoftwareName, clientSoftwareVersion string) (*kmsg.ApiVersionsResponse, error) {
	req := &kmsg.ApiVersionsRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		ar := r.(*kmsg.ApiVersionsRequest)
		ar.ClientSoftwareName = clientSoftwareName
		ar.ClientSoftwareVersion = clientSoftwareVersion
	})
	if err != nil {
		return nil, err
	}
	return resp.(*kmsg.ApiVersionsResponse), nil
}

// SaslHandshake is exposed directly in addition to being run internally by
// authenticate(), mirroring ApiVersions.
func (b *Broker) SaslHandshake(ctx context.Context, mechanism string) (*kmsg.SASLHandshakeResponse, error) {
	req := &kmsg.SASLHandshakeRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		r.(*kmsg.SASLHandshakeRequest).Mechanism = mechanism
	})
	if err != nil {
		return nil, err
	}
	return resp.(*kmsg.SASLHandshakeResponse), nil
}

// SaslAuthenticate is exposed directly in addition to being run internally
// by authenticate(), mirroring ApiVersions.
func (b *Broker) SaslAuthenticate(ctx context.Context, authBytes []byte) (*kmsg.SASLAuthenticateResponse, error) {
	req := &kmsg.SASLAuthenticateRequest{}
	family, _ := kmsg.FamilyByKey(req.Key())
	resp, err := b.call(ctx, req.Key(), family, func(r kmsg.Request) {
		r.(*kmsg.SASLAuthenticateRequest).SASLAuthBytes = authBytes
	})
	if err != nil {
		return nil, err
	}
	return resp.(*kmsg.SASLAuthenticateResponse), nil
}
