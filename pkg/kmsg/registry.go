package kmsg

// families indexes every Family this package implements by its API key.
// pkg/kgo's dispatcher (§4.3) uses this to pick, for a negotiated version
// range, the request factory to call for a given RPC.
var families = map[int16]Family{
	apiKeyProduce:            produceFamily,
	apiKeyFetch:              fetchFamily,
	apiKeyListOffsets:        listOffsetsFamily,
	apiKeyMetadata:           metadataFamily,
	apiKeyOffsetCommit:       offsetCommitFamily,
	apiKeyOffsetFetch:        offsetFetchFamily,
	apiKeyFindCoordinator:    findCoordinatorFamily,
	apiKeyJoinGroup:          joinGroupFamily,
	apiKeyHeartbeat:          heartbeatFamily,
	apiKeyLeaveGroup:         leaveGroupFamily,
	apiKeySyncGroup:          syncGroupFamily,
	apiKeyDescribeGroups:     describeGroupsFamily,
	apiKeyListGroups:         listGroupsFamily,
	apiKeySaslHandshake:      saslHandshakeFamily,
	apiKeyCreateTopics:       createTopicsFamily,
	apiKeyDeleteTopics:       deleteTopicsFamily,
	apiKeyDeleteRecords:      deleteRecordsFamily,
	apiKeyInitProducerID:     initProducerIDFamily,
	apiKeyAddPartitionsToTxn: addPartitionsToTxnFamily,
	apiKeyAddOffsetsToTxn:    addOffsetsToTxnFamily,
	apiKeyEndTxn:             endTxnFamily,
	apiKeyTxnOffsetCommit:    txnOffsetCommitFamily,
	apiKeyDescribeAcls:       describeAclsFamily,
	apiKeyCreateAcls:         createAclsFamily,
	apiKeyDeleteAcls:         deleteAclsFamily,
	apiKeyDescribeConfigs:    describeConfigsFamily,
	apiKeyAlterConfigs:       alterConfigsFamily,
	apiKeyCreatePartitions:   createPartitionsFamily,
	apiKeySaslAuthenticate:   saslAuthenticateFamily,
	apiKeyDeleteGroups:       deleteGroupsFamily,
	apiKeyApiVersions:        apiVersionsFamily,
}

// FamilyByKey returns the Family implementing apiKey, and whether this
// package implements that key at all.
func FamilyByKey(apiKey int16) (Family, bool) {
	f, ok := families[apiKey]
	return f, ok
}
