package kgo

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/kafkasaur/kgo/pkg/kbin"
	"github.com/kafkasaur/kgo/pkg/kerr"
	"github.com/kafkasaur/kgo/pkg/kmsg"
)

func pairSet(topics []kmsg.FetchRequestTopic) map[string]bool {
	out := make(map[string]bool)
	for _, t := range topics {
		for _, p := range t.Partitions {
			out[pairKey(t.Topic, p.Partition)] = true
		}
	}
	return out
}

func pairKey(topic string, partition int32) string {
	return topic + "#" + string(rune('0'+partition))
}

func TestShuffleConsolidateFetchPreservesAllPairs(t *testing.T) {
	in := []kmsg.FetchRequestTopic{
		{Topic: "a", Partitions: []kmsg.FetchRequestTopicPartition{{Partition: 0}, {Partition: 1}}},
		{Topic: "b", Partitions: []kmsg.FetchRequestTopicPartition{{Partition: 0}}},
		{Topic: "c", Partitions: []kmsg.FetchRequestTopicPartition{{Partition: 0}, {Partition: 1}, {Partition: 2}}},
	}
	want := pairSet(in)

	for i := 0; i < 20; i++ {
		out := shuffleConsolidateFetch(in)
		got := pairSet(out)
		if len(got) != len(want) {
			t.Fatalf("iteration %d: got %d pairs, want %d", i, len(got), len(want))
		}
		for k := range want {
			if !got[k] {
				t.Fatalf("iteration %d: missing pair %s after shuffle", i, k)
			}
		}

		// Consolidation merges only pairs the shuffle left next to each
		// other, so a topic may appear in several entries, but never in
		// two adjacent ones.
		for j := 1; j < len(out); j++ {
			if out[j].Topic == out[j-1].Topic {
				t.Fatalf("iteration %d: adjacent entries %d and %d both hold topic %q", i, j-1, j, out[j].Topic)
			}
		}
	}
}

func TestShuffleConsolidateFetchEmptyInput(t *testing.T) {
	out := shuffleConsolidateFetch(nil)
	if len(out) != 0 {
		t.Fatalf("got %d topics for nil input, want 0", len(out))
	}
}

func TestShuffleMetadataTopicsPreservesSetAndDoesNotMutateInput(t *testing.T) {
	in := []kmsg.MetadataRequestTopic{{Topic: "a"}, {Topic: "b"}, {Topic: "c"}}
	inCopy := append([]kmsg.MetadataRequestTopic(nil), in...)

	out := shuffleMetadataTopics(in)

	if len(in) != len(inCopy) {
		t.Fatal("input slice length changed")
	}
	for i := range in {
		if in[i] != inCopy[i] {
			t.Fatal("shuffleMetadataTopics mutated the caller's input slice")
		}
	}

	gotNames := make([]string, len(out))
	for i, topic := range out {
		gotNames[i] = topic.Topic
	}
	sort.Strings(gotNames)
	if gotNames[0] != "a" || gotNames[1] != "b" || gotNames[2] != "c" {
		t.Fatalf("got %v, want the same three topics in some order", gotNames)
	}
}

func TestListOffsetsNormalizeOffsetsReplacesV0OffsetsArray(t *testing.T) {
	resp := &kmsg.ListOffsetsResponse{
		Topics: []kmsg.ListOffsetsResponseTopic{
			{
				Topic: "t",
				Partitions: []kmsg.ListOffsetsResponseTopicPartition{
					{Partition: 0, Offsets: []int64{100, 200, 300}},
					{Partition: 1, Offset: 42}, // already-normalized v1+ style partition
				},
			},
		},
	}

	resp.NormalizeOffsets()

	p0 := resp.Topics[0].Partitions[0]
	if p0.Offset != 300 {
		t.Fatalf("got Offset=%d, want 300 (last element of Offsets)", p0.Offset)
	}
	if p0.Offsets != nil {
		t.Fatalf("got Offsets=%v, want nil after normalization", p0.Offsets)
	}

	p1 := resp.Topics[0].Partitions[1]
	if p1.Offset != 42 {
		t.Fatalf("got Offset=%d for an already-normalized partition, want unchanged 42", p1.Offset)
	}
}

func TestListOffsetsNormalizeOffsetsIdempotent(t *testing.T) {
	resp := &kmsg.ListOffsetsResponse{
		Topics: []kmsg.ListOffsetsResponseTopic{
			{Topic: "t", Partitions: []kmsg.ListOffsetsResponseTopicPartition{{Partition: 0, Offsets: []int64{7}}}},
		},
	}
	resp.NormalizeOffsets()
	resp.NormalizeOffsets()
	if resp.Topics[0].Partitions[0].Offset != 7 {
		t.Fatalf("got %d, want 7 after calling NormalizeOffsets twice", resp.Topics[0].Partitions[0].Offset)
	}
}

// newJoinedBroker returns a Broker wired directly to conn, bypassing
// connect(): its versions table and lookupRequest are set as if negotiation
// already ran, pinning joinGroupKey to maxVersion so the encoded fixtures
// below have one fixed wire shape to target.
func newJoinedBroker(conn Connection, maxVersion int16) *Broker {
	joinGroupKey := (&kmsg.JoinGroupRequest{}).Key()
	versions := map[int16]versionRange{joinGroupKey: {min: 0, max: maxVersion}}
	return &Broker{
		conn:          conn,
		cfg:           defaultCfg(),
		lock:          newTimedMutex(time.Second),
		versions:      versions,
		lookupRequest: newLookup(versions),
	}
}

func decodeJoinGroupRequestMemberID(version int16, body []byte) string {
	r := &kbin.Reader{Src: body}
	_ = r.String() // group
	_ = r.Int32()  // session timeout
	if version >= 1 {
		_ = r.Int32() // rebalance timeout
	}
	return r.String() // member id
}

func encodeJoinGroupResponse(version int16, errCode int16, memberID string) []byte {
	var dst []byte
	if version >= 2 {
		dst = kbin.AppendInt32(dst, 0) // throttle
	}
	dst = kbin.AppendInt16(dst, errCode)
	dst = kbin.AppendInt32(dst, 0) // generation
	if version >= 7 {
		dst = kbin.AppendNullableString(dst, nil) // protocol type
	}
	if version >= 7 {
		dst = kbin.AppendNullableString(dst, nil)
	} else {
		dst = kbin.AppendString(dst, "range")
	}
	dst = kbin.AppendString(dst, "leader")
	dst = kbin.AppendString(dst, memberID)
	dst = kbin.AppendArrayLen(dst, 0) // members
	return dst
}

func TestJoinGroupRetriesOnceOnMemberIDRequired(t *testing.T) {
	const version = int16(5)
	const assignedMemberID = "consumer-abc-123"

	conn := newFakeConn("broker:9092")
	joinGroupKey := (&kmsg.JoinGroupRequest{}).Key()

	calls := 0
	var seenMemberIDs []string
	conn.handlers[joinGroupKey] = func(v int16, body []byte) []byte {
		calls++
		seenMemberIDs = append(seenMemberIDs, decodeJoinGroupRequestMemberID(v, body))
		if calls == 1 {
			return encodeJoinGroupResponse(v, kerr.MemberIDRequired.Code, assignedMemberID)
		}
		return encodeJoinGroupResponse(v, 0, assignedMemberID)
	}

	b := newJoinedBroker(conn, version)
	conn.connected = true

	resp, err := b.JoinGroup(context.Background(), "g", 10000, 10000, "", nil, "consumer", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("got %d JoinGroup calls, want 2 (initial + retry-once)", calls)
	}
	if seenMemberIDs[0] != "" {
		t.Fatalf("first call sent member id %q, want empty", seenMemberIDs[0])
	}
	if seenMemberIDs[1] != assignedMemberID {
		t.Fatalf("retry sent member id %q, want %q", seenMemberIDs[1], assignedMemberID)
	}
	if resp.MemberID != assignedMemberID {
		t.Fatalf("final response member id = %q, want %q", resp.MemberID, assignedMemberID)
	}
}

func TestJoinGroupSurfacesTypedErrorWhenRetryAlsoRequiresMemberID(t *testing.T) {
	conn := newFakeConn("broker:9092")
	joinGroupKey := (&kmsg.JoinGroupRequest{}).Key()

	calls := 0
	conn.handlers[joinGroupKey] = func(v int16, body []byte) []byte {
		calls++
		return encodeJoinGroupResponse(v, kerr.MemberIDRequired.Code, "consumer-abc-123")
	}

	b := newJoinedBroker(conn, 5)
	conn.connected = true

	_, err := b.JoinGroup(context.Background(), "g", 10000, 10000, "", nil, "consumer", nil)
	if calls != 2 {
		t.Fatalf("got %d JoinGroup calls, want 2 (initial + retry-once, no third attempt)", calls)
	}
	var midErr *MemberIDRequiredError
	if !errors.As(err, &midErr) {
		t.Fatalf("got %v, want *MemberIDRequiredError", err)
	}
	if midErr.MemberID != "consumer-abc-123" {
		t.Fatalf("got MemberID=%q, want %q", midErr.MemberID, "consumer-abc-123")
	}
}

func TestJoinGroupNoRetryWhenNotMemberIDRequired(t *testing.T) {
	conn := newFakeConn("broker:9092")
	joinGroupKey := (&kmsg.JoinGroupRequest{}).Key()

	calls := 0
	conn.handlers[joinGroupKey] = func(v int16, body []byte) []byte {
		calls++
		return encodeJoinGroupResponse(v, 0, "already-assigned")
	}

	b := newJoinedBroker(conn, 5)
	conn.connected = true

	_, err := b.JoinGroup(context.Background(), "g", 10000, 10000, "already-assigned", nil, "consumer", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("got %d calls, want 1 (no retry when the broker didn't ask for one)", calls)
	}
}
