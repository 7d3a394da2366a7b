package kgo

import (
	"context"
	"errors"
	"testing"

	"github.com/kafkasaur/kgo/pkg/kbin"
)

func encodeApiVersionsResponse(version int16, errCode int16, keys []struct{ key, min, max int16 }) []byte {
	var dst []byte
	dst = kbin.AppendInt16(dst, errCode)
	dst = kbin.AppendArrayLen(dst, len(keys))
	for _, k := range keys {
		dst = kbin.AppendInt16(dst, k.key)
		dst = kbin.AppendInt16(dst, k.min)
		dst = kbin.AppendInt16(dst, k.max)
	}
	if version >= 1 {
		dst = kbin.AppendInt32(dst, 0)
	}
	return dst
}

func TestNegotiateVersionsFallsBackOnUnsupportedVersion(t *testing.T) {
	conn := newFakeConn("broker:9092")
	conn.connected = true

	calls := 0
	conn.handlers[apiVersionsKey] = func(version int16, body []byte) []byte {
		calls++
		if version == 3 {
			return encodeApiVersionsResponse(version, 35, nil) // UNSUPPORTED_VERSION
		}
		return encodeApiVersionsResponse(version, 0, []struct{ key, min, max int16 }{
			{key: 0, min: 0, max: 8},
			{key: 1, min: 0, max: 11},
		})
	}

	b := &Broker{conn: conn, cfg: defaultCfg(), lock: newTimedMutex(0), lookupRequest: notConnectedLookup}

	versions, err := b.negotiateVersions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("got %d ApiVersions calls, want 2 (v3 rejected, v2 accepted)", calls)
	}
	if vr, ok := versions[0]; !ok || vr.max != 8 {
		t.Fatalf("versions[0] = %+v, ok=%v, want max=8", vr, ok)
	}
	if vr, ok := versions[1]; !ok || vr.max != 11 {
		t.Fatalf("versions[1] = %+v, ok=%v, want max=11", vr, ok)
	}
}

func TestNegotiateVersionsExhaustedReturnsSentinel(t *testing.T) {
	conn := newFakeConn("broker:9092")
	conn.connected = true
	conn.handlers[apiVersionsKey] = func(version int16, body []byte) []byte {
		return encodeApiVersionsResponse(version, 35, nil)
	}

	b := &Broker{conn: conn, cfg: defaultCfg(), lock: newTimedMutex(0), lookupRequest: notConnectedLookup}

	_, err := b.negotiateVersions(context.Background())
	if !errors.Is(err, errAPIVersionsExhausted) {
		t.Fatalf("got %v, want errAPIVersionsExhausted", err)
	}
}

func TestNegotiateVersionsOtherErrorStopsImmediately(t *testing.T) {
	conn := newFakeConn("broker:9092")
	conn.connected = true

	calls := 0
	conn.handlers[apiVersionsKey] = func(version int16, body []byte) []byte {
		calls++
		return encodeApiVersionsResponse(version, 41, nil) // NOT_CONTROLLER: not UNSUPPORTED_VERSION, so no fallback
	}

	b := &Broker{conn: conn, cfg: defaultCfg(), lock: newTimedMutex(0), lookupRequest: notConnectedLookup}

	_, err := b.negotiateVersions(context.Background())
	if err == nil {
		t.Fatal("want error, got nil")
	}
	if calls != 1 {
		t.Fatalf("got %d calls, want 1 (non-UNSUPPORTED_VERSION errors don't retry)", calls)
	}
}
