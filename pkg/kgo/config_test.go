package kgo

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/kafkasaur/kgo/pkg/kbin"
	"github.com/kafkasaur/kgo/pkg/kmsg"
)

func TestNewBrokerAddrUsesConfiguredDialFunc(t *testing.T) {
	called := false
	var gotNetwork, gotAddr string
	dial := func(ctx context.Context, network, addr string) (net.Conn, error) {
		called = true
		gotNetwork, gotAddr = network, addr
		client, server := net.Pipe()
		go server.Close()
		return client, nil
	}

	b := NewBrokerAddr("broker:9092", 1, WithDialFunc(dial))
	if err := b.conn.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if !called {
		t.Fatal("want the configured DialFunc to be invoked by NewBrokerAddr's Connection")
	}
	if gotNetwork != "tcp" || gotAddr != "broker:9092" {
		t.Fatalf(`got dial(%q, %q), want ("tcp", "broker:9092")`, gotNetwork, gotAddr)
	}
	if !b.conn.Connected() {
		t.Fatal("want the connection marked up after Connect")
	}
}

func decodeMetadataRequestAllowAutoTopicCreation(version int16, body []byte) bool {
	r := &kbin.Reader{Src: body}
	n := r.ArrayLen()
	for i := int32(0); i < n; i++ {
		_ = r.String()
	}
	if version < 4 {
		return true
	}
	return r.Bool()
}

func encodeMetadataResponse(version int16) []byte {
	var dst []byte
	if version >= 3 {
		dst = kbin.AppendInt32(dst, 0) // throttle
	}
	dst = kbin.AppendArrayLen(dst, 0) // brokers
	if version >= 2 {
		dst = kbin.AppendNullableString(dst, nil) // cluster id
	}
	if version >= 1 {
		dst = kbin.AppendInt32(dst, 0) // controller id
	}
	dst = kbin.AppendArrayLen(dst, 0) // topics
	return dst
}

func TestMetadataUsesConfiguredAllowAutoTopicCreation(t *testing.T) {
	const version = int16(4)
	conn := newFakeConn("broker:9092")
	metadataKey := (&kmsg.MetadataRequest{}).Key()

	var gotAllow bool
	conn.handlers[metadataKey] = func(v int16, body []byte) []byte {
		gotAllow = decodeMetadataRequestAllowAutoTopicCreation(v, body)
		return encodeMetadataResponse(v)
	}

	versions := map[int16]versionRange{metadataKey: {min: 0, max: version}}
	b := &Broker{
		conn:          conn,
		cfg:           defaultCfg(),
		lock:          newTimedMutex(time.Second),
		versions:      versions,
		lookupRequest: newLookup(versions),
	}
	b.cfg.allowAutoTopicCreation = false
	conn.connected = true

	if _, err := b.Metadata(context.Background(), nil, false, false); err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if gotAllow {
		t.Fatal("got AllowAutoTopicCreation=true on the wire, want false (from WithAllowAutoTopicCreation(false))")
	}
}
