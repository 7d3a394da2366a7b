package kgo

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/kafkasaur/kgo/pkg/kbin"
	"github.com/kafkasaur/kgo/pkg/kmsg"
)

// fakeConn is a test double for Connection that decodes a request header
// well enough to dispatch to a per-API-key handler, and returns the
// handler's response body the way netConn.Send does: correlation id
// removed, a flexible response's tagged-field header still in front. It
// lets broker/sasl/rpc tests exercise Broker without a socket.
type fakeConn struct {
	addr      string
	connected bool

	// handlers maps an api key to a function producing the response body
	// bytes (post-header, pre any ReadFrom) for the request version sent.
	handlers map[int16]func(version int16, body []byte) []byte

	// rawHandler, if set, answers SendRaw calls (pre-KIP-152 SASL).
	rawHandler func(sent []byte) ([]byte, error)

	sendErr    error
	connectErr error

	sent []sentRequest
}

type sentRequest struct {
	apiKey  int16
	version int16
	corrID  int32
	body    []byte
}

func newFakeConn(addr string) *fakeConn {
	return &fakeConn{addr: addr, handlers: make(map[int16]func(int16, []byte) []byte)}
}

func (f *fakeConn) Addr() string { return f.addr }

func (f *fakeConn) Connect(ctx context.Context) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	return nil
}

func (f *fakeConn) Disconnect() { f.connected = false }

func (f *fakeConn) Connected() bool { return f.connected }

func (f *fakeConn) Send(ctx context.Context, corrID int32, req []byte, timeout time.Duration) ([]byte, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	if !f.connected {
		return nil, errConnDead
	}

	r := &kbin.Reader{Src: req}
	apiKey := r.Int16()
	version := r.Int16()
	gotCorrID := r.Int32()
	_ = r.String() // client id
	if family, ok := kmsg.FamilyByKey(apiKey); ok {
		if protoReq := family.Protocol(version); protoReq != nil && protoReq.IsFlexible() && apiKey != apiVersionsKey {
			r.SkipTags()
		}
	}
	if err := r.Complete(); err != nil {
		return nil, fmt.Errorf("fakeConn: bad request header: %w", err)
	}

	f.sent = append(f.sent, sentRequest{apiKey: apiKey, version: version, corrID: gotCorrID, body: r.Src})

	handler, ok := f.handlers[apiKey]
	if !ok {
		return nil, fmt.Errorf("fakeConn: no handler registered for api key %d", apiKey)
	}
	body := handler(version, r.Src)

	headerFlexible := false
	if family, ok := kmsg.FamilyByKey(apiKey); ok {
		if protoReq := family.Protocol(version); protoReq != nil {
			headerFlexible = protoReq.IsFlexible() && apiKey != apiVersionsKey
		}
	}

	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, uint32(corrID))
	if headerFlexible {
		out = kbin.AppendEmptyTagBuffer(out)
	}
	out = append(out, body...)
	return out[4:], nil
}

func (f *fakeConn) SendRaw(ctx context.Context, buf []byte, timeout time.Duration) ([]byte, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	if !f.connected {
		return nil, errConnDead
	}
	if f.rawHandler == nil {
		return nil, fmt.Errorf("fakeConn: no raw handler registered")
	}
	return f.rawHandler(buf)
}
