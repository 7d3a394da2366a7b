package kgo

import "github.com/kafkasaur/kgo/pkg/kbin"

// appendRequestHeader appends the Kafka request header (api_key,
// api_version, correlation_id, client_id, and — for flexible requests — an
// empty tagged-field buffer) to dst; the caller appends the body after it
// via kmsg.Request.AppendTo.
func appendRequestHeader(dst []byte, apiKey, apiVersion int16, corrID int32, clientID string, flexible bool) []byte {
	dst = kbin.AppendInt16(dst, apiKey)
	dst = kbin.AppendInt16(dst, apiVersion)
	dst = kbin.AppendInt32(dst, corrID)
	dst = kbin.AppendString(dst, clientID)
	if flexible {
		dst = kbin.AppendEmptyTagBuffer(dst)
	}
	return dst
}

// stripResponseHeader removes the response header ahead of the body a
// kmsg.Response.ReadFrom call expects. Non-flexible responses carry no
// header fields beyond the correlation id the Connection already consumed;
// flexible responses additionally carry a tagged-field buffer that must be
// skipped here. ApiVersions is a permanent exception: KIP-511 made its
// response body flexible without making its header flexible, so callers
// must pass flexible=false for it regardless of request version.
func stripResponseHeader(src []byte, flexible bool) ([]byte, error) {
	if !flexible {
		return src, nil
	}
	r := &kbin.Reader{Src: src}
	r.SkipTags()
	return r.Src, r.Complete()
}
