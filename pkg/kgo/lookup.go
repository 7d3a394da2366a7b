package kgo

import (
	"fmt"

	"github.com/kafkasaur/kgo/pkg/kmsg"
)

// versionRange is the negotiated [min, max] version a broker supports for
// one API key (§3's `versions` field).
type versionRange struct {
	min, max int16
}

// requestFactory builds the concrete kmsg.Request to send for one API call,
// already pinned to the version the lookup selected (§4.3, §6).
type requestFactory func() (kmsg.Request, error)

// lookupFunc is `lookupRequest` from §3/§4.3: given an API key and its
// Family, return the factory that builds a request at the best negotiated
// version.
type lookupFunc func(apiKey int16, family kmsg.Family) requestFactory

// notConnectedLookup is the sentinel lookupRequest value a Broker holds
// before its first successful connect (§4.3): any call fails loudly instead
// of silently picking version 0.
func notConnectedLookup(int16, kmsg.Family) requestFactory {
	return func() (kmsg.Request, error) {
		return nil, errBrokerNotConnected
	}
}

// newLookup builds the dispatcher for a negotiated version table (§4.3):
// for a given family, select the highest version V present in both the
// family's Versions list and the broker's negotiated [min,max] range for
// that API key. If none exists, the returned factory fails with
// errUnsupportedVersion.
func newLookup(versions map[int16]versionRange) lookupFunc {
	return func(apiKey int16, family kmsg.Family) requestFactory {
		return func() (kmsg.Request, error) {
			vr, ok := versions[apiKey]
			if !ok {
				return nil, fmt.Errorf("%w: api key %d not in negotiated table", errUnsupportedVersion, apiKey)
			}
			best := int16(-1)
			for _, v := range family.Versions {
				if v < vr.min || v > vr.max {
					continue
				}
				if v > best {
					best = v
				}
			}
			if best < 0 {
				return nil, fmt.Errorf("%w: api key %d has no version in [%d,%d]", errUnsupportedVersion, apiKey, vr.min, vr.max)
			}
			req := family.Protocol(best)
			if req == nil {
				return nil, fmt.Errorf("%w: api key %d version %d not implemented", errUnsupportedVersion, apiKey, best)
			}
			return req, nil
		}
	}
}
