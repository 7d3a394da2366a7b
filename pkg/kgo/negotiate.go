package kgo

import (
	"context"

	"github.com/kafkasaur/kgo/pkg/kerr"
	"github.com/kafkasaur/kgo/pkg/kmsg"
)

// apiVersionsCandidates are the ApiVersions request versions tried, highest
// first, adapted from the teacher's own requestAPIVersions retry loop: a
// broker older than the client's newest known ApiVersions version responds
// UNSUPPORTED_VERSION, and the negotiator falls back one version at a time
// until one is accepted or the list is exhausted (§4.2, §7).
var apiVersionsCandidates = []int16{3, 2, 1, 0}

// negotiateVersions runs the version negotiator (§4.2): send ApiVersions at
// descending candidate versions until the broker accepts one, then reduce
// its reported per-key [min,max] ranges into the broker's versions table.
func (b *Broker) negotiateVersions(ctx context.Context) (map[int16]versionRange, error) {
	for _, v := range apiVersionsCandidates {
		req := &kmsg.ApiVersionsRequest{
			ClientSoftwareName:    b.cfg.softwareName,
			ClientSoftwareVersion: b.cfg.softwareVersion,
		}
		req.SetVersion(v)

		resp, err := b.sendRequest(ctx, req)
		if err != nil {
			// A transport-level failure (including a connection
			// that a malformed pre-2.4 broker slammed shut on an
			// unrecognized flexible-encoded v3 request) means this
			// candidate version can't be used; the socket is gone
			// either way, so there is nothing left to retry on it.
			return nil, err
		}

		av := resp.(*kmsg.ApiVersionsResponse)
		if code := av.ErrorCode; code != 0 {
			apiErr := kerr.ErrorForCode(code)
			if apiErr == kerr.UnsupportedVersion {
				continue
			}
			return nil, apiErr
		}

		versions := make(map[int16]versionRange, len(av.ApiKeys))
		for _, k := range av.ApiKeys {
			versions[k.ApiKey] = versionRange{min: k.MinVersion, max: k.MaxVersion}
		}
		return versions, nil
	}
	return nil, errAPIVersionsExhausted
}
