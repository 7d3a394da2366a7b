package kgo

import (
	"errors"
	"testing"

	"github.com/kafkasaur/kgo/pkg/kmsg"
)

func TestNewLookupSelectsHighestVersionInRange(t *testing.T) {
	metadataKey := (&kmsg.MetadataRequest{}).Key()
	family, ok := kmsg.FamilyByKey(metadataKey)
	if !ok {
		t.Fatal("metadata family not registered")
	}

	versions := map[int16]versionRange{metadataKey: {min: 0, max: 4}}
	lookup := newLookup(versions)

	req, err := lookup(metadataKey, family)()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := req.GetVersion(); got != 4 {
		t.Fatalf("got version %d, want 4 (highest in both family and [0,4])", got)
	}
}

func TestNewLookupClampsToNegotiatedMax(t *testing.T) {
	metadataKey := (&kmsg.MetadataRequest{}).Key()
	family, _ := kmsg.FamilyByKey(metadataKey)

	versions := map[int16]versionRange{metadataKey: {min: 0, max: 1}}
	lookup := newLookup(versions)

	req, err := lookup(metadataKey, family)()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := req.GetVersion(); got != 1 {
		t.Fatalf("got version %d, want 1", got)
	}
}

func TestNewLookupUnknownAPIKeyErrors(t *testing.T) {
	metadataKey := (&kmsg.MetadataRequest{}).Key()
	family, _ := kmsg.FamilyByKey(metadataKey)

	versions := map[int16]versionRange{}
	lookup := newLookup(versions)

	_, err := lookup(metadataKey, family)()
	if !errors.Is(err, errUnsupportedVersion) {
		t.Fatalf("got %v, want errUnsupportedVersion", err)
	}
}

func TestNewLookupNoVersionInRangeErrors(t *testing.T) {
	metadataKey := (&kmsg.MetadataRequest{}).Key()
	family, _ := kmsg.FamilyByKey(metadataKey)

	// Negotiated range entirely above what the family implements.
	versions := map[int16]versionRange{metadataKey: {min: 100, max: 200}}
	lookup := newLookup(versions)

	_, err := lookup(metadataKey, family)()
	if !errors.Is(err, errUnsupportedVersion) {
		t.Fatalf("got %v, want errUnsupportedVersion", err)
	}
}

func TestNotConnectedLookupAlwaysFails(t *testing.T) {
	metadataKey := (&kmsg.MetadataRequest{}).Key()
	family, _ := kmsg.FamilyByKey(metadataKey)

	_, err := notConnectedLookup(metadataKey, family)()
	if !errors.Is(err, errBrokerNotConnected) {
		t.Fatalf("got %v, want errBrokerNotConnected", err)
	}
}
