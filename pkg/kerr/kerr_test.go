package kerr

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
)

func TestErrorForCode(t *testing.T) {
	for _, tt := range []struct {
		code int16
		want error
	}{
		{0, nil},
		{35, UnsupportedVersion},
		{79, MemberIDRequired},
		{9999, UnknownServerError},
	} {
		got := ErrorForCode(tt.code)
		if !cmp.Equal(got, tt.want) {
			t.Errorf("ErrorForCode(%d): got %s, want %s\n%s", tt.code, spew.Sdump(got), spew.Sdump(tt.want), cmp.Diff(tt.want, got))
		}
	}
}

func TestIsRetriable(t *testing.T) {
	if !IsRetriable(RequestTimedOut) {
		t.Error("RequestTimedOut should be retriable")
	}
	if IsRetriable(InvalidRequest) {
		t.Error("InvalidRequest should not be retriable")
	}
	if IsRetriable(nil) {
		t.Error("nil should not be retriable")
	}
}
