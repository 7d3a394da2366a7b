package kbin

import "testing"

func TestStringRoundTrip(t *testing.T) {
	buf := AppendString(nil, "hello")
	buf = AppendInt32(buf, 42)
	r := &Reader{Src: buf}
	if got := r.String(); got != "hello" {
		t.Fatalf("got %q, want hello", got)
	}
	if got := r.Int32(); got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
	if err := r.Complete(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNullableRoundTrip(t *testing.T) {
	buf := AppendNullableString(nil, nil)
	r := &Reader{Src: buf}
	if got := r.NullableString(); got != nil {
		t.Fatalf("got %v, want nil", got)
	}

	buf = AppendNullableBytes(nil, nil)
	r = &Reader{Src: buf}
	if got := r.NullableBytes(); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}

func TestReaderNotEnoughData(t *testing.T) {
	r := &Reader{Src: []byte{0, 1}}
	r.Int32()
	if r.Complete() != ErrNotEnoughData {
		t.Fatalf("expected ErrNotEnoughData")
	}
}

func TestUvarintRoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 127, 128, 300, 1 << 20, 1<<28 - 1} {
		buf := AppendUvarint(nil, v)
		r := &Reader{Src: buf}
		if got := r.Uvarint(); got != v {
			t.Fatalf("Uvarint(%d) round trip got %d", v, got)
		}
		if err := r.Complete(); err != nil {
			t.Fatalf("unexpected error for %d: %v", v, err)
		}
	}
}

func TestSkipTagsEmpty(t *testing.T) {
	buf := AppendEmptyTagBuffer(nil)
	buf = AppendInt32(buf, 7)
	r := &Reader{Src: buf}
	r.SkipTags()
	if got := r.Int32(); got != 7 {
		t.Fatalf("got %d, want 7 after skipping empty tags", got)
	}
}

func TestSkipTagsWithFields(t *testing.T) {
	buf := AppendUvarint(nil, 1)       // one tag
	buf = AppendUvarint(buf, 5)        // tag id
	buf = AppendUvarint(buf, 3)        // length 3
	buf = append(buf, 'a', 'b', 'c')   // tag payload
	buf = AppendInt16(buf, 9)
	r := &Reader{Src: buf}
	r.SkipTags()
	if got := r.Int16(); got != 9 {
		t.Fatalf("got %d, want 9 after skipping tagged field", got)
	}
}
