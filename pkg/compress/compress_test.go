package compress

import (
	"bytes"
	"testing"
)

func TestRoundTripAllCodecs(t *testing.T) {
	payload := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 64)

	for _, c := range []Codec{CodecNone, CodecGzip, CodecSnappy, CodecLZ4, CodecZstd} {
		c := c
		t.Run(c.String(), func(t *testing.T) {
			compressed, err := Compress(c, payload)
			if err != nil {
				t.Fatalf("Compress: %v", err)
			}
			if c != CodecNone && bytes.Equal(compressed, payload) {
				t.Fatalf("compressed output identical to input for codec %s", c)
			}
			got, err := Decompress(c, compressed)
			if err != nil {
				t.Fatalf("Decompress: %v", err)
			}
			if !bytes.Equal(got, payload) {
				t.Fatalf("round trip mismatch for codec %s", c)
			}
		})
	}
}

func TestUnknownCodec(t *testing.T) {
	if _, err := Compress(Codec(99), []byte("x")); err == nil {
		t.Fatal("expected error for unknown codec")
	}
	if _, err := Decompress(Codec(99), []byte("x")); err == nil {
		t.Fatal("expected error for unknown codec")
	}
}
