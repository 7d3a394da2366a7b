// Package compress implements the record-batch compression codecs Kafka's
// wire format names by a 3-bit codec id on the record batch attributes
// field (KIP-98). It is standalone: pkg/kgo's Produce and Fetch carry record
// batches as raw bytes and do not call it, so callers compress or
// decompress batches with it themselves; the codec id itself travels over
// the wire, not through this package's API.
package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec identifies one of the standard Kafka record-batch compression
// types; the numeric values match the wire attribute bits.
type Codec int8

const (
	CodecNone   Codec = 0
	CodecGzip   Codec = 1
	CodecSnappy Codec = 2
	CodecLZ4    Codec = 3
	CodecZstd   Codec = 4
)

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecGzip:
		return "gzip"
	case CodecSnappy:
		return "snappy"
	case CodecLZ4:
		return "lz4"
	case CodecZstd:
		return "zstd"
	default:
		return fmt.Sprintf("codec(%d)", int8(c))
	}
}

// Compress returns src compressed under c. CodecNone returns src unchanged.
func Compress(c Codec, src []byte) ([]byte, error) {
	switch c {
	case CodecNone:
		return src, nil
	case CodecGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(src); err != nil {
			return nil, fmt.Errorf("compress: gzip write: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("compress: gzip close: %w", err)
		}
		return buf.Bytes(), nil
	case CodecSnappy:
		return snappy.Encode(nil, src), nil
	case CodecLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(src); err != nil {
			return nil, fmt.Errorf("compress: lz4 write: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("compress: lz4 close: %w", err)
		}
		return buf.Bytes(), nil
	case CodecZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("compress: zstd writer: %w", err)
		}
		defer enc.Close()
		return enc.EncodeAll(src, nil), nil
	default:
		return nil, fmt.Errorf("compress: unknown codec %d", c)
	}
}

// Decompress returns src decompressed per c. CodecNone returns src
// unchanged.
func Decompress(c Codec, src []byte) ([]byte, error) {
	switch c {
	case CodecNone:
		return src, nil
	case CodecGzip:
		r, err := gzip.NewReader(bytes.NewReader(src))
		if err != nil {
			return nil, fmt.Errorf("decompress: gzip: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)
	case CodecSnappy:
		return snappy.Decode(nil, src)
	case CodecLZ4:
		r := lz4.NewReader(bytes.NewReader(src))
		return io.ReadAll(r)
	case CodecZstd:
		dec, err := zstd.NewReader(bytes.NewReader(src))
		if err != nil {
			return nil, fmt.Errorf("decompress: zstd: %w", err)
		}
		defer dec.Close()
		return io.ReadAll(dec)
	default:
		return nil, fmt.Errorf("decompress: unknown codec %d", c)
	}
}
