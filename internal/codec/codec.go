// Package codec turns values into their stored representation and back:
// JSON serialization plus optional gzip compression behind a sentinel
// marker. The marker makes decompression tier-agnostic — a payload written
// compressed by one process decodes anywhere, compression config or not.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/strata-cache/go-strata-cache/config"
)

// magic prefixes every compressed payload. JSON output can never start with
// these bytes, so the marker is unambiguous.
var magic = []byte{0x00, 'S', 'C', 0x01}

// ErrCorrupted means the compression marker is present but the payload does
// not inflate. Callers treat the key as a miss and delete it proactively.
var ErrCorrupted = errors.New("corrupted compressed payload")

type Codec struct {
	cfg *config.CompressionCfg
}

func New(cfg *config.CompressionCfg) *Codec {
	return &Codec{cfg: cfg}
}

// Encode serializes v and decides compression: an explicit force overrides;
// otherwise the value is compressed iff compression is enabled and the
// serialized size exceeds the threshold.
func (c *Codec) Encode(v any, force *bool) (payload []byte, compressed bool, err error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, false, fmt.Errorf("serialize value: %w", err)
	}

	compress := c.cfg.Enabled() && len(data) > c.cfg.ThresholdBytes
	if force != nil {
		compress = *force
	}
	if !compress {
		return data, false, nil
	}

	level := config.CompressDefaultCompression
	if c.cfg.Enabled() {
		level = c.cfg.Level
	}

	var buf bytes.Buffer
	buf.Write(magic)
	zw, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, false, fmt.Errorf("compression level %d: %w", level, err)
	}
	if _, err = zw.Write(data); err != nil {
		return nil, false, fmt.Errorf("compress value: %w", err)
	}
	if err = zw.Close(); err != nil {
		return nil, false, fmt.Errorf("compress value: %w", err)
	}
	return buf.Bytes(), true, nil
}

// Decode returns the serialized (JSON) bytes of a stored payload,
// transparently inflating compressed ones regardless of which tier served
// them.
func (c *Codec) Decode(payload []byte) ([]byte, error) {
	if !IsCompressed(payload) {
		return payload, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(payload[len(magic):]))
	if err != nil {
		return nil, ErrCorrupted
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, ErrCorrupted
	}
	return data, nil
}

// IsCompressed reports whether the payload carries the compression marker.
func IsCompressed(payload []byte) bool {
	return bytes.HasPrefix(payload, magic)
}
