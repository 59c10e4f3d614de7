package snapshot

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Compressor handles ZStandard compression for snapshot data.
// Create once and reuse to eliminate allocations.
type Compressor struct {
	encoder *zstd.Encoder
}

// NewCompressor creates a reusable ZStandard compressor.
// Uses SpeedDefault (level 3) for balanced compression ratio and speed.
// Caller must call Close() when done to release resources.
func NewCompressor() (*Compressor, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	return &Compressor{encoder: encoder}, nil
}

// Compress compresses data using ZStandard.
// Safe for concurrent use from multiple goroutines.
func (c *Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}

	dst := make([]byte, 0, len(data)/2)
	return c.encoder.EncodeAll(data, dst), nil
}

// Close releases compressor resources.
func (c *Compressor) Close() error {
	if c.encoder != nil {
		return c.encoder.Close()
	}
	return nil
}

// Decompressor handles ZStandard decompression.
// Create once and reuse to eliminate allocations.
type Decompressor struct {
	decoder *zstd.Decoder
}

// NewDecompressor creates a reusable ZStandard decompressor.
// Caller must call Close() when done to release resources.
func NewDecompressor() (*Decompressor, error) {
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &Decompressor{decoder: decoder}, nil
}

// Decompress decompresses ZStandard data.
// Safe for concurrent use from multiple goroutines.
func (d *Decompressor) Decompress(compressed []byte) ([]byte, error) {
	if len(compressed) == 0 {
		return []byte{}, nil
	}

	decompressed, err := d.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}
	return decompressed, nil
}

// Close releases decompressor resources.
func (d *Decompressor) Close() error {
	if d.decoder != nil {
		d.decoder.Close()
	}
	return nil
}
