// Package snapshot serializes immutable schema snapshots to a compact
// wire format: MessagePack encoding compressed with ZStandard. Snapshots
// let the schema collaborator hand the compiler the same column metadata
// across processes (editor, backend, CLI cache) without re-reading the
// store.
package snapshot

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Column is one column entry in a snapshot.
type Column struct {
	Name      string `msgpack:"name"`
	Type      string `msgpack:"type"`
	StoreType string `msgpack:"store_type,omitempty"`
}

// Snapshot is the serialized form of a table schema.
type Snapshot struct {
	Columns    []Column  `msgpack:"columns"`
	CapturedAt time.Time `msgpack:"captured_at"`
}

// Encode serializes and compresses a snapshot.
func Encode(s *Snapshot) ([]byte, error) {
	data, err := msgpack.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	c, err := NewCompressor()
	if err != nil {
		return nil, err
	}
	defer c.Close()

	return c.Compress(data)
}

// Decode decompresses and deserializes a snapshot.
func Decode(data []byte) (*Snapshot, error) {
	d, err := NewDecompressor()
	if err != nil {
		return nil, err
	}
	defer d.Close()

	raw, err := d.Decompress(data)
	if err != nil {
		return nil, err
	}

	var s Snapshot
	if err := msgpack.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &s, nil
}
