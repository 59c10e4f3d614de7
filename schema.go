package siftql

import (
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fastjson"

	"github.com/logsift/siftql-go/internal/snapshot"
	"github.com/logsift/siftql-go/ql"
)

// Column describes one column of the backing table.
type Column struct {
	// Name is the column name.
	Name string

	// Type is the access-semantics tag used during SQL generation.
	Type ql.ColumnType

	// StoreType is the raw type string reported by the store, when known
	// (e.g. "Map(String, String)", "LowCardinality(String)").
	StoreType string
}

// Schema is an ordered, immutable snapshot of the backing table's columns,
// supplied fresh per compile call by the schema collaborator. The compiler
// never mutates or caches it; columns it does not mention fall back to
// scalar semantics.
type Schema struct {
	Columns []Column
}

// ColumnTypes returns the lookup form consumed by the ql encoders.
func (s *Schema) ColumnTypes() ql.Columns {
	if s == nil || len(s.Columns) == 0 {
		return nil
	}
	cols := make(ql.Columns, len(s.Columns))
	for _, c := range s.Columns {
		cols[c.Name] = c.Type
	}
	return cols
}

// SchemaFromStoreTypes builds a Schema from raw store type strings,
// classifying each column's access semantics: Map(...) columns use
// subscript access, JSON columns use JSON extraction, everything else is
// scalar.
func SchemaFromStoreTypes(columns map[string]string, order []string) *Schema {
	s := &Schema{}
	for _, name := range order {
		storeType, ok := columns[name]
		if !ok {
			continue
		}
		s.Columns = append(s.Columns, Column{
			Name:      name,
			Type:      classifyStoreType(storeType),
			StoreType: storeType,
		})
	}
	return s
}

// classifyStoreType maps a raw store type string to an access tag.
func classifyStoreType(storeType string) ql.ColumnType {
	lower := strings.ToLower(storeType)
	switch {
	case strings.HasPrefix(lower, "map("):
		return ql.ColumnMap
	case lower == "json" || strings.HasPrefix(lower, "json("), lower == "newjson":
		return ql.ColumnJSON
	default:
		return ql.ColumnScalar
	}
}

// ParseSchemaJSON decodes the schema collaborator's JSON snapshot:
//
//	{"columns": [{"name": "timestamp", "type": "DateTime"}, ...]}
//
// Column order is preserved.
func ParseSchemaJSON(data []byte) (*Schema, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}

	cols := v.GetArray("columns")
	if cols == nil {
		return nil, fmt.Errorf("%w: missing columns array", ErrInvalidSchema)
	}

	s := &Schema{}
	for i, cv := range cols {
		name := string(cv.GetStringBytes("name"))
		if name == "" {
			return nil, fmt.Errorf("%w: column %d has no name", ErrInvalidSchema, i)
		}
		storeType := string(cv.GetStringBytes("type"))
		s.Columns = append(s.Columns, Column{
			Name:      name,
			Type:      classifyStoreType(storeType),
			StoreType: storeType,
		})
	}
	return s, nil
}

// Snapshot serializes the schema to the compact snapshot format
// (MessagePack + zstd) for caching or transport between processes.
func (s *Schema) Snapshot() ([]byte, error) {
	snap := &snapshot.Snapshot{CapturedAt: time.Now().UTC()}
	for _, c := range s.Columns {
		snap.Columns = append(snap.Columns, snapshot.Column{
			Name:      c.Name,
			Type:      columnTypeTag(c.Type),
			StoreType: c.StoreType,
		})
	}
	return snapshot.Encode(snap)
}

// SchemaFromSnapshot decodes a schema snapshot produced by Snapshot.
func SchemaFromSnapshot(data []byte) (*Schema, error) {
	snap, err := snapshot.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	s := &Schema{}
	for _, c := range snap.Columns {
		t, err := parseColumnTypeTag(c.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: column %q: %v", ErrInvalidSchema, c.Name, err)
		}
		s.Columns = append(s.Columns, Column{Name: c.Name, Type: t, StoreType: c.StoreType})
	}
	return s, nil
}

func columnTypeTag(t ql.ColumnType) string {
	switch t {
	case ql.ColumnMap:
		return "map"
	case ql.ColumnJSON:
		return "json"
	default:
		return "scalar"
	}
}

func parseColumnTypeTag(tag string) (ql.ColumnType, error) {
	switch tag {
	case "scalar":
		return ql.ColumnScalar, nil
	case "map":
		return ql.ColumnMap, nil
	case "json":
		return ql.ColumnJSON, nil
	default:
		return 0, fmt.Errorf("unknown column type tag %q", tag)
	}
}
