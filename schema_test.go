package siftql_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	siftql "github.com/logsift/siftql-go"
	"github.com/logsift/siftql-go/ql"
)

func TestSchemaFromStoreTypes(t *testing.T) {
	s := siftql.SchemaFromStoreTypes(map[string]string{
		"timestamp":      "DateTime64(3)",
		"level":          "LowCardinality(String)",
		"log_attributes": "Map(String, String)",
		"body":           "JSON",
	}, []string{"timestamp", "level", "log_attributes", "body"})

	require.Len(t, s.Columns, 4)
	assert.Equal(t, "timestamp", s.Columns[0].Name)
	assert.Equal(t, ql.ColumnScalar, s.Columns[0].Type)
	assert.Equal(t, ql.ColumnScalar, s.Columns[1].Type)
	assert.Equal(t, ql.ColumnMap, s.Columns[2].Type)
	assert.Equal(t, ql.ColumnJSON, s.Columns[3].Type)

	types := s.ColumnTypes()
	assert.Equal(t, ql.ColumnMap, types["log_attributes"])
}

func TestSchemaColumnTypesNilSafe(t *testing.T) {
	var s *siftql.Schema
	assert.Nil(t, s.ColumnTypes())
}

func TestParseSchemaJSON(t *testing.T) {
	s, err := siftql.ParseSchemaJSON([]byte(`{
		"columns": [
			{"name": "timestamp", "type": "DateTime"},
			{"name": "attrs", "type": "Map(String, String)"}
		]
	}`))
	require.NoError(t, err)
	require.Len(t, s.Columns, 2)
	assert.Equal(t, ql.ColumnMap, s.Columns[1].Type)
	assert.Equal(t, "Map(String, String)", s.Columns[1].StoreType)
}

func TestParseSchemaJSONErrors(t *testing.T) {
	_, err := siftql.ParseSchemaJSON([]byte(`not json`))
	assert.ErrorIs(t, err, siftql.ErrInvalidSchema)

	_, err = siftql.ParseSchemaJSON([]byte(`{"tables": []}`))
	assert.ErrorIs(t, err, siftql.ErrInvalidSchema)

	_, err = siftql.ParseSchemaJSON([]byte(`{"columns": [{"type": "String"}]}`))
	assert.ErrorIs(t, err, siftql.ErrInvalidSchema)
}

func TestSchemaSnapshotRoundTrip(t *testing.T) {
	s := &siftql.Schema{Columns: []siftql.Column{
		{Name: "timestamp", Type: ql.ColumnScalar, StoreType: "DateTime64(3)"},
		{Name: "attrs", Type: ql.ColumnMap, StoreType: "Map(String, String)"},
		{Name: "body", Type: ql.ColumnJSON, StoreType: "JSON"},
	}}

	data, err := s.Snapshot()
	require.NoError(t, err)
	require.NotEmpty(t, data)

	restored, err := siftql.SchemaFromSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, s.Columns, restored.Columns)
}

func TestSchemaFromSnapshotRejectsGarbage(t *testing.T) {
	_, err := siftql.SchemaFromSnapshot([]byte("not a snapshot"))
	assert.ErrorIs(t, err, siftql.ErrInvalidSchema)
}
