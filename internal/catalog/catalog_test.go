package catalog

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/pgmeta/internal/errs"
)

func sampleMetadata() *Metadata {
	return &Metadata{
		Schemas: []Schema{{ID: 1, Name: "public"}, {ID: 2, Name: "auth"}, {ID: 3, Name: "billing"}},
		Tables: []Relation{
			{ID: 10, Schema: "public", Name: "products", Kind: KindTable},
			{ID: 11, Schema: "auth", Name: "users", Kind: KindTable},
		},
		Views: []Relation{{ID: 12, Schema: "billing", Name: "totals", Kind: KindView}},
		Columns: []Column{
			{TableID: 10, Name: "id", Format: "int4"},
			{TableID: 11, Name: "id", Format: "uuid"},
			{TableID: 12, Name: "sum", Format: "numeric"},
		},
		Relationships: []Relationship{{ForeignKeyName: "fk", Schema: "auth", Relation: "users"}},
		Functions:     []Function{{ID: 20, Schema: "billing", Name: "f"}},
		Types:         []Type{{ID: 23, Name: "int4", Schema: "pg_catalog"}},
	}
}

func TestFilter_Allows(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		schema string
		want   bool
	}{
		{"empty filter allows everything", Filter{}, "public", true},
		{"included", Filter{Included: []string{"public"}}, "public", true},
		{"not included", Filter{Included: []string{"public"}}, "auth", false},
		{"excluded", Filter{Excluded: []string{"auth"}}, "auth", false},
		{"included and excluded", Filter{Included: []string{"auth"}, Excluded: []string{"auth"}}, "auth", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Allows(tt.schema))
		})
	}
}

func TestFilter_Apply(t *testing.T) {
	m := sampleMetadata()
	out := Filter{Excluded: []string{"auth"}}.Apply(m)

	require.Len(t, out.Schemas, 2)
	require.Len(t, out.Tables, 1)
	assert.Equal(t, "products", out.Tables[0].Name)
	require.Len(t, out.Views, 1)
	assert.Len(t, out.Columns, 2)
	assert.Empty(t, out.Relationships)
	assert.Len(t, out.Functions, 1)
	assert.Equal(t, m.Types, out.Types, "types are never filtered")

	assert.Len(t, m.Tables, 2, "source snapshot untouched")
}

func TestStaticCollector(t *testing.T) {
	c := NewStaticCollector(sampleMetadata())

	m, err := c.Collect(context.Background(), Filter{Included: []string{"public"}})
	require.NoError(t, err)
	assert.Len(t, m.Tables, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Collect(ctx, Filter{})
	assert.True(t, errs.IsTimeout(err))
}

func TestDecode_NormalizesKinds(t *testing.T) {
	src := `{
		"tables": [{"id": 1, "schema": "public", "name": "t"}],
		"materialized_views": [{"id": 2, "schema": "public", "name": "mv"}],
		"columns": [{"table_id": 1, "name": "a", "format": "_int4", "is_identity": true, "identity_generation": "ALWAYS"}]
	}`

	m, err := Decode(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, KindTable, m.Tables[0].Kind)
	assert.Equal(t, KindMaterializedView, m.MaterializedViews[0].Kind)
	assert.True(t, m.Columns[0].IsArray())
	assert.True(t, m.Columns[0].AlwaysGenerated())
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode(strings.NewReader("{"))
	assert.True(t, errs.IsInvalidInput(err))
}

func TestReadFile_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleMetadata()))

	path := filepath.Join(t.TempDir(), "meta.json")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	m, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, m.Relations(), 3)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errs.IsNotFound(err))
}

func TestFunction_Args(t *testing.T) {
	f := Function{Args: []FunctionArg{
		{Name: "a", Mode: ArgModeIn},
		{Name: "b", Mode: ArgModeOut},
		{Name: "c", Mode: ArgModeVariadic},
		{Name: "d", Mode: ArgModeTable},
	}}
	in := f.InputArgs()
	require.Len(t, in, 2)
	assert.Equal(t, "c", in[1].Name)
	assert.Len(t, f.TableArgs(), 1)
}
