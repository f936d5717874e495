package schema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/criteria"
)

func TestLoadCUE(t *testing.T) {
	p, err := LoadCUE("testdata/entities")
	require.NoError(t, err)
	assert.Equal(t, []string{"Order", "Person"}, p.Entities())

	m, err := p.Resolve(context.Background(), "Person")
	require.NoError(t, err)
	assert.Equal(t, "dbo", m.Schema)
	assert.Equal(t, "People", m.Table)
	assert.Equal(t, "Id", m.PrimaryKey)
	require.Len(t, m.Columns, 5)
	assert.Equal(t, Column{Property: "Name", Name: "full_name", Type: criteria.ValueString}, m.Columns[1])
	assert.Equal(t, criteria.ValueBoolean, m.Columns[4].Type)
}

func TestLoadCUE_Defaults(t *testing.T) {
	p, err := LoadCUE("testdata/entities")
	require.NoError(t, err)

	m, err := p.Resolve(context.Background(), "order")
	require.NoError(t, err)
	assert.Equal(t, "", m.Schema)
	assert.Equal(t, "Order", m.Table)
	assert.Equal(t, "OrderId", m.PrimaryKey)
	assert.Equal(t, Column{Property: "OrderId", Name: "OrderId"}, m.Columns[0])
}

func TestLoadCUE_MissingDir(t *testing.T) {
	_, err := LoadCUE("testdata/nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeLoadFailed)
}

func TestCompileCUE_Errors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		want string
	}{
		{"no entities", `other: 1`, "no entity declarations"},
		{"no columns", `entity: A: table: "a"`, "columns is required"},
		{"no property", `entity: A: columns: [{name: "x"}]`, "column property is required"},
		{"bad type", `entity: A: columns: [{property: "x", type: "float"}]`, "unknown value type"},
		{"not a string", `entity: A: {table: 3, columns: [{property: "x"}]}`, ErrCodeLoadFailed},
		{"syntax", `entity: {`, ErrCodeLoadFailed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CompileCUE("test.cue", []byte(tc.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
