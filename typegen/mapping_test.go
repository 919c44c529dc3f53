package typegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Defaults(t *testing.T) {
	r := DefaultRegistry()
	tests := []struct {
		backend string
		want    string
	}{
		{"uuid", "string"},
		{"int4", "number"},
		{"int8", "string"},
		{"numeric", "string"},
		{"float8", "number"},
		{"bool", "boolean"},
		{"timestamptz", "Date"},
		{"bytea", "Buffer"},
		{"void", "undefined"},
		{"jsonb", "Json"},
		{"character(3)", "string"},
		{"character varying(255)", "string"},
		{"numeric(10,2)", "string"},
		{"timestamp(3) with time zone", "Date"},
		{"TEXT", "string"},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			got, ok := r.Map(tt.backend)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.Name)
		})
	}

	_, ok := r.Map("tsrange")
	assert.False(t, ok)
}

func TestRegistry_Overrides(t *testing.T) {
	r, err := NewRegistry(map[string]string{
		"int8":    "bigint",
		"money":   "./money#Money",
		"_custom": "string[]",
	})
	require.NoError(t, err)

	got, _ := r.Map("int8")
	assert.Equal(t, Type{Name: "bigint"}, got)

	got, _ = r.Map("money")
	assert.Equal(t, Type{Name: "Money", From: "./money"}, got)

	got, _ = r.Map("_custom")
	assert.Equal(t, "string[]", got.Name)

	// untouched defaults survive
	got, _ = r.Map("uuid")
	assert.Equal(t, "string", got.Name)
}

func TestParseOverride_Errors(t *testing.T) {
	for _, v := range []string{"", "  ", "#Money", "./money#"} {
		_, err := ParseOverride(v)
		assert.Error(t, err, "override %q", v)
	}
	_, err := NewRegistry(map[string]string{"money": "#"})
	assert.Error(t, err)
}

func TestArrayElem(t *testing.T) {
	elem, ok := ArrayElem("_int4")
	assert.True(t, ok)
	assert.Equal(t, "int4", elem)

	elem, ok = ArrayElem("text[]")
	assert.True(t, ok)
	assert.Equal(t, "text", elem)

	_, ok = ArrayElem("text")
	assert.False(t, ok)
	_, ok = ArrayElem("_")
	assert.False(t, ok)
}
