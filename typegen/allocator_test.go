package typegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var payloadType = Type{Name: "PayloadType", EnumValues: []string{"message", "dynamite"}}

func TestTypeAllocator_Empty(t *testing.T) {
	a := NewTypeAllocator(nil)
	assert.Equal(t, "", a.Declaration())
	assert.Equal(t, "string", a.UseName("text"))
	assert.Equal(t, "", a.Declaration(), "builtins need no declaration")
}

func TestTypeAllocator_DeclarationIsIdempotent(t *testing.T) {
	a := NewTypeAllocator(nil)
	a.Use(PreparedQueryType)
	a.UseName("json")
	a.Use(payloadType)

	first := a.Declaration()
	assert.Equal(t, first, a.Declaration())
	assert.Equal(t, "import { PreparedQuery } from '@pgtyped/query';\n\n"+
		"export type PayloadType = 'message' | 'dynamite';\n\n"+
		"export type Json = null | boolean | number | string | Json[] | { [key: string]: Json };\n", first)
}

func TestTypeAllocator_EnumDedup(t *testing.T) {
	a := NewTypeAllocator(nil)
	assert.Equal(t, "PayloadType", a.Use(payloadType))
	assert.Equal(t, "PayloadType", a.Use(Type{Name: "PayloadType", EnumValues: []string{"message", "dynamite"}}))

	assert.Equal(t, "export type PayloadType = 'message' | 'dynamite';\n", a.Declaration())
	assert.Equal(t, 1, a.Count())
}

func TestTypeAllocator_ImportsGroupedByModule(t *testing.T) {
	a := NewTypeAllocator(nil)
	a.Use(Type{Name: "Money", From: "./money"})
	a.Use(PreparedQueryType)
	a.Use(Type{Name: "Cents", From: "./money"})
	a.Use(Type{Name: "Money", From: "./money"})

	assert.Equal(t, "import { Money, Cents } from './money';\n\n"+
		"import { PreparedQuery } from '@pgtyped/query';\n", a.Declaration())
}

func TestTypeAllocator_ConflictKeepsFirst(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	a := NewTypeAllocator(nil).WithLogger(zap.New(core).Sugar())

	a.Use(payloadType)
	a.Use(Type{Name: "PayloadType", EnumValues: []string{"other"}})

	assert.Equal(t, "export type PayloadType = 'message' | 'dynamite';\n", a.Declaration())
	assert.Equal(t, 1, logs.Len())
}

func TestTypeAllocator_UnknownFallsBack(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	a := NewTypeAllocator(nil).WithLogger(zap.New(core).Sugar())

	assert.Equal(t, "unknown", a.UseName("tsrange"))
	assert.Equal(t, "unknown[]", a.UseName("_tsrange"))
	assert.Equal(t, 2, logs.Len())
	assert.Equal(t, "", a.Declaration())
}

func TestTypeAllocator_Arrays(t *testing.T) {
	a := NewTypeAllocator(nil)
	assert.Equal(t, "number[]", a.UseName("_int4"))
	assert.Equal(t, "Json[]", a.UseName("_jsonb"))
	assert.Contains(t, a.Declaration(), "export type Json =")
}

func TestTypeAllocator_EnumEscapesQuotes(t *testing.T) {
	a := NewTypeAllocator(nil)
	a.Use(Type{Name: "Mood", EnumValues: []string{"it's ok", "sad"}})
	assert.Equal(t, "export type Mood = 'it\\'s ok' | 'sad';\n", a.Declaration())

	a = NewTypeAllocator(nil)
	a.Use(Type{Name: "Path", EnumValues: []string{`back\`, "two\nlines", "cr\r", `it's`}})
	assert.Equal(t, `export type Path = 'back\\' | 'two\nlines' | 'cr\r' | 'it\'s';`+"\n", a.Declaration())
}

func TestTypeAllocator_ArrayOfUnionOverride(t *testing.T) {
	registry, err := NewRegistry(map[string]string{"money": "string | number"})
	require.NoError(t, err)
	a := NewTypeAllocator(registry)

	assert.Equal(t, "(string | number)[]", a.UseName("_money"))
	assert.Equal(t, "(string | number)[]", a.UseName("money[]"))
	assert.Equal(t, "string | number", a.UseName("money"))
	assert.Equal(t, "number[]", a.UseName("_int4"))
}
