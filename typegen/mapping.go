package typegen

import (
	"regexp"
	"strings"

	"github.com/golergka/pgtyped/errors"
	"github.com/golergka/pgtyped/query"
)

// Type is a TypeScript type reference, optionally carrying what is needed to
// declare or import it.
type Type = query.TypeSpec

// UnknownType is emitted for backend types with no mapping
const UnknownType = "unknown"

// JSONType is the structural alias used for json and jsonb
var JSONType = Type{
	Name:       "Json",
	Definition: "null | boolean | number | string | Json[] | { [key: string]: Json }",
}

var (
	tsString  = Type{Name: "string"}
	tsNumber  = Type{Name: "number"}
	tsBoolean = Type{Name: "boolean"}
	tsDate    = Type{Name: "Date"}
	tsBuffer  = Type{Name: "Buffer"}
	tsVoid    = Type{Name: "undefined"}
)

// defaultMappings is the PostgreSQL to TypeScript mapping
var defaultMappings = map[string]Type{
	// Integer types. int8 exceeds Number.MAX_SAFE_INTEGER so it stays a string.
	"int2":        tsNumber,
	"int4":        tsNumber,
	"int":         tsNumber,
	"integer":     tsNumber,
	"smallint":    tsNumber,
	"serial":      tsNumber,
	"smallserial": tsNumber,
	"oid":         tsNumber,
	"int8":        tsString,
	"bigint":      tsString,
	"bigserial":   tsString,

	// Precision types
	"real":             tsNumber,
	"float":            tsNumber,
	"float4":           tsNumber,
	"float8":           tsNumber,
	"double precision": tsNumber,
	"numeric":          tsString,
	"decimal":          tsString,
	"money":            tsString,

	// String types
	"uuid":              tsString,
	"text":              tsString,
	"citext":            tsString,
	"name":              tsString,
	"char":              tsString,
	"bpchar":            tsString,
	"character":         tsString,
	"varchar":           tsString,
	"character varying": tsString,
	"inet":              tsString,
	"cidr":              tsString,
	"macaddr":           tsString,
	"macaddr8":          tsString,
	"interval":          tsString,
	"tsvector":          tsString,
	"xml":               tsString,

	// Bool types
	"bool":    tsBoolean,
	"boolean": tsBoolean,
	"bit":     tsBoolean,

	// Timestamp types
	"date":                        tsDate,
	"timestamp":                   tsDate,
	"timestamptz":                 tsDate,
	"timestamp with time zone":    tsDate,
	"timestamp without time zone": tsDate,
	"time":                        tsDate,
	"timetz":                      tsDate,
	"time with time zone":         tsDate,
	"time without time zone":      tsDate,

	// Binary and special types
	"bytea": tsBuffer,
	"void":  tsVoid,
	"json":  JSONType,
	"jsonb": JSONType,
}

// modifierRe matches a type modifier such as (3) or (10,2)
var modifierRe = regexp.MustCompile(`\s*\([^)]*\)`)

// Registry maps backend type names to TypeScript types.
// It is read-only after construction and safe to share between workers.
type Registry struct {
	mappings map[string]Type
}

// NewRegistry builds a registry from the defaults plus overrides.
// An override value is a TypeScript type expression ("string") or an import
// reference ("module#Symbol").
func NewRegistry(overrides map[string]string) (*Registry, error) {
	r := &Registry{mappings: make(map[string]Type, len(defaultMappings)+len(overrides))}
	for name, t := range defaultMappings {
		r.mappings[name] = t
	}
	for name, value := range overrides {
		t, err := ParseOverride(value)
		if err != nil {
			return nil, errors.Wrapf(err, "typesOverrides[%s]", name)
		}
		r.mappings[normalizeTypeName(name)] = t
	}
	return r, nil
}

// DefaultRegistry returns a registry with no overrides
func DefaultRegistry() *Registry {
	r, _ := NewRegistry(nil)
	return r
}

// ParseOverride parses a typesOverrides value
func ParseOverride(value string) (Type, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Type{}, errors.New("empty type override")
	}
	module, symbol, isImport := strings.Cut(value, "#")
	if !isImport {
		return Type{Name: value}, nil
	}
	if module == "" || symbol == "" {
		return Type{}, errors.WithHint(
			errors.Newf("invalid import override %q", value),
			"use the form module#Symbol, e.g. ./money#Money")
	}
	return Type{Name: symbol, From: module}, nil
}

// Map looks up a non-array backend type name. Type modifiers are ignored,
// so character(3) maps like character.
func (r *Registry) Map(name string) (Type, bool) {
	t, ok := r.mappings[name]
	if ok {
		return t, true
	}
	t, ok = r.mappings[normalizeTypeName(name)]
	return t, ok
}

// ArrayElem returns the element type name of an array type name:
// "_int4" and "int4[]" both give "int4".
func ArrayElem(name string) (string, bool) {
	switch {
	case strings.HasSuffix(name, "[]"):
		return strings.TrimSuffix(name, "[]"), true
	case strings.HasPrefix(name, "_") && len(name) > 1:
		return name[1:], true
	}
	return "", false
}

func normalizeTypeName(name string) string {
	name = modifierRe.ReplaceAllString(name, "")
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
