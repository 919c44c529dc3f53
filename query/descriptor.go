package query

// TypeSpec is a named TypeScript type that needs a declaration or import in
// the generated file, as opposed to a builtin such as string or Date.
//
// Exactly one of EnumValues, From or Definition is normally set:
//   - EnumValues: rendered as a union of string literals
//   - From: imported from the named module
//   - Definition: rendered as a type alias
type TypeSpec struct {
	Name       string   `json:"name"`
	EnumValues []string `json:"enumValues,omitempty"`
	From       string   `json:"from,omitempty"`
	Definition string   `json:"definition,omitempty"`
}

// IsEnum reports whether the spec declares a string-literal union
func (t TypeSpec) IsEnum() bool { return len(t.EnumValues) > 0 }

// IsImport reports whether the spec is imported from another module
func (t TypeSpec) IsImport() bool { return t.From != "" }

// IsAlias reports whether the spec is declared as a type alias
func (t TypeSpec) IsAlias() bool { return t.Definition != "" }

// TypeRef is either a backend type name (resolved through the type mapping)
// or an already-built TypeSpec.
type TypeRef struct {
	Builtin string
	Spec    *TypeSpec
	// Array marks Spec as the element type of an array
	Array bool
}

// Builtin references a backend type by name, e.g. "uuid" or "_int4"
func Builtin(name string) TypeRef { return TypeRef{Builtin: name} }

// Custom references a TypeSpec directly, e.g. an enum found in the catalog
func Custom(spec TypeSpec) TypeRef { return TypeRef{Spec: &spec} }

// CustomArray references an array of spec
func CustomArray(spec TypeSpec) TypeRef { return TypeRef{Spec: &spec, Array: true} }

// String returns the backend name or spec name, for logging
func (r TypeRef) String() string {
	if r.Spec != nil && r.Array {
		return r.Spec.Name + "[]"
	}
	if r.Spec != nil {
		return r.Spec.Name
	}
	return r.Builtin
}

// ReturnType describes one output column of a query.
// A nil Nullable is treated as nullable.
type ReturnType struct {
	ReturnName string
	ColumnName string
	Type       TypeRef
	Nullable   *bool
}

// IsNullable applies the default-nullable policy
func (r ReturnType) IsNullable() bool {
	return r.Nullable == nil || *r.Nullable
}

// ParamMetadata holds the positional parameter types resolved by the database
// and the transform tree mapping call-site arguments onto them.
type ParamMetadata struct {
	// Params[i] is the backend type name of placeholder $i+1
	Params  []string
	Mapping []ParamTransform
	// Custom holds catalog types, such as enums, referenced by name in
	// Params. An array name like _mood uses the entry for mood.
	Custom map[string]TypeSpec
}

// QueryTypes is the resolved shape of one query
type QueryTypes struct {
	ReturnTypes   []ReturnType
	ParamMetadata ParamMetadata
}

// Nullable returns a pointer to b, for building ReturnType literals
func Nullable(b bool) *bool { return &b }
