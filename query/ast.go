package query

import "unicode"

// Mode discriminates where a query was written
type Mode string

const (
	// ModeSQL is a standalone .sql file with @name annotations and :param placeholders
	ModeSQL Mode = "sql-file"
	// ModeTS is a sql`...` tagged template embedded in a TypeScript file
	ModeTS Mode = "query-file"
)

// ParamKind is the call-site shape of a placeholder
type ParamKind int

const (
	ParamScalar ParamKind = iota
	ParamScalarArray
	ParamPick
	ParamSpread
)

func (k ParamKind) String() string {
	switch k {
	case ParamScalar:
		return "scalar"
	case ParamScalarArray:
		return "scalar_array"
	case ParamPick:
		return "pick"
	case ParamSpread:
		return "spread"
	}
	return "unknown"
}

// ParamRef is one placeholder occurrence in a query's text
type ParamRef struct {
	Name string    `json:"name"`
	Kind ParamKind `json:"-"`
	Keys []string  `json:"keys,omitempty"`
	// Byte offsets of the whole placeholder in Query.Text
	Start int `json:"start"`
	End   int `json:"end"`
}

// Query is one parsed query
type Query struct {
	Name   string
	Mode   Mode
	Text   string
	Line   int
	Params []ParamRef
}

// ExportName is the lower-camel identifier used for generated constants
func (q *Query) ExportName() string {
	return mapFirst(q.Name, unicode.ToLower)
}

// TypeName is the upper-camel name used for generated interfaces
func (q *Query) TypeName() string {
	return mapFirst(q.Name, unicode.ToUpper)
}

func mapFirst(s string, f func(rune) rune) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	r[0] = f(r[0])
	return string(r)
}
