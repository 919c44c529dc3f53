package typegen

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/golergka/pgtyped/logger"
	"github.com/golergka/pgtyped/query"
)

type importGroup struct {
	module  string
	symbols []string
}

// TypeAllocator collects the types referenced while rendering one output
// file and renders the imports and declarations they need.
//
// An allocator belongs to exactly one file. It is not safe for concurrent use.
type TypeAllocator struct {
	registry *Registry
	log      *zap.SugaredLogger

	used    map[string]Type
	imports []importGroup
	enums   []string
	aliases []string
}

// NewTypeAllocator returns an empty allocator. A nil registry uses the defaults.
func NewTypeAllocator(registry *Registry) *TypeAllocator {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &TypeAllocator{
		registry: registry,
		log:      logger.Logger.Named("typegen"),
		used:     make(map[string]Type),
	}
}

// WithLogger sets the logger used for mapping warnings
func (a *TypeAllocator) WithLogger(log *zap.SugaredLogger) *TypeAllocator {
	a.log = log
	return a
}

// Use records t and returns the name to reference it by. Enums, imports
// and aliases are declared once per name; a later conflicting definition
// under the same name is ignored and logged.
func (a *TypeAllocator) Use(t Type) string {
	if !t.IsEnum() && !t.IsImport() && !t.IsAlias() {
		return t.Name
	}
	if prev, ok := a.used[t.Name]; ok {
		if !sameType(prev, t) {
			a.log.Warnw("Conflicting definitions for type name, keeping the first",
				logger.FieldTypeName, t.Name)
		}
		return t.Name
	}
	a.used[t.Name] = t

	switch {
	case t.IsImport():
		a.addImport(t.From, t.Name)
	case t.IsEnum():
		a.enums = append(a.enums, renderEnum(t))
	default:
		a.aliases = append(a.aliases, "export type "+t.Name+" = "+t.Definition+";")
	}
	return t.Name
}

// UseName maps a backend type name and records the result. Unknown names
// fall back to unknown with a warning.
func (a *TypeAllocator) UseName(backendName string) string {
	if t, ok := a.registry.Map(backendName); ok {
		return a.Use(t)
	}
	if elem, ok := ArrayElem(backendName); ok {
		return arrayOf(a.UseName(elem))
	}
	a.log.Warnw("No TypeScript mapping for database type, using unknown",
		logger.FieldTypeName, backendName)
	return UnknownType
}

// UseRef records either a builtin name or a custom spec
func (a *TypeAllocator) UseRef(ref query.TypeRef) string {
	if ref.Spec != nil && ref.Array {
		return a.Use(*ref.Spec) + "[]"
	}
	if ref.Spec != nil {
		return a.Use(*ref.Spec)
	}
	return a.UseName(ref.Builtin)
}

// Declaration renders imports, then enums, then aliases, each in first-use
// order and separated by blank lines. It does not change the allocator.
func (a *TypeAllocator) Declaration() string {
	var sections []string
	for _, g := range a.imports {
		sections = append(sections, "import { "+strings.Join(g.symbols, ", ")+" } from '"+g.module+"';")
	}
	sections = append(sections, a.enums...)
	sections = append(sections, a.aliases...)
	if len(sections) == 0 {
		return ""
	}
	return strings.Join(sections, "\n\n") + "\n"
}

// Count is the number of declared or imported types
func (a *TypeAllocator) Count() int {
	return len(a.used)
}

func (a *TypeAllocator) addImport(module, symbol string) {
	for i := range a.imports {
		if a.imports[i].module == module {
			a.imports[i].symbols = append(a.imports[i].symbols, symbol)
			return
		}
	}
	a.imports = append(a.imports, importGroup{module: module, symbols: []string{symbol}})
}

// arrayOf renders an array of elem, parenthesizing unions and intersections
func arrayOf(elem string) string {
	if strings.ContainsAny(elem, "|&") {
		return "(" + elem + ")[]"
	}
	return elem + "[]"
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\n", `\n`,
	"\r", `\r`,
)

func renderEnum(t Type) string {
	values := make([]string, len(t.EnumValues))
	for i, v := range t.EnumValues {
		values[i] = "'" + literalEscaper.Replace(v) + "'"
	}
	return "export type " + t.Name + " = " + strings.Join(values, " | ") + ";"
}

func sameType(a, b Type) bool {
	return a.Name == b.Name &&
		a.From == b.From &&
		a.Definition == b.Definition &&
		slices.Equal(a.EnumValues, b.EnumValues)
}
