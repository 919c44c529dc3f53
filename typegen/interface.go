package typegen

import (
	"strings"

	"github.com/golergka/pgtyped/typegen/util"
)

// GenerateInterface renders one exported interface followed by a blank line
func GenerateInterface(name string, fields []Field) string {
	var sb strings.Builder
	sb.WriteString("export interface " + name + " {\n")
	for _, f := range fields {
		sb.WriteString("  " + util.PropertyName(f.Name) + ": " + f.TypeString() + ";\n")
	}
	sb.WriteString("}\n\n")
	return sb.String()
}

// generateTypeAlias renders `export type name = definition;` followed by a blank line
func generateTypeAlias(name, definition string) string {
	return "export type " + name + " = " + definition + ";\n\n"
}

func docComment(line string) string {
	return "/** " + line + " */\n"
}
