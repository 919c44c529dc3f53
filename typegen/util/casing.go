package util

import (
	"strings"
	"unicode"
)

// ToPascalCase converts snake_case or kebab-case to PascalCase.
// Letters after the first of each part are kept as-is.
func ToPascalCase(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})

	var result strings.Builder
	for _, part := range parts {
		runes := []rune(part)
		result.WriteRune(unicode.ToUpper(runes[0]))
		result.WriteString(string(runes[1:]))
	}
	return result.String()
}

// ToCamelCase converts a snake_case column name to camelCase.
// Leading underscores are kept and names without underscores are returned
// unchanged, e.g. "payload_camel_case" -> "payloadCamelCase", "_id" -> "_id".
func ToCamelCase(s string) string {
	trimmed := strings.TrimLeft(s, "_")
	prefix := s[:len(s)-len(trimmed)]
	if !strings.Contains(trimmed, "_") {
		return s
	}

	var result strings.Builder
	result.WriteString(prefix)
	upper := false
	for i, r := range trimmed {
		switch {
		case r == '_':
			upper = i > 0
		case upper:
			result.WriteRune(unicode.ToUpper(r))
			upper = false
		default:
			result.WriteRune(r)
		}
	}
	return result.String()
}

// IsIdentifier reports whether s can be used as a bare TypeScript property name
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || r == '$' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

// PropertyName quotes s when it is not a valid identifier
func PropertyName(s string) string {
	if IsIdentifier(s) {
		return s
	}
	return "\"" + strings.ReplaceAll(s, "\"", "\\\"") + "\""
}
