package query

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/golergka/pgtyped/errors"
)

// sqlTagRe matches `const name = sql` optionally typed, up to the opening backtick
var sqlTagRe = regexp.MustCompile("(?:const|let|var)\\s+([A-Za-z_][A-Za-z0-9_]*)\\s*(?::[^=]+)?=\\s*sql\\s*(?:<[^>`]*>)?\\s*`")

// ParseTypeScriptFile finds sql`...` tagged templates assigned to variables
// in a TypeScript file. Placeholders:
//
//	$id            scalar
//	$$ids          scalar array
//	$user(a, b)    pick
//	$$users(a, b)  spread
//
// The query name is the variable name with its first letter upper-cased.
func ParseTypeScriptFile(src string) ([]*Query, error) {
	var queries []*Query
	for _, m := range sqlTagRe.FindAllStringSubmatchIndex(src, -1) {
		varName := src[m[2]:m[3]]
		bodyStart := m[1]
		bodyEnd, err := templateEnd(src, bodyStart)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: query %s", lineAt(src, m[0]), varName)
		}
		text := src[bodyStart:bodyEnd]
		params, err := findDollarParams(text)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: query %s", lineAt(src, m[0]), varName)
		}
		q := &Query{
			Name:   mapFirst(varName, unicode.ToUpper),
			Mode:   ModeTS,
			Text:   text,
			Line:   lineAt(src, m[0]),
			Params: params,
		}
		queries = append(queries, q)
	}
	return queries, nil
}

// templateEnd returns the index of the closing backtick of a template literal
// whose body starts at i
func templateEnd(src string, i int) (int, error) {
	for j := i; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '$':
			if j+1 < len(src) && src[j+1] == '{' {
				return 0, errors.New("template interpolation ${...} is not supported in sql queries")
			}
		case '`':
			return j, nil
		}
	}
	return 0, errors.New("unterminated sql template")
}

func findDollarParams(text string) ([]ParamRef, error) {
	var refs []ParamRef
	i := 0
	for i < len(text) {
		if next := skipNonCode(text, i, false); next != i {
			i = next
			continue
		}
		if text[i] != '$' {
			i++
			continue
		}
		start := i
		spread := strings.HasPrefix(text[i:], "$$")
		nameStart := i + 1
		if spread {
			nameStart = i + 2
		}
		nameEnd := identEnd(text, nameStart)
		if nameEnd == nameStart {
			// positional $1 or a bare dollar
			i = nameStart
			continue
		}
		ref := ParamRef{Name: text[nameStart:nameEnd], Start: start, End: nameEnd}
		if nameEnd < len(text) && text[nameEnd] == '(' {
			keys, end, ok := parseKeyList(text, nameEnd)
			if !ok {
				return nil, errors.Newf("invalid key list for $%s", ref.Name)
			}
			ref.Keys = keys
			ref.End = end
			ref.Kind = ParamPick
			if spread {
				ref.Kind = ParamSpread
			}
		} else {
			ref.Kind = ParamScalar
			if spread {
				ref.Kind = ParamScalarArray
			}
		}
		refs = append(refs, ref)
		i = ref.End
	}
	return refs, nil
}
