package query

import (
	"strings"

	"github.com/golergka/pgtyped/errors"
)

// annotation is the parsed content of a `/* @name ... */` block
type annotation struct {
	name   string
	params map[string]ParamRef
}

// ParseSQLFile parses a standalone SQL file. Every statement must be preceded
// by a block comment carrying `@name`:
//
//	/*
//	  @name InsertNotifications
//	  @param notification -> (payload, user_id, type)
//	*/
//	INSERT INTO notifications (payload, user_id, type) VALUES :notification;
//
// `@param x -> (...)` declares a scalar array, `@param x -> (a, b)` a pick and
// `@param x -> ((a, b)...)` a spread. Other placeholders are scalars.
func ParseSQLFile(src string) ([]*Query, error) {
	var queries []*Query
	var pending *annotation
	pendingLine := 0

	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ';':
			i++
			continue
		case strings.HasPrefix(src[i:], "/*"):
			end := skipNonCode(src, i, true)
			body := strings.TrimSuffix(strings.TrimPrefix(src[i:end], "/*"), "*/")
			if strings.Contains(body, "@name") {
				ann, err := parseAnnotation(body)
				if err != nil {
					return nil, errors.Wrapf(err, "line %d", lineAt(src, i))
				}
				pending = ann
				pendingLine = lineAt(src, i)
			}
			i = end
			continue
		case strings.HasPrefix(src[i:], "--"):
			i = skipNonCode(src, i, true)
			continue
		}

		// Statement runs to the next top-level ';'
		start := i
		for i < len(src) && src[i] != ';' {
			if next := skipNonCode(src, i, true); next != i {
				i = next
				continue
			}
			i++
		}
		text := strings.TrimSpace(src[start:i])
		if pending == nil {
			return nil, errors.WithHint(
				errors.Newf("line %d: statement has no @name annotation", lineAt(src, start)),
				"add a /* @name QueryName */ comment before the statement")
		}

		q := &Query{
			Name: pending.name,
			Mode: ModeSQL,
			Text: text,
			Line: pendingLine,
		}
		q.Params = findColonParams(text, pending.params)
		queries = append(queries, q)
		pending = nil
	}

	if pending != nil {
		return nil, errors.Newf("line %d: @name %s is not followed by a statement", pendingLine, pending.name)
	}
	return queries, nil
}

func parseAnnotation(body string) (*annotation, error) {
	ann := &annotation{params: make(map[string]ParamRef)}
	for _, raw := range strings.Split(body, "\n") {
		line := strings.TrimSpace(raw)
		line = strings.TrimSpace(strings.TrimLeft(line, "*"))
		switch {
		case strings.HasPrefix(line, "@name"):
			name := strings.TrimSpace(strings.TrimPrefix(line, "@name"))
			if name == "" || identEnd(name, 0) != len(name) {
				return nil, errors.Newf("invalid @name %q", name)
			}
			ann.name = name
		case strings.HasPrefix(line, "@param"):
			ref, err := parseParamDecl(strings.TrimSpace(strings.TrimPrefix(line, "@param")))
			if err != nil {
				return nil, err
			}
			if _, dup := ann.params[ref.Name]; dup {
				return nil, errors.Newf("@param %s declared twice", ref.Name)
			}
			ann.params[ref.Name] = ref
		}
	}
	if ann.name == "" {
		return nil, errors.New("missing query name after @name")
	}
	return ann, nil
}

// parseParamDecl parses `name -> (...)`, `name -> (a, b)` or `name -> ((a, b)...)`
func parseParamDecl(decl string) (ParamRef, error) {
	name, spec, ok := strings.Cut(decl, "->")
	name = strings.TrimSpace(name)
	spec = strings.Join(strings.Fields(spec), "")
	if !ok || name == "" || identEnd(name, 0) != len(name) {
		return ParamRef{}, errors.Newf("invalid @param declaration %q", decl)
	}

	switch {
	case spec == "(...)":
		return ParamRef{Name: name, Kind: ParamScalarArray}, nil
	case strings.HasPrefix(spec, "((") && strings.HasSuffix(spec, ")...)"):
		keys, end, ok := parseKeyList(spec, 1)
		if ok && spec[end:] == "...)" {
			return ParamRef{Name: name, Kind: ParamSpread, Keys: keys}, nil
		}
	case strings.HasPrefix(spec, "("):
		keys, end, ok := parseKeyList(spec, 0)
		if ok && end == len(spec) {
			return ParamRef{Name: name, Kind: ParamPick, Keys: keys}, nil
		}
	}
	return ParamRef{}, errors.Newf("invalid @param transform %q for %s", spec, name)
}

// findColonParams finds :name placeholders outside strings and comments,
// skipping ::casts. Declared params carry their declared kind and keys.
func findColonParams(text string, declared map[string]ParamRef) []ParamRef {
	var refs []ParamRef
	i := 0
	for i < len(text) {
		if next := skipNonCode(text, i, true); next != i {
			i = next
			continue
		}
		if text[i] != ':' {
			i++
			continue
		}
		if i+1 < len(text) && text[i+1] == ':' {
			i += 2
			continue
		}
		end := identEnd(text, i+1)
		if end == i+1 {
			i++
			continue
		}
		ref := ParamRef{Name: text[i+1 : end], Kind: ParamScalar, Start: i, End: end}
		if d, ok := declared[ref.Name]; ok {
			ref.Kind = d.Kind
			ref.Keys = d.Keys
		}
		refs = append(refs, ref)
		i = end
	}
	return refs
}
