package query

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Prepared is a query rewritten for the database: named placeholders are
// replaced by positional ones and the transform tree records which positions
// each call-site argument expands into.
type Prepared struct {
	Query      *Query
	SQL        string
	Mapping    []ParamTransform
	ParamCount int
}

// Prepare rewrites q's placeholders into $1..$n.
//
// A name used again with the same shape reuses its positions. A name used
// again with a different shape becomes a second root with the same name,
// which parameter resolution later rejects as ambiguous.
func Prepare(q *Query) *Prepared {
	p := &Prepared{Query: q}
	roots := make(map[string][]ParamTransform)

	next := func() int {
		p.ParamCount++
		return p.ParamCount
	}
	newKeys := func(names []string) []Scalar {
		keys := make([]Scalar, len(names))
		for i, n := range names {
			keys[i] = Scalar{Name: n, AssignedIndex: next()}
		}
		return keys
	}

	var sb strings.Builder
	last := 0
	for _, ref := range q.Params {
		sb.WriteString(q.Text[last:ref.Start])
		last = ref.End

		node := findRoot(roots[ref.Name], ref)
		if node == nil {
			switch ref.Kind {
			case ParamScalarArray:
				node = &ScalarArray{Name: ref.Name, AssignedIndex: next()}
			case ParamPick:
				node = &Pick{Name: ref.Name, Keys: newKeys(ref.Keys)}
			case ParamSpread:
				node = &Spread{Name: ref.Name, Keys: newKeys(ref.Keys)}
			default:
				node = &Scalar{Name: ref.Name, AssignedIndex: next()}
			}
			roots[ref.Name] = append(roots[ref.Name], node)
			p.Mapping = append(p.Mapping, node)
		}
		sb.WriteString(placeholder(node))
	}
	sb.WriteString(q.Text[last:])
	p.SQL = sb.String()
	return p
}

// findRoot returns the existing root matching ref's kind and keys
func findRoot(existing []ParamTransform, ref ParamRef) ParamTransform {
	for _, node := range existing {
		switch n := node.(type) {
		case *Scalar:
			if ref.Kind == ParamScalar {
				return n
			}
		case *ScalarArray:
			if ref.Kind == ParamScalarArray {
				return n
			}
		case *Pick:
			if ref.Kind == ParamPick && sameKeyNames(n.Keys, ref.Keys) {
				return n
			}
		case *Spread:
			if ref.Kind == ParamSpread && sameKeyNames(n.Keys, ref.Keys) {
				return n
			}
		}
	}
	return nil
}

func sameKeyNames(keys []Scalar, names []string) bool {
	if len(keys) != len(names) {
		return false
	}
	for i := range keys {
		if keys[i].Name != names[i] {
			return false
		}
	}
	return true
}

func placeholder(node ParamTransform) string {
	pos := func(i int) string { return "$" + strconv.Itoa(i) }
	tuple := func(keys []Scalar) string {
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = pos(k.AssignedIndex)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	switch n := node.(type) {
	case *Scalar:
		return pos(n.AssignedIndex)
	case *ScalarArray:
		return "(" + pos(n.AssignedIndex) + ")"
	case *Pick:
		return tuple(n.Keys)
	case *Spread:
		return tuple(n.Keys)
	}
	return ""
}

// IR is the serialized form of a query that the runtime uses to bind
// arguments. It is embedded in generated sql-file modules.
type IR struct {
	Name      string    `json:"name"`
	Params    []IRParam `json:"params"`
	Statement string    `json:"statement"`
}

// IRParam is one call-site argument and the places it occurs in Statement
type IRParam struct {
	Name      string      `json:"name"`
	Required  bool        `json:"required"`
	Transform IRTransform `json:"transform"`
	Locs      []IRLoc     `json:"locs"`
}

// IRTransform is the expansion shape of an argument
type IRTransform struct {
	Type string  `json:"type"`
	Keys []IRKey `json:"keys,omitempty"`
}

// IRKey is one key of a pick or spread argument
type IRKey struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

// IRLoc is a half-open byte range [A, B) in Statement
type IRLoc struct {
	A int `json:"a"`
	B int `json:"b"`
}

// BuildIR describes q's arguments in first-occurrence order
func BuildIR(q *Query) *IR {
	ir := &IR{Name: q.Name, Statement: q.Text, Params: []IRParam{}}
	index := make(map[string]int)
	for _, ref := range q.Params {
		loc := IRLoc{A: ref.Start, B: ref.End}
		if i, ok := index[ref.Name]; ok {
			ir.Params[i].Locs = append(ir.Params[i].Locs, loc)
			continue
		}
		param := IRParam{
			Name:      ref.Name,
			Transform: IRTransform{Type: ref.Kind.String()},
			Locs:      []IRLoc{loc},
		}
		for _, k := range ref.Keys {
			param.Transform.Keys = append(param.Transform.Keys, IRKey{Name: k})
		}
		index[ref.Name] = len(ir.Params)
		ir.Params = append(ir.Params, param)
	}
	return ir
}

// JSON renders the IR on one line
func (ir *IR) JSON() (string, error) {
	b, err := json.Marshal(ir)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
