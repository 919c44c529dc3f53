package typegen

import (
	"strings"

	"github.com/golergka/pgtyped/errors"
	"github.com/golergka/pgtyped/query"
	"github.com/golergka/pgtyped/typegen/util"
)

// Optionality controls the suffix added to a field's type
type Optionality int

const (
	// Required fields get no suffix
	Required Optionality = iota
	// Nullable fields may hold null
	Nullable
	// Omittable fields may be null or left out by the caller
	Omittable
)

// Suffix returns the union suffix for o
func (o Optionality) Suffix() string {
	switch o {
	case Nullable:
		return " | null"
	case Omittable:
		return " | null | void"
	}
	return ""
}

// Field is one property of a generated interface
type Field struct {
	Name        string
	Type        string
	Optionality Optionality
}

// TypeString is the field's type including its optionality suffix
func (f Field) TypeString() string {
	return f.Type + f.Optionality.Suffix()
}

// ResolveParams turns the parameter transform tree into interface fields,
// one per mapping root, in mapping order.
//
// Scalar parameters are always omittable whatever their backend nullability.
// Two roots resolving to the same field name are rejected, as are duplicate
// keys within one pick or spread.
func ResolveParams(meta query.ParamMetadata, alloc *TypeAllocator) ([]Field, error) {
	r := &paramResolver{meta: meta, alloc: alloc}
	seen := make(map[string]string, len(meta.Mapping))
	for _, root := range meta.Mapping {
		if prev, dup := seen[root.ParamName()]; dup {
			return nil, errors.Wrapf(errors.ErrAmbiguousTransform,
				"parameter %q is used both as %s and as %s", root.ParamName(), prev, query.TransformKind(root))
		}
		seen[root.ParamName()] = query.TransformKind(root)

		if err := root.Accept(r); err != nil {
			return nil, err
		}
	}
	return r.fields, nil
}

type paramResolver struct {
	meta   query.ParamMetadata
	alloc  *TypeAllocator
	fields []Field
}

func (r *paramResolver) scalarType(name string, index int) (string, error) {
	if index < 1 || index > len(r.meta.Params) {
		return "", errors.Wrapf(errors.ErrUnknownParamIndex,
			"parameter %q refers to $%d but the query has %d parameters", name, index, len(r.meta.Params))
	}
	return r.useParamType(r.meta.Params[index-1]), nil
}

func (r *paramResolver) useParamType(name string) string {
	if spec, ok := r.meta.Custom[name]; ok {
		return r.alloc.Use(spec)
	}
	if elem, ok := ArrayElem(name); ok {
		if spec, ok := r.meta.Custom[elem]; ok {
			return r.alloc.Use(spec) + "[]"
		}
	}
	return r.alloc.UseName(name)
}

func (r *paramResolver) VisitScalar(s *query.Scalar) error {
	t, err := r.scalarType(s.Name, s.AssignedIndex)
	if err != nil {
		return err
	}
	r.fields = append(r.fields, Field{Name: s.Name, Type: t, Optionality: Omittable})
	return nil
}

func (r *paramResolver) VisitScalarArray(s *query.ScalarArray) error {
	t, err := r.scalarType(s.Name, s.AssignedIndex)
	if err != nil {
		return err
	}
	r.fields = append(r.fields, Field{
		Name: s.Name,
		Type: "readonly (" + t + Omittable.Suffix() + ")[]",
	})
	return nil
}

func (r *paramResolver) VisitPick(p *query.Pick) error {
	shape, err := r.objectShape(p.Name, p.Keys)
	if err != nil {
		return err
	}
	r.fields = append(r.fields, Field{Name: p.Name, Type: shape})
	return nil
}

func (r *paramResolver) VisitSpread(s *query.Spread) error {
	shape, err := r.objectShape(s.Name, s.Keys)
	if err != nil {
		return err
	}
	r.fields = append(r.fields, Field{Name: s.Name, Type: shape + "[]"})
	return nil
}

// objectShape renders the nested object literal of a pick or spread,
// indented to sit inside an interface body
func (r *paramResolver) objectShape(root string, keys []query.Scalar) (string, error) {
	seen := make(map[string]bool, len(keys))
	entries := make([]string, 0, len(keys))
	for _, k := range keys {
		if seen[k.Name] {
			return "", errors.Wrapf(errors.ErrAmbiguousTransform,
				"key %q appears twice in parameter %q", k.Name, root)
		}
		seen[k.Name] = true

		t, err := r.scalarType(root+"."+k.Name, k.AssignedIndex)
		if err != nil {
			return "", err
		}
		f := Field{Name: k.Name, Type: t, Optionality: Omittable}
		entries = append(entries, "    "+util.PropertyName(f.Name)+": "+f.TypeString())
	}
	return "{\n" + strings.Join(entries, ",\n") + "\n  }", nil
}
