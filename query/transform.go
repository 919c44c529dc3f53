package query

// ParamTransform is one node of the parameter transform tree. The set of
// implementations is closed: Scalar, ScalarArray, Pick and Spread.
type ParamTransform interface {
	ParamName() string
	Accept(v ParamTransformVisitor) error
}

// ParamTransformVisitor must handle every transform kind. Adding a kind adds a
// method here, so every visitor stops compiling until it handles it.
type ParamTransformVisitor interface {
	VisitScalar(*Scalar) error
	VisitScalarArray(*ScalarArray) error
	VisitPick(*Pick) error
	VisitSpread(*Spread) error
}

// Scalar binds one argument to one placeholder ($AssignedIndex, 1-based)
type Scalar struct {
	Name          string
	AssignedIndex int
}

// ScalarArray binds an array argument that expands to a list of placeholders
// of the same type, e.g. `WHERE id IN :ids`
type ScalarArray struct {
	Name          string
	AssignedIndex int
}

// Pick binds an object argument whose keys each map to one placeholder
type Pick struct {
	Name string
	Keys []Scalar
}

// Spread binds an array of objects, each shaped like a Pick
type Spread struct {
	Name string
	Keys []Scalar
}

func (s *Scalar) ParamName() string      { return s.Name }
func (s *ScalarArray) ParamName() string { return s.Name }
func (p *Pick) ParamName() string        { return p.Name }
func (s *Spread) ParamName() string      { return s.Name }

func (s *Scalar) Accept(v ParamTransformVisitor) error      { return v.VisitScalar(s) }
func (s *ScalarArray) Accept(v ParamTransformVisitor) error { return v.VisitScalarArray(s) }
func (p *Pick) Accept(v ParamTransformVisitor) error        { return v.VisitPick(p) }
func (s *Spread) Accept(v ParamTransformVisitor) error      { return v.VisitSpread(s) }

// TransformKind names the kind of a transform node
func TransformKind(t ParamTransform) string {
	switch t.(type) {
	case *Scalar:
		return "scalar"
	case *ScalarArray:
		return "scalar_array"
	case *Pick:
		return "pick"
	case *Spread:
		return "spread"
	}
	return "unknown"
}

// EqualTransforms reports whether two trees have the same kind, name, child
// set and assigned indices. Key order inside a Pick or Spread is not
// significant.
func EqualTransforms(a, b ParamTransform) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if TransformKind(a) != TransformKind(b) || a.ParamName() != b.ParamName() {
		return false
	}
	switch at := a.(type) {
	case *Scalar:
		return at.AssignedIndex == b.(*Scalar).AssignedIndex
	case *ScalarArray:
		return at.AssignedIndex == b.(*ScalarArray).AssignedIndex
	case *Pick:
		return sameKeySet(at.Keys, b.(*Pick).Keys)
	case *Spread:
		return sameKeySet(at.Keys, b.(*Spread).Keys)
	}
	return false
}

func sameKeySet(a, b []Scalar) bool {
	if len(a) != len(b) {
		return false
	}
	idx := make(map[string]int, len(a))
	for _, k := range a {
		idx[k.Name] = k.AssignedIndex
	}
	// a repeated key on either side never matches
	if len(idx) != len(a) {
		return false
	}
	for _, k := range b {
		i, ok := idx[k.Name]
		if !ok || i != k.AssignedIndex {
			return false
		}
		delete(idx, k.Name)
	}
	return true
}

// EqualMappings compares two mapping lists root by root
func EqualMappings(a, b []ParamTransform) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !EqualTransforms(a[i], b[i]) {
			return false
		}
	}
	return true
}
