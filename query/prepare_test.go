package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepare_ReusesScalarIndex(t *testing.T) {
	qs, err := ParseTypeScriptFile("const q = sql`SELECT * FROM books WHERE id = $id OR parent = $id AND rank > $rank`;")
	require.NoError(t, err)

	p := Prepare(qs[0])
	assert.Equal(t, "SELECT * FROM books WHERE id = $1 OR parent = $1 AND rank > $2", p.SQL)
	assert.Equal(t, 2, p.ParamCount)
	assert.True(t, EqualMappings([]ParamTransform{
		&Scalar{Name: "id", AssignedIndex: 1},
		&Scalar{Name: "rank", AssignedIndex: 2},
	}, p.Mapping))
}

func TestPrepare_Shapes(t *testing.T) {
	src := `
/*
  @name Insert
  @param notification -> (payload, user_id, type)
  @param ids -> (...)
  @param rows -> ((a, b)...)
*/
INSERT INTO t VALUES :notification, :rows WHERE id IN :ids;`
	qs, err := ParseSQLFile(src)
	require.NoError(t, err)

	p := Prepare(qs[0])
	assert.Equal(t, "INSERT INTO t VALUES ($1, $2, $3), ($4, $5) WHERE id IN ($6)", p.SQL)
	assert.Equal(t, 6, p.ParamCount)
	require.Len(t, p.Mapping, 3)

	pick, ok := p.Mapping[0].(*Pick)
	require.True(t, ok)
	assert.Equal(t, "notification", pick.Name)
	assert.Equal(t, []Scalar{{"payload", 1}, {"user_id", 2}, {"type", 3}}, pick.Keys)

	_, ok = p.Mapping[1].(*Spread)
	assert.True(t, ok)
	assert.Equal(t, &ScalarArray{Name: "ids", AssignedIndex: 6}, p.Mapping[2])
}

func TestPrepare_ConflictingShapesAddRoots(t *testing.T) {
	qs, err := ParseTypeScriptFile("const q = sql`SELECT $x, $$x`;")
	require.NoError(t, err)

	p := Prepare(qs[0])
	require.Len(t, p.Mapping, 2)
	assert.Equal(t, "x", p.Mapping[0].ParamName())
	assert.Equal(t, "x", p.Mapping[1].ParamName())
}

func TestBuildIR(t *testing.T) {
	qs, err := ParseSQLFile("/* @name GetUser */ SELECT * FROM users WHERE id = :id OR id = :id;")
	require.NoError(t, err)

	ir := BuildIR(qs[0])
	require.Len(t, ir.Params, 1)
	assert.Equal(t, "scalar", ir.Params[0].Transform.Type)
	assert.Len(t, ir.Params[0].Locs, 2)

	out, err := ir.JSON()
	require.NoError(t, err)
	assert.Contains(t, out, `"name":"GetUser"`)
	assert.Contains(t, out, `"locs":[{"a":31,"b":34},{"a":43,"b":46}]`)
}

func TestEqualTransforms(t *testing.T) {
	a := &Pick{Name: "p", Keys: []Scalar{{"a", 1}, {"b", 2}}}
	b := &Pick{Name: "p", Keys: []Scalar{{"b", 2}, {"a", 1}}}
	c := &Spread{Name: "p", Keys: []Scalar{{"a", 1}, {"b", 2}}}
	d := &Pick{Name: "p", Keys: []Scalar{{"a", 1}, {"b", 3}}}

	assert.True(t, EqualTransforms(a, b), "key order is not significant")
	assert.False(t, EqualTransforms(a, c), "kind differs")
	assert.False(t, EqualTransforms(a, d), "index differs")
	assert.True(t, EqualTransforms(nil, nil))
	assert.False(t, EqualTransforms(a, nil))

	x := &Pick{Name: "p", Keys: []Scalar{{"a", 1}, {"b", 2}}}
	y := &Pick{Name: "p", Keys: []Scalar{{"a", 1}, {"a", 1}}}
	assert.False(t, EqualTransforms(x, y), "repeated key")
	assert.False(t, EqualTransforms(y, x), "repeated key, swapped")
}
