package pgtypes

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/golergka/pgtyped/errors"
	"github.com/golergka/pgtyped/query"
)

type fakeDescriber struct {
	desc *Description
	err  error
	seen []string
}

func (f *fakeDescriber) Describe(_ context.Context, sql string) (*Description, error) {
	f.seen = append(f.seen, sql)
	return f.desc, f.err
}

func newTestResolver(t *testing.T, d Describer) (*Resolver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	r, err := New(db, d, zap.NewNop().Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r, mock
}

func expectType(mock sqlmock.Sqlmock, oid uint32, name, typtype string, elem uint32) {
	mock.ExpectQuery(regexp.QuoteMeta(typeQuery)).
		WithArgs(oid).
		WillReturnRows(sqlmock.NewRows([]string{"typname", "typtype", "typelem"}).AddRow(name, typtype, elem))
}

func prepared(t *testing.T, src string) *query.Prepared {
	t.Helper()
	qs, err := query.ParseSQLFile(src)
	require.NoError(t, err)
	return query.Prepare(qs[0])
}

func TestResolver_GetTypes(t *testing.T) {
	d := &fakeDescriber{desc: &Description{
		ParamOIDs: []uint32{2950, 16400},
		Fields: []Field{
			{Name: "id", TableOID: 100, TableAttributeNumber: 1, DataTypeOID: 2950},
			{Name: "mood", TableOID: 100, TableAttributeNumber: 2, DataTypeOID: 16400},
			{Name: "count", DataTypeOID: 20},
		},
	}}
	r, mock := newTestResolver(t, d)

	expectType(mock, 2950, "uuid", "b", 0)
	expectType(mock, 16400, "mood", "e", 0)
	mock.ExpectQuery(regexp.QuoteMeta(enumQuery)).
		WithArgs(16400).
		WillReturnRows(sqlmock.NewRows([]string{"enumlabel"}).AddRow("happy").AddRow("sad"))
	mock.ExpectQuery(regexp.QuoteMeta(notNullQuery)).
		WithArgs(100, 1).
		WillReturnRows(sqlmock.NewRows([]string{"attnotnull"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta(notNullQuery)).
		WithArgs(100, 2).
		WillReturnRows(sqlmock.NewRows([]string{"attnotnull"}).AddRow(false))
	expectType(mock, 20, "int8", "b", 0)

	p := prepared(t, "/* @name GetUser */ SELECT id, mood, count(*) FROM users WHERE id = :id AND mood = :mood;")
	types, err := r.GetTypes(context.Background(), p)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, []string{"SELECT id, mood, count(*) FROM users WHERE id = $1 AND mood = $2"}, d.seen)
	assert.Equal(t, []string{"uuid", "mood"}, types.ParamMetadata.Params)
	assert.Equal(t, p.Mapping, types.ParamMetadata.Mapping)
	assert.Equal(t, query.TypeSpec{Name: "Mood", EnumValues: []string{"happy", "sad"}}, types.ParamMetadata.Custom["mood"])

	require.Len(t, types.ReturnTypes, 3)
	assert.Equal(t, "uuid", types.ReturnTypes[0].Type.Builtin)
	assert.False(t, types.ReturnTypes[0].IsNullable())
	assert.Equal(t, "Mood", types.ReturnTypes[1].Type.String())
	assert.True(t, types.ReturnTypes[1].IsNullable())
	assert.Nil(t, types.ReturnTypes[2].Nullable, "computed columns have no nullability info")
}

func TestResolver_EnumArray(t *testing.T) {
	d := &fakeDescriber{desc: &Description{
		Fields: []Field{{Name: "moods", DataTypeOID: 16399}},
	}}
	r, mock := newTestResolver(t, d)

	expectType(mock, 16399, "_mood", "b", 16400)
	expectType(mock, 16400, "mood", "e", 0)
	mock.ExpectQuery(regexp.QuoteMeta(enumQuery)).
		WithArgs(16400).
		WillReturnRows(sqlmock.NewRows([]string{"enumlabel"}).AddRow("happy"))

	types, err := r.GetTypes(context.Background(), prepared(t, "/* @name Moods */ SELECT array_agg(mood) AS moods FROM users;"))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	ref := types.ReturnTypes[0].Type
	assert.True(t, ref.Array)
	assert.Equal(t, "Mood[]", ref.String())
}

func TestResolver_CachesCatalogLookups(t *testing.T) {
	d := &fakeDescriber{desc: &Description{ParamOIDs: []uint32{25}}}
	r, mock := newTestResolver(t, d)

	expectType(mock, 25, "text", "b", 0)

	p := prepared(t, "/* @name Q */ SELECT :name;")
	for i := 0; i < 3; i++ {
		types, err := r.GetTypes(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, []string{"text"}, types.ParamMetadata.Params)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolver_DescribeError(t *testing.T) {
	d := &fakeDescriber{err: errors.New(`relation "userz" does not exist`)}
	r, _ := newTestResolver(t, d)

	_, err := r.GetTypes(context.Background(), prepared(t, "/* @name Broken */ SELECT * FROM userz;"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "describe query Broken")
	assert.Contains(t, err.Error(), "userz")
}

func TestResolver_CatalogError(t *testing.T) {
	d := &fakeDescriber{desc: &Description{ParamOIDs: []uint32{25}}}
	r, mock := newTestResolver(t, d)

	mock.ExpectQuery(regexp.QuoteMeta(typeQuery)).WithArgs(25).WillReturnError(errors.New("connection reset"))

	_, err := r.GetTypes(context.Background(), prepared(t, "/* @name Q */ SELECT :name;"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "look up type oid 25")
}
