package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const notificationsSQL = `
/* @name GetNotifications */
SELECT payload, type FROM notifications WHERE id = :id;

/*
  @name InsertNotifications
  @param notification -> (payload, user_id, type)
*/
INSERT INTO notifications (payload, user_id, type) VALUES :notification;

/*
  @name InsertMany
  @param rows -> ((payload, user_id)...)
*/
INSERT INTO notifications (payload, user_id) VALUES :rows RETURNING id;

/*
  @name DeleteUsers
  @param ids -> (...)
*/
DELETE FROM users WHERE id IN :ids AND created_at::date < ':not_a_param';
`

func TestParseSQLFile(t *testing.T) {
	queries, err := ParseSQLFile(notificationsSQL)
	require.NoError(t, err)
	require.Len(t, queries, 4)

	get := queries[0]
	assert.Equal(t, "GetNotifications", get.Name)
	assert.Equal(t, ModeSQL, get.Mode)
	assert.Equal(t, 2, get.Line)
	assert.Equal(t, "SELECT payload, type FROM notifications WHERE id = :id", get.Text)
	require.Len(t, get.Params, 1)
	assert.Equal(t, "id", get.Params[0].Name)
	assert.Equal(t, ParamScalar, get.Params[0].Kind)
	assert.Equal(t, ":id", get.Text[get.Params[0].Start:get.Params[0].End])

	insert := queries[1]
	require.Len(t, insert.Params, 1)
	assert.Equal(t, ParamPick, insert.Params[0].Kind)
	assert.Equal(t, []string{"payload", "user_id", "type"}, insert.Params[0].Keys)

	many := queries[2]
	require.Len(t, many.Params, 1)
	assert.Equal(t, ParamSpread, many.Params[0].Kind)
	assert.Equal(t, []string{"payload", "user_id"}, many.Params[0].Keys)

	del := queries[3]
	require.Len(t, del.Params, 1, "casts and string literals are not placeholders")
	assert.Equal(t, ParamScalarArray, del.Params[0].Kind)
}

func TestParseSQLFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing annotation", "SELECT 1;"},
		{"empty name", "/* @name */ SELECT 1;"},
		{"dangling annotation", "/* @name Orphan */"},
		{"bad transform", "/*\n @name Q\n @param x -> (a,)\n*/ SELECT :x;"},
		{"duplicate param", "/*\n @name Q\n @param x -> (...)\n @param x -> (...)\n*/ SELECT :x;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSQLFile(tt.src)
			assert.Error(t, err)
		})
	}
}

func TestParseSQLFile_Empty(t *testing.T) {
	queries, err := ParseSQLFile("-- nothing here\n")
	require.NoError(t, err)
	assert.Empty(t, queries)
}
