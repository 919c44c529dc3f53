package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const booksTS = "import { sql } from '@pgtyped/query';\n" +
	"\n" +
	"export const getBooks = sql`SELECT * FROM books WHERE id = $id AND rank > $id`;\n" +
	"\n" +
	"const insertBooks = sql<IInsertBooksQuery>`\n" +
	"  INSERT INTO books (name, author_id) VALUES $$books(name, authorId) RETURNING id`;\n" +
	"\n" +
	"let byIds = sql`SELECT * FROM books WHERE id = ANY($$ids) AND note <> '$skip'`;\n" +
	"\n" +
	"var update = sql`UPDATE books SET $book(name, rank) WHERE id = $1`;\n"

func TestParseTypeScriptFile(t *testing.T) {
	queries, err := ParseTypeScriptFile(booksTS)
	require.NoError(t, err)
	require.Len(t, queries, 4)

	get := queries[0]
	assert.Equal(t, "GetBooks", get.Name)
	assert.Equal(t, "getBooks", get.ExportName())
	assert.Equal(t, ModeTS, get.Mode)
	assert.Equal(t, 3, get.Line)
	require.Len(t, get.Params, 2)
	assert.Equal(t, "$id", get.Text[get.Params[1].Start:get.Params[1].End])

	insert := queries[1]
	assert.Equal(t, "InsertBooks", insert.Name)
	require.Len(t, insert.Params, 1)
	assert.Equal(t, ParamSpread, insert.Params[0].Kind)
	assert.Equal(t, []string{"name", "authorId"}, insert.Params[0].Keys)

	byIDs := queries[2]
	require.Len(t, byIDs.Params, 1, "quoted text is not a placeholder")
	assert.Equal(t, ParamScalarArray, byIDs.Params[0].Kind)

	update := queries[3]
	require.Len(t, update.Params, 1, "positional placeholders are left alone")
	assert.Equal(t, ParamPick, update.Params[0].Kind)
}

func TestParseTypeScriptFile_Errors(t *testing.T) {
	_, err := ParseTypeScriptFile("const q = sql`SELECT ${id}`;")
	assert.Error(t, err)

	_, err = ParseTypeScriptFile("const q = sql`SELECT 1")
	assert.Error(t, err)

	_, err = ParseTypeScriptFile("const q = sql`SELECT $p(a,,b)`;")
	assert.Error(t, err)
}

func TestParse_Dispatch(t *testing.T) {
	qs, err := Parse(ModeTS, "const q = sql`SELECT 1`;")
	require.NoError(t, err)
	require.Len(t, qs, 1)

	qs, err = Parse(ModeSQL, "/* @name Q */ SELECT 1;")
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "Q", qs[0].Name)
}
