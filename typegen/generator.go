// Package typegen renders TypeScript declarations for resolved SQL queries.
//
// One TypeAllocator is created per output file. Every query in the file is
// rendered with GenerateDeclarations against that allocator, and the
// allocator's Declaration is placed above the query blocks by GenerateFile.
package typegen

import (
	"fmt"
	"strings"

	"github.com/golergka/pgtyped/errors"
	"github.com/golergka/pgtyped/query"
	"github.com/golergka/pgtyped/typegen/util"
)

// PreparedQueryType is the runtime class bound to queries from sql files
var PreparedQueryType = Type{Name: "PreparedQuery", From: "@pgtyped/query"}

// Options tune rendering
type Options struct {
	// CamelCaseColumnNames converts snake_case result columns to camelCase
	CamelCaseColumnNames bool
}

// Entry is one query with its resolved types
type Entry struct {
	Query *query.Query
	Types *query.QueryTypes
}

// GenerateDeclarations renders the parameters, result and query interfaces
// for q. It records every referenced type in alloc and does no I/O.
func GenerateDeclarations(q *query.Query, types *query.QueryTypes, alloc *TypeAllocator, opts Options) (string, error) {
	if q == nil || types == nil {
		return "", errors.AssertionFailedf("query and types are required")
	}
	name := q.TypeName()
	if name == "" {
		return "", errors.New("query has no name")
	}

	results := make([]Field, 0, len(types.ReturnTypes))
	for _, rt := range types.ReturnTypes {
		fieldName := rt.ReturnName
		if opts.CamelCaseColumnNames {
			fieldName = util.ToCamelCase(fieldName)
		}
		f := Field{Name: fieldName, Type: alloc.UseRef(rt.Type)}
		if rt.IsNullable() {
			f.Optionality = Nullable
		}
		results = append(results, f)
	}

	params, err := ResolveParams(types.ParamMetadata, alloc)
	if err != nil {
		return "", errors.Wrapf(err, "query %s", name)
	}

	paramsName := "I" + name + "Params"
	resultName := "I" + name + "Result"
	queryName := "I" + name + "Query"

	var sb strings.Builder
	sb.WriteString(docComment(fmt.Sprintf("'%s' parameters type", name)))
	if len(params) == 0 {
		sb.WriteString(generateTypeAlias(paramsName, "void"))
	} else {
		sb.WriteString(GenerateInterface(paramsName, params))
	}

	sb.WriteString(docComment(fmt.Sprintf("'%s' return type", name)))
	if len(results) == 0 {
		sb.WriteString(generateTypeAlias(resultName, "void"))
	} else {
		sb.WriteString(GenerateInterface(resultName, results))
	}

	sb.WriteString(docComment(fmt.Sprintf("'%s' query type", name)))
	sb.WriteString(GenerateInterface(queryName, []Field{
		{Name: "params", Type: paramsName},
		{Name: "result", Type: resultName},
	}))
	return sb.String(), nil
}

// GeneratePreparedQuery renders the IR constant and PreparedQuery export for
// a query from a sql file.
func GeneratePreparedQuery(q *query.Query, alloc *TypeAllocator) (string, error) {
	ir, err := query.BuildIR(q).JSON()
	if err != nil {
		return "", errors.Wrapf(err, "encode IR for %s", q.Name)
	}
	class := alloc.Use(PreparedQueryType)

	exportName := q.ExportName()
	irName := exportName + "IR"
	typeName := q.TypeName()

	var sb strings.Builder
	sb.WriteString("const " + irName + ": any = " + ir + ";\n\n")
	sb.WriteString("/**\n * Query generated from SQL:\n * ```\n")
	for _, line := range strings.Split(q.Text, "\n") {
		sb.WriteString(strings.TrimRight(" * "+strings.ReplaceAll(line, "*/", "*\\/"), " ") + "\n")
	}
	sb.WriteString(" * ```\n */\n")
	sb.WriteString(fmt.Sprintf("export const %s = new %s<I%sParams,I%sResult>(%s);\n\n\n",
		exportName, class, typeName, typeName, irName))
	return sb.String(), nil
}

// GenerateFile renders a complete declaration file for the queries found in
// relPath: header comment, allocator preamble, then one block per query.
func GenerateFile(relPath string, entries []Entry, alloc *TypeAllocator, opts Options) (string, error) {
	var body strings.Builder
	for _, e := range entries {
		block, err := GenerateDeclarations(e.Query, e.Types, alloc, opts)
		if err != nil {
			return "", err
		}
		body.WriteString(block)
		if e.Query.Mode == query.ModeSQL {
			binding, err := GeneratePreparedQuery(e.Query, alloc)
			if err != nil {
				return "", err
			}
			body.WriteString(binding)
		}
	}

	var sb strings.Builder
	sb.WriteString(docComment(`Types generated for queries found in "` + relPath + `"`))
	if decl := alloc.Declaration(); decl != "" {
		sb.WriteString(decl)
	}
	sb.WriteString("\n")
	sb.WriteString(body.String())
	return strings.TrimRight(sb.String(), "\n") + "\n", nil
}
