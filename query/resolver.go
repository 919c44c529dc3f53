package query

import "context"

// TypeResolver resolves the parameter and result types of a prepared query,
// normally by asking the database to describe the statement.
type TypeResolver interface {
	GetTypes(ctx context.Context, p *Prepared) (*QueryTypes, error)
	Close() error
}

// Parse dispatches on mode
func Parse(mode Mode, src string) ([]*Query, error) {
	if mode == ModeTS {
		return ParseTypeScriptFile(src)
	}
	return ParseSQLFile(src)
}
