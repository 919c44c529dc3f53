package pgtypes

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/golergka/pgtyped/errors"
)

// Description is what the server reports for a prepared statement
type Description struct {
	ParamOIDs []uint32
	Fields    []Field
}

// Field is one result column of a described statement
type Field struct {
	Name string
	// TableOID and TableAttributeNumber are zero for computed columns
	TableOID             uint32
	TableAttributeNumber uint16
	DataTypeOID          uint32
}

// Describer prepares a statement without executing it
type Describer interface {
	Describe(ctx context.Context, sql string) (*Description, error)
}

// connDescriber describes statements on a pgx connection borrowed from db
type connDescriber struct {
	db *sql.DB
}

func (d connDescriber) Describe(ctx context.Context, query string) (*Description, error) {
	conn, err := d.db.Conn(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "acquire connection")
	}
	defer conn.Close()

	var desc Description
	err = conn.Raw(func(driverConn any) error {
		c, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return errors.AssertionFailedf("unexpected driver connection %T", driverConn)
		}
		sd, err := c.Conn().PgConn().Prepare(ctx, "", query, nil)
		if err != nil {
			return err
		}
		desc.ParamOIDs = sd.ParamOIDs
		for _, f := range sd.Fields {
			desc.Fields = append(desc.Fields, Field{
				Name:                 f.Name,
				TableOID:             f.TableOID,
				TableAttributeNumber: f.TableAttributeNumber,
				DataTypeOID:          f.DataTypeOID,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &desc, nil
}
