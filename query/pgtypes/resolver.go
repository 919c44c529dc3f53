// Package pgtypes resolves query types against a live PostgreSQL server.
//
// Statements are prepared (never executed) to learn parameter and column
// type OIDs. OIDs are then looked up in pg_type, enums in pg_enum and column
// nullability in pg_attribute. Catalog lookups are cached per resolver.
package pgtypes

import (
	"context"
	"database/sql"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/golergka/pgtyped/errors"
	"github.com/golergka/pgtyped/logger"
	"github.com/golergka/pgtyped/query"
	"github.com/golergka/pgtyped/typegen/util"
)

const (
	typeQuery     = `SELECT typname, typtype, typelem FROM pg_catalog.pg_type WHERE oid = $1`
	enumQuery     = `SELECT enumlabel FROM pg_catalog.pg_enum WHERE enumtypid = $1 ORDER BY enumsortorder`
	notNullQuery  = `SELECT attnotnull FROM pg_catalog.pg_attribute WHERE attrelid = $1 AND attnum = $2`
	cacheCapacity = 1024
)

// typeInfo is a cached pg_type row
type typeInfo struct {
	name       string
	elem       uint32
	enumValues []string
}

type columnKey struct {
	rel uint32
	att uint16
}

// Resolver implements query.TypeResolver against one database connection
type Resolver struct {
	db        *sql.DB
	describer Describer
	log       *zap.SugaredLogger

	types   *lru.Cache[uint32, typeInfo]
	notNull *lru.Cache[columnKey, bool]
}

var _ query.TypeResolver = (*Resolver)(nil)

// Open connects to dsn with a single connection and checks it is alive
func Open(ctx context.Context, dsn string, log *zap.SugaredLogger) (*Resolver, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.WithHint(errors.Wrap(err, "connect to database"),
			"check the db section of your config or DATABASE_URL")
	}
	return New(db, connDescriber{db: db}, log)
}

// New builds a resolver over an open database and describer
func New(db *sql.DB, describer Describer, log *zap.SugaredLogger) (*Resolver, error) {
	if log == nil {
		log = logger.Logger
	}
	types, err := lru.New[uint32, typeInfo](cacheCapacity)
	if err != nil {
		return nil, err
	}
	notNull, err := lru.New[columnKey, bool](cacheCapacity)
	if err != nil {
		return nil, err
	}
	return &Resolver{
		db:        db,
		describer: describer,
		log:       log.Named("pgtypes"),
		types:     types,
		notNull:   notNull,
	}, nil
}

// GetTypes describes p and maps its OIDs to type names
func (r *Resolver) GetTypes(ctx context.Context, p *query.Prepared) (*query.QueryTypes, error) {
	desc, err := r.describer.Describe(ctx, p.SQL)
	if err != nil {
		return nil, errors.WithDetailf(errors.Wrapf(err, "describe query %s", p.Query.Name), "sql: %s", p.SQL)
	}
	r.log.Debugw("Described query",
		logger.FieldQuery, p.Query.Name,
		"params", len(desc.ParamOIDs),
		"columns", len(desc.Fields))

	types := &query.QueryTypes{
		ParamMetadata: query.ParamMetadata{Mapping: p.Mapping},
	}

	for _, oid := range desc.ParamOIDs {
		name, err := r.paramType(ctx, oid, &types.ParamMetadata)
		if err != nil {
			return nil, err
		}
		types.ParamMetadata.Params = append(types.ParamMetadata.Params, name)
	}

	for _, f := range desc.Fields {
		ref, err := r.typeRef(ctx, f.DataTypeOID)
		if err != nil {
			return nil, err
		}
		rt := query.ReturnType{ReturnName: f.Name, ColumnName: f.Name, Type: ref}
		if f.TableOID != 0 {
			notNull, err := r.columnNotNull(ctx, f.TableOID, f.TableAttributeNumber)
			if err != nil {
				return nil, err
			}
			rt.Nullable = query.Nullable(!notNull)
		}
		types.ReturnTypes = append(types.ReturnTypes, rt)
	}
	return types, nil
}

// Close releases the connection
func (r *Resolver) Close() error {
	return r.db.Close()
}

// paramType returns the backend name for a parameter OID and records enums
// in meta.Custom
func (r *Resolver) paramType(ctx context.Context, oid uint32, meta *query.ParamMetadata) (string, error) {
	info, err := r.lookupType(ctx, oid)
	if err != nil {
		return "", err
	}
	target := info
	if info.elem != 0 {
		if target, err = r.lookupType(ctx, info.elem); err != nil {
			return "", err
		}
	}
	if len(target.enumValues) > 0 {
		if meta.Custom == nil {
			meta.Custom = make(map[string]query.TypeSpec)
		}
		meta.Custom[target.name] = enumSpec(target)
	}
	return info.name, nil
}

// typeRef returns a builtin reference, or a custom one for enums and enum arrays
func (r *Resolver) typeRef(ctx context.Context, oid uint32) (query.TypeRef, error) {
	info, err := r.lookupType(ctx, oid)
	if err != nil {
		return query.TypeRef{}, err
	}
	if len(info.enumValues) > 0 {
		return query.Custom(enumSpec(info)), nil
	}
	if info.elem != 0 {
		elem, err := r.lookupType(ctx, info.elem)
		if err != nil {
			return query.TypeRef{}, err
		}
		if len(elem.enumValues) > 0 {
			return query.CustomArray(enumSpec(elem)), nil
		}
	}
	return query.Builtin(info.name), nil
}

func (r *Resolver) lookupType(ctx context.Context, oid uint32) (typeInfo, error) {
	if info, ok := r.types.Get(oid); ok {
		return info, nil
	}

	var info typeInfo
	var typtype string
	err := r.db.QueryRowContext(ctx, typeQuery, oid).Scan(&info.name, &typtype, &info.elem)
	if err != nil {
		return typeInfo{}, errors.Wrapf(err, "look up type oid %d", oid)
	}
	// only array types keep an element; typelem is also set on some fixed-width types
	if !strings.HasPrefix(info.name, "_") {
		info.elem = 0
	}

	if typtype == "e" {
		rows, err := r.db.QueryContext(ctx, enumQuery, oid)
		if err != nil {
			return typeInfo{}, errors.Wrapf(err, "look up enum %s", info.name)
		}
		defer rows.Close()
		for rows.Next() {
			var label string
			if err := rows.Scan(&label); err != nil {
				return typeInfo{}, errors.Wrapf(err, "scan enum %s", info.name)
			}
			info.enumValues = append(info.enumValues, label)
		}
		if err := rows.Err(); err != nil {
			return typeInfo{}, errors.Wrapf(err, "read enum %s", info.name)
		}
	}

	r.types.Add(oid, info)
	return info, nil
}

func (r *Resolver) columnNotNull(ctx context.Context, rel uint32, att uint16) (bool, error) {
	key := columnKey{rel: rel, att: att}
	if v, ok := r.notNull.Get(key); ok {
		return v, nil
	}
	var notNull bool
	err := r.db.QueryRowContext(ctx, notNullQuery, rel, att).Scan(&notNull)
	if errors.Is(err, sql.ErrNoRows) {
		notNull = false
	} else if err != nil {
		return false, errors.Wrapf(err, "look up nullability of column %d of relation %d", att, rel)
	}
	r.notNull.Add(key, notNull)
	return notNull, nil
}

func enumSpec(info typeInfo) query.TypeSpec {
	return query.TypeSpec{Name: util.ToPascalCase(info.name), EnumValues: info.enumValues}
}
