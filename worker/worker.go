// Package worker processes one source file: read, parse, resolve types,
// render declarations and write the output when it changed.
package worker

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/golergka/pgtyped/config"
	"github.com/golergka/pgtyped/errors"
	"github.com/golergka/pgtyped/logger"
	"github.com/golergka/pgtyped/query"
	"github.com/golergka/pgtyped/query/pgtypes"
	"github.com/golergka/pgtyped/typegen"
)

// Result describes one processed file
type Result struct {
	RelativePath         string
	OutputPath           string
	TypeDeclarationCount int
	// Written is false when the output already had the generated content
	Written bool
}

// Processor renders files for one worker. It owns its resolver and is not
// safe for concurrent use.
type Processor struct {
	resolver query.TypeResolver
	registry *typegen.Registry
	opts     typegen.Options
	rootDir  string
	log      *zap.SugaredLogger
}

// New builds a processor. Relative paths in results and headers are taken
// against rootDir.
func New(resolver query.TypeResolver, registry *typegen.Registry, opts typegen.Options, rootDir string, log *zap.SugaredLogger) *Processor {
	if log == nil {
		log = logger.Logger
	}
	return &Processor{
		resolver: resolver,
		registry: registry,
		opts:     opts,
		rootDir:  rootDir,
		log:      log,
	}
}

// NewPostgres builds a processor with its own database connection
func NewPostgres(ctx context.Context, cfg *config.Config, registry *typegen.Registry, rootDir string, log *zap.SugaredLogger) (*Processor, error) {
	resolver, err := pgtypes.Open(ctx, cfg.DB.DSN(), log)
	if err != nil {
		return nil, errors.Wrapf(err, "connect to %s", cfg.DB.Redacted())
	}
	opts := typegen.Options{CamelCaseColumnNames: cfg.CamelCaseColumnNames}
	return New(resolver, registry, opts, rootDir, log), nil
}

// ProcessFile generates the declaration file for path. Every failure is
// returned as an *errors.FileError and leaves the output untouched.
func (p *Processor) ProcessFile(ctx context.Context, path string, transform config.Transform) (*Result, error) {
	start := time.Now()
	rel := p.relative(path)

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewFileError(rel, errors.KindIO, errors.Wrap(err, "read source"))
	}

	queries, err := query.Parse(transform.QueryMode(), string(src))
	if err != nil {
		return nil, errors.NewFileError(rel, errors.KindParse, err)
	}

	out, err := transform.OutputPath(path)
	if err != nil {
		return nil, errors.NewFileError(rel, errors.KindIO, err)
	}
	result := &Result{RelativePath: rel, OutputPath: p.relative(out)}
	if len(queries) == 0 {
		p.log.Debugw("No queries found, skipping", logger.FieldFile, rel)
		return result, nil
	}

	entries := make([]typegen.Entry, 0, len(queries))
	for _, q := range queries {
		types, err := p.resolver.GetTypes(ctx, query.Prepare(q))
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.NewFileError(rel, errors.KindCancelled, err)
			}
			return nil, errors.NewFileError(rel, errors.KindUpstream, errors.Wrapf(err, "line %d", q.Line))
		}
		entries = append(entries, typegen.Entry{Query: q, Types: types})
	}

	alloc := typegen.NewTypeAllocator(p.registry).WithLogger(logger.ChildLogger(p.log, logger.FieldFile, rel))
	content, err := typegen.GenerateFile(rel, entries, alloc, p.opts)
	if err != nil {
		return nil, errors.NewFileError(rel, errors.KindOf(err), err)
	}

	written, err := writeIfChanged(out, []byte(content))
	if err != nil {
		return nil, errors.NewFileError(rel, errors.KindIO, err)
	}

	result.TypeDeclarationCount = len(entries)
	result.Written = written
	p.log.Debugw("Processed file",
		logger.FieldFile, rel,
		logger.FieldOutput, result.OutputPath,
		logger.FieldCount, len(entries),
		"written", written,
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return result, nil
}

// Close releases the resolver
func (p *Processor) Close() error {
	return p.resolver.Close()
}

func (p *Processor) relative(path string) string {
	if p.rootDir == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(p.rootDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// writeIfChanged replaces path with content through a temp file in the same
// directory. It does nothing when path already holds content.
func writeIfChanged(path string, content []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, content) {
		return false, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, errors.Wrapf(err, "create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return false, errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return false, errors.Wrapf(err, "write %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return false, errors.Wrapf(err, "close %s", tmp.Name())
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return false, errors.Wrapf(err, "chmod %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return false, errors.Wrapf(err, "write %s", path)
	}
	return true, nil
}
