// Package watch feeds source files to the processor, either once (batch)
// or continuously from file system events (watch).
package watch

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/golergka/pgtyped/config"
	"github.com/golergka/pgtyped/errors"
	"github.com/golergka/pgtyped/logger"
	"github.com/golergka/pgtyped/pulse"
)

// Pusher accepts jobs without blocking
type Pusher interface {
	Push(job pulse.TransformJob)
}

// Processor is a Pusher whose jobs can be awaited
type Processor interface {
	Pusher
	Wait() error
}

// failFaster is a Processor that stops itself on its first failure
type failFaster interface {
	Failed() <-chan struct{}
}

// Enumerate lists files matching include at any depth under srcDir, sorted.
// Files inside node_modules and dot-directories are left out. Returned paths
// are joined onto srcDir.
func Enumerate(srcDir, include string) ([]string, error) {
	pattern := includePattern(include)
	found, err := doublestar.Glob(os.DirFS(srcDir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Wrapf(err, "glob %s in %s", pattern, srcDir)
	}
	sort.Strings(found)
	files := make([]string, 0, len(found))
	for _, m := range found {
		if inSkippedDir(m) {
			continue
		}
		files = append(files, filepath.Join(srcDir, filepath.FromSlash(m)))
	}
	return files, nil
}

// matches reports whether rel, slash-separated and relative to srcDir, is
// selected by include
func matches(include, rel string) bool {
	if inSkippedDir(rel) {
		return false
	}
	ok, _ := doublestar.Match(includePattern(include), rel)
	return ok
}

// includePattern anchors include at any depth: "*.sql" selects a/b/c.sql
func includePattern(include string) string {
	return path.Join("**", include)
}

func inSkippedDir(rel string) bool {
	dir := path.Dir(rel)
	if dir == "." {
		return false
	}
	for _, name := range strings.Split(dir, "/") {
		if skipDir(name) {
			return true
		}
	}
	return false
}

func skipDir(name string) bool {
	return name == "node_modules" || strings.HasPrefix(name, ".")
}

// RunBatch enumerates every transform once, pushes one job per transform
// and waits for all of them to settle. The error matches ErrFailFast when
// failOnError stopped the run.
func RunBatch(ctx context.Context, cfg *config.Config, proc Processor, log *zap.SugaredLogger) error {
	if log == nil {
		log = logger.Logger
	}
	log = log.Named("batch")

	jobs := make([]pulse.TransformJob, len(cfg.Transforms))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, t := range cfg.Transforms {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			files, err := Enumerate(cfg.SrcDir, t.Include)
			if err != nil {
				return err
			}
			jobs[i] = pulse.TransformJob{Files: files, Transform: t}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	total := 0
	for _, job := range jobs {
		log.Debugw("Enumerated files",
			logger.FieldTransform, job.Transform.String(),
			logger.FieldCount, len(job.Files))
		total += len(job.Files)
		proc.Push(job)
	}
	if total == 0 {
		log.Warnw("No files matched any transform", "src_dir", cfg.SrcDir)
	}
	return proc.Wait()
}
